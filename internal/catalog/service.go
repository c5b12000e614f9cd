package catalog

import (
	"context"
	"errors"
	"net/url"
	"strconv"
	"strings"

	"github.com/sourcemart/storefront-api/internal/common"
)

// Service orchestrates catalog lookups, caching, and DTO assembly.
type Service struct {
	store        *Store
	cache        *Cache
	prober       *ImageProber
	defaultPage  int
	defaultLimit int
	maxLimit     int
}

// ServiceConfig groups Service dependencies.
type ServiceConfig struct {
	Store        *Store
	Cache        *Cache
	Prober       *ImageProber
	DefaultPage  int
	DefaultLimit int
	MaxLimit     int
}

// NewService constructs a Service instance.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Store == nil {
		return nil, errors.New("catalog: store is required")
	}
	defaultPage := cfg.DefaultPage
	if defaultPage < 1 {
		defaultPage = 1
	}
	defaultLimit := cfg.DefaultLimit
	if defaultLimit < 1 {
		defaultLimit = 20
	}
	maxLimit := cfg.MaxLimit
	if maxLimit < 1 {
		maxLimit = 100
	}
	if defaultLimit > maxLimit {
		defaultLimit = maxLimit
	}
	return &Service{
		store:        cfg.Store,
		cache:        cfg.Cache,
		prober:       cfg.Prober,
		defaultPage:  defaultPage,
		defaultLimit: defaultLimit,
		maxLimit:     maxLimit,
	}, nil
}

// ListParams captures filters for product listing.
type ListParams struct {
	Query    string
	Category string
	Brand    string
	Page     int
	Limit    int
}

// ListResult contains list data and pagination metadata.
type ListResult struct {
	Items []*Product
	Total int
	Page  int
	Limit int
}

// ParseListParams normalises raw query values into strongly typed filters.
func (s *Service) ParseListParams(values url.Values) (ListParams, error) {
	params := ListParams{
		Page:  s.defaultPage,
		Limit: s.defaultLimit,
	}
	params.Query = strings.TrimSpace(values.Get("q"))
	params.Category = strings.TrimSpace(values.Get("category"))
	params.Brand = strings.TrimSpace(values.Get("brand"))

	if v := strings.TrimSpace(values.Get("page")); v != "" {
		page, err := strconv.Atoi(v)
		if err != nil || page < 1 {
			return params, common.BadRequestField("page", "page must be a positive integer", err)
		}
		params.Page = page
	}
	if v := strings.TrimSpace(values.Get("limit")); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 1 {
			return params, common.BadRequestField("limit", "limit must be a positive integer", err)
		}
		params.Limit = limit
	}
	if params.Limit > s.maxLimit {
		params.Limit = s.maxLimit
	}
	return params, nil
}

// List returns filtered products with pagination metadata. Only the
// unfiltered first page is cached; filtered views hit the store directly.
func (s *Service) List(ctx context.Context, params ListParams) (ListResult, error) {
	key, cacheable := s.listCacheKey(params)
	if cacheable {
		var cached cachedList
		if ok, err := s.cache.GetJSON(ctx, key, &cached); err == nil && ok {
			return ListResult{Items: cached.Items, Total: cached.Total, Page: params.Page, Limit: params.Limit}, nil
		}
	}

	offset := (params.Page - 1) * params.Limit
	filter := ListFilter{Query: params.Query, Category: params.Category, Brand: params.Brand}
	items, total := s.store.List(ctx, filter, offset, params.Limit)
	if cacheable {
		_ = s.cache.SetJSON(ctx, key, cachedList{Items: items, Total: total})
	}
	return ListResult{Items: items, Total: total, Page: params.Page, Limit: params.Limit}, nil
}

// GetByID returns a single product. Unknown ids map to a 404 AppError.
func (s *Service) GetByID(ctx context.Context, id string) (*Product, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, common.BadRequestField("id", "product id is required", nil)
	}
	key := productCacheKey(id)
	var cached Product
	if ok, err := s.cache.GetJSON(ctx, key, &cached); err == nil && ok {
		return &cached, nil
	}

	product := s.store.Get(ctx, id)
	if product == nil {
		return nil, common.NotFound("product not found")
	}
	if s.prober != nil {
		verified := *product
		verified.Images = s.prober.Filter(ctx, product.Images)
		product = &verified
	}
	_ = s.cache.SetJSON(ctx, key, product)
	return product, nil
}

// GetMultiple resolves the requested ids in request order. Unknown ids are
// skipped rather than erroring so a cart with a retired product can still
// render its remaining lines.
func (s *Service) GetMultiple(ctx context.Context, ids []string) ([]*Product, error) {
	if len(ids) == 0 {
		return []*Product{}, nil
	}

	out := make([]*Product, 0, len(ids))
	missing := make([]string, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	byID := make(map[string]*Product, len(ids))

	for _, raw := range ids {
		id := strings.TrimSpace(raw)
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		var cached Product
		if ok, err := s.cache.GetJSON(ctx, productCacheKey(id), &cached); err == nil && ok {
			byID[id] = &cached
			continue
		}
		missing = append(missing, id)
	}
	for _, p := range s.store.GetMultiple(ctx, missing) {
		byID[p.ID] = p
		_ = s.cache.SetJSON(ctx, productCacheKey(p.ID), p)
	}
	for _, raw := range ids {
		id := strings.TrimSpace(raw)
		if p, ok := byID[id]; ok {
			out = append(out, p)
			delete(byID, id)
		}
	}
	return out, nil
}

// InvalidateProducts drops the cached entries for the given product ids.
// Called after cart writes so dependent aggregates recompute from fresh data.
func (s *Service) InvalidateProducts(ctx context.Context, ids ...string) error {
	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		if id = strings.TrimSpace(id); id != "" {
			keys = append(keys, productCacheKey(id))
		}
	}
	keys = append(keys, listCachePopularKey)
	return s.cache.Delete(ctx, keys...)
}

type cachedList struct {
	Items []*Product `json:"items"`
	Total int        `json:"total"`
}

const listCachePopularKey = "catalog:products:list:popular"

func (s *Service) listCacheKey(params ListParams) (string, bool) {
	if s.cache == nil {
		return "", false
	}
	if params.Page != s.defaultPage || params.Limit != s.defaultLimit {
		return "", false
	}
	if params.Query != "" || params.Category != "" || params.Brand != "" {
		return "", false
	}
	return listCachePopularKey, true
}

func productCacheKey(id string) string {
	return "catalog:product:" + id
}
