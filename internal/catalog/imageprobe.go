package catalog

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/sourcemart/storefront-api/internal/obs"
	"github.com/sourcemart/storefront-api/internal/resilience"
)

// ImageProber verifies that product image URLs resolve before they are
// served, so the storefront never renders a broken hero image.
type ImageProber struct {
	Client  resilience.Doer
	Timeout time.Duration
	Logger  zerolog.Logger
}

// NewImageProber builds a prober with a per-image timeout.
func NewImageProber(client resilience.Doer, timeout time.Duration, logger zerolog.Logger) *ImageProber {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &ImageProber{Client: client, Timeout: timeout, Logger: logger}
}

// Filter returns the URLs that answered a HEAD probe. Probe errors keep
// the URL: a flaky CDN should not strip images that were fine yesterday.
func (p *ImageProber) Filter(ctx context.Context, urls []string) []string {
	if p == nil || p.Client == nil || len(urls) == 0 {
		return urls
	}
	live := make([]string, 0, len(urls))
	for _, u := range urls {
		switch p.probe(ctx, u) {
		case probeMissing:
			p.Logger.Warn().Str("url", u).Msg("image probe returned not found, dropping")
		default:
			live = append(live, u)
		}
	}
	return live
}

type probeResult string

const (
	probeOK      probeResult = "ok"
	probeMissing probeResult = "missing"
	probeError   probeResult = "error"
)

func (p *ImageProber) probe(ctx context.Context, url string) probeResult {
	probeCtx, cancel := context.WithTimeout(ctx, p.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(probeCtx, http.MethodHead, url, nil)
	if err != nil {
		p.record(probeError)
		return probeError
	}
	resp, err := p.Client.Do(req)
	if err != nil {
		p.record(probeError)
		return probeError
	}
	resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone {
		p.record(probeMissing)
		return probeMissing
	}
	if resp.StatusCode >= http.StatusBadRequest {
		p.record(probeError)
		return probeError
	}
	p.record(probeOK)
	return probeOK
}

func (p *ImageProber) record(result probeResult) {
	if obs.ImageProbeTotal != nil {
		obs.ImageProbeTotal.WithLabelValues(string(result)).Inc()
	}
}
