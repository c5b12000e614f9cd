package auth

import (
	"net/http"
	"strings"

	"github.com/sourcemart/storefront-api/internal/common"
)

// AnonHeader carries the anonymous cart identifier for guests.
const AnonHeader = "X-Anon-ID"

// Middleware resolves the request identity. Logged-in users authenticate
// with a bearer token; guests carry an anonymous cart id header. Either
// one becomes the account key that scopes cart and order state.
type Middleware struct {
	Tokens *Tokens
}

// Identity attaches user id and account key to the context when present.
// Invalid tokens fall through unauthenticated rather than erroring so
// public routes keep working with an expired session.
func (m Middleware) Identity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if token := bearerToken(r); token != "" && m.Tokens != nil {
			if userID, err := m.Tokens.ParseAccessToken(token); err == nil {
				ctx = common.WithUserID(ctx, userID)
				ctx = common.WithAccountKey(ctx, "user:"+userID)
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}
		}
		if anonID := strings.TrimSpace(r.Header.Get(AnonHeader)); anonID != "" {
			ctx = common.WithAccountKey(ctx, "anon:"+anonID)
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireIdentity rejects requests with neither a valid token nor an
// anonymous cart id. Guards cart, order, and payment routes.
func RequireIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := common.AccountKey(r.Context()); !ok {
			common.JSONError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing bearer token or "+AnonHeader+" header", nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func bearerToken(r *http.Request) string {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if strings.HasPrefix(strings.ToLower(header), "bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return ""
}
