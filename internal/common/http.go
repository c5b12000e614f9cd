package common

import (
	"net"
	"net/http"
	"strings"
)

// ClientIP resolves the address used for rate-limit keys. The router runs
// chi's RealIP middleware first, so RemoteAddr is usually already the
// client address; proxy headers are consulted for requests that bypass it.
func ClientIP(r *http.Request) string {
	if r == nil {
		return ""
	}
	if host, _, err := net.SplitHostPort(strings.TrimSpace(r.RemoteAddr)); err == nil && host != "" {
		return host
	}
	if addr := strings.TrimSpace(r.RemoteAddr); addr != "" {
		return addr
	}
	return forwardedClient(r)
}

// forwardedClient picks the originating client out of proxy headers. The
// first X-Forwarded-For entry is the caller; later entries are hops.
func forwardedClient(r *http.Request) string {
	if xff := strings.TrimSpace(r.Header.Get("X-Forwarded-For")); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if first = strings.TrimSpace(first); first != "" {
			return first
		}
	}
	return strings.TrimSpace(r.Header.Get("X-Real-IP"))
}
