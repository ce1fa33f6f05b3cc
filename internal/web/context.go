package web

import (
	"context"
	"net"
	"net/http"

	"github.com/JonMunkholm/borelog/internal/core"
)

// WithRequestMetadata adds the client IP and User-Agent to ctx for import
// history.
func WithRequestMetadata(ctx context.Context, r *http.Request) context.Context {
	ip := r.RemoteAddr // Already rewritten by TrustedRealIP when behind a proxy
	if host, _, err := net.SplitHostPort(ip); err == nil {
		ip = host
	}
	ctx = core.ContextWithClientIP(ctx, ip)
	ctx = core.ContextWithUserAgent(ctx, r.UserAgent())
	return ctx
}
