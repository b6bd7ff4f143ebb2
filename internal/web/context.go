package web

import (
	"context"
	"net/http"

	"github.com/JonMunkholm/tutoradmin/internal/core"
)

// WithRequestMetadata adds the client IP and User-Agent to ctx so the
// operation log can record who made a change.
func WithRequestMetadata(ctx context.Context, r *http.Request) context.Context {
	ctx = core.ContextWithIPAddress(ctx, clientIP(r))
	ctx = core.ContextWithUserAgent(ctx, r.Header.Get("User-Agent"))
	return ctx
}

// requestMetadata is the middleware form of WithRequestMetadata.
func requestMetadata(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r.WithContext(WithRequestMetadata(r.Context(), r)))
	})
}
