package middleware

import (
	"net/http"
	"strings"

	"rubrica/internal/config"
)

// CORSMiddleware sets cross-origin headers on every response and
// short-circuits preflight requests before auth or routing run.
type CORSMiddleware struct {
	allowOrigins string
	allowMethods string
	allowHeaders string
}

// NewCORSMiddleware creates a new CORS middleware. The header values are
// assembled once at startup and read-only afterwards.
func NewCORSMiddleware(cfg *config.CORSConfig) *CORSMiddleware {
	return &CORSMiddleware{
		allowOrigins: strings.Join(cfg.AllowedOrigins, ", "),
		allowMethods: strings.Join(cfg.AllowedMethods, ", "),
		allowHeaders: strings.Join(cfg.AllowedHeaders, ", "),
	}
}

// Handler applies CORS headers and answers preflight requests
func (m *CORSMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", m.allowOrigins)
		w.Header().Set("Access-Control-Allow-Methods", m.allowMethods)
		w.Header().Set("Access-Control-Allow-Headers", m.allowHeaders)

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}
