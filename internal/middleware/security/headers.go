package security

import (
	"fmt"
	"net/http"
	"strings"
	"time"
)

// HeadersConfig holds security headers configuration
type HeadersConfig struct {
	// ScriptHosts are the external origins allowed in script-src.
	ScriptHosts []string
	// HSTS is the Strict-Transport-Security max-age. Zero disables it.
	HSTS time.Duration
	// Fixed headers are sent as-is on every response.
	Fixed map[string]string
}

// DefaultHeadersConfig allows htmx from unpkg and Chart.js from jsdelivr.
func DefaultHeadersConfig() HeadersConfig {
	return HeadersConfig{
		ScriptHosts: []string{"https://unpkg.com", "https://cdn.jsdelivr.net"},
		HSTS:        365 * 24 * time.Hour,
		Fixed: map[string]string{
			"X-Content-Type-Options":       "nosniff",
			"X-Frame-Options":              "DENY",
			"Referrer-Policy":              "strict-origin-when-cross-origin",
			"Permissions-Policy":           "geolocation=(), microphone=(), camera=(), payment=()",
			"Cross-Origin-Opener-Policy":   "same-origin",
			"Cross-Origin-Resource-Policy": "same-origin",
		},
	}
}

func contentSecurityPolicy(scriptHosts []string) string {
	directives := [][]string{
		{"default-src", "'self'"},
		append([]string{"script-src", "'self'"}, scriptHosts...),
		{"style-src", "'self'", "'unsafe-inline'"},
		{"img-src", "'self'", "data:"},
		{"connect-src", "'self'"},
		{"object-src", "'none'"},
		{"frame-ancestors", "'none'"},
		{"base-uri", "'self'"},
		{"form-action", "'self'"},
	}
	parts := make([]string, len(directives))
	for i, d := range directives {
		parts[i] = strings.Join(d, " ")
	}
	return strings.Join(parts, "; ")
}

// HeadersMiddleware applies security headers to responses
type HeadersMiddleware struct {
	fixed http.Header
	hsts  string
}

func NewHeadersMiddleware(config HeadersConfig) *HeadersMiddleware {
	fixed := http.Header{}
	for name, value := range config.Fixed {
		if value != "" {
			fixed.Set(name, value)
		}
	}
	fixed.Set("Content-Security-Policy", contentSecurityPolicy(config.ScriptHosts))

	m := &HeadersMiddleware{fixed: fixed}
	if config.HSTS > 0 {
		m.hsts = fmt.Sprintf("max-age=%d; includeSubDomains", int(config.HSTS.Seconds()))
	}
	return m
}

func (m *HeadersMiddleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		for name, values := range m.fixed {
			h[name] = append([]string(nil), values...)
		}
		// Only over TLS.
		if r.TLS != nil && m.hsts != "" {
			h.Set("Strict-Transport-Security", m.hsts)
		}
		next.ServeHTTP(w, r)
	})
}

// StaticAssetMiddleware marks embedded assets cacheable for maxAge.
func StaticAssetMiddleware(maxAge time.Duration) func(http.Handler) http.Handler {
	value := fmt.Sprintf("public, max-age=%d", int(maxAge.Seconds()))
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if maxAge > 0 {
				w.Header().Set("Cache-Control", value)
			}
			next.ServeHTTP(w, r)
		})
	}
}
