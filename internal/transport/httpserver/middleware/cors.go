package middleware

import (
	"net/http"
	"strings"
)

const (
	corsAllowMethods  = "GET, POST, PUT, DELETE, OPTIONS"
	corsAllowHeaders  = "Authorization, Content-Type, Content-Length"
	corsExposeHeaders = "Content-Disposition, Content-Length, X-Request-Id"
	corsMaxAge        = "86400"
)

// originPolicy decides which browser origins may call the API. Entries are
// exact origins, "*", or a scheme plus "*." subdomain pattern such as
// "https://*.permits.example.com" for preview deployments.
type originPolicy struct {
	any      bool
	exact    map[string]struct{}
	suffixes []originSuffix
}

type originSuffix struct {
	scheme string
	domain string
}

func newOriginPolicy(origins []string) originPolicy {
	policy := originPolicy{exact: make(map[string]struct{}, len(origins))}
	for _, origin := range origins {
		origin = strings.ToLower(strings.TrimRight(strings.TrimSpace(origin), "/"))
		if origin == "" {
			continue
		}
		if origin == "*" {
			policy.any = true
			continue
		}
		if scheme, host, ok := strings.Cut(origin, "://*."); ok && host != "" {
			policy.suffixes = append(policy.suffixes, originSuffix{scheme: scheme, domain: "." + host})
			continue
		}
		policy.exact[origin] = struct{}{}
	}
	return policy
}

func (p originPolicy) allows(origin string) bool {
	if origin == "" {
		return false
	}
	if p.any {
		return true
	}
	origin = strings.ToLower(origin)
	if _, ok := p.exact[origin]; ok {
		return true
	}
	scheme, host, ok := strings.Cut(origin, "://")
	if !ok {
		return false
	}
	for _, suffix := range p.suffixes {
		if scheme == suffix.scheme && strings.HasSuffix(host, suffix.domain) && len(host) > len(suffix.domain) {
			return true
		}
	}
	return false
}

// NewCORS answers preflight requests and echoes allowed origins back.
func NewCORS(allowedOrigins []string) func(http.Handler) http.Handler {
	policy := newOriginPolicy(allowedOrigins)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Add("Vary", "Origin")

			origin := r.Header.Get("Origin")
			if policy.allows(origin) {
				header := w.Header()
				header.Set("Access-Control-Allow-Origin", origin)
				header.Set("Access-Control-Allow-Methods", corsAllowMethods)
				header.Set("Access-Control-Allow-Headers", corsAllowHeaders)
				header.Set("Access-Control-Expose-Headers", corsExposeHeaders)
				header.Set("Access-Control-Max-Age", corsMaxAge)
			}

			if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
