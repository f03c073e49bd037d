package httpkit

import (
	"net/http"
	"strconv"
	"strings"
)

// CORSOptions configures the CORS middleware. Empty method and header lists
// fall back to defaults; origins are never defaulted.
type CORSOptions struct {
	AllowedOrigins   []string // "*" allows any origin
	AllowedMethods   []string
	AllowedHeaders   []string
	ExposedHeaders   []string
	AllowCredentials bool
	MaxAgeSeconds    int
}

type corsPolicy struct {
	anyOrigin   bool
	origins     map[string]struct{}
	headers     map[string]string
	credentials bool
}

func newCORSPolicy(opt CORSOptions) corsPolicy {
	if len(opt.AllowedMethods) == 0 {
		opt.AllowedMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	}
	if len(opt.AllowedHeaders) == 0 {
		opt.AllowedHeaders = []string{"Content-Type", "Authorization", "Accept"}
	}
	if opt.MaxAgeSeconds == 0 {
		opt.MaxAgeSeconds = 600
	}

	p := corsPolicy{
		origins:     make(map[string]struct{}),
		credentials: opt.AllowCredentials,
		headers: map[string]string{
			"Access-Control-Allow-Methods": strings.Join(opt.AllowedMethods, ", "),
			"Access-Control-Allow-Headers": strings.Join(opt.AllowedHeaders, ", "),
			"Access-Control-Max-Age":       strconv.Itoa(opt.MaxAgeSeconds),
		},
	}
	if len(opt.ExposedHeaders) > 0 {
		p.headers["Access-Control-Expose-Headers"] = strings.Join(opt.ExposedHeaders, ", ")
	}
	for _, o := range opt.AllowedOrigins {
		switch o = strings.TrimSpace(o); o {
		case "":
		case "*":
			p.anyOrigin = true
		default:
			p.origins[o] = struct{}{}
		}
	}
	return p
}

func (p corsPolicy) allows(origin string) bool {
	if origin == "" {
		return false
	}
	if p.anyOrigin {
		return true
	}
	_, ok := p.origins[origin]
	return ok
}

// CORS echoes allowed origins back and answers every OPTIONS request with
// 204 without reaching the wrapped handler.
func CORS(opt CORSOptions) func(http.Handler) http.Handler {
	policy := newCORSPolicy(opt)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if origin := r.Header.Get("Origin"); policy.allows(origin) {
				h := w.Header()
				h.Set("Access-Control-Allow-Origin", origin)
				h.Add("Vary", "Origin")
				for k, v := range policy.headers {
					h.Set(k, v)
				}
				if policy.credentials {
					h.Set("Access-Control-Allow-Credentials", "true")
				}
			}

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
