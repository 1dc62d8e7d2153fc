package middleware

import (
	"net/http"
	"os"
	"strings"
)

// CORS creates middleware that handles Cross-Origin Resource Sharing headers.
// Can be disabled by setting CORS_ENABLED=false.
func CORS() func(http.Handler) http.Handler {
	if !isCORSEnabled() {
		return func(next http.Handler) http.Handler {
			return next
		}
	}

	allowedOrigins := getAllowedOrigins()
	allowedMethods := []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	allowedHeaders := []string{"Accept", "Content-Type", "X-CSRF-Token"}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")

			if isOriginAllowed(origin, allowedOrigins) {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				// Session cookie requires credentialed requests
				w.Header().Set("Access-Control-Allow-Credentials", "true")
			}

			if r.Method == "OPTIONS" {
				w.Header().Set("Access-Control-Allow-Methods", strings.Join(allowedMethods, ", "))
				w.Header().Set("Access-Control-Allow-Headers", strings.Join(allowedHeaders, ", "))
				w.Header().Set("Access-Control-Max-Age", "3600")
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// getAllowedOrigins returns the list of allowed origins from CORS_ALLOWED_ORIGINS
// (comma-separated). Defaults to allowing all origins, for development only.
func getAllowedOrigins() []string {
	originsStr := os.Getenv("CORS_ALLOWED_ORIGINS")
	if originsStr == "" {
		return []string{"*"}
	}

	origins := strings.Split(originsStr, ",")
	for i := range origins {
		origins[i] = strings.TrimSpace(origins[i])
	}
	return origins
}

func isOriginAllowed(origin string, allowedOrigins []string) bool {
	if origin == "" {
		return false
	}

	for _, allowed := range allowedOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
		// Wildcard subdomains: *.example.com matches app.example.com, not example.com
		if strings.HasPrefix(allowed, "*.") {
			domain := strings.TrimPrefix(allowed, "*.")
			if strings.HasSuffix(origin, domain) {
				prefix := strings.TrimSuffix(origin, domain)
				if prefix != "" && strings.HasSuffix(prefix, ".") {
					return true
				}
			}
		}
	}

	return false
}

func isCORSEnabled() bool {
	enabledStr := os.Getenv("CORS_ENABLED")
	if enabledStr == "" {
		return true
	}
	return strings.ToLower(enabledStr) == "true"
}
