package middleware

import (
	"net/http"
	"net/netip"
	"os"
	"strings"
)

// MetricsAuth protects the metrics endpoint with either an IP whitelist
// (METRICS_ALLOWED_IPS) or an API key (METRICS_API_KEY). With neither set it
// passes requests through, which is acceptable only in development.
func MetricsAuth() func(http.Handler) http.Handler {
	allowedIPs := getMetricsAllowedIPs()
	apiKey := os.Getenv("METRICS_API_KEY")

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if len(allowedIPs) > 0 {
				clientIP := getClientIP(r)
				if !isIPAllowed(clientIP, allowedIPs) {
					http.Error(w, "Forbidden", http.StatusForbidden)
					return
				}
				next.ServeHTTP(w, r)
				return
			}

			if apiKey != "" {
				providedKey := r.Header.Get("X-Metrics-API-Key")
				if providedKey == "" {
					providedKey = r.URL.Query().Get("api_key")
				}
				if providedKey != apiKey {
					http.Error(w, "Unauthorized", http.StatusUnauthorized)
					return
				}
				next.ServeHTTP(w, r)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func getMetricsAllowedIPs() []string {
	ipsStr := os.Getenv("METRICS_ALLOWED_IPS")
	if ipsStr == "" {
		return nil
	}
	ips := strings.Split(ipsStr, ",")
	for i := range ips {
		ips[i] = strings.TrimSpace(ips[i])
	}
	return ips
}

func isIPAllowed(clientIP string, allowedIPs []string) bool {
	if idx := strings.Index(clientIP, ":"); idx != -1 {
		clientIP = clientIP[:idx]
	}
	addr, addrErr := netip.ParseAddr(clientIP)

	for _, allowed := range allowedIPs {
		if allowed == "*" {
			return true
		}
		if allowed == clientIP {
			return true
		}
		if strings.Contains(allowed, "/") && addrErr == nil {
			prefix, err := netip.ParsePrefix(allowed)
			if err == nil && prefix.Contains(addr) {
				return true
			}
		}
	}
	return false
}

func getClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		ips := strings.Split(xff, ",")
		if len(ips) > 0 {
			return strings.TrimSpace(ips[0])
		}
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}

	ip, _, _ := strings.Cut(r.RemoteAddr, ":")
	return ip
}
