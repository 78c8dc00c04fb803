// Package middleware contains HTTP middleware functions
package middleware

import (
	"log"
	"net/http"
	"strings"
)

// AllowedOriginsMap stores allowed origins for quick lookups.
var AllowedOriginsMap map[string]bool

// InitCORS initializes the CORS configuration. A wildcard entry overrides
// any specific origins.
func InitCORS(allowedOrigins []string) {
	AllowedOriginsMap = make(map[string]bool)
	for _, origin := range allowedOrigins {
		trimmed := strings.TrimSpace(origin)
		if trimmed == "*" {
			AllowedOriginsMap = map[string]bool{"*": true}
			log.Println("CORS initialized: Allowing all origins (*)")
			return
		}
		if trimmed != "" {
			AllowedOriginsMap[trimmed] = true
		}
	}
	log.Printf("CORS initialized: Allowing specific origins: %v", allowedOrigins)
}

// CORS handles Cross-Origin Resource Sharing headers and preflight requests.
func CORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		originAllowed := false
		allowOriginValue := ""

		if AllowedOriginsMap["*"] {
			originAllowed = true
			allowOriginValue = "*"
		} else if origin != "" && AllowedOriginsMap[origin] {
			originAllowed = true
			allowOriginValue = origin
			// Vary matters when reflecting a specific origin
			w.Header().Add("Vary", "Origin")
		}

		if origin != "" && originAllowed {
			w.Header().Set("Access-Control-Allow-Origin", allowOriginValue)
			w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		}

		if r.Method == http.MethodOptions {
			if origin != "" && originAllowed {
				w.WriteHeader(http.StatusOK)
			} else {
				http.Error(w, "CORS preflight check failed", http.StatusForbidden)
			}
			return
		}

		// Requests without an Origin header (same-origin, curl) pass through.
		if origin != "" && !originAllowed {
			http.Error(w, "CORS origin not allowed", http.StatusForbidden)
			return
		}

		next.ServeHTTP(w, r)
	})
}
