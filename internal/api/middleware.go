package api

import (
	"crypto/subtle"
	"net/http"

	"github.com/Mayesss/ai-trade-decision-pipeline-sub003/pkg/api"
)

// AdminGuard rejects requests that present neither the admin secret header nor a matching
// admin session cookie. An empty secret disables the check.
func AdminGuard(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if secret == "" || isAdmin(r, secret) {
				next.ServeHTTP(w, r)
				return
			}
			http.Error(w, "unauthorized", http.StatusUnauthorized)
		})
	}
}

func isAdmin(r *http.Request, secret string) bool {
	if matches(r.Header.Get(api.AdminSecretHeader), secret) {
		return true
	}
	if cookie, err := r.Cookie(api.AdminSessionCookie); err == nil && matches(cookie.Value, secret) {
		return true
	}
	return false
}

func matches(value, secret string) bool {
	return value != "" && subtle.ConstantTimeCompare([]byte(value), []byte(secret)) == 1
}

func requestOrigin(r *http.Request) string {
	if r.Host == "" {
		return ""
	}
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto == "http" || proto == "https" {
		scheme = proto
	}
	return scheme + "://" + r.Host
}
