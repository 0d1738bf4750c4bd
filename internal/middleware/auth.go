package middleware

import (
	"net/http"

	"vidpress/internal/auth"
)

// mutatingMethods are the methods the admin token protects. Reads stay
// open so dashboards and players keep working without credentials.
var mutatingMethods = map[string]bool{
	http.MethodPost:   true,
	http.MethodPut:    true,
	http.MethodPatch:  true,
	http.MethodDelete: true,
}

// Auth returns middleware that rejects mutating requests without a valid
// bearer token. A nil verifier disables the check entirely.
func Auth(verifier *auth.Verifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if verifier != nil && mutatingMethods[r.Method] && !verifier.Authorize(r) {
				w.Header().Set("WWW-Authenticate", "Bearer")
				http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
