package middleware

import (
	"net/http"

	"github.com/alexedwards/scs/v2"
)

// RequireOperator gates privileged routes behind an operator session
// established by the login handler.
func RequireOperator(sessionManager *scs.SessionManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !sessionManager.GetBool(r.Context(), "operator") {
				http.Error(w, "operator session required", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
