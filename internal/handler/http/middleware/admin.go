package middleware

import (
	"net/http"

	"github.com/go-chi/jwtauth/v5"

	"github.com/aqlhr/aqlhr-backend-go/internal/handler/http/response"
	"github.com/aqlhr/aqlhr-backend-go/internal/pkg/jwt"
)

// AdminOnly allows company owners and admins through.
func AdminOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, raw, err := jwtauth.FromContext(r.Context())
		if err != nil {
			response.Unauthorized(w, "Invalid token")
			return
		}

		claims, err := jwt.ClaimsFromMap(raw)
		if err != nil {
			response.Unauthorized(w, "Invalid token")
			return
		}

		if !claims.IsAdmin() {
			response.Forbidden(w, "Admin privilege required")
			return
		}

		next.ServeHTTP(w, r)
	})
}
