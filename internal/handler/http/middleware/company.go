package middleware

import (
	"context"
	"net/http"

	"github.com/go-chi/jwtauth/v5"

	"github.com/aqlhr/aqlhr-backend-go/internal/domain/holiday"
	"github.com/aqlhr/aqlhr-backend-go/internal/handler/http/response"
	"github.com/aqlhr/aqlhr-backend-go/internal/pkg/jwt"
)

type claimsKey struct{}

// RequireCompany resolves the caller's claims and rejects tokens that are
// not scoped to a company. Handlers read the result with ClaimsFromContext.
func RequireCompany(next http.Handler) http.Handler {
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

		if claims.CompanyID == "" {
			response.HandleError(w, holiday.ErrCompanyIDRequired)
			return
		}

		ctx := context.WithValue(r.Context(), claimsKey{}, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// OptionalClaims stores the caller's claims when a valid access token was
// verified and lets anonymous requests through unchanged. It must run after
// jwtauth.Verifier.
func OptionalClaims(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, raw, err := jwtauth.FromContext(r.Context())
		if err != nil || token == nil {
			next.ServeHTTP(w, r)
			return
		}
		if tokenType, _ := raw["type"].(string); tokenType != "access" {
			next.ServeHTTP(w, r)
			return
		}

		claims, err := jwt.ClaimsFromMap(raw)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}

		ctx := context.WithValue(r.Context(), claimsKey{}, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// ClaimsFromContext returns the claims stored by RequireCompany.
func ClaimsFromContext(ctx context.Context) (jwt.Claims, bool) {
	claims, ok := ctx.Value(claimsKey{}).(jwt.Claims)
	return claims, ok
}
