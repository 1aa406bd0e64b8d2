package middleware

import (
	"fmt"
	"net/http"

	"github.com/cmlabs-hris/attendance-engine/internal/handler/http/response"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/jwt"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/validator"
	"github.com/go-chi/jwtauth/v5"
)

// RequireRole allows the request through only when the token's role is one of roles.
func RequireRole(roles ...jwt.Role) func(http.Handler) http.Handler {
	allowed := make([]string, len(roles))
	for i, role := range roles {
		allowed[i] = string(role)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, claims, err := jwtauth.FromContext(r.Context())
			if err != nil {
				response.Forbidden(w, fmt.Sprintf("Insufficient permissions: required one of %v", allowed))
				return
			}

			role, ok := claims["role"].(string)
			if !ok || !validator.IsInSlice(role, allowed) {
				response.Forbidden(w, fmt.Sprintf("Insufficient permissions: required one of %v, but user role is '%s'", allowed, role))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
