package middleware

import (
	"context"
	"net/http"

	"github.com/cmlabs-hris/attendance-engine/internal/handler/http/response"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/jwt"
	"github.com/go-chi/jwtauth/v5"
)

const invalidTokenMessage = "Invalid or missing access token"

// AuthRequired rejects requests without a verified access token naming an employee.
// It must run after jwtauth.Verifier.
func AuthRequired(ja *jwtauth.JWTAuth) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		hfn := func(w http.ResponseWriter, r *http.Request) {
			token, claims, err := jwtauth.FromContext(r.Context())

			if err != nil {
				response.Unauthorized(w, err.Error())
				return
			}

			if token == nil {
				response.Unauthorized(w, invalidTokenMessage)
				return
			}

			tokenType, ok := claims["type"].(string)
			if tokenType != jwt.TokenTypeAccess || !ok {
				response.Unauthorized(w, invalidTokenMessage)
				return
			}

			if code, ok := claims["employee_code"].(string); !ok || code == "" {
				response.Unauthorized(w, invalidTokenMessage)
				return
			}

			next.ServeHTTP(w, r)
		}
		return http.HandlerFunc(hfn)
	}
}

// EmployeeCode returns the employee_code claim of the verified token on ctx.
func EmployeeCode(ctx context.Context) (string, bool) {
	_, claims, err := jwtauth.FromContext(ctx)
	if err != nil {
		return "", false
	}
	code, ok := claims["employee_code"].(string)
	return code, ok && code != ""
}
