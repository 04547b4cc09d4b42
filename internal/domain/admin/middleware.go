package admin

import (
	"net/http"
	"strings"

	"github.com/docsort/docsort-api/internal/pkg/response"
)

// AuthMiddleware returns middleware that requires a valid admin token
func AuthMiddleware(jwtSvc *JWTService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				response.Unauthorized(w, "Missing authorization header")
				return
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
				response.Unauthorized(w, "Invalid authorization header format")
				return
			}

			if _, err := jwtSvc.ValidateToken(parts[1]); err != nil {
				if err == ErrExpiredToken {
					response.Unauthorized(w, "Token expired")
				} else {
					response.Unauthorized(w, "Invalid token")
				}
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
