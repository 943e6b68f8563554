package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/username/medrates/backend/src/logger"
	"github.com/username/medrates/backend/src/security"
	"github.com/username/medrates/backend/src/utils"
)

type contextKey string

const SubjectContextKey contextKey = "subject"

// AuthMiddleware gates the rate endpoints on a valid bearer token issued by
// the subscription system. The token subject is stored on the request context.
func AuthMiddleware(auth *security.AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				utils.SendJSONError(w, "Authorization header required", http.StatusUnauthorized)
				return
			}
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				utils.SendJSONError(w, "Authorization header format must be Bearer {token}", http.StatusUnauthorized)
				return
			}

			subject, err := auth.ValidateToken(parts[1])
			if err != nil {
				logger.L.Warn("rejected request with invalid token", "path", r.URL.Path, "error", err)
				utils.SendJSONError(w, "Invalid or expired token", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), SubjectContextKey, subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
