package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/imanmolsaini/Campus-Connect-sub000/pkg/apperrors"
	jwtutil "github.com/imanmolsaini/Campus-Connect-sub000/pkg/jwt"
	"github.com/imanmolsaini/Campus-Connect-sub000/pkg/logger"
	"github.com/imanmolsaini/Campus-Connect-sub000/pkg/response"
)

type contextKey string

// UserContextKey holds the *jwt.Claims of the authenticated caller.
const UserContextKey contextKey = "user"

// AuthMiddleware rejects requests without a valid bearer token and stores the
// token claims in the request context.
func AuthMiddleware(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || strings.TrimSpace(token) == "" {
				logger.Log.WithField("path", r.URL.Path).Warn("Missing bearer token")
				response.Fail(w, apperrors.CodeUnauthenticated, "missing or malformed authorization header")
				return
			}

			claims, err := jwtutil.ValidateToken(strings.TrimSpace(token), secret)
			if err != nil {
				logger.Log.WithError(err).WithField("path", r.URL.Path).Warn("Rejected token")
				response.Fail(w, apperrors.CodeUnauthenticated, "invalid or expired token")
				return
			}

			ctx := context.WithValue(r.Context(), UserContextKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetUserFromContext returns the claims stored by AuthMiddleware, or nil.
func GetUserFromContext(ctx context.Context) *jwtutil.Claims {
	claims, _ := ctx.Value(UserContextKey).(*jwtutil.Claims)
	return claims
}

// WithUser returns a copy of ctx carrying claims.
func WithUser(ctx context.Context, claims *jwtutil.Claims) context.Context {
	return context.WithValue(ctx, UserContextKey, claims)
}

// RequireRole allows only callers whose token carries role. It must run after
// AuthMiddleware.
func RequireRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := GetUserFromContext(r.Context())
			if claims == nil {
				response.Fail(w, apperrors.CodeUnauthenticated, "unauthorized")
				return
			}
			if claims.Role != role {
				logger.Log.Warnf("User %s attempted to access %s route %s", claims.UserID, role, r.URL.Path)
				response.Fail(w, apperrors.CodeForbidden, "insufficient role")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
