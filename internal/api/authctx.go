package api

import (
	"context"
	"net/http"
	"strings"

	authservice "github.com/follownet/backend/internal/auth/service"
)

// AuthContext is the immutable per-request authentication state, produced
// once by the middleware and passed by value through every resolver.
type AuthContext struct {
	Username      string
	Authenticated bool
}

type contextKey string

const authContextKey contextKey = "auth_context"

// AuthMiddleware verifies an optional bearer token exactly once per request.
// A missing, expired, or otherwise invalid token yields an anonymous context;
// it never rejects the request.
func AuthMiddleware(auth *authservice.Service) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authCtx := AuthContext{}

			raw := r.Header.Get("Authorization")
			if strings.HasPrefix(raw, "Bearer ") {
				token := strings.TrimPrefix(raw, "Bearer ")
				if claims, ok := auth.VerifyToken(token); ok {
					authCtx = AuthContext{
						Username:      claims.Username,
						Authenticated: true,
					}
				}
			}

			ctx := context.WithValue(r.Context(), authContextKey, authCtx)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// AuthFromContext returns the request's auth context; absent means anonymous.
func AuthFromContext(ctx context.Context) AuthContext {
	if authCtx, ok := ctx.Value(authContextKey).(AuthContext); ok {
		return authCtx
	}
	return AuthContext{}
}
