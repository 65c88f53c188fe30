package middleware

import (
	"context"
	"net/http"
	"strings"

	"perfdash/internal/domain/auth"
	"perfdash/internal/platform/requestctx"
)

// Anonymous is the caller used when authentication is disabled.
var Anonymous = auth.UserContext{Username: "anonymous", Role: auth.RoleEditor}

// Auth attaches the bearer token's user to the request. With an empty secret
// every request runs as Anonymous.
func Auth(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if secret == "" {
				next.ServeHTTP(w, r.WithContext(requestctx.WithUser(r.Context(), Anonymous)))
				return
			}
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				next.ServeHTTP(w, r)
				return
			}
			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := auth.ParseToken(secret, parts[1])
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			ctx := requestctx.WithUser(r.Context(), auth.UserContext{
				Username: claims.Username,
				Role:     claims.Role,
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func GetUser(ctx context.Context) (auth.UserContext, bool) {
	return requestctx.GetUser(ctx)
}
