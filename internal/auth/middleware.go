package auth

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

type ctxKey string

const (
	ctxKeyClaims ctxKey = "claims"
)

func FromContext(ctx context.Context) (*Claims, bool) {
	cl, ok := ctx.Value(ctxKeyClaims).(*Claims)
	return cl, ok
}

func JWTMiddleware(secret, issuer string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := r.Header.Get("Authorization")
			if raw == "" || !strings.HasPrefix(raw, "Bearer ") {
				http.Error(w, "missing bearer token", http.StatusUnauthorized)
				return
			}
			tokenStr := strings.TrimPrefix(raw, "Bearer ")

			parser := jwt.NewParser(
				jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
				jwt.WithAudience(Audience),
			)
			cl := &Claims{}
			_, err := parser.ParseWithClaims(tokenStr, cl, func(t *jwt.Token) (any, error) {
				return []byte(secret), nil
			})
			if err != nil {
				slog.Warn("jwt parse failed", "error", err)
				http.Error(w, "invalid token", http.StatusUnauthorized)
				return
			}
			if cl.Issuer != issuer {
				http.Error(w, "invalid issuer", http.StatusUnauthorized)
				return
			}
			ctx := context.WithValue(r.Context(), ctxKeyClaims, cl)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func RequirePerm(required string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cl, ok := FromContext(r.Context())
			if !ok {
				http.Error(w, "no auth context", http.StatusUnauthorized)
				return
			}
			if !HasPerm(cl.Roles, required) {
				slog.Warn("permission denied", "user_id", cl.UserID, "perm", required)
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

