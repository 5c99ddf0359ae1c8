package jwtverify

import (
	"context"
	"net/http"

	"github.com/AlibekovAA/credauth/internal/common/logger"
)

type contextKey string

const claimsKey contextKey = "jwt_claims"

// Extractor pulls a raw token from a request; empty means no token.
type Extractor func(r *http.Request) string

// Verifier turns a raw token into claims.
type Verifier func(token string) (Claims, error)

// Middleware rejects requests without valid claims through deny and
// stores accepted claims in the request context.
func Middleware(extract Extractor, verify Verifier, deny http.HandlerFunc, log *logger.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := extract(r)
			if raw == "" {
				deny(w, r)
				return
			}

			claims, err := verify(raw)
			if err != nil {
				log.WithFields(r.Context(), logger.Fields{
					"action": "session_verify",
					"path":   r.URL.Path,
				}).Warnf("session rejected: %v", err)
				deny(w, r)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
		})
	}
}

// CookieExtractor reads the first non-empty cookie among names.
func CookieExtractor(names ...string) Extractor {
	return func(r *http.Request) string {
		for _, name := range names {
			if c, err := r.Cookie(name); err == nil && c.Value != "" {
				return c.Value
			}
		}
		return ""
	}
}

func WithClaims(ctx context.Context, claims Claims) context.Context {
	return context.WithValue(ctx, claimsKey, claims)
}

func FromContext(ctx context.Context) (Claims, bool) {
	claims, ok := ctx.Value(claimsKey).(Claims)
	return claims, ok
}
