package jwtverify

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	commonerrors "github.com/AlibekovAA/credauth/internal/common/errors"
	"github.com/AlibekovAA/credauth/internal/observability/metrics"
)

// Claims is the session token payload. UserID is the application user id
// copied in at sign-in; Subject carries the same id as the standard claim.
type Claims struct {
	UserID string `json:"userId,omitempty"`
	Name   string `json:"name,omitempty"`
	Email  string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

var errUnexpectedSigningMethod = errors.New("unexpected signing method")

func Sign(claims Claims, secret []byte) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(secret)
	if err != nil {
		return "", commonerrors.ErrInternalError.WithCause(err)
	}
	return signed, nil
}

// ParseToken verifies an HS256 token and its expiry. now is the reference
// time for exp/iat checks and may be nil for wall-clock time.
func ParseToken(tokenString string, secret []byte, now func() time.Time) (Claims, error) {
	metrics.JWTValidationsTotal.Inc()

	opts := []jwt.ParserOption{jwt.WithExpirationRequired(), jwt.WithIssuedAt()}
	if now != nil {
		opts = append(opts, jwt.WithTimeFunc(now))
	}

	var claims Claims
	parsed, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (any, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, errUnexpectedSigningMethod
		}
		return secret, nil
	}, opts...)
	if err != nil {
		metrics.JWTValidationsFailed.Inc()
		if errors.Is(err, errUnexpectedSigningMethod) {
			return Claims{}, commonerrors.ErrInvalidTokenSigningMethod.WithCause(err)
		}
		return Claims{}, commonerrors.ErrInvalidToken.WithCause(err)
	}
	if !parsed.Valid {
		metrics.JWTValidationsFailed.Inc()
		return Claims{}, commonerrors.ErrInvalidToken
	}

	if claims.Subject == "" {
		metrics.JWTValidationsFailed.Inc()
		return Claims{}, commonerrors.ErrMissingTokenClaims
	}

	return claims, nil
}
