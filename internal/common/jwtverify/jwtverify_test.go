package jwtverify_test

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	commonerrors "github.com/AlibekovAA/credauth/internal/common/errors"
	"github.com/AlibekovAA/credauth/internal/common/jwtverify"
	"github.com/AlibekovAA/credauth/internal/common/logger"
)

var secret = []byte("0123456789abcdef0123456789abcdef")

func claimsAt(now time.Time, ttl time.Duration) jwtverify.Claims {
	return jwtverify.Claims{
		UserID: "user-1",
		Name:   "Alice",
		Email:  "alice@example.com",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-1",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        "jti-1",
		},
	}
}

func TestSignAndParse(t *testing.T) {
	now := time.Now()
	token, err := jwtverify.Sign(claimsAt(now, time.Hour), secret)
	require.NoError(t, err)

	got, err := jwtverify.ParseToken(token, secret, nil)
	require.NoError(t, err)
	assert.Equal(t, "user-1", got.UserID)
	assert.Equal(t, "Alice", got.Name)
	assert.Equal(t, "alice@example.com", got.Email)
	assert.Equal(t, "jti-1", got.ID)
}

func TestParseToken_Rejections(t *testing.T) {
	now := time.Now()

	expired, err := jwtverify.Sign(claimsAt(now.Add(-2*time.Hour), time.Hour), secret)
	require.NoError(t, err)

	otherKey, err := jwtverify.Sign(claimsAt(now, time.Hour), []byte("another-secret-another-secret-00"))
	require.NoError(t, err)

	hs512, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claimsAt(now, time.Hour)).SignedString(secret)
	require.NoError(t, err)

	noSubject := claimsAt(now, time.Hour)
	noSubject.Subject = ""
	missing, err := jwtverify.Sign(noSubject, secret)
	require.NoError(t, err)

	cases := []struct {
		name  string
		token string
		want  error
	}{
		{"expired", expired, commonerrors.ErrInvalidToken},
		{"bad signature", otherKey, commonerrors.ErrInvalidToken},
		{"other algorithm", hs512, commonerrors.ErrInvalidTokenSigningMethod},
		{"missing subject", missing, commonerrors.ErrMissingTokenClaims},
		{"garbage", "not-a-token", commonerrors.ErrInvalidToken},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := jwtverify.ParseToken(tc.token, secret, nil)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestParseToken_UsesSuppliedClock(t *testing.T) {
	issued := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	token, err := jwtverify.Sign(claimsAt(issued, time.Hour), secret)
	require.NoError(t, err)

	_, err = jwtverify.ParseToken(token, secret, func() time.Time { return issued.Add(30 * time.Minute) })
	assert.NoError(t, err)

	_, err = jwtverify.ParseToken(token, secret, func() time.Time { return issued.Add(2 * time.Hour) })
	assert.ErrorIs(t, err, commonerrors.ErrInvalidToken)
}

func TestMiddleware(t *testing.T) {
	token, err := jwtverify.Sign(claimsAt(time.Now(), time.Hour), secret)
	require.NoError(t, err)

	log := logger.NewWithWriter(&bytes.Buffer{}, "test", "info")
	verify := func(raw string) (jwtverify.Claims, error) { return jwtverify.ParseToken(raw, secret, nil) }
	deny := func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusUnauthorized) }

	var seen string
	handler := jwtverify.Middleware(jwtverify.CookieExtractor("a", "b"), verify, deny, log)(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := jwtverify.FromContext(r.Context())
			require.True(t, ok)
			seen = claims.UserID
		}),
	)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "b", Value: "tampered"})
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "b", Value: token})
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "user-1", seen)
}
