package service

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	authdomain "github.com/AlibekovAA/credauth/internal/auth/domain"
	"github.com/AlibekovAA/credauth/internal/common/clock"
	commoncrypto "github.com/AlibekovAA/credauth/internal/common/crypto"
	"github.com/AlibekovAA/credauth/internal/common/jwtverify"
)

const (
	originSignIn  = "sign_in"
	originRefresh = "refresh"
)

type Token struct {
	Value     string
	Claims    jwtverify.Claims
	ExpiresAt time.Time
}

// SessionIssuer signs stateless session tokens. Every issued or refreshed
// token passes through EnrichToken; every session view through DeriveSession.
type SessionIssuer struct {
	jwtSecret   []byte
	idGenerator commoncrypto.IDGenerator
	clock       clock.Clock
	maxAge      time.Duration
	tracer      trace.Tracer
}

func NewSessionIssuer(
	jwtSecret string,
	idGenerator commoncrypto.IDGenerator,
	maxAge time.Duration,
	clk clock.Clock,
) *SessionIssuer {
	return &SessionIssuer{
		jwtSecret:   []byte(jwtSecret),
		idGenerator: idGenerator,
		clock:       clk,
		maxAge:      maxAge,
		tracer:      otel.Tracer(tracerName),
	}
}

// EnrichToken copies the id of a just-authenticated identity into the
// userId claim. With no identity (a refresh), claims are returned unchanged.
func EnrichToken(claims jwtverify.Claims, identity *authdomain.Identity) jwtverify.Claims {
	if identity != nil {
		claims.UserID = identity.ID
	}
	return claims
}

// DeriveSession builds the session projection of claims. The user object is
// always present; its id is set whenever the token carries userId.
func DeriveSession(claims jwtverify.Claims) authdomain.SessionView {
	view := authdomain.SessionView{
		User: &authdomain.SessionUser{
			Name:  claims.Name,
			Email: claims.Email,
		},
	}
	if claims.UserID != "" {
		view.User.ID = claims.UserID
	}
	return view
}

func (si *SessionIssuer) Issue(ctx context.Context, identity authdomain.Identity) (Token, error) {
	_, span := si.tracer.Start(ctx, "SessionIssuer.Issue", trace.WithAttributes(attribute.String("user.id", identity.ID)))
	defer span.End()

	claims := jwtverify.Claims{
		Name:  identity.Name,
		Email: identity.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject: identity.ID,
		},
	}
	claims = EnrichToken(claims, &identity)

	token, err := si.sign(claims)
	if err != nil {
		span.RecordError(err)
		return Token{}, err
	}
	incrementSessionTokensIssued(originSignIn)
	return token, nil
}

// Refresh re-signs claims with a new expiry.
func (si *SessionIssuer) Refresh(ctx context.Context, claims jwtverify.Claims) (Token, error) {
	_, span := si.tracer.Start(ctx, "SessionIssuer.Refresh")
	defer span.End()

	claims = EnrichToken(claims, nil)

	token, err := si.sign(claims)
	if err != nil {
		span.RecordError(err)
		return Token{}, err
	}
	incrementSessionTokensIssued(originRefresh)
	return token, nil
}

func (si *SessionIssuer) Parse(token string) (jwtverify.Claims, error) {
	return jwtverify.ParseToken(token, si.jwtSecret, si.clock.Now)
}

func (si *SessionIssuer) Session(claims jwtverify.Claims) authdomain.SessionView {
	view := DeriveSession(claims)
	if claims.ExpiresAt != nil {
		view.Expires = claims.ExpiresAt.Time.UTC()
	}
	return view
}

func (si *SessionIssuer) sign(claims jwtverify.Claims) (Token, error) {
	jti, err := si.idGenerator.NewID()
	if err != nil {
		return Token{}, newInternalError(err)
	}

	now := si.clock.Now()
	expiresAt := now.Add(si.maxAge)
	claims.ID = jti
	claims.IssuedAt = jwt.NewNumericDate(now)
	claims.ExpiresAt = jwt.NewNumericDate(expiresAt)

	signed, err := jwtverify.Sign(claims, si.jwtSecret)
	if err != nil {
		return Token{}, err
	}

	return Token{Value: signed, Claims: claims, ExpiresAt: expiresAt}, nil
}
