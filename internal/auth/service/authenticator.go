package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	authdomain "github.com/AlibekovAA/credauth/internal/auth/domain"
	"github.com/AlibekovAA/credauth/internal/auth/service/mapper"
	commoncrypto "github.com/AlibekovAA/credauth/internal/common/crypto"
	"github.com/AlibekovAA/credauth/internal/common/logger"
	userdomain "github.com/AlibekovAA/credauth/internal/user/domain"
	userrepo "github.com/AlibekovAA/credauth/internal/user/repository"
)

const timingEqualizerPassword = "credauth-timing-equalizer"

// Authenticator checks email/password pairs against the user store.
type Authenticator struct {
	repo   userrepo.Repository
	hasher commoncrypto.PasswordHasher
	tracer trace.Tracer
	log    *logger.Logger

	dummyOnce sync.Once
	dummyHash string
}

func NewAuthenticator(repo userrepo.Repository, hasher commoncrypto.PasswordHasher, log *logger.Logger) *Authenticator {
	return &Authenticator{
		repo:   repo,
		hasher: hasher,
		tracer: otel.Tracer(tracerName),
		log:    log,
	}
}

// Authorize returns ok=false for every rejection (missing input, unknown
// email, account without a password, wrong password) without saying which.
// err is set only when the store could not be queried.
func (a *Authenticator) Authorize(ctx context.Context, email, password string) (authdomain.Identity, bool, error) {
	ctx, span := a.tracer.Start(ctx, "Authenticator.Authorize")
	defer span.End()

	email = userdomain.NormalizeEmail(email)
	if email == "" || password == "" {
		recordCredentialCheck(resultRejected)
		return authdomain.Identity{}, false, nil
	}
	if !userdomain.IsStorable(email) {
		a.equalizeTiming(password)
		a.reject(ctx, "authorize_malformed_email")
		return authdomain.Identity{}, false, nil
	}

	user, err := a.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, userrepo.ErrUserNotFound) {
			a.equalizeTiming(password)
			a.reject(ctx, "authorize_user_not_found")
			return authdomain.Identity{}, false, nil
		}
		a.log.WithFields(ctx, logger.Fields{
			"action": "authorize_lookup_failed",
		}).Errorf("authorize failed: %v", err)
		recordCredentialCheck(resultError)
		span.RecordError(err)
		span.SetStatus(codes.Error, "lookup failed")
		return authdomain.Identity{}, false, newInternalError(err)
	}

	if !user.HasPassword() {
		a.equalizeTiming(password)
		a.reject(ctx, "authorize_no_password")
		return authdomain.Identity{}, false, nil
	}

	start := time.Now()
	matched := a.hasher.Verify(password, user.PasswordHash)
	observePasswordHash(start)
	if !matched {
		a.reject(ctx, "authorize_invalid_password")
		return authdomain.Identity{}, false, nil
	}

	a.log.WithFields(ctx, logger.Fields{
		"user_id": string(user.ID),
		"action":  "authorize_success",
	}).Info("credentials accepted")
	recordCredentialCheck(resultSuccess)

	return mapper.ToIdentity(user), true, nil
}

func (a *Authenticator) reject(ctx context.Context, action string) {
	a.log.WithFields(ctx, logger.Fields{
		"action": action,
	}).Warn("credentials rejected")
	recordCredentialCheck(resultRejected)
}

// equalizeTiming spends one hash comparison on paths that have no stored
// hash, so they take as long as a wrong password.
func (a *Authenticator) equalizeTiming(password string) {
	a.dummyOnce.Do(func() {
		hash, err := a.hasher.Hash(timingEqualizerPassword)
		if err == nil {
			a.dummyHash = hash
		}
	})
	if a.dummyHash != "" {
		_ = a.hasher.Verify(password, a.dummyHash)
	}
}
