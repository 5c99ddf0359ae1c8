package repository

import (
	"context"
	"errors"

	"github.com/AlibekovAA/credauth/internal/common/db"
	"github.com/AlibekovAA/credauth/internal/common/resilience"
	"github.com/AlibekovAA/credauth/internal/user/domain"
)

// GuardedRepository routes every call through a circuit breaker.
type GuardedRepository struct {
	inner   Repository
	breaker *resilience.CircuitBreaker
}

func NewGuardedRepository(inner Repository, breaker *resilience.CircuitBreaker) *GuardedRepository {
	return &GuardedRepository{inner: inner, breaker: breaker}
}

// IsStoreFailure reports whether err indicates an unhealthy store rather
// than an expected outcome like a missing row, a duplicate or a value the
// server refused.
func IsStoreFailure(err error) bool {
	switch {
	case errors.Is(err, ErrUserNotFound),
		errors.Is(err, ErrUserAlreadyExists),
		errors.Is(err, ErrEmailAlreadyExists),
		errors.Is(err, ErrUsernameAlreadyExists),
		errors.Is(err, context.Canceled),
		db.IsDataException(err):
		return false
	}
	return true
}

func (g *GuardedRepository) Create(ctx context.Context, user domain.User) error {
	return g.breaker.Call(ctx, func(ctx context.Context) error {
		return g.inner.Create(ctx, user)
	})
}

func (g *GuardedRepository) FindByEmail(ctx context.Context, email string) (domain.User, error) {
	return g.find(ctx, func(ctx context.Context) (domain.User, error) {
		return g.inner.FindByEmail(ctx, email)
	})
}

func (g *GuardedRepository) FindByEmailOrUsername(ctx context.Context, email, username string) (domain.User, error) {
	return g.find(ctx, func(ctx context.Context) (domain.User, error) {
		return g.inner.FindByEmailOrUsername(ctx, email, username)
	})
}

func (g *GuardedRepository) FindByID(ctx context.Context, id domain.ID) (domain.User, error) {
	return g.find(ctx, func(ctx context.Context) (domain.User, error) {
		return g.inner.FindByID(ctx, id)
	})
}

func (g *GuardedRepository) find(ctx context.Context, fn func(context.Context) (domain.User, error)) (domain.User, error) {
	var user domain.User
	err := g.breaker.Call(ctx, func(ctx context.Context) error {
		var err error
		user, err = fn(ctx)
		return err
	})
	return user, err
}
