package service_test

import (
	"bytes"
	"context"
	"sync/atomic"

	"github.com/AlibekovAA/credauth/internal/common/logger"
	userdomain "github.com/AlibekovAA/credauth/internal/user/domain"
	userrepo "github.com/AlibekovAA/credauth/internal/user/repository"
)

type mockUserRepo struct {
	createFunc                func(ctx context.Context, user userdomain.User) error
	findByEmailFunc           func(ctx context.Context, email string) (userdomain.User, error)
	findByEmailOrUsernameFunc func(ctx context.Context, email, username string) (userdomain.User, error)
	findByIDFunc              func(ctx context.Context, id userdomain.ID) (userdomain.User, error)

	createCalls atomic.Int32
	findCalls   atomic.Int32
}

func (m *mockUserRepo) Create(ctx context.Context, user userdomain.User) error {
	m.createCalls.Add(1)
	if m.createFunc != nil {
		return m.createFunc(ctx, user)
	}
	return nil
}

func (m *mockUserRepo) FindByEmail(ctx context.Context, email string) (userdomain.User, error) {
	m.findCalls.Add(1)
	if m.findByEmailFunc != nil {
		return m.findByEmailFunc(ctx, email)
	}
	return userdomain.User{}, userrepo.ErrUserNotFound
}

func (m *mockUserRepo) FindByEmailOrUsername(ctx context.Context, email, username string) (userdomain.User, error) {
	m.findCalls.Add(1)
	if m.findByEmailOrUsernameFunc != nil {
		return m.findByEmailOrUsernameFunc(ctx, email, username)
	}
	return userdomain.User{}, userrepo.ErrUserNotFound
}

func (m *mockUserRepo) FindByID(ctx context.Context, id userdomain.ID) (userdomain.User, error) {
	m.findCalls.Add(1)
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return userdomain.User{}, userrepo.ErrUserNotFound
}

type mockHasher struct {
	hashFunc   func(password string) (string, error)
	verifyFunc func(password, hash string) bool

	verifyCalls atomic.Int32
}

func (m *mockHasher) Hash(password string) (string, error) {
	if m.hashFunc != nil {
		return m.hashFunc(password)
	}
	return "hashed_" + password, nil
}

func (m *mockHasher) Verify(password, hash string) bool {
	m.verifyCalls.Add(1)
	if m.verifyFunc != nil {
		return m.verifyFunc(password, hash)
	}
	return hash == "hashed_"+password
}

type mockIDGenerator struct {
	newIDFunc func() (string, error)
}

func (m *mockIDGenerator) NewID() (string, error) {
	if m.newIDFunc != nil {
		return m.newIDFunc()
	}
	return "test-id-123", nil
}

func newTestLogger() *logger.Logger {
	return logger.NewWithWriter(&bytes.Buffer{}, "test", "info")
}
