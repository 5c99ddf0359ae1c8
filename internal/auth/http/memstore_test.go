package http_test

import (
	"context"
	"sync"

	userdomain "github.com/AlibekovAA/credauth/internal/user/domain"
	userrepo "github.com/AlibekovAA/credauth/internal/user/repository"
)

// memoryRepo enforces email and username uniqueness the way the table
// constraints do.
type memoryRepo struct {
	mu    sync.Mutex
	users map[userdomain.ID]userdomain.User

	createCalls int
	failWith    error
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{users: make(map[userdomain.ID]userdomain.User)}
}

func (m *memoryRepo) Create(_ context.Context, user userdomain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.createCalls++
	if m.failWith != nil {
		return m.failWith
	}
	for _, u := range m.users {
		if u.Email == user.Email {
			return userrepo.ErrEmailAlreadyExists
		}
		if u.Username == user.Username {
			return userrepo.ErrUsernameAlreadyExists
		}
	}
	m.users[user.ID] = user
	return nil
}

func (m *memoryRepo) FindByEmail(_ context.Context, email string) (userdomain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == userdomain.NormalizeEmail(email) {
			return u, nil
		}
	}
	return userdomain.User{}, userrepo.ErrUserNotFound
}

func (m *memoryRepo) FindByEmailOrUsername(_ context.Context, email, username string) (userdomain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == userdomain.NormalizeEmail(email) || u.Username == userdomain.NormalizeUsername(username) {
			return u, nil
		}
	}
	return userdomain.User{}, userrepo.ErrUserNotFound
}

func (m *memoryRepo) FindByID(_ context.Context, id userdomain.ID) (userdomain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return userdomain.User{}, userrepo.ErrUserNotFound
}

func (m *memoryRepo) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.users)
}

func (m *memoryRepo) creates() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.createCalls
}

type plainHasher struct{}

func (plainHasher) Hash(password string) (string, error) { return "hashed_" + password, nil }

func (plainHasher) Verify(password, hash string) bool { return hash == "hashed_"+password }
