package repository_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AlibekovAA/credauth/internal/user/domain"
	"github.com/AlibekovAA/credauth/internal/user/repository"
)

var userColumns = []string{"id", "email", "username", "display_name", "password_hash", "created_at"}

func strPtr(s string) *string { return &s }

func TestPgRepository_Create(t *testing.T) {
	created := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	user := domain.User{
		ID:           "0b8f7a52-1c1e-4d57-9a53-3d0a4f9b2c11",
		Email:        "  Alice@Example.COM ",
		Username:     " alice ",
		PasswordHash: "$2a$12$hash",
		CreatedAt:    created,
	}

	tests := []struct {
		name      string
		setupMock func(mock pgxmock.PgxPoolIface)
		wantErr   error
	}{
		{
			name: "normalizes and stores null display name",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectExec(`INSERT INTO users`).
					WithArgs(string(user.ID), "alice@example.com", "alice", (*string)(nil), strPtr("$2a$12$hash"), created).
					WillReturnResult(pgxmock.NewResult("INSERT", 1))
			},
		},
		{
			name: "email constraint",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectExec(`INSERT INTO users`).
					WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
					WillReturnError(&pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: "users_email_key"})
			},
			wantErr: repository.ErrEmailAlreadyExists,
		},
		{
			name: "username constraint",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectExec(`INSERT INTO users`).
					WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
					WillReturnError(&pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: "users_username_key"})
			},
			wantErr: repository.ErrUsernameAlreadyExists,
		},
		{
			name: "unknown unique constraint",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectExec(`INSERT INTO users`).
					WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
					WillReturnError(&pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: "users_pkey"})
			},
			wantErr: repository.ErrUserAlreadyExists,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, err := pgxmock.NewPool()
			require.NoError(t, err)
			defer mock.Close()

			tt.setupMock(mock)

			err = repository.NewPgRepository(mock).Create(context.Background(), user)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
			}

			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestPgRepository_CreateInfrastructureError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	cause := errors.New("connection reset by peer")
	mock.ExpectExec(`INSERT INTO users`).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnError(cause)

	err = repository.NewPgRepository(mock).Create(context.Background(), domain.User{ID: "id", Email: "a@b.c", Username: "abc"})
	require.Error(t, err)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, repository.ErrUserAlreadyExists)
}

func TestPgRepository_FindByEmail(t *testing.T) {
	created := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("found with nullable columns", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		rows := pgxmock.NewRows(userColumns).
			AddRow("id-1", "alice@example.com", "alice", (*string)(nil), strPtr("$2a$12$hash"), created)
		mock.ExpectQuery(`SELECT id, email, username, display_name, password_hash, created_at FROM users WHERE email = \$1`).
			WithArgs("alice@example.com").
			WillReturnRows(rows)

		user, err := repository.NewPgRepository(mock).FindByEmail(context.Background(), " ALICE@example.com")
		require.NoError(t, err)
		assert.Equal(t, domain.ID("id-1"), user.ID)
		assert.Empty(t, user.DisplayName)
		assert.Equal(t, "alice", user.Name())
		assert.True(t, user.HasPassword())
		assert.Equal(t, created, user.CreatedAt)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectQuery(`FROM users WHERE email = \$1`).
			WithArgs("nobody@example.com").
			WillReturnRows(pgxmock.NewRows(userColumns))

		_, err = repository.NewPgRepository(mock).FindByEmail(context.Background(), "nobody@example.com")
		assert.ErrorIs(t, err, repository.ErrUserNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPgRepository_FindByEmailOrUsername(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	rows := pgxmock.NewRows(userColumns).
		AddRow("id-2", "other@example.com", "bob", strPtr("Bob"), strPtr("$2a$12$hash"), time.Now())
	mock.ExpectQuery(`WHERE email = \$1 OR username = \$2`).
		WithArgs("new@example.com", "bob").
		WillReturnRows(rows)

	user, err := repository.NewPgRepository(mock).FindByEmailOrUsername(context.Background(), "New@Example.com", " bob")
	require.NoError(t, err)
	assert.Equal(t, "Bob", user.Name())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPgRepository_FindByIDQueryError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(`WHERE id = \$1`).
		WithArgs("id-3").
		WillReturnError(errors.New("statement timeout"))

	_, err = repository.NewPgRepository(mock).FindByID(context.Background(), "id-3")
	require.Error(t, err)
	assert.NotErrorIs(t, err, repository.ErrUserNotFound)
	assert.Contains(t, err.Error(), "statement timeout")
}
