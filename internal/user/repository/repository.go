package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/samber/oops"

	"github.com/AlibekovAA/credauth/internal/common/db"
	commonerrors "github.com/AlibekovAA/credauth/internal/common/errors"
	"github.com/AlibekovAA/credauth/internal/user/domain"
)

const (
	usersTable = "users"

	emailConstraint    = "users_email_key"
	usernameConstraint = "users_username_key"
)

var (
	ErrUserNotFound          = commonerrors.ErrUserNotFound
	ErrUserAlreadyExists     = errors.New("user already exists")
	ErrEmailAlreadyExists    = errors.New("email already exists")
	ErrUsernameAlreadyExists = errors.New("username already exists")
)

type Repository interface {
	Create(ctx context.Context, user domain.User) error
	FindByEmail(ctx context.Context, email string) (domain.User, error)
	FindByEmailOrUsername(ctx context.Context, email, username string) (domain.User, error)
	FindByID(ctx context.Context, id domain.ID) (domain.User, error)
}

// Querier is the subset of *pgxpool.Pool the repository needs.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type PgRepository struct {
	db Querier
}

func NewPgRepository(db Querier) *PgRepository {
	return &PgRepository{db: db}
}

const selectUser = `SELECT id, email, username, display_name, password_hash, created_at FROM users`

// Create inserts user. A unique violation is reported as the matching
// Err*AlreadyExists sentinel; the constraint decides, not any earlier read.
func (r *PgRepository) Create(ctx context.Context, user domain.User) error {
	start := time.Now()
	_, err := r.db.Exec(
		ctx,
		`INSERT INTO users (id, email, username, display_name, password_hash, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		string(user.ID),
		domain.NormalizeEmail(user.Email),
		domain.NormalizeUsername(user.Username),
		nullable(user.DisplayName),
		nullable(user.PasswordHash),
		user.CreatedAt,
	)
	if constraint, ok := db.UniqueViolation(err); ok {
		db.MeasureQueryDuration(usersTable, "create user", start)
		switch constraint {
		case emailConstraint:
			return ErrEmailAlreadyExists
		case usernameConstraint:
			return ErrUsernameAlreadyExists
		default:
			return ErrUserAlreadyExists
		}
	}
	if err := db.HandleExecError(err, usersTable, "create user", start); err != nil {
		return oops.In("user_repository").With("user_id", string(user.ID)).Wrap(err)
	}
	return nil
}

func (r *PgRepository) FindByEmail(ctx context.Context, email string) (domain.User, error) {
	return r.findOne(ctx, "find user by email", selectUser+` WHERE email = $1`, domain.NormalizeEmail(email))
}

// FindByEmailOrUsername returns any user holding either value.
func (r *PgRepository) FindByEmailOrUsername(ctx context.Context, email, username string) (domain.User, error) {
	return r.findOne(
		ctx,
		"find user by email or username",
		selectUser+` WHERE email = $1 OR username = $2 LIMIT 1`,
		domain.NormalizeEmail(email),
		domain.NormalizeUsername(username),
	)
}

func (r *PgRepository) FindByID(ctx context.Context, id domain.ID) (domain.User, error) {
	return r.findOne(ctx, "find user by id", selectUser+` WHERE id = $1`, string(id))
}

func (r *PgRepository) findOne(ctx context.Context, operation, query string, args ...any) (domain.User, error) {
	start := time.Now()
	row := r.db.QueryRow(ctx, query, args...)

	var (
		user         domain.User
		displayName  *string
		passwordHash *string
	)
	err := row.Scan(&user.ID, &user.Email, &user.Username, &displayName, &passwordHash, &user.CreatedAt)
	if err := db.HandleQueryError(err, ErrUserNotFound, usersTable, operation, start); err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return domain.User{}, err
		}
		return domain.User{}, oops.In("user_repository").With("operation", operation).Wrap(err)
	}

	if displayName != nil {
		user.DisplayName = *displayName
	}
	if passwordHash != nil {
		user.PasswordHash = *passwordHash
	}
	return user, nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
