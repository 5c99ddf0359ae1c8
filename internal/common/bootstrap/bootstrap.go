package bootstrap

import (
	"context"
	"fmt"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"

	authhttp "github.com/AlibekovAA/credauth/internal/auth/http"
	authservice "github.com/AlibekovAA/credauth/internal/auth/service"
	"github.com/AlibekovAA/credauth/internal/common/clock"
	"github.com/AlibekovAA/credauth/internal/common/config"
	"github.com/AlibekovAA/credauth/internal/common/constants"
	commoncrypto "github.com/AlibekovAA/credauth/internal/common/crypto"
	"github.com/AlibekovAA/credauth/internal/common/db"
	commonhttp "github.com/AlibekovAA/credauth/internal/common/http"
	"github.com/AlibekovAA/credauth/internal/common/logger"
	"github.com/AlibekovAA/credauth/internal/common/resilience"
	userrepo "github.com/AlibekovAA/credauth/internal/user/repository"
)

const authServiceName = "auth"

type AuthApp struct {
	Config        config.AuthConfig
	Log           *logger.Logger
	Pool          *pgxpool.Pool
	UserRepo      userrepo.Repository
	AuthService   *authservice.AuthService
	Authenticator *authservice.Authenticator
	Sessions      *authservice.SessionIssuer
	Handler       http.Handler
}

// NewAuthApp wires the auth service. Background work it starts (pool
// metrics) stops when ctx is done.
func NewAuthApp(ctx context.Context, cfg config.AuthConfig) (*AuthApp, error) {
	if err := cfg.ValidateForServe(); err != nil {
		return nil, err
	}

	log, err := NewLogger(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	if cfg.AutoMigrate {
		if err := MigrateUp(cfg.DatabaseURL, log); err != nil {
			_ = log.Close()
			return nil, err
		}
	}

	pool, err := db.NewPool(ctx, log, cfg.DatabaseURL)
	if err != nil {
		_ = log.Close()
		return nil, err
	}
	db.StartPoolMetrics(ctx, pool, constants.DBPoolMetricsInterval)

	clk := clock.NewRealClock()
	hasher := commoncrypto.NewBcryptHasher()
	idGenerator := commoncrypto.NewUUIDGenerator()
	users := userrepo.NewGuardedRepository(
		userrepo.NewPgRepository(pool),
		resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{
			Name:       "user_store",
			Threshold:  constants.DBCircuitBreakerThreshold,
			Timeout:    constants.DBQueryTimeout,
			ResetAfter: constants.DBCircuitBreakerResetAfter,
			IsFailure:  userrepo.IsStoreFailure,
			Clock:      clk,
			Logger:     log,
		}),
	)

	auth := authservice.NewAuthService(users, hasher, idGenerator, clk, log)
	authenticator := authservice.NewAuthenticator(users, hasher, log)
	sessions := authservice.NewSessionIssuer(cfg.JWTSecret, idGenerator, cfg.SessionMaxAge, clk)

	routes := authhttp.NewHandler(auth, authenticator, sessions, authhttp.Options{
		SignInPath:     cfg.SignInPath,
		ProtectedPath:  cfg.ProtectedPath,
		RequestTimeout: cfg.RequestTimeout,
		Verbose:        cfg.IsDevelopment(),
		DB:             pool,
	}, log)

	log.WithFields(ctx, logger.Fields{
		"action": "bootstrap",
		"env":    cfg.Environment,
	}).Infof("auth service configured (sign-in path %s, protected path %s)", cfg.SignInPath, cfg.ProtectedPath)

	return &AuthApp{
		Config:        cfg,
		Log:           log,
		Pool:          pool,
		UserRepo:      users,
		AuthService:   auth,
		Authenticator: authenticator,
		Sessions:      sessions,
		Handler:       commonhttp.BuildBaseHandler(authServiceName, log, routes),
	}, nil
}

func (a *AuthApp) Close() {
	a.Pool.Close()
	_ = a.Log.Close()
}

func NewLogger(cfg config.AuthConfig) (*logger.Logger, error) {
	return logger.New(cfg.LogDir, authServiceName, cfg.LogLevel)
}

// MigrateUp applies pending schema migrations.
func MigrateUp(databaseURL string, log *logger.Logger) error {
	m, err := db.NewMigrator(databaseURL)
	if err != nil {
		return err
	}
	defer func() {
		if err := m.Close(); err != nil {
			log.Warnf("failed to close migrator: %v", err)
		}
	}()

	if err := m.Up(); err != nil {
		return err
	}
	version, dirty, err := m.Version()
	if err != nil {
		return err
	}
	log.Infof("database schema at version %d (dirty=%t)", version, dirty)
	return nil
}
