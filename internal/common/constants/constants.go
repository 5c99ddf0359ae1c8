package constants

import "time"

const (
	UsernameMinLength    = 3
	UsernameMaxLength    = 32
	PasswordMinLength    = 8
	PasswordMaxLength    = 72
	DisplayNameMaxLength = 64
	EmailMaxLength       = 254
	JWTSecretMinLength   = 32

	BcryptCost = 12

	DefaultMaxRequestSize = 1 << 20

	DBPoolMaxConns        = 25
	DBPoolMinConns        = 5
	DBPoolConnMaxLifetime = time.Hour
	DBPoolConnMaxIdleTime = 30 * time.Minute
	DBPoolHealthCheck     = 1 * time.Minute
	DBPoolConnectTimeout  = 5 * time.Second
	DBPoolMaxAttempts     = 10
	DBPoolRetryDelay      = 1 * time.Second
	DBPoolMaxRetryDelay   = 5 * time.Second
	DBPoolMetricsInterval = 30 * time.Second
	DBQueryTimeout        = 30 * time.Second

	DBCircuitBreakerThreshold  = 5
	DBCircuitBreakerResetAfter = 30 * time.Second

	ServerReadHeaderTimeout = 10 * time.Second
	ServerReadTimeout       = 30 * time.Second
	ServerWriteTimeout      = 30 * time.Second
	ServerIdleTimeout       = 120 * time.Second
	ServerMaxHeaderBytes    = 1 << 16

	ShutdownTimeout = 30 * time.Second
	DrainTimeout    = 10 * time.Second

	DefaultAuthHTTPPort       = "8081"
	DefaultAuthRequestTimeout = 5 * time.Second
	DefaultSessionMaxAge      = 30 * 24 * time.Hour
	DefaultSignInPath         = "/login"
	DefaultProtectedPath      = "/dashboard"
	DefaultAppEnv             = "production"

	DefaultClientBaseURL = "http://localhost:8081"
	DefaultClientTimeout = 10 * time.Second

	SessionCookieName       = "credauth.session-token"
	SecureSessionCookieName = "__Secure-credauth.session-token"

	LoggerMaxSize    = 100
	LoggerMaxBackups = 3
	LoggerMaxAge     = 28
)

type TraceIDKeyType string

const TraceIDKey TraceIDKeyType = "trace_id"
