package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"

	"github.com/AlibekovAA/credauth/internal/common/constants"
)

var (
	ErrMissingRequiredEnv = errors.New("missing required environment variable")
	ErrInvalidJWTSecret   = errors.New("JWT_SECRET must be at least 32 bytes")
	ErrInvalidPath        = errors.New("path must start with a single '/'")
)

const configFileFlag = "config"

type AuthConfig struct {
	HTTPPort       string        `koanf:"http_port"`
	DatabaseURL    string        `koanf:"database_url"`
	JWTSecret      string        `koanf:"jwt_secret"`
	RequestTimeout time.Duration `koanf:"request_timeout"`
	SessionMaxAge  time.Duration `koanf:"session_max_age"`
	SignInPath     string        `koanf:"sign_in_path"`
	ProtectedPath  string        `koanf:"protected_path"`
	Environment    string        `koanf:"env"`
	LogDir         string        `koanf:"log_dir"`
	LogLevel       string        `koanf:"log_level"`
	AutoMigrate    bool          `koanf:"auto_migrate"`
}

type ClientConfig struct {
	BaseURL       string        `koanf:"base_url"`
	Timeout       time.Duration `koanf:"timeout"`
	ProtectedPath string        `koanf:"protected_path"`
}

var authEnv = map[string]string{
	"AUTH_HTTP_PORT":       "http_port",
	"DATABASE_URL":         "database_url",
	"JWT_SECRET":           "jwt_secret",
	"AUTH_REQUEST_TIMEOUT": "request_timeout",
	"SESSION_MAX_AGE":      "session_max_age",
	"SIGN_IN_PATH":         "sign_in_path",
	"PROTECTED_PATH":       "protected_path",
	"APP_ENV":              "env",
	"LOG_DIR":              "log_dir",
	"LOG_LEVEL":            "log_level",
	"AUTO_MIGRATE":         "auto_migrate",
}

var clientEnv = map[string]string{
	"CREDAUTH_URL":   "base_url",
	"CLIENT_TIMEOUT": "timeout",
	"PROTECTED_PATH": "protected_path",
}

// RegisterAuthFlags declares the server flags. Flag defaults are the config defaults.
func RegisterAuthFlags(fs *pflag.FlagSet) {
	fs.String(configFileFlag, "", "path to a YAML config file")
	fs.String("http-port", constants.DefaultAuthHTTPPort, "HTTP listen port")
	fs.String("database-url", "", "PostgreSQL connection string")
	fs.String("jwt-secret", "", "HMAC secret for session tokens (>= 32 bytes)")
	fs.Duration("request-timeout", constants.DefaultAuthRequestTimeout, "per-request handler timeout")
	fs.Duration("session-max-age", constants.DefaultSessionMaxAge, "session token lifetime")
	fs.String("sign-in-path", constants.DefaultSignInPath, "page unauthenticated users are redirected to")
	fs.String("protected-path", constants.DefaultProtectedPath, "page that requires a session")
	fs.String("env", constants.DefaultAppEnv, "deployment environment (development, production, ...)")
	fs.String("log-dir", "", "directory for rotated log files; stdout only when empty")
	fs.String("log-level", "info", "log level")
	fs.Bool("auto-migrate", false, "apply pending migrations before serving")
}

func RegisterClientFlags(fs *pflag.FlagSet) {
	fs.String(configFileFlag, "", "path to a YAML config file")
	fs.String("base-url", constants.DefaultClientBaseURL, "auth service base URL")
	fs.Duration("timeout", constants.DefaultClientTimeout, "registration request timeout")
	fs.String("protected-path", constants.DefaultProtectedPath, "page to open after sign-in")
}

func LoadAuthConfig(fs *pflag.FlagSet) (AuthConfig, error) {
	if fs == nil {
		fs = pflag.NewFlagSet("auth", pflag.ContinueOnError)
		RegisterAuthFlags(fs)
	}

	k, err := load(fs, authEnv)
	if err != nil {
		return AuthConfig{}, err
	}

	var cfg AuthConfig
	if err := k.Unmarshal("", &cfg); err != nil {
		return AuthConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}

	if err := validatePath(cfg.SignInPath); err != nil {
		return AuthConfig{}, fmt.Errorf("sign_in_path: %w", err)
	}
	if err := validatePath(cfg.ProtectedPath); err != nil {
		return AuthConfig{}, fmt.Errorf("protected_path: %w", err)
	}

	return cfg, nil
}

func LoadClientConfig(fs *pflag.FlagSet) (ClientConfig, error) {
	if fs == nil {
		fs = pflag.NewFlagSet("client", pflag.ContinueOnError)
		RegisterClientFlags(fs)
	}

	k, err := load(fs, clientEnv)
	if err != nil {
		return ClientConfig{}, err
	}

	var cfg ClientConfig
	if err := k.Unmarshal("", &cfg); err != nil {
		return ClientConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.Timeout <= 0 {
		cfg.Timeout = constants.DefaultClientTimeout
	}

	return cfg, nil
}

// ValidateForServe checks the values the HTTP server cannot start without.
func (c AuthConfig) ValidateForServe() error {
	if err := c.RequireDatabase(); err != nil {
		return err
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("%w: %s", ErrMissingRequiredEnv, "JWT_SECRET")
	}
	return validateJWTSecret(c.JWTSecret)
}

func (c AuthConfig) RequireDatabase() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("%w: %s", ErrMissingRequiredEnv, "DATABASE_URL")
	}
	return nil
}

// IsDevelopment reports whether internal error detail may be logged.
func (c AuthConfig) IsDevelopment() bool {
	switch strings.ToLower(strings.TrimSpace(c.Environment)) {
	case "development", "dev", "local", "test":
		return true
	default:
		return false
	}
}

func load(fs *pflag.FlagSet, env map[string]string) (*koanf.Koanf, error) {
	k := koanf.New(".")

	path, _ := fs.GetString(configFileFlag)
	if path == "" {
		path = getEnv("CREDAUTH_CONFIG", "")
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	for name, key := range env {
		if v, ok := os.LookupEnv(name); ok && v != "" {
			if err := k.Set(key, v); err != nil {
				return nil, fmt.Errorf("failed to apply %s: %w", name, err)
			}
		}
	}

	provider := posflag.ProviderWithFlag(fs, ".", k, func(f *pflag.Flag) (string, interface{}) {
		return strings.ReplaceAll(f.Name, "-", "_"), posflag.FlagVal(fs, f)
	})
	if err := k.Load(provider, nil); err != nil {
		return nil, fmt.Errorf("failed to load flags: %w", err)
	}

	return k, nil
}

func validateJWTSecret(secret string) error {
	if len(secret) < constants.JWTSecretMinLength {
		return fmt.Errorf("%w: got %d bytes", ErrInvalidJWTSecret, len(secret))
	}
	return nil
}

func validatePath(p string) error {
	if !strings.HasPrefix(p, "/") || strings.HasPrefix(p, "//") {
		return fmt.Errorf("%w: %q", ErrInvalidPath, p)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return fallback
}
