package http

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	authdomain "github.com/AlibekovAA/credauth/internal/auth/domain"
	"github.com/AlibekovAA/credauth/internal/auth/service"
	authdto "github.com/AlibekovAA/credauth/internal/auth/service/dto"
	"github.com/AlibekovAA/credauth/internal/common/constants"
	commonhttp "github.com/AlibekovAA/credauth/internal/common/http"
	"github.com/AlibekovAA/credauth/internal/common/jwtverify"
	"github.com/AlibekovAA/credauth/internal/common/logger"
)

type Registrar interface {
	Register(ctx context.Context, input service.RegisterInput) (authdto.RegisteredUser, error)
}

type CredentialChecker interface {
	Authorize(ctx context.Context, email, password string) (authdomain.Identity, bool, error)
}

type SessionManager interface {
	Issue(ctx context.Context, identity authdomain.Identity) (service.Token, error)
	Refresh(ctx context.Context, claims jwtverify.Claims) (service.Token, error)
	Parse(token string) (jwtverify.Claims, error)
	Session(claims jwtverify.Claims) authdomain.SessionView
}

type Options struct {
	SignInPath     string
	ProtectedPath  string
	RequestTimeout time.Duration

	// Verbose logs the causes of internal errors.
	Verbose bool

	DB commonhttp.Pinger
}

type Handler struct {
	registrar Registrar
	checker   CredentialChecker
	sessions  SessionManager
	errors    *commonhttp.ErrorHandler
	opts      Options
	log       *logger.Logger
}

func NewHandler(
	registrar Registrar,
	checker CredentialChecker,
	sessions SessionManager,
	opts Options,
	log *logger.Logger,
) http.Handler {
	if opts.SignInPath == "" {
		opts.SignInPath = constants.DefaultSignInPath
	}
	if opts.ProtectedPath == "" {
		opts.ProtectedPath = constants.DefaultProtectedPath
	}

	h := &Handler{
		registrar: registrar,
		checker:   checker,
		sessions:  sessions,
		errors:    commonhttp.NewErrorHandler(log, opts.Verbose),
		opts:      opts,
		log:       log,
	}

	post := commonhttp.RequireMethod(http.MethodPost)
	get := commonhttp.RequireMethod(http.MethodGet)
	timeout := commonhttp.WithTimeout(opts.RequestTimeout)

	protected := jwtverify.Middleware(
		jwtverify.CookieExtractor(sessionCookieNames...),
		sessions.Parse,
		h.redirectToSignIn,
		log,
	)

	mux := http.NewServeMux()
	mux.HandleFunc("/health", commonhttp.HealthHandler(log, opts.DB))
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/api/register", post(timeout(h.register)))
	mux.HandleFunc("/api/auth/callback/credentials", post(timeout(h.signIn)))
	mux.HandleFunc("/api/auth/session", get(timeout(h.session)))
	mux.HandleFunc("/api/auth/signout", post(h.signOut))
	mux.Handle(opts.ProtectedPath, protected(get(h.protectedPage)))
	return mux
}
