package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	authdto "github.com/AlibekovAA/credauth/internal/auth/service/dto"
	"github.com/AlibekovAA/credauth/internal/auth/service/mapper"
	"github.com/AlibekovAA/credauth/internal/common/clock"
	commoncrypto "github.com/AlibekovAA/credauth/internal/common/crypto"
	"github.com/AlibekovAA/credauth/internal/common/logger"
	userdomain "github.com/AlibekovAA/credauth/internal/user/domain"
	userrepo "github.com/AlibekovAA/credauth/internal/user/repository"
)

const tracerName = "github.com/AlibekovAA/credauth/internal/auth/service"

type AuthService struct {
	repo        userrepo.Repository
	hasher      commoncrypto.PasswordHasher
	idGenerator commoncrypto.IDGenerator
	validator   CredentialValidator
	clock       clock.Clock
	tracer      trace.Tracer
	log         *logger.Logger
}

func NewAuthService(
	repo userrepo.Repository,
	hasher commoncrypto.PasswordHasher,
	idGenerator commoncrypto.IDGenerator,
	clk clock.Clock,
	log *logger.Logger,
) *AuthService {
	return &AuthService{
		repo:        repo,
		hasher:      hasher,
		idGenerator: idGenerator,
		validator:   NewCredentialValidator(),
		clock:       clk,
		tracer:      otel.Tracer(tracerName),
		log:         log,
	}
}

type RegisterInput struct {
	Email       string
	Username    string
	Password    string
	DisplayName string
}

func (in RegisterInput) normalized() RegisterInput {
	in.Email = userdomain.NormalizeEmail(in.Email)
	in.Username = userdomain.NormalizeUsername(in.Username)
	in.DisplayName = strings.TrimSpace(in.DisplayName)
	return in
}

// Register creates an account. It fails with ErrValidation for bad input,
// ErrUserExists when the email or username is taken, and an INTERNAL_ERROR
// domain error for anything else.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (authdto.RegisteredUser, error) {
	ctx, span := s.tracer.Start(ctx, "AuthService.Register")
	defer span.End()

	input = input.normalized()
	span.SetAttributes(attribute.String("user.username", input.Username))

	s.log.WithFields(ctx, logger.Fields{
		"username": input.Username,
		"action":   "register_attempt",
	}).Info("register attempt")

	if err := s.validator.Validate(input); err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"username": input.Username,
			"action":   "register_validation_failed",
		}).Warnf("register validation failed: %v", err)
		recordRegistration(resultInvalid)
		span.SetStatus(codes.Error, "validation failed")
		return authdto.RegisteredUser{}, err
	}

	_, err := s.repo.FindByEmailOrUsername(ctx, input.Email, input.Username)
	switch {
	case err == nil:
		s.log.WithFields(ctx, logger.Fields{
			"username": input.Username,
			"action":   "register_user_exists",
		}).Warn("register failed: already exists")
		recordRegistration(resultConflict)
		span.SetStatus(codes.Error, "conflict")
		return authdto.RegisteredUser{}, ErrUserExists
	case !errors.Is(err, userrepo.ErrUserNotFound):
		return authdto.RegisteredUser{}, s.registerFailed(ctx, span, input, "register_lookup_failed", err)
	}

	start := time.Now()
	hash, err := s.hasher.Hash(input.Password)
	observePasswordHash(start)
	if err != nil {
		return authdto.RegisteredUser{}, s.registerFailed(ctx, span, input, "register_hash_failed", err)
	}

	id, err := s.idGenerator.NewID()
	if err != nil {
		return authdto.RegisteredUser{}, s.registerFailed(ctx, span, input, "register_id_generation_failed", err)
	}

	user := userdomain.User{
		ID:           userdomain.ID(id),
		Email:        input.Email,
		Username:     input.Username,
		DisplayName:  input.DisplayName,
		PasswordHash: hash,
		CreatedAt:    s.clock.Now(),
	}

	if err := s.repo.Create(ctx, user); err != nil {
		if isDuplicateUser(err) {
			s.log.WithFields(ctx, logger.Fields{
				"username": input.Username,
				"action":   "register_constraint_conflict",
			}).Warnf("register failed: %v", err)
			recordRegistration(resultConflict)
			span.SetStatus(codes.Error, "conflict")
			return authdto.RegisteredUser{}, ErrUserExists.WithCause(err)
		}
		return authdto.RegisteredUser{}, s.registerFailed(ctx, span, input, "register_create_failed", err)
	}

	s.log.WithFields(ctx, logger.Fields{
		"username": user.Username,
		"user_id":  string(user.ID),
		"action":   "register_success",
	}).Info("register success")
	recordRegistration(resultSuccess)
	span.SetAttributes(attribute.String("user.id", string(user.ID)))

	return mapper.ToRegisteredUser(user), nil
}

func (s *AuthService) registerFailed(ctx context.Context, span trace.Span, input RegisterInput, action string, err error) error {
	s.log.WithFields(ctx, logger.Fields{
		"username": input.Username,
		"action":   action,
	}).Errorf("register failed: %v", err)
	recordRegistration(resultError)
	span.RecordError(err)
	span.SetStatus(codes.Error, action)
	return newInternalError(err)
}

func isDuplicateUser(err error) bool {
	return errors.Is(err, userrepo.ErrEmailAlreadyExists) ||
		errors.Is(err, userrepo.ErrUsernameAlreadyExists) ||
		errors.Is(err, userrepo.ErrUserAlreadyExists)
}
