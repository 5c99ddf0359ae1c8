package service

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/AlibekovAA/credauth/internal/common/constants"
	userdomain "github.com/AlibekovAA/credauth/internal/user/domain"
)

var usernameRegex = regexp.MustCompile(`^[A-Za-z0-9_.-]+$`)

type registration struct {
	Email       string `json:"email" validate:"required,storable,max=254,email"`
	Username    string `json:"username" validate:"required,storable,min=3,max=32,username"`
	Password    string `json:"password" validate:"required,storable,password_bytes"`
	DisplayName string `json:"displayName" validate:"storable,max=64"`
}

// CredentialValidator checks registration input before any storage access.
type CredentialValidator struct {
	v *validator.Validate
}

func NewCredentialValidator() CredentialValidator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})
	_ = v.RegisterValidation("storable", func(fl validator.FieldLevel) bool {
		return userdomain.IsStorable(fl.Field().String())
	})
	_ = v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return usernameRegex.MatchString(fl.Field().String())
	})
	// bcrypt only reads the first 72 bytes, so the limit is in bytes, not runes.
	_ = v.RegisterValidation("password_bytes", func(fl validator.FieldLevel) bool {
		n := len(fl.Field().String())
		return n >= constants.PasswordMinLength && n <= constants.PasswordMaxLength
	})
	return CredentialValidator{v: v}
}

// Validate reports missing fields first, then malformed ones.
func (cv CredentialValidator) Validate(input RegisterInput) error {
	if missing := missingFields(input); len(missing) > 0 {
		fields := make(map[string]string, len(missing))
		for _, f := range missing {
			fields[f] = "required"
		}
		return newValidationError(strings.Join(missing, ", ")+" required", fields)
	}

	err := cv.v.Struct(registration{
		Email:       input.Email,
		Username:    input.Username,
		Password:    input.Password,
		DisplayName: input.DisplayName,
	})
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return newInternalError(err)
	}

	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fe.Field()] = fe.Tag()
	}
	return newValidationError(describe(verrs[0]), fields)
}

func missingFields(input RegisterInput) []string {
	var missing []string
	if input.Email == "" {
		missing = append(missing, "email")
	}
	if input.Username == "" {
		missing = append(missing, "username")
	}
	if input.Password == "" {
		missing = append(missing, "password")
	}
	return missing
}

func describe(fe validator.FieldError) string {
	if fe.Tag() == "storable" {
		return fmt.Sprintf("%s contains invalid characters", fe.Field())
	}
	switch fe.Field() {
	case "email":
		return "email is invalid"
	case "username":
		if fe.Tag() == "username" {
			return "username may contain only letters, digits, '_', '.' and '-'"
		}
		return fmt.Sprintf("username must be %d to %d characters", constants.UsernameMinLength, constants.UsernameMaxLength)
	case "password":
		return fmt.Sprintf("password must be %d to %d bytes", constants.PasswordMinLength, constants.PasswordMaxLength)
	case "displayName":
		return fmt.Sprintf("display name must be at most %d characters", constants.DisplayNameMaxLength)
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}
