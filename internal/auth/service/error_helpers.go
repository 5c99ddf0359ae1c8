package service

import (
	"errors"
	"net/http"

	commonerrors "github.com/AlibekovAA/credauth/internal/common/errors"
)

// newValidationError keeps the VALIDATION_FAILED code, so errors.Is(err,
// ErrValidation) holds, while carrying a field-specific message.
func newValidationError(message string, fields map[string]string) commonerrors.DomainError {
	err := commonerrors.NewDomainError(
		ErrValidation.Code(),
		commonerrors.CategoryValidation,
		http.StatusBadRequest,
		message,
	)
	if len(fields) > 0 {
		details := make(map[string]any, len(fields))
		for k, v := range fields {
			details[k] = v
		}
		err = err.WithDetails(map[string]any{"fields": details})
	}
	return err
}

// newInternalError hides cause behind INTERNAL_ERROR. An open circuit is
// passed through as 503.
func newInternalError(cause error) commonerrors.DomainError {
	if errors.Is(cause, commonerrors.ErrCircuitOpen) {
		return commonerrors.ErrCircuitOpen
	}
	return commonerrors.ErrInternalError.WithCause(cause)
}
