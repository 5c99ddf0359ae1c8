package service

import (
	"time"

	"github.com/AlibekovAA/credauth/internal/observability/metrics"
)

const (
	resultSuccess  = "success"
	resultInvalid  = "invalid"
	resultConflict = "conflict"
	resultRejected = "rejected"
	resultError    = "error"
)

func recordRegistration(result string) {
	metrics.RegistrationsTotal.WithLabelValues(result).Inc()
}

func recordCredentialCheck(result string) {
	metrics.CredentialChecksTotal.WithLabelValues(result).Inc()
}

func observePasswordHash(start time.Time) {
	metrics.PasswordHashDurationSeconds.Observe(time.Since(start).Seconds())
}

func incrementSessionTokensIssued(origin string) {
	metrics.SessionTokensIssued.WithLabelValues(origin).Inc()
}
