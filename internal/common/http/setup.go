package http

import (
	"net/http"

	"github.com/AlibekovAA/credauth/internal/common/constants"
	"github.com/AlibekovAA/credauth/internal/common/httpmetrics"
	"github.com/AlibekovAA/credauth/internal/common/logger"
)

// BuildBaseHandler wraps handler with the middleware every service shares.
// Trace ids are assigned before recovery so panics are logged with one.
func BuildBaseHandler(appName string, log *logger.Logger, handler http.Handler) http.Handler {
	metrics := httpmetrics.New(appName)
	recovery := RecoveryMiddleware(log)
	traceID := TraceIDMiddleware
	maxRequestSize := MaxRequestSizeMiddleware(constants.DefaultMaxRequestSize)
	securityHeaders := SecurityHeadersMiddleware
	csp := ContentSecurityPolicyMiddleware("")

	return securityHeaders(csp(traceID(recovery(maxRequestSize(metrics.Wrap(handler))))))
}
