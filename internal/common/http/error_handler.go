package http

import (
	"net/http"
	"strconv"

	commonerrors "github.com/AlibekovAA/credauth/internal/common/errors"
	"github.com/AlibekovAA/credauth/internal/common/httpmetrics"
	"github.com/AlibekovAA/credauth/internal/common/logger"
	"github.com/AlibekovAA/credauth/internal/observability/metrics"
)

type ErrorHandler struct {
	log *logger.Logger
	// verbose enables logging of error causes. Off outside development
	// environments so storage and driver messages stay out of shared logs.
	verbose bool
}

func NewErrorHandler(log *logger.Logger, verbose bool) *ErrorHandler {
	return &ErrorHandler{log: log, verbose: verbose}
}

func (h *ErrorHandler) HandleError(w http.ResponseWriter, r *http.Request, err error) {
	if err == nil {
		return
	}

	if domainErr, ok := commonerrors.AsDomainError(err); ok {
		h.handleDomainError(w, r, domainErr)
		return
	}

	ctx := r.Context()
	traceID := TraceIDFromContext(ctx)

	entry := h.log.WithFields(ctx, logger.Fields{
		"action": "unhandled_error",
		"path":   r.URL.Path,
	})
	if h.verbose {
		entry.Errorf("unhandled error: %v", err)
	} else {
		entry.Error("unhandled error")
	}

	metrics.HTTPErrorsTotal.WithLabelValues(
		strconv.Itoa(http.StatusInternalServerError),
		httpmetrics.NormalizePath(r.URL.Path),
		r.Method,
	).Inc()

	WriteErrorEnvelope(w, http.StatusInternalServerError, CodeInternal, "internal server error", nil, traceID)
}

func (h *ErrorHandler) handleDomainError(w http.ResponseWriter, r *http.Request, err commonerrors.DomainError) {
	ctx := r.Context()
	traceID := TraceIDFromContext(ctx)

	domainErr := err
	if traceID != "" && err.TraceID() == "" {
		domainErr = err.WithTraceID(traceID)
	}

	status := domainErr.HTTPStatus()

	entry := h.log.WithFields(ctx, logger.Fields{
		"error_code": domainErr.Code(),
		"category":   string(domainErr.Category()),
		"status":     status,
		"action":     "domain_error",
	})
	switch {
	case status >= http.StatusInternalServerError && h.verbose:
		entry.Errorf("domain error: %s", domainErr.Error())
	case status >= http.StatusInternalServerError:
		entry.Error("domain error")
	case h.log.ShouldLog(logger.DEBUG):
		entry.Debugf("domain error: %s", domainErr.Message())
	}

	metrics.DomainErrorsTotal.WithLabelValues(
		string(domainErr.Category()),
		domainErr.Code(),
		strconv.Itoa(status),
	).Inc()

	metrics.HTTPErrorsTotal.WithLabelValues(
		strconv.Itoa(status),
		httpmetrics.NormalizePath(r.URL.Path),
		r.Method,
	).Inc()

	WriteErrorEnvelope(w, status, domainErr.Code(), domainErr.Message(), domainErr.Details(), domainErr.TraceID())
}
