package http

import (
	"net/http"

	"github.com/AlibekovAA/credauth/internal/common/constants"
	commonerrors "github.com/AlibekovAA/credauth/internal/common/errors"
)

const (
	DefaultMaxRequestSize = constants.DefaultMaxRequestSize
)

func MaxRequestSizeMiddleware(maxBytes int64) func(http.Handler) http.Handler {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxRequestSize
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > maxBytes {
				err := commonerrors.ErrRequestTooLarge
				WriteErrorEnvelope(w, err.HTTPStatus(), err.Code(), err.Message(), nil, TraceIDFromContext(r.Context()))
				return
			}

			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			next.ServeHTTP(w, r)
		})
	}
}
