package http

import (
	"net/http"
	"time"

	"github.com/AlibekovAA/credauth/internal/common/constants"
)

var sessionCookieNames = []string{constants.SecureSessionCookieName, constants.SessionCookieName}

// sessionCookieName is __Secure- prefixed when the request arrived over TLS.
func sessionCookieName(r *http.Request) string {
	if r.TLS != nil {
		return constants.SecureSessionCookieName
	}
	return constants.SessionCookieName
}

func setSessionCookie(w http.ResponseWriter, r *http.Request, token string, expiresAt time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName(r),
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   r.TLS != nil,
	})
}

func clearSessionCookie(w http.ResponseWriter, r *http.Request) {
	for _, name := range sessionCookieNames {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			Expires:  time.Unix(0, 0),
			MaxAge:   -1,
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
			Secure:   name == constants.SecureSessionCookieName || r.TLS != nil,
		})
	}
}
