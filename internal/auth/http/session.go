package http

import (
	"net/http"

	commonhttp "github.com/AlibekovAA/credauth/internal/common/http"
	"github.com/AlibekovAA/credauth/internal/common/jwtverify"
	"github.com/AlibekovAA/credauth/internal/common/logger"
)

type signOutResponse struct {
	URL string `json:"url"`
}

// session serves the session view and slides the cookie expiry forward.
// Without a valid session the body is an empty object.
func (h *Handler) session(w http.ResponseWriter, r *http.Request) {
	raw := jwtverify.CookieExtractor(sessionCookieNames...)(r)
	if raw == "" {
		commonhttp.WriteJSON(w, http.StatusOK, struct{}{})
		return
	}

	claims, err := h.sessions.Parse(raw)
	if err != nil {
		h.log.WithFields(r.Context(), logger.Fields{
			"action": "session_parse",
		}).Debugf("session token rejected: %v", err)
		clearSessionCookie(w, r)
		commonhttp.WriteJSON(w, http.StatusOK, struct{}{})
		return
	}

	token, err := h.sessions.Refresh(r.Context(), claims)
	if err != nil {
		h.errors.HandleError(w, r, err)
		return
	}
	setSessionCookie(w, r, token.Value, token.ExpiresAt)

	commonhttp.WriteJSON(w, http.StatusOK, h.sessions.Session(token.Claims))
}

func (h *Handler) signOut(w http.ResponseWriter, r *http.Request) {
	clearSessionCookie(w, r)
	commonhttp.WriteJSON(w, http.StatusOK, signOutResponse{URL: h.opts.SignInPath})
}

func (h *Handler) protectedPage(w http.ResponseWriter, r *http.Request) {
	claims, ok := jwtverify.FromContext(r.Context())
	if !ok {
		h.redirectToSignIn(w, r)
		return
	}
	commonhttp.WriteJSON(w, http.StatusOK, h.sessions.Session(claims))
}
