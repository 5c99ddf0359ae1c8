package http

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	commonerrors "github.com/AlibekovAA/credauth/internal/common/errors"
	commonhttp "github.com/AlibekovAA/credauth/internal/common/http"
	"github.com/AlibekovAA/credauth/internal/common/logger"
)

// CredentialsSignin is the error reported for every rejected sign-in.
const CredentialsSignin = "CredentialsSignin"

type signInRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	Redirect    *bool  `json:"redirect"`
	CallbackURL string `json:"callbackUrl"`
}

type signInResponse struct {
	OK    bool   `json:"ok"`
	URL   string `json:"url,omitempty"`
	Error string `json:"error,omitempty"`
}

// signIn accepts a JSON or form body. With redirect=false it answers with
// JSON, otherwise with a 302 to the callback or back to the sign-in page.
func (h *Handler) signIn(w http.ResponseWriter, r *http.Request) {
	req, err := h.decodeSignIn(r)
	if err != nil {
		h.errors.HandleError(w, r, err)
		return
	}
	redirect := req.Redirect == nil || *req.Redirect

	identity, ok, err := h.checker.Authorize(r.Context(), req.Email, req.Password)
	if err != nil {
		h.errors.HandleError(w, r, err)
		return
	}
	if !ok {
		if redirect {
			http.Redirect(w, r, h.opts.SignInPath+"?error="+CredentialsSignin, http.StatusFound)
			return
		}
		commonhttp.WriteJSON(w, http.StatusUnauthorized, signInResponse{OK: false, Error: CredentialsSignin})
		return
	}

	token, err := h.sessions.Issue(r.Context(), identity)
	if err != nil {
		h.errors.HandleError(w, r, err)
		return
	}
	setSessionCookie(w, r, token.Value, token.ExpiresAt)

	h.log.WithFields(r.Context(), logger.Fields{
		"user_id": identity.ID,
		"action":  "sign_in",
	}).Info("session issued")

	target := commonhttp.SafeRedirectPath(req.CallbackURL, h.opts.ProtectedPath)
	if redirect {
		http.Redirect(w, r, target, http.StatusFound)
		return
	}
	commonhttp.WriteJSON(w, http.StatusOK, signInResponse{OK: true, URL: target})
}

func (h *Handler) decodeSignIn(r *http.Request) (signInRequest, error) {
	var req signInRequest
	if commonhttp.IsJSONRequest(r) {
		err := commonhttp.DecodeJSON(r, &req)
		return req, err
	}

	if err := r.ParseForm(); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return req, commonerrors.ErrRequestTooLarge.WithCause(err)
		}
		return req, commonerrors.ErrInvalidJSON.WithCause(err)
	}
	req.Email = r.PostForm.Get("email")
	req.Password = r.PostForm.Get("password")
	req.CallbackURL = r.PostForm.Get("callbackUrl")
	if v := r.PostForm.Get("redirect"); v != "" {
		redirect := !strings.EqualFold(v, "false")
		req.Redirect = &redirect
	}
	return req, nil
}

func (h *Handler) redirectToSignIn(w http.ResponseWriter, r *http.Request) {
	target := h.opts.SignInPath + "?callbackUrl=" + url.QueryEscape(r.URL.RequestURI())
	http.Redirect(w, r, target, http.StatusFound)
}
