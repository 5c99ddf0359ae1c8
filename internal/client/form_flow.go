// Package client drives the sign-up form: register, sign in, then open the
// protected page with the session cookie.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"sync"
	"time"

	"github.com/AlibekovAA/credauth/internal/common/config"
	"github.com/AlibekovAA/credauth/internal/common/constants"
	"github.com/AlibekovAA/credauth/internal/common/logger"
)

const (
	MsgTimeout      = "Request timed out. Please try again."
	MsgNetwork      = "Network error. Please check your connection and try again."
	MsgServer       = "Something went wrong. Please try again later."
	MsgSignInFailed = "Account created, but signing in failed. Please sign in."

	registerPath = "/api/register"
	signInPath   = "/api/auth/callback/credentials"

	maxResponseSize = 1 << 20
)

type FormInput struct {
	Email       string
	Username    string
	Password    string
	DisplayName string
}

type RegisteredUser struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Username string `json:"username"`
}

// FormState is what a form renders. Error is empty on success.
type FormState struct {
	Loading bool
	Error   string
	User    *RegisteredUser
	// Location is the page the flow ended on after sign-in.
	Location   string
	PageStatus int
}

type Option func(*FormFlow)

// WithOnChange registers a callback that receives every state transition.
func WithOnChange(fn func(FormState)) Option {
	return func(f *FormFlow) { f.onChange = fn }
}

// WithTransport replaces the HTTP transport, keeping the cookie jar.
func WithTransport(rt http.RoundTripper) Option {
	return func(f *FormFlow) { f.http.Transport = rt }
}

type FormFlow struct {
	baseURL       *url.URL
	protectedPath string
	timeout       time.Duration
	http          *http.Client
	log           *logger.Logger
	onChange      func(FormState)

	mu    sync.Mutex
	state FormState
}

func NewFormFlow(cfg config.ClientConfig, log *logger.Logger, opts ...Option) (*FormFlow, error) {
	base, err := url.Parse(cfg.BaseURL)
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid base url %q", cfg.BaseURL)
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}

	f := &FormFlow{
		baseURL:       base,
		protectedPath: cfg.ProtectedPath,
		timeout:       cfg.Timeout,
		http:          &http.Client{Jar: jar},
		log:           log,
	}
	if f.timeout <= 0 {
		f.timeout = constants.DefaultClientTimeout
	}
	if f.protectedPath == "" {
		f.protectedPath = constants.DefaultProtectedPath
	}
	for _, opt := range opts {
		opt(f)
	}
	return f, nil
}

func (f *FormFlow) State() FormState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Close releases idle connections held by the flow's client.
func (f *FormFlow) Close() {
	f.http.CloseIdleConnections()
}

// Submit registers the account and, only after a 201, signs in with the
// same credentials and opens the protected page. Loading is false again
// when Submit returns.
func (f *FormFlow) Submit(ctx context.Context, input FormInput) FormState {
	f.set(func(s *FormState) {
		*s = FormState{Loading: true}
	})

	user, msg := f.register(ctx, input)
	if msg != "" {
		return f.finish(func(s *FormState) { s.Error = msg })
	}

	location, status, err := f.signIn(ctx, input.Email, input.Password)
	if err != nil {
		f.log.WithFields(ctx, logger.Fields{
			"action":  "form_sign_in",
			"user_id": user.ID,
		}).Warnf("sign-in after registration failed: %v", err)
		return f.finish(func(s *FormState) {
			s.User = &user
			s.Error = MsgSignInFailed
		})
	}

	return f.finish(func(s *FormState) {
		s.User = &user
		s.Location = location
		s.PageStatus = status
	})
}

type errorPayload struct {
	Error string `json:"error"`
}

// register returns the created user, or a message for the form.
func (f *FormFlow) register(ctx context.Context, input FormInput) (RegisteredUser, string) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	body := map[string]string{
		"email":    input.Email,
		"username": input.Username,
		"password": input.Password,
	}
	if input.DisplayName != "" {
		body["displayName"] = input.DisplayName
	}

	status, raw, err := f.postJSON(ctx, registerPath, body)
	// A response that lands after the deadline is discarded.
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		f.logTransport(ctx, "form_register_timeout", err)
		return RegisteredUser{}, MsgTimeout
	}
	if err != nil {
		if isTimeout(err) {
			f.logTransport(ctx, "form_register_timeout", err)
			return RegisteredUser{}, MsgTimeout
		}
		f.logTransport(ctx, "form_register_network", err)
		return RegisteredUser{}, MsgNetwork
	}

	switch {
	case status == http.StatusCreated:
		var created struct {
			User RegisteredUser `json:"user"`
		}
		if err := json.Unmarshal(raw, &created); err != nil || created.User.ID == "" {
			return RegisteredUser{}, MsgServer
		}
		return created.User, ""
	case status == http.StatusBadRequest || status == http.StatusConflict:
		var payload errorPayload
		if err := json.Unmarshal(raw, &payload); err != nil || payload.Error == "" {
			return RegisteredUser{}, MsgServer
		}
		return RegisteredUser{}, payload.Error
	default:
		return RegisteredUser{}, MsgServer
	}
}

type signInResult struct {
	OK    bool   `json:"ok"`
	URL   string `json:"url"`
	Error string `json:"error"`
}

// signIn uses the non-redirecting mode and then follows the returned url.
func (f *FormFlow) signIn(ctx context.Context, email, password string) (string, int, error) {
	status, raw, err := f.postJSON(ctx, signInPath, map[string]any{
		"email":       email,
		"password":    password,
		"redirect":    false,
		"callbackUrl": f.protectedPath,
	})
	if err != nil {
		return "", 0, err
	}

	var result signInResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return "", 0, fmt.Errorf("decode sign-in response: %w", err)
	}
	if status != http.StatusOK || !result.OK {
		return "", 0, fmt.Errorf("sign-in rejected: status %d, %s", status, result.Error)
	}

	target := f.protectedPath
	if result.URL != "" {
		target = result.URL
	}
	page, err := f.baseURL.Parse(target)
	if err != nil {
		return "", 0, fmt.Errorf("invalid sign-in url %q: %w", target, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, page.String(), nil)
	if err != nil {
		return "", 0, err
	}
	resp, err := f.http.Do(req)
	if err != nil {
		return "", 0, err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseSize))

	return resp.Request.URL.Path, resp.StatusCode, nil
}

func (f *FormFlow) postJSON(ctx context.Context, path string, body any) (int, []byte, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return 0, nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.baseURL.JoinPath(path).String(), bytes.NewReader(payload))
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := f.http.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return 0, nil, err
	}
	return resp.StatusCode, raw, nil
}

func (f *FormFlow) logTransport(ctx context.Context, action string, err error) {
	f.log.WithFields(ctx, logger.Fields{"action": action}).Warnf("registration request failed: %v", err)
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func (f *FormFlow) set(update func(*FormState)) FormState {
	f.mu.Lock()
	update(&f.state)
	s := f.state
	f.mu.Unlock()

	if f.onChange != nil {
		f.onChange(s)
	}
	return s
}

func (f *FormFlow) finish(update func(*FormState)) FormState {
	return f.set(func(s *FormState) {
		update(s)
		s.Loading = false
	})
}
