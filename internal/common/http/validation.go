package http

import (
	"net/url"
	"strings"
)

// SafeRedirectPath returns raw when it is a same-origin absolute path and
// fallback otherwise. Scheme-relative ("//host") and backslash forms are rejected.
func SafeRedirectPath(raw, fallback string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" || !strings.HasPrefix(raw, "/") {
		return fallback
	}
	if strings.HasPrefix(raw, "//") || strings.ContainsAny(raw, "\\\r\n") {
		return fallback
	}

	u, err := url.Parse(raw)
	if err != nil || u.IsAbs() || u.Host != "" {
		return fallback
	}
	return raw
}
