package domain

import (
	"strings"
	"time"
	"unicode/utf8"
)

type ID string

// User is a persisted account. DisplayName and PasswordHash are empty when
// the stored columns are NULL.
type User struct {
	ID           ID
	Email        string
	Username     string
	DisplayName  string
	PasswordHash string
	CreatedAt    time.Time
}

// HasPassword reports whether the account can sign in with credentials.
func (u User) HasPassword() bool {
	return u.PasswordHash != ""
}

// Name is the display name, falling back to the username.
func (u User) Name() string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	return u.Username
}

// IsStorable reports whether s can be written to a text column: valid UTF-8
// with no NUL bytes.
func IsStorable(s string) bool {
	return utf8.ValidString(s) && !strings.ContainsRune(s, 0)
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func NormalizeUsername(username string) string {
	return strings.TrimSpace(username)
}
