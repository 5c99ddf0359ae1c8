package domain

import "time"

// Identity is what a successful credential check yields. It never carries
// the password hash.
type Identity struct {
	ID    string
	Name  string
	Email string
}

type SessionUser struct {
	ID    string `json:"id,omitempty"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

// SessionView is the read-only session projection served to clients.
type SessionView struct {
	User    *SessionUser `json:"user"`
	Expires time.Time    `json:"expires"`
}
