package service_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/AlibekovAA/credauth/internal/auth/service"
	commonerrors "github.com/AlibekovAA/credauth/internal/common/errors"
)

func TestCredentialValidator_Validate(t *testing.T) {
	v := service.NewCredentialValidator()

	testCases := []struct {
		name      string
		input     service.RegisterInput
		wantErr   bool
		wantField string
	}{
		{
			name:  "valid without display name",
			input: service.RegisterInput{Email: "a@example.com", Username: "al.ice_1-x", Password: "password123"},
		},
		{
			name:  "password of exactly 72 bytes",
			input: service.RegisterInput{Email: "a@example.com", Username: "alice", Password: strings.Repeat("p", 72)},
		},
		{
			name:      "multibyte password over 72 bytes",
			input:     service.RegisterInput{Email: "a@example.com", Username: "alice", Password: strings.Repeat("ж", 37)},
			wantErr:   true,
			wantField: "password",
		},
		{
			name:      "username too long",
			input:     service.RegisterInput{Email: "a@example.com", Username: strings.Repeat("a", 33), Password: "password123"},
			wantErr:   true,
			wantField: "username",
		},
		{
			name:      "email without domain",
			input:     service.RegisterInput{Email: "alice@", Username: "alice", Password: "password123"},
			wantErr:   true,
			wantField: "email",
		},
		{
			name:      "display name with NUL byte",
			input:     service.RegisterInput{Email: "a@example.com", Username: "alice", Password: "password123", DisplayName: "Al\x00ice"},
			wantErr:   true,
			wantField: "displayName",
		},
		{
			name:      "email with invalid UTF-8",
			input:     service.RegisterInput{Email: "a\xff@example.com", Username: "alice", Password: "password123"},
			wantErr:   true,
			wantField: "email",
		},
		{
			name:      "password with NUL byte",
			input:     service.RegisterInput{Email: "a@example.com", Username: "alice", Password: "pass\x00word123"},
			wantErr:   true,
			wantField: "password",
		},
		{
			name:      "all required fields missing",
			input:     service.RegisterInput{},
			wantErr:   true,
			wantField: "email",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := v.Validate(tc.input)
			if !tc.wantErr {
				if err != nil {
					t.Fatalf("expected no error, got %v", err)
				}
				return
			}

			if !errors.Is(err, service.ErrValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
			de, _ := commonerrors.AsDomainError(err)
			fields, ok := de.Details()["fields"].(map[string]any)
			if !ok {
				t.Fatalf("expected field details, got %v", de.Details())
			}
			if _, ok := fields[tc.wantField]; !ok {
				t.Errorf("expected field %s in details, got %v", tc.wantField, fields)
			}
		})
	}
}

func TestCredentialValidator_MissingFieldsMessage(t *testing.T) {
	err := service.NewCredentialValidator().Validate(service.RegisterInput{Password: "password123"})
	de, ok := commonerrors.AsDomainError(err)
	if !ok {
		t.Fatalf("expected domain error, got %v", err)
	}
	if de.Message() != "email, username required" {
		t.Errorf("unexpected message %q", de.Message())
	}
}

func TestCredentialValidator_UnstorableTextMessage(t *testing.T) {
	err := service.NewCredentialValidator().Validate(service.RegisterInput{
		Email:       "a@example.com",
		Username:    "alice",
		Password:    "password123",
		DisplayName: "Al\x00ice",
	})
	de, ok := commonerrors.AsDomainError(err)
	if !ok {
		t.Fatalf("expected domain error, got %v", err)
	}
	if de.Message() != "displayName contains invalid characters" {
		t.Errorf("unexpected message %q", de.Message())
	}
	fields, _ := de.Details()["fields"].(map[string]any)
	if fields["displayName"] != "storable" {
		t.Errorf("expected storable tag for displayName, got %v", fields)
	}
}
