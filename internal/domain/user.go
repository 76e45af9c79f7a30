package domain

import (
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"
)

// Field limits for user accounts.
const (
	MinPasswordLength = 8
	// bcrypt ignores input beyond 72 bytes.
	MaxPasswordLength = 72
	MinUsernameLength = 3
	MaxUsernameLength = 50
	MaxFullNameLength = 100
)

// User is a registered account. ExternalID correlates the row with the
// remote identity provider, or holds a locally generated surrogate.
type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	Username     string    `json:"username"`
	FullName     *string   `json:"full_name"`
	IsActive     bool      `json:"is_active"`
	IsSuperuser  bool      `json:"is_superuser"`
	ExternalID   string    `json:"-"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ValidateEmail checks that email is a bare address.
func ValidateEmail(email string) error {
	if email == "" {
		return NewValidationError("email", "email cannot be empty")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email || !strings.Contains(email[strings.LastIndex(email, "@"):], ".") {
		return NewValidationError("email", "invalid email format")
	}
	return nil
}

// ValidatePassword checks password length bounds.
func ValidatePassword(password string) error {
	switch {
	case len(password) < MinPasswordLength:
		return NewValidationError("password", "password must be at least 8 characters long")
	case len(password) > MaxPasswordLength:
		return NewValidationError("password", "password must be at most 72 bytes long")
	}
	return nil
}

// ValidateUsername checks username length bounds.
func ValidateUsername(username string) error {
	n := utf8.RuneCountInString(username)
	if n < MinUsernameLength || n > MaxUsernameLength {
		return NewValidationError("username", "username must be between 3 and 50 characters")
	}
	return nil
}

// ValidateFullName checks the optional display name.
func ValidateFullName(fullName *string) error {
	if fullName != nil && utf8.RuneCountInString(*fullName) > MaxFullNameLength {
		return NewValidationError("full_name", "full name must be at most 100 characters")
	}
	return nil
}
