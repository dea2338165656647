// Package auth provides password hashing and token issuance for the
// presentation layer. The core engines never see credentials; they only
// receive the owner id this package extracts.
package auth

import (
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrUsernameTooShort   = errors.New("username must be at least 3 characters long")
	ErrPasswordTooShort   = errors.New("password must be at least 8 characters long")
	ErrPasswordMismatch   = errors.New("passwords do not match")
	ErrInvalidCredentials = errors.New("invalid username or password")
)

// ValidateRegistration checks the register-form inputs. The returned error
// is safe to show to the user.
func ValidateRegistration(username, password, confirm string) error {
	if len(strings.TrimSpace(username)) < 3 {
		return ErrUsernameTooShort
	}
	if len(password) < 8 {
		return ErrPasswordTooShort
	}
	if password != confirm {
		return ErrPasswordMismatch
	}
	return nil
}

// HashPassword hashes a plaintext password with bcrypt at the given cost.
func HashPassword(password string, cost int) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword compares a plaintext password against a stored hash.
// It returns ErrInvalidCredentials on mismatch so callers never leak
// whether the user or the password was wrong.
func CheckPassword(hash, password string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return ErrInvalidCredentials
	}
	return nil
}
