// Package password hashes and verifies user passwords with bcrypt.
//
// Hashes embed a per-hash random salt, so identical passwords produce
// different hashes. Plaintext is never stored and cannot be recovered from a
// hash; verification recomputes and compares.
package password

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// bcrypt cost 12 keeps hashing around ~250ms on current hardware, slow
// enough to resist offline brute force without hurting interactive login.
const hashCost = 12

var (
	// ErrEmptyPassword is returned when hashing an empty string.
	ErrEmptyPassword = errors.New("password.empty_password")

	// ErrPasswordTooLong is returned for passwords above bcrypt's 72-byte
	// input limit.
	ErrPasswordTooLong = errors.New("password.too_long")
)

// Hash derives a salted bcrypt hash from the plaintext password.
func Hash(plaintext string) (string, error) {
	if plaintext == "" {
		return "", ErrEmptyPassword
	}
	if len(plaintext) > 72 {
		return "", ErrPasswordTooLong
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), hashCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Verify reports whether plaintext matches the stored hash.
func Verify(hash, plaintext string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil
}
