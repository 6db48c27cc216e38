// Package auth handles password hashing and learner accounts.
package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// MaxPasswordBytes is the longest password bcrypt accepts, in bytes.
const MaxPasswordBytes = 72

// HashPassword returns a salted bcrypt hash of password. Hashing the same
// password twice yields different hashes. Passwords longer than 72 bytes
// are rejected with bcrypt.ErrPasswordTooLong.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// VerifyPassword reports whether password matches storedHash. An empty or
// malformed hash never matches, and neither does an empty password.
func VerifyPassword(storedHash, password string) bool {
	if storedHash == "" || password == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(storedHash), []byte(password)) == nil
}
