// Package password wraps bcrypt so callers never compare hashes directly.
package password

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

const cost = 10

// Hash returns a salted bcrypt hash of plain.
func Hash(plain string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(h), nil
}

// Verify reports whether plain matches hash. A mismatch is a plain false;
// an error means the stored hash itself is malformed.
func Verify(plain, hash string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain))
	if err == nil {
		return true, nil
	}
	if err == bcrypt.ErrMismatchedHashAndPassword {
		return false, nil
	}
	return false, fmt.Errorf("compare password: %w", err)
}
