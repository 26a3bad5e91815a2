package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// ErrPasswordMismatch means the login password does not match the stored hash.
var ErrPasswordMismatch = errors.New("password does not match")

// PasswordVerifier checks a login password against a user's stored hash.
type PasswordVerifier interface {
	// Compare returns ErrPasswordMismatch for a wrong password. Any other
	// error means the stored hash itself is unusable.
	Compare(hashedPassword, password string) error
}

// BcryptVerifier checks hashes written by the user store's bcrypt hashing.
type BcryptVerifier struct{}

func NewBcryptVerifier() *BcryptVerifier {
	return &BcryptVerifier{}
}

func (v *BcryptVerifier) Compare(hashedPassword, password string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
	switch {
	case err == nil:
		return nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return ErrPasswordMismatch
	default:
		return fmt.Errorf("stored password hash: %w", err)
	}
}
