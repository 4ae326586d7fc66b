// Package auth implements the credential primitives of the server:
// password hashing and verification, the password policy, and the JWT
// codec for access and refresh tokens.
package auth

import (
	"fmt"
	"unicode"

	"golang.org/x/crypto/bcrypt"

	"github.com/onomatheater/blog-api/internal/common"
)

// MinPasswordLength is the policy floor enforced at the service boundary.
const MinPasswordLength = 8

// HashPassword produces a self-salted bcrypt digest of the plaintext.
func HashPassword(password string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("error hashing password: %w", err)
	}
	return string(digest), nil
}

// VerifyPassword reports whether plaintext matches the stored digest.
// A malformed digest yields false, never an error or panic.
func VerifyPassword(password string, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(password)) == nil
}

// ValidatePassword checks the registration password policy: at least
// MinPasswordLength characters, at least one letter, at least one digit.
// The returned error wraps common.ErrValidation with the failed condition.
func ValidatePassword(password string) error {
	if len([]rune(password)) < MinPasswordLength {
		return fmt.Errorf("%w: password must be at least %d characters", common.ErrValidation, MinPasswordLength)
	}

	var hasLetter, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}

	if !hasLetter {
		return fmt.Errorf("%w: password must contain at least one letter", common.ErrValidation)
	}
	if !hasDigit {
		return fmt.Errorf("%w: password must contain at least one digit", common.ErrValidation)
	}

	return nil
}
