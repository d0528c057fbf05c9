package service

import (
	"errors"
	"unicode"

	"github.com/tradepost/tradepost-auth/pkg/cryptox"
)

// ErrWeakPassword is returned when a new password fails policy.
var ErrWeakPassword = errors.New("service: password does not meet policy")

// dummyHash is a well-formed Argon2id hash that no password verifies
// against. Verifying against it costs the same as a real comparison, which
// keeps unknown-email login failures indistinguishable by timing.
const dummyHash = "$argon2id$v=19$m=19456,t=2,p=1$AAAAAAAAAAAAAAAAAAAAAA$AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"

func verifyPassword(password, encodedHash string) bool {
	return cryptox.VerifyPassword(password, encodedHash)
}

func verifyDummy(password string) {
	_ = cryptox.VerifyPassword(password, dummyHash)
}

// validatePassword enforces the password policy: at least 8 characters with
// at least one letter and one digit.
func validatePassword(password string) error {
	if len(password) < 8 {
		return ErrWeakPassword
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
	if !hasLetter || !hasDigit {
		return ErrWeakPassword
	}
	return nil
}
