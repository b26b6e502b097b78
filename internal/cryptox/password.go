// Package cryptox wraps the password hashing used for stored credentials.
// Hashes are bcrypt, which embeds a per-hash random salt and its cost.
package cryptox

import "golang.org/x/crypto/bcrypt"

const (
	// DefaultCost is the bcrypt work factor used for new hashes.
	DefaultCost = bcrypt.DefaultCost
	// MaxPasswordBytes is the longest input bcrypt accepts, in bytes.
	MaxPasswordBytes = 72
)

// ErrPasswordTooLong is returned for passwords over MaxPasswordBytes.
var ErrPasswordTooLong = bcrypt.ErrPasswordTooLong

// dummyHash is compared against when no user exists, so a login for an
// unknown email costs about as much as one for a known email.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("linkkeeper-dummy-password"), bcrypt.MinCost)

// HashPassword returns the bcrypt hash of password at the given cost.
// Costs outside bcrypt's range fall back to DefaultCost.
func HashPassword(password string, cost int) (string, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultCost
	}
	if len(password) > MaxPasswordBytes {
		return "", ErrPasswordTooLong
	}
	b, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// CheckPassword reports whether password matches hash.
func CheckPassword(hash, password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// BurnCompare performs a throwaway comparison and always reports false.
func BurnCompare(password string) bool {
	_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
	return false
}
