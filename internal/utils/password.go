package utils

import "golang.org/x/crypto/bcrypt"

// DefaultBcryptCost is the work factor used when none is configured or
// the configured value is outside bcrypt's accepted range.
const DefaultBcryptCost = 12

// HashPassword returns the bcrypt hash of plain using the given cost.
func HashPassword(plain string, cost int) (string, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultBcryptCost
	}
	b, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// VerifyPassword reports whether plain matches the stored bcrypt hash.
// Any failure counts as a mismatch, including a malformed stored hash.
func VerifyPassword(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
