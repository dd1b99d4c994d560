package security

import (
	"campus-auth/internal/auth/domain/repository"

	"golang.org/x/crypto/bcrypt"
)

// BcryptHasher implements the PasswordHasher port using bcrypt
type BcryptHasher struct {
	cost int
}

// NewBcryptHasher creates a hasher with the given cost; zero means bcrypt's default
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost <= 0 {
		cost = bcrypt.DefaultCost
	}
	return &BcryptHasher{cost: cost}
}

// Hash derives a bcrypt hash from the plaintext password
func (h *BcryptHasher) Hash(plaintext string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// Compare reports whether plaintext matches the stored hash
func (h *BcryptHasher) Compare(plaintext, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil
}

// Ensure BcryptHasher implements the PasswordHasher port
var _ repository.PasswordHasher = (*BcryptHasher)(nil)
