package crypto

import (
	"golang.org/x/crypto/bcrypt"

	"github.com/AlibekovAA/credauth/internal/common/constants"
)

type PasswordHasher interface {
	Hash(password string) (string, error)
	// Verify reports whether password matches hash. A malformed or empty hash never matches.
	Verify(password string, hash string) bool
}

type BcryptHasher struct {
	cost int
}

func NewBcryptHasher() *BcryptHasher {
	return &BcryptHasher{cost: constants.BcryptCost}
}

func (h *BcryptHasher) Hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), h.workFactor())
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func (h *BcryptHasher) Verify(password string, hash string) bool {
	if hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// Cost returns the work factor embedded in hash.
func (h *BcryptHasher) Cost(hash string) (int, bool) {
	cost, err := bcrypt.Cost([]byte(hash))
	if err != nil {
		return 0, false
	}
	return cost, true
}

func (h *BcryptHasher) workFactor() int {
	if h.cost == 0 {
		return constants.BcryptCost
	}
	return h.cost
}
