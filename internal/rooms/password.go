package rooms

import (
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// PasswordHasher is the one-way hash + verify capability used for room
// passwords. A blank plaintext means "no password" and is handled
// before the hasher is ever consulted.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, hash string) bool
}

type BcryptHasher struct {
	cost int
}

func NewBcryptHasher() *BcryptHasher {
	return &BcryptHasher{cost: bcrypt.DefaultCost}
}

// NewBcryptHasherWithCost exists for tests, where DefaultCost is
// needlessly slow.
func NewBcryptHasherWithCost(cost int) *BcryptHasher {
	return &BcryptHasher{cost: cost}
}

func (h *BcryptHasher) Hash(plaintext string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func (h *BcryptHasher) Verify(plaintext, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil
}

// IsBlankPassword reports whether a submitted password counts as "no
// password" (stored as null, never hashed).
func IsBlankPassword(password string) bool {
	return strings.TrimSpace(password) == ""
}
