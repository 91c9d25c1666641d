package service

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/otenet/task-manager/internal/core/domain"
)

// DefaultBcryptCost is the cost used for new password hashes.
const DefaultBcryptCost = 8

// PasswordHasher owns password hashing and comparison.
type PasswordHasher struct {
	cost int
}

// NewPasswordHasher returns a hasher using cost, or DefaultBcryptCost when
// cost is outside bcrypt's accepted range.
func NewPasswordHasher(cost int) *PasswordHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultBcryptCost
	}
	return &PasswordHasher{cost: cost}
}

// HashPassword returns a salted bcrypt hash of raw.
func (h *PasswordHasher) HashPassword(raw string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(raw), h.cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// VerifyPassword reports whether raw matches hash. A mismatch is not an error.
func (h *PasswordHasher) VerifyPassword(raw, hash string) bool {
	if hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(raw)) == nil
}

// SetPassword validates raw and stores its hash on user. When raw already
// matches the stored hash nothing is re-hashed and changed is false.
func (h *PasswordHasher) SetPassword(user *domain.User, raw string) (changed bool, err error) {
	raw, err = validatePassword(raw)
	if err != nil {
		return false, err
	}
	if h.VerifyPassword(raw, user.PasswordHash) {
		return false, nil
	}
	hash, err := h.HashPassword(raw)
	if err != nil {
		return false, err
	}
	user.PasswordHash = hash
	return true, nil
}
