package crypto

import (
	"golang.org/x/crypto/bcrypt"

	"github.com/follownet/backend/internal/common/constants"
)

// PasswordHasher produces one-way salted hashes. Compare runs in constant
// time per the bcrypt primitive.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash string, password string) error
}

type BcryptHasher struct{}

func (h *BcryptHasher) Hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), constants.BcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func (h *BcryptHasher) Compare(hash string, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}
