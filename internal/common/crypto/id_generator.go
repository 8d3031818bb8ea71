package crypto

import "github.com/google/uuid"

// IDGenerator mints post identifiers. An interface seam so tests can pin ids
// deterministically.
type IDGenerator interface {
	NewID() (string, error)
}

// UUIDGenerator issues random v4 UUIDs; the posts table keys on them directly.
type UUIDGenerator struct{}

func NewUUIDGenerator() *UUIDGenerator {
	return &UUIDGenerator{}
}

func (g *UUIDGenerator) NewID() (string, error) {
	return uuid.NewString(), nil
}
