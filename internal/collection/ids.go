package collection

import (
	"math/rand/v2"
	"strconv"

	"github.com/google/uuid"
)

// IDGenerator produces identifiers for newly created rows.
// Collisions are not checked.
type IDGenerator interface {
	NewID() string
}

// IDGeneratorFunc adapts a plain function to IDGenerator
type IDGeneratorFunc func() string

// NewID calls f
func (f IDGeneratorFunc) NewID() string {
	return f()
}

// NumericGenerator returns random integers in [0, 1000000) formatted as decimal strings
type NumericGenerator struct{}

// NewID returns a random numeric id
func (NumericGenerator) NewID() string {
	return strconv.Itoa(rand.IntN(1_000_000))
}

// UUIDGenerator returns random version 4 UUIDs
type UUIDGenerator struct{}

// NewID returns a new UUID string
func (UUIDGenerator) NewID() string {
	return uuid.NewString()
}

// GeneratorFor returns the generator registered under format ("numeric" or "uuid").
// Unknown formats fall back to numeric.
func GeneratorFor(format string) IDGenerator {
	if format == "uuid" {
		return UUIDGenerator{}
	}
	return NumericGenerator{}
}
