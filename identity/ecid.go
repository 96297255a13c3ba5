package identity

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/google/uuid"
)

// ECID is the Experience Cloud ID, the device identifier generated by the extension.
// The empty ECID means absent.
type ECID string

// String returns the ECID value.
func (e ECID) String() string {
	return string(e)
}

// IsZero reports whether the ECID is absent.
func (e ECID) IsZero() bool {
	return e == ""
}

// Generator produces new device identifiers.
type Generator interface {
	Generate() ECID
}

// GeneratorFunc adapts a function to Generator.
type GeneratorFunc func() ECID

// Generate calls f.
func (f GeneratorFunc) Generate() ECID {
	return f()
}

// UUIDGenerator generates ECIDs from random UUIDs with NewECID.
type UUIDGenerator struct{}

// Generate returns NewECID().
func (UUIDGenerator) Generate() ECID {
	return NewECID()
}

// NewECID returns a new 38-digit ECID. The two 64-bit halves of a random UUID, with
// their sign bit cleared, are each written as 19 zero-padded decimal digits.
func NewECID() ECID {
	u := uuid.New()
	msb := binary.BigEndian.Uint64(u[:8]) & math.MaxInt64
	lsb := binary.BigEndian.Uint64(u[8:]) & math.MaxInt64
	return ECID(fmt.Sprintf("%019d%019d", msb, lsb))
}
