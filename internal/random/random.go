// Package random provides the randomness used to pick problems.
//
// Generation never touches a package-level generator: callers pass a Source,
// usually a seeded *rand.Rand, so a seed fully determines a worksheet.
package random

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	"math/rand"
)

// Source picks one of n choices uniformly. *rand.Rand satisfies it.
type Source interface {
	// Intn returns a value in [0, n). n is always > 0.
	Intn(n int) int
}

// New returns a Source seeded with seed
func New(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

// NewSeed generates a random seed using crypto/rand.
func NewSeed() (int64, error) {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("read random seed: %w", err)
	}

	return int64(binary.LittleEndian.Uint64(b[:])), nil
}
