// Package random owns the pseudo-random streams used by flips and rolls.
//
// A process-wide generator is seeded once from the wall clock the first time
// Default is called. Independent, reproducible streams can be created with New
// and handed to callers that need a fixed seed.
package random

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	"time"
)

// NewSeed generates a random seed using crypto/rand.
func NewSeed() (int64, error) {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("read random seed: %w", err)
	}

	return int64(binary.LittleEndian.Uint64(b[:])), nil
}

// SeedFromTime derives a seed from t at second resolution.
//
// Processes started within the same second receive the same seed and thus
// identical sequences.
func SeedFromTime(t time.Time) int64 {
	return t.Unix()
}
