// Package storage defines the persistence contracts for flip and roll runs.
//
// A run records everything needed to reproduce its outcomes: the seed, the
// parameters the flip or roll was built with and the number of draws.
// Implementations live in subpackages (see storage/sqlite).
//
// # Error Types
//
//   - ErrNotFound: Indicates a requested run is missing.
package storage
