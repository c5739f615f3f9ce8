package storage

import "errors"

// Storage errors shared by the memory, Postgres and ClickHouse stores.
// Raw events, wallet features and wallet scores are append-only: a run
// that repeats a wallet key fails instead of overwriting it.
var (
	// ErrNotFound is returned when a requested record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateKey is returned when attempting to insert a record
	// with a key that already exists. Append-only stores do not allow updates.
	ErrDuplicateKey = errors.New("duplicate key: append-only store does not allow updates")

	// ErrInvalidInput is returned when input validation fails
	// (empty wallet address, non-positive limit).
	ErrInvalidInput = errors.New("invalid input")
)
