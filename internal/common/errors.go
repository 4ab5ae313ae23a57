// Package common defines sentinel errors and small helpers shared by the
// stores, the persistence layer and the CLI. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Store-level errors.
	ErrPersist                = errors.New("snapshot persistence failed")
	ErrQREncode               = errors.New("qr code generation failed")
	ErrPlateNumbersExhausted  = errors.New("no free plate number found")
	ErrSnapshotCorrupted      = errors.New("snapshot corrupted")
	ErrSnapshotKeyUnavailable = errors.New("snapshot is encrypted, passphrase required")

	// Presentation-level errors.
	ErrForbidden        = errors.New("access restricted to administrators")
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrPasswordMismatch = errors.New("passwords do not match")
)
