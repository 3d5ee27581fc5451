// Copyright (c) 2024 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package sketchdb

import (
	"fmt"
)

// ErrorCode identifies a kind of error.
type ErrorCode int

// These constants are used to identify a specific Error.
const (
	// ErrUnknownBackend indicates the requested storage backend does not
	// exist.
	ErrUnknownBackend ErrorCode = iota

	// ErrInvalidName indicates an empty sketch name.
	ErrInvalidName

	// ErrNotFound indicates no sketch is stored under the name.
	ErrNotFound

	// ErrCorruptRecord indicates a stored record could not be parsed.
	ErrCorruptRecord

	// numErrorCodes is the maximum error code number used in tests.
	numErrorCodes
)

// Map of ErrorCode values back to their constant names for pretty printing.
var errorCodeStrings = map[ErrorCode]string{
	ErrUnknownBackend: "ErrUnknownBackend",
	ErrInvalidName:    "ErrInvalidName",
	ErrNotFound:       "ErrNotFound",
	ErrCorruptRecord:  "ErrCorruptRecord",
}

// String returns the ErrorCode as a human-readable name.
func (e ErrorCode) String() string {
	if s := errorCodeStrings[e]; s != "" {
		return s
	}
	return fmt.Sprintf("Unknown ErrorCode (%d)", int(e))
}

// Error satisfies the error interface so an ErrorCode can be used as the
// target of errors.Is.
func (e ErrorCode) Error() string {
	return e.String()
}

// Error identifies a store failure.  The caller can use errors.Is with an
// ErrorCode to determine the specific reason.
type Error struct {
	ErrorCode   ErrorCode // Describes the kind of error
	Description string    // Human readable description of the issue
}

// Error satisfies the error interface and prints human-readable errors.
func (e Error) Error() string {
	return e.Description
}

// Unwrap returns the underlying ErrorCode.
func (e Error) Unwrap() error {
	return e.ErrorCode
}

// dbError creates an Error given a set of arguments.
func dbError(c ErrorCode, desc string) Error {
	return Error{ErrorCode: c, Description: desc}
}
