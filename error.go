// Copyright (c) 2024 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package minisketch

import (
	"fmt"
)

// ErrorCode identifies a kind of error.
type ErrorCode int

// These constants are used to identify a specific Error.
const (
	// ErrBadBits indicates a sketch was requested with an element width
	// outside of the supported range.
	ErrBadBits ErrorCode = iota

	// ErrUnsupportedImplementation indicates the requested field
	// implementation is unknown or unavailable for the element width on
	// this machine.
	ErrUnsupportedImplementation

	// ErrZeroCapacity indicates a sketch was requested with a capacity of
	// zero.
	ErrZeroCapacity

	// ErrIncompatible indicates an attempt to merge sketches with
	// different element widths or implementations.
	ErrIncompatible

	// ErrDecode indicates a sketch could not be decoded, either because
	// it summarizes more differences than its capacity allows or because
	// its contents are inconsistent.
	ErrDecode

	// ErrShortBuffer indicates a buffer too small to hold a serialized
	// sketch.
	ErrShortBuffer

	// numErrorCodes is the maximum error code number used in tests.
	numErrorCodes
)

// Map of ErrorCode values back to their constant names for pretty printing.
var errorCodeStrings = map[ErrorCode]string{
	ErrBadBits:                   "ErrBadBits",
	ErrUnsupportedImplementation: "ErrUnsupportedImplementation",
	ErrZeroCapacity:              "ErrZeroCapacity",
	ErrIncompatible:              "ErrIncompatible",
	ErrDecode:                    "ErrDecode",
	ErrShortBuffer:               "ErrShortBuffer",
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

// Error identifies a sketch failure.  The caller can use errors.Is with an
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

// sketchError creates an Error given a set of arguments.
func sketchError(c ErrorCode, desc string) Error {
	return Error{ErrorCode: c, Description: desc}
}
