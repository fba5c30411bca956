// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package txerror defines the closed set of error codes returned while
// selecting coins, building scripts, signing and compiling transactions.
package txerror

import (
	"errors"
	"fmt"
)

// ErrorCode identifies a kind of error.
type ErrorCode int

// These constants are used to identify a specific Error.
const (
	// ErrInsufficientInputs indicates that no candidate subset of the
	// available coins covers the requested outputs plus the fee.
	ErrInsufficientInputs ErrorCode = iota

	// ErrMissingChangeScript indicates that change is enabled but no
	// change locking script was supplied.
	ErrMissingChangeScript

	// ErrUnimplemented indicates that a script family or address form is
	// recognized but cannot be constructed.
	ErrUnimplemented

	// ErrMalformed indicates that a key, script, signature or digest has
	// the wrong length or failed to parse. It is an internal error.
	ErrMalformed

	// ErrInvalidRecipient indicates that an address or its network byte
	// was not recognized.
	ErrInvalidRecipient

	// lastErr is used for testing, making it possible to iterate over
	// the error codes in order to check that they all have proper
	// translations in errorCodeStrings.
	lastErr
)

// Map of ErrorCode values back to their constant names for pretty printing.
var errorCodeStrings = map[ErrorCode]string{
	ErrInsufficientInputs:  "ErrInsufficientInputs",
	ErrMissingChangeScript: "ErrMissingChangeScript",
	ErrUnimplemented:       "ErrUnimplemented",
	ErrMalformed:           "ErrMalformed",
	ErrInvalidRecipient:    "ErrInvalidRecipient",
}

// String returns the ErrorCode as a human-readable name.
func (e ErrorCode) String() string {
	if s := errorCodeStrings[e]; s != "" {
		return s
	}
	return fmt.Sprintf("Unknown ErrorCode (%d)", int(e))
}

// Error satisfies the error interface so a bare ErrorCode can be used as a
// target for errors.Is.
func (e ErrorCode) Error() string {
	return e.String()
}

// Error is a typed error for all errors arising while authoring a
// transaction.
type Error struct {
	ErrorCode   ErrorCode // Describes the kind of error
	Description string    // Human readable description of the issue
	Err         error     // Underlying error
}

// Error satisfies the error interface and prints human-readable errors.
func (e Error) Error() string {
	if e.Err != nil {
		return e.Description + ": " + e.Err.Error()
	}
	return e.Description
}

// Unwrap returns the underlying error, if any.
func (e Error) Unwrap() error {
	return e.Err
}

// Is reports whether target carries the same error code as e. Both an
// ErrorCode and another Error are accepted as targets.
func (e Error) Is(target error) bool {
	switch t := target.(type) {
	case ErrorCode:
		return e.ErrorCode == t
	case Error:
		return e.ErrorCode == t.ErrorCode
	case *Error:
		return t != nil && e.ErrorCode == t.ErrorCode
	}
	return false
}

// New creates a new Error.
func New(c ErrorCode, desc string, err error) Error {
	return Error{ErrorCode: c, Description: desc, Err: err}
}

// Newf creates a new Error with a formatted description and no underlying
// error.
func Newf(c ErrorCode, format string, args ...interface{}) Error {
	return Error{ErrorCode: c, Description: fmt.Sprintf(format, args...)}
}

// Is reports whether any error in err's chain is an Error with code c.
func Is(err error, c ErrorCode) bool {
	return errors.Is(err, c)
}

// Code extracts the ErrorCode from err. The second return value is false
// when err does not wrap an Error.
func Code(err error) (ErrorCode, bool) {
	var e Error
	if errors.As(err, &e) {
		return e.ErrorCode, true
	}
	return 0, false
}
