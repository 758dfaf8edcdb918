// Package errors defines custom error types for the chacha-xcheck suite.
// These errors provide detailed information for debugging while keeping
// key material out of error messages.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for cipher operations
var (
	// ErrInvalidKeySize indicates that a key has an incorrect size
	ErrInvalidKeySize = errors.New("chacha20: invalid key size")

	// ErrKeyNotSet indicates a session was used before a key was installed
	ErrKeyNotSet = errors.New("chacha20: key not set")

	// ErrNegativeLength indicates a negative keystream length was requested
	ErrNegativeLength = errors.New("chacha20: negative keystream length")
)

// Sentinel errors for vector table handling
var (
	// ErrBadHeader indicates the table header row does not match the expected format
	ErrBadHeader = errors.New("vectors: unexpected header")

	// ErrFieldCount indicates a row has the wrong number of fields
	ErrFieldCount = errors.New("vectors: wrong field count")

	// ErrUnknownKind indicates a vector kind outside the supported set
	ErrUnknownKind = errors.New("vectors: unknown vector kind")

	// ErrBadHex indicates a hex field that does not decode
	ErrBadHex = errors.New("vectors: malformed hex field")

	// ErrBadInteger indicates a numeric field that does not parse
	ErrBadInteger = errors.New("vectors: malformed integer field")

	// ErrLengthMismatch indicates an encryption vector whose expected output
	// length differs from its message length
	ErrLengthMismatch = errors.New("vectors: expected output length does not match message")
)

// Sentinel errors for conformance checking
var (
	// ErrMismatch indicates an engine produced output differing from the reference
	ErrMismatch = errors.New("conformance: output mismatch")

	// ErrUnknownEngine indicates a request for an engine that is not registered
	ErrUnknownEngine = errors.New("conformance: unknown engine")

	// ErrCounterOverflow indicates an external engine cannot represent the
	// requested counter range without overflowing
	ErrCounterOverflow = errors.New("conformance: counter overflow in external engine")
)

// Sentinel errors for MuHash set hashing
var (
	// ErrInvalidItemSize indicates a set item with an incorrect size
	ErrInvalidItemSize = errors.New("muhash: invalid item size")
)

// CryptoError wraps a cryptographic error with additional context
type CryptoError struct {
	Op  string // Operation that failed
	Err error  // Underlying error
}

func (e *CryptoError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *CryptoError) Unwrap() error {
	return e.Err
}

// NewCryptoError creates a new CryptoError
func NewCryptoError(op string, err error) *CryptoError {
	return &CryptoError{Op: op, Err: err}
}

// VectorError wraps a vector table error with the offending row number.
// Row numbers are 1-based and count the header, matching what an editor
// shows for the underlying file.
type VectorError struct {
	Row int   // Row in the table file
	Err error // Underlying error
}

func (e *VectorError) Error() string {
	return fmt.Sprintf("vectors: row %d: %v", e.Row, e.Err)
}

func (e *VectorError) Unwrap() error {
	return e.Err
}

// NewVectorError creates a new VectorError
func NewVectorError(row int, err error) *VectorError {
	return &VectorError{Row: row, Err: err}
}

// Is reports whether any error in err's chain matches target.
// This is a convenience wrapper around errors.Is.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
// This is a convenience wrapper around errors.As.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
