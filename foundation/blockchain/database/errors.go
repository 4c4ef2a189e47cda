package database

import (
	"errors"
	"fmt"
)

// Set of sentinel integrity violations reported by chain validation. The
// ledger remains usable after a violation. What to do about one is the
// caller's policy.
var (
	ErrHashMismatch     = errors.New("hash mismatch")
	ErrPrevHashMismatch = errors.New("previous hash mismatch")
)

// ChainError reports which block failed validation and which check failed.
type ChainError struct {
	Number uint64
	Err    error
}

// NewChainError constructs a chain error for the specified block number.
func NewChainError(number uint64, err error) error {
	return &ChainError{
		Number: number,
		Err:    err,
	}
}

// Error implements the error interface.
func (ce *ChainError) Error() string {
	return fmt.Sprintf("invalid block at number %d: %s", ce.Number, ce.Err)
}

// Unwrap exposes the underlying violation for errors.Is checks.
func (ce *ChainError) Unwrap() error {
	return ce.Err
}
