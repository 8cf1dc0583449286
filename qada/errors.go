/*
errors.go - Centralized error types for the engine core

PURPOSE:
  All sentinel errors of the core in one place. The ledger and store
  packages wrap these with additional context.

NOTE:
  Validation problems are NOT errors: the validator accumulates
  human-readable messages and never fails (see validate.go). The arithmetic
  core has no fatal conditions at all; edge cases clamp to zero.
*/
package qada

import "errors"

var (
	// ErrMissingTimezone is returned when a zone-dependent operation is
	// attempted without a user-assigned IANA time zone.
	ErrMissingTimezone = errors.New("timezone is not set")

	// ErrUnknownPrayer is returned when a prayer or travel-prayer name does
	// not match any tracked category.
	ErrUnknownPrayer = errors.New("unknown prayer type")
)
