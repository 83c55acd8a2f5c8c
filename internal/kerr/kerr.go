// Package kerr defines the small sentinel error taxonomy shared across
// components, so callers can errors.Is/errors.As instead of string-matching.
package kerr

import "errors"

var (
	// ErrNotFound: hotstring/bundle lookup missed. Never fatal.
	ErrNotFound = errors.New("not found")
	// ErrValidation: caller-supplied data violates a documented invariant.
	ErrValidation = errors.New("validation failed")
	// ErrCorrupt: on-disk data could not be parsed; caller should log and
	// continue with partial/default state rather than abort.
	ErrCorrupt = errors.New("corrupt input")
)
