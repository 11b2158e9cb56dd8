package core

import (
	"errors"
	"fmt"
)

// Error taxonomy from spec §7. DecodeError and SignatureError are
// represented by vv.ErrMalformedVector and security.ErrSignature in
// their own packages, since those are the packages that produce them;
// this file carries the taxonomy classes that are core-level concerns:
// transport failures, configuration failures, and internal invariants.
var (
	// ErrTransport wraps a failure from registerPrefix or
	// expressInterest. It is logged and Logic continues; the next timer
	// tick re-attempts (spec §7).
	ErrTransport = errors.New("core: transport operation failed")

	// ErrConfig marks a configuration or roster file that cannot be read
	// or parsed (LoadConfig, LoadRoster). Signing-mode and missing-key
	// problems are reported by security.ErrConfig instead.
	ErrConfig = errors.New("core: invalid configuration")
)

// InvariantViolation panics with a description of an assertion-class
// condition the protocol should never reach at runtime (spec §7): a
// smaller SeqNo written where monotonicity requires larger, or a
// VersionVector whose canonical map and recency list have diverged.
// Never used for normal control flow.
func InvariantViolation(format string, args ...interface{}) {
	panic(fmt.Sprintf("invariant violation: "+format, args...))
}
