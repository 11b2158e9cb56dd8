package security

import "errors"

// ErrConfig is returned by Options.Check for an unknown signing mode or
// a missing key/validator/signer. Constructors treat this as fail-fast
// (spec §7's ConfigError class).
var ErrConfig = errors.New("security: invalid signing configuration")

// ErrSignature marks an inbound packet whose signature failed
// verification. Per spec §7 this is dropped silently by Logic, never
// surfaced to the host.
var ErrSignature = errors.New("security: signature verification failed")
