package wire

import "errors"

// Errors returned while parsing TLV blocks.
var (
	ErrTooShort       = errors.New("wire: buffer too short")
	ErrTooLong        = errors.New("wire: value too long for a non-negative integer")
	ErrMissingLength  = errors.New("wire: missing TLV length")
	ErrBufferTooShort = errors.New("wire: TLV length exceeds buffer size")
)
