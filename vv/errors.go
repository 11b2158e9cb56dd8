package vv

import "errors"

// ErrMalformedVector is returned by Decode when the outer TLV type, an
// inner key/value TLV type, or the overall block structure is invalid.
var ErrMalformedVector = errors.New("vv: malformed version vector")
