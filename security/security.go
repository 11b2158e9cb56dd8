// Package security implements the three signing modes Logic accepts for
// outbound sync packets and requires for inbound ones (spec §4.5): no
// signature, a shared HMAC-SHA256 key, or delegation to an external
// asymmetric-key validator/signer supplied by the host application.
//
// NDN packet signing itself — the wire conventions for carrying a
// signature alongside a packet — is part of the out-of-scope transport
// layer (spec §1); this package only decides what bytes to attach and
// how to check them, using the standard library's HMAC primitive since
// no library in this module's dependency set implements NDN-style packet
// signing (that concern belongs to the external validator/signer for
// Asymmetric mode, or is absent entirely for None/HMAC).
package security

import (
	"crypto/hmac"
	"crypto/sha256"
)

// Mode selects how outbound sync packets are signed and inbound ones are
// verified.
type Mode int

const (
	// ModeNone signs nothing; a literal placeholder nonce component is
	// appended to the packet name instead (spec §4.4).
	ModeNone Mode = iota
	// ModeHMAC signs with a symmetric key configured out of band.
	ModeHMAC
	// ModeAsymmetric delegates signing and verification to the host's
	// key infrastructure via Signer and Validator.
	ModeAsymmetric
)

func (m Mode) String() string {
	switch m {
	case ModeNone:
		return "none"
	case ModeHMAC:
		return "hmac-sha256"
	case ModeAsymmetric:
		return "asymmetric"
	default:
		return "unknown"
	}
}

// Validator delegates inbound signature verification to the host.
// Verification may be asynchronous: onOk or onFail is invoked exactly
// once, and subsequent processing continues from that continuation on
// the scheduler thread (spec §4.5, §5).
type Validator interface {
	Validate(pkt []byte, onOk func(), onFail func())
}

// Signer delegates outbound signature production to the host, for
// ModeAsymmetric.
type Signer interface {
	Sign(payload []byte) ([]byte, error)
}

// Options configures a Logic instance's signing behavior.
type Options struct {
	Mode Mode
	// HMACKey is required, non-empty, for ModeHMAC.
	HMACKey []byte
	// Signer and Validator are required for ModeAsymmetric.
	Signer    Signer
	Validator Validator
}

// Check validates Options at construction time, per the fail-fast
// ConfigError class in spec §7: unknown mode or a missing key/validator
// is a programming error, not a runtime condition to recover from.
func (o Options) Check() error {
	switch o.Mode {
	case ModeNone:
		return nil
	case ModeHMAC:
		if len(o.HMACKey) == 0 {
			return ErrConfig
		}
		return nil
	case ModeAsymmetric:
		if o.Signer == nil || o.Validator == nil {
			return ErrConfig
		}
		return nil
	default:
		return ErrConfig
	}
}

// Sign produces the signature bytes for an outbound packet's payload.
// It returns (nil, nil) for ModeNone.
func (o Options) Sign(payload []byte) ([]byte, error) {
	switch o.Mode {
	case ModeNone:
		return nil, nil
	case ModeHMAC:
		mac := hmac.New(sha256.New, o.HMACKey)
		mac.Write(payload)
		return mac.Sum(nil), nil
	case ModeAsymmetric:
		return o.Signer.Sign(payload)
	default:
		return nil, ErrConfig
	}
}

// VerifyAsync checks an inbound packet's signature, invoking exactly one
// of onOk or onFail. For ModeNone and ModeHMAC the check completes
// synchronously before VerifyAsync returns; for ModeAsymmetric it may
// complete later, on the validator's own continuation.
func (o Options) VerifyAsync(pkt, sig []byte, onOk, onFail func()) {
	switch o.Mode {
	case ModeNone:
		onOk()
	case ModeHMAC:
		mac := hmac.New(sha256.New, o.HMACKey)
		mac.Write(pkt)
		if hmac.Equal(mac.Sum(nil), sig) {
			onOk()
		} else {
			onFail()
		}
	case ModeAsymmetric:
		if o.Validator == nil {
			onFail()
			return
		}
		o.Validator.Validate(pkt, onOk, onFail)
	default:
		onFail()
	}
}
