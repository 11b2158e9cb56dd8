package security_test

import (
	"errors"
	"testing"

	"github.com/nishsab/ndn-svs/security"
	"github.com/stretchr/testify/assert"
)

func TestCheckNone(t *testing.T) {
	assert.NoError(t, security.Options{Mode: security.ModeNone}.Check())
}

func TestCheckHMACRequiresKey(t *testing.T) {
	assert.ErrorIs(t, security.Options{Mode: security.ModeHMAC}.Check(), security.ErrConfig)
	assert.NoError(t, security.Options{Mode: security.ModeHMAC, HMACKey: []byte("k")}.Check())
}

func TestCheckAsymmetricRequiresSignerAndValidator(t *testing.T) {
	assert.ErrorIs(t, security.Options{Mode: security.ModeAsymmetric}.Check(), security.ErrConfig)
}

func TestHMACRoundTrip(t *testing.T) {
	opts := security.Options{Mode: security.ModeHMAC, HMACKey: []byte("shared-secret")}
	payload := []byte("sync packet bytes")

	sig, err := opts.Sign(payload)
	assert.NoError(t, err)

	var ok, fail bool
	opts.VerifyAsync(payload, sig, func() { ok = true }, func() { fail = true })
	assert.True(t, ok)
	assert.False(t, fail)
}

func TestHMACRejectsTamperedPayload(t *testing.T) {
	opts := security.Options{Mode: security.ModeHMAC, HMACKey: []byte("shared-secret")}
	sig, _ := opts.Sign([]byte("original"))

	var ok, fail bool
	opts.VerifyAsync([]byte("tampered"), sig, func() { ok = true }, func() { fail = true })
	assert.False(t, ok)
	assert.True(t, fail)
}

func TestNoneModeAlwaysVerifies(t *testing.T) {
	opts := security.Options{Mode: security.ModeNone}
	sig, err := opts.Sign([]byte("payload"))
	assert.NoError(t, err)
	assert.Nil(t, sig)

	var ok bool
	opts.VerifyAsync([]byte("payload"), nil, func() { ok = true }, func() { t.Fail() })
	assert.True(t, ok)
}

type stubValidator struct {
	async  bool
	accept bool
}

func (s *stubValidator) Validate(pkt []byte, onOk func(), onFail func()) {
	run := func() {
		if s.accept {
			onOk()
		} else {
			onFail()
		}
	}
	if s.async {
		go run()
	} else {
		run()
	}
}

type stubSigner struct{}

func (stubSigner) Sign(payload []byte) ([]byte, error) { return []byte("sig"), nil }

func TestAsymmetricDelegatesToValidator(t *testing.T) {
	opts := security.Options{
		Mode:      security.ModeAsymmetric,
		Signer:    stubSigner{},
		Validator: &stubValidator{accept: true},
	}
	assert.NoError(t, opts.Check())

	sig, err := opts.Sign([]byte("payload"))
	assert.NoError(t, err)
	assert.Equal(t, []byte("sig"), sig)

	done := make(chan struct{})
	opts.VerifyAsync([]byte("payload"), sig, func() { close(done) }, func() { t.Fail() })
	select {
	case <-done:
	default:
		t.Fatal("expected synchronous onOk")
	}
}

func TestUnknownModeFailsClosed(t *testing.T) {
	opts := security.Options{Mode: security.Mode(99)}
	assert.True(t, errors.Is(opts.Check(), security.ErrConfig))

	var failed bool
	opts.VerifyAsync(nil, nil, func() { t.Fail() }, func() { failed = true })
	assert.True(t, failed)
}
