package transport_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nishsab/ndn-svs/transport"
)

func TestNameFromStringRoundTrip(t *testing.T) {
	n := transport.NameFromString("/sync/group/state-vector")
	assert.Equal(t, "/sync/group/state-vector", n.String())
	assert.Len(t, n, 3)
}

func TestNameFromStringRoot(t *testing.T) {
	assert.Equal(t, transport.Name{}, transport.NameFromString("/"))
	assert.Equal(t, transport.Name{}, transport.NameFromString(""))
}

func TestNameHasPrefix(t *testing.T) {
	full := transport.NameFromString("/sync/group/state-vector")
	assert.True(t, full.HasPrefix(transport.NameFromString("/sync/group")))
	assert.True(t, full.HasPrefix(transport.Name{}))
	assert.False(t, full.HasPrefix(transport.NameFromString("/sync/other")))
	assert.False(t, full.HasPrefix(transport.NameFromString("/sync/group/state-vector/extra")))
}

func TestNameAppend(t *testing.T) {
	base := transport.NameFromString("/sync/group")
	appended := base.Append(transport.Component("vector"), transport.Component("nonce"))
	assert.Equal(t, "/sync/group/vector/nonce", appended.String())
	assert.Len(t, base, 2, "Append must not mutate its receiver")
}

func TestPacketEncodeDecodeRoundTrip(t *testing.T) {
	pkt := transport.Packet{
		Name:      transport.NameFromString("/sync/group/state-vector"),
		Content:   []byte("version vector bytes"),
		Signature: []byte("sig-bytes"),
	}

	decoded, err := transport.DecodePacket(pkt.Encode())
	require.NoError(t, err)
	assert.Equal(t, pkt.Name.String(), decoded.Name.String())
	assert.Equal(t, pkt.Content, decoded.Content)
	assert.Equal(t, pkt.Signature, decoded.Signature)
}

func TestPacketEncodeDecodeEmptySignature(t *testing.T) {
	pkt := transport.Packet{
		Name:    transport.NameFromString("/sync"),
		Content: []byte("x"),
	}

	decoded, err := transport.DecodePacket(pkt.Encode())
	require.NoError(t, err)
	assert.Nil(t, decoded.Signature)
}

func TestDecodePacketTruncated(t *testing.T) {
	pkt := transport.Packet{
		Name:    transport.NameFromString("/sync/group"),
		Content: []byte("data"),
	}
	full := pkt.Encode()

	_, err := transport.DecodePacket(full[:len(full)-2])
	assert.Error(t, err)
}
