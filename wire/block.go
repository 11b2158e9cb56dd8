// Package wire implements the minimal NDN TLV (Type-Length-Value) codec
// this module needs to encode and decode a VersionVector on the wire.
// It does not attempt to be a general-purpose NDN packet library: no
// Interest/Data/Name types live here, only the block primitive and the
// varint helpers built on top of it.
package wire

import "bytes"

// Block is a single encoded TLV element, optionally holding
// subelements instead of a flat value.
type Block struct {
	typ         uint32
	value       []byte
	subelements []*Block
}

// NewBlock creates a block holding a raw value.
func NewBlock(typ uint32, value []byte) *Block {
	b := &Block{typ: typ, value: make([]byte, len(value))}
	copy(b.value, value)
	return b
}

// NewParentBlock creates a block whose value is the concatenation of its
// subelements' wire encodings.
func NewParentBlock(typ uint32, children ...*Block) *Block {
	return &Block{typ: typ, subelements: children}
}

// Type returns the TLV type.
func (b *Block) Type() uint32 { return b.typ }

// Value returns the raw TLV value. It is empty for a block constructed
// with NewParentBlock; Wire computes that block's value from its
// subelements without storing it.
func (b *Block) Value() []byte { return b.value }

// Subelements returns the children added through NewParentBlock or
// Append. Blocks returned by DecodeBlock have none; ParseSubelements
// decodes their children.
func (b *Block) Subelements() []*Block { return b.subelements }

// Append adds a subelement to the end of this block's children.
func (b *Block) Append(child *Block) {
	b.subelements = append(b.subelements, child)
}

// Wire encodes the block, including any subelements, into its final
// Type-Length-Value byte representation.
func (b *Block) Wire() []byte {
	var value []byte
	if len(b.subelements) > 0 {
		var buf bytes.Buffer
		for _, child := range b.subelements {
			buf.Write(child.Wire())
		}
		value = buf.Bytes()
	} else {
		value = b.value
	}

	encType := EncodeVarNum(uint64(b.typ))
	encLen := EncodeVarNum(uint64(len(value)))

	out := make([]byte, 0, len(encType)+len(encLen)+len(value))
	out = append(out, encType...)
	out = append(out, encLen...)
	out = append(out, value...)
	return out
}

// Size returns the number of bytes this block occupies when encoded.
func (b *Block) Size() int {
	return len(b.Wire())
}

// DecodeBlock decodes a single TLV block from the front of wire,
// returning the block and the number of bytes it consumed.
func DecodeBlock(wire []byte) (*Block, int, error) {
	typ, typLen, err := DecodeVarNum(wire)
	if err != nil {
		return nil, 0, err
	}
	if typLen == len(wire) {
		return nil, 0, ErrMissingLength
	}

	length, lenLen, err := DecodeVarNum(wire[typLen:])
	if err != nil {
		return nil, 0, err
	}

	total := typLen + lenLen + int(length)
	if len(wire) < total {
		return nil, 0, ErrBufferTooShort
	}

	value := make([]byte, length)
	copy(value, wire[typLen+lenLen:total])

	return &Block{typ: uint32(typ), value: value}, total, nil
}

// ParseSubelements decodes b's value as a sequence of TLV blocks and
// returns them in wire order. It does not mutate b.
func ParseSubelements(b *Block) ([]*Block, error) {
	var children []*Block
	pos := 0
	for pos < len(b.value) {
		child, n, err := DecodeBlock(b.value[pos:])
		if err != nil {
			return nil, err
		}
		children = append(children, child)
		pos += n
	}
	return children, nil
}
