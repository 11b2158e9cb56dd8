package wire

import (
	"encoding/binary"
	"math"
)

// EncodeVarNum encodes a non-negative integer using the NDN TLV
// variable-length number encoding (1, 3, 5, or 9 bytes).
func EncodeVarNum(in uint64) []byte {
	switch {
	case in <= 0xFC:
		return []byte{byte(in)}
	case in <= 0xFFFF:
		b := make([]byte, 3)
		b[0] = 0xFD
		binary.BigEndian.PutUint16(b[1:], uint16(in))
		return b
	case in <= 0xFFFFFFFF:
		b := make([]byte, 5)
		b[0] = 0xFE
		binary.BigEndian.PutUint32(b[1:], uint32(in))
		return b
	default:
		b := make([]byte, 9)
		b[0] = 0xFF
		binary.BigEndian.PutUint64(b[1:], in)
		return b
	}
}

// DecodeVarNum decodes a variable-length number, returning the value and
// the number of bytes it occupied.
func DecodeVarNum(in []byte) (uint64, int, error) {
	if len(in) < 1 {
		return 0, 0, ErrTooShort
	}
	switch {
	case in[0] <= 0xFC:
		return uint64(in[0]), 1, nil
	case in[0] == 0xFD:
		if len(in) < 3 {
			return 0, 0, ErrTooShort
		}
		return uint64(binary.BigEndian.Uint16(in[1:3])), 3, nil
	case in[0] == 0xFE:
		if len(in) < 5 {
			return 0, 0, ErrTooShort
		}
		return uint64(binary.BigEndian.Uint32(in[1:5])), 5, nil
	default:
		if len(in) < 9 {
			return 0, 0, ErrTooShort
		}
		return binary.BigEndian.Uint64(in[1:9]), 9, nil
	}
}

// EncodeNNI encodes a non-negative integer into its minimal big-endian
// TLV-value representation (1, 2, 4, or 8 bytes).
func EncodeNNI(v uint64) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, v)
	switch {
	case v <= math.MaxUint8:
		return buf[7:]
	case v <= math.MaxUint16:
		return buf[6:]
	case v <= math.MaxUint32:
		return buf[4:]
	default:
		return buf
	}
}

// DecodeNNI decodes a minimally-encoded non-negative integer TLV value.
func DecodeNNI(value []byte) (uint64, error) {
	if len(value) == 0 {
		return 0, ErrTooShort
	}
	if len(value) > 8 {
		return 0, ErrTooLong
	}
	buf := make([]byte, 8)
	copy(buf[8-len(value):], value)
	return binary.BigEndian.Uint64(buf), nil
}
