package cborvalue

import (
	"math"
	"math/big"
)

const (
	majorUint  = 0
	majorNeg   = 1
	majorBytes = 2
	majorText  = 3
	majorArray = 4
	majorMap   = 5
	majorTag   = 6
	majorSeven = 7
)

// Encode writes v as definite-length, minimal-width CBOR bytes.
func Encode(v Value) []byte {
	var buf []byte
	return appendValue(buf, v)
}

func appendValue(buf []byte, v Value) []byte {
	switch v.Kind {
	case KindUint:
		return appendHead(buf, majorUint, v.UInt)
	case KindNegInt:
		return appendHead(buf, majorNeg, v.UInt)
	case KindBytes:
		buf = appendHead(buf, majorBytes, uint64(len(v.Bytes)))
		return append(buf, v.Bytes...)
	case KindText:
		buf = appendHead(buf, majorText, uint64(len(v.Text)))
		return append(buf, v.Text...)
	case KindArray:
		buf = appendHead(buf, majorArray, uint64(len(v.Items)))
		for _, item := range v.Items {
			buf = appendValue(buf, item)
		}
		return buf
	case KindMap:
		buf = appendHead(buf, majorMap, uint64(len(v.Pairs)))
		for _, p := range v.Pairs {
			buf = appendValue(buf, p.Key)
			buf = appendValue(buf, p.Val)
		}
		return buf
	case KindBool:
		if v.Bool {
			return append(buf, 0xf5)
		}
		return append(buf, 0xf4)
	case KindNull:
		return append(buf, 0xf6)
	case KindFloat:
		return appendFloat(buf, v)
	case KindBigPos:
		return appendValue(buf, Tag(2, Bytes(minimalBigEndian(v.Magnitude))))
	case KindBigNeg:
		return appendValue(buf, Tag(3, Bytes(minimalBigEndian(v.Magnitude))))
	case KindTag:
		buf = appendHead(buf, majorTag, v.TagNumber)
		return appendValue(buf, *v.TagValue)
	default:
		panic("cborvalue: invalid Kind")
	}
}

// appendHead writes a major type + argument using the narrowest of the
// five CBOR integer encodings that can hold arg, per RFC 7049 §2.1 and
// the smallest-form requirement: every integer and float is encoded
// in the narrowest width that represents it exactly.
func appendHead(buf []byte, major byte, arg uint64) []byte {
	m := major << 5
	switch {
	case arg < 24:
		return append(buf, m|byte(arg))
	case arg <= 0xff:
		return append(buf, m|24, byte(arg))
	case arg <= 0xffff:
		return append(buf, m|25, byte(arg>>8), byte(arg))
	case arg <= 0xffffffff:
		return append(buf, m|26, byte(arg>>24), byte(arg>>16), byte(arg>>8), byte(arg))
	default:
		b := append(buf, m|27)
		for i := 7; i >= 0; i-- {
			b = append(b, byte(arg>>(8*uint(i))))
		}
		return b
	}
}

func appendFloat(buf []byte, v Value) []byte {
	switch v.FloatWidth {
	case 16:
		h := bitsF16(v.Float)
		return append(buf, 0xf9, byte(h>>8), byte(h))
	case 32:
		bits32 := math.Float32bits(float32(v.Float))
		return append(buf, 0xfa, byte(bits32>>24), byte(bits32>>16), byte(bits32>>8), byte(bits32))
	default:
		bits64 := math.Float64bits(v.Float)
		b := append(buf, 0xfb)
		for i := 7; i >= 0; i-- {
			b = append(b, byte(bits64>>(8*uint(i))))
		}
		return b
	}
}

// minimalBigEndian returns m's big-endian magnitude with no leading
// zero bytes (RFC 7049 §2.4.2 bignum content), except that zero itself
// encodes as a single 0x00 byte.
func minimalBigEndian(m *big.Int) []byte {
	b := m.Bytes()
	if len(b) == 0 {
		return []byte{0x00}
	}
	return b
}

