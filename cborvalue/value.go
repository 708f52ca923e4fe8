/*
Package cborvalue is the CBOR value model that the codec package
targets: a tagged union of exactly the CBOR items an expression codec
needs,
together with a definite-length, minimal-width byte encoding/decoding
for them.

This package has no notion of a Dhall AST; it is the sole interface
between the codec package and raw CBOR bytes. Nothing outside this
package needs to know how a CBOR item is laid out on the wire.
*/
package cborvalue

import (
	"fmt"
	"math"
	"math/big"

	"github.com/x448/float16"
)

// Kind identifies which CBOR major type (or float width) a Value holds.
type Kind int

const (
	KindUint Kind = iota
	KindNegInt
	KindBytes
	KindText
	KindArray
	KindMap
	KindBool
	KindNull
	KindFloat
	KindBigPos
	KindBigNeg
	KindTag
)

// Pair is one key/value entry of a Map value. Order is significant on
// encode (a Map preserves insertion order on output) and MUST NOT be
// relied upon by decoders.
type Pair struct {
	Key Value
	Val Value
}

// Value is one CBOR data item. Exactly the fields matching Kind are
// meaningful.
type Value struct {
	Kind Kind

	UInt  uint64 // KindUint: value. KindNegInt: value n, meaning -1-n.
	Bytes []byte // KindBytes
	Text  string // KindText
	Items []Value
	Pairs []Pair
	Bool  bool

	// KindFloat: the numeric value, at the given width. A width-16 NaN
	// is always written as the canonical half 0x7e00 regardless of
	// payload/sign.
	Float      float64
	FloatWidth int // 16, 32, or 64

	// KindBigPos, KindBigNeg: the magnitude. For KindBigNeg the value
	// represented is -1-Magnitude (matching the bignum's CBOR tag
	// semantics, RFC 7049 §2.4.2).
	Magnitude *big.Int

	TagNumber uint64
	TagValue  *Value
}

// Uint constructs an unsigned integer Value.
func Uint(v uint64) Value { return Value{Kind: KindUint, UInt: v} }

// NegInt constructs a negative integer Value representing -1-n.
func NegInt(n uint64) Value { return Value{Kind: KindNegInt, UInt: n} }

// Text constructs a text string Value.
func Text(s string) Value { return Value{Kind: KindText, Text: s} }

// Bytes constructs a byte string Value.
func Bytes(b []byte) Value { return Value{Kind: KindBytes, Bytes: b} }

// Array constructs an array Value.
func Array(items ...Value) Value { return Value{Kind: KindArray, Items: items} }

// Map constructs a map Value from already-ordered pairs.
func Map(pairs ...Pair) Value { return Value{Kind: KindMap, Pairs: pairs} }

// Bool constructs a boolean Value.
func Bool(b bool) Value { return Value{Kind: KindBool, Bool: b} }

// Null constructs the CBOR null Value.
func Null() Value { return Value{Kind: KindNull} }

// BigPos constructs a positive bignum Value (tag 2).
func BigPos(m *big.Int) Value { return Value{Kind: KindBigPos, Magnitude: m} }

// BigNeg constructs a negative bignum Value (tag 3), representing -1-m.
func BigNeg(m *big.Int) Value { return Value{Kind: KindBigNeg, Magnitude: m} }

// Tag constructs a tagged Value.
func Tag(number uint64, v Value) Value {
	vv := v
	return Value{Kind: KindTag, TagNumber: number, TagValue: &vv}
}

// Float constructs a floating point Value at the given width (16, 32, or
// 64). Callers normally use NewFloat instead, which picks the shortest
// width that round-trips exactly.
func Float(v float64, width int) Value { return Value{Kind: KindFloat, Float: v, FloatWidth: width} }

// NewFloat builds the shortest-width float Value that round-trips v:
// half if f64(f16(v)) == v, else single if f64(f32(v)) == v, else
// double. NaN is always emitted as the canonical half, regardless of
// its bit pattern, and must be special-cased before the round-trip
// test because NaN compares unequal to itself.
func NewFloat(v float64) Value {
	if math.IsNaN(v) {
		return Float(v, 16)
	}
	if f64FromF16(v) == v {
		return Float(v, 16)
	}
	if float64(float32(v)) == v {
		return Float(v, 32)
	}
	return Float(v, 64)
}

// f64FromF16 round-trips v through binary16 and back. float16 has no
// direct float64 conversion, so this goes through float32 as an
// intermediate step; every value exactly representable in binary16 is
// also exactly representable in binary32, so this loses no precision
// for the values this function is meant to recognize.
func f64FromF16(v float64) float64 {
	h := float16.Fromfloat32(float32(v))
	return float64(h.Float32())
}

// f64FromHalfBits widens a raw binary16 bit pattern to float64.
func f64FromHalfBits(bits uint16) float64 {
	return float64(float16.Frombits(bits).Float32())
}

func float32FromBits(bits uint32) float32 { return math.Float32frombits(bits) }
func float64FromBits(bits uint64) float64 { return math.Float64frombits(bits) }

// bitsF16 returns the raw 2-byte big-endian encoding of v as a half
// float, forcing the canonical bit patterns required for
// NaN, +/-Inf, and signed zero.
func bitsF16(v float64) uint16 {
	switch {
	case math.IsNaN(v):
		return 0x7e00
	case math.IsInf(v, 1):
		return 0x7c00
	case math.IsInf(v, -1):
		return 0xfc00
	default:
		return uint16(float16.Fromfloat32(float32(v)))
	}
}
