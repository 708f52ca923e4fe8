package cborvalue

import (
	"fmt"
	"math/big"
)

// SyntaxError is returned for malformed CBOR bytes (not to be confused
// with codec.DecodeError, which reports AST-shape problems in
// already-well-formed CBOR).
type SyntaxError struct {
	Offset int
	Msg    string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("cborvalue: offset %d: %s", e.Offset, e.Msg)
}

// Decode parses exactly one definite-length CBOR data item from data
// and returns it along with the number of bytes consumed. Indefinite
// length items are rejected: this codec never needs to round-trip
// someone else's streaming encoder.
func Decode(data []byte) (Value, int, error) {
	return decodeAt(data, 0)
}

func decodeAt(data []byte, off int) (Value, int, error) {
	if off >= len(data) {
		return Value{}, off, &SyntaxError{off, "unexpected end of input"}
	}
	first := data[off]
	major := first >> 5
	info := first & 0x1f

	switch major {
	case majorUint:
		arg, n, err := readArg(data, off, info)
		if err != nil {
			return Value{}, off, err
		}
		return Uint(arg), off + n, nil
	case majorNeg:
		arg, n, err := readArg(data, off, info)
		if err != nil {
			return Value{}, off, err
		}
		return NegInt(arg), off + n, nil
	case majorBytes:
		length, n, err := readArg(data, off, info)
		if err != nil {
			return Value{}, off, err
		}
		start := off + n
		end := start + int(length)
		if end < start || end > len(data) {
			return Value{}, off, &SyntaxError{off, "byte string runs past end of input"}
		}
		b := make([]byte, length)
		copy(b, data[start:end])
		return Bytes(b), end, nil
	case majorText:
		length, n, err := readArg(data, off, info)
		if err != nil {
			return Value{}, off, err
		}
		start := off + n
		end := start + int(length)
		if end < start || end > len(data) {
			return Value{}, off, &SyntaxError{off, "text string runs past end of input"}
		}
		return Text(string(data[start:end])), end, nil
	case majorArray:
		count, n, err := readArg(data, off, info)
		if err != nil {
			return Value{}, off, err
		}
		pos := off + n
		items := make([]Value, 0, count)
		for i := uint64(0); i < count; i++ {
			item, next, err := decodeAt(data, pos)
			if err != nil {
				return Value{}, off, err
			}
			items = append(items, item)
			pos = next
		}
		return Array(items...), pos, nil
	case majorMap:
		count, n, err := readArg(data, off, info)
		if err != nil {
			return Value{}, off, err
		}
		pos := off + n
		pairs := make([]Pair, 0, count)
		for i := uint64(0); i < count; i++ {
			key, next, err := decodeAt(data, pos)
			if err != nil {
				return Value{}, off, err
			}
			val, next2, err := decodeAt(data, next)
			if err != nil {
				return Value{}, off, err
			}
			pairs = append(pairs, Pair{key, val})
			pos = next2
		}
		return Map(pairs...), pos, nil
	case majorTag:
		number, n, err := readArg(data, off, info)
		if err != nil {
			return Value{}, off, err
		}
		content, next, err := decodeAt(data, off+n)
		if err != nil {
			return Value{}, off, err
		}
		switch number {
		case 2:
			return BigPos(new(big.Int).SetBytes(content.Bytes)), next, contentMustBeBytes(content, off)
		case 3:
			return BigNeg(new(big.Int).SetBytes(content.Bytes)), next, contentMustBeBytes(content, off)
		default:
			return Tag(number, content), next, nil
		}
	case majorSeven:
		return decodeSeven(data, off, info)
	default:
		return Value{}, off, &SyntaxError{off, "impossible major type"}
	}
}

func contentMustBeBytes(v Value, off int) error {
	if v.Kind != KindBytes {
		return &SyntaxError{off, "bignum tag content must be a byte string"}
	}
	return nil
}

func decodeSeven(data []byte, off int, info byte) (Value, int, error) {
	switch info {
	case 20:
		return Bool(false), off + 1, nil
	case 21:
		return Bool(true), off + 1, nil
	case 22:
		return Null(), off + 1, nil
	case 25:
		if off+3 > len(data) {
			return Value{}, off, &SyntaxError{off, "truncated half float"}
		}
		bits := uint16(data[off+1])<<8 | uint16(data[off+2])
		return Float(f64FromHalfBits(bits), 16), off + 3, nil
	case 26:
		if off+5 > len(data) {
			return Value{}, off, &SyntaxError{off, "truncated single float"}
		}
		bits := uint32(data[off+1])<<24 | uint32(data[off+2])<<16 | uint32(data[off+3])<<8 | uint32(data[off+4])
		return Float(float64(float32FromBits(bits)), 32), off + 5, nil
	case 27:
		if off+9 > len(data) {
			return Value{}, off, &SyntaxError{off, "truncated double float"}
		}
		var bits uint64
		for i := 0; i < 8; i++ {
			bits = bits<<8 | uint64(data[off+1+i])
		}
		return Float(float64FromBits(bits), 64), off + 9, nil
	default:
		return Value{}, off, &SyntaxError{off, fmt.Sprintf("unsupported simple value %d", info)}
	}
}

// readArg reads the argument that follows a major-type byte whose
// low 5 bits are info, rejecting indefinite length (info == 31) and the
// reserved values 28-30. Non-minimal encodings are accepted (the
// smallest-form requirement binds the encoder, not the decoder), so
// this only rejects shapes with no valid length at all, not wasteful ones.
func readArg(data []byte, off int, info byte) (uint64, int, error) {
	switch {
	case info < 24:
		return uint64(info), 1, nil
	case info == 24:
		if off+2 > len(data) {
			return 0, 0, &SyntaxError{off, "truncated 1-byte length"}
		}
		return uint64(data[off+1]), 2, nil
	case info == 25:
		if off+3 > len(data) {
			return 0, 0, &SyntaxError{off, "truncated 2-byte length"}
		}
		return uint64(data[off+1])<<8 | uint64(data[off+2]), 3, nil
	case info == 26:
		if off+5 > len(data) {
			return 0, 0, &SyntaxError{off, "truncated 4-byte length"}
		}
		v := uint64(data[off+1])<<24 | uint64(data[off+2])<<16 | uint64(data[off+3])<<8 | uint64(data[off+4])
		return v, 5, nil
	case info == 27:
		if off+9 > len(data) {
			return 0, 0, &SyntaxError{off, "truncated 8-byte length"}
		}
		var v uint64
		for i := 0; i < 8; i++ {
			v = v<<8 | uint64(data[off+1+i])
		}
		return v, 9, nil
	default:
		return 0, 0, &SyntaxError{off, "indefinite-length items are not supported"}
	}
}
