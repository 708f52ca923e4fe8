package codec

import (
	"fmt"

	"github.com/dhall-lang/dhall-cbor/ast"
	"github.com/dhall-lang/dhall-cbor/cborvalue"
)

// Marshal encodes e as its bit-exact CBOR byte representation.
func Marshal(e *ast.Expr) []byte {
	return cborvalue.Encode(Encode(e))
}

// Unmarshal parses a CBOR byte string into a Dhall expression. It
// rejects any trailing bytes after the first complete CBOR item, and
// strips any number of nested self-describe CBOR (tag 55799) wrappers
// before dispatching.
func Unmarshal(data []byte) (*ast.Expr, error) {
	v, n, err := cborvalue.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("dhall/codec: %w", err)
	}
	if n != len(data) {
		return nil, newErr(ErrWrongArity, "", "%d trailing byte(s) after the encoded expression", len(data)-n)
	}
	return Decode(v)
}
