package codec_test

import (
	"errors"
	"testing"

	"github.com/dhall-lang/dhall-cbor/cborvalue"
	"github.com/dhall-lang/dhall-cbor/codec"
)

func wantErrKind(t *testing.T, err error, kind codec.DecodeErrorKind) {
	t.Helper()
	if err == nil {
		t.Fatalf("want error kind %v, got nil", kind)
	}
	var de *codec.DecodeError
	if !errors.As(err, &de) {
		t.Fatalf("want *codec.DecodeError, got %T: %v", err, err)
	}
	if de.Kind != kind {
		t.Fatalf("want kind %v, got %v (%v)", kind, de.Kind, de)
	}
}

func TestDecodeRejectsReservedLabels(t *testing.T) {
	for _, label := range []uint64{12, 13} {
		v := cborvalue.Array(cborvalue.Uint(label), cborvalue.Uint(0))
		_, err := codec.Decode(v)
		wantErrKind(t, err, codec.ErrMalformedUnionLegacy)
	}
}

func TestDecodeRejectsEmptyApplication(t *testing.T) {
	v := cborvalue.Array(cborvalue.Uint(0), cborvalue.Text("Natural"))
	_, err := codec.Decode(v)
	wantErrKind(t, err, codec.ErrEmptyApplication)
}

func TestDecodeRejectsExplicitUnderscoreBinder(t *testing.T) {
	v := cborvalue.Array(cborvalue.Uint(1), cborvalue.Text("_"), cborvalue.Text("Natural"), cborvalue.Uint(0))
	_, err := codec.Decode(v)
	wantErrKind(t, err, codec.ErrReservedName)
}

func TestDecodeRejectsLongFormUnderscoreVariable(t *testing.T) {
	v := cborvalue.Array(cborvalue.Text("_"), cborvalue.Uint(0))
	_, err := codec.Decode(v)
	wantErrKind(t, err, codec.ErrReservedName)
}

func TestDecodeRejectsUnknownLabel(t *testing.T) {
	v := cborvalue.Array(cborvalue.Uint(17), cborvalue.Uint(0))
	_, err := codec.Decode(v)
	wantErrKind(t, err, codec.ErrUnknownLabel)
}

func TestDecodeRejectsUnknownBuiltin(t *testing.T) {
	_, err := codec.Decode(cborvalue.Text("Natural/bogus"))
	wantErrKind(t, err, codec.ErrUnknownBuiltin)
}

func TestDecodeRejectsBadMultihash(t *testing.T) {
	v := cborvalue.Array(
		cborvalue.Uint(24), cborvalue.Bytes([]byte{0x12, 0x20, 1, 2, 3}), cborvalue.Uint(0), cborvalue.Uint(7),
	)
	_, err := codec.Decode(v)
	wantErrKind(t, err, codec.ErrBadMultihash)
}

func TestUnmarshalStripsSelfDescribeTagRepeatedly(t *testing.T) {
	inner := cborvalue.Uint(5)
	wrapped := cborvalue.Tag(55799, cborvalue.Tag(55799, inner))
	data := cborvalue.Encode(wrapped)

	e, err := codec.Unmarshal(data)
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if e.VarName != "_" || e.VarIndex.Int64() != 5 {
		t.Fatalf("got %+v, want Variable _@5", e)
	}
}

func TestUnmarshalRejectsTrailingBytes(t *testing.T) {
	data := append(cborvalue.Encode(cborvalue.Uint(5)), 0xff)
	_, err := codec.Unmarshal(data)
	if err == nil {
		t.Fatal("want error for trailing bytes, got nil")
	}
}
