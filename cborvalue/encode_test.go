package cborvalue_test

import (
	"bytes"
	"math/big"
	"testing"

	"github.com/dhall-lang/dhall-cbor/cborvalue"
)

func TestEncodeSmallestUintForm(t *testing.T) {
	cases := []struct {
		v    uint64
		want []byte
	}{
		{0, []byte{0x00}},
		{23, []byte{0x17}},
		{24, []byte{0x18, 0x18}},
		{255, []byte{0x18, 0xff}},
		{256, []byte{0x19, 0x01, 0x00}},
		{65535, []byte{0x19, 0xff, 0xff}},
		{65536, []byte{0x1a, 0x00, 0x01, 0x00, 0x00}},
		{4294967295, []byte{0x1a, 0xff, 0xff, 0xff, 0xff}},
		{4294967296, []byte{0x1b, 0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x00}},
	}
	for _, tc := range cases {
		got := cborvalue.Encode(cborvalue.Uint(tc.v))
		if !bytes.Equal(got, tc.want) {
			t.Errorf("Encode(Uint(%d)) = % x, want % x", tc.v, got, tc.want)
		}
	}
}

func TestEncodeBigPos(t *testing.T) {
	n := new(big.Int).Lsh(big.NewInt(1), 64) // 2^64
	got := cborvalue.Encode(cborvalue.BigPos(n))
	want := []byte{0xc2, 0x49, 0x01, 0, 0, 0, 0, 0, 0, 0, 0}
	if !bytes.Equal(got, want) {
		t.Errorf("Encode(BigPos(2^64)) = % x, want % x", got, want)
	}
}

func TestEncodeBigNeg(t *testing.T) {
	// represents -1-1 = -2
	got := cborvalue.Encode(cborvalue.BigNeg(big.NewInt(1)))
	want := []byte{0xc3, 0x41, 0x01}
	if !bytes.Equal(got, want) {
		t.Errorf("Encode(BigNeg(1)) = % x, want % x", got, want)
	}
}

func TestEncodeFloatWidths(t *testing.T) {
	cases := []struct {
		name string
		v    float64
		want []byte
	}{
		{"zero", 0.0, []byte{0xf9, 0x00, 0x00}},
		{"negzero", negZero(), []byte{0xf9, 0x80, 0x00}},
		{"nan", posNaN(), []byte{0xf9, 0x7e, 0x00}},
		{"posinf", posInf(), []byte{0xf9, 0x7c, 0x00}},
		{"neginf", negInf(), []byte{0xf9, 0xfc, 0x00}},
		{"half", 1.5, []byte{0xf9, 0x3e, 0x00}},
		{"single-only", 0.3333333432674408, []byte{0xfa, 0x3e, 0xaa, 0xaa, 0xab}},
		{"double", 0.1, []byte{0xfb, 0x3f, 0xb9, 0x99, 0x99, 0x99, 0x99, 0x99, 0x9a}},
	}
	for _, tc := range cases {
		got := cborvalue.Encode(cborvalue.NewFloat(tc.v))
		if !bytes.Equal(got, tc.want) {
			t.Errorf("%s: Encode(NewFloat(%v)) = % x, want % x", tc.name, tc.v, got, tc.want)
		}
	}
}

func negZero() float64 { z := 0.0; return -z }
func posNaN() float64  { var z float64; return z / z }
func posInf() float64  { return 1.0 / zero() }
func negInf() float64  { return -1.0 / zero() }
func zero() float64    { var z float64; return z }

func TestEncodeArrayAndMap(t *testing.T) {
	v := cborvalue.Array(cborvalue.Uint(1), cborvalue.Text("a"))
	got := cborvalue.Encode(v)
	want := []byte{0x82, 0x01, 0x61, 'a'}
	if !bytes.Equal(got, want) {
		t.Errorf("Encode(array) = % x, want % x", got, want)
	}

	m := cborvalue.Map(cborvalue.Pair{Key: cborvalue.Text("a"), Val: cborvalue.Uint(1)})
	got = cborvalue.Encode(m)
	want = []byte{0xa1, 0x61, 'a', 0x01}
	if !bytes.Equal(got, want) {
		t.Errorf("Encode(map) = % x, want % x", got, want)
	}
}
