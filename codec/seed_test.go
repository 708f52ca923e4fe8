package codec_test

import (
	"math/big"
	"testing"

	"github.com/dhall-lang/dhall-cbor/ast"
	"github.com/dhall-lang/dhall-cbor/cborvalue"
	"github.com/dhall-lang/dhall-cbor/codec"
)

func bi(n int64) *big.Int { return big.NewInt(n) }

func TestEncodeSeedScenarios(t *testing.T) {
	cases := []struct {
		name string
		expr *ast.Expr
		want cborvalue.Value
	}{
		{
			"variable _@2",
			&ast.Expr{Kind: ast.KindVariable, VarName: "_", VarIndex: bi(2)},
			cborvalue.Uint(2),
		},
		{
			`variable x@0`,
			&ast.Expr{Kind: ast.KindVariable, VarName: "x", VarIndex: bi(0)},
			cborvalue.Array(cborvalue.Text("x"), cborvalue.Uint(0)),
		},
		{
			"builtin Natural/fold",
			&ast.Expr{Kind: ast.KindBuiltin, Builtin: ast.BuiltinNaturalFold},
			cborvalue.Text("Natural/fold"),
		},
		{
			`lambda (_ : Natural) -> _@0`,
			&ast.Expr{
				Kind:      ast.KindLambda,
				BoundName: "_",
				Domain:    &ast.Expr{Kind: ast.KindBuiltin, Builtin: ast.BuiltinNatural},
				Body:      &ast.Expr{Kind: ast.KindVariable, VarName: "_", VarIndex: bi(0)},
			},
			cborvalue.Array(cborvalue.Uint(1), cborvalue.Text("Natural"), cborvalue.Uint(0)),
		},
		{
			"application f 1 2",
			&ast.Expr{
				Kind:     ast.KindApplication,
				Function: &ast.Expr{Kind: ast.KindVariable, VarName: "f", VarIndex: bi(0)},
				Arguments: []*ast.Expr{
					{Kind: ast.KindNaturalLiteral, Natural: bi(1)},
					{Kind: ast.KindNaturalLiteral, Natural: bi(2)},
				},
			},
			cborvalue.Array(
				cborvalue.Uint(0),
				cborvalue.Array(cborvalue.Text("f"), cborvalue.Uint(0)),
				cborvalue.Array(cborvalue.Uint(15), cborvalue.Uint(1)),
				cborvalue.Array(cborvalue.Uint(15), cborvalue.Uint(2)),
			),
		},
		{
			"record literal { b = 1, a = 2 }",
			&ast.Expr{
				Kind: ast.KindRecordLiteral,
				Fields: []ast.RecordField{
					{Label: "b", Value: &ast.Expr{Kind: ast.KindNaturalLiteral, Natural: bi(1)}},
					{Label: "a", Value: &ast.Expr{Kind: ast.KindNaturalLiteral, Natural: bi(2)}},
				},
			},
			cborvalue.Array(cborvalue.Uint(8), cborvalue.Map(
				cborvalue.Pair{Key: cborvalue.Text("a"), Val: cborvalue.Array(cborvalue.Uint(15), cborvalue.Uint(2))},
				cborvalue.Pair{Key: cborvalue.Text("b"), Val: cborvalue.Array(cborvalue.Uint(15), cborvalue.Uint(1))},
			)),
		},
		{
			"natural literal 2^64",
			&ast.Expr{Kind: ast.KindNaturalLiteral, Natural: new(big.Int).Lsh(big.NewInt(1), 64)},
			cborvalue.Array(cborvalue.Uint(15), cborvalue.BigPos(new(big.Int).Lsh(big.NewInt(1), 64))),
		},
		{
			"double 0.0",
			&ast.Expr{Kind: ast.KindDoubleLiteral, Double: 0.0},
			cborvalue.Float(0.0, 16),
		},
		{
			"double -0.0",
			&ast.Expr{Kind: ast.KindDoubleLiteral, Double: negZero()},
			cborvalue.Float(negZero(), 16),
		},
		{
			`text literal "hi ${x} there"`,
			&ast.Expr{
				Kind: ast.KindTextLiteral,
				Chunks: []ast.TextChunk{
					{Prefix: "hi ", Expr: &ast.Expr{Kind: ast.KindVariable, VarName: "x", VarIndex: bi(0)}},
				},
				Suffix: " there",
			},
			cborvalue.Array(
				cborvalue.Uint(18),
				cborvalue.Text("hi "),
				cborvalue.Array(cborvalue.Text("x"), cborvalue.Uint(0)),
				cborvalue.Text(" there"),
			),
		},
		{
			"remote import with query, no hash, Code mode",
			&ast.Expr{Kind: ast.KindImport, Import: &ast.Import{
				Scheme: ast.SchemeHTTPS,
				Mode:   ast.ModeCode,
				URL: &ast.ImportURL{
					HTTPS:     true,
					Authority: "example.com",
					Directory: []string{"a"},
					File:      "b",
					Query:     strPtr("q=1"),
				},
			}},
			cborvalue.Array(
				cborvalue.Uint(24), cborvalue.Null(), cborvalue.Uint(0), cborvalue.Uint(1),
				cborvalue.Null(), cborvalue.Text("example.com"),
				cborvalue.Text("a"), cborvalue.Text("b"), cborvalue.Text("q=1"),
			),
		},
		{
			"let x : Natural = 1 in let y = 2 in x",
			&ast.Expr{
				Kind: ast.KindLet,
				Bindings: []ast.Binding{
					{Name: "x", Type: &ast.Expr{Kind: ast.KindBuiltin, Builtin: ast.BuiltinNatural}, Value: &ast.Expr{Kind: ast.KindNaturalLiteral, Natural: bi(1)}},
					{Name: "y", Value: &ast.Expr{Kind: ast.KindNaturalLiteral, Natural: bi(2)}},
				},
				LetBody: &ast.Expr{Kind: ast.KindVariable, VarName: "x", VarIndex: bi(0)},
			},
			cborvalue.Array(
				cborvalue.Uint(25),
				cborvalue.Text("x"), cborvalue.Text("Natural"), cborvalue.Array(cborvalue.Uint(15), cborvalue.Uint(1)),
				cborvalue.Text("y"), cborvalue.Null(), cborvalue.Array(cborvalue.Uint(15), cborvalue.Uint(2)),
				cborvalue.Array(cborvalue.Text("x"), cborvalue.Uint(0)),
			),
		},
		{
			"e with ?.foo = v",
			&ast.Expr{
				Kind:        ast.KindWith,
				WithSubject: &ast.Expr{Kind: ast.KindVariable, VarName: "e", VarIndex: bi(0)},
				WithPath: []ast.PathKey{
					{Kind: ast.PathKeyDescendOptional},
					{Kind: ast.PathKeyLabel, Label: "foo"},
				},
				WithValue: &ast.Expr{Kind: ast.KindVariable, VarName: "v", VarIndex: bi(0)},
			},
			cborvalue.Array(
				cborvalue.Uint(29),
				cborvalue.Array(cborvalue.Text("e"), cborvalue.Uint(0)),
				cborvalue.Array(cborvalue.Uint(0), cborvalue.Text("foo")),
				cborvalue.Array(cborvalue.Text("v"), cborvalue.Uint(0)),
			),
		},
		{
			"date 2020-01-02",
			&ast.Expr{Kind: ast.KindDateLiteral, Year: 2020, Month: 1, Day: 2},
			cborvalue.Array(cborvalue.Uint(30), cborvalue.Uint(2020), cborvalue.Uint(1), cborvalue.Uint(2)),
		},
		{
			"time 12:30:15.25 precision 2",
			&ast.Expr{Kind: ast.KindTimeLiteral, Hour: 12, Minute: 30, Seconds: bi(1525), Precision: 2},
			cborvalue.Array(
				cborvalue.Uint(31), cborvalue.Uint(12), cborvalue.Uint(30),
				cborvalue.Tag(4, cborvalue.Array(cborvalue.NegInt(1), cborvalue.Uint(1525))),
			),
		},
		{
			"timezone +05:30",
			&ast.Expr{Kind: ast.KindTimeZoneLiteral, TZPositive: true, TZHour: 5, TZMinute: 30},
			cborvalue.Array(cborvalue.Uint(32), cborvalue.Bool(true), cborvalue.Uint(5), cborvalue.Uint(30)),
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := codec.Encode(tc.expr)
			if !valuesEqual(got, tc.want) {
				t.Errorf("Encode(%s):\n got  %#v\n want %#v", tc.name, got, tc.want)
			}
		})
	}
}

func negZero() float64 {
	z := 0.0
	return -z
}

func strPtr(s string) *string { return &s }

// valuesEqual reports whether two cborvalue.Value trees encode to the
// same CBOR bytes, so values that serialize identically compare equal
// regardless of how their *big.Int and slice fields are laid out.
func valuesEqual(a, b cborvalue.Value) bool {
	ea := cborvalue.Encode(a)
	eb := cborvalue.Encode(b)
	if len(ea) != len(eb) {
		return false
	}
	for i := range ea {
		if ea[i] != eb[i] {
			return false
		}
	}
	return true
}
