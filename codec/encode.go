/*
Package codec implements the bijection between a Dhall ast.Expr tree
and the cborvalue.Value CBOR value model. Encode is total;
Decode is partial and reports a *DecodeError on any malformed input.
*/
package codec

import (
	"math/big"
	"sort"

	"github.com/dhall-lang/dhall-cbor/ast"
	"github.com/dhall-lang/dhall-cbor/cborvalue"
	"github.com/dhall-lang/dhall-cbor/internal/multihash"
)

var maxUint64Big = new(big.Int).SetUint64(^uint64(0))

// Encode converts a Dhall expression to its CBOR value model
// representation. Encode never fails: every Expr returned by Decode,
// or any well-formed Expr a caller builds by hand, has a CBOR
// representation.
func Encode(e *ast.Expr) cborvalue.Value {
	switch e.Kind {
	case ast.KindVariable:
		return encodeVariable(e)
	case ast.KindBuiltin:
		return cborvalue.Text(e.Builtin.String())
	case ast.KindConstant:
		return cborvalue.Text(e.Const.String())
	case ast.KindLambda:
		return encodeBinder(labelLambda, e.BoundName, e.Domain, e.Body)
	case ast.KindForall:
		return encodeBinder(labelForall, e.BoundName, e.Domain, e.Body)
	case ast.KindApplication:
		return encodeApplication(e)
	case ast.KindOperator:
		return cborvalue.Array(cborvalue.Uint(labelOperator), cborvalue.Uint(uint64(e.Op)), Encode(e.Left), Encode(e.Right))
	case ast.KindCompletion:
		return cborvalue.Array(cborvalue.Uint(labelOperator), cborvalue.Uint(13), Encode(e.Left), Encode(e.Right))
	case ast.KindEmptyList:
		return encodeEmptyList(e)
	case ast.KindNonEmptyList:
		items := make([]cborvalue.Value, 0, 2+len(e.Elements))
		items = append(items, cborvalue.Uint(labelList), cborvalue.Null())
		for _, el := range e.Elements {
			items = append(items, Encode(el))
		}
		return cborvalue.Array(items...)
	case ast.KindSome:
		return cborvalue.Array(cborvalue.Uint(labelSome), cborvalue.Null(), Encode(e.SomeValue))
	case ast.KindMerge:
		items := []cborvalue.Value{cborvalue.Uint(labelMerge), Encode(e.Handler), Encode(e.Union)}
		if e.MergeAnnot != nil {
			items = append(items, Encode(e.MergeAnnot))
		}
		return cborvalue.Array(items...)
	case ast.KindToMap:
		items := []cborvalue.Value{cborvalue.Uint(labelToMap), Encode(e.ToMapRecord)}
		if e.ToMapAnnot != nil {
			items = append(items, Encode(e.ToMapAnnot))
		}
		return cborvalue.Array(items...)
	case ast.KindShowConstructor:
		return cborvalue.Array(cborvalue.Uint(labelShowConstructor), Encode(e.ShowArg))
	case ast.KindRecordType:
		return cborvalue.Array(cborvalue.Uint(labelRecordType), encodeFieldMap(e.Fields))
	case ast.KindRecordLiteral:
		return cborvalue.Array(cborvalue.Uint(labelRecordLiteral), encodeFieldMap(e.Fields))
	case ast.KindField:
		return cborvalue.Array(cborvalue.Uint(labelField), Encode(e.FieldRecord), cborvalue.Text(e.FieldLabel))
	case ast.KindProjectByLabels:
		items := make([]cborvalue.Value, 0, 2+len(e.ProjectLabels))
		items = append(items, cborvalue.Uint(labelProject), Encode(e.ProjectRecord))
		for _, l := range e.ProjectLabels {
			items = append(items, cborvalue.Text(l))
		}
		return cborvalue.Array(items...)
	case ast.KindProjectByType:
		return cborvalue.Array(cborvalue.Uint(labelProject), Encode(e.ProjectRecord), cborvalue.Array(Encode(e.ProjectType)))
	case ast.KindUnionType:
		return cborvalue.Array(cborvalue.Uint(labelUnionType), encodeUnionMap(e.Alternatives))
	case ast.KindIf:
		return cborvalue.Array(cborvalue.Uint(labelIf), Encode(e.Cond), Encode(e.Then), Encode(e.Else))
	case ast.KindBoolLiteral:
		return cborvalue.Bool(e.Bool)
	case ast.KindNaturalLiteral:
		return cborvalue.Array(cborvalue.Uint(labelNatural), encodeUnsigned(e.Natural))
	case ast.KindIntegerLiteral:
		return cborvalue.Array(cborvalue.Uint(labelInteger), encodeSigned(e.Integer))
	case ast.KindDoubleLiteral:
		return cborvalue.NewFloat(e.Double)
	case ast.KindTextLiteral:
		return encodeTextLiteral(e)
	case ast.KindBytesLiteral:
		return cborvalue.Array(cborvalue.Uint(labelBytesLiteral), cborvalue.Bytes(e.Bytes))
	case ast.KindAssert:
		return cborvalue.Array(cborvalue.Uint(labelAssert), Encode(e.AssertType))
	case ast.KindImport:
		return encodeImport(e.Import)
	case ast.KindLet:
		return encodeLet(e)
	case ast.KindAnnotation:
		return cborvalue.Array(cborvalue.Uint(labelAnnotation), Encode(e.AnnotValue), Encode(e.AnnotType))
	case ast.KindWith:
		return encodeWith(e)
	case ast.KindDateLiteral:
		return cborvalue.Array(cborvalue.Uint(labelDate), cborvalue.Uint(uint64(e.Year)), cborvalue.Uint(uint64(e.Month)), cborvalue.Uint(uint64(e.Day)))
	case ast.KindTimeLiteral:
		return encodeTime(e)
	case ast.KindTimeZoneLiteral:
		hh, mm := e.TZHour, e.TZMinute
		return cborvalue.Array(cborvalue.Uint(labelTimeZone), cborvalue.Bool(e.TZPositive), cborvalue.Uint(uint64(hh)), cborvalue.Uint(uint64(mm)))
	default:
		panic("codec: Encode: invalid ast.Kind")
	}
}

func encodeVariable(e *ast.Expr) cborvalue.Value {
	if e.VarName == "_" {
		return encodeUnsigned(e.VarIndex)
	}
	return cborvalue.Array(cborvalue.Text(e.VarName), encodeUnsigned(e.VarIndex))
}

func encodeBinder(label uint64, name string, domain, body *ast.Expr) cborvalue.Value {
	if name == "_" {
		return cborvalue.Array(cborvalue.Uint(label), Encode(domain), Encode(body))
	}
	return cborvalue.Array(cborvalue.Uint(label), cborvalue.Text(name), Encode(domain), Encode(body))
}

// encodeApplication flattens left-nested Application spines into one
// array by walking the chain of Function pointers iteratively rather
// than recursively, so deeply curried calls don't blow the stack. Each
// node's own Arguments are already a flat run; only the chain itself
// needs walking, innermost run first.
func encodeApplication(e *ast.Expr) cborvalue.Value {
	var runs [][]*ast.Expr
	fn := e
	for fn.Kind == ast.KindApplication {
		runs = append(runs, fn.Arguments)
		fn = fn.Function
	}

	items := []cborvalue.Value{cborvalue.Uint(labelApplication), Encode(fn)}
	for i := len(runs) - 1; i >= 0; i-- {
		for _, a := range runs[i] {
			items = append(items, Encode(a))
		}
	}
	return cborvalue.Array(items...)
}

func encodeEmptyList(e *ast.Expr) cborvalue.Value {
	if e.ElementType.Kind == ast.KindApplication &&
		e.ElementType.Function.Kind == ast.KindBuiltin &&
		e.ElementType.Function.Builtin == ast.BuiltinList &&
		len(e.ElementType.Arguments) == 1 {
		return cborvalue.Array(cborvalue.Uint(labelList), Encode(e.ElementType.Arguments[0]))
	}
	return cborvalue.Array(cborvalue.Uint(labelEmptyListTyped), Encode(e.ElementType))
}

func encodeFieldMap(fields []ast.RecordField) cborvalue.Value {
	sorted := append([]ast.RecordField(nil), fields...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Label < sorted[j].Label })
	pairs := make([]cborvalue.Pair, len(sorted))
	for i, f := range sorted {
		pairs[i] = cborvalue.Pair{Key: cborvalue.Text(f.Label), Val: Encode(f.Value)}
	}
	return cborvalue.Map(pairs...)
}

func encodeUnionMap(alts []ast.UnionAlt) cborvalue.Value {
	sorted := append([]ast.UnionAlt(nil), alts...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })
	pairs := make([]cborvalue.Pair, len(sorted))
	for i, a := range sorted {
		var v cborvalue.Value
		if a.Type == nil {
			v = cborvalue.Null()
		} else {
			v = Encode(a.Type)
		}
		pairs[i] = cborvalue.Pair{Key: cborvalue.Text(a.Name), Val: v}
	}
	return cborvalue.Map(pairs...)
}

func encodeTextLiteral(e *ast.Expr) cborvalue.Value {
	items := make([]cborvalue.Value, 0, 2+2*len(e.Chunks))
	items = append(items, cborvalue.Uint(labelTextLiteral))
	for _, c := range e.Chunks {
		items = append(items, cborvalue.Text(c.Prefix), Encode(c.Expr))
	}
	items = append(items, cborvalue.Text(e.Suffix))
	return cborvalue.Array(items...)
}

// encodeLet flattens contiguous nested Lets into one array.
func encodeLet(e *ast.Expr) cborvalue.Value {
	var bindings []ast.Binding
	body := e
	for body.Kind == ast.KindLet {
		bindings = append(bindings, body.Bindings...)
		body = body.LetBody
	}
	items := make([]cborvalue.Value, 0, 1+3*len(bindings)+1)
	items = append(items, cborvalue.Uint(labelLet))
	for _, b := range bindings {
		items = append(items, cborvalue.Text(b.Name))
		if b.Type == nil {
			items = append(items, cborvalue.Null())
		} else {
			items = append(items, Encode(b.Type))
		}
		items = append(items, Encode(b.Value))
	}
	items = append(items, Encode(body))
	return cborvalue.Array(items...)
}

func encodeWith(e *ast.Expr) cborvalue.Value {
	keys := make([]cborvalue.Value, len(e.WithPath))
	for i, k := range e.WithPath {
		if k.Kind == ast.PathKeyDescendOptional {
			keys[i] = cborvalue.Uint(withDescendKey)
		} else {
			keys[i] = cborvalue.Text(k.Label)
		}
	}
	return cborvalue.Array(cborvalue.Uint(labelWith), Encode(e.WithSubject), cborvalue.Array(keys...), Encode(e.WithValue))
}

func encodeTime(e *ast.Expr) cborvalue.Value {
	exponent := -e.Precision
	mantissa := encodeSigned(e.Seconds)
	fraction := cborvalue.Tag(4, cborvalue.Array(encodeSignedSmallInt(exponent), mantissa))
	return cborvalue.Array(cborvalue.Uint(labelTime), cborvalue.Uint(uint64(e.Hour)), cborvalue.Uint(uint64(e.Minute)), fraction)
}

func encodeSignedSmallInt(n int) cborvalue.Value {
	return encodeSigned(big.NewInt(int64(n)))
}

func encodeImport(imp *ast.Import) cborvalue.Value {
	items := []cborvalue.Value{cborvalue.Uint(labelImport), encodeImportHash(imp.Hash), cborvalue.Uint(uint64(imp.Mode))}

	switch imp.Scheme {
	case ast.SchemeHTTP, ast.SchemeHTTPS:
		discriminator := uint64(importSchemeHTTP)
		if imp.Scheme == ast.SchemeHTTPS {
			discriminator = importSchemeHTTPS
		}
		items = append(items, cborvalue.Uint(discriminator))
		if imp.URL.Headers == nil {
			items = append(items, cborvalue.Null())
		} else {
			items = append(items, Encode(imp.URL.Headers))
		}
		items = append(items, cborvalue.Text(imp.URL.Authority))
		for _, seg := range imp.URL.Directory {
			items = append(items, cborvalue.Text(seg))
		}
		items = append(items, cborvalue.Text(imp.URL.File))
		if imp.URL.Query == nil {
			items = append(items, cborvalue.Null())
		} else {
			items = append(items, cborvalue.Text(*imp.URL.Query))
		}
	case ast.SchemeAbsolute, ast.SchemeHere, ast.SchemeParent, ast.SchemeHome:
		items = append(items, cborvalue.Uint(uint64(pathDiscriminator(imp.Scheme))))
		for _, seg := range imp.PathDirectory {
			items = append(items, cborvalue.Text(seg))
		}
		items = append(items, cborvalue.Text(imp.PathFile))
	case ast.SchemeEnv:
		items = append(items, cborvalue.Uint(importSchemeEnv), cborvalue.Text(imp.EnvName))
	case ast.SchemeMissing:
		items = append(items, cborvalue.Uint(importSchemeMissing))
	}
	return cborvalue.Array(items...)
}

func pathDiscriminator(s ast.ImportScheme) int {
	switch s {
	case ast.SchemeAbsolute:
		return importSchemeAbsolute
	case ast.SchemeHere:
		return importSchemeHere
	case ast.SchemeParent:
		return importSchemeParent
	case ast.SchemeHome:
		return importSchemeHome
	default:
		panic("codec: pathDiscriminator: not a path scheme")
	}
}

func encodeImportHash(hash []byte) cborvalue.Value {
	if hash == nil {
		return cborvalue.Null()
	}
	return cborvalue.Bytes(multihash.EncodeSHA256(hash))
}

// encodeUnsigned encodes a non-negative value at its smallest width:
// a native uint64 if it fits, otherwise a positive bignum.
func encodeUnsigned(n *big.Int) cborvalue.Value {
	if n.Sign() >= 0 && n.Cmp(maxUint64Big) <= 0 {
		return cborvalue.Uint(n.Uint64())
	}
	return cborvalue.BigPos(n)
}

// encodeSigned encodes a signed value using the smallest of the four
// representations.
func encodeSigned(n *big.Int) cborvalue.Value {
	if n.Sign() >= 0 {
		if n.Cmp(maxUint64Big) <= 0 {
			return cborvalue.Uint(n.Uint64())
		}
		return cborvalue.BigPos(n)
	}
	// n < 0: CBOR negative int represents -1-magnitude where
	// magnitude = -1-n, i.e. magnitude = (-n) - 1.
	magnitude := new(big.Int).Neg(n)
	magnitude.Sub(magnitude, big.NewInt(1))
	if magnitude.Cmp(maxUint64Big) <= 0 {
		return cborvalue.NegInt(magnitude.Uint64())
	}
	return cborvalue.BigNeg(magnitude)
}
