package codec

import (
	"math/big"

	"github.com/dhall-lang/dhall-cbor/ast"
	"github.com/dhall-lang/dhall-cbor/cborvalue"
	"github.com/dhall-lang/dhall-cbor/internal/multihash"
)

// Decode converts a CBOR value model tree back into a Dhall
// expression. It strips any
// number of nested "self-describe CBOR" (tag 55799) wrappers before
// dispatching, per §4.10 and testable property 5.
func Decode(v cborvalue.Value) (*ast.Expr, error) {
	return decode(unwrapSelfDescribe(v), "")
}

func unwrapSelfDescribe(v cborvalue.Value) cborvalue.Value {
	for v.Kind == cborvalue.KindTag && v.TagNumber == selfDescribeCBORTag {
		v = *v.TagValue
	}
	return v
}

func decode(v cborvalue.Value, p string) (*ast.Expr, error) {
	switch v.Kind {
	case cborvalue.KindUint:
		return &ast.Expr{Kind: ast.KindVariable, VarName: "_", VarIndex: new(big.Int).SetUint64(v.UInt)}, nil
	case cborvalue.KindBigPos:
		return &ast.Expr{Kind: ast.KindVariable, VarName: "_", VarIndex: new(big.Int).Set(v.Magnitude)}, nil
	case cborvalue.KindBool:
		return &ast.Expr{Kind: ast.KindBoolLiteral, Bool: v.Bool}, nil
	case cborvalue.KindFloat:
		return &ast.Expr{Kind: ast.KindDoubleLiteral, Double: v.Float}, nil
	case cborvalue.KindText:
		return decodeIdentifier(v.Text, p)
	case cborvalue.KindArray:
		return decodeArray(v.Items, p)
	default:
		return nil, newErr(ErrTypeMismatch, p, "got CBOR kind %v, expected an expression", v.Kind)
	}
}

func decodeIdentifier(s string, p string) (*ast.Expr, error) {
	if c, ok := ast.LookupConstant(s); ok {
		return &ast.Expr{Kind: ast.KindConstant, Const: c}, nil
	}
	if b, ok := ast.LookupBuiltin(s); ok {
		return &ast.Expr{Kind: ast.KindBuiltin, Builtin: b}, nil
	}
	return nil, newErr(ErrUnknownBuiltin, p, "unrecognized identifier %q", s)
}

func decodeArray(items []cborvalue.Value, p string) (*ast.Expr, error) {
	if len(items) == 0 {
		return nil, newErr(ErrWrongArity, p, "empty array is not a valid expression")
	}
	if items[0].Kind == cborvalue.KindText {
		return decodeVariable(items, p)
	}
	if items[0].Kind != cborvalue.KindUint {
		return nil, newErr(ErrTypeMismatch, p, "array must start with a label integer or a variable name")
	}
	label := items[0].UInt

	switch label {
	case labelApplication:
		return decodeApplication(items, p)
	case labelLambda:
		return decodeBinder(ast.KindLambda, items, p)
	case labelForall:
		return decodeBinder(ast.KindForall, items, p)
	case labelOperator:
		return decodeOperator(items, p)
	case labelList:
		return decodeList(items, p)
	case labelSome:
		return decodeSome(items, p)
	case labelMerge:
		return decodeMerge(items, p)
	case labelRecordType:
		return decodeRecord(ast.KindRecordType, items, p)
	case labelRecordLiteral:
		return decodeRecord(ast.KindRecordLiteral, items, p)
	case labelField:
		return decodeField(items, p)
	case labelProject:
		return decodeProject(items, p)
	case labelUnionType:
		return decodeUnionType(items, p)
	case labelLegacyUnion, labelLegacyConstruct:
		return nil, newErr(ErrMalformedUnionLegacy, p, "label %d is reserved and no longer decodable", label)
	case labelIf:
		return decodeIf(items, p)
	case labelNatural:
		return decodeNatural(items, p)
	case labelInteger:
		return decodeInteger(items, p)
	case labelTextLiteral:
		return decodeTextLiteral(items, p)
	case labelAssert:
		return decodeUnary(ast.KindAssert, items, p, func(e *ast.Expr, t *ast.Expr) { e.AssertType = t })
	case labelImport:
		return decodeImport(items, p)
	case labelLet:
		return decodeLet(items, p)
	case labelAnnotation:
		return decodeAnnotation(items, p)
	case labelToMap:
		return decodeToMap(items, p)
	case labelEmptyListTyped:
		return decodeEmptyListTyped(items, p)
	case labelWith:
		return decodeWith(items, p)
	case labelDate:
		return decodeDate(items, p)
	case labelTime:
		return decodeTime(items, p)
	case labelTimeZone:
		return decodeTimeZone(items, p)
	case labelBytesLiteral:
		return decodeBytesLiteral(items, p)
	case labelShowConstructor:
		return decodeUnary(ast.KindShowConstructor, items, p, func(e *ast.Expr, t *ast.Expr) { e.ShowArg = t })
	default:
		return nil, newErr(ErrUnknownLabel, p, "unknown label %d", label)
	}
}

func decodeVariable(items []cborvalue.Value, p string) (*ast.Expr, error) {
	if len(items) != 2 {
		return nil, newErr(ErrWrongArity, p, "variable array must have 2 elements, got %d", len(items))
	}
	name := items[0].Text
	if name == "_" {
		return nil, newErr(ErrReservedName, path(p, 0), "variable named \"_\" must use the naked-integer form")
	}
	idx, err := decodeNonNegative(items[1], path(p, 1))
	if err != nil {
		return nil, err
	}
	return &ast.Expr{Kind: ast.KindVariable, VarName: name, VarIndex: idx}, nil
}

func decodeNonNegative(v cborvalue.Value, p string) (*big.Int, error) {
	switch v.Kind {
	case cborvalue.KindUint:
		return new(big.Int).SetUint64(v.UInt), nil
	case cborvalue.KindBigPos:
		return new(big.Int).Set(v.Magnitude), nil
	default:
		return nil, newErr(ErrTypeMismatch, p, "expected a non-negative integer, got CBOR kind %v", v.Kind)
	}
}

func decodeApplication(items []cborvalue.Value, p string) (*ast.Expr, error) {
	if len(items) == 2 {
		return nil, newErr(ErrEmptyApplication, p, "application must have at least one argument")
	}
	if len(items) < 2 {
		return nil, newErr(ErrWrongArity, p, "application array too short")
	}
	fn, err := decode(items[1], path(p, 1))
	if err != nil {
		return nil, err
	}
	args := make([]*ast.Expr, 0, len(items)-2)
	for i := 2; i < len(items); i++ {
		a, err := decode(items[i], path(p, i))
		if err != nil {
			return nil, err
		}
		args = append(args, a)
	}
	return &ast.Expr{Kind: ast.KindApplication, Function: fn, Arguments: args}, nil
}

func decodeBinder(kind ast.Kind, items []cborvalue.Value, p string) (*ast.Expr, error) {
	var name string
	var domainIdx, bodyIdx int
	switch len(items) {
	case 3:
		name, domainIdx, bodyIdx = "_", 1, 2
	case 4:
		if items[1].Kind != cborvalue.KindText {
			return nil, newErr(ErrTypeMismatch, path(p, 1), "binder name must be a text string")
		}
		name = items[1].Text
		if name == "_" {
			return nil, newErr(ErrReservedName, path(p, 1), "explicit binder name must not be \"_\"")
		}
		domainIdx, bodyIdx = 2, 3
	default:
		return nil, newErr(ErrWrongArity, p, "binder array must have 3 or 4 elements, got %d", len(items))
	}
	domain, err := decode(items[domainIdx], path(p, domainIdx))
	if err != nil {
		return nil, err
	}
	body, err := decode(items[bodyIdx], path(p, bodyIdx))
	if err != nil {
		return nil, err
	}
	return &ast.Expr{Kind: kind, BoundName: name, Domain: domain, Body: body}, nil
}

func decodeOperator(items []cborvalue.Value, p string) (*ast.Expr, error) {
	if len(items) != 4 {
		return nil, newErr(ErrWrongArity, p, "operator array must have 4 elements, got %d", len(items))
	}
	if items[1].Kind != cborvalue.KindUint || items[1].UInt > 13 {
		return nil, newErr(ErrBadOperator, path(p, 1), "operator code must be an integer in 0..13")
	}
	left, err := decode(items[2], path(p, 2))
	if err != nil {
		return nil, err
	}
	right, err := decode(items[3], path(p, 3))
	if err != nil {
		return nil, err
	}
	op := ast.Operator(items[1].UInt)
	if op == ast.OpCompletion {
		return &ast.Expr{Kind: ast.KindCompletion, Left: left, Right: right}, nil
	}
	return &ast.Expr{Kind: ast.KindOperator, Op: op, Left: left, Right: right}, nil
}

func decodeList(items []cborvalue.Value, p string) (*ast.Expr, error) {
	if len(items) < 2 {
		return nil, newErr(ErrWrongArity, p, "list array too short")
	}
	if items[1].Kind == cborvalue.KindNull {
		if len(items) < 3 {
			return nil, newErr(ErrWrongArity, p, "non-empty list must have at least one element")
		}
		elements := make([]*ast.Expr, 0, len(items)-2)
		for i := 2; i < len(items); i++ {
			el, err := decode(items[i], path(p, i))
			if err != nil {
				return nil, err
			}
			elements = append(elements, el)
		}
		return &ast.Expr{Kind: ast.KindNonEmptyList, Elements: elements}, nil
	}
	if len(items) != 2 {
		return nil, newErr(ErrWrongArity, p, "typed empty list array must have exactly 2 elements")
	}
	elemType, err := decode(items[1], path(p, 1))
	if err != nil {
		return nil, err
	}
	annot := &ast.Expr{
		Kind:     ast.KindApplication,
		Function: &ast.Expr{Kind: ast.KindBuiltin, Builtin: ast.BuiltinList},
		Arguments: []*ast.Expr{elemType},
	}
	return &ast.Expr{Kind: ast.KindEmptyList, ElementType: annot}, nil
}

func decodeEmptyListTyped(items []cborvalue.Value, p string) (*ast.Expr, error) {
	if len(items) != 2 {
		return nil, newErr(ErrWrongArity, p, "label 28 array must have exactly 2 elements")
	}
	t, err := decode(items[1], path(p, 1))
	if err != nil {
		return nil, err
	}
	return &ast.Expr{Kind: ast.KindEmptyList, ElementType: t}, nil
}

func decodeSome(items []cborvalue.Value, p string) (*ast.Expr, error) {
	if len(items) != 3 {
		return nil, newErr(ErrWrongArity, p, "Some array must have 3 elements, got %d", len(items))
	}
	if items[1].Kind != cborvalue.KindNull {
		return nil, newErr(ErrTypeMismatch, path(p, 1), "Some's second element must be null")
	}
	val, err := decode(items[2], path(p, 2))
	if err != nil {
		return nil, err
	}
	return &ast.Expr{Kind: ast.KindSome, SomeValue: val}, nil
}

func decodeMerge(items []cborvalue.Value, p string) (*ast.Expr, error) {
	if len(items) != 3 && len(items) != 4 {
		return nil, newErr(ErrWrongArity, p, "merge array must have 3 or 4 elements, got %d", len(items))
	}
	handler, err := decode(items[1], path(p, 1))
	if err != nil {
		return nil, err
	}
	union, err := decode(items[2], path(p, 2))
	if err != nil {
		return nil, err
	}
	e := &ast.Expr{Kind: ast.KindMerge, Handler: handler, Union: union}
	if len(items) == 4 {
		annot, err := decode(items[3], path(p, 3))
		if err != nil {
			return nil, err
		}
		e.MergeAnnot = annot
	}
	return e, nil
}

func decodeRecord(kind ast.Kind, items []cborvalue.Value, p string) (*ast.Expr, error) {
	if len(items) != 2 {
		return nil, newErr(ErrWrongArity, p, "record array must have 2 elements, got %d", len(items))
	}
	if items[1].Kind != cborvalue.KindMap {
		return nil, newErr(ErrTypeMismatch, path(p, 1), "record fields must be a map")
	}
	fields := make([]ast.RecordField, 0, len(items[1].Pairs))
	for i, pair := range items[1].Pairs {
		if pair.Key.Kind != cborvalue.KindText {
			return nil, newErr(ErrTypeMismatch, path(path(p, 1), i), "field label must be a text string")
		}
		val, err := decode(pair.Val, path(path(p, 1), pair.Key.Text))
		if err != nil {
			return nil, err
		}
		fields = append(fields, ast.RecordField{Label: pair.Key.Text, Value: val})
	}
	return &ast.Expr{Kind: kind, Fields: fields}, nil
}

func decodeField(items []cborvalue.Value, p string) (*ast.Expr, error) {
	if len(items) != 3 {
		return nil, newErr(ErrWrongArity, p, "field access array must have 3 elements, got %d", len(items))
	}
	rec, err := decode(items[1], path(p, 1))
	if err != nil {
		return nil, err
	}
	if items[2].Kind != cborvalue.KindText {
		return nil, newErr(ErrTypeMismatch, path(p, 2), "field label must be a text string")
	}
	return &ast.Expr{Kind: ast.KindField, FieldRecord: rec, FieldLabel: items[2].Text}, nil
}

func decodeProject(items []cborvalue.Value, p string) (*ast.Expr, error) {
	if len(items) < 2 {
		return nil, newErr(ErrWrongArity, p, "project array too short")
	}
	rec, err := decode(items[1], path(p, 1))
	if err != nil {
		return nil, err
	}
	if len(items) == 3 && items[2].Kind == cborvalue.KindArray {
		inner := items[2].Items
		if len(inner) != 1 {
			return nil, newErr(ErrWrongArity, p, "project-by-type wrapper array must hold exactly one type")
		}
		t, err := decode(inner[0], path(path(p, 2), 0))
		if err != nil {
			return nil, err
		}
		return &ast.Expr{Kind: ast.KindProjectByType, ProjectRecord: rec, ProjectType: t}, nil
	}
	labels := make([]string, 0, len(items)-2)
	for i := 2; i < len(items); i++ {
		if items[i].Kind != cborvalue.KindText {
			return nil, newErr(ErrTypeMismatch, path(p, i), "projected label must be a text string")
		}
		labels = append(labels, items[i].Text)
	}
	return &ast.Expr{Kind: ast.KindProjectByLabels, ProjectRecord: rec, ProjectLabels: labels}, nil
}

func decodeUnionType(items []cborvalue.Value, p string) (*ast.Expr, error) {
	if len(items) != 2 {
		return nil, newErr(ErrWrongArity, p, "union type array must have 2 elements, got %d", len(items))
	}
	if items[1].Kind != cborvalue.KindMap {
		return nil, newErr(ErrTypeMismatch, path(p, 1), "union alternatives must be a map")
	}
	alts := make([]ast.UnionAlt, 0, len(items[1].Pairs))
	for i, pair := range items[1].Pairs {
		if pair.Key.Kind != cborvalue.KindText {
			return nil, newErr(ErrTypeMismatch, path(path(p, 1), i), "alternative name must be a text string")
		}
		if pair.Val.Kind == cborvalue.KindNull {
			alts = append(alts, ast.UnionAlt{Name: pair.Key.Text})
			continue
		}
		t, err := decode(pair.Val, path(path(p, 1), pair.Key.Text))
		if err != nil {
			return nil, err
		}
		alts = append(alts, ast.UnionAlt{Name: pair.Key.Text, Type: t})
	}
	return &ast.Expr{Kind: ast.KindUnionType, Alternatives: alts}, nil
}

func decodeIf(items []cborvalue.Value, p string) (*ast.Expr, error) {
	if len(items) != 4 {
		return nil, newErr(ErrWrongArity, p, "if array must have 4 elements, got %d", len(items))
	}
	cond, err := decode(items[1], path(p, 1))
	if err != nil {
		return nil, err
	}
	then, err := decode(items[2], path(p, 2))
	if err != nil {
		return nil, err
	}
	els, err := decode(items[3], path(p, 3))
	if err != nil {
		return nil, err
	}
	return &ast.Expr{Kind: ast.KindIf, Cond: cond, Then: then, Else: els}, nil
}

func decodeNatural(items []cborvalue.Value, p string) (*ast.Expr, error) {
	if len(items) != 2 {
		return nil, newErr(ErrWrongArity, p, "Natural literal array must have 2 elements, got %d", len(items))
	}
	n, err := decodeNonNegative(items[1], path(p, 1))
	if err != nil {
		return nil, err
	}
	return &ast.Expr{Kind: ast.KindNaturalLiteral, Natural: n}, nil
}

func decodeInteger(items []cborvalue.Value, p string) (*ast.Expr, error) {
	if len(items) != 2 {
		return nil, newErr(ErrWrongArity, p, "Integer literal array must have 2 elements, got %d", len(items))
	}
	n, err := decodeSignedValue(items[1], path(p, 1))
	if err != nil {
		return nil, err
	}
	return &ast.Expr{Kind: ast.KindIntegerLiteral, Integer: n}, nil
}

func decodeSignedValue(v cborvalue.Value, p string) (*big.Int, error) {
	switch v.Kind {
	case cborvalue.KindUint:
		return new(big.Int).SetUint64(v.UInt), nil
	case cborvalue.KindBigPos:
		return new(big.Int).Set(v.Magnitude), nil
	case cborvalue.KindNegInt:
		n := new(big.Int).SetUint64(v.UInt)
		n.Add(n, big.NewInt(1))
		return n.Neg(n), nil
	case cborvalue.KindBigNeg:
		n := new(big.Int).Set(v.Magnitude)
		n.Add(n, big.NewInt(1))
		return n.Neg(n), nil
	default:
		return nil, newErr(ErrTypeMismatch, p, "expected an integer, got CBOR kind %v", v.Kind)
	}
}

func decodeTextLiteral(items []cborvalue.Value, p string) (*ast.Expr, error) {
	trailing := items[1:]
	if len(trailing) == 0 || len(trailing)%2 == 0 {
		return nil, newErr(ErrMalformedText, p, "text literal must have an odd number of trailing elements, got %d", len(trailing))
	}
	nChunks := (len(trailing) - 1) / 2
	chunks := make([]ast.TextChunk, 0, nChunks)
	for k := 0; k < nChunks; k++ {
		prefixIdx := 1 + 2*k
		exprIdx := prefixIdx + 1
		if items[prefixIdx].Kind != cborvalue.KindText {
			return nil, newErr(ErrTypeMismatch, path(p, prefixIdx), "text chunk prefix must be a text string")
		}
		e, err := decode(items[exprIdx], path(p, exprIdx))
		if err != nil {
			return nil, err
		}
		chunks = append(chunks, ast.TextChunk{Prefix: items[prefixIdx].Text, Expr: e})
	}
	suffixIdx := len(items) - 1
	if items[suffixIdx].Kind != cborvalue.KindText {
		return nil, newErr(ErrTypeMismatch, path(p, suffixIdx), "text literal suffix must be a text string")
	}
	return &ast.Expr{Kind: ast.KindTextLiteral, Chunks: chunks, Suffix: items[suffixIdx].Text}, nil
}

func decodeBytesLiteral(items []cborvalue.Value, p string) (*ast.Expr, error) {
	if len(items) != 2 {
		return nil, newErr(ErrWrongArity, p, "bytes literal array must have 2 elements, got %d", len(items))
	}
	if items[1].Kind != cborvalue.KindBytes {
		return nil, newErr(ErrTypeMismatch, path(p, 1), "bytes literal payload must be a byte string")
	}
	return &ast.Expr{Kind: ast.KindBytesLiteral, Bytes: items[1].Bytes}, nil
}

func decodeUnary(kind ast.Kind, items []cborvalue.Value, p string, set func(*ast.Expr, *ast.Expr)) (*ast.Expr, error) {
	if len(items) != 2 {
		return nil, newErr(ErrWrongArity, p, "array must have 2 elements, got %d", len(items))
	}
	inner, err := decode(items[1], path(p, 1))
	if err != nil {
		return nil, err
	}
	e := &ast.Expr{Kind: kind}
	set(e, inner)
	return e, nil
}

func decodeLet(items []cborvalue.Value, p string) (*ast.Expr, error) {
	if len(items) < 5 || (len(items)-2)%3 != 0 {
		return nil, newErr(ErrWrongArity, p, "let array has invalid length %d", len(items))
	}
	count := (len(items) - 2) / 3
	bindings := make([]ast.Binding, 0, count)
	for k := 0; k < count; k++ {
		nameIdx := 1 + 3*k
		typeIdx := nameIdx + 1
		valueIdx := nameIdx + 2
		if items[nameIdx].Kind != cborvalue.KindText {
			return nil, newErr(ErrTypeMismatch, path(p, nameIdx), "let binding name must be a text string")
		}
		var typ *ast.Expr
		if items[typeIdx].Kind != cborvalue.KindNull {
			t, err := decode(items[typeIdx], path(p, typeIdx))
			if err != nil {
				return nil, err
			}
			typ = t
		}
		val, err := decode(items[valueIdx], path(p, valueIdx))
		if err != nil {
			return nil, err
		}
		bindings = append(bindings, ast.Binding{Name: items[nameIdx].Text, Type: typ, Value: val})
	}
	body, err := decode(items[len(items)-1], path(p, len(items)-1))
	if err != nil {
		return nil, err
	}
	return &ast.Expr{Kind: ast.KindLet, Bindings: bindings, LetBody: body}, nil
}

func decodeAnnotation(items []cborvalue.Value, p string) (*ast.Expr, error) {
	if len(items) != 3 {
		return nil, newErr(ErrWrongArity, p, "annotation array must have 3 elements, got %d", len(items))
	}
	val, err := decode(items[1], path(p, 1))
	if err != nil {
		return nil, err
	}
	typ, err := decode(items[2], path(p, 2))
	if err != nil {
		return nil, err
	}
	return &ast.Expr{Kind: ast.KindAnnotation, AnnotValue: val, AnnotType: typ}, nil
}

func decodeToMap(items []cborvalue.Value, p string) (*ast.Expr, error) {
	if len(items) != 2 && len(items) != 3 {
		return nil, newErr(ErrWrongArity, p, "toMap array must have 2 or 3 elements, got %d", len(items))
	}
	rec, err := decode(items[1], path(p, 1))
	if err != nil {
		return nil, err
	}
	e := &ast.Expr{Kind: ast.KindToMap, ToMapRecord: rec}
	if len(items) == 3 {
		annot, err := decode(items[2], path(p, 2))
		if err != nil {
			return nil, err
		}
		e.ToMapAnnot = annot
	}
	return e, nil
}

func decodeWith(items []cborvalue.Value, p string) (*ast.Expr, error) {
	if len(items) != 4 {
		return nil, newErr(ErrWrongArity, p, "with array must have 4 elements, got %d", len(items))
	}
	subject, err := decode(items[1], path(p, 1))
	if err != nil {
		return nil, err
	}
	if items[2].Kind != cborvalue.KindArray || len(items[2].Items) == 0 {
		return nil, newErr(ErrWrongArity, p, "with path must be a non-empty array")
	}
	keys := make([]ast.PathKey, 0, len(items[2].Items))
	for i, k := range items[2].Items {
		switch {
		case k.Kind == cborvalue.KindUint && k.UInt == withDescendKey:
			keys = append(keys, ast.PathKey{Kind: ast.PathKeyDescendOptional})
		case k.Kind == cborvalue.KindText:
			keys = append(keys, ast.PathKey{Kind: ast.PathKeyLabel, Label: k.Text})
		default:
			return nil, newErr(ErrTypeMismatch, path(path(p, 2), i), "with path step must be 0 or a text label")
		}
	}
	value, err := decode(items[3], path(p, 3))
	if err != nil {
		return nil, err
	}
	return &ast.Expr{Kind: ast.KindWith, WithSubject: subject, WithPath: keys, WithValue: value}, nil
}

func decodeDate(items []cborvalue.Value, p string) (*ast.Expr, error) {
	if len(items) != 4 {
		return nil, newErr(ErrMalformedDate, p, "date array must have 4 elements, got %d", len(items))
	}
	y, err := decodeUintField(items[1], path(p, 1), ErrMalformedDate)
	if err != nil {
		return nil, err
	}
	m, err := decodeUintField(items[2], path(p, 2), ErrMalformedDate)
	if err != nil {
		return nil, err
	}
	d, err := decodeUintField(items[3], path(p, 3), ErrMalformedDate)
	if err != nil {
		return nil, err
	}
	return &ast.Expr{Kind: ast.KindDateLiteral, Year: y, Month: m, Day: d}, nil
}

func decodeUintField(v cborvalue.Value, p string, kind DecodeErrorKind) (int, error) {
	if v.Kind != cborvalue.KindUint {
		return 0, newErr(kind, p, "expected an unsigned integer, got CBOR kind %v", v.Kind)
	}
	return int(v.UInt), nil
}

func decodeTime(items []cborvalue.Value, p string) (*ast.Expr, error) {
	if len(items) != 4 {
		return nil, newErr(ErrMalformedTime, p, "time array must have 4 elements, got %d", len(items))
	}
	hh, err := decodeUintField(items[1], path(p, 1), ErrMalformedTime)
	if err != nil {
		return nil, err
	}
	mm, err := decodeUintField(items[2], path(p, 2), ErrMalformedTime)
	if err != nil {
		return nil, err
	}
	frac := items[3]
	if frac.Kind != cborvalue.KindTag || frac.TagNumber != 4 {
		return nil, newErr(ErrMalformedTime, path(p, 3), "seconds field must be a tag-4 decimal fraction")
	}
	inner := *frac.TagValue
	if inner.Kind != cborvalue.KindArray || len(inner.Items) != 2 {
		return nil, newErr(ErrMalformedTime, path(p, 3), "decimal fraction must be a 2-element array")
	}
	exponent, err := decodeSignedValue(inner.Items[0], path(path(p, 3), 0))
	if err != nil {
		return nil, err
	}
	mantissa, err := decodeSignedValue(inner.Items[1], path(path(p, 3), 1))
	if err != nil {
		return nil, err
	}
	if !exponent.IsInt64() || exponent.Sign() > 0 {
		return nil, newErr(ErrMalformedTime, path(path(p, 3), 0), "seconds exponent must be a non-positive int64")
	}
	return &ast.Expr{Kind: ast.KindTimeLiteral, Hour: hh, Minute: mm, Seconds: mantissa, Precision: int(-exponent.Int64())}, nil
}

func decodeTimeZone(items []cborvalue.Value, p string) (*ast.Expr, error) {
	if len(items) != 4 {
		return nil, newErr(ErrMalformedTime, p, "timezone array must have 4 elements, got %d", len(items))
	}
	if items[1].Kind != cborvalue.KindBool {
		return nil, newErr(ErrMalformedTime, path(p, 1), "timezone sign must be a bool")
	}
	hh, err := decodeUintField(items[2], path(p, 2), ErrMalformedTime)
	if err != nil {
		return nil, err
	}
	mm, err := decodeUintField(items[3], path(p, 3), ErrMalformedTime)
	if err != nil {
		return nil, err
	}
	return &ast.Expr{Kind: ast.KindTimeZoneLiteral, TZPositive: items[1].Bool, TZHour: hh, TZMinute: mm}, nil
}

func decodeImport(items []cborvalue.Value, p string) (*ast.Expr, error) {
	if len(items) < 4 {
		return nil, newErr(ErrWrongArity, p, "import array too short")
	}
	hash, err := decodeImportHash(items[1], path(p, 1))
	if err != nil {
		return nil, err
	}
	if items[2].Kind != cborvalue.KindUint || items[2].UInt > 3 {
		return nil, newErr(ErrBadMode, path(p, 2), "import mode must be an integer in 0..3")
	}
	mode := ast.ImportMode(items[2].UInt)
	if items[3].Kind != cborvalue.KindUint {
		return nil, newErr(ErrBadImportScheme, path(p, 3), "import scheme discriminator must be an integer")
	}
	disc := items[3].UInt

	imp := &ast.Import{Hash: hash, Mode: mode}

	switch disc {
	case importSchemeHTTP, importSchemeHTTPS:
		imp.Scheme = ast.SchemeHTTP
		if disc == importSchemeHTTPS {
			imp.Scheme = ast.SchemeHTTPS
		}
		if len(items) < 8 {
			return nil, newErr(ErrWrongArity, p, "remote import array too short")
		}
		var headers *ast.Expr
		if items[4].Kind != cborvalue.KindNull {
			h, err := decode(items[4], path(p, 4))
			if err != nil {
				return nil, err
			}
			headers = h
		}
		if items[5].Kind != cborvalue.KindText {
			return nil, newErr(ErrTypeMismatch, path(p, 5), "authority must be a text string")
		}
		pathEnd := len(items) - 2 // last two items are file, query
		if pathEnd < 6 {
			return nil, newErr(ErrWrongArity, p, "remote import path is missing")
		}
		var dir []string
		for i := 6; i < pathEnd; i++ {
			if items[i].Kind != cborvalue.KindText {
				return nil, newErr(ErrTypeMismatch, path(p, i), "path component must be a text string")
			}
			dir = append(dir, items[i].Text)
		}
		if items[pathEnd].Kind != cborvalue.KindText {
			return nil, newErr(ErrTypeMismatch, path(p, pathEnd), "file component must be a text string")
		}
		var query *string
		qIdx := pathEnd + 1
		if items[qIdx].Kind == cborvalue.KindText {
			q := items[qIdx].Text
			query = &q
		} else if items[qIdx].Kind != cborvalue.KindNull {
			return nil, newErr(ErrTypeMismatch, path(p, qIdx), "query must be null or a text string")
		}
		imp.URL = &ast.ImportURL{
			HTTPS:     imp.Scheme == ast.SchemeHTTPS,
			Authority: items[5].Text,
			Directory: dir,
			File:      items[pathEnd].Text,
			Query:     query,
			Headers:   headers,
		}
	case importSchemeAbsolute, importSchemeHere, importSchemeParent, importSchemeHome:
		imp.Scheme = pathSchemeFromDiscriminator(disc)
		if len(items) < 5 {
			return nil, newErr(ErrWrongArity, p, "path import array too short")
		}
		fileIdx := len(items) - 1
		for i := 4; i < fileIdx; i++ {
			if items[i].Kind != cborvalue.KindText {
				return nil, newErr(ErrTypeMismatch, path(p, i), "path component must be a text string")
			}
			imp.PathDirectory = append(imp.PathDirectory, items[i].Text)
		}
		if items[fileIdx].Kind != cborvalue.KindText {
			return nil, newErr(ErrTypeMismatch, path(p, fileIdx), "file component must be a text string")
		}
		imp.PathFile = items[fileIdx].Text
	case importSchemeEnv:
		if len(items) != 5 || items[4].Kind != cborvalue.KindText {
			return nil, newErr(ErrWrongArity, p, "env import array must be [24, hash, mode, 6, name]")
		}
		imp.Scheme = ast.SchemeEnv
		imp.EnvName = items[4].Text
	case importSchemeMissing:
		if len(items) != 4 {
			return nil, newErr(ErrWrongArity, p, "missing import array must be [24, hash, mode, 7]")
		}
		imp.Scheme = ast.SchemeMissing
	default:
		return nil, newErr(ErrBadImportScheme, path(p, 3), "unknown import scheme discriminator %d", disc)
	}

	return &ast.Expr{Kind: ast.KindImport, Import: imp}, nil
}

func pathSchemeFromDiscriminator(disc uint64) ast.ImportScheme {
	switch disc {
	case importSchemeAbsolute:
		return ast.SchemeAbsolute
	case importSchemeHere:
		return ast.SchemeHere
	case importSchemeParent:
		return ast.SchemeParent
	default:
		return ast.SchemeHome
	}
}

func decodeImportHash(v cborvalue.Value, p string) ([]byte, error) {
	if v.Kind == cborvalue.KindNull {
		return nil, nil
	}
	if v.Kind != cborvalue.KindBytes {
		return nil, newErr(ErrBadMultihash, p, "import hash must be null or a byte string")
	}
	digest, err := multihash.DecodeSHA256(v.Bytes)
	if err != nil {
		return nil, wrapErr(ErrBadMultihash, p, err, "invalid multihash: %v", err)
	}
	return digest, nil
}
