/*
Package ast defines the Dhall expression tree that the codec package
encodes to and decodes from CBOR.

The tree is a closed sum of node kinds (see Kind and Expr). Nodes are
immutable once constructed: encoding never mutates its input, and
decoding always produces a fresh tree.
*/
package ast

import "math/big"

// Kind identifies which variant an Expr holds.
type Kind int

const (
	KindVariable Kind = iota
	KindBuiltin
	KindConstant
	KindLambda
	KindForall
	KindApplication
	KindOperator
	KindCompletion
	KindEmptyList
	KindNonEmptyList
	KindSome
	KindMerge
	KindToMap
	KindShowConstructor
	KindRecordType
	KindRecordLiteral
	KindField
	KindProjectByLabels
	KindProjectByType
	KindUnionType
	KindIf
	KindBoolLiteral
	KindNaturalLiteral
	KindIntegerLiteral
	KindDoubleLiteral
	KindTextLiteral
	KindBytesLiteral
	KindAssert
	KindImport
	KindLet
	KindAnnotation
	KindWith
	KindDateLiteral
	KindTimeLiteral
	KindTimeZoneLiteral
)

// Constant is one of the three universe sorts.
type Constant int

const (
	ConstantType Constant = iota
	ConstantKind
	ConstantSort
)

func (c Constant) String() string {
	switch c {
	case ConstantType:
		return "Type"
	case ConstantKind:
		return "Kind"
	case ConstantSort:
		return "Sort"
	default:
		return "?Constant"
	}
}

// Operator enumerates the 14 binary operator slots that share CBOR
// label 3 (op code 13 is record Completion, T::r).
type Operator int

const (
	OpOr Operator = iota
	OpAnd
	OpEqual
	OpNotEqual
	OpPlus
	OpTimes
	OpTextAppend
	OpListAppend
	OpRecordRightBiasedMerge // ∧ (Prefer)
	OpRecordShallowMerge     // ⫽
	OpRecordTypeMerge        // ⩓
	OpImportAlt              // ?
	OpEquivalent             // ===
	OpCompletion             // ::  (only ever seen paired with KindCompletion)
)

// Binding is one (name, optional type, value) triple in a Let chain.
type Binding struct {
	Name  string
	Type  *Expr // nil if untyped
	Value *Expr
}

// TextChunk is one literal-prefix/interpolated-expression pair inside a
// TextLiteral, with the final trailing literal stored separately on the
// node (see Expr.Suffix).
type TextChunk struct {
	Prefix string
	Expr   *Expr
}

// PathKeyKind distinguishes the two forms a With path step can take.
type PathKeyKind int

const (
	PathKeyLabel PathKeyKind = iota
	PathKeyDescendOptional
)

// PathKey is one step of a With expression's path.
type PathKey struct {
	Kind  PathKeyKind
	Label string // only meaningful when Kind == PathKeyLabel
}

// UnionAlt is one alternative of a UnionType, in declaration order.
// Type is nil for a payload-less alternative.
type UnionAlt struct {
	Name string
	Type *Expr
}

// RecordField is one field of a RecordType or RecordLiteral, in
// declaration order. The codec sorts a copy of the fields by label
// before emitting the CBOR map, leaving the caller's slice untouched;
// decoding returns fields in the order the map lists them, which for
// encoder output is sorted label order.
type RecordField struct {
	Label string
	Value *Expr
}

// Expr is a single Dhall expression tree node. Exactly one group of
// fields below is meaningful, selected by Kind; see the comment above
// each field group.
type Expr struct {
	Kind Kind

	// KindVariable
	VarName  string
	VarIndex *big.Int

	// KindBuiltin
	Builtin Builtin

	// KindConstant
	Const Constant

	// KindLambda, KindForall: BoundName/Domain/Body used by Lambda,
	// Domain/Codomain used by Forall (Body aliases Codomain).
	BoundName string
	Domain    *Expr
	Body      *Expr // Lambda body, or Forall codomain

	// KindApplication
	Function  *Expr
	Arguments []*Expr // len >= 1

	// KindOperator, KindCompletion
	Left  *Expr
	Op    Operator
	Right *Expr

	// KindEmptyList
	ElementType *Expr

	// KindNonEmptyList
	Elements []*Expr // len >= 1

	// KindSome
	SomeValue *Expr

	// KindMerge
	Handler    *Expr
	Union      *Expr
	MergeAnnot *Expr // nil if absent

	// KindToMap
	ToMapRecord *Expr
	ToMapAnnot  *Expr // nil if absent

	// KindShowConstructor
	ShowArg *Expr

	// KindRecordType, KindRecordLiteral
	Fields []RecordField

	// KindField
	FieldRecord *Expr
	FieldLabel  string

	// KindProjectByLabels
	ProjectRecord *Expr
	ProjectLabels []string

	// KindProjectByType
	ProjectType *Expr

	// KindUnionType
	Alternatives []UnionAlt

	// KindIf
	Cond *Expr
	Then *Expr
	Else *Expr

	// KindBoolLiteral
	Bool bool

	// KindNaturalLiteral
	Natural *big.Int

	// KindIntegerLiteral
	Integer *big.Int

	// KindDoubleLiteral
	Double float64

	// KindTextLiteral: Chunks holds (prefix, expr) pairs, Suffix is the
	// final trailing literal. len(Chunks) may be 0 for a plain string.
	Chunks []TextChunk
	Suffix string

	// KindBytesLiteral
	Bytes []byte

	// KindAssert
	AssertType *Expr

	// KindImport
	Import *Import

	// KindLet
	Bindings []Binding
	LetBody  *Expr

	// KindAnnotation
	AnnotValue *Expr
	AnnotType  *Expr

	// KindWith
	WithSubject *Expr
	WithPath    []PathKey // len >= 1
	WithValue   *Expr

	// KindDateLiteral
	Year, Month, Day int

	// KindTimeLiteral
	Hour, Minute int
	// Seconds is the decimal-fraction value; Precision is the number of
	// digits after the decimal point the source actually wrote (0 means
	// a whole number of seconds).
	Seconds   *big.Int // mantissa: floor(seconds * 10^Precision)
	Precision int

	// KindTimeZoneLiteral
	TZPositive bool
	TZHour     int
	TZMinute   int
}
