package codec

// Label values for the leading integer of each expression's CBOR
// array encoding. 12 and 13 are reserved for legacy union-literal and
// `constructors` encodings and are never emitted; they decode to
// ErrMalformedUnionLegacy.
const (
	labelApplication      = 0
	labelLambda           = 1
	labelForall           = 2
	labelOperator         = 3
	labelList             = 4
	labelSome             = 5
	labelMerge            = 6
	labelRecordType       = 7
	labelRecordLiteral    = 8
	labelField            = 9
	labelProject          = 10
	labelUnionType        = 11
	labelLegacyUnion      = 12
	labelLegacyConstruct  = 13
	labelIf               = 14
	labelNatural          = 15
	labelInteger          = 16
	labelTextLiteral      = 18
	labelAssert           = 19
	labelImport           = 24
	labelLet              = 25
	labelAnnotation       = 26
	labelToMap            = 27
	labelEmptyListTyped   = 28
	labelWith             = 29
	labelDate             = 30
	labelTime             = 31
	labelTimeZone         = 32
	labelBytesLiteral     = 33
	labelShowConstructor  = 34
)

const selfDescribeCBORTag = 55799

// Import wire constants for the scheme discriminator.
const (
	importSchemeHTTP = iota
	importSchemeHTTPS
	importSchemeAbsolute
	importSchemeHere
	importSchemeParent
	importSchemeHome
	importSchemeEnv
	importSchemeMissing
)

const (
	importModeCode = iota
	importModeRawText
	importModeLocation
	importModeRawBytes
)

// With path descend-into-Optional sentinel.
const withDescendKey = 0
