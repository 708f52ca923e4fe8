/*
Package cbordump provides debug helpers for inspecting cborvalue.Value
trees and for loading DASL-style JSON test-vector fixtures, in the
style of the "type/data/tags/name" fixture format used to drive
table-driven CBOR tests on the fly.
*/
package cbordump

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dhall-lang/dhall-cbor/cborvalue"
)

// Dump renders a cborvalue.Value tree as an indented, human-readable
// string, for use in test failure messages and ad-hoc debugging. It is
// not round-trippable and its format is not stable.
func Dump(v cborvalue.Value) string {
	var sb strings.Builder
	dump(&sb, v, 0)
	return sb.String()
}

func dump(sb *strings.Builder, v cborvalue.Value, depth int) {
	indent := strings.Repeat("  ", depth)
	switch v.Kind {
	case cborvalue.KindUint:
		fmt.Fprintf(sb, "%d", v.UInt)
	case cborvalue.KindNegInt:
		fmt.Fprintf(sb, "%d", -1-int64(v.UInt))
	case cborvalue.KindBigPos:
		fmt.Fprintf(sb, "%s", v.Magnitude.String())
	case cborvalue.KindBigNeg:
		fmt.Fprintf(sb, "-1-%s", v.Magnitude.String())
	case cborvalue.KindBool:
		fmt.Fprintf(sb, "%t", v.Bool)
	case cborvalue.KindNull:
		sb.WriteString("null")
	case cborvalue.KindText:
		fmt.Fprintf(sb, "%q", v.Text)
	case cborvalue.KindBytes:
		fmt.Fprintf(sb, "h'%x'", v.Bytes)
	case cborvalue.KindFloat:
		fmt.Fprintf(sb, "%s_%d", strconv.FormatFloat(v.Float, 'g', -1, 64), v.FloatWidth)
	case cborvalue.KindArray:
		sb.WriteString("[\n")
		for _, item := range v.Items {
			sb.WriteString(indent + "  ")
			dump(sb, item, depth+1)
			sb.WriteString(",\n")
		}
		sb.WriteString(indent + "]")
	case cborvalue.KindMap:
		sb.WriteString("{\n")
		for _, pair := range v.Pairs {
			sb.WriteString(indent + "  ")
			dump(sb, pair.Key, depth+1)
			sb.WriteString(": ")
			dump(sb, pair.Val, depth+1)
			sb.WriteString(",\n")
		}
		sb.WriteString(indent + "}")
	case cborvalue.KindTag:
		fmt.Fprintf(sb, "%d(", v.TagNumber)
		dump(sb, *v.TagValue, depth)
		sb.WriteByte(')')
	default:
		fmt.Fprintf(sb, "<unknown kind %d>", v.Kind)
	}
}
