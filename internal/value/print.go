package value

import (
	"io"
	"strings"
)

// Print renders a value: char prints its glyph, int
// decimal, float general %.16g, string raw, list "[e1, e2, …]" with
// each element printed recursively, none prints "none".
func Print(o *Object) string {
	if o == nil {
		return "none"
	}
	switch o.tag {
	case TagNone:
		return "none"
	case TagChar:
		return string(o.ch)
	case TagInt:
		return numericToString(o)
	case TagFloat:
		return numericToString(o)
	case TagString:
		return string(o.s)
	case TagList:
		var parts []string
		for _, n := range o.list.nodes {
			parts = append(parts, Print(n.inner))
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case TagPosition:
		return "<position>"
	default:
		return "<unknown>"
	}
}

// Fprint writes Print(o) followed by no trailing separator; the caller
// controls spacing between comma-separated print targets.
func Fprint(w io.Writer, o *Object) {
	io.WriteString(w, Print(o))
}
