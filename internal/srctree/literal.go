package srctree

import (
	"strconv"
	"strings"
)

// LiteralValue evaluates a node that is a scalar literal. The second return
// is false for anything that is not statically known: variables, calls,
// concatenations, interpolated strings.
func LiteralValue(n Node) (any, bool) {
	switch n.Kind() {
	case "string":
		return unquote(n.Text()), true
	case "encapsed_string":
		// double-quoted strings are literal only without interpolation;
		// the grammar names plain segments string_content
		for _, c := range n.NamedChildren() {
			switch c.Kind() {
			case "string_content", "string_value", "escape_sequence":
			default:
				return nil, false
			}
		}
		return unquote(n.Text()), true
	case "integer":
		v, err := strconv.ParseInt(strings.ReplaceAll(n.Text(), "_", ""), 0, 64)
		if err != nil {
			return nil, false
		}
		return v, true
	case "float":
		v, err := strconv.ParseFloat(n.Text(), 64)
		if err != nil {
			return nil, false
		}
		return v, true
	case "boolean":
		return strings.EqualFold(n.Text(), "true"), true
	case "null":
		return nil, true
	case "name", "qualified_name":
		// constants true/false/null reach here in some grammar versions
		switch strings.ToLower(n.Text()) {
		case "true":
			return true, true
		case "false":
			return false, true
		case "null":
			return nil, true
		}
		return nil, false
	case "unary_op_expression":
		inner := n.NamedChildren()
		if len(inner) == 1 && strings.HasPrefix(n.Text(), "-") {
			if v, ok := LiteralValue(inner[0]); ok {
				switch num := v.(type) {
				case int64:
					return -num, true
				case float64:
					return -num, true
				}
			}
		}
		return nil, false
	default:
		return nil, false
	}
}

func unquote(s string) string {
	if len(s) >= 2 {
		first, last := s[0], s[len(s)-1]
		if (first == '\'' && last == '\'') || (first == '"' && last == '"') {
			return s[1 : len(s)-1]
		}
	}
	return s
}
