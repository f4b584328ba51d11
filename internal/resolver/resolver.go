// Package resolver determines the statically-knowable value of config keys.
// A key assigned a literal resolves to that literal; a key assigned
// env(NAME, default) with a literal default resolves to the default, since
// the runtime value is unknowable and the default is what a fresh install
// runs with; everything else is indeterminate and must never be guessed.
package resolver

import "github.com/0xlukav/larascan/internal/srctree"

type Resolution int

const (
	Indeterminate Resolution = iota
	Literal
	EnvDefault
)

func (r Resolution) String() string {
	switch r {
	case Literal:
		return "literal"
	case EnvDefault:
		return "env-default"
	default:
		return "indeterminate"
	}
}

// ConfigEntry is the resolved state of one config key. Value is only
// meaningful when Resolution is Literal or EnvDefault. SourceLine is the
// first physical line where the key is assigned.
type ConfigEntry struct {
	Resolution Resolution
	Value      any
	SourceLine int
}

// Known reports whether checks may evaluate this entry's value.
func (e ConfigEntry) Known() bool { return e.Resolution != Indeterminate }

// BoolValue returns the entry's value as a bool when it is a known bool.
func (e ConfigEntry) BoolValue() (bool, bool) {
	if !e.Known() {
		return false, false
	}
	b, ok := e.Value.(bool)
	return b, ok
}

// StringValue returns the entry's value as a string when it is a known string.
func (e ConfigEntry) StringValue() (string, bool) {
	if !e.Known() {
		return "", false
	}
	s, ok := e.Value.(string)
	return s, ok
}

// Resolve classifies the expression assigned to a config key.
func Resolve(expr srctree.Node) ConfigEntry {
	line := expr.Line()
	if v, ok := srctree.LiteralValue(expr); ok {
		return ConfigEntry{Resolution: Literal, Value: v, SourceLine: line}
	}
	if args, ok := envCall(expr); ok {
		if len(args) == 2 {
			if def, ok := srctree.LiteralValue(args[1]); ok {
				return ConfigEntry{Resolution: EnvDefault, Value: def, SourceLine: line}
			}
		}
		// no default, or a default that is itself dynamic
		return ConfigEntry{Resolution: Indeterminate, SourceLine: line}
	}
	return ConfigEntry{Resolution: Indeterminate, SourceLine: line}
}

// envCall matches env('NAME') / env('NAME', default) expressions and
// returns the argument expressions.
func envCall(expr srctree.Node) ([]srctree.Node, bool) {
	if expr.Kind() != "function_call_expression" {
		return nil, false
	}
	fn, ok := expr.Field("function")
	if !ok || srctree.SimpleName(fn.Text()) != "env" {
		return nil, false
	}
	args, ok := expr.Field("arguments")
	if !ok {
		return nil, true
	}
	var out []srctree.Node
	for _, a := range args.NamedChildren() {
		if a.Kind() != "argument" {
			continue
		}
		if inner := a.NamedChildren(); len(inner) > 0 {
			out = append(out, inner[0])
		}
	}
	return out, true
}

// Duplicate records a later re-assignment of an already-seen key.
type Duplicate struct {
	Key  string
	Line int
}

// ParseConfigArray resolves every key in the file's top-level return array.
// Nested arrays contribute dotted keys (session.cookie.domain). The first
// assignment of a key wins for location purposes; later duplicates are
// returned separately so callers may flag them.
func ParseConfigArray(tree *srctree.Tree) (map[string]ConfigEntry, []Duplicate) {
	entries := map[string]ConfigEntry{}
	var dups []Duplicate

	returns := tree.NodesOfKind("return_statement")
	if len(returns) == 0 {
		return entries, nil
	}
	var root srctree.Node
	found := false
	srctree.Walk(returns[0], func(n srctree.Node) {
		if !found && n.Kind() == "array_creation_expression" {
			root = n
			found = true
		}
	})
	if !found {
		return entries, nil
	}
	collectArray(root, "", entries, &dups)
	return entries, dups
}

func collectArray(arr srctree.Node, prefix string, entries map[string]ConfigEntry, dups *[]Duplicate) {
	for _, el := range arr.NamedChildren() {
		if el.Kind() != "array_element_initializer" {
			continue
		}
		kids := el.NamedChildren()
		if len(kids) < 2 {
			continue
		}
		keyVal, ok := srctree.LiteralValue(kids[0])
		if !ok {
			continue
		}
		key, ok := keyVal.(string)
		if !ok {
			continue
		}
		if prefix != "" {
			key = prefix + "." + key
		}
		value := kids[1]
		if value.Kind() == "array_creation_expression" {
			collectArray(value, key, entries, dups)
			continue
		}
		if _, seen := entries[key]; seen {
			*dups = append(*dups, Duplicate{Key: key, Line: value.Line()})
			continue
		}
		entries[key] = Resolve(value)
	}
}
