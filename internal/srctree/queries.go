package srctree

import "strings"

// Call is a function or static-method invocation.
type Call struct {
	Node  Node
	Name  string
	Scope string // class name for Scope::Name() calls, empty for free calls
	Args  []Node
}

// CallsByName returns calls whose callee name equals name, case-sensitively.
// Both free-function calls (env(...)) and class-scoped static calls
// (Model::unguard()) are matched; a namespace-qualified callee matches on
// its final segment.
func (t *Tree) CallsByName(name string) []Call {
	var out []Call
	Walk(t.Root(), func(n Node) {
		switch n.Kind() {
		case "function_call_expression":
			fn, ok := n.Field("function")
			if !ok {
				return
			}
			if SimpleName(fn.Text()) != name {
				return
			}
			out = append(out, Call{Node: n, Name: name, Args: callArgs(n)})
		case "scoped_call_expression":
			method, ok := n.Field("name")
			if !ok || method.Text() != name {
				return
			}
			scope := ""
			if s, ok := n.Field("scope"); ok {
				scope = SimpleName(s.Text())
			}
			out = append(out, Call{Node: n, Name: name, Scope: scope, Args: callArgs(n)})
		}
	})
	return out
}

func callArgs(call Node) []Node {
	args, ok := call.Field("arguments")
	if !ok {
		return nil
	}
	var out []Node
	for _, a := range args.NamedChildren() {
		if a.Kind() != "argument" {
			continue
		}
		inner := a.NamedChildren()
		if len(inner) > 0 {
			out = append(out, inner[0])
		} else {
			out = append(out, a)
		}
	}
	return out
}

// SimpleName reduces a possibly namespace-qualified name to its final
// segment: App\Models\User -> User, \env -> env.
func SimpleName(s string) string {
	if i := strings.LastIndexByte(s, '\\'); i >= 0 {
		return s[i+1:]
	}
	return s
}

// Class is a class declaration together with its declared parent, if any.
type Class struct {
	Node   Node
	Name   string
	Parent string // as written, possibly namespace-qualified
}

// Classes returns every class declaration in the unit.
func (t *Tree) Classes() []Class {
	var out []Class
	Walk(t.Root(), func(n Node) {
		if n.Kind() != "class_declaration" {
			return
		}
		c := Class{Node: n}
		if name, ok := n.Field("name"); ok {
			c.Name = name.Text()
		}
		for _, child := range n.NamedChildren() {
			if child.Kind() == "base_clause" {
				for _, p := range child.NamedChildren() {
					if p.Kind() == "name" || p.Kind() == "qualified_name" {
						c.Parent = p.Text()
						break
					}
				}
			}
		}
		out = append(out, c)
	})
	return out
}

// ClassesExtending returns classes whose declared parent matches one of
// supertypes, either exactly or on the final qualified segment. Only the
// directly declared parent is consulted; deeper inheritance chains are not
// resolved.
func (t *Tree) ClassesExtending(supertypes []string) []Class {
	want := map[string]bool{}
	for _, s := range supertypes {
		want[s] = true
	}
	var out []Class
	for _, c := range t.Classes() {
		if c.Parent == "" {
			continue
		}
		if want[c.Parent] || want[SimpleName(c.Parent)] {
			out = append(out, c)
		}
	}
	return out
}
