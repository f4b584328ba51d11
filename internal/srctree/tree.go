// Package srctree wraps tree-sitter parsing of PHP sources behind a small
// query layer. Detectors never touch tree-sitter types directly.
package srctree

import (
	"context"
	"errors"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/php"
)

// ErrParse is returned when a source unit cannot be parsed. Callers skip the
// file and continue with the rest of the batch.
var ErrParse = errors.New("srctree: parse failure")

// Tree is a parsed source unit.
type Tree struct {
	inner *sitter.Tree
	src   []byte
}

// Parse parses PHP source into a Tree.
func Parse(ctx context.Context, src []byte) (*Tree, error) {
	p := sitter.NewParser()
	p.SetLanguage(php.GetLanguage())
	t, err := p.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, err
	}
	if t == nil || t.RootNode() == nil {
		return nil, ErrParse
	}
	return &Tree{inner: t, src: src}, nil
}

// Close releases the underlying tree. Safe to call once per Tree.
func (t *Tree) Close() {
	if t.inner != nil {
		t.inner.Close()
	}
}

func (t *Tree) Root() Node { return Node{n: t.inner.RootNode(), src: t.src} }

// Node is one syntax node with its kind, position and children.
type Node struct {
	n   *sitter.Node
	src []byte
}

func (n Node) Valid() bool  { return n.n != nil }
func (n Node) Kind() string { return n.n.Type() }

// Line is the 1-based line of the node's first character.
func (n Node) Line() int { return int(n.n.StartPoint().Row) + 1 }

func (n Node) Text() string { return n.n.Content(n.src) }

func (n Node) NamedChildren() []Node {
	count := int(n.n.NamedChildCount())
	out := make([]Node, 0, count)
	for i := 0; i < count; i++ {
		out = append(out, Node{n: n.n.NamedChild(i), src: n.src})
	}
	return out
}

// Field returns the child bound to a grammar field name.
func (n Node) Field(name string) (Node, bool) {
	c := n.n.ChildByFieldName(name)
	if c == nil {
		return Node{}, false
	}
	return Node{n: c, src: n.src}, true
}

// Walk visits n and every descendant in document order.
func Walk(n Node, visit func(Node)) {
	visit(n)
	count := int(n.n.NamedChildCount())
	for i := 0; i < count; i++ {
		Walk(Node{n: n.n.NamedChild(i), src: n.src}, visit)
	}
}

// NodesOfKind returns every node of the given grammar kind in document order.
func (t *Tree) NodesOfKind(kind string) []Node {
	var out []Node
	Walk(t.Root(), func(n Node) {
		if n.Kind() == kind {
			out = append(out, n)
		}
	})
	return out
}
