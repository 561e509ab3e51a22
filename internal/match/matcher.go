// Package match decides which string and template literals in a syntax tree
// match a query.
//
// A plain string matches when the query is a substring of its value. A
// template literal matches when the query could have been produced by it:
// its static segments, in order, with anything in place of each ${...} hole.
package match

import (
	"strings"

	"github.com/agentic-research/litgrep/api"
	"github.com/agentic-research/litgrep/internal/traverse"
	sitter "github.com/smacker/go-tree-sitter"
)

// Kind classifies n. Only string and template literals are candidates.
func Kind(n *sitter.Node) (api.Kind, bool) {
	switch t := api.Kind(n.Type()); t {
	case api.KindString, api.KindTemplate:
		return t, true
	default:
		return "", false
	}
}

// StringValue returns a string literal's text without its quotes. Both
// JavaScript and TypeScript quote strings with a single ' or " on each side.
func StringValue(n *sitter.Node, src []byte) string {
	text := n.Content(src)
	if len(text) < 2 {
		return ""
	}
	return text[1 : len(text)-1]
}

// Matcher tests literals against one query. It keeps no per-file state.
type Matcher struct {
	Query string
}

// New returns a Matcher for query.
func New(query string) *Matcher {
	return &Matcher{Query: query}
}

// Node tests a single node. The returned directive is Skip for every
// literal, matched or not, because the expressions inside a template's holes
// are code, not searchable text. Any other node is descended into.
func (m *Matcher) Node(n *sitter.Node, src []byte) (bool, traverse.Directive, error) {
	kind, ok := Kind(n)
	if !ok {
		return false, traverse.Descend, nil
	}

	switch kind {
	case api.KindString:
		return strings.Contains(StringValue(n, src), m.Query), traverse.Skip, nil
	default:
		matched, err := Wildcard(Segments(n, src), m.Query)
		return matched, traverse.Skip, err
	}
}

// File returns the matching literals under root in pre-order.
func (m *Matcher) File(root *sitter.Node, src []byte) ([]*sitter.Node, error) {
	var matches []*sitter.Node

	c := traverse.New(root)
	d := traverse.Descend
	for {
		n, ok := c.Next(d)
		if !ok {
			return matches, nil
		}
		matched, next, err := m.Node(n, src)
		if err != nil {
			return matches, err
		}
		if matched {
			matches = append(matches, n)
		}
		d = next
	}
}
