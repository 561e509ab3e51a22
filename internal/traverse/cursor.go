// Package traverse walks a Tree-sitter tree in pre-order while letting the
// caller decide, node by node, whether the walk enters a subtree.
package traverse

import (
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"
)

// Directive tells a Cursor what to do with the node it yielded last.
type Directive int

const (
	// Descend visits the node's children before its next sibling.
	Descend Directive = iota + 1
	// Skip omits the node's whole subtree.
	Skip
)

func (d Directive) String() string {
	switch d {
	case Descend:
		return "descend"
	case Skip:
		return "skip"
	default:
		return fmt.Sprintf("Directive(%d)", int(d))
	}
}

// frame is a node whose children are still being visited.
type frame struct {
	node  *sitter.Node
	next  int
	count int
}

// Cursor is a suspended pre-order traversal.
// The root is the container being searched and is never yielded itself.
type Cursor struct {
	stack   []frame
	last    *sitter.Node
	started bool
}

// New returns a Cursor positioned before the first child of root.
func New(root *sitter.Node) *Cursor {
	c := &Cursor{}
	if root != nil {
		c.push(root)
	}
	return c
}

func (c *Cursor) push(n *sitter.Node) {
	count := int(n.ChildCount())
	if count == 0 {
		return
	}
	c.stack = append(c.stack, frame{node: n, count: count})
}

// Next applies d to the previously yielded node and returns the next node in
// pre-order. The directive passed on the first call has no node to apply to.
// Once the walk is exhausted Next keeps returning (nil, false).
//
// A directive other than Descend or Skip is a bug in the caller and panics.
func (c *Cursor) Next(d Directive) (*sitter.Node, bool) {
	switch d {
	case Descend:
		if c.started && c.last != nil {
			c.push(c.last)
		}
	case Skip:
	default:
		panic(fmt.Sprintf("traverse: invalid directive %v", d))
	}
	c.started = true
	c.last = nil

	for len(c.stack) > 0 {
		top := &c.stack[len(c.stack)-1]
		if top.next >= top.count {
			c.stack = c.stack[:len(c.stack)-1]
			continue
		}
		child := top.node.Child(top.next)
		top.next++
		if child == nil {
			continue
		}
		c.last = child
		return child, true
	}
	return nil, false
}

// Walk drives a Cursor to completion, asking fn for a directive at every node.
func Walk(root *sitter.Node, fn func(n *sitter.Node) Directive) {
	c := New(root)
	d := Descend
	for {
		n, ok := c.Next(d)
		if !ok {
			return
		}
		d = fn(n)
	}
}
