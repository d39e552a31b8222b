// Package ui is the declarative view layer of the Mindful+ client.
//
// Views build a tree of *Node values and hand it to the Page, which keeps
// one tree per slot (header, content, bottom bar) plus an optional overlay.
// The terminal renderer draws the page as text and the REPL dispatches
// taps to the OnTap handlers attached to nodes by Action id.
package ui

import "context"

type Kind int

const (
	KindColumn Kind = iota
	KindRow
	KindText
	KindButton
	KindCard
	KindDivider
)

type Node struct {
	Kind     Kind
	Key      string
	Text     string
	Icon     string
	Size     int
	Color    string
	Padding  int
	Hidden   bool
	Action   string
	OnTap    func(ctx context.Context)
	Children []*Node
}

func Column(children ...*Node) *Node { return &Node{Kind: KindColumn, Children: children} }

func Row(children ...*Node) *Node { return &Node{Kind: KindRow, Children: children} }

func Text(s string, size int) *Node { return &Node{Kind: KindText, Text: s, Size: size} }

func Divider() *Node { return &Node{Kind: KindDivider} }

// Button is a tappable node. action is the id the REPL uses to tap it.
func Button(label, action string, onTap func(ctx context.Context)) *Node {
	return &Node{Kind: KindButton, Text: label, Action: action, OnTap: onTap}
}

// Card groups children under a rounded surface. A card with an action is
// tappable as a whole.
func Card(action string, onTap func(ctx context.Context), children ...*Node) *Node {
	return &Node{Kind: KindCard, Action: action, OnTap: onTap, Children: children}
}

func (n *Node) WithKey(k string) *Node   { n.Key = k; return n }
func (n *Node) WithColor(c string) *Node { n.Color = c; return n }
func (n *Node) WithIcon(i string) *Node  { n.Icon = i; return n }
func (n *Node) WithHidden(h bool) *Node  { n.Hidden = h; return n }
func (n *Node) WithPadding(p int) *Node  { n.Padding = p; return n }
func (n *Node) WithSize(size int) *Node  { n.Size = size; return n }

// Walk visits n and its descendants depth-first. Returning false from fn
// skips the children of that node.
func (n *Node) Walk(fn func(*Node) bool) {
	if n == nil {
		return
	}
	if !fn(n) {
		return
	}
	for _, c := range n.Children {
		c.Walk(fn)
	}
}

// Find returns the first node with the given key.
func (n *Node) Find(key string) *Node {
	var found *Node
	n.Walk(func(c *Node) bool {
		if found != nil {
			return false
		}
		if c.Key == key {
			found = c
			return false
		}
		return true
	})
	return found
}

// FindAction returns the first visible node bound to action.
func (n *Node) FindAction(action string) *Node {
	var found *Node
	n.Walk(func(c *Node) bool {
		if found != nil || c.Hidden {
			return false
		}
		if c.Action == action && c.OnTap != nil {
			found = c
			return false
		}
		return true
	})
	return found
}

// Actions lists the tappable action ids under n in tree order.
func (n *Node) Actions() []string {
	var out []string
	n.Walk(func(c *Node) bool {
		if c.Hidden {
			return false
		}
		if c.Action != "" && c.OnTap != nil {
			out = append(out, c.Action)
		}
		return true
	})
	return out
}
