// Package domtree is a minimal stand-in for a browser's DOM and scripting
// glue, built to exercise cow.Pool the way a real one would: it is not a
// browser engine, there is no HTML parser, no CSS cascade, no JS bindings.
// What it does model is the two things such a caller needs from the COW
// core: a script goroutine that owns a cow.Pool and mutates node data
// freely, and a layout goroutine that receives Handles and renders a
// frozen snapshot of them without ever touching the script goroutine's
// Pool.
package domtree

import "github.com/keilerkonzept/cow"

// NodeData is the per-node payload a script task would store in the COW
// pool — attributes a layout pass needs to read, kept deliberately small
// and cheap to shallow-copy on every write.
type NodeData struct {
	Tag       string
	TextValue string
	Dirty     bool // set by SetText; nothing in this package clears it
}

// RenderFlags is per-node auxiliary data a layout task attaches and owns;
// the Pool never clones or frees it.
type RenderFlags struct {
	NeedsReflow bool
}

// Node is a tree node: a Handle into the script task's Pool plus the tree
// structure layout actually walks. Node itself is only ever referenced by
// pointer within a Tree, but its Handle field is comparable and copyable
// and may be lifted out and sent across goroutine boundaries on its own.
type Node struct {
	Handle   cow.Handle[NodeData, RenderFlags]
	Children []*Node
}

// Tree is the script-task side of the collaboration: it owns the Pool and
// is the only goroutine allowed to call Pool methods.
type Tree struct {
	pool *cow.Pool[NodeData, RenderFlags]
	root *Node
}

// NewTree creates a tree with a single root node.
func NewTree(rootTag string) *Tree {
	pool := cow.NewPool[NodeData, RenderFlags]()
	root := &Node{Handle: pool.Create(NodeData{Tag: rootTag})}
	return &Tree{pool: pool, root: root}
}

// Root returns the tree's root node.
func (t *Tree) Root() *Node {
	return t.root
}

// AppendChild creates a new node under parent and returns it. Safe to
// call at any point in the Pool's state machine (Create never requires
// Quiescent), but only from the script goroutine.
func (t *Tree) AppendChild(parent *Node, tag, text string) *Node {
	child := &Node{Handle: t.pool.Create(NodeData{Tag: tag, TextValue: text})}
	parent.Children = append(parent.Children, child)
	return child
}

// BeginLayout forks the pool, freezing the snapshot every Node's Handle
// will observe until EndLayout, and hands the root back so the caller can
// ship it to a layout goroutine.
func (t *Tree) BeginLayout() *Node {
	t.pool.Fork()
	return t.root
}

// EndLayout joins the pool, publishing every edit the script task made
// since BeginLayout. The caller must have already ensured the layout
// goroutine it spawned after BeginLayout has finished reading — this
// package has no way to detect that for you.
func (t *Tree) EndLayout() {
	t.pool.Join()
}

// SetText mutates a node's text content through the script task's Pool.
func (t *Tree) SetText(n *Node, text string) {
	t.pool.Write(n.Handle, func(d *NodeData) {
		d.TextValue = text
		d.Dirty = true
	})
}

// Snapshot reads a node's script-side view, i.e. including the script
// task's own in-progress edits not yet published by EndLayout — distinct
// from RenderText, which during a layout sees only the snapshot frozen at
// BeginLayout.
func (t *Tree) Snapshot(n *Node) NodeData {
	var v NodeData
	t.pool.Read(n.Handle, func(d *NodeData) { v = *d })
	return v
}

// RenderText is the layout-task side: it reads only through n.Handle, so
// between BeginLayout and EndLayout it sees the snapshot frozen at
// BeginLayout, never the script task's in-flight edits. Outside a layout,
// SetText changes the shared payload in place and RenderText sees the
// change at once. Safe to call from a goroutine other than the one that
// owns the Tree while a layout is in progress.
func RenderText(n *Node) string {
	var text string
	n.Handle.Read(func(d *NodeData) { text = d.TextValue })
	for _, c := range n.Children {
		text += RenderText(c)
	}
	return text
}
