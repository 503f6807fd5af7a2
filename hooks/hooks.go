// Package hooks derives a field-path-addressable accessor tree over a store
// snapshot. Nodes materialize lazily on first access, so UI code can reach
// into nested state without declaring its shape upfront, and a watcher bound
// to one path stays quiet while unrelated siblings change.
package hooks

import (
	"strings"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/dotstate/dotstate/deep"
	"github.com/dotstate/dotstate/utils"
)

// Source is the capability the tree needs from a store: read the current
// value at a dot-path and get a change notification after every commit.
type Source interface {
	Get(path string) (any, bool)
	Subscribe(fn func()) (cancel func())
}

const leafCacheSize = 4096

// Tree is the lazily-built accessor tree for one source.
type Tree struct {
	src    Source
	root   *Node
	leaves *lru.Cache[string, *Leaf]
}

func NewTree(src Source) *Tree {
	cache, _ := lru.New[string, *Leaf](leafCacheSize)
	t := &Tree{src: src, leaves: cache}
	t.root = &Node{tree: t}
	return t
}

func (t *Tree) Root() *Node { return t.root }

// Use returns the leaf accessor for a dot-path anywhere under the root.
func (t *Tree) Use(path string) *Leaf {
	if leaf, ok := t.leaves.Get(path); ok {
		return leaf
	}
	segs := strings.Split(path, ".")
	leaf := &Leaf{tree: t, path: path, name: accessorName(segs[len(segs)-1])}
	t.leaves.Add(path, leaf)
	return leaf
}

// Watch is shorthand for Use(path).Watch(fn).
func (t *Tree) Watch(path string, fn func(any)) (cancel func()) {
	return t.Use(path).Watch(fn)
}

// Node is a nested accessor group over a plain non-array object.
type Node struct {
	tree     *Tree
	path     string
	children utils.CMap[string, *Node]
}

func (n *Node) Path() string { return n.path }

// Child returns the nested accessor group for a segment, materializing it on
// first access from the current snapshot. It returns nil when the value at
// that segment is not a plain object; arrays are opaque leaves and never
// produce children.
func (n *Node) Child(seg string) *Node {
	path := joinPath(n.path, seg)
	if cached, ok := n.children.Load(seg); ok {
		return cached
	}
	v, ok := n.tree.src.Get(path)
	if !ok || !deep.IsBranch(v) {
		return nil
	}
	child := &Node{tree: n.tree, path: path}
	actual, _ := n.children.LoadOrStore(seg, child)
	return actual
}

// Leaf returns the leaf accessor for a segment under this node.
func (n *Node) Leaf(seg string) *Leaf {
	return n.tree.Use(joinPath(n.path, seg))
}

// Leaves discovers the leaf accessors of this node from the current
// snapshot: every child segment whose value is not a plain object.
func (n *Node) Leaves() []*Leaf {
	v, ok := n.tree.src.Get(n.path)
	if !ok {
		return nil
	}
	var leaves []*Leaf
	for _, seg := range deep.Keys(v) {
		cv, _ := n.tree.src.Get(joinPath(n.path, seg))
		if deep.IsBranch(cv) {
			continue
		}
		leaves = append(leaves, n.Leaf(seg))
	}
	return leaves
}

// Leaf is a zero-argument accessor for the value at one path.
type Leaf struct {
	tree *Tree
	path string
	name string
}

// Name is the accessor name derived from the final path segment, e.g.
// "count" becomes "UseCount".
func (l *Leaf) Name() string { return l.name }

func (l *Leaf) Path() string { return l.path }

// Get re-reads the latest snapshot and returns the current value at the
// leaf's path, or nil when any segment along the path is absent.
func (l *Leaf) Get() any {
	v, ok := l.tree.src.Get(l.path)
	if !ok {
		return nil
	}
	return v
}

// Watch binds fn to the source's change notification. After every commit the
// value at this exact path is recomputed and fn fires only when it differs
// from the previously observed value, so sibling changes do not propagate.
func (l *Leaf) Watch(fn func(any)) (cancel func()) {
	var mu sync.Mutex
	prev := l.Get()
	return l.tree.src.Subscribe(func() {
		cur := l.Get()
		mu.Lock()
		changed := !deep.Equal(prev, cur)
		if changed {
			prev = cur
		}
		mu.Unlock()
		if changed {
			fn(cur)
		}
	})
}

func joinPath(base, seg string) string {
	if base == "" {
		return seg
	}
	return base + "." + seg
}

func accessorName(seg string) string {
	if seg == "" {
		return "Use"
	}
	return "Use" + strings.ToUpper(seg[:1]) + seg[1:]
}
