// Package layout implements the tiled pane geometry solver: a binary
// split tree over integer terminal cells, with directional resize and
// largest-remainder rounding so child rectangles always tile the
// parent exactly (component C, §4.3 LayoutEngine).
package layout

import (
	"errors"
)

// SplitType is the orientation of an internal tree node.
type SplitType int

const (
	Horizontal SplitType = iota // children stacked top-to-bottom
	Vertical                    // children side-by-side
)

// Rect is an integer cell rectangle within the terminal.
type Rect struct {
	X, Y, W, H int
}

// ErrNoActiveLeaf is returned by operations that require an active
// leaf when the tree has none (an empty tree, or a dangling pointer
// after the active leaf was closed without a new one being selected).
var ErrNoActiveLeaf = errors.New("layout: no active leaf")

// SizeSpec describes how much of its parent's span a child wants,
// either a percentage of the remaining space or a fixed cell count
// (§3 LayoutEngine: percent vs fixed sizing).
type SizeSpec struct {
	Fixed   bool
	Percent float64 // 0-100, used when Fixed is false
	Cells   int      // used when Fixed is true
}

// Node is a split-tree node: either an internal node with children and
// per-child size specs, or a leaf carrying a pane identifier.
type Node struct {
	Parent   *Node
	Split    SplitType
	PaneID   string // set only on leaves
	Sizes    []SizeSpec
	Children []*Node
	Rect     Rect // last-computed geometry, valid after Reflow
}

// IsLeaf reports whether n is a leaf node (holds a pane).
func (n *Node) IsLeaf() bool { return len(n.Children) == 0 }

// Tree manages one tab's pane hierarchy.
type Tree struct {
	Root       *Node
	ActiveLeaf *Node
}

// New returns an empty tree.
func New() *Tree { return &Tree{} }

// SetRoot makes a single leaf holding paneID the entire tree.
func (t *Tree) SetRoot(paneID string) *Node {
	leaf := &Node{PaneID: paneID}
	t.Root = leaf
	t.ActiveLeaf = leaf
	return leaf
}

// Split divides the active leaf in two along dir, inserting newPaneID
// as a sibling after the existing pane, each taking half the space
// (§3 LayoutEngine: split). The new leaf becomes active.
func (t *Tree) Split(dir SplitType, newPaneID string) (*Node, error) {
	if t.ActiveLeaf == nil {
		return nil, ErrNoActiveLeaf
	}
	target := t.ActiveLeaf
	existingPane := target.PaneID

	left := &Node{PaneID: existingPane}
	right := &Node{PaneID: newPaneID}

	target.PaneID = ""
	target.Split = dir
	target.Children = []*Node{left, right}
	target.Sizes = []SizeSpec{{Percent: 50}, {Percent: 50}}
	left.Parent = target
	right.Parent = target

	t.ActiveLeaf = right
	t.Reflow()
	return right, nil
}

// Close removes the given leaf from the tree. If that leaves its
// parent with a single child, the parent collapses into the surviving
// sibling; otherwise the remaining siblings' sizes are renormalized to
// fill the freed space. Returns the leaf that should become active
// next, or nil if the tree is now empty.
func (t *Tree) Close(leaf *Node) *Node {
	if leaf == nil || !leaf.IsLeaf() {
		return t.ActiveLeaf
	}
	parent := leaf.Parent
	if parent == nil {
		t.Root = nil
		t.ActiveLeaf = nil
		return nil
	}

	idx := childIndex(parent, leaf)
	if idx < 0 {
		return t.ActiveLeaf
	}
	parent.Children = append(parent.Children[:idx], parent.Children[idx+1:]...)
	parent.Sizes = append(parent.Sizes[:idx], parent.Sizes[idx+1:]...)
	renormalize(parent.Sizes)

	if len(parent.Children) == 1 {
		only := parent.Children[0]
		collapseOnlyChild(parent)
		// parent now holds only's contents and only is detached, so an
		// active pointer to it must follow the collapse.
		if t.ActiveLeaf == only {
			t.ActiveLeaf = parent
		}
	}

	next := t.ActiveLeaf
	if next == leaf {
		next = firstLeaf(t.Root)
		t.ActiveLeaf = next
	}
	t.Reflow()
	return next
}

// collapseOnlyChild replaces a single-child internal node with that
// child's own contents, preserving the parent pointer chain.
func collapseOnlyChild(n *Node) {
	only := n.Children[0]
	n.Split = only.Split
	n.PaneID = only.PaneID
	n.Children = only.Children
	n.Sizes = only.Sizes
	for _, c := range n.Children {
		c.Parent = n
	}
}

func childIndex(parent, child *Node) int {
	for i, c := range parent.Children {
		if c == child {
			return i
		}
	}
	return -1
}

func renormalize(sizes []SizeSpec) {
	total := 0.0
	for _, s := range sizes {
		if !s.Fixed {
			total += s.Percent
		}
	}
	if total == 0 {
		return
	}
	for i := range sizes {
		if !sizes[i].Fixed {
			sizes[i].Percent = sizes[i].Percent / total * 100
		}
	}
}

func firstLeaf(n *Node) *Node {
	if n == nil {
		return nil
	}
	for !n.IsLeaf() {
		n = n.Children[0]
	}
	return n
}

// Reflow recomputes every node's Rect from Root.Rect down, using
// largest-remainder rounding so integer child spans always sum
// exactly to the parent's span (§3 LayoutEngine invariant: "children
// tile the parent exactly, no gaps or overlaps").
func (t *Tree) Reflow() {
	if t.Root == nil {
		return
	}
	reflowNode(t.Root)
}

func reflowNode(n *Node) {
	if n.IsLeaf() {
		return
	}
	var span int
	if n.Split == Vertical {
		span = n.Rect.W
	} else {
		span = n.Rect.H
	}
	spans := distribute(n.Sizes, span)

	offset := 0
	for i, child := range n.Children {
		child.Rect = n.Rect
		if n.Split == Vertical {
			child.Rect.X = n.Rect.X + offset
			child.Rect.W = spans[i]
		} else {
			child.Rect.Y = n.Rect.Y + offset
			child.Rect.H = spans[i]
		}
		offset += spans[i]
		reflowNode(child)
	}
}

// distribute turns size specs into integer cell spans summing exactly
// to total: fixed specs are honored first (clamped to what's left),
// and the remaining space is split across percent specs by largest
// remainder.
func distribute(sizes []SizeSpec, total int) []int {
	out := make([]int, len(sizes))
	remaining := total
	percentIdx := make([]int, 0, len(sizes))
	percentSum := 0.0

	for i, s := range sizes {
		if s.Fixed {
			v := s.Cells
			if v > remaining {
				v = remaining
			}
			if v < 0 {
				v = 0
			}
			out[i] = v
			remaining -= v
		} else {
			percentIdx = append(percentIdx, i)
			percentSum += s.Percent
		}
	}
	if len(percentIdx) == 0 || remaining <= 0 {
		return out
	}
	if percentSum == 0 {
		percentSum = float64(len(percentIdx))
		for _, i := range percentIdx {
			sizes[i].Percent = 1
		}
	}

	fracs := make([]remainderFrac, 0, len(percentIdx))
	used := 0
	for _, i := range percentIdx {
		exact := sizes[i].Percent / percentSum * float64(remaining)
		whole := int(exact)
		out[i] = whole
		used += whole
		fracs = append(fracs, remainderFrac{idx: i, frac: exact - float64(whole)})
	}
	leftover := remaining - used
	sortByFracDesc(fracs)
	for k := 0; k < leftover && k < len(fracs); k++ {
		out[fracs[k].idx]++
	}
	return out
}

// Direction selects one of the four directional-resize targets (§4.3
// "Directional resize on flat pane sets").
type Direction int

const (
	DirLeft Direction = iota
	DirRight
	DirUp
	DirDown
)

// ResizePercent is the default per-keypress resize step: 5% of the
// resized split's total span (§4.3: "attempt to grow P by
// RESIZE_PERCENT (default 5%)").
const ResizePercent = 5

// MinPaneSpan is the minimum cell span either side of a directional
// resize may be left with.
const MinPaneSpan = 2

// ResizeDirection walks up from leaf to the nearest ancestor split
// along dir's axis with a sibling on that side, then grows leaf's
// branch by percent of the split's span and shrinks the sibling
// branch by the same amount (every pane nested under that sibling —
// e.g. both an upper and lower pane right-aligned with leaf — shrinks
// together, since they inherit the branch's span through Reflow; this
// is how the binary split tree realizes §4.3's "contiguous aligned
// panes" rule). If the sibling can't give up that much without
// passing under MinPaneSpan, the opposite is attempted (shrinking
// leaf's branch instead); if neither fits, it tries the next ancestor
// out, and returns false if none has room.
func (t *Tree) ResizeDirection(leaf *Node, dir Direction, percent int) bool {
	axis := Vertical
	grow := 1
	if dir == DirUp || dir == DirDown {
		axis = Horizontal
	}
	if dir == DirLeft || dir == DirUp {
		grow = -1
	}

	for child := leaf; child != nil && child.Parent != nil; child = child.Parent {
		parent := child.Parent
		if parent.Split != axis {
			continue
		}
		idx := childIndex(parent, child)
		sibling := idx + grow
		if idx < 0 || sibling < 0 || sibling >= len(parent.Children) {
			continue
		}
		if t.applyResize(parent, idx, sibling, percent) {
			return true
		}
	}
	return false
}

func (t *Tree) applyResize(parent *Node, idx, sibling, percent int) bool {
	span := childSpan(parent, parent.Split)
	delta := span * percent / 100
	if delta <= 0 {
		delta = 1
	}

	curA := childSpan(parent.Children[idx], parent.Split)
	curB := childSpan(parent.Children[sibling], parent.Split)

	switch {
	case curB-delta >= MinPaneSpan:
		setChildSpans(parent, idx, curA+delta, sibling, curB-delta)
	case curA-delta >= MinPaneSpan:
		setChildSpans(parent, idx, curA-delta, sibling, curB+delta)
	default:
		return false
	}
	t.Reflow()
	return true
}

func childSpan(n *Node, split SplitType) int {
	if split == Vertical {
		return n.Rect.W
	}
	return n.Rect.H
}

func setChildSpans(parent *Node, idx, aCells, sibling, bCells int) {
	parent.Sizes[idx] = SizeSpec{Fixed: true, Cells: aCells}
	parent.Sizes[sibling] = SizeSpec{Fixed: true, Cells: bCells}
}

// Leaves returns every leaf node in the tree, left-to-right depth
// order.
func (t *Tree) Leaves() []*Node {
	var out []*Node
	var walk func(*Node)
	walk = func(n *Node) {
		if n == nil {
			return
		}
		if n.IsLeaf() {
			out = append(out, n)
			return
		}
		for _, c := range n.Children {
			walk(c)
		}
	}
	walk(t.Root)
	return out
}

type remainderFrac struct {
	idx  int
	frac float64
}

func sortByFracDesc(r []remainderFrac) {
	for i := 1; i < len(r); i++ {
		for j := i; j > 0 && r[j].frac > r[j-1].frac; j-- {
			r[j], r[j-1] = r[j-1], r[j]
		}
	}
}
