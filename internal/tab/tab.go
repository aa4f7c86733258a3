// Package tab implements a single tab: a tiled collection of panes
// backed by a layout.Tree, with focus movement, fullscreen toggling,
// synchronized input, and swap-layout cycling.
package tab

import (
	"fmt"

	"github.com/weftterm/weft/internal/ids"
	"github.com/weftterm/weft/internal/layout"
	"github.com/weftterm/weft/internal/pane"
)

// SwapLayout names one of the fixed alternate arrangements a tab can
// cycle through via the "next swap layout" action, independent of
// the ad-hoc splits the user has made (§4 supplemented: swap layouts).
type SwapLayout string

const (
	SwapLayoutTiled    SwapLayout = "tiled"
	SwapLayoutStacked  SwapLayout = "stacked"
	SwapLayoutMainPane SwapLayout = "main-pane"
)

var defaultSwapCycle = []SwapLayout{SwapLayoutTiled, SwapLayoutStacked, SwapLayoutMainPane}

// floatingPane is one entry of the tab's floating layer: a pane kept
// outside the tiling tree with its own absolute rectangle (§3
// Tab.floating, §4.3 "Floating panes").
type floatingPane struct {
	pane *pane.Pane
	rect layout.Rect
}

// Tab owns one layout.Tree, its panes, and per-tab UI state.
type Tab struct {
	Name string

	tree  *layout.Tree
	panes map[string]*pane.Pane

	fullscreenPane string // PaneID string of the pane occupying the whole tab, if any
	preFullscreen  layout.Rect

	syncInput bool

	swapCycle []SwapLayout
	swapIndex int

	// floating is the z-ordered floating layer, topmost last (§3
	// Tab.floating). Its panes are not constrained to the tiling
	// invariant and render above the tiled tree when floatingVisible.
	floating        []floatingPane
	floatingVisible bool
}

// New creates an empty tab ready to host its first pane.
func New(name string) *Tab {
	return &Tab{
		Name:      name,
		tree:      layout.New(),
		panes:     make(map[string]*pane.Pane),
		swapCycle: defaultSwapCycle,
	}
}

// AddFirstPane makes p the tab's sole pane.
func (t *Tab) AddFirstPane(p *pane.Pane) {
	t.panes[p.ID.String()] = p
	t.tree.SetRoot(p.ID.String())
}

// SplitActive splits the currently active leaf, attaching p as the
// new sibling (§3 LayoutEngine: split).
func (t *Tab) SplitActive(dir layout.SplitType, p *pane.Pane) (*layout.Node, error) {
	t.panes[p.ID.String()] = p
	return t.tree.Split(dir, p.ID.String())
}

// ClosePane removes the pane with the given ID from the tree (or the
// floating layer) and the pane map, returning the pane that should
// become active next.
func (t *Tab) ClosePane(id ids.PaneID) *pane.Pane {
	key := id.String()

	if idx, ok := t.floatingIndex(key); ok {
		_ = t.floating[idx].pane.Close()
		t.floating = append(t.floating[:idx], t.floating[idx+1:]...)
		delete(t.panes, key)
		if len(t.floating) == 0 {
			t.floatingVisible = false
		}
		return t.ActivePane()
	}

	leaf := t.findLeaf(t.tree.Root, key)
	if leaf == nil {
		return t.ActivePane()
	}
	if p, ok := t.panes[key]; ok {
		_ = p.Close()
	}
	delete(t.panes, key)
	next := t.tree.Close(leaf)
	if t.fullscreenPane == key {
		t.fullscreenPane = ""
	}
	if next == nil {
		return nil
	}
	return t.panes[next.PaneID]
}

func (t *Tab) floatingIndex(key string) (int, bool) {
	for i, f := range t.floating {
		if f.pane.ID.String() == key {
			return i, true
		}
	}
	return 0, false
}

func (t *Tab) findLeaf(n *layout.Node, paneID string) *layout.Node {
	if n == nil {
		return nil
	}
	if n.IsLeaf() {
		if n.PaneID == paneID {
			return n
		}
		return nil
	}
	for _, c := range n.Children {
		if found := t.findLeaf(c, paneID); found != nil {
			return found
		}
	}
	return nil
}

// Panes returns every pane currently in the tab, in no particular order.
func (t *Tab) Panes() []*pane.Pane {
	out := make([]*pane.Pane, 0, len(t.panes))
	for _, p := range t.panes {
		out = append(out, p)
	}
	return out
}

// ActivePane returns the focused pane: the topmost floating pane when
// the floating layer is shown, otherwise the tree's active leaf (§4.3
// "Floating panes": "the topmost floating pane receives focus").
func (t *Tab) ActivePane() *pane.Pane {
	if t.floatingVisible && len(t.floating) > 0 {
		return t.floating[len(t.floating)-1].pane
	}
	if t.tree.ActiveLeaf == nil {
		return nil
	}
	return t.panes[t.tree.ActiveLeaf.PaneID]
}

// FocusPane makes the leaf holding id the active leaf.
func (t *Tab) FocusPane(id ids.PaneID) error {
	leaf := t.findLeaf(t.tree.Root, id.String())
	if leaf == nil {
		return fmt.Errorf("tab: no pane %s in tab %q", id, t.Name)
	}
	t.tree.ActiveLeaf = leaf
	return nil
}

// Rect returns the tab's last-assigned overall rect, or the zero
// Rect if it has never been sized.
func (t *Tab) Rect() layout.Rect {
	if t.tree.Root == nil {
		return layout.Rect{}
	}
	return t.tree.Root.Rect
}

// Resize sets the tab's overall rect and reflows the tree
// (§3 LayoutEngine: resize propagates to every node).
func (t *Tab) Resize(r layout.Rect) {
	if t.tree.Root == nil {
		return
	}
	t.tree.Root.Rect = r
	t.tree.Reflow()
	t.resizeTiledFromTree()
}

func (t *Tab) resizeTiledFromTree() {
	for _, p := range t.panes {
		leaf := t.findLeaf(t.tree.Root, p.ID.String())
		if leaf == nil {
			continue
		}
		_ = p.Resize(leaf.Rect.W, leaf.Rect.H)
	}
}

// ResizeDirection grows or shrinks the active pane toward dir by
// percent of its enclosing split's span (default layout.ResizePercent
// = 5%), per §4.3 "Directional resize on flat pane sets". Returns
// false if there is no active pane or no neighbour has room to give.
func (t *Tab) ResizeDirection(dir layout.Direction, percent int) bool {
	active := t.tree.ActiveLeaf
	if active == nil {
		return false
	}
	if !t.tree.ResizeDirection(active, dir, percent) {
		return false
	}
	t.resizeTiledFromTree()
	return true
}

// MoveFocus moves focus to the tiled neighbour with the greatest
// cross-axis overlap in dir, ties broken by smallest pane id (§4.4
// Tab.move_focus_{left,right,up,down}). Returns false if no neighbour
// lies in that direction.
func (t *Tab) MoveFocus(dir layout.Direction) bool {
	active := t.tree.ActiveLeaf
	if active == nil {
		return false
	}
	var best *layout.Node
	bestOverlap := -1
	for _, n := range t.tree.Leaves() {
		if n == active || !inDirection(active.Rect, n.Rect, dir) {
			continue
		}
		ov := crossAxisOverlap(active.Rect, n.Rect, dir)
		if ov > bestOverlap || (ov == bestOverlap && best != nil && n.PaneID < best.PaneID) {
			best, bestOverlap = n, ov
		}
	}
	if best == nil {
		return false
	}
	t.tree.ActiveLeaf = best
	return true
}

func inDirection(from, to layout.Rect, dir layout.Direction) bool {
	switch dir {
	case layout.DirRight:
		return to.X >= from.X+from.W
	case layout.DirLeft:
		return to.X+to.W <= from.X
	case layout.DirDown:
		return to.Y >= from.Y+from.H
	case layout.DirUp:
		return to.Y+to.H <= from.Y
	}
	return false
}

func crossAxisOverlap(from, to layout.Rect, dir layout.Direction) int {
	if dir == layout.DirLeft || dir == layout.DirRight {
		return overlap1D(from.Y, from.Y+from.H, to.Y, to.Y+to.H)
	}
	return overlap1D(from.X, from.X+from.W, to.X, to.X+to.W)
}

func overlap1D(aStart, aEnd, bStart, bEnd int) int {
	lo := aStart
	if bStart > lo {
		lo = bStart
	}
	hi := aEnd
	if bEnd < hi {
		hi = bEnd
	}
	if hi <= lo {
		return 0
	}
	return hi - lo
}

// CycleFocusNext and CycleFocusPrevious move focus through the tiled
// leaves in a stable order, wrapping around (§4.4
// Tab.cycle_focus_next/previous).
func (t *Tab) CycleFocusNext() { t.cycleFocus(1) }

func (t *Tab) CycleFocusPrevious() { t.cycleFocus(-1) }

func (t *Tab) cycleFocus(delta int) {
	leaves := t.tree.Leaves()
	if len(leaves) == 0 {
		return
	}
	idx := 0
	for i, n := range leaves {
		if n == t.tree.ActiveLeaf {
			idx = i
			break
		}
	}
	idx = ((idx+delta)%len(leaves) + len(leaves)) % len(leaves)
	t.tree.ActiveLeaf = leaves[idx]
}

// ApplyLayout rebuilds the tab's tiled tree from a layout template
// (as produced by a saved or startup layout) by walking its leaves in
// order and binding each to the next id in pids, the style
// LayoutEngine's constraint-solving fallback expects for start-up and
// swap layouts (§4.3 "constraint-solving fallback", §4.4
// Tab.apply_layout(layout, pids)). panes supplies the already-running
// pane for each id; the caller is responsible for spawning them.
func (t *Tab) ApplyLayout(template *layout.Node, pids []ids.PaneID, panes map[ids.PaneID]*pane.Pane) error {
	if template == nil {
		return fmt.Errorf("tab: nil layout template")
	}
	idx := 0
	root := cloneAndBind(template, pids, &idx)
	if idx != len(pids) {
		return fmt.Errorf("tab: layout has %d leaves, got %d pane ids", idx, len(pids))
	}
	t.tree.Root = root
	t.tree.ActiveLeaf = firstLeaf(root)
	for _, id := range pids {
		if p, ok := panes[id]; ok {
			t.panes[id.String()] = p
		}
	}
	if t.tree.Root.Rect.W > 0 || t.tree.Root.Rect.H > 0 {
		t.tree.Reflow()
		t.resizeTiledFromTree()
	}
	return nil
}

func cloneAndBind(n *layout.Node, pids []ids.PaneID, idx *int) *layout.Node {
	clone := &layout.Node{Split: n.Split, Sizes: append([]layout.SizeSpec(nil), n.Sizes...)}
	if n.IsLeaf() {
		if *idx < len(pids) {
			clone.PaneID = pids[*idx].String()
		}
		*idx++
		return clone
	}
	for _, c := range n.Children {
		child := cloneAndBind(c, pids, idx)
		child.Parent = clone
		clone.Children = append(clone.Children, child)
	}
	return clone
}

func firstLeaf(n *layout.Node) *layout.Node {
	if n == nil {
		return nil
	}
	for !n.IsLeaf() {
		n = n.Children[0]
	}
	return n
}

// NewFloatingPane adds p to the floating layer at rect, on top of the
// z-order, and shows the floating layer (§3 Tab.floating, §4.3
// "Floating panes").
func (t *Tab) NewFloatingPane(p *pane.Pane, rect layout.Rect) {
	t.panes[p.ID.String()] = p
	t.floating = append(t.floating, floatingPane{pane: p, rect: rect})
	t.floatingVisible = true
	_ = p.Resize(rect.W, rect.H)
}

// ToggleFloatingPanes shows or hides the floating layer without
// destroying it (§4.3 "Floating panes", §6 CLI action
// ToggleFloatingPanes).
func (t *Tab) ToggleFloatingPanes() { t.floatingVisible = !t.floatingVisible }

// FloatingVisible reports whether the floating layer is currently shown.
func (t *Tab) FloatingVisible() bool { return t.floatingVisible }

// FloatingPanes returns the floating layer's panes in z-order, topmost
// last; FloatingRect gives each one's rectangle.
func (t *Tab) FloatingPanes() []*pane.Pane {
	out := make([]*pane.Pane, len(t.floating))
	for i, f := range t.floating {
		out[i] = f.pane
	}
	return out
}

// FloatingRect returns the geometry of the floating pane with the
// given id, or the zero Rect if it isn't floating.
func (t *Tab) FloatingRect(id ids.PaneID) layout.Rect {
	if idx, ok := t.floatingIndex(id.String()); ok {
		return t.floating[idx].rect
	}
	return layout.Rect{}
}

// TogglePaneEmbedOrFloating moves the currently focused pane between
// the tiled tree and the floating layer (§6 CLI action
// TogglePaneEmbedOrFloating).
func (t *Tab) TogglePaneEmbedOrFloating() {
	if t.floatingVisible && len(t.floating) > 0 {
		t.embedTopFloating()
		return
	}
	t.floatActiveTiled()
}

func (t *Tab) embedTopFloating() {
	last := len(t.floating) - 1
	f := t.floating[last]
	t.floating = t.floating[:last]
	if len(t.floating) == 0 {
		t.floatingVisible = false
	}
	if t.tree.Root == nil {
		t.tree.SetRoot(f.pane.ID.String())
	} else {
		_, _ = t.tree.Split(layout.Vertical, f.pane.ID.String())
	}
	t.resizeTiledFromTree()
}

// floatActiveTiled pulls the active tiled pane out of the tree into a
// floating window sized to three quarters of the tab, centered.
func (t *Tab) floatActiveTiled() {
	active := t.tree.ActiveLeaf
	if active == nil {
		return
	}
	p := t.panes[active.PaneID]
	if p == nil {
		return
	}
	tabRect := t.Rect()
	next := t.tree.Close(active)
	rect := layout.Rect{
		X: tabRect.X + tabRect.W/8,
		Y: tabRect.Y + tabRect.H/8,
		W: tabRect.W * 3 / 4,
		H: tabRect.H * 3 / 4,
	}
	if rect.W < layout.MinPaneSpan {
		rect.W = layout.MinPaneSpan
	}
	if rect.H < layout.MinPaneSpan {
		rect.H = layout.MinPaneSpan
	}
	t.floating = append(t.floating, floatingPane{pane: p, rect: rect})
	t.floatingVisible = true
	_ = p.Resize(rect.W, rect.H)
	if next != nil {
		t.tree.ActiveLeaf = next
	}
	t.resizeTiledFromTree()
}

// ToggleFullscreen makes the active pane occupy the tab's entire rect,
// or restores normal tiling if a pane is already fullscreen.
func (t *Tab) ToggleFullscreen() {
	active := t.tree.ActiveLeaf
	if active == nil {
		return
	}
	if t.fullscreenPane == active.PaneID {
		t.fullscreenPane = ""
		t.Resize(t.preFullscreen)
		return
	}
	t.preFullscreen = t.tree.Root.Rect
	t.fullscreenPane = active.PaneID
	p := t.panes[active.PaneID]
	if p != nil {
		_ = p.Resize(t.preFullscreen.W, t.preFullscreen.H)
	}
}

// IsFullscreen reports whether a pane currently occupies the entire tab.
func (t *Tab) IsFullscreen() bool { return t.fullscreenPane != "" }

// SetSyncInput toggles whether input written to the active pane is
// broadcast to every pane in the tab (tmux-style synchronized panes;
// §4 supplemented feature, no direct spec.md analogue).
func (t *Tab) SetSyncInput(on bool) { t.syncInput = on }

// SyncInput reports the current synchronized-input state.
func (t *Tab) SyncInput() bool { return t.syncInput }

// WriteInput delivers data to the active pane, or to every pane in
// the tab when synchronized input is enabled.
func (t *Tab) WriteInput(data []byte) error {
	if !t.syncInput {
		p := t.ActivePane()
		if p == nil {
			return nil
		}
		return p.WriteInput(data)
	}
	var firstErr error
	for _, p := range t.panes {
		if err := p.WriteInput(data); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// NextSwapLayout cycles to the next fixed arrangement and applies it.
func (t *Tab) NextSwapLayout() SwapLayout {
	t.swapIndex = (t.swapIndex + 1) % len(t.swapCycle)
	layoutName := t.swapCycle[t.swapIndex]
	t.applySwapLayout(layoutName)
	return layoutName
}

// applySwapLayout rewrites internal nodes' size specs to match a named
// fixed arrangement, then reflows. Tiled and stacked rewrite every
// internal node; main-pane rewrites only the root.
func (t *Tab) applySwapLayout(name SwapLayout) {
	if t.tree.Root == nil {
		return
	}
	switch name {
	case SwapLayoutStacked:
		applyStacked(t.tree.Root)
	case SwapLayoutMainPane:
		applyMainPane(t.tree.Root)
	default:
		applyEvenTiled(t.tree.Root)
	}
	t.tree.Reflow()
}

func applyEvenTiled(n *layout.Node) {
	if n.IsLeaf() {
		return
	}
	even := 100.0 / float64(len(n.Children))
	for i := range n.Sizes {
		n.Sizes[i] = layout.SizeSpec{Percent: even}
	}
	for _, c := range n.Children {
		applyEvenTiled(c)
	}
}

func applyStacked(n *layout.Node) {
	if n.IsLeaf() {
		return
	}
	n.Split = layout.Horizontal
	even := 100.0 / float64(len(n.Children))
	for i := range n.Sizes {
		n.Sizes[i] = layout.SizeSpec{Percent: even}
	}
	for _, c := range n.Children {
		applyStacked(c)
	}
}

// applyMainPane gives the first child 60% and splits the remainder
// evenly among the rest, a common "main + stack" tiling preset.
func applyMainPane(n *layout.Node) {
	if n.IsLeaf() || len(n.Children) < 2 {
		return
	}
	n.Split = layout.Vertical
	n.Sizes[0] = layout.SizeSpec{Percent: 60}
	rest := 40.0 / float64(len(n.Children)-1)
	for i := 1; i < len(n.Sizes); i++ {
		n.Sizes[i] = layout.SizeSpec{Percent: rest}
	}
}
