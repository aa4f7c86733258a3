// Package outbuf implements the per-grid dirty-line tracker (§4.2
// OutputBuffer): it holds either a set of dirty line indices or a
// "redraw all" flag, and hands back the set of lines that changed
// since the last read. It knows nothing about cell content — the
// caller (vt.Grid) owns the row data and builds render chunks from
// the indices this buffer reports, which keeps this package reusable
// by anything that needs "which lines changed" bookkeeping without
// pulling in the VT grid's types.
package outbuf

import "sort"

// OutputBuffer tracks which of a fixed number of lines have changed
// since the last read.
type OutputBuffer struct {
	dirty     map[int]bool
	redrawAll bool
}

// New returns an OutputBuffer with everything dirty, matching a grid
// that has just been created and has never been rendered.
func New() *OutputBuffer {
	return &OutputBuffer{dirty: make(map[int]bool), redrawAll: true}
}

// UpdateLine records line i as dirty, unless a redraw-all is already
// pending (in which case every line is already considered dirty).
func (b *OutputBuffer) UpdateLine(i int) {
	if b.redrawAll {
		return
	}
	b.dirty[i] = true
}

// UpdateAllLines marks every line dirty and drops the individual set,
// used after operations whose effect is cheaper to describe as "redraw
// everything" (resize, alternate-screen swap, full reset).
func (b *OutputBuffer) UpdateAllLines() {
	b.redrawAll = true
	for k := range b.dirty {
		delete(b.dirty, k)
	}
}

// IsRedrawAll reports whether the whole viewport must be redrawn.
func (b *OutputBuffer) IsRedrawAll() bool { return b.redrawAll }

// DirtyLines returns the sorted set of dirty line indices in
// [0, height), or every index in range if a redraw-all is pending,
// and clears the buffer's state as if just read (§8 P6: idempotence —
// a second call immediately after yields empty).
func (b *OutputBuffer) DirtyLines(height int) []int {
	var out []int
	if b.redrawAll {
		out = make([]int, height)
		for i := range out {
			out[i] = i
		}
	} else {
		out = make([]int, 0, len(b.dirty))
		for i := range b.dirty {
			if i >= 0 && i < height {
				out = append(out, i)
			}
		}
		sort.Ints(out)
	}
	b.clear()
	return out
}

func (b *OutputBuffer) clear() {
	b.redrawAll = false
	for k := range b.dirty {
		delete(b.dirty, k)
	}
}
