package vt

// Row is an ordered sequence of cells plus the canonical/continuation
// flag distinguishing the first visual line of a logical (input) line
// from the lines produced by wrap (§3 Row, invariant I6).
type Row struct {
	Cells     []Cell
	Canonical bool
}

// NewRow returns a row of width empty cells, canonical by default.
func NewRow(width int) Row {
	cells := make([]Cell, width)
	for i := range cells {
		cells[i] = EmptyCell()
	}
	return Row{Cells: cells, Canonical: true}
}

// padTo grows the row to width cells with empty cells, leaving
// existing content untouched. It never shrinks the row.
func (r *Row) padTo(width int) {
	for len(r.Cells) < width {
		r.Cells = append(r.Cells, EmptyCell())
	}
}

// width returns the sum of cell widths actually occupied (i.e. len,
// since every cell including wide-continuation markers occupies one
// column slot in Cells).
func (r *Row) width() int { return len(r.Cells) }

// lastNonEmpty returns the index of the last non-empty cell, or -1 if
// the row is entirely empty cells.
func (r *Row) lastNonEmpty() int {
	for i := len(r.Cells) - 1; i >= 0; i-- {
		if !r.Cells[i].IsEmpty() {
			return i
		}
	}
	return -1
}

// trimTrailingEmpty returns a copy of the row's cells up to and
// including the last non-empty cell (§3 Row: "trailing-space trim is
// permitted only up to the last non-empty cell").
func (r *Row) trimTrailingEmpty() []Cell {
	last := r.lastNonEmpty()
	if last < 0 {
		return nil
	}
	out := make([]Cell, last+1)
	copy(out, r.Cells[:last+1])
	return out
}
