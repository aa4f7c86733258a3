package vt

// Resize changes the grid's dimensions in place. A width change
// rewraps every logical line at the new width (§4.1 "Resize");  a
// height change pulls rows from or pushes rows onto lines_above so the
// cursor's logical position in the scrollback is preserved as closely
// as possible.
func (g *Grid) Resize(newWidth, newHeight int) {
	if newWidth == g.width && newHeight == g.height {
		return
	}
	if newWidth != g.width {
		g.rewrapWidth(newWidth)
	}
	if newHeight != g.height {
		g.resizeHeight(newHeight)
	}
	g.width = newWidth
	g.height = newHeight
	if g.cursor.X > g.width {
		g.cursor.X = g.width
	}
	if g.cursor.Y > g.height-1 {
		g.cursor.Y = g.height - 1
	}
	if g.scrollRegion != nil && (g.scrollRegion.Bottom >= g.height || g.scrollRegion.Top >= g.height) {
		g.scrollRegion = nil
	}
	g.markAllDirty()
}

// logicalLine is a run of (canonical, continuation...) rows
// concatenated into one sequence of cells, per §4.1 "Resize" step 1.
type logicalLine struct {
	cells   []Cell
	rowLens []int // length of each source row, to locate the cursor's offset
}

// rewrapWidth implements the five-step rewrap in §4.1 "Resize":
// concatenate logical lines, trim trailing empties, re-split at the
// new width (first split canonical, rest continuations), recompute
// the cursor's (y,x) under the new width, then rebuild lines_above /
// viewport so the viewport again holds exactly height rows. A width
// change also resets any in-progress scrollback scroll to the live
// bottom (matching common terminal behavior, e.g. tmux), which keeps
// step 5's above/viewport split simple.
func (g *Grid) rewrapWidth(newWidth int) {
	height := g.height

	all := make([]Row, 0, len(g.linesAbove)+len(g.viewport)+len(g.linesBelow))
	all = append(all, g.linesAbove...)
	all = append(all, g.viewport...)
	all = append(all, g.linesBelow...)
	cursorAbs := len(g.linesAbove) + g.cursor.Y

	var logical []logicalLine
	for i, row := range all {
		if i == 0 || row.Canonical {
			logical = append(logical, logicalLine{})
		}
		ll := &logical[len(logical)-1]
		ll.cells = append(ll.cells, row.Cells...)
		ll.rowLens = append(ll.rowLens, len(row.Cells))
	}

	cursorLogical, cursorOffset := 0, 0
	absIdx := 0
	for li, ll := range logical {
		rows := len(ll.rowLens)
		if cursorAbs >= absIdx && cursorAbs < absIdx+rows {
			cursorLogical = li
			for r := 0; r < cursorAbs-absIdx; r++ {
				cursorOffset += ll.rowLens[r]
			}
			cursorOffset += g.cursor.X
			break
		}
		absIdx += rows
	}

	var newAll []Row
	newCursorAbs, newCursorX := 0, 0
	for li, ll := range logical {
		cells := trimTrailingEmptyCells(ll.cells)
		rowsStart := len(newAll)
		if len(cells) == 0 {
			newAll = append(newAll, NewRow(newWidth))
		} else {
			for start := 0; start < len(cells); start += newWidth {
				end := start + newWidth
				if end > len(cells) {
					end = len(cells)
				}
				chunk := make([]Cell, newWidth)
				for i := range chunk {
					chunk[i] = EmptyCell()
				}
				copy(chunk, cells[start:end])
				newAll = append(newAll, Row{Cells: chunk, Canonical: start == 0})
			}
		}
		if li == cursorLogical {
			rowsForLine := len(newAll) - rowsStart
			rowIdx, colIdx := cursorOffset/newWidth, cursorOffset%newWidth
			if rowIdx >= rowsForLine {
				rowIdx, colIdx = rowsForLine-1, newWidth
			}
			newCursorAbs = rowsStart + rowIdx
			newCursorX = colIdx
		}
	}
	if len(newAll) == 0 {
		newAll = append(newAll, NewRow(newWidth))
	}
	// Blank rows below the cursor are viewport padding, not content:
	// drop them before pushing any content rows into lines_above.
	for len(newAll) > height && len(newAll)-1 > newCursorAbs && newAll[len(newAll)-1].lastNonEmpty() < 0 {
		newAll = newAll[:len(newAll)-1]
	}

	total := len(newAll)
	var viewportStart int
	if total <= height {
		viewportStart = 0
		for len(newAll) < height {
			newAll = append(newAll, NewRow(newWidth))
		}
	} else {
		viewportStart = total - height
	}

	g.linesAbove = append([]Row(nil), newAll[:viewportStart]...)
	g.viewport = append([]Row(nil), newAll[viewportStart:viewportStart+height]...)
	g.linesBelow = nil

	g.cursor.Y = newCursorAbs - viewportStart
	if g.cursor.Y < 0 {
		g.cursor.Y = 0
	}
	if g.cursor.Y > height-1 {
		g.cursor.Y = height - 1
	}
	g.cursor.X = newCursorX
}

// trimTrailingEmptyCells returns cells with trailing empty cells
// removed, per §4.1 "Resize" step 2.
func trimTrailingEmptyCells(cells []Cell) []Cell {
	last := len(cells) - 1
	for last >= 0 && cells[last].IsEmpty() {
		last--
	}
	if last < 0 {
		return nil
	}
	out := make([]Cell, last+1)
	copy(out, cells[:last+1])
	return out
}

func (g *Grid) resizeHeight(newHeight int) {
	if newHeight > g.height {
		grow := newHeight - g.height
		pulledFromAbove := 0
		for pulledFromAbove < grow && len(g.linesAbove) > 0 {
			last := len(g.linesAbove) - 1
			row := g.linesAbove[last]
			g.linesAbove = g.linesAbove[:last]
			g.viewport = append([]Row{row}, g.viewport...)
			pulledFromAbove++
		}
		for len(g.viewport) < newHeight {
			g.viewport = append(g.viewport, NewRow(g.width))
		}
		g.cursor.Y += pulledFromAbove
		return
	}

	shrink := g.height - newHeight
	for i := 0; i < shrink; i++ {
		if len(g.viewport) == 0 {
			break
		}
		g.pushScrollback(g.viewport[0])
		g.viewport = g.viewport[1:]
		if g.cursor.Y > 0 {
			g.cursor.Y--
		}
	}
	for len(g.viewport) < newHeight {
		g.viewport = append(g.viewport, NewRow(g.width))
	}
}
