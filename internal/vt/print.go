package vt

import "github.com/mattn/go-runewidth"

// scrollTopBottom resolves the active scroll region, defaulting to the
// full viewport when none is set (§3 Grid: scroll_region).
func (g *Grid) scrollTopBottom() (int, int) {
	if g.scrollRegion != nil {
		return g.scrollRegion.Top, g.scrollRegion.Bottom
	}
	return 0, g.height - 1
}

// scrollViewportUp shifts rows [top,bottom] up by n, discarding the top
// n rows of the region. When the region spans the whole viewport and
// we are not in the alternate screen, the discarded rows are pushed
// onto lines_above instead of being dropped (§4.1: "Scrolling off the
// top of a full-height region pushes into lines_above; scrolling
// within a restricted region never touches scrollback").
func (g *Grid) scrollViewportUp(n int) {
	top, bottom := g.scrollTopBottom()
	fullRegion := top == 0 && bottom == g.height-1
	for i := 0; i < n; i++ {
		if fullRegion && !g.InAlternateScreen() {
			g.pushScrollback(g.viewport[top])
		}
		copy(g.viewport[top:bottom], g.viewport[top+1:bottom+1])
		g.viewport[bottom] = NewRow(g.width)
	}
	g.markLinesDirty(top, bottom)
}

// scrollViewportDown shifts rows [top,bottom] down by n, discarding the
// bottom n rows and introducing blank rows at top.
func (g *Grid) scrollViewportDown(n int) {
	top, bottom := g.scrollTopBottom()
	for i := 0; i < n; i++ {
		copy(g.viewport[top+1:bottom+1], g.viewport[top:bottom])
		g.viewport[top] = NewRow(g.width)
	}
	g.markLinesDirty(top, bottom)
}

func (g *Grid) markLinesDirty(top, bottom int) {
	for y := top; y <= bottom; y++ {
		g.markDirty(y)
	}
}

// pushScrollback appends row to lines_above, evicting the oldest row
// once ScrollBackCap is exceeded (§3 Grid invariant I4).
func (g *Grid) pushScrollback(row Row) {
	g.linesAbove = append(g.linesAbove, row)
	if len(g.linesAbove) > ScrollBackCap {
		g.linesAbove = g.linesAbove[len(g.linesAbove)-ScrollBackCap:]
	}
	// Any pending scrollback-relative selection/scroll offset is
	// invalidated by new output; reset to the live bottom (§4.1).
	g.linesBelow = nil
}

// newline performs LF semantics: move the cursor down one row, or
// scroll the active region if already at its bottom (§4.1).
func (g *Grid) newline() {
	_, bottom := g.scrollTopBottom()
	if g.cursor.Y == bottom {
		g.scrollViewportUp(1)
	} else if g.cursor.Y < g.height-1 {
		g.cursor.Y++
	}
}

// reverseIndex performs RI: move the cursor up one row, or scroll the
// region downward if already at its top.
func (g *Grid) reverseIndex() {
	top, _ := g.scrollTopBottom()
	if g.cursor.Y == top {
		g.scrollViewportDown(1)
	} else if g.cursor.Y > 0 {
		g.cursor.Y--
	}
}

// carriageReturn performs CR: cursor to column 0 of the current row.
func (g *Grid) carriageReturn() {
	g.cursor.X = 0
}

// printRune places r at the cursor, honoring auto-wrap, insert mode,
// and wide-character occupancy (§4.1 "printing algorithm").
func (g *Grid) printRune(r rune) {
	r = g.cursor.translateCharset(r)
	width := runewidth.RuneWidth(r)
	if width == 0 {
		// Zero-width runes (combining marks) are not stored: Cell holds a
		// single rune, and combineIntoPrevious drops them.
		g.combineIntoPrevious(r)
		return
	}

	if g.cursor.X >= g.width {
		if !g.modeAutoWrap {
			g.cursor.X = g.width - 1
		} else {
			g.wrapToNextLine()
		}
	}
	if width == 2 && g.cursor.X == g.width-1 {
		if !g.modeAutoWrap {
			width = 1 // no room to honor the wide glyph; degrade silently
		} else {
			// Wide char doesn't fit in the last column: wrap first.
			g.wrapToNextLine()
		}
	}

	if g.modeInsert {
		g.insertCellsAt(g.cursor.X, width)
	}

	cell := g.cursor.PendingStyle
	cell.Rune = r
	cell.Width = uint8(width)
	if width == 2 {
		cell.Flags |= FlagWide
	}
	row := &g.viewport[g.cursor.Y]
	row.padTo(g.width)
	row.Cells[g.cursor.X] = cell
	if width == 2 && g.cursor.X+1 < len(row.Cells) {
		cont := EmptyCell()
		cont.Width = 0
		cont.Flags |= FlagWideContinuation
		row.Cells[g.cursor.X+1] = cont
	}
	g.markDirty(g.cursor.Y)
	g.precedingChar = r
	g.cursor.X += width
}

// wrapToNextLine advances to column 0 of the next row, scrolling if at
// the bottom, and marks the destination row as a wrap continuation
// (invariant I6: Canonical=false).
func (g *Grid) wrapToNextLine() {
	_, bottom := g.scrollTopBottom()
	if g.cursor.Y == bottom {
		g.scrollViewportUp(1)
	} else if g.cursor.Y < g.height-1 {
		g.cursor.Y++
	}
	g.cursor.X = 0
	g.viewport[g.cursor.Y].Canonical = false
}

func (g *Grid) combineIntoPrevious(r rune) {
	x := g.cursor.X - 1
	y := g.cursor.Y
	if x < 0 {
		return
	}
	row := &g.viewport[y]
	if x >= len(row.Cells) {
		return
	}
	// Best-effort: combining marks are dropped rather than composed,
	// since Cell stores a single rune; this degrades gracefully for the
	// rare combining-mark input instead of corrupting the grid.
	_ = r
}

func (g *Grid) insertCellsAt(x, n int) {
	row := &g.viewport[g.cursor.Y]
	row.padTo(g.width)
	for i := 0; i < n; i++ {
		if len(row.Cells) == 0 {
			break
		}
		copy(row.Cells[x+1:], row.Cells[x:len(row.Cells)-1])
		row.Cells[x] = EmptyCell()
	}
}

// eraseInLine implements CSI K (Ps=0 to end, 1 from start, 2 whole
// line) and also backs CSI J's per-line component.
func (g *Grid) eraseInLine(mode int) {
	row := &g.viewport[g.cursor.Y]
	row.padTo(g.width)
	switch mode {
	case 0:
		for x := g.cursor.X; x < len(row.Cells); x++ {
			row.Cells[x] = EmptyCell()
		}
	case 1:
		for x := 0; x <= g.cursor.X && x < len(row.Cells); x++ {
			row.Cells[x] = EmptyCell()
		}
	case 2:
		for x := range row.Cells {
			row.Cells[x] = EmptyCell()
		}
	}
	g.markDirty(g.cursor.Y)
}

// eraseInDisplay implements CSI J (Ps=0 below, 1 above, 2/3 whole
// screen/+scrollback).
func (g *Grid) eraseInDisplay(mode int) {
	switch mode {
	case 0:
		g.eraseInLine(0)
		for y := g.cursor.Y + 1; y < g.height; y++ {
			g.viewport[y] = NewRow(g.width)
		}
		g.markLinesDirty(g.cursor.Y, g.height-1)
	case 1:
		g.eraseInLine(1)
		for y := 0; y < g.cursor.Y; y++ {
			g.viewport[y] = NewRow(g.width)
		}
		g.markLinesDirty(0, g.cursor.Y)
	case 2:
		for y := range g.viewport {
			g.viewport[y] = NewRow(g.width)
		}
		g.markAllDirty()
	case 3:
		g.linesAbove = nil
		for y := range g.viewport {
			g.viewport[y] = NewRow(g.width)
		}
		g.markAllDirty()
	}
}

// insertLines implements CSI L within the scroll region at the cursor.
func (g *Grid) insertLines(n int) {
	top, bottom := g.scrollTopBottom()
	if g.cursor.Y < top || g.cursor.Y > bottom {
		return
	}
	saved := g.scrollRegion
	g.scrollRegion = &ScrollRegion{Top: g.cursor.Y, Bottom: bottom}
	g.scrollViewportDown(n)
	g.scrollRegion = saved
}

// deleteLines implements CSI M within the scroll region at the cursor.
func (g *Grid) deleteLines(n int) {
	top, bottom := g.scrollTopBottom()
	if g.cursor.Y < top || g.cursor.Y > bottom {
		return
	}
	saved := g.scrollRegion
	g.scrollRegion = &ScrollRegion{Top: g.cursor.Y, Bottom: bottom}
	g.scrollViewportUp(n)
	g.scrollRegion = saved
}

// deleteChars implements CSI P: remove n cells at the cursor, shifting
// the remainder of the row left and padding the end with empties.
func (g *Grid) deleteChars(n int) {
	row := &g.viewport[g.cursor.Y]
	row.padTo(g.width)
	x := g.cursor.X
	if x >= len(row.Cells) {
		return
	}
	if n > len(row.Cells)-x {
		n = len(row.Cells) - x
	}
	copy(row.Cells[x:], row.Cells[x+n:])
	for i := len(row.Cells) - n; i < len(row.Cells); i++ {
		row.Cells[i] = EmptyCell()
	}
	g.markDirty(g.cursor.Y)
}

// eraseChars implements CSI X: blank n cells at the cursor without
// shifting the row.
func (g *Grid) eraseChars(n int) {
	row := &g.viewport[g.cursor.Y]
	row.padTo(g.width)
	for i := 0; i < n && g.cursor.X+i < len(row.Cells); i++ {
		row.Cells[g.cursor.X+i] = EmptyCell()
	}
	g.markDirty(g.cursor.Y)
}

// repeatPreceding implements CSI b (REP): reprint the last graphic
// character n more times.
func (g *Grid) repeatPreceding(n int) {
	if g.precedingChar == 0 {
		return
	}
	for i := 0; i < n; i++ {
		g.printRune(g.precedingChar)
	}
}
