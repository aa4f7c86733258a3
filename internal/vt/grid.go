package vt

import (
	"strings"

	"github.com/weftterm/weft/internal/outbuf"
)

// ScrollBackCap bounds lines_above's FIFO depth (§3 Grid, invariant I4).
const ScrollBackCap = 10000

// TitleStackCap bounds the window-title push stack (§3 Grid).
const TitleStackCap = 1000

// ScrollRegion is an inclusive row range within the viewport that
// LF/IND/RI/IL/DL are confined to (§3 Grid: scroll_region).
type ScrollRegion struct {
	Top, Bottom int
}

// Position is an absolute grid coordinate used by selection: Line 0 is
// the first row of the viewport, negative lines index back into
// lines_above (Line -1 is the row immediately above the viewport).
type Position struct {
	Line int
	Col  int
}

func (p Position) less(q Position) bool {
	if p.Line != q.Line {
		return p.Line < q.Line
	}
	return p.Col < q.Col
}

type savedPrimary struct {
	linesAbove []Row
	viewport   []Row
	cursor     Cursor
}

// Grid is the VT interpreter and cell store (component A, §4.1). It
// owns the cell buffer, scrollback, cursor, SGR state, and alternate
// screen, and is mutated only by Advance and the handful of direct
// accessors below; it never blocks and produces no direct output
// besides the bytes queued by PendingMessagesToPTY.
type Grid struct {
	width, height int

	linesAbove []Row
	viewport   []Row
	linesBelow []Row

	altSaved *savedPrimary // non-nil while the alternate screen is active

	cursor      Cursor
	savedCursor *Cursor

	scrollRegion *ScrollRegion
	tabstops     map[int]bool

	title      string
	titleStack []string

	modeCursorKeys     bool // DECCKM
	modeOrigin         bool // DECOM
	modeAutoWrap       bool // DECAWM, default on
	modeInsert         bool // IRM
	modeBracketedPaste bool // 2004
	modeShowCursor     bool // DECTCEM, default on
	mouseMode          MouseMode
	mouseSGR           bool // 1006: SGR extended mouse coordinates

	selection *struct{ start, end Position }

	changedColors *[256]Color

	precedingChar rune // for REP (CSI b)

	out      *outbuf.OutputBuffer
	pending  [][]byte // queued bytes to reply to the PTY (DA/DSR/OSC queries)
	parser   *Parser
}

// New creates a fresh grid of the given size, cursor home, default
// styles, tabstops every 8 columns (§3 Grid: tabstops).
func New(width, height int) *Grid {
	g := &Grid{
		width:          width,
		height:         height,
		viewport:       make([]Row, height),
		tabstops:       make(map[int]bool),
		modeAutoWrap:   true,
		modeShowCursor: true,
		out:            outbuf.New(),
		cursor:         newCursor(),
	}
	for i := range g.viewport {
		g.viewport[i] = NewRow(width)
	}
	for i := 0; i < width; i += 8 {
		g.tabstops[i] = true
	}
	g.parser = NewParser(g)
	return g
}

// Width and Height expose the grid's current dimensions.
func (g *Grid) Width() int  { return g.width }
func (g *Grid) Height() int { return g.height }

// Advance feeds raw PTY bytes through the VT parser (§4.1 interface).
func (g *Grid) Advance(data []byte) {
	// New output returns a scrolled-back view to the live bottom, so the
	// rows held in lines_below are restored before any of them could be
	// discarded by pushScrollback.
	g.ResetViewport()
	g.parser.Parse(data)
}

// CursorCoordinates returns the cursor position, or ok=false if hidden.
func (g *Grid) CursorCoordinates() (x, y int, ok bool) {
	if !g.modeShowCursor || g.cursor.Hidden {
		return 0, 0, false
	}
	x = g.cursor.X
	if x > g.width-1 {
		x = g.width - 1
	}
	return x, g.cursor.Y, true
}

// InAlternateScreen reports whether the alternate screen is active.
func (g *Grid) InAlternateScreen() bool { return g.altSaved != nil }

// Title returns the OSC-set window title, empty if never set.
func (g *Grid) Title() string { return g.title }

// BracketedPasteEnabled reports whether CSI ?2004h is in effect.
func (g *Grid) BracketedPasteEnabled() bool { return g.modeBracketedPaste }

// CursorKeysMode reports whether DECCKM (application cursor keys) is set.
func (g *Grid) CursorKeysMode() bool { return g.modeCursorKeys }

// MouseMode reports which of the 1000/1002/1003 mouse-tracking modes
// is active, if any (§6 "mouse mode bits").
func (g *Grid) MouseMode() MouseMode { return g.mouseMode }

// MouseSGR reports whether CSI ?1006h (SGR extended mouse coordinates)
// is in effect.
func (g *Grid) MouseSGR() bool { return g.mouseSGR }

// ScrollbackLen returns len(lines_above), bounded by P4/I4.
func (g *Grid) ScrollbackLen() int { return len(g.linesAbove) }

// DumpText renders the grid as UTF-8 plain text, one physical line per
// '\n'-terminated line, with no ANSI styling (§6 "Persistent state:
// Scrollback dumps"). With includeScrollback it starts from
// lines_above; otherwise it dumps only the current viewport.
func (g *Grid) DumpText(includeScrollback bool) string {
	var b strings.Builder
	rows := g.viewport
	if includeScrollback {
		rows = append(append([]Row(nil), g.linesAbove...), g.viewport...)
	}
	for _, row := range rows {
		b.WriteString(rowText(row, 0, len(row.Cells)-1))
		b.WriteByte('\n')
	}
	return b.String()
}

// markDirty records row y (within the viewport) as changed.
func (g *Grid) markDirty(y int) {
	if y >= 0 && y < g.height {
		g.out.UpdateLine(y)
	}
}

func (g *Grid) markAllDirty() { g.out.UpdateAllLines() }

// Chunk is a rectangle of cells that changed since the last read,
// ready to be diffed/rendered by the output pipeline (§4.2).
type Chunk struct {
	X, Y  int
	Cells []Cell
}

// ReadChanges returns dirty regions since the last call and clears the
// dirty set (§4.1 interface, §8 P6 idempotence).
func (g *Grid) ReadChanges() []Chunk {
	lines := g.out.DirtyLines(g.height)
	chunks := make([]Chunk, 0, len(lines))
	for _, y := range lines {
		row := g.viewport[y]
		cells := make([]Cell, g.width)
		for x := 0; x < g.width; x++ {
			if x < len(row.Cells) {
				cells[x] = row.Cells[x]
			} else {
				cells[x] = EmptyCell()
			}
		}
		chunks = append(chunks, Chunk{X: 0, Y: y, Cells: cells})
	}
	return chunks
}

// PendingMessagesToPTY drains sequences the terminal must reply with
// (DA, DSR, OSC queries), §4.1 interface.
func (g *Grid) PendingMessagesToPTY() [][]byte {
	msgs := g.pending
	g.pending = nil
	return msgs
}

func (g *Grid) queueReply(b []byte) {
	g.pending = append(g.pending, b)
}

// --- Scrollback / viewport navigation -------------------------------

// ScrollUp moves the viewport n rows toward scrollback (lines_above),
// pulling rows into lines_below.
func (g *Grid) ScrollUp(n int) {
	for i := 0; i < n && len(g.linesAbove) > 0; i++ {
		last := len(g.linesAbove) - 1
		row := g.linesAbove[last]
		g.linesAbove = g.linesAbove[:last]
		g.linesBelow = append([]Row{g.viewport[g.height-1]}, g.linesBelow...)
		copy(g.viewport[1:], g.viewport[:g.height-1])
		g.viewport[0] = row
	}
	g.markAllDirty()
}

// ScrollDown moves the viewport n rows toward the live bottom.
func (g *Grid) ScrollDown(n int) {
	for i := 0; i < n && len(g.linesBelow) > 0; i++ {
		row := g.linesBelow[0]
		g.linesBelow = g.linesBelow[1:]
		g.linesAbove = append(g.linesAbove, g.viewport[0])
		copy(g.viewport[:g.height-1], g.viewport[1:])
		g.viewport[g.height-1] = row
	}
	g.markAllDirty()
}

// ResetViewport scrolls all the way back down to the live bottom.
func (g *Grid) ResetViewport() {
	if len(g.linesBelow) == 0 {
		return
	}
	g.ScrollDown(len(g.linesBelow))
}

// --- Selection --------------------------------------------------------

// StartSelection begins a new selection at pos.
func (g *Grid) StartSelection(pos Position) {
	g.selection = &struct{ start, end Position }{pos, pos}
}

// UpdateSelection extends the in-progress selection's end point.
func (g *Grid) UpdateSelection(pos Position) {
	if g.selection == nil {
		g.StartSelection(pos)
		return
	}
	g.selection.end = pos
}

// EndSelection finalizes the selection, optionally updating the end
// point one last time.
func (g *Grid) EndSelection(pos *Position) {
	if g.selection == nil {
		return
	}
	if pos != nil {
		g.selection.end = *pos
	}
}

// ClearSelection drops the current selection, if any.
func (g *Grid) ClearSelection() { g.selection = nil }

// rowAt returns the row at absolute Position.Line, where 0 is the
// first viewport row and negative indices reach into lines_above.
func (g *Grid) rowAt(line int) (Row, bool) {
	if line >= 0 {
		if line < len(g.viewport) {
			return g.viewport[line], true
		}
		return Row{}, false
	}
	idx := len(g.linesAbove) + line
	if idx >= 0 && idx < len(g.linesAbove) {
		return g.linesAbove[idx], true
	}
	return Row{}, false
}

// GetSelectedText composes the selected text, trimming trailing
// whitespace per row and skipping wide-character continuation cells,
// inserting a newline at canonical-row boundaries (§4.1 Selection).
func (g *Grid) GetSelectedText() (string, bool) {
	if g.selection == nil {
		return "", false
	}
	start, end := g.selection.start, g.selection.end
	if end.less(start) {
		start, end = end, start
	}

	var b strings.Builder
	for line := start.Line; line <= end.Line; line++ {
		row, ok := g.rowAt(line)
		if !ok {
			continue
		}
		colStart, colEnd := 0, len(row.Cells)-1
		if line == start.Line {
			colStart = start.Col
		}
		if line == end.Line {
			colEnd = end.Col
		}
		if colEnd > len(row.Cells)-1 {
			colEnd = len(row.Cells) - 1
		}
		lineText := rowText(row, colStart, colEnd)
		b.WriteString(lineText)
		if line < end.Line {
			nextRow, ok := g.rowAt(line + 1)
			if !ok || nextRow.Canonical {
				b.WriteByte('\n')
			}
		}
	}
	return b.String(), true
}

func rowText(row Row, colStart, colEnd int) string {
	var b strings.Builder
	for i := colStart; i <= colEnd && i < len(row.Cells); i++ {
		c := row.Cells[i]
		if c.IsWideContinuation() {
			continue
		}
		b.WriteRune(c.Rune)
	}
	return strings.TrimRight(b.String(), " ")
}
