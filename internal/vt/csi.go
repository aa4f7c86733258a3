package vt

import "fmt"

// dispatchCSI executes a complete CSI sequence once its final byte
// arrives (§4.1: cursor motion, erase, scroll region, mode set/reset,
// save/restore, device attributes/status, window, tab, cursor style).
func (p *Parser) dispatchCSI(final byte) {
	g := p.g
	switch final {
	case 'A':
		g.cursor.Y = clamp(g.cursor.Y-p.param(0, 1), 0, g.height-1)
	case 'B':
		g.cursor.Y = clamp(g.cursor.Y+p.param(0, 1), 0, g.height-1)
	case 'C':
		g.cursor.X = clamp(g.cursor.X+p.param(0, 1), 0, g.width-1)
	case 'D':
		g.cursor.X = clamp(g.cursor.X-p.param(0, 1), 0, g.width-1)
	case 'E': // CNL
		g.cursor.X = 0
		g.cursor.Y = clamp(g.cursor.Y+p.param(0, 1), 0, g.height-1)
	case 'F': // CPL
		g.cursor.X = 0
		g.cursor.Y = clamp(g.cursor.Y-p.param(0, 1), 0, g.height-1)
	case 'G', '`': // CHA / HPA
		g.cursor.X = clamp(p.param(0, 1)-1, 0, g.width-1)
	case 'd': // VPA
		g.cursor.Y = clamp(p.param(0, 1)-1, 0, g.height-1)
	case 'H', 'f': // CUP / HVP
		row := p.param(0, 1) - 1
		col := p.param(1, 1) - 1
		if g.modeOrigin && g.scrollRegion != nil {
			row += g.scrollRegion.Top
		}
		g.cursor.Y = clamp(row, 0, g.height-1)
		g.cursor.X = clamp(col, 0, g.width-1)
	case 'I': // CHT
		for i := 0; i < p.param(0, 1); i++ {
			g.tabForward()
		}
	case 'Z': // CBT
		for i := 0; i < p.param(0, 1); i++ {
			g.tabBackward()
		}
	case 'J':
		g.eraseInDisplay(p.param(0, 0))
	case 'K':
		g.eraseInLine(p.param(0, 0))
	case 'L':
		g.insertLines(p.param(0, 1))
	case 'M':
		g.deleteLines(p.param(0, 1))
	case 'P':
		g.deleteChars(p.param(0, 1))
	case 'X':
		g.eraseChars(p.param(0, 1))
	case '@': // ICH
		g.insertCellsAt(g.cursor.X, p.param(0, 1))
	case 'S':
		g.scrollViewportUp(p.param(0, 1))
	case 'T':
		g.scrollViewportDown(p.param(0, 1))
	case 'b':
		g.repeatPreceding(p.param(0, 1))
	case 'm':
		g.applySGR(p.params)
	case 'r': // DECSTBM
		top := p.param(0, 1) - 1
		bottom := p.paramRaw(1, g.height)
		if bottom == 0 {
			bottom = g.height
		}
		bottom--
		if top < 0 {
			top = 0
		}
		if bottom >= g.height {
			bottom = g.height - 1
		}
		if top < bottom {
			g.scrollRegion = &ScrollRegion{Top: top, Bottom: bottom}
		} else {
			g.scrollRegion = nil
		}
		g.cursor.X, g.cursor.Y = 0, 0
		if g.modeOrigin && g.scrollRegion != nil {
			g.cursor.Y = g.scrollRegion.Top
		}
	case 's':
		g.saveCursor()
	case 'u':
		g.restoreCursor()
	case 'g': // TBC
		switch p.param(0, 0) {
		case 0:
			delete(g.tabstops, g.cursor.X)
		case 3:
			g.tabstops = make(map[int]bool)
		}
	case 'h', 'l':
		g.setModes(p.private, p.params, final == 'h')
	case 'n': // DSR
		g.handleDSR(p.param(0, 0), p.private)
	case 'c': // DA
		g.handleDA(p.private)
	case 'q':
		if p.intermed == ' ' { // DECSCUSR
			g.setCursorShape(p.param(0, 1))
		}
	case 't': // window manipulation; only the report forms reply
		g.handleWindowOp(p.params)
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func (g *Grid) tabForward() {
	for x := g.cursor.X + 1; x < g.width; x++ {
		if g.tabstops[x] {
			g.cursor.X = x
			return
		}
	}
	g.cursor.X = g.width - 1
}

func (g *Grid) tabBackward() {
	for x := g.cursor.X - 1; x >= 0; x-- {
		if g.tabstops[x] {
			g.cursor.X = x
			return
		}
	}
	g.cursor.X = 0
}

func (g *Grid) setTabstop() { g.tabstops[g.cursor.X] = true }

func (g *Grid) saveCursor() {
	c := g.cursor
	g.savedCursor = &c
}

func (g *Grid) restoreCursor() {
	if g.savedCursor == nil {
		return
	}
	g.cursor = *g.savedCursor
}

// index performs ESC D (IND): identical to newline but does not
// perform a carriage return.
func (g *Grid) index() { g.newline() }

func (g *Grid) setCursorShape(ps int) {
	switch ps {
	case 0, 1:
		g.cursor.Shape, g.cursor.Blinking = CursorBlock, true
	case 2:
		g.cursor.Shape, g.cursor.Blinking = CursorBlock, false
	case 3:
		g.cursor.Shape, g.cursor.Blinking = CursorUnderline, true
	case 4:
		g.cursor.Shape, g.cursor.Blinking = CursorUnderline, false
	case 5:
		g.cursor.Shape, g.cursor.Blinking = CursorBar, true
	case 6:
		g.cursor.Shape, g.cursor.Blinking = CursorBar, false
	}
}

func (g *Grid) handleDSR(code int, private byte) {
	switch {
	case private == '?' && code == 6, private == 0 && code == 6: // CPR
		g.queueReply([]byte(fmt.Sprintf("\x1b[%d;%dR", g.cursor.Y+1, g.cursor.X+1)))
	case code == 5:
		g.queueReply([]byte("\x1b[0n"))
	}
}

func (g *Grid) handleDA(private byte) {
	if private == '>' {
		g.queueReply([]byte("\x1b[>1;10;0c"))
		return
	}
	g.queueReply([]byte("\x1b[?1;2c"))
}

func (g *Grid) handleWindowOp(params []int) {
	if len(params) == 0 {
		return
	}
	switch params[0] {
	case 18: // report text area size in chars
		g.queueReply([]byte(fmt.Sprintf("\x1b[8;%d;%dt", g.height, g.width)))
	case 22: // push title
		if len(g.titleStack) < TitleStackCap {
			g.titleStack = append(g.titleStack, g.title)
		}
	case 23: // pop title
		if n := len(g.titleStack); n > 0 {
			g.title = g.titleStack[n-1]
			g.titleStack = g.titleStack[:n-1]
		}
	}
}
