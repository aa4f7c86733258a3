package vt

// MouseMode selects how much mouse activity is reported to the child
// process (§6 "mouse mode bits 1000/1002/1003/1006").
type MouseMode uint8

const (
	MouseOff          MouseMode = iota
	MouseX10                    // 1000: report button press/release only
	MouseButtonEvent             // 1002: + motion while a button is held
	MouseAnyEvent                // 1003: + motion with no button held
)

// setModes applies CSI h (set) / CSI l (reset) for each parameter,
// dispatching on the private prefix ('?' = DEC private modes, else
// ANSI modes). Only the modes named in §3 Grid are modeled; unknown
// codes are accepted and ignored, matching how real terminals behave
// toward modes they don't implement.
func (g *Grid) setModes(private byte, params []int, set bool) {
	for _, p := range params {
		if private == '?' {
			g.setDECMode(p, set)
		} else {
			g.setANSIMode(p, set)
		}
	}
}

func (g *Grid) setDECMode(code int, set bool) {
	switch code {
	case 1: // DECCKM
		g.modeCursorKeys = set
	case 3: // DECCOLM: clear screen and home cursor on either edge
		g.eraseInDisplay(2)
		g.cursor.X, g.cursor.Y = 0, 0
	case 6: // DECOM
		g.modeOrigin = set
		g.cursor.X, g.cursor.Y = 0, 0
		if set && g.scrollRegion != nil {
			g.cursor.Y = g.scrollRegion.Top
		}
	case 7: // DECAWM
		g.modeAutoWrap = set
	case 25: // DECTCEM
		g.modeShowCursor = set
		g.cursor.Hidden = !set
	case 1000: // X10: press/release only
		if set {
			g.mouseMode = MouseX10
		} else if g.mouseMode == MouseX10 {
			g.mouseMode = MouseOff
		}
	case 1002: // + motion while a button is held
		if set {
			g.mouseMode = MouseButtonEvent
		} else if g.mouseMode == MouseButtonEvent {
			g.mouseMode = MouseOff
		}
	case 1003: // + all motion
		if set {
			g.mouseMode = MouseAnyEvent
		} else if g.mouseMode == MouseAnyEvent {
			g.mouseMode = MouseOff
		}
	case 1006: // SGR extended coordinates
		g.mouseSGR = set
	case 1049, 47, 1047: // alternate screen (with/without cursor save)
		if set {
			g.enterAltScreen(code == 1049)
		} else {
			g.exitAltScreen(code == 1049)
		}
	case 2004:
		g.modeBracketedPaste = set
	}
}

func (g *Grid) setANSIMode(code int, set bool) {
	switch code {
	case 4: // IRM
		g.modeInsert = set
	case 20: // LNM, not modeled distinctly from LF handling
	}
}

// enterAltScreen swaps in a blank alternate buffer, stashing the
// primary screen's rows and cursor (§3 Grid: alt screen pair).
func (g *Grid) enterAltScreen(saveCursor bool) {
	if g.altSaved != nil {
		return
	}
	saved := &savedPrimary{
		linesAbove: g.linesAbove,
		viewport:   g.viewport,
	}
	if saveCursor {
		saved.cursor = g.cursor
	}
	g.altSaved = saved
	g.linesAbove = nil
	g.linesBelow = nil
	g.viewport = make([]Row, g.height)
	for i := range g.viewport {
		g.viewport[i] = NewRow(g.width)
	}
	if saveCursor {
		g.cursor = newCursor()
	}
	g.markAllDirty()
}

// exitAltScreen restores the primary screen saved by enterAltScreen.
func (g *Grid) exitAltScreen(restoreCursor bool) {
	if g.altSaved == nil {
		return
	}
	g.linesAbove = g.altSaved.linesAbove
	g.viewport = g.altSaved.viewport
	if restoreCursor {
		g.cursor = g.altSaved.cursor
	}
	g.altSaved = nil
	g.linesBelow = nil
	g.markAllDirty()
}

// fullReset implements ESC c (RIS): return the grid to its freshly
// constructed state, preserving only width/height.
func (g *Grid) fullReset() {
	width, height := g.width, g.height
	*g = *New(width, height)
	g.parser = NewParser(g)
}
