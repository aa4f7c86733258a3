package vt

import "testing"

func cellAt(g *Grid, x, y int) Cell { return g.viewport[y].Cells[x] }

func TestPrintAdvancesCursor(t *testing.T) {
	g := New(10, 3)
	g.Advance([]byte("hi"))
	if g.cursor.X != 2 || g.cursor.Y != 0 {
		t.Fatalf("expected cursor at (2,0), got (%d,%d)", g.cursor.X, g.cursor.Y)
	}
	if cellAt(g, 0, 0).Rune != 'h' || cellAt(g, 1, 0).Rune != 'i' {
		t.Fatalf("unexpected cell contents")
	}
}

func TestAutoWrapMarksContinuationRow(t *testing.T) {
	g := New(4, 3)
	g.Advance([]byte("abcde"))
	if g.cursor.Y != 1 || g.cursor.X != 1 {
		t.Fatalf("expected wrap to (1,1), got (%d,%d)", g.cursor.X, g.cursor.Y)
	}
	if g.viewport[1].Canonical {
		t.Fatalf("wrapped row should not be canonical")
	}
	if g.viewport[0].Canonical == false {
		t.Fatalf("first row should remain canonical")
	}
}

func TestNewlineScrollsAtBottomPushingScrollback(t *testing.T) {
	g := New(5, 2)
	g.Advance([]byte("one\r\ntwo\r\nthree"))
	if g.ScrollbackLen() != 1 {
		t.Fatalf("expected 1 scrollback line, got %d", g.ScrollbackLen())
	}
	if cellAt(g, 0, 0).Rune != 't' { // "two" now on top row
		t.Fatalf("expected top row to start with 't', got %q", cellAt(g, 0, 0).Rune)
	}
}

func TestScrollRegionConfinesScrollNoScrollback(t *testing.T) {
	g := New(5, 5)
	g.Advance([]byte("\x1b[2;4r")) // region rows 2-4 (1-indexed)
	for i := 0; i < 10; i++ {
		g.Advance([]byte("\r\n"))
	}
	if g.ScrollbackLen() != 0 {
		t.Fatalf("scrolling within a restricted region must not touch scrollback, got %d", g.ScrollbackLen())
	}
}

func TestCSICursorPosition(t *testing.T) {
	g := New(80, 24)
	g.Advance([]byte("\x1b[5;10H"))
	if g.cursor.Y != 4 || g.cursor.X != 9 {
		t.Fatalf("expected (9,4), got (%d,%d)", g.cursor.X, g.cursor.Y)
	}
}

func TestSGRColorsApplyToPendingStyle(t *testing.T) {
	g := New(10, 2)
	g.Advance([]byte("\x1b[31;1mX"))
	c := cellAt(g, 0, 0)
	if c.Fg.Mode != ColorStandard || c.Fg.Value != 1 {
		t.Fatalf("expected red fg, got %+v", c.Fg)
	}
	if !c.HasFlag(FlagBold) {
		t.Fatalf("expected bold flag set")
	}
}

func TestSGRResetClearsStyle(t *testing.T) {
	g := New(10, 2)
	g.Advance([]byte("\x1b[31mA\x1b[0mB"))
	if cellAt(g, 0, 0).Fg.Mode != ColorStandard {
		t.Fatalf("first cell should be red")
	}
	if cellAt(g, 1, 0).Fg.Mode != ColorDefault {
		t.Fatalf("second cell should be default after SGR reset")
	}
}

func TestEraseInLine(t *testing.T) {
	g := New(5, 1)
	g.Advance([]byte("hello\x1b[0G\x1b[K"))
	for x := 0; x < 5; x++ {
		if !cellAt(g, x, 0).IsEmpty() {
			t.Fatalf("expected line cleared at x=%d", x)
		}
	}
}

func TestAlternateScreenRestoresPrimary(t *testing.T) {
	g := New(5, 2)
	g.Advance([]byte("hi"))
	g.Advance([]byte("\x1b[?1049h"))
	if !g.InAlternateScreen() {
		t.Fatalf("expected alternate screen active")
	}
	g.Advance([]byte("alt"))
	g.Advance([]byte("\x1b[?1049l"))
	if g.InAlternateScreen() {
		t.Fatalf("expected primary screen restored")
	}
	if cellAt(g, 0, 0).Rune != 'h' {
		t.Fatalf("expected primary content restored, got %q", cellAt(g, 0, 0).Rune)
	}
}

func TestReadChangesIdempotent(t *testing.T) {
	g := New(5, 2)
	g.Advance([]byte("x"))
	first := g.ReadChanges()
	if len(first) == 0 {
		t.Fatalf("expected dirty chunks after print")
	}
	second := g.ReadChanges()
	if len(second) != 0 {
		t.Fatalf("expected no dirty chunks on immediate re-read, got %d", len(second))
	}
}

func TestResizeNarrowerRewrapsWithoutDataLoss(t *testing.T) {
	g := New(10, 3)
	g.Advance([]byte("hello"))
	g.Resize(3, 3)
	if g.Width() != 3 {
		t.Fatalf("expected width 3, got %d", g.Width())
	}
	if len(g.viewport[0].Cells) != 3 {
		t.Fatalf("expected row width 3, got %d", len(g.viewport[0].Cells))
	}
	row0 := string(runesOf(g.viewport[0]))
	row1 := string(runesOf(g.viewport[1]))
	if row0 != "hel" || row1 != "lo " {
		t.Fatalf("expected rewrap to split %q across rows without loss, got %q / %q", "hello", row0, row1)
	}
	if g.viewport[0].Canonical == false {
		t.Fatalf("first split of a logical line must remain canonical")
	}
	if g.viewport[1].Canonical {
		t.Fatalf("second split of a logical line must be a continuation")
	}
}

func TestResizeRoundTripRestoresCursor(t *testing.T) {
	g := New(10, 3)
	g.Advance([]byte("hello"))
	g.Resize(3, 3)
	g.Resize(10, 3)
	if g.cursor.Y != 0 || g.cursor.X != 5 {
		t.Fatalf("expected cursor restored to (5,0), got (%d,%d)", g.cursor.X, g.cursor.Y)
	}
}

func runesOf(r Row) []rune {
	out := make([]rune, len(r.Cells))
	for i, c := range r.Cells {
		out[i] = c.Rune
	}
	return out
}

func TestResizeShorterPushesScrollback(t *testing.T) {
	g := New(5, 3)
	g.Advance([]byte("a\r\nb\r\nc"))
	g.Resize(5, 1)
	if g.ScrollbackLen() == 0 {
		t.Fatalf("expected shrinking height to push rows into scrollback")
	}
}

func TestDECSCUSRSetsCursorShape(t *testing.T) {
	g := New(5, 2)
	g.Advance([]byte("\x1b[3 q"))
	if g.cursor.Shape != CursorUnderline || !g.cursor.Blinking {
		t.Fatalf("expected blinking underline cursor, got shape=%v blink=%v", g.cursor.Shape, g.cursor.Blinking)
	}
}

func TestSelectionTextTrimsTrailingSpace(t *testing.T) {
	g := New(10, 2)
	g.Advance([]byte("hi"))
	g.StartSelection(Position{Line: 0, Col: 0})
	g.EndSelection(&Position{Line: 0, Col: 9})
	text, ok := g.GetSelectedText()
	if !ok || text != "hi" {
		t.Fatalf("expected %q, got %q (ok=%v)", "hi", text, ok)
	}
}

func TestDECSTBMDefaultsAndClearsOnInvalid(t *testing.T) {
	g := New(5, 5)
	g.Advance([]byte("\x1b[2;4r"))
	if g.scrollRegion == nil || g.scrollRegion.Top != 1 || g.scrollRegion.Bottom != 3 {
		t.Fatalf("expected region [1,3], got %+v", g.scrollRegion)
	}
	g.Advance([]byte("\x1b[4;2r")) // invalid: top >= bottom
	if g.scrollRegion != nil {
		t.Fatalf("expected invalid region request to clear scroll region")
	}
}

func TestMouseModeTracksDECSETAndReset(t *testing.T) {
	g := New(10, 3)
	if g.MouseMode() != MouseOff {
		t.Fatalf("expected no mouse mode by default")
	}
	g.Advance([]byte("\x1b[?1002h"))
	if g.MouseMode() != MouseButtonEvent {
		t.Fatalf("expected button-event mode after CSI ?1002h, got %v", g.MouseMode())
	}
	g.Advance([]byte("\x1b[?1002l"))
	if g.MouseMode() != MouseOff {
		t.Fatalf("expected mouse mode cleared after CSI ?1002l")
	}
}

func TestMouseSGRMode(t *testing.T) {
	g := New(10, 3)
	if g.MouseSGR() {
		t.Fatalf("expected SGR mode off by default")
	}
	g.Advance([]byte("\x1b[?1006h"))
	if !g.MouseSGR() {
		t.Fatalf("expected SGR mode on after CSI ?1006h")
	}
}

func TestDumpTextViewportOnly(t *testing.T) {
	g := New(5, 2)
	g.Advance([]byte("hi\r\nyo"))
	text := g.DumpText(false)
	if text != "hi\nyo\n" {
		t.Fatalf("expected %q, got %q", "hi\nyo\n", text)
	}
}

func TestDumpTextIncludesScrollback(t *testing.T) {
	g := New(5, 1)
	g.Advance([]byte("a\r\nb\r\nc"))
	text := g.DumpText(true)
	if text != "a\nb\nc\n" {
		t.Fatalf("expected scrollback + viewport, got %q", text)
	}
}
