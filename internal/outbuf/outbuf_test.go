package outbuf

import "testing"

func TestNewIsRedrawAll(t *testing.T) {
	b := New()
	if !b.IsRedrawAll() {
		t.Fatalf("new buffer should start as redraw-all")
	}
	lines := b.DirtyLines(5)
	if len(lines) != 5 {
		t.Fatalf("expected 5 dirty lines, got %d", len(lines))
	}
	if b.IsRedrawAll() {
		t.Fatalf("redraw-all flag should clear after read")
	}
}

func TestUpdateLineTracksIndividualLines(t *testing.T) {
	b := New()
	b.DirtyLines(5) // drain initial redraw-all

	b.UpdateLine(2)
	b.UpdateLine(4)
	b.UpdateLine(2) // duplicate, should not double-count

	lines := b.DirtyLines(10)
	if len(lines) != 2 || lines[0] != 2 || lines[1] != 4 {
		t.Fatalf("expected [2 4], got %v", lines)
	}
}

func TestReadIsIdempotent(t *testing.T) {
	b := New()
	b.DirtyLines(5)
	b.UpdateLine(1)
	first := b.DirtyLines(5)
	if len(first) != 1 {
		t.Fatalf("expected one dirty line, got %v", first)
	}
	second := b.DirtyLines(5)
	if len(second) != 0 {
		t.Fatalf("expected no dirty lines on immediate re-read, got %v", second)
	}
}

func TestUpdateAllLinesOverridesIndividualSet(t *testing.T) {
	b := New()
	b.DirtyLines(5)
	b.UpdateLine(1)
	b.UpdateAllLines()
	lines := b.DirtyLines(3)
	if len(lines) != 3 {
		t.Fatalf("expected full redraw of 3 lines, got %v", lines)
	}
}

func TestDirtyLinesOutOfRangeDropped(t *testing.T) {
	b := New()
	b.DirtyLines(5)
	b.UpdateLine(100)
	lines := b.DirtyLines(5)
	if len(lines) != 0 {
		t.Fatalf("expected out-of-range index to be dropped, got %v", lines)
	}
}
