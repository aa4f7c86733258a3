package vt

// CursorShape selects how the cursor renders (DECSCUSR, CSI q).
type CursorShape uint8

const (
	CursorBlock CursorShape = iota
	CursorUnderline
	CursorBar
)

// Charset selects which character set slot (G0-G3) is active and what
// it maps to; only ASCII and the DEC line-drawing set are modeled,
// which is what every ESC `(`/`)` sequence in practice configures.
type Charset uint8

const (
	CharsetASCII Charset = iota
	CharsetLineDrawing
)

// Cursor is the grid's cursor state (§3 Grid: cursor field).
type Cursor struct {
	X, Y          int
	Shape         CursorShape
	Hidden        bool
	Blinking      bool
	PendingStyle  Cell // template applied to the next printed character
	Charsets      [4]Charset
	ActiveCharset int // index into Charsets, 0-3 (G0-G3)
}

func newCursor() Cursor {
	return Cursor{PendingStyle: EmptyCell()}
}

// translateCharset maps r through the active charset (DEC line
// drawing remaps the ASCII range 0x60-0x7e to box-drawing glyphs).
func (c *Cursor) translateCharset(r rune) rune {
	if c.Charsets[c.ActiveCharset] != CharsetLineDrawing {
		return r
	}
	if glyph, ok := lineDrawingMap[r]; ok {
		return glyph
	}
	return r
}

// lineDrawingMap is the DEC Special Graphics character set mapping
// for the ASCII range it remaps.
var lineDrawingMap = map[rune]rune{
	'`': '◆', 'a': '▒', 'b': '␉', 'c': '␌', 'd': '␍', 'e': '␊',
	'f': '°', 'g': '±', 'h': '␤', 'i': '␋', 'j': '┘', 'k': '┐',
	'l': '┌', 'm': '└', 'n': '┼', 'o': '⎺', 'p': '⎻', 'q': '─',
	'r': '⎼', 's': '⎽', 't': '├', 'u': '┤', 'v': '┴', 'w': '┬',
	'x': '│', 'y': '≤', 'z': '≥', '{': 'π', '|': '≠', '}': '£', '~': '·',
}
