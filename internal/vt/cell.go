// Package vt implements the VT (virtual terminal) grid: the
// parser/state machine that interprets ANSI/VT control sequences
// emitted by child processes and maintains an authoritative cell
// grid with scrollback, alternate screen, selection, and SGR state.
package vt

// ColorMode selects which fields of a Color are meaningful.
type ColorMode uint8

const (
	ColorDefault ColorMode = iota
	ColorStandard
	Color256
	ColorRGB
)

// Color represents a cell foreground/background color in one of the
// four modes a real terminal needs to distinguish.
type Color struct {
	Mode    ColorMode
	Value   uint8 // palette index for ColorStandard (0-15) and Color256 (0-255)
	R, G, B uint8 // ColorRGB components
}

// DefaultColor is the "use the pane's configured default" color.
var DefaultColor = Color{Mode: ColorDefault}

// Flags is a bitmask of SGR-derived cell attributes.
type Flags uint16

const (
	FlagBold Flags = 1 << iota
	FlagDim
	FlagItalic
	FlagUnderline
	FlagDoubleUnderline
	FlagStrike
	FlagReverse
	FlagBlink
	FlagHidden
	// FlagWide marks the first cell of a two-column wide character.
	FlagWide
	// FlagWideContinuation marks the second, zero-width cell occupied
	// by a wide character (§4.1 printing algorithm step 3).
	FlagWideContinuation
)

// Cell is a single display position: a codepoint, its display width,
// and its style. The empty cell is a space with default styles.
type Cell struct {
	Rune        rune
	Width       uint8
	Fg, Bg      Color
	UnderlineFg Color
	Flags       Flags
	HyperlinkID uint32
}

// EmptyCell returns the default cell: a space with default styles.
func EmptyCell() Cell {
	return Cell{Rune: ' ', Width: 1, Fg: DefaultColor, Bg: DefaultColor}
}

// HasFlag reports whether the given flag bit is set.
func (c Cell) HasFlag(f Flags) bool { return c.Flags&f != 0 }

// IsWideContinuation reports whether this cell is the zero-width
// marker occupying the second column of a wide character.
func (c Cell) IsWideContinuation() bool { return c.HasFlag(FlagWideContinuation) }

// IsEmpty reports whether the cell is a default space, for trailing
// trim decisions (Row's is-canonical invariant, §3 Row).
func (c Cell) IsEmpty() bool {
	return c.Rune == ' ' && c.Flags == 0 && c.Fg == DefaultColor && c.Bg == DefaultColor
}
