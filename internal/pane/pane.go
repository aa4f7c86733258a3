// Package pane adapts a VT grid and its backing process to the shape
// the tiling engine needs: keystroke translation, paste bracketing,
// mouse passthrough, and a composed display title.
package pane

import (
	"fmt"

	"github.com/weftterm/weft/internal/ids"
	"github.com/weftterm/weft/internal/logging"
	"github.com/weftterm/weft/internal/vt"
)

// Bridge is the process side of a pane: something that accepts bytes
// to write to a child's stdin and can be resized/killed. Implemented
// by ptybridge.OsBridge for terminal panes; plugin panes implement it
// directly against an in-process runtime.
type Bridge interface {
	Write(p []byte) (int, error)
	SetSize(cols, rows int) error
	Kill() error
}

// TitleSource is implemented by apps that want to override the
// composed display title (feature-detected the way texel's App
// interfaces are, via a type assertion rather than a required method).
type TitleSource interface {
	Title() string
}

// Pane couples a VT grid to its process bridge and exposes the
// operations the layout/tab layer needs: input delivery, resize,
// rendered changes, and a display title.
type Pane struct {
	ID     ids.PaneID
	Grid   *vt.Grid
	Bridge Bridge

	staticTitle string // set via SetStaticTitle, e.g. the launch command
	IsActive    bool
}

// New creates a pane of the given size backed by bridge. bridge may be
// nil for a pane that is still starting up; Write becomes a no-op
// until SetBridge is called.
func New(id ids.PaneID, cols, rows int, bridge Bridge) *Pane {
	return &Pane{
		ID:     id,
		Grid:   vt.New(cols, rows),
		Bridge: bridge,
	}
}

// SetBridge attaches the process bridge once the child has started.
func (p *Pane) SetBridge(b Bridge) { p.Bridge = b }

// SetStaticTitle records a fallback title (e.g. the command line used
// to launch the pane) used when the child never sets one via OSC.
func (p *Pane) SetStaticTitle(title string) { p.staticTitle = title }

// DisplayTitle composes the title shown in a tab/pane chrome: the
// grid's OSC-set title takes precedence, falling back to the static
// launch title, and finally the pane's ID.
func (p *Pane) DisplayTitle() string {
	if t := p.Grid.Title(); t != "" {
		return t
	}
	if p.staticTitle != "" {
		return p.staticTitle
	}
	return p.ID.String()
}

// Feed advances the grid with bytes read from the child process.
func (p *Pane) Feed(data []byte) {
	p.Grid.Advance(data)
}

// Resize propagates a new size to both the grid and the OS-level
// bridge so SIGWINCH reaches the child.
func (p *Pane) Resize(cols, rows int) error {
	p.Grid.Resize(cols, rows)
	if p.Bridge == nil {
		return nil
	}
	return p.Bridge.SetSize(cols, rows)
}

// WriteInput writes data to the bridge unchanged. The grid's mode
// state is applied by the callers that need it: TranslateCursorKey
// for application cursor keys (DECCKM) and WritePaste for bracketed
// paste (§3 Grid: mode_cursor_keys, mode_bracketed_paste).
func (p *Pane) WriteInput(data []byte) error {
	if p.Bridge == nil {
		logging.L.Printf("pane %s: write with no attached bridge, dropping %d bytes", p.ID, len(data))
		return nil
	}
	_, err := p.Bridge.Write(data)
	return err
}

// WritePaste wraps data in bracketed-paste markers when the
// application has requested them (CSI ?2004h).
func (p *Pane) WritePaste(data []byte) error {
	if !p.Grid.BracketedPasteEnabled() {
		return p.WriteInput(data)
	}
	const start = "\x1b[200~"
	const end = "\x1b[201~"
	buf := make([]byte, 0, len(start)+len(data)+len(end))
	buf = append(buf, start...)
	buf = append(buf, data...)
	buf = append(buf, end...)
	return p.WriteInput(buf)
}

// TranslateCursorKey maps an arrow/Home/End keypress to the ANSI
// cursor sequence (CSI) or the application sequence (SS3) depending
// on DECCKM. dir is one of 'A','B','C','D' (up/down/right/left),
// 'H' (home), or 'F' (end).
func (p *Pane) TranslateCursorKey(dir byte) []byte {
	if p.Grid.CursorKeysMode() {
		return []byte{0x1b, 'O', dir}
	}
	return []byte{0x1b, '[', dir}
}

// MouseEvent is a raw mouse action relayed from the client's attached
// terminal, in pane-relative 1-based coordinates.
type MouseEvent struct {
	Button             int // 0=left, 1=middle, 2=right
	X, Y               int // 1-based column/row within the pane
	Pressed            bool
	Motion             bool // a drag/move rather than a button transition
	WheelUp, WheelDown bool
}

// TranslateMouseEvent encodes ev as the CSI sequence the child expects
// under the grid's active mouse-reporting mode (1000 click-only, 1002
// click+drag, 1003 any-motion; 1006 selects SGR extended coordinates
// over the legacy byte-offset encoding), or ok=false if the grid isn't
// tracking the kind of event ev represents (§6 "mouse mode bits").
func (p *Pane) TranslateMouseEvent(ev MouseEvent) (data []byte, ok bool) {
	mode := p.Grid.MouseMode()
	switch {
	case mode == vt.MouseOff:
		return nil, false
	case ev.Motion && mode == vt.MouseX10:
		return nil, false
	case ev.Motion && !ev.Pressed && mode == vt.MouseButtonEvent:
		return nil, false
	}

	release := !ev.Pressed && !ev.Motion && !ev.WheelUp && !ev.WheelDown
	cb := ev.Button
	switch {
	case ev.WheelUp:
		cb = 64
	case ev.WheelDown:
		cb = 65
	case release:
		cb = 3
	}
	if ev.Motion {
		cb |= 32
	}

	if p.Grid.MouseSGR() {
		final := byte('M')
		if release {
			final = 'm'
		}
		return []byte(fmt.Sprintf("\x1b[<%d;%d;%d%c", cb, ev.X, ev.Y, final)), true
	}
	return []byte{0x1b, '[', 'M', byte(32 + cb), byte(32 + ev.X), byte(32 + ev.Y)}, true
}

// Close releases the process bridge, if any.
func (p *Pane) Close() error {
	if p.Bridge == nil {
		return nil
	}
	return p.Bridge.Kill()
}
