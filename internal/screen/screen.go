// Package screen is the top-level per-session router: it owns the
// tab collection, tracks which clients are attached, and composes the
// render frames sent back out. One Screen exists per server-side
// session, mirroring the teacher's session/manager split.
package screen

import (
	"errors"
	"os"
	"strconv"
	"sync"

	"github.com/weftterm/weft/internal/ids"
	"github.com/weftterm/weft/internal/layout"
	"github.com/weftterm/weft/internal/pane"
	"github.com/weftterm/weft/internal/protocol"
	"github.com/weftterm/weft/internal/tab"
	"github.com/weftterm/weft/internal/vt"
)

// SpawnFunc creates the pane backing a new split or tab: it starts
// whatever process/bridge the pane needs and returns a ready Pane.
// Screen is deliberately decoupled from ptybridge so tests can spawn
// fake panes.
type SpawnFunc func(id ids.PaneID, cols, rows int) *pane.Pane

var (
	ErrNoSuchTab    = errors.New("screen: no such tab")
	ErrNoSuchClient = errors.New("screen: no such client")
)

// Client is one attached weftctl connection. A session may have
// several clients attached at once; Mirrored clients all see the
// same focused tab/pane, while non-mirrored clients track their own
// focus independently (§3 Screen: mirrored vs non-mirrored clients).
type Client struct {
	ID       ids.ClientID
	Mirrored bool
	Cols     int
	Rows     int

	focusedTab int // index into Screen.tabs, meaningful only if !Mirrored
	history    []int
}

// maxTabHistory bounds a client's go-to-tab history (§3 Screen:
// tab_history).
const maxTabHistory = 64

// Screen coordinates every tab in one session and the clients
// attached to it.
type Screen struct {
	mu sync.Mutex

	name      string
	tabs      []*tab.Tab
	activeTab int // shared focus for mirrored clients
	clients   map[ids.ClientID]*Client
	sessionID ids.SessionID
	spawn     SpawnFunc
	cols, rows int

	pixelW, pixelH int // §3 Screen: pixel_size, set by update_pixel_dimensions
}

// New creates an empty screen for sessionID with a single default tab
// and no pane yet; call SetSpawnFunc before the first Dispatch that
// needs to create a pane.
func New(sessionID ids.SessionID) *Screen {
	s := &Screen{
		sessionID: sessionID,
		clients:   make(map[ids.ClientID]*Client),
	}
	s.tabs = append(s.tabs, tab.New("1"))
	return s
}

// Name returns the session's human-chosen name (distinct from its
// SessionID, the way `weftctl attach mysession` works by name).
func (s *Screen) Name() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.name
}

// SetName assigns the session's lookup name.
func (s *Screen) SetName(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.name = name
}

// SetSpawnFunc installs the pane-creation hook used by Dispatch for
// split/new-tab actions.
func (s *Screen) SetSpawnFunc(fn SpawnFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.spawn = fn
}

// EnsureFirstPane spawns the session's very first pane if the root
// tab doesn't have one yet.
func (s *Screen) EnsureFirstPane() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.spawn == nil || len(s.tabs) == 0 {
		return
	}
	root := s.tabs[0]
	if root.ActivePane() != nil {
		return
	}
	id := ids.NewPaneID(ids.PaneKindTerminal)
	cols, rows := s.cols, s.rows
	if cols == 0 {
		cols = 80
	}
	if rows == 0 {
		rows = 24
	}
	p := s.spawn(id, cols, rows)
	root.AddFirstPane(p)
}

// AttachClient registers a new client connection.
func (s *Screen) AttachClient(id ids.ClientID, mirrored bool, cols, rows int) *Client {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := &Client{ID: id, Mirrored: mirrored, Cols: cols, Rows: rows, focusedTab: s.activeTab}
	s.clients[id] = c
	return c
}

// DetachClient removes a client without affecting the session state.
func (s *Screen) DetachClient(id ids.ClientID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.clients, id)
}

// ClientCount reports how many clients are currently attached. The
// daemon does not consult it: a session stays open after its last
// client detaches.
func (s *Screen) ClientCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}

// focusedTabFor resolves which tab a client is currently looking at.
func (s *Screen) focusedTabFor(c *Client) *tab.Tab {
	idx := s.activeTab
	if !c.Mirrored {
		idx = c.focusedTab
	}
	if idx < 0 || idx >= len(s.tabs) {
		return nil
	}
	return s.tabs[idx]
}

// NewTab appends a new tab and makes it active for mirrored clients.
func (s *Screen) NewTab() *tab.Tab {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := tab.New(nextTabName(len(s.tabs)))
	s.tabs = append(s.tabs, t)
	s.activeTab = len(s.tabs) - 1
	return t
}

func nextTabName(count int) string {
	// 1-indexed names matching how a user counts tabs.
	const digits = "123456789"
	if count < len(digits) {
		return string(digits[count])
	}
	return "N"
}

// CloseTab removes the tab at idx, closing every pane inside it.
func (s *Screen) CloseTab(idx int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if idx < 0 || idx >= len(s.tabs) {
		return ErrNoSuchTab
	}
	t := s.tabs[idx]
	for t.ActivePane() != nil {
		p := t.ActivePane()
		t.ClosePane(p.ID)
	}
	s.tabs = append(s.tabs[:idx], s.tabs[idx+1:]...)
	if s.activeTab >= len(s.tabs) {
		s.activeTab = len(s.tabs) - 1
	}
	return nil
}

// GoToTab switches the given client's (or every mirrored client's)
// focus to tab idx.
func (s *Screen) GoToTab(c *Client, idx int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.goToTabLocked(c, idx)
}

func (s *Screen) goToTabLocked(c *Client, idx int) error {
	if idx < 0 || idx >= len(s.tabs) {
		return ErrNoSuchTab
	}
	if c != nil {
		s.pushHistory(c)
	}
	if c == nil || c.Mirrored {
		s.activeTab = idx
		return nil
	}
	c.focusedTab = idx
	return nil
}

// GoToTabName switches focus to the tab with the given name (§4.5
// Screen.go_to_tab_name).
func (s *Screen) GoToTabName(c *Client, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, t := range s.tabs {
		if t.Name == name {
			return s.goToTabLocked(c, i)
		}
	}
	return ErrNoSuchTab
}

// SwitchTabNext and SwitchTabPrev move the client's focus to the
// adjacent tab, wrapping around (§4.5 Screen.switch_tab_{next,prev}).
func (s *Screen) SwitchTabNext(c *Client) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.tabs) == 0 {
		return ErrNoSuchTab
	}
	idx := (s.clientTabIndexLocked(c) + 1) % len(s.tabs)
	return s.goToTabLocked(c, idx)
}

func (s *Screen) SwitchTabPrev(c *Client) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.tabs) == 0 {
		return ErrNoSuchTab
	}
	idx := (s.clientTabIndexLocked(c) - 1 + len(s.tabs)) % len(s.tabs)
	return s.goToTabLocked(c, idx)
}

// ToggleTab returns the client to the previously-focused tab in its
// own history, swapping it with the current one so repeated toggling
// flips back and forth (§4.5 Screen.toggle_tab).
func (s *Screen) ToggleTab(c *Client) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c == nil || len(c.history) == 0 {
		return ErrNoSuchTab
	}
	cur := s.clientTabIndexLocked(c)
	prev := c.history[len(c.history)-1]
	c.history[len(c.history)-1] = cur
	if c.Mirrored {
		s.activeTab = prev
		return nil
	}
	c.focusedTab = prev
	return nil
}

func (s *Screen) clientTabIndexLocked(c *Client) int {
	if c == nil || c.Mirrored {
		return s.activeTab
	}
	return c.focusedTab
}

func (s *Screen) pushHistory(c *Client) {
	c.history = append(c.history, s.clientTabIndexLocked(c))
	if len(c.history) > maxTabHistory {
		c.history = c.history[len(c.history)-maxTabHistory:]
	}
}

// UpdatePixelDimensions records the client viewport's pixel size,
// alongside the cell size tracked by Resize (§3 Screen: pixel_size,
// §4.5 Screen.update_pixel_dimensions).
func (s *Screen) UpdatePixelDimensions(pixelW, pixelH int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pixelW, s.pixelH = pixelW, pixelH
}

// PixelSize returns the last pixel dimensions reported via
// UpdatePixelDimensions.
func (s *Screen) PixelSize() (w, h int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pixelW, s.pixelH
}

// DumpScreen writes the client's focused pane to path as UTF-8 plain
// text, optionally including scrollback (§4.5 Screen.dump_screen,
// §6 "Persistent state": scrollback dumps).
func (s *Screen) DumpScreen(c *Client, path string, includeScrollback bool) error {
	s.mu.Lock()
	var text string
	if t := s.focusedTabFor(c); t != nil {
		if active := t.ActivePane(); active != nil {
			text = active.Grid.DumpText(includeScrollback)
		}
	}
	s.mu.Unlock()
	return os.WriteFile(path, []byte(text), 0o644)
}

// ActiveTab returns the tab the given client is focused on.
func (s *Screen) ActiveTab(c *Client) *tab.Tab {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.focusedTabFor(c)
}

// Resize applies a new terminal size: every tab is reflowed to the
// client's viewport, minus one row reserved for the tab/status bar
// (§3 LayoutEngine: resize).
func (s *Screen) Resize(cols, rows int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cols, s.rows = cols, rows
	usable := rows - 1
	if usable < 1 {
		usable = 1
	}
	for _, t := range s.tabs {
		t.Resize(layout.Rect{X: 0, Y: 0, W: cols, H: usable})
	}
}

// Dispatch executes a named action on behalf of client (split-right,
// split-down, close-pane, new-tab, next-tab, prev-tab, go-to-tab-name,
// switch-tab-next/prev, toggle-tab, toggle-fullscreen,
// next-swap-layout, toggle-sync-input, resize-left/right/up/down,
// move-focus-left/right/up/down, cycle-focus-next/prev,
// toggle-pane-embed-or-floating, toggle-floating-panes,
// update-pixel-dimensions, dump-screen). Unknown actions are ignored,
// matching how real terminals behave toward unrecognized control
// sequences.
func (s *Screen) Dispatch(c *Client, name string, args []string) {
	s.mu.Lock()

	t := s.focusedTabFor(c)
	switch name {
	case "split-right", "split-down":
		if t == nil || s.spawn == nil {
			break
		}
		dir := layout.Vertical
		if name == "split-down" {
			dir = layout.Horizontal
		}
		id := ids.NewPaneID(ids.PaneKindTerminal)
		p := s.spawn(id, 1, 1) // sized correctly by the Resize that follows Reflow
		if _, err := t.SplitActive(dir, p); err == nil {
			t.Resize(t.Rect())
		}
	case "close-pane":
		if t == nil {
			break
		}
		if active := t.ActivePane(); active != nil {
			t.ClosePane(active.ID)
		}
	case "new-tab":
		nt := tab.New(nextTabName(len(s.tabs)))
		s.tabs = append(s.tabs, nt)
		s.activeTab = len(s.tabs) - 1
		if s.spawn != nil {
			id := ids.NewPaneID(ids.PaneKindTerminal)
			p := s.spawn(id, s.cols, s.rows-1)
			nt.AddFirstPane(p)
			nt.Resize(layout.Rect{X: 0, Y: 0, W: s.cols, H: s.rows - 1})
		}
	case "next-tab":
		idx := (s.clientTabIndexLocked(c) + 1) % maxInt(len(s.tabs), 1)
		s.goToTabLockedIgnoringErr(c, idx)
	case "prev-tab":
		idx := (s.clientTabIndexLocked(c) - 1 + len(s.tabs)) % maxInt(len(s.tabs), 1)
		s.goToTabLockedIgnoringErr(c, idx)
	case "go-to-tab-name":
		if len(args) > 0 {
			for i, ct := range s.tabs {
				if ct.Name == args[0] {
					s.goToTabLockedIgnoringErr(c, i)
					break
				}
			}
		}
	case "switch-tab-next":
		idx := (s.clientTabIndexLocked(c) + 1) % maxInt(len(s.tabs), 1)
		s.goToTabLockedIgnoringErr(c, idx)
	case "switch-tab-prev":
		idx := (s.clientTabIndexLocked(c) - 1 + len(s.tabs)) % maxInt(len(s.tabs), 1)
		s.goToTabLockedIgnoringErr(c, idx)
	case "toggle-tab":
		if c != nil && len(c.history) > 0 {
			cur := s.clientTabIndexLocked(c)
			prev := c.history[len(c.history)-1]
			c.history[len(c.history)-1] = cur
			if c.Mirrored {
				s.activeTab = prev
			} else {
				c.focusedTab = prev
			}
		}
	case "toggle-fullscreen":
		if t != nil {
			t.ToggleFullscreen()
		}
	case "next-swap-layout":
		if t != nil {
			t.NextSwapLayout()
		}
	case "toggle-sync-input":
		if t != nil {
			t.SetSyncInput(!t.SyncInput())
		}
	case "resize-left", "resize-right", "resize-up", "resize-down":
		if t != nil {
			t.ResizeDirection(dispatchDirection(name), layout.ResizePercent)
		}
	case "move-focus-left", "move-focus-right", "move-focus-up", "move-focus-down":
		if t != nil {
			t.MoveFocus(dispatchDirection(name))
		}
	case "cycle-focus-next":
		if t != nil {
			t.CycleFocusNext()
		}
	case "cycle-focus-prev":
		if t != nil {
			t.CycleFocusPrevious()
		}
	case "toggle-pane-embed-or-floating":
		if t != nil {
			t.TogglePaneEmbedOrFloating()
		}
	case "toggle-floating-panes":
		if t != nil {
			t.ToggleFloatingPanes()
		}
	case "update-pixel-dimensions":
		if len(args) >= 2 {
			w, errW := strconv.Atoi(args[0])
			h, errH := strconv.Atoi(args[1])
			if errW == nil && errH == nil {
				s.pixelW, s.pixelH = w, h
			}
		}
	case "dump-screen":
		if len(args) >= 1 && t != nil {
			includeScrollback := len(args) >= 2 && args[1] == "true"
			if active := t.ActivePane(); active != nil {
				text := active.Grid.DumpText(includeScrollback)
				path := args[0]
				s.mu.Unlock()
				_ = os.WriteFile(path, []byte(text), 0o644)
				s.mu.Lock()
			}
		}
	}
	s.mu.Unlock()
}

// goToTabLockedIgnoringErr is goToTabLocked without the out-of-range
// error, for Dispatch's already-clamped indices.
func (s *Screen) goToTabLockedIgnoringErr(c *Client, idx int) {
	_ = s.goToTabLocked(c, idx)
}

func dispatchDirection(action string) layout.Direction {
	switch action {
	case "resize-right", "move-focus-right":
		return layout.DirRight
	case "resize-up", "move-focus-up":
		return layout.DirUp
	case "resize-down", "move-focus-down":
		return layout.DirDown
	default:
		return layout.DirLeft
	}
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// WriteInputToFocus delivers input to the client's focused tab/pane.
func (s *Screen) WriteInputToFocus(c *Client, data []byte) error {
	s.mu.Lock()
	t := s.focusedTabFor(c)
	s.mu.Unlock()
	if t == nil {
		return ErrNoSuchTab
	}
	return t.WriteInput(data)
}

// RenderFrame builds a Render message describing every dirty chunk
// across every pane of the client's focused tab, plus that tab's
// cursor (§4.2: OutputBuffer -> diff -> wire).
func (s *Screen) RenderFrame(c *Client) protocol.Render {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := s.focusedTabFor(c)
	if t == nil {
		return protocol.Render{}
	}

	var render protocol.Render
	for _, p := range t.Panes() {
		for _, chunk := range p.Grid.ReadChanges() {
			render.Chunks = append(render.Chunks, toRenderChunk(p.ID, chunk))
		}
	}

	active := t.ActivePane()
	if active != nil {
		if x, y, ok := active.Grid.CursorCoordinates(); ok {
			id := active.ID
			render.CursorPaneID = idBytes(id)
			render.CursorX = int32(x)
			render.CursorY = int32(y)
			render.CursorVisible = true
		}
	}
	return render
}

func toRenderChunk(id ids.PaneID, c vt.Chunk) protocol.RenderChunk {
	cells := make([]protocol.RenderCell, len(c.Cells))
	for i, cell := range c.Cells {
		cells[i] = protocol.RenderCell{
			Rune:    cell.Rune,
			Width:   cell.Width,
			FgMode:  uint8(cell.Fg.Mode),
			FgValue: cell.Fg.Value,
			FgR:     cell.Fg.R,
			FgG:     cell.Fg.G,
			FgB:     cell.Fg.B,
			BgMode:  uint8(cell.Bg.Mode),
			BgValue: cell.Bg.Value,
			BgR:     cell.Bg.R,
			BgG:     cell.Bg.G,
			BgB:     cell.Bg.B,
			Flags:   uint16(cell.Flags),
		}
	}
	return protocol.RenderChunk{
		PaneID: idBytes(id),
		X:      int32(c.X),
		Y:      int32(c.Y),
		Cells:  cells,
	}
}

func idBytes(id ids.PaneID) [16]byte {
	var b [16]byte
	copy(b[:], id.UUID[:])
	return b
}
