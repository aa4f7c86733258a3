package pane

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weftterm/weft/internal/ids"
)

type fakeBridge struct {
	written []byte
	size    [2]int
	killed  bool
}

func (f *fakeBridge) Write(p []byte) (int, error) {
	f.written = append(f.written, p...)
	return len(p), nil
}

func (f *fakeBridge) SetSize(cols, rows int) error {
	f.size = [2]int{cols, rows}
	return nil
}

func (f *fakeBridge) Kill() error {
	f.killed = true
	return nil
}

func newTestPane(t *testing.T) (*Pane, *fakeBridge) {
	t.Helper()
	b := &fakeBridge{}
	p := New(ids.NewPaneID(ids.PaneKindTerminal), 80, 24, b)
	return p, b
}

func TestDisplayTitlePrecedence(t *testing.T) {
	p, _ := newTestPane(t)

	assert.Equal(t, p.ID.String(), p.DisplayTitle(), "falls back to the pane ID with nothing else set")

	p.SetStaticTitle("bash")
	assert.Equal(t, "bash", p.DisplayTitle())

	p.Feed([]byte("\x1b]0;vim\x07"))
	assert.Equal(t, "vim", p.DisplayTitle(), "an OSC-set title takes precedence over the static one")
}

func TestWriteInputWithNoBridgeDropsSilently(t *testing.T) {
	p := New(ids.NewPaneID(ids.PaneKindTerminal), 80, 24, nil)
	require.NoError(t, p.WriteInput([]byte("hello")))
}

func TestWritePasteBracketsWhenEnabled(t *testing.T) {
	p, b := newTestPane(t)

	require.NoError(t, p.WritePaste([]byte("pasted")))
	assert.Equal(t, "pasted", string(b.written), "no bracketing until the app opts in")

	b.written = nil
	p.Feed([]byte("\x1b[?2004h"))
	require.NoError(t, p.WritePaste([]byte("pasted")))
	assert.Equal(t, "\x1b[200~pasted\x1b[201~", string(b.written))
}

func TestTranslateCursorKeyFollowsDECCKM(t *testing.T) {
	p, _ := newTestPane(t)

	assert.Equal(t, []byte{0x1b, '[', 'A'}, p.TranslateCursorKey('A'))

	p.Feed([]byte("\x1b[?1h"))
	assert.Equal(t, []byte{0x1b, 'O', 'A'}, p.TranslateCursorKey('A'), "DECCKM switches cursor keys to application mode")
}

func TestResizePropagatesToBridge(t *testing.T) {
	p, b := newTestPane(t)

	require.NoError(t, p.Resize(100, 40))
	assert.Equal(t, [2]int{100, 40}, b.size)
	assert.Equal(t, 100, p.Grid.Width())
	assert.Equal(t, 40, p.Grid.Height())
}

func TestCloseKillsBridge(t *testing.T) {
	p, b := newTestPane(t)
	require.NoError(t, p.Close())
	assert.True(t, b.killed)
}

func TestTranslateMouseEventDroppedWithoutTrackingMode(t *testing.T) {
	p, _ := newTestPane(t)

	_, ok := p.TranslateMouseEvent(MouseEvent{Button: 0, X: 1, Y: 1, Pressed: true})
	assert.False(t, ok, "no mouse mode enabled yet")
}

func TestTranslateMouseEventX10Encoding(t *testing.T) {
	p, _ := newTestPane(t)
	p.Feed([]byte("\x1b[?1000h"))

	data, ok := p.TranslateMouseEvent(MouseEvent{Button: 0, X: 5, Y: 3, Pressed: true})
	require.True(t, ok)
	assert.Equal(t, []byte{0x1b, '[', 'M', byte(32 + 0), byte(32 + 5), byte(32 + 3)}, data)

	// X10 mode doesn't report motion.
	_, ok = p.TranslateMouseEvent(MouseEvent{Button: 0, X: 5, Y: 3, Pressed: true, Motion: true})
	assert.False(t, ok)
}

func TestTranslateMouseEventSGREncoding(t *testing.T) {
	p, _ := newTestPane(t)
	p.Feed([]byte("\x1b[?1000h\x1b[?1006h"))

	data, ok := p.TranslateMouseEvent(MouseEvent{Button: 2, X: 10, Y: 4, Pressed: true})
	require.True(t, ok)
	assert.Equal(t, "\x1b[<2;10;4M", string(data))

	data, ok = p.TranslateMouseEvent(MouseEvent{X: 10, Y: 4})
	require.True(t, ok)
	assert.Equal(t, "\x1b[<3;10;4m", string(data), "release reports button code 3")
}

func TestTranslateMouseEventButtonModeAllowsDragOnly(t *testing.T) {
	p, _ := newTestPane(t)
	p.Feed([]byte("\x1b[?1002h"))

	_, ok := p.TranslateMouseEvent(MouseEvent{X: 1, Y: 1, Motion: true, Pressed: true})
	assert.True(t, ok, "1002 reports motion while a button is held")

	_, ok = p.TranslateMouseEvent(MouseEvent{X: 1, Y: 1, Motion: true, Pressed: false})
	assert.False(t, ok, "1002 does not report motion with no button held")
}
