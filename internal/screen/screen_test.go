package screen

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weftterm/weft/internal/ids"
	"github.com/weftterm/weft/internal/pane"
)

func fakeSpawn(id ids.PaneID, cols, rows int) *pane.Pane {
	return pane.New(id, cols, rows, nil)
}

func newTestScreen(t *testing.T) *Screen {
	t.Helper()
	s := New(ids.NewSessionID())
	s.SetSpawnFunc(fakeSpawn)
	s.Resize(80, 24)
	s.EnsureFirstPane()
	return s
}

func TestEnsureFirstPaneIsIdempotent(t *testing.T) {
	s := newTestScreen(t)
	first := s.tabs[0].ActivePane()
	require.NotNil(t, first)

	s.EnsureFirstPane()
	assert.Equal(t, first.ID, s.tabs[0].ActivePane().ID, "calling it twice must not spawn a second pane")
}

func TestNewTabBecomesActiveForMirroredClients(t *testing.T) {
	s := newTestScreen(t)
	client := s.AttachClient(ids.NewClientID(), true, 80, 24)

	before := s.ActiveTab(client)
	s.NewTab()
	after := s.ActiveTab(client)

	assert.NotEqual(t, before.Name, after.Name)
}

func TestIndependentClientFocusIsIsolated(t *testing.T) {
	s := newTestScreen(t)
	mirrored := s.AttachClient(ids.NewClientID(), true, 80, 24)
	independent := s.AttachClient(ids.NewClientID(), false, 80, 24)

	firstTabName := s.tabs[0].Name
	s.NewTab()
	require.NoError(t, s.GoToTab(mirrored, 1))

	assert.NotEqual(t, firstTabName, s.ActiveTab(mirrored).Name)
	assert.Equal(t, firstTabName, s.ActiveTab(independent).Name, "a non-mirrored client keeps its own focus")
}

func TestDispatchSplitRightAddsPane(t *testing.T) {
	s := newTestScreen(t)
	client := s.AttachClient(ids.NewClientID(), true, 80, 24)

	s.Dispatch(client, "split-right", nil)

	assert.Len(t, s.tabs[0].Panes(), 2)
}

func TestDispatchClosePaneRemovesActive(t *testing.T) {
	s := newTestScreen(t)
	client := s.AttachClient(ids.NewClientID(), true, 80, 24)
	s.Dispatch(client, "split-right", nil)
	require.Len(t, s.tabs[0].Panes(), 2)

	s.Dispatch(client, "close-pane", nil)
	assert.Len(t, s.tabs[0].Panes(), 1)
}

func TestDispatchUnknownActionIsIgnored(t *testing.T) {
	s := newTestScreen(t)
	client := s.AttachClient(ids.NewClientID(), true, 80, 24)

	assert.NotPanics(t, func() {
		s.Dispatch(client, "not-a-real-action", nil)
	})
}

func TestRenderFrameReportsCursorForActivePane(t *testing.T) {
	s := newTestScreen(t)
	client := s.AttachClient(ids.NewClientID(), true, 80, 24)

	render := s.RenderFrame(client)
	assert.True(t, render.CursorVisible)
}

func TestCloseTabRejectsOutOfRangeIndex(t *testing.T) {
	s := newTestScreen(t)
	err := s.CloseTab(5)
	assert.ErrorIs(t, err, ErrNoSuchTab)
}

func TestGoToTabName(t *testing.T) {
	s := newTestScreen(t)
	client := s.AttachClient(ids.NewClientID(), true, 80, 24)
	nt := s.NewTab()

	require.NoError(t, s.GoToTabName(client, nt.Name))
	assert.Equal(t, nt.Name, s.ActiveTab(client).Name)

	assert.ErrorIs(t, s.GoToTabName(client, "no-such-tab"), ErrNoSuchTab)
}

func TestSwitchTabNextAndPrevWrapAround(t *testing.T) {
	s := newTestScreen(t)
	client := s.AttachClient(ids.NewClientID(), true, 80, 24)
	s.NewTab()
	firstName := s.tabs[0].Name

	require.NoError(t, s.SwitchTabNext(client))
	assert.Equal(t, s.tabs[1].Name, s.ActiveTab(client).Name)

	require.NoError(t, s.SwitchTabNext(client))
	assert.Equal(t, firstName, s.ActiveTab(client).Name, "wraps back to the first tab")

	require.NoError(t, s.SwitchTabPrev(client))
	assert.Equal(t, s.tabs[1].Name, s.ActiveTab(client).Name, "wraps backward to the last tab")
}

func TestToggleTabSwapsWithHistory(t *testing.T) {
	s := newTestScreen(t)
	client := s.AttachClient(ids.NewClientID(), true, 80, 24)
	s.NewTab()
	firstName := s.tabs[0].Name
	secondName := s.tabs[1].Name

	require.NoError(t, s.GoToTab(client, 0))
	require.NoError(t, s.GoToTab(client, 1))
	assert.Equal(t, secondName, s.ActiveTab(client).Name)

	require.NoError(t, s.ToggleTab(client))
	assert.Equal(t, firstName, s.ActiveTab(client).Name, "toggle returns to the previously-focused tab")

	require.NoError(t, s.ToggleTab(client))
	assert.Equal(t, secondName, s.ActiveTab(client).Name, "toggling again flips back")
}

func TestUpdatePixelDimensionsAndPixelSize(t *testing.T) {
	s := newTestScreen(t)
	s.UpdatePixelDimensions(1920, 1080)
	w, h := s.PixelSize()
	assert.Equal(t, 1920, w)
	assert.Equal(t, 1080, h)
}

func TestDumpScreenWritesActivePaneText(t *testing.T) {
	s := newTestScreen(t)
	client := s.AttachClient(ids.NewClientID(), true, 80, 24)
	s.tabs[0].ActivePane().Feed([]byte("hello"))

	path := filepath.Join(t.TempDir(), "dump.txt")
	require.NoError(t, s.DumpScreen(client, path, false))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "hello")
}

func TestDispatchResizeAndMoveFocusAndFloating(t *testing.T) {
	s := newTestScreen(t)
	client := s.AttachClient(ids.NewClientID(), true, 80, 24)
	s.Dispatch(client, "split-right", nil)

	assert.NotPanics(t, func() {
		s.Dispatch(client, "resize-left", nil)
		s.Dispatch(client, "move-focus-left", nil)
		s.Dispatch(client, "cycle-focus-next", nil)
		s.Dispatch(client, "cycle-focus-prev", nil)
	})

	s.Dispatch(client, "toggle-pane-embed-or-floating", nil)
	assert.True(t, s.tabs[0].FloatingVisible())

	s.Dispatch(client, "toggle-floating-panes", nil)
	assert.False(t, s.tabs[0].FloatingVisible())
}

func TestDispatchUpdatePixelDimensionsParsesArgs(t *testing.T) {
	s := newTestScreen(t)
	client := s.AttachClient(ids.NewClientID(), true, 80, 24)

	s.Dispatch(client, "update-pixel-dimensions", []string{"640", "480"})
	w, h := s.PixelSize()
	assert.Equal(t, 640, w)
	assert.Equal(t, 480, h)
}

func TestDispatchDumpScreenWritesFile(t *testing.T) {
	s := newTestScreen(t)
	client := s.AttachClient(ids.NewClientID(), true, 80, 24)
	path := filepath.Join(t.TempDir(), "dump.txt")

	s.Dispatch(client, "dump-screen", []string{path})
	_, err := os.Stat(path)
	assert.NoError(t, err)
}
