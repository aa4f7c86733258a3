package daemon

import (
	"context"
	"net"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/weftterm/weft/internal/config"
	"github.com/weftterm/weft/internal/protocol"
)

func startTestServer(t *testing.T) (string, *Server) {
	t.Helper()
	cfg := config.Default()
	cfg.DefaultShell = "/bin/cat" // echoes stdin straight back, no shell prompt noise
	addr := filepath.Join(t.TempDir(), "weft.sock")

	srv := New(addr, cfg)
	require.NoError(t, srv.Start())
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Stop(ctx)
	})
	return addr, srv
}

func attach(t *testing.T, addr, session string) net.Conn {
	t.Helper()
	conn, err := net.Dial("unix", addr)
	require.NoError(t, err)

	payload, err := protocol.EncodeAttachRequest(protocol.AttachRequest{Session: session, Cols: 80, Rows: 24, Mirrored: true})
	require.NoError(t, err)
	require.NoError(t, protocol.WriteMessage(conn, protocol.Header{Version: protocol.Version, Flags: protocol.FlagChecksum, Type: protocol.MsgAttach}, payload))

	hdr, _, err := protocol.ReadMessage(conn)
	require.NoError(t, err)
	require.Equal(t, protocol.MsgAttachAccept, hdr.Type)
	return conn
}

func TestAttachEchoesTypedInput(t *testing.T) {
	addr, _ := startTestServer(t)
	conn := attach(t, addr, "echo-session")
	defer conn.Close()

	in, err := protocol.EncodeInputEvent(protocol.InputEvent{Data: []byte("hi\n")})
	require.NoError(t, err)
	require.NoError(t, protocol.WriteMessage(conn, protocol.Header{Version: protocol.Version, Flags: protocol.FlagChecksum, Type: protocol.MsgInput}, in))

	deadline := time.Now().Add(3 * time.Second)
	var sawH bool
	for time.Now().Before(deadline) {
		conn.SetReadDeadline(time.Now().Add(500 * time.Millisecond))
		hdr, payload, err := protocol.ReadMessage(conn)
		if err != nil {
			continue
		}
		if hdr.Type != protocol.MsgRender {
			continue
		}
		render, err := protocol.DecodeRender(payload)
		require.NoError(t, err)
		for _, chunk := range render.Chunks {
			for _, cell := range chunk.Cells {
				if cell.Rune == 'h' {
					sawH = true
				}
			}
		}
	}
	require.True(t, sawH, "expected the cat-backed pane to echo the typed 'h' back into a render chunk")
}

func TestTwoClientsShareASessionByName(t *testing.T) {
	addr, srv := startTestServer(t)
	a := attach(t, addr, "shared")
	defer a.Close()
	b := attach(t, addr, "shared")
	defer b.Close()

	srv.mu.RLock()
	defer srv.mu.RUnlock()
	require.Len(t, srv.sessions, 1, "two attaches naming the same session must reuse it rather than creating two")
}
