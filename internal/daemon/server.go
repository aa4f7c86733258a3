// Package daemon is weftd's server: it listens on a Unix domain
// socket, manages sessions, and drives each attached client's
// connection loop (reads Action/Input/Resize frames, writes Render
// frames), grounded on the accept-loop/session-manager shape used
// elsewhere in this tree.
package daemon

import (
	"context"
	"net"
	"os"
	"sync"

	"github.com/weftterm/weft/internal/config"
	"github.com/weftterm/weft/internal/ids"
	"github.com/weftterm/weft/internal/logging"
	"github.com/weftterm/weft/internal/pane"
	"github.com/weftterm/weft/internal/protocol"
	"github.com/weftterm/weft/internal/ptybridge"
	"github.com/weftterm/weft/internal/screen"
)

// Server listens on addr and serves attached clients.
type Server struct {
	addr string
	cfg  *config.Config

	mu       sync.RWMutex
	sessions map[ids.SessionID]*screen.Screen

	listener net.Listener
	quit     chan struct{}
	wg       sync.WaitGroup
}

// New creates a server bound to addr (a filesystem path for the Unix
// socket) using cfg for per-session defaults.
func New(addr string, cfg *config.Config) *Server {
	return &Server{
		addr:     addr,
		cfg:      cfg,
		sessions: make(map[ids.SessionID]*screen.Screen),
		quit:     make(chan struct{}),
	}
}

// Start removes any stale socket file, binds addr, and begins
// accepting connections in the background.
func (s *Server) Start() error {
	if err := os.RemoveAll(s.addr); err != nil {
		return err
	}
	l, err := net.Listen("unix", s.addr)
	if err != nil {
		return err
	}
	s.listener = l
	s.wg.Add(1)
	go s.acceptLoop()
	return nil
}

func (s *Server) acceptLoop() {
	defer s.wg.Done()
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			select {
			case <-s.quit:
				return
			default:
				logging.L.Printf("daemon: accept error: %v", err)
				continue
			}
		}
		s.wg.Add(1)
		go func(c net.Conn) {
			defer s.wg.Done()
			defer c.Close()
			if err := s.serveConn(c); err != nil {
				logging.L.Printf("daemon: connection ended: %v", err)
			}
		}(conn)
	}
}

// sessionFor returns the named session, creating it (and its default
// shell pane) if it doesn't exist yet.
func (s *Server) sessionFor(name string, cols, rows int) *screen.Screen {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, sc := range s.sessions {
		if sc.Name() == name {
			return sc
		}
	}

	sessionID := ids.NewSessionID()
	sc := screen.New(sessionID)
	sc.SetName(name)
	sc.SetSpawnFunc(s.spawnShellPane)
	sc.Resize(cols, rows)
	sc.EnsureFirstPane()
	s.sessions[sessionID] = sc
	return sc
}

// spawnShellPane starts the configured default shell on a fresh PTY
// and wires it to a new pane's VT grid.
func (s *Server) spawnShellPane(id ids.PaneID, cols, rows int) *pane.Pane {
	p := pane.New(id, cols, rows, nil)
	bridge, err := ptybridge.Start(s.cfg.DefaultShell, nil, "", cols, rows, nil,
		func(data []byte) { p.Feed(data) },
		func(err error) { logging.L.Printf("daemon: pane %s exited: %v", id, err) },
	)
	if err != nil {
		logging.L.Printf("daemon: failed to start shell for pane %s: %v", id, err)
		return p
	}
	p.SetBridge(bridge)
	p.SetStaticTitle(s.cfg.DefaultShell)
	return p
}

func (s *Server) serveConn(c net.Conn) error {
	hdr, payload, err := protocol.ReadMessage(c)
	if err != nil {
		return err
	}
	if hdr.Type != protocol.MsgAttach {
		return protocol.WriteMessage(c, protocol.Header{Version: protocol.Version, Flags: protocol.FlagChecksum, Type: protocol.MsgError}, mustEncodeError("expected attach"))
	}
	req, err := protocol.DecodeAttachRequest(payload)
	if err != nil {
		return err
	}

	name := req.Session
	if name == "" {
		name = "default"
	}
	sc := s.sessionFor(name, int(req.Cols), int(req.Rows))

	clientID := ids.NewClientID()
	mirrored := req.Mirrored || s.cfg.MirroredByDefault
	client := sc.AttachClient(clientID, mirrored, int(req.Cols), int(req.Rows))
	defer sc.DetachClient(clientID)

	accept, _ := protocol.EncodeAttachAccept(protocol.AttachAccept{})
	if err := protocol.WriteMessage(c, protocol.Header{Version: protocol.Version, Flags: protocol.FlagChecksum, Type: protocol.MsgAttachAccept}, accept); err != nil {
		return err
	}

	return s.clientLoop(c, sc, client)
}

func (s *Server) clientLoop(c net.Conn, sc *screen.Screen, client *screen.Client) error {
	for {
		hdr, payload, err := protocol.ReadMessage(c)
		if err != nil {
			return err
		}
		switch hdr.Type {
		case protocol.MsgInput:
			in, err := protocol.DecodeInputEvent(payload)
			if err != nil {
				continue
			}
			_ = sc.WriteInputToFocus(client, in.Data)
		case protocol.MsgResize:
			r, err := protocol.DecodeResizeEvent(payload)
			if err != nil {
				continue
			}
			client.Cols, client.Rows = int(r.Cols), int(r.Rows)
			sc.Resize(int(r.Cols), int(r.Rows))
		case protocol.MsgAction:
			a, err := protocol.DecodeAction(payload)
			if err != nil {
				continue
			}
			sc.Dispatch(client, a.Name, a.Args)
		case protocol.MsgDetach:
			return nil
		case protocol.MsgDisconnect:
			return nil
		}

		render := sc.RenderFrame(client)
		if len(render.Chunks) == 0 {
			continue
		}
		buf, err := protocol.EncodeRender(render)
		if err != nil {
			continue
		}
		if err := protocol.WriteMessage(c, protocol.Header{Version: protocol.Version, Flags: protocol.FlagChecksum, Type: protocol.MsgRender}, buf); err != nil {
			return err
		}
	}
}

func mustEncodeError(msg string) []byte {
	b, _ := protocol.EncodeErrorFrame(protocol.ErrorFrame{Message: msg})
	return b
}

// Stop closes the listener and waits for in-flight connections to
// finish, bounded by ctx.
func (s *Server) Stop(ctx context.Context) error {
	close(s.quit)
	if s.listener != nil {
		_ = s.listener.Close()
	}
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
