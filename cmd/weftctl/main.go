// Command weftctl attaches an interactive terminal to a weftd session:
// it puts the local tty into raw mode, forwards keystrokes and resize
// events over the Unix socket, and redraws from the server's Render
// frames.
package main

import (
	"flag"
	"fmt"
	"io"
	"net"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"golang.org/x/term"

	"github.com/weftterm/weft/internal/protocol"
)

func main() {
	socketPath := flag.String("socket", defaultSocketPath(), "Unix socket path")
	session := flag.String("session", "default", "session name to attach to")
	mirrored := flag.Bool("mirrored", true, "attach as a mirrored client sharing focus with other clients")
	flag.Parse()

	conn, err := net.Dial("unix", *socketPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "weftctl: cannot reach weftd at %s: %v\n", *socketPath, err)
		os.Exit(1)
	}
	defer conn.Close()

	cols, rows := 80, 24
	if w, h, err := term.GetSize(int(os.Stdin.Fd())); err == nil {
		cols, rows = w, h
	}

	payload, _ := protocol.EncodeAttachRequest(protocol.AttachRequest{
		Session:  *session,
		Cols:     uint16(cols),
		Rows:     uint16(rows),
		Mirrored: *mirrored,
	})
	if err := protocol.WriteMessage(conn, protocol.Header{Version: protocol.Version, Flags: protocol.FlagChecksum, Type: protocol.MsgAttach}, payload); err != nil {
		fmt.Fprintf(os.Stderr, "weftctl: attach request failed: %v\n", err)
		os.Exit(1)
	}
	if hdr, _, err := protocol.ReadMessage(conn); err != nil || hdr.Type != protocol.MsgAttachAccept {
		fmt.Fprintf(os.Stderr, "weftctl: attach rejected: %v\n", err)
		os.Exit(1)
	}

	state, err := term.MakeRaw(int(os.Stdin.Fd()))
	if err != nil {
		fmt.Fprintf(os.Stderr, "weftctl: failed to enter raw mode: %v\n", err)
		os.Exit(1)
	}
	defer term.Restore(int(os.Stdin.Fd()), state)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		forwardStdin(conn)
	}()
	go func() {
		defer wg.Done()
		renderLoop(conn)
	}()
	go watchResize(conn)

	wg.Wait()
}

// forwardStdin reads local keystrokes and forwards each chunk as an
// Input frame until stdin closes or the connection breaks.
func forwardStdin(conn net.Conn) {
	buf := make([]byte, 4096)
	for {
		n, err := os.Stdin.Read(buf)
		if n > 0 {
			payload, _ := protocol.EncodeInputEvent(protocol.InputEvent{Data: append([]byte(nil), buf[:n]...)})
			if werr := protocol.WriteMessage(conn, protocol.Header{Version: protocol.Version, Flags: protocol.FlagChecksum, Type: protocol.MsgInput}, payload); werr != nil {
				return
			}
		}
		if err != nil {
			if err != io.EOF {
				fmt.Fprintf(os.Stderr, "weftctl: stdin read error: %v\n", err)
			}
			return
		}
	}
}

// renderLoop reads Render frames from the server and applies each
// dirty chunk directly to the local terminal via cursor-addressed
// writes, the same differential-update approach the server itself
// uses to decide what to send.
func renderLoop(conn net.Conn) {
	out := os.Stdout
	for {
		hdr, payload, err := protocol.ReadMessage(conn)
		if err != nil {
			fmt.Fprintf(os.Stderr, "\r\nweftctl: connection closed: %v\r\n", err)
			return
		}
		switch hdr.Type {
		case protocol.MsgRender:
			render, err := protocol.DecodeRender(payload)
			if err != nil {
				continue
			}
			drawRender(out, render)
		case protocol.MsgExit:
			return
		case protocol.MsgError:
			e, _ := protocol.DecodeErrorFrame(payload)
			fmt.Fprintf(os.Stderr, "\r\nweftctl: server error: %s\r\n", e.Message)
			return
		}
	}
}

// drawRender positions the cursor at each chunk's origin and writes
// its cells left to right, then places the real cursor where the
// server reported it.
func drawRender(out io.Writer, render protocol.Render) {
	for _, chunk := range render.Chunks {
		fmt.Fprintf(out, "\x1b[%d;%dH", chunk.Y+1, chunk.X+1)
		for _, cell := range chunk.Cells {
			if cell.Rune == 0 {
				fmt.Fprint(out, " ")
				continue
			}
			fmt.Fprint(out, string(cell.Rune))
		}
	}
	if render.CursorVisible {
		fmt.Fprintf(out, "\x1b[%d;%dH", render.CursorY+1, render.CursorX+1)
	}
}

// watchResize sends a Resize frame on startup and whenever the local
// tty reports a SIGWINCH, so the server's layout tracks the real
// window size.
func watchResize(conn net.Conn) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGWINCH)
	sendSize(conn)
	for range sigCh {
		sendSize(conn)
	}
}

func sendSize(conn net.Conn) {
	cols, rows, err := term.GetSize(int(os.Stdin.Fd()))
	if err != nil {
		return
	}
	payload, _ := protocol.EncodeResizeEvent(protocol.ResizeEvent{Cols: uint16(cols), Rows: uint16(rows)})
	_ = protocol.WriteMessage(conn, protocol.Header{Version: protocol.Version, Flags: protocol.FlagChecksum, Type: protocol.MsgResize}, payload)
}

func defaultSocketPath() string {
	if dir := os.Getenv("XDG_RUNTIME_DIR"); dir != "" {
		return dir + "/weft.sock"
	}
	return "/tmp/weft.sock"
}
