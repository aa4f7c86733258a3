// Package ptybridge spawns child processes on a pseudo-terminal and
// adapts them to the pane.Bridge interface, grounded on how the PTY
// lifecycle (start, read pump, resize, kill) is driven elsewhere in
// this tree.
package ptybridge

import (
	"bufio"
	"io"
	"os"
	"os/exec"
	"sync"
	"syscall"
	"time"

	"github.com/creack/pty"

	"github.com/weftterm/weft/internal/logging"
)

// killGrace is how long a child gets to exit after SIGHUP before Kill
// escalates to SIGKILL (§5: "a kill grace window precedes SIGKILL").
const killGrace = 2 * time.Second

// OsBridge owns one child process's PTY file descriptor: reads feed a
// pane's VT grid, writes carry input to the child, and SetSize issues
// a TIOCSWINSZ so the child's own ioctl(TIOCGWINSZ) and SIGWINCH see
// the new dimensions.
type OsBridge struct {
	cmd *exec.Cmd
	pty *os.File

	mu       sync.Mutex
	killed   bool
	onOutput func([]byte)
	onExit   func(error)
}

// Start launches name with args on a new PTY sized cols x rows. If
// dir is non-empty the child's working directory is set to it.
// onOutput is invoked from a dedicated reader goroutine with each
// chunk read from the PTY; onExit is invoked once, when the child
// process or the PTY itself ends.
func Start(name string, args []string, dir string, cols, rows int, env []string, onOutput func([]byte), onExit func(error)) (*OsBridge, error) {
	cmd := exec.Command(name, args...)
	if dir != "" {
		cmd.Dir = dir
	}
	if len(env) > 0 {
		cmd.Env = env
	}

	ptmx, err := pty.StartWithSize(cmd, &pty.Winsize{Rows: uint16(rows), Cols: uint16(cols)})
	if err != nil {
		return nil, err
	}

	b := &OsBridge{cmd: cmd, pty: ptmx, onOutput: onOutput, onExit: onExit}
	go b.readLoop()
	return b, nil
}

func (b *OsBridge) readLoop() {
	reader := bufio.NewReaderSize(b.pty, 64*1024)
	buf := make([]byte, 64*1024)
	for {
		n, err := reader.Read(buf)
		if n > 0 && b.onOutput != nil {
			chunk := make([]byte, n)
			copy(chunk, buf[:n])
			b.onOutput(chunk)
		}
		if err != nil {
			if err != io.EOF {
				logging.L.Printf("ptybridge: read error: %v", err)
			}
			break
		}
	}
	waitErr := b.cmd.Wait()
	if b.onExit != nil {
		b.onExit(waitErr)
	}
}

// Write sends input bytes to the child's stdin.
func (b *OsBridge) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.killed {
		return 0, os.ErrClosed
	}
	return b.pty.Write(p)
}

// SetSize resizes the PTY, propagating to the child via SIGWINCH.
func (b *OsBridge) SetSize(cols, rows int) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.killed {
		return os.ErrClosed
	}
	return pty.Setsize(b.pty, &pty.Winsize{Rows: uint16(rows), Cols: uint16(cols)})
}

// Kill asks the child to exit with SIGHUP, then escalates to SIGKILL
// if it hasn't exited within killGrace (§5 "PTY child processes
// receive SIGHUP on tab/pane close; a kill grace window precedes
// SIGKILL"). The PTY file descriptor is closed immediately so readers
// unblock right away; the grace window only governs the signal
// escalation. Safe to call multiple times.
func (b *OsBridge) Kill() error {
	b.mu.Lock()
	if b.killed {
		b.mu.Unlock()
		return nil
	}
	b.killed = true
	proc := b.cmd.Process
	b.mu.Unlock()

	if proc != nil {
		_ = proc.Signal(syscall.SIGHUP)
		go func() {
			time.Sleep(killGrace)
			_ = proc.Signal(syscall.SIGKILL)
		}()
	}
	return b.pty.Close()
}
