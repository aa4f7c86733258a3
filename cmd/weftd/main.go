// Command weftd is the background server: it listens on a Unix domain
// socket, manages sessions, and drives every attached weftctl client.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/weftterm/weft/internal/config"
	"github.com/weftterm/weft/internal/daemon"
	"github.com/weftterm/weft/internal/logging"
)

func main() {
	socketPath := flag.String("socket", defaultSocketPath(), "Unix socket path")
	verbose := flag.Bool("verbose-logs", false, "enable verbose server logging")
	flag.Parse()

	logging.SetVerbose(*verbose)

	watcher, err := config.WatchFile(func(c *config.Config) {
		logging.L.Printf("weftd: configuration reloaded")
	})
	if err != nil {
		log.Printf("weftd: warning: failed to watch config: %v, using defaults", err)
	}
	cfg := config.Default()
	if watcher != nil {
		cfg = watcher.Current()
		defer watcher.Close()
	}

	srv := daemon.New(*socketPath, cfg)
	if err := srv.Start(); err != nil {
		fmt.Fprintf(os.Stderr, "weftd: failed to start: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("weftd listening on %s\n", *socketPath)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Stop(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "weftd: shutdown error: %v\n", err)
	}
	fmt.Println("weftd stopped")
}

func defaultSocketPath() string {
	if dir := os.Getenv("XDG_RUNTIME_DIR"); dir != "" {
		return dir + "/weft.sock"
	}
	return "/tmp/weft.sock"
}
