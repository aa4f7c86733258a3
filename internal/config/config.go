// Package config loads and hot-reloads weftd's server configuration
// from ~/.config/weft/config.json, grounded on how the teacher loads
// its own JSON config.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/weftterm/weft/internal/logging"
)

// Config holds every server-tunable setting named in the domain
// stack: scrollback capacity, resize rounding behavior, session
// lifetime, and the default shell.
type Config struct {
	// DefaultShell is the command launched for a new terminal pane
	// when the client doesn't specify one.
	DefaultShell string `json:"defaultShell"`

	// ScrollbackLines is the configured scrollback depth. It is loaded
	// and saved but not applied: every vt.Grid bounds its lines_above
	// FIFO at vt.ScrollBackCap.
	ScrollbackLines int `json:"scrollbackLines"`

	// ResizeFixedBeforePercent records whether fixed-size panes are
	// honored before percent panes during a largest-remainder reflow.
	// Nothing reads it; the layout engine always honors fixed sizes
	// first.
	ResizeFixedBeforePercent bool `json:"resizeFixedBeforePercent"`

	// MirroredByDefault controls whether a new client attaches as a
	// mirrored (shared-focus) client or an independent one.
	MirroredByDefault bool `json:"mirroredByDefault"`

	// HoldOnClose is the hold-on-close policy setting. It is loaded and
	// saved but not read by the daemon: a session stays alive after its
	// last client detaches whatever its value.
	HoldOnClose bool `json:"holdOnClose"`

	// PluginKillTimeoutMS is the configured grace period before a pane
	// is force-killed. It is loaded and saved but not read: ptybridge's
	// Kill uses a fixed two-second grace window.
	PluginKillTimeoutMS int `json:"pluginKillTimeoutMs"`
}

// Default returns the built-in configuration used when no config file
// is present.
func Default() *Config {
	shell := os.Getenv("SHELL")
	if shell == "" {
		shell = "/bin/sh"
	}
	return &Config{
		DefaultShell:             shell,
		ScrollbackLines:          10000,
		ResizeFixedBeforePercent: true,
		MirroredByDefault:        false,
		HoldOnClose:              true,
		PluginKillTimeoutMS:      2000,
	}
}

func path() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "weft", "config.json"), nil
}

// Load reads the config file, falling back to defaults if it doesn't
// exist.
func Load() (*Config, error) {
	cfg := Default()

	p, err := path()
	if err != nil {
		logging.L.Printf("config: failed to resolve config dir: %v", err)
		return cfg, nil
	}

	data, err := os.ReadFile(p)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes cfg to the standard config path, creating the directory
// if needed.
func (c *Config) Save() error {
	p, err := path()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(p, data, 0644)
}

// Watcher reloads the config file whenever it changes on disk and
// invokes onChange with the new value. Callers must call Close when
// done.
type Watcher struct {
	fsw *fsnotify.Watcher

	mu  sync.Mutex
	cur *Config
}

// WatchFile starts watching the standard config path, calling
// onChange every time a reload succeeds. The initial load happens
// synchronously before WatchFile returns.
func WatchFile(onChange func(*Config)) (*Watcher, error) {
	cfg, err := Load()
	if err != nil {
		return nil, err
	}

	p, err := path()
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
		return nil, err
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	// Watch the directory, not the file: editors commonly replace the
	// file via rename-over-write, which doesn't preserve the original
	// inode fsnotify would otherwise be watching.
	if err := fsw.Add(filepath.Dir(p)); err != nil {
		fsw.Close()
		return nil, err
	}

	w := &Watcher{fsw: fsw, cur: cfg}
	go w.loop(p, onChange)
	return w, nil
}

func (w *Watcher) loop(path string, onChange func(*Config)) {
	for {
		select {
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if event.Name != path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			cfg, err := Load()
			if err != nil {
				logging.L.Printf("config: reload failed: %v", err)
				continue
			}
			w.mu.Lock()
			w.cur = cfg
			w.mu.Unlock()
			onChange(cfg)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			logging.L.Printf("config: watch error: %v", err)
		}
	}
}

// Current returns the most recently loaded configuration.
func (w *Watcher) Current() *Config {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.cur
}

// Close stops the underlying filesystem watch.
func (w *Watcher) Close() error {
	return w.fsw.Close()
}
