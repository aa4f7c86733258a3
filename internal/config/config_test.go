package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withTempConfigDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	return dir
}

func TestLoadFallsBackToDefaultsWhenMissing(t *testing.T) {
	withTempConfigDir(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, Default().ScrollbackLines, cfg.ScrollbackLines)
}

func TestSaveThenLoadRoundTrips(t *testing.T) {
	withTempConfigDir(t)

	cfg := Default()
	cfg.DefaultShell = "/bin/zsh"
	cfg.ScrollbackLines = 5000
	require.NoError(t, cfg.Save())

	loaded, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "/bin/zsh", loaded.DefaultShell)
	assert.Equal(t, 5000, loaded.ScrollbackLines)
}

func TestWatchFileReloadsOnWrite(t *testing.T) {
	withTempConfigDir(t)

	cfg := Default()
	cfg.DefaultShell = "/bin/sh"
	require.NoError(t, cfg.Save())

	reloaded := make(chan *Config, 1)
	w, err := WatchFile(func(c *Config) { reloaded <- c })
	require.NoError(t, err)
	defer w.Close()

	updated := *cfg
	updated.DefaultShell = "/bin/fish"
	require.NoError(t, updated.Save())

	select {
	case c := <-reloaded:
		assert.Equal(t, "/bin/fish", c.DefaultShell)
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not observe the config rewrite in time")
	}
}

func TestDefaultShellFallsBackWhenEnvUnset(t *testing.T) {
	t.Setenv("SHELL", "")
	cfg := Default()
	assert.Equal(t, "/bin/sh", cfg.DefaultShell)
}
