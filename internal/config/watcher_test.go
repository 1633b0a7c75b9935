package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatcherReportsWrites(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log_level: info\n"), 0644))

	w, err := NewWatcher(path)
	require.NoError(t, err)
	defer w.Close()

	// Files next to the config are ignored.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.yaml"), []byte("x"), 0644))
	require.NoError(t, os.WriteFile(path, []byte("log_level: debug\n"), 0644))

	select {
	case ev := <-w.Events():
		assert.Equal(t, filepath.Clean(path), filepath.Clean(ev.Path))
		assert.NotEmpty(t, ev.Operation)
	case <-time.After(5 * time.Second):
		t.Fatal("no event for config write")
	}
}

func TestWatcherMissingDirectory(t *testing.T) {
	_, err := NewWatcher(filepath.Join(t.TempDir(), "missing", "config.yaml"))
	assert.Error(t, err)
}

func TestWatcherClose(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	w, err := NewWatcher(path)
	require.NoError(t, err)
	assert.NoError(t, w.Close())
}
