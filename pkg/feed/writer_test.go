package feed

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gofrs/flock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriter_Write(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sub", "rss.xml")
	w := NewWriter(path)
	assert.Equal(t, path, w.Path())

	require.NoError(t, w.Write(context.Background(), []byte("first")))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "first", string(data))

	require.NoError(t, w.Write(context.Background(), []byte("second")))
	data, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "second", string(data))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o644), info.Mode().Perm())

	// no temp files left behind
	entries, err := os.ReadDir(filepath.Join(dir, "sub"))
	require.NoError(t, err)
	for _, e := range entries {
		assert.False(t, strings.HasSuffix(e.Name(), ".tmp"), "temp file left: %s", e.Name())
	}
}

func TestWriter_Locked(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rss.xml")
	other := flock.New(path + ".lock")
	locked, err := other.TryLock()
	require.NoError(t, err)
	require.True(t, locked)
	defer func() { _ = other.Unlock() }()

	w := NewWriter(path)
	w.lockTimeout = 200 * time.Millisecond
	err = w.Write(context.Background(), []byte("data"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "lock")

	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestWriter_BadDir(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o600))

	err := NewWriter(filepath.Join(blocker, "rss.xml")).Write(context.Background(), []byte("data"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "make output dir")
}

func TestWriter_Exists(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(filepath.Join(dir, "rss.xml"))
	assert.False(t, w.Exists())

	require.NoError(t, w.Write(context.Background(), []byte("data")))
	assert.True(t, w.Exists())

	assert.False(t, NewWriter(dir).Exists(), "directory is not a feed file")
}
