package feed

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-pkgz/repeater/v2"
	"github.com/gofrs/flock"
)

// Writer stores rendered feeds at a fixed path.
// Content goes to a temp file in the same directory first and is renamed over the
// destination, so readers see either the old or the new file. A lock file next to
// the destination serializes overlapping runs.
type Writer struct {
	path        string
	lockTimeout time.Duration
}

// NewWriter makes a writer for the given destination path
func NewWriter(path string) *Writer {
	return &Writer{path: path, lockTimeout: 10 * time.Second}
}

// Path returns the destination path
func (w *Writer) Path() string { return w.path }

// Exists reports whether the destination file is present
func (w *Writer) Exists() bool {
	info, err := os.Stat(w.path)
	return err == nil && info.Mode().IsRegular()
}

// Write replaces the destination file with data
func (w *Writer) Write(ctx context.Context, data []byte) error {
	dir := filepath.Dir(w.path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("make output dir %s: %w", dir, err)
	}

	lockCtx, cancel := context.WithTimeout(ctx, w.lockTimeout)
	defer cancel()
	lock := flock.New(w.path + ".lock")
	locked, err := lock.TryLockContext(lockCtx, 50*time.Millisecond)
	if err != nil {
		return fmt.Errorf("lock %s: %w", w.path, err)
	}
	if !locked {
		return fmt.Errorf("lock %s: not acquired", w.path)
	}
	defer func() { _ = lock.Unlock() }()

	tmpName, err := w.writeTemp(dir, data)
	if err != nil {
		return err
	}

	// rename may fail transiently on some filesystems, e.g. when a reader holds the file on windows
	retrier := repeater.NewBackoff(3, 50*time.Millisecond, repeater.WithMaxDelay(time.Second))
	if err := retrier.Do(ctx, func() error { return os.Rename(tmpName, w.path) }); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("rename %s to %s: %w", tmpName, w.path, err)
	}
	return nil
}

func (w *Writer) writeTemp(dir string, data []byte) (string, error) {
	tmp, err := os.CreateTemp(dir, filepath.Base(w.path)+".*.tmp")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	name := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(name)
		return "", fmt.Errorf("write %s: %w", name, err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(name)
		return "", fmt.Errorf("sync %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(name)
		return "", fmt.Errorf("close %s: %w", name, err)
	}
	if err := os.Chmod(name, 0o644); err != nil { //nolint:gosec // feed file is public
		_ = os.Remove(name)
		return "", fmt.Errorf("chmod %s: %w", name, err)
	}
	return name, nil
}
