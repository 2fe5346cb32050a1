package lock

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	plugindomain "github.com/abhinandh-s/lazy.tmux/internal/core/domain/plugin"
	pluginports "github.com/abhinandh-s/lazy.tmux/internal/core/ports/plugin"
)

// RunLock is the advisory lock held for the duration of one run
type RunLock struct {
	path  string
	flock *flock.Flock
}

// Acquire takes the lock at path without waiting. A lock held by another
// process yields ErrLockHeld.
func Acquire(path string) (*RunLock, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", plugindomain.ErrCannotCreateDir, filepath.Dir(path), err)
	}

	fl := flock.New(path)
	locked, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("%w: lock file %s: %w", plugindomain.ErrCannotCreateDir, path, err)
	}
	if !locked {
		return nil, fmt.Errorf("%w (lock file %s); wait for it to finish", plugindomain.ErrLockHeld, path)
	}

	return &RunLock{path: path, flock: fl}, nil
}

// Release drops the lock. The lock file itself is left in place.
func (l *RunLock) Release() error {
	if l == nil || l.flock == nil {
		return nil
	}
	return l.flock.Unlock()
}

// LockFileSource resolves where the run lock lives
type LockFileSource interface {
	LockFile() (string, error)
}

// FileLocker acquires a RunLock at a lazily resolved path
type FileLocker struct {
	source LockFileSource
}

// NewFileLocker creates a locker over source
func NewFileLocker(source LockFileSource) *FileLocker {
	return &FileLocker{source: source}
}

// Acquire resolves the lock path and takes the lock
func (f *FileLocker) Acquire() (func() error, error) {
	path, err := f.source.LockFile()
	if err != nil {
		return nil, err
	}
	l, err := Acquire(path)
	if err != nil {
		return nil, err
	}
	return l.Release, nil
}

var _ pluginports.Locker = (*FileLocker)(nil)
