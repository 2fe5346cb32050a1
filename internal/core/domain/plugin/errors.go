package plugindomain

import (
	"context"
	"errors"
	"io/fs"
)

// Environment errors
var (
	ErrMissingBaseDir  = errors.New("no standard base directory available")
	ErrCannotCreateDir = errors.New("cannot create directory")
	ErrLockHeld        = errors.New("another lazy-tmux run holds the lock")
)

// Configuration errors
var (
	ErrConfigMissing    = errors.New("configuration file not found")
	ErrConfigUnreadable = errors.New("configuration file unreadable")
	ErrConfigMalformed  = errors.New("configuration file malformed")
	ErrConfigInvalid    = errors.New("configuration invalid")
)

// Child process errors
var (
	ErrChildSpawnFailed = errors.New("child process could not be started")
	ErrChildNonZero     = errors.New("child process exited with non-zero status")
	ErrChildSignalled   = errors.New("child process terminated by signal")
	ErrTimeout          = errors.New("action timed out")
)

// ErrInterrupted marks a run stopped by user cancellation
var ErrInterrupted = errors.New("interrupted")

// ErrorKind groups errors the way the dispatcher reports them
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindEnvironment
	KindConfiguration
	KindVCS
	KindFilesystem
	KindInterrupted
)

// String returns the string representation of ErrorKind
func (k ErrorKind) String() string {
	switch k {
	case KindEnvironment:
		return "environment"
	case KindConfiguration:
		return "configuration"
	case KindVCS:
		return "vcs"
	case KindFilesystem:
		return "filesystem"
	case KindInterrupted:
		return "interrupted"
	default:
		return "unknown"
	}
}

// KindOf classifies err. Nil yields KindUnknown.
func KindOf(err error) ErrorKind {
	switch {
	case err == nil:
		return KindUnknown
	case errors.Is(err, ErrInterrupted), errors.Is(err, context.Canceled):
		return KindInterrupted
	case errors.Is(err, ErrMissingBaseDir), errors.Is(err, ErrCannotCreateDir), errors.Is(err, ErrLockHeld):
		return KindEnvironment
	case errors.Is(err, ErrConfigMissing), errors.Is(err, ErrConfigUnreadable),
		errors.Is(err, ErrConfigMalformed), errors.Is(err, ErrConfigInvalid):
		return KindConfiguration
	case errors.Is(err, ErrChildSpawnFailed), errors.Is(err, ErrChildNonZero),
		errors.Is(err, ErrChildSignalled), errors.Is(err, ErrTimeout):
		return KindVCS
	}

	var pathErr *fs.PathError
	if errors.As(err, &pathErr) {
		return KindFilesystem
	}
	return KindUnknown
}
