package process

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	plugindomain "github.com/abhinandh-s/lazy.tmux/internal/core/domain/plugin"
	"github.com/abhinandh-s/lazy.tmux/internal/core/domain/process"
	procp "github.com/abhinandh-s/lazy.tmux/internal/core/ports/process"
	"github.com/abhinandh-s/lazy.tmux/internal/infrastructure/logging"
)

// maxCapturedStderr bounds how much child stderr is kept for diagnostics
const maxCapturedStderr = 64 * 1024

// ExitError is returned when a child ran but exited with a non-zero status
type ExitError struct {
	Command string
	Exit    int
	Stderr  string
}

func (e *ExitError) Error() string {
	msg := fmt.Sprintf("exit status %d", e.Exit)
	if line := FirstLine(e.Stderr); line != "" {
		msg += ": " + line
	}
	return msg
}

// Is lets errors.Is match ErrChildNonZero
func (e *ExitError) Is(target error) bool {
	return target == plugindomain.ErrChildNonZero
}

// SignalError is returned when a child was terminated by a signal
type SignalError struct {
	Command string
	Signal  syscall.Signal
	Stderr  string
}

func (e *SignalError) Error() string {
	return fmt.Sprintf("terminated by signal %s", e.Signal)
}

// Is lets errors.Is match ErrChildSignalled
func (e *SignalError) Is(target error) bool {
	return target == plugindomain.ErrChildSignalled
}

// Executor implements the Runner interface with os/exec
type Executor struct {
	logger *slog.Logger
	env    []string
	stdout io.Writer
}

// Option configures an Executor
type Option func(*Executor)

// WithStdout forwards child stdout to w instead of discarding it
func WithStdout(w io.Writer) Option {
	return func(e *Executor) { e.stdout = w }
}

// WithBaseEnv replaces the inherited environment
func WithBaseEnv(env []string) Option {
	return func(e *Executor) { e.env = env }
}

// NewExecutor creates a new process executor inheriting the current environment
func NewExecutor(logger *slog.Logger, opts ...Option) *Executor {
	if logger == nil {
		logger = logging.Discard()
	}
	e := &Executor{
		logger: logger.With(slog.String("component", "process")),
		env:    os.Environ(),
		stdout: io.Discard,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run starts cmd, waits for it, and normalises the outcome. A context deadline
// kills the child and yields ErrTimeout.
func (e *Executor) Run(ctx context.Context, cmd process.Command) (procp.Result, error) {
	execCmd := exec.CommandContext(ctx, cmd.Executable(), cmd.Args()...)
	execCmd.Dir = cmd.WorkingDir()
	execCmd.Env = e.buildEnvironment(cmd.Env())
	execCmd.Stdin = nil
	execCmd.Stdout = e.stdout
	execCmd.WaitDelay = 5 * time.Second
	// Terminal signals go to the foreground group only, so a Ctrl-C
	// reaches lazy-tmux but not the git children it is waiting on.
	detachProcessGroup(execCmd)

	captured := &boundedBuffer{limit: maxCapturedStderr}
	execCmd.Stderr = captured

	start := time.Now()
	e.logger.Debug("starting child", slog.String("cmd", cmd.String()), slog.String("dir", execCmd.Dir))

	if err := execCmd.Start(); err != nil {
		return procp.Result{ExitCode: -1}, fmt.Errorf("%w: %s: %w", plugindomain.ErrChildSpawnFailed, cmd.Executable(), err)
	}

	waitErr := execCmd.Wait()
	result := procp.Result{ExitCode: execCmd.ProcessState.ExitCode(), Stderr: captured.String()}

	e.logger.Debug("child finished",
		slog.String("cmd", cmd.String()),
		slog.Int("exit", result.ExitCode),
		slog.Duration("elapsed", time.Since(start)))

	if waitErr == nil {
		return result, nil
	}

	// The full argv is in the debug log; errors name the binary only so the
	// console diagnostic has room for the child's own message.
	name := filepath.Base(cmd.Executable())
	switch {
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		return result, fmt.Errorf("%w: %s", plugindomain.ErrTimeout, name)
	case errors.Is(ctx.Err(), context.Canceled):
		return result, fmt.Errorf("%s: %w", name, ctx.Err())
	}

	var exitErr *exec.ExitError
	if errors.As(waitErr, &exitErr) {
		if status, ok := exitErr.Sys().(syscall.WaitStatus); ok && status.Signaled() {
			return result, &SignalError{Command: cmd.String(), Signal: status.Signal(), Stderr: result.Stderr}
		}
		return result, &ExitError{Command: cmd.String(), Exit: exitErr.ExitCode(), Stderr: result.Stderr}
	}

	return result, fmt.Errorf("%s: %w", name, waitErr)
}

// buildEnvironment appends command-specific variables after the base
// environment; exec keeps the last value for a duplicated key.
func (e *Executor) buildEnvironment(cmdEnv map[string]string) []string {
	env := append([]string(nil), e.env...)
	for key, value := range cmdEnv {
		env = append(env, key+"="+value)
	}
	return env
}

// FirstLine returns the first non-empty line of s, trimmed
func FirstLine(s string) string {
	for _, line := range strings.Split(s, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			return line
		}
	}
	return ""
}

// boundedBuffer keeps at most limit bytes and drops the rest
type boundedBuffer struct {
	mu    sync.Mutex
	buf   bytes.Buffer
	limit int
}

func (b *boundedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if room := b.limit - b.buf.Len(); room > 0 {
		if len(p) > room {
			b.buf.Write(p[:room])
		} else {
			b.buf.Write(p)
		}
	}
	return len(p), nil
}

func (b *boundedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

var _ procp.Runner = (*Executor)(nil)
