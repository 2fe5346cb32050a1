package process

import (
	"context"

	"github.com/abhinandh-s/lazy.tmux/internal/core/domain/process"
)

// Result is what a finished child process left behind
type Result struct {
	ExitCode int
	Stderr   string
}

// Runner executes a command to completion.
//
// Implementations return nil only when the child exited with status zero.
// Cancelling ctx kills the child.
type Runner interface {
	Run(ctx context.Context, cmd process.Command) (Result, error)
}
