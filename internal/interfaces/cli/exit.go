package cli

import (
	"errors"
	"strings"

	plugindomain "github.com/abhinandh-s/lazy.tmux/internal/core/domain/plugin"
)

// Process exit codes
const (
	ExitOK          = 0
	ExitPartial     = 1
	ExitConfig      = 2
	ExitEnvironment = 3
	ExitInterrupted = 130
)

// errActionsFailed is returned when a run finished with failed actions. The
// sink already printed one line per failure, so it is not printed again.
var errActionsFailed = errors.New("one or more actions failed")

// usageError marks bad flags or arguments
type usageError struct {
	err error
}

func (e usageError) Error() string { return e.err.Error() }
func (e usageError) Unwrap() error { return e.err }

// ExitCode maps an error returned by a command to the process exit code
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}

	var usage usageError
	if errors.As(err, &usage) || strings.HasPrefix(err.Error(), "unknown command") {
		return ExitConfig
	}

	switch plugindomain.KindOf(err) {
	case plugindomain.KindInterrupted:
		return ExitInterrupted
	case plugindomain.KindConfiguration:
		return ExitConfig
	case plugindomain.KindEnvironment:
		return ExitEnvironment
	default:
		return ExitPartial
	}
}

// reportError turns a finished report into the command's error
func reportError(report *plugindomain.Report) error {
	switch {
	case report == nil:
		return nil
	case report.Interrupted:
		return plugindomain.ErrInterrupted
	case report.HasFailures():
		return errActionsFailed
	default:
		return nil
	}
}
