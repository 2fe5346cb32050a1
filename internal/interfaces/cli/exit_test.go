package cli

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	plugindomain "github.com/abhinandh-s/lazy.tmux/internal/core/domain/plugin"
)

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"success", nil, ExitOK},
		{"actions failed", errActionsFailed, ExitPartial},
		{"usage", usageError{errors.New("unknown flag: --x")}, ExitConfig},
		{"unknown command", errors.New(`unknown command "sync" for "lazy-tmux"`), ExitConfig},
		{"missing config", fmt.Errorf("%w: /x", plugindomain.ErrConfigMissing), ExitConfig},
		{"invalid config", fmt.Errorf("plugins[0]: %w", plugindomain.ErrConfigInvalid), ExitConfig},
		{"lock held", plugindomain.ErrLockHeld, ExitEnvironment},
		{"no base dir", plugindomain.ErrMissingBaseDir, ExitEnvironment},
		{"interrupted", plugindomain.ErrInterrupted, ExitInterrupted},
		{"anything else", errors.New("boom"), ExitPartial},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExitCode(tt.err))
		})
	}
}

func TestReportError(t *testing.T) {
	assert.NoError(t, reportError(nil))

	clean := plugindomain.NewReport(plugindomain.VerbInstall, 1)
	clean.Set(0, plugindomain.Outcome{Slug: "a/b", Status: plugindomain.StatusSucceeded})
	assert.NoError(t, reportError(clean))

	failed := plugindomain.NewReport(plugindomain.VerbInstall, 1)
	failed.Set(0, plugindomain.Outcome{Slug: "a/b", Status: plugindomain.StatusFailed, Err: errors.New("x")})
	assert.ErrorIs(t, reportError(failed), errActionsFailed)

	interrupted := plugindomain.NewReport(plugindomain.VerbInstall, 1)
	interrupted.Set(0, plugindomain.Outcome{Slug: "a/b", Status: plugindomain.StatusFailed, Err: errors.New("x")})
	interrupted.Interrupted = true
	assert.ErrorIs(t, reportError(interrupted), plugindomain.ErrInterrupted, "an interrupt outranks failures")
}
