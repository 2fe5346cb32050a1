package plugininfra

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	plugindomain "github.com/abhinandh-s/lazy.tmux/internal/core/domain/plugin"
	pluginports "github.com/abhinandh-s/lazy.tmux/internal/core/ports/plugin"
	"github.com/abhinandh-s/lazy.tmux/internal/infrastructure/logging"
)

// Inspector derives the installation state of a plugin location
type Inspector struct {
	checker pluginports.IntegrityChecker
	logger  *slog.Logger
}

// NewInspector creates an inspector backed by checker
func NewInspector(checker pluginports.IntegrityChecker, logger *slog.Logger) *Inspector {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Inspector{
		checker: checker,
		logger:  logger.With(slog.String("component", "inspector")),
	}
}

// Inspect classifies location, checking in order: existence, .git presence,
// shallow marker, then the integrity check.
//
// Failures to run the check at all (missing binary, timeout) are returned as
// errors rather than reported as Broken, so a misconfigured host never
// triggers a destructive recreate.
func (i *Inspector) Inspect(ctx context.Context, location string) (plugindomain.State, error) {
	info, err := os.Stat(location)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return plugindomain.StateAbsent, nil
	case err != nil:
		return plugindomain.StateAbsent, fmt.Errorf("inspect %s: %w", location, err)
	case !info.IsDir():
		return plugindomain.StateBroken, nil
	}

	exists, err := pathExists(filepath.Join(location, ".git"))
	if err != nil {
		return plugindomain.StateAbsent, fmt.Errorf("inspect %s: %w", location, err)
	}
	if !exists {
		return plugindomain.StateBroken, nil
	}

	shallow, err := pathExists(filepath.Join(location, ".git", "shallow"))
	if err != nil {
		return plugindomain.StateAbsent, fmt.Errorf("inspect %s: %w", location, err)
	}
	if shallow {
		return plugindomain.StateShallow, nil
	}

	if err := i.checker.IntegrityCheck(ctx, location); err != nil {
		if errors.Is(err, plugindomain.ErrChildSpawnFailed) || errors.Is(err, plugindomain.ErrTimeout) {
			return plugindomain.StateAbsent, fmt.Errorf("integrity check %s: %w", location, err)
		}
		i.logger.Debug("integrity check failed", slog.String("location", location), slog.Any("error", err))
		return plugindomain.StateBroken, nil
	}

	return plugindomain.StateHealthy, nil
}

func pathExists(path string) (bool, error) {
	_, err := os.Lstat(path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, err
}

var _ pluginports.Inspector = (*Inspector)(nil)
