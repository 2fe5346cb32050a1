package git

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	plugindomain "github.com/abhinandh-s/lazy.tmux/internal/core/domain/plugin"
	"github.com/abhinandh-s/lazy.tmux/internal/core/domain/process"
	pluginports "github.com/abhinandh-s/lazy.tmux/internal/core/ports/plugin"
	procp "github.com/abhinandh-s/lazy.tmux/internal/core/ports/process"
	"github.com/abhinandh-s/lazy.tmux/internal/infrastructure/logging"
)

// DefaultBinary is the version-control executable looked up on PATH
const DefaultBinary = "git"

// Options configures a Driver
type Options struct {
	// Binary is the git executable, DefaultBinary when empty
	Binary string
}

// Driver implements the Repository interface by spawning git
type Driver struct {
	runner procp.Runner
	logger *slog.Logger
	binary string
}

// NewDriver creates a git driver on top of a process runner
func NewDriver(runner procp.Runner, logger *slog.Logger, opts Options) *Driver {
	if logger == nil {
		logger = logging.Discard()
	}
	binary := opts.Binary
	if binary == "" {
		binary = DefaultBinary
	}
	return &Driver{
		runner: runner,
		logger: logger.With(slog.String("component", "git")),
		binary: binary,
	}
}

// CloneArgs returns the arguments for a shallow clone
func CloneArgs(target, remote, branch string) []string {
	args := []string{"clone", "--depth=1", "--quiet"}
	if branch != "" {
		args = append(args, "--branch", branch)
	}
	return append(args, "--", remote, target)
}

// PullArgs returns the arguments for a fast-forward-only pull
func PullArgs(target string) []string {
	return []string{"-C", target, "pull", "--ff-only", "--quiet"}
}

// FsckArgs returns the arguments for a full integrity check
func FsckArgs(target string) []string {
	return []string{"-C", target, "fsck", "--full"}
}

// Clone fetches remote into target. target must not exist.
func (d *Driver) Clone(ctx context.Context, target, remote, branch string) error {
	if _, err := os.Lstat(target); err == nil {
		return fmt.Errorf("clone target %s: %w", target, fs.ErrExist)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("clone target %s: %w", target, err)
	}

	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("%w: %s: %w", plugindomain.ErrCannotCreateDir, filepath.Dir(target), err)
	}

	d.logger.Info("cloning", slog.String("remote", remote), slog.String("target", target), slog.String("branch", branch))
	return d.run(ctx, CloneArgs(target, remote, branch))
}

// Pull fast-forwards the checkout at target; a diverged checkout fails
// rather than producing a merge commit.
func (d *Driver) Pull(ctx context.Context, target string) error {
	d.logger.Info("pulling", slog.String("target", target))
	return d.run(ctx, PullArgs(target))
}

// IntegrityCheck runs fsck on target; nil iff git exits zero
func (d *Driver) IntegrityCheck(ctx context.Context, target string) error {
	d.logger.Debug("checking integrity", slog.String("target", target))
	return d.run(ctx, FsckArgs(target))
}

func (d *Driver) run(ctx context.Context, args []string) error {
	cmd, err := process.NewCommand(d.binary, args...)
	if err != nil {
		return err
	}
	// Never block on credential prompts.
	cmd = cmd.WithEnv("GIT_TERMINAL_PROMPT", "0")

	if _, err = d.runner.Run(ctx, cmd); err != nil {
		return fmt.Errorf("git %s: %w", subcommand(args), err)
	}
	return nil
}

// subcommand names the git verb in args, skipping a leading -C <dir>
func subcommand(args []string) string {
	if len(args) >= 3 && args[0] == "-C" {
		return args[2]
	}
	if len(args) == 0 {
		return ""
	}
	return args[0]
}

var _ pluginports.Repository = (*Driver)(nil)
