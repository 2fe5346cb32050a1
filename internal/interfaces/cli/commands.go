package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/abhinandh-s/lazy.tmux/internal/application/services"
	plugindomain "github.com/abhinandh-s/lazy.tmux/internal/core/domain/plugin"
)

type verbFunc func(d *services.Dispatcher, ctx context.Context, configPath string) (*plugindomain.Report, error)

// NewInstallCommand creates the install command
func NewInstallCommand(container *CLIContainer, s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "install",
		Short: "Install declared plugins that are missing or broken",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVerb(cmd, container, s, plugindomain.VerbInstall, (*services.Dispatcher).Install)
		},
	}
}

// NewUpdateCommand creates the update command
func NewUpdateCommand(container *CLIContainer, s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "update",
		Short: "Fast-forward installed plugins and reinstall broken ones",
		Long: `Update pulls every healthy plugin with --ff-only, so a checkout that has
diverged from its remote fails instead of getting a merge commit. Shallow and
broken checkouts are removed and cloned again.`,
		Args: noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVerb(cmd, container, s, plugindomain.VerbUpdate, (*services.Dispatcher).Update)
		},
	}
}

// NewCleanCommand creates the clean command
func NewCleanCommand(container *CLIContainer, s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "clean",
		Short: "Remove plugin directories that are no longer declared",
		Long: `Clean removes every <owner>/<repo> directory under the data root that no
entry in plugins.toml maps to. Hidden entries and names that could not come
from a declaration are left alone. A missing plugins.toml counts as empty.`,
		Args: noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVerb(cmd, container, s, plugindomain.VerbClean, (*services.Dispatcher).Clean)
		},
	}
}

// NewInitCommand creates the init command, meant for tmux.conf:
//
//	run-shell "lazy-tmux init"
func NewInitCommand(container *CLIContainer, s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Install missing plugins, then run their *.tmux entry scripts",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVerb(cmd, container, s, plugindomain.VerbInit, (*services.Dispatcher).Init)
		},
	}
}

// NewListCommand creates the list command
func NewListCommand(container *CLIContainer, s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Show every declared plugin and its installation state",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath, err := s.configPath()
			if err != nil {
				return err
			}
			dispatcher, closeSink := s.runtime(container, plugindomain.VerbList)
			defer closeSink()

			entries, err := dispatcher.List(cmd.Context(), configPath)
			if err != nil {
				return err
			}
			for _, e := range entries {
				if e.Err != nil {
					return errActionsFailed
				}
			}
			return nil
		},
	}
}

func runVerb(cmd *cobra.Command, container *CLIContainer, s *session, verb plugindomain.Verb, run verbFunc) error {
	configPath, err := s.configPath()
	if err != nil {
		return err
	}

	dispatcher, closeSink := s.runtime(container, verb)
	defer closeSink()

	report, err := run(dispatcher, cmd.Context(), configPath)
	if err != nil {
		return err
	}
	return reportError(report)
}

func noArgs(cmd *cobra.Command, args []string) error {
	if err := cobra.NoArgs(cmd, args); err != nil {
		return usageError{err}
	}
	return nil
}
