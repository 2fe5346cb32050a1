package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"runtime/debug"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/abhinandh-s/lazy.tmux/internal/application/services"
	plugindomain "github.com/abhinandh-s/lazy.tmux/internal/core/domain/plugin"
	pluginports "github.com/abhinandh-s/lazy.tmux/internal/core/ports/plugin"
	"github.com/abhinandh-s/lazy.tmux/internal/infrastructure/config"
	"github.com/abhinandh-s/lazy.tmux/internal/infrastructure/logging"
	"github.com/abhinandh-s/lazy.tmux/internal/infrastructure/paths"
)

var (
	Version   = "dev"     // Overridden by ldflags
	BuildTime = "unknown" // Overridden by ldflags
)

// Runtime is everything resolved before a verb runs
type Runtime struct {
	Settings config.Settings
	Resolver *paths.Resolver
	Sink     pluginports.Sink
	Logger   *slog.Logger
}

// CLIContainer holds the dependencies shared by every command
type CLIContainer struct {
	Viper  *viper.Viper
	Out    io.Writer
	ErrOut io.Writer

	// Wire builds the dispatcher for one run
	Wire func(rt Runtime) *services.Dispatcher

	// BaseDirs overrides base directory discovery, used by tests
	BaseDirs func() (paths.BaseDirs, error)
}

// session is filled in by the root PersistentPreRunE
type session struct {
	configFlag string
	settings   config.Settings
	resolver   *paths.Resolver
	logger     *slog.Logger
}

// NewRootCommand creates the lazy-tmux command tree
func NewRootCommand(container *CLIContainer) *cobra.Command {
	s := &session{}

	rootCmd := &cobra.Command{
		Use:   "lazy-tmux",
		Short: "Declarative tmux plugin manager",
		Long: `lazy-tmux keeps the tmux plugins listed in plugins.toml installed,
up to date and loaded.

Plugins are declared in <config>/tmux/plugins.toml and cloned to
<data>/tmux/plugins/<owner>/<repo>.`,
		Version:       Version,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return s.prepare(container)
		},
	}

	rootCmd.SetOut(container.Out)
	rootCmd.SetErr(container.ErrOut)
	rootCmd.SetVersionTemplate(fmt.Sprintf("{{.Name}} version {{.Version}}\nBuild time: %s\nGo version: %s\nPlatform: %s/%s\n",
		BuildTime, goVersion(), runtime.GOOS, runtime.GOARCH))
	rootCmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError{err}
	})

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&s.configFlag, "config", "c", "", "plugins file (default <config>/tmux/plugins.toml)")
	flags.String("loglevel", "warn", "log level: debug, info, warn, error")
	flags.String("logformat", "text", "log format: text, json")
	flags.IntP("jobs", "j", 0, "parallel actions (default: available CPUs, env LAZY_TMUX_PARALLELISM)")
	flags.Int("timeout", 0, "per-action timeout in seconds (env LAZY_TMUX_TIMEOUT_SECS)")
	flags.Bool("progress", false, "show a live progress view when stdout is a terminal")

	_ = container.Viper.BindPFlag(config.KeyLogLevel, flags.Lookup("loglevel"))
	_ = container.Viper.BindPFlag(config.KeyLogFormat, flags.Lookup("logformat"))
	_ = container.Viper.BindPFlag(config.KeyParallelism, flags.Lookup("jobs"))
	_ = container.Viper.BindPFlag(config.KeyTimeoutSecs, flags.Lookup("timeout"))
	_ = container.Viper.BindPFlag(config.KeyProgress, flags.Lookup("progress"))

	rootCmd.AddCommand(NewInstallCommand(container, s))
	rootCmd.AddCommand(NewUpdateCommand(container, s))
	rootCmd.AddCommand(NewCleanCommand(container, s))
	rootCmd.AddCommand(NewInitCommand(container, s))
	rootCmd.AddCommand(NewListCommand(container, s))

	return rootCmd
}

// prepare resolves base directories, the optional env file, runtime
// settings and the logger, in that order
func (s *session) prepare(container *CLIContainer) error {
	baseDirs := paths.FromEnvironment
	if container.BaseDirs != nil {
		baseDirs = container.BaseDirs
	}
	base, err := baseDirs()
	if err != nil {
		return err
	}
	s.resolver = paths.NewResolver(base)

	envFile, err := s.resolver.EnvFile()
	if err != nil {
		return err
	}
	if err := config.LoadEnvFile(envFile); err != nil {
		return err
	}

	s.settings, err = config.LoadSettings(container.Viper)
	if err != nil {
		return err
	}

	s.logger, err = logging.NewLogger(container.ErrOut, s.settings.LogLevel, s.settings.LogFormat)
	if err != nil {
		return err
	}
	s.logger.Debug("settings resolved",
		slog.Int("parallelism", s.settings.Parallelism),
		slog.Duration("timeout", s.settings.Timeout),
		slog.String("git", s.settings.GitBinary))
	return nil
}

// configPath returns the -c flag or the default plugins file
func (s *session) configPath() (string, error) {
	if s.configFlag != "" {
		return s.configFlag, nil
	}
	return s.resolver.ConfigFile()
}

// runtime wires a dispatcher with the sink for verb. The progress view is
// only used for verbs that run actions.
func (s *session) runtime(container *CLIContainer, verb plugindomain.Verb) (*services.Dispatcher, func()) {
	var sink pluginports.Sink = logging.NewConsoleSink(container.Out, container.ErrOut)
	closeSink := func() {}
	if s.settings.Progress && verb != plugindomain.VerbList && isTerminal(container.Out) {
		progress := NewProgressSink(verb, container.Out, container.ErrOut)
		sink, closeSink = progress, progress.Close
	}

	dispatcher := container.Wire(Runtime{
		Settings: s.settings,
		Resolver: s.resolver,
		Sink:     sink,
		Logger:   s.logger,
	})
	return dispatcher, closeSink
}

// goVersion returns the Go version used to build the binary
func goVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok {
		return info.GoVersion
	}
	return "unknown"
}

// Execute runs the command tree with args and returns the process exit code
func Execute(ctx context.Context, container *CLIContainer, args []string) int {
	rootCmd := NewRootCommand(container)
	rootCmd.SetArgs(args)

	err := rootCmd.ExecuteContext(ctx)
	if err == nil {
		return ExitOK
	}

	if !errors.Is(err, errActionsFailed) {
		fmt.Fprintf(container.ErrOut, "Error: %v\n", err)
	}
	var usage usageError
	if errors.As(err, &usage) {
		fmt.Fprintf(container.ErrOut, "Run '%s --help' for usage.\n", rootCmd.CommandPath())
	}
	return ExitCode(err)
}
