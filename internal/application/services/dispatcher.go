package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/abhinandh-s/lazy.tmux/internal/application/reconcile"
	plugindomain "github.com/abhinandh-s/lazy.tmux/internal/core/domain/plugin"
	pluginports "github.com/abhinandh-s/lazy.tmux/internal/core/ports/plugin"
	"github.com/abhinandh-s/lazy.tmux/internal/infrastructure/logging"
)

// ConfigLoader reads the plugin declarations file
type ConfigLoader interface {
	// Load fails with ErrConfigMissing when path does not exist
	Load(path string) (plugindomain.Set, error)

	// LoadOptional treats a missing file as an empty set
	LoadOptional(path string) (plugindomain.Set, error)
}

// DispatcherDeps are the collaborators of a Dispatcher
type DispatcherDeps struct {
	Loader     ConfigLoader
	Reconciler *reconcile.Reconciler
	Locker     pluginports.Locker
	Locator    pluginports.Locator
	Discoverer pluginports.Discoverer
	Scripts    pluginports.ScriptRunner
	Sink       pluginports.Sink
	Logger     *slog.Logger
}

// Dispatcher implements the user-facing verbs. Environment and configuration
// errors are returned before any action runs; per-plugin failures are only
// visible in the returned report.
type Dispatcher struct {
	loader     ConfigLoader
	reconciler *reconcile.Reconciler
	locker     pluginports.Locker
	locator    pluginports.Locator
	discoverer pluginports.Discoverer
	scripts    pluginports.ScriptRunner
	sink       pluginports.Sink
	logger     *slog.Logger
}

// NewDispatcher creates a dispatcher
func NewDispatcher(deps DispatcherDeps) *Dispatcher {
	logger := deps.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	return &Dispatcher{
		loader:     deps.Loader,
		reconciler: deps.Reconciler,
		locker:     deps.Locker,
		locator:    deps.Locator,
		discoverer: deps.Discoverer,
		scripts:    deps.Scripts,
		sink:       deps.Sink,
		logger:     logger.With(slog.String("component", "dispatcher")),
	}
}

// Install clones every declared plugin that is missing or broken
func (d *Dispatcher) Install(ctx context.Context, configPath string) (*plugindomain.Report, error) {
	return d.converge(ctx, plugindomain.VerbInstall, configPath)
}

// Update fast-forwards healthy plugins and recreates the rest
func (d *Dispatcher) Update(ctx context.Context, configPath string) (*plugindomain.Report, error) {
	return d.converge(ctx, plugindomain.VerbUpdate, configPath)
}

func (d *Dispatcher) converge(ctx context.Context, verb plugindomain.Verb, configPath string) (*plugindomain.Report, error) {
	release, err := d.locker.Acquire()
	if err != nil {
		return nil, err
	}
	defer d.release(release)

	set, err := d.loader.Load(configPath)
	if err != nil {
		return nil, err
	}

	report, err := d.reconciler.Reconcile(ctx, verb, set)
	if err != nil {
		return nil, err
	}
	d.sink.Summary(report.Counts())
	return report, nil
}

// Clean removes plugin directories no declaration maps to. A missing
// configuration file counts as an empty set.
func (d *Dispatcher) Clean(ctx context.Context, configPath string) (*plugindomain.Report, error) {
	release, err := d.locker.Acquire()
	if err != nil {
		return nil, err
	}
	defer d.release(release)

	set, err := d.loader.LoadOptional(configPath)
	if err != nil {
		return nil, err
	}

	report, err := d.reconciler.Clean(ctx, set)
	if err != nil {
		return nil, err
	}
	d.sink.Summary(report.Counts())
	return report, nil
}

// Init installs, then runs every discovered entry script one after the
// other. Scripts only run when the install pass was complete and clean.
func (d *Dispatcher) Init(ctx context.Context, configPath string) (*plugindomain.Report, error) {
	release, err := d.locker.Acquire()
	if err != nil {
		return nil, err
	}
	defer d.release(release)

	set, err := d.loader.Load(configPath)
	if err != nil {
		return nil, err
	}

	report, err := d.reconciler.Reconcile(ctx, plugindomain.VerbInit, set)
	if err != nil {
		return nil, err
	}
	d.sink.Summary(report.Counts())

	if report.Interrupted || report.HasFailures() {
		d.logger.Info("entry scripts not run",
			slog.Bool("interrupted", report.Interrupted),
			slog.Int("failed", report.Counts().Failed))
		return report, nil
	}

	if err := d.source(ctx, set); err != nil {
		return nil, err
	}
	return report, nil
}

// source discovers and runs entry scripts in declared order. A failing
// script is reported and the rest still run.
func (d *Dispatcher) source(ctx context.Context, set plugindomain.Set) error {
	var locations []string
	for _, decl := range set.Declarations() {
		loc, err := d.locator.Location(decl)
		if err != nil {
			return err
		}
		locations = append(locations, loc)
	}

	scripts, err := d.discoverer.Discover(locations)
	if err != nil {
		d.sink.Warn("%v", err)
	}

	// Scripts configure the running tmux server; an interrupt after install
	// must not leave it half configured.
	scriptCtx := context.WithoutCancel(ctx)
	for _, script := range scripts {
		d.logger.Debug("running entry script", slog.String("path", script))
		if err := d.scripts.RunScript(scriptCtx, script); err != nil {
			d.logger.Warn("entry script failed", slog.String("path", script), slog.Any("error", err))
			d.sink.Warn("%s: %v", script, err)
		}
	}
	return nil
}

// List reports the installation state of every declaration. It is read-only
// and does not take the run lock.
func (d *Dispatcher) List(ctx context.Context, configPath string) ([]reconcile.Entry, error) {
	set, err := d.loader.LoadOptional(configPath)
	if err != nil {
		return nil, err
	}
	if set.IsEmpty() {
		d.sink.Notice("no plugins declared in %s", configPath)
		return nil, nil
	}

	entries, err := d.reconciler.Survey(ctx, set)
	if err != nil {
		return entries, err
	}

	for _, e := range entries {
		if e.Err != nil {
			d.sink.Warn("%s: %v", e.Declaration.Slug(), e.Err)
			continue
		}
		d.sink.Notice("%s", FormatEntry(e))
	}
	return entries, nil
}

// FormatEntry renders one list line: "owner/repo  state  platform[@branch]"
func FormatEntry(e reconcile.Entry) string {
	source := e.Declaration.Platform()
	if b := e.Declaration.Branch(); b != "" {
		source += "@" + b
	}
	return fmt.Sprintf("%-40s %-8s %s", e.Declaration.Slug(), e.State, source)
}

func (d *Dispatcher) release(release func() error) {
	if err := release(); err != nil {
		d.logger.Warn("releasing run lock", slog.Any("error", err))
	}
}
