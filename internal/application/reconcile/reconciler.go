package reconcile

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	plugindomain "github.com/abhinandh-s/lazy.tmux/internal/core/domain/plugin"
	pluginports "github.com/abhinandh-s/lazy.tmux/internal/core/ports/plugin"
	"github.com/abhinandh-s/lazy.tmux/internal/infrastructure/logging"
)

// Deps are the collaborators of a Reconciler
type Deps struct {
	Repository pluginports.Repository
	Inspector  pluginports.Inspector
	Locator    pluginports.Locator
	Tree       pluginports.Tree
	Sink       pluginports.Sink
	Logger     *slog.Logger
}

// Options tune a reconciliation pass
type Options struct {
	// Parallelism caps the worker pool; zero means runtime.NumCPU()
	Parallelism int

	// Timeout bounds each action; zero means no limit
	Timeout time.Duration
}

// Reconciler closes the gap between the declared set and the plugin tree
type Reconciler struct {
	repo      pluginports.Repository
	inspector pluginports.Inspector
	locator   pluginports.Locator
	tree      pluginports.Tree
	sink      pluginports.Sink
	logger    *slog.Logger
	opts      Options
}

// New creates a Reconciler
func New(deps Deps, opts Options) *Reconciler {
	logger := deps.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	return &Reconciler{
		repo:      deps.Repository,
		inspector: deps.Inspector,
		locator:   deps.Locator,
		tree:      deps.Tree,
		sink:      deps.Sink,
		logger:    logger.With(slog.String("component", "reconciler")),
		opts:      opts,
	}
}

// PoolSize returns the number of workers used for n actions
func (r *Reconciler) PoolSize(n int) int {
	p := r.opts.Parallelism
	if p <= 0 {
		p = runtime.NumCPU()
	}
	return max(1, min(n, p))
}

type target struct {
	decl     plugindomain.Declaration
	location string
}

// Reconcile inspects every declaration and runs the action planned for verb.
// A failing action never stops the others. Once ctx is cancelled, actions not
// yet started are skipped and running ones are allowed to finish.
//
// The returned error is reserved for problems that prevent planning at all;
// per-plugin failures live in the report.
func (r *Reconciler) Reconcile(ctx context.Context, verb plugindomain.Verb, set plugindomain.Set) (*plugindomain.Report, error) {
	decls := set.Declarations()
	targets := make([]target, len(decls))
	for i, d := range decls {
		loc, err := r.locator.Location(d)
		if err != nil {
			return nil, err
		}
		targets[i] = target{decl: d, location: loc}
	}

	r.logger.Debug("reconciling",
		slog.String("verb", verb.String()),
		slog.Int("plugins", len(targets)),
		slog.Int("workers", r.PoolSize(len(targets))))

	report := plugindomain.NewReport(verb, len(targets))
	r.fanOut(ctx, report, len(targets),
		func(ctx context.Context, i int) plugindomain.Outcome {
			return r.converge(ctx, verb, targets[i])
		},
		func(i int) plugindomain.Outcome {
			return cancelled(targets[i].decl.Slug(), plugindomain.ActionSkip)
		})

	report.Interrupted = ctx.Err() != nil
	return report, nil
}

// converge brings one location in line with its declaration
func (r *Reconciler) converge(ctx context.Context, verb plugindomain.Verb, t target) plugindomain.Outcome {
	o := plugindomain.Outcome{Slug: t.decl.Slug(), Action: plugindomain.ActionSkip}

	state, err := r.inspector.Inspect(ctx, t.location)
	if err != nil {
		o.Status = plugindomain.StatusFailed
		o.Err = fmt.Errorf("inspect: %w", err)
		return o
	}
	o.State = state
	o.Action = plugindomain.Plan(verb, state)

	logger := r.logger.With(
		slog.String("plugin", o.Slug),
		slog.String("state", state.String()),
		slog.String("action", o.Action.String()))
	logger.Debug("planned")

	if o.Action == plugindomain.ActionSkip {
		o.Status = plugindomain.StatusSkipped
		o.Because = plugindomain.SkipReason(state)
		return o
	}

	o.Status = plugindomain.StatusRunning
	r.sink.Emit(o)

	if err := r.apply(ctx, o.Action, t); err != nil {
		logger.Debug("action failed", slog.Any("error", err))
		o.Status = plugindomain.StatusFailed
		o.Err = err
		return o
	}

	o.Status = plugindomain.StatusSucceeded
	return o
}

func (r *Reconciler) apply(ctx context.Context, action plugindomain.ActionKind, t target) error {
	switch action {
	case plugindomain.ActionClone:
		return r.repo.Clone(ctx, t.location, t.decl.RemoteURL(), t.decl.Branch())
	case plugindomain.ActionPull:
		return r.repo.Pull(ctx, t.location)
	case plugindomain.ActionRecreate:
		if err := r.tree.Remove(t.location); err != nil {
			return err
		}
		return r.repo.Clone(ctx, t.location, t.decl.RemoteURL(), t.decl.Branch())
	default:
		return fmt.Errorf("no handler for action %s", action)
	}
}

// Clean removes every plugin-shaped directory under the data root that no
// declaration maps to. Owner directories left empty are removed afterwards.
func (r *Reconciler) Clean(ctx context.Context, set plugindomain.Set) (*plugindomain.Report, error) {
	installed, err := r.tree.Installed()
	if err != nil {
		return nil, err
	}

	var stale []plugindomain.Installed
	for _, in := range installed {
		if !set.ContainsSlug(in.Owner, in.Repo) {
			stale = append(stale, in)
		}
	}

	r.logger.Debug("cleaning",
		slog.Int("installed", len(installed)),
		slog.Int("undeclared", len(stale)))

	report := plugindomain.NewReport(plugindomain.VerbClean, len(stale))
	r.fanOut(ctx, report, len(stale),
		func(_ context.Context, i int) plugindomain.Outcome {
			o := plugindomain.Outcome{
				Slug:   stale[i].Slug(),
				Action: plugindomain.ActionRemove,
				Status: plugindomain.StatusRunning,
			}
			r.sink.Emit(o)

			if err := r.tree.Remove(stale[i].Path); err != nil {
				o.Status = plugindomain.StatusFailed
				o.Err = err
				return o
			}
			o.Status = plugindomain.StatusSucceeded
			return o
		},
		func(i int) plugindomain.Outcome {
			return cancelled(stale[i].Slug(), plugindomain.ActionRemove)
		})

	pruned := make(map[string]bool)
	for i, o := range report.Outcomes() {
		owner := filepath.Dir(stale[i].Path)
		if o.Status != plugindomain.StatusSucceeded || pruned[owner] {
			continue
		}
		pruned[owner] = true
		if err := r.tree.PruneOwner(stale[i].Path); err != nil {
			r.logger.Warn("owner directory left in place",
				slog.String("path", owner),
				slog.Any("error", err))
		}
	}

	report.Interrupted = ctx.Err() != nil
	return report, nil
}

// Entry is one line of a survey
type Entry struct {
	Declaration plugindomain.Declaration
	Location    string
	State       plugindomain.State
	Err         error
}

// Survey inspects every declaration without changing anything
func (r *Reconciler) Survey(ctx context.Context, set plugindomain.Set) ([]Entry, error) {
	decls := set.Declarations()
	entries := make([]Entry, len(decls))
	for i, d := range decls {
		loc, err := r.locator.Location(d)
		if err != nil {
			return nil, err
		}
		entries[i] = Entry{Declaration: d, Location: loc}
	}

	var g errgroup.Group
	g.SetLimit(r.PoolSize(len(entries)))
	for i := range entries {
		i := i
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				entries[i].Err = err
				return nil
			}
			entries[i].State, entries[i].Err = r.inspector.Inspect(ctx, entries[i].Location)
			return nil
		})
	}
	_ = g.Wait()

	return entries, ctx.Err()
}

// fanOut runs n tasks on the bounded pool and records each terminal outcome.
// A task that has not started when ctx is cancelled records skip(i) instead.
// Started tasks run on a context that ignores cancellation so child processes
// are never killed halfway through a clone.
func (r *Reconciler) fanOut(
	ctx context.Context,
	report *plugindomain.Report,
	n int,
	work func(ctx context.Context, i int) plugindomain.Outcome,
	skip func(i int) plugindomain.Outcome,
) {
	var g errgroup.Group
	g.SetLimit(r.PoolSize(n))

	for i := 0; i < n; i++ {
		i := i
		g.Go(func() error {
			var o plugindomain.Outcome
			if ctx.Err() != nil {
				o = skip(i)
			} else {
				actionCtx, cancel := r.actionContext(ctx)
				o = work(actionCtx, i)
				cancel()
			}
			report.Set(i, o)
			r.sink.Emit(o)
			return nil
		})
	}

	_ = g.Wait()
}

func (r *Reconciler) actionContext(ctx context.Context) (context.Context, context.CancelFunc) {
	detached := context.WithoutCancel(ctx)
	if r.opts.Timeout > 0 {
		return context.WithTimeout(detached, r.opts.Timeout)
	}
	return detached, func() {}
}

func cancelled(slug string, action plugindomain.ActionKind) plugindomain.Outcome {
	return plugindomain.Outcome{
		Slug:    slug,
		Action:  action,
		Status:  plugindomain.StatusSkipped,
		Because: plugindomain.BecauseCancelled,
	}
}
