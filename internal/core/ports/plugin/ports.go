package pluginports

import (
	"context"

	plugindomain "github.com/abhinandh-s/lazy.tmux/internal/core/domain/plugin"
)

// Repository drives the external version-control binary
type Repository interface {
	// Clone fetches remote into target, which must not exist yet.
	// An empty branch selects the remote default.
	Clone(ctx context.Context, target, remote, branch string) error

	// Pull fast-forwards the checkout at target
	Pull(ctx context.Context, target string) error

	IntegrityChecker
}

// IntegrityChecker verifies an existing checkout
type IntegrityChecker interface {
	// IntegrityCheck returns nil iff the checkout at target is intact
	IntegrityCheck(ctx context.Context, target string) error
}

// Inspector derives the installation state of a location
type Inspector interface {
	Inspect(ctx context.Context, location string) (plugindomain.State, error)
}

// Locator maps declarations to on-disk locations
type Locator interface {
	// DataRoot returns the directory holding every plugin location,
	// creating it when needed
	DataRoot() (string, error)

	// Location returns <data_root>/<owner>/<repo>
	Location(decl plugindomain.Declaration) (string, error)
}

// Tree is the on-disk plugin tree under the data root
type Tree interface {
	// Installed lists every <owner>/<repo> shaped directory
	Installed() ([]plugindomain.Installed, error)

	// Remove deletes a plugin location recursively
	Remove(location string) error

	// PruneOwner deletes the owner directory of location once it is empty
	PruneOwner(location string) error
}

// Sink is the human-readable status surface. Implementations must be safe
// for concurrent use and must never interleave two lines.
type Sink interface {
	// Emit reports a transition of one action
	Emit(outcome plugindomain.Outcome)

	// Notice prints a free-form informational line
	Notice(format string, args ...any)

	// Warn prints a non-fatal problem on the error stream
	Warn(format string, args ...any)

	// Summary prints the final tally
	Summary(counts plugindomain.Counts)
}

// Discoverer finds entry scripts inside installed plugin locations
type Discoverer interface {
	Discover(locations []string) ([]string, error)
}

// ScriptRunner launches one entry script
type ScriptRunner interface {
	RunScript(ctx context.Context, path string) error
}

// Locker guards the data root against a concurrent run
type Locker interface {
	// Acquire takes the run lock without waiting; release drops it
	Acquire() (release func() error, err error)
}
