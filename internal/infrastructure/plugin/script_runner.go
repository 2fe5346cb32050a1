package plugininfra

import (
	"context"
	"path/filepath"

	"github.com/abhinandh-s/lazy.tmux/internal/core/domain/process"
	pluginports "github.com/abhinandh-s/lazy.tmux/internal/core/ports/plugin"
	procp "github.com/abhinandh-s/lazy.tmux/internal/core/ports/process"
)

// ManagerPathEnv tells entry scripts where sibling plugins live
const ManagerPathEnv = "TMUX_PLUGIN_MANAGER_PATH"

// ScriptRunner executes plugin entry scripts
type ScriptRunner struct {
	runner  procp.Runner
	locator pluginports.Locator
}

// NewScriptRunner creates a runner that exposes the locator's data root to
// scripts. A nil locator leaves the variable unset.
func NewScriptRunner(runner procp.Runner, locator pluginports.Locator) *ScriptRunner {
	return &ScriptRunner{runner: runner, locator: locator}
}

// RunScript runs path from its own directory with the inherited environment
// plus TMUX_PLUGIN_MANAGER_PATH, and waits for it.
func (r *ScriptRunner) RunScript(ctx context.Context, path string) error {
	cmd, err := process.NewCommand(path)
	if err != nil {
		return err
	}
	cmd = cmd.WithWorkingDir(filepath.Dir(path))
	if r.locator != nil {
		root, err := r.locator.DataRoot()
		if err != nil {
			return err
		}
		cmd = cmd.WithEnv(ManagerPathEnv, root+string(filepath.Separator))
	}

	_, err = r.runner.Run(ctx, cmd)
	return err
}

var _ pluginports.ScriptRunner = (*ScriptRunner)(nil)
