package di

import (
	"io"

	"github.com/spf13/viper"

	"github.com/abhinandh-s/lazy.tmux/internal/application/reconcile"
	"github.com/abhinandh-s/lazy.tmux/internal/application/services"
	"github.com/abhinandh-s/lazy.tmux/internal/infrastructure/config"
	"github.com/abhinandh-s/lazy.tmux/internal/infrastructure/git"
	"github.com/abhinandh-s/lazy.tmux/internal/infrastructure/lock"
	plugininfra "github.com/abhinandh-s/lazy.tmux/internal/infrastructure/plugin"
	"github.com/abhinandh-s/lazy.tmux/internal/infrastructure/process"
	"github.com/abhinandh-s/lazy.tmux/internal/interfaces/cli"
)

// Container holds application dependencies. Everything that depends on flags
// or the environment is built per run by Wire.
type Container struct {
	Viper *viper.Viper

	// CLI
	CLIContainer *cli.CLIContainer
}

// NewContainer creates the dependency injection container
func NewContainer(out, errOut io.Writer) *Container {
	c := &Container{Viper: config.NewViper()}
	c.CLIContainer = &cli.CLIContainer{
		Viper:  c.Viper,
		Out:    out,
		ErrOut: errOut,
		Wire:   c.Wire,
	}
	return c
}

// Wire builds the dispatcher and everything below it for one run
func (c *Container) Wire(rt cli.Runtime) *services.Dispatcher {
	executor := process.NewExecutor(rt.Logger)
	driver := git.NewDriver(executor, rt.Logger, git.Options{Binary: rt.Settings.GitBinary})

	reconciler := reconcile.New(reconcile.Deps{
		Repository: driver,
		Inspector:  plugininfra.NewInspector(driver, rt.Logger),
		Locator:    rt.Resolver,
		Tree:       plugininfra.NewTree(rt.Resolver),
		Sink:       rt.Sink,
		Logger:     rt.Logger,
	}, reconcile.Options{
		Parallelism: rt.Settings.Parallelism,
		Timeout:     rt.Settings.Timeout,
	})

	return services.NewDispatcher(services.DispatcherDeps{
		Loader:     config.NewLoader(rt.Logger),
		Reconciler: reconciler,
		Locker:     lock.NewFileLocker(rt.Resolver),
		Locator:    rt.Resolver,
		Discoverer: plugininfra.NewDiscoverer(),
		Scripts:    plugininfra.NewScriptRunner(executor, rt.Resolver),
		Sink:       rt.Sink,
		Logger:     rt.Logger,
	})
}

// GetCLIContainer returns the CLI container for command execution
func (c *Container) GetCLIContainer() *cli.CLIContainer {
	return c.CLIContainer
}
