package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/abhinandh-s/lazy.tmux/internal/interfaces/cli"
	"github.com/abhinandh-s/lazy.tmux/internal/interfaces/di"
)

func main() {
	container := di.NewContainer(os.Stdout, os.Stderr)

	// The first signal cancels the run: actions not yet started are skipped
	// and running git children are left to finish. A second one is fatal.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	go func() {
		<-ctx.Done()
		stop()
	}()

	code := cli.Execute(ctx, container.GetCLIContainer(), os.Args[1:])
	stop()
	os.Exit(code)
}
