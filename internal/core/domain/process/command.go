package process

import (
	"fmt"
	"maps"
	"slices"
	"strings"
)

// Command describes one child process invocation. The working directory is
// left empty to inherit the caller's.
type Command struct {
	executable string
	args       []string
	workingDir string
	env        map[string]string
}

// NewCommand creates a new Command value object
func NewCommand(executable string, args ...string) (Command, error) {
	if executable == "" {
		return Command{}, fmt.Errorf("executable cannot be empty")
	}

	return Command{
		executable: executable,
		args:       slices.Clone(args),
		env:        make(map[string]string),
	}, nil
}

// Executable returns the command executable
func (c Command) Executable() string {
	return c.executable
}

// Args returns a copy of the command arguments
func (c Command) Args() []string {
	return slices.Clone(c.args)
}

// WorkingDir returns the working directory for the command
func (c Command) WorkingDir() string {
	return c.workingDir
}

// Env returns a copy of the extra environment variables
func (c Command) Env() map[string]string {
	return maps.Clone(c.env)
}

// String returns a string representation of the command
func (c Command) String() string {
	if len(c.args) == 0 {
		return c.executable
	}
	return fmt.Sprintf("%s %s", c.executable, strings.Join(c.args, " "))
}

// WithEnv returns a new Command with an additional environment variable
func (c Command) WithEnv(key, value string) Command {
	env := maps.Clone(c.env)
	if env == nil {
		env = make(map[string]string)
	}
	env[key] = value

	return Command{
		executable: c.executable,
		args:       slices.Clone(c.args),
		workingDir: c.workingDir,
		env:        env,
	}
}

// WithWorkingDir returns a new Command with a different working directory
func (c Command) WithWorkingDir(workingDir string) Command {
	return Command{
		executable: c.executable,
		args:       slices.Clone(c.args),
		workingDir: workingDir,
		env:        c.Env(),
	}
}
