package git

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	plugindomain "github.com/abhinandh-s/lazy.tmux/internal/core/domain/plugin"
	"github.com/abhinandh-s/lazy.tmux/internal/core/domain/process"
	procp "github.com/abhinandh-s/lazy.tmux/internal/core/ports/process"
	"github.com/abhinandh-s/lazy.tmux/internal/infrastructure/logging"
	infraprocess "github.com/abhinandh-s/lazy.tmux/internal/infrastructure/process"
)

// recordingRunner captures commands instead of running them
type recordingRunner struct {
	mu       sync.Mutex
	commands []process.Command
	err      error
}

func (r *recordingRunner) Run(_ context.Context, cmd process.Command) (procp.Result, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.commands = append(r.commands, cmd)
	return procp.Result{}, r.err
}

func TestArgs(t *testing.T) {
	tests := []struct {
		name string
		got  []string
		want []string
	}{
		{
			name: "clone default branch",
			got:  CloneArgs("/data/a/b", "https://github.com/a/b.git", ""),
			want: []string{"clone", "--depth=1", "--quiet", "--", "https://github.com/a/b.git", "/data/a/b"},
		},
		{
			name: "clone named branch",
			got:  CloneArgs("/data/a/b", "https://github.com/a/b.git", "master"),
			want: []string{"clone", "--depth=1", "--quiet", "--branch", "master", "--", "https://github.com/a/b.git", "/data/a/b"},
		},
		{
			name: "pull",
			got:  PullArgs("/data/a/b"),
			want: []string{"-C", "/data/a/b", "pull", "--ff-only", "--quiet"},
		},
		{
			name: "fsck",
			got:  FsckArgs("/data/a/b"),
			want: []string{"-C", "/data/a/b", "fsck", "--full"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.got)
		})
	}
}

func TestDriver_Clone(t *testing.T) {
	runner := &recordingRunner{}
	d := NewDriver(runner, nil, Options{Binary: "/opt/git"})
	target := filepath.Join(t.TempDir(), "owner", "repo")

	err := d.Clone(context.Background(), target, "https://github.com/owner/repo.git", "main")
	require.NoError(t, err)

	require.Len(t, runner.commands, 1)
	cmd := runner.commands[0]
	assert.Equal(t, "/opt/git", cmd.Executable())
	assert.Equal(t, CloneArgs(target, "https://github.com/owner/repo.git", "main"), cmd.Args())
	assert.Equal(t, "0", cmd.Env()["GIT_TERMINAL_PROMPT"])
	assert.DirExists(t, filepath.Dir(target), "parent is created before cloning")
}

func TestDriver_Clone_ExistingTargetNeverSpawns(t *testing.T) {
	runner := &recordingRunner{}
	d := NewDriver(runner, nil, Options{})
	target := t.TempDir()

	err := d.Clone(context.Background(), target, "https://github.com/owner/repo.git", "")
	require.Error(t, err)
	assert.ErrorIs(t, err, fs.ErrExist)
	assert.Empty(t, runner.commands)
}

func TestDriver_PullAndIntegrityCheck(t *testing.T) {
	runner := &recordingRunner{}
	d := NewDriver(runner, nil, Options{})

	require.NoError(t, d.Pull(context.Background(), "/p/a/b"))
	require.NoError(t, d.IntegrityCheck(context.Background(), "/p/a/b"))

	require.Len(t, runner.commands, 2)
	assert.Equal(t, DefaultBinary, runner.commands[0].Executable())
	assert.Equal(t, PullArgs("/p/a/b"), runner.commands[0].Args())
	assert.Equal(t, FsckArgs("/p/a/b"), runner.commands[1].Args())
	for _, c := range runner.commands {
		assert.Equal(t, "0", c.Env()["GIT_TERMINAL_PROMPT"])
	}
}

func TestDriver_PropagatesRunnerErrors(t *testing.T) {
	failure := &infraprocess.ExitError{Command: "git pull", Exit: 1, Stderr: "fatal: Not possible to fast-forward, aborting."}
	d := NewDriver(&recordingRunner{err: failure}, nil, Options{})

	err := d.Pull(context.Background(), "/p/a/b")
	require.Error(t, err)
	assert.ErrorIs(t, err, plugindomain.ErrChildNonZero)
	assert.Contains(t, err.Error(), "fast-forward")
	assert.True(t, strings.HasPrefix(err.Error(), "git pull: "), err.Error())
}

func TestDriver_DiagnosticKeepsChildMessage(t *testing.T) {
	target := "/home/user/" + strings.Repeat("very-long-directory-name/", 12) + "tmux-sensible"
	failure := &infraprocess.ExitError{
		Command: "git clone --depth=1 --quiet -- https://github.com/tmux-plugins/tmux-sensible " + target,
		Exit:    128,
		Stderr:  "fatal: repository not found\n",
	}
	d := NewDriver(&recordingRunner{err: failure}, nil, Options{})

	err := d.Clone(context.Background(), filepath.Join(t.TempDir(), "p"), "https://github.com/tmux-plugins/tmux-sensible", "")
	require.Error(t, err)

	msg := logging.Diagnostic(err)
	assert.Equal(t, "git clone: exit status 128: fatal: repository not found", msg)
	assert.LessOrEqual(t, len([]rune(msg)), logging.MaxDiagnosticWidth)
}

// writeFakeGit installs a shell script named git that logs its arguments and
// environment, then behaves according to FAKE_GIT_MODE
func writeFakeGit(t *testing.T) (binary, logFile string) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake git is a shell script")
	}
	dir := t.TempDir()
	logFile = filepath.Join(dir, "calls.log")
	binary = filepath.Join(dir, "git")
	script := `#!/bin/sh
echo "$* prompt=$GIT_TERMINAL_PROMPT" >> "` + logFile + `"
case "$1" in
  clone)
    for last; do :; done
    mkdir -p "$last/.git"
    ;;
  -C)
    if [ "$3" = fsck ] && [ -f "$2/.git/corrupt" ]; then
      echo "error: object file is empty" >&2
      exit 1
    fi
    ;;
esac
exit 0
`
	require.NoError(t, os.WriteFile(binary, []byte(script), 0o755))
	return binary, logFile
}

func TestDriver_WithExecutor_FakeGit(t *testing.T) {
	binary, logFile := writeFakeGit(t)
	d := NewDriver(infraprocess.NewExecutor(nil), nil, Options{Binary: binary})
	ctx := context.Background()
	target := filepath.Join(t.TempDir(), "catppuccin", "tmux")

	require.NoError(t, d.Clone(ctx, target, "https://github.com/catppuccin/tmux.git", ""))
	assert.DirExists(t, filepath.Join(target, ".git"))
	require.NoError(t, d.IntegrityCheck(ctx, target))

	require.NoError(t, os.WriteFile(filepath.Join(target, ".git", "corrupt"), nil, 0o644))
	err := d.IntegrityCheck(ctx, target)
	require.Error(t, err)
	assert.True(t, errors.Is(err, plugindomain.ErrChildNonZero))
	assert.Contains(t, err.Error(), "object file is empty")

	calls, err := os.ReadFile(logFile)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(calls)), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "clone --depth=1 --quiet -- https://github.com/catppuccin/tmux.git"))
	for _, l := range lines {
		assert.True(t, strings.HasSuffix(l, "prompt=0"), l)
	}
}
