package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	plugindomain "github.com/abhinandh-s/lazy.tmux/internal/core/domain/plugin"
)

const examplePlugins = `
[[plugins]]
owner = "catppuccin"
repo  = "tmux"

[[plugins]]
owner  = "tmux-plugins"
repo   = "tmux-sensible"
branch = "master"

[[plugins]]
owner    = "someone"
repo     = "thing"
platform = "codeberg.org"
`

func TestParse_Example(t *testing.T) {
	set, err := Parse([]byte(examplePlugins))
	require.NoError(t, err)
	require.Equal(t, 3, set.Len())

	decls := set.Declarations()
	assert.Equal(t, "catppuccin/tmux", decls[0].Slug())
	assert.Equal(t, plugindomain.DefaultPlatform, decls[0].Platform())
	assert.Empty(t, decls[0].Branch())

	assert.Equal(t, "tmux-plugins/tmux-sensible", decls[1].Slug())
	assert.Equal(t, "master", decls[1].Branch())

	assert.Equal(t, "codeberg.org", decls[2].Platform())
	assert.Equal(t, "https://codeberg.org/someone/thing.git", decls[2].RemoteURL())
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr error
		errMsg  string
	}{
		{
			name:    "syntax error",
			input:   "[[plugins]\nowner = \"a\"",
			wantErr: plugindomain.ErrConfigMalformed,
		},
		{
			name:    "unknown field",
			input:   "[[plugins]]\nowner = \"a\"\nrepo = \"b\"\ntag = \"v1\"\n",
			wantErr: plugindomain.ErrConfigMalformed,
			errMsg:  "tag",
		},
		{
			name:    "unknown top-level key",
			input:   "theme = \"mocha\"\n",
			wantErr: plugindomain.ErrConfigMalformed,
			errMsg:  "theme",
		},
		{
			name:    "wrong type",
			input:   "[[plugins]]\nowner = 5\nrepo = \"b\"\n",
			wantErr: plugindomain.ErrConfigMalformed,
		},
		{
			name:    "missing repo",
			input:   "[[plugins]]\nowner = \"a\"\n",
			wantErr: plugindomain.ErrConfigInvalid,
			errMsg:  "plugins[0]",
		},
		{
			name:    "slash in owner",
			input:   "[[plugins]]\nowner = \"a/b\"\nrepo = \"c\"\n",
			wantErr: plugindomain.ErrConfigInvalid,
			errMsg:  "path separator",
		},
		{
			name:    "duplicate",
			input:   "[[plugins]]\nowner = \"a\"\nrepo = \"b\"\n[[plugins]]\nowner = \"a\"\nrepo = \"b\"\n",
			wantErr: plugindomain.ErrConfigInvalid,
			errMsg:  "declared twice",
		},
		{
			name:    "bad entry after good ones aborts the load",
			input:   "[[plugins]]\nowner = \"a\"\nrepo = \"b\"\n[[plugins]]\nowner = \"c\"\nrepo = \"d e\"\n",
			wantErr: plugindomain.ErrConfigInvalid,
			errMsg:  "plugins[1]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			set, err := Parse([]byte(tt.input))
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
			if tt.errMsg != "" {
				assert.Contains(t, err.Error(), tt.errMsg)
			}
			assert.True(t, set.IsEmpty())
		})
	}
}

func TestParse_EmptyFile(t *testing.T) {
	set, err := Parse(nil)
	require.NoError(t, err)
	assert.True(t, set.IsEmpty())
}

func TestLoader_Load(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "plugins.toml")
	require.NoError(t, os.WriteFile(path, []byte(examplePlugins), 0o644))

	set, err := NewLoader(nil).Load(path)
	require.NoError(t, err)
	assert.Equal(t, 3, set.Len())
}

func TestLoader_Load_Missing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plugins.toml")
	loader := NewLoader(nil)

	_, err := loader.Load(path)
	require.Error(t, err)
	assert.ErrorIs(t, err, plugindomain.ErrConfigMissing)
	assert.Contains(t, err.Error(), path)

	set, err := loader.LoadOptional(path)
	require.NoError(t, err)
	assert.True(t, set.IsEmpty())
}

func TestLoader_Load_Unreadable(t *testing.T) {
	dir := t.TempDir()

	// A directory cannot be read as a file on any platform
	_, err := NewLoader(nil).Load(dir)
	require.Error(t, err)
	assert.ErrorIs(t, err, plugindomain.ErrConfigUnreadable)

	if runtime.GOOS != "windows" && os.Geteuid() != 0 {
		path := filepath.Join(dir, "plugins.toml")
		require.NoError(t, os.WriteFile(path, []byte(examplePlugins), 0o000))
		_, err = NewLoader(nil).LoadOptional(path)
		assert.ErrorIs(t, err, plugindomain.ErrConfigUnreadable)
	}
}

func TestLoader_MalformedKeepsPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plugins.toml")
	require.NoError(t, os.WriteFile(path, []byte("[[plugins]\n"), 0o644))

	_, err := NewLoader(nil).LoadOptional(path)
	require.Error(t, err)
	assert.ErrorIs(t, err, plugindomain.ErrConfigMalformed)
	assert.Contains(t, err.Error(), path)
	assert.Contains(t, err.Error(), "line 1")
}
