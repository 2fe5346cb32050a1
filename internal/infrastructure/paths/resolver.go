package paths

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"

	plugindomain "github.com/abhinandh-s/lazy.tmux/internal/core/domain/plugin"
	pluginports "github.com/abhinandh-s/lazy.tmux/internal/core/ports/plugin"
)

const (
	appDir         = "tmux"
	pluginsDir     = "plugins"
	configFileName = "plugins.toml"
	envFileName    = "lazy-tmux.env"
	lockFileName   = ".lock"
)

// BaseDirs are the user's standard base directories
type BaseDirs struct {
	ConfigHome string
	DataHome   string
}

// FromEnvironment reads the base directories from the XDG environment
// (or the platform equivalent)
func FromEnvironment() (BaseDirs, error) {
	xdg.Reload()
	base := BaseDirs{ConfigHome: xdg.ConfigHome, DataHome: xdg.DataHome}
	if err := base.validate(); err != nil {
		return BaseDirs{}, err
	}
	return base, nil
}

func (b BaseDirs) validate() error {
	if b.ConfigHome == "" || !filepath.IsAbs(b.ConfigHome) {
		return fmt.Errorf("%w: config home %q", plugindomain.ErrMissingBaseDir, b.ConfigHome)
	}
	if b.DataHome == "" || !filepath.IsAbs(b.DataHome) {
		return fmt.Errorf("%w: data home %q", plugindomain.ErrMissingBaseDir, b.DataHome)
	}
	return nil
}

// Resolver computes the canonical locations used by a run
type Resolver struct {
	base BaseDirs
}

// NewResolver creates a resolver over the given base directories
func NewResolver(base BaseDirs) *Resolver {
	return &Resolver{base: base}
}

// ConfigFile returns <config_home>/tmux/plugins.toml. The file is never created.
func (r *Resolver) ConfigFile() (string, error) {
	if err := r.base.validate(); err != nil {
		return "", err
	}
	return filepath.Join(r.base.ConfigHome, appDir, configFileName), nil
}

// EnvFile returns <config_home>/tmux/lazy-tmux.env
func (r *Resolver) EnvFile() (string, error) {
	if err := r.base.validate(); err != nil {
		return "", err
	}
	return filepath.Join(r.base.ConfigHome, appDir, envFileName), nil
}

// DataRoot returns <data_home>/tmux/plugins, creating it (and its parent)
// with mode 0755 when missing
func (r *Resolver) DataRoot() (string, error) {
	if err := r.base.validate(); err != nil {
		return "", err
	}
	root := filepath.Join(r.base.DataHome, appDir, pluginsDir)
	if err := os.MkdirAll(root, 0o755); err != nil {
		return "", fmt.Errorf("%w: %s: %w", plugindomain.ErrCannotCreateDir, root, err)
	}
	return root, nil
}

// LockFile returns <data_root>/.lock
func (r *Resolver) LockFile() (string, error) {
	root, err := r.DataRoot()
	if err != nil {
		return "", err
	}
	return filepath.Join(root, lockFileName), nil
}

// Location returns <data_root>/<owner>/<repo>
func (r *Resolver) Location(decl plugindomain.Declaration) (string, error) {
	root, err := r.DataRoot()
	if err != nil {
		return "", err
	}
	return filepath.Join(root, decl.Owner(), decl.Repo()), nil
}

var _ pluginports.Locator = (*Resolver)(nil)
