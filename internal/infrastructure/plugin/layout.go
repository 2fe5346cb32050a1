package plugininfra

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	plugindomain "github.com/abhinandh-s/lazy.tmux/internal/core/domain/plugin"
	pluginports "github.com/abhinandh-s/lazy.tmux/internal/core/ports/plugin"
)

// ScanDataRoot lists every <owner>/<repo> directory under root, sorted.
// Hidden entries, files, symlinks, and names that could never come from a
// declaration are left out, so callers never touch them.
func ScanDataRoot(root string) ([]plugindomain.Installed, error) {
	owners, err := os.ReadDir(root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read data root %s: %w", root, err)
	}

	var dirs []plugindomain.Installed
	for _, owner := range owners {
		if !isPluginShaped(owner) {
			continue
		}

		ownerPath := filepath.Join(root, owner.Name())
		repos, err := os.ReadDir(ownerPath)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", ownerPath, err)
		}

		for _, repo := range repos {
			if !isPluginShaped(repo) {
				continue
			}
			dirs = append(dirs, plugindomain.Installed{
				Owner: owner.Name(),
				Repo:  repo.Name(),
				Path:  filepath.Join(ownerPath, repo.Name()),
			})
		}
	}

	return dirs, nil
}

func isPluginShaped(entry os.DirEntry) bool {
	name := entry.Name()
	return entry.IsDir() && !strings.HasPrefix(name, ".") && plugindomain.ValidSegment(name)
}

// Tree implements the on-disk plugin tree port over a locator's data root
type Tree struct {
	locator pluginports.Locator
}

// NewTree creates a tree rooted at locator's data root
func NewTree(locator pluginports.Locator) *Tree {
	return &Tree{locator: locator}
}

// Installed lists every plugin-shaped directory under the data root
func (t *Tree) Installed() ([]plugindomain.Installed, error) {
	root, err := t.locator.DataRoot()
	if err != nil {
		return nil, err
	}
	return ScanDataRoot(root)
}

// Remove deletes location recursively; a missing location is not an error
func (t *Tree) Remove(location string) error {
	if err := os.RemoveAll(location); err != nil {
		return fmt.Errorf("remove %s: %w", location, err)
	}
	return nil
}

// PruneOwner removes the owner directory of location when it has no
// entries left. Anything still inside keeps it in place.
func (t *Tree) PruneOwner(location string) error {
	owner := filepath.Dir(location)
	entries, err := os.ReadDir(owner)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	if len(entries) > 0 {
		return nil
	}
	if err := os.Remove(owner); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

var _ pluginports.Tree = (*Tree)(nil)
