package plugininfra

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	pluginports "github.com/abhinandh-s/lazy.tmux/internal/core/ports/plugin"
)

// EntryScriptExt is the extension of plugin entry scripts
const EntryScriptExt = ".tmux"

// Discoverer walks plugin locations for entry scripts
type Discoverer struct{}

// NewDiscoverer creates a new entry script discoverer
func NewDiscoverer() *Discoverer {
	return &Discoverer{}
}

// Discover returns every *.tmux file under the given locations. Locations
// are visited in the given order and directory entries lexicographically.
// Hidden entries are skipped, symlinks are followed, and a directory whose
// canonical path was already visited is not entered again. Missing
// locations are ignored. Unreadable subtrees are skipped and reported in
// the returned error alongside the scripts that were found.
func (d *Discoverer) Discover(locations []string) ([]string, error) {
	var (
		scripts []string
		errs    []error
	)

	for _, location := range locations {
		if _, err := os.Stat(location); errors.Is(err, fs.ErrNotExist) {
			continue
		}

		w := &walker{visited: make(map[string]bool)}
		w.walk(location)

		scripts = append(scripts, w.scripts...)
		errs = append(errs, w.errs...)
	}

	return scripts, errors.Join(errs...)
}

type walker struct {
	visited map[string]bool
	scripts []string
	errs    []error
}

func (w *walker) walk(dir string) {
	canonical, err := filepath.EvalSymlinks(dir)
	if err != nil {
		w.errs = append(w.errs, fmt.Errorf("resolve %s: %w", dir, err))
		return
	}
	if canonical, err = filepath.Abs(canonical); err != nil {
		w.errs = append(w.errs, err)
		return
	}
	if w.visited[canonical] {
		return
	}
	w.visited[canonical] = true

	// ReadDir returns entries sorted by filename.
	entries, err := os.ReadDir(dir)
	if err != nil {
		w.errs = append(w.errs, fmt.Errorf("read %s: %w", dir, err))
		return
	}

	for _, entry := range entries {
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}
		path := filepath.Join(dir, name)

		mode := entry.Type()
		if mode&fs.ModeSymlink != 0 {
			info, err := os.Stat(path)
			if err != nil {
				// dangling link
				continue
			}
			mode = info.Mode().Type()
		}

		switch {
		case mode.IsDir():
			w.walk(path)
		case mode.IsRegular() && filepath.Ext(name) == EntryScriptExt:
			w.scripts = append(w.scripts, path)
		}
	}
}

var _ pluginports.Discoverer = (*Discoverer)(nil)
