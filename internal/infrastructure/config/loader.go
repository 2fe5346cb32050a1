package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"

	plugindomain "github.com/abhinandh-s/lazy.tmux/internal/core/domain/plugin"
	"github.com/abhinandh-s/lazy.tmux/internal/infrastructure/logging"
)

// pluginsFile mirrors plugins.toml
type pluginsFile struct {
	Plugins []pluginEntry `toml:"plugins"`
}

type pluginEntry struct {
	Owner    string `toml:"owner"`
	Repo     string `toml:"repo"`
	Platform string `toml:"platform"`
	Branch   string `toml:"branch"`
}

// Loader reads the declarative plugin set
type Loader struct {
	logger *slog.Logger
}

// NewLoader creates a new configuration loader
func NewLoader(logger *slog.Logger) *Loader {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Loader{logger: logger.With(slog.String("component", "config"))}
}

// Load parses path into a plugin set in file order. A single bad entry
// aborts the whole load.
func (l *Loader) Load(path string) (plugindomain.Set, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return plugindomain.Set{}, fmt.Errorf("%w: %s", plugindomain.ErrConfigMissing, path)
		}
		return plugindomain.Set{}, fmt.Errorf("%w: %s: %w", plugindomain.ErrConfigUnreadable, path, err)
	}

	set, err := Parse(data)
	if err != nil {
		return plugindomain.Set{}, fmt.Errorf("%s: %w", path, err)
	}

	l.logger.Debug("configuration loaded", slog.String("path", path), slog.Int("plugins", set.Len()))
	return set, nil
}

// LoadOptional is Load with a missing file treated as an empty set. Used by
// the commands that never install anything.
func (l *Loader) LoadOptional(path string) (plugindomain.Set, error) {
	set, err := l.Load(path)
	if errors.Is(err, plugindomain.ErrConfigMissing) {
		l.logger.Info("no configuration file, using empty plugin set", slog.String("path", path))
		return plugindomain.Set{}, nil
	}
	return set, err
}

// Parse decodes plugins.toml content. Unknown keys are rejected.
func Parse(data []byte) (plugindomain.Set, error) {
	var file pluginsFile

	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&file); err != nil {
		return plugindomain.Set{}, fmt.Errorf("%w: %s", plugindomain.ErrConfigMalformed, describeDecodeError(err))
	}

	decls := make([]plugindomain.Declaration, 0, len(file.Plugins))
	for i, entry := range file.Plugins {
		decl, err := plugindomain.NewDeclaration(entry.Owner, entry.Repo, entry.Platform, entry.Branch)
		if err != nil {
			return plugindomain.Set{}, fmt.Errorf("plugins[%d]: %w", i, err)
		}
		decls = append(decls, decl)
	}

	return plugindomain.NewSet(decls...)
}

// describeDecodeError keeps the parser diagnostic, position included
func describeDecodeError(err error) string {
	var decodeErr *toml.DecodeError
	if errors.As(err, &decodeErr) {
		row, col := decodeErr.Position()
		return fmt.Sprintf("line %d, column %d: %s", row, col, decodeErr.Error())
	}

	var strictErr *toml.StrictMissingError
	if errors.As(err, &strictErr) {
		if len(strictErr.Errors) > 0 {
			first := strictErr.Errors[0]
			row, col := first.Position()
			return fmt.Sprintf("line %d, column %d: unknown field %q", row, col, strings.Join(first.Key(), "."))
		}
		return strictErr.Error()
	}

	return err.Error()
}
