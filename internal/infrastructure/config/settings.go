package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	plugindomain "github.com/abhinandh-s/lazy.tmux/internal/core/domain/plugin"
	"github.com/abhinandh-s/lazy.tmux/internal/infrastructure/logging"
)

// EnvPrefix namespaces every environment variable the tool reads
const EnvPrefix = "LAZY_TMUX"

// Setting keys, shared with the cobra flag bindings
const (
	KeyParallelism = "parallelism"
	KeyTimeoutSecs = "timeout_secs"
	KeyGitBinary   = "git"
	KeyLogLevel    = "loglevel"
	KeyLogFormat   = "logformat"
	KeyProgress    = "progress"
)

// Settings are the runtime knobs of a run, independent of plugins.toml
type Settings struct {
	// Parallelism caps the worker pool; zero means available CPUs
	Parallelism int

	// Timeout bounds each child process; zero means no limit
	Timeout time.Duration

	GitBinary string
	LogLevel  string
	LogFormat string
	Progress  bool
}

// NewViper returns a viper instance wired to the LAZY_TMUX_* environment
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault(KeyGitBinary, "git")
	v.SetDefault(KeyLogLevel, "warn")
	v.SetDefault(KeyLogFormat, "text")
	v.SetDefault(KeyProgress, false)

	// AutomaticEnv only resolves keys viper already knows about
	_ = v.BindEnv(KeyParallelism)
	_ = v.BindEnv(KeyTimeoutSecs)

	return v
}

// LoadEnvFile merges KEY=VALUE pairs from path into the process environment
// without overriding variables that are already set. A missing file is fine.
func LoadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("%w: %s: %w", plugindomain.ErrConfigMalformed, path, err)
	}
	return nil
}

// LoadSettings resolves defaults, environment and bound flags into Settings
func LoadSettings(v *viper.Viper) (Settings, error) {
	validator := NewSettingsValidator()

	parallelism, err := validator.ValidatePositiveInt(EnvPrefix+"_PARALLELISM", setString(v, KeyParallelism))
	if err != nil {
		return Settings{}, err
	}

	timeout, err := validator.ValidateTimeoutSecs(EnvPrefix+"_TIMEOUT_SECS", setString(v, KeyTimeoutSecs))
	if err != nil {
		return Settings{}, err
	}

	level, err := logging.ParseLevel(v.GetString(KeyLogLevel))
	if err != nil {
		return Settings{}, err
	}
	logLevel := strings.ToLower(level.String())

	logFormat, err := logging.ParseFormat(v.GetString(KeyLogFormat))
	if err != nil {
		return Settings{}, err
	}

	return Settings{
		Parallelism: parallelism,
		Timeout:     timeout,
		GitBinary:   v.GetString(KeyGitBinary),
		LogLevel:    logLevel,
		LogFormat:   logFormat,
		Progress:    v.GetBool(KeyProgress),
	}, nil
}

// setString returns the value of key only when something set it explicitly;
// an unchanged flag default does not count.
func setString(v *viper.Viper, key string) string {
	if !v.IsSet(key) {
		return ""
	}
	return v.GetString(key)
}
