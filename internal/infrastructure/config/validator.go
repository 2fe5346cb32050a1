package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	plugindomain "github.com/abhinandh-s/lazy.tmux/internal/core/domain/plugin"
)

// SettingsValidator validates runtime setting values
type SettingsValidator struct{}

// NewSettingsValidator creates a new settings validator
func NewSettingsValidator() *SettingsValidator {
	return &SettingsValidator{}
}

// ValidatePositiveInt parses raw as a strictly positive integer. An empty
// value means unset and yields zero.
func (v *SettingsValidator) ValidatePositiveInt(name, raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}

	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be a positive integer, got %q", plugindomain.ErrConfigInvalid, name, raw)
	}
	if n <= 0 {
		return 0, fmt.Errorf("%w: %s must be a positive integer, got %d", plugindomain.ErrConfigInvalid, name, n)
	}
	return n, nil
}

// ValidateTimeoutSecs parses a timeout expressed in whole seconds
func (v *SettingsValidator) ValidateTimeoutSecs(name, raw string) (time.Duration, error) {
	secs, err := v.ValidatePositiveInt(name, raw)
	if err != nil {
		return 0, err
	}
	return time.Duration(secs) * time.Second, nil
}
