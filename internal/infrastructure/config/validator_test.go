package config

import (
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	plugindomain "github.com/abhinandh-s/lazy.tmux/internal/core/domain/plugin"
)

func TestSettingsValidator_ValidatePositiveInt(t *testing.T) {
	validator := NewSettingsValidator()

	tests := []struct {
		name    string
		raw     string
		want    int
		wantErr bool
		errMsg  string
	}{
		{name: "unset", raw: "", want: 0},
		{name: "whitespace only", raw: "  ", want: 0},
		{name: "one", raw: "1", want: 1},
		{name: "padded", raw: " 8 ", want: 8},
		{name: "zero", raw: "0", wantErr: true, errMsg: "got 0"},
		{name: "negative", raw: "-3", wantErr: true, errMsg: "got -3"},
		{name: "not a number", raw: "many", wantErr: true, errMsg: `got "many"`},
		{name: "float", raw: "1.5", wantErr: true, errMsg: "positive integer"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := validator.ValidatePositiveInt("LAZY_TMUX_PARALLELISM", tt.raw)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, plugindomain.ErrConfigInvalid)
				assert.Contains(t, err.Error(), "LAZY_TMUX_PARALLELISM")
				assert.Contains(t, err.Error(), tt.errMsg)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSettingsValidator_ValidateTimeoutSecs(t *testing.T) {
	validator := NewSettingsValidator()

	d, err := validator.ValidateTimeoutSecs("LAZY_TMUX_TIMEOUT_SECS", "90")
	require.NoError(t, err)
	assert.Equal(t, 90*time.Second, d)

	d, err = validator.ValidateTimeoutSecs("LAZY_TMUX_TIMEOUT_SECS", "")
	require.NoError(t, err)
	assert.Zero(t, d)

	_, err = validator.ValidateTimeoutSecs("LAZY_TMUX_TIMEOUT_SECS", "0")
	assert.ErrorIs(t, err, plugindomain.ErrConfigInvalid)
}

func TestSettingsValidator_PropertyBased_PositiveInt(t *testing.T) {
	validator := NewSettingsValidator()

	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(-1000, 1000).Draw(t, "n")
		got, err := validator.ValidatePositiveInt("N", strconv.Itoa(n))
		if n > 0 {
			assert.NoError(t, err)
			assert.Equal(t, n, got)
		} else {
			assert.ErrorIs(t, err, plugindomain.ErrConfigInvalid)
		}
	})
}
