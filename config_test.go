package parselmouth

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseConfigDefaults(t *testing.T) {
	cfg, err := ParseConfig(nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
	assert.True(t, cfg.Enums.EnumCase("WindowShape", true))
	assert.False(t, cfg.Enums.EnumCase("Other", false))
}

func TestParseConfig(t *testing.T) {
	cfg, err := ParseConfig([]byte(`
enums:
  case_insensitive: false
  overrides:
    WindowShape: true
log:
  level: warn
  format: json
interp:
  recursion_limit: 50
`))
	require.NoError(t, err)

	assert.True(t, cfg.Enums.EnumCase("WindowShape", false))
	assert.False(t, cfg.Enums.EnumCase("Interpolation", true))
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, 50, cfg.Interp.RecursionLimit)

	var buf bytes.Buffer
	log := cfg.Log.Logger(&buf)
	log.Info("hidden")
	log.Warn("shown", "k", "v")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"msg":"shown"`)
}

func TestParseConfigErrors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"bad level", "log: {level: loud}"},
		{"bad format", "log: {format: xml}"},
		{"negative limit", "interp: {recursion_limit: -1}"},
		{"not yaml", "enums: [1, 2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseConfig([]byte(tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "parselmouth.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log:\n  level: debug\n"), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
