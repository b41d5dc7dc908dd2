package parselmouth

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the runtime settings loaded from a YAML file.
type Config struct {
	Enums  EnumConfig   `yaml:"enums"`
	Log    LogConfig    `yaml:"log"`
	Interp InterpConfig `yaml:"interp"`
}

// EnumConfig controls string-to-enum conversion. CaseInsensitive, when set,
// replaces the declared setting of every enum; Overrides then wins per
// enum name.
type EnumConfig struct {
	CaseInsensitive *bool           `yaml:"case_insensitive"`
	Overrides       map[string]bool `yaml:"overrides"`
}

type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn or error
	Format string `yaml:"format"` // text or json
}

type InterpConfig struct {
	RecursionLimit int `yaml:"recursion_limit"`
}

// DefaultConfig returns the settings used when no file is given.
func DefaultConfig() Config {
	return Config{
		Log: LogConfig{Level: "info", Format: "text"},
	}
}

// LoadConfig reads a YAML config file. Missing keys keep their defaults.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading %s: %w", path, err)
	}
	cfg, err := ParseConfig(data)
	if err != nil {
		return Config{}, fmt.Errorf("parsing %s: %w", path, err)
	}
	return cfg, nil
}

// ParseConfig decodes YAML config data over the defaults.
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, err
	}
	if _, err := cfg.Log.level(); err != nil {
		return Config{}, err
	}
	switch strings.ToLower(cfg.Log.Format) {
	case "", "text", "json":
	default:
		return Config{}, fmt.Errorf("unknown log format %q", cfg.Log.Format)
	}
	if cfg.Interp.RecursionLimit < 0 {
		return Config{}, fmt.Errorf("negative recursion limit %d", cfg.Interp.RecursionLimit)
	}
	return cfg, nil
}

// EnumCase returns the case-insensitivity to use for the named enum.
func (c EnumConfig) EnumCase(name string, declared bool) bool {
	if v, ok := c.Overrides[name]; ok {
		return v
	}
	if c.CaseInsensitive != nil {
		return *c.CaseInsensitive
	}
	return declared
}

func (c LogConfig) level() (slog.Level, error) {
	var l slog.Level
	if c.Level == "" {
		return slog.LevelInfo, nil
	}
	if err := l.UnmarshalText([]byte(c.Level)); err != nil {
		return l, fmt.Errorf("unknown log level %q", c.Level)
	}
	return l, nil
}

// Logger returns a logger writing to w in the configured format and level.
func (c LogConfig) Logger(w io.Writer) *slog.Logger {
	level, err := c.level()
	if err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(c.Format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
