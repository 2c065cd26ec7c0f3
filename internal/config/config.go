// Package config loads limbs.toml, the optional settings file for the limbs
// CLI. The file is found by walking up from the working directory.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"limbs/internal/limbstore"
	"limbs/internal/trace"
)

// FileName is the settings file looked up by Find.
const FileName = "limbs.toml"

// Config mirrors limbs.toml.
type Config struct {
	Engine EngineConfig `toml:"engine"`
	Batch  BatchConfig  `toml:"batch"`
	Trace  TraceConfig  `toml:"trace"`

	// Path is the file the values came from, empty for defaults.
	Path string `toml:"-"`
}

// EngineConfig configures limb stores.
type EngineConfig struct {
	Growth   string `toml:"growth"`
	MaxLimbs int    `toml:"max_limbs"`
}

// BatchConfig configures `limbs batch`.
type BatchConfig struct {
	Jobs  int  `toml:"jobs"`
	Cache bool `toml:"cache"`
}

// TraceConfig configures the tracer when no --trace-level flag is given.
type TraceConfig struct {
	Level  string `toml:"level"`
	Output string `toml:"output"`
}

// Default returns the settings used when no file is present.
func Default() Config {
	return Config{
		Engine: EngineConfig{Growth: limbstore.Geometric.String(), MaxLimbs: limbstore.DefaultMaxLimbs},
		Batch:  BatchConfig{Jobs: 0, Cache: true},
		Trace:  TraceConfig{Level: trace.LevelOff.String()},
	}
}

// Find walks from startDir up to the filesystem root looking for FileName.
func Find(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, FileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false, nil
		}
		dir = parent
	}
}

// Load decodes path on top of Default and validates the result. Keys absent
// from the file keep their defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, fmt.Errorf("%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	if meta.IsDefined("engine", "max_limbs") && cfg.Engine.MaxLimbs <= 0 {
		return Config{}, fmt.Errorf("%s: [engine].max_limbs must be positive", path)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	cfg.Path = path
	return cfg, nil
}

// Discover loads the nearest limbs.toml above startDir, or returns Default
// when there is none.
func Discover(startDir string) (Config, error) {
	path, ok, err := Find(startDir)
	if err != nil {
		return Config{}, err
	}
	if !ok {
		return Default(), nil
	}
	return Load(path)
}

// Validate checks enumerated values and ranges.
func (c Config) Validate() error {
	if _, err := limbstore.ParsePolicy(c.Engine.Growth); err != nil {
		return fmt.Errorf("[engine].growth: %w", err)
	}
	if c.Engine.MaxLimbs < 0 {
		return fmt.Errorf("[engine].max_limbs must not be negative")
	}
	if c.Batch.Jobs < 0 {
		return fmt.Errorf("[batch].jobs must not be negative")
	}
	if _, err := trace.ParseLevel(c.Trace.Level); err != nil {
		return fmt.Errorf("[trace].level: %w", err)
	}
	return nil
}

// StoreOptions converts the engine section into limb store options.
func (c Config) StoreOptions() ([]limbstore.Option, error) {
	policy, err := limbstore.ParsePolicy(c.Engine.Growth)
	if err != nil {
		return nil, err
	}
	return []limbstore.Option{limbstore.WithPolicy(policy), limbstore.WithMaxLimbs(c.Engine.MaxLimbs)}, nil
}
