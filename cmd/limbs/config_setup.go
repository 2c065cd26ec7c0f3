package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"limbs/internal/config"
)

// loadConfig reads limbs.toml (from --config or by discovery) and applies
// flag overrides on top of it.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	flags := cmd.Root().PersistentFlags()

	path, err := flags.GetString("config")
	if err != nil {
		return config.Config{}, fmt.Errorf("failed to get config flag: %w", err)
	}
	var cfg config.Config
	if path != "" {
		cfg, err = config.Load(path)
	} else {
		cfg, err = config.Discover(".")
	}
	if err != nil {
		return config.Config{}, err
	}

	if flags.Changed("growth") {
		if cfg.Engine.Growth, err = flags.GetString("growth"); err != nil {
			return config.Config{}, err
		}
	}
	if flags.Changed("max-limbs") {
		n, err := flags.GetInt("max-limbs")
		if err != nil {
			return config.Config{}, err
		}
		if n <= 0 {
			return config.Config{}, fmt.Errorf("--max-limbs must be positive, got %d", n)
		}
		cfg.Engine.MaxLimbs = n
	}
	if flags.Changed("trace-level") {
		if cfg.Trace.Level, err = flags.GetString("trace-level"); err != nil {
			return config.Config{}, err
		}
	}
	if flags.Changed("trace") {
		if cfg.Trace.Output, err = flags.GetString("trace"); err != nil {
			return config.Config{}, err
		}
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}
