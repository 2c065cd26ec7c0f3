package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"limbs/internal/prof"
)

// setupProfiling starts the profilers named by the persistent profiling
// flags. The cleanup reports write errors on stderr.
func setupProfiling(cmd *cobra.Command) (func(error), error) {
	root := cmd.Root().PersistentFlags()

	cpuProfile, err := root.GetString("cpu-profile")
	if err != nil {
		return nil, fmt.Errorf("failed to get cpu-profile flag: %w", err)
	}
	memProfile, err := root.GetString("mem-profile")
	if err != nil {
		return nil, fmt.Errorf("failed to get mem-profile flag: %w", err)
	}
	tracePath, err := root.GetString("runtime-trace")
	if err != nil {
		return nil, fmt.Errorf("failed to get runtime-trace flag: %w", err)
	}

	sess, err := prof.Start(prof.Config{CPUPath: cpuProfile, MemPath: memProfile, TracePath: tracePath})
	if err != nil {
		return nil, err
	}
	return func(error) {
		if err := sess.Stop(); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "profile: %v\n", err)
		}
	}, nil
}
