package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"limbs/internal/batch"
	"limbs/internal/cache"
	"limbs/internal/eval"
	"limbs/internal/version"
)

const cacheApp = "limbs"

func newBatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "batch [flags] FILE...",
		Short: "Evaluate job files in parallel",
		Long: `Batch evaluates every non-blank line of each FILE as "TEXT [OP...]" (see
limbs eval). Lines starting with # are comments. Results of unchanged files
are served from the cache under $XDG_CACHE_HOME/limbs.`,
		Args: cobra.MinimumNArgs(1),
		RunE: runBatch,
	}
	cmd.Flags().Int("jobs", -1, "max parallel workers (0=auto, default from limbs.toml)")
	cmd.Flags().Bool("no-cache", false, "do not read or write cached results")
	cmd.Flags().Bool("drop-cache", false, "remove all cached results before running")
	cmd.Flags().String("ui", "auto", "progress UI (auto|on|off)")
	return cmd
}

var (
	okColor   = color.New(color.FgGreen)
	failColor = color.New(color.FgRed)
)

func runBatch(cmd *cobra.Command, args []string) error {
	jobs, err := cmd.Flags().GetInt("jobs")
	if err != nil {
		return fmt.Errorf("failed to get jobs flag: %w", err)
	}
	noCache, err := cmd.Flags().GetBool("no-cache")
	if err != nil {
		return fmt.Errorf("failed to get no-cache flag: %w", err)
	}
	dropCache, err := cmd.Flags().GetBool("drop-cache")
	if err != nil {
		return fmt.Errorf("failed to get drop-cache flag: %w", err)
	}
	uiValue, err := cmd.Flags().GetString("ui")
	if err != nil {
		return fmt.Errorf("failed to get ui flag: %w", err)
	}
	mode, err := readUIMode(uiValue)
	if err != nil {
		return err
	}

	sess := sessionFrom(cmd)
	if jobs < 0 {
		jobs = sess.cfg.Batch.Jobs
	}

	req := batch.Request{
		Files:     args,
		Jobs:      jobs,
		Evaluator: eval.New(eval.Options{Store: sess.storeOpts}),
		Settings:  []string{sess.cfg.Engine.Growth, strconv.Itoa(sess.cfg.Engine.MaxLimbs), version.Version},
		Parent:    sess.parent(),
	}
	if sess.cfg.Batch.Cache && !noCache {
		c, err := cache.Open(cacheApp)
		if err != nil {
			return fmt.Errorf("failed to open cache: %w", err)
		}
		if dropCache {
			if err := c.DropAll(); err != nil {
				return fmt.Errorf("failed to drop cache: %w", err)
			}
		}
		req.Cache = c
	}

	phase := sess.timer.Begin("batch")
	var results []batch.FileResult
	if shouldUseTUI(mode, sess.quiet) {
		results, err = runBatchWithUI(cmd.Context(), cmd.ErrOrStderr(), "limbs batch", req)
	} else {
		results, err = batch.Run(cmd.Context(), req)
	}
	sum := batch.Summarize(results)
	sess.timer.End(phase, fmt.Sprintf("%d files, %d cached", sum.Files, sum.Cached))
	if err != nil {
		return err
	}

	if err := printBatch(cmd.OutOrStdout(), cmd.ErrOrStderr(), results, sess.quiet); err != nil {
		return err
	}
	if !sess.quiet {
		fmt.Fprintf(cmd.ErrOrStderr(), "%d files, %d lines, %d failed, %d cached\n", sum.Files, sum.Lines, sum.Failed, sum.Cached)
	}
	if sum.Failed > 0 || sum.Broken > 0 {
		return fmt.Errorf("%d of %d lines failed, %d unreadable files", sum.Failed, sum.Lines, sum.Broken)
	}
	return nil
}

func printBatch(out, errOut io.Writer, results []batch.FileResult, quiet bool) error {
	for _, r := range results {
		if r.Err != nil {
			failColor.Fprintf(errOut, "%s: %v\n", r.Path, r.Err)
			continue
		}
		for _, l := range r.Lines {
			if l.Err != "" {
				failColor.Fprintf(errOut, "%s:%d: %s\n", r.Path, l.Line, l.Err)
				continue
			}
			var err error
			if quiet {
				_, err = fmt.Fprintf(out, "%s:%d: %s\n", r.Path, l.Line, l.Value)
			} else {
				_, err = fmt.Fprintf(out, "%s:%d: %s %s\n", r.Path, l.Line, okColor.Sprint(l.Value),
					labelColor.Sprintf("(limbs=%d cap=%d grows=%d)", l.Limbs, l.Cap, l.Grows))
			}
			if err != nil {
				return err
			}
		}
	}
	return nil
}
