package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"limbs/internal/config"
	"limbs/internal/limbstore"
	"limbs/internal/observ"
	"limbs/internal/trace"
)

// session is the per-invocation state shared by subcommands.
type session struct {
	cfg       config.Config
	storeOpts []limbstore.Option
	quiet     bool
	timings   bool
	timer     *observ.Timer
	span      *trace.Span
	cleanups  []func(error)
}

type sessionKey struct{}

func withSession(ctx context.Context, s *session) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

// sessionFrom returns the session of cmd, or a default one for commands
// run without the root pre-run hook.
func sessionFrom(cmd *cobra.Command) *session {
	if s, ok := cmd.Context().Value(sessionKey{}).(*session); ok && s != nil {
		return s
	}
	return &session{cfg: config.Default(), timer: observ.NewTimer()}
}

func openSession(cmd *cobra.Command) (*session, error) {
	root := cmd.Root().PersistentFlags()
	colorFlag, err := root.GetString("color")
	if err != nil {
		return nil, fmt.Errorf("failed to get color flag: %w", err)
	}
	if err := configureColor(colorFlag); err != nil {
		return nil, err
	}

	s := &session{timer: observ.NewTimer()}
	if s.quiet, err = root.GetBool("quiet"); err != nil {
		return nil, fmt.Errorf("failed to get quiet flag: %w", err)
	}
	if s.timings, err = root.GetBool("timings"); err != nil {
		return nil, fmt.Errorf("failed to get timings flag: %w", err)
	}

	phase := s.timer.Begin("config")
	s.cfg, err = loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	s.storeOpts, err = s.cfg.StoreOptions()
	if err != nil {
		return nil, err
	}
	note := "defaults"
	if s.cfg.Path != "" {
		note = s.cfg.Path
	}
	s.timer.End(phase, note)

	stopProfiling, err := setupProfiling(cmd)
	if err != nil {
		return nil, err
	}
	s.cleanups = append(s.cleanups, stopProfiling)

	stopTracing, err := setupTracing(cmd, s.cfg.Trace)
	if err != nil {
		s.runCleanups(nil)
		return nil, err
	}
	s.cleanups = append(s.cleanups, stopTracing)

	s.span = trace.Begin(trace.FromContext(cmd.Context()), trace.ScopeDriver, cmd.CommandPath(), 0)
	return s, nil
}

// parent is the trace span subcommands nest under.
func (s *session) parent() uint64 {
	return s.span.ID()
}

// close ends the driver span, stops tracing and profiling and prints
// timings. Safe on nil.
func (s *session) close(stderr io.Writer, cmdErr error) {
	if s == nil {
		return
	}
	detail := ""
	if cmdErr != nil {
		detail = cmdErr.Error()
	}
	s.span.End(detail)
	s.runCleanups(cmdErr)
	if s.timings {
		_, _ = io.WriteString(stderr, s.timer.Summary())
	}
}

func (s *session) runCleanups(cmdErr error) {
	for i := len(s.cleanups) - 1; i >= 0; i-- {
		s.cleanups[i](cmdErr)
	}
	s.cleanups = nil
}

func errInvalidFlag(name, value, expected string) error {
	return fmt.Errorf("invalid %s value %q (expected %s)", name, value, expected)
}
