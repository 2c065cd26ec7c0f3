// Package main implements the limbs CLI.
package main

import (
	"context"
	"io"
	"os"
	"os/signal"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"limbs/internal/version"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "limbs",
		Short:         "Arbitrary-precision integer construction toolkit",
		Long:          `limbs builds big integers from decimal text or int64 values and applies limb primitives to them`,
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newParseCmd())
	root.AddCommand(newInt64Cmd())
	root.AddCommand(newEvalCmd())
	root.AddCommand(newBatchCmd())
	root.AddCommand(newVersionCmd())

	flags := root.PersistentFlags()
	flags.String("config", "", "path to limbs.toml (default: nearest one above the working directory)")
	flags.String("color", "auto", "colorize output (auto|on|off)")
	flags.Bool("quiet", false, "suppress non-essential output")
	flags.Bool("timings", false, "show timing information")
	flags.String("growth", "", "limb growth policy (geometric|fixed), overrides limbs.toml")
	flags.Int("max-limbs", 0, "maximum limbs per value, overrides limbs.toml")

	flags.String("trace", "", "trace output file (\"-\" for stderr)")
	flags.String("trace-level", "", "trace level (off|error|phase|detail|debug)")
	flags.String("trace-mode", "stream", "trace storage mode (stream|ring|both)")
	flags.Int("trace-ring-size", 4096, "ring buffer size for ring/both modes")
	flags.Duration("trace-heartbeat", 0, "emit heartbeat events at this interval (0 disables)")

	flags.String("cpu-profile", "", "write a CPU profile to file")
	flags.String("mem-profile", "", "write a heap profile to file on exit")
	flags.String("runtime-trace", "", "write a Go runtime trace to file")
	return root
}

// execute runs the CLI with args and returns the command error. The session
// opened by the command is closed even when the command fails.
func execute(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	root := newRootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	var sess *session
	root.PersistentPreRunE = func(cmd *cobra.Command, _ []string) error {
		var err error
		sess, err = openSession(cmd)
		if err != nil {
			return err
		}
		cmd.SetContext(withSession(cmd.Context(), sess))
		return nil
	}

	err := root.ExecuteContext(ctx)
	sess.close(stderr, err)
	if err != nil {
		printError(stderr, err)
	}
	return err
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := execute(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

var errorLabel = color.New(color.FgRed, color.Bold)

func printError(w io.Writer, err error) {
	_, _ = errorLabel.Fprint(w, "error: ")
	_, _ = io.WriteString(w, err.Error()+"\n")
}

// isTerminal reports whether f is attached to a terminal.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// configureColor applies --color to fatih/color.
func configureColor(mode string) error {
	switch mode {
	case "on":
		color.NoColor = false
	case "off":
		color.NoColor = true
	case "auto", "":
		color.NoColor = !isTerminal(os.Stdout)
	default:
		return errInvalidFlag("--color", mode, "auto|on|off")
	}
	return nil
}
