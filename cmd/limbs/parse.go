package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"limbs/internal/bignum"
	"limbs/internal/textutil"
	"limbs/internal/trace"
)

func newParseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "parse [flags] TEXT...",
		Short: "Construct big integers from decimal text",
		Long: `Parse builds one value per argument the way the engine reads decimal text:
leading whitespace and one sign are skipped, the longest run of digits is
consumed and anything after it is ignored. Text without digits is zero.`,
		Args: cobra.MinimumNArgs(1),
		RunE: runParse,
	}
	cmd.Flags().Bool("json", false, "print values as JSON")
	return cmd
}

func newInt64Cmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "int64 [flags] VALUE...",
		Short: "Construct big integers from 64-bit signed values",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runInt64,
	}
	cmd.Flags().Bool("json", false, "print values as JSON")
	return cmd
}

// valueReport is the printed form of one constructed value.
type valueReport struct {
	Input string   `json:"input"`
	Value string   `json:"value"`
	Sign  int      `json:"sign"`
	Len   int      `json:"len"`
	Cap   int      `json:"cap"`
	Grows int      `json:"grows"`
	Limbs []string `json:"limbs"`
}

func reportOf(input string, b *bignum.BigInt) valueReport {
	limbs := b.Limbs()
	hex := make([]string, len(limbs))
	for i, w := range limbs {
		hex[i] = fmt.Sprintf("0x%08x", w)
	}
	return valueReport{
		Input: input,
		Value: b.String(),
		Sign:  b.Sign(),
		Len:   b.Len(),
		Cap:   b.Cap(),
		Grows: b.Grows(),
		Limbs: hex,
	}
}

func runParse(cmd *cobra.Command, args []string) error {
	asJSON, err := cmd.Flags().GetBool("json")
	if err != nil {
		return fmt.Errorf("failed to get json flag: %w", err)
	}
	sess := sessionFrom(cmd)
	tr := trace.FromContext(cmd.Context())
	phase := sess.timer.Begin("parse")
	defer sess.timer.End(phase, strconv.Itoa(len(args))+" values")

	reports := make([]valueReport, 0, len(args))
	for _, arg := range args {
		span := trace.Begin(tr, trace.ScopeJob, "parse", sess.parent())
		b, err := bignum.Parse(textutil.Fold(arg), sess.storeOpts...)
		if err != nil {
			span.End(err.Error())
			return fmt.Errorf("parse %q: %w", arg, err)
		}
		reports = append(reports, reportOf(arg, b))
		span.WithExtra("limbs", strconv.Itoa(b.Len())).End("")
		b.Release()
	}
	return printReports(cmd.OutOrStdout(), reports, asJSON, sess.quiet)
}

func runInt64(cmd *cobra.Command, args []string) error {
	asJSON, err := cmd.Flags().GetBool("json")
	if err != nil {
		return fmt.Errorf("failed to get json flag: %w", err)
	}
	sess := sessionFrom(cmd)

	reports := make([]valueReport, 0, len(args))
	for _, arg := range args {
		v, err := strconv.ParseInt(strings.TrimSpace(textutil.Fold(arg)), 10, 64)
		if err != nil {
			return fmt.Errorf("int64 %q: %w", arg, err)
		}
		b, err := bignum.FromInt64(v, sess.storeOpts...)
		if err != nil {
			return fmt.Errorf("int64 %q: %w", arg, err)
		}
		reports = append(reports, reportOf(arg, b))
		b.Release()
	}
	return printReports(cmd.OutOrStdout(), reports, asJSON, sess.quiet)
}

var (
	valueColor = color.New(color.FgCyan, color.Bold)
	labelColor = color.New(color.Faint)
)

func printReports(out io.Writer, reports []valueReport, asJSON, quiet bool) error {
	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(reports)
	}
	for _, r := range reports {
		if quiet {
			if _, err := fmt.Fprintln(out, r.Value); err != nil {
				return err
			}
			continue
		}
		if _, err := fmt.Fprintf(out, "%s\n  %s sign=%+d len=%d cap=%d grows=%d\n  %s %s\n",
			valueColor.Sprint(r.Value),
			labelColor.Sprint("shape:"), r.Sign, r.Len, r.Cap, r.Grows,
			labelColor.Sprint("limbs:"), strings.Join(r.Limbs, " "),
		); err != nil {
			return err
		}
	}
	return nil
}
