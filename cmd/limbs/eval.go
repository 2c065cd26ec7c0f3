package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"limbs/internal/eval"
	"limbs/internal/textutil"
)

func newEvalCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "eval [flags] TEXT [OP...]",
		Short: "Apply limb primitives to a value",
		Long: `Eval constructs TEXT (decimal, or i64:N for an int64) and applies each OP in
order. OP is mul:N or add:N with N a 32-bit unsigned value; *N and +N are
accepted as short forms.

Both operations act on the magnitude and keep the sign: add:10 applied to
-5 gives -15, not 5.`,
		Example: "  limbs eval 18446744073709551615 mul:4294967295 add:1\n  limbs eval i64:-42 *3 --steps\n  limbs eval -- -5 add:10",
		Args:    cobra.MinimumNArgs(1),
		RunE:    runEval,
	}
	cmd.Flags().Bool("steps", false, "print the value after every operation")
	return cmd
}

func runEval(cmd *cobra.Command, args []string) error {
	steps, err := cmd.Flags().GetBool("steps")
	if err != nil {
		return fmt.Errorf("failed to get steps flag: %w", err)
	}
	sess := sessionFrom(cmd)

	ops := make([]string, len(args)-1)
	for i, a := range args[1:] {
		ops[i] = textutil.Fold(a)
	}
	job, err := eval.NewJob(textutil.Fold(args[0]), ops)
	if err != nil {
		return err
	}

	phase := sess.timer.Begin("eval")
	res, err := eval.New(eval.Options{Store: sess.storeOpts, Steps: steps}).Run(cmd.Context(), job, sess.parent())
	sess.timer.End(phase, fmt.Sprintf("%d ops", len(job.Ops)))
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for i, st := range res.Steps {
		if _, err := fmt.Fprintf(out, "%s %-18s %s  %s\n",
			labelColor.Sprintf("%3d", i+1), st.Op, valueColor.Sprint(st.Value),
			labelColor.Sprintf("len=%d cap=%d", st.Len, st.Cap)); err != nil {
			return err
		}
	}
	if sess.quiet || steps {
		if !steps {
			_, err = fmt.Fprintln(out, res.Value)
		}
		return err
	}
	_, err = fmt.Fprintf(out, "%s\n  %s len=%d cap=%d grows=%d\n",
		valueColor.Sprint(res.Value), labelColor.Sprint("shape:"), len(res.Limbs), res.Cap, res.Grows)
	return err
}
