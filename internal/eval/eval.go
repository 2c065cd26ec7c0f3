package eval

import (
	"context"
	"fmt"
	"strconv"

	"limbs/internal/bignum"
	"limbs/internal/limbstore"
	"limbs/internal/trace"
)

// Step is the state after one operation.
type Step struct {
	Op    Op
	Value string
	Len   int
	Cap   int
}

// Result describes a finished job.
type Result struct {
	Job   Job
	Value string
	Sign  int
	Limbs []uint32
	Cap   int
	Grows int
	Steps []Step // only with Options.Steps
}

// Options configures an Evaluator.
type Options struct {
	Store []limbstore.Option
	Steps bool
}

// Evaluator runs jobs. It keeps no per-job state, so one Evaluator may be
// shared by goroutines that each run their own jobs.
type Evaluator struct {
	opts Options
}

// New creates an Evaluator.
func New(opts Options) *Evaluator {
	return &Evaluator{opts: opts}
}

// Construct builds the starting value of job.
func (e *Evaluator) Construct(job Job) (*bignum.BigInt, error) {
	switch job.Source {
	case SourceInt64:
		return bignum.FromInt64(job.Int, e.opts.Store...)
	case SourceText:
		return bignum.Parse(job.Text, e.opts.Store...)
	default:
		return nil, fmt.Errorf("%w: unknown source kind %d", ErrSyntax, job.Source)
	}
}

// Run evaluates job. parent is the trace span the job belongs to.
func (e *Evaluator) Run(ctx context.Context, job Job, parent uint64) (Result, error) {
	tr := trace.FromContext(ctx)
	span := trace.Begin(tr, trace.ScopeJob, "job:"+strconv.Itoa(job.Line), parent)

	b, err := e.Construct(job)
	if err != nil {
		span.End(err.Error())
		return Result{}, fmt.Errorf("line %d: construct: %w", job.Line, err)
	}
	defer b.Release()

	var steps []Step
	for i, op := range job.Ops {
		if err := ctx.Err(); err != nil {
			span.End("canceled")
			return Result{}, err
		}
		opSpan := trace.Begin(tr, trace.ScopeOp, op.Kind.String(), span.ID())
		before := b.Grows()
		if err := apply(b, op); err != nil {
			opSpan.End(err.Error())
			span.End(err.Error())
			return Result{}, fmt.Errorf("line %d: op %d (%s): %w", job.Line, i+1, op, err)
		}
		opSpan.WithExtra("len", strconv.Itoa(b.Len())).WithExtra("grew", strconv.Itoa(b.Grows()-before)).End("")
		if e.opts.Steps {
			steps = append(steps, Step{Op: op, Value: b.String(), Len: b.Len(), Cap: b.Cap()})
		}
	}

	res := Result{
		Job:   job,
		Value: b.String(),
		Sign:  b.Sign(),
		Limbs: b.Limbs(),
		Cap:   b.Cap(),
		Grows: b.Grows(),
		Steps: steps,
	}
	span.WithExtra("limbs", strconv.Itoa(len(res.Limbs))).WithExtra("grows", strconv.Itoa(res.Grows)).End("")
	return res, nil
}

func apply(b *bignum.BigInt, op Op) error {
	switch op.Kind {
	case OpMul:
		return b.MulSmall(op.Arg)
	case OpAdd:
		return b.AddSmall(op.Arg)
	default:
		return fmt.Errorf("%w: unknown operation kind %d", ErrSyntax, op.Kind)
	}
}
