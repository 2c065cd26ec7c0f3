// Package batch evaluates many job files in parallel. Each file holds one
// job per line (see package eval); results are cached by file content.
package batch

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"limbs/internal/cache"
	"limbs/internal/eval"
	"limbs/internal/trace"
)

// Request describes one batch run.
type Request struct {
	Files     []string
	Jobs      int // 0 means GOMAXPROCS
	Evaluator *eval.Evaluator
	Cache     *cache.Cache // nil disables caching
	Settings  []string     // engine settings folded into cache keys
	Progress  ProgressSink
	Parent    uint64 // trace span of the caller
}

// FileResult is the outcome of one input file.
type FileResult struct {
	Path   string
	Lines  []cache.Line
	Cached bool
	Err    error // read or cache failure; per-line failures live in Lines
}

// Failed returns the number of lines that did not evaluate.
func (r FileResult) Failed() int {
	n := 0
	for _, l := range r.Lines {
		if l.Err != "" {
			n++
		}
	}
	return n
}

// Summary totals a batch.
type Summary struct {
	Files  int
	Lines  int
	Failed int
	Cached int
	Broken int // files that could not be read
}

// Summarize totals results.
func Summarize(results []FileResult) Summary {
	var s Summary
	for _, r := range results {
		s.Files++
		if r.Err != nil {
			s.Broken++
			continue
		}
		if r.Cached {
			s.Cached++
		}
		s.Lines += len(r.Lines)
		s.Failed += r.Failed()
	}
	return s
}

// Run evaluates every file in req.Files. Results keep input order. The
// returned error is non-nil only when ctx is canceled; other failures are
// reported per file.
func Run(ctx context.Context, req Request) ([]FileResult, error) {
	if req.Evaluator == nil {
		req.Evaluator = eval.New(eval.Options{})
	}
	jobs := req.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	results := make([]FileResult, len(req.Files))
	if len(req.Files) == 0 {
		return results, nil
	}
	for _, path := range req.Files {
		emit(req.Progress, Event{File: path, Stage: StageRead, Status: StatusQueued})
	}

	tr := trace.FromContext(ctx)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(req.Files)))
	for i, path := range req.Files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			span := trace.Begin(tr, trace.ScopeFile, path, req.Parent)
			res, err := runFile(gctx, req, path, span.ID())
			results[i] = res
			switch {
			case err != nil:
				span.End(err.Error())
				return err
			case res.Cached:
				span.End("cached")
			case res.Err != nil:
				span.End(res.Err.Error())
			default:
				span.WithExtra("lines", fmt.Sprint(len(res.Lines))).WithExtra("failed", fmt.Sprint(res.Failed())).End("")
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}

// runFile returns an error only for cancellation.
func runFile(ctx context.Context, req Request, path string, span uint64) (FileResult, error) {
	res := FileResult{Path: path}
	start := time.Now()

	emit(req.Progress, Event{File: path, Stage: StageRead, Status: StatusWorking})
	content, err := os.ReadFile(path)
	if err != nil {
		res.Err = err
		emit(req.Progress, Event{File: path, Stage: StageRead, Status: StatusError, Err: err, Elapsed: time.Since(start)})
		return res, nil
	}

	key := cache.KeyFor(content, req.Settings...)
	if req.Cache != nil {
		emit(req.Progress, Event{File: path, Stage: StageCache, Status: StatusWorking})
		var payload cache.Payload
		ok, err := req.Cache.Get(key, &payload)
		if err != nil {
			trace.Point(trace.FromContext(ctx), trace.ScopeFile, "cache", err.Error(), span)
		}
		if ok {
			res.Lines = payload.Lines
			res.Cached = true
			emit(req.Progress, Event{File: path, Stage: StageCache, Status: StatusCached, Elapsed: time.Since(start)})
			return res, nil
		}
	}

	emit(req.Progress, Event{File: path, Stage: StageEval, Status: StatusWorking})
	lines, err := evalText(ctx, req.Evaluator, string(content), span)
	if err != nil {
		emit(req.Progress, Event{File: path, Stage: StageEval, Status: StatusError, Err: err, Elapsed: time.Since(start)})
		return res, err
	}
	res.Lines = lines

	if req.Cache != nil {
		payload := &cache.Payload{Path: path, Created: time.Now().UTC(), Lines: lines}
		if err := req.Cache.Put(key, payload); err != nil {
			trace.Point(trace.FromContext(ctx), trace.ScopeFile, "cache", err.Error(), span)
		}
	}
	emit(req.Progress, Event{File: path, Stage: StageEval, Status: StatusDone, Elapsed: time.Since(start)})
	return res, nil
}

func evalText(ctx context.Context, ev *eval.Evaluator, text string, span uint64) ([]cache.Line, error) {
	var out []cache.Line
	lineNo := 0
	for raw := range strings.Lines(text) {
		lineNo++
		job, ok, err := eval.ParseLine(strings.TrimRight(raw, "\r\n"), lineNo)
		if err != nil {
			out = append(out, cache.Line{Line: lineNo, Err: err.Error()})
			continue
		}
		if !ok {
			continue
		}
		res, err := ev.Run(ctx, job, span)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			out = append(out, cache.Line{Line: lineNo, Err: err.Error()})
			continue
		}
		out = append(out, cache.Line{
			Line:  lineNo,
			Value: res.Value,
			Limbs: len(res.Limbs),
			Cap:   res.Cap,
			Grows: res.Grows,
		})
	}
	return out, nil
}

func emit(sink ProgressSink, evt Event) {
	if sink != nil {
		sink.OnEvent(evt)
	}
}
