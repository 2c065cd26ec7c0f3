// Package trace records what the limbs tool is doing while it evaluates
// numbers: which batch file is being read, which job line is running, and
// which limb primitive grew a store.
//
// Enable it from the command line:
//
//	limbs batch --trace=- --trace-level=detail jobs.txt
//
// Implementations:
//
//   - Nop: disabled tracing, no allocation
//   - StreamTracer: writes every event as it happens
//   - RingTracer: keeps the last N events for a dump after a failure
//   - MultiTracer: fans events out to several tracers
//
// Levels gate scopes: phase shows driver and file events, detail adds
// job events, debug adds one event per primitive operation.
//
// Tracers travel through context:
//
//	ctx = trace.WithTracer(ctx, tracer)
//	span := trace.Begin(trace.FromContext(ctx), trace.ScopeJob, "job", parent)
//	defer span.End("")
package trace
