// Package trace provides tracing for regrade runs.
//
// It records driver and pass boundaries and per-pair work so that slow or
// stuck batches (usually an external checker that hangs) can be diagnosed.
//
// # Usage
//
//	regrade batch --trace=- --trace-level=detail originals/ corrections/
//
// # Architecture
//
//   - Nop: zero-overhead tracer when disabled
//   - StreamTracer: immediate write to output (file/stderr)
//   - RingTracer: circular buffer, dumped when a run fails
//   - MultiTracer: combines multiple tracers
//
// # Levels
//
//   - LevelOff: no tracing
//   - LevelError: only the ring dump on failure
//   - LevelPhase: driver and pass boundaries
//   - LevelDetail: per-pair events
//   - LevelDebug: everything
//
// # Context Propagation
//
//	ctx = trace.WithTracer(ctx, tracer)
//	ctx = trace.WithPair(ctx, "q1/alice.py", "q1")
//	span, ctx := trace.Start(ctx, trace.ScopePair, "pair")
//	defer span.End("")
//
// Spans started under WithPair carry pair and question extras, so a stream
// filtered by pair shows every stage of that submission.
//
// # Heartbeat
//
// With --trace-heartbeat the driver counts pairs in a Progress and the
// heartbeat reports done/total; beats without progress are marked stalled.
package trace
