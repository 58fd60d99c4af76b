package trace

import "context"

type (
	tracerKey   struct{}
	spanKey     struct{}
	progressKey struct{}
)

// FromContext returns the tracer attached to ctx, or Nop.
func FromContext(ctx context.Context) Tracer {
	if ctx == nil {
		return Nop
	}
	if t, ok := ctx.Value(tracerKey{}).(Tracer); ok {
		return t
	}
	return Nop
}

// WithTracer attaches t to ctx. A nil t means Nop.
func WithTracer(ctx context.Context, t Tracer) context.Context {
	if t == nil {
		t = Nop
	}
	return context.WithValue(ctx, tracerKey{}, t)
}

// SpanContext is the innermost open span of a run together with the pair it
// works on. Pair and Question are empty above the per-pair spans.
type SpanContext struct {
	SpanID   uint64
	Pair     string
	Question string
}

// extra returns the pair fields as event extras, nil outside a pair.
func (sc SpanContext) extra() map[string]string {
	if sc.Pair == "" && sc.Question == "" {
		return nil
	}
	m := make(map[string]string, 2)
	if sc.Pair != "" {
		m["pair"] = sc.Pair
	}
	if sc.Question != "" {
		m["question"] = sc.Question
	}
	return m
}

// CurrentSpan returns the span context of ctx, zero when there is none.
func CurrentSpan(ctx context.Context) SpanContext {
	if ctx == nil {
		return SpanContext{}
	}
	sc, _ := ctx.Value(spanKey{}).(SpanContext)
	return sc
}

// WithSpanContext attaches sc to ctx.
func WithSpanContext(ctx context.Context, sc SpanContext) context.Context {
	return context.WithValue(ctx, spanKey{}, sc)
}

// WithPair marks ctx as working on one pair. Spans and points started from
// it carry the pair name and question id.
func WithPair(ctx context.Context, pair, question string) context.Context {
	sc := CurrentSpan(ctx)
	sc.Pair, sc.Question = pair, question
	return WithSpanContext(ctx, sc)
}

// Start begins a span under the current span of ctx and returns a context in
// which it is current. When the span is filtered out ctx is returned as is.
func Start(ctx context.Context, scope Scope, name string) (*Span, context.Context) {
	sc := CurrentSpan(ctx)
	span := begin(FromContext(ctx), scope, name, sc.SpanID, sc.extra())
	if span.id == 0 {
		return span, ctx
	}
	sc.SpanID = span.id
	return span, WithSpanContext(ctx, sc)
}

// WithProgress attaches the batch counters read by the heartbeat.
func WithProgress(ctx context.Context, p *Progress) context.Context {
	return context.WithValue(ctx, progressKey{}, p)
}

// ProgressFrom returns the counters attached to ctx, or nil.
func ProgressFrom(ctx context.Context) *Progress {
	if ctx == nil {
		return nil
	}
	p, _ := ctx.Value(progressKey{}).(*Progress)
	return p
}
