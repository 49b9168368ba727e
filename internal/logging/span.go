package logging

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Span measures a named unit of work, such as a media upload, inside a
// request trace.
type Span struct {
	name    string
	logger  *slog.Logger
	started time.Time
}

// StartSpan opens a span under the context's trace, minting a trace id when
// none exists yet. The returned context carries a logger annotated with the
// span's identifiers.
func StartSpan(ctx context.Context, name string) (context.Context, *Span) {
	if ctx == nil {
		ctx = context.Background()
	}

	logger := FromContext(ctx)

	traceID := TraceIDFromContext(ctx)
	if traceID == "" {
		traceID = uuid.NewString()
		ctx = WithTraceID(ctx, traceID)
		logger = logger.With(slog.String("trace_id", traceID))
	}

	spanID := uuid.NewString()
	logger = logger.With(
		slog.String("span_id", spanID),
		slog.String("span", name),
	)
	if parent := SpanIDFromContext(ctx); parent != "" {
		logger = logger.With(slog.String("parent_span_id", parent))
	}

	ctx = WithLogger(ctx, logger)
	ctx = WithSpanID(ctx, spanID)

	return ctx, &Span{name: name, logger: logger, started: time.Now()}
}

// End emits the span's completion entry with its elapsed time.
func (s *Span) End() {
	if s == nil {
		return
	}
	s.logger.Info("span finished", slog.Duration("elapsed", time.Since(s.started)))
}
