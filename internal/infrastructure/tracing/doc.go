/*
Package tracing records client spans for outbound calls.

Each transport operation opens a span, propagates its identity to the
upstream through headers, and hands the finished span to a buffered
collector that writes it to the structured log.

# Usage

	tracer := tracing.New("reqflow", logger)
	defer tracer.Close()

	span, ctx := tracer.StartSpan(ctx, "GET /users")
	tracing.Inject(ctx, headers)
	defer func() {
		span.Finish()
		tracer.Submit(span)
	}()

	span.SetTag("http.url", url)

# Headers

	X-Trace-ID  identifies the whole flow
	X-Span-ID   identifies the calling span

A caller that already carries X-Trace-ID keeps it; the span joins that trace
instead of starting a new one.
*/
package tracing
