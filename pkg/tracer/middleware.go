package tracer

import (
	"context"
	"fmt"
	"net/http"

	"github.com/yusufsyaifudin/pnscred/pkg/validator"
	"go.opentelemetry.io/otel/propagation"
	semconv "go.opentelemetry.io/otel/semconv/v1.12.0"
	"go.opentelemetry.io/otel/trace"
)

type MiddlewareConfig struct {
	TracerName     string                        `validate:"required"`
	ServiceName    string                        `validate:"required"`
	SkipFunc       func(r *http.Request) bool    `validate:"-"`
	TracerProvider trace.TracerProvider          `validate:"required"`
	TextPropagator propagation.TextMapPropagator `validate:"required"`
}

// statusWriter remembers the status code so it can be recorded on the span.
type statusWriter struct {
	http.ResponseWriter
	propagate   func(h http.Header)
	code        int
	wroteHeader bool
}

func (w *statusWriter) WriteHeader(code int) {
	if w.wroteHeader {
		return
	}

	w.code = code
	w.wroteHeader = true

	// propagation headers must be set before the header is flushed
	w.propagate(w.ResponseWriter.Header())
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	if !w.wroteHeader {
		w.WriteHeader(http.StatusOK)
	}

	return w.ResponseWriter.Write(b)
}

// Middleware starts a server span per request and injects the trace context back into the response header.
// Invalid config disables tracing instead of breaking the handler chain.
func Middleware(cfg MiddlewareConfig, next http.Handler) http.HandlerFunc {
	if _err := validator.Validate(cfg); _err != nil {
		return func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r)
		}
	}

	if cfg.SkipFunc == nil {
		cfg.SkipFunc = func(r *http.Request) bool {
			return false
		}
	}

	return func(w http.ResponseWriter, r *http.Request) {
		if cfg.SkipFunc(r) {
			next.ServeHTTP(w, r)
			return
		}

		ctx := r.Context()
		if ctx == nil {
			ctx = context.TODO()
		}

		ctx = cfg.TextPropagator.Extract(ctx, propagation.HeaderCarrier(r.Header))

		opts := []trace.SpanStartOption{
			trace.WithAttributes(semconv.NetAttributesFromHTTPRequest("tcp", r)...),
			trace.WithAttributes(semconv.EndUserAttributesFromHTTPRequest(r)...),
			trace.WithAttributes(semconv.HTTPServerAttributesFromHTTPRequest(cfg.ServiceName, r.URL.Path, r)...),
			trace.WithSpanKind(trace.SpanKindServer),
		}

		spanName := r.URL.Path
		if spanName == "" {
			spanName = fmt.Sprintf("HTTP %s route not found", r.Method)
		}

		newCtx, span := cfg.TracerProvider.Tracer(cfg.TracerName).Start(ctx, spanName, opts...)
		defer span.End()

		sw := &statusWriter{
			ResponseWriter: w,
			code:           http.StatusOK,
			propagate: func(h http.Header) {
				cfg.TextPropagator.Inject(newCtx, propagation.HeaderCarrier(h))
			},
		}

		next.ServeHTTP(sw, r.WithContext(newCtx))
		if !sw.wroteHeader {
			sw.WriteHeader(http.StatusOK)
		}

		spanStatus, spanMessage := semconv.SpanStatusFromHTTPStatusCodeAndSpanKind(sw.code, trace.SpanKindServer)
		span.SetAttributes(semconv.HTTPAttributesFromHTTPStatusCode(sw.code)...)
		span.SetStatus(spanStatus, spanMessage)
	}
}
