package respbuilder

import "context"

type respCtxKey struct{}

var respTracerKey = respCtxKey{}

// Tracer is the request identity echoed in every response.
type Tracer struct {
	RemoteAddr string
	AppTraceID string
}

// Inject stores Tracer in ctx. Only request-scoped data belongs here.
func Inject(ctx context.Context, stuff Tracer) context.Context {
	return context.WithValue(ctx, respTracerKey, stuff)
}

func Extract(ctx context.Context) (Tracer, bool) {
	if ctx == nil {
		return Tracer{}, false
	}

	stuff, ok := ctx.Value(respTracerKey).(Tracer)
	return stuff, ok
}

// MustExtract returns an empty Tracer when none is injected.
func MustExtract(ctx context.Context) Tracer {
	stuff, _ := Extract(ctx)
	return stuff
}
