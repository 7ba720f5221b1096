package intercept

import (
	"context"
	"fmt"
	"reflect"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"querymap/internal/descriptor"
	"querymap/internal/mapping"
)

const tracerName = "querymap/intercept"

// Executor runs a query and returns its rows in order. The query string is
// whatever the descriptor declared; the engine never rewrites it. Timeouts
// and cancellation are the executor's business.
type Executor interface {
	QueryRecords(ctx context.Context, query string) ([]mapping.Record, error)
}

type ExecutorFunc func(ctx context.Context, query string) ([]mapping.Record, error)

func (f ExecutorFunc) QueryRecords(ctx context.Context, query string) ([]mapping.Record, error) {
	return f(ctx, query)
}

// Call is one invocation of an intercepted operation. Args are carried along
// but are not substituted into the query.
type Call struct {
	Operation string
	Args      []any
}

// Operation is the shape of an intercepted operation: its result is always
// the mapped sequence.
type Operation func(ctx context.Context, args ...any) ([]any, error)

type Option func(*Engine)

func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(e *Engine) {
		if tp != nil {
			e.tracer = tp.Tracer(tracerName)
		}
	}
}

// Engine runs the query declared for an operation and maps the resulting
// records. It holds no per-call state and is safe for concurrent use.
type Engine struct {
	registry *descriptor.Registry
	exec     Executor
	tracer   trace.Tracer
}

// NewEngine builds an engine over reg. A nil exec is replaced by one that
// fails every call with ErrNoExecutor.
func NewEngine(reg *descriptor.Registry, exec Executor, opts ...Option) *Engine {
	if exec == nil {
		exec = ExecutorFunc(func(context.Context, string) ([]mapping.Record, error) {
			return nil, ErrNoExecutor
		})
	}
	e := &Engine{
		registry: reg,
		exec:     exec,
		tracer:   otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) Registry() *descriptor.Registry { return e.registry }

// Invoke resolves the descriptor of call.Operation, executes its query and
// maps every record into the descriptor's target type. Any failure returns
// no results at all.
func (e *Engine) Invoke(ctx context.Context, call Call) ([]any, error) {
	d, ok := e.registry.Lookup(call.Operation)
	if !ok {
		return nil, missing(call.Operation)
	}
	return e.run(ctx, d, call)
}

// Intercept returns the wrapped form of the named operation. The descriptor
// is resolved here, once; a missing descriptor is a wiring bug and panics.
func (e *Engine) Intercept(name string) Operation {
	d, ok := e.registry.Lookup(name)
	if !ok {
		panic(missing(name))
	}
	return func(ctx context.Context, args ...any) ([]any, error) {
		return e.run(ctx, d, Call{Operation: name, Args: args})
	}
}

// Bind is Intercept with a typed result. It fails when the descriptor of name
// does not map to T.
func Bind[T any](e *Engine, name string) (func(ctx context.Context, args ...any) ([]T, error), error) {
	d, ok := e.registry.Lookup(name)
	if !ok {
		return nil, missing(name)
	}
	if want := reflect.TypeOf((*T)(nil)).Elem(); d.Target() != want {
		return nil, fmt.Errorf("%w: %s maps to %s, not %s", ErrTargetMismatch, name, d.Target(), want)
	}
	return func(ctx context.Context, args ...any) ([]T, error) {
		out, err := e.run(ctx, d, Call{Operation: name, Args: args})
		if err != nil {
			return nil, err
		}
		typed := make([]T, len(out))
		for i, v := range out {
			typed[i] = v.(T)
		}
		return typed, nil
	}, nil
}

func MustBind[T any](e *Engine, name string) func(ctx context.Context, args ...any) ([]T, error) {
	fn, err := Bind[T](e, name)
	if err != nil {
		panic(err)
	}
	return fn
}

func (e *Engine) run(ctx context.Context, d descriptor.Descriptor, call Call) (out []any, err error) {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, span := e.tracer.Start(ctx, "intercept.invoke", trace.WithAttributes(
		attribute.String("querymap.operation", d.Name()),
		attribute.String("querymap.target", d.Target().String()),
		attribute.Int("querymap.arg_count", len(call.Args)),
	))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else {
			span.SetAttributes(attribute.Int("querymap.row_count", len(out)))
		}
		span.End()
	}()

	recs, err := e.exec.QueryRecords(ctx, d.Query())
	if err != nil {
		return nil, &QueryError{Operation: d.Name(), Err: err}
	}

	out, err = mapping.MapAll(d.Table(), recs)
	if err != nil {
		return nil, fmt.Errorf("intercept: %s: %w", d.Name(), err)
	}
	return out, nil
}
