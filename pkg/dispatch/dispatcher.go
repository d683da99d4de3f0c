// Package dispatch routes tool calls to their handlers and normalizes the
// outcome into a result envelope.
package dispatch

import (
	"context"
	"log/slog"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/rhobs/simple-mcp/pkg/metrics"
	"github.com/rhobs/simple-mcp/pkg/resultutil"
	"github.com/rhobs/simple-mcp/pkg/runner"
	"github.com/rhobs/simple-mcp/pkg/tools"
)

// unknownToolLabel keeps the metric cardinality bounded for unregistered names.
const unknownToolLabel = "unknown"

// Request is a single tool call.
type Request struct {
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments,omitempty"`
}

// Dispatcher executes registered tools through a Runner. It holds no mutable
// state and is safe for concurrent use by several transports.
type Dispatcher struct {
	registry *tools.Registry
	runner   runner.Runner
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithLogger sets the logger used for per-call logging.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Dispatcher) {
		d.logger = logger
	}
}

// WithMetrics sets the collectors updated on every call.
func WithMetrics(m *metrics.Metrics) Option {
	return func(d *Dispatcher) {
		d.metrics = m
	}
}

// New creates a Dispatcher over registry executing tools with r.
func New(registry *tools.Registry, r runner.Runner, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		registry: registry,
		runner:   r,
		logger:   slog.Default().With("component", "dispatcher"),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// ListTools returns the descriptors of all registered tools.
func (d *Dispatcher) ListTools() []tools.Descriptor {
	return d.registry.List()
}

// ToolNames returns the names of all registered tools.
func (d *Dispatcher) ToolNames() []string {
	return d.registry.Names()
}

// Registry returns the registry the dispatcher serves.
func (d *Dispatcher) Registry() *tools.Registry {
	return d.registry
}

// Call executes the named tool and always returns an envelope. Unknown tools,
// invalid arguments and process failures are rendered as isError results.
func (d *Dispatcher) Call(ctx context.Context, name string, args map[string]any) *resultutil.Result {
	out, err := d.execute(ctx, name, args)
	if err != nil {
		return resultutil.NewErrorResult(name, err)
	}
	return resultutil.NewTextResult(out.Text)
}

// Execute runs the named tool and returns the raw result without the
// envelope formatting. Failures are returned as errors.
func (d *Dispatcher) Execute(ctx context.Context, name string, args map[string]any) (string, error) {
	out, err := d.execute(ctx, name, args)
	if err != nil {
		return "", err
	}
	return out.Result, nil
}

func (d *Dispatcher) execute(ctx context.Context, name string, args map[string]any) (tools.Output, error) {
	log := d.logger.With("tool", name, "call_id", ulid.Make().String())
	if id, ok := RequestIDFrom(ctx); ok {
		log = log.With("request_id", id)
	}

	tool, ok := d.registry.Lookup(name)
	if !ok {
		err := &UnknownToolError{Name: name}
		log.Warn("Tool call rejected", "err", err)
		d.metrics.ObserveToolCall(unknownToolLabel, true, 0)
		return tools.Output{}, err
	}

	if args == nil {
		args = map[string]any{}
	}

	log.Debug("Tool call started", "arguments", args)
	start := time.Now()
	out, err := tool.Handler(ctx, d.runner, args)
	elapsed := time.Since(start)
	d.metrics.ObserveToolCall(name, err != nil, elapsed)

	if err != nil {
		log.Warn("Tool call failed", "duration", elapsed, "err", err)
		return tools.Output{}, err
	}
	log.Info("Tool call finished", "duration", elapsed)
	return out, nil
}
