package mcp

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/mark3labs/mcp-go/server"

	"github.com/rhobs/simple-mcp/pkg/dispatch"
	"github.com/rhobs/simple-mcp/pkg/metrics"
)

// SimpleMCPOptions contains configuration options for the MCP server
type SimpleMCPOptions struct {
	Dispatcher *dispatch.Dispatcher
	Metrics    *metrics.Metrics
}

const (
	mcpEndpoint            = "/mcp"
	toolsEndpoint          = "/tools"
	streamEndpoint         = "/mcp/stream"
	healthEndpoint         = "/health"
	metricsEndpoint        = "/metrics"
	serverName             = "simple-mcp-server"
	serverVersion          = "1.0.0"
	serviceName            = "Simple MCP Server"
	defaultShutdownTimeout = 10 * time.Second

	serverInstructions = `This server exposes two tools backed by Python scripts.

- calculator: evaluates a mathematical expression such as "2 + 2" or "sqrt(16) * pi".
- text_analyzer: reports word, character, sentence and paragraph counts; use analysis_type "detailed" for word frequencies and reading time.

Tool failures are returned as results with isError set; check it before using the text.`
)

func NewMCPServer(opts SimpleMCPOptions) *server.MCPServer {
	mcpServer := server.NewMCPServer(
		serverName,
		serverVersion,
		server.WithLogging(),
		server.WithRecovery(),
		server.WithToolCapabilities(true),
		server.WithInstructions(serverInstructions),
	)

	SetupTools(mcpServer, opts.Dispatcher)

	return mcpServer
}

// SetupTools registers every tool of the dispatcher's registry on mcpServer.
func SetupTools(mcpServer *server.MCPServer, d *dispatch.Dispatcher) {
	for _, tool := range d.Registry().MCPTools() {
		mcpServer.AddTool(tool, ToolHandler(d, tool.Name))
	}
}

func loggingMiddleware(next http.Handler, m *metrics.Metrics) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := newRequestID()
		w.Header().Set(requestIDHeader, id)
		r = r.WithContext(dispatch.WithRequestID(r.Context(), id))

		slog.Info("Incoming request", "method", r.Method, "path", r.URL.Path, "remote_addr", r.RemoteAddr, "request_id", id)
		slog.Debug("Request headers", "headers", r.Header)
		if r.ContentLength > 0 {
			slog.Info("Request content length", "content_length", r.ContentLength)
		}

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		m.ObserveHTTPRequest(metricPath(r.URL.Path), rec.status)
	})
}

// NewHandler builds the HTTP handler serving every endpoint.
func NewHandler(opts SimpleMCPOptions, mcpServer *server.MCPServer) http.Handler {
	mux := http.NewServeMux()

	streamableHTTPServer := server.NewStreamableHTTPServer(mcpServer,
		server.WithStateLess(true),
		server.WithEndpointPath(streamEndpoint),
	)
	mux.Handle(streamEndpoint, streamableHTTPServer)

	mux.HandleFunc("GET /{$}", StatusHandler(opts.Dispatcher))
	mux.Handle(mcpEndpoint, recoverer(MCPHandler(opts.Dispatcher)))
	mux.Handle("POST "+toolsEndpoint, recoverer(ToolsHandler(opts.Dispatcher)))
	mux.Handle("GET "+metricsEndpoint, opts.Metrics.Handler())

	mux.HandleFunc(healthEndpoint, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	return loggingMiddleware(mux, opts.Metrics)
}

// Serve runs the HTTP server on listenAddr until ctx is cancelled, then
// shuts it down gracefully.
func Serve(ctx context.Context, handler http.Handler, listenAddr string) error {
	httpServer := &http.Server{
		Addr:              listenAddr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("HTTP server starting", "listen_addr", listenAddr, "mcp_endpoint", mcpEndpoint)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case <-ctx.Done():
		slog.Warn("Context cancelled, initiating graceful shutdown")
	case err := <-serverErr:
		slog.Error("HTTP server error", "error", err)
		return err
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), defaultShutdownTimeout)
	defer shutdownCancel()

	slog.Info("Shutting down HTTP server gracefully")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
		return err
	}

	slog.Info("HTTP server shutdown complete")
	return nil
}
