package mcp

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/rhobs/simple-mcp/pkg/dispatch"
	"github.com/rhobs/simple-mcp/pkg/tools"
)

const (
	MethodToolsList = "tools/list"
	MethodToolsCall = "tools/call"

	requestIDHeader = "X-Request-Id"
	maxBodyBytes    = 1 << 20
)

// Request is the body accepted on the /mcp endpoint.
type Request struct {
	Method string            `json:"method"`
	Params *dispatch.Request `json:"params,omitempty"`
}

// ListToolsResponse is the tools/list response body.
type ListToolsResponse struct {
	Tools []tools.Descriptor `json:"tools"`
}

// ToolsRequest is the body accepted on the simplified /tools endpoint.
type ToolsRequest struct {
	Name string         `json:"name"`
	Args map[string]any `json:"args"`
}

// ToolsResponse is the successful /tools response body.
type ToolsResponse struct {
	Result string `json:"result"`
}

// ErrorResponse is returned for transport level failures.
type ErrorResponse struct {
	Error string `json:"error"`
}

// StatusResponse is the body of the status endpoint.
type StatusResponse struct {
	Status    string            `json:"status"`
	Service   string            `json:"service"`
	Tools     []string          `json:"tools"`
	Timestamp string            `json:"timestamp"`
	Endpoints map[string]string `json:"endpoints"`
}

// StatusHandler reports that the server is running and which tools it serves.
func StatusHandler(d *dispatch.Dispatcher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, StatusResponse{
			Status:    "running",
			Service:   serviceName,
			Tools:     d.ToolNames(),
			Timestamp: time.Now().UTC().Format("2006-01-02T15:04:05.000Z07:00"),
			Endpoints: map[string]string{
				"health":  "/",
				"mcp":     mcpEndpoint,
				"tools":   toolsEndpoint,
				"stream":  streamEndpoint,
				"metrics": metricsEndpoint,
			},
		})
	}
}

// MCPHandler serves tools/list and tools/call from a plain JSON body.
// Tool failures are answered with 200 and an isError envelope; only
// malformed requests get an error status.
func MCPHandler(d *dispatch.Dispatcher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req Request
		if err := decodeBody(w, r, &req); err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %s", err))
			return
		}

		switch req.Method {
		case MethodToolsList:
			writeJSON(w, http.StatusOK, ListToolsResponse{Tools: d.ListTools()})
		case MethodToolsCall:
			if req.Params == nil || req.Params.Name == "" {
				writeError(w, http.StatusBadRequest, "missing params for tools/call")
				return
			}
			writeJSON(w, http.StatusOK, d.Call(r.Context(), req.Params.Name, req.Params.Arguments))
		default:
			writeError(w, http.StatusBadRequest, "Unsupported MCP method")
		}
	}
}

// ToolsHandler serves the simplified {name, args} -> {result} variant.
// Every failure, including unknown tools, is answered with 500.
func ToolsHandler(d *dispatch.Dispatcher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ToolsRequest
		if err := decodeBody(w, r, &req); err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %s", err))
			return
		}

		result, err := d.Execute(r.Context(), req.Name, req.Args)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, ToolsResponse{Result: result})
	}
}

// decodeBody decodes a JSON body into v. An empty body leaves v untouched.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return err
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	return json.Unmarshal(body, v)
}

// recoverer turns a panicking handler into a 500 response.
func recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				slog.Error("Handler panicked", "path", r.URL.Path, "panic", rec)
				writeError(w, http.StatusInternalServerError, fmt.Sprint(rec))
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to write response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: message})
}

func newRequestID() string {
	return ulid.Make().String()
}

// metricPath maps a request path to a bounded label value.
func metricPath(path string) string {
	switch path {
	case "/", mcpEndpoint, toolsEndpoint, streamEndpoint, healthEndpoint, metricsEndpoint:
		return path
	default:
		return "other"
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (r *statusRecorder) WriteHeader(status int) {
	if !r.wroteHeader {
		r.status = status
		r.wroteHeader = true
	}
	r.ResponseWriter.WriteHeader(status)
}

func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}
