package mcp

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"sync"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/rhobs/simple-mcp/pkg/dispatch"
)

// StdioServer serves newline-delimited JSON-RPC on a pair of streams.
//
// Messages are handled by the MCP server, except tools/call requests for
// names that are not registered: those are answered by the dispatcher so the
// caller receives an isError result instead of a JSON-RPC error.
type StdioServer struct {
	server     *server.MCPServer
	dispatcher *dispatch.Dispatcher
	logger     *slog.Logger

	writeMu sync.Mutex
}

// NewStdioServer creates a stdio transport over mcpServer and d.
func NewStdioServer(mcpServer *server.MCPServer, d *dispatch.Dispatcher) *StdioServer {
	return &StdioServer{
		server:     mcpServer,
		dispatcher: d,
		logger:     slog.Default().With("component", "stdio"),
	}
}

// jsonrpcResponse is a successful JSON-RPC response with a raw id.
type jsonrpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  any             `json:"result"`
}

// callProbe extracts the fields needed to route a tools/call request.
type callProbe struct {
	ID     json.RawMessage   `json:"id"`
	Method string            `json:"method"`
	Params *dispatch.Request `json:"params"`
}

// Listen reads requests from stdin and writes responses to stdout until
// stdin is closed or ctx is cancelled. Requests are handled concurrently.
func (s *StdioServer) Listen(ctx context.Context, stdin io.Reader, stdout io.Writer) error {
	var wg sync.WaitGroup
	defer wg.Wait()

	lines := make(chan []byte)
	readErr := make(chan error, 1)
	go func() {
		reader := bufio.NewReader(stdin)
		for {
			line, err := reader.ReadBytes('\n')
			if len(bytes.TrimSpace(line)) > 0 {
				select {
				case lines <- line:
				case <-ctx.Done():
					return
				}
			}
			if err != nil {
				readErr <- err
				return
			}
		}
	}()

	s.logger.Info("MCP server listening on stdio")
	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-readErr:
			if errors.Is(err, io.EOF) {
				s.logger.Info("Stdin closed, stopping stdio transport")
				return nil
			}
			return err
		case line := <-lines:
			wg.Add(1)
			go func() {
				defer wg.Done()
				s.handle(ctx, line, stdout)
			}()
		}
	}
}

func (s *StdioServer) handle(ctx context.Context, line []byte, stdout io.Writer) {
	var response any
	if resp, ok := s.unknownToolResponse(ctx, line); ok {
		response = resp
	} else if msg := s.server.HandleMessage(ctx, json.RawMessage(line)); msg != nil {
		response = msg
	} else {
		// notification
		return
	}

	data, err := json.Marshal(response)
	if err != nil {
		s.logger.Error("Failed to marshal response", "error", err)
		return
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if _, err := stdout.Write(append(data, '\n')); err != nil {
		s.logger.Error("Failed to write response", "error", err)
	}
}

func (s *StdioServer) unknownToolResponse(ctx context.Context, line []byte) (jsonrpcResponse, bool) {
	var probe callProbe
	if err := json.Unmarshal(line, &probe); err != nil {
		return jsonrpcResponse{}, false
	}
	if probe.Method != string(mcp.MethodToolsCall) || len(probe.ID) == 0 || probe.Params == nil {
		return jsonrpcResponse{}, false
	}
	if _, ok := s.dispatcher.Registry().Lookup(probe.Params.Name); ok {
		return jsonrpcResponse{}, false
	}
	return jsonrpcResponse{
		JSONRPC: mcp.JSONRPC_VERSION,
		ID:      probe.ID,
		Result:  s.dispatcher.Call(ctx, probe.Params.Name, probe.Params.Arguments),
	}, true
}
