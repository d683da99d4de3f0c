package dispatch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rhobs/simple-mcp/pkg/metrics"
	"github.com/rhobs/simple-mcp/pkg/resultutil"
	"github.com/rhobs/simple-mcp/pkg/runner"
	"github.com/rhobs/simple-mcp/pkg/tools"
)

// MockedRunner is a Runner whose behavior is set per test.
type MockedRunner struct {
	RunFunc func(ctx context.Context, script string, args ...string) ([]string, error)

	mu    sync.Mutex
	calls int
}

func (m *MockedRunner) Run(ctx context.Context, script string, args ...string) ([]string, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
	if m.RunFunc != nil {
		return m.RunFunc(ctx, script, args...)
	}
	return nil, nil
}

func (m *MockedRunner) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Ensure MockedRunner implements runner.Runner at compile time
var _ runner.Runner = (*MockedRunner)(nil)

func newTestDispatcher(r runner.Runner, opts ...Option) *Dispatcher {
	opts = append([]Option{WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))}, opts...)
	return New(tools.NewRegistry(), r, opts...)
}

func TestDispatcher_Call(t *testing.T) {
	tests := []struct {
		name        string
		tool        string
		args        map[string]any
		runFunc     func(ctx context.Context, script string, args ...string) ([]string, error)
		wantText    string
		wantIsError bool
		wantCalls   int
	}{
		{
			name: "calculator",
			tool: "calculator",
			args: map[string]any{"expression": "2 + 2"},
			runFunc: func(_ context.Context, script string, args ...string) ([]string, error) {
				return []string{"4"}, nil
			},
			wantText:  "Calculation: 2 + 2 = 4",
			wantCalls: 1,
		},
		{
			name: "text analyzer",
			tool: "text_analyzer",
			args: map[string]any{"text": "Go is fun."},
			runFunc: func(_ context.Context, script string, args ...string) ([]string, error) {
				return []string{"Basic Statistics:", "   Words: 3"}, nil
			},
			wantText:  "Text Analysis Results:\nBasic Statistics:\n   Words: 3",
			wantCalls: 1,
		},
		{
			name:        "unknown tool",
			tool:        "frobnicate",
			args:        map[string]any{},
			wantText:    "Error executing tool frobnicate: Unknown tool: frobnicate",
			wantIsError: true,
		},
		{
			name:        "nil arguments",
			tool:        "calculator",
			wantText:    "Error executing tool calculator: missing required argument: expression",
			wantIsError: true,
		},
		{
			name: "process failure",
			tool: "text_analyzer",
			args: map[string]any{"text": ""},
			runFunc: func(_ context.Context, script string, args ...string) ([]string, error) {
				return nil, fmt.Errorf("%s failed (exit 1): Error: No text provided", script)
			},
			wantText:    "Error executing tool text_analyzer: text_analyzer.py failed (exit 1): Error: No text provided",
			wantIsError: true,
			wantCalls:   1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &MockedRunner{RunFunc: tt.runFunc}
			result := newTestDispatcher(r).Call(context.Background(), tt.tool, tt.args)

			require.NotNil(t, result)
			require.Len(t, result.Content, 1)
			assert.Equal(t, resultutil.ContentTypeText, result.Content[0].Type)
			assert.Equal(t, tt.wantText, result.Content[0].Text)
			assert.Equal(t, tt.wantIsError, result.IsError)
			assert.Equal(t, tt.wantCalls, r.Calls())
		})
	}
}

func TestDispatcher_Execute(t *testing.T) {
	r := &MockedRunner{RunFunc: func(_ context.Context, _ string, _ ...string) ([]string, error) {
		return []string{"line 1", "line 2"}, nil
	}}
	d := newTestDispatcher(r)

	result, err := d.Execute(context.Background(), "text_analyzer", map[string]any{"text": "abc"})
	require.NoError(t, err)
	assert.Equal(t, "line 1\nline 2", result)

	result, err = d.Execute(context.Background(), "calculator", map[string]any{"expression": "1"})
	require.NoError(t, err)
	assert.Equal(t, "line 1", result)

	_, err = d.Execute(context.Background(), "frobnicate", nil)
	var unknown *UnknownToolError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "frobnicate", unknown.Name)
}

func TestDispatcher_MissingInterpreter(t *testing.T) {
	r := &runner.ProcessRunner{Interpreter: "no-such-interpreter-for-tests", ScriptDir: t.TempDir()}
	d := newTestDispatcher(r)

	for _, call := range []struct {
		tool string
		args map[string]any
	}{
		{tool: "calculator", args: map[string]any{"expression": "2 + 2"}},
		{tool: "text_analyzer", args: map[string]any{"text": "hello"}},
	} {
		result := d.Call(context.Background(), call.tool, call.args)
		assert.True(t, result.IsError)
		assert.True(t, strings.HasPrefix(result.Text(), "Error executing tool "+call.tool+": "), result.Text())
	}
}

func TestDispatcher_ConcurrentCalls(t *testing.T) {
	r := &MockedRunner{RunFunc: func(_ context.Context, _ string, args ...string) ([]string, error) {
		return []string{args[0]}, nil
	}}
	d := newTestDispatcher(r)

	var wg sync.WaitGroup
	results := make([]string, 20)
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = d.Call(context.Background(), "calculator", map[string]any{"expression": fmt.Sprint(i)}).Text()
		}()
	}
	wg.Wait()

	for i, text := range results {
		assert.Equal(t, fmt.Sprintf("Calculation: %d = %d", i, i), text)
	}
	assert.Equal(t, 20, r.Calls())
}

func TestDispatcher_Metrics(t *testing.T) {
	m := metrics.New()
	r := &MockedRunner{RunFunc: func(_ context.Context, _ string, _ ...string) ([]string, error) {
		return []string{"4"}, nil
	}}
	d := newTestDispatcher(r, WithMetrics(m))

	d.Call(context.Background(), "calculator", map[string]any{"expression": "2 + 2"})
	d.Call(context.Background(), "calculator", map[string]any{})
	d.Call(context.Background(), "frobnicate", nil)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.ToolCalls.WithLabelValues("calculator", metrics.OutcomeSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ToolCalls.WithLabelValues("calculator", metrics.OutcomeError)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ToolCalls.WithLabelValues("unknown", metrics.OutcomeError)))
}

func TestDispatcher_ListTools(t *testing.T) {
	d := newTestDispatcher(&MockedRunner{})
	assert.Equal(t, d.ListTools(), d.ListTools())
	assert.Equal(t, []string{"calculator", "text_analyzer"}, d.ToolNames())
}

// TestDispatcher_PythonScripts runs the bundled scripts when python3 is available.
func TestDispatcher_PythonScripts(t *testing.T) {
	if _, err := exec.LookPath("python3"); err != nil {
		t.Skip("python3 not available")
	}
	d := newTestDispatcher(runner.NewProcessRunner("python3", filepath.Join("..", "..", "python_scripts")))

	result := d.Call(context.Background(), "calculator", map[string]any{"expression": "2 + 2"})
	assert.False(t, result.IsError)
	assert.Equal(t, "Calculation: 2 + 2 = 4", result.Text())

	result = d.Call(context.Background(), "calculator", map[string]any{"expression": "__import__('os')"})
	assert.True(t, result.IsError)
	assert.Equal(t, "Error executing tool calculator: calculator.py failed (exit 1): Error: Potentially unsafe expression detected", result.Text())

	omitted := d.Call(context.Background(), "text_analyzer", map[string]any{"text": "Hello world. Bye."})
	explicit := d.Call(context.Background(), "text_analyzer", map[string]any{"text": "Hello world. Bye.", "analysis_type": "basic"})
	assert.False(t, omitted.IsError)
	assert.Equal(t, explicit, omitted)
	assert.True(t, strings.HasPrefix(omitted.Text(), "Text Analysis Results:\n"))
	assert.Contains(t, omitted.Text(), "Words: 3")
}
