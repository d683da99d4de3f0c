package runner

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// shellRunner returns a runner that executes shell scripts written to a temp dir.
func shellRunner(t *testing.T, scripts map[string]string) *ProcessRunner {
	t.Helper()
	dir := t.TempDir()
	for name, body := range scripts {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o755))
	}
	return &ProcessRunner{Interpreter: "/bin/sh", ScriptDir: dir}
}

func TestProcessRunner_Run(t *testing.T) {
	t.Parallel()

	r := shellRunner(t, map[string]string{
		"echo.sh":   `for a in "$@"; do echo "$a"; done`,
		"silent.sh": `exit 0`,
		"fail.sh":   "echo 'Error: Potentially unsafe expression detected'\nexit 1",
		"trace.sh":  "echo partial\necho 'ValueError: boom' >&2\nexit 3",
		"crlf.sh":   `printf 'a\r\nb\r\n'`,
		"ansi.sh":   `printf '\033[31mred\033[0m\n'`,
	})

	t.Run("passes positional arguments and preserves order", func(t *testing.T) {
		t.Parallel()
		lines, err := r.Run(context.Background(), "echo.sh", "first arg", "second")
		require.NoError(t, err)
		assert.Equal(t, []string{"first arg", "second"}, lines)
	})

	t.Run("empty output yields no lines", func(t *testing.T) {
		t.Parallel()
		lines, err := r.Run(context.Background(), "silent.sh")
		require.NoError(t, err)
		assert.Empty(t, lines)
	})

	t.Run("non-zero exit reports the last stdout line", func(t *testing.T) {
		t.Parallel()
		_, err := r.Run(context.Background(), "fail.sh")
		require.Error(t, err)

		var perr *ProcessError
		require.ErrorAs(t, err, &perr)
		assert.Equal(t, 1, perr.ExitCode)
		assert.Equal(t, "fail.sh failed (exit 1): Error: Potentially unsafe expression detected", err.Error())
	})

	t.Run("stderr takes precedence over stdout", func(t *testing.T) {
		t.Parallel()
		_, err := r.Run(context.Background(), "trace.sh")
		require.Error(t, err)
		assert.Equal(t, "trace.sh failed (exit 3): ValueError: boom", err.Error())
	})

	t.Run("normalizes CRLF", func(t *testing.T) {
		t.Parallel()
		lines, err := r.Run(context.Background(), "crlf.sh")
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b"}, lines)
	})

	t.Run("strips ANSI escapes", func(t *testing.T) {
		t.Parallel()
		lines, err := r.Run(context.Background(), "ansi.sh")
		require.NoError(t, err)
		assert.Equal(t, []string{"red"}, lines)
	})
}

func TestProcessRunner_MissingInterpreter(t *testing.T) {
	t.Parallel()

	r := &ProcessRunner{Interpreter: "definitely-not-an-interpreter-xyz", ScriptDir: t.TempDir()}
	_, err := r.Run(context.Background(), "calculator.py", "2 + 2")
	require.Error(t, err)

	var perr *ProcessError
	require.ErrorAs(t, err, &perr)
	assert.Contains(t, err.Error(), "calculator.py failed to start")
}

func TestProcessRunner_IgnoresCallerCancellation(t *testing.T) {
	t.Parallel()

	r := shellRunner(t, map[string]string{"slow.sh": "sleep 0.2\necho done"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	lines, err := r.Run(ctx, "slow.sh")
	require.NoError(t, err)
	assert.Equal(t, []string{"done"}, lines)
}

func TestProcessRunner_Timeout(t *testing.T) {
	t.Parallel()

	r := shellRunner(t, map[string]string{"hang.sh": "exec sleep 5"})
	r.Timeout = 100 * time.Millisecond

	start := time.Now()
	_, err := r.Run(context.Background(), "hang.sh")
	require.Error(t, err)
	assert.Less(t, time.Since(start), 4*time.Second)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestProcessRunner_Command(t *testing.T) {
	t.Parallel()

	r := NewProcessRunner("", "")
	assert.Equal(t,
		[]string{"python3", "-u", filepath.Join("python_scripts", "text_analyzer.py"), "hello", "basic"},
		r.Command("text_analyzer.py", "hello", "basic"),
	)
}

func TestSplitLines(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{name: "empty", in: "", want: nil},
		{name: "single newline", in: "\n", want: nil},
		{name: "one line", in: "4\n", want: []string{"4"}},
		{name: "no trailing newline", in: "a\nb", want: []string{"a", "b"}},
		{name: "blank line inside", in: "a\n\nb\n", want: []string{"a", "", "b"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SplitLines(tt.in))
		})
	}
}
