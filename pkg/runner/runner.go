package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"path/filepath"
	"time"
)

const (
	DefaultInterpreter = "python3"
	DefaultScriptDir   = "python_scripts"
)

// Runner executes an external script and returns its standard output as lines.
type Runner interface {
	Run(ctx context.Context, script string, args ...string) ([]string, error)
}

// Func adapts an ordinary function to the Runner interface.
type Func func(ctx context.Context, script string, args ...string) ([]string, error)

func (f Func) Run(ctx context.Context, script string, args ...string) ([]string, error) {
	return f(ctx, script, args...)
}

// ProcessRunner runs scripts through an interpreter in a child process.
//
// Every Run spawns exactly one process and waits for it. The process is
// detached from the caller's cancellation: once started it runs until it
// exits, unless Timeout is positive.
type ProcessRunner struct {
	// Interpreter is the executable used to run scripts, e.g. "python3".
	Interpreter string
	// InterpreterArgs are placed before the script path, e.g. "-u".
	InterpreterArgs []string
	// ScriptDir is the directory holding the scripts.
	ScriptDir string
	// Timeout bounds a single run. Zero means no limit.
	Timeout time.Duration

	Logger *slog.Logger
}

var _ Runner = (*ProcessRunner)(nil)

// NewProcessRunner returns a runner for python scripts in scriptDir using
// unbuffered output, matching how the tool scripts expect to be invoked.
func NewProcessRunner(interpreter, scriptDir string) *ProcessRunner {
	if interpreter == "" {
		interpreter = DefaultInterpreter
	}
	if scriptDir == "" {
		scriptDir = DefaultScriptDir
	}
	return &ProcessRunner{
		Interpreter:     interpreter,
		InterpreterArgs: []string{"-u"},
		ScriptDir:       scriptDir,
	}
}

// Command returns the argv used to run script with args.
func (r *ProcessRunner) Command(script string, args ...string) []string {
	argv := make([]string, 0, 2+len(r.InterpreterArgs)+len(args))
	argv = append(argv, r.Interpreter)
	argv = append(argv, r.InterpreterArgs...)
	argv = append(argv, filepath.Join(r.ScriptDir, script))
	return append(argv, args...)
}

// Run executes script with positional args and returns stdout split into lines.
func (r *ProcessRunner) Run(ctx context.Context, script string, args ...string) ([]string, error) {
	ctx = context.WithoutCancel(ctx)
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	argv := r.Command(script, args...)
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	if r.Timeout > 0 {
		// grandchildren may keep the output pipes open after the kill
		cmd.WaitDelay = time.Second
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	log := r.logger().With("script", script)
	log.Debug("Starting external process", "argv", argv)

	start := time.Now()
	if err := cmd.Start(); err != nil {
		return nil, &ProcessError{Script: script, ExitCode: -1, Err: err, started: false}
	}

	waitErr := cmd.Wait()
	lines := SplitLines(Sanitize(stdout.String()))

	if waitErr != nil {
		perr := &ProcessError{
			Script:   script,
			ExitCode: -1,
			Stdout:   lines,
			Stderr:   Sanitize(stderr.String()),
			Err:      waitErr,
			started:  true,
		}
		var exitErr *exec.ExitError
		if errors.As(waitErr, &exitErr) {
			perr.ExitCode = exitErr.ExitCode()
		}
		if ctx.Err() != nil {
			perr.Err = fmt.Errorf("%w: %w", ctx.Err(), waitErr)
		}
		log.Debug("External process failed", "exit_code", perr.ExitCode, "duration", time.Since(start), "err", waitErr)
		return nil, perr
	}

	if stderr.Len() > 0 {
		log.Debug("External process wrote to stderr", "stderr", stderr.String())
	}
	log.Debug("External process finished", "lines", len(lines), "duration", time.Since(start))
	return lines, nil
}

func (r *ProcessRunner) logger() *slog.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return slog.Default().With("component", "runner")
}
