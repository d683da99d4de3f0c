package runner

import (
	"fmt"
	"strings"
)

// ProcessError reports an external process that could not be started or
// exited unsuccessfully.
type ProcessError struct {
	Script   string
	ExitCode int
	Stdout   []string
	Stderr   string
	Err      error

	started bool
}

func (e *ProcessError) Error() string {
	if !e.started {
		return fmt.Sprintf("%s failed to start: %v", e.Script, e.Err)
	}
	return fmt.Sprintf("%s failed (exit %d): %s", e.Script, e.ExitCode, e.detail())
}

func (e *ProcessError) Unwrap() error {
	return e.Err
}

// detail picks the most useful message: the last stderr line (tracebacks end
// with the exception), then the last stdout line (the scripts print
// "Error: ..." before exiting), then the wait error.
func (e *ProcessError) detail() string {
	if line := lastNonEmpty(strings.Split(e.Stderr, "\n")); line != "" {
		return line
	}
	if line := lastNonEmpty(e.Stdout); line != "" {
		return line
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "unknown error"
}

func lastNonEmpty(lines []string) string {
	for i := len(lines) - 1; i >= 0; i-- {
		if s := strings.TrimSpace(lines[i]); s != "" {
			return s
		}
	}
	return ""
}
