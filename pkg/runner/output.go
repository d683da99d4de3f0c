package runner

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
)

// Sanitize strips ANSI escape sequences and normalizes CRLF to LF.
func Sanitize(s string) string {
	s = ansi.Strip(s)
	return strings.ReplaceAll(s, "\r\n", "\n")
}

// SplitLines splits process output into lines. A trailing newline does not
// produce an empty final line, and empty output yields no lines.
func SplitLines(s string) []string {
	s = strings.TrimSuffix(s, "\n")
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}
