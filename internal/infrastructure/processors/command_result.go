package processors

import (
	"fmt"
	"strings"
)

// CommandResult holds the output of a command execution
type CommandResult struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

func (r *CommandResult) IsSuccess() bool {
	return r.ExitCode == 0
}

// Diagnostic returns the text to report for a failed command: stderr when
// present, stdout otherwise.
func (r *CommandResult) Diagnostic() string {
	if s := strings.TrimSpace(r.Stderr); s != "" {
		return s
	}
	if s := strings.TrimSpace(r.Stdout); s != "" {
		return s
	}
	return fmt.Sprintf("command failed with exit code %d", r.ExitCode)
}
