package build

import (
	"fmt"
	"strings"
)

// ToolNotFoundError is returned when a toolchain executable cannot be started.
type ToolNotFoundError struct {
	Tool string
	Err  error
}

func (e *ToolNotFoundError) Error() string {
	return fmt.Sprintf("tool %q not found: %v", e.Tool, e.Err)
}

func (e *ToolNotFoundError) Unwrap() error {
	return e.Err
}

// CommandError is returned when a coverage step exits non-zero.
type CommandError struct {
	Args     []string
	Output   string
	ExitCode int
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("%s exited with code %d", strings.Join(e.Args, " "), e.ExitCode)
}
