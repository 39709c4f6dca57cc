package dockercli

import (
	"fmt"
	"os/exec"
	"strings"
)

// ExitError reports a nonzero exit from the engine client, carrying the
// argument vector and any captured stderr. Callers that want "stop if
// running, else no-op" semantics match this type and ignore it.
type ExitError struct {
	Args   []string
	Code   int
	Stderr string
}

func (e *ExitError) Error() string {
	msg := fmt.Sprintf("%s: exit status %d", strings.Join(e.Args, " "), e.Code)
	if e.Stderr != "" {
		msg += ": " + e.Stderr
	}
	return msg
}

func commandError(args []string, output []byte, err error) error {
	if exitErr, ok := err.(*exec.ExitError); ok {
		return &ExitError{
			Args:   args,
			Code:   exitErr.ExitCode(),
			Stderr: strings.TrimSpace(string(output)),
		}
	}
	return fmt.Errorf("%s: %w", strings.Join(args, " "), err)
}
