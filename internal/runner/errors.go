package runner

import (
	"errors"
	"fmt"
)

// Failure kinds. A *ProcessError matches exactly one of them with errors.Is.
var (
	ErrProcessFailure      = errors.New("process failed")
	ErrExecutableNotFound  = errors.New("executable not found")
	ErrUnexpectedExecution = errors.New("unexpected execution error")
)

// ErrUnknownType is returned by New for an unsupported runner type.
var ErrUnknownType = errors.New("unknown runner type")

// Exit codes reported for failures that never produced a process exit status.
const (
	ExitCodeNotFound   = 127
	ExitCodeUnexpected = 1
)

// ProcessError describes a failed command run.
type ProcessError struct {
	// Kind is one of ErrProcessFailure, ErrExecutableNotFound or ErrUnexpectedExecution.
	Kind error

	// Command is the rendered command line.
	Command string

	ExitCode int
	Stdout   string
	Stderr   string

	// Err is the underlying error, if any.
	Err error
}

// Error implements the error interface.
func (e *ProcessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%v: command %q exited with code %d: %v", e.Kind, e.Command, e.ExitCode, e.Err)
	}
	return fmt.Sprintf("%v: command %q exited with code %d", e.Kind, e.Command, e.ExitCode)
}

// Is matches the failure kind.
func (e *ProcessError) Is(target error) bool {
	return target == e.Kind
}

// Unwrap returns the underlying error.
func (e *ProcessError) Unwrap() error {
	return e.Err
}

// detail returns the text stored in Result.Error for this failure.
func (e *ProcessError) detail() string {
	if e.Stderr != "" || e.Err == nil {
		return e.Stderr
	}
	return e.Err.Error()
}
