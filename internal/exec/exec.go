// Package exec runs external programs for the coverage tool adapters.
package exec

import (
	"context"
	"io"
)

// Result holds the output from a completed process.
type Result struct {
	Stdout   []byte
	Stderr   []byte
	ExitCode int
}

// RunOptions configures a single process run.
type RunOptions struct {
	Name string   // Program name or path (required)
	Args []string // Program arguments
	Dir  string   // Working directory (empty = current)
	Env  []string // Additional environment variables (KEY=VALUE format)

	// Mirror receives a copy of stdout as it is produced. Output is still
	// captured into Result.Stdout.
	Mirror io.Writer
}

// Executor runs external programs.
//
//go:generate go run github.com/matryer/moq@latest -pkg mocks -out mocks/executor.go . Executor
type Executor interface {
	// Run executes a program and returns its captured output.
	// Returns *os/exec.ExitError on non-zero exit and *os/exec.Error when the
	// program cannot be found (use errors.As to extract).
	Run(ctx context.Context, opts *RunOptions) (*Result, error)
}
