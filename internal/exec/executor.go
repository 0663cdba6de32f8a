package exec

import (
	"bytes"
	"context"
	"io"
	"os"
	"os/exec"
)

type executor struct{}

// New returns an Executor backed by os/exec.
func New() Executor {
	return &executor{}
}

func (e *executor) Run(ctx context.Context, opts *RunOptions) (*Result, error) {
	// G204: the adapters build the command line; running it is the point.
	cmd := exec.CommandContext(ctx, opts.Name, opts.Args...) //nolint:gosec // Intentional subprocess execution

	if opts.Dir != "" {
		cmd.Dir = opts.Dir
	}
	if len(opts.Env) > 0 {
		cmd.Env = append(os.Environ(), opts.Env...)
	}

	var stdoutBuf, stderrBuf bytes.Buffer
	cmd.Stdout = &stdoutBuf
	if opts.Mirror != nil {
		cmd.Stdout = io.MultiWriter(&stdoutBuf, opts.Mirror)
	}
	cmd.Stderr = &stderrBuf

	err := cmd.Run()

	return &Result{
		Stdout:   stdoutBuf.Bytes(),
		Stderr:   stderrBuf.Bytes(),
		ExitCode: cmd.ProcessState.ExitCode(),
	}, err
}
