// Package runner executes built commands and maps process failures to results.
//
// A Runner is configured with a Policy. With PolicyCatch every execution-time
// failure is logged and converted into a degraded Result whose Code carries the
// failure. With PolicyPropagate the same Result is returned together with a
// *ProcessError. Construction errors from the command package always propagate.
package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	osexec "os/exec"

	"github.com/google/shlex"

	"github.com/jmgilman/crossfit/internal/command"
	"github.com/jmgilman/crossfit/internal/exec"
	"github.com/jmgilman/crossfit/internal/slogger"
)

// Policy selects how execution failures reach the caller.
type Policy int

const (
	// PolicyPropagate returns execution failures as errors.
	PolicyPropagate Policy = iota
	// PolicyCatch converts execution failures into a Result.
	PolicyCatch
)

// PolicyFromCatch maps a catch flag to a Policy.
func PolicyFromCatch(catch bool) Policy {
	if catch {
		return PolicyCatch
	}
	return PolicyPropagate
}

// Type selects a runner implementation.
type Type string

// TypeLocal runs commands as local child processes.
const TypeLocal Type = "local"

// Config holds runner settings.
type Config struct {
	Policy Policy
	Dir    string   // Working directory (empty = current)
	Env    []string // Additional environment variables (KEY=VALUE format)

	// Mirror receives a copy of tool stdout while it runs.
	Mirror io.Writer

	// Logger defaults to a discarding logger.
	Logger *slog.Logger
}

// Runner runs commands to completion, one at a time.
type Runner struct {
	exec   exec.Executor
	config Config
	logger *slog.Logger
}

// New creates a Runner of the given type.
// A nil executor uses the os/exec backed implementation.
func New(t Type, cfg Config, e exec.Executor) (*Runner, error) {
	if t != TypeLocal {
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, t)
	}
	if e == nil {
		e = exec.New()
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slogger.Discard()
	}

	return &Runner{exec: e, config: cfg, logger: logger}, nil
}

// Catching reports whether failures are converted into results.
func (r *Runner) Catching() bool {
	return r.config.Policy == PolicyCatch
}

// Logger returns the runner's logger.
func (r *Runner) Logger() *slog.Logger {
	return r.logger
}

// Run validates and executes cmd.
// A process that exits non-zero or writes anything to stderr is a failure.
func (r *Runner) Run(ctx context.Context, cmd *command.Command) (*Result, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	line := cmd.String()
	result, err := r.run(ctx, cmd, line)
	if err == nil {
		r.logger.Info("command finished", "command", line, "exit_code", result.Code, "output", result.Output)
		return result, nil
	}

	r.logger.Error("command failed", "command", line, "exit_code", result.Code, "error", err)
	if r.Catching() {
		return result, nil
	}
	return result, err
}

// argv returns the program and arguments for cmd. Only the execution call is
// split, since it may carry its own arguments ("java -jar jacococli.jar").
// Every other token is passed through unchanged.
func argv(cmd *command.Command) ([]string, error) {
	call, err := shlex.Split(cmd.ExecutionCall())
	if err != nil {
		return nil, fmt.Errorf("tokenize execution call: %w", err)
	}
	if len(call) == 0 {
		return nil, errors.New("empty execution call")
	}
	return append(call, cmd.Tokens()[1:]...), nil
}

func (r *Runner) run(ctx context.Context, cmd *command.Command, line string) (*Result, error) {
	result := &Result{Command: line}

	tokens, err := argv(cmd)
	if err != nil {
		return fail(result, &ProcessError{
			Kind:     ErrUnexpectedExecution,
			Command:  line,
			ExitCode: ExitCodeUnexpected,
			Err:      err,
		})
	}

	res, err := r.exec.Run(ctx, &exec.RunOptions{
		Name:   tokens[0],
		Args:   tokens[1:],
		Dir:    r.config.Dir,
		Env:    r.config.Env,
		Mirror: r.config.Mirror,
	})
	if res != nil {
		result.Code = res.ExitCode
		result.Output = string(res.Stdout)
		result.Error = string(res.Stderr)
	}

	var exitErr *osexec.ExitError
	switch {
	case err == nil && result.Code == 0 && result.Error == "":
		return result, nil
	case err == nil, errors.As(err, &exitErr):
		return fail(result, &ProcessError{
			Kind:     ErrProcessFailure,
			Command:  line,
			ExitCode: result.Code,
			Stdout:   result.Output,
			Stderr:   result.Error,
			Err:      err,
		})
	case errors.Is(err, osexec.ErrNotFound), errors.Is(err, fs.ErrNotExist):
		return fail(result, &ProcessError{
			Kind:     ErrExecutableNotFound,
			Command:  line,
			ExitCode: ExitCodeNotFound,
			Err:      err,
		})
	default:
		return fail(result, &ProcessError{
			Kind:     ErrUnexpectedExecution,
			Command:  line,
			ExitCode: ExitCodeUnexpected,
			Stdout:   result.Output,
			Stderr:   result.Error,
			Err:      err,
		})
	}
}

// fail stores the failure in result and returns both.
func fail(result *Result, perr *ProcessError) (*Result, error) {
	result.Code = perr.ExitCode
	result.Error = perr.detail()
	return result, perr
}
