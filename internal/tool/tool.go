// Package tool adapts coverage tools to a common set of operations.
//
// Each adapter translates snapshot, merge, report and reset requests into a
// command.Command using the tool's own subcommands and flag spellings, and
// runs it through a runner.Runner.
package tool

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/jmgilman/crossfit/internal/command"
	"github.com/jmgilman/crossfit/internal/runner"
)

// helpFlag is what a command is reduced to when it cannot be built under a
// catching runner.
const helpFlag = "--help"

// SnapshotRequest asks a tool to save the coverage collected so far.
type SnapshotRequest struct {
	Session    string // Collection session the tool should snapshot
	TargetDir  string
	TargetFile string // Defaults to cross-<tool> with the tool's extension
	Extras     []command.Option
}

// MergeRequest asks a tool to merge coverage files into one.
type MergeRequest struct {
	CoverageFiles []string // Glob patterns, "**" supported
	TargetDir     string
	TargetFile    string
	Extras        []command.Option
}

// ReportRequest asks a tool to render coverage reports.
type ReportRequest struct {
	CoverageFiles []string
	TargetDir     string
	SourceDir     string
	BuildDir      string
	Formats       []ReportFormat // Unsupported and empty entries are skipped
	Extras        []command.Option
}

// Tool is a coverage tool adapter.
type Tool interface {
	// Type returns the tool type.
	Type() Type

	// SnapshotCoverage saves collected coverage to a file.
	SnapshotCoverage(ctx context.Context, req SnapshotRequest) (*runner.Result, error)

	// MergeCoverage merges coverage files into one file.
	MergeCoverage(ctx context.Context, req MergeRequest) (*runner.Result, error)

	// SaveReport renders coverage files into reports.
	SaveReport(ctx context.Context, req ReportRequest) (*runner.Result, error)

	// ResetCoverage clears the coverage collected by a session.
	ResetCoverage(ctx context.Context, session string, extras ...command.Option) (*runner.Result, error)
}

// Config holds settings shared by all adapters.
type Config struct {
	// ToolPath is the directory holding the tool executable. Empty uses PATH.
	ToolPath string

	// Runner executes built commands. Defaults to a local runner that catches failures.
	Runner *runner.Runner

	// Logger defaults to the runner's logger.
	Logger *slog.Logger

	// TempDir holds scratch output for ResetCoverage. Defaults to os.TempDir().
	TempDir string
}

// New creates the adapter for the given tool type.
func New(t Type, cfg Config) (Tool, error) {
	b, err := newBase(t, cfg)
	if err != nil {
		return nil, err
	}

	switch t {
	case TypeJacoco:
		return &Jacoco{base: b}, nil
	case TypeDotnetCoverage:
		return &DotnetCoverage{base: b}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownType, t)
	}
}

// base carries what every adapter needs to build and run commands.
type base struct {
	toolType Type
	toolPath string
	runner   *runner.Runner
	logger   *slog.Logger
	tempDir  string
}

func newBase(t Type, cfg Config) (base, error) {
	r := cfg.Runner
	if r == nil {
		var err error
		r, err = runner.New(runner.TypeLocal, runner.Config{Policy: runner.PolicyCatch, Logger: cfg.Logger}, nil)
		if err != nil {
			return base{}, err
		}
	}

	logger := cfg.Logger
	if logger == nil {
		logger = r.Logger()
	}

	tempDir := cfg.TempDir
	if tempDir == "" {
		tempDir = os.TempDir()
	}

	return base{
		toolType: t,
		toolPath: cfg.ToolPath,
		runner:   r,
		logger:   logger.With("tool", t.Name()),
		tempDir:  tempDir,
	}, nil
}

// Type returns the tool type.
func (b *base) Type() Type {
	return b.toolType
}

// defaultTargetFilename returns the file name used when a request names none.
func (b *base) defaultTargetFilename() string {
	return strings.ToLower("cross-" + b.toolType.Name())
}

// targetPath joins dir and file, falling back to the default file name and
// appending ext when the file has no extension.
func (b *base) targetPath(dir, file, ext string) string {
	if file == "" {
		file = b.defaultTargetFilename()
	}
	path := filepath.Join(dir, file)
	if filepath.Ext(path) == "" {
		path += ext
	}
	return path
}

// buildCommand assembles "<tool> <subcommand> <paths…> <extras…>".
// When a path pattern matches nothing the failure is returned, or with a
// catching runner logged and replaced by a "--help" invocation.
func (b *base) buildCommand(t Type, subcommand string, paths []string, extras []command.Option) (*command.Command, error) {
	cmd, err := command.New()
	if err != nil {
		return nil, err
	}
	cmd.SetExecutionCall(string(t), b.toolPath).SetSubcommand(subcommand)

	if _, err := cmd.AddPathArguments(paths...); err != nil {
		return b.fallback(cmd, fmt.Errorf("build %s command: %w", b.toolType.Name(), err))
	}

	return cmd.AddOptions(extras...), nil
}

// fallback handles a command that cannot be built as requested.
func (b *base) fallback(cmd *command.Command, err error) (*command.Command, error) {
	b.logger.Error("failed to build command", "command", cmd.String(), "error", err)
	if !b.runner.Catching() {
		return nil, err
	}
	return cmd.Reset().AddOption(helpFlag), nil
}

// isFallback reports whether cmd was reduced to the "--help" invocation, in
// which case no further options should be appended.
func isFallback(cmd *command.Command) bool {
	options := cmd.Options()
	return len(cmd.Arguments()) == 0 && len(options) == 1 &&
		options[0].Name() == helpFlag && !options[0].HasValue()
}

// run executes cmd and records target on the result.
func (b *base) run(ctx context.Context, cmd *command.Command, target string) (*runner.Result, error) {
	result, err := b.runner.Run(ctx, cmd)
	if result != nil {
		result.Target = target
	}
	return result, err
}

// reset snapshots with --reset into a scratch directory and removes it.
// The two runs are combined into one result.
func (b *base) reset(ctx context.Context, t Tool, session string, extras []command.Option) (*runner.Result, error) {
	scratch := filepath.Join(b.tempDir, "crossfit")
	extras = append(append([]command.Option{}, extras...), command.Flag("--reset"))

	snapshot, err := t.SnapshotCoverage(ctx, SnapshotRequest{
		Session:   session,
		TargetDir: scratch,
		Extras:    extras,
	})
	if err != nil {
		return snapshot, err
	}

	cleanup, err := command.New("rm", "-rf", scratch)
	if err != nil {
		return nil, err
	}
	cleaned, err := b.run(ctx, cleanup, scratch)
	if err != nil {
		return cleaned, err
	}

	combined := snapshot.Combine(*cleaned)
	return &combined, nil
}

// hasFlag reports whether any option uses one of the given flag names.
func hasFlag(options []command.Option, names ...string) bool {
	for _, opt := range options {
		for _, name := range names {
			if opt.Name() == name {
				return true
			}
		}
	}
	return false
}
