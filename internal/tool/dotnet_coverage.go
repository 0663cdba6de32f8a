package tool

import (
	"context"
	"strings"

	"github.com/jmgilman/crossfit/internal/command"
	"github.com/jmgilman/crossfit/internal/runner"
)

const (
	// dotnetExtension is the extension of cobertura coverage files.
	dotnetExtension = ".xml"

	// reportDelimiter separates list values passed to reportgenerator.
	reportDelimiter = ";"

	// reportValueDelimiter joins reportgenerator flags with their values.
	reportValueDelimiter = ":"
)

// DotnetCoverage drives dotnet-coverage and, for reports, reportgenerator.
type DotnetCoverage struct {
	base
}

// SnapshotCoverage saves the coverage of a running collection session as cobertura XML.
func (d *DotnetCoverage) SnapshotCoverage(ctx context.Context, req SnapshotRequest) (*runner.Result, error) {
	target := d.targetPath(req.TargetDir, req.TargetFile, dotnetExtension)
	extras := append(append([]command.Option{}, req.Extras...), command.Value("--output", target))

	cmd, err := d.buildCommand(TypeDotnetCoverage, "snapshot", nil, extras)
	if err != nil {
		return nil, err
	}
	if req.Session != "" {
		cmd.AddArguments(req.Session)
	}

	return d.run(ctx, cmd, target)
}

// MergeCoverage merges coverage files. The output format defaults to cobertura
// unless --output-format (or -f) is passed as an extra.
func (d *DotnetCoverage) MergeCoverage(ctx context.Context, req MergeRequest) (*runner.Result, error) {
	target := d.targetPath(req.TargetDir, req.TargetFile, dotnetExtension)
	extras := append(append([]command.Option{}, req.Extras...), command.Value("--output", target))

	cmd, err := d.buildCommand(TypeDotnetCoverage, "merge", req.CoverageFiles, extras)
	if err != nil {
		return nil, err
	}
	if !isFallback(cmd) && !hasFlag(cmd.Options(), "--output-format", "-f") {
		cmd.AddOption("--output-format", command.WithValue(FormatCobertura.Extension()))
	}

	return d.run(ctx, cmd, target)
}

// SaveReport renders coverage files with reportgenerator.
// reportgenerator spells its flags "-name:value"; extras given as "--name" are
// rewritten accordingly.
func (d *DotnetCoverage) SaveReport(ctx context.Context, req ReportRequest) (*runner.Result, error) {
	extras := append([]command.Option{}, req.Extras...)
	if req.SourceDir != "" {
		extras = append(extras, command.Value("-sourcedirs", req.SourceDir))
	}
	extras = append(extras, command.Value("-targetdir", req.TargetDir))

	cmd, err := d.buildCommand(TypeReportGenerator, "", nil, extras)
	if err != nil {
		return nil, err
	}

	cmd.SetValueDelimiter(reportValueDelimiter, true).
		AddOption("-reports", command.WithValue(joinList(req.CoverageFiles)))

	formats := uniqueFormats(req.Formats, func(ReportFormat) bool { return true })
	if len(formats) > 0 {
		names := make([]string, len(formats))
		for i, f := range formats {
			names[i] = string(f)
		}
		cmd.AddOption("-reporttypes", command.WithValue(joinList(names)))
	}

	cmd.RenameFlags(func(flag string) string {
		if strings.HasPrefix(flag, "--") {
			return flag[1:]
		}
		return flag
	})

	return d.run(ctx, cmd, req.TargetDir)
}

// ResetCoverage snapshots with --reset into a scratch directory and removes it.
func (d *DotnetCoverage) ResetCoverage(ctx context.Context, session string, extras ...command.Option) (*runner.Result, error) {
	return d.reset(ctx, d, session, extras)
}

// joinList joins values for a reportgenerator list argument. No shell is
// involved, so the list is passed unquoted.
func joinList(values []string) string {
	return strings.Join(values, reportDelimiter)
}
