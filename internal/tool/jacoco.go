package tool

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/jmgilman/crossfit/internal/command"
	"github.com/jmgilman/crossfit/internal/runner"
)

// jacocoExtension is the extension of JaCoCo execution data files.
const jacocoExtension = ".exec"

// Jacoco drives the JaCoCo command line interface (java -jar jacococli.jar).
type Jacoco struct {
	base
}

// executionCall returns the java invocation of the JaCoCo CLI jar.
func (j *Jacoco) executionCall() string {
	jar := string(TypeJacoco)
	if j.toolPath != "" {
		jar = command.RelativePath(filepath.Join(j.toolPath, jar))
	}
	return "java -jar " + jar
}

// buildCommand builds a JaCoCo command and checks that every required flag is
// present among the extras.
func (j *Jacoco) buildCommand(subcommand string, paths []string, extras []command.Option, required ...string) (*command.Command, error) {
	cmd, err := j.base.buildCommand(TypeJacoco, subcommand, paths, extras)
	if err != nil {
		return nil, err
	}
	cmd.SetExecutionCall(j.executionCall(), "")
	if isFallback(cmd) {
		return cmd, nil
	}

	for _, flag := range required {
		if !hasFlag(extras, flag) {
			return j.fallback(cmd, fmt.Errorf("%w: JaCoCo %s requires %s", ErrMissingRequiredFlag, subcommand, flag))
		}
	}
	return cmd, nil
}

// SnapshotCoverage dumps coverage from a running JaCoCo agent into a .exec file.
// The agent is addressed with --address/--port extras; Session is not used.
func (j *Jacoco) SnapshotCoverage(ctx context.Context, req SnapshotRequest) (*runner.Result, error) {
	target := j.targetPath(req.TargetDir, req.TargetFile, jacocoExtension)
	extras := append(append([]command.Option{}, req.Extras...), command.Value("--destfile", target))

	cmd, err := j.buildCommand("dump", nil, extras)
	if err != nil {
		return nil, err
	}
	return j.run(ctx, cmd, target)
}

// MergeCoverage merges .exec files into a single .exec file.
func (j *Jacoco) MergeCoverage(ctx context.Context, req MergeRequest) (*runner.Result, error) {
	target := j.targetPath(req.TargetDir, req.TargetFile, jacocoExtension)
	extras := append(append([]command.Option{}, req.Extras...), command.Value("--destfile", target))

	cmd, err := j.buildCommand("merge", req.CoverageFiles, extras)
	if err != nil {
		return nil, err
	}
	return j.run(ctx, cmd, target)
}

// SaveReport renders .exec files into HTML, XML and CSV reports.
// JaCoCo requires the class files directory (BuildDir or a --classfiles extra).
func (j *Jacoco) SaveReport(ctx context.Context, req ReportRequest) (*runner.Result, error) {
	extras := append([]command.Option{}, req.Extras...)
	if req.SourceDir != "" {
		extras = append(extras, command.Value("--sourcefiles", req.SourceDir))
	}
	if req.BuildDir != "" {
		extras = append(extras, command.Value("--classfiles", req.BuildDir))
	}

	cmd, err := j.buildCommand("report", req.CoverageFiles, extras, "--classfiles")
	if err != nil {
		return nil, err
	}
	if isFallback(cmd) {
		return j.run(ctx, cmd, req.TargetDir)
	}

	for _, f := range uniqueFormats(req.Formats, jacocoSupports) {
		flag := "--" + f.Extension()
		if f == FormatHTML {
			cmd.AddOption(flag, command.WithValue(req.TargetDir))
			continue
		}
		cmd.AddOption(flag, command.WithValue(filepath.Join(req.TargetDir, j.defaultTargetFilename()+"."+f.Extension())))
	}

	return j.run(ctx, cmd, req.TargetDir)
}

// ResetCoverage dumps with --reset into a scratch directory and removes it.
func (j *Jacoco) ResetCoverage(ctx context.Context, session string, extras ...command.Option) (*runner.Result, error) {
	return j.reset(ctx, j, session, extras)
}

func jacocoSupports(f ReportFormat) bool {
	switch f {
	case FormatHTML, FormatXML, FormatCsv:
		return true
	default:
		return false
	}
}

