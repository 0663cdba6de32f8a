package tool

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmgilman/crossfit/internal/command"
	cfexec "github.com/jmgilman/crossfit/internal/exec"
	"github.com/jmgilman/crossfit/internal/exec/mocks"
	"github.com/jmgilman/crossfit/internal/runner"
)

func TestDotnetCoverage_SnapshotCoverage(t *testing.T) {
	ctx := context.Background()
	mockExec := succeeding()
	tl := newTool(t, TypeDotnetCoverage, runner.PolicyPropagate, mockExec)

	result, err := tl.SnapshotCoverage(ctx, SnapshotRequest{
		Session:    "session-1",
		TargetDir:  "out",
		TargetFile: "snap",
	})

	require.NoError(t, err)
	assert.Equal(t, "dotnet-coverage snapshot session-1 --output out/snap.xml", line(mockExec.RunCalls()[0].Opts))
	assert.Equal(t, "out/snap.xml", result.Target)
}

func TestDotnetCoverage_SnapshotCoverage_NoSession(t *testing.T) {
	mockExec := succeeding()
	tl := newTool(t, TypeDotnetCoverage, runner.PolicyPropagate, mockExec)

	result, err := tl.SnapshotCoverage(context.Background(), SnapshotRequest{TargetDir: "out"})

	require.NoError(t, err)
	assert.Equal(t, []string{"snapshot", "--output", "out/cross-dotnetcoverage.xml"}, mockExec.RunCalls()[0].Opts.Args)
	assert.Equal(t, "dotnet-coverage snapshot --output out/cross-dotnetcoverage.xml", result.Command)
}

func TestDotnetCoverage_MergeCoverage(t *testing.T) {
	ctx := context.Background()
	t.Chdir(t.TempDir())
	writeFiles(t, ".", "cov/one.xml")

	tests := []struct {
		name   string
		extras []command.Option
		want   string
	}{
		{
			name: "defaults to cobertura",
			want: "dotnet-coverage merge cov/one.xml --output out/cross-dotnetcoverage.xml --output-format cobertura",
		},
		{
			name:   "keeps explicit output format",
			extras: []command.Option{command.Value("--output-format", "xml")},
			want:   "dotnet-coverage merge cov/one.xml --output-format xml --output out/cross-dotnetcoverage.xml",
		},
		{
			name:   "keeps short output format",
			extras: []command.Option{command.Value("-f", "coverage")},
			want:   "dotnet-coverage merge cov/one.xml -f coverage --output out/cross-dotnetcoverage.xml",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockExec := succeeding()
			tl := newTool(t, TypeDotnetCoverage, runner.PolicyPropagate, mockExec)

			result, err := tl.MergeCoverage(ctx, MergeRequest{
				CoverageFiles: []string{"cov/*.xml"},
				TargetDir:     "out",
				Extras:        tt.extras,
			})

			require.NoError(t, err)
			assert.Equal(t, tt.want, line(mockExec.RunCalls()[0].Opts))
			assert.Equal(t, "out/cross-dotnetcoverage.xml", result.Target)
		})
	}
}

func TestDotnetCoverage_SaveReport(t *testing.T) {
	ctx := context.Background()

	t.Run("renders reportgenerator flags", func(t *testing.T) {
		mockExec := succeeding()
		tl := newTool(t, TypeDotnetCoverage, runner.PolicyPropagate, mockExec)

		result, err := tl.SaveReport(ctx, ReportRequest{
			CoverageFiles: []string{"a.xml", "b.xml"},
			TargetDir:     "report",
			SourceDir:     "src",
			Formats:       []ReportFormat{FormatHTML, FormatCobertura, "", FormatHTML},
			Extras:        []command.Option{command.Value("--verbosity", "Verbose")},
		})

		require.NoError(t, err)
		opts := mockExec.RunCalls()[0].Opts
		assert.Equal(t, "reportgenerator", opts.Name)
		assert.Equal(t, []string{
			"-verbosity:Verbose",
			"-sourcedirs:src",
			"-targetdir:report",
			"-reports:a.xml;b.xml",
			"-reporttypes:Html;Cobertura",
		}, opts.Args)
		assert.Equal(t,
			"reportgenerator -verbosity:Verbose -sourcedirs:src -targetdir:report -reports:a.xml;b.xml -reporttypes:Html;Cobertura",
			result.Command)
		assert.Equal(t, "report", result.Target)
	})

	t.Run("omits report types without formats", func(t *testing.T) {
		mockExec := succeeding()
		tl := newTool(t, TypeDotnetCoverage, runner.PolicyPropagate, mockExec)

		_, err := tl.SaveReport(ctx, ReportRequest{CoverageFiles: []string{"a.xml"}, TargetDir: "report"})

		require.NoError(t, err)
		assert.Equal(t, []string{"-targetdir:report", "-reports:a.xml"}, mockExec.RunCalls()[0].Opts.Args)
	})
}

func TestDotnetCoverage_ResetCoverage(t *testing.T) {
	ctx := context.Background()
	mockExec := &mocks.ExecutorMock{
		RunFunc: func(_ context.Context, opts *cfexec.RunOptions) (*cfexec.Result, error) {
			if opts.Name == "rm" {
				return &cfexec.Result{ExitCode: 1, Stderr: []byte("busy")}, nil
			}
			return &cfexec.Result{ExitCode: 3}, nil
		},
	}
	tl := newTool(t, TypeDotnetCoverage, runner.PolicyCatch, mockExec)

	result, err := tl.ResetCoverage(ctx, "session-1")

	require.NoError(t, err)
	calls := mockExec.RunCalls()
	require.Len(t, calls, 2)
	assert.Equal(t, "dotnet-coverage snapshot session-1 --reset --output /tmp/scratch/crossfit/cross-dotnetcoverage.xml", line(calls[0].Opts))
	assert.Equal(t, "rm -rf /tmp/scratch/crossfit", line(calls[1].Opts))
	assert.Equal(t, 3&1, result.Code)
}

func TestJoinList(t *testing.T) {
	assert.Equal(t, "a;b", joinList([]string{"a", "b"}))
	assert.Equal(t, "my dir/a.xml", joinList([]string{"my dir/a.xml"}))
	assert.Equal(t, "", joinList(nil))
}
