package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jmgilman/crossfit/internal/catalog"
	"github.com/jmgilman/crossfit/internal/command"
	"github.com/jmgilman/crossfit/internal/runner"
	"github.com/jmgilman/crossfit/internal/tool"
)

var reportCmd = &cobra.Command{
	Use:   "report <file>...",
	Short: "Render coverage reports",
	Long: `Render coverage files into reports.

Supported formats are Html, Xml, Csv and Cobertura. JaCoCo cannot render
Cobertura and skips it; JaCoCo also needs the compiled classes (--build-dir).
dotnet-coverage reports are rendered with reportgenerator.`,
	Example: `  # HTML and XML report from a JaCoCo dump
  crossfit report -t jacoco coverage/cross-jacoco.exec --build-dir build/classes --format html,xml

  # HTML report from cobertura files
  crossfit report -t dotnet-coverage a.xml b.xml --source-dir src`,
	Args: cobra.MinimumNArgs(1),
	RunE: runReportCmd,
}

func runReportCmd(cmd *cobra.Command, args []string) error {
	targetDir, err := cmd.Flags().GetString("target-dir")
	if err != nil {
		return fmt.Errorf("get target-dir flag: %w", err)
	}
	sourceDir, err := cmd.Flags().GetString("source-dir")
	if err != nil {
		return fmt.Errorf("get source-dir flag: %w", err)
	}
	buildDir, err := cmd.Flags().GetString("build-dir")
	if err != nil {
		return fmt.Errorf("get build-dir flag: %w", err)
	}
	formatNames, err := cmd.Flags().GetStringSlice("format")
	if err != nil {
		return fmt.Errorf("get format flag: %w", err)
	}
	formats, err := parseFormats(formatNames)
	if err != nil {
		return err
	}

	return runOperation(cmd, catalog.OperationReport, func(ctx context.Context, t tool.Tool, extras []command.Option) (*runner.Result, error) {
		return t.SaveReport(ctx, tool.ReportRequest{
			CoverageFiles: args,
			TargetDir:     targetDir,
			SourceDir:     sourceDir,
			BuildDir:      buildDir,
			Formats:       formats,
			Extras:        extras,
		})
	})
}

func init() {
	rootCmd.AddCommand(reportCmd)

	reportCmd.Flags().String("target-dir", "coverage-report", "directory to write reports to")
	reportCmd.Flags().String("source-dir", "", "source directory shown in reports")
	reportCmd.Flags().String("build-dir", "", "compiled classes directory (required by JaCoCo)")
	reportCmd.Flags().StringSliceP("format", "f", []string{"html"}, "report formats (html, xml, csv, cobertura)")
	addOperationFlags(reportCmd)
}
