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

var mergeCmd = &cobra.Command{
	Use:   "merge <pattern>...",
	Short: "Merge coverage files into one",
	Long: `Merge coverage files into a single file.

Each argument is a glob pattern and may use "**" to match across directories.
A pattern that matches nothing fails the run.`,
	Example: `  # Merge every JaCoCo dump below build/
  crossfit merge -t jacoco 'build/**/*.exec' --target-dir coverage

  # Merge dotnet coverage as XML instead of cobertura
  crossfit merge -t dotnet-coverage '**/*.coverage' -e output-format=xml`,
	Args: cobra.MinimumNArgs(1),
	RunE: runMergeCmd,
}

func runMergeCmd(cmd *cobra.Command, args []string) error {
	targetDir, err := cmd.Flags().GetString("target-dir")
	if err != nil {
		return fmt.Errorf("get target-dir flag: %w", err)
	}
	targetFile, err := cmd.Flags().GetString("target-file")
	if err != nil {
		return fmt.Errorf("get target-file flag: %w", err)
	}

	return runOperation(cmd, catalog.OperationMerge, func(ctx context.Context, t tool.Tool, extras []command.Option) (*runner.Result, error) {
		return t.MergeCoverage(ctx, tool.MergeRequest{
			CoverageFiles: args,
			TargetDir:     targetDir,
			TargetFile:    targetFile,
			Extras:        extras,
		})
	})
}

func init() {
	rootCmd.AddCommand(mergeCmd)

	mergeCmd.Flags().String("target-dir", ".", "directory to write the merged file to")
	mergeCmd.Flags().String("target-file", "", "merged file name (default: cross-<tool>)")
	addOperationFlags(mergeCmd)
}
