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

var snapshotCmd = &cobra.Command{
	Use:   "snapshot [session]",
	Short: "Save the coverage collected so far",
	Long: `Save the coverage collected so far to a file.

dotnet-coverage snapshots the given collection session. JaCoCo dumps from the
running agent addressed with --extra address=... and --extra port=...; the
session argument is ignored.`,
	Example: `  # Snapshot a dotnet-coverage session into ./coverage
  crossfit snapshot my-session -t dotnet-coverage --target-dir coverage

  # Dump a JaCoCo agent on a non-default port
  crossfit snapshot -t jacoco -e port=6301 --target-file integration`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSnapshotCmd,
}

func runSnapshotCmd(cmd *cobra.Command, args []string) error {
	targetDir, err := cmd.Flags().GetString("target-dir")
	if err != nil {
		return fmt.Errorf("get target-dir flag: %w", err)
	}
	targetFile, err := cmd.Flags().GetString("target-file")
	if err != nil {
		return fmt.Errorf("get target-file flag: %w", err)
	}

	var session string
	if len(args) == 1 {
		session = args[0]
	}

	return runOperation(cmd, catalog.OperationSnapshot, func(ctx context.Context, t tool.Tool, extras []command.Option) (*runner.Result, error) {
		return t.SnapshotCoverage(ctx, tool.SnapshotRequest{
			Session:    session,
			TargetDir:  targetDir,
			TargetFile: targetFile,
			Extras:     extras,
		})
	})
}

func init() {
	rootCmd.AddCommand(snapshotCmd)

	snapshotCmd.Flags().String("target-dir", ".", "directory to write the coverage file to")
	snapshotCmd.Flags().String("target-file", "", "coverage file name (default: cross-<tool>)")
	addOperationFlags(snapshotCmd)
}
