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

var resetCmd = &cobra.Command{
	Use:   "reset [session]",
	Short: "Discard the coverage collected so far",
	Long: `Discard the coverage collected so far.

The tool snapshots with --reset into a scratch directory which is removed
afterwards. On a terminal the reset is confirmed first unless --yes is given;
without a terminal --yes is required.`,
	Example: `  # Reset a dotnet-coverage session without asking
  crossfit reset my-session -t dotnet-coverage --yes`,
	Args: cobra.MaximumNArgs(1),
	RunE: runResetCmd,
}

func runResetCmd(cmd *cobra.Command, args []string) error {
	yes, err := cmd.Flags().GetBool("yes")
	if err != nil {
		return fmt.Errorf("get yes flag: %w", err)
	}

	var session string
	if len(args) == 1 {
		session = args[0]
	}

	if !yes {
		p := newPrompter(cmd)
		confirmed, err := p.Confirm("Reset collected coverage?", "Coverage collected so far is discarded.")
		if err != nil {
			return err
		}
		if !confirmed {
			p.Print("Reset canceled (pass --yes to skip confirmation)")
			return nil
		}
	}

	return runOperation(cmd, catalog.OperationReset, func(ctx context.Context, t tool.Tool, extras []command.Option) (*runner.Result, error) {
		return t.ResetCoverage(ctx, session, extras...)
	})
}

func init() {
	rootCmd.AddCommand(resetCmd)

	resetCmd.Flags().BoolP("yes", "y", false, "skip confirmation")
	addOperationFlags(resetCmd)
}
