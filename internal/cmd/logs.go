package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/jmgilman/crossfit/internal/catalog"
	"github.com/jmgilman/crossfit/internal/logging"
	"github.com/jmgilman/crossfit/internal/tool"
)

// Default poll interval for following logs.
const defaultLogPollInterval = 100 * time.Millisecond

var logsCmd = &cobra.Command{
	Use:   "logs [run]",
	Short: "View the tool output of a run",
	Long: `View the output a coverage tool wrote during a run.

Each run's standard output is kept in a log file, followed by the error output
of a failed run and the exit code. Output is printed to stdout and the recorded
error output to stderr. Without a run, lists the runs that have a log.`,
	Example: `  # View recent output (last 100 lines)
  crossfit logs happy-panda

  # Follow a run that is still in progress
  crossfit logs happy-panda -f

  # Show the entire log
  crossfit logs happy-panda --full

  # List runs with a JaCoCo log
  crossfit logs -t jacoco`,
	Args: cobra.MaximumNArgs(1),
	RunE: runLogsCmd,
}

func runLogsCmd(cmd *cobra.Command, args []string) error {
	dir, err := logsDir()
	if err != nil {
		return fmt.Errorf("get logs directory: %w", err)
	}
	pathMgr := logging.NewPathManager(dir)

	if len(args) == 0 {
		return listRunLogs(cmd, pathMgr)
	}
	runName := args[0]

	follow, err := cmd.Flags().GetBool("follow")
	if err != nil {
		return fmt.Errorf("get follow flag: %w", err)
	}

	lines, err := cmd.Flags().GetInt("lines")
	if err != nil {
		return fmt.Errorf("get lines flag: %w", err)
	}

	full, err := cmd.Flags().GetBool("full")
	if err != nil {
		return fmt.Errorf("get full flag: %w", err)
	}

	path, err := runLogPath(cmd.Context(), pathMgr, runName)
	if err != nil {
		return err
	}

	return outputLogs(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), path, follow, lines, full)
}

// runLogPath finds a run's log through its history entry, falling back to the
// log directory for runs left out of the history.
func runLogPath(ctx context.Context, pathMgr *logging.PathManager, runName string) (string, error) {
	if store := StoreFromContext(ctx); store != nil {
		entry, err := store.Get(ctx, runName)
		switch {
		case err == nil && entry.Log != "":
			if _, statErr := os.Stat(entry.Log); statErr != nil {
				return "", fmt.Errorf("no log file found for run %s", runName)
			}
			return entry.Log, nil
		case err != nil && !errors.Is(err, catalog.ErrNotFound):
			return "", fmt.Errorf("get run: %w", err)
		}
	}

	toolName, err := pathMgr.FindRun(runName)
	if err != nil {
		return "", fmt.Errorf("no log file found for run %s", runName)
	}
	return pathMgr.RunLogPath(toolName, runName), nil
}

// listRunLogs prints "<tool> <run>" for every run log, limited to --tool when given.
func listRunLogs(cmd *cobra.Command, pathMgr *logging.PathManager) error {
	types := tool.ValidTypeNames()
	name, err := cmd.Flags().GetString("tool")
	if err != nil {
		return fmt.Errorf("get tool flag: %w", err)
	}
	if name != "" {
		types = []string{name}
	}

	for _, t := range types {
		toolName, err := parseToolName(t)
		if err != nil {
			return err
		}
		runs, err := pathMgr.ListRunLogs(toolName)
		if err != nil {
			return err
		}
		for _, run := range runs {
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", toolName, run)
		}
	}
	return nil
}

// outputLogs prints a run's output to out and its recorded error output to errOut.
func outputLogs(ctx context.Context, out, errOut io.Writer, path string, follow bool, lines int, full bool) error {
	if follow {
		return logging.Follow(ctx, path, out, errOut, lines, defaultLogPollInterval)
	}

	log, err := logging.Read(path)
	if err != nil {
		return fmt.Errorf("read log: %w", err)
	}
	if !full {
		log = log.Tail(lines)
	}

	for _, line := range log.Output {
		fmt.Fprintln(out, line)
	}
	for _, line := range log.Stderr {
		fmt.Fprintln(errOut, line)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(logsCmd)

	logsCmd.Flags().BoolP("follow", "f", false, "follow new output")
	logsCmd.Flags().IntP("lines", "n", logging.DefaultTailLines, "number of lines to show")
	logsCmd.Flags().Bool("full", false, "show the entire log")
}
