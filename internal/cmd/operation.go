package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/jmgilman/crossfit/internal/catalog"
	"github.com/jmgilman/crossfit/internal/command"
	"github.com/jmgilman/crossfit/internal/logging"
	"github.com/jmgilman/crossfit/internal/names"
	"github.com/jmgilman/crossfit/internal/runner"
	"github.com/jmgilman/crossfit/internal/slogger"
	"github.com/jmgilman/crossfit/internal/spinner"
	"github.com/jmgilman/crossfit/internal/tool"
)

// operationFunc performs one tool operation with the resolved extras.
type operationFunc func(ctx context.Context, t tool.Tool, extras []command.Option) (*runner.Result, error)

// addOperationFlags registers the flags shared by every tool operation.
func addOperationFlags(c *cobra.Command) {
	c.Flags().StringArrayP("extra", "e", nil, "extra tool flag as key=value (repeatable)")
	c.Flags().Bool("json", false, "print the result as JSON")
	c.Flags().Bool("no-history", false, "do not record the run in the history")
	c.Flags().String("name", "", "run name (default: generated)")
}

// runOperation names the run, records tool output in the run log, executes op
// and records the result in the history.
func runOperation(cmd *cobra.Command, op catalog.Operation, fn operationFunc) error {
	ctx := cmd.Context()
	logger := slogger.L(ctx)

	toolType, err := resolveToolType(cmd)
	if err != nil {
		return err
	}
	toolPath, err := resolveToolPath(cmd, toolType)
	if err != nil {
		return err
	}
	catch, err := resolveCatch(cmd)
	if err != nil {
		return err
	}
	extras, err := resolveExtras(cmd, toolType)
	if err != nil {
		return err
	}
	asJSON, err := cmd.Flags().GetBool("json")
	if err != nil {
		return fmt.Errorf("get json flag: %w", err)
	}
	noHistory, err := cmd.Flags().GetBool("no-history")
	if err != nil {
		return fmt.Errorf("get no-history flag: %w", err)
	}

	store := StoreFromContext(ctx)
	runName, err := resolveRunName(cmd, store)
	if err != nil {
		return err
	}

	dir, err := logsDir()
	if err != nil {
		return err
	}
	logPath, err := logging.NewPathManager(dir).EnsureRunLog(toolType.Name(), runName)
	if err != nil {
		return err
	}

	logger = logger.With("run", runName)
	execute := func(mirror io.Writer) (*runner.Result, error) {
		runLog, logErr := logging.Create(logPath, mirror)
		if logErr != nil {
			return nil, logErr
		}
		defer runLog.Close()

		r, runErr := runner.New(runner.TypeLocal, runner.Config{
			Policy: runner.PolicyFromCatch(catch),
			Mirror: runLog,
			Logger: logger,
		}, nil)
		if runErr != nil {
			return nil, runErr
		}

		t, toolErr := tool.New(toolType, tool.Config{
			ToolPath: toolPath,
			Runner:   r,
			Logger:   logger,
			TempDir:  resolveTempDir(cmd),
		})
		if toolErr != nil {
			return nil, toolErr
		}

		result, opErr := fn(ctx, t, extras)
		var finishErr error
		switch {
		case result != nil:
			finishErr = runLog.Finish(result.Code, result.Error)
		case opErr != nil:
			finishErr = runLog.Finish(runner.ExitCodeUnexpected, opErr.Error())
		}
		if finishErr != nil {
			logger.Warn("failed to finish run log", "error", finishErr)
		}
		return result, opErr
	}

	var result *runner.Result
	if isTerminal() && !asJSON {
		err = spinner.New(fmt.Sprintf("%s %s", toolType.Name(), op), cmd.ErrOrStderr()).Run(func(w io.Writer) error {
			var runErr error
			result, runErr = execute(w)
			return runErr
		})
	} else {
		result, err = execute(nil)
	}

	entry := catalog.Entry{
		ID:        runName,
		Tool:      toolType.Name(),
		Operation: op,
		Log:       logPath,
		CreatedAt: time.Now(),
	}
	if wd, wdErr := os.Getwd(); wdErr == nil {
		entry.Dir = wd
	}
	if result != nil {
		entry.Result = *result
		if store != nil && !noHistory {
			if addErr := store.Add(ctx, entry); addErr != nil {
				logger.Warn("failed to record run", "error", addErr)
			}
		}
	}

	if err != nil {
		return err
	}

	if err := printEntry(cmd.OutOrStdout(), entry, asJSON); err != nil {
		return err
	}
	if !result.Succeeded() {
		return &ExitError{Code: result.Code}
	}
	return nil
}

// resolveRunName returns --name, or a generated name not yet in the history.
func resolveRunName(cmd *cobra.Command, store catalog.Store) (string, error) {
	ctx := cmd.Context()
	exists := func(name string) bool {
		if store == nil {
			return false
		}
		_, err := store.Get(ctx, name)
		return err == nil
	}

	name, err := cmd.Flags().GetString("name")
	if err != nil {
		return "", fmt.Errorf("get name flag: %w", err)
	}
	if name == "" {
		return names.GenerateUnique(exists, 0)
	}
	if exists(name) {
		return "", fmt.Errorf("%w: %s", catalog.ErrAlreadyExists, name)
	}
	return name, nil
}

// printEntry writes a run as aligned key/value lines or as JSON.
func printEntry(out io.Writer, entry catalog.Entry, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(entry); err != nil {
			return fmt.Errorf("encode result: %w", err)
		}
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	rows := [][2]string{
		{"RUN", entry.ID},
		{"TOOL", entry.Tool},
		{"OPERATION", string(entry.Operation)},
		{"COMMAND", entry.Result.Command},
		{"CODE", fmt.Sprint(entry.Result.Code)},
		{"TARGET", entry.Result.Target},
	}
	if entry.Result.Error != "" {
		rows = append(rows, [2]string{"ERROR", firstLine(entry.Result.Error)})
	}
	for _, row := range rows {
		if _, err := fmt.Fprintf(w, "%s\t%s\n", row[0], row[1]); err != nil {
			return fmt.Errorf("write result: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("flush output: %w", err)
	}
	return nil
}

// firstLine returns s up to its first non-empty line.
func firstLine(s string) string {
	for _, line := range strings.Split(s, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			return line
		}
	}
	return ""
}
