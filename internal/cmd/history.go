package cmd

import (
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/jmgilman/crossfit/internal/catalog"
	"github.com/jmgilman/crossfit/internal/logging"
	"github.com/jmgilman/crossfit/internal/slogger"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recorded runs",
	Long: `List the runs recorded in the history, oldest first.

Every snapshot, merge, report and reset run is recorded with its command,
exit code and target unless --no-history was given.`,
	Example: `  # Last 10 runs
  crossfit history -n 10

  # Failed JaCoCo runs
  crossfit history --tool jacoco --failed

  # Forget every run and its log
  crossfit history --clear`,
	Args: cobra.NoArgs,
	RunE: runHistoryCmd,
}

var historyShowCmd = &cobra.Command{
	Use:   "show <run>",
	Short: "Show the full result of a run",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := requireStore(cmd)
		if err != nil {
			return err
		}
		asJSON, err := cmd.Flags().GetBool("json")
		if err != nil {
			return fmt.Errorf("get json flag: %w", err)
		}

		entry, err := store.Get(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("get run: %w", err)
		}
		if err := printEntry(cmd.OutOrStdout(), *entry, asJSON); err != nil {
			return err
		}
		if !asJSON && entry.Result.Output != "" {
			fmt.Fprintf(cmd.OutOrStdout(), "\n%s", entry.Result.Output)
		}
		return nil
	},
}

var historyRmCmd = &cobra.Command{
	Use:   "rm <run>...",
	Short: "Forget runs and remove their logs",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := requireStore(cmd)
		if err != nil {
			return err
		}
		dir, err := logsDir()
		if err != nil {
			return err
		}
		pathMgr := logging.NewPathManager(dir)

		ctx := cmd.Context()
		for _, run := range args {
			entry, err := store.Get(ctx, run)
			if err != nil {
				return fmt.Errorf("get run: %w", err)
			}
			if err := store.Remove(ctx, run); err != nil {
				return fmt.Errorf("remove run: %w", err)
			}
			if err := pathMgr.RemoveRunLog(entry.Tool, run); err != nil {
				slogger.L(ctx).Warn("failed to remove run log", "run", run, "error", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", run)
		}
		return nil
	},
}

func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	store, err := requireStore(cmd)
	if err != nil {
		return err
	}

	clearAll, err := cmd.Flags().GetBool("clear")
	if err != nil {
		return fmt.Errorf("get clear flag: %w", err)
	}
	if clearAll {
		return clearHistory(cmd, store)
	}

	filter, err := historyFilter(cmd)
	if err != nil {
		return err
	}

	entries, err := store.List(cmd.Context(), filter)
	if err != nil {
		return fmt.Errorf("list runs: %w", err)
	}

	if len(entries) == 0 {
		slogger.L(cmd.Context()).Info("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	if _, err := fmt.Fprintln(w, "RUN\tTOOL\tOPERATION\tCODE\tTARGET\tCREATED"); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, e := range entries {
		if _, err := fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\t%s\n",
			e.ID,
			e.Tool,
			e.Operation,
			e.Result.Code,
			e.Result.Target,
			formatTimeAgo(e.CreatedAt),
		); err != nil {
			return fmt.Errorf("write run: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("flush output: %w", err)
	}

	return nil
}

func historyFilter(cmd *cobra.Command) (catalog.ListFilter, error) {
	var filter catalog.ListFilter
	var err error

	if filter.Tool, err = cmd.Flags().GetString("tool"); err != nil {
		return filter, fmt.Errorf("get tool flag: %w", err)
	}
	if filter.Tool != "" {
		// Stored names are display names (Jacoco, DotnetCoverage)
		t, parseErr := parseToolName(filter.Tool)
		if parseErr != nil {
			return filter, parseErr
		}
		filter.Tool = t
	}

	op, err := cmd.Flags().GetString("operation")
	if err != nil {
		return filter, fmt.Errorf("get operation flag: %w", err)
	}
	filter.Operation = catalog.Operation(op)

	if filter.FailedOnly, err = cmd.Flags().GetBool("failed"); err != nil {
		return filter, fmt.Errorf("get failed flag: %w", err)
	}
	if filter.Limit, err = cmd.Flags().GetInt("limit"); err != nil {
		return filter, fmt.Errorf("get limit flag: %w", err)
	}
	return filter, nil
}

func clearHistory(cmd *cobra.Command, store catalog.Store) error {
	removed, err := store.Clear(cmd.Context())
	if err != nil {
		return fmt.Errorf("clear history: %w", err)
	}

	dir, err := logsDir()
	if err != nil {
		return err
	}
	if err := logging.NewPathManager(dir).RemoveAll(); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Removed %d runs\n", removed)
	return nil
}

func requireStore(cmd *cobra.Command) (catalog.Store, error) {
	store := StoreFromContext(cmd.Context())
	if store == nil {
		return nil, errors.New("run history not initialized")
	}
	return store, nil
}

// formatTimeAgo formats a time as a human-readable relative time.
func formatTimeAgo(t time.Time) string {
	d := time.Since(t)

	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		m := int(d.Minutes())
		if m == 1 {
			return "1m ago"
		}
		return fmt.Sprintf("%dm ago", m)
	case d < 24*time.Hour:
		h := int(d.Hours())
		if h == 1 {
			return "1h ago"
		}
		return fmt.Sprintf("%dh ago", h)
	case d < 7*24*time.Hour:
		days := int(d.Hours() / 24)
		if days == 1 {
			return "1d ago"
		}
		return fmt.Sprintf("%dd ago", days)
	case d < 30*24*time.Hour:
		weeks := int(d.Hours() / 24 / 7)
		if weeks == 1 {
			return "1w ago"
		}
		return fmt.Sprintf("%dw ago", weeks)
	default:
		months := int(d.Hours() / 24 / 30)
		if months == 1 {
			return "1mo ago"
		}
		return fmt.Sprintf("%dmo ago", months)
	}
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.AddCommand(historyShowCmd)
	historyCmd.AddCommand(historyRmCmd)

	historyCmd.Flags().String("operation", "", "only runs of this operation (snapshot, merge, report, reset)")
	historyCmd.Flags().Bool("failed", false, "only runs with a non-zero code")
	historyCmd.Flags().IntP("limit", "n", 0, "only the most recent N runs")
	historyCmd.Flags().Bool("clear", false, "remove every recorded run and its log")
	historyShowCmd.Flags().Bool("json", false, "print the run as JSON")
}
