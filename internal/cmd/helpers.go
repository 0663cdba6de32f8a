package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/jmgilman/crossfit/internal/command"
	"github.com/jmgilman/crossfit/internal/config"
	"github.com/jmgilman/crossfit/internal/flags"
	"github.com/jmgilman/crossfit/internal/prompt"
	"github.com/jmgilman/crossfit/internal/tool"
)

// errNoTool is returned when no tool is selected and none can be asked for.
var errNoTool = errors.New("no coverage tool selected: pass --tool or set tools.default")

func defaultDataDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home directory: %w", err)
	}
	return filepath.Join(home, config.DefaultDataDir), nil
}

// isTerminal reports whether both stdin and stderr are attached to a terminal.
func isTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stderr.Fd()))
}

// newPrompter returns an interactive prompter on a terminal and a
// non-interactive one that declines everything otherwise.
func newPrompter(cmd *cobra.Command) prompt.Prompter {
	if isTerminal() {
		return prompt.New(cmd.OutOrStdout())
	}
	return prompt.Static{Out: cmd.OutOrStdout(), Index: -1}
}

// resolveToolType picks the tool from --tool, then tools.default, then by
// asking on a terminal.
func resolveToolType(cmd *cobra.Command) (tool.Type, error) {
	name, err := cmd.Flags().GetString("tool")
	if err != nil {
		return "", fmt.Errorf("get tool flag: %w", err)
	}
	if name == "" {
		if cfg := ConfigFromContext(cmd.Context()); cfg != nil {
			name = cfg.Tools.Default
		}
	}
	if name != "" {
		return tool.ParseType(name)
	}

	options := tool.ValidTypeNames()
	if !isTerminal() {
		return "", fmt.Errorf("%w (valid: %s)", errNoTool, formatList(options))
	}
	idx, err := newPrompter(cmd).Choice("Coverage tool", options)
	if err != nil {
		return "", fmt.Errorf("%w: %w", errNoTool, err)
	}
	return tool.ParseType(options[idx])
}

// resolveToolPath returns --tool-path or the configured directory of t.
func resolveToolPath(cmd *cobra.Command, t tool.Type) (string, error) {
	path, err := cmd.Flags().GetString("tool-path")
	if err != nil {
		return "", fmt.Errorf("get tool-path flag: %w", err)
	}
	if path != "" {
		return path, nil
	}
	if cfg := ConfigFromContext(cmd.Context()); cfg != nil {
		return cfg.ToolPath(t), nil
	}
	return "", nil
}

// resolveCatch returns --catch when given, otherwise execution.catch.
func resolveCatch(cmd *cobra.Command) (bool, error) {
	catch, err := cmd.Flags().GetBool("catch")
	if err != nil {
		return false, fmt.Errorf("get catch flag: %w", err)
	}
	if cmd.Flags().Changed("catch") {
		return catch, nil
	}
	if cfg := ConfigFromContext(cmd.Context()); cfg != nil {
		return cfg.Execution.Catch, nil
	}
	return catch, nil
}

// resolveExtras merges configured extras for t with --extra key=value pairs.
// Pairs given on the command line win.
func resolveExtras(cmd *cobra.Command, t tool.Type) ([]command.Option, error) {
	pairs, err := cmd.Flags().GetStringArray("extra")
	if err != nil {
		return nil, fmt.Errorf("get extra flag: %w", err)
	}

	configured := make(flags.Flags)
	if cfg := ConfigFromContext(cmd.Context()); cfg != nil {
		if configured, err = cfg.Extras(t); err != nil {
			return nil, err
		}
	}

	return flags.ToOptions(flags.Merge(configured, flags.FromPairs(pairs)))
}

// resolveTempDir returns execution.temp_dir, empty for the system default.
func resolveTempDir(cmd *cobra.Command) string {
	if cfg := ConfigFromContext(cmd.Context()); cfg != nil {
		return cfg.Execution.TempDir
	}
	return ""
}

// parseFormats resolves report format names, accepting comma-separated lists.
func parseFormats(values []string) ([]tool.ReportFormat, error) {
	var formats []tool.ReportFormat
	for _, value := range values {
		for _, name := range strings.Split(value, ",") {
			name = strings.TrimSpace(name)
			if name == "" {
				continue
			}
			f, err := tool.ParseReportFormat(name)
			if err != nil {
				return nil, err
			}
			formats = append(formats, f)
		}
	}
	return formats, nil
}

// formatList joins strings with commas and "and" before the last item.
func formatList(items []string) string {
	switch len(items) {
	case 0:
		return ""
	case 1:
		return items[0]
	case 2:
		return items[0] + " and " + items[1]
	default:
		return strings.Join(items[:len(items)-1], ", ") + ", and " + items[len(items)-1]
	}
}

// parseToolName resolves a user supplied tool name to its display name.
func parseToolName(name string) (string, error) {
	t, err := tool.ParseType(name)
	if err != nil {
		return "", err
	}
	return t.Name(), nil
}
