// Package cmd implements the crossfit CLI commands using Cobra.
// It provides commands that drive coverage tools through a common set of
// operations (snapshot, merge, report and reset) and inspect past runs.
package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jmgilman/crossfit/internal/catalog"
	"github.com/jmgilman/crossfit/internal/config"
	"github.com/jmgilman/crossfit/internal/slogger"
)

// appConfig holds the loaded application configuration.
var appConfig *config.Config

// configLoader is used for reading and writing configuration keys.
var configLoader *config.Loader

var rootCmd = &cobra.Command{
	Use:   "crossfit",
	Short: "Drive code coverage tools through one interface",
	Long: `crossfit drives code coverage command line tools (JaCoCo and
dotnet-coverage with reportgenerator) through a common set of operations:
snapshot, merge, report and reset.

Every run is named, its output is logged and its result is recorded in the
run history.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		verbosity, err := cmd.Flags().GetCount("verbose")
		if err != nil {
			return fmt.Errorf("get verbose flag: %w", err)
		}
		if appConfig != nil && appConfig.Log.Verbosity > verbosity {
			verbosity = appConfig.Log.Verbosity
		}

		historyPath, err := historyPath()
		if err != nil {
			return err
		}

		// Store dependencies in context for subcommands
		ctx := cmd.Context()
		ctx = slogger.WithLogger(ctx, slogger.New(slogger.Config{Verbosity: verbosity, Output: cmd.ErrOrStderr()}))
		ctx = WithConfig(ctx, appConfig)
		ctx = WithLoader(ctx, configLoader)
		ctx = WithStore(ctx, catalog.NewStore(historyPath))
		cmd.SetContext(ctx)

		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

// Main runs the CLI and returns the process exit code.
// A tool run that ends with a non-zero code exits with that code.
func Main() int {
	err := Execute()
	if err == nil {
		return 0
	}

	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}

	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	return 1
}

// ExitError carries the code of a tool run that did not succeed.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("tool exited with code %d", e.Code)
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringP("tool", "t", "", "coverage tool (jacoco, dotnet-coverage)")
	rootCmd.PersistentFlags().String("tool-path", "", "directory holding the tool executable (default: PATH)")
	rootCmd.PersistentFlags().Bool("catch", true, "report tool failures as results instead of errors")
	rootCmd.PersistentFlags().CountP("verbose", "v", "increase log verbosity (-v info, -vv debug)")
}

func initConfig() {
	loader, err := config.NewLoader()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to initialize config: %v\n", err)
		return
	}

	cfg, err := loader.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to load config: %v\n", err)
		return
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: config validation failed: %v\n", err)
	}

	appConfig = cfg
	configLoader = loader
}

// historyPath returns the configured history file, falling back to the data directory.
func historyPath() (string, error) {
	if appConfig != nil && appConfig.Storage.History != "" {
		return appConfig.Storage.History, nil
	}
	dataDir, err := defaultDataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dataDir, "history.json"), nil
}

// logsDir returns the configured log directory, falling back to the data directory.
func logsDir() (string, error) {
	if appConfig != nil && appConfig.Storage.Logs != "" {
		return appConfig.Storage.Logs, nil
	}
	dataDir, err := defaultDataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dataDir, "logs"), nil
}
