// Package logging stores the output of tool runs in per-run log files.
package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// logExt is the extension of run log files.
const logExt = ".log"

// PathManager handles log file path construction and directory management.
type PathManager struct {
	baseDir string
}

// NewPathManager creates a new PathManager with the given base directory.
// The base directory is typically ~/.local/share/crossfit/logs.
func NewPathManager(baseDir string) *PathManager {
	return &PathManager{baseDir: baseDir}
}

// BaseDir returns the base log directory.
func (p *PathManager) BaseDir() string {
	return p.baseDir
}

// ToolDir returns the log directory for a tool.
// Path format: <baseDir>/<tool>/
func (p *PathManager) ToolDir(tool string) string {
	return filepath.Join(p.baseDir, tool)
}

// RunLogPath returns the full path for a run's log file.
// Path format: <baseDir>/<tool>/<run>.log
func (p *PathManager) RunLogPath(tool, run string) string {
	return filepath.Join(p.baseDir, tool, run+logExt)
}

// EnsureRunLog creates the tool log directory and returns the run's log path.
func (p *PathManager) EnsureRunLog(tool, run string) (string, error) {
	if err := os.MkdirAll(p.ToolDir(tool), 0o750); err != nil {
		return "", fmt.Errorf("create tool log directory: %w", err)
	}
	return p.RunLogPath(tool, run), nil
}

// LogExists checks if a log file exists for the given run.
func (p *PathManager) LogExists(tool, run string) bool {
	_, err := os.Stat(p.RunLogPath(tool, run))
	return err == nil
}

// RemoveRunLog removes a run's log file if it exists.
func (p *PathManager) RemoveRunLog(tool, run string) error {
	if err := os.Remove(p.RunLogPath(tool, run)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove run log: %w", err)
	}
	return nil
}

// RemoveAll removes every run log.
func (p *PathManager) RemoveAll() error {
	if err := os.RemoveAll(p.baseDir); err != nil {
		return fmt.Errorf("remove logs: %w", err)
	}
	return nil
}

// ListRunLogs returns the sorted names of runs with a log file for the tool.
func (p *PathManager) ListRunLogs(tool string) ([]string, error) {
	entries, err := os.ReadDir(p.ToolDir(tool))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read tool log directory: %w", err)
	}

	var runs []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if filepath.Ext(name) == logExt {
			runs = append(runs, name[:len(name)-len(logExt)])
		}
	}
	sort.Strings(runs)
	return runs, nil
}

// FindRun returns the tool whose directory holds a log for run.
// It returns os.ErrNotExist when no tool has one.
func (p *PathManager) FindRun(run string) (string, error) {
	entries, err := os.ReadDir(p.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("find run %s: %w", run, os.ErrNotExist)
		}
		return "", fmt.Errorf("read log directory: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() && p.LogExists(entry.Name(), run) {
			return entry.Name(), nil
		}
	}
	return "", fmt.Errorf("find run %s: %w", run, os.ErrNotExist)
}
