package logging

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"
)

// Lines framing what a run log records after the tool's standard output.
const (
	stderrMarker = "--- stderr ---"
	exitPrefix   = "--- exit "
	exitSuffix   = " ---"
)

// RunLog records one tool run. Standard output is written as it arrives and
// copied to an optional mirror; Finish appends the error output and the exit
// code and closes the file.
type RunLog struct {
	mu       sync.Mutex
	file     *os.File
	mirror   io.Writer
	lastByte byte
	wrote    bool
}

// Create creates (or truncates) the log at path. A nil mirror only writes the log.
func Create(path string, mirror io.Writer) (*RunLog, error) {
	//nolint:gosec // G304: path is constructed by PathManager
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create run log: %w", err)
	}
	return &RunLog{file: file, mirror: mirror}, nil
}

// Write appends tool output to the log and then to the mirror.
func (l *RunLog) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file == nil {
		return 0, fmt.Errorf("write run log: %w", os.ErrClosed)
	}
	if _, err := l.file.Write(p); err != nil {
		return 0, fmt.Errorf("write run log: %w", err)
	}
	if len(p) > 0 {
		l.lastByte = p[len(p)-1]
		l.wrote = true
	}

	if l.mirror != nil {
		return l.mirror.Write(p)
	}
	return len(p), nil
}

// Finish records how the run ended and closes the log. The stderr block is
// only written when stderr is not empty.
func (l *RunLog) Finish(code int, stderr string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file == nil {
		return fmt.Errorf("finish run log: %w", os.ErrClosed)
	}

	var b strings.Builder
	if l.wrote && l.lastByte != '\n' {
		b.WriteByte('\n')
	}
	if stderr = strings.TrimRight(stderr, "\n"); stderr != "" {
		b.WriteString(stderrMarker + "\n")
		b.WriteString(stderr + "\n")
	}
	b.WriteString(exitPrefix + strconv.Itoa(code) + exitSuffix + "\n")

	if _, err := l.file.WriteString(b.String()); err != nil {
		_ = l.closeLocked()
		return fmt.Errorf("finish run log: %w", err)
	}
	return l.closeLocked()
}

// Close closes the log without recording an exit. Closing twice is a no-op.
func (l *RunLog) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.closeLocked()
}

func (l *RunLog) closeLocked() error {
	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	if err != nil {
		return fmt.Errorf("close run log: %w", err)
	}
	return nil
}
