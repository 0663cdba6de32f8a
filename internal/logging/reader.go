package logging

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"
)

// DefaultTailLines is the default number of output lines shown for a run.
const DefaultTailLines = 100

// maxLineSize bounds a single line of tool output.
const maxLineSize = 1 << 20

// Log is a run log split into its sections.
type Log struct {
	Output   []string // Tool standard output
	Stderr   []string // Error output recorded when the run finished
	Code     int      // Exit code, set once Finished
	Finished bool     // Whether the run wrote its exit line
}

// Tail keeps the last n output lines; n <= 0 uses DefaultTailLines. The
// error output is always kept whole.
func (l *Log) Tail(n int) *Log {
	if n <= 0 {
		n = DefaultTailLines
	}
	tail := *l
	if len(tail.Output) > n {
		tail.Output = tail.Output[len(tail.Output)-n:]
	}
	return &tail
}

type section int

const (
	sectionOutput section = iota
	sectionStderr
	sectionDone
)

// parser assigns run log lines to sections as they are read.
type parser struct {
	log     Log
	section section
}

// feed consumes one line. It returns the section the line belongs to and
// whether it is content (false for marker lines).
func (p *parser) feed(line string) (section, bool) {
	if p.section == sectionDone {
		return sectionDone, false
	}
	if p.section == sectionOutput && line == stderrMarker {
		p.section = sectionStderr
		return p.section, false
	}
	if code, ok := parseExit(line); ok {
		p.log.Code = code
		p.log.Finished = true
		p.section = sectionDone
		return p.section, false
	}

	if p.section == sectionStderr {
		p.log.Stderr = append(p.log.Stderr, line)
	} else {
		p.log.Output = append(p.log.Output, line)
	}
	return p.section, true
}

// parseExit returns the code of an exit line.
func parseExit(line string) (int, bool) {
	rest, ok := strings.CutPrefix(line, exitPrefix)
	if !ok {
		return 0, false
	}
	rest, ok = strings.CutSuffix(rest, exitSuffix)
	if !ok {
		return 0, false
	}
	code, err := strconv.Atoi(rest)
	if err != nil {
		return 0, false
	}
	return code, true
}

// Read reads the run log at path.
func Read(path string) (*Log, error) {
	//nolint:gosec // G304: path comes from the history or PathManager
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open run log: %w", err)
	}
	defer file.Close()

	var p parser
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	for scanner.Scan() {
		p.feed(scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan run log: %w", err)
	}
	return &p.log, nil
}

// Follow prints the last n output lines of a run, then streams what the run
// appends, like `tail -n N -f`. Output goes to out and error output to errOut.
// It returns once the run has finished or the context is cancelled.
func Follow(ctx context.Context, path string, out, errOut io.Writer, n int, pollInterval time.Duration) error {
	//nolint:gosec // G304: path comes from the history or PathManager
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open run log: %w", err)
	}
	defer file.Close()

	reader := bufio.NewReader(file)
	var p parser
	var partial string

	// Everything already written is history.
	for {
		line, err := reader.ReadString('\n')
		if errors.Is(err, io.EOF) {
			partial = line
			break
		}
		if err != nil {
			return fmt.Errorf("read run log: %w", err)
		}
		p.feed(strings.TrimSuffix(line, "\n"))
	}

	history := p.log.Tail(n)
	if err := writeLines(out, history.Output); err != nil {
		return err
	}
	if err := writeLines(errOut, history.Stderr); err != nil {
		return err
	}
	if p.log.Finished {
		return nil
	}
	p.log.Output, p.log.Stderr = nil, nil

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}

		for {
			line, err := reader.ReadString('\n')
			if errors.Is(err, io.EOF) {
				partial += line
				break
			}
			if err != nil {
				return fmt.Errorf("read run log: %w", err)
			}

			line = strings.TrimSuffix(partial+line, "\n")
			partial = ""
			sec, content := p.feed(line)
			if p.log.Finished {
				return nil
			}
			if !content {
				continue
			}
			w := out
			if sec == sectionStderr {
				w = errOut
			}
			if err := writeLines(w, []string{line}); err != nil {
				return err
			}
		}
	}
}

func writeLines(w io.Writer, lines []string) error {
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return fmt.Errorf("write log: %w", err)
		}
	}
	return nil
}
