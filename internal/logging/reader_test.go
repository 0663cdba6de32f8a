package logging

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeRun records a finished run the way an operation does.
func writeRun(t *testing.T, path, output string, code int, stderr string) {
	t.Helper()
	l, err := Create(path, nil)
	require.NoError(t, err)
	_, err = l.Write([]byte(output))
	require.NoError(t, err)
	require.NoError(t, l.Finish(code, stderr))
}

// syncBuffer is a bytes.Buffer safe for a writer and a polling reader.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestRead(t *testing.T) {
	t.Run("successful run", func(t *testing.T) {
		path := runLogPath(t, "DotnetCoverage", "happy-panda")
		writeRun(t, path, "Merging 2 files\nSaved out/cross-dotnetcoverage.xml\n", 0, "")

		log, err := Read(path)

		require.NoError(t, err)
		assert.Equal(t, []string{"Merging 2 files", "Saved out/cross-dotnetcoverage.xml"}, log.Output)
		assert.Empty(t, log.Stderr)
		assert.True(t, log.Finished)
		assert.Equal(t, 0, log.Code)
	})

	t.Run("failed run surfaces stderr", func(t *testing.T) {
		path := runLogPath(t, "Jacoco", "brave-otter")
		writeRun(t, path, "[INFO] Loading execution data file cov/jacoco.exec.\n", 1,
			"Exception in thread \"main\" java.io.FileNotFoundException: build\n\tat java.base/java.io.FileInputStream.open0\n")

		log, err := Read(path)

		require.NoError(t, err)
		assert.Equal(t, []string{"[INFO] Loading execution data file cov/jacoco.exec."}, log.Output)
		assert.Equal(t, []string{
			"Exception in thread \"main\" java.io.FileNotFoundException: build",
			"\tat java.base/java.io.FileInputStream.open0",
		}, log.Stderr)
		assert.True(t, log.Finished)
		assert.Equal(t, 1, log.Code)
	})

	t.Run("run in progress", func(t *testing.T) {
		path := runLogPath(t, "DotnetCoverage", "happy-panda")
		require.NoError(t, os.WriteFile(path, []byte("Collecting session s1\n"), 0o600))

		log, err := Read(path)

		require.NoError(t, err)
		assert.Equal(t, []string{"Collecting session s1"}, log.Output)
		assert.False(t, log.Finished)
	})

	t.Run("lines after the exit line are ignored", func(t *testing.T) {
		path := runLogPath(t, "DotnetCoverage", "happy-panda")
		require.NoError(t, os.WriteFile(path, []byte("ok\n--- exit 0 ---\nstray\n"), 0o600))

		log, err := Read(path)

		require.NoError(t, err)
		assert.Equal(t, []string{"ok"}, log.Output)
	})

	t.Run("missing log", func(t *testing.T) {
		_, err := Read(runLogPath(t, "Jacoco", "missing-run"))

		require.ErrorIs(t, err, os.ErrNotExist)
	})
}

func TestLog_Tail(t *testing.T) {
	output := make([]string, 150)
	for i := range output {
		output[i] = fmt.Sprintf("merged file %d", i+1)
	}
	log := &Log{Output: output, Stderr: []string{"warning: 3 files skipped"}, Code: 3, Finished: true}

	tail := log.Tail(2)
	assert.Equal(t, []string{"merged file 149", "merged file 150"}, tail.Output)
	assert.Equal(t, []string{"warning: 3 files skipped"}, tail.Stderr, "stderr is kept whole")
	assert.Equal(t, 3, tail.Code)
	assert.Len(t, log.Output, 150, "tail does not modify the log")

	assert.Len(t, log.Tail(0).Output, DefaultTailLines)
	assert.Len(t, log.Tail(500).Output, 150)
}

func TestParseExit(t *testing.T) {
	code, ok := parseExit("--- exit 127 ---")
	assert.True(t, ok)
	assert.Equal(t, 127, code)

	for _, line := range []string{"--- exit ---", "--- exit 3", "exit 3", "--- exit three ---"} {
		_, ok := parseExit(line)
		assert.False(t, ok, line)
	}
}

func TestFollow(t *testing.T) {
	t.Run("finished run prints history and returns", func(t *testing.T) {
		path := runLogPath(t, "DotnetCoverage", "happy-panda")
		writeRun(t, path, "one\ntwo\nthree\n", 3, "bad session\n")
		var out, errOut bytes.Buffer

		err := Follow(context.Background(), path, &out, &errOut, 2, time.Millisecond)

		require.NoError(t, err)
		assert.Equal(t, "two\nthree\n", out.String())
		assert.Equal(t, "bad session\n", errOut.String())
	})

	t.Run("streams a run until it finishes", func(t *testing.T) {
		path := runLogPath(t, "Jacoco", "brave-otter")
		l, err := Create(path, nil)
		require.NoError(t, err)
		_, err = l.Write([]byte("[INFO] Connecting to localhost:6300.\n"))
		require.NoError(t, err)

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		out, errOut := &syncBuffer{}, &syncBuffer{}
		done := make(chan error, 1)
		go func() {
			done <- Follow(ctx, path, out, errOut, DefaultTailLines, 5*time.Millisecond)
		}()

		require.Eventually(t, func() bool {
			return out.String() == "[INFO] Connecting to localhost:6300.\n"
		}, time.Second, 5*time.Millisecond)

		_, err = l.Write([]byte("[INFO] Writing execution data to "))
		require.NoError(t, err)
		_, err = l.Write([]byte("cov/jacoco.exec.\n"))
		require.NoError(t, err)
		require.NoError(t, l.Finish(1, "[WARN] agent disconnected\n"))

		require.NoError(t, <-done)
		assert.Equal(t,
			"[INFO] Connecting to localhost:6300.\n[INFO] Writing execution data to cov/jacoco.exec.\n",
			out.String())
		assert.Equal(t, "[WARN] agent disconnected\n", errOut.String())
	})

	t.Run("cancelled context", func(t *testing.T) {
		path := runLogPath(t, "DotnetCoverage", "happy-panda")
		require.NoError(t, os.WriteFile(path, []byte("Collecting session s1\n"), 0o600))

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		var out bytes.Buffer

		err := Follow(ctx, path, &out, &out, DefaultTailLines, time.Millisecond)

		require.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, "Collecting session s1\n", out.String())
	})

	t.Run("missing log", func(t *testing.T) {
		err := Follow(context.Background(), runLogPath(t, "Jacoco", "missing-run"), nil, nil, 0, time.Millisecond)

		require.ErrorIs(t, err, os.ErrNotExist)
	})
}
