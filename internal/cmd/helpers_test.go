package cmd

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmgilman/crossfit/internal/catalog"
	"github.com/jmgilman/crossfit/internal/runner"
	"github.com/jmgilman/crossfit/internal/tool"
)

func TestParseFormats(t *testing.T) {
	t.Run("accepts comma separated lists", func(t *testing.T) {
		formats, err := parseFormats([]string{"html,xml", " csv ", ""})

		require.NoError(t, err)
		assert.Equal(t, []tool.ReportFormat{tool.FormatHTML, tool.FormatXML, tool.FormatCsv}, formats)
	})

	t.Run("rejects unknown formats", func(t *testing.T) {
		_, err := parseFormats([]string{"html,pdf"})

		assert.Error(t, err)
	})
}

func TestFormatList(t *testing.T) {
	tests := []struct {
		items []string
		want  string
	}{
		{nil, ""},
		{[]string{"jacoco"}, "jacoco"},
		{[]string{"jacoco", "dotnet-coverage"}, "jacoco and dotnet-coverage"},
		{[]string{"a", "b", "c"}, "a, b, and c"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, formatList(tt.items))
		})
	}
}

func TestFirstLine(t *testing.T) {
	assert.Equal(t, "unknown session", firstLine("\n  unknown session \nmore"))
	assert.Empty(t, firstLine("\n\n"))
}

func TestParseToolName(t *testing.T) {
	name, err := parseToolName("jacoco")
	require.NoError(t, err)
	assert.Equal(t, "Jacoco", name)

	_, err = parseToolName("gcov")
	assert.Error(t, err)
}

func TestPrintEntry(t *testing.T) {
	entry := catalog.Entry{
		ID:        "happy-panda",
		Tool:      "DotnetCoverage",
		Operation: catalog.OperationMerge,
		Result: runner.Result{
			Code:    3,
			Command: "dotnet-coverage merge a.coverage",
			Target:  "cross-dotnetcoverage.xml",
			Error:   "bad input\nstack trace",
		},
	}

	t.Run("table", func(t *testing.T) {
		var buf bytes.Buffer

		require.NoError(t, printEntry(&buf, entry, false))

		out := buf.String()
		assert.Contains(t, out, "RUN        happy-panda\n")
		assert.Contains(t, out, "COMMAND    dotnet-coverage merge a.coverage\n")
		assert.Contains(t, out, "CODE       3\n")
		assert.Contains(t, out, "ERROR      bad input\n")
		assert.NotContains(t, out, "stack trace")
	})

	t.Run("omits empty error", func(t *testing.T) {
		var buf bytes.Buffer
		ok := entry
		ok.Result.Error = ""

		require.NoError(t, printEntry(&buf, ok, false))

		assert.NotContains(t, buf.String(), "ERROR")
	})

	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer

		require.NoError(t, printEntry(&buf, entry, true))

		var decoded catalog.Entry
		require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
		assert.Equal(t, entry.ID, decoded.ID)
		assert.Equal(t, entry.Result, decoded.Result)
	})
}

func TestExitError(t *testing.T) {
	err := &ExitError{Code: 3}
	assert.Equal(t, "tool exited with code 3", err.Error())
}
