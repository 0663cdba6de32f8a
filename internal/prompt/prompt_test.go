package prompt

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHuhPrompter_Print(t *testing.T) {
	var buf bytes.Buffer

	New(&buf).Print("reset coverage for session-1")

	assert.Equal(t, "reset coverage for session-1\n", buf.String())
}

func TestHuhPrompter_Choice_NoOptions(t *testing.T) {
	_, err := New(nil).Choice("Tool", nil)

	assert.Error(t, err)
}

func TestStatic(t *testing.T) {
	var buf bytes.Buffer
	p := Static{Out: &buf, Answer: true, Index: 1}

	p.Print("hello")
	assert.Equal(t, "hello\n", buf.String())

	ok, err := p.Confirm("Reset?", "")
	require.NoError(t, err)
	assert.True(t, ok)

	idx, err := p.Choice("Tool", []string{"jacoco", "dotnet-coverage"})
	require.NoError(t, err)
	assert.Equal(t, 1, idx)

	_, err = p.Choice("Tool", []string{"jacoco"})
	assert.Error(t, err)

	Static{}.Print("dropped")
}
