package runner

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResult_Combine(t *testing.T) {
	t.Run("chains two runs", func(t *testing.T) {
		first := Result{Code: 0, Command: "java -jar jacococli.jar dump --reset", Output: "dumped", Target: "/tmp/crossfit/cross-jacoco.exec"}
		second := Result{Code: 1, Command: "rm -rf /tmp/crossfit", Error: "busy", Target: "/tmp/crossfit"}

		combined := first.Combine(second)

		assert.Equal(t, 0, combined.Code, "codes combine with bitwise AND")
		assert.Equal(t, "java -jar jacococli.jar dump --reset && rm -rf /tmp/crossfit", combined.Command)
		assert.Equal(t, "dumped\n", combined.Output)
		assert.Equal(t, "\nbusy", combined.Error)
		assert.Equal(t, "/tmp/crossfit", combined.Target)
	})

	t.Run("keeps first target when second is empty", func(t *testing.T) {
		combined := Result{Target: "a"}.Combine(Result{})

		assert.Equal(t, "a", combined.Target)
	})

	t.Run("bitwise AND of codes", func(t *testing.T) {
		tests := []struct {
			a, b, want int
		}{
			{0, 0, 0},
			{0, 1, 0},
			{1, 1, 1},
			{3, 6, 2},
			{127, 1, 1},
			{2, 1, 0},
		}

		for _, tt := range tests {
			assert.Equal(t, tt.want, Result{Code: tt.a}.Combine(Result{Code: tt.b}).Code)
		}
	})

	t.Run("does not modify operands", func(t *testing.T) {
		first := Result{Code: 1, Command: "a"}
		_ = first.Combine(Result{Code: 0, Command: "b"})

		assert.Equal(t, Result{Code: 1, Command: "a"}, first)
	})
}

func TestResult_Succeeded(t *testing.T) {
	assert.True(t, Result{}.Succeeded())
	assert.False(t, Result{Code: 127}.Succeeded())
}
