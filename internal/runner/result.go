package runner

import "strings"

// Result is the outcome of one logical tool operation.
// Several process runs may be combined into a single Result.
type Result struct {
	Code    int    `json:"code"`
	Command string `json:"command"`
	Output  string `json:"output"`
	Target  string `json:"target"`
	Error   string `json:"error"`
}

// Succeeded reports whether the result carries a zero exit code.
func (r Result) Succeeded() bool {
	return r.Code == 0
}

// Combine chains other after r.
// Codes are combined with a bitwise AND, commands are joined with "&&",
// output and error text are concatenated and the target of other wins when set.
func (r Result) Combine(other Result) Result {
	combined := Result{
		Code:    r.Code & other.Code,
		Command: r.Command + " && " + other.Command,
		Output:  strings.Join([]string{r.Output, other.Output}, "\n"),
		Target:  r.Target,
		Error:   strings.Join([]string{r.Error, other.Error}, "\n"),
	}
	if other.Target != "" {
		combined.Target = other.Target
	}
	return combined
}
