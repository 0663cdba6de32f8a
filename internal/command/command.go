// Package command builds command lines for external tools.
//
// A Command keeps its positional arguments and its options in two separate
// ordered lists and renders them on demand, so arguments always directly
// follow the execution call and subcommand no matter in which order the
// builder methods were called.
package command

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// tokenDelimiter separates rendered tokens.
const tokenDelimiter = " "

// entry is a recorded option together with the delimiter it was added under.
type entry struct {
	option    Option
	delimiter string
}

// Command is an ordered, mutable command line.
type Command struct {
	executionCall string
	subcommand    string
	arguments     []string
	options       []entry
	delimiter     string
}

// New creates a Command from initial tokens.
// With no tokens an empty builder is returned. Otherwise the first token is the
// execution call, the second the subcommand and any further tokens become
// positional arguments.
func New(tokens ...string) (*Command, error) {
	c := &Command{}
	if len(tokens) == 0 {
		return c, nil
	}
	if len(tokens) < 2 {
		return nil, fmt.Errorf("%w: got %q", ErrInvalidConstruction, tokens)
	}

	c.executionCall = tokens[0]
	c.subcommand = tokens[1]
	c.AddArguments(tokens[2:]...)
	return c, nil
}

// ExecutionCall returns the program invocation.
func (c *Command) ExecutionCall() string {
	return c.executionCall
}

// Subcommand returns the tool verb.
func (c *Command) Subcommand() string {
	return c.subcommand
}

// Arguments returns a copy of the positional arguments.
func (c *Command) Arguments() []string {
	return slices.Clone(c.arguments)
}

// Options returns the recorded options in insertion order.
func (c *Command) Options() []Option {
	options := make([]Option, len(c.options))
	for i, e := range c.options {
		options[i] = e.option
	}
	return options
}

// Delimiter returns the active value delimiter. Empty means none.
func (c *Command) Delimiter() string {
	return c.delimiter
}

// SetExecutionCall sets the program to invoke.
// When basePath is set the call is stored relative to the working directory.
func (c *Command) SetExecutionCall(call, basePath string) *Command {
	if basePath == "" {
		c.executionCall = call
		return c
	}
	c.executionCall = RelativePath(filepath.Join(basePath, call))
	return c
}

// SetSubcommand sets the tool verb, e.g. "merge" or "report".
func (c *Command) SetSubcommand(name string) *Command {
	c.subcommand = name
	return c
}

// AddOption appends an option to the command.
// A delimiter passed with WithDelimiter becomes the active delimiter for this
// and every following option. With a value and an active delimiter the flag
// and value are fused into a single token.
func (c *Command) AddOption(flag string, args ...OptionArg) *Command {
	var a optionArgs
	for _, arg := range args {
		arg(&a)
	}

	if a.hasDelimiter {
		c.delimiter = a.delimiter
	}

	opt := Flag(flag)
	if a.hasValue {
		opt = Value(flag, a.value)
	}
	return c.AddOptions(opt)
}

// AddOptions appends options under the active delimiter.
func (c *Command) AddOptions(options ...Option) *Command {
	for _, opt := range options {
		c.options = append(c.options, entry{option: opt, delimiter: c.delimiter})
	}
	return c
}

// AddArguments appends positional arguments.
// Arguments accumulate across calls and always render before any option.
func (c *Command) AddArguments(args ...string) *Command {
	c.arguments = append(c.arguments, args...)
	return c
}

// AddPathArguments expands each path as a glob pattern (including "**") and
// adds every match as a working-directory-relative argument.
// All patterns are checked before anything is added.
func (c *Command) AddPathArguments(paths ...string) (*Command, error) {
	var resolved []string
	for _, path := range paths {
		matches, err := doublestar.FilepathGlob(path)
		if err != nil {
			return c, fmt.Errorf("expand %q: %w", path, err)
		}
		if len(matches) == 0 {
			return c, fmt.Errorf("%w: %s", ErrPathNotFound, path)
		}
		for _, match := range matches {
			resolved = append(resolved, RelativePath(match))
		}
	}

	return c.AddArguments(resolved...), nil
}

// SetValueDelimiter changes the active value delimiter.
// With rewriteExisting every existing option is rendered again under the new
// delimiter, in its original order. Otherwise only options added afterwards
// are affected.
func (c *Command) SetValueDelimiter(delimiter string, rewriteExisting bool) *Command {
	if c.delimiter == delimiter {
		return c
	}
	c.delimiter = delimiter
	if !rewriteExisting {
		return c
	}

	options := c.Options()
	c.options = c.options[:0]
	return c.AddOptions(options...)
}

// RenameFlags rewrites the flag name of every recorded option.
func (c *Command) RenameFlags(fn func(flag string) string) *Command {
	for i := range c.options {
		c.options[i].option.name = fn(c.options[i].option.name)
	}
	return c
}

// Reset drops all arguments and options. The execution call, subcommand and
// delimiter are kept.
func (c *Command) Reset() *Command {
	c.arguments = nil
	c.options = nil
	return c
}

// Tokens returns the rendered command line tokens.
func (c *Command) Tokens() []string {
	tokens := make([]string, 0, 2+len(c.arguments)+2*len(c.options))
	for _, head := range []string{c.executionCall, c.subcommand} {
		if head != "" {
			tokens = append(tokens, head)
		}
	}
	tokens = append(tokens, c.arguments...)
	for _, e := range c.options {
		tokens = append(tokens, e.option.tokens(e.delimiter)...)
	}
	return tokens
}

// String renders the invocable command line.
func (c *Command) String() string {
	return strings.Join(c.Tokens(), tokenDelimiter)
}

// Contains reports whether token is a rendered token or a recorded flag.
func (c *Command) Contains(token string) bool {
	if slices.Contains(c.Tokens(), token) {
		return true
	}
	for _, e := range c.options {
		if e.option.name == token {
			return true
		}
	}
	return false
}

// Validate checks that the command can be executed.
func (c *Command) Validate() error {
	if c.executionCall == "" {
		return ErrMissingExecutionCall
	}
	return nil
}

// Clone returns an independent copy of the command.
// Options are replayed under the current delimiter.
func (c *Command) Clone() *Command {
	clone := &Command{
		executionCall: c.executionCall,
		subcommand:    c.subcommand,
		delimiter:     c.delimiter,
	}
	return clone.AddArguments(c.arguments...).AddOptions(c.Options()...)
}

// RelativePath returns path relative to the working directory.
// The path is returned unchanged when it cannot be made relative.
func RelativePath(path string) string {
	wd, err := os.Getwd()
	if err != nil {
		return path
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	rel, err := filepath.Rel(wd, abs)
	if err != nil {
		return path
	}
	return rel
}
