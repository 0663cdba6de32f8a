// Package prompt provides user interaction primitives using charmbracelet/huh.
package prompt

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/huh"
)

// ErrCanceled is returned when the user cancels a prompt.
var ErrCanceled = errors.New("canceled by user")

// Prompter abstracts user interaction for testability.
type Prompter interface {
	// Print outputs text to the user.
	Print(message string)

	// Confirm prompts for yes/no confirmation.
	Confirm(title, description string) (bool, error)

	// Choice prompts user to select from options, returns 0-based index.
	Choice(prompt string, options []string) (int, error)
}

// HuhPrompter implements Prompter using charmbracelet/huh for interactive forms.
type HuhPrompter struct {
	out io.Writer
}

// New creates a HuhPrompter that prints to out (os.Stdout when nil).
func New(out io.Writer) *HuhPrompter {
	if out == nil {
		out = os.Stdout
	}
	return &HuhPrompter{out: out}
}

// Print outputs text to the user.
func (p *HuhPrompter) Print(message string) {
	fmt.Fprintln(p.out, message)
}

// Confirm prompts for yes/no confirmation.
func (p *HuhPrompter) Confirm(title, description string) (bool, error) {
	var confirmed bool

	err := huh.NewConfirm().
		Title(title).
		Description(description).
		Affirmative("Yes").
		Negative("No").
		Value(&confirmed).
		Run()

	if err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return false, ErrCanceled
		}
		return false, fmt.Errorf("confirm prompt: %w", err)
	}

	return confirmed, nil
}

// Choice prompts user to select from options and returns the 0-based index.
func (p *HuhPrompter) Choice(prompt string, options []string) (int, error) {
	if len(options) == 0 {
		return 0, errors.New("no options provided")
	}

	huhOptions := make([]huh.Option[int], len(options))
	for i, opt := range options {
		huhOptions[i] = huh.NewOption(opt, i)
	}

	var selected int

	err := huh.NewSelect[int]().
		Title(prompt).
		Options(huhOptions...).
		Value(&selected).
		Run()

	if err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return 0, ErrCanceled
		}
		return 0, fmt.Errorf("choice prompt: %w", err)
	}

	return selected, nil
}

// Static answers prompts without user interaction.
// It is used when stdin is not a terminal.
type Static struct {
	Out    io.Writer
	Answer bool // Answer returned by Confirm
	Index  int  // Index returned by Choice
}

// Print outputs text to Out.
func (s Static) Print(message string) {
	if s.Out != nil {
		fmt.Fprintln(s.Out, message)
	}
}

// Confirm returns the configured answer.
func (s Static) Confirm(string, string) (bool, error) {
	return s.Answer, nil
}

// Choice returns the configured index, or an error when it is out of range.
func (s Static) Choice(prompt string, options []string) (int, error) {
	if s.Index < 0 || s.Index >= len(options) {
		return 0, fmt.Errorf("%s: no choice available without a terminal", prompt)
	}
	return s.Index, nil
}
