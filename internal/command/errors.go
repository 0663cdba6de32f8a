package command

import (
	"errors"
	"fmt"
)

// Sentinel errors for command construction.
var (
	ErrInvalidConstruction  = errors.New("command needs an execution call and a subcommand")
	ErrMissingExecutionCall = errors.New("execution call is not set")
	ErrPathNotFound         = errors.New("path not found")
	ErrInvalidOption        = errors.New("invalid option")
)

func invalidOption(item []string) error {
	return fmt.Errorf("%w: %q must hold a flag and at most one value", ErrInvalidOption, item)
}
