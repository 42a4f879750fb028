package cli

import (
	"errors"
	"strings"

	"github.com/specialistvlad/learngrid/internal/apperr"
)

// Process exit codes.
const (
	ExitOK       = 0
	ExitFailure  = 1
	ExitUsage    = 2
	ExitNotFound = 3
	ExitConflict = 4
	ExitCycle    = 5
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

func usageError(err error) error {
	return &ExitError{Code: ExitUsage, Message: err.Error()}
}

// toExitError picks the exit code for err from its error kind.
func toExitError(err error) *ExitError {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr
	}

	code := ExitFailure
	switch {
	case errors.Is(err, apperr.ErrCircularDependency):
		code = ExitCycle
	case errors.Is(err, apperr.ErrConflict):
		code = ExitConflict
	case errors.Is(err, apperr.ErrNotFound):
		code = ExitNotFound
	case errors.Is(err, apperr.ErrValidation):
		code = ExitUsage
	case strings.HasPrefix(err.Error(), "unknown command"):
		// cobra reports unknown subcommands as plain errors.
		code = ExitUsage
	}
	return &ExitError{Code: code, Message: err.Error()}
}
