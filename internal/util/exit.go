package util

import (
	"errors"
	"fmt"
	"os"

	"github.com/ppiankov/orcall/openrouter"
)

// Standard exit codes
const (
	// ExitOK indicates successful execution
	ExitOK = 0

	// ExitInvalidInput indicates validation errors or invalid parameters
	ExitInvalidInput = 2

	// ExitRuntimeError indicates I/O errors, API failures, or runtime issues
	ExitRuntimeError = 3

	// ExitNoResponse indicates the reply held no completion content
	ExitNoResponse = 4
)

// InputError marks an error caused by bad flags or arguments.
type InputError struct {
	Err error
}

func (e *InputError) Error() string { return e.Err.Error() }
func (e *InputError) Unwrap() error { return e.Err }

// InvalidInput wraps a formatted message as an InputError.
func InvalidInput(format string, args ...interface{}) error {
	return &InputError{Err: fmt.Errorf(format, args...)}
}

// ExitCodeFor maps an error returned by a command to a process exit code.
func ExitCodeFor(err error) int {
	var (
		inputErr *InputError
		serErr   *openrouter.SerializationError
	)
	switch {
	case err == nil:
		return ExitOK
	case errors.As(err, &inputErr):
		return ExitInvalidInput
	case errors.As(err, &serErr) && serErr.Op == openrouter.OpEncode:
		return ExitInvalidInput
	case errors.Is(err, openrouter.ErrNoResponse):
		return ExitNoResponse
	default:
		return ExitRuntimeError
	}
}

// Exit terminates the program with the given exit code
func Exit(code int) {
	os.Exit(code)
}

// ExitWithError prints an error message to stderr and exits with the given code
func ExitWithError(code int, format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	Exit(code)
}
