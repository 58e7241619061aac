package main

import (
	"errors"
	"fmt"

	"github.com/alexisbeaulieu97/otctasks/internal/plugin"
	apperrors "github.com/alexisbeaulieu97/otctasks/pkg/errors"
)

const (
	exitOK         = 0
	exitError      = 1
	exitValidation = 2
)

func newCommandError(operation, context string, cause error, suggestion string) error {
	return &commandError{operation: operation, context: context, cause: cause, suggestion: suggestion}
}

type commandError struct {
	operation  string
	context    string
	cause      error
	suggestion string
}

func (e *commandError) Error() string {
	return fmt.Sprintf("Failed to %s: %s\n\nError: %v\n\nSuggestion: %s", e.operation, e.context, e.cause, e.suggestion)
}

func (e *commandError) Unwrap() error {
	return e.cause
}

// exitCode maps an error onto the process exit status. Parameter and
// settings validation failures exit with 2, everything else with 1.
func exitCode(err error) int {
	if err == nil {
		return exitOK
	}
	var validationErr *apperrors.ValidationError
	if errors.As(err, &validationErr) {
		return exitValidation
	}
	var taskValidationErr *plugin.ValidationError
	if errors.As(err, &taskValidationErr) {
		return exitValidation
	}
	return exitError
}
