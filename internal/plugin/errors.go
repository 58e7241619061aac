package plugin

import (
	"errors"
	"fmt"
)

// ErrPluginNotFound is returned when the requested plugin is not registered.
type ErrPluginNotFound struct {
	Name string
}

func (e ErrPluginNotFound) Error() string {
	return fmt.Sprintf("module '%s' not found in registry\nHint: run 'otctasks modules list' to see available modules", e.Name)
}

// PluginError is the base interface for all plugin errors.
// It provides structured error information that the executor can use
// to make intelligent decisions about how to handle failures.
type PluginError interface {
	error
	TaskID() string
	Unwrap() error
}

// ValidationError represents configuration or input validation failures.
// These are typically caused by malformed YAML, missing required fields,
// or invalid field values in the task parameters.
type ValidationError struct {
	ID  string
	Err error
}

// NewValidationError creates a new ValidationError.
func NewValidationError(taskID string, err error) *ValidationError {
	return &ValidationError{
		ID:  taskID,
		Err: err,
	}
}

// Error returns a formatted error message including the task ID.
func (e *ValidationError) Error() string {
	if e.Err == nil {
		return "validation error in task " + e.ID
	}
	return "validation error in task " + e.ID + ": " + e.Err.Error()
}

// TaskID returns the identifier of the task where the error occurred.
func (e *ValidationError) TaskID() string {
	return e.ID
}

// Unwrap returns the underlying validation error.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// Is checks if this error matches another ValidationError.
func (e *ValidationError) Is(target error) bool {
	_, ok := target.(*ValidationError)
	return ok
}

// ExecutionError represents failures of the mutating call issued by Apply,
// including job waits that fail or time out.
type ExecutionError struct {
	ID  string
	Err error
}

// NewExecutionError creates a new ExecutionError.
func NewExecutionError(taskID string, err error) *ExecutionError {
	return &ExecutionError{
		ID:  taskID,
		Err: err,
	}
}

// Error returns a formatted error message including the task ID.
func (e *ExecutionError) Error() string {
	if e.Err == nil {
		return "execution error in task " + e.ID
	}
	return "execution error in task " + e.ID + ": " + e.Err.Error()
}

// TaskID returns the identifier of the task where the error occurred.
func (e *ExecutionError) TaskID() string {
	return e.ID
}

// Unwrap returns the underlying execution error.
func (e *ExecutionError) Unwrap() error {
	return e.Err
}

// Is checks if this error matches another ExecutionError.
func (e *ExecutionError) Is(target error) bool {
	_, ok := target.(*ExecutionError)
	return ok
}

// StateError represents inability to determine the current remote state,
// such as a failed lookup or an unresolvable secondary resource.
type StateError struct {
	ID  string
	Err error
}

// NewStateError creates a new StateError.
func NewStateError(taskID string, err error) *StateError {
	return &StateError{
		ID:  taskID,
		Err: err,
	}
}

// Error returns a formatted error message including the task ID.
func (e *StateError) Error() string {
	if e.Err == nil {
		return "state error in task " + e.ID
	}
	return "state error in task " + e.ID + ": " + e.Err.Error()
}

// TaskID returns the identifier of the task where the error occurred.
func (e *StateError) TaskID() string {
	return e.ID
}

// Unwrap returns the underlying lookup error.
func (e *StateError) Unwrap() error {
	return e.Err
}

// Is checks if this error matches another StateError.
func (e *StateError) Is(target error) bool {
	_, ok := target.(*StateError)
	return ok
}

// AsPluginError attempts to convert any error to a PluginError.
// This helper function can be used by the executor to categorize errors.
func AsPluginError(err error) (PluginError, bool) {
	var pluginErr PluginError
	if errors.As(err, &pluginErr) {
		return pluginErr, true
	}
	return nil, false
}
