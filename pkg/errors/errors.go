package errors

import (
	"fmt"
	"strings"
	"time"
)

// ParseError represents a YAML parsing failure with optional line metadata.
type ParseError struct {
	Path    string
	Line    int
	Message string
	Err     error
}

// NewParseError constructs a ParseError.
func NewParseError(path string, line int, err error) error {
	message := ""
	if err != nil {
		message = err.Error()
	}
	return &ParseError{Path: path, Line: line, Message: message, Err: err}
}

func (e *ParseError) Error() string {
	if e == nil {
		return ""
	}

	if e.Line > 0 {
		return fmt.Sprintf("parse error: %s:%d: %s", e.Path, e.Line, e.Message)
	}
	return fmt.Sprintf("parse error: %s: %s", e.Path, e.Message)
}

// Unwrap exposes the underlying error.
func (e *ParseError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// ValidationError captures parameter or configuration validation issues.
// It is always raised before any remote call is made.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

// NewValidationError constructs a ValidationError.
func NewValidationError(field, message string, err error) error {
	return &ValidationError{Field: field, Message: message, Err: err}
}

func (e *ValidationError) Error() string {
	if e == nil {
		return ""
	}
	if e.Field != "" {
		return fmt.Sprintf("validation error: %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation error: %s", e.Message)
}

// Unwrap exposes the underlying error.
func (e *ValidationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// NotFoundError reports a dependent resource that could not be resolved.
type NotFoundError struct {
	Kind string
	Ref  string
}

// NewNotFoundError constructs a NotFoundError.
func NewNotFoundError(kind, ref string) error {
	return &NotFoundError{Kind: kind, Ref: ref}
}

func (e *NotFoundError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("not found: no %s with name or id %q", e.Kind, e.Ref)
}

// CollaboratorError wraps any failure raised by the cloud client.
type CollaboratorError struct {
	Op   string
	Kind string
	Err  error
}

// NewCollaboratorError constructs a CollaboratorError.
func NewCollaboratorError(op, kind string, err error) error {
	return &CollaboratorError{Op: op, Kind: kind, Err: err}
}

func (e *CollaboratorError) Error() string {
	if e == nil {
		return ""
	}
	if e.Kind != "" {
		return fmt.Sprintf("cloud error: %s %s: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("cloud error: %s: %v", e.Op, e.Err)
}

// Unwrap exposes the root error.
func (e *CollaboratorError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// TimeoutError reports an asynchronous job that did not finish in time.
type TimeoutError struct {
	JobID string
	After time.Duration
	Err   error
}

// NewTimeoutError constructs a TimeoutError.
func NewTimeoutError(jobID string, after time.Duration, err error) error {
	return &TimeoutError{JobID: jobID, After: after, Err: err}
}

func (e *TimeoutError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("timeout: job %s did not finish within %s", e.JobID, e.After)
}

// Unwrap exposes the last polling error, if any.
func (e *TimeoutError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// ConflictError reports a resource that exists under the natural key but
// cannot be brought to the desired state.
type ConflictError struct {
	Kind   string
	Key    string
	Fields []string
}

// NewConflictError constructs a ConflictError.
func NewConflictError(kind, key string, fields ...string) error {
	return &ConflictError{Kind: kind, Key: key, Fields: fields}
}

func (e *ConflictError) Error() string {
	if e == nil {
		return ""
	}
	if len(e.Fields) == 0 {
		return fmt.Sprintf("conflict: %s %s already exists", e.Kind, e.Key)
	}
	return fmt.Sprintf("conflict: %s %s already exists with different %s", e.Kind, e.Key, strings.Join(e.Fields, ", "))
}

// ExecutionError represents a runtime failure while executing a task.
type ExecutionError struct {
	TaskID string
	Err    error
}

// NewExecutionError constructs an ExecutionError.
func NewExecutionError(taskID string, err error) error {
	return &ExecutionError{TaskID: taskID, Err: err}
}

func (e *ExecutionError) Error() string {
	if e == nil {
		return ""
	}
	if e.TaskID != "" {
		return fmt.Sprintf("execution error on task %s: %v", e.TaskID, e.Err)
	}
	return fmt.Sprintf("execution error: %v", e.Err)
}

// Unwrap exposes the root error.
func (e *ExecutionError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// PluginError indicates issues within module registration or lookup.
type PluginError struct {
	Plugin  string
	Message string
	Err     error
}

// NewPluginError constructs a PluginError for the given module name.
func NewPluginError(plugin string, err error) error {
	message := ""
	if err != nil {
		message = err.Error()
	}
	return &PluginError{Plugin: plugin, Message: message, Err: err}
}

func (e *PluginError) Error() string {
	if e == nil {
		return ""
	}
	if e.Plugin != "" {
		return fmt.Sprintf("module error [%s]: %s", e.Plugin, e.Message)
	}
	return fmt.Sprintf("module error: %s", e.Message)
}

// Unwrap exposes the underlying error.
func (e *PluginError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}
