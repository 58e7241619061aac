package model

import (
	"encoding/json"
)

// Result is the envelope a task reports to its caller: whether anything
// changed, the payload under its module-specific key, and an optional error.
// A Result is immutable once constructed.
type Result struct {
	changed bool
	key     string
	payload any
	err     error
}

// NewResult builds a Result. payload is copied.
func NewResult(changed bool, key string, payload any) Result {
	return Result{changed: changed, key: key, payload: clonePayload(payload)}
}

// Changed builds a Result reporting a change.
func Changed(key string, payload any) Result {
	return NewResult(true, key, payload)
}

// Unchanged builds a Result reporting no change.
func Unchanged(key string, payload any) Result {
	return NewResult(false, key, payload)
}

// Failure builds a Result carrying err. changed must only be true when a
// mutating call succeeded before err occurred.
func Failure(changed bool, err error) Result {
	return Result{changed: changed, err: err}
}

// Changed reports whether the task changed remote state.
func (r Result) Changed() bool { return r.changed }

// PayloadKey returns the module-specific payload key.
func (r Result) PayloadKey() string { return r.key }

// Payload returns a copy of the payload.
func (r Result) Payload() any { return clonePayload(r.payload) }

// Err returns the error carried by the result, if any.
func (r Result) Err() error { return r.err }

// Failed reports whether the result carries an error.
func (r Result) Failed() bool { return r.err != nil }

// Map renders the envelope as a plain mapping.
func (r Result) Map() map[string]any {
	out := map[string]any{"changed": r.changed}
	if r.key != "" {
		out[r.key] = clonePayload(r.payload)
	}
	if r.err != nil {
		out["failed"] = true
		out["msg"] = r.err.Error()
	}
	return out
}

// MarshalJSON implements json.Marshaler.
func (r Result) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.Map())
}

// MarshalYAML implements yaml.Marshaler.
func (r Result) MarshalYAML() (any, error) {
	return r.Map(), nil
}

func clonePayload(v any) any {
	switch typed := v.(type) {
	case map[string]any:
		if typed == nil {
			return typed
		}
		out := make(map[string]any, len(typed))
		for k, inner := range typed {
			out[k] = clonePayload(inner)
		}
		return out
	case []map[string]any:
		if typed == nil {
			return typed
		}
		out := make([]map[string]any, len(typed))
		for i, inner := range typed {
			out[i], _ = clonePayload(inner).(map[string]any)
		}
		return out
	case []any:
		if typed == nil {
			return typed
		}
		out := make([]any, len(typed))
		for i, inner := range typed {
			out[i] = clonePayload(inner)
		}
		return out
	default:
		return v
	}
}
