package model

// ResourceState describes the observed resource relative to the desired state.
type ResourceState string

const (
	// StateSatisfied means the resource already matches every supplied field.
	StateSatisfied ResourceState = "satisfied"
	// StateMissing means the resource should exist but was not found.
	StateMissing ResourceState = "missing"
	// StateDrifted means at least one supplied field differs.
	StateDrifted ResourceState = "drifted"
	// StateExtraneous means the resource exists but should be absent.
	StateExtraneous ResourceState = "extraneous"
	// StateQueried marks read-only modules that report data without a target state.
	StateQueried ResourceState = "queried"
)

// IsValid reports whether s is a known state.
func (s ResourceState) IsValid() bool {
	switch s {
	case StateSatisfied, StateMissing, StateDrifted, StateExtraneous, StateQueried:
		return true
	default:
		return false
	}
}

// EvaluationResult contains the result of evaluating a task's current state
// against its desired state. It is returned by Module.Evaluate and passed to
// Module.Apply when action is required.
type EvaluationResult struct {
	// TaskID is the unique identifier of the evaluated task
	TaskID string

	// CurrentState is the observed resource relative to the desired state
	CurrentState ResourceState

	// RequiresAction indicates whether Apply should be called
	RequiresAction bool

	// Message is a human-readable description of the state assessment
	Message string

	// Diff is an optional unified diff of the attributes that would change
	Diff string

	// Result is the envelope reported when no action is required
	Result Result

	// InternalData is opaque data passed from Evaluate to Apply
	InternalData any
}
