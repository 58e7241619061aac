// Package reconcile implements the single idempotent apply procedure shared
// by every write module: look the resource up by its natural key, compare
// the supplied attributes with what exists, and issue at most one mutating
// call.
package reconcile

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/alexisbeaulieu97/otctasks/internal/cloud"
	"github.com/alexisbeaulieu97/otctasks/internal/model"
	"github.com/alexisbeaulieu97/otctasks/pkg/diff"
	apperrors "github.com/alexisbeaulieu97/otctasks/pkg/errors"
)

// State is the desired presence of a resource.
type State string

const (
	Present State = "present"
	Absent  State = "absent"
)

// Action is the mutating call a Plan will make.
type Action string

const (
	ActionNone   Action = "none"
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

const (
	// DefaultTimeout bounds job waits when a Resource sets none.
	DefaultTimeout = 180 * time.Second
	// DefaultPollInterval is the delay between job status polls.
	DefaultPollInterval = 2 * time.Second

	redacted = "********"
)

// Key locates the existing resource. With Match set the resource is found
// by listing with those filters; otherwise Ref is looked up by name or id
// within Scope.
type Key struct {
	Ref   string
	Scope cloud.Filters
	Match cloud.Filters
}

func (k Key) String() string {
	if len(k.Match) == 0 {
		return k.Ref
	}
	parts := make([]string, 0, len(k.Match))
	for key, v := range k.Match {
		parts = append(parts, fmt.Sprintf("%s=%v", key, v))
	}
	sort.Strings(parts)
	return strings.Join(parts, ",")
}

// Dependency is a secondary resource resolved to an identifier before a
// create. The resolved value is stored under Attr in the create payload.
type Dependency struct {
	Kind  cloud.Kind
	Ref   string
	Scope cloud.Filters
	Attr  string
	// Render wraps the resolved id. Nil stores the bare id.
	Render func(id string) any
}

// Resource is the immutable description of one reconciliation.
type Resource struct {
	Kind  cloud.Kind
	Key   Key
	State State
	// Desired holds only explicitly supplied attributes. It is the create
	// payload, before dependencies are added.
	Desired map[string]any
	// Mutable lists the Desired keys an update may change. Empty means all.
	Mutable []string
	// Immutable resources are never updated; an existing one is reported
	// unchanged.
	Immutable bool
	// Conflicts lists Desired keys that must equal the existing resource's
	// values. A difference is a *errors.ConflictError.
	Conflicts    []string
	Dependencies []Dependency
	// CreateCheck, when set, validates Desired once a create is needed and
	// before any dependency is resolved.
	CreateCheck func() error
	// Secrets are masked in diffs.
	Secrets      []string
	Wait         bool
	Timeout      time.Duration
	PollInterval time.Duration
}

// Plan is the read-only outcome of Evaluate.
type Plan struct {
	Resource Resource
	Action   Action
	Found    bool
	Observed cloud.Record
	// Payload is the create payload including resolved dependencies.
	Payload map[string]any
	// Changes holds the fields an update sends.
	Changes map[string]any
	Diff    string
}

// State maps the plan onto a model.ResourceState.
func (p *Plan) State() model.ResourceState {
	switch p.Action {
	case ActionCreate:
		return model.StateMissing
	case ActionUpdate:
		return model.StateDrifted
	case ActionDelete:
		return model.StateExtraneous
	default:
		return model.StateSatisfied
	}
}

// Message describes the plan for humans.
func (p *Plan) Message() string {
	kind := p.Resource.Kind
	key := p.Resource.Key.String()
	switch p.Action {
	case ActionCreate:
		return fmt.Sprintf("%s %s will be created", kind, key)
	case ActionUpdate:
		return fmt.Sprintf("%s %s will be updated (%s)", kind, key, strings.Join(sortedKeys(p.Changes), ", "))
	case ActionDelete:
		return fmt.Sprintf("%s %s will be deleted", kind, key)
	default:
		if p.Found {
			return fmt.Sprintf("%s %s is up to date", kind, key)
		}
		return fmt.Sprintf("%s %s is already absent", kind, key)
	}
}

// Outcome reports what Execute did. Changed is true once a mutating call
// succeeded, even when a later job wait fails.
type Outcome struct {
	Changed bool
	Record  cloud.Record
	JobID   string
}

// Evaluate looks up the resource and decides which call, if any, would
// reconcile it. It never mutates remote state. Dependencies are resolved
// only when a create is needed and a failure aborts with a
// *errors.NotFoundError. A CreateCheck failure is returned unwrapped.
func Evaluate(ctx context.Context, client cloud.Client, res Resource) (*Plan, error) {
	observed, found, err := lookup(ctx, client, res)
	if err != nil {
		return nil, err
	}

	plan := &Plan{Resource: res, Action: ActionNone, Found: found, Observed: observed}

	if res.State == Absent {
		if found {
			plan.Action = ActionDelete
			plan.Diff = deleteDiff(observed)
		}
		return plan, nil
	}

	if !found {
		if res.CreateCheck != nil {
			if err := res.CreateCheck(); err != nil {
				return nil, err
			}
		}
		payload, err := resolve(ctx, client, res)
		if err != nil {
			return nil, err
		}
		plan.Action = ActionCreate
		plan.Payload = payload
		plan.Diff, err = diff.Attributes(nil, mask(payload, res.Secrets), "observed", "desired")
		if err != nil {
			return nil, err
		}
		return plan, nil
	}

	if conflicts := diff.Fields(observed, pick(res.Desired, res.Conflicts)); len(conflicts) > 0 {
		return nil, apperrors.NewConflictError(string(res.Kind), res.Key.String(), conflicts...)
	}
	if res.Immutable {
		return plan, nil
	}

	candidates := res.Desired
	if len(res.Mutable) > 0 {
		candidates = pick(res.Desired, res.Mutable)
	}
	changed := diff.Fields(observed, candidates)
	if len(changed) == 0 {
		return plan, nil
	}

	plan.Action = ActionUpdate
	plan.Changes = pick(candidates, changed)
	plan.Diff, err = diff.Attributes(mask(observed, res.Secrets), mask(candidates, res.Secrets), "observed", "desired")
	if err != nil {
		return nil, err
	}
	return plan, nil
}

// Execute issues the single mutating call of plan and waits for its job
// when the resource asks for it.
func Execute(ctx context.Context, client cloud.Client, plan *Plan) (Outcome, error) {
	res := plan.Resource
	switch plan.Action {
	case ActionCreate:
		rec, err := client.Create(ctx, res.Kind, plan.Payload)
		if err != nil {
			return Outcome{}, apperrors.NewCollaboratorError("create", string(res.Kind), err)
		}
		out := Outcome{Changed: true, Record: rec, JobID: rec.JobID()}
		return out, settle(ctx, client, res, out.JobID)

	case ActionUpdate:
		rec, err := client.Update(ctx, res.Kind, plan.Observed.ID(), plan.Changes)
		if err != nil {
			return Outcome{}, apperrors.NewCollaboratorError("update", string(res.Kind), err)
		}
		return Outcome{Changed: true, Record: rec}, nil

	case ActionDelete:
		job, err := client.Delete(ctx, res.Kind, plan.Observed.ID())
		if err != nil {
			return Outcome{}, apperrors.NewCollaboratorError("delete", string(res.Kind), err)
		}
		out := Outcome{Changed: true, Record: plan.Observed, JobID: job.ID}
		return out, settle(ctx, client, res, job.ID)

	default:
		return Outcome{Record: plan.Observed}, nil
	}
}

// Run evaluates and executes res in one step.
func Run(ctx context.Context, client cloud.Client, res Resource) (Outcome, error) {
	plan, err := Evaluate(ctx, client, res)
	if err != nil {
		return Outcome{}, err
	}
	return Execute(ctx, client, plan)
}

func lookup(ctx context.Context, client cloud.Client, res Resource) (cloud.Record, bool, error) {
	if len(res.Key.Match) > 0 {
		records, err := client.List(ctx, res.Kind, res.Key.Match)
		if err != nil {
			return nil, false, apperrors.NewCollaboratorError("list", string(res.Kind), err)
		}
		switch len(records) {
		case 0:
			return nil, false, nil
		case 1:
			return records[0], true, nil
		default:
			return nil, false, fmt.Errorf("%d %s resources match %s", len(records), res.Kind, res.Key)
		}
	}

	if res.Key.Ref == "" {
		return nil, false, nil
	}
	rec, found, err := client.Find(ctx, res.Kind, res.Key.Ref, res.Key.Scope)
	if err != nil {
		return nil, false, apperrors.NewCollaboratorError("find", string(res.Kind), err)
	}
	return rec, found, nil
}

func resolve(ctx context.Context, client cloud.Client, res Resource) (map[string]any, error) {
	payload := make(map[string]any, len(res.Desired)+len(res.Dependencies))
	for k, v := range res.Desired {
		payload[k] = v
	}
	for _, dep := range res.Dependencies {
		rec, found, err := client.Find(ctx, dep.Kind, dep.Ref, dep.Scope)
		if err != nil {
			return nil, apperrors.NewCollaboratorError("find", string(dep.Kind), err)
		}
		if !found {
			return nil, apperrors.NewNotFoundError(string(dep.Kind), dep.Ref)
		}
		if dep.Render != nil {
			payload[dep.Attr] = dep.Render(rec.ID())
		} else {
			payload[dep.Attr] = rec.ID()
		}
	}
	return payload, nil
}

func settle(ctx context.Context, client cloud.Client, res Resource, jobID string) error {
	if jobID == "" || !res.Wait {
		return nil
	}
	return Wait(ctx, client, jobID, WaitOptions{Timeout: res.Timeout, Interval: res.PollInterval})
}

func pick(m map[string]any, keys []string) map[string]any {
	out := make(map[string]any, len(keys))
	for _, k := range keys {
		if v, ok := m[k]; ok {
			out[k] = v
		}
	}
	return out
}

func mask(m map[string]any, secrets []string) map[string]any {
	if m == nil || len(secrets) == 0 {
		return m
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	for _, s := range secrets {
		if _, ok := out[s]; ok {
			out[s] = redacted
		}
	}
	return out
}

func deleteDiff(observed cloud.Record) string {
	before := fmt.Sprintf("id: %s\n", observed.ID())
	if name := observed.Name(); name != "" {
		before += fmt.Sprintf("name: %s\n", name)
	}
	return diff.GenerateUnifiedDiff([]byte(before), nil, "observed", "desired")
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
