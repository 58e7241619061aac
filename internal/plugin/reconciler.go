package plugin

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/alexisbeaulieu97/otctasks/internal/cloud"
	"github.com/alexisbeaulieu97/otctasks/internal/config"
	"github.com/alexisbeaulieu97/otctasks/internal/model"
	"github.com/alexisbeaulieu97/otctasks/internal/normalize"
	"github.com/alexisbeaulieu97/otctasks/internal/params"
	"github.com/alexisbeaulieu97/otctasks/internal/reconcile"
	apperrors "github.com/alexisbeaulieu97/otctasks/pkg/errors"
)

// DecodeParams decodes the task parameters into out and tags any failure
// with the task ID.
func DecodeParams(task *config.Task, out any) error {
	if task == nil {
		return NewValidationError("", fmt.Errorf("task is nil"))
	}
	if err := params.Decode(task.Params, out); err != nil {
		return NewValidationError(task.ID, err)
	}
	return nil
}

// Output describes how a write module renders the resource it manages.
type Output struct {
	// Key is the payload key of the result envelope.
	Key string
	// Drop lists attributes removed from the payload in addition to the
	// normalizer's bookkeeping keys.
	Drop []string
}

func (o Output) render(kind cloud.Kind, rec cloud.Record) map[string]any {
	return normalize.Shaped(kind, rec, o.Drop...)
}

// EvaluateResource plans res without mutating anything. When no call is
// needed the returned evaluation already carries the final result.
func EvaluateResource(ctx context.Context, client cloud.Client, taskID string, res reconcile.Resource, out Output) (*model.EvaluationResult, error) {
	plan, err := reconcile.Evaluate(ctx, client, res)
	if err != nil {
		var validationErr *apperrors.ValidationError
		if errors.As(err, &validationErr) {
			return nil, NewValidationError(taskID, err)
		}
		return nil, NewStateError(taskID, err)
	}

	eval := &model.EvaluationResult{
		TaskID:         taskID,
		CurrentState:   plan.State(),
		RequiresAction: plan.Action != reconcile.ActionNone,
		Message:        plan.Message(),
		Diff:           plan.Diff,
		InternalData:   plan,
	}
	if !eval.RequiresAction {
		if plan.Found && res.State == reconcile.Present {
			eval.Result = model.Unchanged(out.Key, out.render(res.Kind, plan.Observed))
		} else {
			eval.Result = model.NewResult(false, "", nil)
		}
	}
	return eval, nil
}

// ApplyResource executes the plan carried by eval. On failure the returned
// result still reports whether the mutating call succeeded before the error.
func ApplyResource(ctx context.Context, client cloud.Client, eval *model.EvaluationResult, out Output) (*model.TaskResult, error) {
	if eval == nil {
		return nil, NewValidationError("", fmt.Errorf("evaluation result is nil"))
	}
	plan, ok := eval.InternalData.(*reconcile.Plan)
	if !ok || plan == nil {
		return nil, NewValidationError(eval.TaskID, fmt.Errorf("evaluation carries no reconcile plan"))
	}

	outcome, err := reconcile.Execute(ctx, client, plan)
	if err != nil {
		return &model.TaskResult{
			TaskID:    eval.TaskID,
			Status:    model.StatusFailed,
			Message:   err.Error(),
			Diff:      eval.Diff,
			Result:    model.Failure(outcome.Changed, err),
			Error:     err,
			Timestamp: time.Now(),
		}, NewExecutionError(eval.TaskID, err)
	}

	result := &model.TaskResult{
		TaskID:    eval.TaskID,
		Status:    model.StatusOK,
		Message:   eval.Message,
		Diff:      eval.Diff,
		Timestamp: time.Now(),
	}
	switch {
	case plan.Action == reconcile.ActionDelete:
		result.Result = model.NewResult(outcome.Changed, "", nil)
		result.Message = fmt.Sprintf("%s %s deleted", plan.Resource.Kind, plan.Resource.Key)
	case outcome.Record != nil:
		result.Result = model.NewResult(outcome.Changed, out.Key, out.render(plan.Resource.Kind, outcome.Record))
	default:
		result.Result = model.NewResult(outcome.Changed, "", nil)
	}
	if outcome.Changed {
		result.Status = model.StatusChanged
	}
	return result, nil
}
