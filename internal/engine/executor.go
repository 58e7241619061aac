package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/alexisbeaulieu97/otctasks/internal/config"
	"github.com/alexisbeaulieu97/otctasks/internal/model"
	"github.com/alexisbeaulieu97/otctasks/internal/params"
	apperrors "github.com/alexisbeaulieu97/otctasks/pkg/errors"
)

// Execute runs the plan's tasks one after another and returns their
// results in plan order. Without ContinueOnError the first failure stops
// the run; with it, tasks depending on a failed task are skipped.
func Execute(execCtx *ExecutionContext, plan *ExecutionPlan) ([]model.TaskResult, error) {
	if execCtx == nil {
		return nil, apperrors.NewExecutionError("", fmt.Errorf("execution context is nil"))
	}
	if execCtx.Playbook == nil {
		return nil, apperrors.NewExecutionError("", fmt.Errorf("execution context playbook is nil"))
	}
	if execCtx.Client == nil {
		return nil, apperrors.NewExecutionError("", fmt.Errorf("execution context client is nil"))
	}
	if plan == nil {
		return nil, apperrors.NewExecutionError("", fmt.Errorf("execution plan is nil"))
	}

	ctx := execCtx.baseContext()
	if execCtx.Results == nil {
		execCtx.Results = make(map[string]*model.TaskResult)
	}

	tasks := config.TaskMap(execCtx.Playbook.Tasks)
	blocked := make(map[string]bool)
	results := make([]model.TaskResult, 0, len(plan.Tasks))
	var firstErr error

	for _, planned := range plan.Tasks {
		task, ok := tasks[planned.ID]
		if !ok {
			return results, apperrors.NewExecutionError(planned.ID, fmt.Errorf("task not found"))
		}
		if ctx.Err() != nil {
			return results, apperrors.NewExecutionError(task.ID, ctx.Err())
		}

		if failed := failedDependencies(planned, blocked); len(failed) > 0 {
			res := skippedResult(task, failed)
			execCtx.Logger.WithTask(task.ID, task.Module).Warn(res.Message)
			blocked[task.ID] = true
			execCtx.Results[task.ID] = res
			results = append(results, *res)
			execCtx.finished(res)
			continue
		}

		execCtx.started(task.ID)
		res, err := executeTask(ctx, execCtx, &task)
		if res != nil {
			execCtx.Results[task.ID] = res
			results = append(results, *res)
			execCtx.finished(res)
		}
		if err != nil {
			blocked[task.ID] = true
			if firstErr == nil {
				firstErr = err
			}
			if !execCtx.ContinueOnError {
				return results, err
			}
		}
	}

	return results, firstErr
}

// RunTask executes a single task outside of any playbook.
func RunTask(execCtx *ExecutionContext, task *config.Task) (*model.TaskResult, error) {
	if execCtx == nil {
		return nil, apperrors.NewExecutionError("", fmt.Errorf("execution context is nil"))
	}
	if execCtx.Client == nil {
		return nil, apperrors.NewExecutionError("", fmt.Errorf("execution context client is nil"))
	}
	if task == nil {
		return nil, apperrors.NewExecutionError("", fmt.Errorf("task is nil"))
	}
	return executeTask(execCtx.baseContext(), execCtx, task)
}

func executeTask(ctx context.Context, execCtx *ExecutionContext, task *config.Task) (*model.TaskResult, error) {
	taskCtx := ctx
	var cancel context.CancelFunc
	if execCtx.Timeout > 0 {
		taskCtx, cancel = context.WithTimeout(ctx, execCtx.Timeout)
		defer cancel()
	}

	log := execCtx.Logger.WithTask(task.ID, task.Module)
	start := time.Now()

	impl, err := execCtx.registry().Get(task.Module)
	if err != nil {
		return finalizeFailure(newResult(task), taskCtx, task.ID, err)
	}

	log = log.WithSecrets(params.Secrets(impl.Schema())...)
	log.WithFields(task.Params).Debug("evaluating task")
	evalResult, err := impl.Evaluate(taskCtx, execCtx.Client, task)
	if err != nil {
		log.Error(err, "evaluation failed")
		result := newResult(task)
		result.Duration = time.Since(start)
		return finalizeFailure(result, taskCtx, task.ID, err)
	}
	if evalResult == nil {
		return finalizeFailure(newResult(task), taskCtx, task.ID, fmt.Errorf("module returned no evaluation"))
	}
	log.Debugf("state %s: %s", evalResult.CurrentState, evalResult.Message)

	var result *model.TaskResult
	switch {
	case !evalResult.RequiresAction:
		result = newResult(task)
		result.Status = model.StatusOK
		result.Message = evalResult.Message
		result.Result = evalResult.Result
	case execCtx.CheckMode:
		result = newResult(task)
		result.Status = checkStatus(evalResult.CurrentState)
		result.Message = evalResult.Message
		result.Diff = evalResult.Diff
		result.Result = model.NewResult(true, "", nil)
	default:
		log.Debug("applying task")
		result, err = impl.Apply(taskCtx, execCtx.Client, evalResult, task)
	}

	if result == nil {
		result = newResult(task)
	}
	if result.TaskID == "" {
		result.TaskID = task.ID
	}
	result.Module = task.Module
	result.Duration = time.Since(start)
	if result.Timestamp.IsZero() {
		result.Timestamp = time.Now()
	}

	if err != nil {
		log.Error(err, "apply failed")
		return finalizeFailure(result, taskCtx, task.ID, err)
	}

	if result.Status == "" {
		result.Status = model.StatusOK
		if result.Changed() {
			result.Status = model.StatusChanged
		}
	}
	if result.Message == "" {
		result.Message = "completed"
	}

	log.Info(fmt.Sprintf("task %s: %s", result.Status, result.Message))
	return result, nil
}

func newResult(task *config.Task) *model.TaskResult {
	return &model.TaskResult{TaskID: task.ID, Module: task.Module, Timestamp: time.Now()}
}

func checkStatus(state model.ResourceState) string {
	switch state {
	case model.StateMissing:
		return model.StatusWouldCreate
	case model.StateExtraneous:
		return model.StatusWouldDelete
	default:
		return model.StatusWouldUpdate
	}
}

func finalizeFailure(result *model.TaskResult, taskCtx context.Context, taskID string, err error) (*model.TaskResult, error) {
	result.Status = model.StatusFailed
	if result.Error == nil {
		result.Error = err
	}
	if !result.Result.Failed() {
		result.Result = model.Failure(result.Result.Changed(), err)
	}
	if result.Message == "" || result.Message == "completed" {
		result.Message = err.Error()
	}

	var jobTimeout *apperrors.TimeoutError
	if errors.As(err, &jobTimeout) {
		result.Message = jobTimeout.Error()
	} else if errors.Is(err, context.DeadlineExceeded) || errors.Is(taskCtx.Err(), context.DeadlineExceeded) {
		result.Message = "timeout exceeded"
	}

	return result, apperrors.NewExecutionError(taskID, err)
}

func failedDependencies(task PlannedTask, blocked map[string]bool) []string {
	var failed []string
	for _, dep := range task.DependsOn {
		if blocked[dep] {
			failed = append(failed, dep)
		}
	}
	return failed
}

func skippedResult(task config.Task, failed []string) *model.TaskResult {
	return &model.TaskResult{
		TaskID:    task.ID,
		Module:    task.Module,
		Status:    model.StatusSkipped,
		Message:   fmt.Sprintf("skipped: dependencies did not succeed: %s", strings.Join(failed, ", ")),
		Result:    model.NewResult(false, "", nil),
		Timestamp: time.Now(),
	}
}
