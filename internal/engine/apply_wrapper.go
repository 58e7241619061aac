package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/alexisbeaulieu97/otctasks/internal/cloud"
	"github.com/alexisbeaulieu97/otctasks/internal/config"
	"github.com/alexisbeaulieu97/otctasks/internal/logger"
	"github.com/alexisbeaulieu97/otctasks/internal/model"
	"github.com/alexisbeaulieu97/otctasks/internal/plugin"
)

// ApplyOptions tunes ApplyPlaybook.
type ApplyOptions struct {
	CheckMode bool
	Logger    *logger.Logger
	Observer  Observer
}

// ApplyPlaybookResult contains the outcome of a playbook run.
type ApplyPlaybookResult struct {
	Playbook    string
	CheckMode   bool
	Summary     model.Summary
	FailedTasks []string
	Duration    time.Duration
	TaskResults []model.TaskResult
	Error       error
}

// Failed reports whether any task failed or the run was aborted.
func (r *ApplyPlaybookResult) Failed() bool {
	return r != nil && (r.Error != nil || len(r.FailedTasks) > 0)
}

// ApplyPlaybook parses the playbook at path and runs it against client.
// Parse, validation and planning failures are returned as errors; task
// failures are reported in the result.
func ApplyPlaybook(ctx context.Context, path string, registry *plugin.PluginRegistry, client cloud.Client, opts ApplyOptions) (*ApplyPlaybookResult, error) {
	startTime := time.Now()

	pb, err := config.ParsePlaybook(path)
	if err != nil {
		return nil, err
	}

	plan, err := GeneratePlan(pb, registry)
	if err != nil {
		return nil, err
	}

	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}
	log.WithFields(map[string]any{"playbook": pb.Name, "tasks": len(plan.Tasks)}).Debugf("execution plan:\n%s", plan)

	execCtx := NewExecutionContext(ctx, pb, client, registry, log, opts.CheckMode)
	execCtx.Observer = opts.Observer
	if opts.Observer != nil {
		opts.Observer.PlanReady(pb.Name, plan, execCtx.CheckMode)
	}
	results, runErr := Execute(execCtx, plan)

	result := &ApplyPlaybookResult{
		Playbook:    pb.Name,
		CheckMode:   execCtx.CheckMode,
		Summary:     model.Summarize(results),
		FailedTasks: make([]string, 0),
		Duration:    time.Since(startTime),
		TaskResults: results,
		Error:       runErr,
	}
	for _, res := range results {
		if res.Status == model.StatusFailed {
			result.FailedTasks = append(result.FailedTasks, res.TaskID)
		}
	}

	if result.Failed() {
		log.Error(runErr, fmt.Sprintf("playbook %s: %d tasks failed", pb.Name, len(result.FailedTasks)))
	} else {
		log.Info(fmt.Sprintf("playbook %s: %d ok, %d changed", pb.Name, result.Summary.OK, result.Summary.Changed))
	}

	return result, nil
}
