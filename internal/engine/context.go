package engine

import (
	"context"
	"time"

	"github.com/alexisbeaulieu97/otctasks/internal/cloud"
	"github.com/alexisbeaulieu97/otctasks/internal/config"
	"github.com/alexisbeaulieu97/otctasks/internal/logger"
	"github.com/alexisbeaulieu97/otctasks/internal/model"
	"github.com/alexisbeaulieu97/otctasks/internal/plugin"
)

// ExecutionContext contains runtime state shared by every task of a run.
type ExecutionContext struct {
	Playbook        *config.Playbook
	Client          cloud.Client
	Registry        *plugin.PluginRegistry
	CheckMode       bool
	ContinueOnError bool
	// Timeout bounds each task. Zero means no bound.
	Timeout time.Duration
	Results map[string]*model.TaskResult
	Logger  *logger.Logger
	Context context.Context
	// Observer, when set, is notified as tasks start and finish.
	Observer Observer
}

// Observer follows the progress of a playbook run.
type Observer interface {
	PlanReady(playbook string, plan *ExecutionPlan, checkMode bool)
	TaskStarted(taskID string)
	TaskFinished(result model.TaskResult)
}

// NewExecutionContext builds a context from the playbook settings. check
// forces check mode on regardless of the playbook.
func NewExecutionContext(ctx context.Context, pb *config.Playbook, client cloud.Client, registry *plugin.PluginRegistry, log *logger.Logger, check bool) *ExecutionContext {
	execCtx := &ExecutionContext{
		Playbook:  pb,
		Client:    client,
		Registry:  registry,
		CheckMode: check,
		Results:   make(map[string]*model.TaskResult),
		Logger:    log,
		Context:   ctx,
	}
	if pb != nil {
		execCtx.CheckMode = check || pb.Settings.CheckMode
		execCtx.ContinueOnError = pb.Settings.ContinueOnError
		execCtx.Timeout = time.Duration(pb.Settings.Timeout) * time.Second
	}
	return execCtx
}

func (c *ExecutionContext) registry() *plugin.PluginRegistry {
	if c.Registry != nil {
		return c.Registry
	}
	return plugin.DefaultRegistry()
}

func (c *ExecutionContext) started(taskID string) {
	if c.Observer != nil {
		c.Observer.TaskStarted(taskID)
	}
}

func (c *ExecutionContext) finished(result *model.TaskResult) {
	if c.Observer != nil && result != nil {
		c.Observer.TaskFinished(*result)
	}
}

func (c *ExecutionContext) baseContext() context.Context {
	if c.Context != nil {
		return c.Context
	}
	return context.Background()
}
