package engine

import (
	"fmt"
	"strings"

	"github.com/alexisbeaulieu97/otctasks/internal/config"
	"github.com/alexisbeaulieu97/otctasks/internal/plugin"
)

// ExecutionPlan lists the enabled tasks of a playbook in run order.
type ExecutionPlan struct {
	Tasks []PlannedTask
}

// PlannedTask is one entry of an ExecutionPlan.
type PlannedTask struct {
	ID        string
	Module    string
	Mode      plugin.Mode
	DependsOn []string
}

// GeneratePlan orders the enabled tasks so that each follows its
// dependencies and checks that every module is registered.
func GeneratePlan(pb *config.Playbook, registry *plugin.PluginRegistry) (*ExecutionPlan, error) {
	if pb == nil {
		return nil, fmt.Errorf("playbook cannot be nil")
	}
	if registry == nil {
		registry = plugin.DefaultRegistry()
	}

	ordered := config.Order(pb.Tasks)
	enabled := make(map[string]bool, len(ordered))
	for _, task := range ordered {
		enabled[task.ID] = true
	}

	tasks := make([]PlannedTask, 0, len(ordered))
	for _, task := range ordered {
		meta, ok := registry.Metadata(task.Module)
		if !ok {
			return nil, plugin.NewValidationError(task.ID, plugin.ErrPluginNotFound{Name: task.Module})
		}
		deps := make([]string, 0, len(task.DependsOn))
		for _, dep := range task.DependsOn {
			if enabled[dep] {
				deps = append(deps, dep)
			}
		}
		tasks = append(tasks, PlannedTask{ID: task.ID, Module: task.Module, Mode: meta.Mode, DependsOn: deps})
	}

	return &ExecutionPlan{Tasks: tasks}, nil
}

// String renders a human readable summary of the plan.
func (p *ExecutionPlan) String() string {
	if p == nil {
		return ""
	}

	var b strings.Builder
	for i, task := range p.Tasks {
		fmt.Fprintf(&b, "%d. %s (%s, %s)", i+1, task.ID, task.Module, task.Mode)
		if len(task.DependsOn) > 0 {
			fmt.Fprintf(&b, " after %s", strings.Join(task.DependsOn, ", "))
		}
		b.WriteString("\n")
	}
	return b.String()
}
