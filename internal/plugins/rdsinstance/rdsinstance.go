package rdsinstanceplugin

import (
	"context"

	"github.com/alexisbeaulieu97/otctasks/internal/cloud"
	"github.com/alexisbeaulieu97/otctasks/internal/config"
	"github.com/alexisbeaulieu97/otctasks/internal/model"
	"github.com/alexisbeaulieu97/otctasks/internal/plugin"
)

var output = plugin.Output{Key: "instance", Drop: []string{"password"}}

type rdsInstancePlugin struct{}

// New creates a new rds_instance plugin.
func New() plugin.Plugin {
	return &rdsInstancePlugin{}
}

func init() {
	plugin.MustRegister(New())
}

func (p *rdsInstancePlugin) PluginMetadata() plugin.PluginMetadata {
	return plugin.PluginMetadata{
		Name:        "rds_instance",
		Version:     "1.0.0",
		APIVersion:  "1.x",
		Mode:        plugin.ModeWrite,
		PayloadKey:  output.Key,
		Description: "Create or delete RDS instances",
	}
}

func (p *rdsInstancePlugin) Schema() any {
	return Params{}
}

// Evaluate reports an existing instance as satisfied; instances are never
// updated in place.
func (p *rdsInstancePlugin) Evaluate(ctx context.Context, client cloud.Client, task *config.Task) (*model.EvaluationResult, error) {
	var params Params
	if err := plugin.DecodeParams(task, &params); err != nil {
		return nil, err
	}
	return plugin.EvaluateResource(ctx, client, task.ID, params.resource(), output)
}

// Apply creates or deletes the instance and, when wait is set, polls the
// returned job until it finishes or the timeout elapses.
func (p *rdsInstancePlugin) Apply(ctx context.Context, client cloud.Client, evalResult *model.EvaluationResult, task *config.Task) (*model.TaskResult, error) {
	return plugin.ApplyResource(ctx, client, evalResult, output)
}
