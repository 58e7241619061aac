package vpcrouteplugin

import (
	"context"

	"github.com/alexisbeaulieu97/otctasks/internal/cloud"
	"github.com/alexisbeaulieu97/otctasks/internal/config"
	"github.com/alexisbeaulieu97/otctasks/internal/model"
	"github.com/alexisbeaulieu97/otctasks/internal/plugin"
)

var output = plugin.Output{Key: "vpc_route"}

type vpcRoutePlugin struct{}

// New creates a new vpc_route plugin.
func New() plugin.Plugin {
	return &vpcRoutePlugin{}
}

func init() {
	plugin.MustRegister(New())
}

func (p *vpcRoutePlugin) PluginMetadata() plugin.PluginMetadata {
	return plugin.PluginMetadata{
		Name:        "vpc_route",
		Version:     "1.0.0",
		APIVersion:  "1.x",
		Mode:        plugin.ModeWrite,
		PayloadKey:  output.Key,
		Description: "Create or delete VPC routes",
	}
}

func (p *vpcRoutePlugin) Schema() any {
	return Params{}
}

func (p *vpcRoutePlugin) Evaluate(ctx context.Context, client cloud.Client, task *config.Task) (*model.EvaluationResult, error) {
	var params Params
	if err := plugin.DecodeParams(task, &params); err != nil {
		return nil, err
	}
	return plugin.EvaluateResource(ctx, client, task.ID, params.resource(), output)
}

func (p *vpcRoutePlugin) Apply(ctx context.Context, client cloud.Client, evalResult *model.EvaluationResult, task *config.Task) (*model.TaskResult, error) {
	return plugin.ApplyResource(ctx, client, evalResult, output)
}
