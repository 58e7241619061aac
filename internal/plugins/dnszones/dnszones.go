package dnszonesplugin

import (
	"context"

	"github.com/alexisbeaulieu97/otctasks/internal/cloud"
	"github.com/alexisbeaulieu97/otctasks/internal/config"
	"github.com/alexisbeaulieu97/otctasks/internal/model"
	"github.com/alexisbeaulieu97/otctasks/internal/plugin"
)

var output = plugin.Output{Key: "zone"}

type dnsZonesPlugin struct{}

// New creates a new dns_zones plugin.
func New() plugin.Plugin {
	return &dnsZonesPlugin{}
}

func init() {
	plugin.MustRegister(New())
}

func (p *dnsZonesPlugin) PluginMetadata() plugin.PluginMetadata {
	return plugin.PluginMetadata{
		Name:        "dns_zones",
		Version:     "1.0.0",
		APIVersion:  "1.x",
		Mode:        plugin.ModeWrite,
		PayloadKey:  output.Key,
		Description: "Manage public and private DNS zones",
	}
}

func (p *dnsZonesPlugin) Schema() any {
	return Params{}
}

func (p *dnsZonesPlugin) Evaluate(ctx context.Context, client cloud.Client, task *config.Task) (*model.EvaluationResult, error) {
	var params Params
	if err := plugin.DecodeParams(task, &params); err != nil {
		return nil, err
	}
	return plugin.EvaluateResource(ctx, client, task.ID, params.resource(), output)
}

func (p *dnsZonesPlugin) Apply(ctx context.Context, client cloud.Client, evalResult *model.EvaluationResult, task *config.Task) (*model.TaskResult, error) {
	return plugin.ApplyResource(ctx, client, evalResult, output)
}
