package cesquotasinfoplugin

import (
	"context"

	"github.com/alexisbeaulieu97/otctasks/internal/cloud"
	"github.com/alexisbeaulieu97/otctasks/internal/config"
	"github.com/alexisbeaulieu97/otctasks/internal/model"
	"github.com/alexisbeaulieu97/otctasks/internal/plugin"
	"github.com/alexisbeaulieu97/otctasks/internal/query"
)

const payloadKey = "quotas"

// Params is the parameter contract of ces_quotas_info.
type Params struct {
	Filter string `param:"filter" doc:"Filter expression applied to every quota"`
}

var builder = query.NewBuilder()

type cesQuotasInfoPlugin struct{}

// New creates a new ces_quotas_info plugin.
func New() plugin.Plugin {
	return &cesQuotasInfoPlugin{}
}

func init() {
	plugin.MustRegister(New())
}

func (p *cesQuotasInfoPlugin) PluginMetadata() plugin.PluginMetadata {
	return plugin.PluginMetadata{
		Name:        "ces_quotas_info",
		Version:     "1.0.0",
		APIVersion:  "1.x",
		Mode:        plugin.ModeInfo,
		PayloadKey:  payloadKey,
		Description: "List Cloud Eye quotas",
	}
}

func (p *cesQuotasInfoPlugin) Schema() any {
	return Params{}
}

func (p *cesQuotasInfoPlugin) Evaluate(ctx context.Context, client cloud.Client, task *config.Task) (*model.EvaluationResult, error) {
	var ps Params
	if err := plugin.DecodeParams(task, &ps); err != nil {
		return nil, err
	}
	return plugin.QueryRecords(ctx, client, task.ID, cloud.KindCESQuota, builder, nil, ps.Filter, payloadKey)
}

func (p *cesQuotasInfoPlugin) Apply(ctx context.Context, client cloud.Client, evalResult *model.EvaluationResult, task *config.Task) (*model.TaskResult, error) {
	return plugin.ApplyQueried(evalResult)
}
