package antiddosfipinfoplugin

import (
	"context"

	"github.com/alexisbeaulieu97/otctasks/internal/cloud"
	"github.com/alexisbeaulieu97/otctasks/internal/config"
	"github.com/alexisbeaulieu97/otctasks/internal/model"
	"github.com/alexisbeaulieu97/otctasks/internal/params"
	"github.com/alexisbeaulieu97/otctasks/internal/plugin"
	"github.com/alexisbeaulieu97/otctasks/internal/query"
)

const payloadKey = "anti_ddos_statuses"

// Params is the parameter contract of anti_ddos_fip_statuses_info.
type Params struct {
	IP     *string `param:"ip" validate:"omitempty,ip" doc:"Floating IP address"`
	Status *string `param:"status" validate:"omitempty,oneof=normal configging notConfig packetcleaning packetdropping" doc:"Anti-DDoS protection status"`
	Filter string  `param:"filter" doc:"Filter expression applied to every status"`
}

var builder = query.NewBuilder(
	query.Criterion{Param: "ip", Key: "floating_ip_address", Mode: query.Server},
	query.Criterion{Param: "status", Mode: query.Server},
)

type antiDDoSFIPInfoPlugin struct{}

// New creates a new anti_ddos_fip_statuses_info plugin.
func New() plugin.Plugin {
	return &antiDDoSFIPInfoPlugin{}
}

func init() {
	plugin.MustRegister(New())
}

func (p *antiDDoSFIPInfoPlugin) PluginMetadata() plugin.PluginMetadata {
	return plugin.PluginMetadata{
		Name:        "anti_ddos_fip_statuses_info",
		Version:     "1.0.0",
		APIVersion:  "1.x",
		Mode:        plugin.ModeInfo,
		PayloadKey:  payloadKey,
		Description: "List Anti-DDoS protection statuses of floating IPs",
	}
}

func (p *antiDDoSFIPInfoPlugin) Schema() any {
	return Params{}
}

func (p *antiDDoSFIPInfoPlugin) Evaluate(ctx context.Context, client cloud.Client, task *config.Task) (*model.EvaluationResult, error) {
	var ps Params
	if err := plugin.DecodeParams(task, &ps); err != nil {
		return nil, err
	}
	return plugin.QueryRecords(ctx, client, task.ID, cloud.KindAntiDDoSStatus, builder, params.Supplied(&ps, false), ps.Filter, payloadKey)
}

func (p *antiDDoSFIPInfoPlugin) Apply(ctx context.Context, client cloud.Client, evalResult *model.EvaluationResult, task *config.Task) (*model.TaskResult, error) {
	return plugin.ApplyQueried(evalResult)
}
