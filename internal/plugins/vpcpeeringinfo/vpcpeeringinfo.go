package vpcpeeringinfoplugin

import (
	"context"

	"github.com/alexisbeaulieu97/otctasks/internal/cloud"
	"github.com/alexisbeaulieu97/otctasks/internal/config"
	"github.com/alexisbeaulieu97/otctasks/internal/model"
	"github.com/alexisbeaulieu97/otctasks/internal/params"
	"github.com/alexisbeaulieu97/otctasks/internal/plugin"
	"github.com/alexisbeaulieu97/otctasks/internal/query"
)

const payloadKey = "vpc_peerings"

// Params is the parameter contract of vpc_peering_info.
type Params struct {
	Name     *string `param:"name" doc:"Peering name"`
	Status   *string `param:"status" validate:"omitempty,oneof=PENDING_ACCEPTANCE REJECTED EXPIRED DELETED ACTIVE" doc:"Peering status"`
	TenantID *string `param:"tenant_id" doc:"Project ID"`
	VpcID    *string `param:"vpc_id" doc:"ID of a VPC taking part in the peering"`
	Filter   string  `param:"filter" doc:"Filter expression applied to every peering"`
}

var builder = query.NewBuilder(query.ServerSide("name", "status", "tenant_id", "vpc_id")...)

type vpcPeeringInfoPlugin struct{}

// New creates a new vpc_peering_info plugin.
func New() plugin.Plugin {
	return &vpcPeeringInfoPlugin{}
}

func init() {
	plugin.MustRegister(New())
}

func (p *vpcPeeringInfoPlugin) PluginMetadata() plugin.PluginMetadata {
	return plugin.PluginMetadata{
		Name:        "vpc_peering_info",
		Version:     "1.0.0",
		APIVersion:  "1.x",
		Mode:        plugin.ModeInfo,
		PayloadKey:  payloadKey,
		Description: "List VPC peering connections",
	}
}

func (p *vpcPeeringInfoPlugin) Schema() any {
	return Params{}
}

func (p *vpcPeeringInfoPlugin) Evaluate(ctx context.Context, client cloud.Client, task *config.Task) (*model.EvaluationResult, error) {
	var ps Params
	if err := plugin.DecodeParams(task, &ps); err != nil {
		return nil, err
	}
	return plugin.QueryRecords(ctx, client, task.ID, cloud.KindVPCPeering, builder, params.Supplied(&ps, false), ps.Filter, payloadKey)
}

func (p *vpcPeeringInfoPlugin) Apply(ctx context.Context, client cloud.Client, evalResult *model.EvaluationResult, task *config.Task) (*model.TaskResult, error) {
	return plugin.ApplyQueried(evalResult)
}
