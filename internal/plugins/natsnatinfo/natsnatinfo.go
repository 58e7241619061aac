package natsnatinfoplugin

import (
	"context"

	"github.com/alexisbeaulieu97/otctasks/internal/cloud"
	"github.com/alexisbeaulieu97/otctasks/internal/config"
	"github.com/alexisbeaulieu97/otctasks/internal/model"
	"github.com/alexisbeaulieu97/otctasks/internal/params"
	"github.com/alexisbeaulieu97/otctasks/internal/plugin"
	"github.com/alexisbeaulieu97/otctasks/internal/query"
)

const payloadKey = "snat_list"

// Params is the parameter contract of nat_snat_info. The provider cannot
// filter SNAT rules, so every criterion is applied to the listed records.
type Params struct {
	AdminStateUp      *bool   `param:"admin_state_up" doc:"Administrative state of the rule"`
	Cidr              *string `param:"cidr" doc:"CIDR block the rule applies to"`
	CreatedAt         *string `param:"created_at" doc:"Creation time of the rule"`
	FloatingIPAddress *string `param:"floating_ip_address" doc:"Floating IP address of the rule"`
	FloatingIPID      *string `param:"floating_ip_id" doc:"Floating IP ID of the rule"`
	ID                *string `param:"id" doc:"Rule ID"`
	NatGatewayID      *string `param:"nat_gateway_id" doc:"NAT gateway ID"`
	NetworkID         *string `param:"network_id" doc:"Network ID"`
	SourceType        *string `param:"source_type" doc:"Source type of the rule"`
	Status            *string `param:"status" doc:"Status of the rule"`
	ProjectID         *string `param:"project_id" doc:"Project ID"`
	Filter            string  `param:"filter" doc:"Filter expression applied to every rule"`
}

var builder = query.NewBuilder(append(
	[]query.Criterion{{Param: "admin_state_up", Mode: query.Client, Match: query.Bool}},
	query.ClientSide(
		"cidr", "created_at", "floating_ip_address", "floating_ip_id", "id",
		"nat_gateway_id", "network_id", "source_type", "status", "project_id",
	)...,
)...)

type natSNATInfoPlugin struct{}

// New creates a new nat_snat_info plugin.
func New() plugin.Plugin {
	return &natSNATInfoPlugin{}
}

func init() {
	plugin.MustRegister(New())
}

func (p *natSNATInfoPlugin) PluginMetadata() plugin.PluginMetadata {
	return plugin.PluginMetadata{
		Name:        "nat_snat_info",
		Version:     "1.0.0",
		APIVersion:  "1.x",
		Mode:        plugin.ModeInfo,
		PayloadKey:  payloadKey,
		Description: "List NAT gateway SNAT rules",
	}
}

func (p *natSNATInfoPlugin) Schema() any {
	return Params{}
}

func (p *natSNATInfoPlugin) Evaluate(ctx context.Context, client cloud.Client, task *config.Task) (*model.EvaluationResult, error) {
	var ps Params
	if err := plugin.DecodeParams(task, &ps); err != nil {
		return nil, err
	}
	return plugin.QueryRecords(ctx, client, task.ID, cloud.KindSNATRule, builder, params.Supplied(&ps, false), ps.Filter, payloadKey)
}

func (p *natSNATInfoPlugin) Apply(ctx context.Context, client cloud.Client, evalResult *model.EvaluationResult, task *config.Task) (*model.TaskResult, error) {
	return plugin.ApplyQueried(evalResult)
}
