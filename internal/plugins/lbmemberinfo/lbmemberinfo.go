package lbmemberinfoplugin

import (
	"context"
	"fmt"

	"github.com/alexisbeaulieu97/otctasks/internal/cloud"
	"github.com/alexisbeaulieu97/otctasks/internal/config"
	"github.com/alexisbeaulieu97/otctasks/internal/model"
	"github.com/alexisbeaulieu97/otctasks/internal/normalize"
	"github.com/alexisbeaulieu97/otctasks/internal/params"
	"github.com/alexisbeaulieu97/otctasks/internal/plugin"
	"github.com/alexisbeaulieu97/otctasks/internal/query"
	apperrors "github.com/alexisbeaulieu97/otctasks/pkg/errors"
)

const payloadKey = "members"

// Params is the parameter contract of lb_member_info.
type Params struct {
	Pool         string  `param:"pool" validate:"required" doc:"Name or ID of the backend pool"`
	Name         *string `param:"name" doc:"Name or ID of a single member"`
	ProjectID    *string `param:"project_id" doc:"Project ID of the members"`
	Address      *string `param:"address" validate:"omitempty,ip" doc:"IP address of the members"`
	ProtocolPort *int    `param:"protocol_port" validate:"omitempty,min=1,max=65535" doc:"Port the members listen on"`
	Subnet       *string `param:"subnet" doc:"Name or ID of the members' subnet"`
	AdminStateUp *bool   `param:"admin_state_up" doc:"Administrative state of the members"`
	Weight       *int    `param:"weight" validate:"omitempty,min=0,max=100" doc:"Weight of the members"`
	Filter       string  `param:"filter" doc:"Filter expression applied to every member"`
}

var builder = query.NewBuilder(
	query.Criterion{Param: "project_id", Key: "tenant_id", Mode: query.Server},
	query.Criterion{Param: "address", Mode: query.Server},
	query.Criterion{Param: "protocol_port", Mode: query.Server},
	query.Criterion{Param: "subnet_id", Mode: query.Server},
	query.Criterion{Param: "admin_state_up", Mode: query.Server, Match: query.Bool},
	query.Criterion{Param: "weight", Mode: query.Server},
)

type lbMemberInfoPlugin struct{}

// New creates a new lb_member_info plugin.
func New() plugin.Plugin {
	return &lbMemberInfoPlugin{}
}

func init() {
	plugin.MustRegister(New())
}

func (p *lbMemberInfoPlugin) PluginMetadata() plugin.PluginMetadata {
	return plugin.PluginMetadata{
		Name:        "lb_member_info",
		Version:     "1.0.0",
		APIVersion:  "1.x",
		Mode:        plugin.ModeInfo,
		PayloadKey:  payloadKey,
		Description: "List members of a load balancer backend pool",
	}
}

func (p *lbMemberInfoPlugin) Schema() any {
	return Params{}
}

// Evaluate resolves the pool first. With name set only that member is
// looked up and it is kept only when it meets every other filter. A missing
// member yields an empty list.
func (p *lbMemberInfoPlugin) Evaluate(ctx context.Context, client cloud.Client, task *config.Task) (*model.EvaluationResult, error) {
	var ps Params
	if err := plugin.DecodeParams(task, &ps); err != nil {
		return nil, err
	}

	pool, err := resolve(ctx, client, task.ID, cloud.KindLBPool, ps.Pool)
	if err != nil {
		return nil, err
	}
	scope := cloud.Filters{"pool_id": pool.ID()}

	supplied := params.Supplied(&ps, false)
	if ps.Subnet != nil {
		subnet, err := resolve(ctx, client, task.ID, cloud.KindSubnet, *ps.Subnet)
		if err != nil {
			return nil, err
		}
		supplied["subnet_id"] = subnet.ID()
	}

	q, err := builder.Build(supplied, ps.Filter)
	if err != nil {
		return nil, plugin.NewValidationError(task.ID, err)
	}

	var members []cloud.Record
	if ps.Name != nil {
		member, found, err := client.Find(ctx, cloud.KindLBMember, *ps.Name, scope)
		if err != nil {
			return nil, plugin.NewStateError(task.ID, apperrors.NewCollaboratorError("find", string(cloud.KindLBMember), err))
		}
		if found && member.Satisfies(q.Server) {
			members, err = q.Apply([]cloud.Record{member})
			if err != nil {
				return nil, plugin.NewValidationError(task.ID, err)
			}
		}
	} else {
		for key, value := range scope {
			q.Server[key] = value
		}
		members, err = plugin.ListRecords(ctx, client, task.ID, cloud.KindLBMember, q)
		if err != nil {
			return nil, err
		}
	}

	message := fmt.Sprintf("%d members found in pool %s", len(members), ps.Pool)
	return plugin.Queried(task.ID, payloadKey, normalize.ShapedRecords(cloud.KindLBMember, members), message), nil
}

func (p *lbMemberInfoPlugin) Apply(ctx context.Context, client cloud.Client, evalResult *model.EvaluationResult, task *config.Task) (*model.TaskResult, error) {
	return plugin.ApplyQueried(evalResult)
}

func resolve(ctx context.Context, client cloud.Client, taskID string, kind cloud.Kind, ref string) (cloud.Record, error) {
	rec, found, err := client.Find(ctx, kind, ref, nil)
	if err != nil {
		return nil, plugin.NewStateError(taskID, apperrors.NewCollaboratorError("find", string(kind), err))
	}
	if !found {
		return nil, plugin.NewStateError(taskID, apperrors.NewNotFoundError(string(kind), ref))
	}
	return rec, nil
}
