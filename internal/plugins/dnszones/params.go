package dnszonesplugin

import (
	"github.com/alexisbeaulieu97/otctasks/internal/cloud"
	"github.com/alexisbeaulieu97/otctasks/internal/params"
	"github.com/alexisbeaulieu97/otctasks/internal/reconcile"
)

// Params is the parameter contract of dns_zones.
type Params struct {
	Name        string  `param:"name" validate:"required" doc:"Zone name or ID"`
	State       string  `param:"state" default:"present" validate:"oneof=present absent" doc:"Whether the zone should exist"`
	ZoneType    string  `param:"zone_type" default:"public" validate:"oneof=public private" doc:"Zone visibility"`
	Router      *string `param:"router" validate:"required_if=ZoneType private State present" doc:"Name or ID of the router a private zone is bound to"`
	Description *string `param:"description" doc:"Zone description"`
	Email       *string `param:"email" validate:"omitempty,email" doc:"Administrator email of the zone"`
	TTL         *int    `param:"ttl" validate:"omitempty,min=1" doc:"Default TTL of the zone records in seconds"`
}

func (p *Params) resource() reconcile.Resource {
	desired := params.Supplied(p, false)
	delete(desired, "state")
	delete(desired, "router")

	res := reconcile.Resource{
		Kind:    cloud.KindDNSZone,
		Key:     reconcile.Key{Ref: p.Name},
		State:   reconcile.State(p.State),
		Desired: desired,
		Mutable: []string{"description", "email", "ttl"},
	}

	if p.ZoneType == "private" {
		res.Key.Scope = cloud.Filters{"zone_type": "private"}
		if p.Router != nil {
			res.Dependencies = []reconcile.Dependency{{
				Kind: cloud.KindRouter,
				Ref:  *p.Router,
				Attr: "router",
				Render: func(id string) any {
					return map[string]any{"router_id": id}
				},
			}}
		}
	}
	return res
}
