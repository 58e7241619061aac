package vpcrouteplugin

import (
	"github.com/alexisbeaulieu97/otctasks/internal/cloud"
	"github.com/alexisbeaulieu97/otctasks/internal/reconcile"
)

// Params is the parameter contract of vpc_route.
type Params struct {
	RouteID     *string `param:"route_id" validate:"required_if=State absent" doc:"Route ID, used to delete a route"`
	Destination *string `param:"destination" validate:"required_if=State present,omitempty,cidrv4" doc:"Route destination address (CIDR)"`
	Nexthop     *string `param:"nexthop" validate:"required_if=State present" doc:"Next hop; the VPC peering connection ID for peering routes"`
	Type        string  `param:"type" default:"peering" validate:"required" doc:"Route type"`
	VpcID       *string `param:"vpc_id" validate:"required_if=State present" doc:"ID of the VPC the route belongs to"`
	State       string  `param:"state" default:"present" validate:"oneof=present absent" doc:"Whether the route should exist"`
}

// resource keys present routes by destination and VPC. Routes cannot be
// modified, so a route at the same key with another next hop is a conflict.
func (p *Params) resource() reconcile.Resource {
	if p.State == string(reconcile.Absent) {
		return reconcile.Resource{
			Kind:  cloud.KindVPCRoute,
			Key:   reconcile.Key{Ref: *p.RouteID},
			State: reconcile.Absent,
		}
	}

	desired := map[string]any{
		"destination": *p.Destination,
		"nexthop":     *p.Nexthop,
		"type":        p.Type,
		"vpc_id":      *p.VpcID,
	}
	return reconcile.Resource{
		Kind: cloud.KindVPCRoute,
		Key: reconcile.Key{Match: cloud.Filters{
			"destination": *p.Destination,
			"vpc_id":      *p.VpcID,
		}},
		State:     reconcile.Present,
		Desired:   desired,
		Immutable: true,
		Conflicts: []string{"nexthop", "type"},
	}
}
