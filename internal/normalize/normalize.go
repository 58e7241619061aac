// Package normalize converts provider records into the plain mappings
// returned in result payloads.
package normalize

import (
	"github.com/fatih/structs"

	"github.com/alexisbeaulieu97/otctasks/internal/cloud"
)

// bookkeeping keys never leave the process.
var bookkeeping = []string{"location", "job_id"}

// shapes lists the attributes every record of a kind carries in a payload.
var shapes = map[cloud.Kind][]string{
	cloud.KindDNSZone: {
		"id", "name", "description", "email", "ttl", "zone_type", "status",
		"serial", "record_num", "pool_id", "project_id", "router", "created_at", "updated_at",
	},
	cloud.KindVPCRoute: {
		"id", "destination", "nexthop", "type", "vpc_id", "tenant_id",
	},
	cloud.KindRDSInstance: {
		"id", "name", "status", "availability_zone", "datastore", "flavor_ref", "ha",
		"port", "region", "replica_of_id", "router_id", "network_id", "security_group_id",
		"volume", "backup_strategy", "disk_encryption_id", "configuration_id", "created", "updated",
	},
	cloud.KindSNATRule: {
		"id", "admin_state_up", "cidr", "created_at", "floating_ip_address", "floating_ip_id",
		"nat_gateway_id", "network_id", "project_id", "source_type", "status",
	},
	cloud.KindLBMember: {
		"id", "name", "address", "protocol_port", "subnet_id", "admin_state_up",
		"weight", "tenant_id", "pool_id", "operating_status",
	},
	cloud.KindVPCPeering: {
		"id", "name", "status", "request_vpc_info", "accept_vpc_info", "description",
		"created_at", "updated_at",
	},
	cloud.KindAntiDDoSStatus: {
		"floating_ip_id", "floating_ip_address", "network_type", "status",
	},
	cloud.KindCESQuota: {
		"type", "used", "unit", "quota",
	},
}

// Keys returns the stable key set of kind, or nil for kinds without one.
func Keys(kind cloud.Kind) []string {
	return append([]string(nil), shapes[kind]...)
}

// Record deep-copies r and removes bookkeeping keys plus drop.
func Record(r cloud.Record, drop ...string) map[string]any {
	out := map[string]any(r.Clone())
	if out == nil {
		out = make(map[string]any)
	}
	for _, key := range bookkeeping {
		delete(out, key)
	}
	for _, key := range drop {
		delete(out, key)
	}
	return out
}

// Records normalizes every record. The result is never nil.
func Records(rs []cloud.Record, drop ...string) []map[string]any {
	out := make([]map[string]any, 0, len(rs))
	for _, r := range rs {
		out = append(out, Record(r, drop...))
	}
	return out
}

// Shaped normalizes r and pads the known attributes of kind with nil so
// every record of a kind exposes the same keys.
func Shaped(kind cloud.Kind, r cloud.Record, drop ...string) map[string]any {
	out := Record(r, drop...)
	for _, key := range shapes[kind] {
		if _, ok := out[key]; !ok {
			out[key] = nil
		}
	}
	for _, key := range drop {
		delete(out, key)
	}
	return out
}

// ShapedRecords applies Shaped to every record. The result is never nil.
func ShapedRecords(kind cloud.Kind, rs []cloud.Record, drop ...string) []map[string]any {
	out := make([]map[string]any, 0, len(rs))
	for _, r := range rs {
		out = append(out, Shaped(kind, r, drop...))
	}
	return out
}

// Struct converts a typed struct into a mapping keyed by its json tags.
func Struct(v any) map[string]any {
	s := structs.New(v)
	s.TagName = "json"
	return s.Map()
}
