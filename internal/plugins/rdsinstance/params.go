package rdsinstanceplugin

import (
	"time"

	"github.com/alexisbeaulieu97/otctasks/internal/cloud"
	"github.com/alexisbeaulieu97/otctasks/internal/params"
	"github.com/alexisbeaulieu97/otctasks/internal/reconcile"
)

// Params is the parameter contract of rds_instance.
type Params struct {
	AvailabilityZone *string `param:"availability_zone" doc:"Availability zone, may be a CSV list such as eu-de-01,eu-de-02"`
	BackupKeepdays   *int    `param:"backup_keepdays" validate:"required_with=BackupTimeframe,omitempty,min=0,max=732" doc:"Retention days of backup files"`
	BackupTimeframe  *string `param:"backup_timeframe" validate:"required_with=BackupKeepdays" doc:"Backup window in HH:MM-HH:MM format, UTC"`
	Configuration    *string `param:"configuration" doc:"Parameter template ID"`
	DatastoreType    string  `param:"datastore_type" default:"postgresql" validate:"oneof=postgresql mysql sqlserver" doc:"Datastore type"`
	DatastoreVersion *string `param:"datastore_version" doc:"Datastore version"`
	DiskEncryption   *string `param:"disk_encryption" doc:"KMS key ID used for disk encryption"`
	Flavor           *string `param:"flavor" doc:"Instance flavor code"`
	HAMode           *string `param:"ha_mode" validate:"omitempty,oneof=async semisync sync" doc:"Replication mode of an HA instance"`
	Name             string  `param:"name" validate:"required" doc:"Instance name or ID"`
	Network          *string `param:"network" doc:"Name or ID of the network"`
	Password         *string `param:"password" secret:"true" doc:"Database password"`
	Port             *int    `param:"port" validate:"omitempty,min=1,max=65535" doc:"Database port"`
	Region           string  `param:"region" default:"eu-de" validate:"oneof=eu-de" doc:"Database region"`
	ReplicaOf        *string `param:"replica_of" doc:"Name or ID of the instance to create a read replica of"`
	Router           *string `param:"router" doc:"Name or ID of the router (VPC)"`
	SecurityGroup    *string `param:"security_group" doc:"Name or ID of the security group"`
	State            string  `param:"state" default:"present" validate:"oneof=present absent" doc:"Whether the instance should exist"`
	VolumeType       *string `param:"volume_type" validate:"omitempty,oneof=common ultrahigh" doc:"Volume type"`
	VolumeSize       *int    `param:"volume_size" validate:"omitempty,min=40" doc:"Volume size in GB"`
	Wait             bool    `param:"wait" default:"true" doc:"Wait for the instance job to finish"`
	Timeout          int     `param:"timeout" default:"180" validate:"min=1" doc:"Seconds to wait for the instance job"`
}

// creatable enforces the parameters a new standalone instance needs.
// Replicas inherit them from their source instance.
func (p *Params) creatable() error {
	if p.ReplicaOf != nil {
		return nil
	}
	return params.Require(params.Supplied(p, true), "is required when replica_of is not set",
		"datastore_version", "network", "password", "router", "security_group")
}

func (p *Params) resource() reconcile.Resource {
	res := reconcile.Resource{
		Kind:        cloud.KindRDSInstance,
		Key:         reconcile.Key{Ref: p.Name},
		State:       reconcile.State(p.State),
		Desired:     p.payload(),
		Immutable:   true,
		CreateCheck: p.creatable,
		Secrets:     []string{"password"},
		Wait:        p.Wait,
		Timeout:     time.Duration(p.Timeout) * time.Second,
	}

	if p.ReplicaOf != nil {
		res.Dependencies = []reconcile.Dependency{{Kind: cloud.KindRDSInstance, Ref: *p.ReplicaOf, Attr: "replica_of_id"}}
		return res
	}
	for _, dep := range []struct {
		kind cloud.Kind
		ref  *string
		attr string
	}{
		{cloud.KindRouter, p.Router, "router_id"},
		{cloud.KindNetwork, p.Network, "network_id"},
		{cloud.KindSecurityGroup, p.SecurityGroup, "security_group_id"},
	} {
		if dep.ref != nil {
			res.Dependencies = append(res.Dependencies, reconcile.Dependency{Kind: dep.kind, Ref: *dep.ref, Attr: dep.attr})
		}
	}
	return res
}

// payload renders the supplied parameters in the provider's create shape.
func (p *Params) payload() map[string]any {
	out := map[string]any{
		"name":   p.Name,
		"region": p.Region,
	}
	setString(out, "availability_zone", p.AvailabilityZone)
	setString(out, "flavor_ref", p.Flavor)
	setString(out, "configuration_id", p.Configuration)
	setString(out, "disk_encryption_id", p.DiskEncryption)
	setString(out, "password", p.Password)
	if p.Port != nil {
		out["port"] = *p.Port
	}

	if p.ReplicaOf == nil {
		datastore := map[string]any{"type": p.DatastoreType}
		setString(datastore, "version", p.DatastoreVersion)
		out["datastore"] = datastore
	}

	volume := map[string]any{}
	setString(volume, "type", p.VolumeType)
	if p.VolumeSize != nil {
		volume["size"] = *p.VolumeSize
	}
	if len(volume) > 0 {
		out["volume"] = volume
	}

	if p.BackupKeepdays != nil && p.BackupTimeframe != nil {
		out["backup_strategy"] = map[string]any{
			"keep_days":  *p.BackupKeepdays,
			"start_time": *p.BackupTimeframe,
		}
	}
	if p.HAMode != nil {
		out["ha"] = map[string]any{"mode": "ha", "replication_mode": *p.HAMode}
	}
	return out
}

func setString(m map[string]any, key string, v *string) {
	if v != nil {
		m[key] = *v
	}
}
