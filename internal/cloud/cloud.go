// Package cloud defines the narrow contract every module uses to reach the
// provider. Implementations own authentication, transport and retries; the
// rest of the repository only ever sees records.
package cloud

import (
	"context"
	"fmt"
	"sort"
	"strconv"
)

// Kind names a resource collection exposed by the provider.
type Kind string

const (
	KindDNSZone        Kind = "dns.zone"
	KindRouter         Kind = "network.router"
	KindNetwork        Kind = "network.network"
	KindSubnet         Kind = "network.subnet"
	KindSecurityGroup  Kind = "network.security_group"
	KindLBPool         Kind = "lb.pool"
	KindLBMember       Kind = "lb.member"
	KindSNATRule       Kind = "nat.snat_rule"
	KindVPCPeering     Kind = "vpc.peering"
	KindVPCRoute       Kind = "vpc.route"
	KindRDSInstance    Kind = "rds.instance"
	KindAntiDDoSStatus Kind = "anti_ddos.floating_ip"
	KindCESQuota       Kind = "ces.quota"
)

// Kinds returns every known kind in lexical order.
func Kinds() []Kind {
	kinds := []Kind{
		KindDNSZone, KindRouter, KindNetwork, KindSubnet, KindSecurityGroup,
		KindLBPool, KindLBMember, KindSNATRule, KindVPCPeering, KindVPCRoute,
		KindRDSInstance, KindAntiDDoSStatus, KindCESQuota,
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	for _, known := range Kinds() {
		if k == known {
			return true
		}
	}
	return false
}

// Filters narrows a listing. Keys use the provider's attribute names.
type Filters map[string]any

// JobState is the lifecycle state of an asynchronous provider job.
type JobState string

const (
	JobRunning   JobState = "running"
	JobCompleted JobState = "completed"
	JobFailed    JobState = "failed"
)

// Terminal reports whether the job will not change state again.
func (s JobState) Terminal() bool {
	return s == JobCompleted || s == JobFailed
}

// Job is a handle to asynchronous work started by a mutating call. The zero
// value means the call completed synchronously.
type Job struct {
	ID string
}

// Pending reports whether there is anything to wait for.
func (j Job) Pending() bool {
	return j.ID != ""
}

// Client is the pre-authenticated collaborator consumed by every module.
//
// Find distinguishes "not found" from failure: a missing resource returns
// found == false and a nil error. Delete may return a pending Job.
type Client interface {
	List(ctx context.Context, kind Kind, filters Filters) ([]Record, error)
	Find(ctx context.Context, kind Kind, nameOrID string, scope Filters) (Record, bool, error)
	Create(ctx context.Context, kind Kind, attrs map[string]any) (Record, error)
	Update(ctx context.Context, kind Kind, id string, attrs map[string]any) (Record, error)
	Delete(ctx context.Context, kind Kind, id string) (Job, error)
	JobStatus(ctx context.Context, jobID string) (JobState, error)
}

// Record is a resource as returned by the provider.
type Record map[string]any

// ID returns the record identifier.
func (r Record) ID() string {
	return r.String("id")
}

// Name returns the record name.
func (r Record) Name() string {
	return r.String("name")
}

// JobID returns the asynchronous job attached to the record, if any.
func (r Record) JobID() string {
	return r.String("job_id")
}

// String returns the value under key formatted as a string. Missing keys and
// nil values yield "".
func (r Record) String(key string) string {
	v, ok := r[key]
	if !ok || v == nil {
		return ""
	}
	switch typed := v.(type) {
	case string:
		return typed
	case bool:
		return strconv.FormatBool(typed)
	default:
		return fmt.Sprint(typed)
	}
}

// Matches reports whether the record's name or id equals ref.
func (r Record) Matches(ref string) bool {
	return ref != "" && (r.ID() == ref || r.Name() == ref)
}

// Satisfies reports whether every filter equals the record's value under the
// same key. Values are compared in their string form so "8080" matches 8080.
func (r Record) Satisfies(filters Filters) bool {
	for key, want := range filters {
		if _, ok := r[key]; !ok {
			return false
		}
		expected := Record{key: want}
		if r.String(key) != expected.String(key) {
			return false
		}
	}
	return true
}

// Clone returns a deep copy of the record's maps and slices.
func (r Record) Clone() Record {
	if r == nil {
		return nil
	}
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch typed := v.(type) {
	case map[string]any:
		m := make(map[string]any, len(typed))
		for k, inner := range typed {
			m[k] = cloneValue(inner)
		}
		return m
	case Record:
		return typed.Clone()
	case []any:
		s := make([]any, len(typed))
		for i, inner := range typed {
			s[i] = cloneValue(inner)
		}
		return s
	default:
		return v
	}
}
