// Package memory provides an in-process cloud.Client. It backs tests and
// offline runs and records every call it receives.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/alexisbeaulieu97/otctasks/internal/cloud"
)

// Operation names recorded in the call log.
const (
	OpList      = "list"
	OpFind      = "find"
	OpCreate    = "create"
	OpUpdate    = "update"
	OpDelete    = "delete"
	OpJobStatus = "job_status"
)

// Call is a single request received by the client.
type Call struct {
	Op    string
	Kind  cloud.Kind
	Ref   string
	Attrs map[string]any
}

// Mutating reports whether the call changes remote state.
func (c Call) Mutating() bool {
	return c.Op == OpCreate || c.Op == OpUpdate || c.Op == OpDelete
}

type job struct {
	pollsLeft int
	fail      bool
}

type failure struct {
	op   string
	kind cloud.Kind
}

// Client is a map-backed cloud.Client.
type Client struct {
	mu        sync.Mutex
	resources map[cloud.Kind][]cloud.Record
	calls     []Call
	failures  map[failure]error
	async     map[cloud.Kind]bool
	jobs      map[string]*job
	jobPolls  int
	failJobs  bool
	newID     func() string
}

var _ cloud.Client = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithAsyncKinds makes creates and deletes of the given kinds return jobs.
func WithAsyncKinds(kinds ...cloud.Kind) Option {
	return func(c *Client) {
		for _, kind := range kinds {
			c.async[kind] = true
		}
	}
}

// WithJobPolls sets how many JobStatus calls a job reports running before it
// completes. Zero completes on the first poll.
func WithJobPolls(n int) Option {
	return func(c *Client) {
		c.jobPolls = n
	}
}

// WithFailingJobs makes every job finish in the failed state.
func WithFailingJobs() Option {
	return func(c *Client) {
		c.failJobs = true
	}
}

// WithIDGenerator overrides identifier generation.
func WithIDGenerator(fn func() string) Option {
	return func(c *Client) {
		c.newID = fn
	}
}

// New returns an empty client.
func New(opts ...Option) *Client {
	c := &Client{
		resources: make(map[cloud.Kind][]cloud.Record),
		failures:  make(map[failure]error),
		async:     make(map[cloud.Kind]bool),
		jobs:      make(map[string]*job),
		newID:     func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Seed stores records without logging calls. Records without an id get one.
func (c *Client) Seed(kind cloud.Kind, records ...cloud.Record) *Client {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, rec := range records {
		stored := rec.Clone()
		if stored.ID() == "" {
			stored["id"] = c.newID()
		}
		c.resources[kind] = append(c.resources[kind], stored)
	}
	return c
}

// FailOn makes every subsequent op against kind return err. An empty kind
// matches all kinds.
func (c *Client) FailOn(op string, kind cloud.Kind, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failures[failure{op: op, kind: kind}] = err
}

// Calls returns a copy of the call log.
func (c *Client) Calls() []Call {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Call(nil), c.calls...)
}

// MutatingCalls returns the logged calls that changed state.
func (c *Client) MutatingCalls() []Call {
	var out []Call
	for _, call := range c.Calls() {
		if call.Mutating() {
			out = append(out, call)
		}
	}
	return out
}

// ResetCalls clears the call log.
func (c *Client) ResetCalls() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = nil
}

// Snapshot returns copies of the stored records of kind.
func (c *Client) Snapshot(kind cloud.Kind) []cloud.Record {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]cloud.Record, 0, len(c.resources[kind]))
	for _, rec := range c.resources[kind] {
		out = append(out, rec.Clone())
	}
	return out
}

// List implements cloud.Client.
func (c *Client) List(ctx context.Context, kind cloud.Kind, filters cloud.Filters) ([]cloud.Record, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.begin(ctx, Call{Op: OpList, Kind: kind, Attrs: copyMap(filters)}); err != nil {
		return nil, err
	}

	out := make([]cloud.Record, 0)
	for _, rec := range c.resources[kind] {
		if rec.Satisfies(filters) {
			out = append(out, rec.Clone())
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out, nil
}

// Find implements cloud.Client.
func (c *Client) Find(ctx context.Context, kind cloud.Kind, nameOrID string, scope cloud.Filters) (cloud.Record, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.begin(ctx, Call{Op: OpFind, Kind: kind, Ref: nameOrID, Attrs: copyMap(scope)}); err != nil {
		return nil, false, err
	}

	_, rec := c.lookup(kind, nameOrID, scope)
	if rec == nil {
		return nil, false, nil
	}
	return rec.Clone(), true, nil
}

// Create implements cloud.Client.
func (c *Client) Create(ctx context.Context, kind cloud.Kind, attrs map[string]any) (cloud.Record, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.begin(ctx, Call{Op: OpCreate, Kind: kind, Attrs: copyMap(attrs)}); err != nil {
		return nil, err
	}

	rec := cloud.Record(copyMap(attrs))
	if rec.ID() == "" {
		rec["id"] = c.newID()
	}
	c.resources[kind] = append(c.resources[kind], rec)

	out := rec.Clone()
	if c.async[kind] {
		out["job_id"] = c.startJob()
	}
	return out, nil
}

// Update implements cloud.Client.
func (c *Client) Update(ctx context.Context, kind cloud.Kind, id string, attrs map[string]any) (cloud.Record, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.begin(ctx, Call{Op: OpUpdate, Kind: kind, Ref: id, Attrs: copyMap(attrs)}); err != nil {
		return nil, err
	}

	idx, rec := c.lookup(kind, id, nil)
	if rec == nil || rec.ID() != id {
		return nil, fmt.Errorf("%s %s: resource not found", kind, id)
	}
	for k, v := range attrs {
		if k == "id" {
			continue
		}
		rec[k] = v
	}
	c.resources[kind][idx] = rec
	return rec.Clone(), nil
}

// Delete implements cloud.Client.
func (c *Client) Delete(ctx context.Context, kind cloud.Kind, id string) (cloud.Job, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.begin(ctx, Call{Op: OpDelete, Kind: kind, Ref: id}); err != nil {
		return cloud.Job{}, err
	}

	idx, rec := c.lookup(kind, id, nil)
	if rec == nil || rec.ID() != id {
		return cloud.Job{}, fmt.Errorf("%s %s: resource not found", kind, id)
	}
	records := c.resources[kind]
	c.resources[kind] = append(records[:idx:idx], records[idx+1:]...)

	if c.async[kind] {
		return cloud.Job{ID: c.startJob()}, nil
	}
	return cloud.Job{}, nil
}

// JobStatus implements cloud.Client.
func (c *Client) JobStatus(ctx context.Context, jobID string) (cloud.JobState, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.begin(ctx, Call{Op: OpJobStatus, Ref: jobID}); err != nil {
		return "", err
	}

	j, ok := c.jobs[jobID]
	if !ok {
		return "", fmt.Errorf("job %s: not found", jobID)
	}
	if j.pollsLeft > 0 {
		j.pollsLeft--
		return cloud.JobRunning, nil
	}
	if j.fail {
		return cloud.JobFailed, nil
	}
	return cloud.JobCompleted, nil
}

func (c *Client) begin(ctx context.Context, call Call) error {
	c.calls = append(c.calls, call)
	if err := ctx.Err(); err != nil {
		return err
	}
	if err, ok := c.failures[failure{op: call.Op, kind: call.Kind}]; ok {
		return err
	}
	if err, ok := c.failures[failure{op: call.Op}]; ok {
		return err
	}
	return nil
}

// lookup prefers an id match over a name match.
func (c *Client) lookup(kind cloud.Kind, ref string, scope cloud.Filters) (int, cloud.Record) {
	nameIdx := -1
	for i, rec := range c.resources[kind] {
		if !rec.Satisfies(scope) {
			continue
		}
		if rec.ID() == ref {
			return i, rec
		}
		if nameIdx < 0 && rec.Name() == ref && ref != "" {
			nameIdx = i
		}
	}
	if nameIdx >= 0 {
		return nameIdx, c.resources[kind][nameIdx]
	}
	return -1, nil
}

func (c *Client) startJob() string {
	id := c.newID()
	c.jobs[id] = &job{pollsLeft: c.jobPolls, fail: c.failJobs}
	return id
}

func copyMap[M ~map[string]any](in M) map[string]any {
	if in == nil {
		return nil
	}
	return map[string]any(cloud.Record(in).Clone())
}
