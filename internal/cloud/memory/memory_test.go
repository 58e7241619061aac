package memory

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/alexisbeaulieu97/otctasks/internal/cloud"
)

func sequentialIDs() Option {
	n := 0
	return WithIDGenerator(func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	})
}

func TestClientListFiltersAndSorts(t *testing.T) {
	t.Parallel()

	c := New().Seed(cloud.KindDNSZone,
		cloud.Record{"id": "z2", "name": "b.example.", "zone_type": "private"},
		cloud.Record{"id": "z1", "name": "a.example.", "zone_type": "private"},
		cloud.Record{"id": "z3", "name": "c.example.", "zone_type": "public"},
	)

	got, err := c.List(context.Background(), cloud.KindDNSZone, cloud.Filters{"zone_type": "private"})
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, "a.example.", got[0].Name())
	require.Equal(t, "b.example.", got[1].Name())

	empty, err := c.List(context.Background(), cloud.KindVPCRoute, nil)
	require.NoError(t, err)
	require.NotNil(t, empty)
	require.Empty(t, empty)
}

func TestClientFindPrefersIDOverName(t *testing.T) {
	t.Parallel()

	c := New().Seed(cloud.KindRouter,
		cloud.Record{"id": "r1", "name": "shared"},
		cloud.Record{"id": "shared", "name": "other"},
	)

	rec, found, err := c.Find(context.Background(), cloud.KindRouter, "shared", nil)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "shared", rec.ID())

	_, found, err = c.Find(context.Background(), cloud.KindRouter, "missing", nil)
	require.NoError(t, err)
	require.False(t, found)
}

func TestClientFindHonoursScope(t *testing.T) {
	t.Parallel()

	c := New().Seed(cloud.KindDNSZone,
		cloud.Record{"id": "z1", "name": "example.com.", "zone_type": "public"},
	)

	_, found, err := c.Find(context.Background(), cloud.KindDNSZone, "example.com.", cloud.Filters{"zone_type": "private"})
	require.NoError(t, err)
	require.False(t, found)
}

func TestClientReturnsCopies(t *testing.T) {
	t.Parallel()

	c := New().Seed(cloud.KindDNSZone, cloud.Record{"id": "z1", "name": "example.com.", "ttl": 300})

	rec, _, err := c.Find(context.Background(), cloud.KindDNSZone, "z1", nil)
	require.NoError(t, err)
	rec["ttl"] = 1

	require.Equal(t, 300, c.Snapshot(cloud.KindDNSZone)[0]["ttl"])
}

func TestClientCreateUpdateDelete(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	c := New(sequentialIDs())

	created, err := c.Create(ctx, cloud.KindDNSZone, map[string]any{"name": "example.com.", "ttl": 300})
	require.NoError(t, err)
	require.Equal(t, "id-1", created.ID())
	require.Empty(t, created.JobID())

	updated, err := c.Update(ctx, cloud.KindDNSZone, "id-1", map[string]any{"ttl": 600, "id": "ignored"})
	require.NoError(t, err)
	require.Equal(t, "id-1", updated.ID())
	require.Equal(t, 600, updated["ttl"])

	_, err = c.Update(ctx, cloud.KindDNSZone, "example.com.", map[string]any{"ttl": 1})
	require.Error(t, err)

	job, err := c.Delete(ctx, cloud.KindDNSZone, "id-1")
	require.NoError(t, err)
	require.False(t, job.Pending())
	require.Empty(t, c.Snapshot(cloud.KindDNSZone))

	_, err = c.Delete(ctx, cloud.KindDNSZone, "id-1")
	require.Error(t, err)

	ops := make([]string, 0)
	for _, call := range c.MutatingCalls() {
		ops = append(ops, call.Op)
	}
	require.Equal(t, []string{OpCreate, OpUpdate, OpUpdate, OpDelete, OpDelete}, ops)
}

func TestClientAsyncJobs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		opts  []Option
		polls int
		want  cloud.JobState
	}{
		{name: "completes immediately", want: cloud.JobCompleted},
		{name: "completes after polls", opts: []Option{WithJobPolls(2)}, polls: 2, want: cloud.JobCompleted},
		{name: "fails", opts: []Option{WithFailingJobs()}, want: cloud.JobFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ctx := context.Background()
			opts := append([]Option{WithAsyncKinds(cloud.KindRDSInstance)}, tt.opts...)
			c := New(opts...).Seed(cloud.KindRDSInstance, cloud.Record{"id": "db1", "name": "db"})

			job, err := c.Delete(ctx, cloud.KindRDSInstance, "db1")
			require.NoError(t, err)
			require.True(t, job.Pending())

			for i := 0; i < tt.polls; i++ {
				state, err := c.JobStatus(ctx, job.ID)
				require.NoError(t, err)
				require.Equal(t, cloud.JobRunning, state)
			}

			state, err := c.JobStatus(ctx, job.ID)
			require.NoError(t, err)
			require.Equal(t, tt.want, state)
		})
	}
}

func TestClientCreateAsyncAttachesJob(t *testing.T) {
	t.Parallel()

	c := New(WithAsyncKinds(cloud.KindRDSInstance), sequentialIDs())
	rec, err := c.Create(context.Background(), cloud.KindRDSInstance, map[string]any{"name": "db"})
	require.NoError(t, err)
	require.Equal(t, "id-1", rec.ID())
	require.Equal(t, "id-2", rec.JobID())

	_, ok := c.Snapshot(cloud.KindRDSInstance)[0]["job_id"]
	require.False(t, ok)
}

func TestClientInjectedFailures(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	c := New().Seed(cloud.KindRouter, cloud.Record{"id": "r1", "name": "router"})
	c.FailOn(OpFind, cloud.KindRouter, boom)
	c.FailOn(OpList, "", boom)

	_, _, err := c.Find(context.Background(), cloud.KindRouter, "r1", nil)
	require.ErrorIs(t, err, boom)

	_, _, err = c.Find(context.Background(), cloud.KindSubnet, "s1", nil)
	require.NoError(t, err)

	_, err = c.List(context.Background(), cloud.KindSubnet, nil)
	require.ErrorIs(t, err, boom)

	require.Len(t, c.Calls(), 3)
	c.ResetCalls()
	require.Empty(t, c.Calls())
}

func TestClientHonoursCancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New().List(ctx, cloud.KindRouter, nil)
	require.ErrorIs(t, err, context.Canceled)
}
