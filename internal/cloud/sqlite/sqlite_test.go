package sqlite

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/alexisbeaulieu97/otctasks/internal/cloud"
	apperrors "github.com/alexisbeaulieu97/otctasks/pkg/errors"
)

func openClient(t *testing.T, opts ...Option) (*Client, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "nested", "sandbox.db")
	client, err := Open(path, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return client, path
}

func TestClientCRUD(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	client, _ := openClient(t)

	created, err := client.Create(ctx, cloud.KindDNSZone, map[string]any{
		"name":   "example.com.",
		"ttl":    300,
		"router": map[string]any{"router_id": "r1"},
	})
	require.NoError(t, err)
	require.NotEmpty(t, created.ID())
	require.Empty(t, created.JobID())

	found, ok, err := client.Find(ctx, cloud.KindDNSZone, "example.com.", nil)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, created.ID(), found.ID())
	require.Equal(t, int64(300), found["ttl"])
	require.Equal(t, map[string]any{"router_id": "r1"}, found["router"])

	byID, ok, err := client.Find(ctx, cloud.KindDNSZone, created.ID(), nil)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "example.com.", byID.Name())

	updated, err := client.Update(ctx, cloud.KindDNSZone, created.ID(), map[string]any{"ttl": 600, "id": "ignored"})
	require.NoError(t, err)
	require.Equal(t, created.ID(), updated.ID())
	require.Equal(t, 600, updated["ttl"])

	job, err := client.Delete(ctx, cloud.KindDNSZone, created.ID())
	require.NoError(t, err)
	require.False(t, job.Pending())

	_, ok, err = client.Find(ctx, cloud.KindDNSZone, "example.com.", nil)
	require.NoError(t, err)
	require.False(t, ok)

	_, err = client.Delete(ctx, cloud.KindDNSZone, created.ID())
	require.ErrorContains(t, err, "resource not found")
	_, err = client.Update(ctx, cloud.KindDNSZone, created.ID(), map[string]any{"ttl": 1})
	require.ErrorContains(t, err, "resource not found")
}

func TestClientListAndScope(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	client, _ := openClient(t)
	require.NoError(t, client.Seed(ctx, cloud.KindDNSZone,
		cloud.Record{"id": "z2", "name": "b.example.com.", "zone_type": "private"},
		cloud.Record{"id": "z1", "name": "a.example.com.", "zone_type": "public"},
		cloud.Record{"id": "z3", "name": "a.example.com.", "zone_type": "private"},
	))

	all, err := client.List(ctx, cloud.KindDNSZone, nil)
	require.NoError(t, err)
	require.Len(t, all, 3)
	require.Equal(t, "a.example.com.", all[0].Name())

	private, err := client.List(ctx, cloud.KindDNSZone, cloud.Filters{"zone_type": "private"})
	require.NoError(t, err)
	require.Len(t, private, 2)

	rec, ok, err := client.Find(ctx, cloud.KindDNSZone, "a.example.com.", cloud.Filters{"zone_type": "private"})
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "z3", rec.ID())

	empty, err := client.List(ctx, cloud.KindLBMember, nil)
	require.NoError(t, err)
	require.Empty(t, empty)
}

func TestClientPersistsAcrossOpens(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	client, path := openClient(t)
	_, err := client.Create(ctx, cloud.KindRouter, map[string]any{"name": "main"})
	require.NoError(t, err)
	require.NoError(t, client.Close())

	reopened, err := Open(path)
	require.NoError(t, err)
	defer reopened.Close()

	_, ok, err := reopened.Find(ctx, cloud.KindRouter, "main", nil)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestClientJobs(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	client, _ := openClient(t, WithAsyncKinds(DefaultAsyncKinds...), WithJobPolls(2))

	rec, err := client.Create(ctx, cloud.KindRDSInstance, map[string]any{"name": "db"})
	require.NoError(t, err)
	require.NotEmpty(t, rec.JobID())

	states := make([]cloud.JobState, 0, 4)
	for i := 0; i < 4; i++ {
		state, err := client.JobStatus(ctx, rec.JobID())
		require.NoError(t, err)
		states = append(states, state)
	}
	require.Equal(t, []cloud.JobState{cloud.JobRunning, cloud.JobRunning, cloud.JobCompleted, cloud.JobCompleted}, states)

	job, err := client.Delete(ctx, cloud.KindRDSInstance, rec.ID())
	require.NoError(t, err)
	require.True(t, job.Pending())

	_, err = client.JobStatus(ctx, "missing")
	require.ErrorContains(t, err, "not found")
}

func TestClientJobFailureRollsBackMutation(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	client, _ := openClient(t, WithAsyncKinds(DefaultAsyncKinds...))
	require.NoError(t, client.Seed(ctx, cloud.KindRDSInstance, cloud.Record{"id": "i1", "name": "existing"}))

	_, err := client.db.ExecContext(ctx, `DROP TABLE jobs`)
	require.NoError(t, err)

	_, err = client.Create(ctx, cloud.KindRDSInstance, map[string]any{"name": "db"})
	require.ErrorContains(t, err, "start job")
	_, found, err := client.Find(ctx, cloud.KindRDSInstance, "db", nil)
	require.NoError(t, err)
	require.False(t, found)

	_, err = client.Delete(ctx, cloud.KindRDSInstance, "i1")
	require.ErrorContains(t, err, "start job")
	_, found, err = client.Find(ctx, cloud.KindRDSInstance, "i1", nil)
	require.NoError(t, err)
	require.True(t, found)
}

func TestLoadFixture(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "fixture.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`network.router:
  - name: main
  - id: r2
    name: backup
dns.zone:
  - name: example.com.
    ttl: 300
`), 0o600))

	fixture, err := LoadFixture(path)
	require.NoError(t, err)
	require.Len(t, fixture[cloud.KindRouter], 2)

	ctx := context.Background()
	client, _ := openClient(t)
	count, err := client.SeedFixture(ctx, fixture)
	require.NoError(t, err)
	require.Equal(t, 3, count)

	rec, ok, err := client.Find(ctx, cloud.KindRouter, "r2", nil)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "backup", rec.Name())

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("compute.server:\n  - name: vm\n"), 0o600))
	_, err = LoadFixture(bad)
	var validationErr *apperrors.ValidationError
	require.ErrorAs(t, err, &validationErr)
	require.Equal(t, "compute.server", validationErr.Field)
}
