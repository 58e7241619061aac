package engine

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/alexisbeaulieu97/otctasks/internal/cloud"
	"github.com/alexisbeaulieu97/otctasks/internal/cloud/memory"
	"github.com/alexisbeaulieu97/otctasks/internal/model"
	"github.com/alexisbeaulieu97/otctasks/internal/plugin"
	dnszonesplugin "github.com/alexisbeaulieu97/otctasks/internal/plugins/dnszones"
	apperrors "github.com/alexisbeaulieu97/otctasks/pkg/errors"
)

const zonesPlaybook = `version: "1.0"
name: zones
tasks:
  - id: public_zone
    module: dns_zones
    params:
      name: example.com.
      ttl: 300
  - id: private_zone
    module: dns_zones
    depends_on: [public_zone]
    params:
      name: internal.example.com.
      zone_type: private
      router: main
`

func writePlaybook(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "playbook.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))
	return path
}

func dnsRegistry(t *testing.T) *plugin.PluginRegistry {
	t.Helper()
	registry := plugin.NewPluginRegistry(nil)
	require.NoError(t, registry.Register(dnszonesplugin.New()))
	return registry
}

func TestApplyPlaybook(t *testing.T) {
	t.Parallel()

	path := writePlaybook(t, zonesPlaybook)
	registry := dnsRegistry(t)
	client := memory.New().Seed(cloud.KindRouter, cloud.Record{"id": "r1", "name": "main"})

	first, err := ApplyPlaybook(context.Background(), path, registry, client, ApplyOptions{})
	require.NoError(t, err)
	require.False(t, first.Failed())
	require.Equal(t, "zones", first.Playbook)
	require.Equal(t, model.Summary{Total: 2, Changed: 2}, first.Summary)
	require.Len(t, client.Snapshot(cloud.KindDNSZone), 2)

	second, err := ApplyPlaybook(context.Background(), path, registry, client, ApplyOptions{})
	require.NoError(t, err)
	require.Equal(t, model.Summary{Total: 2, OK: 2}, second.Summary)
	require.Len(t, client.MutatingCalls(), 2)
}

func TestApplyPlaybook_CheckMode(t *testing.T) {
	t.Parallel()

	path := writePlaybook(t, zonesPlaybook)
	client := memory.New().Seed(cloud.KindRouter, cloud.Record{"id": "r1", "name": "main"})

	observer := &recordingObserver{}
	result, err := ApplyPlaybook(context.Background(), path, dnsRegistry(t), client, ApplyOptions{CheckMode: true, Observer: observer})
	require.NoError(t, err)
	require.True(t, result.CheckMode)
	require.Equal(t, []string{
		"plan zones",
		"start public_zone", "would_create public_zone",
		"start private_zone", "would_create private_zone",
	}, observer.events)
	require.Equal(t, model.Summary{Total: 2, Pending: 2}, result.Summary)
	require.Empty(t, client.MutatingCalls())
}

func TestApplyPlaybook_TaskFailure(t *testing.T) {
	t.Parallel()

	path := writePlaybook(t, zonesPlaybook)
	client := memory.New()

	result, err := ApplyPlaybook(context.Background(), path, dnsRegistry(t), client, ApplyOptions{})
	require.NoError(t, err)
	require.True(t, result.Failed())
	require.Equal(t, []string{"private_zone"}, result.FailedTasks)

	var notFound *apperrors.NotFoundError
	require.ErrorAs(t, result.Error, &notFound)
	require.Equal(t, "main", notFound.Ref)
	require.Len(t, client.MutatingCalls(), 1)
}

func TestApplyPlaybook_InvalidPlaybook(t *testing.T) {
	t.Parallel()

	_, err := ApplyPlaybook(context.Background(), writePlaybook(t, "name: broken\n"), dnsRegistry(t), memory.New(), ApplyOptions{})
	var validationErr *apperrors.ValidationError
	require.ErrorAs(t, err, &validationErr)

	_, err = ApplyPlaybook(context.Background(), filepath.Join(t.TempDir(), "missing.yaml"), dnsRegistry(t), memory.New(), ApplyOptions{})
	var parseErr *apperrors.ParseError
	require.ErrorAs(t, err, &parseErr)
}
