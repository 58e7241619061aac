package natsnatinfoplugin

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/alexisbeaulieu97/otctasks/internal/cloud"
	"github.com/alexisbeaulieu97/otctasks/internal/cloud/memory"
	"github.com/alexisbeaulieu97/otctasks/internal/config"
	"github.com/alexisbeaulieu97/otctasks/internal/plugin"
	apperrors "github.com/alexisbeaulieu97/otctasks/pkg/errors"
)

func rules() *memory.Client {
	return memory.New().Seed(cloud.KindSNATRule,
		cloud.Record{"id": "s1", "admin_state_up": true, "status": "ACTIVE", "nat_gateway_id": "gw1", "cidr": "10.0.0.0/24", "location": "eu-de"},
		cloud.Record{"id": "s2", "admin_state_up": false, "status": "ACTIVE", "nat_gateway_id": "gw1"},
		cloud.Record{"id": "s3", "admin_state_up": true, "status": "PENDING_CREATE", "nat_gateway_id": "gw2"},
	)
}

func ids(t *testing.T, params map[string]any) []string {
	t.Helper()

	client := rules()
	eval, err := New().Evaluate(context.Background(), client, &config.Task{ID: "snat", Params: params})
	require.NoError(t, err)
	require.False(t, eval.RequiresAction)
	require.False(t, eval.Result.Changed())
	require.Equal(t, "snat_list", eval.Result.PayloadKey())

	for _, call := range client.Calls() {
		require.Equal(t, memory.OpList, call.Op)
		require.Empty(t, call.Attrs)
	}

	var out []string
	for _, rec := range eval.Result.Payload().([]map[string]any) {
		require.NotContains(t, rec, "location")
		out = append(out, rec["id"].(string))
	}
	return out
}

func TestNATSNATInfoPlugin_Metadata(t *testing.T) {
	t.Parallel()

	meta := New().PluginMetadata()
	require.NoError(t, meta.Validate())
	require.Equal(t, plugin.ModeInfo, meta.Mode)
}

func TestNATSNATInfoPlugin_Filters(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		params map[string]any
		want   []string
	}{
		{name: "no filters", params: map[string]any{}, want: []string{"s1", "s2", "s3"}},
		{name: "admin state up", params: map[string]any{"admin_state_up": true}, want: []string{"s1", "s3"}},
		{name: "admin state down from string", params: map[string]any{"admin_state_up": "false"}, want: []string{"s2"}},
		{name: "combined predicates", params: map[string]any{"status": "ACTIVE", "nat_gateway_id": "gw1", "admin_state_up": true}, want: []string{"s1"}},
		{name: "predicate on missing attribute", params: map[string]any{"cidr": "10.0.0.0/24"}, want: []string{"s1"}},
		{name: "expression", params: map[string]any{"filter": `status == "PENDING_CREATE"`}, want: []string{"s3"}},
		{name: "nothing matches", params: map[string]any{"id": "ghost"}, want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tt.want, ids(t, tt.params))
		})
	}
}

func TestNATSNATInfoPlugin_RejectsInvalidBoolean(t *testing.T) {
	t.Parallel()

	client := rules()
	_, err := New().Evaluate(context.Background(), client, &config.Task{ID: "snat", Params: map[string]any{"admin_state_up": "maybe"}})
	var validationErr *apperrors.ValidationError
	require.ErrorAs(t, err, &validationErr)
	require.Empty(t, client.Calls())
}

func TestNATSNATInfoPlugin_ApplyEchoesEvaluation(t *testing.T) {
	t.Parallel()

	p := New()
	task := &config.Task{ID: "snat", Params: map[string]any{}}
	eval, err := p.Evaluate(context.Background(), rules(), task)
	require.NoError(t, err)

	result, err := p.Apply(context.Background(), rules(), eval, task)
	require.NoError(t, err)
	require.False(t, result.Changed())
	require.Len(t, result.Result.Payload(), 3)
}
