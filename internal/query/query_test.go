package query

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/alexisbeaulieu97/otctasks/internal/cloud"
	apperrors "github.com/alexisbeaulieu97/otctasks/pkg/errors"
)

func statuses() []cloud.Record {
	return []cloud.Record{
		{"floating_ip_id": "f1", "floating_ip_address": "80.158.0.1", "status": "normal"},
		{"floating_ip_id": "f2", "floating_ip_address": "80.158.0.2", "status": "notConfig"},
		{"floating_ip_id": "f3", "floating_ip_address": "80.158.0.3", "status": "normal"},
		{"floating_ip_id": "f4", "floating_ip_address": "80.158.0.4", "status": "Normal"},
	}
}

func ids(rs []cloud.Record, key string) []string {
	out := make([]string, 0, len(rs))
	for _, r := range rs {
		out = append(out, r.String(key))
	}
	return out
}

func TestBuildSplitsServerAndClientCriteria(t *testing.T) {
	t.Parallel()

	b := NewBuilder(
		Criterion{Param: "project_id", Key: "tenant_id", Mode: Server},
		Criterion{Param: "address", Mode: Server},
		Criterion{Param: "weight", Mode: Client},
		Criterion{Param: "admin_state_up", Mode: Client, Match: Bool},
	)

	q, err := b.Build(map[string]any{
		"project_id":     "p1",
		"address":        nil,
		"weight":         5,
		"admin_state_up": "false",
		"ignored":        "x",
	}, "")
	require.NoError(t, err)
	require.Equal(t, cloud.Filters{"tenant_id": "p1"}, q.Server)
	require.True(t, q.HasClientSide())

	got, err := q.Apply([]cloud.Record{
		{"id": "m1", "weight": 5, "admin_state_up": false},
		{"id": "m2", "weight": 5, "admin_state_up": true},
		{"id": "m3", "weight": 1, "admin_state_up": false},
		{"id": "m4", "weight": "5", "admin_state_up": "false"},
		{"id": "m5", "admin_state_up": false},
	})
	require.NoError(t, err)
	require.Equal(t, []string{"m1", "m4"}, ids(got, "id"))
}

func TestApplyExcludesExactlyFailingRecords(t *testing.T) {
	t.Parallel()

	q, err := NewBuilder(ClientSide("status")...).Build(map[string]any{"status": "normal"}, "")
	require.NoError(t, err)

	got, err := q.Apply(statuses())
	require.NoError(t, err)
	require.Equal(t, []string{"f1", "f3"}, ids(got, "floating_ip_id"))
}

func TestApplyWithoutCriteriaKeepsEverything(t *testing.T) {
	t.Parallel()

	q, err := NewBuilder(ClientSide("status")...).Build(map[string]any{}, "")
	require.NoError(t, err)
	require.False(t, q.HasClientSide())
	require.Empty(t, q.Server)

	got, err := q.Apply(statuses())
	require.NoError(t, err)
	require.Len(t, got, 4)

	empty, err := q.Apply(nil)
	require.NoError(t, err)
	require.NotNil(t, empty)
}

func TestTriStateBool(t *testing.T) {
	t.Parallel()

	records := []cloud.Record{
		{"id": "s1", "admin_state_up": true},
		{"id": "s2", "admin_state_up": false},
	}
	b := NewBuilder(Criterion{Param: "admin_state_up", Mode: Client, Match: Bool})

	tests := []struct {
		name string
		in   any
		want []string
	}{
		{name: "unset", in: nil, want: []string{"s1", "s2"}},
		{name: "true", in: true, want: []string{"s1"}},
		{name: "false", in: false, want: []string{"s2"}},
		{name: "string", in: "true", want: []string{"s1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			q, err := b.Build(map[string]any{"admin_state_up": tt.in}, "")
			require.NoError(t, err)
			got, err := q.Apply(records)
			require.NoError(t, err)
			require.Equal(t, tt.want, ids(got, "id"))
		})
	}
}

func TestBuildRejectsNonBoolean(t *testing.T) {
	t.Parallel()

	_, err := NewBuilder(Criterion{Param: "admin_state_up", Mode: Client, Match: Bool}).
		Build(map[string]any{"admin_state_up": "maybe"}, "")

	var ve *apperrors.ValidationError
	require.ErrorAs(t, err, &ve)
	require.Equal(t, "admin_state_up", ve.Field)
}

func TestExpressionFilter(t *testing.T) {
	t.Parallel()

	q, err := NewBuilder().Build(nil, `floating_ip_address == "80.158.0.1" or status == "notConfig"`)
	require.NoError(t, err)
	require.True(t, q.HasClientSide())

	got, err := q.Apply(statuses())
	require.NoError(t, err)
	require.Equal(t, []string{"f1", "f2"}, ids(got, "floating_ip_id"))
}

func TestExpressionMissingSelectorDoesNotMatch(t *testing.T) {
	t.Parallel()

	q, err := NewBuilder().Build(nil, `weight == 5`)
	require.NoError(t, err)

	got, err := q.Apply([]cloud.Record{{"id": "a"}, {"id": "b", "weight": 5}})
	require.NoError(t, err)
	require.Equal(t, []string{"b"}, ids(got, "id"))
}

func TestExpressionMustParse(t *testing.T) {
	t.Parallel()

	_, err := NewBuilder().Build(nil, "status ==")
	var ve *apperrors.ValidationError
	require.ErrorAs(t, err, &ve)
	require.Equal(t, "filter", ve.Field)
}
