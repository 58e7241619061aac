package model

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestTaskResultCreation(t *testing.T) {
	t.Parallel()

	t.Run("creates task result with all fields", func(t *testing.T) {
		t.Parallel()
		now := time.Now()
		result := TaskResult{
			TaskID:    "zone",
			Module:    "dns_zones",
			Status:    StatusChanged,
			Message:   "created",
			Result:    Changed("zone", map[string]any{"id": "z1"}),
			Duration:  time.Second,
			Timestamp: now,
		}

		require.Equal(t, "zone", result.TaskID)
		require.Equal(t, StatusChanged, result.Status)
		require.True(t, result.Changed())
		require.Equal(t, time.Second, result.Duration)
		require.Equal(t, now, result.Timestamp)
	})

	t.Run("nil task result is unchanged", func(t *testing.T) {
		t.Parallel()
		var result *TaskResult
		require.False(t, result.Changed())
	})
}

func TestResourceState_IsValid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		state ResourceState
		want  bool
	}{
		{"satisfied is valid", StateSatisfied, true},
		{"missing is valid", StateMissing, true},
		{"drifted is valid", StateDrifted, true},
		{"extraneous is valid", StateExtraneous, true},
		{"queried is valid", StateQueried, true},
		{"invalid state", ResourceState("invalid"), false},
		{"empty state", ResourceState(""), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tt.want, tt.state.IsValid())
		})
	}
}

func TestResultIsImmutable(t *testing.T) {
	t.Parallel()

	payload := map[string]any{"id": "z1", "router": map[string]any{"router_id": "r1"}}
	result := Changed("zone", payload)

	payload["id"] = "mutated"
	payload["router"].(map[string]any)["router_id"] = "mutated"

	got := result.Payload().(map[string]any)
	require.Equal(t, "z1", got["id"])
	require.Equal(t, "r1", got["router"].(map[string]any)["router_id"])

	got["id"] = "mutated again"
	require.Equal(t, "z1", result.Payload().(map[string]any)["id"])
}

func TestResultListPayloadIsCopied(t *testing.T) {
	t.Parallel()

	payload := []map[string]any{{"id": "m1"}}
	result := Unchanged("members", payload)
	payload[0]["id"] = "mutated"

	require.Equal(t, "m1", result.Payload().([]map[string]any)[0]["id"])
	require.False(t, result.Changed())
	require.Equal(t, "members", result.PayloadKey())
}

func TestResultMarshal(t *testing.T) {
	t.Parallel()

	t.Run("success", func(t *testing.T) {
		t.Parallel()
		data, err := json.Marshal(Changed("zone", map[string]any{"id": "z1"}))
		require.NoError(t, err)
		require.JSONEq(t, `{"changed": true, "zone": {"id": "z1"}}`, string(data))
	})

	t.Run("failure", func(t *testing.T) {
		t.Parallel()
		result := Failure(false, errors.New("boom"))
		require.True(t, result.Failed())
		require.EqualError(t, result.Err(), "boom")

		data, err := json.Marshal(result)
		require.NoError(t, err)
		require.JSONEq(t, `{"changed": false, "failed": true, "msg": "boom"}`, string(data))
	})

	t.Run("yaml", func(t *testing.T) {
		t.Parallel()
		data, err := yaml.Marshal(Unchanged("quotas", []map[string]any{}))
		require.NoError(t, err)
		require.Equal(t, "changed: false\nquotas: []\n", string(data))
	})
}

func TestSummarize(t *testing.T) {
	t.Parallel()

	summary := Summarize([]TaskResult{
		{Status: StatusOK},
		{Status: StatusChanged},
		{Status: StatusChanged},
		{Status: StatusFailed},
		{Status: StatusSkipped},
		{Status: StatusWouldCreate},
		{Status: StatusWouldDelete},
	})

	require.Equal(t, Summary{Total: 7, OK: 1, Changed: 2, Skipped: 1, Failed: 1, Pending: 2}, summary)
}
