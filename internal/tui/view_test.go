package tui

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/alexisbeaulieu97/otctasks/internal/model"
)

func TestViewRendersBasicLayout(t *testing.T) {
	t.Parallel()

	m := planned("public_zone", "private_zone")
	m.playbook = "zones"
	m.tasks["public_zone"] = model.TaskResult{
		TaskID: "public_zone", Module: "dns_zones", Status: model.StatusChanged,
		Message: "created", Duration: 120 * time.Millisecond,
	}
	m.tasks["private_zone"] = model.TaskResult{TaskID: "private_zone", Module: "dns_zones", Status: statusRunning}
	m.completed = 1

	view := m.View()
	require.Contains(t, view, "zones")
	require.Contains(t, view, "public_zone [dns_zones]: created (120ms)")
	require.Contains(t, view, "private_zone")
	require.Contains(t, view, "1/2")
}

func TestViewShowsCheckModeAndSummary(t *testing.T) {
	t.Parallel()

	m := planned("a", "b", "c", "d")
	m.checkMode = true
	m.finished = true
	m.completed = 3
	m.summary = &model.Summary{Total: 3, Pending: 3}

	view := m.View()
	require.Contains(t, view, "(check mode)")
	require.Contains(t, view, "3/4")
	require.Contains(t, view, "3 pending")
	require.Contains(t, view, "Run stopped with 1 tasks not run")
}

func TestStatusIcon(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		status   string
		expected string
	}{
		{"ok shows checkmark", model.StatusOK, "✓"},
		{"changed shows dot", model.StatusChanged, "●"},
		{"running shows hourglass", statusRunning, "⏳"},
		{"failed shows cross", model.StatusFailed, "✗"},
		{"skipped shows circle-slash", model.StatusSkipped, "⊘"},
		{"would create shows star", model.StatusWouldCreate, "✱"},
		{"would update shows cycle", model.StatusWouldUpdate, "↻"},
		{"would delete shows scissors", model.StatusWouldDelete, "✂"},
		{"pending shows ellipsis", statusPending, "…"},
		{"empty shows ellipsis", "", "…"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.Contains(t, StatusIcon(tt.status), tt.expected)
		})
	}
}
