package main

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/alexisbeaulieu97/otctasks/internal/engine"
	"github.com/alexisbeaulieu97/otctasks/internal/model"
	"github.com/alexisbeaulieu97/otctasks/internal/settings"
)

var (
	okStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	changedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true)
	pendingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("33"))
	failedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	skippedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
)

// renderer writes command results to stdout in the selected format and
// one status line per task to stderr.
type renderer struct {
	out    io.Writer
	status io.Writer
	format string
	styled bool
	// quiet suppresses the per-task status lines.
	quiet bool
}

func newRenderer(cmd *cobra.Command, format string) *renderer {
	return &renderer{
		out:    cmd.OutOrStdout(),
		status: cmd.ErrOrStderr(),
		format: format,
		styled: isTerminal(cmd.OutOrStdout()),
	}
}

func (r *renderer) statusLine(status, subject, message string) {
	if r.quiet {
		return
	}
	label := status
	if r.styled {
		label = styleFor(status).Render(status)
	}
	fmt.Fprintf(r.status, "%s: [%s] %s\n", label, subject, message)
}

func styleFor(status string) lipgloss.Style {
	switch status {
	case model.StatusOK:
		return okStyle
	case model.StatusChanged:
		return changedStyle
	case model.StatusFailed:
		return failedStyle
	case model.StatusSkipped:
		return skippedStyle
	default:
		return pendingStyle
	}
}

// taskResult renders the result envelope of a single task.
func (r *renderer) taskResult(res *model.TaskResult) error {
	r.statusLine(res.Status, res.Module, res.Message)

	switch r.format {
	case settings.OutputTable:
		return r.payloadTable(res.Result)
	default:
		return r.encode(envelope(res))
	}
}

// playbook renders a playbook run.
func (r *renderer) playbook(res *engine.ApplyPlaybookResult) error {
	for _, task := range res.TaskResults {
		r.statusLine(task.Status, task.TaskID, task.Message)
	}

	switch r.format {
	case settings.OutputTable:
		rows := make([][]string, 0, len(res.TaskResults))
		for _, task := range res.TaskResults {
			rows = append(rows, []string{task.TaskID, task.Module, task.Status, fmt.Sprint(task.Changed()), task.Message})
		}
		r.table([]string{"Task", "Module", "Status", "Changed", "Message"}, rows)
		s := res.Summary
		fmt.Fprintf(r.out, "%s: %d tasks, %d ok, %d changed, %d pending, %d skipped, %d failed\n",
			res.Playbook, s.Total, s.OK, s.Changed, s.Pending, s.Skipped, s.Failed)
		return nil
	default:
		tasks := make([]map[string]any, 0, len(res.TaskResults))
		for i := range res.TaskResults {
			task := &res.TaskResults[i]
			tasks = append(tasks, map[string]any{
				"id":      task.TaskID,
				"module":  task.Module,
				"status":  task.Status,
				"message": task.Message,
				"result":  envelope(task),
			})
		}
		return r.encode(map[string]any{
			"playbook":   res.Playbook,
			"check_mode": res.CheckMode,
			"summary":    summaryMap(res.Summary),
			"duration":   res.Duration.String(),
			"tasks":      tasks,
		})
	}
}

// object renders a flat record, as attribute/value rows in table format.
func (r *renderer) object(v map[string]any) error {
	if r.format != settings.OutputTable {
		return r.encode(v)
	}
	keys := make([]string, 0, len(v))
	for k := range v {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	rows := make([][]string, 0, len(keys))
	for _, k := range keys {
		rows = append(rows, []string{k, cell(v[k])})
	}
	r.table([]string{"Attribute", "Value"}, rows)
	return nil
}

func (r *renderer) encode(v any) error {
	if r.format == settings.OutputYAML {
		encoder := yaml.NewEncoder(r.out)
		encoder.SetIndent(2)
		if err := encoder.Encode(v); err != nil {
			return err
		}
		return encoder.Close()
	}
	encoder := json.NewEncoder(r.out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

func (r *renderer) table(header []string, rows [][]string) {
	table := tablewriter.NewWriter(r.out)
	table.SetHeader(header)
	table.SetAutoWrapText(false)
	table.SetRowLine(true)
	table.AppendBulk(rows)
	table.Render()
}

// payloadTable renders list payloads one record per row and single records
// as attribute/value pairs.
func (r *renderer) payloadTable(result model.Result) error {
	if result.Failed() {
		r.table([]string{"Changed", "Failed", "Message"}, [][]string{{fmt.Sprint(result.Changed()), "true", result.Err().Error()}})
		return nil
	}

	switch payload := result.Payload().(type) {
	case []map[string]any:
		columns := columnsOf(payload)
		rows := make([][]string, 0, len(payload))
		for _, rec := range payload {
			row := make([]string, len(columns))
			for i, col := range columns {
				row[i] = cell(rec[col])
			}
			rows = append(rows, row)
		}
		r.table(columns, rows)
		fmt.Fprintf(r.out, "%d %s\n", len(payload), result.PayloadKey())
	case map[string]any:
		keys := make([]string, 0, len(payload))
		for k := range payload {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		rows := [][]string{{"changed", fmt.Sprint(result.Changed())}}
		for _, k := range keys {
			rows = append(rows, []string{k, cell(payload[k])})
		}
		r.table([]string{"Attribute", "Value"}, rows)
	default:
		r.table([]string{"Attribute", "Value"}, [][]string{{"changed", fmt.Sprint(result.Changed())}})
	}
	return nil
}

func envelope(res *model.TaskResult) map[string]any {
	out := res.Result.Map()
	if res.Diff != "" {
		out["diff"] = res.Diff
	}
	return out
}

func summaryMap(s model.Summary) map[string]int {
	return map[string]int{
		"total":   s.Total,
		"ok":      s.OK,
		"changed": s.Changed,
		"pending": s.Pending,
		"skipped": s.Skipped,
		"failed":  s.Failed,
	}
}

// columnsOf returns id and name first, then the remaining keys sorted.
func columnsOf(records []map[string]any) []string {
	seen := map[string]bool{}
	var rest []string
	for _, rec := range records {
		for k := range rec {
			if seen[k] {
				continue
			}
			seen[k] = true
			if k != "id" && k != "name" {
				rest = append(rest, k)
			}
		}
	}
	sort.Strings(rest)

	var columns []string
	for _, k := range []string{"id", "name"} {
		if seen[k] {
			columns = append(columns, k)
		}
	}
	return append(columns, rest...)
}

func cell(v any) string {
	switch typed := v.(type) {
	case nil:
		return ""
	case string:
		return typed
	case map[string]any, []any:
		data, err := json.Marshal(typed)
		if err != nil {
			return fmt.Sprint(typed)
		}
		return string(data)
	default:
		return strings.TrimSpace(fmt.Sprint(typed))
	}
}
