package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/alexisbeaulieu97/otctasks/internal/model"
	"github.com/alexisbeaulieu97/otctasks/internal/tui/components"
)

// View renders the current state of the model.
func (m Model) View() string {
	var sections []string

	title := titleStyle.Render(fmt.Sprintf("otctasks • %s", m.title()))
	if m.checkMode {
		title = lipgloss.JoinHorizontal(lipgloss.Left, title, " ", checkStyle.Render("(check mode)"))
	}
	sections = append(sections, title)

	progress := components.NewProgress(m.total).View(m.completed)
	sections = append(sections, sectionStyle.Render("Progress"), progress)

	entries := components.NewTaskList(m.order, m.tasks).Entries()
	if len(entries) > 0 {
		sections = append(sections, sectionStyle.Render("Tasks"))
		sections = append(sections, renderTaskEntries(entries))
	}

	summary := components.NewSummary(components.SummaryData{
		Total:     m.total,
		Completed: m.completed,
		Finished:  m.finished,
		Cancelled: m.cancelled,
		Counts:    m.summary,
		Err:       m.err,
	}).View()
	if strings.TrimSpace(summary) != "" {
		sections = append(sections, sectionStyle.Render("Summary"), summaryStyle.Render(summary))
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func renderTaskEntries(entries []components.TaskEntry) string {
	var lines []string
	for _, entry := range entries {
		res := entry.Result
		line := fmt.Sprintf(" %s %s", StatusIcon(res.Status), entry.ID)
		if entry.Module != "" {
			line = fmt.Sprintf("%s [%s]", line, entry.Module)
		}
		if strings.TrimSpace(res.Message) != "" {
			line = fmt.Sprintf("%s: %s", line, res.Message)
		}
		if res.Duration > 0 {
			line = fmt.Sprintf("%s (%s)", line, res.Duration.Truncate(10*time.Millisecond))
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func (m Model) title() string {
	if strings.TrimSpace(m.playbook) != "" {
		return m.playbook
	}
	return "Playbook"
}

// StatusIcon returns the glyph representing a task status.
func StatusIcon(status string) string {
	switch status {
	case model.StatusOK:
		return successStyle.Render("✓")
	case model.StatusChanged:
		return changedStyle.Render("●")
	case statusRunning:
		return runningStyle.Render("⏳")
	case model.StatusFailed:
		return failureStyle.Render("✗")
	case model.StatusSkipped:
		return skippedStyle.Render("⊘")
	case model.StatusWouldCreate:
		return pendingStyle.Render("✱")
	case model.StatusWouldUpdate:
		return pendingStyle.Render("↻")
	case model.StatusWouldDelete:
		return pendingStyle.Render("✂")
	default:
		return pendingStyle.Render("…")
	}
}
