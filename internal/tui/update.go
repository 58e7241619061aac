package tui

import (
	tea "github.com/charmbracelet/bubbletea"
)

// Update handles Bubbletea messages and updates model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		return m, nil
	case PlanMsg:
		m.playbook = msg.Playbook
		m.checkMode = msg.CheckMode
		if msg.Plan != nil {
			for _, task := range msg.Plan.Tasks {
				m.ensureTask(task.ID, task.Module)
			}
		}
		return m, nil
	case TaskStartMsg:
		m.ensureTask(msg.ID, "")
		task := m.tasks[msg.ID]
		task.Status = statusRunning
		m.tasks[msg.ID] = task
		return m, nil
	case TaskCompleteMsg:
		id := msg.Result.TaskID
		if id == "" {
			return m, nil
		}
		m.ensureTask(id, msg.Result.Module)
		previouslyDone := done(m.tasks[id].Status)
		m.tasks[id] = msg.Result
		if !previouslyDone {
			m.completed++
		}
		return m, nil
	case FinishedMsg:
		summary := msg.Summary
		m.summary = &summary
		m.err = msg.Err
		m.finished = true
		return m, tea.Quit
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			m.cancelled = true
			m.finished = true
			if m.onCancel != nil {
				m.onCancel()
			}
			return m, tea.Quit
		}
	case tea.QuitMsg:
		m.finished = true
		return m, nil
	}

	return m, nil
}
