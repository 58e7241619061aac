package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/alexisbeaulieu97/otctasks/internal/engine"
	"github.com/alexisbeaulieu97/otctasks/internal/model"
)

const (
	statusPending = "pending"
	statusRunning = "running"
)

// PlanMsg announces the tasks of a run before the first one starts.
type PlanMsg struct {
	Playbook  string
	Plan      *engine.ExecutionPlan
	CheckMode bool
}

// TaskStartMsg indicates a task has started executing.
type TaskStartMsg struct {
	ID   string
	Time time.Time
}

// TaskCompleteMsg reports that a task has finished.
type TaskCompleteMsg struct {
	Result model.TaskResult
}

// FinishedMsg ends the run and quits the program.
type FinishedMsg struct {
	Summary model.Summary
	Err     error
}

type tickMsg struct{}

// Model contains the Bubbletea state of the playbook progress view.
type Model struct {
	playbook  string
	checkMode bool
	tasks     map[string]model.TaskResult
	order     []string
	total     int
	completed int
	summary   *model.Summary
	err       error
	finished  bool
	cancelled bool
	onCancel  func()
}

// NewModel constructs an empty progress model. onCancel, if not nil, runs
// when the user interrupts the view.
func NewModel(onCancel func()) Model {
	return Model{
		tasks:    make(map[string]model.TaskResult),
		order:    make([]string, 0),
		onCancel: onCancel,
	}
}

// Init starts the Bubbletea program.
func (m Model) Init() tea.Cmd {
	return tea.Tick(time.Millisecond, func(time.Time) tea.Msg { return tickMsg{} })
}

// TotalTasks returns the number of tasks tracked by the model.
func (m Model) TotalTasks() int {
	return m.total
}

// CompletedTasks returns the number of tasks that reached a final status.
func (m Model) CompletedTasks() int {
	return m.completed
}

// IsFinished reports whether the run has ended.
func (m Model) IsFinished() bool {
	return m.finished
}

// Cancelled reports whether the user interrupted the run.
func (m Model) Cancelled() bool {
	return m.cancelled
}

func (m *Model) ensureTask(id, module string) {
	if id == "" {
		return
	}
	if _, exists := m.tasks[id]; !exists {
		m.tasks[id] = model.TaskResult{TaskID: id, Module: module, Status: statusPending}
		m.order = append(m.order, id)
		m.total++
	}
}

func done(status string) bool {
	return status != "" && status != statusPending && status != statusRunning
}
