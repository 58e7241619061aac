package components

import (
	"github.com/alexisbeaulieu97/otctasks/internal/model"
)

// TaskEntry is a single task row.
type TaskEntry struct {
	ID     string
	Module string
	Result model.TaskResult
}

// TaskList lists tasks in run order with their latest result.
type TaskList struct {
	entries []TaskEntry
}

// NewTaskList constructs a task list component.
func NewTaskList(order []string, tasks map[string]model.TaskResult) TaskList {
	entries := make([]TaskEntry, 0, len(order))
	for _, id := range order {
		res := tasks[id]
		entries = append(entries, TaskEntry{ID: id, Module: res.Module, Result: res})
	}
	return TaskList{entries: entries}
}

// Entries returns the ordered task entries.
func (l TaskList) Entries() []TaskEntry {
	clone := make([]TaskEntry, len(l.entries))
	copy(clone, l.entries)
	return clone
}
