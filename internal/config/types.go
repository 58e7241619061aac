package config

import (
	"gopkg.in/yaml.v3"
)

// Playbook is a YAML document listing tasks to run against one cloud.
type Playbook struct {
	Version     string   `yaml:"version" validate:"required,semver"`
	Name        string   `yaml:"name" validate:"required,min=1,max=100"`
	Description string   `yaml:"description,omitempty"`
	Settings    Settings `yaml:"settings,omitempty"`
	Tasks       []Task   `yaml:"tasks" validate:"required,min=1,dive"`
}

// Settings holds playbook-wide execution parameters.
type Settings struct {
	// Timeout bounds each task, in seconds. Zero means no bound.
	Timeout         int  `yaml:"timeout,omitempty" validate:"omitempty,min=1,max=86400"`
	ContinueOnError bool `yaml:"continue_on_error,omitempty"`
	CheckMode       bool `yaml:"check_mode,omitempty"`
}

// Task invokes one module with a flat parameter map.
type Task struct {
	ID        string         `yaml:"id" validate:"required,task_id"`
	Name      string         `yaml:"name,omitempty"`
	Module    string         `yaml:"module" validate:"required"`
	DependsOn []string       `yaml:"depends_on,omitempty"`
	Enabled   bool           `yaml:"enabled,omitempty"`
	Params    map[string]any `yaml:"params,omitempty"`
}

// UnmarshalYAML decodes a task, defaulting enabled to true.
func (t *Task) UnmarshalYAML(value *yaml.Node) error {
	type rawTask struct {
		ID        string         `yaml:"id"`
		Name      string         `yaml:"name"`
		Module    string         `yaml:"module"`
		DependsOn []string       `yaml:"depends_on"`
		Enabled   *bool          `yaml:"enabled"`
		Params    map[string]any `yaml:"params"`
	}

	var raw rawTask
	if err := value.Decode(&raw); err != nil {
		return err
	}

	t.ID = raw.ID
	t.Name = raw.Name
	t.Module = raw.Module
	t.DependsOn = append([]string(nil), raw.DependsOn...)
	t.Params = raw.Params
	if t.Params == nil {
		t.Params = map[string]any{}
	}
	if raw.Enabled != nil {
		t.Enabled = *raw.Enabled
	} else {
		t.Enabled = true
	}
	return nil
}

// DisplayName returns the task name, falling back to its id.
func (t Task) DisplayName() string {
	if t.Name != "" {
		return t.Name
	}
	return t.ID
}

// TaskMap builds a lookup table for tasks by ID.
func TaskMap(tasks []Task) map[string]Task {
	out := make(map[string]Task, len(tasks))
	for _, task := range tasks {
		out[task.ID] = task
	}
	return out
}
