package plugin

import (
	"context"
	"sync"

	"github.com/alexisbeaulieu97/otctasks/internal/cloud"
	"github.com/alexisbeaulieu97/otctasks/internal/config"
	"github.com/alexisbeaulieu97/otctasks/internal/model"
)

type MockPluginOption func(*MockPlugin)

type MockPlugin struct {
	mu         sync.Mutex
	metadata   PluginMetadata
	calls      []string
	schema     any
	evaluateFn func(context.Context, cloud.Client, *config.Task) (*model.EvaluationResult, error)
	applyFn    func(context.Context, cloud.Client, *model.EvaluationResult, *config.Task) (*model.TaskResult, error)
}

func NewMockPlugin(name string, opts ...MockPluginOption) *MockPlugin {
	mp := &MockPlugin{
		metadata: PluginMetadata{
			Name:       name,
			Version:    "1.0.0",
			APIVersion: "1.x",
			Mode:       ModeWrite,
			PayloadKey: "result",
		},
	}

	for _, opt := range opts {
		opt(mp)
	}
	return mp
}

func WithVersion(version string) MockPluginOption {
	return func(mp *MockPlugin) {
		mp.metadata.Version = version
	}
}

func WithMode(mode Mode) MockPluginOption {
	return func(mp *MockPlugin) {
		mp.metadata.Mode = mode
	}
}

func WithPayloadKey(key string) MockPluginOption {
	return func(mp *MockPlugin) {
		mp.metadata.PayloadKey = key
	}
}

func WithSchema(schema any) MockPluginOption {
	return func(mp *MockPlugin) {
		mp.schema = schema
	}
}

func WithEvaluateFunc(fn func(context.Context, cloud.Client, *config.Task) (*model.EvaluationResult, error)) MockPluginOption {
	return func(mp *MockPlugin) {
		mp.evaluateFn = fn
	}
}

func WithApplyFunc(fn func(context.Context, cloud.Client, *model.EvaluationResult, *config.Task) (*model.TaskResult, error)) MockPluginOption {
	return func(mp *MockPlugin) {
		mp.applyFn = fn
	}
}

func (m *MockPlugin) PluginMetadata() PluginMetadata {
	return m.metadata
}

func (m *MockPlugin) Schema() any {
	m.recordCall("Schema")
	return m.schema
}

func (m *MockPlugin) Evaluate(ctx context.Context, client cloud.Client, task *config.Task) (*model.EvaluationResult, error) {
	m.recordCall("Evaluate")
	if m.evaluateFn != nil {
		return m.evaluateFn(ctx, client, task)
	}
	return &model.EvaluationResult{
		TaskID:         task.ID,
		CurrentState:   model.StateSatisfied,
		RequiresAction: false,
		Message:        "mock evaluation",
	}, nil
}

func (m *MockPlugin) Apply(ctx context.Context, client cloud.Client, evalResult *model.EvaluationResult, task *config.Task) (*model.TaskResult, error) {
	m.recordCall("Apply")
	if m.applyFn != nil {
		return m.applyFn(ctx, client, evalResult, task)
	}
	return &model.TaskResult{TaskID: task.ID, Status: model.StatusChanged}, nil
}

func (m *MockPlugin) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := make([]string, len(m.calls))
	copy(copied, m.calls)
	return copied
}

func (m *MockPlugin) recordCall(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, name)
}
