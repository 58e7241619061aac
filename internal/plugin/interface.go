package plugin

import (
	"context"

	"github.com/alexisbeaulieu97/otctasks/internal/cloud"
	"github.com/alexisbeaulieu97/otctasks/internal/config"
	"github.com/alexisbeaulieu97/otctasks/internal/model"
)

// Plugin defines the contract every task module satisfies.
//
// Implementations should:
//   - Return their identity and payload key via PluginMetadata()
//   - Expose their parameter struct via Schema()
//   - Implement read-only state assessment via Evaluate()
//   - Implement state mutation via Apply()
type Plugin interface {
	// PluginMetadata returns the module's identity and output contract.
	PluginMetadata() PluginMetadata

	// Schema returns a zero value of the module's parameter struct. Its
	// field tags describe names, defaults, choices and co-occurrence rules.
	Schema() any

	// Evaluate decodes and validates the task parameters, then performs a
	// STRICTLY READ-ONLY assessment of the remote resource against them.
	//
	// Parameter failures are returned before any call reaches client.
	// Read-only modules return their payload in EvaluationResult.Result
	// with RequiresAction false.
	Evaluate(ctx context.Context, client cloud.Client, task *config.Task) (*model.EvaluationResult, error)

	// Apply issues the mutating call planned by Evaluate. The engine only
	// calls it when Evaluate reported RequiresAction = true.
	Apply(ctx context.Context, client cloud.Client, evalResult *model.EvaluationResult, task *config.Task) (*model.TaskResult, error)
}
