package plugin

import (
	"context"
	"fmt"
	"time"

	"github.com/alexisbeaulieu97/otctasks/internal/cloud"
	"github.com/alexisbeaulieu97/otctasks/internal/model"
	"github.com/alexisbeaulieu97/otctasks/internal/normalize"
	"github.com/alexisbeaulieu97/otctasks/internal/query"
	apperrors "github.com/alexisbeaulieu97/otctasks/pkg/errors"
)

// ListRecords lists kind with the query's server filters and keeps the
// records its client predicates accept.
func ListRecords(ctx context.Context, client cloud.Client, taskID string, kind cloud.Kind, q *query.Query) ([]cloud.Record, error) {
	records, err := client.List(ctx, kind, q.Server)
	if err != nil {
		return nil, NewStateError(taskID, apperrors.NewCollaboratorError("list", string(kind), err))
	}
	filtered, err := q.Apply(records)
	if err != nil {
		return nil, NewValidationError(taskID, err)
	}
	return filtered, nil
}

// QueryRecords builds q from supplied, lists kind and wraps the shaped
// records in a read-only evaluation.
func QueryRecords(ctx context.Context, client cloud.Client, taskID string, kind cloud.Kind, builder *query.Builder, supplied map[string]any, expression, key string) (*model.EvaluationResult, error) {
	q, err := builder.Build(supplied, expression)
	if err != nil {
		return nil, NewValidationError(taskID, err)
	}
	records, err := ListRecords(ctx, client, taskID, kind, q)
	if err != nil {
		return nil, err
	}
	return Queried(taskID, key, normalize.ShapedRecords(kind, records), fmt.Sprintf("%d %s found", len(records), kind)), nil
}

// Queried wraps the payload of a read-only module in an evaluation that
// needs no Apply.
func Queried(taskID, key string, payload any, message string) *model.EvaluationResult {
	return &model.EvaluationResult{
		TaskID:       taskID,
		CurrentState: model.StateQueried,
		Message:      message,
		Result:       model.Unchanged(key, payload),
	}
}

// ApplyQueried is the Apply of read-only modules. Info modules never need
// action so it only echoes the evaluation.
func ApplyQueried(eval *model.EvaluationResult) (*model.TaskResult, error) {
	if eval == nil {
		return nil, NewValidationError("", fmt.Errorf("evaluation result is nil"))
	}
	return &model.TaskResult{
		TaskID:    eval.TaskID,
		Status:    model.StatusOK,
		Message:   eval.Message,
		Result:    eval.Result,
		Timestamp: time.Now(),
	}, nil
}
