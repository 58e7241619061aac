package config

import (
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	apperrors "github.com/alexisbeaulieu97/otctasks/pkg/errors"
)

var (
	validatorOnce sync.Once
	validateInst  *validator.Validate

	semverPattern = regexp.MustCompile(`^\d+\.\d+(?:\.\d+)?(?:-[0-9A-Za-z-.]+)?(?:\+[0-9A-Za-z-.]+)?$`)
	taskIDPattern = regexp.MustCompile(`^[a-z0-9_-]+$`)
)

func validatorInstance() *validator.Validate {
	validatorOnce.Do(func() {
		v := validator.New()

		_ = v.RegisterValidation("semver", func(fl validator.FieldLevel) bool {
			return semverPattern.MatchString(fl.Field().String())
		})

		_ = v.RegisterValidation("task_id", func(fl validator.FieldLevel) bool {
			return taskIDPattern.MatchString(fl.Field().String())
		})

		validateInst = v
	})

	return validateInst
}

// ValidatePlaybook performs schema and cross-task validation.
func ValidatePlaybook(pb *Playbook) error {
	if pb == nil {
		return apperrors.NewValidationError("playbook", "playbook is nil", nil)
	}

	if err := validatorInstance().Struct(pb); err != nil {
		return convertValidationError(err)
	}

	index := make(map[string]int, len(pb.Tasks))
	for i, task := range pb.Tasks {
		if _, exists := index[task.ID]; exists {
			return apperrors.NewValidationError(fieldForTask(i, "id"), fmt.Sprintf("duplicate task id %q", task.ID), nil)
		}
		index[task.ID] = i
	}

	for i, task := range pb.Tasks {
		for _, dep := range task.DependsOn {
			if _, ok := index[dep]; !ok {
				return apperrors.NewValidationError(fieldForTask(i, "depends_on"), fmt.Sprintf("references unknown task %q", dep), nil)
			}
		}
	}

	if cycle := detectCycle(pb.Tasks); len(cycle) > 0 {
		return apperrors.NewValidationError("tasks", fmt.Sprintf("dependency cycle detected: %s", strings.Join(cycle, " -> ")), nil)
	}

	return nil
}

// convertValidationError normalizes validator errors into validation errors.
func convertValidationError(err error) error {
	if ves, ok := err.(validator.ValidationErrors); ok {
		ve := ves[0]
		field := yamlishFieldName(ve)
		msg := fmt.Sprintf("%s failed validation for tag '%s'", field, ve.Tag())
		return apperrors.NewValidationError(field, msg, err)
	}

	return apperrors.NewValidationError("playbook", err.Error(), err)
}

func yamlishFieldName(fe validator.FieldError) string {
	parts := strings.Split(fe.StructNamespace(), ".")
	lowered := make([]string, 0, len(parts))
	for _, part := range parts[1:] {
		lowered = append(lowered, strings.ToLower(part))
	}
	if len(lowered) == 0 {
		return strings.ToLower(parts[0])
	}
	return strings.Join(lowered, ".")
}

func fieldForTask(index int, field string) string {
	return fmt.Sprintf("tasks[%d].%s", index, field)
}
