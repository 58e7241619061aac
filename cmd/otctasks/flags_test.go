package main

import (
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/alexisbeaulieu97/otctasks/internal/plugin"
	apperrors "github.com/alexisbeaulieu97/otctasks/pkg/errors"
)

func TestScalar(t *testing.T) {
	t.Parallel()

	tests := []struct {
		raw  string
		want any
	}{
		{raw: "300", want: 300},
		{raw: "true", want: true},
		{raw: "example.com.", want: "example.com."},
		{raw: "1.5", want: 1.5},
		{raw: "1.10", want: "1.10"},
		{raw: "-42", want: -42},
		{raw: "0123", want: "0123"},
		{raw: "007", want: "007"},
		{raw: "0x1F", want: "0x1F"},
		{raw: "1_000", want: "1_000"},
		{raw: "TRUE", want: "TRUE"},
		{raw: "", want: ""},
		{raw: "[a, b]", want: "[a, b]"},
		{raw: "a: b", want: "a: b"},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tt.want, scalar(tt.raw))
		})
	}
}

func TestCollectParams(t *testing.T) {
	t.Parallel()

	t.Run("pairs override file", func(t *testing.T) {
		t.Parallel()
		path := writeFile(t, "params.yaml", "name: example.com.\nttl: 600\n")
		got, err := collectParams(path, []string{"ttl=900", "email=dns@example.com"})
		require.NoError(t, err)
		require.Equal(t, map[string]any{"name": "example.com.", "ttl": 900, "email": "dns@example.com"}, got)
	})

	t.Run("value may contain equals", func(t *testing.T) {
		t.Parallel()
		got, err := collectParams("", []string{"filter=type == \"dashboard\""})
		require.NoError(t, err)
		require.Equal(t, `type == "dashboard"`, got["filter"])
	})

	t.Run("malformed pair", func(t *testing.T) {
		t.Parallel()
		_, err := collectParams("", []string{"=value"})
		var validationErr *apperrors.ValidationError
		require.ErrorAs(t, err, &validationErr)
		require.Equal(t, "param", validationErr.Field)
	})

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()
		_, err := collectParams(filepath.Join(t.TempDir(), "missing.yaml"), nil)
		require.ErrorContains(t, err, "does not exist")
	})
}

func TestValidateFileOption(t *testing.T) {
	t.Parallel()

	require.ErrorContains(t, validateFileOption("playbook", " "), "playbook file is required")
	require.ErrorContains(t, validateFileOption("playbook", t.TempDir()), "is a directory")
	require.NoError(t, validateFileOption("playbook", writeFile(t, "playbook.yaml", "name: x\n")))
}

func TestExitCode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "nil", err: nil, want: exitOK},
		{name: "plain", err: errors.New("boom"), want: exitError},
		{name: "settings validation", err: apperrors.NewValidationError("output", "must be one of json yaml table", nil), want: exitValidation},
		{name: "task validation", err: apperrors.NewExecutionError("run", plugin.NewValidationError("run", errors.New("name is required"))), want: exitValidation},
		{name: "wrapped", err: fmt.Errorf("run: %w", apperrors.NewNotFoundError("router", "main")), want: exitError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tt.want, exitCode(tt.err))
		})
	}
}

func TestCommandErrorUnwraps(t *testing.T) {
	t.Parallel()

	cause := apperrors.NewValidationError("cloud", "bad", nil)
	err := newCommandError("open the sandbox", "/tmp/x.db", cause, "Check the path.")
	require.ErrorIs(t, err, cause)
	require.Contains(t, err.Error(), "Suggestion: Check the path.")
	require.Equal(t, exitValidation, exitCode(err))
}
