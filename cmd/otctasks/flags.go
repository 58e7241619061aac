package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/alexisbeaulieu97/otctasks/internal/config"
	apperrors "github.com/alexisbeaulieu97/otctasks/pkg/errors"
)

func validateFileOption(name, path string) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("%s file is required", name)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolve %s path: %w", name, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return fmt.Errorf("%s file does not exist: %w", name, err)
	}
	if info.IsDir() {
		return fmt.Errorf("%s path %s is a directory", name, abs)
	}

	return nil
}

// collectParams merges the params file, if any, with key=value pairs.
// Pairs win over the file. Values are read as YAML scalars so that
// ttl=300 is a number and enabled=true a boolean.
func collectParams(paramsFile string, pairs []string) (map[string]any, error) {
	out := map[string]any{}
	if paramsFile != "" {
		if err := validateFileOption("params", paramsFile); err != nil {
			return nil, err
		}
		fromFile, err := config.ParseParams(paramsFile)
		if err != nil {
			return nil, err
		}
		for k, v := range fromFile {
			out[k] = v
		}
	}

	for _, pair := range pairs {
		key, raw, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, apperrors.NewValidationError("param", fmt.Sprintf("expected key=value, got %q", pair), nil)
		}
		out[key] = scalar(raw)
	}
	return out, nil
}

func scalar(raw string) any {
	if raw == "" {
		return ""
	}
	var v any
	if err := yaml.Unmarshal([]byte(raw), &v); err != nil {
		return raw
	}
	switch typed := v.(type) {
	case map[string]any, []any:
		return raw
	case float64:
		// 1.10 must not become 1.1
		if strconv.FormatFloat(typed, 'f', -1, 64) != raw {
			return raw
		}
		return typed
	case int:
		// 0123, 0x1F and 1_000 are kept as written
		if strconv.Itoa(typed) != raw {
			return raw
		}
		return typed
	case uint64:
		if strconv.FormatUint(typed, 10) != raw {
			return raw
		}
		return typed
	case bool:
		if strconv.FormatBool(typed) != raw {
			return raw
		}
		return typed
	default:
		return v
	}
}
