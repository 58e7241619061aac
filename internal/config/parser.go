package config

import (
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"

	apperrors "github.com/alexisbeaulieu97/otctasks/pkg/errors"
)

var yamlLineRegex = regexp.MustCompile(`line (\d+)`)

// ParsePlaybook loads a playbook from disk, validates it, and returns it.
func ParsePlaybook(path string) (*Playbook, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, apperrors.NewParseError(path, 0, err)
	}
	return Parse(data, path)
}

// Parse decodes and validates playbook YAML. path is only used in errors.
func Parse(data []byte, path string) (*Playbook, error) {
	var pb Playbook
	if err := yaml.Unmarshal(data, &pb); err != nil {
		return nil, apperrors.NewParseError(path, extractLine(err), err)
	}

	if err := ValidatePlaybook(&pb); err != nil {
		return nil, err
	}

	return &pb, nil
}

// ParseParams loads a flat parameter map from a YAML or JSON file.
func ParseParams(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, apperrors.NewParseError(path, 0, err)
	}

	var params map[string]any
	if err := yaml.Unmarshal(data, &params); err != nil {
		return nil, apperrors.NewParseError(path, extractLine(err), err)
	}
	if params == nil {
		params = map[string]any{}
	}
	return params, nil
}

func extractLine(err error) int {
	if err == nil {
		return 0
	}

	matches := yamlLineRegex.FindStringSubmatch(err.Error())
	if len(matches) != 2 {
		return 0
	}

	var line int
	_, scanErr := fmt.Sscanf(matches[1], "%d", &line)
	if scanErr != nil {
		return 0
	}

	return line
}
