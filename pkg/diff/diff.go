// Package diff renders the difference between observed and desired resource
// attributes for check mode output.
package diff

import (
	"bytes"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/google/go-cmp/cmp"
	"github.com/sergi/go-diff/diffmatchpatch"
	"gopkg.in/yaml.v3"
)

const (
	maxDiffLines    = 10000
	truncateMessage = "... (diff truncated, exceeds 10,000 lines) ..."
)

// GenerateUnifiedDiff generates a unified diff comparing expected and actual content.
// Returns empty string if content is identical.
// Truncates diffs exceeding 10,000 lines with a truncation marker.
func GenerateUnifiedDiff(expected, actual []byte, expectedLabel, actualLabel string) string {
	if bytes.Equal(expected, actual) {
		return ""
	}

	dmp := diffmatchpatch.New()
	expectedStr := string(expected)
	actualStr := string(actual)

	a, b, lineArray := dmp.DiffLinesToChars(expectedStr, actualStr)
	diffs := dmp.DiffMain(a, b, false)
	diffs = dmp.DiffCharsToLines(diffs, lineArray)

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "--- %s\n", expectedLabel)
	fmt.Fprintf(&buf, "+++ %s\n", actualLabel)
	fmt.Fprintf(&buf, "@@ -1,%d +1,%d @@\n", countLines(expectedStr), countLines(actualStr))

	for _, d := range diffs {
		prefix := " "
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			prefix = "-"
		case diffmatchpatch.DiffInsert:
			prefix = "+"
		}
		for _, line := range splitLines(d.Text) {
			buf.WriteString(prefix)
			buf.WriteString(line)
			buf.WriteString("\n")
		}
	}

	result := buf.String()
	lines := strings.Split(result, "\n")
	if len(lines) > maxDiffLines {
		truncated := strings.Join(lines[:maxDiffLines], "\n")
		return truncated + "\n" + truncateMessage + "\n"
	}

	return result
}

// Fields returns the keys of desired whose values differ from observed, in
// lexical order. Keys missing from desired are never reported.
func Fields(observed, desired map[string]any) []string {
	var changed []string
	for key, want := range desired {
		have, ok := observed[key]
		if !ok || !Equal(have, want) {
			changed = append(changed, key)
		}
	}
	sort.Strings(changed)
	return changed
}

// Equal compares two attribute values. Scalars are compared in their string
// form so that 300 equals 300.0 and "300".
func Equal(a, b any) bool {
	if cmp.Equal(a, b) {
		return true
	}
	if scalar(a) && scalar(b) {
		return fmt.Sprint(a) == fmt.Sprint(b)
	}
	return false
}

// Attributes renders a unified diff of the keys of desired, as YAML, between
// observed and desired. A nil observed renders every key as an addition.
func Attributes(observed, desired map[string]any, observedLabel, desiredLabel string) (string, error) {
	before := make(map[string]any, len(desired))
	for key := range desired {
		if v, ok := observed[key]; ok {
			before[key] = v
		}
	}

	var expected []byte
	if observed != nil {
		out, err := yaml.Marshal(before)
		if err != nil {
			return "", fmt.Errorf("render observed attributes: %w", err)
		}
		expected = out
	}
	actual, err := yaml.Marshal(desired)
	if err != nil {
		return "", fmt.Errorf("render desired attributes: %w", err)
	}
	return GenerateUnifiedDiff(expected, actual, observedLabel, desiredLabel), nil
}

func scalar(v any) bool {
	if v == nil {
		return false
	}
	switch reflect.TypeOf(v).Kind() {
	case reflect.Map, reflect.Slice, reflect.Array, reflect.Struct, reflect.Ptr:
		return false
	default:
		return true
	}
}

func splitLines(text string) []string {
	if text == "" {
		return nil
	}
	return strings.Split(strings.TrimSuffix(text, "\n"), "\n")
}

func countLines(text string) int {
	return len(splitLines(text))
}
