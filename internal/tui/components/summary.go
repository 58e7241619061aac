package components

import (
	"fmt"
	"strings"

	"github.com/alexisbeaulieu97/otctasks/internal/model"
)

// SummaryData aggregates what the summary renders.
type SummaryData struct {
	Total     int
	Completed int
	Finished  bool
	Cancelled bool
	// Counts is set once the run reported its final summary.
	Counts *model.Summary
	Err    error
}

// Summary renders a textual run summary.
type Summary struct {
	data SummaryData
}

// NewSummary creates a new Summary component.
func NewSummary(data SummaryData) Summary {
	return Summary{data: data}
}

// View renders the summary.
func (s Summary) View() string {
	var lines []string
	if s.data.Total > 0 {
		lines = append(lines, fmt.Sprintf("Tasks: %d/%d completed", s.data.Completed, s.data.Total))
	}

	if c := s.data.Counts; c != nil {
		lines = append(lines, fmt.Sprintf("%d ok, %d changed, %d pending, %d skipped, %d failed",
			c.OK, c.Changed, c.Pending, c.Skipped, c.Failed))
	}

	switch {
	case s.data.Cancelled:
		lines = append(lines, "Run cancelled")
	case !s.data.Finished:
	case s.data.Err != nil:
		lines = append(lines, fmt.Sprintf("Run failed: %v", s.data.Err))
	case s.data.Total > 0 && s.data.Completed < s.data.Total:
		lines = append(lines, fmt.Sprintf("Run stopped with %d tasks not run", s.data.Total-s.data.Completed))
	case s.data.Total > 0:
		lines = append(lines, "Run finished successfully")
	}

	return strings.Join(lines, "\n")
}
