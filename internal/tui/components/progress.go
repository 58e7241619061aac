package components

import (
	"fmt"
	"math"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"
)

const progressWidth = 30

// Progress renders how many tasks of a run have finished.
type Progress struct {
	bar   progress.Model
	total int
}

// NewProgress creates a progress component for total tasks.
func NewProgress(total int) Progress {
	bar := progress.New(progress.WithDefaultGradient())
	bar.Width = progressWidth
	return Progress{bar: bar, total: total}
}

// Ratio returns the completed share of the run, capped at 1.
func (p Progress) Ratio(completed int) float64 {
	if p.total <= 0 {
		return 0
	}
	return math.Min(1.0, float64(completed)/float64(p.total))
}

// View renders the count label followed by the bar.
func (p Progress) View(completed int) string {
	label := lipgloss.NewStyle().Bold(true).Render(fmt.Sprintf("%d/%d", completed, p.total))
	return lipgloss.JoinHorizontal(lipgloss.Left, label, " ", p.bar.ViewAs(p.Ratio(completed)))
}
