package main

import (
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/phrazzld/quill-api/internal/domain"
	"github.com/phrazzld/quill-api/internal/domain/srs"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#C89A3A"))
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1).Foreground(lipgloss.Color("#F0F0F0"))
	cellStyle   = lipgloss.NewStyle().Padding(0, 1).Foreground(lipgloss.Color("#B8B8B8"))
	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#4A4A4A"))
)

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		Headers(headers...)
}

func score(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64)
}

func days(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64) + "d"
}

func overallTable(points []domain.ScorePoint) string {
	t := newTable("Date", "Score")
	for _, p := range points {
		t.Row(p.Date.Format(time.DateOnly), score(p.Score))
	}
	return t.Render()
}

func subskillTable(points []domain.SubskillPoint) string {
	t := newTable("Date", "Grammar", "Phrasing", "Vocabulary")
	for _, p := range points {
		t.Row(p.Date.Format(time.DateOnly), score(p.Grammar), score(p.Phrasing), score(p.Vocabulary))
	}
	return t.Render()
}

func reviewTable(before srs.State, after srs.Result) string {
	return newTable("", "Before", "After").
		Row("Interval", days(before.Interval), days(after.Interval)).
		Row("Ease factor", strconv.FormatFloat(before.EaseFactor, 'f', 2, 64),
			strconv.FormatFloat(after.EaseFactor, 'f', 2, 64)).
		Row("Next review", "", after.NextReviewAt.Format(time.DateOnly)).
		Render()
}

func previewTable(iv srs.Intervals) string {
	return newTable("Forgot", "Good", "Easy").
		Row(days(iv.Forgot), days(iv.Good), days(iv.Easy)).
		Render()
}
