package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"mapcheck/internal/validation"
)

// Report colors. Semantic only: red blocks, yellow advises, green passes.
var (
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#e53935")).Bold(true)
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFC107"))
	okStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#8BC34A")).Bold(true)
	headerStyle  = lipgloss.NewStyle().Bold(true).Underline(true)
	compStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#2196F3"))
	subtleStyle  = lipgloss.NewStyle().Faint(true)
	summaryStyle = lipgloss.NewStyle().PaddingLeft(2)
)

// renderReport renders one validation result for a terminal.
func renderReport(name string, result validation.Result) string {
	var b strings.Builder

	title := name
	if title == "" {
		title = "(unnamed mapping)"
	}
	b.WriteString(headerStyle.Render("Mapping: "+title) + "\n")

	if !result.Success {
		b.WriteString(errorStyle.Render("VALIDATION FAILED") + "\n")
		for _, issue := range result.Errors {
			b.WriteString("  " + errorStyle.Render("✗") + " " + issue.Message + "\n")
		}
		return b.String()
	}

	switch {
	case result.Valid && result.Summary.TotalIssues == 0:
		b.WriteString(okStyle.Render("VALID") + subtleStyle.Render(" (no issues)") + "\n")
	case result.Valid:
		b.WriteString(okStyle.Render("VALID") + warnStyle.Render(fmt.Sprintf(" (%d warnings)", result.Summary.WarningCount)) + "\n")
	default:
		b.WriteString(errorStyle.Render("INVALID") + "\n")
	}

	for _, issue := range result.Issues {
		var mark string
		if issue.Severity == validation.SeverityError {
			mark = errorStyle.Render("✗ ERROR")
		} else {
			mark = warnStyle.Render("! WARN ")
		}
		b.WriteString(fmt.Sprintf("  %s %s %s\n",
			mark,
			compStyle.Render("["+issue.Component+"]"),
			issue.Message))
	}

	b.WriteString(summaryStyle.Render(fmt.Sprintf(
		"%d issues (%d errors, %d warnings), %d aliases, %d target fields, pk=%v",
		result.Summary.TotalIssues,
		result.Summary.ErrorCount,
		result.Summary.WarningCount,
		len(result.Summary.DefinedAliases),
		result.Summary.TargetFieldCount,
		result.Summary.HasPrimaryKey)) + "\n")

	return b.String()
}
