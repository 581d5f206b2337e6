package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/artpar/stackwizard/internal/core/domain"
	"github.com/artpar/stackwizard/internal/core/manifest"
	"github.com/artpar/stackwizard/internal/core/validation"
)

var (
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#DC2626")).Bold(true)
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#CA8A04"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#16A34A"))
	boldStyle    = lipgloss.NewStyle().Bold(true)
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#9CA3AF"))
	headerStyle  = lipgloss.NewStyle().Bold(true).Underline(true)
)

// formatError returns a one-line styled error.
func formatError(title, detail string) string {
	return errorStyle.Render("Error: "+title) + " " + detail
}

// renderTemplates lists templates grouped by category. Categories keep their
// first-appearance order.
func renderTemplates(templates []domain.Template) string {
	var order []string
	groups := make(map[string][]domain.Template)
	for _, t := range templates {
		if _, ok := groups[t.Category]; !ok {
			order = append(order, t.Category)
		}
		groups[t.Category] = append(groups[t.Category], t)
	}

	var b strings.Builder
	for i, category := range order {
		if i > 0 {
			b.WriteString("\n")
		}
		if category == "" {
			category = "other"
		}
		b.WriteString(headerStyle.Render(category) + "\n")
		for _, t := range groups[order[i]] {
			kind := "single"
			if t.IsStack() {
				kind = fmt.Sprintf("stack of %d", len(t.Stack))
			}
			fmt.Fprintf(&b, "  %-12s %s %s\n", t.ID, boldStyle.Render(t.Name), dimStyle.Render("("+kind+")"))
		}
	}
	return b.String()
}

// renderFindings prints one line per finding with a severity marker.
func renderFindings(findings validation.Findings) string {
	var b strings.Builder
	for _, f := range findings {
		var marker string
		switch f.Severity {
		case validation.SeverityError:
			marker = errorStyle.Render("ERR ")
		case validation.SeverityWarning:
			marker = warnStyle.Render("WARN")
		default:
			marker = successStyle.Render("OK  ")
		}
		fmt.Fprintf(&b, "  %s %s\n", marker, f.Message)
	}
	return b.String()
}

// renderSummary prints the manifest counts and verification outcome.
func renderSummary(s manifest.Summary, v *manifest.Verification) string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("Summary") + "\n")
	fmt.Fprintf(&b, "  services:  %d\n", s.ServiceCount)
	fmt.Fprintf(&b, "  networks:  %d\n", s.NetworkCount)
	fmt.Fprintf(&b, "  volumes:   %d\n", s.VolumeCount)
	fmt.Fprintf(&b, "  footprint: ~%d MB\n", s.EstimatedFootprintMB)
	if v != nil {
		if v.Valid {
			b.WriteString("  " + successStyle.Render("manifest verified") + "\n")
		} else {
			b.WriteString("  " + errorStyle.Render("manifest failed verification: "+v.Error) + "\n")
		}
	}
	return b.String()
}
