// Package analyzer renders an engine.AnalyzeReport as a deterministic
// textual report (spec §8.2: steps, guards, transitions, dead-ends,
// unreachable steps, cycles). Styling is lipgloss-based and degrades to
// plain text when the destination is not a terminal.
package analyzer

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/alexisbeaulieu97/workflowengine/internal/engine"
)

// Formatter renders AnalyzeReport values. Color is only emitted when the
// Formatter was constructed with colorized=true (cmd/workflowctl decides
// this from golang.org/x/term.IsTerminal); otherwise every style collapses
// to plain text so redirected output and log captures stay readable.
type Formatter struct {
	header  lipgloss.Style
	section lipgloss.Style
	warn    lipgloss.Style
	bad     lipgloss.Style
	dim     lipgloss.Style
}

// New returns a Formatter styled for a terminal (colorized=true) or for a
// non-interactive destination such as a pipe or log file (colorized=false).
func New(colorized bool) *Formatter {
	plain := lipgloss.NewStyle()
	if !colorized {
		return &Formatter{header: plain, section: plain, warn: plain, bad: plain, dim: plain}
	}

	return &Formatter{
		header:  plain.Bold(true),
		section: plain.Bold(true).Underline(true),
		warn:    plain.Foreground(lipgloss.Color("3")),
		bad:     plain.Foreground(lipgloss.Color("1")),
		dim:     plain.Faint(true),
	}
}

// Render produces the full multi-section textual report for a workflow.
func (f *Formatter) Render(report engine.AnalyzeReport) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s\n", f.header.Render(fmt.Sprintf("Workflow: %s", report.WorkflowName)))
	fmt.Fprintf(&b, "%s\n\n", f.dim.Render(fmt.Sprintf("run %s | root %s", report.RunID, report.Root)))

	f.renderSteps(&b, report)
	f.renderTransitions(&b, report)
	f.renderDeadEnds(&b, report)
	f.renderUnreachable(&b, report)
	f.renderCycles(&b, report)

	return b.String()
}

func (f *Formatter) renderSteps(b *strings.Builder, report engine.AnalyzeReport) {
	fmt.Fprintf(b, "%s\n", f.section.Render("Steps"))
	if len(report.Steps) == 0 {
		fmt.Fprintf(b, "  %s\n", f.dim.Render("(none defined)"))
	}
	for _, s := range report.Steps {
		line := fmt.Sprintf("  %s (%s)", s.Name, s.Type)
		if len(s.Guards) > 0 {
			line += fmt.Sprintf(" guards=%s", strings.Join(s.Guards, ","))
		}
		if s.HasRetry {
			line += " [retry]"
		}
		fmt.Fprintln(b, line)
	}
	b.WriteString("\n")
}

func (f *Formatter) renderTransitions(b *strings.Builder, report engine.AnalyzeReport) {
	fmt.Fprintf(b, "%s\n", f.section.Render("Transitions"))
	if len(report.Transitions) == 0 {
		fmt.Fprintf(b, "  %s\n", f.dim.Render("(none declared)"))
	}
	for _, t := range report.Transitions {
		line := fmt.Sprintf("  %s -> %s", t.From, t.To)
		if t.Guard != "" {
			line += fmt.Sprintf(" [guard: %s, onFailure: %s]", t.Guard, t.OnFailureStrategy)
		}
		fmt.Fprintln(b, line)
	}
	b.WriteString("\n")
}

func (f *Formatter) renderDeadEnds(b *strings.Builder, report engine.AnalyzeReport) {
	if len(report.DeadEnds) == 0 {
		return
	}
	fmt.Fprintf(b, "%s\n", f.section.Render("Dead ends"))
	for _, name := range report.DeadEnds {
		fmt.Fprintf(b, "  %s\n", f.warn.Render(name))
	}
	b.WriteString("\n")
}

func (f *Formatter) renderUnreachable(b *strings.Builder, report engine.AnalyzeReport) {
	if len(report.UnreachableSteps) == 0 {
		return
	}
	fmt.Fprintf(b, "%s\n", f.section.Render("Unreachable steps"))
	for _, name := range report.UnreachableSteps {
		fmt.Fprintf(b, "  %s\n", f.warn.Render(name))
	}
	b.WriteString("\n")
}

func (f *Formatter) renderCycles(b *strings.Builder, report engine.AnalyzeReport) {
	if len(report.Cycles) == 0 {
		return
	}
	fmt.Fprintf(b, "%s\n", f.section.Render("Cycles"))
	for _, cycle := range report.Cycles {
		fmt.Fprintf(b, "  %s\n", f.bad.Render(strings.Join(cycle, " -> ")))
	}
	b.WriteString("\n")
}
