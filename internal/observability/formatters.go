// Package observability provides logger construction and formatted console output.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/formfill/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 72
	// maxFailuresToShow caps the failure list in the summary
	maxFailuresToShow = 5
)

// Printer handles formatted output for the CLI
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	lines := strings.Split(content, "\n")
	for _, line := range lines {
		// Truncate long lines
		if len(line) > boxWidth-4 {
			line = line[:boxWidth-7] + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintFields lists the questions a scan found with their modality.
func (p *Printer) PrintFields(fields []types.ClassifiedField) {
	if len(fields) == 0 {
		p.printBox("CLASSIFIED FIELDS", "No questions found")
		return
	}

	var sb strings.Builder
	for _, f := range fields {
		sb.WriteString(fmt.Sprintf("%2d. [%-10s] %s\n", f.Position+1, f.Modality, f.QuestionText))
	}
	p.printBox(fmt.Sprintf("CLASSIFIED FIELDS (%d)", len(fields)), strings.TrimSuffix(sb.String(), "\n"))
}

// PrintPlan shows the answer each field would get and the rule that chose it.
func (p *Printer) PrintPlan(title string, plan []types.FillResult) {
	if len(plan) == 0 {
		p.printBox(title, "No questions found")
		return
	}

	var sb strings.Builder
	for i, r := range plan {
		sb.WriteString(fmt.Sprintf("%2d. %s\n", r.Field.Position+1, r.Field.QuestionText))
		if !r.Field.Modality.Fillable() {
			sb.WriteString(fmt.Sprintf("    %s, left for manual input\n", r.Field.Modality))
		} else {
			sb.WriteString(fmt.Sprintf("    %s -> %s  (%s)\n", r.Field.Modality, r.Value, r.Rule))
		}
		if i < len(plan)-1 {
			sb.WriteString("\n")
		}
	}
	p.printBox(title, strings.TrimSuffix(sb.String(), "\n"))
}

// PrintSummary outputs outcome counts for a fill pass and the first failures.
func (p *Printer) PrintSummary(report *types.FillReport) {
	if report == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Form:     %s\n", report.URL))
	sb.WriteString(fmt.Sprintf("Run:      %s\n", report.RunID))
	sb.WriteString(fmt.Sprintf("Elapsed:  %s\n\n", report.FinishedAt.Sub(report.StartedAt).Round(1e6)))
	sb.WriteString(fmt.Sprintf("Filled:   %d\n", report.Count(types.OutcomeFilled)))
	sb.WriteString(fmt.Sprintf("Skipped:  %d\n", report.Count(types.OutcomeSkipped)))
	sb.WriteString(fmt.Sprintf("Failed:   %d\n", report.Count(types.OutcomeFailed)))

	var failed []types.FillResult
	for _, r := range report.Results {
		if r.Outcome == types.OutcomeFailed {
			failed = append(failed, r)
		}
	}
	if len(failed) > 0 {
		sb.WriteString("\nFailures:\n")
		count := min(len(failed), maxFailuresToShow)
		for i := 0; i < count; i++ {
			sb.WriteString(fmt.Sprintf("  • %s (%s)\n", failed[i].Field.QuestionText, failed[i].Field.Modality))
		}
		if len(failed) > maxFailuresToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(failed)-maxFailuresToShow))
		}
	}

	p.printBox("FILL SUMMARY", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintReviewBanner tells the user the form is waiting for them.
func (p *Printer) PrintReviewBanner(autoSubmit bool) {
	var sb strings.Builder
	sb.WriteString("The form has been filled but NOT submitted.\n")
	sb.WriteString("Review every answer in the browser, then submit it yourself.\n")
	if autoSubmit {
		sb.WriteString("auto_submit is set in the config and is ignored.\n")
	}
	sb.WriteString("Press Ctrl+C here when you are done.")
	p.printBox("MANUAL REVIEW", sb.String())
}
