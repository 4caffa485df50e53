// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jonathan/video-publisher/internal/batch"
	"github.com/jonathan/video-publisher/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
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

// PrintJob outputs a human-readable summary of a job before it runs.
func (p *Printer) PrintJob(job *types.VideoJob) {
	if job == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Platform: %s\n", job.Platform))
	sb.WriteString(fmt.Sprintf("Account:  %s\n", job.Account))
	sb.WriteString(fmt.Sprintf("Title:    %s\n", job.Title))
	sb.WriteString(fmt.Sprintf("File:     %s\n", job.FilePath))
	if len(job.Tags) > 0 {
		tags := strings.Join(job.Tags, ", ")
		if len(tags) > 40 {
			tags = tags[:37] + "..."
		}
		sb.WriteString(fmt.Sprintf("Tags:     %s\n", tags))
	}
	if job.Scheduled() {
		sb.WriteString(fmt.Sprintf("Publish:  %s\n", job.PublishAt.Format(time.RFC3339)))
	} else {
		sb.WriteString("Publish:  immediate\n")
	}
	if job.ThumbnailPath != "" {
		sb.WriteString(fmt.Sprintf("Cover:    %s\n", job.ThumbnailPath))
	}

	p.printBox("UPLOAD JOB", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintRunResult outputs one run's outcome with its terminal state.
func (p *Printer) PrintRunResult(r types.RunResult) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Run:      %s\n", r.RunID))
	sb.WriteString(fmt.Sprintf("Platform: %s\n", r.Platform))
	sb.WriteString(fmt.Sprintf("Status:   %s\n", statusLabel(r)))
	if r.FinalState != "" {
		sb.WriteString(fmt.Sprintf("State:    %s\n", r.FinalState))
	}
	if r.Kind != types.KindNone && r.Kind != "" {
		sb.WriteString(fmt.Sprintf("Reason:   %s\n", r.Kind))
	}
	if r.Err != nil {
		msg := r.Err.Error()
		if len(msg) > 48 {
			msg = msg[:45] + "..."
		}
		sb.WriteString(fmt.Sprintf("Error:    %s\n", msg))
	}
	sb.WriteString(fmt.Sprintf("Elapsed:  %s", r.Elapsed.Round(time.Millisecond)))

	p.printBox("RUN RESULT", sb.String())
}

// PrintBatchSummary outputs the batch totals and the first few failures.
func (p *Printer) PrintBatchSummary(s batch.Summary) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Jobs:        %d\n", s.Total))
	sb.WriteString(fmt.Sprintf("Confirmed:   %d\n", s.Confirmed))
	sb.WriteString(fmt.Sprintf("Unconfirmed: %d\n", s.Unconfirmed))
	sb.WriteString(fmt.Sprintf("Failed:      %d\n", s.Failed))
	sb.WriteString(fmt.Sprintf("Elapsed:     %s\n", s.Elapsed.Round(time.Second)))

	if len(s.Failures) > 0 {
		sb.WriteString("\nNot confirmed:\n")
		count := min(len(s.Failures), maxItemsToShow)
		for i := 0; i < count; i++ {
			f := s.Failures[i]
			sb.WriteString(fmt.Sprintf("  #%d %s", f.Index+1, f.Platform))
			if f.Title != "" {
				title := f.Title
				if len(title) > 24 {
					title = title[:21] + "..."
				}
				sb.WriteString(fmt.Sprintf(" %q", title))
			}
			sb.WriteString(fmt.Sprintf(" (%s)\n", f.Kind))
		}
		if len(s.Failures) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(s.Failures)-maxItemsToShow))
		}
	}

	p.printBox("BATCH SUMMARY", strings.TrimSuffix(sb.String(), "\n"))
}

func statusLabel(r types.RunResult) string {
	if r.Unconfirmed() {
		return string(r.Status) + " (publish issued, needs manual verification)"
	}
	return string(r.Status)
}
