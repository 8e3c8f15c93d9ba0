// Package report prints the outcome of a processing run.
package report

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"

	"github.com/ziadkadry99/ideaflow/internal/backlog"
	"github.com/ziadkadry99/ideaflow/internal/processor"
)

// PrintSummary writes a human-readable summary of r to w. It is safe to
// call on a report from a run that stopped early.
func PrintSummary(w io.Writer, r *processor.Report, v *backlog.Vocabulary) {
	if v == nil {
		v = backlog.Spanish
	}
	bold := color.New(color.Bold).SprintFunc()
	cyan := color.New(color.FgCyan, color.Bold).SprintFunc()
	green := color.New(color.FgGreen).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()
	gray := color.New(color.FgHiBlack).SprintFunc()

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s %s\n", cyan("Run"), gray(r.RunID))
	if r.DryRun {
		fmt.Fprintln(w, yellow("DRY RUN - no files were modified"))
	}
	fmt.Fprintf(w, "  Engine:      %s\n", r.Engine)
	fmt.Fprintf(w, "  Ideas:       %d (%d pending)\n", r.Ideas, r.Pending)
	fmt.Fprintf(w, "  Stories:     %d existing\n", r.Stories)
	fmt.Fprintf(w, "  Duplicates:  %s\n", yellow(len(r.Duplicates)))
	fmt.Fprintf(w, "  Unique:      %d\n", r.Unique())
	fmt.Fprintf(w, "  Generated:   %s\n", green(len(r.Generated)))
	if len(r.Failures) > 0 {
		fmt.Fprintf(w, "  Failed:      %s\n", red(len(r.Failures)))
	}

	if len(r.Duplicates) > 0 {
		fmt.Fprintf(w, "\n%s\n", bold("Duplicate ideas"))
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "  IDEA\tTITLE\tSIMILAR TO\tSCORE\tREASON")
		for _, d := range r.Duplicates {
			fmt.Fprintf(tw, "  %s\t%s\t%s\t%.2f\t%s\n", d.IdeaID, truncate(d.IdeaTitle, 40), d.MatchID, d.Score, truncate(d.Reason, 60))
		}
		tw.Flush()
	}

	if len(r.Generated) > 0 {
		fmt.Fprintf(w, "\n%s\n", bold("Generated stories"))
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "  STORY\tFROM\tTITLE\tPOINTS\tPRIORITY\tEPIC")
		for _, g := range r.Generated {
			s := g.Story
			points := "-"
			if s.Estimate > 0 {
				points = fmt.Sprint(s.Estimate)
			}
			id := s.ID
			switch {
			case !g.Inserted && !r.DryRun:
				id = red(id + " (not inserted)")
			case g.Fallback:
				id = yellow(id + " (fallback)")
			}
			fmt.Fprintf(tw, "  %s\t%s\t%s\t%s\t%s\t%s\n", id, g.IdeaID, truncate(s.Title, 50), points, v.PriorityLabel(s.Priority), s.Epic)
		}
		tw.Flush()
	}

	if len(r.MissingSections) > 0 {
		fmt.Fprintf(w, "\n%s %s\n", yellow("Missing backlog sections for:"), strings.Join(r.MissingSections, ", "))
	}
	if len(r.Failures) > 0 {
		fmt.Fprintf(w, "\n%s\n", red("Failures"))
		for _, f := range r.Failures {
			fmt.Fprintf(w, "  - %s: %v\n", f.IdeaID, f.Err)
		}
	}

	if r.Usage.Calls > 0 {
		fmt.Fprintf(w, "\n  LLM calls:   %d (%d failed)\n", r.Usage.Calls, r.Usage.Failures)
		fmt.Fprintf(w, "  Tokens:      %d input, %d output\n", r.Usage.InputTokens, r.Usage.OutputTokens)
		if r.Usage.CostUSD > 0 {
			fmt.Fprintf(w, "  Est. cost:   $%.4f\n", r.Usage.CostUSD)
		}
	}
	fmt.Fprintf(w, "  Duration:    %s\n", r.Duration.Round(time.Millisecond))
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
