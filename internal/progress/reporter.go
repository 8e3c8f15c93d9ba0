// Package progress renders run progress on the terminal or in CI logs.
package progress

import (
	"fmt"
	"io"
	"os"

	"github.com/schollz/progressbar/v3"
)

// Reporter provides progress feedback while ideas are processed. A run
// has several stages, each with its own total.
type Reporter interface {
	Update(stage string, current, total int, message string)
	Finish()
}

// NewReporter returns a TerminalReporter if running in an interactive terminal,
// or a CIReporter if the CI environment variable is set.
func NewReporter() Reporter {
	if os.Getenv("CI") != "" || os.Getenv("GITHUB_ACTIONS") != "" {
		return &CIReporter{w: os.Stderr}
	}
	return &TerminalReporter{}
}

// TerminalReporter displays one progress bar per stage in the terminal.
type TerminalReporter struct {
	bar   *progressbar.ProgressBar
	stage string
}

func (r *TerminalReporter) Update(stage string, current, total int, message string) {
	if r.bar == nil || stage != r.stage {
		if r.bar != nil {
			_ = r.bar.Finish()
		}
		r.stage = stage
		r.bar = progressbar.NewOptions(total,
			progressbar.OptionSetDescription(stage),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionSetWidth(40),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
		)
	}
	r.bar.Describe(stage + " " + message)
	_ = r.bar.Set(current)
}

func (r *TerminalReporter) Finish() {
	if r.bar != nil {
		_ = r.bar.Finish()
	}
}

// CIReporter prints line-by-line progress suitable for CI logs.
type CIReporter struct {
	w io.Writer
}

// NewCIReporter returns a CIReporter writing to w.
func NewCIReporter(w io.Writer) *CIReporter {
	return &CIReporter{w: w}
}

func (r *CIReporter) Update(stage string, current, total int, message string) {
	fmt.Fprintf(r.w, "[%s %d/%d] %s\n", stage, current, total, message)
}

func (r *CIReporter) Finish() {
	fmt.Fprintln(r.w, "Processing complete")
}
