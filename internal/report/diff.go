package report

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/ziadkadry99/ideaflow/internal/processor"
)

// Diff renders a unified diff of one document change.
func Diff(c processor.Change) (string, error) {
	name := filepath.Base(c.Path)
	text, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(c.Before),
		B:        difflib.SplitLines(c.After),
		FromFile: "a/" + name,
		ToFile:   "b/" + name,
		Context:  3,
	})
	if err != nil {
		return "", fmt.Errorf("diff %s: %w", name, err)
	}
	return text, nil
}

// PrintDiffs writes the unified diff of every change in r.
func PrintDiffs(w io.Writer, r *processor.Report) error {
	for _, c := range r.Changes {
		text, err := Diff(c)
		if err != nil {
			return err
		}
		fmt.Fprintln(w)
		fmt.Fprint(w, text)
	}
	return nil
}
