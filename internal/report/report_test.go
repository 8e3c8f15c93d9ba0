package report

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ziadkadry99/ideaflow/internal/backlog"
	"github.com/ziadkadry99/ideaflow/internal/llm"
	"github.com/ziadkadry99/ideaflow/internal/processor"
)

func init() {
	color.NoColor = true
}

func sampleReport() *processor.Report {
	return &processor.Report{
		RunID:   "run-1",
		Engine:  "judge",
		Ideas:   3,
		Stories: 2,
		Pending: 3,
		Duplicates: []processor.Duplicate{
			{IdeaID: "ID-001", IdeaTitle: "WhatsApp", MatchID: "US-002", Score: 0.87, Reason: "same channel"},
		},
		Generated: []processor.Generated{
			{IdeaID: "ID-004", Story: &backlog.UserStory{ID: "US-006", Title: "Dark mode", Estimate: 3, Priority: backlog.PriorityLow, Epic: "UI"}, Inserted: true},
			{IdeaID: "ID-005", Story: &backlog.UserStory{ID: "US-007", Title: "Exports", Priority: backlog.PriorityHigh}, Fallback: true},
		},
		Failures:        []processor.Failure{{IdeaID: "ID-009", Err: errors.New("timeout")}},
		MissingSections: []string{"US-007"},
		Usage:           llm.Usage{Calls: 4, InputTokens: 100, OutputTokens: 50, CostUSD: 0.0012},
		Duration:        1500 * time.Millisecond,
	}
}

func TestPrintSummary(t *testing.T) {
	var buf bytes.Buffer
	PrintSummary(&buf, sampleReport(), backlog.English)
	out := buf.String()

	assert.Contains(t, out, "Run run-1")
	assert.Contains(t, out, "Ideas:       3 (3 pending)")
	assert.Contains(t, out, "Duplicates:  1")
	assert.Contains(t, out, "Unique:      2")
	assert.Contains(t, out, "Generated:   2")
	assert.Contains(t, out, "Failed:      1")
	assert.Contains(t, out, "ID-001")
	assert.Contains(t, out, "0.87")
	assert.Contains(t, out, "US-006")
	assert.Contains(t, out, "Low 🟢")
	assert.Contains(t, out, "US-007 (not inserted)")
	assert.Contains(t, out, "Missing backlog sections for: US-007")
	assert.Contains(t, out, "ID-009: timeout")
	assert.Contains(t, out, "Tokens:      100 input, 50 output")
	assert.Contains(t, out, "$0.0012")
	assert.Contains(t, out, "Duration:    1.5s")
	assert.NotContains(t, out, "DRY RUN")
}

func TestPrintSummary_DryRunAndEmpty(t *testing.T) {
	var buf bytes.Buffer
	PrintSummary(&buf, &processor.Report{RunID: "r", DryRun: true}, nil)
	out := buf.String()

	assert.Contains(t, out, "DRY RUN")
	assert.NotContains(t, out, "Duplicate ideas")
	assert.NotContains(t, out, "LLM calls")
}

func TestDiff(t *testing.T) {
	text, err := Diff(processor.Change{
		Path:   "/tmp/x/IDEAS.md",
		Before: "a\nb\nc\n",
		After:  "a\nB\nc\n",
	})
	require.NoError(t, err)

	assert.Contains(t, text, "--- a/IDEAS.md")
	assert.Contains(t, text, "+++ b/IDEAS.md")
	assert.Contains(t, text, "-b\n")
	assert.Contains(t, text, "+B\n")
}

func TestPrintDiffs(t *testing.T) {
	r := &processor.Report{Changes: []processor.Change{
		{Path: "BACKLOG.md", Before: "x\n", After: "x\ny\n"},
		{Path: "IDEAS.md", Before: "1\n", After: "2\n"},
	}}
	var buf bytes.Buffer
	require.NoError(t, PrintDiffs(&buf, r))

	out := buf.String()
	assert.Equal(t, 2, strings.Count(out, "+++ "))
	assert.Contains(t, out, "+y")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcd…", truncate("abcdefgh", 5))
}
