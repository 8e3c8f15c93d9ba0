package progress

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCIReporter(t *testing.T) {
	var buf bytes.Buffer
	r := NewCIReporter(&buf)
	r.Update("checking", 1, 2, "ID-001")
	r.Update("generating", 1, 1, "US-006")
	r.Finish()

	assert.Equal(t, "[checking 1/2] ID-001\n[generating 1/1] US-006\nProcessing complete\n", buf.String())
}

func TestNewReporterInCI(t *testing.T) {
	t.Setenv("CI", "true")
	_, ok := NewReporter().(*CIReporter)
	assert.True(t, ok)
}

func TestTerminalReporterSwitchesStages(t *testing.T) {
	t.Setenv("CI", "")
	t.Setenv("GITHUB_ACTIONS", "")
	r, ok := NewReporter().(*TerminalReporter)
	if !assert.True(t, ok) {
		return
	}
	r.Update("checking", 1, 2, "ID-001")
	first := r.bar
	r.Update("checking", 2, 2, "ID-004")
	assert.Same(t, first, r.bar)
	r.Update("generating", 1, 1, "US-006")
	assert.NotSame(t, first, r.bar)
	assert.Equal(t, "generating", r.stage)
	r.Finish()
}
