package generator

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ziadkadry99/ideaflow/internal/backlog"
	"github.com/ziadkadry99/ideaflow/internal/llm/llmtest"
)

func sampleIdea() *backlog.Idea {
	return &backlog.Idea{
		ID:       "ID-004",
		Title:    "Export to CSV",
		Context:  "Finance team",
		Problem:  "Manual copy of reports",
		Value:    "Saves hours per week",
		Status:   "💭 Needs refinement",
		Priority: backlog.PriorityLow,
	}
}

const validStory = `{
  "title": "Export reports",
  "as_a": "finance analyst",
  "i_want": "to export reports as CSV",
  "so_that": "I can analyse them offline",
  "acceptance_criteria": ["A download button exists", "The file opens in a spreadsheet"],
  "estimation": 3,
  "epic": "Reporting",
  "priority": "High 🔴",
  "affected_services": ["Reports API"],
  "technical_notes": ["Stream large files"]
}`

func TestGenerate_ParsesModelOutput(t *testing.T) {
	mock := llmtest.NewMockProvider("test")
	mock.Response = llmtest.Text(validStory)

	g := New(mock, "gpt-4o", backlog.English, nil)
	story, fellBack := g.Generate(context.Background(), sampleIdea(), "US-006")

	require.False(t, fellBack)
	assert.Equal(t, "US-006", story.ID)
	assert.Equal(t, "Export reports", story.Title)
	assert.Equal(t, "finance analyst", story.AsA)
	assert.Equal(t, 3, story.Estimate)
	assert.Equal(t, "Reporting", story.Epic)
	assert.Equal(t, backlog.PriorityHigh, story.Priority)
	assert.Equal(t, []string{"Reports API"}, story.Services)
	assert.Equal(t, "To Do", story.Status)
	require.Len(t, story.Criteria, 2)
	assert.False(t, story.Criteria[0].Completed)

	req := mock.Calls[0]
	assert.True(t, req.JSONMode)
	assert.InDelta(t, 0.5, req.Temperature, 1e-9)
	assert.Contains(t, req.Messages[1].Content, "Original priority: Low 🟢")
	assert.Contains(t, req.Messages[1].Content, "ID: ID-004")
}

func TestGenerate_PriorityFallsBackToIdea(t *testing.T) {
	mock := llmtest.NewMockProvider("test")
	mock.Response = llmtest.Text(`{"as_a": "user", "i_want": "x", "acceptance_criteria": ["c"], "priority": "urgent-ish"}`)

	story, fellBack := New(mock, "m", backlog.English, nil).Generate(context.Background(), sampleIdea(), "US-001")
	require.False(t, fellBack)
	assert.Equal(t, backlog.PriorityLow, story.Priority)
	assert.Equal(t, "Export to CSV", story.Title)
}

func TestGenerate_OffScaleEstimateIsDropped(t *testing.T) {
	mock := llmtest.NewMockProvider("test")
	mock.Response = llmtest.Text(`{"as_a": "user", "i_want": "x", "acceptance_criteria": ["c"], "estimation": 4}`)

	story, fellBack := New(mock, "m", backlog.Spanish, nil).Generate(context.Background(), sampleIdea(), "US-001")
	require.False(t, fellBack)
	assert.Zero(t, story.Estimate)
}

func TestGenerate_CleansListsForTheBacklog(t *testing.T) {
	mock := llmtest.NewMockProvider("test")
	mock.Response = llmtest.Text(`{"as_a": "user", "i_want": "x", "acceptance_criteria": ["c"],
		"affected_services": ["Reports API", "Auth, Billing", "Reports API", ""],
		"technical_notes": ["first", "", "second\nline"]}`)

	story, fellBack := New(mock, "m", backlog.English, nil).Generate(context.Background(), sampleIdea(), "US-001")
	require.False(t, fellBack)
	assert.Equal(t, []string{"Reports API", "Auth", "Billing"}, story.Services)
	assert.Equal(t, []string{"first", "second line"}, story.Notes)

	parsed := backlog.ParseUserStories(story.Markdown(backlog.English), backlog.English)
	require.Len(t, parsed, 1)
	assert.Equal(t, story.Services, parsed[0].Services)
	assert.Equal(t, story.Notes, parsed[0].Notes)
}

func TestGenerate_FallsBack(t *testing.T) {
	tests := []struct {
		name    string
		content string
		err     error
	}{
		{name: "provider error", err: errors.New("boom")},
		{name: "not json", content: "I cannot help with that"},
		{name: "missing criteria", content: `{"as_a": "user", "i_want": "x"}`},
		{name: "empty criterion", content: `{"as_a": "user", "i_want": "x", "acceptance_criteria": [""]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := llmtest.NewMockProvider("test")
			mock.Response = llmtest.Text(tt.content)
			mock.Err = tt.err

			story, fellBack := New(mock, "m", backlog.English, nil).Generate(context.Background(), sampleIdea(), "US-009")
			assert.True(t, fellBack)
			assert.Equal(t, Fallback(sampleIdea(), "US-009", backlog.English), story)
		})
	}
}

func TestFallback(t *testing.T) {
	story := Fallback(sampleIdea(), "US-012", backlog.Spanish)

	assert.Equal(t, "US-012", story.ID)
	assert.Equal(t, "Export to CSV", story.Title)
	assert.Equal(t, "usuario del sistema", story.AsA)
	assert.Equal(t, "implementar la siguiente idea: Export to CSV", story.IWant)
	assert.Equal(t, "Saves hours per week", story.SoThat)
	assert.Equal(t, 5, story.Estimate)
	assert.Equal(t, "Por Definir", story.Epic)
	assert.Equal(t, backlog.PriorityLow, story.Priority)
	assert.Equal(t, "To Do", story.Status)
	assert.Equal(t, []backlog.AcceptanceCriterion{
		{Text: "Resuelve el problema: Manual copy of reports"},
		{Text: "Proporciona el valor: Saves hours per week"},
	}, story.Criteria)
	assert.Equal(t, []string{
		"Esta historia fue generada automáticamente desde ID-004",
		"Requiere refinamiento manual",
	}, story.Notes)
}
