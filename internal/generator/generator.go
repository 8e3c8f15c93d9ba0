// Package generator turns an idea into a formal user story.
package generator

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/ziadkadry99/ideaflow/internal/backlog"
	"github.com/ziadkadry99/ideaflow/internal/llm"
)

// StoryGenerator drafts stories with an LLM and falls back to a templated
// story when the model fails or answers off-schema.
type StoryGenerator struct {
	provider llm.Provider
	model    string
	vocab    *backlog.Vocabulary
	prompts  storyPrompts
	log      *zap.Logger
}

// New creates a StoryGenerator. A nil logger discards output.
func New(provider llm.Provider, model string, v *backlog.Vocabulary, log *zap.Logger) *StoryGenerator {
	if v == nil {
		v = backlog.Spanish
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &StoryGenerator{provider: provider, model: model, vocab: v, prompts: promptsFor(v), log: log}
}

type storyResponse struct {
	Title              string   `json:"title"`
	AsA                string   `json:"as_a" validate:"required"`
	IWant              string   `json:"i_want" validate:"required"`
	SoThat             string   `json:"so_that"`
	AcceptanceCriteria []string `json:"acceptance_criteria" validate:"required,min=1,dive,required"`
	Estimation         int      `json:"estimation" validate:"gte=0"`
	Epic               string   `json:"epic"`
	Priority           string   `json:"priority"`
	AffectedServices   []string `json:"affected_services"`
	TechnicalNotes     []string `json:"technical_notes"`
}

// Generate returns a story with the given id. It never fails: on any LLM or
// schema error the fallback story is returned and fellBack is true.
func (g *StoryGenerator) Generate(ctx context.Context, idea *backlog.Idea, id string) (story *backlog.UserStory, fellBack bool) {
	story, err := g.draft(ctx, idea, id)
	if err != nil {
		g.log.Warn("story generation failed, using fallback",
			zap.String("idea", idea.ID),
			zap.String("story", id),
			zap.Error(err))
		return Fallback(idea, id, g.vocab), true
	}
	return story, false
}

func (g *StoryGenerator) draft(ctx context.Context, idea *backlog.Idea, id string) (*backlog.UserStory, error) {
	resp, err := g.provider.Complete(ctx, llm.CompletionRequest{
		Model:       g.model,
		Messages:    llm.SystemAndUser(g.prompts.system, g.userPrompt(idea)),
		MaxTokens:   2048,
		Temperature: 0.5,
		JSONMode:    true,
	})
	if err != nil {
		return nil, fmt.Errorf("llm completion: %w", err)
	}

	var out storyResponse
	if err := llm.DecodeJSON(resp.Content, &out); err != nil {
		return nil, err
	}

	story := &backlog.UserStory{
		ID:       id,
		Title:    out.Title,
		AsA:      out.AsA,
		IWant:    out.IWant,
		SoThat:   out.SoThat,
		Epic:     out.Epic,
		Priority: g.vocab.ParsePriority(out.Priority, idea.Priority),
		Services: backlog.CleanList(out.AffectedServices),
		Status:   g.vocab.DefaultStatus,
		Notes:    backlog.CleanNotes(out.TechnicalNotes),
	}
	if story.Title == "" {
		story.Title = idea.Title
	}
	if backlog.ValidEstimate(out.Estimation) {
		story.Estimate = out.Estimation
	} else if out.Estimation != 0 {
		g.log.Debug("estimate off scale dropped", zap.String("story", id), zap.Int("estimate", out.Estimation))
	}
	for _, c := range out.AcceptanceCriteria {
		story.Criteria = append(story.Criteria, backlog.AcceptanceCriterion{Text: c})
	}
	return story, nil
}

// Fallback builds the templated story used when generation fails.
func Fallback(idea *backlog.Idea, id string, v *backlog.Vocabulary) *backlog.UserStory {
	return &backlog.UserStory{
		ID:     id,
		Title:  idea.Title,
		AsA:    v.FallbackActor,
		IWant:  fmt.Sprintf(v.FallbackGoal, idea.Title),
		SoThat: idea.Value,
		Criteria: []backlog.AcceptanceCriterion{
			{Text: fmt.Sprintf(v.FallbackSolves, idea.Problem)},
			{Text: fmt.Sprintf(v.FallbackProvides, idea.Value)},
		},
		Estimate: 5,
		Epic:     v.FallbackEpic,
		Priority: idea.Priority,
		Status:   v.DefaultStatus,
		Notes: []string{
			fmt.Sprintf(v.FallbackGenerated, idea.ID),
			v.FallbackRefine,
		},
	}
}
