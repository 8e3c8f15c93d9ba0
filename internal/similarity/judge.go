package similarity

import (
	"context"
	"fmt"

	"github.com/ziadkadry99/ideaflow/internal/backlog"
	"github.com/ziadkadry99/ideaflow/internal/llm"
)

// LLMJudge asks a language model for a similarity score and a reason.
type LLMJudge struct {
	provider llm.Provider
	model    string
	vocab    *backlog.Vocabulary
	prompts  comparePrompts
}

// NewLLMJudge creates a judge. v selects the prompt language and labels.
func NewLLMJudge(provider llm.Provider, model string, v *backlog.Vocabulary) *LLMJudge {
	return &LLMJudge{provider: provider, model: model, vocab: v, prompts: promptsFor(v)}
}

type verdictResponse struct {
	SimilarityScore *float64 `json:"similarity_score" validate:"required,gte=0,lte=1"`
	// IsDuplicate is accepted but ignored; the flag is derived from the score.
	IsDuplicate bool   `json:"is_duplicate"`
	Reason      string `json:"reason"`
}

func (j *LLMJudge) Compare(ctx context.Context, source, candidate backlog.Record) (Verdict, error) {
	user := fmt.Sprintf(j.prompts.user,
		source.RecordID(), source.PromptBlock(j.vocab),
		candidate.RecordID(), candidate.PromptBlock(j.vocab))

	resp, err := j.provider.Complete(ctx, llm.CompletionRequest{
		Model:       j.model,
		Messages:    llm.SystemAndUser(j.prompts.system, user),
		MaxTokens:   512,
		Temperature: 0.3,
		JSONMode:    true,
	})
	if err != nil {
		return Verdict{}, fmt.Errorf("compare %s with %s: %w", source.RecordID(), candidate.RecordID(), err)
	}

	var out verdictResponse
	if err := llm.DecodeJSON(resp.Content, &out); err != nil {
		return Verdict{}, fmt.Errorf("compare %s with %s: %w", source.RecordID(), candidate.RecordID(), err)
	}
	return Verdict{Score: *out.SimilarityScore, Reason: out.Reason}, nil
}

type comparePrompts struct {
	system string
	// user takes source id, source block, candidate id, candidate block.
	user string
}

func promptsFor(v *backlog.Vocabulary) comparePrompts {
	if v != nil && v.Language == "en" {
		return englishPrompts
	}
	return spanishPrompts
}

var spanishPrompts = comparePrompts{
	system: "Eres un asistente experto en análisis de requerimientos de software. " +
		"Tu tarea es identificar ideas duplicadas o muy similares en un backlog de producto.",
	user: `Analiza si estas dos descripciones representan la misma idea o funcionalidad.

ELEMENTO NUEVO (%s):
%s

ELEMENTO EXISTENTE (%s):
%s

Por favor:
1. Determina si son duplicadas o muy similares
2. Da un score de similitud entre 0.0 y 1.0
3. Explica brevemente por qué son similares o diferentes

Responde en formato JSON:
{"similarity_score": 0.85, "is_duplicate": true, "reason": "Ambas tratan sobre..."}`,
}

var englishPrompts = comparePrompts{
	system: "You are an expert software requirements analyst. " +
		"Your job is to find duplicate or near-duplicate ideas in a product backlog.",
	user: `Decide whether these two descriptions describe the same idea or feature.

NEW ITEM (%s):
%s

EXISTING ITEM (%s):
%s

Please:
1. Decide whether they are duplicates or very similar
2. Give a similarity score between 0.0 and 1.0
3. Briefly explain why they are similar or different

Answer in JSON:
{"similarity_score": 0.85, "is_duplicate": true, "reason": "Both are about..."}`,
}
