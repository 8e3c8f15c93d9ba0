package similarity

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ziadkadry99/ideaflow/internal/backlog"
	"github.com/ziadkadry99/ideaflow/internal/embeddings/embedtest"
	"github.com/ziadkadry99/ideaflow/internal/llm"
	"github.com/ziadkadry99/ideaflow/internal/llm/llmtest"
	"github.com/ziadkadry99/ideaflow/internal/vectordb"
)

func TestCosine(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float64
	}{
		{"identical", []float32{1, 2, 3}, []float32{1, 2, 3}, 1},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0},
		{"opposite", []float32{1, 0}, []float32{-1, 0}, -1},
		{"zero left", []float32{0, 0}, []float32{1, 1}, 0},
		{"zero right", []float32{1, 1}, []float32{0, 0}, 0},
		{"empty", nil, nil, 0},
		{"nan", []float32{float32(math.NaN()), 1}, []float32{1, 1}, 0},
		{"length mismatch", []float32{1, 0}, []float32{1, 0, 5}, 0},
		{"length mismatch reversed", []float32{1, 0, 5}, []float32{1, 0}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Cosine(tt.a, tt.b), 1e-6)
		})
	}
}

func TestIsDuplicate(t *testing.T) {
	assert.True(t, IsDuplicate(0.85, 0.80))
	assert.False(t, IsDuplicate(0.85, 0.90))
	assert.True(t, IsDuplicate(0.80, 0.80))
	assert.False(t, IsDuplicate(0.0, 0.80))
	assert.False(t, IsDuplicate(0.7999999995, 0.80))
	assert.True(t, IsDuplicate(1.0, 1.0))
}

// scriptedJudge returns fixed scores per candidate id.
type scriptedJudge struct {
	scores map[string]float64
	fail   map[string]bool
	asked  []string
}

func (s *scriptedJudge) Compare(_ context.Context, _, cand backlog.Record) (Verdict, error) {
	s.asked = append(s.asked, cand.RecordID())
	if s.fail[cand.RecordID()] {
		return Verdict{}, errors.New("network down")
	}
	return Verdict{Score: s.scores[cand.RecordID()], Reason: "scripted"}, nil
}

func idea(id, title string) *backlog.Idea {
	return &backlog.Idea{ID: id, Title: title}
}

func story(id, title string) *backlog.UserStory {
	return &backlog.UserStory{ID: id, Title: title}
}

func TestJudgeEngine_RanksAllCandidates(t *testing.T) {
	judge := &scriptedJudge{scores: map[string]float64{"US-001": 0.4, "US-002": 0.9, "ID-002": 0.9}}
	engine := New(judge, nil, Options{Threshold: 0.8})
	require.IsType(t, &JudgeEngine{}, engine)

	src := idea("ID-001", "a")
	pool := []backlog.Record{story("US-001", "x"), story("US-002", "y"), src, idea("ID-002", "z")}

	results, err := engine.FindSimilar(context.Background(), src, pool)
	require.NoError(t, err)
	require.Len(t, results, 3)

	// Stable: US-002 and ID-002 tie and keep pool order.
	assert.Equal(t, "US-002", results[0].MatchID)
	assert.Equal(t, "ID-002", results[1].MatchID)
	assert.Equal(t, "US-001", results[2].MatchID)
	assert.True(t, results[0].IsDuplicate)
	assert.False(t, results[2].IsDuplicate)
	assert.Equal(t, backlog.KindIdea, results[1].MatchKind)
	assert.NotContains(t, judge.asked, "ID-001")
}

func TestThresholdReclassifies(t *testing.T) {
	judge := &scriptedJudge{scores: map[string]float64{"US-001": 0.85}}
	src := idea("ID-001", "a")
	pool := []backlog.Record{story("US-001", "x")}

	at80, err := New(judge, nil, Options{Threshold: 0.80}).FindSimilar(context.Background(), src, pool)
	require.NoError(t, err)
	at90, err := New(judge, nil, Options{Threshold: 0.90}).FindSimilar(context.Background(), src, pool)
	require.NoError(t, err)

	assert.True(t, at80[0].IsDuplicate)
	assert.False(t, at90[0].IsDuplicate)
	assert.Equal(t, at80[0].Score, at90[0].Score)
}

func TestJudgeFailureSubstitutesZero(t *testing.T) {
	judge := &scriptedJudge{
		scores: map[string]float64{"US-002": 0.5},
		fail:   map[string]bool{"US-001": true},
	}
	engine := New(judge, nil, Options{Vocabulary: backlog.English})

	results, err := engine.FindSimilar(context.Background(), idea("ID-001", "a"),
		[]backlog.Record{story("US-001", "x"), story("US-002", "y")})
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, "US-002", results[0].MatchID)
	failed := results[1]
	assert.Equal(t, "US-001", failed.MatchID)
	assert.Zero(t, failed.Score)
	assert.False(t, failed.IsDuplicate)
	assert.Equal(t, backlog.English.ComparisonFailed, failed.Reason)
}

func newStore(t *testing.T, emb *embedtest.Embedder) *vectordb.Index {
	t.Helper()
	ix, err := vectordb.NewIndex(emb)
	require.NoError(t, err)
	return ix
}

func TestVectorEngine_ScreensBelowMargin(t *testing.T) {
	src := idea("ID-001", "source")
	near := story("US-001", "near")
	edge := story("US-002", "edge")
	far := story("US-003", "far")

	emb := embedtest.New(2)
	emb.Vectors[src.ComparisonText()] = []float32{1, 0}
	emb.Vectors[near.ComparisonText()] = []float32{0.95, 0.312} // cos ~0.95
	emb.Vectors[edge.ComparisonText()] = []float32{0.75, 0.661} // cos ~0.75
	emb.Vectors[far.ComparisonText()] = []float32{0.5, 0.866}   // cos ~0.5

	judge := &scriptedJudge{scores: map[string]float64{"US-001": 0.6, "US-002": 0.82, "US-003": 1}}
	engine := New(judge, newStore(t, emb), Options{Threshold: 0.8})
	require.IsType(t, &VectorEngine{}, engine)

	results, err := engine.FindSimilar(context.Background(), src, []backlog.Record{near, edge, far})
	require.NoError(t, err)

	assert.Equal(t, []string{"US-001", "US-002"}, judge.asked)
	require.Len(t, results, 2)
	// The judge's score wins over cosine.
	assert.Equal(t, "US-002", results[0].MatchID)
	assert.InDelta(t, 0.82, results[0].Score, 1e-9)
	assert.True(t, results[0].IsDuplicate)
	assert.False(t, results[1].IsDuplicate)
}

func TestVectorEngine_ZeroVectorNeverAdvances(t *testing.T) {
	src := idea("ID-001", "source")
	blank := story("US-001", "blank")

	emb := embedtest.New(2)
	emb.Vectors[src.ComparisonText()] = []float32{1, 0}
	emb.Vectors[blank.ComparisonText()] = []float32{0, 0}

	judge := &scriptedJudge{scores: map[string]float64{"US-001": 1}}
	results, err := New(judge, newStore(t, emb), Options{}).FindSimilar(context.Background(), src, []backlog.Record{blank})
	require.NoError(t, err)
	assert.Empty(t, results)
	assert.Empty(t, judge.asked)
}

func TestVectorEngine_EmbeddingFailureIsReturned(t *testing.T) {
	src := idea("ID-001", "source")
	emb := embedtest.New(4)
	emb.Fail[src.ComparisonText()] = true

	_, err := New(&scriptedJudge{}, newStore(t, emb), Options{}).FindSimilar(context.Background(), src, []backlog.Record{story("US-001", "x")})
	assert.ErrorIs(t, err, embedtest.ErrEmbed)
}

func TestLLMJudge_ParsesVerdict(t *testing.T) {
	mock := llmtest.NewMockProvider("test")
	mock.Response = llmtest.Text("```json\n{\"similarity_score\": 0.91, \"is_duplicate\": false, \"reason\": \"Ambas tratan sobre avisos\"}\n```")

	judge := NewLLMJudge(mock, "gpt-4o", backlog.Spanish)
	src := &backlog.Idea{ID: "ID-001", Title: "Avisos", Context: "ctx", Problem: "prob", Value: "val"}
	cand := &backlog.UserStory{ID: "US-002", Title: "Notificar", AsA: "cliente", Criteria: []backlog.AcceptanceCriterion{{Text: "c1"}}}

	v, err := judge.Compare(context.Background(), src, cand)
	require.NoError(t, err)
	assert.InDelta(t, 0.91, v.Score, 1e-9)
	assert.Equal(t, "Ambas tratan sobre avisos", v.Reason)

	require.Equal(t, 1, mock.CallCount())
	req := mock.Calls[0]
	assert.True(t, req.JSONMode)
	assert.InDelta(t, 0.3, req.Temperature, 1e-9)
	assert.Equal(t, "gpt-4o", req.Model)
	require.Len(t, req.Messages, 2)
	assert.Equal(t, llm.RoleSystem, req.Messages[0].Role)
	prompt := req.Messages[1].Content
	assert.Contains(t, prompt, "ELEMENTO NUEVO (ID-001)")
	assert.Contains(t, prompt, "Contexto: ctx")
	assert.Contains(t, prompt, "ELEMENTO EXISTENTE (US-002)")
	assert.Contains(t, prompt, "Como: cliente")
	assert.Contains(t, prompt, "- c1")
}

func TestLLMJudge_RejectsBadResponses(t *testing.T) {
	for _, content := range []string{
		`not json`,
		`{"reason": "no score"}`,
		`{"similarity_score": 1.7, "reason": "out of range"}`,
	} {
		mock := llmtest.NewMockProvider("test")
		mock.Response = llmtest.Text(content)
		_, err := NewLLMJudge(mock, "m", backlog.English).Compare(context.Background(), idea("ID-001", "a"), story("US-001", "b"))
		assert.Error(t, err, content)
	}
}

func TestLLMJudge_ProviderErrorBecomesZeroVerdict(t *testing.T) {
	mock := llmtest.NewMockProvider("test")
	mock.Err = errors.New("503 unavailable")

	engine := New(NewLLMJudge(mock, "m", backlog.Spanish), nil, Options{})
	results, err := engine.FindSimilar(context.Background(), idea("ID-001", "a"), []backlog.Record{story("US-001", "b")})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Zero(t, results[0].Score)
	assert.Equal(t, backlog.Spanish.ComparisonFailed, results[0].Reason)
}

func TestLLMJudge_EndToEndWithEngine(t *testing.T) {
	mock := llmtest.NewMockProvider("test")
	mock.Respond = func(req llm.CompletionRequest) (*llm.CompletionResponse, error) {
		score := 0.2
		if strings.Contains(req.Messages[1].Content, "EXISTING ITEM (US-007)") {
			score = 0.88
		}
		return llmtest.Text(fmt.Sprintf(`{"similarity_score": %.2f, "is_duplicate": true, "reason": "r"}`, score)), nil
	}

	engine := New(NewLLMJudge(mock, "m", backlog.English), nil, Options{Threshold: 0.8, Vocabulary: backlog.English})
	results, err := engine.FindSimilar(context.Background(), idea("ID-001", "a"),
		[]backlog.Record{story("US-001", "b"), story("US-007", "c")})
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "US-007", results[0].MatchID)
	assert.True(t, results[0].IsDuplicate)
	// is_duplicate from the model is ignored.
	assert.False(t, results[1].IsDuplicate)
}
