// Package similarity decides whether a record duplicates an existing one.
//
// Two engines share one contract. The vector engine screens candidates by
// embedding cosine and asks the judge only about those within a margin of
// the threshold. The judge engine, used when no embedder is configured,
// asks the judge about every candidate. In both, the judge's score is the
// result score and the duplicate flag is IsDuplicate(score, threshold).
package similarity

import (
	"context"
	"sort"

	"go.uber.org/zap"

	"github.com/ziadkadry99/ideaflow/internal/backlog"
	"github.com/ziadkadry99/ideaflow/internal/vectordb"
)

const (
	// DefaultThreshold is the judge score at which two records are duplicates.
	DefaultThreshold = 0.80
	// ScreenMargin is how far below the threshold a cosine may fall and
	// still reach the judge.
	ScreenMargin = 0.1

	// screenEpsilon absorbs rounding in threshold - ScreenMargin.
	screenEpsilon = 1e-9
)

// Result is the verdict on one candidate.
type Result struct {
	SourceID    string
	MatchID     string
	MatchKind   backlog.Kind
	Score       float64
	IsDuplicate bool
	Reason      string
}

// Engine ranks a pool of candidates against a source record. Results are
// sorted by descending score; ties keep pool order.
type Engine interface {
	FindSimilar(ctx context.Context, source backlog.Record, pool []backlog.Record) ([]Result, error)
	Name() string
}

// Verdict is a judge's opinion on one pair.
type Verdict struct {
	Score  float64
	Reason string
}

// Judge compares two records qualitatively.
type Judge interface {
	Compare(ctx context.Context, source, candidate backlog.Record) (Verdict, error)
}

// VectorStore serves one embedding per record.
type VectorStore interface {
	Upsert(ctx context.Context, docs []vectordb.Document) (int, error)
	Vector(ctx context.Context, id string) ([]float32, error)
	Name() string
}

// Options configures an engine.
type Options struct {
	Threshold  float64
	Vocabulary *backlog.Vocabulary
	Logger     *zap.Logger
}

// IsDuplicate is the only place a duplicate verdict is derived.
func IsDuplicate(score, threshold float64) bool {
	return score >= threshold
}

// New returns a VectorEngine when store is non-nil and a JudgeEngine otherwise.
func New(judge Judge, store VectorStore, opts Options) Engine {
	base := newJudging(judge, opts)
	if store == nil {
		return &JudgeEngine{judging: base}
	}
	return &VectorEngine{judging: base, store: store}
}

// judging holds what both engines share: Stage 2 and result ordering.
type judging struct {
	judge     Judge
	threshold float64
	vocab     *backlog.Vocabulary
	log       *zap.Logger
}

func newJudging(judge Judge, opts Options) judging {
	j := judging{judge: judge, threshold: opts.Threshold, vocab: opts.Vocabulary, log: opts.Logger}
	if j.threshold <= 0 {
		j.threshold = DefaultThreshold
	}
	if j.vocab == nil {
		j.vocab = backlog.Spanish
	}
	if j.log == nil {
		j.log = zap.NewNop()
	}
	return j
}

// verdict asks the judge about one pair. A failed comparison scores 0 with
// a fixed reason so one bad call never aborts the ranking.
func (j judging) verdict(ctx context.Context, source, candidate backlog.Record) Result {
	r := Result{
		SourceID:  source.RecordID(),
		MatchID:   candidate.RecordID(),
		MatchKind: candidate.Kind(),
	}
	v, err := j.judge.Compare(ctx, source, candidate)
	if err != nil {
		j.log.Warn("comparison failed",
			zap.String("source", r.SourceID),
			zap.String("candidate", r.MatchID),
			zap.Error(err))
		r.Reason = j.vocab.ComparisonFailed
		return r
	}
	r.Score = v.Score
	r.Reason = v.Reason
	r.IsDuplicate = IsDuplicate(v.Score, j.threshold)
	return r
}

func rank(results []Result) []Result {
	sort.SliceStable(results, func(a, b int) bool {
		return results[a].Score > results[b].Score
	})
	return results
}

// JudgeEngine sends every candidate to the judge.
type JudgeEngine struct {
	judging
}

func (e *JudgeEngine) Name() string { return "judge" }

func (e *JudgeEngine) FindSimilar(ctx context.Context, source backlog.Record, pool []backlog.Record) ([]Result, error) {
	var results []Result
	for _, cand := range pool {
		if cand.RecordID() == source.RecordID() {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		results = append(results, e.verdict(ctx, source, cand))
	}
	return rank(results), nil
}

// VectorEngine screens candidates by cosine similarity before judging.
type VectorEngine struct {
	judging
	store VectorStore
}

func (e *VectorEngine) Name() string { return "vector+judge (" + e.store.Name() + ")" }

func (e *VectorEngine) FindSimilar(ctx context.Context, source backlog.Record, pool []backlog.Record) ([]Result, error) {
	docs := make([]vectordb.Document, 0, len(pool)+1)
	docs = append(docs, toDocument(source))
	for _, cand := range pool {
		docs = append(docs, toDocument(cand))
	}
	if _, err := e.store.Upsert(ctx, docs); err != nil {
		return nil, err
	}

	srcVec, err := e.store.Vector(ctx, source.RecordID())
	if err != nil {
		return nil, err
	}

	cutoff := e.threshold - ScreenMargin
	var results []Result
	for _, cand := range pool {
		if cand.RecordID() == source.RecordID() {
			continue
		}
		vec, err := e.store.Vector(ctx, cand.RecordID())
		if err != nil {
			return nil, err
		}
		cos := Cosine(srcVec, vec)
		if cos+screenEpsilon < cutoff {
			e.log.Debug("screened out",
				zap.String("source", source.RecordID()),
				zap.String("candidate", cand.RecordID()),
				zap.Float64("cosine", cos))
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		results = append(results, e.verdict(ctx, source, cand))
	}
	return rank(results), nil
}

func toDocument(r backlog.Record) vectordb.Document {
	return vectordb.Document{ID: r.RecordID(), Kind: string(r.Kind()), Content: r.ComparisonText()}
}
