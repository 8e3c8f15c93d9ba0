// Package processor runs one pass over the planning documents: it resolves
// pending ideas into duplicates or new stories and rewrites both files.
package processor

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ziadkadry99/ideaflow/internal/backlog"
	"github.com/ziadkadry99/ideaflow/internal/llm"
	"github.com/ziadkadry99/ideaflow/internal/similarity"
)

// Generator drafts a story for a unique idea. It never fails; fellBack
// reports whether the templated story was used.
type Generator interface {
	Generate(ctx context.Context, idea *backlog.Idea, id string) (story *backlog.UserStory, fellBack bool)
}

// Meter reports LLM usage accumulated so far.
type Meter interface {
	Usage() llm.Usage
}

// Options configures a Processor.
type Options struct {
	IdeasPath   string
	BacklogPath string
	Vocabulary  *backlog.Vocabulary
	DryRun      bool
	Logger      *zap.Logger
	// Meter is optional.
	Meter Meter
}

// Processor orchestrates similarity checks, story generation and the
// document rewrites.
type Processor struct {
	engine     similarity.Engine
	generator  Generator
	opts       Options
	log        *zap.Logger
	onProgress ProgressFunc
}

// New creates a Processor.
func New(engine similarity.Engine, generator Generator, opts Options) *Processor {
	if opts.Vocabulary == nil {
		opts.Vocabulary = backlog.Spanish
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Processor{engine: engine, generator: generator, opts: opts, log: log}
}

// SetProgressFunc sets the progress callback.
func (p *Processor) SetProgressFunc(fn ProgressFunc) {
	p.onProgress = fn
}

func (p *Processor) progress(stage Stage, done, total int, item string) {
	if p.onProgress != nil {
		p.onProgress(stage, done, total, item)
	}
}

// Run processes every pending idea in document order. The report is
// non-nil whenever the documents could be loaded, including when the
// context is cancelled midway.
func (p *Processor) Run(ctx context.Context) (*Report, error) {
	start := time.Now()
	v := p.opts.Vocabulary

	ideasSrc, err := backlog.LoadDocument(p.opts.IdeasPath)
	if err != nil {
		return nil, fmt.Errorf("load ideas: %w", err)
	}
	backlogSrc, err := backlog.LoadDocument(p.opts.BacklogPath)
	if err != nil {
		return nil, fmt.Errorf("load backlog: %w", err)
	}

	ideas := backlog.ParseIdeas(ideasSrc, v)
	stories := backlog.ParseUserStories(backlogSrc, v)

	report := &Report{
		RunID:   uuid.NewString(),
		DryRun:  p.opts.DryRun,
		Engine:  p.engine.Name(),
		Ideas:   len(ideas),
		Stories: len(stories),
	}
	defer func() {
		if p.opts.Meter != nil {
			report.Usage = p.opts.Meter.Usage()
		}
		report.Duration = time.Since(start)
	}()

	var pending []*backlog.Idea
	for _, idea := range ideas {
		if idea.IsPending(v) {
			pending = append(pending, idea)
		}
	}
	report.Pending = len(pending)

	p.log.Info("documents loaded",
		zap.String("run", report.RunID),
		zap.Int("ideas", len(ideas)),
		zap.Int("stories", len(stories)),
		zap.Int("pending", len(pending)))

	if len(pending) == 0 {
		return report, nil
	}

	pool := make([]backlog.Record, 0, len(stories)+len(ideas))
	for _, s := range stories {
		pool = append(pool, s)
	}
	for _, idea := range ideas {
		pool = append(pool, idea)
	}

	unique, err := p.resolve(ctx, pending, pool, report)
	if err != nil {
		return report, err
	}

	next := backlog.NextStoryNumber(backlogSrc)
	for i, idea := range unique {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		id := backlog.FormatStoryID(next)
		next++
		story, fellBack := p.generator.Generate(ctx, idea, id)
		report.Generated = append(report.Generated, Generated{IdeaID: idea.ID, Story: story, Fallback: fellBack})
		p.log.Info("story generated",
			zap.String("idea", idea.ID),
			zap.String("story", story.ID),
			zap.Bool("fallback", fellBack))
		p.progress(StageGenerating, i+1, len(unique), story.ID)
	}

	ideasOut, backlogOut := p.apply(ideasSrc, backlogSrc, report)

	if backlogOut != backlogSrc {
		report.Changes = append(report.Changes, Change{Path: p.opts.BacklogPath, Before: backlogSrc, After: backlogOut})
	}
	if ideasOut != ideasSrc {
		report.Changes = append(report.Changes, Change{Path: p.opts.IdeasPath, Before: ideasSrc, After: ideasOut})
	}
	if p.opts.DryRun {
		return report, nil
	}

	// The backlog goes first so a failed ideas write leaves ideas pending
	// rather than marked converted against a missing story.
	for _, c := range report.Changes {
		if err := backlog.SaveDocument(c.Path, c.After); err != nil {
			return report, err
		}
		p.log.Info("document updated", zap.String("path", c.Path))
	}
	return report, nil
}

// resolve checks each pending idea and returns the unique ones in order.
func (p *Processor) resolve(ctx context.Context, pending []*backlog.Idea, pool []backlog.Record, report *Report) ([]*backlog.Idea, error) {
	var unique []*backlog.Idea
	for i, idea := range pending {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		results, err := p.engine.FindSimilar(ctx, idea, pool)
		p.progress(StageChecking, i+1, len(pending), idea.ID)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			p.log.Warn("similarity check failed", zap.String("idea", idea.ID), zap.Error(err))
			report.Failures = append(report.Failures, Failure{IdeaID: idea.ID, Err: err})
			continue
		}

		if len(results) > 0 && results[0].IsDuplicate {
			top := results[0]
			idea.MarkDuplicate(top.MatchID, top.Score)
			if err := idea.Validate(); err != nil {
				idea.Duplicate, idea.SimilarTo, idea.Score = false, "", nil
				p.log.Warn("invalid duplicate verdict", zap.String("idea", idea.ID), zap.Error(err))
				report.Failures = append(report.Failures, Failure{IdeaID: idea.ID, Err: err})
				continue
			}
			report.Duplicates = append(report.Duplicates, Duplicate{
				IdeaID:    idea.ID,
				IdeaTitle: idea.Title,
				MatchID:   top.MatchID,
				MatchKind: top.MatchKind,
				Score:     top.Score,
				Reason:    top.Reason,
			})
			p.log.Info("duplicate found",
				zap.String("idea", idea.ID),
				zap.String("match", top.MatchID),
				zap.Float64("score", top.Score))
			continue
		}
		unique = append(unique, idea)
	}
	return unique, nil
}

// apply computes the rewritten documents from the run's outcome.
func (p *Processor) apply(ideasSrc, backlogSrc string, report *Report) (ideasOut, backlogOut string) {
	v := p.opts.Vocabulary
	ideasOut = ideasSrc

	for _, d := range report.Duplicates {
		var ok bool
		if ideasOut, ok = backlog.MarkDuplicate(ideasOut, d.IdeaID, d.MatchID, d.Score, v); !ok {
			p.log.Warn("could not mark duplicate", zap.String("idea", d.IdeaID))
		}
	}

	stories := make([]*backlog.UserStory, len(report.Generated))
	for i, g := range report.Generated {
		stories[i] = g.Story
	}
	backlogOut, missing := backlog.AppendStories(backlogSrc, stories, v)

	skipped := make(map[string]bool, len(missing))
	for _, id := range missing {
		skipped[id] = true
		p.log.Warn("backlog section missing, story not inserted", zap.String("story", id))
	}
	report.MissingSections = missing

	for i := range report.Generated {
		g := &report.Generated[i]
		if skipped[g.Story.ID] {
			continue
		}
		g.Inserted = true
		var ok bool
		if ideasOut, ok = backlog.MarkConverted(ideasOut, g.IdeaID, g.Story.ID, v); !ok {
			p.log.Warn("could not mark converted", zap.String("idea", g.IdeaID))
		}
	}
	return ideasOut, backlogOut
}
