package processor

import (
	"time"

	"github.com/ziadkadry99/ideaflow/internal/backlog"
	"github.com/ziadkadry99/ideaflow/internal/llm"
)

// Stage names the phase a progress callback belongs to.
type Stage string

const (
	StageChecking   Stage = "checking"
	StageGenerating Stage = "generating"
)

// ProgressFunc is called once per idea checked and once per story generated.
type ProgressFunc func(stage Stage, done, total int, item string)

// Duplicate is a pending idea that matched an existing record.
type Duplicate struct {
	IdeaID    string
	IdeaTitle string
	MatchID   string
	MatchKind backlog.Kind
	Score     float64
	Reason    string
}

// Generated is a story drafted from a unique idea.
type Generated struct {
	IdeaID   string
	Story    *backlog.UserStory
	Fallback bool
	// Inserted is false when the story's backlog section is missing.
	Inserted bool
}

// Failure is an idea that could not be checked.
type Failure struct {
	IdeaID string
	Err    error
}

// Change is one document rewritten by the run.
type Change struct {
	Path   string
	Before string
	After  string
}

// Report summarizes a run. It is returned even when the run stops early.
type Report struct {
	RunID  string
	DryRun bool
	Engine string

	Ideas   int
	Stories int
	Pending int

	Duplicates      []Duplicate
	Generated       []Generated
	Failures        []Failure
	MissingSections []string
	Changes         []Change

	Usage    llm.Usage
	Duration time.Duration
}

// Unique returns how many pending ideas were not duplicates.
func (r *Report) Unique() int {
	return len(r.Generated)
}
