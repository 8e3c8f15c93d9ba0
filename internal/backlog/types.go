// Package backlog reads and rewrites the two planning documents: the
// ideas file and the user story backlog.
package backlog

import (
	"fmt"
	"strings"
)

// Priority is the tier a record inherits from the section it lives in.
type Priority string

const (
	PriorityHigh      Priority = "high"
	PriorityMedium    Priority = "medium"
	PriorityLow       Priority = "low"
	PriorityUndefined Priority = "undefined"
)

// priorityMarkers are the tokens that identify a priority section heading.
var priorityMarkers = []struct {
	token    string
	priority Priority
}{
	{"🔴", PriorityHigh},
	{"🟡", PriorityMedium},
	{"🟢", PriorityLow},
	{"💭", PriorityUndefined},
}

// Marker returns the emoji token for p.
func (p Priority) Marker() string {
	for _, m := range priorityMarkers {
		if m.priority == p {
			return m.token
		}
	}
	return ""
}

// Kind discriminates the two record types.
type Kind string

const (
	KindIdea  Kind = "idea"
	KindStory Kind = "story"
)

// Estimates is the story point scale. Any other value is treated as absent.
var Estimates = []int{1, 2, 3, 5, 8, 13}

// ValidEstimate reports whether n is on the story point scale.
func ValidEstimate(n int) bool {
	for _, e := range Estimates {
		if n == e {
			return true
		}
	}
	return false
}

// Record is either an *Idea or a *UserStory.
type Record interface {
	RecordID() string
	Kind() Kind
	RecordTitle() string
	// ComparisonText is the text embedded for similarity screening.
	ComparisonText() string
	// PromptBlock formats the record's fields for a comparison prompt.
	PromptBlock(v *Vocabulary) string
	// Describe formats the whole record for display.
	Describe(v *Vocabulary) string

	sealed()
}

// Idea is a raw proposal from the ideas file.
type Idea struct {
	ID       string
	Title    string
	Context  string
	Problem  string
	Value    string
	Created  string
	Status   string
	Priority Priority

	// Set only during resolution, through MarkDuplicate.
	Duplicate bool
	SimilarTo string
	Score     *float64
}

func (i *Idea) RecordID() string    { return i.ID }
func (i *Idea) Kind() Kind          { return KindIdea }
func (i *Idea) RecordTitle() string { return i.Title }
func (i *Idea) sealed()             {}

func (i *Idea) ComparisonText() string {
	return joinNonEmpty(i.Title, i.Context, i.Problem, i.Value)
}

func (i *Idea) PromptBlock(v *Vocabulary) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s: %s\n", v.Title, i.Title)
	fmt.Fprintf(&sb, "%s: %s\n", v.Context, i.Context)
	fmt.Fprintf(&sb, "%s: %s\n", v.Problem, i.Problem)
	fmt.Fprintf(&sb, "%s: %s", v.Value, i.Value)
	return sb.String()
}

func (i *Idea) Describe(v *Vocabulary) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "[%s] %s\n", i.ID, i.Title)
	sb.WriteString(i.PromptBlock(v))
	fmt.Fprintf(&sb, "\n%s: %s\n%s: %s\n%s: %s\n", v.Created, i.Created, v.Status, i.Status, v.Priority, v.PriorityLabel(i.Priority))
	return sb.String()
}

// IsPending reports whether the idea's status asks for refinement.
func (i *Idea) IsPending(v *Vocabulary) bool {
	status := strings.ToLower(i.Status)
	for _, m := range v.PendingMarkers {
		if strings.Contains(status, strings.ToLower(m)) {
			return true
		}
	}
	return false
}

// MarkDuplicate records that the idea duplicates matchID.
func (i *Idea) MarkDuplicate(matchID string, score float64) {
	i.Duplicate = true
	i.SimilarTo = matchID
	i.Score = &score
}

// Validate checks the duplicate invariant: the flag is set exactly when
// both the match and the score are.
func (i *Idea) Validate() error {
	hasMatch := i.SimilarTo != "" && i.Score != nil
	if i.Duplicate != hasMatch {
		return fmt.Errorf("idea %s: duplicate=%t but match=%q score set=%t", i.ID, i.Duplicate, i.SimilarTo, i.Score != nil)
	}
	if i.Score != nil && (*i.Score < 0 || *i.Score > 1) {
		return fmt.Errorf("idea %s: score %.3f outside [0,1]", i.ID, *i.Score)
	}
	return nil
}

// AcceptanceCriterion is one checklist item of a story.
type AcceptanceCriterion struct {
	Text      string
	Completed bool
}

// UserStory is a formal backlog entry.
type UserStory struct {
	ID           string
	Title        string
	AsA          string
	IWant        string
	SoThat       string
	Criteria     []AcceptanceCriterion
	Estimate     int // 0 when absent
	Epic         string
	Priority     Priority
	Services     []string
	Dependencies []string
	Status       string
	Notes        []string
}

func (s *UserStory) RecordID() string    { return s.ID }
func (s *UserStory) Kind() Kind          { return KindStory }
func (s *UserStory) RecordTitle() string { return s.Title }
func (s *UserStory) sealed()             {}

func (s *UserStory) ComparisonText() string {
	parts := []string{s.Title, s.AsA, s.IWant, s.SoThat}
	for _, c := range s.Criteria {
		parts = append(parts, c.Text)
	}
	return joinNonEmpty(parts...)
}

// promptCriteria caps how many criteria go into a comparison prompt.
const promptCriteria = 5

func (s *UserStory) PromptBlock(v *Vocabulary) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s: %s\n", v.Title, s.Title)
	fmt.Fprintf(&sb, "%s: %s\n", v.AsA, s.AsA)
	fmt.Fprintf(&sb, "%s: %s\n", v.IWant, s.IWant)
	fmt.Fprintf(&sb, "%s: %s\n", v.SoThat, s.SoThat)
	fmt.Fprintf(&sb, "%s:", v.Criteria)
	for i, c := range s.Criteria {
		if i == promptCriteria {
			break
		}
		sb.WriteString("\n- " + c.Text)
	}
	return sb.String()
}

func joinNonEmpty(parts ...string) string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, " ")
}

// CleanList normalizes a comma separated field the way extraction reads it
// back: items are split on commas, collapsed to one line, trimmed, and
// empties and repeats are dropped.
func CleanList(items []string) []string {
	var parts []string
	for _, it := range items {
		parts = append(parts, strings.Split(oneLine(it), ",")...)
	}
	return uniqueStrings(parts)
}

// CleanNotes collapses each note to one line and drops blank ones. A blank
// bullet ends a note block on extraction.
func CleanNotes(notes []string) []string {
	var out []string
	for _, n := range notes {
		if n = oneLine(n); n != "" {
			out = append(out, n)
		}
	}
	return out
}

// uniqueStrings trims items, drops empties and keeps first occurrences.
func uniqueStrings(items []string) []string {
	var out []string
	seen := make(map[string]bool, len(items))
	for _, it := range items {
		it = strings.TrimSpace(it)
		if it == "" || seen[it] {
			continue
		}
		seen[it] = true
		out = append(out, it)
	}
	return out
}
