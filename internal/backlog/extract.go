package backlog

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"
)

// ParseIdeas extracts every idea from the ideas document. It never fails:
// missing fields are left empty.
func ParseIdeas(src string, v *Vocabulary) []*Idea {
	var ideas []*Idea
	for _, sp := range locate(src, ideaSchema) {
		body := src[sp.body:sp.end]
		ideas = append(ideas, &Idea{
			ID:       sp.id,
			Title:    sp.title,
			Context:  field(body, v.Context),
			Problem:  field(body, v.Problem),
			Value:    field(body, v.Value),
			Created:  field(body, v.Created),
			Status:   field(body, v.Status),
			Priority: sp.priority,
		})
	}
	return ideas
}

// ParseUserStories extracts every story from the backlog document.
func ParseUserStories(src string, v *Vocabulary) []*UserStory {
	var stories []*UserStory
	for _, sp := range locate(src, storySchema) {
		body := src[sp.body:sp.end]
		s := &UserStory{
			ID:       sp.id,
			Title:    sp.title,
			AsA:      field(body, v.AsA),
			IWant:    field(body, v.IWant),
			SoThat:   field(body, v.SoThat),
			Epic:     field(body, v.Epic),
			Status:   field(body, v.Status),
			Priority: sp.priority,
			Services: uniqueStrings(strings.Split(field(body, v.Services), ",")),
			Notes:    noteBlock(body, v.Notes),
			Criteria: checklistBlock(body, v.Criteria),
		}
		if m := leadingDigits.FindString(field(body, v.Estimate)); m != "" {
			if n, err := strconv.Atoi(m); err == nil && ValidEstimate(n) {
				s.Estimate = n
			}
		}
		if deps := field(body, v.Dependencies); !strings.EqualFold(deps, v.None) {
			s.Dependencies = uniqueStrings(strings.Split(deps, ","))
		}
		stories = append(stories, s)
	}
	return stories
}

// NextNumber returns one past the highest numeric suffix of prefix-N in
// src, or 1 when there is none. Gaps are never filled.
func NextNumber(src, prefix string) int {
	re := regexp.MustCompile(`\b` + regexp.QuoteMeta(prefix) + `-(\d+)`)
	highest := 0
	for _, m := range re.FindAllStringSubmatch(src, -1) {
		if n, err := strconv.Atoi(m[1]); err == nil && n > highest {
			highest = n
		}
	}
	return highest + 1
}

// NextStoryNumber returns the next free US number.
func NextStoryNumber(backlog string) int { return NextNumber(backlog, "US") }

// NextIdeaNumber returns the next free ID number.
func NextIdeaNumber(ideas string) int { return NextNumber(ideas, "ID") }

// FormatStoryID renders n as a story id, e.g. US-013.
func FormatStoryID(n int) string { return fmt.Sprintf("US-%03d", n) }

var (
	leadingDigits = regexp.MustCompile(`^\d+`)
	checkboxLine  = regexp.MustCompile(`^[ \t]*[-*+][ \t]+\[(.)\][ \t]+(.*?)[ \t]*$`)
	bulletLine    = regexp.MustCompile(`^[ \t]*[-*+][ \t]+(.*?)[ \t]*$`)

	patternCache sync.Map // string -> *regexp.Regexp
)

func cached(key string, build func() string) *regexp.Regexp {
	if re, ok := patternCache.Load(key); ok {
		return re.(*regexp.Regexp)
	}
	re := regexp.MustCompile(build())
	patternCache.Store(key, re)
	return re
}

// fieldPattern matches "**Label**: value", with an optional list bullet
// and an optional colon. Group 1 is the prefix, group 2 the value.
func fieldPattern(label string) *regexp.Regexp {
	return cached("field:"+label, func() string {
		return `(?m)^([ \t]*(?:[-*+][ \t]+)?\*\*` + regexp.QuoteMeta(label) + `\*\*:?[ \t]*)([^\n]*?)[ \t\r]*$`
	})
}

// blockPattern matches a block header such as "**Label:**" on its own line.
func blockPattern(label string) *regexp.Regexp {
	return cached("block:"+label, func() string {
		return `(?m)^[ \t]*\*\*` + regexp.QuoteMeta(label) + `:?\*\*:?[ \t\r]*$`
	})
}

func field(body, label string) string {
	m := fieldPattern(label).FindStringSubmatch(body)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[2])
}

// blockLines returns the lines that follow a block header, skipping blank
// lines directly under it. ok is false when the header is missing.
func blockLines(body, label string) (lines []string, ok bool) {
	loc := blockPattern(label).FindStringIndex(body)
	if loc == nil {
		return nil, false
	}
	rest := strings.Split(strings.TrimLeft(body[loc[1]:], "\r\n \t"), "\n")
	return rest, true
}

func checklistBlock(body, label string) []AcceptanceCriterion {
	lines, ok := blockLines(body, label)
	if !ok {
		return nil
	}
	var out []AcceptanceCriterion
	for _, line := range lines {
		m := checkboxLine.FindStringSubmatch(strings.TrimRight(line, "\r"))
		if m == nil {
			break
		}
		out = append(out, AcceptanceCriterion{
			Text:      m[2],
			Completed: strings.EqualFold(m[1], "x"),
		})
	}
	return out
}

func noteBlock(body, label string) []string {
	lines, ok := blockLines(body, label)
	if !ok {
		return nil
	}
	var out []string
	for _, line := range lines {
		m := bulletLine.FindStringSubmatch(strings.TrimRight(line, "\r"))
		if m == nil || m[1] == "" {
			break
		}
		out = append(out, m[1])
	}
	return out
}
