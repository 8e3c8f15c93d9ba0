package backlog

import (
	"fmt"
	"strings"
)

// Markdown renders the story in the backlog grammar. ParseUserStories
// reads it back to the same fields once lists are cleaned (CleanList,
// CleanNotes). Optional fields are left out when empty.
func (s *UserStory) Markdown(v *Vocabulary) string {
	var b strings.Builder

	fmt.Fprintf(&b, "#### %s: %s\n", s.ID, oneLine(s.Title))
	fmt.Fprintf(&b, "**%s** %s\n", v.AsA, oneLine(s.AsA))
	fmt.Fprintf(&b, "**%s** %s\n", v.IWant, oneLine(s.IWant))
	fmt.Fprintf(&b, "**%s** %s\n", v.SoThat, oneLine(s.SoThat))
	b.WriteString("\n")

	if len(s.Criteria) > 0 {
		fmt.Fprintf(&b, "**%s:**\n", v.Criteria)
		for _, c := range s.Criteria {
			box := "[ ]"
			if c.Completed {
				box = "[x]"
			}
			fmt.Fprintf(&b, "- %s %s\n", box, oneLine(c.Text))
		}
		b.WriteString("\n")
	}

	if s.Estimate > 0 {
		fmt.Fprintf(&b, "**%s**: %d %s\n", v.Estimate, s.Estimate, v.StoryPoints)
	}
	if s.Epic != "" {
		fmt.Fprintf(&b, "**%s**: %s\n", v.Epic, oneLine(s.Epic))
	}
	fmt.Fprintf(&b, "**%s**: %s\n", v.Priority, v.PriorityLabel(s.Priority))
	if services := CleanList(s.Services); len(services) > 0 {
		fmt.Fprintf(&b, "**%s**: %s\n", v.Services, strings.Join(services, ", "))
	}
	if deps := CleanList(s.Dependencies); len(deps) > 0 {
		fmt.Fprintf(&b, "**%s**: %s\n", v.Dependencies, strings.Join(deps, ", "))
	}
	if s.Status != "" {
		fmt.Fprintf(&b, "**%s**: %s\n", v.Status, oneLine(s.Status))
	}

	if notes := CleanNotes(s.Notes); len(notes) > 0 {
		fmt.Fprintf(&b, "\n**%s:**\n", v.Notes)
		for _, n := range notes {
			fmt.Fprintf(&b, "- %s\n", n)
		}
	}

	b.WriteString("\n---\n")
	return b.String()
}

// Describe renders the story as backlog markdown.
func (s *UserStory) Describe(v *Vocabulary) string {
	return s.Markdown(v)
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
