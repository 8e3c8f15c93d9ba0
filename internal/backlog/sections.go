package backlog

import (
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// heading is one ATX heading of a document.
type heading struct {
	start int // offset of the heading line
	end   int // offset just past the heading line
	level int
	text  string
}

// scanHeadings lists the ATX headings of src in document order. Headings
// inside code blocks are not headings to goldmark and are skipped. Setext
// headings are ignored so that a "---" under a field line never turns the
// field into a section boundary.
func scanHeadings(src string) []heading {
	source := []byte(src)
	doc := goldmark.DefaultParser().Parse(text.NewReader(source))

	var out []heading
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		h, ok := n.(*ast.Heading)
		if !ok {
			return ast.WalkContinue, nil
		}
		lines := h.Lines()
		if lines.Len() == 0 {
			return ast.WalkSkipChildren, nil
		}
		seg := lines.At(0)
		start := strings.LastIndexByte(src[:seg.Start], '\n') + 1
		if !strings.HasPrefix(strings.TrimLeft(src[start:seg.Start], " \t"), "#") {
			return ast.WalkSkipChildren, nil
		}
		end := len(src)
		if i := strings.IndexByte(src[seg.Start:], '\n'); i >= 0 {
			end = seg.Start + i + 1
		}
		out = append(out, heading{
			start: start,
			end:   end,
			level: h.Level,
			text:  strings.TrimSpace(string(seg.Value(source))),
		})
		return ast.WalkSkipChildren, nil
	})
	return out
}

// entitySchema describes how one record type is headed.
type entitySchema struct {
	level  int
	header *regexp.Regexp // groups: id, title
}

var (
	ideaSchema  = entitySchema{level: 3, header: regexp.MustCompile(`^\[([^\]]+)\]\s+(.+)$`)}
	storySchema = entitySchema{level: 4, header: regexp.MustCompile(`^(US-\d+):\s+(.+)$`)}
)

// span locates one record inside a document.
type span struct {
	id       string
	title    string
	start    int // heading line
	body     int // first byte after the heading line
	end      int
	priority Priority
}

type sectionMark struct {
	pos      int
	priority Priority
}

// locate finds every record of schema in src.
//
// The first pass indexes the priority sections: headings above the record
// level that carry a priority marker. The second pass cuts record spans at
// the next record heading or the next higher heading, and gives each record
// the tier of the closest section mark before it, medium if none.
func locate(src string, schema entitySchema) []span {
	headings := scanHeadings(src)

	var marks []sectionMark
	for _, h := range headings {
		if h.level >= schema.level {
			continue
		}
		for _, m := range priorityMarkers {
			if strings.Contains(h.text, m.token) {
				marks = append(marks, sectionMark{pos: h.start, priority: m.priority})
				break
			}
		}
	}

	isEntity := func(h heading) []string {
		if h.level != schema.level {
			return nil
		}
		return schema.header.FindStringSubmatch(h.text)
	}

	var spans []span
	mark := 0
	current := PriorityMedium
	for i, h := range headings {
		m := isEntity(h)
		if m == nil {
			continue
		}
		for mark < len(marks) && marks[mark].pos < h.start {
			current = marks[mark].priority
			mark++
		}

		end := len(src)
		for _, next := range headings[i+1:] {
			if next.level < schema.level || isEntity(next) != nil {
				end = next.start
				break
			}
		}

		spans = append(spans, span{
			id:       strings.TrimSpace(m[1]),
			title:    strings.TrimSpace(m[2]),
			start:    h.start,
			body:     h.end,
			end:      end,
			priority: current,
		})
	}
	return spans
}

func findSpan(spans []span, id string) (span, bool) {
	for _, s := range spans {
		if s.id == id {
			return s, true
		}
	}
	return span{}, false
}
