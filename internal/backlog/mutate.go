package backlog

import "strings"

// MarkDuplicate sets the status of ideaID to the duplicate status naming
// matchID. Only the first status field inside the idea's own span is
// touched. ok is false when the idea or its status field is missing.
func MarkDuplicate(src, ideaID, matchID string, score float64, v *Vocabulary) (out string, ok bool) {
	return setIdeaStatus(src, ideaID, v.DuplicateStatus(matchID, score), v)
}

// MarkConverted sets the status of ideaID to the converted status naming storyID.
func MarkConverted(src, ideaID, storyID string, v *Vocabulary) (out string, ok bool) {
	return setIdeaStatus(src, ideaID, v.ConvertedStatus(storyID), v)
}

func setIdeaStatus(src, ideaID, status string, v *Vocabulary) (string, bool) {
	sp, found := findSpan(locate(src, ideaSchema), ideaID)
	if !found {
		return src, false
	}
	loc := fieldPattern(v.Status).FindStringSubmatchIndex(src[sp.body:sp.end])
	if loc == nil {
		return src, false
	}
	start, end := sp.body+loc[4], sp.body+loc[5]
	return src[:start] + status + src[end:], true
}

// AppendStories inserts each story right below the section header of its
// priority tier. Stories of one call that share a section keep their
// order. Stories already present are skipped. The ids of stories whose
// section header is missing are returned; those are not inserted.
func AppendStories(src string, stories []*UserStory, v *Vocabulary) (out string, missing []string) {
	lastIn := make(map[string]string) // section header -> last story inserted under it

	for _, s := range stories {
		spans := locate(src, storySchema)
		if _, exists := findSpan(spans, s.ID); exists {
			continue
		}

		header := v.SectionHeader(s.Priority)
		md := s.Markdown(v)

		if prev, ok := lastIn[header]; ok {
			if sp, found := findSpan(spans, prev); found {
				src = src[:sp.end] + md + "\n" + src[sp.end:]
				lastIn[header] = s.ID
				continue
			}
		}

		pos, found := lineAfter(src, header)
		if !found {
			missing = append(missing, s.ID)
			continue
		}
		if pos > len(src) {
			src += "\n"
			pos = len(src)
		}
		src = src[:pos] + "\n" + md + "\n" + src[pos:]
		lastIn[header] = s.ID
	}
	return src, missing
}

// lineAfter returns the offset of the line following the first line that
// starts with header. The offset is len(src)+1 when that line is the last
// one and has no trailing newline.
func lineAfter(src, header string) (int, bool) {
	offset := 0
	for offset <= len(src) {
		nl := strings.IndexByte(src[offset:], '\n')
		line := src[offset:]
		if nl >= 0 {
			line = src[offset : offset+nl]
		}
		if strings.HasPrefix(strings.TrimSpace(line), header) {
			if nl < 0 {
				return len(src) + 1, true
			}
			return offset + nl + 1, true
		}
		if nl < 0 {
			break
		}
		offset += nl + 1
	}
	return 0, false
}
