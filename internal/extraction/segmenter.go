// internal/extraction/segmenter.go
package extraction

import (
	"context"
	"regexp"
	"strings"
)

// HeuristicSegmenter isolates fields by scanning for heading lines that
// anchor each section. It never fails: sections it cannot locate come back
// empty and a human reviewer corrects the record later.
type HeuristicSegmenter struct{}

func NewHeuristicSegmenter() *HeuristicSegmenter {
	return &HeuristicSegmenter{}
}

type sectionKind int

const (
	sectionNone sectionKind = iota
	sectionTitle
	sectionDescription
	sectionDifferences
	sectionInventors
)

var sectionHeadings = []struct {
	kind    sectionKind
	pattern *regexp.Regexp
}{
	{sectionTitle, regexp.MustCompile(`(?i)^\s*(?:invention\s+)?title\s*[:.]?\s*(.*)$`)},
	{sectionDifferences, regexp.MustCompile(`(?i)^\s*(?:key\s+differences?|novelty|novel\s+features?|distinguishing\s+(?:features?|claims?)|advantages)\s*[:.]?\s*(.*)$`)},
	{sectionInventors, regexp.MustCompile(`(?i)^\s*(?:inventors?|authors?|contributors?|submitted\s+by)\s*[:.]?\s*(.*)$`)},
	{sectionDescription, regexp.MustCompile(`(?i)^\s*(?:description|background|summary|abstract|overview)(?:\s+of\s+the\s+invention)?\s*[:.]?\s*(.*)$`)},
}

// Heading lines are short; a paragraph that merely starts with a heading
// word should not open a section.
const maxHeadingInline = 200

func matchHeading(line string) (sectionKind, string, bool) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" || len(trimmed) > maxHeadingInline {
		return sectionNone, "", false
	}
	for _, h := range sectionHeadings {
		if m := h.pattern.FindStringSubmatch(trimmed); m != nil {
			return h.kind, strings.TrimSpace(m[1]), true
		}
	}
	return sectionNone, "", false
}

func (s *HeuristicSegmenter) Segment(_ context.Context, text string) (CandidateRecord, error) {
	sections := map[sectionKind][]string{}
	current := sectionNone
	sawHeading := false
	var preamble []string

	for _, line := range strings.Split(text, "\n") {
		if kind, inline, ok := matchHeading(line); ok {
			current = kind
			sawHeading = true
			if inline != "" {
				sections[kind] = append(sections[kind], inline)
			}
			continue
		}

		if current == sectionNone {
			if !sawHeading {
				preamble = append(preamble, line)
			}
			continue
		}

		if current == sectionTitle {
			if strings.TrimSpace(line) != "" && len(sections[sectionTitle]) == 0 {
				sections[sectionTitle] = append(sections[sectionTitle], line)
			}
			continue
		}

		sections[current] = append(sections[current], line)
	}

	record := CandidateRecord{
		Title:          strings.TrimSpace(strings.Join(sections[sectionTitle], " ")),
		Description:    strings.TrimSpace(strings.Join(sections[sectionDescription], "\n")),
		KeyDifferences: strings.TrimSpace(strings.Join(sections[sectionDifferences], "\n")),
		Inventors:      parseInventorLines(sections[sectionInventors]),
	}

	// No explicit title heading: a short first line ahead of any section is
	// almost always the document title.
	if record.Title == "" {
		for _, line := range preamble {
			trimmed := strings.TrimSpace(line)
			if trimmed == "" {
				continue
			}
			if len(trimmed) <= 160 {
				record.Title = trimmed
			}
			break
		}
	}

	return record, nil
}

var (
	bulletPrefix  = regexp.MustCompile(`^\s*(?:[-*•‣]|\d+[.)])\s*`)
	emailPattern  = regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`)
	angleBrackets = regexp.MustCompile(`[<(\[]\s*([^<>()\[\]]*)\s*[>)\]]`)
)

// parseInventorLines reads one roster entry per line, accepting the common
// "Name <email>", "Name (email)", "Name - email" and "Name, email" shapes.
// Entries without a parseable name are dropped; order is preserved.
func parseInventorLines(lines []string) []CandidateInventor {
	inventors := make([]CandidateInventor, 0, len(lines))

	for _, line := range lines {
		entry := bulletPrefix.ReplaceAllString(strings.TrimSpace(line), "")
		if entry == "" {
			continue
		}

		email := emailPattern.FindString(entry)

		name := entry
		if email != "" {
			name = strings.Replace(name, email, "", 1)
		}
		name = angleBrackets.ReplaceAllString(name, " ")
		name = strings.Trim(name, " \t,;:-–—")
		name = strings.Join(strings.Fields(name), " ")

		if name == "" {
			continue
		}

		inventors = append(inventors, CandidateInventor{Name: name, Email: email})
	}

	return inventors
}
