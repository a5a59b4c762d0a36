// Package linker connects answer paragraphs to rubric items by keyword
// containment, in both directions.
package linker

import (
	"strings"
	"unicode"

	"github.com/dgallion1/gradeview/internal/rubric"
)

// LinkedParagraph is one paragraph with the rubric item it supports, if any.
type LinkedParagraph struct {
	Index     int    `json:"index"`
	Text      string `json:"text"`
	SectionID string `json:"section_id,omitempty"`
}

// Linkage maps paragraphs to section ids and section ids back to their first
// supporting paragraph.
type Linkage struct {
	Paragraphs     []LinkedParagraph `json:"paragraphs"`
	FirstParagraph map[string]int    `json:"first_paragraph"`
}

// Link matches every paragraph against the keyword lists of nodes, taken in
// the order given. A paragraph links to the first node owning a keyword that
// occurs in the paragraph once all whitespace is removed from it. Keywords
// are compared as written; empty keywords never match.
//
// Cost is len(paragraphs) x total keywords.
func Link(paragraphs []string, nodes []*rubric.Node) Linkage {
	l := Linkage{
		Paragraphs:     make([]LinkedParagraph, len(paragraphs)),
		FirstParagraph: make(map[string]int),
	}
	for i, p := range paragraphs {
		l.Paragraphs[i] = LinkedParagraph{Index: i, Text: p}

		id, ok := match(stripSpace(p), nodes)
		if !ok {
			continue
		}
		l.Paragraphs[i].SectionID = id
		if _, seen := l.FirstParagraph[id]; !seen {
			l.FirstParagraph[id] = i
		}
	}
	return l
}

func match(compact string, nodes []*rubric.Node) (string, bool) {
	for _, n := range nodes {
		for _, k := range n.Keywords {
			if k != "" && strings.Contains(compact, k) {
				return n.ID, true
			}
		}
	}
	return "", false
}

// stripSpace drops every Unicode whitespace rune.
func stripSpace(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

// SectionAt returns the section linked to paragraph i.
func (l Linkage) SectionAt(i int) (string, bool) {
	if i < 0 || i >= len(l.Paragraphs) {
		return "", false
	}
	id := l.Paragraphs[i].SectionID
	return id, id != ""
}

// ParagraphFor returns the index of the first paragraph linked to a section.
func (l Linkage) ParagraphFor(sectionID string) (int, bool) {
	i, ok := l.FirstParagraph[sectionID]
	return i, ok
}

// Linked counts paragraphs that found a section.
func (l Linkage) Linked() int {
	n := 0
	for _, p := range l.Paragraphs {
		if p.SectionID != "" {
			n++
		}
	}
	return n
}
