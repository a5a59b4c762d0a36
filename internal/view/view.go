// Package view assembles everything the grading screen and the report
// exporters read from one answer text and one score list.
//
// Build is a pure function of its Input. Nothing is cached between calls and
// identical inputs give identical views.
package view

import (
	"strings"
	"unicode/utf8"

	"github.com/dgallion1/gradeview/internal/doctree"
	"github.com/dgallion1/gradeview/internal/heading"
	"github.com/dgallion1/gradeview/internal/linker"
	"github.com/dgallion1/gradeview/internal/normalize"
	"github.com/dgallion1/gradeview/internal/rubric"
	"github.com/dgallion1/gradeview/internal/segment"
)

// Input is what the engine is rebuilt from.
type Input struct {
	Title   string          `json:"title,omitempty"`
	Text    string          `json:"text"`
	Records []rubric.Record `json:"scores"`
	Problem string          `json:"problem,omitempty"` // selected problem; defaults to the first
}

// Line is one display line with its heading level.
type Line struct {
	Text  string        `json:"text"`
	Level heading.Level `json:"level"`
}

// Problem is the score tree of one problem in wire form.
type Problem struct {
	ID    string         `json:"id"`
	Roots []string       `json:"roots"`
	Nodes []*rubric.Node `json:"nodes"`
	Total rubric.Tally   `json:"total"`
	Note  string         `json:"note"`
}

// Stats summarises a view.
type Stats struct {
	CharCount      int `json:"char_count"`
	LineCount      int `json:"line_count"`
	ProblemCount   int `json:"problem_count"`
	ParagraphCount int `json:"paragraph_count"`
	LinkedCount    int `json:"linked_count"`
	NodeCount      int `json:"node_count"`
	DroppedRecords int `json:"dropped_records"`
}

// View is the derived state of one answer.
type View struct {
	Title       string                  `json:"title,omitempty"`
	DisplayText string                  `json:"display_text"`
	Lines       []Line                  `json:"lines"`
	Segmented   bool                    `json:"segmented"`
	Problems    []string                `json:"problems"`
	Chunks      map[string]string       `json:"chunks"`
	Selected    string                  `json:"selected"`
	Outline     *doctree.DocTree        `json:"outline"`
	Rubric      []Problem               `json:"rubric"`
	Rollups     map[string]rubric.Tally `json:"rollups"`
	GrandTotal  rubric.Tally            `json:"grand_total"`
	Linkage     linker.Linkage          `json:"linkage"`
	Export      []rubric.ExportRecord   `json:"export"`
	Stats       Stats                   `json:"stats"`

	forest *rubric.Forest
}

// Build derives a view. An empty text or an empty score list is not an
// error; the corresponding parts of the view are simply empty.
func Build(in Input) *View {
	display := normalize.ForDisplay(in.Text)
	chunks := segment.Problems(display)
	forest := rubric.Build(in.Records)

	v := &View{
		Title:       in.Title,
		DisplayText: display,
		Segmented:   chunks.Segmented(),
		Problems:    chunks.Layout(),
		Chunks:      chunks.Map(),
		Rollups:     forest.Rollups(),
		GrandTotal:  forest.GrandTotal(),
		Rubric:      []Problem{},
		forest:      forest,
	}

	var lines []string
	var levels []heading.Level
	if display != "" {
		lines = strings.Split(display, "\n")
		levels = make([]heading.Level, len(lines))
		v.Lines = make([]Line, len(lines))
		for i, l := range lines {
			levels[i] = heading.Detect(l)
			v.Lines[i] = Line{Text: l, Level: levels[i]}
		}
	} else {
		v.Lines = []Line{}
	}
	v.Outline = doctree.Build(in.Title, lines, levels)

	v.Selected = selectProblem(in.Problem, v.Problems)

	for _, id := range forest.ProblemIDs() {
		tree, _ := forest.Problem(id)
		total := forest.Total(id)
		v.Rubric = append(v.Rubric, Problem{
			ID:    id,
			Roots: nonNil(tree.Roots),
			Nodes: tree.Nodes(),
			Total: total,
			Note:  total.Note(),
		})
	}

	paragraphs := []string{}
	switch {
	case !v.Segmented:
		paragraphs = segment.Paragraphs(display)
	default:
		if text, ok := chunks.Text(v.Selected); ok {
			paragraphs = segment.Paragraphs(text)
		}
	}
	v.Linkage = linker.Link(paragraphs, forest.Nodes(v.Selected))

	v.Export = forest.Export(v.Selected)
	if v.Export == nil {
		v.Export = []rubric.ExportRecord{}
	}

	v.Stats = Stats{
		CharCount:      utf8.RuneCountInString(display),
		LineCount:      len(lines),
		ProblemCount:   chunks.Len(),
		ParagraphCount: len(paragraphs),
		LinkedCount:    v.Linkage.Linked(),
		NodeCount:      len(forest.AllNodes()),
		DroppedRecords: forest.Dropped,
	}
	return v
}

// Forest returns the score forest the view was built from.
func (v *View) Forest() *rubric.Forest {
	return v.forest
}

// Empty reports whether the view has neither text nor scores.
func (v *View) Empty() bool {
	return v.DisplayText == "" && v.forest.Empty()
}

// Level returns the heading level of display line i.
func (v *View) Level(i int) heading.Level {
	if i < 0 || i >= len(v.Lines) {
		return heading.Body
	}
	return v.Lines[i].Level
}

// selectProblem keeps the requested problem when the layout has it and
// otherwise falls back to the first problem.
func selectProblem(requested string, layout []string) string {
	requested = strings.TrimSpace(requested)
	for _, id := range layout {
		if id == requested {
			return id
		}
	}
	if len(layout) > 0 {
		return layout[0]
	}
	return ""
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
