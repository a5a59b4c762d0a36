// Package export renders a built view as a static grading report.
package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/dgallion1/gradeview/internal/anchor"
	"github.com/dgallion1/gradeview/internal/rubric"
	"github.com/dgallion1/gradeview/internal/view"
)

// Format is a report output format.
type Format string

const (
	Markdown Format = "md"
	HTML     Format = "html"
	DOCX     Format = "docx"
	CSV      Format = "csv"
)

// ParseFormat accepts a format name or a file extension.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), ".")) {
	case "", "md", "markdown":
		return Markdown, nil
	case "html", "htm":
		return HTML, nil
	case "docx":
		return DOCX, nil
	case "csv":
		return CSV, nil
	}
	return "", fmt.Errorf("unsupported export format: %s", s)
}

// ContentType returns the MIME type of the format.
func (f Format) ContentType() string {
	switch f {
	case HTML:
		return "text/html; charset=utf-8"
	case DOCX:
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	case CSV:
		return "text/csv; charset=utf-8"
	}
	return "text/markdown; charset=utf-8"
}

// Filename returns a download name for a report titled title.
func (f Format) Filename(title string) string {
	name := strings.TrimSpace(title)
	if name == "" {
		name = "grading-report"
	}
	name = strings.Map(func(r rune) rune {
		if strings.ContainsRune(`/\:*?"<>|`, r) || r < 0x20 {
			return '_'
		}
		return r
	}, name)
	return name + "." + string(f)
}

// Write renders v in format f.
func Write(w io.Writer, f Format, v *view.View) error {
	switch f {
	case Markdown:
		return WriteMarkdown(w, v)
	case HTML:
		return WriteHTML(w, v)
	case DOCX:
		return WriteDOCX(w, v)
	case CSV:
		return WriteCSV(w, v)
	}
	return fmt.Errorf("unsupported export format: %s", f)
}

// report is the renderer-neutral content of one export.
type report struct {
	title      string
	problem    string
	items      []rubric.ExportRecord
	total      rubric.Tally
	paragraphs []string
	sections   []string // linked section per paragraph, "" when none
	targets    *anchor.Registry[int]
}

func newReport(v *view.View) *report {
	r := &report{
		title:   v.Title,
		problem: v.Selected,
		items:   v.Export,
		total:   v.Forest().Total(v.Selected),
		targets: anchor.NewRegistry[int](),
	}
	if r.title == "" {
		r.title = "채점 결과"
	}
	for _, p := range v.Linkage.Paragraphs {
		r.paragraphs = append(r.paragraphs, p.Text)
		r.sections = append(r.sections, p.SectionID)
	}
	for id, i := range v.Linkage.FirstParagraph {
		r.targets.Register(id, i)
	}
	return r
}

// paragraphOf returns the first paragraph supporting a rubric item.
func (r *report) paragraphOf(sectionID string) (int, bool) {
	return r.targets.Lookup(sectionID)
}

func (r *report) heading() string {
	if r.problem == "" {
		return "채점 내역"
	}
	return "문제 " + r.problem
}

func tallyOf(rec rubric.ExportRecord) rubric.Tally {
	return rubric.Tally{Score: rec.Score, MaxPoints: rec.MaxPoints}
}

func itemLabel(rec rubric.ExportRecord) string {
	label := rec.SectionID
	if rec.Title != "" {
		label += " " + rec.Title
	}
	if rec.IsBonus {
		label += " (가점)"
	}
	return label
}
