package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/fumiama/go-docx"

	"github.com/dgallion1/gradeview/internal/rubric"
	"github.com/dgallion1/gradeview/internal/view"
)

const (
	docxTitleSize   = "32"
	docxHeadingSize = "26"
	docxMutedColor  = "808080"
)

// WriteDOCX renders the report as a Word document. Word has no cheap
// intra-document links here, so rubric items cite their first supporting
// paragraph by number ("문단 3") and paragraphs are numbered to match.
func WriteDOCX(w io.Writer, v *view.View) error {
	r := newReport(v)
	doc := docx.New().WithDefaultTheme()

	doc.AddParagraph().AddText(r.title).Bold().Size(docxTitleSize)
	doc.AddParagraph().AddText(r.heading()).Bold().Size(docxHeadingSize)

	if len(r.items) == 0 {
		doc.AddParagraph().AddText("채점 데이터가 없습니다.")
	}
	for _, rec := range r.items {
		writeDOCXItem(doc, r, rec)
	}
	if len(r.items) > 0 {
		doc.AddParagraph().AddText(r.total.Note()).Bold()
	}

	doc.AddParagraph().AddText("답안").Bold().Size(docxHeadingSize)
	if len(r.paragraphs) == 0 {
		doc.AddParagraph().AddText("답안이 없습니다.")
	}
	for i, text := range r.paragraphs {
		p := doc.AddParagraph()
		p.AddText(fmt.Sprintf("[%d] ", i+1)).Color(docxMutedColor)
		for j, line := range strings.Split(text, "\n") {
			if j > 0 {
				p.AddText(" ")
			}
			p.AddText(line)
		}
		if id := r.sections[i]; id != "" {
			p.AddText(" (" + id + ")").Color(docxMutedColor)
		}
	}

	if _, err := doc.WriteTo(w); err != nil {
		return fmt.Errorf("write docx: %w", err)
	}
	return nil
}

func writeDOCXItem(doc *docx.Docx, r *report, rec rubric.ExportRecord) {
	indent := strings.Repeat("    ", rec.Depth)
	p := doc.AddParagraph()
	label := p.AddText(indent + itemLabel(rec))
	if !rec.IsLeaf {
		label.Bold()
	}
	p.AddText(": " + tallyOf(rec).String())
	if i, ok := r.paragraphOf(rec.SectionID); ok {
		p.AddText(fmt.Sprintf(" (문단 %d)", i+1)).Color(docxMutedColor)
	}

	for _, d := range rec.Deductions {
		doc.AddParagraph().AddText(fmt.Sprintf("%s    감점: %s (-%s)", indent, d.Reason, rubric.FormatPoints(d.Penalty)))
	}
	if rec.Note != "" {
		doc.AddParagraph().AddText(indent + "    " + rec.Note).Color(docxMutedColor)
	}
}
