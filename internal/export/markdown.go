package export

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/dgallion1/gradeview/internal/anchor"
	"github.com/dgallion1/gradeview/internal/rubric"
	"github.com/dgallion1/gradeview/internal/view"
)

var (
	mdSpecial   = strings.NewReplacer(`\`, `\\`, "`", "\\`", "*", `\*`, "_", `\_`, "[", `\[`, "]", `\]`, "<", `\<`, ">", `\>`, "#", `\#`, "|", `\|`)
	mdListStart = regexp.MustCompile(`^(\s*)(\d+)([.)])`)
	mdBullet    = regexp.MustCompile(`^(\s*)([-+])(\s)`)
)

// WriteMarkdown renders the score breakdown of the selected problem followed
// by the answer paragraphs. Rubric items link to their first supporting
// paragraph and paragraphs link back to their item.
func WriteMarkdown(w io.Writer, v *view.View) error {
	bw := bufio.NewWriter(w)
	writeMarkdown(bw, newReport(v))
	return bw.Flush()
}

func writeMarkdown(w *bufio.Writer, r *report) {
	fmt.Fprintf(w, "# %s\n\n", escapeLine(r.title))
	fmt.Fprintf(w, "## %s\n\n", r.heading())

	if len(r.items) == 0 {
		w.WriteString("채점 데이터가 없습니다.\n\n")
	} else {
		for _, rec := range r.items {
			writeItem(w, r, rec)
		}
		fmt.Fprintf(w, "\n**%s**\n\n", r.total.Note())
	}

	w.WriteString("## 답안\n\n")
	if len(r.paragraphs) == 0 {
		w.WriteString("답안이 없습니다.\n")
		return
	}
	for i, p := range r.paragraphs {
		fmt.Fprintf(w, "<a id=\"%s\"></a>\n\n", anchor.Paragraph(i))
		w.WriteString(escapeBlock(p))
		w.WriteString("\n\n")
		if id := r.sections[i]; id != "" {
			fmt.Fprintf(w, "관련 항목: [%s](#%s)\n\n", escapeLine(id), anchor.Section(id))
		}
	}
}

func writeItem(w *bufio.Writer, r *report, rec rubric.ExportRecord) {
	indent := strings.Repeat("  ", rec.Depth)
	label := escapeLine(itemLabel(rec))
	if i, ok := r.paragraphOf(rec.SectionID); ok {
		label = fmt.Sprintf("[%s](#%s)", label, anchor.Paragraph(i))
	}
	fmt.Fprintf(w, "%s- <a id=\"%s\"></a>%s: %s\n", indent, anchor.Section(rec.SectionID), label, tallyOf(rec))
	for _, d := range rec.Deductions {
		fmt.Fprintf(w, "%s  - 감점: %s (-%s)\n", indent, escapeLine(d.Reason), rubric.FormatPoints(d.Penalty))
	}
	if rec.Note != "" {
		fmt.Fprintf(w, "%s  - %s\n", indent, escapeLine(rec.Note))
	}
}

// escapeLine neutralises inline Markdown and block markers at line start,
// so "1. 요건" stays a heading line of the answer rather than a list.
func escapeLine(s string) string {
	s = mdSpecial.Replace(s)
	s = mdListStart.ReplaceAllString(s, `$1$2\$3`)
	return mdBullet.ReplaceAllString(s, `$1\$2$3`)
}

// escapeBlock escapes every line and keeps the paragraph's line breaks.
func escapeBlock(s string) string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = escapeLine(strings.TrimRight(l, " \t"))
	}
	return strings.Join(lines, "  \n")
}
