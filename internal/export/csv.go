package export

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"

	"github.com/dgallion1/gradeview/internal/rubric"
	"github.com/dgallion1/gradeview/internal/view"
)

// csvHeader matches the columns rubric.ReadCSV understands, plus the
// presentation-only depth and paragraph columns.
var csvHeader = []string{"section_id", "title", "depth", "is_leaf", "is_bonus", "score", "max_points", "deductions", "note", "paragraph"}

// WriteCSV writes one row per rubric item of the selected problem. Branch
// rows carry their rollup. The paragraph column is the 0-based index of the
// first supporting paragraph, empty when there is none.
func WriteCSV(w io.Writer, v *view.View) error {
	r := newReport(v)
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, rec := range r.items {
		para := ""
		if i, ok := r.paragraphOf(rec.SectionID); ok {
			para = strconv.Itoa(i)
		}
		row := []string{
			rec.SectionID,
			rec.Title,
			strconv.Itoa(rec.Depth),
			strconv.FormatBool(rec.IsLeaf),
			strconv.FormatBool(rec.IsBonus),
			rubric.FormatPoints(rec.Score),
			rubric.FormatPoints(rec.MaxPoints),
			formatDeductions(rec.Deductions),
			rec.Note,
			para,
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatDeductions(ds []rubric.Deduction) string {
	parts := make([]string, len(ds))
	for i, d := range ds {
		parts[i] = d.Reason + ":" + rubric.FormatPoints(d.Penalty)
	}
	return strings.Join(parts, "|")
}
