package rubric

// ExportRecord is the flattened per-node shape handed to document exporters.
// Branches report their rollup and carry no deductions or note.
type ExportRecord struct {
	SectionID  string      `json:"section_id"`
	Title      string      `json:"title"`
	Score      float64     `json:"score"`
	MaxPoints  float64     `json:"max_points"`
	Deductions []Deduction `json:"deductions"`
	Note       string      `json:"note"`
	Depth      int         `json:"depth"`
	IsLeaf     bool        `json:"is_leaf"`
	IsBonus    bool        `json:"is_bonus"`
}

// Export flattens one problem in display order (depth first).
func (f *Forest) Export(problem string) []ExportRecord {
	var out []ExportRecord
	f.Walk(problem, func(n *Node, depth int) {
		rec := ExportRecord{
			SectionID:  n.ID,
			Title:      n.Title,
			Deductions: []Deduction{},
			Depth:      depth,
		}
		if leaf, ok := n.Leaf(); ok {
			rec.Score = leaf.Score
			rec.MaxPoints = leaf.MaxPoints
			rec.IsLeaf = true
			rec.IsBonus = leaf.Bonus
			rec.Note = leaf.Note
			if len(leaf.Deductions) > 0 {
				rec.Deductions = append(rec.Deductions, leaf.Deductions...)
			}
		} else {
			v := f.Rollup(n.ID)
			rec.Score = v.Score
			rec.MaxPoints = v.MaxPoints
		}
		out = append(out, rec)
	})
	return out
}

// ExportAll flattens every problem in first-seen order.
func (f *Forest) ExportAll() []ExportRecord {
	var out []ExportRecord
	for _, p := range f.ProblemIDs() {
		out = append(out, f.Export(p)...)
	}
	return out
}
