package rubric

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// DecodeJSON reads a score list. Both a bare JSON array and a stored grading
// result of the form {"score_details": [...]} are accepted. Empty input is
// an empty list.
func DecodeJSON(r io.Reader) ([]Record, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read score list: %w", err)
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil, nil
	}

	if data[0] == '[' {
		var records []Record
		if err := json.Unmarshal(data, &records); err != nil {
			return nil, fmt.Errorf("decode score list: %w", err)
		}
		return records, nil
	}

	var result struct {
		ScoreDetails []Record `json:"score_details"`
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("decode grading result: %w", err)
	}
	return result.ScoreDetails, nil
}

// ReadCSV reads a score sheet. The first row names the columns; only
// section_id is required. Recognised columns are section_id, title,
// max_points, score, is_leaf, is_bonus, keywords ("|"-separated),
// deductions ("reason:penalty|...") and note.
func ReadCSV(r io.Reader) ([]Record, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	col := make(map[string]int, len(rows[0]))
	for i, h := range rows[0] {
		col[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))] = i
	}
	if _, ok := col["section_id"]; !ok {
		return nil, fmt.Errorf("parse csv: missing section_id column")
	}

	records := make([]Record, 0, len(rows)-1)
	for n, row := range rows[1:] {
		line := n + 2 // 1-indexed, skip header
		cell := func(name string) string {
			i, ok := col[name]
			if !ok || i >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[i])
		}

		rec := Record{
			SectionID: cell("section_id"),
			Title:     cell("title"),
			Note:      cell("note"),
		}
		if rec.SectionID == "" {
			continue
		}
		if rec.MaxPoints, err = parseNumber(cell("max_points")); err != nil {
			return nil, fmt.Errorf("row %d: max_points: %w", line, err)
		}
		if rec.Score, err = parseNumber(cell("score")); err != nil {
			return nil, fmt.Errorf("row %d: score: %w", line, err)
		}
		if rec.IsLeaf, err = parseFlag(cell("is_leaf")); err != nil {
			return nil, fmt.Errorf("row %d: is_leaf: %w", line, err)
		}
		if rec.IsBonus, err = parseFlag(cell("is_bonus")); err != nil {
			return nil, fmt.Errorf("row %d: is_bonus: %w", line, err)
		}
		rec.Keywords = splitList(cell("keywords"))
		for _, d := range splitList(cell("deductions")) {
			reason, penalty := d, ""
			if i := strings.LastIndexByte(d, ':'); i >= 0 {
				reason, penalty = strings.TrimSpace(d[:i]), strings.TrimSpace(d[i+1:])
			}
			p, err := parseNumber(penalty)
			if err != nil {
				return nil, fmt.Errorf("row %d: deduction %q: %w", line, d, err)
			}
			rec.Deductions = append(rec.Deductions, Deduction{Reason: reason, Penalty: p})
		}
		records = append(records, rec)
	}
	return records, nil
}

func parseNumber(s string) (float64, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.ParseFloat(s, 64)
}

func parseFlag(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "", "0", "n", "no", "false":
		return false, nil
	case "1", "y", "yes", "true":
		return true, nil
	}
	return false, fmt.Errorf("invalid flag %q", s)
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, "|") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
