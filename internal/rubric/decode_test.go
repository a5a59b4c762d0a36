package rubric

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeJSON(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"bare array", `[{"section_id":"1.1","is_leaf":true,"score":2,"max_points":3}]`, []string{"1.1"}},
		{"grading result", `{"total_score":2,"score_details":[{"section_id":"1"},{"section_id":"1.1"}]}`, []string{"1", "1.1"}},
		{"empty", "  \n", nil},
		{"null", "null", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records, err := DecodeJSON(strings.NewReader(tt.input))
			require.NoError(t, err)
			var ids []string
			for _, r := range records {
				ids = append(ids, r.SectionID)
			}
			assert.Equal(t, tt.want, ids)
		})
	}
}

func TestDecodeJSON_Fields(t *testing.T) {
	records, err := DecodeJSON(strings.NewReader(`[{
		"section_id": "1.1.가",
		"title": "요건 검토",
		"max_points": 4,
		"score": 2.5,
		"is_leaf": true,
		"is_bonus": false,
		"deductions": [{"reason": "판례 미언급", "penalty": 1.5}],
		"keywords": ["신의칙", "권리남용"],
		"note": "결론은 타당함"
	}]`))
	require.NoError(t, err)
	require.Len(t, records, 1)

	r := records[0]
	assert.Equal(t, "요건 검토", r.Title)
	assert.Equal(t, 4.0, r.MaxPoints)
	assert.Equal(t, 2.5, r.Score)
	assert.True(t, r.IsLeaf)
	assert.Equal(t, []Deduction{{Reason: "판례 미언급", Penalty: 1.5}}, r.Deductions)
	assert.Equal(t, []string{"신의칙", "권리남용"}, r.Keywords)
	assert.Equal(t, "결론은 타당함", r.Note)
}

func TestDecodeJSON_Invalid(t *testing.T) {
	_, err := DecodeJSON(strings.NewReader(`[{"section_id": 1}]`))
	assert.Error(t, err)

	_, err = DecodeJSON(strings.NewReader(`{not json`))
	assert.Error(t, err)
}

func TestReadCSV(t *testing.T) {
	input := "\ufeffSection_ID,title,max_points,score,is_leaf,is_bonus,keywords,deductions,note\n" +
		"1,쟁점 1,,,0,,,,\n" +
		"1.1,요건,4,2.5,1,0,신의칙|권리남용,판례 미언급:1|결론: 누락:0.5,일부 서술\n" +
		",ignored,1,1,1,0,,,\n" +
		"1.9,가산점,1,1,yes,true,,,\n"

	records, err := ReadCSV(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, Record{SectionID: "1", Title: "쟁점 1"}, records[0])

	r := records[1]
	assert.Equal(t, "1.1", r.SectionID)
	assert.Equal(t, 4.0, r.MaxPoints)
	assert.Equal(t, 2.5, r.Score)
	assert.True(t, r.IsLeaf)
	assert.False(t, r.IsBonus)
	assert.Equal(t, []string{"신의칙", "권리남용"}, r.Keywords)
	assert.Equal(t, []Deduction{
		{Reason: "판례 미언급", Penalty: 1},
		{Reason: "결론: 누락", Penalty: 0.5},
	}, r.Deductions)
	assert.Equal(t, "일부 서술", r.Note)

	assert.True(t, records[2].IsLeaf)
	assert.True(t, records[2].IsBonus)

	f := Build(records)
	assert.Equal(t, Tally{Score: 3.5, MaxPoints: 5}, f.Rollup("1"))
}

func TestReadCSV_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		msg   string
	}{
		{"missing section_id", "title,score\nx,1\n", "missing section_id"},
		{"bad score", "section_id,score\n1.1,abc\n", "row 2: score"},
		{"bad flag", "section_id,is_leaf\n1.1,maybe\n", "row 2: is_leaf"},
		{"bad penalty", "section_id,deductions\n1.1,oops:x\n", "row 2: deduction"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadCSV(strings.NewReader(tt.input))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}

func TestReadCSV_Empty(t *testing.T) {
	records, err := ReadCSV(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, records)
}
