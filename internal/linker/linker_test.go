package linker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dgallion1/gradeview/internal/rubric"
)

func nodes(t *testing.T, records ...rubric.Record) []*rubric.Node {
	t.Helper()
	return rubric.Build(records).AllNodes()
}

func TestLink(t *testing.T) {
	ns := nodes(t,
		rubric.Record{SectionID: "1.1", IsLeaf: true, Keywords: []string{"신의성실"}},
		rubric.Record{SectionID: "1.2", IsLeaf: true, Keywords: []string{"권리남용", "신의"}},
	)
	paragraphs := []string{
		"신의 성실의 원칙에 따라 판단한다.",
		"서론",
		"권리 남용 여부를 본다.",
		"신의칙 위반 여부",
		"다시 신의성실",
	}

	l := Link(paragraphs, ns)
	require.Len(t, l.Paragraphs, 5)

	got := make([]string, len(l.Paragraphs))
	for i, p := range l.Paragraphs {
		assert.Equal(t, i, p.Index)
		assert.Equal(t, paragraphs[i], p.Text)
		got[i] = p.SectionID
	}
	// Whitespace is removed before matching, and the first node in tree order wins.
	assert.Equal(t, []string{"1.1", "", "1.2", "1.2", "1.1"}, got)

	assert.Equal(t, map[string]int{"1.1": 0, "1.2": 2}, l.FirstParagraph)
	assert.Equal(t, 4, l.Linked())
}

func TestLink_ShortKeywordOverMatches(t *testing.T) {
	ns := nodes(t,
		rubric.Record{SectionID: "1.1", IsLeaf: true, Keywords: []string{"법"}},
		rubric.Record{SectionID: "1.2", IsLeaf: true, Keywords: []string{"불법행위"}},
	)
	l := Link([]string{"불법행위 책임이 성립한다."}, ns)

	id, ok := l.SectionAt(0)
	assert.True(t, ok)
	assert.Equal(t, "1.1", id)
}

func TestLink_KeywordWithSpaceNeverMatches(t *testing.T) {
	ns := nodes(t, rubric.Record{SectionID: "1.1", IsLeaf: true, Keywords: []string{"손해 배상"}})
	l := Link([]string{"손해 배상을 청구한다."}, ns)

	_, ok := l.SectionAt(0)
	assert.False(t, ok)
	assert.Empty(t, l.FirstParagraph)
}

func TestLink_BranchKeywordsCount(t *testing.T) {
	ns := nodes(t,
		rubric.Record{SectionID: "1", Keywords: []string{"쟁점"}},
		rubric.Record{SectionID: "1.1", IsLeaf: true, Keywords: []string{"쟁점정리"}},
	)
	l := Link([]string{"쟁점 정리"}, ns)

	id, _ := l.SectionAt(0)
	assert.Equal(t, "1", id)
}

func TestLink_EmptyInputs(t *testing.T) {
	l := Link(nil, nil)
	assert.Empty(t, l.Paragraphs)
	assert.NotNil(t, l.FirstParagraph)

	l = Link([]string{"본문"}, nil)
	require.Len(t, l.Paragraphs, 1)
	assert.Equal(t, "", l.Paragraphs[0].SectionID)
	assert.Equal(t, 0, l.Linked())
}

func TestLinkage_Lookups(t *testing.T) {
	ns := nodes(t, rubric.Record{SectionID: "2.1", IsLeaf: true, Keywords: []string{"대항력"}})
	l := Link([]string{"서론", "대항력 취득", "대항력 상실"}, ns)

	i, ok := l.ParagraphFor("2.1")
	assert.True(t, ok)
	assert.Equal(t, 1, i)

	_, ok = l.ParagraphFor("2.2")
	assert.False(t, ok)

	_, ok = l.SectionAt(-1)
	assert.False(t, ok)
	_, ok = l.SectionAt(3)
	assert.False(t, ok)
}
