// Package rubric rebuilds the rubric hierarchy from the flat score list
// produced by the grading step and rolls leaf scores up to their ancestors.
package rubric

import (
	"encoding/json"
	"strings"
)

// Deduction is one penalty applied to a leaf score.
type Deduction struct {
	Reason  string  `json:"reason"`
	Penalty float64 `json:"penalty"`
}

// Record is one entry of the flat score list.
type Record struct {
	SectionID  string      `json:"section_id"`
	Title      string      `json:"title"`
	MaxPoints  float64     `json:"max_points"`
	Score      float64     `json:"score"`
	IsLeaf     bool        `json:"is_leaf"`
	IsBonus    bool        `json:"is_bonus"`
	Deductions []Deduction `json:"deductions"`
	Keywords   []string    `json:"keywords"`
	Note       string      `json:"note,omitempty"`
}

// Node is a rubric item. Its body is either a *Leaf, which carries a score,
// or a *Branch, whose value is always the rollup of its leaf descendants.
type Node struct {
	ID       string
	Title    string
	Keywords []string

	body body
}

type body interface{ isBody() }

// Leaf is a directly scored rubric item.
type Leaf struct {
	Score      float64
	MaxPoints  float64
	Bonus      bool
	Deductions []Deduction
	Note       string
}

// Branch groups child items in discovery order.
type Branch struct {
	Children []string
}

func (*Leaf) isBody()   {}
func (*Branch) isBody() {}

func newNode(id string, r Record) *Node {
	n := &Node{
		ID:       id,
		Title:    strings.TrimSpace(r.Title),
		Keywords: uniqueKeywords(r.Keywords),
	}
	if r.IsLeaf {
		n.body = &Leaf{
			Score:      r.Score,
			MaxPoints:  r.MaxPoints,
			Bonus:      r.IsBonus,
			Deductions: append([]Deduction(nil), r.Deductions...),
			Note:       strings.TrimSpace(r.Note),
		}
	} else {
		n.body = &Branch{}
	}
	return n
}

// Leaf returns the leaf body of n, if it has one.
func (n *Node) Leaf() (*Leaf, bool) {
	l, ok := n.body.(*Leaf)
	return l, ok
}

// Branch returns the branch body of n, if it has one.
func (n *Node) Branch() (*Branch, bool) {
	b, ok := n.body.(*Branch)
	return b, ok
}

// IsLeaf reports whether n is directly scored.
func (n *Node) IsLeaf() bool {
	_, ok := n.body.(*Leaf)
	return ok
}

// Children returns the child ids of a branch, or nil for a leaf.
func (n *Node) Children() []string {
	if b, ok := n.Branch(); ok {
		return b.Children
	}
	return nil
}

// Problem returns the first dot-segment of n's id.
func (n *Node) Problem() string {
	return ProblemOf(n.ID)
}

// MarshalJSON writes the node with a "kind" discriminator.
func (n *Node) MarshalJSON() ([]byte, error) {
	type leafJSON struct {
		SectionID  string      `json:"section_id"`
		Kind       string      `json:"kind"`
		Title      string      `json:"title"`
		Keywords   []string    `json:"keywords"`
		Score      float64     `json:"score"`
		MaxPoints  float64     `json:"max_points"`
		IsBonus    bool        `json:"is_bonus"`
		Deductions []Deduction `json:"deductions"`
		Note       string      `json:"note,omitempty"`
	}
	type branchJSON struct {
		SectionID string   `json:"section_id"`
		Kind      string   `json:"kind"`
		Title     string   `json:"title"`
		Keywords  []string `json:"keywords"`
		Children  []string `json:"children"`
	}

	keywords := n.Keywords
	if keywords == nil {
		keywords = []string{}
	}
	switch b := n.body.(type) {
	case *Leaf:
		deductions := b.Deductions
		if deductions == nil {
			deductions = []Deduction{}
		}
		return json.Marshal(leafJSON{
			SectionID:  n.ID,
			Kind:       "leaf",
			Title:      n.Title,
			Keywords:   keywords,
			Score:      b.Score,
			MaxPoints:  b.MaxPoints,
			IsBonus:    b.Bonus,
			Deductions: deductions,
			Note:       b.Note,
		})
	case *Branch:
		children := b.Children
		if children == nil {
			children = []string{}
		}
		return json.Marshal(branchJSON{
			SectionID: n.ID,
			Kind:      "branch",
			Title:     n.Title,
			Keywords:  keywords,
			Children:  children,
		})
	}
	return json.Marshal(nil)
}

// ProblemOf returns the problem id of a section id: its first dot-segment.
func ProblemOf(sectionID string) string {
	if i := strings.IndexByte(sectionID, '.'); i >= 0 {
		return sectionID[:i]
	}
	return sectionID
}

// ParentOf returns sectionID without its last dot-segment, or "" for a
// top-level id.
func ParentOf(sectionID string) string {
	if i := strings.LastIndexByte(sectionID, '.'); i >= 0 {
		return sectionID[:i]
	}
	return ""
}

// ancestors returns every strict prefix of sectionID, shortest first:
// "1.2.가" -> ["1", "1.2"].
func ancestors(sectionID string) []string {
	var out []string
	for i := 0; i < len(sectionID); i++ {
		if sectionID[i] == '.' {
			out = append(out, sectionID[:i])
		}
	}
	return out
}

func uniqueKeywords(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, k := range in {
		if k == "" || seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, k)
	}
	return out
}
