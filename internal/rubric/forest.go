package rubric

import (
	"math"
	"strconv"
	"strings"

	"github.com/dgallion1/gradeview/internal/ordered"
)

// Tally is an aggregate of scores and maximum points.
type Tally struct {
	Score     float64 `json:"score"`
	MaxPoints float64 `json:"max_points"`
}

func (t Tally) add(score, max float64) Tally {
	return Tally{Score: t.Score + score, MaxPoints: t.MaxPoints + max}
}

// String renders "score/max" with at most two decimals.
func (t Tally) String() string {
	return FormatPoints(t.Score) + "/" + FormatPoints(t.MaxPoints)
}

// Note renders the tally the way graders read it: "총점 12.5/20".
func (t Tally) Note() string {
	return "총점 " + t.String()
}

// FormatPoints rounds to two decimals and drops trailing zeros.
func FormatPoints(v float64) string {
	return strconv.FormatFloat(math.Round(v*100)/100, 'f', -1, 64)
}

// Tree is the rubric hierarchy of one problem.
type Tree struct {
	ID    string
	Roots []string

	nodes *ordered.Map[string, *Node]
}

// Node returns the node with the given section id.
func (t *Tree) Node(id string) (*Node, bool) {
	if t == nil {
		return nil, false
	}
	return t.nodes.Get(id)
}

// Nodes returns the problem's nodes in insertion order.
func (t *Tree) Nodes() []*Node {
	if t == nil {
		return nil
	}
	return t.nodes.Values()
}

// Len returns the number of nodes in the tree.
func (t *Tree) Len() int {
	if t == nil {
		return 0
	}
	return t.nodes.Len()
}

// Forest is the rubric hierarchy of every problem in a score list together
// with leaf rollups and per-problem totals.
type Forest struct {
	// Dropped counts records skipped because their section id was empty or
	// had already been seen.
	Dropped int

	problems *ordered.Map[string, *Tree]
	rollups  map[string]Tally
	totals   *ordered.Map[string, Tally]
}

// Build groups records by problem, links every node to its parent and
// computes rollups. The first record for a section id wins; later
// duplicates are dropped. A node whose parent id is missing, or whose parent
// is a leaf, becomes a root of its problem. The leaf case departs from plain
// parent-id attachment: a Leaf node carries no children.
func Build(records []Record) *Forest {
	f := &Forest{
		problems: ordered.New[string, *Tree](4),
		rollups:  make(map[string]Tally),
		totals:   ordered.New[string, Tally](4),
	}

	for _, r := range records {
		id := strings.TrimSpace(r.SectionID)
		if id == "" {
			f.Dropped++
			continue
		}
		problem := ProblemOf(id)
		tree, ok := f.problems.Get(problem)
		if !ok {
			tree = &Tree{ID: problem, nodes: ordered.New[string, *Node](16)}
			f.problems.Set(problem, tree)
		}
		if !tree.nodes.SetIfAbsent(id, newNode(id, r)) {
			f.Dropped++
		}
	}

	f.problems.Each(func(problem string, tree *Tree) bool {
		tree.nodes.Each(func(id string, n *Node) bool {
			if parent, ok := tree.nodes.Get(ParentOf(id)); ok {
				if b, ok := parent.Branch(); ok {
					b.Children = append(b.Children, id)
					return true
				}
			}
			tree.Roots = append(tree.Roots, id)
			return true
		})
		return true
	})

	f.problems.Each(func(problem string, tree *Tree) bool {
		total := Tally{}
		tree.nodes.Each(func(id string, n *Node) bool {
			leaf, ok := n.Leaf()
			if !ok {
				return true
			}
			// Bonus leaves contribute their max_points as well.
			total = total.add(leaf.Score, leaf.MaxPoints)
			for _, a := range ancestors(id) {
				f.rollups[a] = f.rollups[a].add(leaf.Score, leaf.MaxPoints)
			}
			return true
		})
		f.totals.Set(problem, total)
		return true
	})

	return f
}

// ProblemIDs returns the problems of the score list in first-seen order.
func (f *Forest) ProblemIDs() []string {
	if f == nil {
		return nil
	}
	return f.problems.Keys()
}

// Problem returns the tree for a problem id.
func (f *Forest) Problem(id string) (*Tree, bool) {
	if f == nil {
		return nil, false
	}
	return f.problems.Get(id)
}

// Empty reports whether the forest holds no nodes.
func (f *Forest) Empty() bool {
	return f == nil || f.problems.Len() == 0
}

// Nodes returns the nodes of one problem in insertion order.
func (f *Forest) Nodes(problem string) []*Node {
	tree, _ := f.Problem(problem)
	return tree.Nodes()
}

// AllNodes returns every node, problem by problem, in insertion order.
func (f *Forest) AllNodes() []*Node {
	if f == nil {
		return nil
	}
	var out []*Node
	f.problems.Each(func(_ string, tree *Tree) bool {
		out = append(out, tree.Nodes()...)
		return true
	})
	return out
}

// Rollup returns the sum over all leaves below id. It is defined for any
// ancestor prefix of a leaf, whether or not a node with that id exists.
func (f *Forest) Rollup(id string) Tally {
	if f == nil {
		return Tally{}
	}
	return f.rollups[id]
}

// Rollups returns a copy of the rollup map.
func (f *Forest) Rollups() map[string]Tally {
	out := make(map[string]Tally)
	if f == nil {
		return out
	}
	for k, v := range f.rollups {
		out[k] = v
	}
	return out
}

// Value returns what a node displays: its own score for a leaf, its rollup
// for a branch.
func (f *Forest) Value(n *Node) Tally {
	if leaf, ok := n.Leaf(); ok {
		return Tally{Score: leaf.Score, MaxPoints: leaf.MaxPoints}
	}
	return f.Rollup(n.ID)
}

// Total returns the sum over all leaves of a problem.
func (f *Forest) Total(problem string) Tally {
	if f == nil {
		return Tally{}
	}
	t, _ := f.totals.Get(problem)
	return t
}

// GrandTotal sums the totals of every problem.
func (f *Forest) GrandTotal() Tally {
	var sum Tally
	if f == nil {
		return sum
	}
	f.totals.Each(func(_ string, t Tally) bool {
		sum = sum.add(t.Score, t.MaxPoints)
		return true
	})
	return sum
}

// Walk visits the nodes of a problem depth first, roots in order, calling fn
// with the node and its depth (0 for roots).
func (f *Forest) Walk(problem string, fn func(n *Node, depth int)) {
	tree, ok := f.Problem(problem)
	if !ok {
		return
	}
	var visit func(id string, depth int)
	visit = func(id string, depth int) {
		n, ok := tree.nodes.Get(id)
		if !ok {
			return
		}
		fn(n, depth)
		for _, child := range n.Children() {
			visit(child, depth+1)
		}
	}
	for _, root := range tree.Roots {
		visit(root, 0)
	}
}
