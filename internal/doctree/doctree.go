// Package doctree builds the heading outline of a displayed answer.
package doctree

import (
	"strings"

	"github.com/dgallion1/gradeview/internal/heading"
)

// DocTree is the root of an answer outline.
type DocTree struct {
	Title    string     `json:"title,omitempty"`
	Text     string     `json:"text,omitempty"` // body before the first heading
	Children []*DocNode `json:"children"`
}

// DocNode is one heading with the body text under it and its subheadings.
type DocNode struct {
	Title    string        `json:"title"`
	Level    heading.Level `json:"level"`
	Line     int           `json:"line"` // 0-indexed line of the heading
	Text     string        `json:"text,omitempty"`
	Children []*DocNode    `json:"children,omitempty"`
}

// Build nests lines under their headings. levels[i] is the heading level of
// lines[i]; a heading closes every open heading at the same or a deeper
// level. A level-3 heading directly under a level-1 heading nests there
// without an intermediate node.
func Build(title string, lines []string, levels []heading.Level) *DocTree {
	tree := &DocTree{Title: title, Children: []*DocNode{}}

	type stackEntry struct {
		node  *DocNode
		level heading.Level
	}
	root := &DocNode{}
	stack := []stackEntry{{node: root, level: heading.Body}}

	var body []string
	flushText := func() {
		t := strings.TrimSpace(strings.Join(body, "\n"))
		body = body[:0]
		if t == "" {
			return
		}
		top := stack[len(stack)-1].node
		if top.Text != "" {
			top.Text += "\n\n" + t
		} else {
			top.Text = t
		}
	}

	for i, line := range lines {
		level := heading.Body
		if i < len(levels) {
			level = levels[i]
		}
		if !level.IsHeading() {
			body = append(body, line)
			continue
		}
		flushText()

		node := &DocNode{Title: strings.TrimSpace(line), Level: level, Line: i}
		for len(stack) > 1 && stack[len(stack)-1].level >= level {
			stack = stack[:len(stack)-1]
		}
		parent := stack[len(stack)-1].node
		parent.Children = append(parent.Children, node)
		stack = append(stack, stackEntry{node: node, level: level})
	}
	flushText()

	tree.Text = root.Text
	if root.Children != nil {
		tree.Children = root.Children
	}
	return tree
}

// Headings returns every heading in document order.
func (t *DocTree) Headings() []*DocNode {
	var out []*DocNode
	var walk func(nodes []*DocNode)
	walk = func(nodes []*DocNode) {
		for _, n := range nodes {
			out = append(out, n)
			walk(n.Children)
		}
	}
	walk(t.Children)
	return out
}

// Breadcrumb returns the titles of the headings enclosing line, outermost
// first.
func (t *DocTree) Breadcrumb(line int) []string {
	var crumbs []string
	nodes := t.Children
	for {
		var next *DocNode
		for _, n := range nodes {
			if n.Line <= line {
				next = n
			}
		}
		if next == nil {
			return crumbs
		}
		crumbs = append(crumbs, next.Title)
		nodes = next.Children
	}
}
