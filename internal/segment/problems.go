// Package segment splits normalized answer text into per-problem chunks and
// paragraphs.
package segment

import (
	"regexp"
	"strings"

	"github.com/dgallion1/gradeview/internal/ordered"
)

// DefaultProblemIDs is the conventional three-problem layout used when an
// answer carries no problem markers.
var DefaultProblemIDs = []string{"1", "2", "3"}

// markerRe matches "문제1", "[문제 2]", "문 3.", "설문4:" and similar, with the
// rest of the line in group 2.
var markerRe = regexp.MustCompile(`^\s*\[?(?:문제|문|설문)\s*(\d+)\s*[\]\.\):]?\s*(.*)$`)

// Chunks holds the per-problem text of one answer.
type Chunks struct {
	texts *ordered.Map[string, string]
	order *ordered.Map[string, int] // problem id -> line of its first marker
}

// Problems scans text line by line and cuts it at problem markers. Text
// before the first marker is discarded, and so is a chunk that is empty
// once trimmed. When the same id appears twice the later non-empty chunk
// replaces the earlier one.
func Problems(text string) *Chunks {
	c := &Chunks{
		texts: ordered.New[string, string](4),
		order: ordered.New[string, int](4),
	}

	var current string
	var started bool
	var buf []string

	flush := func() {
		if started {
			if content := strings.TrimSpace(strings.Join(buf, "\n")); content != "" {
				c.texts.Set(current, content)
			}
		}
		buf = buf[:0]
	}

	for i, line := range strings.Split(text, "\n") {
		id, _, ok := Marker(line)
		if !ok {
			buf = append(buf, line)
			continue
		}
		flush()
		current, started = id, true
		c.order.SetIfAbsent(current, i)
		// The marker line already carries the trailing content.
		buf = append(buf, line)
	}
	flush()
	return c
}

// Marker reports whether line is a problem marker and splits it into the
// problem id and the text that follows the marker on the same line.
func Marker(line string) (id, rest string, ok bool) {
	m := markerRe.FindStringSubmatch(strings.TrimSpace(line))
	if m == nil {
		return "", "", false
	}
	return m[1], m[2], true
}

// Segmented reports whether any problem marker was found.
func (c *Chunks) Segmented() bool {
	return c != nil && c.order.Len() > 0
}

// Order returns problem ids in first-seen order, including ids whose chunk
// turned out empty.
func (c *Chunks) Order() []string {
	if c == nil {
		return nil
	}
	return c.order.Keys()
}

// Layout returns Order, or DefaultProblemIDs for an unsegmented answer.
func (c *Chunks) Layout() []string {
	if !c.Segmented() {
		out := make([]string, len(DefaultProblemIDs))
		copy(out, DefaultProblemIDs)
		return out
	}
	return c.Order()
}

// Text returns the chunk for problem id.
func (c *Chunks) Text(id string) (string, bool) {
	if c == nil {
		return "", false
	}
	return c.texts.Get(id)
}

// Len returns the number of non-empty chunks.
func (c *Chunks) Len() int {
	if c == nil {
		return 0
	}
	return c.texts.Len()
}

// Map returns a copy of the chunk map.
func (c *Chunks) Map() map[string]string {
	out := make(map[string]string, c.Len())
	if c == nil {
		return out
	}
	c.texts.Each(func(id, text string) bool {
		out[id] = text
		return true
	})
	return out
}

// StartLine returns the line index of the first marker for problem id.
func (c *Chunks) StartLine(id string) (int, bool) {
	if c == nil {
		return 0, false
	}
	return c.order.Get(id)
}
