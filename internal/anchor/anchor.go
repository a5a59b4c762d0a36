// Package anchor keeps presentation-side scroll targets keyed by section id.
// The grading engine emits section ids only; renderers register whatever
// handle they scroll to (an element id, a bookmark name) and look it up when
// a rubric item or paragraph is selected.
package anchor

import (
	"fmt"
	"strings"
	"sync"
)

// Registry maps section ids to presentation handles.
type Registry[H any] struct {
	mu      sync.RWMutex
	handles map[string]H
}

// NewRegistry returns an empty registry.
func NewRegistry[H any]() *Registry[H] {
	return &Registry[H]{handles: make(map[string]H)}
}

// Register stores h for sectionID, replacing any earlier handle.
func (r *Registry[H]) Register(sectionID string, h H) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handles[sectionID] = h
}

// Lookup returns the handle registered for sectionID.
func (r *Registry[H]) Lookup(sectionID string) (H, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.handles[sectionID]
	return h, ok
}

// Forget removes the handle for sectionID.
func (r *Registry[H]) Forget(sectionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.handles, sectionID)
}

// Reset drops every handle, typically before a re-render.
func (r *Registry[H]) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handles = make(map[string]H)
}

// Len returns the number of registered handles.
func (r *Registry[H]) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.handles)
}

// Section returns a stable element id for a rubric section:
// "1.2.가" -> "section-1-2-가".
func Section(sectionID string) string {
	return "section-" + slug(sectionID)
}

// Paragraph returns the element id of the i-th paragraph.
func Paragraph(i int) string {
	return fmt.Sprintf("para-%d", i)
}

// slug keeps letters and digits and turns every other run into one dash.
// A literal '-' or '_' is escaped as "_d" or "_u" so "1-2" and "1.2" get
// different ids.
func slug(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.TrimSpace(s) {
		switch {
		case r == '-':
			b.WriteString("_d")
			dash = false
		case r == '_':
			b.WriteString("_u")
			dash = false
		case isWord(r):
			b.WriteRune(r)
			dash = false
		case !dash && b.Len() > 0:
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimRight(b.String(), "-")
}

func isWord(r rune) bool {
	return r >= '0' && r <= '9' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= 0xAC00 && r <= 0xD7A3
}
