// Package normalize canonicalizes raw answer text for display and for
// submission to the grading backend. Both transforms share the heading
// grammar in package heading.
package normalize

import (
	"regexp"
	"strings"

	"github.com/dgallion1/gradeview/internal/heading"
	"golang.org/x/text/unicode/norm"
)

var (
	blankRunRe = regexp.MustCompile(`[ \t]+`)
	newlineRe  = regexp.MustCompile(`\n{3,}`)
)

// Canonical unifies line terminators to "\n", drops NUL bytes and composes
// the text to NFC. PDF extractors and macOS clipboards often hand over
// decomposed Hangul, which would not match the heading grammar.
func Canonical(raw string) string {
	s := strings.ReplaceAll(raw, "\x00", "")
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	return norm.NFC.String(s)
}

// Lines returns the canonical lines of raw.
func Lines(raw string) []string {
	if raw == "" {
		return nil
	}
	return strings.Split(Canonical(raw), "\n")
}

// ForDisplay splits inline headings onto their own lines and makes sure
// every heading that follows content is preceded by exactly one blank line.
// All other content, blank lines included, is kept as is.
func ForDisplay(raw string) string {
	var out []string
	for _, line := range Lines(raw) {
		for _, part := range heading.SplitInline(line) {
			if heading.Detect(part).IsHeading() && len(out) > 0 && strings.TrimSpace(out[len(out)-1]) != "" {
				out = append(out, "")
			}
			out = append(out, part)
		}
	}
	return strings.Join(out, "\n")
}

// ForUpload collapses soft-wrapped body lines into one line per paragraph
// while keeping headings on their own lines. Blank lines end a paragraph and
// are not emitted.
func ForUpload(raw string) string {
	var out []string
	var body []string

	flush := func() {
		if len(body) > 0 {
			out = append(out, strings.Join(body, " "))
			body = body[:0]
		}
	}

	for _, line := range Lines(raw) {
		trimmed := strings.TrimSpace(line)
		switch {
		case trimmed == "":
			flush()
		case heading.Detect(trimmed).IsHeading():
			flush()
			out = append(out, trimmed)
		default:
			body = append(body, trimmed)
		}
	}
	flush()
	return strings.Join(out, "\n")
}

// Tidy is the server-side cleanup applied to stored answers: canonical
// form, runs of spaces and tabs collapsed, at most one blank line in a row.
func Tidy(raw string) string {
	s := Canonical(raw)
	s = blankRunRe.ReplaceAllString(s, " ")
	s = newlineRe.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}
