// Package heading classifies answer lines by the enumeration heading
// conventions used in Korean legal exam answers:
//
//	Ⅰ. 서론        depth 1 (Roman numerals)
//	1. 요건         depth 2 (arabic numbers)
//	(가) 세부       depth 3 (parenthesized number or 가..하)
//
// Legal citations such as "제750조" are never headings.
package heading

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Level is the structural depth of a line. Body is not a heading.
type Level int

const (
	Body          Level = 0
	Roman         Level = 1
	Numbered      Level = 2
	Parenthesized Level = 3
)

func (l Level) String() string {
	switch l {
	case Roman:
		return "roman"
	case Numbered:
		return "numbered"
	case Parenthesized:
		return "parenthesized"
	}
	return "body"
}

// IsHeading reports whether l is one of the three heading depths.
func (l Level) IsHeading() bool {
	return l >= Roman && l <= Parenthesized
}

// Alphabet is the ordered 14-symbol Hangul enumeration used for depth 3.
const Alphabet = "가나다라마바사아자차카타파하"

const romanUnicode = "ⅠⅡⅢⅣⅤⅥⅦⅧⅨⅩⅪⅫ"

var (
	citationRe = regexp.MustCompile(`^제\s*\d+\s*[조항호]`)

	// Latin numerals need the period; Unicode numerals may also stand alone.
	romanDotRe   = regexp.MustCompile(`^[` + romanUnicode + `IVX]{1,6}\.`)
	romanAloneRe = regexp.MustCompile(`^[` + romanUnicode + `]{1,6}(\s|$)`)

	// A digit right after the period is a decimal or a date, not a heading.
	numberedRe = regexp.MustCompile(`^\d+\.(\D|$)`)

	parenRe = regexp.MustCompile(`^\((\d+|[` + Alphabet + `])\)`)

	citationTailRe = regexp.MustCompile(`제\s*$`)

	// problemLabelRe matches a line prefix that is only a problem label, so
	// the number after it belongs to the marker ("설문 1.", "[문 2").
	problemLabelRe = regexp.MustCompile(`^\s*\[?(?:문제|문|설문)\s*$`)
)

// Detect returns the heading depth of a single line, or Body.
func Detect(line string) Level {
	return classify(strings.TrimSpace(line))
}

// DetectToken classifies one whitespace-free token with the same grammar.
func DetectToken(token string) Level {
	return classify(token)
}

// IsCitation reports whether s starts with a statute reference like "제3조".
func IsCitation(s string) bool {
	return citationRe.MatchString(strings.TrimSpace(s))
}

func classify(s string) Level {
	if s == "" || citationRe.MatchString(s) {
		return Body
	}
	switch {
	case romanDotRe.MatchString(s), romanAloneRe.MatchString(s):
		return Roman
	case numberedRe.MatchString(s):
		return Numbered
	case parenRe.MatchString(s):
		return Parenthesized
	}
	return Body
}

// SplitInline breaks line in front of every heading token that follows
// whitespace inside the line. The text before a break keeps its content but
// loses trailing whitespace. A token directly after "제" is treated as part
// of a citation and left alone, as is the number of a leading problem
// marker.
func SplitInline(line string) []string {
	var parts []string
	start := 0
	prevSpace := false
	for i, r := range line {
		space := unicode.IsSpace(r)
		if !space && prevSpace && i > start {
			head := line[start:i]
			if strings.TrimSpace(head) != "" && !citationTailRe.MatchString(head) && !problemLabelRe.MatchString(head) {
				if DetectToken(tokenAt(line, i)).IsHeading() {
					parts = append(parts, strings.TrimRightFunc(head, unicode.IsSpace))
					start = i
				}
			}
		}
		prevSpace = space
	}
	return append(parts, line[start:])
}

func tokenAt(s string, i int) string {
	end := i
	for end < len(s) {
		r, size := utf8.DecodeRuneInString(s[end:])
		if unicode.IsSpace(r) {
			break
		}
		end += size
	}
	return s[i:end]
}
