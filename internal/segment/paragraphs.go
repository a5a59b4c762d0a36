package segment

import "strings"

// Paragraphs splits text on blank lines. Lines holding only whitespace count
// as blank; paragraphs are trimmed and empty ones dropped.
func Paragraphs(text string) []string {
	var paragraphs []string
	var current strings.Builder

	push := func() {
		if p := strings.TrimSpace(current.String()); p != "" {
			paragraphs = append(paragraphs, p)
		}
		current.Reset()
	}

	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == "" {
			push()
			continue
		}
		if current.Len() > 0 {
			current.WriteString("\n")
		}
		current.WriteString(line)
	}
	push()
	return paragraphs
}
