package normalize

import (
	"fmt"
	"strings"
)

// ProblemCount is the number of answer blocks in a direct-text submission.
const ProblemCount = 3

// FieldName returns the form field carrying the answer to problem n (1-based).
func FieldName(n int) string {
	return fmt.Sprintf("problem%d_text", n)
}

// UploadFields runs each answer block through ForUpload independently and
// returns them keyed by form field name.
func UploadFields(blocks [ProblemCount]string) map[string]string {
	fields := make(map[string]string, ProblemCount)
	for i, b := range blocks {
		fields[FieldName(i+1)] = ForUpload(b)
	}
	return fields
}

// Compose joins submitted answer blocks into the stored answer text. Each
// block is introduced by a "[문제 N]" marker so the segmenter can split the
// text again. Missing fields become empty blocks.
func Compose(fields map[string]string) string {
	parts := make([]string, 0, ProblemCount)
	for n := 1; n <= ProblemCount; n++ {
		parts = append(parts, fmt.Sprintf("[문제 %d]\n%s", n, strings.TrimSpace(fields[FieldName(n)])))
	}
	return strings.Join(parts, "\n\n")
}
