// Package parser pulls plain answer text out of uploaded answer files.
package parser

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// Parser converts an uploaded file into raw answer text. Paragraphs are
// separated by blank lines; headings of the source format become lines of
// their own.
type Parser interface {
	Parse(r io.Reader) (string, error)
}

// Options tune extraction.
type Options struct {
	// PDFFallbackPdftotext retries PDFs the Go reader cannot decode with
	// the pdftotext binary, when it is installed.
	PDFFallbackPdftotext bool
}

// SupportedExtensions lists file extensions answers can be uploaded as.
var SupportedExtensions = map[string]bool{
	".txt":      true,
	".md":       true,
	".markdown": true,
	".html":     true,
	".htm":      true,
	".pdf":      true,
	".docx":     true,
}

// ForFile returns the appropriate parser for a filename.
func ForFile(filename string, opts Options) (Parser, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".txt":
		return &TextParser{}, nil
	case ".md", ".markdown":
		return &MarkdownParser{}, nil
	case ".html", ".htm":
		return &HTMLParser{}, nil
	case ".pdf":
		return &PDFParser{FallbackPdftotext: opts.PDFFallbackPdftotext}, nil
	case ".docx":
		return &DOCXParser{}, nil
	default:
		return nil, fmt.Errorf("unsupported file extension: %s", ext)
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return SupportedExtensions[ext]
}

// Extract picks a parser by filename and runs it.
func Extract(r io.Reader, filename string, opts Options) (string, error) {
	p, err := ForFile(filename, opts)
	if err != nil {
		return "", err
	}
	text, err := p.Parse(r)
	if err != nil {
		return "", fmt.Errorf("extract %s: %w", filepath.Base(filename), err)
	}
	return text, nil
}

// joinBlocks trims blocks, drops empty ones and separates the rest with a
// blank line.
func joinBlocks(blocks []string) string {
	out := blocks[:0:0]
	for _, b := range blocks {
		if b = strings.TrimSpace(b); b != "" {
			out = append(out, b)
		}
	}
	return strings.Join(out, "\n\n")
}
