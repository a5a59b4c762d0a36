package parser

import (
	"bytes"
	"strings"
	"testing"

	"github.com/fumiama/go-docx"
)

func TestDOCXParser_Paragraphs(t *testing.T) {
	doc := docx.New().WithDefaultTheme()
	doc.AddParagraph().AddText("Ⅰ. 서론")
	p := doc.AddParagraph()
	p.AddText("쟁점은 ")
	p.AddText("손해배상").Bold()
	p.AddText("이다.")
	doc.AddParagraph()
	doc.AddParagraph().AddText("1. 요건")

	var buf bytes.Buffer
	if _, err := doc.WriteTo(&buf); err != nil {
		t.Fatalf("write docx: %v", err)
	}

	got, err := (&DOCXParser{}).Parse(&buf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "Ⅰ. 서론\n쟁점은 손해배상이다.\n\n1. 요건"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestDOCXParser_Invalid(t *testing.T) {
	if _, err := (&DOCXParser{}).Parse(strings.NewReader("not a zip")); err == nil {
		t.Fatal("expected error for invalid docx")
	}
}
