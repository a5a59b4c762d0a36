package export

import (
	"bufio"
	"bytes"
	"fmt"
	"html"
	"io"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	gmhtml "github.com/yuin/goldmark/renderer/html"

	"github.com/dgallion1/gradeview/internal/view"
)

const htmlStyle = `body{font-family:"Noto Sans KR",sans-serif;max-width:52rem;margin:2rem auto;line-height:1.6}
ul{padding-left:1.25rem}a[id]{scroll-margin-top:1rem}`

var markdown = goldmark.New(
	goldmark.WithExtensions(extension.Table),
	// Anchors in the generated Markdown are raw HTML. Answer text is
	// escaped before it gets there.
	goldmark.WithRendererOptions(gmhtml.WithUnsafe()),
)

// WriteHTML renders the Markdown report to a standalone HTML page.
func WriteHTML(w io.Writer, v *view.View) error {
	r := newReport(v)

	var src bytes.Buffer
	mw := bufio.NewWriter(&src)
	writeMarkdown(mw, r)
	if err := mw.Flush(); err != nil {
		return err
	}

	var body bytes.Buffer
	if err := markdown.Convert(src.Bytes(), &body); err != nil {
		return fmt.Errorf("render html: %w", err)
	}

	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "<!DOCTYPE html>\n<html lang=\"ko\">\n<head>\n<meta charset=\"utf-8\">\n<title>%s</title>\n<style>%s</style>\n</head>\n<body>\n",
		html.EscapeString(r.title), htmlStyle)
	bw.Write(body.Bytes())
	bw.WriteString("</body>\n</html>\n")
	return bw.Flush()
}
