// Package markdown converts Markdown bodies to HTML with goldmark and
// collects the heading outline on the way.
package markdown

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	gmast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
)

// Heading is one entry of a document's table of contents.
type Heading struct {
	Level int    `json:"level"`
	ID    string `json:"id"`
	Text  string `json:"text"`
}

// Result is the output of a conversion.
type Result struct {
	HTML []byte
	TOC  []Heading
	// Title is the text of the first level-1 heading, if any.
	Title string
}

// Converter renders Markdown. It is safe for concurrent use.
type Converter struct {
	md goldmark.Markdown
}

// NewConverter returns a converter with GFM, footnotes, typographic
// substitutions and automatic heading IDs. Raw HTML in the source is kept.
func NewConverter() *Converter {
	return &Converter{md: goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			extension.Footnote,
			extension.Typographer,
		),
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
		goldmark.WithRendererOptions(html.WithUnsafe()),
	)}
}

// Convert renders body (front matter already removed).
func (c *Converter) Convert(body []byte) (Result, error) {
	root := c.md.Parser().Parse(text.NewReader(body))

	var res Result
	_ = gmast.Walk(root, func(n gmast.Node, entering bool) (gmast.WalkStatus, error) {
		if !entering {
			return gmast.WalkContinue, nil
		}
		h, ok := n.(*gmast.Heading)
		if !ok {
			return gmast.WalkContinue, nil
		}
		heading := Heading{Level: h.Level, Text: nodeText(h, body)}
		if id, ok := h.AttributeString("id"); ok {
			if b, ok := id.([]byte); ok {
				heading.ID = string(b)
			}
		}
		res.TOC = append(res.TOC, heading)
		if h.Level == 1 && res.Title == "" {
			res.Title = heading.Text
		}
		return gmast.WalkSkipChildren, nil
	})

	var buf bytes.Buffer
	if err := c.md.Renderer().Render(&buf, body, root); err != nil {
		return Result{}, fmt.Errorf("render markdown: %w", err)
	}
	res.HTML = buf.Bytes()
	return res, nil
}

// nodeText concatenates the literal text below n.
func nodeText(n gmast.Node, source []byte) string {
	var sb strings.Builder
	_ = gmast.Walk(n, func(child gmast.Node, entering bool) (gmast.WalkStatus, error) {
		if !entering {
			return gmast.WalkContinue, nil
		}
		switch v := child.(type) {
		case *gmast.Text:
			sb.Write(v.Segment.Value(source))
			if v.SoftLineBreak() || v.HardLineBreak() {
				sb.WriteByte(' ')
			}
		case *gmast.String:
			sb.Write(v.Value)
		case *gmast.CodeSpan:
			for c := v.FirstChild(); c != nil; c = c.NextSibling() {
				if t, ok := c.(*gmast.Text); ok {
					sb.Write(t.Segment.Value(source))
				}
			}
			return gmast.WalkSkipChildren, nil
		}
		return gmast.WalkContinue, nil
	})
	return strings.TrimSpace(sb.String())
}
