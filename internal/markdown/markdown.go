// Package markdown renders Markdown sources to the HTML fragments the
// content pipeline decorates. Footnotes come out in a ".footnotes" block
// so they collapse like editor footnotes do.
package markdown

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"regexp"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
)

// ErrConversion indicates Markdown conversion failed.
var ErrConversion = errors.New("markdown conversion failed")

var (
	crlfOrCR           = regexp.MustCompile(`\r\n?`)
	multipleBlankLines = regexp.MustCompile(`\n{3,}`)
)

// Option configures a Converter.
type Option func(*options)

type options struct {
	rawHTML bool
}

// WithRawHTML keeps HTML embedded in the Markdown, e.g. call-to-action
// buttons or poll embeds written as markup. Only for trusted sources.
func WithRawHTML() Option {
	return func(o *options) { o.rawHTML = true }
}

// Converter renders Markdown with GFM, footnotes and class-based syntax
// highlighting.
type Converter struct {
	md goldmark.Markdown
}

// NewConverter creates a Converter.
func NewConverter(opts ...Option) *Converter {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	rendererOpts := []goldmark.Option{}
	if o.rawHTML {
		rendererOpts = append(rendererOpts, goldmark.WithRendererOptions(html.WithUnsafe()))
	}

	md := goldmark.New(append([]goldmark.Option{
		goldmark.WithExtensions(
			extension.GFM,      // Tables, strikethrough, autolinks, task lists
			extension.Footnote, // [^1] footnotes
			highlighting.NewHighlighting(
				highlighting.WithFormatOptions(
					chromahtml.WithClasses(true), // the content stylesheet owns the colors
				),
			),
		),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(), // deep links land on headings
		),
	}, rendererOpts...)...)
	return &Converter{md: md}
}

// ToHTML converts Markdown content to an HTML fragment.
// Supports context cancellation via goroutine + select pattern since
// Goldmark doesn't natively support context.
func (c *Converter) ToHTML(ctx context.Context, content string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	type result struct {
		html string
		err  error
	}

	done := make(chan result, 1)

	go func() {
		var buf bytes.Buffer
		if err := c.md.Convert([]byte(normalize(content)), &buf); err != nil {
			done <- result{err: fmt.Errorf("%w: %v", ErrConversion, err)}
			return
		}
		done <- result{html: buf.String()}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r := <-done:
		return r.html, r.err
	}
}

// normalize converts line endings to \n and limits blank runs to one line.
func normalize(content string) string {
	content = crlfOrCR.ReplaceAllString(content, "\n")
	return multipleBlankLines.ReplaceAllString(content, "\n\n")
}
