// Package htmltomarkdown converts HTML documents to readable Markdown text.
package htmltomarkdown

import (
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/evidex"
)

// Ensure Converter implements evidex.Converter at compile time.
var _ evidex.Converter = (*Converter)(nil)

// nonContent lists elements whose text is never shown to a reader.
const nonContent = "script, style, noscript, template, iframe, svg"

// Converter wraps html-to-markdown to convert HTML to Markdown.
type Converter struct {
	conv *converter.Converter
}

// NewConverter creates a new Converter.
func NewConverter() *Converter {
	conv := converter.NewConverter(
		converter.WithPlugins(
			base.NewBasePlugin(),
			commonmark.NewCommonmarkPlugin(),
			table.NewTablePlugin(),
		),
	)
	return &Converter{conv: conv}
}

// Convert transforms HTML content into Markdown. Scripts, styles and other
// non-rendered elements are removed first.
func (c *Converter) Convert(html string) (string, error) {
	if strings.TrimSpace(html) == "" {
		return "", evidex.Errorf(evidex.EINVALID, "empty HTML input")
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", evidex.Errorf(evidex.ECORRUPT, "failed to parse HTML: %v", err)
	}
	doc.Find(nonContent).Remove()

	cleaned, err := doc.Html()
	if err != nil {
		return "", evidex.Errorf(evidex.ECORRUPT, "failed to render HTML: %v", err)
	}

	result, err := c.conv.ConvertString(cleaned)
	if err != nil {
		return "", evidex.Errorf(evidex.ECORRUPT, "failed to convert HTML: %v", err)
	}

	return strings.TrimSpace(result), nil
}
