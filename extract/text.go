package extract

import (
	"strings"
	"unicode/utf8"

	"github.com/beevik/etree"
	"github.com/fwojciec/evidex"
	"golang.org/x/net/html/charset"
)

// decodeText converts data to UTF-8. Valid UTF-8 is kept as is; anything
// else is decoded using its byte order mark or HTML meta declaration,
// falling back to windows-1252. Line endings are normalized to "\n".
func decodeText(data []byte, contentType string) string {
	out := data
	if !utf8.Valid(data) {
		enc, _, _ := charset.DetermineEncoding(data, contentType)
		if decoded, err := enc.NewDecoder().Bytes(data); err == nil {
			out = decoded
		}
	}
	s := strings.TrimPrefix(string(out), "\ufeff")
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ToValidUTF8(s, "\ufffd")
}

// window splits text into units of at most WindowLines lines. Each unit's
// text is the exact byte range of its lines, newlines included, so
// concatenating all units reproduces the input. Whitespace-only input
// yields no units.
func (e *Extractor) window(text string) []*evidex.PageUnit {
	units := []*evidex.PageUnit{}
	if strings.TrimSpace(text) == "" {
		return units
	}

	n := e.WindowLines
	if n <= 0 {
		n = DefaultWindowLines
	}

	lines := strings.SplitAfter(text, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	for start := 0; start < len(lines); start += n {
		end := min(start+n, len(lines))
		units = append(units, &evidex.PageUnit{
			PageNumber:       len(units) + 1,
			Text:             strings.Join(lines[start:end], ""),
			ExtractionMethod: evidex.MethodNative,
			Confidence:       1,
		})
	}
	return units
}

func (e *Extractor) extractXML(data []byte) ([]*evidex.PageUnit, error) {
	if strings.TrimSpace(string(data)) == "" {
		return []*evidex.PageUnit{}, nil
	}

	doc := etree.NewDocument()
	doc.ReadSettings.CharsetReader = charset.NewReaderLabel
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, evidex.Errorf(evidex.ECORRUPT, "parse XML: %v", err)
	}
	if doc.Root() == nil {
		return nil, evidex.Errorf(evidex.ECORRUPT, "XML document has no root element")
	}

	var parts []string
	collectCharData(doc.Root(), &parts)
	return e.window(strings.Join(parts, "\n")), nil
}

// collectCharData appends the trimmed non-empty character data under el in
// document order.
func collectCharData(el *etree.Element, parts *[]string) {
	for _, tok := range el.Child {
		switch t := tok.(type) {
		case *etree.CharData:
			if s := strings.TrimSpace(t.Data); s != "" {
				*parts = append(*parts, s)
			}
		case *etree.Element:
			collectCharData(t, parts)
		}
	}
}
