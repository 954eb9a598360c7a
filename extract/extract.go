// Package extract converts raw files into page units.
//
// Dispatch is on evidex.ContentKind. Paged documents keep their native
// page boundaries; flat text, HTML and XML are cut into fixed line windows
// so every unit stays small enough to verify by eye.
package extract

import (
	"context"
	"errors"
	"strings"

	"github.com/fwojciec/evidex"
)

// Default extraction settings.
const (
	DefaultWindowLines   = 200
	DefaultMinConfidence = 0.6
)

// Ensure Extractor implements evidex.TextExtractor at compile time.
var _ evidex.TextExtractor = (*Extractor)(nil)

// Extractor implements evidex.TextExtractor over pluggable capabilities.
// A nil capability makes the content kinds that need it fail.
type Extractor struct {
	Reader     evidex.PageReader
	Renderer   evidex.PageRenderer
	Recognizer evidex.Recognizer
	Converter  evidex.Converter

	// WindowLines is the number of lines per unit for unpaged text.
	WindowLines int

	// MinConfidence flags OCR output scoring below it as low confidence.
	MinConfidence float64
}

// NewExtractor creates an Extractor with default settings.
func NewExtractor() *Extractor {
	return &Extractor{
		WindowLines:   DefaultWindowLines,
		MinConfidence: DefaultMinConfidence,
	}
}

// Extract converts data of the given kind into ordered page units.
func (e *Extractor) Extract(ctx context.Context, data []byte, kind evidex.ContentKind) ([]*evidex.PageUnit, error) {
	if err := ctx.Err(); err != nil {
		return nil, extractionError(ctx, err, evidex.ETIMEOUT, "extract")
	}

	switch kind {
	case evidex.KindPaged:
		return e.extractPaged(ctx, data)
	case evidex.KindImage:
		return e.extractImage(ctx, data)
	case evidex.KindText:
		return e.window(decodeText(data, "text/plain")), nil
	case evidex.KindHTML:
		return e.extractHTML(ctx, data)
	case evidex.KindXML:
		return e.extractXML(data)
	}
	return nil, evidex.Errorf(evidex.EUNSUPPORTED, "unsupported content kind %q", kind)
}

func (e *Extractor) extractPaged(ctx context.Context, data []byte) ([]*evidex.PageUnit, error) {
	if e.Reader == nil {
		return nil, evidex.Errorf(evidex.EUNSUPPORTED, "no page reader configured")
	}

	set, err := e.Reader.ReadPages(ctx, data)
	if err != nil {
		return nil, extractionError(ctx, err, evidex.ECORRUPT, "read pages")
	}

	count := set.PageCount
	native := make(map[int]string, len(set.Pages))
	for _, p := range set.Pages {
		if p.PageNumber < 1 {
			return nil, evidex.Errorf(evidex.ECORRUPT, "page reader returned page %d", p.PageNumber)
		}
		native[p.PageNumber] = p.Text
		count = max(count, p.PageNumber)
	}

	units := make([]*evidex.PageUnit, 0, count)
	for n := 1; n <= count; n++ {
		if err := ctx.Err(); err != nil {
			return nil, extractionError(ctx, err, evidex.ETIMEOUT, "extract")
		}

		text := native[n]
		if strings.TrimSpace(text) != "" {
			units = append(units, &evidex.PageUnit{
				PageNumber:       n,
				Text:             text,
				ExtractionMethod: evidex.MethodNative,
				Confidence:       1,
			})
			continue
		}

		if e.Renderer == nil {
			return nil, evidex.Errorf(evidex.EOCR, "page %d has no text layer and no renderer is configured", n)
		}
		image, err := e.Renderer.RenderPage(ctx, data, n)
		if err != nil {
			return nil, extractionError(ctx, err, evidex.ECORRUPT, "render page")
		}
		unit, err := e.recognize(ctx, image, n)
		if err != nil {
			return nil, err
		}
		units = append(units, unit)
	}
	return units, nil
}

func (e *Extractor) extractImage(ctx context.Context, data []byte) ([]*evidex.PageUnit, error) {
	unit, err := e.recognize(ctx, data, 1)
	if err != nil {
		return nil, err
	}
	return []*evidex.PageUnit{unit}, nil
}

func (e *Extractor) recognize(ctx context.Context, image []byte, pageNumber int) (*evidex.PageUnit, error) {
	if e.Recognizer == nil {
		return nil, evidex.Errorf(evidex.EOCR, "no recognizer configured")
	}
	rec, err := e.Recognizer.Recognize(ctx, image)
	if err != nil {
		return nil, extractionError(ctx, err, evidex.EOCR, "recognize")
	}
	conf := min(max(rec.Confidence, 0), 1)
	return &evidex.PageUnit{
		PageNumber:       pageNumber,
		Text:             rec.Text,
		ExtractionMethod: evidex.MethodOCR,
		Confidence:       conf,
		LowConfidence:    conf < e.MinConfidence,
	}, nil
}

func (e *Extractor) extractHTML(ctx context.Context, data []byte) ([]*evidex.PageUnit, error) {
	html := decodeText(data, "text/html")
	if strings.TrimSpace(html) == "" {
		return []*evidex.PageUnit{}, nil
	}
	if e.Converter == nil {
		return nil, evidex.Errorf(evidex.EUNSUPPORTED, "no HTML converter configured")
	}
	text, err := e.Converter.Convert(html)
	if err != nil {
		return nil, extractionError(ctx, err, evidex.ECORRUPT, "convert HTML")
	}
	return e.window(text), nil
}

// extractionError maps a capability failure to the extraction error set.
// Errors already carrying an extraction code pass through unchanged.
func extractionError(ctx context.Context, err error, code, op string) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return evidex.Errorf(evidex.ETIMEOUT, "%s: deadline exceeded", op)
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	switch evidex.ErrorCode(err) {
	case evidex.EUNSUPPORTED, evidex.ECORRUPT, evidex.EOCR, evidex.ETIMEOUT:
		return err
	}
	var e *evidex.Error
	if errors.As(err, &e) {
		return evidex.Errorf(code, "%s: %s", op, e.Message)
	}
	return evidex.Errorf(code, "%s: %v", op, err)
}
