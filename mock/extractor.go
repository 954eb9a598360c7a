package mock

import (
	"context"

	"github.com/fwojciec/evidex"
)

// Compile-time interface verification.
var (
	_ evidex.Recognizer    = (*Recognizer)(nil)
	_ evidex.PageReader    = (*PageReader)(nil)
	_ evidex.PageRenderer  = (*PageRenderer)(nil)
	_ evidex.Converter     = (*Converter)(nil)
	_ evidex.TextExtractor = (*TextExtractor)(nil)
)

// Recognizer is a mock implementation of evidex.Recognizer.
type Recognizer struct {
	RecognizeFn func(ctx context.Context, image []byte) (*evidex.Recognition, error)
}

func (r *Recognizer) Recognize(ctx context.Context, image []byte) (*evidex.Recognition, error) {
	return r.RecognizeFn(ctx, image)
}

// PageReader is a mock implementation of evidex.PageReader.
type PageReader struct {
	ReadPagesFn func(ctx context.Context, document []byte) (*evidex.PageSet, error)
}

func (r *PageReader) ReadPages(ctx context.Context, document []byte) (*evidex.PageSet, error) {
	return r.ReadPagesFn(ctx, document)
}

// PageRenderer is a mock implementation of evidex.PageRenderer.
type PageRenderer struct {
	RenderPageFn func(ctx context.Context, document []byte, pageNumber int) ([]byte, error)
}

func (r *PageRenderer) RenderPage(ctx context.Context, document []byte, pageNumber int) ([]byte, error) {
	return r.RenderPageFn(ctx, document, pageNumber)
}

// Converter is a mock implementation of evidex.Converter.
type Converter struct {
	ConvertFn func(html string) (string, error)
}

func (c *Converter) Convert(html string) (string, error) {
	return c.ConvertFn(html)
}

// TextExtractor is a mock implementation of evidex.TextExtractor.
type TextExtractor struct {
	ExtractFn func(ctx context.Context, data []byte, kind evidex.ContentKind) ([]*evidex.PageUnit, error)
}

func (e *TextExtractor) Extract(ctx context.Context, data []byte, kind evidex.ContentKind) ([]*evidex.PageUnit, error) {
	return e.ExtractFn(ctx, data, kind)
}
