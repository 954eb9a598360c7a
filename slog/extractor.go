package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/evidex"
)

// Ensure the logging decorators implement their interfaces.
var (
	_ evidex.Recognizer   = (*LoggingRecognizer)(nil)
	_ evidex.PageReader   = (*LoggingPageReader)(nil)
	_ evidex.PageRenderer = (*LoggingPageRenderer)(nil)
)

// LoggingRecognizer wraps a Recognizer with debug logging.
type LoggingRecognizer struct {
	next   evidex.Recognizer
	logger *slog.Logger
}

// NewLoggingRecognizer creates a new LoggingRecognizer.
func NewLoggingRecognizer(next evidex.Recognizer, logger *slog.Logger) *LoggingRecognizer {
	return &LoggingRecognizer{next: next, logger: logger}
}

// Recognize delegates to the wrapped recognizer and logs the operation.
func (r *LoggingRecognizer) Recognize(ctx context.Context, image []byte) (rec *evidex.Recognition, err error) {
	defer func(begin time.Time) {
		var chars int
		var conf float64
		if rec != nil {
			chars, conf = len(rec.Text), rec.Confidence
		}
		r.logger.Debug("recognize",
			"bytes", len(image),
			"chars", chars,
			"confidence", conf,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return r.next.Recognize(ctx, image)
}

// LoggingPageReader wraps a PageReader with debug logging.
type LoggingPageReader struct {
	next   evidex.PageReader
	logger *slog.Logger
}

// NewLoggingPageReader creates a new LoggingPageReader.
func NewLoggingPageReader(next evidex.PageReader, logger *slog.Logger) *LoggingPageReader {
	return &LoggingPageReader{next: next, logger: logger}
}

// ReadPages delegates to the wrapped reader and logs the operation.
func (r *LoggingPageReader) ReadPages(ctx context.Context, document []byte) (set *evidex.PageSet, err error) {
	defer func(begin time.Time) {
		var pages int
		if set != nil {
			pages = set.PageCount
		}
		r.logger.Debug("read pages",
			"bytes", len(document),
			"pages", pages,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return r.next.ReadPages(ctx, document)
}

// LoggingPageRenderer wraps a PageRenderer with debug logging.
type LoggingPageRenderer struct {
	next   evidex.PageRenderer
	logger *slog.Logger
}

// NewLoggingPageRenderer creates a new LoggingPageRenderer.
func NewLoggingPageRenderer(next evidex.PageRenderer, logger *slog.Logger) *LoggingPageRenderer {
	return &LoggingPageRenderer{next: next, logger: logger}
}

// RenderPage delegates to the wrapped renderer and logs the operation.
func (r *LoggingPageRenderer) RenderPage(ctx context.Context, document []byte, pageNumber int) (image []byte, err error) {
	defer func(begin time.Time) {
		r.logger.Debug("render page",
			"page", pageNumber,
			"bytes", len(image),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return r.next.RenderPage(ctx, document, pageNumber)
}
