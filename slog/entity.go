package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/evidex"
)

// Ensure LoggingEntityRecognizer implements evidex.EntityRecognizer.
var _ evidex.EntityRecognizer = (*LoggingEntityRecognizer)(nil)

// LoggingEntityRecognizer wraps an EntityRecognizer with debug logging.
type LoggingEntityRecognizer struct {
	next   evidex.EntityRecognizer
	logger *slog.Logger
}

// NewLoggingEntityRecognizer creates a new LoggingEntityRecognizer.
func NewLoggingEntityRecognizer(next evidex.EntityRecognizer, logger *slog.Logger) *LoggingEntityRecognizer {
	return &LoggingEntityRecognizer{next: next, logger: logger}
}

// Infer delegates to the wrapped recognizer and logs the operation.
func (r *LoggingEntityRecognizer) Infer(ctx context.Context, text string) (mentions []evidex.RawMention, err error) {
	defer func(begin time.Time) {
		r.logger.Debug("infer entities",
			"chars", len(text),
			"count", len(mentions),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return r.next.Infer(ctx, text)
}
