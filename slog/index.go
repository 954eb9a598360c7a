package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/evidex"
)

// Ensure LoggingIndexService implements evidex.IndexService.
var _ evidex.IndexService = (*LoggingIndexService)(nil)

// LoggingIndexService wraps an IndexService with logging of every write.
type LoggingIndexService struct {
	next   evidex.IndexService
	logger *slog.Logger
}

// NewLoggingIndexService creates a new LoggingIndexService.
func NewLoggingIndexService(next evidex.IndexService, logger *slog.Logger) *LoggingIndexService {
	return &LoggingIndexService{next: next, logger: logger}
}

// Unchanged delegates to the wrapped service and logs the check.
func (s *LoggingIndexService) Unchanged(ctx context.Context, key evidex.DocumentKey) (unchanged bool, err error) {
	defer func(begin time.Time) {
		s.logger.Debug("unchanged check",
			"path", key.Path,
			"hash", key.ContentHash,
			"unchanged", unchanged,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.Unchanged(ctx, key)
}

// Apply delegates to the wrapped service and logs the commit.
func (s *LoggingIndexService) Apply(ctx context.Context, req *evidex.IndexRequest) (outcome evidex.IndexOutcome, err error) {
	defer func(begin time.Time) {
		var path string
		if req.Document != nil {
			path = req.Document.Path
		}
		s.logger.Info("apply document",
			"path", path,
			"pages", len(req.Pages),
			"mentions", len(req.Mentions),
			"assets", len(req.Assets),
			"outcome", outcome,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.Apply(ctx, req)
}

// MarkFailed delegates to the wrapped service and logs the failure.
func (s *LoggingIndexService) MarkFailed(ctx context.Context, doc *evidex.Document, cause error) (err error) {
	defer func(begin time.Time) {
		s.logger.Info("mark failed",
			"path", doc.Path,
			"reason", evidex.FailureReason(cause),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.MarkFailed(ctx, doc, cause)
}

// KnownDocuments delegates to the wrapped service.
func (s *LoggingIndexService) KnownDocuments(ctx context.Context) ([]evidex.DocumentKey, error) {
	return s.next.KnownDocuments(ctx)
}

// Stats delegates to the wrapped service.
func (s *LoggingIndexService) Stats(ctx context.Context) (*evidex.IndexStats, error) {
	return s.next.Stats(ctx)
}
