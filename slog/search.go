package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/evidex"
)

// Ensure LoggingSearchService implements evidex.SearchService.
var _ evidex.SearchService = (*LoggingSearchService)(nil)

// LoggingSearchService wraps a SearchService with debug logging.
type LoggingSearchService struct {
	next   evidex.SearchService
	logger *slog.Logger
}

// NewLoggingSearchService creates a new LoggingSearchService.
func NewLoggingSearchService(next evidex.SearchService, logger *slog.Logger) *LoggingSearchService {
	return &LoggingSearchService{next: next, logger: logger}
}

// Search delegates to the wrapped service and logs the query.
func (s *LoggingSearchService) Search(ctx context.Context, query string, filter evidex.SearchFilter) (hits []*evidex.Hit, err error) {
	defer func(begin time.Time) {
		s.logger.Debug("search",
			"query", query,
			"count", len(hits),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.Search(ctx, query, filter)
}

// FindEntities delegates to the wrapped service and logs the lookup.
func (s *LoggingSearchService) FindEntities(ctx context.Context, typ evidex.EntityType, text string, mode evidex.MatchMode) (results []*evidex.EntityResult, err error) {
	defer func(begin time.Time) {
		s.logger.Debug("find entities",
			"type", typ,
			"text", text,
			"mode", mode,
			"count", len(results),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.FindEntities(ctx, typ, text, mode)
}

// TopEntities delegates to the wrapped service.
func (s *LoggingSearchService) TopEntities(ctx context.Context, typ evidex.EntityType, limit int) ([]*evidex.EntityCount, error) {
	return s.next.TopEntities(ctx, typ, limit)
}

// FindAssets delegates to the wrapped service and logs the lookup.
func (s *LoggingSearchService) FindAssets(ctx context.Context, typ evidex.AssetType, text string, mode evidex.MatchMode) (results []*evidex.AssetResult, err error) {
	defer func(begin time.Time) {
		s.logger.Debug("find assets",
			"type", typ,
			"text", text,
			"mode", mode,
			"count", len(results),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.FindAssets(ctx, typ, text, mode)
}

// TopAssets delegates to the wrapped service.
func (s *LoggingSearchService) TopAssets(ctx context.Context, typ evidex.AssetType, limit int) ([]*evidex.AssetCount, error) {
	return s.next.TopAssets(ctx, typ, limit)
}
