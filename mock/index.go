package mock

import (
	"context"

	"github.com/fwojciec/evidex"
)

var _ evidex.IndexService = (*IndexService)(nil)

// IndexService is a mock implementation of evidex.IndexService.
type IndexService struct {
	UnchangedFn      func(ctx context.Context, key evidex.DocumentKey) (bool, error)
	ApplyFn          func(ctx context.Context, req *evidex.IndexRequest) (evidex.IndexOutcome, error)
	MarkFailedFn     func(ctx context.Context, doc *evidex.Document, cause error) error
	KnownDocumentsFn func(ctx context.Context) ([]evidex.DocumentKey, error)
	StatsFn          func(ctx context.Context) (*evidex.IndexStats, error)
}

func (s *IndexService) Unchanged(ctx context.Context, key evidex.DocumentKey) (bool, error) {
	return s.UnchangedFn(ctx, key)
}

func (s *IndexService) Apply(ctx context.Context, req *evidex.IndexRequest) (evidex.IndexOutcome, error) {
	return s.ApplyFn(ctx, req)
}

func (s *IndexService) MarkFailed(ctx context.Context, doc *evidex.Document, cause error) error {
	return s.MarkFailedFn(ctx, doc, cause)
}

func (s *IndexService) KnownDocuments(ctx context.Context) ([]evidex.DocumentKey, error) {
	return s.KnownDocumentsFn(ctx)
}

func (s *IndexService) Stats(ctx context.Context) (*evidex.IndexStats, error) {
	return s.StatsFn(ctx)
}
