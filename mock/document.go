package mock

import (
	"context"

	"github.com/fwojciec/evidex"
)

var _ evidex.DocumentService = (*DocumentService)(nil)

// DocumentService is a mock implementation of evidex.DocumentService.
type DocumentService struct {
	FindDocumentByPathFn func(ctx context.Context, path string) (*evidex.Document, error)
	FindDocumentsFn      func(ctx context.Context, filter evidex.DocumentFilter) ([]*evidex.Document, error)
	FindPageFn           func(ctx context.Context, path string, pageNumber int) (*evidex.Page, error)
}

func (s *DocumentService) FindDocumentByPath(ctx context.Context, path string) (*evidex.Document, error) {
	return s.FindDocumentByPathFn(ctx, path)
}

func (s *DocumentService) FindDocuments(ctx context.Context, filter evidex.DocumentFilter) ([]*evidex.Document, error) {
	return s.FindDocumentsFn(ctx, filter)
}

func (s *DocumentService) FindPage(ctx context.Context, path string, pageNumber int) (*evidex.Page, error) {
	return s.FindPageFn(ctx, path, pageNumber)
}
