package mock

import (
	"context"

	"github.com/fwojciec/evidex"
)

// Compile-time interface verification.
var (
	_ evidex.FileSource = (*FileSource)(nil)
	_ evidex.PageStore  = (*PageStore)(nil)
)

// FileSource is a mock implementation of evidex.FileSource.
type FileSource struct {
	ScanFn     func(ctx context.Context, root string) ([]*evidex.SourceFile, error)
	ReadFileFn func(ctx context.Context, f *evidex.SourceFile) ([]byte, error)
}

func (s *FileSource) Scan(ctx context.Context, root string) ([]*evidex.SourceFile, error) {
	return s.ScanFn(ctx, root)
}

func (s *FileSource) ReadFile(ctx context.Context, f *evidex.SourceFile) ([]byte, error) {
	return s.ReadFileFn(ctx, f)
}

// PageStore is a mock implementation of evidex.PageStore.
type PageStore struct {
	SaveFn   func(ctx context.Context, page *evidex.Page) error
	CommitFn func() error
	AbortFn  func() error
}

func (s *PageStore) Save(ctx context.Context, page *evidex.Page) error {
	return s.SaveFn(ctx, page)
}

func (s *PageStore) Commit() error {
	return s.CommitFn()
}

func (s *PageStore) Abort() error {
	return s.AbortFn()
}
