package mock

import (
	"context"

	"github.com/fwojciec/evidex"
)

var _ evidex.SearchService = (*SearchService)(nil)

// SearchService is a mock implementation of evidex.SearchService.
type SearchService struct {
	SearchFn       func(ctx context.Context, query string, filter evidex.SearchFilter) ([]*evidex.Hit, error)
	FindEntitiesFn func(ctx context.Context, typ evidex.EntityType, text string, mode evidex.MatchMode) ([]*evidex.EntityResult, error)
	TopEntitiesFn  func(ctx context.Context, typ evidex.EntityType, limit int) ([]*evidex.EntityCount, error)
	FindAssetsFn   func(ctx context.Context, typ evidex.AssetType, text string, mode evidex.MatchMode) ([]*evidex.AssetResult, error)
	TopAssetsFn    func(ctx context.Context, typ evidex.AssetType, limit int) ([]*evidex.AssetCount, error)
}

func (s *SearchService) Search(ctx context.Context, query string, filter evidex.SearchFilter) ([]*evidex.Hit, error) {
	return s.SearchFn(ctx, query, filter)
}

func (s *SearchService) FindEntities(ctx context.Context, typ evidex.EntityType, text string, mode evidex.MatchMode) ([]*evidex.EntityResult, error) {
	return s.FindEntitiesFn(ctx, typ, text, mode)
}

func (s *SearchService) TopEntities(ctx context.Context, typ evidex.EntityType, limit int) ([]*evidex.EntityCount, error) {
	return s.TopEntitiesFn(ctx, typ, limit)
}

func (s *SearchService) FindAssets(ctx context.Context, typ evidex.AssetType, text string, mode evidex.MatchMode) ([]*evidex.AssetResult, error) {
	return s.FindAssetsFn(ctx, typ, text, mode)
}

func (s *SearchService) TopAssets(ctx context.Context, typ evidex.AssetType, limit int) ([]*evidex.AssetCount, error) {
	return s.TopAssetsFn(ctx, typ, limit)
}
