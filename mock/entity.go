package mock

import (
	"context"

	"github.com/fwojciec/evidex"
)

// Compile-time interface verification.
var (
	_ evidex.EntityRecognizer = (*EntityRecognizer)(nil)
	_ evidex.EntityExtractor  = (*EntityExtractor)(nil)
	_ evidex.AssetRecognizer  = (*AssetRecognizer)(nil)
)

// EntityRecognizer is a mock implementation of evidex.EntityRecognizer.
type EntityRecognizer struct {
	InferFn func(ctx context.Context, text string) ([]evidex.RawMention, error)
}

func (r *EntityRecognizer) Infer(ctx context.Context, text string) ([]evidex.RawMention, error) {
	return r.InferFn(ctx, text)
}

// EntityExtractor is a mock implementation of evidex.EntityExtractor.
type EntityExtractor struct {
	ExtractEntitiesFn func(ctx context.Context, text string) ([]evidex.RawMention, error)
}

func (e *EntityExtractor) ExtractEntities(ctx context.Context, text string) ([]evidex.RawMention, error) {
	return e.ExtractEntitiesFn(ctx, text)
}

// AssetRecognizer is a mock implementation of evidex.AssetRecognizer.
type AssetRecognizer struct {
	FindAssetsFn func(ctx context.Context, text string) ([]evidex.RawAsset, error)
}

func (r *AssetRecognizer) FindAssets(ctx context.Context, text string) ([]evidex.RawAsset, error) {
	return r.FindAssetsFn(ctx, text)
}
