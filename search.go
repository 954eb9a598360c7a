package evidex

import (
	"context"
	"time"
)

// OffsetRange is a half-open byte range [Start, End) into a page's text.
type OffsetRange struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Hit is one keyword search result. Snippet is exactly the page text at
// Offsets; Match locates the first matched term inside the page.
type Hit struct {
	DocumentPath     string           `json:"documentPath"`
	PageNumber       int              `json:"pageNumber"`
	Snippet          string           `json:"snippet"`
	Offsets          OffsetRange      `json:"offsets"`
	Match            OffsetRange      `json:"match"`
	Rank             float64          `json:"rank"`
	ExtractionMethod ExtractionMethod `json:"extractionMethod"`
	Confidence       float64          `json:"confidence"`
	LowConfidence    bool             `json:"lowConfidence,omitempty"`
}

// DefaultSearchLimit caps the number of hits when SearchFilter.Limit is zero.
const DefaultSearchLimit = 50

// SearchFilter narrows keyword search.
type SearchFilter struct {
	// DocumentPaths restricts hits to these documents.
	DocumentPaths []string `json:"documentPaths,omitempty"`

	// DateFrom and DateTo restrict hits to pages mentioning a DATE entity
	// whose canonical value lies in the inclusive range.
	DateFrom *time.Time `json:"dateFrom,omitempty"`
	DateTo   *time.Time `json:"dateTo,omitempty"`

	// EntityTypes restricts hits to pages mentioning an entity of every
	// listed type.
	EntityTypes []EntityType `json:"entityTypes,omitempty"`

	Limit int `json:"limit,omitempty"`
}

// MatchMode selects how FindEntities compares canonical text.
type MatchMode string

// MatchMode values.
const (
	MatchExact  MatchMode = "EXACT"
	MatchPrefix MatchMode = "PREFIX"
)

// MentionHit locates one mention with surrounding context. Snippet is
// exactly the page text at SnippetOffsets.
type MentionHit struct {
	DocumentPath   string      `json:"documentPath"`
	PageNumber     int         `json:"pageNumber"`
	Offsets        OffsetRange `json:"offsets"`
	SurfaceText    string      `json:"surfaceText"`
	Snippet        string      `json:"snippet"`
	SnippetOffsets OffsetRange `json:"snippetOffsets"`
}

// EntityResult groups all mentions of one canonical entity.
type EntityResult struct {
	Entity       *Entity       `json:"entity"`
	MentionCount int           `json:"mentionCount"`
	Mentions     []*MentionHit `json:"mentions"`
}

// EntityCount pairs an entity with its total mention count.
type EntityCount struct {
	Entity       *Entity `json:"entity"`
	MentionCount int     `json:"mentionCount"`
	Documents    int     `json:"documents"`
}

// SearchService provides read-only queries over committed state.
// An empty result is returned as an empty slice; an unavailable store is
// returned as an error.
type SearchService interface {
	// Search performs keyword search ordered by relevance, then by
	// document path and page number.
	Search(ctx context.Context, query string, filter SearchFilter) ([]*Hit, error)

	// FindEntities finds canonical entities of typ whose canonical text
	// matches the normalized text.
	FindEntities(ctx context.Context, typ EntityType, text string, mode MatchMode) ([]*EntityResult, error)

	// TopEntities lists the most mentioned entities of typ.
	TopEntities(ctx context.Context, typ EntityType, limit int) ([]*EntityCount, error)

	// FindAssets finds canonical assets of typ whose identifier matches
	// the normalized text.
	FindAssets(ctx context.Context, typ AssetType, text string, mode MatchMode) ([]*AssetResult, error)

	// TopAssets lists the most referenced assets of typ.
	TopAssets(ctx context.Context, typ AssetType, limit int) ([]*AssetCount, error)
}
