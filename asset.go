package evidex

import (
	"context"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// AssetType is the kind of a registered vehicle identifier. Assets are kept
// apart from named entities: they are matched by pattern, not inferred.
type AssetType string

// AssetType values.
const (
	AssetAircraftReg AssetType = "AIRCRAFT_REG"
	AssetIMO         AssetType = "IMO"
)

// AssetTypes lists every supported asset type.
var AssetTypes = []AssetType{AssetAircraftReg, AssetIMO}

// ParseAssetType parses a case-insensitive asset type name.
func ParseAssetType(s string) (AssetType, error) {
	t := AssetType(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range AssetTypes {
		if t == known {
			return t, nil
		}
	}
	return "", Errorf(EINVALID, "unknown asset type %q", s)
}

// Asset is the canonical record shared by all references to one identifier.
type Asset struct {
	ID            string    `json:"id"`
	Type          AssetType `json:"type"`
	CanonicalText string    `json:"canonicalText"`
}

// RawAsset is a recognized asset reference before canonicalization.
// Offsets are byte offsets into the text passed to the recognizer.
type RawAsset struct {
	Type        AssetType `json:"type"`
	SurfaceText string    `json:"surfaceText"`
	StartOffset int       `json:"startOffset"`
	EndOffset   int       `json:"endOffset"`
}

// PageAsset binds a RawAsset to the page it was found on.
type PageAsset struct {
	PageNumber int `json:"pageNumber"`
	RawAsset
}

// AssetRecognizer finds asset identifiers in page text.
type AssetRecognizer interface {
	FindAssets(ctx context.Context, text string) ([]RawAsset, error)
}

// AssetResult groups all references to one canonical asset.
type AssetResult struct {
	Asset        *Asset        `json:"asset"`
	MentionCount int           `json:"mentionCount"`
	Mentions     []*MentionHit `json:"mentions"`
}

// AssetCount pairs an asset with its total reference count.
type AssetCount struct {
	Asset        *Asset `json:"asset"`
	MentionCount int    `json:"mentionCount"`
	Documents    int    `json:"documents"`
}

// NormalizeAssetText returns the canonical identifier: upper case with
// whitespace removed. IMO numbers are written "IMO 1234567" whether or not
// the source spaced them; a bare number is read as an IMO number.
func NormalizeAssetText(typ AssetType, text string) string {
	s := strings.Join(strings.Fields(strings.ToUpper(norm.NFKC.String(text))), "")
	if typ == AssetIMO {
		if digits := strings.TrimPrefix(s, "IMO"); digits != "" {
			return "IMO " + digits
		}
		return ""
	}
	return s
}
