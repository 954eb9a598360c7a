package gazetteer

import (
	"cmp"
	"context"
	"regexp"
	"slices"

	"github.com/fwojciec/evidex"
)

// Ensure AssetRecognizer implements evidex.AssetRecognizer at compile time.
var _ evidex.AssetRecognizer = AssetRecognizer{}

// Registration marks are matched case-sensitively; lower case "n123" is
// ordinary prose far more often than an aircraft.
var (
	aircraftRegPattern = regexp.MustCompile(`\b(?:N\d{1,5}[A-Z]{0,2}|[GDFI]-[A-Z]{4}|C-[A-Z]{3}[A-Z0-9])\b`)
	imoPattern         = regexp.MustCompile(`(?i)\bIMO\s?\d{7}\b`)
)

// AssetRecognizer finds aircraft registrations (US, UK, German, French,
// Italian and Canadian marks) and IMO ship numbers.
type AssetRecognizer struct{}

// FindAssets returns asset references in text ordered by start offset,
// aircraft registrations before IMO numbers on ties.
func (AssetRecognizer) FindAssets(ctx context.Context, text string) ([]evidex.RawAsset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var assets []evidex.RawAsset
	assets = appendAssets(assets, aircraftRegPattern, evidex.AssetAircraftReg, text)
	assets = appendAssets(assets, imoPattern, evidex.AssetIMO, text)
	slices.SortStableFunc(assets, func(a, b evidex.RawAsset) int {
		return cmp.Compare(a.StartOffset, b.StartOffset)
	})
	return assets, nil
}

func appendAssets(assets []evidex.RawAsset, re *regexp.Regexp, typ evidex.AssetType, text string) []evidex.RawAsset {
	for _, loc := range re.FindAllStringIndex(text, -1) {
		start, end := loc[0], loc[1]
		if !atBoundary(text, start, end) {
			continue
		}
		assets = append(assets, evidex.RawAsset{
			Type:        typ,
			SurfaceText: text[start:end],
			StartOffset: start,
			EndOffset:   end,
		})
	}
	return assets
}
