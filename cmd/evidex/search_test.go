package main_test

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/fwojciec/evidex"
	main "github.com/fwojciec/evidex/cmd/evidex"
	"github.com/fwojciec/evidex/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDeps(stdout, stderr *bytes.Buffer) *main.Dependencies {
	return &main.Dependencies{
		Ctx:    context.Background(),
		Stdout: stdout,
		Stderr: stderr,
		Config: main.DefaultConfig(),
	}
}

func TestSearchCmd_Run(t *testing.T) {
	t.Parallel()

	t.Run("prints provenance for each hit", func(t *testing.T) {
		t.Parallel()

		stdout := &bytes.Buffer{}
		deps := newDeps(stdout, &bytes.Buffer{})
		deps.Search = &mock.SearchService{
			SearchFn: func(_ context.Context, query string, _ evidex.SearchFilter) ([]*evidex.Hit, error) {
				return []*evidex.Hit{{
					DocumentPath:     "scans/q1.pdf",
					PageNumber:       2,
					Snippet:          "the harbour\nledger",
					Offsets:          evidex.OffsetRange{Start: 10, End: 28},
					ExtractionMethod: evidex.MethodOCR,
					Confidence:       0.55,
					LowConfidence:    true,
				}}, nil
			},
		}

		err := (&main.SearchCmd{Query: "ledger"}).Run(deps)

		require.NoError(t, err)
		out := stdout.String()
		assert.Contains(t, out, "scans/q1.pdf  page 2  OCR 0.55  [10:28]  low-confidence")
		assert.Contains(t, out, "the harbour ledger")
	})

	t.Run("builds filter from flags", func(t *testing.T) {
		t.Parallel()

		var got evidex.SearchFilter
		deps := newDeps(&bytes.Buffer{}, &bytes.Buffer{})
		deps.Search = &mock.SearchService{
			SearchFn: func(_ context.Context, _ string, filter evidex.SearchFilter) ([]*evidex.Hit, error) {
				got = filter
				return []*evidex.Hit{}, nil
			},
		}

		cmd := &main.SearchCmd{
			Query:   "invoice",
			Doc:     []string{"a.txt"},
			From:    "2021",
			To:      "2021-02",
			HasType: []string{"org"},
			Limit:   5,
		}
		require.NoError(t, cmd.Run(deps))

		assert.Equal(t, []string{"a.txt"}, got.DocumentPaths)
		require.NotNil(t, got.DateFrom)
		require.NotNil(t, got.DateTo)
		assert.Equal(t, time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC), *got.DateFrom)
		assert.Equal(t, time.Date(2021, 2, 28, 0, 0, 0, 0, time.UTC), *got.DateTo)
		assert.Equal(t, []evidex.EntityType{evidex.EntityOrg}, got.EntityTypes)
		assert.Equal(t, 6, got.Limit)
	})

	t.Run("reports truncated results", func(t *testing.T) {
		t.Parallel()

		stdout := &bytes.Buffer{}
		deps := newDeps(stdout, &bytes.Buffer{})
		deps.Search = &mock.SearchService{
			SearchFn: func(_ context.Context, _ string, filter evidex.SearchFilter) ([]*evidex.Hit, error) {
				var hits []*evidex.Hit
				for i := 1; i <= filter.Limit; i++ {
					hits = append(hits, &evidex.Hit{DocumentPath: "a.txt", PageNumber: i, Snippet: "x"})
				}
				return hits, nil
			},
		}

		require.NoError(t, (&main.SearchCmd{Query: "x", Limit: 2}).Run(deps))

		out := stdout.String()
		assert.Contains(t, out, "a.txt  page 2")
		assert.NotContains(t, out, "a.txt  page 3")
		assert.Contains(t, out, "showing first 2 hits; more results exist")
	})

	t.Run("default limit applies when unset", func(t *testing.T) {
		t.Parallel()

		stdout := &bytes.Buffer{}
		stderr := &bytes.Buffer{}
		deps := newDeps(stdout, stderr)
		deps.Search = &mock.SearchService{
			SearchFn: func(_ context.Context, _ string, filter evidex.SearchFilter) ([]*evidex.Hit, error) {
				assert.Equal(t, evidex.DefaultSearchLimit+1, filter.Limit)
				hits := make([]*evidex.Hit, filter.Limit)
				for i := range hits {
					hits[i] = &evidex.Hit{DocumentPath: "a.txt", PageNumber: i + 1}
				}
				return hits, nil
			},
		}

		require.NoError(t, (&main.SearchCmd{Query: "x", JSON: true}).Run(deps))

		var hits []evidex.Hit
		require.NoError(t, json.Unmarshal(stdout.Bytes(), &hits))
		assert.Len(t, hits, evidex.DefaultSearchLimit)
		assert.Contains(t, stderr.String(), "more results exist")
	})

	t.Run("complete results carry no notice", func(t *testing.T) {
		t.Parallel()

		stdout := &bytes.Buffer{}
		deps := newDeps(stdout, &bytes.Buffer{})
		deps.Search = &mock.SearchService{
			SearchFn: func(context.Context, string, evidex.SearchFilter) ([]*evidex.Hit, error) {
				return []*evidex.Hit{{DocumentPath: "a.txt", PageNumber: 1, Snippet: "x"}}, nil
			},
		}

		require.NoError(t, (&main.SearchCmd{Query: "x", Limit: 1}).Run(deps))
		assert.NotContains(t, stdout.String(), "more results")
	})

	t.Run("rejects malformed dates", func(t *testing.T) {
		t.Parallel()

		stderr := &bytes.Buffer{}
		deps := newDeps(&bytes.Buffer{}, stderr)

		err := (&main.SearchCmd{Query: "x", From: "last tuesday"}).Run(deps)

		assert.Equal(t, evidex.EINVALID, evidex.ErrorCode(err))
		assert.Contains(t, stderr.String(), "invalid date")
	})

	t.Run("prints JSON", func(t *testing.T) {
		t.Parallel()

		stdout := &bytes.Buffer{}
		deps := newDeps(stdout, &bytes.Buffer{})
		deps.Search = &mock.SearchService{
			SearchFn: func(context.Context, string, evidex.SearchFilter) ([]*evidex.Hit, error) {
				return []*evidex.Hit{{DocumentPath: "a.txt", PageNumber: 1, Snippet: "x"}}, nil
			},
		}

		require.NoError(t, (&main.SearchCmd{Query: "x", JSON: true}).Run(deps))

		var hits []evidex.Hit
		require.NoError(t, json.Unmarshal(stdout.Bytes(), &hits))
		require.Len(t, hits, 1)
		assert.Equal(t, "a.txt", hits[0].DocumentPath)
	})
}

func TestEntitiesCmd_Run(t *testing.T) {
	t.Parallel()

	t.Run("prefix flag selects prefix mode", func(t *testing.T) {
		t.Parallel()

		var mode evidex.MatchMode
		stdout := &bytes.Buffer{}
		deps := newDeps(stdout, &bytes.Buffer{})
		deps.Search = &mock.SearchService{
			FindEntitiesFn: func(_ context.Context, typ evidex.EntityType, text string, m evidex.MatchMode) ([]*evidex.EntityResult, error) {
				mode = m
				return []*evidex.EntityResult{{
					Entity:       &evidex.Entity{Type: typ, CanonicalText: "jane smith"},
					MentionCount: 1,
					Mentions: []*evidex.MentionHit{{
						DocumentPath: "a.txt", PageNumber: 3,
						Offsets:     evidex.OffsetRange{Start: 4, End: 14},
						SurfaceText: "Jane Smith", Snippet: "Dr. Jane Smith said",
					}},
				}}, nil
			},
		}

		require.NoError(t, (&main.EntitiesCmd{Type: "person", Text: "jane", Prefix: true}).Run(deps))

		assert.Equal(t, evidex.MatchPrefix, mode)
		assert.Contains(t, stdout.String(), `PERSON "jane smith" (1 mentions)`)
		assert.Contains(t, stdout.String(), `a.txt  page 3  [4:14]  "Jane Smith"`)
	})

	t.Run("rejects unknown type", func(t *testing.T) {
		t.Parallel()

		err := (&main.EntitiesCmd{Type: "ANIMAL", Text: "cat"}).Run(newDeps(&bytes.Buffer{}, &bytes.Buffer{}))
		assert.Equal(t, evidex.EINVALID, evidex.ErrorCode(err))
	})
}

func TestTopCmd_Run(t *testing.T) {
	t.Parallel()

	stdout := &bytes.Buffer{}
	deps := newDeps(stdout, &bytes.Buffer{})
	deps.Search = &mock.SearchService{
		TopEntitiesFn: func(_ context.Context, typ evidex.EntityType, limit int) ([]*evidex.EntityCount, error) {
			assert.Equal(t, 3, limit)
			return []*evidex.EntityCount{
				{Entity: &evidex.Entity{Type: typ, CanonicalText: "acme"}, MentionCount: 7, Documents: 2},
			}, nil
		},
	}

	require.NoError(t, (&main.TopCmd{Type: "ORG", Limit: 3}).Run(deps))
	assert.Contains(t, stdout.String(), "1. acme  7 mentions in 2 documents")
}

func TestAssetsCmd_Run(t *testing.T) {
	t.Parallel()

	t.Run("lists most referenced assets without a value", func(t *testing.T) {
		t.Parallel()

		stdout := &bytes.Buffer{}
		deps := newDeps(stdout, &bytes.Buffer{})
		deps.Search = &mock.SearchService{
			TopAssetsFn: func(_ context.Context, typ evidex.AssetType, limit int) ([]*evidex.AssetCount, error) {
				assert.Equal(t, evidex.AssetIMO, typ)
				assert.Equal(t, 4, limit)
				return []*evidex.AssetCount{
					{Asset: &evidex.Asset{Type: typ, CanonicalText: "IMO 9074729"}, MentionCount: 3, Documents: 2},
				}, nil
			},
		}

		require.NoError(t, (&main.AssetsCmd{Type: "imo", Limit: 4}).Run(deps))
		assert.Contains(t, stdout.String(), "1. IMO 9074729  3 mentions in 2 documents")
	})

	t.Run("looks up a value with provenance", func(t *testing.T) {
		t.Parallel()

		var mode evidex.MatchMode
		stdout := &bytes.Buffer{}
		deps := newDeps(stdout, &bytes.Buffer{})
		deps.Search = &mock.SearchService{
			FindAssetsFn: func(_ context.Context, typ evidex.AssetType, text string, m evidex.MatchMode) ([]*evidex.AssetResult, error) {
				mode = m
				assert.Equal(t, "N12", text)
				return []*evidex.AssetResult{{
					Asset:        &evidex.Asset{Type: typ, CanonicalText: "N123AB"},
					MentionCount: 1,
					Mentions: []*evidex.MentionHit{{
						DocumentPath: "log.pdf", PageNumber: 4,
						Offsets:     evidex.OffsetRange{Start: 9, End: 15},
						SurfaceText: "N123AB", Snippet: "tail no. N123AB",
					}},
				}}, nil
			},
		}

		require.NoError(t, (&main.AssetsCmd{Type: "AIRCRAFT_REG", Value: "N12", Prefix: true}).Run(deps))

		assert.Equal(t, evidex.MatchPrefix, mode)
		assert.Contains(t, stdout.String(), "AIRCRAFT_REG N123AB (1 mentions)")
		assert.Contains(t, stdout.String(), `log.pdf  page 4  [9:15]  "N123AB"`)
	})

	t.Run("rejects unknown type", func(t *testing.T) {
		t.Parallel()

		stderr := &bytes.Buffer{}
		err := (&main.AssetsCmd{Type: "HULL"}).Run(newDeps(&bytes.Buffer{}, stderr))
		assert.Equal(t, evidex.EINVALID, evidex.ErrorCode(err))
		assert.Contains(t, stderr.String(), "unknown asset type")
	})
}
