package sqlite_test

import (
	"context"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/fwojciec/evidex"
	"github.com/fwojciec/evidex/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// requireTraceable asserts every hit resolves to its stored page text.
func requireTraceable(t *testing.T, db *sqlite.DB, hits []*evidex.Hit) {
	t.Helper()
	docs := sqlite.NewDocumentService(db)
	for _, hit := range hits {
		page, err := docs.FindPage(context.Background(), hit.DocumentPath, hit.PageNumber)
		require.NoError(t, err)
		require.Equal(t, hit.Snippet, page.Text[hit.Offsets.Start:hit.Offsets.End])
		require.LessOrEqual(t, hit.Offsets.Start, hit.Match.Start)
		require.GreaterOrEqual(t, hit.Offsets.End, hit.Match.End)
		require.True(t, utf8.ValidString(hit.Snippet))
	}
}

func TestSearchService_Search(t *testing.T) {
	t.Parallel()

	t.Run("finds keyword with exact offsets", func(t *testing.T) {
		t.Parallel()

		db := MustOpenDB(t)
		ctx := context.Background()

		_, err := sqlite.NewIndexService(db).Apply(ctx,
			newRequest("a.pdf", "h1", "cover page", "Payment received from John Smith on time."))
		require.NoError(t, err)

		hits, err := sqlite.NewSearchService(db).Search(ctx, "john smith", evidex.SearchFilter{})
		require.NoError(t, err)
		require.Len(t, hits, 1)

		hit := hits[0]
		assert.Equal(t, "a.pdf", hit.DocumentPath)
		assert.Equal(t, 2, hit.PageNumber)
		assert.Equal(t, evidex.OffsetRange{Start: 22, End: 26}, hit.Match)
		assert.Equal(t, evidex.MethodNative, hit.ExtractionMethod)
		assert.Greater(t, hit.Rank, 0.0)
		requireTraceable(t, db, hits)
	})

	t.Run("snippet window bounds context", func(t *testing.T) {
		t.Parallel()

		db := MustOpenDB(t)
		ctx := context.Background()

		_, err := sqlite.NewIndexService(db).Apply(ctx, newRequest("a.txt", "h1", "The quick brown fox jumps"))
		require.NoError(t, err)

		search := sqlite.NewSearchService(db)
		search.SnippetWindow = 5
		hits, err := search.Search(ctx, "brown", evidex.SearchFilter{})
		require.NoError(t, err)
		require.Len(t, hits, 1)
		assert.Equal(t, "uick brown fox ", hits[0].Snippet)
		assert.Equal(t, evidex.OffsetRange{Start: 5, End: 20}, hits[0].Offsets)
		assert.Equal(t, evidex.OffsetRange{Start: 10, End: 15}, hits[0].Match)
	})

	t.Run("snippet keeps multibyte text intact", func(t *testing.T) {
		t.Parallel()

		db := MustOpenDB(t)
		ctx := context.Background()

		_, err := sqlite.NewIndexService(db).Apply(ctx, newRequest("a.txt", "h1", "crème brûlée über naïve façade"))
		require.NoError(t, err)

		search := sqlite.NewSearchService(db)
		search.SnippetWindow = 2
		hits, err := search.Search(ctx, "über", evidex.SearchFilter{})
		require.NoError(t, err)
		require.Len(t, hits, 1)
		assert.Contains(t, hits[0].Snippet, "über")
		requireTraceable(t, db, hits)
	})

	t.Run("orders by relevance then path then page", func(t *testing.T) {
		t.Parallel()

		db := MustOpenDB(t)
		idx := sqlite.NewIndexService(db)
		ctx := context.Background()

		_, err := idx.Apply(ctx, newRequest("b.txt", "hb", "alpha beta gamma delta", "alpha beta gamma delta"))
		require.NoError(t, err)
		_, err = idx.Apply(ctx, newRequest("a.txt", "ha", "alpha beta gamma delta"))
		require.NoError(t, err)
		_, err = idx.Apply(ctx, newRequest("c.txt", "hc", "alpha alpha alpha beta"))
		require.NoError(t, err)

		search := sqlite.NewSearchService(db)
		hits, err := search.Search(ctx, "alpha", evidex.SearchFilter{})
		require.NoError(t, err)
		require.Len(t, hits, 4)

		assert.Equal(t, "c.txt", hits[0].DocumentPath)
		assert.Equal(t, "a.txt", hits[1].DocumentPath)
		assert.Equal(t, "b.txt", hits[2].DocumentPath)
		assert.Equal(t, 1, hits[2].PageNumber)
		assert.Equal(t, "b.txt", hits[3].DocumentPath)
		assert.Equal(t, 2, hits[3].PageNumber)
		assert.Greater(t, hits[0].Rank, hits[1].Rank)

		again, err := search.Search(ctx, "alpha", evidex.SearchFilter{})
		require.NoError(t, err)
		assert.Equal(t, hits, again)
	})

	t.Run("supports phrases prefixes and OR", func(t *testing.T) {
		t.Parallel()

		db := MustOpenDB(t)
		idx := sqlite.NewIndexService(db)
		ctx := context.Background()

		_, err := idx.Apply(ctx, newRequest("a.txt", "ha", "invoice number 7 for services"))
		require.NoError(t, err)
		_, err = idx.Apply(ctx, newRequest("b.txt", "hb", "services invoiced separately"))
		require.NoError(t, err)
		_, err = idx.Apply(ctx, newRequest("c.txt", "hc", "a receipt was issued"))
		require.NoError(t, err)

		search := sqlite.NewSearchService(db)

		hits, err := search.Search(ctx, `"invoice number"`, evidex.SearchFilter{})
		require.NoError(t, err)
		require.Len(t, hits, 1)
		assert.Equal(t, "a.txt", hits[0].DocumentPath)
		assert.Equal(t, evidex.OffsetRange{Start: 0, End: 14}, hits[0].Match)

		hits, err = search.Search(ctx, "invoic*", evidex.SearchFilter{})
		require.NoError(t, err)
		assert.Len(t, hits, 2)
		requireTraceable(t, db, hits)

		hits, err = search.Search(ctx, "receipt OR invoiced", evidex.SearchFilter{})
		require.NoError(t, err)
		assert.Len(t, hits, 2)

		hits, err = search.Search(ctx, "invoice receipt", evidex.SearchFilter{})
		require.NoError(t, err)
		assert.Empty(t, hits)
	})

	t.Run("treats query syntax as plain text", func(t *testing.T) {
		t.Parallel()

		db := MustOpenDB(t)
		ctx := context.Background()

		_, err := sqlite.NewIndexService(db).Apply(ctx, newRequest("a.txt", "h1", "near the NOT gate"))
		require.NoError(t, err)

		search := sqlite.NewSearchService(db)
		for _, q := range []string{`NOT`, `near(`, `"unterminated`, `col:gate`, `^gate`, `a AND`, `-gate`} {
			_, err := search.Search(ctx, q, evidex.SearchFilter{})
			require.NoError(t, err, q)
		}

		hits, err := search.Search(ctx, "NOT", evidex.SearchFilter{})
		require.NoError(t, err)
		assert.Len(t, hits, 1)
	})

	t.Run("empty query returns empty slice", func(t *testing.T) {
		t.Parallel()

		db := MustOpenDB(t)
		search := sqlite.NewSearchService(db)

		for _, q := range []string{"", "   ", "!!!", `""`} {
			hits, err := search.Search(context.Background(), q, evidex.SearchFilter{})
			require.NoError(t, err)
			assert.NotNil(t, hits)
			assert.Empty(t, hits)
		}
	})

	t.Run("filters by document path", func(t *testing.T) {
		t.Parallel()

		db := MustOpenDB(t)
		idx := sqlite.NewIndexService(db)
		ctx := context.Background()

		for _, p := range []string{"a.txt", "b.txt", "c.txt"} {
			_, err := idx.Apply(ctx, newRequest(p, "h"+p, "shared term"))
			require.NoError(t, err)
		}

		hits, err := sqlite.NewSearchService(db).Search(ctx, "shared",
			evidex.SearchFilter{DocumentPaths: []string{"c.txt", "a.txt"}})
		require.NoError(t, err)
		require.Len(t, hits, 2)
		assert.Equal(t, "a.txt", hits[0].DocumentPath)
		assert.Equal(t, "c.txt", hits[1].DocumentPath)
	})

	t.Run("filters by entity type presence", func(t *testing.T) {
		t.Parallel()

		db := MustOpenDB(t)
		ctx := context.Background()

		page1 := "contract signed by Jane Doe"
		page2 := "contract signed in Paris"
		req := newRequest("a.txt", "h1", page1, page2)
		req.Mentions = []evidex.PageMention{
			mention(t, 1, page1, evidex.EntityPerson, "Jane Doe"),
			mention(t, 2, page2, evidex.EntityPlace, "Paris"),
		}
		_, err := sqlite.NewIndexService(db).Apply(ctx, req)
		require.NoError(t, err)

		search := sqlite.NewSearchService(db)

		hits, err := search.Search(ctx, "contract", evidex.SearchFilter{EntityTypes: []evidex.EntityType{evidex.EntityPlace}})
		require.NoError(t, err)
		require.Len(t, hits, 1)
		assert.Equal(t, 2, hits[0].PageNumber)

		hits, err = search.Search(ctx, "contract", evidex.SearchFilter{
			EntityTypes: []evidex.EntityType{evidex.EntityPlace, evidex.EntityPerson},
		})
		require.NoError(t, err)
		assert.Empty(t, hits)
	})

	t.Run("filters by date range", func(t *testing.T) {
		t.Parallel()

		db := MustOpenDB(t)
		ctx := context.Background()

		page1 := "contract dated March 4, 2021"
		page2 := "contract from 1998"
		page3 := "contract without a date"
		req := newRequest("a.txt", "h1", page1, page2, page3)
		req.Mentions = []evidex.PageMention{
			mention(t, 1, page1, evidex.EntityDate, "March 4, 2021"),
			mention(t, 2, page2, evidex.EntityDate, "1998"),
		}
		_, err := sqlite.NewIndexService(db).Apply(ctx, req)
		require.NoError(t, err)

		search := sqlite.NewSearchService(db)
		date := func(s string) *time.Time {
			d, err := time.Parse("2006-01-02", s)
			require.NoError(t, err)
			return &d
		}

		hits, err := search.Search(ctx, "contract", evidex.SearchFilter{DateFrom: date("2021-01-01"), DateTo: date("2021-12-31")})
		require.NoError(t, err)
		require.Len(t, hits, 1)
		assert.Equal(t, 1, hits[0].PageNumber)

		hits, err = search.Search(ctx, "contract", evidex.SearchFilter{DateFrom: date("1998-06-01"), DateTo: date("1998-06-30")})
		require.NoError(t, err)
		require.Len(t, hits, 1)
		assert.Equal(t, 2, hits[0].PageNumber)

		hits, err = search.Search(ctx, "contract", evidex.SearchFilter{DateFrom: date("2021-03-05")})
		require.NoError(t, err)
		assert.Empty(t, hits)

		hits, err = search.Search(ctx, "contract", evidex.SearchFilter{DateTo: date("2030-01-01")})
		require.NoError(t, err)
		assert.Len(t, hits, 2)

		_, err = search.Search(ctx, "contract", evidex.SearchFilter{DateFrom: date("2021-01-01"), DateTo: date("2020-01-01")})
		assert.Equal(t, evidex.EINVALID, evidex.ErrorCode(err))
	})

	t.Run("applies limit", func(t *testing.T) {
		t.Parallel()

		db := MustOpenDB(t)
		ctx := context.Background()

		texts := make([]string, 10)
		for i := range texts {
			texts[i] = "repeated word"
		}
		_, err := sqlite.NewIndexService(db).Apply(ctx, newRequest("a.txt", "h1", texts...))
		require.NoError(t, err)

		hits, err := sqlite.NewSearchService(db).Search(ctx, "repeated", evidex.SearchFilter{Limit: 3})
		require.NoError(t, err)
		require.Len(t, hits, 3)
		assert.Equal(t, []int{1, 2, 3}, []int{hits[0].PageNumber, hits[1].PageNumber, hits[2].PageNumber})
	})

	t.Run("locates matches in decomposed text", func(t *testing.T) {
		t.Parallel()

		db := MustOpenDB(t)
		ctx := context.Background()

		_, err := sqlite.NewIndexService(db).Apply(ctx, newRequest("a.txt", "h1", "Menu of the day: cafe\u0301 noir"))
		require.NoError(t, err)

		hits, err := sqlite.NewSearchService(db).Search(ctx, "cafe", evidex.SearchFilter{})
		require.NoError(t, err)
		require.Len(t, hits, 1)
		assert.Equal(t, evidex.OffsetRange{Start: 17, End: 21}, hits[0].Match)
		requireTraceable(t, db, hits)
	})

	t.Run("excludes failed documents", func(t *testing.T) {
		t.Parallel()

		db := MustOpenDB(t)
		idx := sqlite.NewIndexService(db)
		ctx := context.Background()

		_, err := idx.Apply(ctx, newRequest("a.txt", "h1", "vanishing text"))
		require.NoError(t, err)
		require.NoError(t, idx.MarkFailed(ctx, &evidex.Document{Path: "a.txt", ContentHash: "h2"},
			evidex.Errorf(evidex.ECORRUPT, "truncated")))

		hits, err := sqlite.NewSearchService(db).Search(ctx, "vanishing", evidex.SearchFilter{})
		require.NoError(t, err)
		assert.Empty(t, hits)
	})
}

func TestSearchService_FindEntities(t *testing.T) {
	t.Parallel()

	db := MustOpenDB(t)
	idx := sqlite.NewIndexService(db)
	ctx := context.Background()

	textA1 := "Memo to Jane Doe and John Smith."
	textA2 := "Jane Doe replied."
	reqA := newRequest("a.txt", "ha", textA1, textA2)
	reqA.Mentions = []evidex.PageMention{
		mention(t, 2, textA2, evidex.EntityPerson, "Jane Doe"),
		mention(t, 1, textA1, evidex.EntityPerson, "John Smith"),
		mention(t, 1, textA1, evidex.EntityPerson, "Jane Doe"),
	}
	_, err := idx.Apply(ctx, reqA)
	require.NoError(t, err)

	textB := "Attn: JANE DOE"
	reqB := newRequest("b.txt", "hb", textB)
	reqB.Mentions = []evidex.PageMention{mention(t, 1, textB, evidex.EntityPerson, "JANE DOE")}
	_, err = idx.Apply(ctx, reqB)
	require.NoError(t, err)

	search := sqlite.NewSearchService(db)

	t.Run("exact match groups mentions in order", func(t *testing.T) {
		t.Parallel()

		results, err := search.FindEntities(ctx, evidex.EntityPerson, "Jane  Doe", evidex.MatchExact)
		require.NoError(t, err)
		require.Len(t, results, 1)

		r := results[0]
		assert.Equal(t, evidex.EntityPerson, r.Entity.Type)
		assert.Equal(t, "jane doe", r.Entity.CanonicalText)
		assert.Equal(t, 3, r.MentionCount)
		require.Len(t, r.Mentions, 3)

		assert.Equal(t, "a.txt", r.Mentions[0].DocumentPath)
		assert.Equal(t, 1, r.Mentions[0].PageNumber)
		assert.Equal(t, "a.txt", r.Mentions[1].DocumentPath)
		assert.Equal(t, 2, r.Mentions[1].PageNumber)
		assert.Equal(t, "b.txt", r.Mentions[2].DocumentPath)
		assert.Equal(t, "JANE DOE", r.Mentions[2].SurfaceText)

		pages := map[string][]string{"a.txt": {textA1, textA2}, "b.txt": {textB}}
		for _, m := range r.Mentions {
			text := pages[m.DocumentPath][m.PageNumber-1]
			assert.Equal(t, m.SurfaceText, text[m.Offsets.Start:m.Offsets.End])
			assert.Equal(t, m.Snippet, text[m.SnippetOffsets.Start:m.SnippetOffsets.End])
		}
	})

	t.Run("prefix match returns every entity with the prefix", func(t *testing.T) {
		t.Parallel()

		results, err := search.FindEntities(ctx, evidex.EntityPerson, "J", evidex.MatchPrefix)
		require.NoError(t, err)
		require.Len(t, results, 2)
		assert.Equal(t, "jane doe", results[0].Entity.CanonicalText)
		assert.Equal(t, "john smith", results[1].Entity.CanonicalText)
	})

	t.Run("type mismatch returns empty", func(t *testing.T) {
		t.Parallel()

		results, err := search.FindEntities(ctx, evidex.EntityOrg, "jane doe", evidex.MatchExact)
		require.NoError(t, err)
		assert.NotNil(t, results)
		assert.Empty(t, results)
	})

	t.Run("rejects invalid input", func(t *testing.T) {
		t.Parallel()

		_, err := search.FindEntities(ctx, "ANIMAL", "cat", evidex.MatchExact)
		assert.Equal(t, evidex.EINVALID, evidex.ErrorCode(err))

		_, err = search.FindEntities(ctx, evidex.EntityPerson, "  ", evidex.MatchPrefix)
		assert.Equal(t, evidex.EINVALID, evidex.ErrorCode(err))

		_, err = search.FindEntities(ctx, evidex.EntityPerson, "x", "FUZZY")
		assert.Equal(t, evidex.EINVALID, evidex.ErrorCode(err))
	})

	t.Run("date entities match any written form", func(t *testing.T) {
		t.Parallel()

		db := MustOpenDB(t)
		text := "Due 2021-03-04, confirmed March 4, 2021."
		req := newRequest("d.txt", "hd", text)
		req.Mentions = []evidex.PageMention{
			mention(t, 1, text, evidex.EntityDate, "2021-03-04"),
			mention(t, 1, text, evidex.EntityDate, "March 4, 2021"),
		}
		_, err := sqlite.NewIndexService(db).Apply(ctx, req)
		require.NoError(t, err)

		results, err := sqlite.NewSearchService(db).FindEntities(ctx, evidex.EntityDate, "03/04/2021", evidex.MatchExact)
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, "2021-03-04", results[0].Entity.CanonicalText)
		assert.Equal(t, 2, results[0].MentionCount)
	})
}

func TestSearchService_TopEntities(t *testing.T) {
	t.Parallel()

	db := MustOpenDB(t)
	idx := sqlite.NewIndexService(db)
	ctx := context.Background()

	text := "Acme Corp and Globex and Acme Corp again with Initech and Globex and Acme Corp"
	var mentions []evidex.PageMention
	for _, org := range []string{"Acme Corp", "Globex", "Initech"} {
		off := 0
		for {
			i := strings.Index(text[off:], org)
			if i < 0 {
				break
			}
			start := off + i
			mentions = append(mentions, evidex.PageMention{PageNumber: 1, RawMention: evidex.RawMention{
				Type: evidex.EntityOrg, SurfaceText: org, StartOffset: start, EndOffset: start + len(org),
			}})
			off = start + len(org)
		}
	}
	req := newRequest("a.txt", "h1", text)
	req.Mentions = mentions
	_, err := idx.Apply(ctx, req)
	require.NoError(t, err)

	other := "Globex memo"
	reqB := newRequest("b.txt", "h2", other)
	reqB.Mentions = []evidex.PageMention{mention(t, 1, other, evidex.EntityOrg, "Globex")}
	_, err = idx.Apply(ctx, reqB)
	require.NoError(t, err)

	top, err := sqlite.NewSearchService(db).TopEntities(ctx, evidex.EntityOrg, 2)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, "acme corp", top[0].Entity.CanonicalText)
	assert.Equal(t, 3, top[0].MentionCount)
	assert.Equal(t, 1, top[0].Documents)
	assert.Equal(t, "globex", top[1].Entity.CanonicalText)
	assert.Equal(t, 3, top[1].MentionCount)
	assert.Equal(t, 2, top[1].Documents)

	_, err = sqlite.NewSearchService(db).TopEntities(ctx, "ANIMAL", 5)
	assert.Equal(t, evidex.EINVALID, evidex.ErrorCode(err))
}

func TestSearchService_FindAssets(t *testing.T) {
	t.Parallel()

	db := MustOpenDB(t)
	idx := sqlite.NewIndexService(db)
	search := sqlite.NewSearchService(db)
	ctx := context.Background()

	textA := "Charter of G-ABCD and G-ABCE, crew for G-ABCD."
	reqA := newRequest("charter.txt", "h1", "cover page", textA)
	reqA.Assets = []evidex.PageAsset{
		assetRef(t, 2, textA, evidex.AssetAircraftReg, "G-ABCD"),
		assetRef(t, 2, textA, evidex.AssetAircraftReg, "G-ABCE"),
		{PageNumber: 2, RawAsset: evidex.RawAsset{
			Type: evidex.AssetAircraftReg, SurfaceText: "G-ABCD",
			StartOffset: strings.LastIndex(textA, "G-ABCD"), EndOffset: strings.LastIndex(textA, "G-ABCD") + 6,
		}},
	}
	_, err := idx.Apply(ctx, reqA)
	require.NoError(t, err)

	t.Run("exact lookup is case insensitive and traceable", func(t *testing.T) {
		t.Parallel()

		results, err := search.FindAssets(ctx, evidex.AssetAircraftReg, "g-abcd", evidex.MatchExact)
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, "G-ABCD", results[0].Asset.CanonicalText)
		assert.Equal(t, 2, results[0].MentionCount)

		for _, m := range results[0].Mentions {
			assert.Equal(t, "charter.txt", m.DocumentPath)
			assert.Equal(t, 2, m.PageNumber)
			assert.Equal(t, "G-ABCD", textA[m.Offsets.Start:m.Offsets.End])
			assert.Contains(t, m.Snippet, "G-ABCD")
		}
		assert.Less(t, results[0].Mentions[0].Offsets.Start, results[0].Mentions[1].Offsets.Start)
	})

	t.Run("prefix lookup groups by asset", func(t *testing.T) {
		t.Parallel()

		results, err := search.FindAssets(ctx, evidex.AssetAircraftReg, "G-ABC", evidex.MatchPrefix)
		require.NoError(t, err)
		require.Len(t, results, 2)
		assert.Equal(t, "G-ABCD", results[0].Asset.CanonicalText)
		assert.Equal(t, "G-ABCE", results[1].Asset.CanonicalText)
	})

	t.Run("type is part of the identity", func(t *testing.T) {
		t.Parallel()

		results, err := search.FindAssets(ctx, evidex.AssetIMO, "G-ABCD", evidex.MatchExact)
		require.NoError(t, err)
		assert.Empty(t, results)
	})

	t.Run("rejects bad input", func(t *testing.T) {
		t.Parallel()

		_, err := search.FindAssets(ctx, "HULL", "x", evidex.MatchExact)
		assert.Equal(t, evidex.EINVALID, evidex.ErrorCode(err))

		_, err = search.FindAssets(ctx, evidex.AssetIMO, "  ", evidex.MatchExact)
		assert.Equal(t, evidex.EINVALID, evidex.ErrorCode(err))

		_, err = search.FindAssets(ctx, evidex.AssetIMO, "9074729", "FUZZY")
		assert.Equal(t, evidex.EINVALID, evidex.ErrorCode(err))
	})
}

func TestSearchService_TopAssets(t *testing.T) {
	t.Parallel()

	db := MustOpenDB(t)
	idx := sqlite.NewIndexService(db)
	ctx := context.Background()

	textA := "IMO 9074729 then IMO 9074730"
	reqA := newRequest("a.txt", "h1", textA)
	reqA.Assets = []evidex.PageAsset{
		assetRef(t, 1, textA, evidex.AssetIMO, "IMO 9074729"),
		assetRef(t, 1, textA, evidex.AssetIMO, "IMO 9074730"),
	}
	_, err := idx.Apply(ctx, reqA)
	require.NoError(t, err)

	textB := "Arrival of IMO9074730"
	reqB := newRequest("b.txt", "h2", textB)
	reqB.Assets = []evidex.PageAsset{assetRef(t, 1, textB, evidex.AssetIMO, "IMO9074730")}
	_, err = idx.Apply(ctx, reqB)
	require.NoError(t, err)

	top, err := sqlite.NewSearchService(db).TopAssets(ctx, evidex.AssetIMO, 5)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, "IMO 9074730", top[0].Asset.CanonicalText)
	assert.Equal(t, 2, top[0].MentionCount)
	assert.Equal(t, 2, top[0].Documents)
	assert.Equal(t, "IMO 9074729", top[1].Asset.CanonicalText)
	assert.Equal(t, 1, top[1].MentionCount)

	none, err := sqlite.NewSearchService(db).TopAssets(ctx, evidex.AssetAircraftReg, 5)
	require.NoError(t, err)
	assert.Empty(t, none)

	_, err = sqlite.NewSearchService(db).TopAssets(ctx, "HULL", 5)
	assert.Equal(t, evidex.EINVALID, evidex.ErrorCode(err))
}
