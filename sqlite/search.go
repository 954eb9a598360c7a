package sqlite

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/fwojciec/evidex"
)

// Compile-time interface verification.
var _ evidex.SearchService = (*SearchService)(nil)

// SearchService implements evidex.SearchService over the FTS5 index.
type SearchService struct {
	db *DB

	// SnippetWindow is the bytes of context kept on each side of a match.
	// Defaults to evidex.DefaultSnippetWindow.
	SnippetWindow int
}

// NewSearchService creates a new SearchService.
func NewSearchService(db *DB) *SearchService {
	return &SearchService{db: db, SnippetWindow: evidex.DefaultSnippetWindow}
}

func (s *SearchService) window() int {
	if s.SnippetWindow <= 0 {
		return evidex.DefaultSnippetWindow
	}
	return s.SnippetWindow
}

// ftsExpression renders a parsed query as an FTS5 MATCH expression. Every
// term is emitted as a quoted string so user input never reaches the FTS5
// query parser as syntax.
func ftsExpression(q evidex.Query) string {
	var b strings.Builder
	for i, term := range q.Terms {
		if i > 0 {
			if term.Or {
				b.WriteString(" OR ")
			} else {
				b.WriteString(" AND ")
			}
		}
		b.WriteByte('"')
		b.WriteString(strings.ReplaceAll(strings.Join(term.Words, " "), `"`, `""`))
		b.WriteByte('"')
		if term.Prefix {
			b.WriteByte('*')
		}
	}
	return b.String()
}

// Search performs keyword search ordered by bm25 relevance, then by
// document path and page number.
func (s *SearchService) Search(ctx context.Context, query string, filter evidex.SearchFilter) ([]*evidex.Hit, error) {
	q := evidex.ParseQuery(query)
	if q.IsEmpty() {
		return []*evidex.Hit{}, nil
	}
	if filter.DateFrom != nil && filter.DateTo != nil && filter.DateTo.Before(*filter.DateFrom) {
		return nil, evidex.Errorf(evidex.EINVALID, "date range end is before its start")
	}

	var sb strings.Builder
	args := []any{ftsExpression(q)}

	sb.WriteString(`
		SELECT d.path, p.page_number, p.text, p.extraction_method, p.confidence, p.low_confidence,
			bm25(pages_fts) AS score
		FROM pages_fts
		JOIN pages p ON p.id = pages_fts.rowid
		JOIN documents d ON d.id = p.document_id
		WHERE pages_fts MATCH ? AND d.status = 'OK'`)

	if len(filter.DocumentPaths) > 0 {
		sb.WriteString(" AND ")
		appendIn(&sb, &args, "d.path", filter.DocumentPaths)
	}

	if filter.DateFrom != nil || filter.DateTo != nil {
		// A partial date ("2021", "2021-03") covers its whole span and
		// matches when that span overlaps the range.
		sb.WriteString(`
			AND EXISTS (
				SELECT 1 FROM entity_mentions m
				JOIN entities e ON e.id = m.entity_id
				WHERE m.document_id = p.document_id AND m.page_number = p.page_number
					AND e.type = 'DATE' AND e.canonical_text GLOB '[0-9][0-9][0-9][0-9]*'`)
		if filter.DateFrom != nil {
			sb.WriteString(`
					AND (CASE length(e.canonical_text)
						WHEN 4 THEN e.canonical_text || '-12-31'
						WHEN 7 THEN e.canonical_text || '-31'
						ELSE e.canonical_text END) >= ?`)
			args = append(args, filter.DateFrom.Format(evidex.DateLayoutDay))
		}
		if filter.DateTo != nil {
			sb.WriteString(`
					AND (CASE length(e.canonical_text)
						WHEN 4 THEN e.canonical_text || '-01-01'
						WHEN 7 THEN e.canonical_text || '-01'
						ELSE e.canonical_text END) <= ?`)
			args = append(args, filter.DateTo.Format(evidex.DateLayoutDay))
		}
		sb.WriteString(")")
	}

	for _, typ := range filter.EntityTypes {
		sb.WriteString(`
			AND EXISTS (
				SELECT 1 FROM entity_mentions m
				JOIN entities e ON e.id = m.entity_id
				WHERE m.document_id = p.document_id AND m.page_number = p.page_number AND e.type = ?)`)
		args = append(args, string(typ))
	}

	sb.WriteString(" ORDER BY score ASC, d.path ASC, p.page_number ASC LIMIT ?")
	limit := filter.Limit
	if limit <= 0 {
		limit = evidex.DefaultSearchLimit
	}
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, readError("search", err)
	}
	defer rows.Close()

	hits := []*evidex.Hit{}
	for rows.Next() {
		var hit evidex.Hit
		var text, method string
		var low int
		var score float64
		if err := rows.Scan(&hit.DocumentPath, &hit.PageNumber, &text, &method, &hit.Confidence, &low, &score); err != nil {
			return nil, readError("scan hit", err)
		}
		hit.ExtractionMethod = evidex.ExtractionMethod(method)
		hit.LowConfidence = low != 0
		hit.Rank = -score

		match, ok := evidex.FindMatch(text, q)
		if !ok {
			// The index matched on a token form the query tokenizer does
			// not reproduce; anchor the snippet at the page start.
			match = evidex.OffsetRange{}
		}
		hit.Match = match
		hit.Snippet, hit.Offsets = evidex.Snippet(text, match, s.window())
		hits = append(hits, &hit)
	}
	if err := rows.Err(); err != nil {
		return nil, readError("search", err)
	}
	return hits, nil
}

// FindEntities finds canonical entities of typ matching text. Mentions are
// ordered by document path, page number and start offset.
func (s *SearchService) FindEntities(ctx context.Context, typ evidex.EntityType, text string, mode evidex.MatchMode) ([]*evidex.EntityResult, error) {
	if _, err := evidex.ParseEntityType(string(typ)); err != nil {
		return nil, err
	}

	var cond string
	var args []any
	switch mode {
	case evidex.MatchExact, "":
		canonical := evidex.NormalizeEntityText(typ, text)
		if canonical == "" {
			return nil, evidex.Errorf(evidex.EINVALID, "entity text required")
		}
		cond = "e.canonical_text = ?"
		args = []any{string(typ), canonical}
	case evidex.MatchPrefix:
		prefix := evidex.NormalizeEntityPrefix(text)
		if prefix == "" {
			return nil, evidex.Errorf(evidex.EINVALID, "entity prefix required")
		}
		cond = "substr(e.canonical_text, 1, ?) = ?"
		args = []any{string(typ), utf8.RuneCountInString(prefix), prefix}
	default:
		return nil, evidex.Errorf(evidex.EINVALID, "unknown match mode %q", mode)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT e.id, e.type, e.canonical_text, d.path, m.page_number, m.start_offset, m.end_offset,
			m.surface_text, p.text
		FROM entities e
		JOIN entity_mentions m ON m.entity_id = e.id
		JOIN pages p ON p.document_id = m.document_id AND p.page_number = m.page_number
		JOIN documents d ON d.id = m.document_id
		WHERE e.type = ? AND d.status = 'OK' AND `+cond+`
		ORDER BY e.canonical_text ASC, d.path ASC, m.page_number ASC, m.start_offset ASC, m.end_offset ASC
	`, args...)
	if err != nil {
		return nil, readError("find entities", err)
	}
	defer rows.Close()

	results := []*evidex.EntityResult{}
	var current *evidex.EntityResult
	for rows.Next() {
		var e evidex.Entity
		var typ string
		var hit evidex.MentionHit
		var pageText string
		if err := rows.Scan(&e.ID, &typ, &e.CanonicalText, &hit.DocumentPath, &hit.PageNumber,
			&hit.Offsets.Start, &hit.Offsets.End, &hit.SurfaceText, &pageText); err != nil {
			return nil, readError("scan mention", err)
		}
		e.Type = evidex.EntityType(typ)
		hit.Snippet, hit.SnippetOffsets = evidex.Snippet(pageText, hit.Offsets, s.window())

		if current == nil || current.Entity.ID != e.ID {
			current = &evidex.EntityResult{Entity: &e}
			results = append(results, current)
		}
		current.Mentions = append(current.Mentions, &hit)
		current.MentionCount++
	}
	if err := rows.Err(); err != nil {
		return nil, readError("find entities", err)
	}
	return results, nil
}

// TopEntities lists the most mentioned entities of typ, most mentioned
// first, ties broken by canonical text.
func (s *SearchService) TopEntities(ctx context.Context, typ evidex.EntityType, limit int) ([]*evidex.EntityCount, error) {
	if _, err := evidex.ParseEntityType(string(typ)); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 10
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT e.id, e.type, e.canonical_text, COUNT(*), COUNT(DISTINCT m.document_id)
		FROM entities e
		JOIN entity_mentions m ON m.entity_id = e.id
		JOIN documents d ON d.id = m.document_id
		WHERE e.type = ? AND d.status = 'OK'
		GROUP BY e.id
		ORDER BY COUNT(*) DESC, e.canonical_text ASC
		LIMIT ?
	`, string(typ), limit)
	if err != nil {
		return nil, readError("top entities", err)
	}
	defer rows.Close()

	counts := []*evidex.EntityCount{}
	for rows.Next() {
		var e evidex.Entity
		var typ string
		var c evidex.EntityCount
		if err := rows.Scan(&e.ID, &typ, &e.CanonicalText, &c.MentionCount, &c.Documents); err != nil {
			return nil, readError("scan entity", err)
		}
		e.Type = evidex.EntityType(typ)
		c.Entity = &e
		counts = append(counts, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, readError("top entities", err)
	}
	return counts, nil
}

// FindAssets finds canonical assets of typ matching text. Prefix lookups
// compare against the canonical form, so "g-ab" finds "G-ABCD".
func (s *SearchService) FindAssets(ctx context.Context, typ evidex.AssetType, text string, mode evidex.MatchMode) ([]*evidex.AssetResult, error) {
	if _, err := evidex.ParseAssetType(string(typ)); err != nil {
		return nil, err
	}
	canonical := evidex.NormalizeAssetText(typ, text)
	if canonical == "" {
		return nil, evidex.Errorf(evidex.EINVALID, "asset identifier required")
	}

	var cond string
	switch mode {
	case evidex.MatchExact, "":
		cond = "a.canonical_text = ?1"
	case evidex.MatchPrefix:
		cond = "substr(a.canonical_text, 1, length(?1)) = ?1"
	default:
		return nil, evidex.Errorf(evidex.EINVALID, "unknown match mode %q", mode)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT a.id, a.type, a.canonical_text, d.path, m.page_number, m.start_offset, m.end_offset,
			m.surface_text, p.text
		FROM assets a
		JOIN asset_mentions m ON m.asset_id = a.id
		JOIN pages p ON p.document_id = m.document_id AND p.page_number = m.page_number
		JOIN documents d ON d.id = m.document_id
		WHERE `+cond+` AND a.type = ?2 AND d.status = 'OK'
		ORDER BY a.canonical_text ASC, d.path ASC, m.page_number ASC, m.start_offset ASC, m.end_offset ASC
	`, canonical, string(typ))
	if err != nil {
		return nil, readError("find assets", err)
	}
	defer rows.Close()

	results := []*evidex.AssetResult{}
	var current *evidex.AssetResult
	for rows.Next() {
		var a evidex.Asset
		var typ string
		var hit evidex.MentionHit
		var pageText string
		if err := rows.Scan(&a.ID, &typ, &a.CanonicalText, &hit.DocumentPath, &hit.PageNumber,
			&hit.Offsets.Start, &hit.Offsets.End, &hit.SurfaceText, &pageText); err != nil {
			return nil, readError("scan asset mention", err)
		}
		a.Type = evidex.AssetType(typ)
		hit.Snippet, hit.SnippetOffsets = evidex.Snippet(pageText, hit.Offsets, s.window())

		if current == nil || current.Asset.ID != a.ID {
			current = &evidex.AssetResult{Asset: &a}
			results = append(results, current)
		}
		current.Mentions = append(current.Mentions, &hit)
		current.MentionCount++
	}
	if err := rows.Err(); err != nil {
		return nil, readError("find assets", err)
	}
	return results, nil
}

// TopAssets lists the most referenced assets of typ, ties broken by
// canonical text.
func (s *SearchService) TopAssets(ctx context.Context, typ evidex.AssetType, limit int) ([]*evidex.AssetCount, error) {
	if _, err := evidex.ParseAssetType(string(typ)); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 10
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT a.id, a.type, a.canonical_text, COUNT(*), COUNT(DISTINCT m.document_id)
		FROM assets a
		JOIN asset_mentions m ON m.asset_id = a.id
		JOIN documents d ON d.id = m.document_id
		WHERE a.type = ? AND d.status = 'OK'
		GROUP BY a.id
		ORDER BY COUNT(*) DESC, a.canonical_text ASC
		LIMIT ?
	`, string(typ), limit)
	if err != nil {
		return nil, readError("top assets", err)
	}
	defer rows.Close()

	counts := []*evidex.AssetCount{}
	for rows.Next() {
		var a evidex.Asset
		var typ string
		var c evidex.AssetCount
		if err := rows.Scan(&a.ID, &typ, &a.CanonicalText, &c.MentionCount, &c.Documents); err != nil {
			return nil, readError("scan asset", err)
		}
		a.Type = evidex.AssetType(typ)
		c.Asset = &a
		counts = append(counts, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, readError("top assets", err)
	}
	return counts, nil
}
