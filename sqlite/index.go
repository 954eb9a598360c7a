package sqlite

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/fwojciec/evidex"
	"github.com/google/uuid"
)

// Compile-time interface verification.
var _ evidex.IndexService = (*IndexService)(nil)

// IndexService implements evidex.IndexService using SQLite.
//
// Every document is written in a single transaction that replaces all rows
// owned by its path. Readers on the reader pool never see a partial write.
type IndexService struct {
	db *DB
	mu sync.Mutex

	// beforeCommit runs inside the transaction just before commit.
	beforeCommit func(tx *sql.Tx) error
}

// NewIndexService creates a new IndexService.
func NewIndexService(db *DB) *IndexService {
	return &IndexService{db: db}
}

// Unchanged reports whether key is already committed with status OK.
func (s *IndexService) Unchanged(ctx context.Context, key evidex.DocumentKey) (bool, error) {
	var hash, status, tool string
	err := s.db.QueryRowContext(ctx,
		"SELECT content_hash, status, tool_version FROM documents WHERE path = ?", key.Path,
	).Scan(&hash, &status, &tool)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, readError("check document", err)
	}
	return sameVersion(key, hash, status, tool), nil
}

// sameVersion reports whether a stored row matches key. An empty tool
// version on key matches any stored tool version.
func sameVersion(key evidex.DocumentKey, hash, status, tool string) bool {
	if evidex.DocumentStatus(status) != evidex.StatusOK || hash != key.ContentHash {
		return false
	}
	return key.ToolVersion == "" || key.ToolVersion == tool
}

// Apply commits a document's pages, entities, mentions and asset
// references atomically.
func (s *IndexService) Apply(ctx context.Context, req *evidex.IndexRequest) (evidex.IndexOutcome, error) {
	if err := req.Validate(); err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	doc := req.Document

	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		return "", storageError("begin transaction", err)
	}
	defer func() { _ = tx.Rollback() }()

	id, existing, err := s.existing(ctx, tx, doc)
	if err != nil {
		return "", err
	}
	if existing {
		return evidex.OutcomeUnchanged, nil
	}

	ingestedAt := s.db.now()
	if err := replaceDocument(ctx, tx, id, doc, evidex.StatusOK, "", len(req.Pages), ingestedAt); err != nil {
		return "", err
	}

	for _, p := range req.Pages {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO pages (document_id, page_number, text, extraction_method, confidence, low_confidence)
			VALUES (?, ?, ?, ?, ?, ?)
		`, id, p.PageNumber, p.Text, string(p.ExtractionMethod), p.Confidence, boolInt(p.LowConfidence)); err != nil {
			return "", storageError("insert page", err)
		}
	}

	entities := make(map[evidex.Entity]string)
	for _, m := range req.Mentions {
		key := evidex.Entity{Type: m.Type, CanonicalText: evidex.NormalizeEntityText(m.Type, m.SurfaceText)}
		entityID, ok := entities[key]
		if !ok {
			entityID, err = findOrCreate(ctx, tx, "entities", string(key.Type), key.CanonicalText)
			if err != nil {
				return "", err
			}
			entities[key] = entityID
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO entity_mentions (entity_id, document_id, page_number, start_offset, end_offset, surface_text)
			VALUES (?, ?, ?, ?, ?, ?)
		`, entityID, id, m.PageNumber, m.StartOffset, m.EndOffset, m.SurfaceText); err != nil {
			return "", storageError("insert mention", err)
		}
	}

	assets := make(map[evidex.Asset]string)
	for _, a := range req.Assets {
		key := evidex.Asset{Type: a.Type, CanonicalText: evidex.NormalizeAssetText(a.Type, a.SurfaceText)}
		if key.CanonicalText == "" {
			return "", evidex.Errorf(evidex.EINVALID, "asset %q has no identifier", a.SurfaceText)
		}
		assetID, ok := assets[key]
		if !ok {
			assetID, err = findOrCreate(ctx, tx, "assets", string(key.Type), key.CanonicalText)
			if err != nil {
				return "", err
			}
			assets[key] = assetID
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO asset_mentions (asset_id, document_id, page_number, start_offset, end_offset, surface_text)
			VALUES (?, ?, ?, ?, ?, ?)
		`, assetID, id, a.PageNumber, a.StartOffset, a.EndOffset, a.SurfaceText); err != nil {
			return "", storageError("insert asset mention", err)
		}
	}

	if err := pruneOrphans(ctx, tx); err != nil {
		return "", err
	}

	if s.beforeCommit != nil {
		if err := s.beforeCommit(tx); err != nil {
			return "", storageError("commit", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", storageError("commit", err)
	}

	doc.ID = id
	doc.Status = evidex.StatusOK
	doc.FailureReason = ""
	doc.PageCount = len(req.Pages)
	doc.IngestedAt = ingestedAt
	return evidex.OutcomeIndexed, nil
}

// existing returns the id to write doc under and whether the stored row
// already matches doc.
func (s *IndexService) existing(ctx context.Context, tx *sql.Tx, doc *evidex.Document) (string, bool, error) {
	var id, hash, status, tool string
	err := tx.QueryRowContext(ctx,
		"SELECT id, content_hash, status, tool_version FROM documents WHERE path = ?", doc.Path,
	).Scan(&id, &hash, &status, &tool)
	if err == sql.ErrNoRows {
		return uuid.New().String(), false, nil
	}
	if err != nil {
		return "", false, storageError("find document", err)
	}
	key := evidex.DocumentKey{Path: doc.Path, ContentHash: doc.ContentHash, ToolVersion: doc.ToolVersion}
	if sameVersion(key, hash, status, tool) {
		doc.ID = id
		return id, true, nil
	}
	return id, false, nil
}

// replaceDocument drops the pages of the prior version (mentions and FTS
// rows follow by cascade and trigger) and upserts the document row.
func replaceDocument(ctx context.Context, tx *sql.Tx, id string, doc *evidex.Document,
	status evidex.DocumentStatus, reason string, pageCount int, ingestedAt time.Time) error {
	if _, err := tx.ExecContext(ctx, "DELETE FROM pages WHERE document_id = ?", id); err != nil {
		return storageError("delete pages", err)
	}

	_, err := tx.ExecContext(ctx, `
		INSERT INTO documents (id, path, content_hash, mime_type, kind, ingested_at, page_count, status, failure_reason, tool_version)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			content_hash = excluded.content_hash,
			mime_type = excluded.mime_type,
			kind = excluded.kind,
			ingested_at = excluded.ingested_at,
			page_count = excluded.page_count,
			status = excluded.status,
			failure_reason = excluded.failure_reason,
			tool_version = excluded.tool_version
	`, id, doc.Path, doc.ContentHash, doc.MimeType, string(doc.Kind),
		ingestedAt.Format(time.RFC3339), pageCount, string(status), reason, doc.ToolVersion)
	if err != nil {
		return storageError("upsert document", err)
	}
	return nil
}

// findOrCreate returns the id of the (type, canonical_text) row of table,
// inserting it when missing. table is "entities" or "assets".
func findOrCreate(ctx context.Context, tx *sql.Tx, table, typ, canonical string) (string, error) {
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO `+table+` (id, type, canonical_text) VALUES (?, ?, ?)
		ON CONFLICT(type, canonical_text) DO NOTHING
	`, uuid.New().String(), typ, canonical); err != nil {
		return "", storageError("insert "+table, err)
	}

	var id string
	if err := tx.QueryRowContext(ctx,
		"SELECT id FROM "+table+" WHERE type = ? AND canonical_text = ?", typ, canonical,
	).Scan(&id); err != nil {
		return "", storageError("find "+table, err)
	}
	return id, nil
}

// pruneOrphans removes entities and assets no longer referenced by any
// mention.
func pruneOrphans(ctx context.Context, tx *sql.Tx) error {
	if _, err := tx.ExecContext(ctx, `
		DELETE FROM entities
		WHERE NOT EXISTS (SELECT 1 FROM entity_mentions m WHERE m.entity_id = entities.id)
	`); err != nil {
		return storageError("prune entities", err)
	}
	if _, err := tx.ExecContext(ctx, `
		DELETE FROM assets
		WHERE NOT EXISTS (SELECT 1 FROM asset_mentions m WHERE m.asset_id = assets.id)
	`); err != nil {
		return storageError("prune assets", err)
	}
	return nil
}

// MarkFailed records doc as FAILED and removes its prior committed version.
func (s *IndexService) MarkFailed(ctx context.Context, doc *evidex.Document, cause error) error {
	if doc == nil || doc.Path == "" {
		return evidex.Errorf(evidex.EINVALID, "document path required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		return storageError("begin transaction", err)
	}
	defer func() { _ = tx.Rollback() }()

	var id string
	err = tx.QueryRowContext(ctx, "SELECT id FROM documents WHERE path = ?", doc.Path).Scan(&id)
	if err == sql.ErrNoRows {
		id = uuid.New().String()
	} else if err != nil {
		return storageError("find document", err)
	}

	reason := evidex.FailureReason(cause)
	ingestedAt := s.db.now()
	if err := replaceDocument(ctx, tx, id, doc, evidex.StatusFailed, reason, 0, ingestedAt); err != nil {
		return err
	}
	if err := pruneOrphans(ctx, tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return storageError("commit", err)
	}

	doc.ID = id
	doc.Status = evidex.StatusFailed
	doc.FailureReason = reason
	doc.PageCount = 0
	doc.IngestedAt = ingestedAt
	return nil
}

// KnownDocuments lists every document committed with status OK.
func (s *IndexService) KnownDocuments(ctx context.Context) ([]evidex.DocumentKey, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT path, content_hash, tool_version FROM documents WHERE status = 'OK' ORDER BY path")
	if err != nil {
		return nil, readError("list documents", err)
	}
	defer rows.Close()

	var keys []evidex.DocumentKey
	for rows.Next() {
		var k evidex.DocumentKey
		if err := rows.Scan(&k.Path, &k.ContentHash, &k.ToolVersion); err != nil {
			return nil, readError("scan document", err)
		}
		keys = append(keys, k)
	}
	if err := rows.Err(); err != nil {
		return nil, readError("list documents", err)
	}
	return keys, nil
}

// Stats returns row counts.
func (s *IndexService) Stats(ctx context.Context) (*evidex.IndexStats, error) {
	var st evidex.IndexStats
	err := s.db.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM documents WHERE status = 'OK'),
			(SELECT COUNT(*) FROM documents WHERE status = 'FAILED'),
			(SELECT COUNT(*) FROM pages),
			(SELECT COUNT(*) FROM entities),
			(SELECT COUNT(*) FROM entity_mentions),
			(SELECT COUNT(*) FROM assets),
			(SELECT COUNT(*) FROM asset_mentions),
			(SELECT COUNT(*) FROM pages_fts_docsize)
	`).Scan(&st.Documents, &st.Failed, &st.Pages, &st.Entities, &st.Mentions,
		&st.Assets, &st.AssetMentions, &st.IndexEntries)
	if err != nil {
		return nil, readError("stats", err)
	}
	return &st, nil
}
