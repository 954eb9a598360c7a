package sqlite

import (
	"context"
	"database/sql"
	"strings"

	"github.com/fwojciec/evidex"
)

// Compile-time interface verification.
var _ evidex.DocumentService = (*DocumentService)(nil)

// DocumentService implements evidex.DocumentService using SQLite.
type DocumentService struct {
	db *DB
}

// NewDocumentService creates a new DocumentService.
func NewDocumentService(db *DB) *DocumentService {
	return &DocumentService{db: db}
}

const documentColumns = "id, path, content_hash, mime_type, kind, ingested_at, page_count, status, failure_reason, tool_version"

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (*evidex.Document, error) {
	var doc evidex.Document
	var kind, status, ingestedAt string

	if err := row.Scan(&doc.ID, &doc.Path, &doc.ContentHash, &doc.MimeType, &kind, &ingestedAt,
		&doc.PageCount, &status, &doc.FailureReason, &doc.ToolVersion); err != nil {
		return nil, err
	}
	doc.Kind = evidex.ContentKind(kind)
	doc.Status = evidex.DocumentStatus(status)

	var err error
	if doc.IngestedAt, err = parseRFC3339(ingestedAt, "ingested_at"); err != nil {
		return nil, err
	}
	return &doc, nil
}

// FindDocumentByPath retrieves a document by its source path.
func (s *DocumentService) FindDocumentByPath(ctx context.Context, path string) (*evidex.Document, error) {
	doc, err := scanDocument(s.db.QueryRowContext(ctx,
		"SELECT "+documentColumns+" FROM documents WHERE path = ?", path))
	if err == sql.ErrNoRows {
		return nil, evidex.Errorf(evidex.ENOTFOUND, "document %q not found", path)
	}
	if err != nil {
		return nil, readError("find document", err)
	}
	return doc, nil
}

// FindDocuments retrieves documents matching the filter.
func (s *DocumentService) FindDocuments(ctx context.Context, filter evidex.DocumentFilter) ([]*evidex.Document, error) {
	var query strings.Builder
	var args []any

	query.WriteString("SELECT " + documentColumns + " FROM documents WHERE 1=1")

	if filter.Path != nil {
		query.WriteString(" AND path = ?")
		args = append(args, *filter.Path)
	}
	if filter.Status != nil {
		query.WriteString(" AND status = ?")
		args = append(args, string(*filter.Status))
	}

	query.WriteString(" ORDER BY path ASC")
	appendPagination(&query, &args, filter.Limit, filter.Offset)

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, readError("find documents", err)
	}
	defer rows.Close()

	docs := []*evidex.Document{}
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, readError("scan document", err)
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, readError("find documents", err)
	}
	return docs, nil
}

// FindPage retrieves a stored page by document path and page number.
func (s *DocumentService) FindPage(ctx context.Context, path string, pageNumber int) (*evidex.Page, error) {
	var page evidex.Page
	var method string
	var low int

	err := s.db.QueryRowContext(ctx, `
		SELECT p.document_id, d.path, p.page_number, p.text, p.extraction_method, p.confidence, p.low_confidence
		FROM pages p
		JOIN documents d ON d.id = p.document_id
		WHERE d.path = ? AND p.page_number = ?
	`, path, pageNumber).Scan(&page.DocumentID, &page.DocumentPath, &page.PageNumber, &page.Text,
		&method, &page.Confidence, &low)

	if err == sql.ErrNoRows {
		return nil, evidex.Errorf(evidex.ENOTFOUND, "page %d of %q not found", pageNumber, path)
	}
	if err != nil {
		return nil, readError("find page", err)
	}
	page.ExtractionMethod = evidex.ExtractionMethod(method)
	page.LowConfidence = low != 0
	return &page, nil
}
