package evidex

import (
	"context"
	"time"
)

// DocumentStatus is the outcome of the latest ingestion attempt of a file.
type DocumentStatus string

// DocumentStatus values.
const (
	StatusOK     DocumentStatus = "OK"
	StatusFailed DocumentStatus = "FAILED"
)

// Document represents one raw file from the ingestion directory.
type Document struct {
	ID          string         `json:"id"`
	Path        string         `json:"path"`
	ContentHash string         `json:"contentHash"`
	MimeType    string         `json:"mimeType"`
	Kind        ContentKind    `json:"kind"`
	IngestedAt  time.Time      `json:"ingestedAt"`
	PageCount   int            `json:"pageCount"`
	Status      DocumentStatus `json:"status"`

	// FailureReason holds "<code>: <message>" for FAILED documents.
	FailureReason string `json:"failureReason,omitempty"`

	// ToolVersion identifies the extraction tooling that produced the pages.
	ToolVersion string `json:"toolVersion,omitempty"`
}

// Validate returns an error if the document contains invalid fields.
func (d *Document) Validate() error {
	if d.Path == "" {
		return Errorf(EINVALID, "document path required")
	}
	if d.ContentHash == "" {
		return Errorf(EINVALID, "document content hash required")
	}
	return nil
}

// DocumentService represents a read-only service over ingested documents.
type DocumentService interface {
	// FindDocumentByPath retrieves a document by its source path.
	// Returns ENOTFOUND if the document does not exist.
	FindDocumentByPath(ctx context.Context, path string) (*Document, error)

	// FindDocuments retrieves documents matching the filter, ordered by path.
	FindDocuments(ctx context.Context, filter DocumentFilter) ([]*Document, error)

	// FindPage retrieves a stored page by document path and page number.
	// Returns ENOTFOUND if the page does not exist.
	FindPage(ctx context.Context, path string, pageNumber int) (*Page, error)
}

// DocumentFilter represents a filter for FindDocuments.
type DocumentFilter struct {
	Path   *string         `json:"path"`
	Status *DocumentStatus `json:"status"`

	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}
