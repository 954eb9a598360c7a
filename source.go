package evidex

import "context"

// SourceFile is a regular file found under an ingestion root.
type SourceFile struct {
	// Path is the slash-separated path relative to the ingestion root.
	// It identifies the document across runs.
	Path string

	// FullPath is the location on disk.
	FullPath string

	Size     int64
	Kind     ContentKind
	MimeType string
}

// FileSource lists and reads raw files.
type FileSource interface {
	// Scan returns the regular files under root in lexical path order.
	// Symlinks and hidden entries are skipped.
	Scan(ctx context.Context, root string) ([]*SourceFile, error)

	// ReadFile returns the raw bytes of f.
	ReadFile(ctx context.Context, f *SourceFile) ([]byte, error)
}

// PageStore receives stored pages for export. Saved pages become visible
// only after Commit; Abort discards them.
type PageStore interface {
	Save(ctx context.Context, page *Page) error
	Commit() error
	Abort() error
}
