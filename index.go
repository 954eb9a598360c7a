package evidex

import "context"

// IndexOutcome reports what Apply did with a document.
type IndexOutcome string

// IndexOutcome values.
const (
	OutcomeIndexed   IndexOutcome = "indexed"
	OutcomeUnchanged IndexOutcome = "unchanged"
)

// IndexRequest is one document's full extraction and entity output.
type IndexRequest struct {
	Document *Document
	Pages    []*PageUnit
	Mentions []PageMention
	Assets   []PageAsset
}

// Validate returns an error if the request could not be committed as a
// consistent document.
func (r *IndexRequest) Validate() error {
	if r.Document == nil {
		return Errorf(EINVALID, "index request document required")
	}
	if err := r.Document.Validate(); err != nil {
		return err
	}
	pages := make(map[int]*PageUnit, len(r.Pages))
	for _, p := range r.Pages {
		if err := p.Validate(); err != nil {
			return err
		}
		if _, dup := pages[p.PageNumber]; dup {
			return Errorf(EINVALID, "duplicate page %d", p.PageNumber)
		}
		pages[p.PageNumber] = p
	}
	for _, m := range r.Mentions {
		if err := validSpan(pages, m.PageNumber, m.SurfaceText, m.StartOffset, m.EndOffset); err != nil {
			return err
		}
	}
	for _, a := range r.Assets {
		if _, err := ParseAssetType(string(a.Type)); err != nil {
			return err
		}
		if err := validSpan(pages, a.PageNumber, a.SurfaceText, a.StartOffset, a.EndOffset); err != nil {
			return err
		}
	}
	return nil
}

func validSpan(pages map[int]*PageUnit, pageNumber int, surface string, start, end int) error {
	p, ok := pages[pageNumber]
	if !ok {
		return Errorf(EINVALID, "mention %q references missing page %d", surface, pageNumber)
	}
	if start < 0 || end > len(p.Text) || start >= end {
		return Errorf(EINVALID, "mention %q has invalid offsets [%d,%d) on page %d",
			surface, start, end, pageNumber)
	}
	return nil
}

// DocumentKey identifies a committed document version.
type DocumentKey struct {
	Path        string
	ContentHash string
	ToolVersion string
}

// IndexStats holds row counts across the store.
type IndexStats struct {
	Documents     int `json:"documents"`
	Failed        int `json:"failed"`
	Pages         int `json:"pages"`
	Entities      int `json:"entities"`
	Mentions      int `json:"mentions"`
	Assets        int `json:"assets"`
	AssetMentions int `json:"assetMentions"`
	IndexEntries  int `json:"indexEntries"`
}

// IndexService is the transactional writer of document state.
// Implementations serialize writes; only one transaction is active at a time.
type IndexService interface {
	// Unchanged reports whether key is already committed with status OK.
	Unchanged(ctx context.Context, key DocumentKey) (bool, error)

	// Apply replaces all rows owned by the request's document path in one
	// transaction. Returns OutcomeUnchanged without writing when the
	// document is already committed at the same hash and tool version.
	Apply(ctx context.Context, req *IndexRequest) (IndexOutcome, error)

	// MarkFailed records doc as FAILED with cause and removes any pages,
	// mentions, asset references and index entries of its prior version.
	MarkFailed(ctx context.Context, doc *Document, cause error) error

	// KnownDocuments lists every document committed with status OK.
	KnownDocuments(ctx context.Context) ([]DocumentKey, error)

	// Stats returns row counts.
	Stats(ctx context.Context) (*IndexStats, error)
}
