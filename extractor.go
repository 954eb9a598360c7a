package evidex

import "context"

// Recognition is the output of optical recognition over one image.
type Recognition struct {
	Text string

	// Confidence is the engine's mean confidence in the range 0..1.
	Confidence float64
}

// Recognizer is the optical-recognition capability.
type Recognizer interface {
	// Recognize returns the text found in an encoded image.
	Recognize(ctx context.Context, image []byte) (*Recognition, error)
}

// NativePage is the text layer of one page. Text is empty when the page
// carries no extractable text layer.
type NativePage struct {
	PageNumber int
	Text       string
}

// PageSet is the result of reading the native text layer of a document.
type PageSet struct {
	Pages     []NativePage
	PageCount int
}

// PageReader is the native page-text capability.
type PageReader interface {
	// ReadPages returns the text layer of every page in document order.
	ReadPages(ctx context.Context, document []byte) (*PageSet, error)
}

// PageRenderer renders a single page of a page-structured document to an
// encoded image suitable for a Recognizer.
type PageRenderer interface {
	RenderPage(ctx context.Context, document []byte, pageNumber int) ([]byte, error)
}

// TextExtractor converts one raw file into ordered page units.
type TextExtractor interface {
	// Extract returns page units with 1-based, strictly increasing page
	// numbers. Failures carry EUNSUPPORTED, ECORRUPT, EOCR or ETIMEOUT.
	Extract(ctx context.Context, data []byte, kind ContentKind) ([]*PageUnit, error)
}

// Converter converts an HTML document to plain readable text.
type Converter interface {
	Convert(html string) (string, error)
}
