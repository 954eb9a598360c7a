package evidex

// ExtractionMethod records how a page's text was obtained.
type ExtractionMethod string

// ExtractionMethod values.
const (
	MethodNative ExtractionMethod = "NATIVE"
	MethodOCR    ExtractionMethod = "OCR"
)

// PageUnit is one unit of extracted text prior to persistence.
type PageUnit struct {
	PageNumber       int              `json:"pageNumber"`
	Text             string           `json:"text"`
	ExtractionMethod ExtractionMethod `json:"extractionMethod"`
	Confidence       float64          `json:"confidence"`

	// LowConfidence is set when optical recognition scored below the
	// configured threshold. The page is still indexed.
	LowConfidence bool `json:"lowConfidence,omitempty"`
}

// Validate returns an error if the page unit contains invalid fields.
func (p *PageUnit) Validate() error {
	if p.PageNumber < 1 {
		return Errorf(EINVALID, "page number must be >= 1, got %d", p.PageNumber)
	}
	switch p.ExtractionMethod {
	case MethodNative, MethodOCR:
	default:
		return Errorf(EINVALID, "unknown extraction method %q", p.ExtractionMethod)
	}
	return nil
}

// Page is a persisted page owned by a Document.
type Page struct {
	DocumentID       string           `json:"documentId"`
	DocumentPath     string           `json:"documentPath"`
	PageNumber       int              `json:"pageNumber"`
	Text             string           `json:"text"`
	ExtractionMethod ExtractionMethod `json:"extractionMethod"`
	Confidence       float64          `json:"confidence"`
	LowConfidence    bool             `json:"lowConfidence,omitempty"`
}
