package evidex

import (
	"path/filepath"
	"strings"
)

// ContentKind is the closed set of supported raw file variants.
// Extraction dispatches on the kind rather than inspecting file contents.
type ContentKind string

// ContentKind values.
const (
	KindUnknown ContentKind = ""
	KindPaged   ContentKind = "paged"
	KindText    ContentKind = "text"
	KindImage   ContentKind = "image"
	KindHTML    ContentKind = "html"
	KindXML     ContentKind = "xml"
)

type contentType struct {
	kind ContentKind
	mime string
}

var contentTypes = map[string]contentType{
	"pdf":  {KindPaged, "application/pdf"},
	"txt":  {KindText, "text/plain"},
	"md":   {KindText, "text/markdown"},
	"log":  {KindText, "text/plain"},
	"csv":  {KindText, "text/csv"},
	"png":  {KindImage, "image/png"},
	"jpg":  {KindImage, "image/jpeg"},
	"jpeg": {KindImage, "image/jpeg"},
	"tif":  {KindImage, "image/tiff"},
	"tiff": {KindImage, "image/tiff"},
	"bmp":  {KindImage, "image/bmp"},
	"gif":  {KindImage, "image/gif"},
	"html": {KindHTML, "text/html"},
	"htm":  {KindHTML, "text/html"},
	"xml":  {KindXML, "application/xml"},
}

// Classify maps a file path to its content kind and mime type by extension.
// Unsupported extensions return KindUnknown and "application/octet-stream".
func Classify(path string) (ContentKind, string) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	if ct, ok := contentTypes[ext]; ok {
		return ct.kind, ct.mime
	}
	return KindUnknown, "application/octet-stream"
}
