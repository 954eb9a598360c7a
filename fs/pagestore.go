package fs

import (
	"context"
	"errors"
	"fmt"
	iofs "io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/fwojciec/evidex"
	"gopkg.in/yaml.v3"
)

// ExportMarker is written into every export directory. Commit replaces an
// existing directory only when it is empty or carries the marker.
const ExportMarker = ".evidex-export"

// Ensure FileStore implements evidex.PageStore at compile time.
var _ evidex.PageStore = (*FileStore)(nil)

// FileStore implements evidex.PageStore with atomic update semantics.
// Pages are saved to a temporary directory, then moved atomically on Commit.
type FileStore struct {
	baseDir string
	name    string
}

// NewFileStore creates a new FileStore.
// baseDir is the parent directory, name is the output directory name.
// Files are saved to baseDir/name.tmp and moved to baseDir/name on Commit.
func NewFileStore(baseDir, name string) *FileStore {
	return &FileStore{
		baseDir: baseDir,
		name:    name,
	}
}

func (s *FileStore) tempDir() string {
	return filepath.Join(s.baseDir, s.name+".tmp")
}

func (s *FileStore) finalDir() string {
	return filepath.Join(s.baseDir, s.name)
}

// PagePath returns the relative file path a page is exported to.
// Example: scans/a.pdf page 3 → scans/a.pdf/page-0003.txt
func PagePath(page *evidex.Page) (string, error) {
	dir := filepath.FromSlash(page.DocumentPath)
	if !filepath.IsLocal(dir) {
		return "", evidex.Errorf(evidex.EINVALID, "document path %q escapes export directory", page.DocumentPath)
	}
	return filepath.Join(dir, fmt.Sprintf("page-%04d.txt", page.PageNumber)), nil
}

// Save writes a page to the temporary directory.
func (s *FileStore) Save(ctx context.Context, page *evidex.Page) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	relPath, err := PagePath(page)
	if err != nil {
		return err
	}

	fullPath := filepath.Join(s.tempDir(), relPath)

	// Create parent directories
	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return err
	}

	content, err := FormatPage(page)
	if err != nil {
		return err
	}
	return os.WriteFile(fullPath, []byte(content), 0644)
}

type pageHeader struct {
	Source        string  `yaml:"source"`
	Page          int     `yaml:"page"`
	Method        string  `yaml:"method"`
	Confidence    float64 `yaml:"confidence"`
	LowConfidence bool    `yaml:"low_confidence,omitempty"`
}

// FormatPage formats a page with YAML frontmatter. The text after the
// frontmatter is the stored page text byte for byte, so offsets reported
// by search apply to it unchanged.
func FormatPage(page *evidex.Page) (string, error) {
	header, err := yaml.Marshal(pageHeader{
		Source:        page.DocumentPath,
		Page:          page.PageNumber,
		Method:        string(page.ExtractionMethod),
		Confidence:    page.Confidence,
		LowConfidence: page.LowConfidence,
	})
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString("---\n")
	b.Write(header)
	b.WriteString("---\n")
	b.WriteString(page.Text)
	return b.String(), nil
}

// Commit replaces the export directory with the saved pages. A non-empty
// directory that was not written by a previous export is left untouched
// and EINVALID is returned.
func (s *FileStore) Commit() error {
	if err := s.checkReplaceable(); err != nil {
		return err
	}

	// Nothing saved; publish an empty export.
	if err := os.MkdirAll(s.tempDir(), 0755); err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(s.tempDir(), ExportMarker), nil, 0644); err != nil {
		return err
	}

	// Remove existing final directory if present
	if err := os.RemoveAll(s.finalDir()); err != nil {
		return err
	}

	// Atomically rename temp to final
	return os.Rename(s.tempDir(), s.finalDir())
}

func (s *FileStore) checkReplaceable() error {
	dir := s.finalDir()
	info, err := os.Stat(dir)
	if errors.Is(err, iofs.ErrNotExist) {
		return nil
	} else if err != nil {
		return err
	}
	if !info.IsDir() {
		return evidex.Errorf(evidex.EINVALID, "export target %q is not a directory", dir)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		return nil
	}
	if _, err := os.Stat(filepath.Join(dir, ExportMarker)); err == nil {
		return nil
	}
	return evidex.Errorf(evidex.EINVALID, "refusing to replace %q: directory is not empty and was not written by export", dir)
}

// Abort discards saved pages.
func (s *FileStore) Abort() error {
	return os.RemoveAll(s.tempDir())
}
