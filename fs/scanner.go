// Package fs provides file-system access for ingestion and export.
package fs

import (
	"context"
	"errors"
	iofs "io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/fwojciec/evidex"
)

// Ensure Scanner implements evidex.FileSource at compile time.
var _ evidex.FileSource = (*Scanner)(nil)

// Scanner lists raw files under a directory tree.
type Scanner struct{}

// NewScanner creates a new Scanner.
func NewScanner() *Scanner {
	return &Scanner{}
}

// Scan walks root and returns every regular, non-hidden file in lexical
// order. Symlinks are never followed.
func (s *Scanner) Scan(ctx context.Context, root string) ([]*evidex.SourceFile, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, evidex.Errorf(evidex.EINVALID, "cannot read ingestion root %q: %v", root, err)
	}
	if !info.IsDir() {
		return nil, evidex.Errorf(evidex.EINVALID, "ingestion root %q is not a directory", root)
	}

	files := []*evidex.SourceFile{}
	err = filepath.WalkDir(root, func(path string, d iofs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if path != root && isHidden(d.Name()) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}

		kind, mime := evidex.Classify(path)
		files = append(files, &evidex.SourceFile{
			Path:     filepath.ToSlash(rel),
			FullPath: path,
			Size:     info.Size(),
			Kind:     kind,
			MimeType: mime,
		})
		return nil
	})
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, evidex.Errorf(evidex.EUNAVAILABLE, "scan %q: %v", root, err)
	}
	return files, nil
}

// ReadFile returns the raw bytes of f.
func (s *Scanner) ReadFile(ctx context.Context, f *evidex.SourceFile) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(f.FullPath)
	if errors.Is(err, iofs.ErrNotExist) {
		return nil, evidex.Errorf(evidex.ENOTFOUND, "file %q disappeared", f.Path)
	}
	if err != nil {
		return nil, evidex.Errorf(evidex.ECORRUPT, "read %q: %v", f.Path, err)
	}
	return data, nil
}

func isHidden(name string) bool {
	return strings.HasPrefix(name, ".")
}
