package fs_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fwojciec/evidex"
	"github.com/fwojciec/evidex/fs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Story: Atomic Page Export
// The store uses temp directory for atomic updates

func testPage(path string, n int, text string) *evidex.Page {
	return &evidex.Page{
		DocumentPath:     path,
		PageNumber:       n,
		Text:             text,
		ExtractionMethod: evidex.MethodNative,
		Confidence:       1,
	}
}

func TestFileStore_SaveWritesToTempDirectory(t *testing.T) {
	t.Parallel()

	// Given a store targeting a directory
	base := t.TempDir()
	store := fs.NewFileStore(base, "output")

	// When I save a page
	err := store.Save(context.Background(), testPage("scans/report.pdf", 3, "Quarterly report"))

	// Then no error occurs
	require.NoError(t, err)

	// And the file exists in the temp directory (not final)
	tempPath := filepath.Join(base, "output.tmp", "scans", "report.pdf", "page-0003.txt")
	_, err = os.Stat(tempPath)
	require.NoError(t, err, "file should exist in temp directory")

	// And final directory does not exist yet
	_, err = os.Stat(filepath.Join(base, "output"))
	assert.True(t, os.IsNotExist(err), "final directory should not exist until commit")
}

func TestFileStore_CommitMovesFromTempToFinal(t *testing.T) {
	t.Parallel()

	// Given a store with saved pages
	base := t.TempDir()
	store := fs.NewFileStore(base, "output")
	require.NoError(t, store.Save(context.Background(), testPage("a.txt", 1, "alpha")))

	// When I commit
	err := store.Commit()

	// Then no error occurs
	require.NoError(t, err)

	// And final directory exists with content
	_, err = os.Stat(filepath.Join(base, "output", "a.txt", "page-0001.txt"))
	require.NoError(t, err, "file should exist in final directory after commit")

	// And temp directory is gone
	_, err = os.Stat(filepath.Join(base, "output.tmp"))
	assert.True(t, os.IsNotExist(err), "temp directory should be removed after commit")
}

func TestFileStore_CommitReplacesPreviousExport(t *testing.T) {
	t.Parallel()

	// Given a previous export
	base := t.TempDir()
	first := fs.NewFileStore(base, "output")
	require.NoError(t, first.Save(context.Background(), testPage("old.txt", 1, "old")))
	require.NoError(t, first.Commit())

	// When a new export is committed
	second := fs.NewFileStore(base, "output")
	require.NoError(t, second.Save(context.Background(), testPage("new.txt", 1, "new")))
	require.NoError(t, second.Commit())

	// Then only the new export remains
	_, err := os.Stat(filepath.Join(base, "output", "old.txt"))
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(filepath.Join(base, "output", "new.txt", "page-0001.txt"))
	assert.NoError(t, err)
}

func TestFileStore_CommitRefusesForeignDirectory(t *testing.T) {
	t.Parallel()

	// Given a directory holding files that were not exported
	base := t.TempDir()
	raw := filepath.Join(base, "evidence")
	require.NoError(t, os.MkdirAll(raw, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(raw, "scan.pdf"), []byte("%PDF"), 0644))

	// When an export targeting it is committed
	store := fs.NewFileStore(base, "evidence")
	require.NoError(t, store.Save(context.Background(), testPage("a.txt", 1, "alpha")))
	err := store.Commit()

	// Then the commit is refused and the files survive
	assert.Equal(t, evidex.EINVALID, evidex.ErrorCode(err))
	data, err := os.ReadFile(filepath.Join(raw, "scan.pdf"))
	require.NoError(t, err)
	assert.Equal(t, "%PDF", string(data))
}

func TestFileStore_CommitReplacesEmptyDirectory(t *testing.T) {
	t.Parallel()

	// Given an empty target directory
	base := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(base, "output"), 0755))

	// When an export is committed
	store := fs.NewFileStore(base, "output")
	require.NoError(t, store.Save(context.Background(), testPage("a.txt", 1, "alpha")))
	require.NoError(t, store.Commit())

	// Then it holds the pages and the export marker
	_, err := os.Stat(filepath.Join(base, "output", "a.txt", "page-0001.txt"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(base, "output", fs.ExportMarker))
	assert.NoError(t, err)
}

func TestFileStore_AbortCleansUpTempDirectory(t *testing.T) {
	t.Parallel()

	// Given a store with saved pages
	base := t.TempDir()
	store := fs.NewFileStore(base, "output")
	require.NoError(t, store.Save(context.Background(), testPage("a.txt", 1, "alpha")))

	// When I abort
	require.NoError(t, store.Abort())

	// Then neither directory exists
	_, err := os.Stat(filepath.Join(base, "output.tmp"))
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(filepath.Join(base, "output"))
	assert.True(t, os.IsNotExist(err))
}

func TestFileStore_RejectsEscapingPaths(t *testing.T) {
	t.Parallel()

	store := fs.NewFileStore(t.TempDir(), "output")
	err := store.Save(context.Background(), testPage("../outside.txt", 1, "x"))
	assert.Equal(t, evidex.EINVALID, evidex.ErrorCode(err))
}

func TestFormatPage(t *testing.T) {
	t.Parallel()

	page := &evidex.Page{
		DocumentPath:     "scan.png",
		PageNumber:       1,
		Text:             "line one\nline two",
		ExtractionMethod: evidex.MethodOCR,
		Confidence:       0.5,
		LowConfidence:    true,
	}

	got, err := fs.FormatPage(page)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(got, "---\nsource: scan.png\npage: 1\nmethod: OCR\nconfidence: 0.5\nlow_confidence: true\n---\n"))
	assert.True(t, strings.HasSuffix(got, "---\nline one\nline two"))
}
