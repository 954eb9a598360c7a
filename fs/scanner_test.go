package fs_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/fwojciec/evidex"
	"github.com/fwojciec/evidex/fs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestScanner_Scan(t *testing.T) {
	t.Parallel()

	t.Run("lists regular files in lexical order", func(t *testing.T) {
		t.Parallel()

		root := t.TempDir()
		writeFile(t, filepath.Join(root, "b.txt"), "bee")
		writeFile(t, filepath.Join(root, "a", "scan.PNG"), "png")
		writeFile(t, filepath.Join(root, "a", "report.pdf"), "%PDF")
		writeFile(t, filepath.Join(root, "z.bin"), "??")

		files, err := fs.NewScanner().Scan(context.Background(), root)
		require.NoError(t, err)
		require.Len(t, files, 4)

		assert.Equal(t, "a/report.pdf", files[0].Path)
		assert.Equal(t, evidex.KindPaged, files[0].Kind)
		assert.Equal(t, "application/pdf", files[0].MimeType)
		assert.Equal(t, int64(4), files[0].Size)
		assert.Equal(t, filepath.Join(root, "a", "report.pdf"), files[0].FullPath)

		assert.Equal(t, "a/scan.PNG", files[1].Path)
		assert.Equal(t, evidex.KindImage, files[1].Kind)

		assert.Equal(t, "b.txt", files[2].Path)
		assert.Equal(t, evidex.KindText, files[2].Kind)

		assert.Equal(t, "z.bin", files[3].Path)
		assert.Equal(t, evidex.KindUnknown, files[3].Kind)
	})

	t.Run("skips hidden entries and symlinks", func(t *testing.T) {
		t.Parallel()

		root := t.TempDir()
		writeFile(t, filepath.Join(root, "visible.txt"), "ok")
		writeFile(t, filepath.Join(root, ".hidden.txt"), "no")
		writeFile(t, filepath.Join(root, ".git", "config"), "no")
		outside := filepath.Join(t.TempDir(), "secret.txt")
		writeFile(t, outside, "no")
		require.NoError(t, os.Symlink(outside, filepath.Join(root, "link.txt")))

		files, err := fs.NewScanner().Scan(context.Background(), root)
		require.NoError(t, err)
		require.Len(t, files, 1)
		assert.Equal(t, "visible.txt", files[0].Path)
	})

	t.Run("empty directory returns empty slice", func(t *testing.T) {
		t.Parallel()

		files, err := fs.NewScanner().Scan(context.Background(), t.TempDir())
		require.NoError(t, err)
		assert.NotNil(t, files)
		assert.Empty(t, files)
	})

	t.Run("rejects missing root", func(t *testing.T) {
		t.Parallel()

		_, err := fs.NewScanner().Scan(context.Background(), filepath.Join(t.TempDir(), "missing"))
		assert.Equal(t, evidex.EINVALID, evidex.ErrorCode(err))
	})

	t.Run("rejects file root", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "f.txt")
		writeFile(t, path, "x")
		_, err := fs.NewScanner().Scan(context.Background(), path)
		assert.Equal(t, evidex.EINVALID, evidex.ErrorCode(err))
	})

	t.Run("honors cancellation", func(t *testing.T) {
		t.Parallel()

		root := t.TempDir()
		writeFile(t, filepath.Join(root, "a.txt"), "x")
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := fs.NewScanner().Scan(ctx, root)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestScanner_ReadFile(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	path := filepath.Join(root, "a.txt")
	writeFile(t, path, "hello")

	s := fs.NewScanner()
	data, err := s.ReadFile(context.Background(), &evidex.SourceFile{Path: "a.txt", FullPath: path})
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))

	_, err = s.ReadFile(context.Background(), &evidex.SourceFile{Path: "gone.txt", FullPath: filepath.Join(root, "gone.txt")})
	assert.Equal(t, evidex.ENOTFOUND, evidex.ErrorCode(err))
}
