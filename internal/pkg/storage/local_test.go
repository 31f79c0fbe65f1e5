package storage

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorage_UploadDownload(t *testing.T) {
	ctx := context.Background()
	s, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	path, err := s.Upload(ctx, strings.NewReader("1001\t2024-01-15 08:00:00"), "uploads/batch-1/ATT.dat")
	require.NoError(t, err)
	assert.Equal(t, "uploads/batch-1/ATT.dat", path)

	rc, err := s.Download(ctx, path)
	require.NoError(t, err)
	defer rc.Close()
	content, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "1001\t2024-01-15 08:00:00", string(content))

	_, err = s.Download(ctx, "uploads/missing.dat")
	assert.ErrorIs(t, err, ErrFileNotFound)
}

func TestLocalStorage_PathsStayInsideBase(t *testing.T) {
	ctx := context.Background()
	base := t.TempDir()
	s, err := NewLocalStorage(base)
	require.NoError(t, err)

	path, err := s.Upload(ctx, strings.NewReader("x"), "../../escape.dat")
	require.NoError(t, err)
	assert.Equal(t, "escape.dat", path)

	_, err = os.Stat(filepath.Join(base, "escape.dat"))
	assert.NoError(t, err)
}

func TestLocalStorage_ListAndMove(t *testing.T) {
	ctx := context.Background()
	s, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	files, err := s.List(ctx, "inbox")
	require.NoError(t, err)
	assert.Empty(t, files)

	for _, name := range []string{"inbox/b.dat", "inbox/a.dat", "inbox/nested/c.dat"} {
		_, err := s.Upload(ctx, strings.NewReader(name), name)
		require.NoError(t, err)
	}

	files, err = s.List(ctx, "inbox")
	require.NoError(t, err)
	assert.Equal(t, []string{"inbox/a.dat", "inbox/b.dat"}, files)

	require.NoError(t, s.Move(ctx, "inbox/a.dat", "processed/a.dat"))

	_, err = s.Download(ctx, "inbox/a.dat")
	assert.ErrorIs(t, err, ErrFileNotFound)
	rc, err := s.Download(ctx, "processed/a.dat")
	require.NoError(t, err)
	rc.Close()

	assert.ErrorIs(t, s.Move(ctx, "inbox/a.dat", "processed/a.dat"), ErrFileNotFound)
}
