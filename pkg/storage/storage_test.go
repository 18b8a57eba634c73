package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/dtnitsch/whatif/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaths(t *testing.T) {
	s := New("/data")

	assert.Equal(t, filepath.Join("/data", "what if"), s.OfflineBase())
	assert.Equal(t, filepath.Join("/data", "what if", "42", "42.html"), s.HTMLPath(42))
	assert.Equal(t, filepath.Join("/data", "what if", "42", "3.png"), s.ImagePath(42, 3))
	assert.Equal(t, filepath.Join("/data", "what if", "overview", "7.png"), s.OverviewImagePath(7))
}

func TestSaveAndReadFile(t *testing.T) {
	s := New(t.TempDir())
	path := s.HTMLPath(1)

	require.NoError(t, s.SaveFile(path, []byte("<html>1</html>")))
	assert.True(t, s.HasFile(path))

	data, err := s.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "<html>1</html>", string(data))

	require.NoError(t, s.SaveFile(path, []byte("<html>2</html>")))
	data, err = s.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "<html>2</html>", string(data))

	entries, err := os.ReadDir(s.ArticleDir(1))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files must not be left behind")
}

func TestReadMissingFile(t *testing.T) {
	s := New(t.TempDir())

	_, err := s.ReadFile(s.HTMLPath(9))
	require.Error(t, err)
	assert.True(t, models.IsLocalIO(err))
	assert.False(t, s.HasFile(s.HTMLPath(9)))
}

func TestDeleteAll(t *testing.T) {
	root := t.TempDir()
	s := New(root)
	require.NoError(t, s.SaveFile(s.ImagePath(2, 1), []byte("png")))
	require.NoError(t, s.SaveFile(s.OverviewImagePath(1), []byte("png")))

	require.NoError(t, s.DeleteAll())
	assert.NoDirExists(t, s.OfflineBase())
	assert.DirExists(t, root)

	// deleting twice is fine
	require.NoError(t, s.DeleteAll())
}
