package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/mhpenta/planviz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStore_SaveFile(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir)
	require.NoError(t, err)
	assert.Equal(t, dir, store.BasePath())

	location, err := store.SaveFile(context.Background(), []byte("png"), "renders/run.png", "image/png")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "renders", "run.png"), location)

	data, err := os.ReadFile(location)
	require.NoError(t, err)
	assert.Equal(t, []byte("png"), data)
}

func TestFileStore_WithSaveImage(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	res, err := planviz.SaveImage(context.Background(), store, &planviz.Image{Data: []byte{1, 2}, MIMEType: "image/webp"}, "out/render")
	require.NoError(t, err)
	assert.Equal(t, "out/render.webp", res.Path)
	assert.FileExists(t, res.Location)
}

func TestFileStore_RejectsEscapingKeys(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	for _, key := range []string{"", "   ", "../outside.png", "a/../../outside.png", ".."} {
		t.Run(key, func(t *testing.T) {
			_, err := store.SaveFile(context.Background(), []byte("x"), key, "image/png")
			assert.ErrorIs(t, err, ErrInvalidKey)
		})
	}
}

func TestSanitizeKey(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"render.png", "render.png"},
		{"/abs/render.png", "abs/render.png"},
		{"./a/./b.png", "a/b.png"},
		{`win\style\path.png`, "win/style/path.png"},
		{"a/b/../c.png", "a/c.png"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := sanitizeKey(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewFileStore_RequiresPath(t *testing.T) {
	_, err := NewFileStore("  ")
	assert.Error(t, err)
}

func TestFileStore_Nil(t *testing.T) {
	var store *FileStore
	_, err := store.SaveFile(context.Background(), nil, "a.png", "image/png")
	assert.ErrorIs(t, err, planviz.ErrStorageNotConfigured)
	assert.Equal(t, "", store.BasePath())
}
