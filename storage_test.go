package planviz

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryStorage struct {
	files map[string][]byte
	err   error
}

func (m *memoryStorage) SaveFile(ctx context.Context, data []byte, path string, contentType string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	if m.files == nil {
		m.files = make(map[string][]byte)
	}
	m.files[path] = data
	return "mem://" + path, nil
}

func TestSaveImage(t *testing.T) {
	store := &memoryStorage{}
	img := &Image{Data: []byte{1, 2, 3}, MIMEType: "image/jpeg"}

	res, err := SaveImage(context.Background(), store, img, "renders/run-1")
	require.NoError(t, err)
	assert.Equal(t, "renders/run-1.jpg", res.Path)
	assert.Equal(t, "mem://renders/run-1.jpg", res.Location)
	assert.Equal(t, 3, res.Size)
	assert.Equal(t, img.Data, store.files["renders/run-1.jpg"])
}

func TestSaveImage_Errors(t *testing.T) {
	ctx := context.Background()
	img := &Image{Data: []byte{1}, MIMEType: "image/png"}

	_, err := SaveImage(ctx, nil, img, "x")
	assert.ErrorIs(t, err, ErrStorageNotConfigured)

	_, err = SaveImage(ctx, &memoryStorage{}, &Image{}, "x")
	assert.ErrorIs(t, err, ErrEmptyImageData)

	diskFull := errors.New("disk full")
	_, err = SaveImage(ctx, &memoryStorage{err: diskFull}, img, "x")
	assert.ErrorIs(t, err, diskFull)
}

func TestSaveFurniture(t *testing.T) {
	store := &memoryStorage{}
	items := []FurnitureItem{{Name: "sofa", X: 0.25, Y: 0.5, Width: 120, Depth: 80, Room: "living_room", Confidence: 0.9}}

	res, err := SaveFurniture(context.Background(), store, items, "renders/run-1")
	require.NoError(t, err)
	assert.Equal(t, "renders/run-1.furniture.json", res.Path)

	var got []FurnitureItem
	require.NoError(t, json.Unmarshal(store.files[res.Path], &got))
	assert.Equal(t, items, got)

	res, err = SaveFurniture(context.Background(), store, nil, "empty")
	require.NoError(t, err)
	assert.JSONEq(t, "[]", string(store.files[res.Path]))

	_, err = SaveFurniture(context.Background(), nil, items, "x")
	assert.ErrorIs(t, err, ErrStorageNotConfigured)
}
