package planviz

import (
	"context"
	"encoding/json"
	"fmt"
)

// StorageResult contains information about a saved image.
type StorageResult struct {
	// Location is where the image can be retrieved (URL or file path)
	Location string

	// Path is the storage path/key where the image was saved
	Path string

	// Size is the number of bytes saved
	Size int
}

// SaveImage saves a rendered image to storage under basePath plus an extension
// derived from its MIME type.
func SaveImage(
	ctx context.Context,
	storage Storage,
	img *Image,
	basePath string) (*StorageResult, error) {

	if storage == nil {
		return nil, ErrStorageNotConfigured
	}
	if img == nil || len(img.Data) == 0 {
		return nil, ErrEmptyImageData
	}

	path := basePath + "." + extensionFromMIME(img.MIMEType)

	location, err := storage.SaveFile(ctx, img.Data, path, img.MIMEType)
	if err != nil {
		return nil, err
	}

	return &StorageResult{
		Location: location,
		Path:     path,
		Size:     len(img.Data),
	}, nil
}

// SaveFurniture writes a furniture listing as indented JSON next to its render,
// at basePath plus ".furniture.json".
func SaveFurniture(ctx context.Context, storage Storage, items []FurnitureItem, basePath string) (*StorageResult, error) {
	if storage == nil {
		return nil, ErrStorageNotConfigured
	}
	if items == nil {
		items = []FurnitureItem{}
	}

	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode furniture: %w", err)
	}

	path := basePath + ".furniture.json"
	location, err := storage.SaveFile(ctx, data, path, "application/json")
	if err != nil {
		return nil, err
	}
	return &StorageResult{Location: location, Path: path, Size: len(data)}, nil
}
