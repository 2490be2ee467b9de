package planviz

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// MIMEEncoder reads an uploaded image, sniffs its media type and validates it.
type MIMEEncoder struct {
	// MaxSize caps the number of bytes read. Zero means MaxImageSize.
	MaxSize int
}

// Ensure MIMEEncoder implements ImageEncoder.
var _ ImageEncoder = (*MIMEEncoder)(nil)

// NewMIMEEncoder creates an encoder limited to MaxImageSize.
func NewMIMEEncoder() *MIMEEncoder {
	return &MIMEEncoder{MaxSize: MaxImageSize}
}

// Encode reads the image and returns its inline payload.
func (e *MIMEEncoder) Encode(ctx context.Context, raw *RawImage) (InlineData, error) {
	if raw == nil || raw.Reader == nil {
		return InlineData{}, ErrInputMissing
	}
	if err := ctx.Err(); err != nil {
		return InlineData{}, err
	}

	limit := e.MaxSize
	if limit <= 0 {
		limit = MaxImageSize
	}

	// Read one byte past the limit so oversized uploads are detected rather than truncated.
	data, err := io.ReadAll(io.LimitReader(raw.Reader, int64(limit)+1))
	if err != nil {
		return InlineData{}, fmt.Errorf("read image %q: %w", raw.Name, err)
	}
	if len(data) > limit {
		return InlineData{}, fmt.Errorf("%w: more than %d bytes", ErrImageTooLarge, limit)
	}

	img := InlineData{
		Data:     data,
		MIMEType: detectMIME(data, raw.Name),
	}
	if err := ValidateInputImage(img); err != nil {
		return InlineData{}, err
	}
	return img, nil
}

// detectMIME sniffs the content first and falls back to the file extension.
func detectMIME(data []byte, name string) string {
	if len(data) > 0 {
		mt := mimetype.Detect(data)
		if strings.HasPrefix(mt.String(), "image/") {
			// Strip parameters such as "; charset=..."
			return strings.TrimSpace(strings.SplitN(mt.String(), ";", 2)[0])
		}
	}
	if name != "" {
		return GetMIMEType(name)
	}
	return ""
}

// GetMIMEType guesses an image MIME type from a file name. Unknown extensions
// yield application/octet-stream, which validation rejects.
func GetMIMEType(filePath string) string {
	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".webp":
		return "image/webp"
	case ".gif":
		return "image/gif"
	case ".heic":
		return "image/heic"
	case ".heif":
		return "image/heif"
	default:
		return "application/octet-stream"
	}
}

// extensionFromMIME returns a file extension for common image MIME types.
func extensionFromMIME(mime string) string {
	switch mime {
	case "image/png":
		return "png"
	case "image/jpeg":
		return "jpg"
	case "image/webp":
		return "webp"
	case "image/gif":
		return "gif"
	default:
		return "png"
	}
}
