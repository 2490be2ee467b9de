package planviz

import (
	"encoding/base64"
	"strings"
)

// InlineData is a binary payload plus its media type, carried inside a request or response.
type InlineData struct {
	// Data contains the raw bytes
	Data []byte

	// MIMEType of the payload (e.g., "image/png")
	MIMEType string
}

// Image is a generated or uploaded image ready for transport.
type Image = InlineData

// DataURI renders the payload as a data URI, e.g. "data:image/png;base64,....".
func (d InlineData) DataURI() string {
	return "data:" + d.MIMEType + ";base64," + base64.StdEncoding.EncodeToString(d.Data)
}

// IsImage reports whether the payload carries image bytes. A payload without a
// MIME type is treated as an image so long as it has data.
func (d *InlineData) IsImage() bool {
	if d == nil || len(d.Data) == 0 {
		return false
	}
	return d.MIMEType == "" || strings.HasPrefix(d.MIMEType, "image/")
}

// Part is one element of a request or response: text, inline data, or both.
type Part struct {
	Text       string
	InlineData *InlineData
}

// TextPart returns a Part carrying text.
func TextPart(text string) Part {
	return Part{Text: text}
}

// ImagePart returns a Part carrying an inline image.
func ImagePart(img InlineData) Part {
	return Part{InlineData: &img}
}

// GenerateResult holds the complete result of a generation request.
type GenerateResult struct {
	// Text is the concatenation of all non-thought text parts
	Text string

	// Parts preserves the returned content parts in order
	Parts []Part

	// ThinkingContent contains the model's reasoning, when requested
	ThinkingContent string

	// UsageMetadata contains token/billing information
	UsageMetadata *UsageMetadata

	// BlockReason is set when the backend refused the prompt, e.g. "SAFETY"
	BlockReason string
}

// FirstImage scans the parts in order and returns the first inline image.
func (r *GenerateResult) FirstImage() (*Image, bool) {
	if r == nil {
		return nil, false
	}
	for _, part := range r.Parts {
		if part.InlineData.IsImage() {
			img := *part.InlineData
			return &img, true
		}
	}
	return nil, false
}

// HasInlineData reports whether any part carries a binary payload.
func (r *GenerateResult) HasInlineData() bool {
	if r == nil {
		return false
	}
	for _, part := range r.Parts {
		if part.InlineData != nil && len(part.InlineData.Data) > 0 {
			return true
		}
	}
	return false
}

// UsageMetadata contains usage information for billing and monitoring.
type UsageMetadata struct {
	PromptTokens     int
	CandidatesTokens int
	TotalTokens      int
	ImageCount       int
}
