package planviz

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"math"
	"strings"
	"time"
)

// FurnitureItem is one piece of furniture located in a render. X and Y are the
// item's center normalized to [0, 1]; Width and Depth are in pixels.
type FurnitureItem struct {
	Name       string  `json:"name"`
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Width      int     `json:"width"`
	Depth      int     `json:"depth"`
	Rotation   float64 `json:"rotation"`
	Room       string  `json:"room"`
	Color      string  `json:"color,omitempty"`
	Confidence float64 `json:"confidence"`
}

// rawFurnitureItem keeps absent fields distinguishable from zero values.
type rawFurnitureItem struct {
	Name       *string  `json:"name"`
	X          *float64 `json:"x"`
	Y          *float64 `json:"y"`
	Width      *float64 `json:"width"`
	Depth      *float64 `json:"depth"`
	Rotation   *float64 `json:"rotation"`
	Room       *string  `json:"room"`
	Color      string   `json:"color"`
	Confidence *float64 `json:"confidence"`
}

// DetectFurniture asks the text model to list the furniture visible in a
// finished render. Items missing a name, position or size are dropped; the
// rest are normalized. An empty or unparsable answer yields
// ErrFurnitureDetectionFailed, client errors are returned unchanged.
func (p *Pipeline) DetectFurniture(ctx context.Context, render *Image) ([]FurnitureItem, error) {
	if render == nil || len(render.Data) == 0 {
		return nil, ErrEmptyImageData
	}

	width, height := imageSize(render.Data)
	parts := []Part{
		TextPart(BuildFurnitureDetectionPrompt(width, height)),
		ImagePart(*render),
	}

	start := time.Now()
	result, err := p.client.Generate(ctx, p.textModel, parts, p.textConfig())
	if err == nil {
		var items []FurnitureItem
		items, err = ParseFurniture(resultText(result))
		if err == nil {
			p.logger.Info("furniture detected",
				"items", len(items),
				"duration_ms", time.Since(start).Milliseconds(),
			)
			return items, nil
		}
	}

	p.logger.Warn("furniture detection failed",
		"duration_ms", time.Since(start).Milliseconds(),
		"error", err.Error(),
	)
	return nil, err
}

// ParseFurniture decodes a model's furniture listing. A markdown code fence
// around the JSON is tolerated.
func ParseFurniture(text string) ([]FurnitureItem, error) {
	text = stripCodeFence(strings.TrimSpace(text))
	if text == "" {
		return nil, ErrFurnitureDetectionFailed
	}

	var raw []rawFurnitureItem
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFurnitureDetectionFailed, err)
	}

	items := make([]FurnitureItem, 0, len(raw))
	for _, r := range raw {
		if r.Name == nil || r.X == nil || r.Y == nil || r.Width == nil || r.Depth == nil {
			continue
		}
		item := FurnitureItem{
			Name:       *r.Name,
			X:          clamp01(*r.X),
			Y:          clamp01(*r.Y),
			Width:      max(1, int(*r.Width)),
			Depth:      max(1, int(*r.Depth)),
			Room:       "unknown",
			Color:      r.Color,
			Confidence: 0.8,
		}
		if r.Rotation != nil {
			item.Rotation = wrapDegrees(*r.Rotation)
		}
		if r.Room != nil && *r.Room != "" {
			item.Room = *r.Room
		}
		if r.Confidence != nil {
			item.Confidence = *r.Confidence
		}
		items = append(items, item)
	}
	return items, nil
}

func stripCodeFence(text string) string {
	start := strings.Index(text, "```")
	if start < 0 {
		return text
	}
	body := text[start+3:]
	body = strings.TrimPrefix(body, "json")
	if end := strings.Index(body, "```"); end >= 0 {
		body = body[:end]
	}
	return strings.TrimSpace(body)
}

// wrapDegrees maps any angle into [0, 360).
func wrapDegrees(v float64) float64 {
	v = math.Mod(v, 360)
	if v < 0 {
		v += 360
	}
	if v >= 360 {
		return 0
	}
	return v
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

// imageSize reports the pixel size of PNG, JPEG or GIF data and 0, 0 otherwise.
func imageSize(data []byte) (int, int) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return 0, 0
	}
	return cfg.Width, cfg.Height
}
