package planviz

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestParseFurniture(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []FurnitureItem
	}{
		{
			name: "complete item",
			text: `[{"name":"sofa","x":0.25,"y":0.5,"width":120,"depth":80,"rotation":90,"room":"living_room","color":"#8B6239","confidence":0.95}]`,
			want: []FurnitureItem{{Name: "sofa", X: 0.25, Y: 0.5, Width: 120, Depth: 80, Rotation: 90, Room: "living_room", Color: "#8B6239", Confidence: 0.95}},
		},
		{
			name: "defaults for optional fields",
			text: `[{"name":"bed","x":0.1,"y":0.2,"width":200,"depth":160}]`,
			want: []FurnitureItem{{Name: "bed", X: 0.1, Y: 0.2, Width: 200, Depth: 160, Room: "unknown", Confidence: 0.8}},
		},
		{
			name: "out of range values are normalized",
			text: `[{"name":"rug","x":1.4,"y":-0.2,"width":0,"depth":-5,"rotation":-90}]`,
			want: []FurnitureItem{{Name: "rug", X: 1, Y: 0, Width: 1, Depth: 1, Rotation: 270, Room: "unknown", Confidence: 0.8}},
		},
		{
			name: "items without a position are dropped",
			text: `[{"name":"lamp","width":10,"depth":10},{"name":"plant","x":0.9,"y":0.9,"width":30,"depth":30,"rotation":720}]`,
			want: []FurnitureItem{{Name: "plant", X: 0.9, Y: 0.9, Width: 30, Depth: 30, Room: "unknown", Confidence: 0.8}},
		},
		{
			name: "json fence",
			text: "Here you go:\n```json\n[{\"name\":\"toilet\",\"x\":0.5,\"y\":0.5,\"width\":40,\"depth\":60,\"room\":\"bathroom\"}]\n```",
			want: []FurnitureItem{{Name: "toilet", X: 0.5, Y: 0.5, Width: 40, Depth: 60, Room: "bathroom", Confidence: 0.8}},
		},
		{
			name: "plain fence",
			text: "```\n[]\n```",
			want: []FurnitureItem{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseFurniture(tt.text)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseFurniture_Unusable(t *testing.T) {
	for _, text := range []string{"", "   ", "I could not find any furniture.", `{"name":"sofa"}`} {
		_, err := ParseFurniture(text)
		assert.ErrorIs(t, err, ErrFurnitureDetectionFailed, text)
		assert.Equal(t, "furniture_detection_failed", ErrorCode(err))
	}
}

func TestParseFurniture_NormalizedRanges(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		x := rapid.Float64Range(-10, 10).Draw(t, "x")
		y := rapid.Float64Range(-10, 10).Draw(t, "y")
		w := rapid.IntRange(-500, 500).Draw(t, "width")
		rot := rapid.Float64Range(-1000, 1000).Draw(t, "rotation")

		text := fmt.Sprintf(`[{"name":"chair","x":%g,"y":%g,"width":%d,"depth":%d,"rotation":%g}]`, x, y, w, w, rot)
		items, err := ParseFurniture(text)
		if err != nil {
			t.Fatalf("parse: %v", err)
		}
		if len(items) != 1 {
			t.Fatalf("got %d items", len(items))
		}
		it := items[0]
		if it.X < 0 || it.X > 1 || it.Y < 0 || it.Y > 1 {
			t.Fatalf("position out of range: %v, %v", it.X, it.Y)
		}
		if it.Width < 1 || it.Depth < 1 {
			t.Fatalf("size below one pixel: %d x %d", it.Width, it.Depth)
		}
		if it.Rotation < 0 || it.Rotation >= 360 {
			t.Fatalf("rotation out of range: %v", it.Rotation)
		}
	})
}

func testPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))))
	return buf.Bytes()
}

func TestPipeline_DetectFurniture(t *testing.T) {
	client := scriptedClient(
		respond(textResult(`[{"name":"sofa","x":0.3,"y":0.4,"width":120,"depth":80,"room":"living_room"}]`)),
	)
	render := &Image{Data: testPNG(t, 64, 48), MIMEType: "image/png"}

	items, err := NewPipeline(client, WithTextModel("gemini-2.0-flash"), WithThinking(true)).DetectFurniture(context.Background(), render)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "sofa", items[0].Name)

	calls := client.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "gemini-2.0-flash", calls[0].Model)
	require.Len(t, calls[0].Parts, 2)
	assert.Contains(t, calls[0].Parts[0].Text, "64 x 48 pixels")
	assert.Equal(t, render.Data, calls[0].Parts[1].InlineData.Data)
	assert.Equal(t, []string{ModalityText}, calls[0].Config.ResponseModalities)
	assert.True(t, calls[0].Config.EnableThinking)
}

func TestPipeline_DetectFurniture_Errors(t *testing.T) {
	rateLimited := &TransportError{Kind: TransportRateLimited, Model: DefaultTextModel, Message: "slow down"}
	render := &Image{Data: []byte{1, 2, 3}, MIMEType: "image/webp"}

	_, err := NewPipeline(scriptedClient(failWith(rateLimited))).DetectFurniture(context.Background(), render)
	assert.Same(t, rateLimited, err)

	_, err = NewPipeline(scriptedClient(respond(&GenerateResult{BlockReason: "SAFETY"}))).DetectFurniture(context.Background(), render)
	assert.ErrorIs(t, err, ErrFurnitureDetectionFailed)

	client := &MockClient{}
	_, err = NewPipeline(client).DetectFurniture(context.Background(), nil)
	assert.ErrorIs(t, err, ErrEmptyImageData)
	assert.Empty(t, client.Calls())
}

func TestBuildFurnitureDetectionPrompt(t *testing.T) {
	assert.Contains(t, BuildFurnitureDetectionPrompt(800, 600), "800 x 600 pixels")
	assert.Contains(t, BuildFurnitureDetectionPrompt(0, 0), "dimensions are unknown")
	assert.NotContains(t, BuildFurnitureDetectionPrompt(0, 0), "{{dimensions}}")
}
