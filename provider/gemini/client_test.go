package gemini

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/mhpenta/planviz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngHeader = []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A, 0, 0, 0, 0x0D, 0x49, 0x48, 0x44, 0x52}

// fakeGemini answers every generateContent call with body.
func fakeGemini(t *testing.T, body string) (*Client, *atomic.Int32) {
	t.Helper()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, ":generateContent") {
			calls.Add(1)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	client, err := New(context.Background(), &Config{APIKey: "test-key", BaseURL: srv.URL})
	require.NoError(t, err)
	return client, &calls
}

func TestClient_Generate_BlockedPrompt(t *testing.T) {
	client, _ := fakeGemini(t, `{"promptFeedback":{"blockReason":"SAFETY"}}`)

	result, err := client.Generate(context.Background(), "gemini-2.5-flash", []planviz.Part{planviz.TextPart("describe")}, planviz.TextConfig())

	require.NoError(t, err)
	assert.Empty(t, result.Text)
	assert.Equal(t, "SAFETY", result.BlockReason)
}

func TestPipeline_BlockedPromptFailsTheStage(t *testing.T) {
	client, calls := fakeGemini(t, `{"promptFeedback":{"blockReason":"SAFETY"}}`)

	_, err := planviz.NewPipeline(client).Run(context.Background(),
		planviz.RawImageFromBytes("plan.png", pngHeader),
		planviz.RawImageFromBytes("ref.png", pngHeader),
		nil,
	)

	assert.ErrorIs(t, err, planviz.ErrStyleExtractionFailed)
	assert.False(t, planviz.IsTransportError(err))
	assert.Equal(t, int32(1), calls.Load())
}
