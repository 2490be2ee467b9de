package planviz

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_Generate_ForwardsResult(t *testing.T) {
	mockClient := &MockClient{
		GenerateFunc: func(ctx context.Context, model string, parts []Part, config *GenerateConfig) (*GenerateResult, error) {
			return &GenerateResult{
				Text:          "ok",
				Parts:         []Part{TextPart("ok")},
				UsageMetadata: &UsageMetadata{TotalTokens: 12},
			}, nil
		},
	}
	metrics := &mockMetrics{}

	manager := NewManager(mockClient, WithMetrics(metrics))
	defer manager.Close()

	result, err := manager.Generate(context.Background(), "gemini-2.5-flash", []Part{TextPart("hello")}, TextConfig())
	require.NoError(t, err)
	assert.Equal(t, "ok", result.Text)
	assert.Equal(t, []string{"gemini-2.5-flash:ok"}, metrics.generations)

	calls := mockClient.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "gemini-2.5-flash", calls[0].Model)
}

func TestManager_Generate_ErrorsAreNotWrapped(t *testing.T) {
	rateLimited := &TransportError{Kind: TransportRateLimited, HTTPStatus: 429}
	mockClient := &MockClient{
		GenerateFunc: func(ctx context.Context, model string, parts []Part, config *GenerateConfig) (*GenerateResult, error) {
			return nil, rateLimited
		},
	}
	metrics := &mockMetrics{}

	manager := NewManager(mockClient, WithMetrics(metrics))

	_, err := manager.Generate(context.Background(), "m", []Part{TextPart("hello")}, nil)

	assert.Same(t, rateLimited, err)
	assert.True(t, IsRateLimitError(err))
	assert.Equal(t, []string{"m:transport_rate_limited"}, metrics.generations)
}

func TestManager_Generate_BlockedResultIsForwarded(t *testing.T) {
	mockClient := &MockClient{
		GenerateFunc: func(ctx context.Context, model string, parts []Part, config *GenerateConfig) (*GenerateResult, error) {
			return &GenerateResult{BlockReason: "SAFETY", ThinkingContent: "considering"}, nil
		},
	}
	metrics := &mockMetrics{}
	var logs bytes.Buffer

	manager := NewManager(mockClient,
		WithMetrics(metrics),
		WithLogger(slog.New(slog.NewTextHandler(&logs, nil))),
	)

	result, err := manager.Generate(context.Background(), "m", []Part{TextPart("hello")}, nil)
	require.NoError(t, err)
	assert.Equal(t, "SAFETY", result.BlockReason)
	assert.Empty(t, result.Text)
	assert.Equal(t, []string{"m:ok"}, metrics.generations)
	assert.Contains(t, logs.String(), "generation blocked")
	assert.Contains(t, logs.String(), "block_reason=SAFETY")
	assert.Contains(t, logs.String(), "thinking_length=11")
}

func TestManager_ListModels(t *testing.T) {
	want := []ModelDescriptor{{Name: "gemini-2.5-flash-image", SupportsGeneration: true}}
	manager := NewManager(&MockClient{
		ListModelsFunc: func(ctx context.Context) ([]ModelDescriptor, error) {
			return want, nil
		},
	})

	got, err := manager.ListModels(context.Background())
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestManager_Close(t *testing.T) {
	closed := 0
	manager := NewManager(&MockClient{
		CloseFunc: func() error {
			closed++
			return nil
		},
	})

	require.NoError(t, manager.Close())
	require.NoError(t, manager.Close())
	assert.Equal(t, 1, closed)

	_, err := manager.Generate(context.Background(), "m", nil, nil)
	assert.True(t, errors.Is(err, ErrClientNotConfigured))

	_, err = manager.ListModels(context.Background())
	assert.ErrorIs(t, err, ErrClientNotConfigured)
}

func TestManager_DrivesPipeline(t *testing.T) {
	client := scriptedClient(
		respond(textResult("style")),
		respond(textResult("plan")),
		respond(imageResult([]byte{1}, "image/png")),
	)
	metrics := &mockMetrics{}
	manager := NewManager(client, WithMetrics(metrics))

	floorPlan, reference := renderInputs()
	_, err := NewPipeline(manager).Run(context.Background(), floorPlan, reference, nil)
	require.NoError(t, err)

	assert.Equal(t, []string{
		DefaultTextModel + ":ok",
		DefaultTextModel + ":ok",
		DefaultImageModel + ":ok",
	}, metrics.generations)
}
