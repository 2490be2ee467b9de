package planviz

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/mhpenta/planviz"

// ErrClientNotConfigured is returned when the Manager has no underlying client.
var ErrClientNotConfigured = errors.New("generation client not configured")

// Manager implements GenerationClient by wrapping a provider client with
// structured logging, metrics and tracing. It never alters the errors it forwards.
type Manager struct {
	client GenerationClient

	// Logger for structured logging
	logger *slog.Logger

	// Metrics recorder (optional)
	metrics MetricsRecorder

	tracer trace.Tracer

	mu sync.RWMutex
}

// Ensure Manager implements the interface.
var _ GenerationClient = (*Manager)(nil)

// Generate forwards a generation request to the wrapped client.
func (m *Manager) Generate(ctx context.Context, model string, parts []Part, config *GenerateConfig) (*GenerateResult, error) {
	client, logger, metrics, tracer := m.snapshot()
	if client == nil {
		return nil, ErrClientNotConfigured
	}

	ctx, span := tracer.Start(ctx, "planviz.Generate", trace.WithAttributes(
		attribute.String("model", model),
		attribute.Int("parts", len(parts)),
	))
	defer span.End()

	start := time.Now()

	logger.Debug("starting generation",
		"model", model,
		"part_count", len(parts),
	)

	result, err := client.Generate(ctx, model, parts, config)
	duration := time.Since(start)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		if metrics != nil {
			metrics.ObserveGeneration(model, ErrorCode(err), duration)
		}

		logger.Error("generation failed",
			"model", model,
			"duration_ms", duration.Milliseconds(),
			"error", err.Error(),
		)

		return nil, err
	}

	if metrics != nil {
		metrics.ObserveGeneration(model, "ok", duration)
	}

	logAttrs := []any{
		"model", model,
		"duration_ms", duration.Milliseconds(),
		"part_count", len(result.Parts),
		"text_length", len(result.Text),
	}
	if result.UsageMetadata != nil {
		logAttrs = append(logAttrs,
			"prompt_tokens", result.UsageMetadata.PromptTokens,
			"response_tokens", result.UsageMetadata.CandidatesTokens,
			"total_tokens", result.UsageMetadata.TotalTokens,
		)
		span.SetAttributes(attribute.Int("total_tokens", result.UsageMetadata.TotalTokens))
	}
	if result.ThinkingContent != "" {
		logAttrs = append(logAttrs, "thinking_length", len(result.ThinkingContent))
	}
	if result.BlockReason != "" {
		span.SetAttributes(attribute.String("block_reason", result.BlockReason))
		logger.Warn("generation blocked", append(logAttrs, "block_reason", result.BlockReason)...)
		return result, nil
	}
	logger.Info("generation completed", logAttrs...)

	return result, nil
}

// ListModels forwards a listing request to the wrapped client.
func (m *Manager) ListModels(ctx context.Context) ([]ModelDescriptor, error) {
	client, logger, _, tracer := m.snapshot()
	if client == nil {
		return nil, ErrClientNotConfigured
	}

	ctx, span := tracer.Start(ctx, "planviz.ListModels")
	defer span.End()

	start := time.Now()
	models, err := client.ListModels(ctx)
	duration := time.Since(start)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		logger.Error("listing models failed",
			"duration_ms", duration.Milliseconds(),
			"error", err.Error(),
		)
		return nil, err
	}

	span.SetAttributes(attribute.Int("model_count", len(models)))
	logger.Debug("listed models",
		"count", len(models),
		"duration_ms", duration.Milliseconds(),
	)

	return models, nil
}

// Close releases the wrapped client's resources.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.client == nil {
		return nil
	}
	err := m.client.Close()
	m.client = nil
	return err
}

func (m *Manager) snapshot() (GenerationClient, *slog.Logger, MetricsRecorder, trace.Tracer) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.client, m.logger, m.metrics, m.tracer
}
