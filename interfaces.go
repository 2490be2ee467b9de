package planviz

import (
	"context"
	"io"
	"time"
)

// GenerationClient is the boundary to a remote multimodal model endpoint.
// Implement this interface to add support for new providers.
type GenerationClient interface {
	// ListModels returns the models visible to the caller, in backend order.
	ListModels(ctx context.Context) ([]ModelDescriptor, error)

	// Generate sends an ordered list of parts to the model and returns its content parts.
	// Failures of the remote call are returned as *TransportError.
	Generate(ctx context.Context, model string, parts []Part, genConfig *GenerateConfig) (*GenerateResult, error)

	// Close releases any resources held by the client.
	Close() error
}

// ImageEncoder turns a raw uploaded image into a transport-ready inline payload.
type ImageEncoder interface {
	Encode(ctx context.Context, raw *RawImage) (InlineData, error)
}

// RawImage is an uploaded image before encoding.
type RawImage struct {
	// Name is the original file name, used as a MIME type hint
	Name string

	// Reader yields the image bytes
	Reader io.Reader
}

// MetricsRecorder receives measurements from the Manager, Pipeline and Prober.
// A nil recorder disables metrics.
type MetricsRecorder interface {
	ObserveGeneration(model, status string, duration time.Duration)
	ObserveStage(stage Stage, status string, duration time.Duration)
	ObserveRun(status string, duration time.Duration)
	ObserveProbe(model string, supported bool, duration time.Duration)
}

// Storage is an interface for persisting rendered images.
// Implementations can wrap existing storage clients (local disk, GCS, S3, etc.).
type Storage interface {
	// SaveFile saves data to storage and returns its location.
	SaveFile(ctx context.Context, data []byte, path string, contentType string) (string, error)
}
