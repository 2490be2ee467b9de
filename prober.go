package planviz

import (
	"context"
	"log/slog"
	"time"
)

// ProbeResult records whether one model produced inline image data for the probe prompt.
type ProbeResult struct {
	ModelName               string        `json:"modelName"`
	SupportsImageGeneration bool          `json:"supportsImageGeneration"`
	Error                   string        `json:"error,omitempty"`
	ResponseTime            time.Duration `json:"-"`
	ResponseTimeMs          int64         `json:"responseTimeMs"`
}

// ProgressFunc is called after each probe with the model's position in the listing.
type ProgressFunc func(index, total int, result ProbeResult)

// Prober discovers which models can generate images by sending each a small probe request.
type Prober struct {
	client  GenerationClient
	logger  *slog.Logger
	metrics MetricsRecorder
}

// ProberOption configures the Prober.
type ProberOption func(*Prober)

// WithProberLogger sets a structured logger for the prober.
func WithProberLogger(logger *slog.Logger) ProberOption {
	return func(p *Prober) {
		p.logger = logger
	}
}

// WithProberMetrics sets a metrics recorder for the prober.
func WithProberMetrics(metrics MetricsRecorder) ProberOption {
	return func(p *Prober) {
		p.metrics = metrics
	}
}

// NewProber creates a Prober that issues its requests through client.
func NewProber(client GenerationClient, opts ...ProberOption) *Prober {
	p := &Prober{
		client: client,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ListModels lists the generation-capable models. It never returns an error;
// a failed call is reported as a ListingFailed listing.
func (p *Prober) ListModels(ctx context.Context) ModelListing {
	models, err := p.client.ListModels(ctx)
	if err != nil {
		p.logger.Warn("listing models failed", "error", err.Error())
		return ModelListing{Kind: ListingFailed, Err: err}
	}

	capable := make([]ModelDescriptor, 0, len(models))
	for _, m := range models {
		if m.SupportsGeneration {
			capable = append(capable, m)
		}
	}
	if len(capable) == 0 {
		return ModelListing{Kind: ListingEmpty}
	}

	p.logger.Debug("listed generation models",
		"total", len(models),
		"capable", len(capable),
	)
	return ModelListing{Kind: ListingOK, Models: capable}
}

// TestModel sends the probe prompt to one model. Failures are captured in the
// result rather than returned, and the elapsed time is always recorded.
func (p *Prober) TestModel(ctx context.Context, model string) ProbeResult {
	start := time.Now()
	result, err := p.client.Generate(ctx, model, []Part{TextPart(ProbePrompt)}, ProbeConfig())
	elapsed := time.Since(start)

	probe := ProbeResult{
		ModelName:      model,
		ResponseTime:   elapsed,
		ResponseTimeMs: elapsed.Milliseconds(),
	}
	if err != nil {
		probe.Error = err.Error()
	} else {
		probe.SupportsImageGeneration = result.HasInlineData()
	}

	if p.metrics != nil {
		p.metrics.ObserveProbe(model, probe.SupportsImageGeneration, elapsed)
	}
	p.logger.Info("probed model",
		"model", model,
		"supports_image_generation", probe.SupportsImageGeneration,
		"duration_ms", probe.ResponseTimeMs,
		"error", probe.Error,
	)

	return probe
}

// TestAll probes every generation-capable model, one at a time in listing order.
// A failed or empty listing yields no results.
func (p *Prober) TestAll(ctx context.Context) []ProbeResult {
	return p.TestAllWithProgress(ctx, nil)
}

// TestAllWithProgress is TestAll with a callback invoked after each probe.
func (p *Prober) TestAllWithProgress(ctx context.Context, progress ProgressFunc) []ProbeResult {
	listing := p.ListModels(ctx)
	if !listing.OK() {
		return []ProbeResult{}
	}

	ids := listing.Identifiers()
	results := make([]ProbeResult, 0, len(ids))
	for i, id := range ids {
		res := p.TestModel(ctx, id)
		results = append(results, res)
		if progress != nil {
			progress(i, len(ids), res)
		}
	}
	return results
}

// BestModel returns the first result, in listing order, whose model supports
// image generation. No ranking by speed is applied.
func BestModel(results []ProbeResult) (ProbeResult, bool) {
	for _, r := range results {
		if r.SupportsImageGeneration {
			return r, true
		}
	}
	return ProbeResult{}, false
}
