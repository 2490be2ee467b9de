package planviz

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
)

// StagedRun is the state of one pipeline execution. It lives only for the
// duration of Pipeline.Run.
type StagedRun struct {
	ID string

	// Encoded inputs, validated before the first stage
	FloorPlan InlineData
	Reference InlineData

	// StyleDescription is the output of stage 1
	StyleDescription string

	// PlanAnalysis is the output of stage 2
	PlanAnalysis string

	// Result is the output of stage 3
	Result *Image

	// Stage is the run's current stage
	Stage Stage
}

// stage is one step of the pipeline. build must be a pure function of the run's
// encoded inputs and prior outputs; accept validates the response and records
// the stage output.
type stage struct {
	id     Stage
	model  func(p *Pipeline) string
	config func(p *Pipeline) *GenerateConfig
	build  func(run *StagedRun) []Part
	accept func(run *StagedRun, result *GenerateResult) error
}

// stages is the fixed order of the pipeline.
var stages = []stage{
	{
		id:     StageExtractingStyle,
		model:  func(p *Pipeline) string { return p.textModel },
		config: func(p *Pipeline) *GenerateConfig { return p.textConfig() },
		build: func(run *StagedRun) []Part {
			return []Part{TextPart(StyleExtractionPrompt), ImagePart(run.Reference)}
		},
		accept: func(run *StagedRun, result *GenerateResult) error {
			text := strings.TrimSpace(resultText(result))
			if text == "" {
				return ErrStyleExtractionFailed
			}
			run.StyleDescription = text
			return nil
		},
	},
	{
		id:     StageAnalyzingPlan,
		model:  func(p *Pipeline) string { return p.textModel },
		config: func(p *Pipeline) *GenerateConfig { return p.textConfig() },
		build: func(run *StagedRun) []Part {
			return []Part{TextPart(FloorPlanAnalysisPrompt), ImagePart(run.FloorPlan)}
		},
		accept: func(run *StagedRun, result *GenerateResult) error {
			text := strings.TrimSpace(resultText(result))
			if text == "" {
				return ErrPlanAnalysisFailed
			}
			run.PlanAnalysis = text
			return nil
		},
	},
	{
		id:     StageGeneratingImage,
		model:  func(p *Pipeline) string { return p.imageModel },
		config: func(p *Pipeline) *GenerateConfig { return ImageConfig() },
		build: func(run *StagedRun) []Part {
			return []Part{
				ImagePart(run.FloorPlan),
				TextPart(BuildRenderPrompt(run.StyleDescription, run.PlanAnalysis)),
			}
		},
		accept: func(run *StagedRun, result *GenerateResult) error {
			img, ok := result.FirstImage()
			if !ok {
				return ErrNoImageProduced
			}
			run.Result = img
			return nil
		},
	},
}

func resultText(result *GenerateResult) string {
	if result == nil {
		return ""
	}
	return result.Text
}

// Pipeline runs the three-stage render: style extraction, plan analysis, image generation.
// Stages run strictly in order and any failure ends the run.
type Pipeline struct {
	client     GenerationClient
	encoder    ImageEncoder
	textModel  string
	imageModel string
	thinking   bool
	logger     *slog.Logger
	metrics    MetricsRecorder
}

// PipelineOption configures the Pipeline.
type PipelineOption func(*Pipeline)

// WithTextModel sets the model used for style extraction and plan analysis.
func WithTextModel(model string) PipelineOption {
	return func(p *Pipeline) {
		if model != "" {
			p.textModel = model
		}
	}
}

// WithImageModel sets the model used for the final render.
func WithImageModel(model string) PipelineOption {
	return func(p *Pipeline) {
		if model != "" {
			p.imageModel = model
		}
	}
}

// WithThinking enables the model's thinking mode for the text stages.
func WithThinking(enabled bool) PipelineOption {
	return func(p *Pipeline) {
		p.thinking = enabled
	}
}

// WithEncoder overrides the default MIMEEncoder.
func WithEncoder(encoder ImageEncoder) PipelineOption {
	return func(p *Pipeline) {
		p.encoder = encoder
	}
}

// WithPipelineLogger sets a structured logger for the pipeline.
func WithPipelineLogger(logger *slog.Logger) PipelineOption {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// WithPipelineMetrics sets a metrics recorder for the pipeline.
func WithPipelineMetrics(metrics MetricsRecorder) PipelineOption {
	return func(p *Pipeline) {
		p.metrics = metrics
	}
}

// NewPipeline creates a Pipeline that issues its requests through client.
func NewPipeline(client GenerationClient, opts ...PipelineOption) *Pipeline {
	p := &Pipeline{
		client:     client,
		encoder:    NewMIMEEncoder(),
		textModel:  DefaultTextModel,
		imageModel: DefaultImageModel,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Pipeline) textConfig() *GenerateConfig {
	cfg := TextConfig()
	cfg.EnableThinking = p.thinking
	return cfg
}

// Run executes the pipeline for one floor plan and one style reference.
//
// onStage, when non-nil, is called with ExtractingStyle, AnalyzingPlan and
// GeneratingImage in that order as each stage begins. Both images are encoded
// first: a missing image (ErrInputMissing) or one that fails validation ends the
// run before any request and without calling onStage. Errors from the encoder or
// the client are returned unchanged.
func (p *Pipeline) Run(ctx context.Context, floorPlan, reference *RawImage, onStage StageFunc) (*Image, error) {
	if missing(floorPlan) || missing(reference) {
		return nil, ErrInputMissing
	}

	run := &StagedRun{
		ID:    uuid.NewString(),
		Stage: StageIdle,
	}
	logger := p.logger.With("run_id", run.ID)
	start := time.Now()

	if err := p.encodeInputs(ctx, run, floorPlan, reference); err != nil {
		p.observeFailure(logger, StageIdle, err, time.Since(start))
		return nil, err
	}

	logger.Info("render run started",
		"text_model", p.textModel,
		"image_model", p.imageModel,
	)

	for _, st := range stages {
		run.Stage = st.id
		if onStage != nil {
			onStage(st.id)
		}

		if err := p.execute(ctx, logger, run, st); err != nil {
			run.Stage = StageIdle
			p.observeFailure(logger, st.id, err, time.Since(start))
			return nil, err
		}
	}

	run.Stage = StageIdle
	duration := time.Since(start)
	if p.metrics != nil {
		p.metrics.ObserveRun("ok", duration)
	}
	logger.Info("render run completed",
		"duration_ms", duration.Milliseconds(),
		"mime_type", run.Result.MIMEType,
		"image_bytes", len(run.Result.Data),
	)

	return run.Result, nil
}

// RunDataURI runs the pipeline and returns the image as a data URI.
func (p *Pipeline) RunDataURI(ctx context.Context, floorPlan, reference *RawImage, onStage StageFunc) (string, error) {
	img, err := p.Run(ctx, floorPlan, reference, onStage)
	if err != nil {
		return "", err
	}
	return img.DataURI(), nil
}

func (p *Pipeline) execute(ctx context.Context, logger *slog.Logger, run *StagedRun, st stage) error {
	start := time.Now()
	err := p.executeStage(ctx, run, st)
	duration := time.Since(start)

	status := "ok"
	if err != nil {
		status = ErrorCode(err)
	}
	if p.metrics != nil {
		p.metrics.ObserveStage(st.id, status, duration)
	}
	logger.Debug("stage finished",
		"stage", st.id.String(),
		"status", status,
		"duration_ms", duration.Milliseconds(),
	)
	return err
}

// encodeInputs reads and validates both uploads so that an unreadable image
// fails the run before any request is sent.
func (p *Pipeline) encodeInputs(ctx context.Context, run *StagedRun, floorPlan, reference *RawImage) error {
	img, err := p.encoder.Encode(ctx, floorPlan)
	if err != nil {
		return err
	}
	run.FloorPlan = img

	img, err = p.encoder.Encode(ctx, reference)
	if err != nil {
		return err
	}
	run.Reference = img
	return nil
}

func (p *Pipeline) observeFailure(logger *slog.Logger, at Stage, err error, duration time.Duration) {
	if p.metrics != nil {
		p.metrics.ObserveRun(ErrorCode(err), duration)
	}
	logger.Error("render run failed",
		"stage", at.String(),
		"duration_ms", duration.Milliseconds(),
		"error", err.Error(),
	)
}

func (p *Pipeline) executeStage(ctx context.Context, run *StagedRun, st stage) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	result, err := p.client.Generate(ctx, st.model(p), st.build(run), st.config(p))
	if err != nil {
		return err
	}
	return st.accept(run, result)
}

func missing(img *RawImage) bool {
	return img == nil || img.Reader == nil
}

// RawImageFromBytes wraps already-read bytes as a RawImage.
func RawImageFromBytes(name string, data []byte) *RawImage {
	if data == nil {
		return nil
	}
	return &RawImage{Name: name, Reader: bytes.NewReader(data)}
}
