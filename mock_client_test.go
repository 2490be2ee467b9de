package planviz

import (
	"context"
	"sync"
	"time"
)

// MockClient is a mock implementation of GenerationClient.
type MockClient struct {
	ListModelsFunc func(ctx context.Context) ([]ModelDescriptor, error)
	GenerateFunc   func(ctx context.Context, model string, parts []Part, config *GenerateConfig) (*GenerateResult, error)
	CloseFunc      func() error

	mu    sync.Mutex
	calls []mockCall
}

type mockCall struct {
	Model  string
	Parts  []Part
	Config *GenerateConfig
}

func (m *MockClient) ListModels(ctx context.Context) ([]ModelDescriptor, error) {
	if m.ListModelsFunc != nil {
		return m.ListModelsFunc(ctx)
	}
	return []ModelDescriptor{}, nil
}

func (m *MockClient) Generate(ctx context.Context, model string, parts []Part, config *GenerateConfig) (*GenerateResult, error) {
	m.mu.Lock()
	m.calls = append(m.calls, mockCall{Model: model, Parts: parts, Config: config})
	m.mu.Unlock()

	if m.GenerateFunc != nil {
		return m.GenerateFunc(ctx, model, parts, config)
	}
	return &GenerateResult{}, nil
}

func (m *MockClient) Close() error {
	if m.CloseFunc != nil {
		return m.CloseFunc()
	}
	return nil
}

func (m *MockClient) Calls() []mockCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]mockCall(nil), m.calls...)
}

// mockMetrics records every observation.
type mockMetrics struct {
	mu          sync.Mutex
	generations []string
	stages      []Stage
	runs        []string
	probes      map[string]bool
}

func (m *mockMetrics) ObserveGeneration(model, status string, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.generations = append(m.generations, model+":"+status)
}

func (m *mockMetrics) ObserveStage(stage Stage, _ string, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stages = append(m.stages, stage)
}

func (m *mockMetrics) ObserveRun(status string, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.runs = append(m.runs, status)
}

func (m *mockMetrics) ObserveProbe(model string, supported bool, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.probes == nil {
		m.probes = make(map[string]bool)
	}
	m.probes[model] = supported
}

// pngHeader is enough for content sniffing to report image/png.
var pngHeader = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0x0d, 'I', 'H', 'D', 'R'}

// jpegHeader is enough for content sniffing to report image/jpeg.
var jpegHeader = []byte{0xff, 0xd8, 0xff, 0xe0, 0, 0x10, 'J', 'F', 'I', 'F', 0}

func textResult(text string) *GenerateResult {
	return &GenerateResult{Text: text, Parts: []Part{TextPart(text)}}
}

func imageResult(data []byte, mime string) *GenerateResult {
	return &GenerateResult{Parts: []Part{ImagePart(InlineData{Data: data, MIMEType: mime})}}
}
