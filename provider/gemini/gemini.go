// Package gemini provides a GenerationClient implementation using Google's Gemini API.
//
// This provider uses the Gemini API backend via the official Go SDK:
// https://github.com/googleapis/go-genai
package gemini

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mhpenta/planviz"
	"google.golang.org/genai"
)

// Config configures the Gemini client.
type Config struct {
	// APIKey for the Gemini API. If empty, the SDK falls back to GOOGLE_API_KEY or GEMINI_API_KEY.
	APIKey string

	// BaseURL overrides the API endpoint, mainly for tests and proxies
	BaseURL string

	// Timeout bounds each remote call. Zero means no limit beyond the caller's context.
	Timeout time.Duration

	// SafetySettings are sent with every request. Empty means provider defaults.
	SafetySettings []planviz.SafetySetting
}

// Client implements planviz.GenerationClient using Google's Gemini API.
type Client struct {
	client         *genai.Client
	timeout        time.Duration
	safetySettings []*genai.SafetySetting
}

// Ensure Client implements the interface.
var _ planviz.GenerationClient = (*Client)(nil)

// New creates a new Client from a Config.
func New(ctx context.Context, config *Config) (*Client, error) {
	if config == nil {
		config = &Config{}
	}

	clientCfg := &genai.ClientConfig{
		Backend: genai.BackendGeminiAPI,
		APIKey:  config.APIKey,
	}
	if config.BaseURL != "" {
		clientCfg.HTTPOptions = genai.HTTPOptions{BaseURL: config.BaseURL}
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &Client{
		client:         client,
		timeout:        config.Timeout,
		safetySettings: convertSafetySettings(config.SafetySettings),
	}, nil
}

// NewWithAPIKey creates a client with an API key for Gemini API.
func NewWithAPIKey(ctx context.Context, apiKey string) (*Client, error) {
	return New(ctx, &Config{APIKey: apiKey})
}

// ListModels returns every model visible to the API key, in backend order.
func (c *Client) ListModels(ctx context.Context) ([]planviz.ModelDescriptor, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	var models []planviz.ModelDescriptor
	for m, err := range c.client.Models.All(ctx) {
		if err != nil {
			return nil, normalizeError(err, "")
		}
		models = append(models, describeModel(m))
	}
	return models, nil
}

// Generate sends the parts as a single user turn and returns the response parts in order.
func (c *Client) Generate(ctx context.Context, model string, parts []planviz.Part, config *planviz.GenerateConfig) (*planviz.GenerateResult, error) {
	if err := planviz.ValidateParts(parts); err != nil {
		return nil, err
	}

	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	contents := []*genai.Content{
		{
			Role:  "user",
			Parts: convertParts(parts),
		},
	}

	resp, err := c.client.Models.GenerateContent(ctx, model, contents, c.buildGenerateContentConfig(config))
	if err != nil {
		return nil, normalizeError(err, model)
	}

	return parseResult(resp, model)
}

// Close releases any resources held by the client.
func (c *Client) Close() error {
	// The genai.Client doesn't require explicit closing in the current SDK
	return nil
}

func (c *Client) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.timeout)
}

// buildGenerateContentConfig converts our config to Gemini's GenerateContentConfig format.
func (c *Client) buildGenerateContentConfig(config *planviz.GenerateConfig) *genai.GenerateContentConfig {
	defaults := c.safetySettings

	if config == nil {
		if len(defaults) == 0 {
			return nil
		}
		return &genai.GenerateContentConfig{SafetySettings: defaults}
	}

	genConfig := &genai.GenerateContentConfig{}

	if len(config.ResponseModalities) > 0 {
		genConfig.ResponseModalities = append([]string(nil), config.ResponseModalities...)
	}

	if config.Temperature != nil {
		genConfig.Temperature = genai.Ptr(*config.Temperature)
	}

	if config.EnableThinking {
		genConfig.ThinkingConfig = &genai.ThinkingConfig{
			IncludeThoughts: true,
		}
	}

	if len(defaults) > 0 {
		genConfig.SafetySettings = defaults
	}

	return genConfig
}

func convertParts(parts []planviz.Part) []*genai.Part {
	out := make([]*genai.Part, 0, len(parts))
	for _, p := range parts {
		if p.InlineData != nil {
			out = append(out, &genai.Part{
				InlineData: &genai.Blob{
					Data:     p.InlineData.Data,
					MIMEType: p.InlineData.MIMEType,
				},
			})
		}
		if p.Text != "" {
			out = append(out, &genai.Part{Text: p.Text})
		}
	}
	return out
}

// convertSafetySettings converts our SafetySettings to Gemini's format.
func convertSafetySettings(settings []planviz.SafetySetting) []*genai.SafetySetting {
	if len(settings) == 0 {
		return nil
	}
	result := make([]*genai.SafetySetting, 0, len(settings))
	for _, s := range settings {
		result = append(result, &genai.SafetySetting{
			Category:  genai.HarmCategory(s.Category),
			Threshold: genai.HarmBlockThreshold(s.Threshold),
		})
	}
	return result
}

// parseResult converts a Gemini response to our result type. Thought parts are
// collected separately and never appear in Parts. A blocked prompt or a response
// without candidates yields an empty result, not an error.
func parseResult(resp *genai.GenerateContentResponse, model string) (*planviz.GenerateResult, error) {
	if resp == nil {
		return nil, &planviz.TransportError{
			Kind:    planviz.TransportMalformedResponse,
			Model:   model,
			Message: "empty response from model",
		}
	}

	result := &planviz.GenerateResult{
		Parts: make([]planviz.Part, 0),
	}
	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
		result.BlockReason = string(resp.PromptFeedback.BlockReason)
	}

	var textParts, thinkingParts []string
	images := 0

	for _, candidate := range resp.Candidates {
		if candidate.Content == nil {
			continue
		}

		for _, part := range candidate.Content.Parts {
			if part == nil {
				continue
			}

			if part.Thought {
				if part.Text != "" {
					thinkingParts = append(thinkingParts, part.Text)
				}
				continue
			}

			if part.Text != "" {
				textParts = append(textParts, part.Text)
				result.Parts = append(result.Parts, planviz.TextPart(part.Text))
			}

			if part.InlineData != nil && len(part.InlineData.Data) > 0 {
				result.Parts = append(result.Parts, planviz.ImagePart(planviz.InlineData{
					Data:     part.InlineData.Data,
					MIMEType: part.InlineData.MIMEType,
				}))
				if strings.HasPrefix(part.InlineData.MIMEType, "image/") {
					images++
				}
			}
		}
	}

	result.Text = strings.Join(textParts, "")
	if len(thinkingParts) > 0 {
		result.ThinkingContent = strings.Join(thinkingParts, "\n")
	}

	if resp.UsageMetadata != nil {
		result.UsageMetadata = &planviz.UsageMetadata{
			PromptTokens:     int(resp.UsageMetadata.PromptTokenCount),
			CandidatesTokens: int(resp.UsageMetadata.CandidatesTokenCount),
			TotalTokens:      int(resp.UsageMetadata.TotalTokenCount),
			ImageCount:       images,
		}
	}

	return result, nil
}
