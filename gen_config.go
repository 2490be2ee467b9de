package planviz

import (
	"fmt"
	"strings"
)

// Default model identifiers, overridable through configuration.
const (
	// DefaultTextModel handles style extraction and floor-plan analysis.
	DefaultTextModel = "gemini-2.5-flash"

	// DefaultImageModel renders the final image.
	DefaultImageModel = "gemini-2.5-flash-image"
)

// Response modalities understood by the backend.
const (
	ModalityText  = "TEXT"
	ModalityImage = "IMAGE"
)

// SafetyCategory represents a content safety category.
type SafetyCategory string

const (
	SafetyCategoryHarassment       SafetyCategory = "HARM_CATEGORY_HARASSMENT"
	SafetyCategoryHateSpeech       SafetyCategory = "HARM_CATEGORY_HATE_SPEECH"
	SafetyCategorySexuallyExplicit SafetyCategory = "HARM_CATEGORY_SEXUALLY_EXPLICIT"
	SafetyCategoryDangerousContent SafetyCategory = "HARM_CATEGORY_DANGEROUS_CONTENT"
)

// SafetyThreshold represents the blocking threshold for safety filters.
type SafetyThreshold string

const (
	SafetyThresholdBlockNone      SafetyThreshold = "BLOCK_NONE"
	SafetyThresholdBlockLowAndUp  SafetyThreshold = "BLOCK_LOW_AND_ABOVE"
	SafetyThresholdBlockMedAndUp  SafetyThreshold = "BLOCK_MEDIUM_AND_ABOVE"
	SafetyThresholdBlockHighAndUp SafetyThreshold = "BLOCK_ONLY_HIGH"
)

// SafetyCategories lists every category a threshold is applied to.
var SafetyCategories = []SafetyCategory{
	SafetyCategoryHarassment,
	SafetyCategoryHateSpeech,
	SafetyCategorySexuallyExplicit,
	SafetyCategoryDangerousContent,
}

// ParseSafetyThreshold validates a threshold name such as "BLOCK_ONLY_HIGH".
// The empty string is accepted and means provider defaults.
func ParseSafetyThreshold(s string) (SafetyThreshold, error) {
	t := SafetyThreshold(strings.ToUpper(strings.TrimSpace(s)))
	switch t {
	case "", SafetyThresholdBlockNone, SafetyThresholdBlockLowAndUp,
		SafetyThresholdBlockMedAndUp, SafetyThresholdBlockHighAndUp:
		return t, nil
	}
	return "", fmt.Errorf("unknown safety threshold %q", s)
}

// SafetySetting configures content filtering for a specific category.
type SafetySetting struct {
	Category  SafetyCategory
	Threshold SafetyThreshold
}

// SafetySettingsAt applies one threshold to every category. An empty threshold
// yields no settings.
func SafetySettingsAt(threshold SafetyThreshold) []SafetySetting {
	if threshold == "" {
		return nil
	}
	settings := make([]SafetySetting, 0, len(SafetyCategories))
	for _, c := range SafetyCategories {
		settings = append(settings, SafetySetting{Category: c, Threshold: threshold})
	}
	return settings
}

// GenerateConfig holds per-request options. A nil config means provider defaults.
type GenerateConfig struct {
	// Temperature controls randomness (0.0-2.0)
	Temperature *float32

	// ResponseModalities requests specific output kinds (e.g., TEXT and IMAGE).
	// Empty leaves the choice to the model.
	ResponseModalities []string

	// EnableThinking enables the model's thinking mode for complex prompts
	EnableThinking bool
}

// TextConfig returns the config used for the text-only analysis stages.
func TextConfig() *GenerateConfig {
	return &GenerateConfig{
		ResponseModalities: []string{ModalityText},
	}
}

// ImageConfig returns the config used for the final render stage.
func ImageConfig() *GenerateConfig {
	return &GenerateConfig{
		ResponseModalities: []string{ModalityText, ModalityImage},
	}
}

// ProbeConfig returns the config used by capability probes. Response modalities are
// left unset because forcing IMAGE is rejected by text-only models with a 400.
func ProbeConfig() *GenerateConfig {
	temp := float32(0.7)
	return &GenerateConfig{
		Temperature: &temp,
	}
}
