package planviz

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestBuildRenderPrompt(t *testing.T) {
	prompt := BuildRenderPrompt("  light oak floors\n", "\t2BR, L-shaped living ")

	assert.Contains(t, prompt, "<style_guide>\nlight oak floors\n</style_guide>")
	assert.Contains(t, prompt, "<architectural_plan>\n2BR, L-shaped living\n</architectural_plan>")
	assert.NotContains(t, prompt, "{{style}}")
	assert.NotContains(t, prompt, "{{plan}}")
}

func TestBuildRenderPrompt_PlaceholdersInInputAreLiteral(t *testing.T) {
	prompt := BuildRenderPrompt("uses {{plan}} literally", "plan")
	assert.Contains(t, prompt, "uses {{plan}} literally")
}

func TestBuildRenderPrompt_Deterministic(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		style := rapid.String().Draw(t, "style")
		plan := rapid.String().Draw(t, "plan")

		first := BuildRenderPrompt(style, plan)
		if first != BuildRenderPrompt(style, plan) {
			t.Fatalf("prompt is not deterministic")
		}
		if !strings.Contains(first, strings.TrimSpace(style)) {
			t.Fatalf("prompt is missing the style description")
		}
		if !strings.Contains(first, strings.TrimSpace(plan)) {
			t.Fatalf("prompt is missing the plan analysis")
		}
	})
}
