package gemini

import (
	"strings"

	"github.com/mhpenta/planviz"
	"google.golang.org/genai"
)

// actionGenerateContent is the supported action that marks a model as generation-capable.
const actionGenerateContent = "generateContent"

// describeModel converts a listed model, dropping the "models/" resource prefix from its name.
func describeModel(m *genai.Model) planviz.ModelDescriptor {
	if m == nil {
		return planviz.ModelDescriptor{}
	}
	return planviz.ModelDescriptor{
		Name:               strings.TrimPrefix(m.Name, "models/"),
		DisplayName:        m.DisplayName,
		SupportsGeneration: supportsGeneration(m.SupportedActions),
	}
}

func supportsGeneration(actions []string) bool {
	for _, a := range actions {
		if a == actionGenerateContent {
			return true
		}
	}
	return false
}
