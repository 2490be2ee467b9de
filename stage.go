package planviz

import "fmt"

// Stage is the progress of a pipeline run. Within one run it only moves forward:
// ExtractingStyle, AnalyzingPlan, GeneratingImage, then back to Idle.
type Stage int

const (
	StageIdle Stage = iota
	StageExtractingStyle
	StageAnalyzingPlan
	StageGeneratingImage
)

func (s Stage) String() string {
	switch s {
	case StageIdle:
		return "idle"
	case StageExtractingStyle:
		return "extracting_style"
	case StageAnalyzingPlan:
		return "analyzing_plan"
	case StageGeneratingImage:
		return "generating_image"
	default:
		return fmt.Sprintf("Stage(%d)", int(s))
	}
}

// MarshalText implements encoding.TextMarshaler so stages serialise by name.
func (s Stage) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Label is a short human-readable description of the stage.
func (s Stage) Label() string {
	switch s {
	case StageExtractingStyle:
		return "Extracting style from reference"
	case StageAnalyzingPlan:
		return "Analyzing floor plan"
	case StageGeneratingImage:
		return "Generating render"
	default:
		return "Idle"
	}
}

// StageFunc receives stage transitions. It is called synchronously from the run's goroutine.
type StageFunc func(Stage)
