package server

import "github.com/mhpenta/planviz"

type renderResponse struct {
	Image    string          `json:"image"`
	MIMEType string          `json:"mimeType"`
	Stages   []planviz.Stage `json:"stages"`

	// Set only when detect_furniture was requested
	Furniture      []planviz.FurnitureItem `json:"furniture,omitempty"`
	FurnitureError *errorResponse          `json:"furnitureError,omitempty"`
}

type errorResponse struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"requestId,omitempty"`
}

type modelDTO struct {
	Name        string `json:"name"`
	DisplayName string `json:"displayName,omitempty"`
}

type modelListResponse struct {
	Kind        string     `json:"kind"`
	Models      []modelDTO `json:"models"`
	Diagnostics []string   `json:"diagnostics,omitempty"`
}

type probeResponse struct {
	Results []planviz.ProbeResult `json:"results"`
	Best    string                `json:"best,omitempty"`
}

type stageEvent struct {
	Stage planviz.Stage `json:"stage"`
}
