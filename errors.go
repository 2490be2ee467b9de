package planviz

import (
	"errors"
	"fmt"
)

// Pipeline errors. A stage error means the call succeeded but the output was unusable.
var (
	// ErrInputMissing is returned when the floor plan or the reference image is absent.
	ErrInputMissing = errors.New("floor plan and reference image are both required")

	// ErrStyleExtractionFailed is returned when stage 1 yields no style description.
	ErrStyleExtractionFailed = errors.New("style extraction returned no text")

	// ErrPlanAnalysisFailed is returned when stage 2 yields no floor-plan analysis.
	ErrPlanAnalysisFailed = errors.New("floor plan analysis returned no text")

	// ErrNoImageProduced is returned when stage 3 returns no inline image.
	// The model may have declined the request.
	ErrNoImageProduced = errors.New("no image produced, the model may have declined the request")

	// ErrFurnitureDetectionFailed is returned when the furniture listing is empty or not JSON.
	ErrFurnitureDetectionFailed = errors.New("furniture detection returned no usable listing")
)

// ErrStorageNotConfigured is returned when storage operations are attempted
// without a configured storage backend.
var ErrStorageNotConfigured = errors.New("storage not configured")

// TransportKind classifies a failed remote call.
type TransportKind string

const (
	TransportNetwork           TransportKind = "network"
	TransportUnauthorized      TransportKind = "unauthorized"
	TransportForbidden         TransportKind = "forbidden"
	TransportRateLimited       TransportKind = "rate_limited"
	TransportQuotaExceeded     TransportKind = "quota_exceeded"
	TransportInvalidRequest    TransportKind = "invalid_request"
	TransportNotFound          TransportKind = "not_found"
	TransportUpstream          TransportKind = "upstream"
	TransportMalformedResponse TransportKind = "malformed_response"
)

// TransportError is returned when the remote call itself fails.
type TransportError struct {
	Kind       TransportKind
	Model      string
	HTTPStatus int
	Message    string
	Err        error // Underlying error from the provider
}

func (e *TransportError) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if e.Model == "" {
		return fmt.Sprintf("%s: %s", e.Kind, msg)
	}
	return fmt.Sprintf("%s calling %s: %s", e.Kind, e.Model, msg)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// IsTransportError checks if an error is a TransportError.
func IsTransportError(err error) bool {
	var tErr *TransportError
	return errors.As(err, &tErr)
}

// IsRateLimitError checks if an error is a TransportError caused by rate limiting or quota.
func IsRateLimitError(err error) bool {
	var tErr *TransportError
	if !errors.As(err, &tErr) {
		return false
	}
	return tErr.Kind == TransportRateLimited || tErr.Kind == TransportQuotaExceeded
}

// ErrorCode maps an error to a stable, machine-readable code.
func ErrorCode(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInputMissing):
		return "input_missing"
	case errors.Is(err, ErrStyleExtractionFailed):
		return "style_extraction_failed"
	case errors.Is(err, ErrPlanAnalysisFailed):
		return "plan_analysis_failed"
	case errors.Is(err, ErrNoImageProduced):
		return "no_image_produced"
	case errors.Is(err, ErrFurnitureDetectionFailed):
		return "furniture_detection_failed"
	case errors.Is(err, ErrEmptyImageData), errors.Is(err, ErrInvalidMIMEType), errors.Is(err, ErrImageTooLarge):
		return "invalid_image"
	}

	var tErr *TransportError
	if errors.As(err, &tErr) {
		return "transport_" + string(tErr.Kind)
	}
	return "internal"
}
