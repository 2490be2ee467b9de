package gemini

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/mhpenta/planviz"
	"google.golang.org/genai"
)

// normalizeError maps an SDK error to a *planviz.TransportError. Context
// cancellation is returned unchanged so callers can match it with errors.Is.
func normalizeError(err error, model string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) {
		return err
	}

	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return &planviz.TransportError{
			Kind:       kindForStatus(apiErr.Code, apiErr.Status, apiErr.Message),
			Model:      model,
			HTTPStatus: apiErr.Code,
			Message:    apiErr.Message,
			Err:        err,
		}
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return &planviz.TransportError{
			Kind:       kindForStatus(apiErrPtr.Code, apiErrPtr.Status, apiErrPtr.Message),
			Model:      model,
			HTTPStatus: apiErrPtr.Code,
			Message:    apiErrPtr.Message,
			Err:        err,
		}
	}

	return &planviz.TransportError{
		Kind:  planviz.TransportNetwork,
		Model: model,
		Err:   err,
	}
}

func kindForStatus(code int, status, msg string) planviz.TransportKind {
	switch code {
	case http.StatusUnauthorized:
		return planviz.TransportUnauthorized
	case http.StatusForbidden:
		return planviz.TransportForbidden
	case http.StatusNotFound:
		return planviz.TransportNotFound
	case http.StatusTooManyRequests:
		if isQuotaMessage(msg) {
			return planviz.TransportQuotaExceeded
		}
		return planviz.TransportRateLimited
	case http.StatusBadRequest:
		if isQuotaMessage(msg) {
			return planviz.TransportQuotaExceeded
		}
		return planviz.TransportInvalidRequest
	}

	if status == "RESOURCE_EXHAUSTED" {
		return planviz.TransportRateLimited
	}
	return planviz.TransportUpstream
}

func isQuotaMessage(msg string) bool {
	return strings.Contains(strings.ToLower(msg), "quota")
}
