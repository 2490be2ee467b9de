package planviz

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorCode(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{ErrInputMissing, "input_missing"},
		{ErrStyleExtractionFailed, "style_extraction_failed"},
		{ErrPlanAnalysisFailed, "plan_analysis_failed"},
		{ErrNoImageProduced, "no_image_produced"},
		{fmt.Errorf("%w: text/plain", ErrInvalidMIMEType), "invalid_image"},
		{&TransportError{Kind: TransportUnauthorized}, "transport_unauthorized"},
		{fmt.Errorf("wrapped: %w", &TransportError{Kind: TransportQuotaExceeded}), "transport_quota_exceeded"},
		{errors.New("something else"), "internal"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, ErrorCode(tt.err))
		})
	}
}

func TestTransportError(t *testing.T) {
	cause := errors.New("connection reset by peer")
	err := &TransportError{Kind: TransportNetwork, Model: "gemini-2.5-flash", Err: cause}

	assert.Equal(t, "network calling gemini-2.5-flash: connection reset by peer", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.True(t, IsTransportError(err))
	assert.False(t, IsRateLimitError(err))

	noModel := &TransportError{Kind: TransportUpstream, Message: "overloaded"}
	assert.Equal(t, "upstream: overloaded", noModel.Error())

	assert.True(t, IsRateLimitError(&TransportError{Kind: TransportRateLimited}))
	assert.True(t, IsRateLimitError(&TransportError{Kind: TransportQuotaExceeded}))
	assert.False(t, IsTransportError(ErrNoImageProduced))
}
