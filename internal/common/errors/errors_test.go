package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingLogger struct {
	errors []map[string]interface{}
	warns  []map[string]interface{}
}

func (l *recordingLogger) Error(msg string, fields map[string]interface{}) {
	l.errors = append(l.errors, fields)
}

func (l *recordingLogger) Warn(msg string, fields map[string]interface{}) {
	l.warns = append(l.warns, fields)
}

func TestNewTransportError(t *testing.T) {
	t.Run("uses the underlying description", func(t *testing.T) {
		err := NewTransportError(fmt.Errorf("dial tcp 127.0.0.1:8000: connect: connection refused"))
		assert.Equal(t, ErrCodeTransport, err.Code)
		assert.Equal(t, "dial tcp 127.0.0.1:8000: connect: connection refused", err.Message)
		assert.Equal(t, MsgProcessFailed, err.Summary)
		assert.True(t, err.Retryable)
	})

	t.Run("falls back when there is no description", func(t *testing.T) {
		assert.Equal(t, MsgBuildFailed, NewTransportError(nil).Message)
		assert.Equal(t, MsgBuildFailed, NewTransportError(stderrors.New("  ")).Message)
	})
}

func TestNewBackendError(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		detail    string
		want      string
		retryable bool
	}{
		{"detail wins", 500, "server exploded", "server exploded", true},
		{"status fallback", 500, "", "Backend responded with status 500 (Internal Server Error)", true},
		{"client error", 422, "Scraping the reference URL failed. Cannot proceed.", "Scraping the reference URL failed. Cannot proceed.", false},
		{"unknown status", 599, "", "Backend responded with status 599", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewBackendError(tt.status, tt.detail)
			assert.Equal(t, ErrCodeBackend, err.Code)
			assert.Equal(t, tt.want, err.Message)
			assert.Equal(t, MsgProcessFailed, err.Summary)
			assert.Equal(t, tt.retryable, err.Retryable)
			assert.Equal(t, tt.status, err.Metadata["statusCode"])
		})
	}
}

func TestNewIncompleteSuccessError(t *testing.T) {
	err := NewIncompleteSuccessError("s3://bucket/x.html")
	assert.Equal(t, ErrCodeIncompleteSuccess, err.Code)
	assert.Equal(t, MsgNoViewLink, err.Message)
	assert.Empty(t, err.Summary)
}

func TestNewMalformedResponseError(t *testing.T) {
	err := NewMalformedResponseError(stderrors.New("unexpected end of JSON input"))
	assert.Equal(t, ErrCodeMalformedResponse, err.Code)
	assert.Equal(t, "unexpected end of JSON input", err.Message)
	assert.Equal(t, MsgProcessFailed, err.Summary)
	assert.False(t, err.Retryable)
}

func TestErrorHandler_Handle(t *testing.T) {
	t.Run("keeps standard errors", func(t *testing.T) {
		log := &recordingLogger{}
		h := NewErrorHandler(log)

		in := NewBackendError(503, "")
		out := h.Handle("sub-1", fmt.Errorf("wrapped: %w", in))

		require.Same(t, in, out)
		require.Len(t, log.errors, 1)
		assert.Equal(t, "sub-1", log.errors[0]["submissionId"])
		assert.Equal(t, "backend", log.errors[0]["errorCategory"])
		assert.Equal(t, 503, log.errors[0]["statusCode"])
	})

	t.Run("validation is a warning", func(t *testing.T) {
		log := &recordingLogger{}
		h := NewErrorHandler(log)

		h.Handle("", NewValidationError("reference_url", MsgMissingReferenceURL))

		assert.Empty(t, log.errors)
		require.Len(t, log.warns, 1)
		assert.Equal(t, "reference_url", log.warns[0]["field"])
	})

	t.Run("normalizes plain errors", func(t *testing.T) {
		h := NewErrorHandler(nil)
		out := h.Handle("sub-2", stderrors.New("boom"))

		assert.Equal(t, ErrCodeInternal, out.Code)
		assert.Equal(t, MsgBuildFailed, out.Message)
		assert.Equal(t, "boom", out.Details)
	})
}

func TestGetErrorCategory(t *testing.T) {
	assert.Equal(t, "user_input", GetErrorCategory(ErrCodeValidation))
	assert.Equal(t, "network", GetErrorCategory(ErrCodeTransport))
	assert.Equal(t, "backend", GetErrorCategory(ErrCodeMalformedResponse))
	assert.Equal(t, "internal", GetErrorCategory(ErrorCode("SOMETHING_ELSE")))
	assert.True(t, IsRetryableErrorCode(ErrCodeTransport))
	assert.False(t, IsRetryableErrorCode(ErrCodeIncompleteSuccess))
}
