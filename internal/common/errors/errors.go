// Package errors provides the standardized error taxonomy for portfolio submissions.
package errors

import (
	"fmt"
	"net/http"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeValidation         ErrorCode = "VALIDATION_ERROR"
	ErrCodeTransport          ErrorCode = "TRANSPORT_ERROR"
	ErrCodeBackend            ErrorCode = "BACKEND_ERROR"
	ErrCodeIncompleteSuccess  ErrorCode = "INCOMPLETE_SUCCESS"
	ErrCodeMalformedResponse  ErrorCode = "MALFORMED_RESPONSE"
	ErrCodeNotificationFailed ErrorCode = "NOTIFICATION_SEND_FAILED"
	ErrCodeInternal           ErrorCode = "INTERNAL_ERROR"
)

// User-facing messages.
const (
	MsgMissingReferenceURL = "Please enter a reference portfolio URL."
	MsgMissingResumeText   = "Please paste your resume information."
	MsgBuildFailed         = "Failed to build portfolio."
	MsgProcessFailed       = "Portfolio building process failed."
	MsgNoViewLink          = "Portfolio built successfully, but no viewable link was returned."
)

// StandardError represents a structured application error. Message is what
// the user sees; Summary is the optional secondary status line.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Summary   string                 `json:"summary,omitempty"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// ==========================
// 2. Error Constructors
// ==========================

// NewValidationError reports a missing or invalid form field. No request was sent.
func NewValidationError(field, message string) *StandardError {
	return &StandardError{
		Code:      ErrCodeValidation,
		Message:   message,
		Details:   fmt.Sprintf("field: %s", field),
		Retryable: true,
		Metadata:  map[string]interface{}{"field": field},
		Timestamp: time.Now().UTC(),
	}
}

// NewTransportError wraps a request that never produced a response.
func NewTransportError(err error) *StandardError {
	message := MsgBuildFailed
	details := ""
	if err != nil {
		details = err.Error()
		if msg := strings.TrimSpace(err.Error()); msg != "" {
			message = msg
		}
	}
	return &StandardError{
		Code:      ErrCodeTransport,
		Message:   message,
		Summary:   MsgProcessFailed,
		Details:   details,
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewBackendError reports a non-success status. detail is the backend's own
// explanation and may be empty.
func NewBackendError(statusCode int, detail string) *StandardError {
	message := detail
	if strings.TrimSpace(message) == "" {
		message = StatusMessage(statusCode)
	}
	return &StandardError{
		Code:      ErrCodeBackend,
		Message:   message,
		Summary:   MsgProcessFailed,
		Details:   fmt.Sprintf("status: %d", statusCode),
		Retryable: statusCode >= http.StatusInternalServerError,
		Metadata:  map[string]interface{}{"statusCode": statusCode},
		Timestamp: time.Now().UTC(),
	}
}

// NewIncompleteSuccessError reports a successful build without a view link.
func NewIncompleteSuccessError(filePath string) *StandardError {
	return &StandardError{
		Code:      ErrCodeIncompleteSuccess,
		Message:   MsgNoViewLink,
		Details:   fmt.Sprintf("filePath: %s", filePath),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewMalformedResponseError reports a success status whose body could not be decoded.
func NewMalformedResponseError(err error) *StandardError {
	stdErr := NewTransportError(err)
	stdErr.Code = ErrCodeMalformedResponse
	stdErr.Retryable = false
	return stdErr
}

func NewNotificationSendFailedError(channel string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeNotificationFailed,
		Message:   "Notification delivery failed",
		Details:   fmt.Sprintf("channel: %s, error: %s", channel, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 3. Utility Functions
// ==========================

// StatusMessage renders a status code with its reason phrase.
func StatusMessage(statusCode int) string {
	if text := http.StatusText(statusCode); text != "" {
		return fmt.Sprintf("Backend responded with status %d (%s)", statusCode, text)
	}
	return fmt.Sprintf("Backend responded with status %d", statusCode)
}

// IsRetryableErrorCode reports whether resubmitting can plausibly succeed
// without the user changing input.
func IsRetryableErrorCode(code ErrorCode) bool {
	switch code {
	case ErrCodeTransport, ErrCodeBackend, ErrCodeNotificationFailed:
		return true
	}
	return false
}

// GetErrorCategory groups codes for logs and metrics.
func GetErrorCategory(code ErrorCode) string {
	switch code {
	case ErrCodeValidation:
		return "user_input"
	case ErrCodeTransport:
		return "network"
	case ErrCodeBackend, ErrCodeIncompleteSuccess, ErrCodeMalformedResponse:
		return "backend"
	case ErrCodeNotificationFailed:
		return "notification"
	default:
		return "internal"
	}
}
