// internal/common/errors/handler.go
package errors

import (
	stderrors "errors"
	"time"
)

// ErrorHandler turns any error raised during a submission into the
// StandardError that ends up in the Failed state.
type ErrorHandler struct {
	logger Logger
}

type Logger interface {
	Error(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
}

func NewErrorHandler(logger Logger) *ErrorHandler {
	return &ErrorHandler{logger: logger}
}

// Handle normalizes err and logs it. Validation errors are logged at warn level.
func (h *ErrorHandler) Handle(submissionID string, err error) *StandardError {
	stdErr := h.normalizeError(err)

	fields := map[string]interface{}{
		"submissionId":  submissionID,
		"errorCode":     string(stdErr.Code),
		"message":       stdErr.Message,
		"details":       stdErr.Details,
		"retryable":     stdErr.Retryable,
		"errorCategory": GetErrorCategory(stdErr.Code),
	}
	for k, v := range stdErr.Metadata {
		fields[k] = v
	}

	if h.logger != nil {
		if stdErr.Code == ErrCodeValidation {
			h.logger.Warn("submission rejected", fields)
		} else {
			h.logger.Error("submission failed", fields)
		}
	}

	return stdErr
}

// normalizeError ensures we always have a StandardError
func (h *ErrorHandler) normalizeError(err error) *StandardError {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr
	}
	details := ""
	if err != nil {
		details = err.Error()
	}
	return &StandardError{
		Code:      ErrCodeInternal,
		Message:   MsgBuildFailed,
		Summary:   MsgProcessFailed,
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}
