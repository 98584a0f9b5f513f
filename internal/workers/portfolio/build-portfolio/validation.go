package buildportfolio

import (
	"fmt"

	"portfolio-builder/internal/common/errors"
	"portfolio-builder/internal/common/validation"
)

var inputSchema = validation.MustCompile("build-portfolio input", map[string]interface{}{
	"type":     "object",
	"required": []interface{}{"reference_url", "resume_text"},
	"properties": map[string]interface{}{
		"reference_url": map[string]interface{}{"type": "string", "minLength": 1},
		"resume_text":   map[string]interface{}{"type": "string", "minLength": 1},
	},
})

// optionalString accepts a string or null; null decodes to "".
var optionalString = map[string]interface{}{"type": []interface{}{"string", "null"}}

// responseSchema describes a 2xx body of POST /build-portfolio.
var responseSchema = validation.MustCompile("build-portfolio response", map[string]interface{}{
	"type": "object",
	"properties": map[string]interface{}{
		"message":   optionalString,
		"file_path": optionalString,
		"view_link": optionalString,
	},
})

// fieldMessages lists required fields in the order they are reported.
var fieldMessages = []struct {
	field   string
	message string
}{
	{"reference_url", errors.MsgMissingReferenceURL},
	{"resume_text", errors.MsgMissingResumeText},
}

// validateInput returns the first missing field as a validation error.
func validateInput(input *Input) *errors.StandardError {
	if input == nil {
		return errors.NewValidationError(fieldMessages[0].field, fieldMessages[0].message)
	}

	result, err := inputSchema.Validate(input)
	if err != nil {
		stdErr := errors.NewValidationError("input", errors.MsgBuildFailed)
		stdErr.Details = err.Error()
		return stdErr
	}
	if result.Valid {
		return nil
	}

	for _, fm := range fieldMessages {
		if result.HasErrors(fm.field) {
			return errors.NewValidationError(fm.field, fm.message)
		}
	}

	stdErr := errors.NewValidationError("input", errors.MsgBuildFailed)
	stdErr.Details = fmt.Sprintf("%v", result.GetErrorMessages())
	return stdErr
}

// validateResponse checks a success body before it is decoded.
func validateResponse(body []byte) error {
	result, err := responseSchema.ValidateBytes(body)
	if err != nil {
		return fmt.Errorf("invalid backend response: %w", err)
	}
	if !result.Valid {
		return fmt.Errorf("invalid backend response: %v", result.GetErrorMessages())
	}
	return nil
}
