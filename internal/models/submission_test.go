package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSubmissionState_DerivedViews(t *testing.T) {
	tests := []struct {
		name        string
		state       SubmissionState
		loading     bool
		errorMsg    string
		statusMsg   string
		distraction bool
	}{
		{
			name:  "idle",
			state: IdleState(),
		},
		{
			name:        "in flight",
			state:       InFlightState("s1"),
			loading:     true,
			statusMsg:   MsgInProgress,
			distraction: true,
		},
		{
			name:      "succeeded with default message",
			state:     SucceededState("s1", "", "https://example.com/a"),
			statusMsg: MsgBuildSucceeded,
		},
		{
			name:      "failed with summary",
			state:     FailedState("s1", "BACKEND_ERROR", "server exploded", "Portfolio building process failed."),
			errorMsg:  "server exploded",
			statusMsg: "Portfolio building process failed.",
		},
		{
			name:     "failed validation",
			state:    FailedState("", "VALIDATION_ERROR", "Please paste your resume information.", ""),
			errorMsg: "Please paste your resume information.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.loading, tt.state.Loading())
			assert.Equal(t, tt.errorMsg, tt.state.ErrorMessage())
			assert.Equal(t, tt.statusMsg, tt.state.StatusMessage())
			assert.Equal(t, tt.distraction, tt.state.ShowDistraction)
		})
	}
}

func TestSubmissionState_InFlightCarriesNoPreviousResult(t *testing.T) {
	s := InFlightState("s2")
	assert.Empty(t, s.ErrorMessage())
	assert.Empty(t, s.ViewLink)
	assert.Empty(t, s.ErrorCode)
	assert.False(t, s.Terminal())
}
