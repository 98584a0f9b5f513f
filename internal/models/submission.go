// internal/models/submission.go
package models

import "time"

// Phase is the lifecycle position of a submission.
type Phase string

const (
	PhaseIdle      Phase = "idle"
	PhaseInFlight  Phase = "in_flight"
	PhaseSucceeded Phase = "succeeded"
	PhaseFailed    Phase = "failed"
)

const (
	MsgInProgress     = "Building your portfolio... This may take 4-5 minutes."
	MsgBuildSucceeded = "Portfolio built successfully!"
)

// SubmissionInput is the form payload sent to the backend.
type SubmissionInput struct {
	ReferenceURL string `json:"reference_url" form:"reference_url"`
	ResumeText   string `json:"resume_text" form:"resume_text"`
}

// SubmissionState is a snapshot of the controller. Only the fields relevant
// to Phase are set; everything else is zero.
type SubmissionState struct {
	Phase           Phase     `json:"phase"`
	Message         string    `json:"message,omitempty"`
	Summary         string    `json:"summary,omitempty"`
	ShowDistraction bool      `json:"showDistraction"`
	ViewLink        string    `json:"viewLink,omitempty"`
	SubmissionID    string    `json:"submissionId,omitempty"`
	ErrorCode       string    `json:"errorCode,omitempty"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

func IdleState() SubmissionState {
	return SubmissionState{Phase: PhaseIdle, UpdatedAt: time.Now().UTC()}
}

func InFlightState(submissionID string) SubmissionState {
	return SubmissionState{
		Phase:           PhaseInFlight,
		Message:         MsgInProgress,
		ShowDistraction: true,
		SubmissionID:    submissionID,
		UpdatedAt:       time.Now().UTC(),
	}
}

func SucceededState(submissionID, message, viewLink string) SubmissionState {
	if message == "" {
		message = MsgBuildSucceeded
	}
	return SubmissionState{
		Phase:        PhaseSucceeded,
		Message:      message,
		ViewLink:     viewLink,
		SubmissionID: submissionID,
		UpdatedAt:    time.Now().UTC(),
	}
}

func FailedState(submissionID, errorCode, message, summary string) SubmissionState {
	return SubmissionState{
		Phase:        PhaseFailed,
		Message:      message,
		Summary:      summary,
		SubmissionID: submissionID,
		ErrorCode:    errorCode,
		UpdatedAt:    time.Now().UTC(),
	}
}

// Loading reports whether a backend call is outstanding.
func (s SubmissionState) Loading() bool {
	return s.Phase == PhaseInFlight
}

// ErrorMessage is the message to show as an error, or "".
func (s SubmissionState) ErrorMessage() string {
	if s.Phase == PhaseFailed {
		return s.Message
	}
	return ""
}

// StatusMessage is the non-error status line: progress while in flight, the
// success message afterwards, and the summary of a failed build.
func (s SubmissionState) StatusMessage() string {
	switch s.Phase {
	case PhaseInFlight, PhaseSucceeded:
		return s.Message
	case PhaseFailed:
		return s.Summary
	}
	return ""
}

// Terminal reports whether the state is a resolved submission.
func (s SubmissionState) Terminal() bool {
	return s.Phase == PhaseSucceeded || s.Phase == PhaseFailed
}

// BackendResponse is the success body of POST /build-portfolio.
type BackendResponse struct {
	Message  string `json:"message"`
	FilePath string `json:"file_path"`
	ViewLink string `json:"view_link,omitempty"`
}

// BackendErrorBody is the part of a failure body the client understands.
type BackendErrorBody struct {
	Detail string `json:"detail"`
}
