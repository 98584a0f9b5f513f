package buildportfolio

import (
	"portfolio-builder/internal/common/errors"
	"portfolio-builder/internal/models"
)

// Result is the outcome of one backend call. The set of implementations is
// closed: LinkReady, MissingLink, BackendFailure, TransportFailure and
// MalformedResponse.
type Result interface {
	Outcome() string
	isResult()
}

// LinkReady is a successful build with a view link.
type LinkReady struct {
	Message  string
	FilePath string
	ViewLink string
}

// MissingLink is a successful build whose response carried no view link.
type MissingLink struct {
	Message  string
	FilePath string
}

// BackendFailure is a non-2xx response. Detail is empty when the body had none.
type BackendFailure struct {
	StatusCode int
	Detail     string
}

// TransportFailure is a request that never produced a response.
type TransportFailure struct {
	Err error
}

// MalformedResponse is a 2xx response whose body is not a BackendResponse.
type MalformedResponse struct {
	Err error
}

func (LinkReady) Outcome() string         { return string(models.PhaseSucceeded) }
func (MissingLink) Outcome() string       { return "missing_link" }
func (BackendFailure) Outcome() string    { return "backend_error" }
func (TransportFailure) Outcome() string  { return "transport_error" }
func (MalformedResponse) Outcome() string { return "malformed_response" }

func (LinkReady) isResult()         {}
func (MissingLink) isResult()       {}
func (BackendFailure) isResult()    {}
func (TransportFailure) isResult()  {}
func (MalformedResponse) isResult() {}

// resultError returns the error a failed result stands for, or nil on success.
func resultError(r Result) *errors.StandardError {
	switch r := r.(type) {
	case LinkReady:
		return nil
	case MissingLink:
		return errors.NewIncompleteSuccessError(r.FilePath)
	case BackendFailure:
		return errors.NewBackendError(r.StatusCode, r.Detail)
	case TransportFailure:
		return errors.NewTransportError(r.Err)
	case MalformedResponse:
		return errors.NewMalformedResponseError(r.Err)
	default:
		return &errors.StandardError{Code: errors.ErrCodeInternal, Message: errors.MsgBuildFailed}
	}
}

// stateFor maps a result onto the terminal state of submissionID.
func stateFor(submissionID string, r Result, stdErr *errors.StandardError) models.SubmissionState {
	if ok, isLink := r.(LinkReady); isLink {
		return models.SucceededState(submissionID, ok.Message, ok.ViewLink)
	}
	return models.FailedState(submissionID, string(stdErr.Code), stdErr.Message, stdErr.Summary)
}
