package notifycompletion

import "portfolio-builder/internal/models"

type Input struct {
	SubmissionID string `json:"submissionId"`
	Message      string `json:"message"`
	ViewLink     string `json:"viewLink"`
}

type Output struct {
	Status        string                          `json:"status"`
	Notifications []models.CompletionNotification `json:"notifications,omitempty"`
}
