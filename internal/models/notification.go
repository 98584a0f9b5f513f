// internal/models/notification.go
package models

const (
	ChannelEmail = "email"
	ChannelSNS   = "sns"
)

const (
	NotificationSent     = "sent"
	NotificationFailed   = "failed"
	NotificationDisabled = "disabled"
)

// CompletionNotification records one attempt to announce a finished portfolio.
type CompletionNotification struct {
	ID           string `json:"id"`
	SubmissionID string `json:"submissionId"`
	Channel      string `json:"channel"`
	Status       string `json:"status"`
	Subject      string `json:"subject"`
	Body         string `json:"body"`
	SentAt       string `json:"sentAt"`
}
