package notifycompletion

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"portfolio-builder/internal/common/aws"
	commonerrors "portfolio-builder/internal/common/errors"
	"portfolio-builder/internal/common/logger"
	"portfolio-builder/internal/common/metrics"
	"portfolio-builder/internal/models"

	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/google/uuid"
)

const TaskType = "notify-completion"

const subject = "Your portfolio is ready"

var (
	ErrNotificationSendFailed = errors.New("NOTIFICATION_SEND_FAILED")
)

// Define interfaces for mocking
type SESService interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

type SNSService interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

type Handler struct {
	config    *Config
	logger    logger.Logger
	sesClient SESService
	snsClient SNSService
	wg        sync.WaitGroup
}

type HandlerOptions struct {
	Config    *Config
	Logger    logger.Logger
	SESClient SESService
	SNSClient SNSService
}

// NewHandler builds the worker. AWS clients are created from the default
// credential chain unless supplied.
func NewHandler(ctx context.Context, opts HandlerOptions) (*Handler, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = LoadConfig(nil)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration for %s: %w", TaskType, err)
	}

	log := opts.Logger
	if log == nil {
		log = logger.NewStructured("info", "json")
	}

	h := &Handler{
		config:    cfg,
		logger:    log.WithFields(map[string]interface{}{"taskType": TaskType}),
		sesClient: opts.SESClient,
		snsClient: opts.SNSClient,
	}

	needSES := cfg.EmailEnabled && h.sesClient == nil
	needSNS := cfg.SNSEnabled && h.snsClient == nil
	if needSES || needSNS {
		awsCfg, err := aws.LoadConfig(ctx, cfg.AWSRegion)
		if err != nil {
			return nil, err
		}
		if needSES {
			h.sesClient = aws.NewSESClient(awsCfg)
		}
		if needSNS {
			h.snsClient = aws.NewSNSClient(awsCfg)
		}
	}

	return h, nil
}

// Listener returns a state listener that announces every successful
// submission in the background. ctx bounds the sends.
func (h *Handler) Listener(ctx context.Context) func(models.SubmissionState) {
	return func(state models.SubmissionState) {
		if state.Phase != models.PhaseSucceeded || !h.config.Enabled() {
			return
		}
		input := &Input{SubmissionID: state.SubmissionID, Message: state.Message, ViewLink: state.ViewLink}
		h.wg.Add(1)
		go func() {
			defer h.wg.Done()
			sendCtx, cancel := context.WithTimeout(ctx, h.config.Timeout)
			defer cancel()
			if _, err := h.Execute(sendCtx, input); err != nil {
				h.logger.Warn("completion notification failed", map[string]interface{}{
					"submissionId": input.SubmissionID,
					"error":        err,
				})
			}
		}()
	}
}

// Wait blocks until notifications started by Listener have finished.
func (h *Handler) Wait() {
	h.wg.Wait()
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if !h.config.Enabled() {
		return &Output{Status: models.NotificationDisabled}, nil
	}
	if input.ViewLink == "" {
		return nil, fmt.Errorf("view link is required")
	}

	body := renderBody(input)
	out := &Output{Status: models.NotificationSent}
	var failures []error

	if h.config.EmailEnabled {
		n := h.newNotification(input, models.ChannelEmail, body)
		_, err := h.sesClient.SendEmail(ctx, aws.TextEmail(h.config.FromEmail, h.config.ToEmail, subject, body))
		failures = h.settle(n, err, failures)
		out.Notifications = append(out.Notifications, *n)
	}

	if h.config.SNSEnabled {
		n := h.newNotification(input, models.ChannelSNS, body)
		_, err := h.snsClient.Publish(ctx, aws.TopicMessage(h.config.TopicARN, subject, body, map[string]string{
			"submissionId": input.SubmissionID,
		}))
		failures = h.settle(n, err, failures)
		out.Notifications = append(out.Notifications, *n)
	}

	if len(failures) > 0 {
		out.Status = models.NotificationFailed
		return out, fmt.Errorf("%w: %w", ErrNotificationSendFailed, errors.Join(failures...))
	}

	h.logger.Info("completion notifications sent", map[string]interface{}{
		"submissionId": input.SubmissionID,
		"channels":     len(out.Notifications),
	})
	return out, nil
}

func (h *Handler) newNotification(input *Input, channel, body string) *models.CompletionNotification {
	return &models.CompletionNotification{
		ID:           uuid.NewString(),
		SubmissionID: input.SubmissionID,
		Channel:      channel,
		Subject:      subject,
		Body:         body,
	}
}

func (h *Handler) settle(n *models.CompletionNotification, err error, failures []error) []error {
	n.SentAt = time.Now().UTC().Format(time.RFC3339)
	if err != nil {
		n.Status = models.NotificationFailed
		metrics.NotificationsSent.WithLabelValues(n.Channel, n.Status).Inc()
		stdErr := commonerrors.NewNotificationSendFailedError(n.Channel, err)
		h.logger.Error("notification send failed", map[string]interface{}{
			"submissionId": n.SubmissionID,
			"channel":      n.Channel,
			"errorCode":    string(stdErr.Code),
			"details":      stdErr.Details,
		})
		return append(failures, stdErr)
	}
	n.Status = models.NotificationSent
	metrics.NotificationsSent.WithLabelValues(n.Channel, n.Status).Inc()
	return failures
}

func renderBody(input *Input) string {
	message := input.Message
	if message == "" {
		message = models.MsgBuildSucceeded
	}
	return fmt.Sprintf("%s\n\nView your portfolio: %s\n", message, input.ViewLink)
}
