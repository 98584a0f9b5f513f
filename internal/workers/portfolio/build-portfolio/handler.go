package buildportfolio

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	commonerrors "portfolio-builder/internal/common/errors"
	commonhttp "portfolio-builder/internal/common/http"
	"portfolio-builder/internal/common/logger"
	"portfolio-builder/internal/common/metrics"
	"portfolio-builder/internal/common/observability"
	"portfolio-builder/internal/models"

	"github.com/google/uuid"
)

const TaskType = "build-portfolio"

var (
	ErrSubmissionInFlight = errors.New("SUBMISSION_IN_FLIGHT")
)

// Handler is the submission controller. It owns one SubmissionState and
// moves it through idle, in_flight, succeeded and failed.
type Handler struct {
	config   *Config
	logger   logger.Logger
	service  *Service
	opener   LinkOpener
	errors   *commonerrors.ErrorHandler
	obs      *observability.Observability
	seq      sync.Mutex // serialises transitions and listener delivery
	mu       sync.RWMutex
	state    models.SubmissionState
	nextID   int
	watchers map[int]Listener
}

func NewHandler(opts HandlerOptions) (*Handler, error) {
	cfg := createConfigFromAppConfig(opts.AppConfig, opts.Config)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration for %s: %w", TaskType, err)
	}

	log := opts.Logger
	if log == nil {
		log = logger.NewStructured("info", "json")
	}
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})

	client := opts.Client
	if client == nil {
		client = commonhttp.NewClient(cfg.BaseURL, 0)
	}

	opener := opts.Opener
	if opener == nil {
		opener = NoopOpener{}
	}

	return &Handler{
		config:   cfg,
		logger:   log,
		service:  NewService(ServiceDependencies{Logger: log, Client: client}, cfg),
		opener:   opener,
		errors:   commonerrors.NewErrorHandler(log),
		obs:      opts.Observability,
		state:    models.IdleState(),
		watchers: make(map[int]Listener),
	}, nil
}

// State returns the current snapshot.
func (h *Handler) State() models.SubmissionState {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.state
}

// Subscribe registers l for every later transition and returns a function
// that removes it.
func (h *Handler) Subscribe(l Listener) func() {
	h.mu.Lock()
	id := h.nextID
	h.nextID++
	h.watchers[id] = l
	h.mu.Unlock()

	return func() {
		h.mu.Lock()
		delete(h.watchers, id)
		h.mu.Unlock()
	}
}

// Submit validates input and, when valid, moves to in_flight before it
// returns and calls the backend in the background. The returned channel
// receives the terminal state once and is then closed. Submit fails only
// with ErrSubmissionInFlight, in which case the state is unchanged.
func (h *Handler) Submit(ctx context.Context, input *Input) (<-chan models.SubmissionState, error) {
	_, done, err := h.Begin(ctx, input)
	return done, err
}

// Begin is Submit that also returns the state set before it returned:
// in_flight for a valid input, failed for an invalid one. Later transitions
// do not affect it.
func (h *Handler) Begin(ctx context.Context, input *Input) (models.SubmissionState, <-chan models.SubmissionState, error) {
	h.seq.Lock()
	defer h.seq.Unlock()

	if current := h.State(); current.Loading() {
		return current, nil, ErrSubmissionInFlight
	}

	submissionID := uuid.NewString()
	done := make(chan models.SubmissionState, 1)

	if stdErr := validateInput(input); stdErr != nil {
		h.errors.Handle(submissionID, stdErr)
		failed := models.FailedState(submissionID, string(stdErr.Code), stdErr.Message, "")
		h.transitionLocked(failed)
		h.record(ctx, failed, 0)
		done <- failed
		close(done)
		return failed, done, nil
	}

	inFlight := models.InFlightState(submissionID)
	h.transitionLocked(inFlight)
	metrics.SubmissionsInFlight.Inc()

	h.logger.Info("submission started", map[string]interface{}{
		"submissionId": submissionID,
		"referenceUrl": input.ReferenceURL,
		"resumeBytes":  len(input.ResumeText),
	})

	payload := *input
	go h.run(ctx, submissionID, &payload, done)
	return inFlight, done, nil
}

// Execute submits input and waits for the terminal state.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	done, err := h.Submit(ctx, input)
	if err != nil {
		return nil, err
	}
	select {
	case state := <-done:
		return &state, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (h *Handler) run(ctx context.Context, submissionID string, input *Input, done chan<- models.SubmissionState) {
	defer close(done)
	defer metrics.SubmissionsInFlight.Dec()

	start := time.Now()
	result := h.service.Execute(ctx, input)

	stdErr := resultError(result)
	if stdErr != nil {
		h.errors.Handle(submissionID, stdErr)
	}
	final := stateFor(submissionID, result, stdErr)

	h.seq.Lock()
	h.transitionLocked(final)
	h.seq.Unlock()

	duration := time.Since(start)
	h.record(ctx, final, duration)

	if ready, ok := result.(LinkReady); ok {
		h.logger.Info("submission succeeded", map[string]interface{}{
			"submissionId": submissionID,
			"filePath":     ready.FilePath,
			"viewLink":     ready.ViewLink,
			"durationMs":   duration.Milliseconds(),
		})
		if err := h.opener.Open(ctx, ready.ViewLink); err != nil {
			h.logger.Warn("failed to open view link", map[string]interface{}{
				"submissionId": submissionID,
				"viewLink":     ready.ViewLink,
				"error":        err,
			})
		}
	}

	done <- final
}

// transitionLocked stores s and delivers it to listeners. Callers hold seq.
func (h *Handler) transitionLocked(s models.SubmissionState) {
	h.logger.Debug("submission state changed", map[string]interface{}{
		"submissionId": s.SubmissionID,
		"phase":        string(s.Phase),
		"errorCode":    s.ErrorCode,
	})

	h.mu.Lock()
	h.state = s
	listeners := make([]Listener, 0, len(h.watchers))
	for i := 0; i < h.nextID; i++ {
		if l, ok := h.watchers[i]; ok {
			listeners = append(listeners, l)
		}
	}
	h.mu.Unlock()

	for _, l := range listeners {
		l(s)
	}
}

func (h *Handler) record(ctx context.Context, s models.SubmissionState, duration time.Duration) {
	outcome := string(s.Phase)
	metrics.SubmissionsTotal.WithLabelValues(outcome).Inc()
	if s.ErrorCode != "" {
		metrics.SubmissionsFailed.WithLabelValues(s.ErrorCode).Inc()
	}
	if duration > 0 {
		metrics.SubmissionDuration.WithLabelValues(outcome).Observe(duration.Seconds())
		h.obs.RecordSubmissionDuration(ctx, duration, outcome)
	}
	h.obs.RecordSubmission(ctx, outcome, s.ErrorCode)
}
