package buildportfolio

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"portfolio-builder/internal/common/logger"
	"portfolio-builder/internal/models"
)

// Endpoint is the backend path that builds a portfolio.
const Endpoint = "/build-portfolio"

// maxBodyBytes caps how much of a backend response is read.
const maxBodyBytes = 1 << 20

// BackendClient sends a JSON request relative to the backend base URL.
type BackendClient interface {
	PostJSON(ctx context.Context, path string, body interface{}) (*http.Response, error)
}

type Service struct {
	config *Config
	logger logger.Logger
	client BackendClient
}

func NewService(deps ServiceDependencies, config *Config) *Service {
	return &Service{
		config: config,
		logger: deps.Logger,
		client: deps.Client,
	}
}

// Execute performs one backend call and classifies its outcome. It never
// returns an error: every failure is a Result.
func (s *Service) Execute(ctx context.Context, input *Input) Result {
	if s.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.config.Timeout)
		defer cancel()
	}

	start := time.Now()
	resp, err := s.client.PostJSON(ctx, Endpoint, input)
	if err != nil {
		return TransportFailure{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return TransportFailure{Err: fmt.Errorf("read response: %w", err)}
	}

	s.logger.Debug("backend responded", map[string]interface{}{
		"statusCode": resp.StatusCode,
		"durationMs": time.Since(start).Milliseconds(),
		"bodyBytes":  len(body),
	})

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return BackendFailure{StatusCode: resp.StatusCode, Detail: extractDetail(body)}
	}

	if err := validateResponse(body); err != nil {
		return MalformedResponse{Err: err}
	}

	var data models.BackendResponse
	if err := json.Unmarshal(body, &data); err != nil {
		return MalformedResponse{Err: fmt.Errorf("decode response: %w", err)}
	}

	if data.ViewLink == "" {
		return MissingLink{Message: data.Message, FilePath: data.FilePath}
	}
	return LinkReady{Message: data.Message, FilePath: data.FilePath, ViewLink: data.ViewLink}
}

// extractDetail pulls a human readable "detail" out of an error body. A list
// of validation errors ({"msg": ...} objects) is joined. Any other shape
// yields "".
func extractDetail(body []byte) string {
	var payload struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err != nil || len(payload.Detail) == 0 {
		return ""
	}

	var detail string
	if err := json.Unmarshal(payload.Detail, &detail); err == nil {
		return detail
	}

	var items []struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(payload.Detail, &items); err != nil {
		return ""
	}
	msgs := make([]string, 0, len(items))
	for _, item := range items {
		if item.Msg != "" {
			msgs = append(msgs, item.Msg)
		}
	}
	return strings.Join(msgs, "; ")
}
