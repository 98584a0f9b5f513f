package buildportfolio

import (
	"portfolio-builder/internal/common/config"
	"portfolio-builder/internal/common/logger"
	"portfolio-builder/internal/common/observability"
	"portfolio-builder/internal/models"
)

// Input and Output are the controller's request and resolved state.
type (
	Input  = models.SubmissionInput
	Output = models.SubmissionState
)

// Listener receives every state transition in order. It runs on the
// transitioning goroutine and must not call Submit.
type Listener func(state models.SubmissionState)

type ServiceDependencies struct {
	Logger logger.Logger
	Client BackendClient
}

type HandlerOptions struct {
	AppConfig     *config.Config
	Config        *Config
	Logger        logger.Logger
	Opener        LinkOpener
	Client        BackendClient
	Observability *observability.Observability
}
