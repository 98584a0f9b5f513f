// cmd/portfolio-web/main.go
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"portfolio-builder/internal/common/config"
	"portfolio-builder/internal/common/logger"
	"portfolio-builder/internal/common/observability"
	"portfolio-builder/internal/session"
	"portfolio-builder/internal/web"
	"portfolio-builder/pkg/registry"

	bp "portfolio-builder/internal/workers/portfolio/build-portfolio"
	nc "portfolio-builder/internal/workers/portfolio/notify-completion"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.New("info", "console").Fatal("config load failed", zap.Error(err))
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	defer zapLog.Sync()

	// Wrap zap logger with our logger interface
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting portfolio web...",
		zap.String("environment", cfg.App.Environment),
		zap.String("backend", cfg.Backend.BaseURL),
	)

	obs := observability.New("portfolio-web", log)
	defer obs.Shutdown()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Session store with retry ---
	var store session.Store
	err = retryWithBackoff(func() error {
		var err error
		store, err = session.NewStore(ctx, cfg.Session)
		return err
	}, 5, time.Second, zapLog, "session store initialization")
	if err != nil {
		zapLog.Fatal("session store failed after retries", zap.Error(err))
	}
	defer store.Close()

	gallery, err := registry.Load(cfg.Gallery.RegistryPath)
	if err != nil {
		zapLog.Fatal("gallery load failed", zap.Error(err))
	}

	// --- Completion notifications ---
	var listeners []bp.Listener
	var notifier *nc.Handler
	if cfg.Notifications.Enabled() {
		notifier, err = nc.NewHandler(ctx, nc.HandlerOptions{
			Config: nc.LoadConfig(cfg),
			Logger: log,
		})
		if err != nil {
			zapLog.Fatal("failed to create notify-completion handler", zap.Error(err))
		}
		listeners = append(listeners, notifier.Listener(ctx))
		zapLog.Info("Completion notifications enabled")
	}

	manager := session.NewManager(session.ManagerOptions{
		Factory: func(sessionID string, opener bp.LinkOpener) (*bp.Handler, error) {
			return bp.NewHandler(bp.HandlerOptions{
				AppConfig:     cfg,
				Logger:        log.With(map[string]interface{}{"sessionID": sessionID}),
				Opener:        opener,
				Observability: obs,
			})
		},
		Store:     store,
		TTL:       config.GetDuration(cfg.Session.TTL),
		Logger:    log,
		Listeners: listeners,
	})
	go manager.Run(ctx)

	server, err := web.New(web.Options{
		Config:      cfg,
		Manager:     manager,
		Gallery:     gallery,
		Logger:      log,
		BaseContext: ctx,
		Ready:       manager.Ping,
	})
	if err != nil {
		zapLog.Fatal("failed to create web server", zap.Error(err))
	}

	go func() {
		if err := server.Listen(cfg.Server.Address); err != nil {
			zapLog.Error("web server failed", zap.Error(err))
			stop()
		}
	}()

	// --- Graceful Shutdown ---
	<-ctx.Done()
	zapLog.Info("Shutdown signal received, stopping web server...")

	if err := server.Shutdown(30 * time.Second); err != nil {
		zapLog.Error("Error shutting down web server", zap.Error(err))
	}
	if notifier != nil {
		notifier.Wait()
	}

	zapLog.Info("Portfolio web stopped gracefully")
}
