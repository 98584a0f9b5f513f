// cmd/portfolio-cli/main.go
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"portfolio-builder/internal/common/config"
	"portfolio-builder/internal/common/logger"
	"portfolio-builder/internal/models"

	bp "portfolio-builder/internal/workers/portfolio/build-portfolio"
)

var errSubmissionFailed = errors.New("submission failed")

// newOpener is replaced in tests.
var newOpener = func() bp.LinkOpener { return bp.NewBrowserOpener() }

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdin, os.Stdout); err != nil {
		if !errors.Is(err, errSubmissionFailed) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout io.Writer) error {
	fs := flag.NewFlagSet("portfolio-cli", flag.ContinueOnError)
	referenceURL := fs.String("url", "", "Reference portfolio URL to clone")
	resume := fs.String("resume", "", "Resume text file, or - for stdin")
	configPath := fs.String("config", "", "Config file (defaults to configs/config.yaml)")
	backend := fs.String("backend", "", "Backend base URL, overrides config")
	timeout := fs.Duration("timeout", -1, "Request timeout, 0 waits indefinitely (default from config)")
	noOpen := fs.Bool("no-open", false, "Do not open the portfolio in a browser")
	verbose := fs.Bool("v", false, "Verbose logging")
	if err := fs.Parse(args); err != nil {
		return err
	}

	appCfg, err := loadConfig(*configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if *backend != "" {
		appCfg.Backend.BaseURL = *backend
	}
	if *timeout >= 0 {
		appCfg.Backend.Timeout = int(*timeout / time.Millisecond)
	}

	resumeText, err := readResume(*resume, stdin)
	if err != nil {
		return err
	}

	level := "error"
	if *verbose {
		level = "debug"
	}

	var opener bp.LinkOpener = bp.NoopOpener{}
	if !*noOpen {
		opener = newOpener()
	}

	handler, err := bp.NewHandler(bp.HandlerOptions{
		AppConfig: appCfg,
		Logger:    logger.NewStructured(level, "console", "stderr"),
		Opener:    opener,
	})
	if err != nil {
		return err
	}

	unsubscribe := handler.Subscribe(func(state models.SubmissionState) {
		printState(stdout, state)
	})
	defer unsubscribe()

	done, err := handler.Submit(ctx, &bp.Input{ReferenceURL: *referenceURL, ResumeText: resumeText})
	if err != nil {
		return err
	}
	final := <-done
	if final.Phase == models.PhaseFailed {
		return errSubmissionFailed
	}
	return nil
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFromFile(path)
	}
	return config.Load()
}

func readResume(path string, stdin io.Reader) (string, error) {
	var (
		raw []byte
		err error
	)
	switch path {
	case "":
		return "", nil
	case "-":
		raw, err = io.ReadAll(stdin)
	default:
		raw, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("read resume: %w", err)
	}
	return string(raw), nil
}

func printState(w io.Writer, state models.SubmissionState) {
	switch state.Phase {
	case models.PhaseInFlight:
		fmt.Fprintln(w, state.Message)
	case models.PhaseSucceeded:
		fmt.Fprintln(w, state.Message)
		fmt.Fprintf(w, "View: %s\n", state.ViewLink)
	case models.PhaseFailed:
		fmt.Fprintf(w, "Error: %s\n", state.Message)
		if state.Summary != "" && state.Summary != state.Message {
			fmt.Fprintln(w, strings.TrimSpace(state.Summary))
		}
	}
}
