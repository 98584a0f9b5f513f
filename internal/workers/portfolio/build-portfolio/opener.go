package buildportfolio

import (
	"context"
	"fmt"
	"net/url"
	"os/exec"
	"runtime"
)

// LinkOpener opens a view link in a new, isolated browsing context.
type LinkOpener interface {
	Open(ctx context.Context, link string) error
}

// LinkOpenerFunc adapts a function to LinkOpener.
type LinkOpenerFunc func(ctx context.Context, link string) error

func (f LinkOpenerFunc) Open(ctx context.Context, link string) error {
	return f(ctx, link)
}

// NoopOpener discards links.
type NoopOpener struct{}

func (NoopOpener) Open(context.Context, string) error { return nil }

// BrowserOpener launches the system browser. A separately started browser
// process has no opener or referrer relationship with this program.
type BrowserOpener struct {
	// command overrides the platform launcher; used by tests.
	command func(ctx context.Context, link string) *exec.Cmd
}

func NewBrowserOpener() *BrowserOpener {
	return &BrowserOpener{command: browserCommand}
}

func (o *BrowserOpener) Open(ctx context.Context, link string) error {
	if err := ValidateLink(link); err != nil {
		return err
	}
	cmd := o.command(ctx, link)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("open %s: %w", link, err)
	}
	go func() { _ = cmd.Wait() }()
	return nil
}

// ValidateLink accepts only absolute http(s) links.
func ValidateLink(link string) error {
	u, err := url.Parse(link)
	if err != nil {
		return fmt.Errorf("invalid view link %q: %w", link, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("refusing to open non-http link %q", link)
	}
	return nil
}

func browserCommand(ctx context.Context, link string) *exec.Cmd {
	switch runtime.GOOS {
	case "darwin":
		return exec.CommandContext(ctx, "open", link)
	case "windows":
		return exec.CommandContext(ctx, "rundll32", "url.dll,FileProtocolHandler", link)
	default:
		return exec.CommandContext(ctx, "xdg-open", link)
	}
}
