package main

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	bp "portfolio-builder/internal/workers/portfolio/build-portfolio"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingOpener struct {
	mu    sync.Mutex
	links []string
}

func (o *recordingOpener) Open(_ context.Context, link string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.links = append(o.links, link)
	return nil
}

func useOpener(t *testing.T) *recordingOpener {
	t.Helper()
	rec := &recordingOpener{}
	prev := newOpener
	newOpener = func() bp.LinkOpener { return rec }
	t.Cleanup(func() { newOpener = prev })
	return rec
}

func writeConfigFile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("app:\n  environment: test\n"), 0o644))
	return path
}

func TestRun_Success(t *testing.T) {
	var received map[string]string
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		received = map[string]string{"path": r.URL.Path, "body": string(body)}
		_, _ = io.WriteString(w, `{"message":"Portfolio ready","file_path":"p.html","view_link":"https://example.com/p.html"}`)
	}))
	defer backend.Close()
	rec := useOpener(t)

	var out bytes.Buffer
	err := run(context.Background(), []string{
		"-config", writeConfigFile(t),
		"-backend", backend.URL,
		"-url", "https://ola.example",
		"-resume", "-",
	}, strings.NewReader("ten years of Go"), &out)
	require.NoError(t, err)

	assert.Equal(t, "/build-portfolio", received["path"])
	assert.Contains(t, received["body"], `"resume_text":"ten years of Go"`)
	assert.Contains(t, out.String(), "Portfolio ready")
	assert.Contains(t, out.String(), "View: https://example.com/p.html")
	assert.Equal(t, []string{"https://example.com/p.html"}, rec.links)
}

func TestRun_NoOpen(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"message":"ok","view_link":"https://example.com/p.html"}`)
	}))
	defer backend.Close()
	rec := useOpener(t)

	resume := filepath.Join(t.TempDir(), "resume.txt")
	require.NoError(t, os.WriteFile(resume, []byte("resume"), 0o644))

	var out bytes.Buffer
	err := run(context.Background(), []string{
		"-config", writeConfigFile(t), "-backend", backend.URL,
		"-url", "https://ola.example", "-resume", resume, "-no-open",
	}, nil, &out)
	require.NoError(t, err)
	assert.Empty(t, rec.links)
}

func TestRun_Failures(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = io.WriteString(w, `{"detail":"scraper crashed"}`)
	}))
	defer backend.Close()
	useOpener(t)
	cfg := writeConfigFile(t)

	var out bytes.Buffer
	err := run(context.Background(), []string{"-config", cfg, "-backend", backend.URL, "-url", "", "-resume", "-"},
		strings.NewReader("r"), &out)
	assert.ErrorIs(t, err, errSubmissionFailed)
	assert.Contains(t, out.String(), "Please enter a reference portfolio URL.")

	out.Reset()
	err = run(context.Background(), []string{"-config", cfg, "-backend", backend.URL, "-url", "https://ola.example", "-resume", "-"},
		strings.NewReader("r"), &out)
	assert.ErrorIs(t, err, errSubmissionFailed)
	assert.Contains(t, out.String(), "scraper crashed")

	err = run(context.Background(), []string{"-config", cfg, "-resume", filepath.Join(t.TempDir(), "missing.txt")}, nil, &out)
	assert.ErrorContains(t, err, "read resume")

	err = run(context.Background(), []string{"-config", cfg, "-backend", "not a url"}, nil, &out)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, errSubmissionFailed)
}
