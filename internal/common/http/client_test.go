package http

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_URL(t *testing.T) {
	c := NewClient("http://localhost:8000/", time.Second)
	assert.Equal(t, "http://localhost:8000", c.BaseURL())
	assert.Equal(t, "http://localhost:8000/build-portfolio", c.URL("/build-portfolio"))
	assert.Equal(t, "http://localhost:8000/build-portfolio", c.URL("build-portfolio"))
}

func TestClient_PostJSON(t *testing.T) {
	var gotBody map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/build-portfolio", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.WriteHeader(http.StatusAccepted)
		_, _ = io.WriteString(w, `{"ok":true}`)
	}))
	defer server.Close()

	c := NewClientWith(server.URL, server.Client())
	resp, err := c.PostJSON(context.Background(), "/build-portfolio", map[string]string{"reference_url": "https://a.example"})
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusAccepted, resp.StatusCode)
	assert.Equal(t, "https://a.example", gotBody["reference_url"])
}

func TestClient_PostJSON_ContextCancelled(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.Copy(io.Discard, r.Body)
		select {
		case <-r.Context().Done():
		case <-release:
		}
	}))
	defer server.Close()
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	c := NewClient(server.URL, 0)
	_, err := c.PostJSON(ctx, "/slow", map[string]string{})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestClient_PostJSON_EncodeError(t *testing.T) {
	c := NewClient("http://localhost:1", time.Second)
	_, err := c.PostJSON(context.Background(), "/x", map[string]interface{}{"bad": make(chan int)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "encode request")
}
