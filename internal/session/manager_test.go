package session

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"portfolio-builder/internal/common/logger"
	"portfolio-builder/internal/models"
	buildportfolio "portfolio-builder/internal/workers/portfolio/build-portfolio"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBackend(t *testing.T, body string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(server.Close)
	return server
}

func testFactory(t *testing.T, baseURL string) ControllerFactory {
	return func(sessionID string, opener buildportfolio.LinkOpener) (*buildportfolio.Handler, error) {
		return buildportfolio.NewHandler(buildportfolio.HandlerOptions{
			Config: &buildportfolio.Config{BaseURL: baseURL, Timeout: 5 * time.Second},
			Logger: logger.NewTestLogger(t),
			Opener: opener,
		})
	}
}

func TestManager_GetOrCreate(t *testing.T) {
	backend := newBackend(t, `{}`)
	m := NewManager(ManagerOptions{Factory: testFactory(t, backend.URL), TTL: time.Minute, Logger: logger.NewTestLogger(t)})

	s, err := m.GetOrCreate(context.Background(), "")
	require.NoError(t, err)
	assert.NotEmpty(t, s.ID)

	again, err := m.GetOrCreate(context.Background(), s.ID)
	require.NoError(t, err)
	assert.Same(t, s, again)

	assert.Equal(t, 1, m.Len())
}

func TestManager_GetOrCreate_IgnoresUnknownIDs(t *testing.T) {
	backend := newBackend(t, `{}`)
	m := NewManager(ManagerOptions{Factory: testFactory(t, backend.URL), TTL: time.Minute, Logger: logger.NewTestLogger(t)})

	for _, id := range []string{"browser-1", "../../etc", uuid.NewString()} {
		s, err := m.GetOrCreate(context.Background(), id)
		require.NoError(t, err)
		assert.NotEqual(t, id, s.ID)
		_, err = uuid.Parse(s.ID)
		assert.NoError(t, err, "session IDs are minted UUIDs")

		_, ok := m.Get(id)
		assert.False(t, ok, "no session is created under a client-chosen ID")
	}
	assert.Equal(t, 3, m.Len())
}

func TestManager_NoFactory(t *testing.T) {
	m := NewManager(ManagerOptions{})
	_, err := m.GetOrCreate(context.Background(), "x")
	assert.Error(t, err)
}

func TestManager_StatePersistsAndFansOut(t *testing.T) {
	backend := newBackend(t, `{"message":"done","file_path":"x.html","view_link":"https://example.com/a"}`)
	store := NewMemoryStore(time.Minute)

	var mu sync.Mutex
	var extra []models.Phase
	m := NewManager(ManagerOptions{
		Factory: testFactory(t, backend.URL),
		Store:   store,
		TTL:     time.Minute,
		Logger:  logger.NewTestLogger(t),
		Listeners: []buildportfolio.Listener{func(s models.SubmissionState) {
			mu.Lock()
			extra = append(extra, s.Phase)
			mu.Unlock()
		}},
	})

	s, err := m.GetOrCreate(context.Background(), "")
	require.NoError(t, err)

	page := NewClient(s.ID)
	m.Hub().Register(page)
	defer m.Hub().Unregister(page)

	out, err := s.Controller.Execute(context.Background(), &buildportfolio.Input{ReferenceURL: "https://a", ResumeText: "r"})
	require.NoError(t, err)
	assert.Equal(t, models.PhaseSucceeded, out.Phase)

	stored, err := store.Load(context.Background(), s.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PhaseSucceeded, stored.Phase)
	assert.Equal(t, models.PhaseSucceeded, m.State(context.Background(), s.ID).Phase)

	var types []string
	for len(page.Send) > 0 {
		types = append(types, receive(t, page).Type)
	}
	assert.Equal(t, []string{MessageTypeState, MessageTypeState, MessageTypeOpen}, types)

	mu.Lock()
	assert.Equal(t, []models.Phase{models.PhaseInFlight, models.PhaseSucceeded}, extra)
	mu.Unlock()
}

func TestManager_StateFallsBackToStore(t *testing.T) {
	store := NewMemoryStore(time.Minute)
	require.NoError(t, store.Save(context.Background(), "gone", models.FailedState("sub", "BACKEND_ERROR", "boom", "")))

	m := NewManager(ManagerOptions{Store: store})
	assert.Equal(t, models.PhaseFailed, m.State(context.Background(), "gone").Phase)
	assert.Equal(t, models.PhaseIdle, m.State(context.Background(), "unknown").Phase)
	assert.Equal(t, models.PhaseIdle, m.State(context.Background(), "").Phase)
}

func TestManager_Sweep(t *testing.T) {
	release := make(chan struct{})
	slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer slow.Close()

	m := NewManager(ManagerOptions{Factory: testFactory(t, slow.URL), TTL: time.Minute, Logger: logger.NewTestLogger(t)})
	now := time.Now()
	m.now = func() time.Time { return now }

	idle, err := m.GetOrCreate(context.Background(), "")
	require.NoError(t, err)
	busy, err := m.GetOrCreate(context.Background(), "")
	require.NoError(t, err)

	done, err := busy.Controller.Submit(context.Background(), &buildportfolio.Input{ReferenceURL: "https://a", ResumeText: "r"})
	require.NoError(t, err)

	now = now.Add(2 * time.Minute)
	assert.Equal(t, 1, m.Sweep())

	_, ok := m.Get(idle.ID)
	assert.False(t, ok)
	_, ok = m.Get(busy.ID)
	assert.True(t, ok, "sessions waiting on the backend are kept")

	close(release)
	<-done
}
