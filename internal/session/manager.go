package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"portfolio-builder/internal/common/logger"
	"portfolio-builder/internal/common/metrics"
	"portfolio-builder/internal/models"
	buildportfolio "portfolio-builder/internal/workers/portfolio/build-portfolio"

	"github.com/google/uuid"
)

// ControllerFactory builds the submission controller of a new session.
type ControllerFactory func(sessionID string, opener buildportfolio.LinkOpener) (*buildportfolio.Handler, error)

// Session is a browser session and its controller.
type Session struct {
	models.BrowserSession
	Controller *buildportfolio.Handler

	unsubscribe func()
}

type ManagerOptions struct {
	Factory   ControllerFactory
	Store     Store
	Hub       *Hub
	TTL       time.Duration
	Logger    logger.Logger
	Listeners []buildportfolio.Listener
}

// Manager owns one controller per browser session.
type Manager struct {
	mu        sync.Mutex
	sessions  map[string]*Session
	factory   ControllerFactory
	store     Store
	hub       *Hub
	ttl       time.Duration
	logger    logger.Logger
	listeners []buildportfolio.Listener
	now       func() time.Time
}

func NewManager(opts ManagerOptions) *Manager {
	log := opts.Logger
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	store := opts.Store
	if store == nil {
		store = NewMemoryStore(opts.TTL)
	}
	hub := opts.Hub
	if hub == nil {
		hub = NewHub(log)
	}
	return &Manager{
		sessions:  make(map[string]*Session),
		factory:   opts.Factory,
		store:     store,
		hub:       hub,
		ttl:       opts.TTL,
		logger:    logger.Component(log, "sessions"),
		listeners: opts.Listeners,
		now:       time.Now,
	}
}

func (m *Manager) Hub() *Hub {
	return m.hub
}

// Get returns a live session and marks it active.
func (m *Manager) Get(sessionID string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[sessionID]
	if ok {
		s.LastActivity = m.now()
	}
	return s, ok
}

// GetOrCreate returns the live session named by sessionID. Any other value,
// including an unknown or forged ID, gets a new session under a fresh UUID.
func (m *Manager) GetOrCreate(ctx context.Context, sessionID string) (*Session, error) {
	if sessionID != "" {
		if s, ok := m.Get(sessionID); ok {
			return s, nil
		}
	}

	if m.factory == nil {
		return nil, errors.New("session manager has no controller factory")
	}
	sessionID = uuid.NewString()
	controller, err := m.factory(sessionID, m.hub.Opener(sessionID))
	if err != nil {
		return nil, err
	}

	now := m.now()
	s := &Session{
		BrowserSession: models.BrowserSession{ID: sessionID, CreatedAt: now, LastActivity: now},
		Controller:     controller,
	}
	s.unsubscribe = controller.Subscribe(m.listener(ctx, sessionID))

	m.mu.Lock()
	m.sessions[sessionID] = s
	m.mu.Unlock()

	metrics.ActiveSessions.Inc()
	m.logger.Debug("session created", map[string]interface{}{"sessionId": sessionID})
	return s, nil
}

func (m *Manager) listener(ctx context.Context, sessionID string) buildportfolio.Listener {
	return func(state models.SubmissionState) {
		if err := m.store.Save(ctx, sessionID, state); err != nil {
			m.logger.Warn("failed to save session state", map[string]interface{}{
				"sessionId": sessionID,
				"error":     err,
			})
		}
		m.hub.BroadcastState(sessionID, state)
		for _, l := range m.listeners {
			l(state)
		}
	}
}

// State returns the current state of sessionID: the live controller's when
// the session is loaded, else the stored snapshot, else idle.
func (m *Manager) State(ctx context.Context, sessionID string) models.SubmissionState {
	if s, ok := m.Get(sessionID); ok {
		return s.Controller.State()
	}
	if sessionID != "" {
		state, err := m.store.Load(ctx, sessionID)
		if err == nil {
			return state
		}
		if !errors.Is(err, ErrNotFound) {
			m.logger.Warn("failed to load session state", map[string]interface{}{
				"sessionId": sessionID,
				"error":     err,
			})
		}
	}
	return models.IdleState()
}

// Len returns the number of live sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Sweep drops sessions idle for longer than the TTL. Sessions waiting on
// the backend are kept.
func (m *Manager) Sweep() int {
	if m.ttl <= 0 {
		return 0
	}

	now := m.now()
	var expired []*Session

	m.mu.Lock()
	for id, s := range m.sessions {
		if s.IsExpired(now, m.ttl) && !s.Controller.State().Loading() {
			expired = append(expired, s)
			delete(m.sessions, id)
		}
	}
	m.mu.Unlock()

	for _, s := range expired {
		s.unsubscribe()
		metrics.ActiveSessions.Dec()
	}
	if len(expired) > 0 {
		m.logger.Info("expired sessions swept", map[string]interface{}{"count": len(expired)})
	}
	return len(expired)
}

// Ping checks the snapshot store.
func (m *Manager) Ping(ctx context.Context) error {
	return m.store.Ping(ctx)
}

// Run sweeps periodically until ctx is done.
func (m *Manager) Run(ctx context.Context) {
	if m.ttl <= 0 {
		return
	}
	interval := m.ttl / 2
	if interval > time.Minute {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Sweep()
		}
	}
}
