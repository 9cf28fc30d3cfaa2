package session

import (
	"log/slog"
	"sync"
	"time"

	"github.com/VitalyVorobyev/imageannotation/internal/detect"
	"github.com/VitalyVorobyev/imageannotation/internal/editor"
	"github.com/VitalyVorobyev/imageannotation/internal/typeid"
)

// Manager is the in-memory session registry. Sessions that receive no
// commands for the idle timeout are closed by a background reaper.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*Session

	opts     editor.Options
	detector *detect.Client
	uploader Uploader
	idle     time.Duration

	stop     chan struct{}
	stopOnce sync.Once
}

func NewManager(opts editor.Options, detector *detect.Client, uploader Uploader, idle time.Duration) *Manager {
	m := &Manager{
		sessions: make(map[string]*Session),
		opts:     opts,
		detector: detector,
		uploader: uploader,
		idle:     idle,
		stop:     make(chan struct{}),
	}
	if idle > 0 {
		go m.reap()
	}
	return m
}

// Create starts a new session with its own detection runner.
func (m *Manager) Create() *Session {
	s := New(typeid.NewSessionID(), m.opts, detect.NewRunner(m.detector), m.uploader)

	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()

	slog.Info("session created", "session", s.ID)
	return s
}

func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	return s, ok
}

// Close stops a session and removes it from the registry.
func (m *Manager) Close(id string) bool {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()

	if !ok {
		return false
	}
	s.Close()
	slog.Info("session closed", "session", id)
	return true
}

// Shutdown stops the reaper and every live session.
func (m *Manager) Shutdown() {
	m.stopOnce.Do(func() { close(m.stop) })

	m.mu.Lock()
	sessions := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		sessions = append(sessions, s)
	}
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()

	for _, s := range sessions {
		s.Close()
	}
}

func (m *Manager) reap() {
	interval := m.idle / 2
	if interval > time.Minute {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			cutoff := time.Now().Add(-m.idle)
			m.mu.Lock()
			for id, s := range m.sessions {
				if s.IdleSince().Before(cutoff) {
					s.Close()
					delete(m.sessions, id)
					slog.Info("session expired", "session", id)
				}
			}
			m.mu.Unlock()
		case <-m.stop:
			return
		}
	}
}
