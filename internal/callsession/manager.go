package callsession

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/click-call/click-call-backend/internal/projects/domain"
)

// SnapshotStore persists session snapshots for inspection. Writes are
// best-effort: a store failure never blocks a transition.
type SnapshotStore interface {
	Save(ctx context.Context, snap Snapshot) error
	Delete(ctx context.Context, id string) error
}

const (
	defaultMaxIdle     = 30 * time.Minute
	defaultSweepPeriod = time.Minute
	persistTimeout     = 2 * time.Second
)

// Manager owns the live sessions. Each session keeps its own timers; the
// manager adds creation, lookup, snapshot persistence and idle cleanup.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*Session

	deps    Deps
	opts    Options
	store   SnapshotStore
	maxIdle time.Duration
	janitor Timer
}

func NewManager(deps Deps, opts Options, store SnapshotStore) *Manager {
	if deps.Sched == nil {
		deps.Sched = NewScheduler()
	}

	m := &Manager{
		sessions: make(map[string]*Session),
		deps:     deps,
		opts:     opts,
		store:    store,
		maxIdle:  defaultMaxIdle,
	}
	m.janitor = deps.Sched.TickEvery(defaultSweepPeriod, m.sweep)
	return m
}

// Create opens a session for one resolved project in the intro state.
func (m *Manager) Create(project domain.Project, user, call string) *Session {
	id := uuid.NewString()
	sess := newSession(id, project, user, call, m.deps, m.opts, m.persist)

	m.mu.Lock()
	m.sessions[id] = sess
	m.mu.Unlock()

	m.persist(sess.Snapshot())
	return sess
}

func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sess, ok := m.sessions[id]
	return sess, ok
}

// Close tears one session down and drops its snapshot.
func (m *Manager) Close(id string) {
	m.mu.Lock()
	sess, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()

	if !ok {
		return
	}
	sess.Close()

	if m.store != nil {
		ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
		defer cancel()
		if err := m.store.Delete(ctx, id); err != nil {
			log.Printf("[callsession] snapshot delete failed for %s: %v", id, err)
		}
	}
}

// Shutdown stops the janitor and closes every live session.
func (m *Manager) Shutdown() {
	if m.janitor != nil {
		m.janitor.Stop()
	}

	m.mu.Lock()
	all := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		all = append(all, s)
	}
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()

	for _, s := range all {
		s.Close()
	}
}

func (m *Manager) persist(snap Snapshot) {
	if m.store == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()

	if err := m.store.Save(ctx, snap); err != nil {
		log.Printf("[callsession] snapshot save failed for %s: %v", snap.ID, err)
	}
}

func (m *Manager) sweep() {
	cutoff := time.Now().UTC().Add(-m.maxIdle)

	m.mu.Lock()
	var stale []string
	for id, s := range m.sessions {
		if s.LastActive().Before(cutoff) {
			stale = append(stale, id)
		}
	}
	m.mu.Unlock()

	for _, id := range stale {
		m.Close(id)
	}
}
