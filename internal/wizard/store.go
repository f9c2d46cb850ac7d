package wizard

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/wolfman30/lumiere-booking/internal/booking"
	"github.com/wolfman30/lumiere-booking/internal/calendar"
	"github.com/wolfman30/lumiere-booking/internal/recommend"
)

// DefaultSessionTTL bounds how long an idle booking session is kept.
const DefaultSessionTTL = 2 * time.Hour

var ErrSessionNotFound = errors.New("wizard: session not found")

// Session is one browser session's booking aggregate plus the wizard-local
// state around it (viewed month, recommendation request).
type Session struct {
	ID             string                    `json:"id"`
	State          booking.State             `json:"state"`
	ViewMonth      calendar.Month            `json:"view_month"`
	Query          string                    `json:"query,omitempty"`
	RecommendToken uint64                    `json:"recommend_token"`
	Pending        bool                      `json:"pending"`
	Recommendation *recommend.Recommendation `json:"recommendation,omitempty"`
	UpdatedAt      time.Time                 `json:"updated_at"`
}

// Store keeps sessions for their TTL. Update is an atomic read-modify-write:
// when fn returns an error nothing is written.
type Store interface {
	Create(ctx context.Context, sess Session) error
	Load(ctx context.Context, id string) (Session, error)
	Update(ctx context.Context, id string, fn func(*Session) error) (Session, error)
}

type memoryEntry struct {
	session   Session
	expiresAt time.Time
}

// MemoryStore is a process-local Store. Expired entries are dropped lazily
// on access.
type MemoryStore struct {
	mu       sync.Mutex
	ttl      time.Duration
	now      func() time.Time
	sessions map[string]memoryEntry
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &MemoryStore{
		ttl:      ttl,
		now:      time.Now,
		sessions: make(map[string]memoryEntry),
	}
}

func (m *MemoryStore) Create(_ context.Context, sess Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[sess.ID] = memoryEntry{session: sess, expiresAt: m.now().Add(m.ttl)}
	return nil
}

func (m *MemoryStore) Load(_ context.Context, id string) (Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.lookup(id)
	if !ok {
		return Session{}, ErrSessionNotFound
	}
	return entry.session, nil
}

func (m *MemoryStore) Update(_ context.Context, id string, fn func(*Session) error) (Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.lookup(id)
	if !ok {
		return Session{}, ErrSessionNotFound
	}
	sess := entry.session
	if err := fn(&sess); err != nil {
		return entry.session, err
	}
	m.sessions[id] = memoryEntry{session: sess, expiresAt: m.now().Add(m.ttl)}
	return sess, nil
}

// lookup must be called with mu held.
func (m *MemoryStore) lookup(id string) (memoryEntry, bool) {
	entry, ok := m.sessions[id]
	if !ok {
		return memoryEntry{}, false
	}
	if !m.now().Before(entry.expiresAt) {
		delete(m.sessions, id)
		return memoryEntry{}, false
	}
	return entry, true
}

var _ Store = (*MemoryStore)(nil)
