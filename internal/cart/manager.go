package cart

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Brooksey3011/military-tees-uk/pkg/logger"
)

const (
	defaultStoreIdleTTL = 30 * time.Minute
	sweepInterval       = time.Minute
)

type storeEntry struct {
	store    *Store
	lastSeen time.Time
}

// Manager owns one Store per session and is the single authoritative owner
// of every canonical item list. Stores are created lazily, restoring the
// persisted snapshot on first access; a missing or malformed snapshot falls
// back to an empty cart. The registry is bounded: stores idle past the TTL
// are swept out and restore from their snapshot on the next access.
type Manager struct {
	mu        sync.Mutex
	stores    map[string]*storeEntry
	persister Persister
	idleTTL   time.Duration
	lastSweep time.Time
	now       func() time.Time
	logg      *logger.Logger
}

// NewManager builds the session-store registry. A non-positive idleTTL falls
// back to the default.
func NewManager(persister Persister, idleTTL time.Duration, logg *logger.Logger) (*Manager, error) {
	if persister == nil {
		return nil, fmt.Errorf("persister required")
	}
	if idleTTL <= 0 {
		idleTTL = defaultStoreIdleTTL
	}
	return &Manager{
		stores:    map[string]*storeEntry{},
		persister: persister,
		idleTTL:   idleTTL,
		now:       time.Now,
		logg:      logg,
	}, nil
}

// Get returns the store for the session, restoring its snapshot if this is
// the first access in this process.
func (m *Manager) Get(ctx context.Context, sessionID string) (*Store, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("session id required")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	m.sweepLocked(now)

	if entry, ok := m.stores[sessionID]; ok {
		entry.lastSeen = now
		return entry.store, nil
	}

	store := NewStore(sessionID, m.persister, m.logg)
	if items := m.restoreItems(ctx, sessionID); len(items) > 0 {
		store.restore(items)
	}
	m.stores[sessionID] = &storeEntry{store: store, lastSeen: now}
	return store, nil
}

// Evict drops the in-memory store for a session. The persisted snapshot is
// untouched; the next Get restores from it.
func (m *Manager) Evict(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.stores, sessionID)
}

// sweepLocked drops stores idle past the TTL so one-shot anonymous sessions
// cannot grow the registry without bound. Runs at most once per interval.
func (m *Manager) sweepLocked(now time.Time) {
	if now.Sub(m.lastSweep) < sweepInterval {
		return
	}
	m.lastSweep = now
	for sessionID, entry := range m.stores {
		if now.Sub(entry.lastSeen) > m.idleTTL {
			delete(m.stores, sessionID)
		}
	}
}

func (m *Manager) restoreItems(ctx context.Context, sessionID string) []Item {
	snapshot, ok, err := m.persister.Load(ctx, sessionID)
	if err != nil {
		// Malformed or unreadable snapshots reset to an empty cart. The
		// user sees a fresh cart, never an error.
		if m.logg != nil {
			ctx = m.logg.WithField(ctx, "session_id", sessionID)
			m.logg.Warn(ctx, "cart snapshot unreadable, resetting to empty: "+err.Error())
		}
		return nil
	}
	if !ok {
		return nil
	}
	return SanitizeItems(snapshot.Items)
}
