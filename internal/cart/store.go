package cart

import (
	"context"
	"sync"

	"github.com/google/uuid"

	pkgerrors "github.com/Brooksey3011/military-tees-uk/pkg/errors"
	"github.com/Brooksey3011/military-tees-uk/pkg/logger"
)

// Store owns the canonical item list for one session. Every mutation runs to
// completion under the mutex, recomputes the aggregates, persists the
// snapshot, and notifies subscribers, so no caller can observe a torn state.
//
// Only AddItem can fail, and only with OUT_OF_STOCK. Every other bad input
// (unknown id, non-positive quantity) degrades to a safe no-op.
type Store struct {
	mu          sync.Mutex
	sessionID   string
	items       []Item
	isOpen      bool
	totals      Totals
	persister   Persister
	logg        *logger.Logger
	subscribers []func(State)
}

// NewStore builds an empty store for the session, bound to the persister.
func NewStore(sessionID string, persister Persister, logg *logger.Logger) *Store {
	if persister == nil {
		persister = NoopPersister{}
	}
	return &Store{
		sessionID: sessionID,
		persister: persister,
		logg:      logg,
	}
}

// Subscribe registers a callback invoked with a snapshot after every state
// transition. Subscribers must not mutate the snapshot.
func (s *Store) Subscribe(fn func(State)) {
	if fn == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subscribers = append(s.subscribers, fn)
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// AddItem inserts the candidate with quantity 1, or increments the existing
// item for the same (product, variant) pair, clamped to its stock ceiling.
// Adding at the ceiling is a valid call that leaves the quantity unchanged.
// A candidate with no stock is rejected and the cart is left untouched.
// Successful adds open the cart so the UI can show feedback.
func (s *Store) AddItem(ctx context.Context, candidate Candidate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := NewItemID(candidate.ProductID, candidate.VariantID)
	if idx := s.indexOf(id); idx >= 0 {
		item := &s.items[idx]
		if item.Quantity < item.MaxQuantity {
			item.Quantity++
		}
		s.isOpen = true
		s.commitLocked(ctx)
		return nil
	}

	if candidate.MaxQuantity < 1 {
		return pkgerrors.New(pkgerrors.CodeOutOfStock, "variant has no stock").WithDetails(map[string]any{
			"product_id": candidate.ProductID,
			"variant_id": candidate.VariantID,
		})
	}

	s.items = append(s.items, Item{
		ID:          id,
		ProductID:   candidate.ProductID,
		VariantID:   candidate.VariantID,
		Name:        candidate.Name,
		Image:       candidate.Image,
		Size:        candidate.Size,
		Color:       candidate.Color,
		Price:       candidate.Price,
		Quantity:    1,
		MaxQuantity: candidate.MaxQuantity,
	})
	s.isOpen = true
	s.commitLocked(ctx)
	return nil
}

// RemoveItem drops the item if present; an absent id is a no-op. The open
// flag is left alone either way.
func (s *Store) RemoveItem(ctx context.Context, id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return
	}
	s.items = append(s.items[:idx], s.items[idx+1:]...)
	s.commitLocked(ctx)
}

// UpdateQuantity sets the item's quantity clamped to [1, maxQuantity]. A
// non-positive quantity removes the item; an unknown id is a no-op.
func (s *Store) UpdateQuantity(ctx context.Context, id uuid.UUID, quantity int) {
	if quantity <= 0 {
		s.RemoveItem(ctx, id)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return
	}
	item := &s.items[idx]
	if quantity > item.MaxQuantity {
		quantity = item.MaxQuantity
	}
	item.Quantity = quantity
	s.commitLocked(ctx)
}

// Clear empties the cart, zeroes the aggregates, closes the drawer, and
// persists the empty snapshot.
func (s *Store) Clear(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = nil
	s.isOpen = false
	s.commitLocked(ctx)
}

// RemoveMatching drops every item the keep predicate rejects, in one
// transition. Used by the stale-reference recovery flow.
func (s *Store) RemoveMatching(ctx context.Context, keep func(Item) bool) {
	if keep == nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.items[:0]
	removed := false
	for _, item := range s.items {
		if keep(item) {
			kept = append(kept, item)
		} else {
			removed = true
		}
	}
	if !removed {
		return
	}
	s.items = kept
	s.commitLocked(ctx)
}

// Open, Close, and Toggle transition the UI flag only. The flag is never
// persisted and the item list is untouched.
func (s *Store) Open() {
	s.setOpen(true)
}

func (s *Store) Close() {
	s.setOpen(false)
}

func (s *Store) Toggle() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.isOpen = !s.isOpen
	s.notifyLocked()
}

func (s *Store) setOpen(open bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.isOpen == open {
		return
	}
	s.isOpen = open
	s.notifyLocked()
}

// restore installs a sanitized persisted snapshot. Called once by the
// manager before the store is handed out; does not persist or notify.
func (s *Store) restore(items []Item) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = items
	s.totals = ComputeTotals(s.items)
}

// commitLocked recomputes aggregates, persists best-effort, and notifies.
// Callers must hold the mutex.
func (s *Store) commitLocked(ctx context.Context) {
	s.totals = ComputeTotals(s.items)

	if err := s.persister.Save(ctx, s.sessionID, PersistedCart{
		Items:      s.items,
		TotalItems: s.totals.TotalItems,
		TotalPrice: s.totals.TotalPrice,
	}); err != nil && s.logg != nil {
		s.logg.Warn(s.logg.WithField(ctx, "session_id", s.sessionID), "cart snapshot write failed: "+err.Error())
	}

	s.notifyLocked()
}

func (s *Store) notifyLocked() {
	if len(s.subscribers) == 0 {
		return
	}
	snap := s.snapshotLocked()
	for _, fn := range s.subscribers {
		fn(snap)
	}
}

func (s *Store) snapshotLocked() State {
	return State{
		Items:      cloneItems(s.items),
		IsOpen:     s.isOpen,
		TotalItems: s.totals.TotalItems,
		TotalPrice: s.totals.TotalPrice,
	}
}

func (s *Store) indexOf(id uuid.UUID) int {
	for i := range s.items {
		if s.items[i].ID == id {
			return i
		}
	}
	return -1
}
