package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/Brooksey3011/military-tees-uk/internal/catalog"
	pkgerrors "github.com/Brooksey3011/military-tees-uk/pkg/errors"
	"github.com/Brooksey3011/military-tees-uk/pkg/metrics"
)

type variantLoader interface {
	VariantForCart(ctx context.Context, variantID uuid.UUID) (*catalog.CartVariant, error)
}

// Service exposes the cart operation set to the API layer. Add operations
// resolve the authoritative price and stock ceiling from the catalog at the
// moment of the call; the cart trusts those snapshots afterwards.
type Service interface {
	Get(ctx context.Context, sessionID string) (State, error)
	AddItem(ctx context.Context, sessionID string, productID, variantID uuid.UUID) (State, error)
	RemoveItem(ctx context.Context, sessionID string, itemID uuid.UUID) (State, error)
	UpdateQuantity(ctx context.Context, sessionID string, itemID uuid.UUID, quantity int) (State, error)
	Clear(ctx context.Context, sessionID string) (State, error)
	Open(ctx context.Context, sessionID string) (State, error)
	Close(ctx context.Context, sessionID string) (State, error)
	Toggle(ctx context.Context, sessionID string) (State, error)
	PruneUnavailable(ctx context.Context, sessionID string) (State, error)
}

type service struct {
	manager *Manager
	loader  variantLoader
	metrics *metrics.CartMetrics
}

// NewService builds the cart service backed by the provided stack. Metrics
// may be nil.
func NewService(manager *Manager, loader variantLoader, cartMetrics *metrics.CartMetrics) (Service, error) {
	if manager == nil {
		return nil, fmt.Errorf("cart manager required")
	}
	if loader == nil {
		return nil, fmt.Errorf("variant loader required")
	}
	return &service{
		manager: manager,
		loader:  loader,
		metrics: cartMetrics,
	}, nil
}

func (s *service) Get(ctx context.Context, sessionID string) (State, error) {
	store, err := s.store(ctx, sessionID)
	if err != nil {
		return State{}, err
	}
	return store.Snapshot(), nil
}

func (s *service) AddItem(ctx context.Context, sessionID string, productID, variantID uuid.UUID) (State, error) {
	store, err := s.store(ctx, sessionID)
	if err != nil {
		return State{}, err
	}

	variant, err := s.loader.VariantForCart(ctx, variantID)
	if err != nil {
		return State{}, err
	}
	if !variant.Active {
		return State{}, pkgerrors.New(pkgerrors.CodeNotFound, "variant is no longer available")
	}
	if productID != uuid.Nil && productID != variant.ProductID {
		return State{}, pkgerrors.New(pkgerrors.CodeValidation, "product and variant mismatch")
	}

	s.metrics.IncOperation("add_item")
	if err := store.AddItem(ctx, Candidate{
		ProductID:   variant.ProductID,
		VariantID:   variant.VariantID,
		Name:        variant.ProductName,
		Image:       variant.ImageURL,
		Size:        variant.Size,
		Color:       variant.Color,
		Price:       variant.Price,
		MaxQuantity: variant.StockQty,
	}); err != nil {
		if typed := pkgerrors.As(err); typed != nil && typed.Code() == pkgerrors.CodeOutOfStock {
			s.metrics.IncOutOfStock()
		}
		return store.Snapshot(), err
	}

	snap := store.Snapshot()
	s.metrics.ObserveCartSize(snap.TotalItems)
	return snap, nil
}

func (s *service) RemoveItem(ctx context.Context, sessionID string, itemID uuid.UUID) (State, error) {
	store, err := s.store(ctx, sessionID)
	if err != nil {
		return State{}, err
	}
	s.metrics.IncOperation("remove_item")
	store.RemoveItem(ctx, itemID)
	return store.Snapshot(), nil
}

func (s *service) UpdateQuantity(ctx context.Context, sessionID string, itemID uuid.UUID, quantity int) (State, error) {
	store, err := s.store(ctx, sessionID)
	if err != nil {
		return State{}, err
	}
	s.metrics.IncOperation("update_quantity")
	store.UpdateQuantity(ctx, itemID, quantity)
	return store.Snapshot(), nil
}

func (s *service) Clear(ctx context.Context, sessionID string) (State, error) {
	store, err := s.store(ctx, sessionID)
	if err != nil {
		return State{}, err
	}
	s.metrics.IncOperation("clear")
	store.Clear(ctx)
	return store.Snapshot(), nil
}

func (s *service) Open(ctx context.Context, sessionID string) (State, error) {
	store, err := s.store(ctx, sessionID)
	if err != nil {
		return State{}, err
	}
	store.Open()
	return store.Snapshot(), nil
}

func (s *service) Close(ctx context.Context, sessionID string) (State, error) {
	store, err := s.store(ctx, sessionID)
	if err != nil {
		return State{}, err
	}
	store.Close()
	return store.Snapshot(), nil
}

func (s *service) Toggle(ctx context.Context, sessionID string) (State, error) {
	store, err := s.store(ctx, sessionID)
	if err != nil {
		return State{}, err
	}
	store.Toggle()
	return store.Snapshot(), nil
}

// PruneUnavailable is the user-triggered recovery flow for carts restored
// from a previous session: items whose variant has vanished, gone inactive,
// or sold out are removed in one transition.
func (s *service) PruneUnavailable(ctx context.Context, sessionID string) (State, error) {
	store, err := s.store(ctx, sessionID)
	if err != nil {
		return State{}, err
	}

	available := map[uuid.UUID]bool{}
	var loadErr error
	for _, item := range store.Snapshot().Items {
		variant, err := s.loader.VariantForCart(ctx, item.VariantID)
		if err != nil {
			if typed := pkgerrors.As(err); typed != nil && typed.Code() == pkgerrors.CodeNotFound {
				available[item.ID] = false
				continue
			}
			loadErr = err
			break
		}
		available[item.ID] = variant.Active && variant.StockQty > 0
	}
	if loadErr != nil {
		return State{}, loadErr
	}

	s.metrics.IncOperation("prune_unavailable")
	store.RemoveMatching(ctx, func(item Item) bool {
		return available[item.ID]
	})
	return store.Snapshot(), nil
}

func (s *service) store(ctx context.Context, sessionID string) (*Store, error) {
	if sessionID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "session id is required")
	}
	store, err := s.manager.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "resolve cart store")
	}
	return store, nil
}
