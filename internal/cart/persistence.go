package cart

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	pkgerrors "github.com/Brooksey3011/military-tees-uk/pkg/errors"
	"github.com/Brooksey3011/military-tees-uk/pkg/redis"
)

// PersistedCart is the durable snapshot shape: the item list plus aggregates.
// The open flag is absent on purpose: it never survives a restore.
type PersistedCart struct {
	Items      []Item          `json:"items"`
	TotalItems int             `json:"total_items"`
	TotalPrice decimal.Decimal `json:"total_price"`
}

// Persister stores and restores cart snapshots under a fixed per-session
// key. Writes are best-effort; a failed write must not fail the mutation
// that triggered it. Load reports ok=false when no snapshot exists.
type Persister interface {
	Save(ctx context.Context, sessionID string, snapshot PersistedCart) error
	Load(ctx context.Context, sessionID string) (PersistedCart, bool, error)
	Delete(ctx context.Context, sessionID string) error
}

// EncodeSnapshot serializes the snapshot as JSON.
func EncodeSnapshot(snapshot PersistedCart) ([]byte, error) {
	return json.Marshal(snapshot)
}

// DecodeSnapshot parses a persisted payload. A payload that does not parse
// or does not match the expected shape yields an error the caller recovers
// from by falling back to an empty cart.
func DecodeSnapshot(payload []byte) (PersistedCart, error) {
	var snapshot PersistedCart
	if err := json.Unmarshal(payload, &snapshot); err != nil {
		return PersistedCart{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "malformed cart snapshot")
	}
	return snapshot, nil
}

// SanitizeItems enforces the store invariants on restored items: one entry
// per (product, variant) pair, no zero-ceiling items, quantities clamped to
// [1, maxQuantity]. Snapshots written by older builds or corrupted out of
// band are repaired rather than rejected wholesale.
func SanitizeItems(items []Item) []Item {
	seen := map[[32]byte]bool{}
	out := make([]Item, 0, len(items))
	for _, item := range items {
		if item.MaxQuantity < 1 {
			continue
		}

		var pair [32]byte
		copy(pair[:16], item.ProductID[:])
		copy(pair[16:], item.VariantID[:])
		if seen[pair] {
			continue
		}
		seen[pair] = true

		item.ID = NewItemID(item.ProductID, item.VariantID)
		if item.Quantity < 1 {
			item.Quantity = 1
		}
		if item.Quantity > item.MaxQuantity {
			item.Quantity = item.MaxQuantity
		}
		out = append(out, item)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// RedisPersister stores snapshots in Redis under the fixed cart namespace.
type RedisPersister struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisPersister binds the persister to the shared Redis client. A zero
// TTL keeps snapshots until explicitly deleted.
func NewRedisPersister(client *redis.Client, ttl time.Duration) (*RedisPersister, error) {
	if client == nil {
		return nil, errors.New("redis client required")
	}
	return &RedisPersister{client: client, ttl: ttl}, nil
}

func (p *RedisPersister) Save(ctx context.Context, sessionID string, snapshot PersistedCart) error {
	payload, err := EncodeSnapshot(snapshot)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode cart snapshot")
	}
	key := p.client.CartSnapshotKey(sessionID)
	if err := p.client.Set(ctx, key, string(payload), p.ttl); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist cart snapshot")
	}
	return nil
}

func (p *RedisPersister) Load(ctx context.Context, sessionID string) (PersistedCart, bool, error) {
	key := p.client.CartSnapshotKey(sessionID)
	payload, err := p.client.Get(ctx, key)
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return PersistedCart{}, false, nil
		}
		return PersistedCart{}, false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart snapshot")
	}

	snapshot, err := DecodeSnapshot([]byte(payload))
	if err != nil {
		return PersistedCart{}, false, err
	}
	return snapshot, true, nil
}

func (p *RedisPersister) Delete(ctx context.Context, sessionID string) error {
	return p.client.Del(ctx, p.client.CartSnapshotKey(sessionID))
}

// NoopPersister drops every write. Used in tests and as the fallback when a
// store is constructed without a persistence binding.
type NoopPersister struct{}

func (NoopPersister) Save(context.Context, string, PersistedCart) error { return nil }

func (NoopPersister) Load(context.Context, string) (PersistedCart, bool, error) {
	return PersistedCart{}, false, nil
}

func (NoopPersister) Delete(context.Context, string) error { return nil }
