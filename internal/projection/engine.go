package projection

import (
	"context"
	"errors"
	"iter"
	"time"

	"github.com/roach88/happyplaces/internal/model"
	"github.com/roach88/happyplaces/internal/store"
)

const (
	// DefaultHistoryLimit applies when PlacementHistory gets a negative
	// limit. A limit of 0 yields nothing.
	DefaultHistoryLimit = 20

	// DefaultNeighborLimit applies when RecentNeighbors gets a negative limit.
	DefaultNeighborLimit = 10
)

// Engine computes read-side views over a store.
type Engine struct {
	store *store.Store
	clock model.Clock
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock sets the clock used as "now" for lifecycle projections.
func WithClock(c model.Clock) Option {
	return func(e *Engine) {
		e.clock = c
	}
}

// New creates an Engine over s.
func New(s *store.Store, opts ...Option) *Engine {
	e := &Engine{store: s, clock: model.SystemClock{}}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ItemStatus is the point-in-time view of one item.
//
// Lifecycle is set for good_stuff items with a purchase date and a
// positive lifespan. RefillStatus is set for refillables.
// CurrentPlacement is absent when the item was never placed.
type ItemStatus struct {
	ItemID           string            `json:"item_id"`
	Label            string            `json:"label"`
	Category         model.Category    `json:"category"`
	Metadata         model.Object      `json:"metadata"`
	Lifecycle        *Lifecycle        `json:"lifecycle,omitempty"`
	RefillStatus     *RefillStatus     `json:"refill_status,omitempty"`
	CurrentPlacement *CurrentPlacement `json:"current_placement,omitempty"`
}

// CurrentPlacement is the latest placement of an item.
type CurrentPlacement struct {
	Zone             string                 `json:"zone"`
	DistributionType model.DistributionType `json:"distribution_type"`
	Routine          string                 `json:"routine,omitempty"`
	Motive           string                 `json:"motive,omitempty"`
	Timestamp        string                 `json:"timestamp"`
}

// ItemStatus returns the status of id. An unknown id yields a NOT_FOUND
// error; an item that was never placed is not an error.
func (e *Engine) ItemStatus(ctx context.Context, id string) (ItemStatus, error) {
	item, err := e.store.ReadItem(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return ItemStatus{}, model.NewNotFoundError("item", id)
	}
	if err != nil {
		return ItemStatus{}, model.NewStoreError("item status", err)
	}
	return e.statusOf(ctx, item, e.clock.Now())
}

func (e *Engine) statusOf(ctx context.Context, item model.Item, now time.Time) (ItemStatus, error) {
	status := ItemStatus{
		ItemID:       item.ID,
		Label:        item.Label,
		Category:     item.Category,
		Metadata:     item.Metadata,
		Lifecycle:    ComputeLifecycle(item, now),
		RefillStatus: ComputeRefillStatus(item),
	}
	if status.Metadata == nil {
		status.Metadata = model.Object{}
	}

	p, ok, err := e.store.LatestPlacement(ctx, item.ID)
	if err != nil {
		return ItemStatus{}, model.NewStoreError("item status", err)
	}
	if ok {
		status.CurrentPlacement = &CurrentPlacement{
			Zone:             p.Zone,
			DistributionType: p.DistributionType,
			Routine:          p.Routine,
			Motive:           p.Motive,
			Timestamp:        p.Timestamp,
		}
	}
	return status, nil
}

// PlacementHistory yields up to limit placements of id, newest first.
// Each range over the result runs a fresh query.
func (e *Engine) PlacementHistory(ctx context.Context, id string, limit int) iter.Seq2[model.Placement, error] {
	if limit < 0 {
		limit = DefaultHistoryLimit
	}
	return func(yield func(model.Placement, error) bool) {
		for p, err := range e.store.PlacementHistory(ctx, id, limit) {
			if err != nil {
				yield(model.Placement{}, model.NewStoreError("placement history", err))
				return
			}
			if !yield(p, nil) {
				return
			}
		}
	}
}

// CollectHistory drains PlacementHistory into a slice.
func (e *Engine) CollectHistory(ctx context.Context, id string, limit int) ([]model.Placement, error) {
	history := []model.Placement{}
	for p, err := range e.PlacementHistory(ctx, id, limit) {
		if err != nil {
			return nil, err
		}
		history = append(history, p)
	}
	return history, nil
}

// RecentNeighbors returns distinct registered items seen with id, each at
// its latest sighting, newest first.
func (e *Engine) RecentNeighbors(ctx context.Context, id string, limit int) ([]model.Neighbor, error) {
	if limit < 0 {
		limit = DefaultNeighborLimit
	}
	neighbors, err := e.store.RecentNeighbors(ctx, id, limit)
	if err != nil {
		return nil, model.NewStoreError("recent neighbors", err)
	}
	return neighbors, nil
}

// ItemsInZone returns items whose latest placement overall is in zone.
func (e *Engine) ItemsInZone(ctx context.Context, zone string) ([]model.ZoneOccupant, error) {
	occupants, err := e.store.ItemsInZone(ctx, zone)
	if err != nil {
		return nil, model.NewStoreError("items in zone", err)
	}
	return occupants, nil
}

// AllItems returns every registered item ordered by label, then id.
func (e *Engine) AllItems(ctx context.Context) ([]model.Item, error) {
	items, err := e.store.ListItems(ctx)
	if err != nil {
		return nil, model.NewStoreError("all items", err)
	}
	return items, nil
}

// AllStatuses returns ItemStatus for every item in AllItems order. All
// lifecycles are computed against the same instant.
func (e *Engine) AllStatuses(ctx context.Context) ([]ItemStatus, error) {
	items, err := e.AllItems(ctx)
	if err != nil {
		return nil, err
	}
	now := e.clock.Now()

	statuses := make([]ItemStatus, 0, len(items))
	for _, item := range items {
		status, err := e.statusOf(ctx, item, now)
		if err != nil {
			return nil, err
		}
		statuses = append(statuses, status)
	}
	return statuses, nil
}

// ListZones returns every registered zone ordered by id.
func (e *Engine) ListZones(ctx context.Context) ([]model.Zone, error) {
	zones, err := e.store.ListZones(ctx)
	if err != nil {
		return nil, model.NewStoreError("list zones", err)
	}
	return zones, nil
}

// Sightings returns every co-presence edge recorded from id, oldest first.
// Unlike RecentNeighbors it keeps repeat sightings and unregistered
// neighbors.
func (e *Engine) Sightings(ctx context.Context, id string) ([]model.CoPresence, error) {
	edges, err := e.store.ReadCoPresence(ctx, id)
	if err != nil {
		return nil, model.NewStoreError("sightings", err)
	}
	return edges, nil
}

// Health reports whether the store answers queries.
type Health struct {
	Status     string `json:"status"`
	Placements int64  `json:"placements"`
}

// Health pings the store and counts the ledger.
func (e *Engine) Health(ctx context.Context) (Health, error) {
	if err := e.store.Ping(ctx); err != nil {
		return Health{}, model.NewStoreError("health", err)
	}
	n, err := e.store.CountPlacements(ctx)
	if err != nil {
		return Health{}, model.NewStoreError("health", err)
	}
	return Health{Status: "healthy", Placements: n}, nil
}
