package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/roach88/happyplaces/internal/model"
	"github.com/roach88/happyplaces/internal/store"
)

// Writer appends to the placement ledger and maintains the item and zone
// registries.
type Writer struct {
	store *store.Store
	clock model.Clock
}

// Option configures a Writer.
type Option func(*Writer)

// WithClock sets the clock used for default placement timestamps and
// registration times. Default: model.SystemClock.
func WithClock(c model.Clock) Option {
	return func(w *Writer) {
		w.clock = c
	}
}

// NewWriter creates a Writer over s.
func NewWriter(s *store.Store, opts ...Option) *Writer {
	w := &Writer{
		store: s,
		clock: model.SystemClock{},
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// PlacementInput describes one observation to record.
type PlacementInput struct {
	ItemID string

	// Zone is a free-text location key. It need not be registered.
	Zone string

	// DistributionType is one of the enumerated types. Empty means placed.
	DistributionType string

	Routine string
	Motive  string

	// SeenWith lists other items observed in the zone at the same time.
	// Each produces a symmetric co-presence pair.
	SeenWith []string

	// Timestamp is optional. When empty the writer's clock supplies it.
	Timestamp string

	Metadata model.Object
}

// RegisterItem validates item and upserts it, replacing every attribute of
// any prior registration. It returns the item as stored.
func (w *Writer) RegisterItem(ctx context.Context, item model.Item) (model.Item, error) {
	item, err := w.validateItem(item)
	if err != nil {
		return model.Item{}, err
	}

	if err := w.store.UpsertItem(ctx, item); err != nil {
		return model.Item{}, model.NewStoreError("register item", err)
	}

	stored, err := w.store.ReadItem(ctx, item.ID)
	if err != nil {
		return model.Item{}, model.NewStoreError("register item", err)
	}

	slog.Debug("item registered",
		"item_id", stored.ID,
		"category", stored.Category,
	)
	return stored, nil
}

func (w *Writer) validateItem(item model.Item) (model.Item, error) {
	item.ID = strings.TrimSpace(item.ID)
	if item.ID == "" {
		return model.Item{}, model.NewValidationError("item_id", "item id is required")
	}

	category, err := model.ParseCategory(string(item.Category))
	if err != nil {
		return model.Item{}, err
	}
	item.Category = category

	item.PurchaseDate = strings.TrimSpace(item.PurchaseDate)
	if item.PurchaseDate != "" {
		if _, err := model.ParsePurchaseDate(item.PurchaseDate); err != nil {
			return model.Item{}, err
		}
	}

	if err := checkNonNegative("expected_lifespan_years", item.ExpectedLifespanYears); err != nil {
		return model.Item{}, err
	}
	if err := checkNonNegative("usage_rate_per_day", item.UsageRatePerDay); err != nil {
		return model.Item{}, err
	}
	if item.CurrentQuantity != nil && *item.CurrentQuantity < 0 {
		return model.Item{}, model.NewValidationError("current_quantity", "current quantity must not be negative")
	}
	if item.RefillThreshold != nil && *item.RefillThreshold < 0 {
		return model.Item{}, model.NewValidationError("refill_threshold", "refill threshold must not be negative")
	}

	if item.Metadata == nil {
		item.Metadata = model.Object{}
	}
	if err := checkMetadata(item.Metadata); err != nil {
		return model.Item{}, err
	}

	item.CreatedAt = model.FormatTimestamp(w.clock.Now())
	return item, nil
}

// RecordPlacement validates in and appends one placement plus a symmetric
// co-presence pair per SeenWith entry, atomically. The returned placement
// carries its assigned ID and normalized timestamp.
func (w *Writer) RecordPlacement(ctx context.Context, in PlacementInput) (model.Placement, error) {
	p, err := w.buildPlacement(in)
	if err != nil {
		return model.Placement{}, err
	}

	seenWith := make([]string, 0, len(in.SeenWith))
	for _, other := range in.SeenWith {
		other = strings.TrimSpace(other)
		if other == "" {
			return model.Placement{}, model.NewValidationError("seen_with", "seen_with entries must not be empty")
		}
		seenWith = append(seenWith, other)
	}

	id, err := w.store.AppendPlacement(ctx, p, seenWith)
	if err != nil {
		return model.Placement{}, model.NewStoreError("record placement", err)
	}
	p.ID = id

	slog.Debug("placement recorded",
		"placement_id", p.ID,
		"item_id", p.ItemID,
		"zone", p.Zone,
		"distribution_type", p.DistributionType,
		"seen_with", len(seenWith),
	)
	return p, nil
}

func (w *Writer) buildPlacement(in PlacementInput) (model.Placement, error) {
	itemID := strings.TrimSpace(in.ItemID)
	if itemID == "" {
		return model.Placement{}, model.NewValidationError("item_id", "item id is required")
	}
	zone := strings.TrimSpace(in.Zone)
	if zone == "" {
		return model.Placement{}, model.NewValidationError("zone", "zone is required")
	}

	dist, err := model.ParseDistributionType(in.DistributionType)
	if err != nil {
		return model.Placement{}, err
	}

	var ts string
	if strings.TrimSpace(in.Timestamp) == "" {
		ts = model.FormatTimestamp(w.clock.Now())
	} else {
		ts, err = model.NormalizeTimestamp(in.Timestamp)
		if err != nil {
			return model.Placement{}, err
		}
	}

	meta := in.Metadata
	if meta == nil {
		meta = model.Object{}
	}
	if err := checkMetadata(meta); err != nil {
		return model.Placement{}, err
	}

	return model.Placement{
		ItemID:           itemID,
		Zone:             zone,
		DistributionType: dist,
		Routine:          strings.TrimSpace(in.Routine),
		Motive:           strings.TrimSpace(in.Motive),
		Timestamp:        ts,
		Metadata:         meta,
	}, nil
}

// RegisterZone upserts a zone entry. Only the identity key is required.
// Re-registering keeps the original created_at.
func (w *Writer) RegisterZone(ctx context.Context, z model.Zone) (model.Zone, error) {
	z.ID = strings.TrimSpace(z.ID)
	if z.ID == "" {
		return model.Zone{}, model.NewValidationError("zone_id", "zone id is required")
	}
	z.CreatedAt = model.FormatTimestamp(w.clock.Now())

	if err := w.store.UpsertZone(ctx, z); err != nil {
		return model.Zone{}, model.NewStoreError("register zone", err)
	}

	stored, err := w.store.ReadZone(ctx, z.ID)
	if err != nil {
		return model.Zone{}, model.NewStoreError("register zone", err)
	}

	slog.Debug("zone registered", "zone_id", stored.ID)
	return stored, nil
}

func checkNonNegative(field string, v *float64) error {
	if v == nil {
		return nil
	}
	if math.IsNaN(*v) || math.IsInf(*v, 0) {
		return model.NewValidationError(field, fmt.Sprintf("%s must be finite", field))
	}
	if *v < 0 {
		return model.NewValidationError(field, fmt.Sprintf("%s must not be negative", field))
	}
	return nil
}

// checkMetadata rejects bags that cannot be stored, such as NaN floats.
func checkMetadata(meta model.Object) error {
	if _, err := model.MarshalCanonical(meta); err != nil {
		return model.NewValidationError("metadata", err.Error())
	}
	return nil
}
