package ledger

import (
	"context"
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/happyplaces/internal/model"
	"github.com/roach88/happyplaces/internal/store"
	"github.com/roach88/happyplaces/internal/testutil"
)

var now = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func setupWriter(t *testing.T) (*Writer, *store.Store) {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return NewWriter(s, WithClock(testutil.NewDeterministicClock(now, time.Second))), s
}

func TestRegisterItem(t *testing.T) {
	w, s := setupWriter(t)
	ctx := context.Background()

	got, err := w.RegisterItem(ctx, model.Item{
		ID:                    "wallet",
		Label:                 "Leather Wallet",
		Category:              model.CategoryGoodStuff,
		PurchaseDate:          "2020-03-10",
		ExpectedLifespanYears: model.Ptr(8.0),
	})
	require.NoError(t, err)
	assert.Equal(t, "wallet", got.ID)
	assert.Equal(t, "2025-06-01T12:00:00.000000Z", got.CreatedAt)
	assert.Equal(t, model.Object{}, got.Metadata)

	stored, err := s.ReadItem(ctx, "wallet")
	require.NoError(t, err)
	assert.Equal(t, got, stored)
}

func TestRegisterItem_ReplacesWholesale(t *testing.T) {
	w, _ := setupWriter(t)
	ctx := context.Background()

	_, err := w.RegisterItem(ctx, model.Item{
		ID:              "salt_shaker",
		Label:           "Salt Shaker",
		Category:        model.CategoryRefillable,
		CurrentQuantity: model.Ptr(int64(20)),
		RefillThreshold: model.Ptr(int64(15)),
		Metadata:        model.Object{"brand": model.String("Acme")},
	})
	require.NoError(t, err)

	got, err := w.RegisterItem(ctx, model.Item{
		ID:       "salt_shaker",
		Label:    "Salt Shaker",
		Category: model.CategoryDisposable,
	})
	require.NoError(t, err)

	assert.Equal(t, model.CategoryDisposable, got.Category)
	assert.Nil(t, got.CurrentQuantity)
	assert.Nil(t, got.RefillThreshold)
	assert.Empty(t, got.Metadata)
	// First registration time survives.
	assert.Equal(t, "2025-06-01T12:00:00.000000Z", got.CreatedAt)
}

func TestRegisterItem_Validation(t *testing.T) {
	tests := []struct {
		name  string
		item  model.Item
		field string
	}{
		{"empty id", model.Item{Label: "x", Category: model.CategoryDisposable}, "item_id"},
		{"bad category", model.Item{ID: "x", Category: "heirloom"}, "category"},
		{"empty category", model.Item{ID: "x"}, "category"},
		{"bad purchase date", model.Item{ID: "x", Category: model.CategoryGoodStuff, PurchaseDate: "last spring"}, "purchase_date"},
		{"negative lifespan", model.Item{ID: "x", Category: model.CategoryGoodStuff, ExpectedLifespanYears: model.Ptr(-1.0)}, "expected_lifespan_years"},
		{"infinite usage", model.Item{ID: "x", Category: model.CategoryRefillable, UsageRatePerDay: model.Ptr(math.Inf(1))}, "usage_rate_per_day"},
		{"negative quantity", model.Item{ID: "x", Category: model.CategoryRefillable, CurrentQuantity: model.Ptr(int64(-3))}, "current_quantity"},
		{"negative threshold", model.Item{ID: "x", Category: model.CategoryRefillable, RefillThreshold: model.Ptr(int64(-1))}, "refill_threshold"},
		{"nan metadata", model.Item{ID: "x", Category: model.CategoryDisposable, Metadata: model.Object{"w": model.Float(math.NaN())}}, "metadata"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, s := setupWriter(t)

			_, err := w.RegisterItem(context.Background(), tt.item)
			require.Error(t, err)
			assert.True(t, model.IsValidation(err), "expected validation error, got %v", err)

			var e *model.Error
			require.ErrorAs(t, err, &e)
			assert.Equal(t, tt.field, e.Field)

			items, err := s.ListItems(context.Background())
			require.NoError(t, err)
			assert.Empty(t, items, "nothing may be written on validation failure")
		})
	}
}

func TestRecordPlacement_DefaultsTimestamp(t *testing.T) {
	w, _ := setupWriter(t)

	p, err := w.RecordPlacement(context.Background(), PlacementInput{
		ItemID: "wallet",
		Zone:   "kitchen_table",
	})
	require.NoError(t, err)

	assert.NotZero(t, p.ID)
	assert.Equal(t, model.DistributionPlaced, p.DistributionType)
	assert.Equal(t, "2025-06-01T12:00:00.000000Z", p.Timestamp)
}

func TestRecordPlacement_NormalizesTimestamp(t *testing.T) {
	w, _ := setupWriter(t)

	p, err := w.RecordPlacement(context.Background(), PlacementInput{
		ItemID:           "wallet",
		Zone:             "kitchen_table",
		DistributionType: "stack",
		Timestamp:        "2025-01-02T09:30:00+02:00",
	})
	require.NoError(t, err)
	assert.Equal(t, "2025-01-02T07:30:00.000000Z", p.Timestamp)
}

func TestRecordPlacement_SeenWith(t *testing.T) {
	w, s := setupWriter(t)
	ctx := context.Background()

	p, err := w.RecordPlacement(ctx, PlacementInput{
		ItemID:   "toothbrush",
		Zone:     "bathroom_left_side",
		Routine:  "morning routine",
		SeenWith: []string{"trash_can_bathroom"},
	})
	require.NoError(t, err)

	forward, err := s.ReadCoPresence(ctx, "toothbrush")
	require.NoError(t, err)
	reverse, err := s.ReadCoPresence(ctx, "trash_can_bathroom")
	require.NoError(t, err)

	require.Len(t, forward, 1)
	require.Len(t, reverse, 1)
	assert.Equal(t, "trash_can_bathroom", forward[0].ItemB)
	assert.Equal(t, "toothbrush", reverse[0].ItemB)
	assert.Equal(t, p.Timestamp, forward[0].Timestamp)
	assert.Equal(t, p.Zone, reverse[0].Zone)
}

func TestRecordPlacement_Validation(t *testing.T) {
	tests := []struct {
		name  string
		in    PlacementInput
		field string
	}{
		{"empty item", PlacementInput{Zone: "z"}, "item_id"},
		{"empty zone", PlacementInput{ItemID: "a"}, "zone"},
		{"bad distribution", PlacementInput{ItemID: "a", Zone: "z", DistributionType: "pile"}, "distribution_type"},
		{"bad timestamp", PlacementInput{ItemID: "a", Zone: "z", Timestamp: "yesterday"}, "timestamp"},
		{"blank seen_with", PlacementInput{ItemID: "a", Zone: "z", SeenWith: []string{"b", " "}}, "seen_with"},
		{"nan metadata", PlacementInput{ItemID: "a", Zone: "z", Metadata: model.Object{"x": model.Float(math.Inf(-1))}}, "metadata"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, s := setupWriter(t)

			_, err := w.RecordPlacement(context.Background(), tt.in)
			require.Error(t, err)
			assert.True(t, model.IsValidation(err), "expected validation error, got %v", err)

			var e *model.Error
			require.ErrorAs(t, err, &e)
			assert.Equal(t, tt.field, e.Field)

			n, err := s.CountPlacements(context.Background())
			require.NoError(t, err)
			assert.Zero(t, n)
		})
	}
}

func TestRecordPlacement_StoreUnavailable(t *testing.T) {
	w, s := setupWriter(t)
	require.NoError(t, s.Close())

	_, err := w.RecordPlacement(context.Background(), PlacementInput{ItemID: "a", Zone: "z"})
	require.Error(t, err)
	assert.True(t, model.IsStoreUnavailable(err), "expected store error, got %v", err)
}

func TestRegisterZone(t *testing.T) {
	w, s := setupWriter(t)
	ctx := context.Background()

	_, err := w.RegisterZone(ctx, model.Zone{ID: "bedroom_floor", Name: "Bedroom Floor"})
	require.NoError(t, err)

	_, err = w.RegisterZone(ctx, model.Zone{ID: "  "})
	assert.True(t, model.IsValidation(err))

	zones, err := s.ListZones(ctx)
	require.NoError(t, err)
	require.Len(t, zones, 1)
	assert.Equal(t, "Bedroom Floor", zones[0].Name)
}

func TestRegisterZone_KeepsOriginalCreatedAt(t *testing.T) {
	w, s := setupWriter(t)
	ctx := context.Background()

	first, err := w.RegisterZone(ctx, model.Zone{ID: "hallway", Name: "Hallway"})
	require.NoError(t, err)
	assert.Equal(t, "2025-06-01T12:00:00.000000Z", first.CreatedAt)

	// The clock has advanced, but the stored row keeps its first timestamp.
	second, err := w.RegisterZone(ctx, model.Zone{ID: "hallway", Name: "Front Hallway"})
	require.NoError(t, err)
	assert.Equal(t, first.CreatedAt, second.CreatedAt)
	assert.Equal(t, "Front Hallway", second.Name)

	stored, err := s.ReadZone(ctx, "hallway")
	require.NoError(t, err)
	assert.Equal(t, second, stored)
}
