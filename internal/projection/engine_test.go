package projection

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/happyplaces/internal/ledger"
	"github.com/roach88/happyplaces/internal/model"
	"github.com/roach88/happyplaces/internal/store"
	"github.com/roach88/happyplaces/internal/testutil"
)

func setup(t *testing.T) (*Engine, *ledger.Writer) {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	clock := testutil.NewFixedClock(now)
	return New(s, WithClock(clock)), ledger.NewWriter(s, ledger.WithClock(clock))
}

func register(t *testing.T, w *ledger.Writer, item model.Item) {
	t.Helper()
	_, err := w.RegisterItem(context.Background(), item)
	require.NoError(t, err)
}

func place(t *testing.T, w *ledger.Writer, in ledger.PlacementInput) model.Placement {
	t.Helper()
	p, err := w.RecordPlacement(context.Background(), in)
	require.NoError(t, err)
	return p
}

func TestItemStatus_NotFound(t *testing.T) {
	e, _ := setup(t)

	_, err := e.ItemStatus(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, model.IsNotFound(err))
}

func TestItemStatus_NoPlacement(t *testing.T) {
	e, w := setup(t)
	register(t, w, model.Item{
		ID:       "tissue",
		Label:    "Tissue Box",
		Category: model.CategoryDisposable,
		Metadata: model.Object{"brand": model.String("Soft")},
	})

	status, err := e.ItemStatus(context.Background(), "tissue")
	require.NoError(t, err)
	assert.Equal(t, "Tissue Box", status.Label)
	assert.Equal(t, model.CategoryDisposable, status.Category)
	assert.Equal(t, model.String("Soft"), status.Metadata["brand"])
	assert.Nil(t, status.CurrentPlacement)

	data, err := json.Marshal(status)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "current_placement")
	assert.NotContains(t, string(data), "lifecycle")
	assert.NotContains(t, string(data), "refill_status")
}

func TestItemStatus_CurrentPlacementIsLatestByTimestamp(t *testing.T) {
	e, w := setup(t)
	register(t, w, model.Item{ID: "wallet", Label: "Wallet", Category: model.CategoryGoodStuff,
		PurchaseDate: "2020-03-10", ExpectedLifespanYears: model.Ptr(8.0)})

	place(t, w, ledger.PlacementInput{ItemID: "wallet", Zone: "hallway", Timestamp: "2025-05-02T00:00:00Z",
		Routine: "coming home", Motive: "convenience"})
	place(t, w, ledger.PlacementInput{ItemID: "wallet", Zone: "kitchen_table", DistributionType: "stack",
		Timestamp: "2025-05-01T00:00:00Z"})

	status, err := e.ItemStatus(context.Background(), "wallet")
	require.NoError(t, err)
	require.NotNil(t, status.CurrentPlacement)
	assert.Equal(t, "hallway", status.CurrentPlacement.Zone)
	assert.Equal(t, "coming home", status.CurrentPlacement.Routine)
	assert.Equal(t, "2025-05-02T00:00:00.000000Z", status.CurrentPlacement.Timestamp)

	require.NotNil(t, status.Lifecycle)
	assert.Equal(t, 5.2, status.Lifecycle.AgeYears)
	assert.Equal(t, 2.8, status.Lifecycle.RemainingYears)
	assert.Equal(t, 34.7, status.Lifecycle.HealthPercent)
}

func TestItemStatus_Refillable(t *testing.T) {
	e, w := setup(t)
	register(t, w, model.Item{ID: "toothbrush", Label: "Electric Toothbrush", Category: model.CategoryRefillable,
		CurrentQuantity: model.Ptr(int64(45)), RefillThreshold: model.Ptr(int64(10)), UsageRatePerDay: model.Ptr(1.0)})

	status, err := e.ItemStatus(context.Background(), "toothbrush")
	require.NoError(t, err)
	require.NotNil(t, status.RefillStatus)
	assert.False(t, status.RefillStatus.NeedsRefill)
	require.NotNil(t, status.RefillStatus.DaysRemaining)
	assert.Equal(t, 45.0, *status.RefillStatus.DaysRemaining)
	assert.Nil(t, status.Lifecycle)
}

func TestPlacementHistory(t *testing.T) {
	e, w := setup(t)
	ctx := context.Background()

	for i := 1; i <= 25; i++ {
		place(t, w, ledger.PlacementInput{
			ItemID:    "keys",
			Zone:      fmt.Sprintf("zone_%02d", i),
			Timestamp: time.Date(2025, 1, i, 0, 0, 0, 0, time.UTC).Format(time.RFC3339),
		})
	}

	history, err := e.CollectHistory(ctx, "keys", 5)
	require.NoError(t, err)
	require.Len(t, history, 5)
	assert.Equal(t, "zone_25", history[0].Zone)
	for i := 1; i < len(history); i++ {
		assert.GreaterOrEqual(t, history[i-1].Timestamp, history[i].Timestamp)
	}

	// A negative limit uses the default; zero yields nothing.
	all, err := e.CollectHistory(ctx, "keys", -1)
	require.NoError(t, err)
	assert.Len(t, all, DefaultHistoryLimit)

	none, err := e.CollectHistory(ctx, "keys", 0)
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)

	// Each range re-queries and sees new appends.
	seq := e.PlacementHistory(ctx, "keys", 1)
	place(t, w, ledger.PlacementInput{ItemID: "keys", Zone: "pocket", Timestamp: "2025-02-01T00:00:00Z"})
	for p, err := range seq {
		require.NoError(t, err)
		assert.Equal(t, "pocket", p.Zone)
	}

	empty, err := e.CollectHistory(ctx, "nothing", 10)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestRecentNeighbors_Symmetric(t *testing.T) {
	e, w := setup(t)
	ctx := context.Background()
	register(t, w, model.Item{ID: "toothbrush", Label: "Electric Toothbrush", Category: model.CategoryRefillable})
	register(t, w, model.Item{ID: "trash_can_bathroom", Label: "Bathroom Trash Can", Category: model.CategoryGoodStuff})

	place(t, w, ledger.PlacementInput{ItemID: "toothbrush", Zone: "bathroom_left_side",
		SeenWith: []string{"trash_can_bathroom"}})

	fromA, err := e.RecentNeighbors(ctx, "toothbrush", -1)
	require.NoError(t, err)
	require.Len(t, fromA, 1)
	assert.Equal(t, "trash_can_bathroom", fromA[0].ItemID)
	assert.Equal(t, "Bathroom Trash Can", fromA[0].Label)

	fromX, err := e.RecentNeighbors(ctx, "trash_can_bathroom", -1)
	require.NoError(t, err)
	require.Len(t, fromX, 1)
	assert.Equal(t, "toothbrush", fromX[0].ItemID)
}

func TestZeroLimitReturnsNothing(t *testing.T) {
	e, w := setup(t)
	ctx := context.Background()
	register(t, w, model.Item{ID: "keys", Label: "House Keys", Category: model.CategoryDisposable})
	register(t, w, model.Item{ID: "wallet", Label: "Wallet", Category: model.CategoryGoodStuff})

	for _, ts := range []string{"2025-01-01T08:00:00Z", "2025-01-02T08:00:00Z", "2025-01-03T08:00:00Z"} {
		place(t, w, ledger.PlacementInput{ItemID: "keys", Zone: "hallway", Timestamp: ts, SeenWith: []string{"wallet"}})
	}

	history, err := e.CollectHistory(ctx, "keys", 0)
	require.NoError(t, err)
	assert.Empty(t, history)

	neighbors, err := e.RecentNeighbors(ctx, "keys", 0)
	require.NoError(t, err)
	assert.NotNil(t, neighbors)
	assert.Empty(t, neighbors)

	// Sanity check that there was something to limit.
	history, err = e.CollectHistory(ctx, "keys", 2)
	require.NoError(t, err)
	assert.Len(t, history, 2)
	neighbors, err = e.RecentNeighbors(ctx, "keys", -1)
	require.NoError(t, err)
	assert.Len(t, neighbors, 1)
}

func TestItemsInZone_LatestPlacementOverall(t *testing.T) {
	e, w := setup(t)
	ctx := context.Background()
	register(t, w, model.Item{ID: "left_sock", Label: "Left Sock", Category: model.CategoryGoodStuff})

	place(t, w, ledger.PlacementInput{ItemID: "left_sock", Zone: "bedroom_floor", Timestamp: "2025-01-01T00:00:00Z"})
	place(t, w, ledger.PlacementInput{ItemID: "left_sock", Zone: "laundry", Timestamp: "2025-01-02T00:00:00Z"})

	floor, err := e.ItemsInZone(ctx, "bedroom_floor")
	require.NoError(t, err)
	assert.Empty(t, floor)

	laundry, err := e.ItemsInZone(ctx, "laundry")
	require.NoError(t, err)
	require.Len(t, laundry, 1)
	assert.Equal(t, "left_sock", laundry[0].ItemID)
}

func TestAllStatuses(t *testing.T) {
	e, w := setup(t)
	ctx := context.Background()
	register(t, w, model.Item{ID: "b", Label: "Beta", Category: model.CategoryDisposable})
	register(t, w, model.Item{ID: "a", Label: "Alpha", Category: model.CategoryRefillable})

	statuses, err := e.AllStatuses(ctx)
	require.NoError(t, err)
	require.Len(t, statuses, 2)
	assert.Equal(t, "a", statuses[0].ItemID)
	assert.Equal(t, "b", statuses[1].ItemID)
	assert.NotNil(t, statuses[0].RefillStatus)
}

func TestListZones(t *testing.T) {
	e, w := setup(t)
	ctx := context.Background()

	_, err := w.RegisterZone(ctx, model.Zone{ID: "kitchen_table", Name: "Kitchen Table"})
	require.NoError(t, err)
	_, err = w.RegisterZone(ctx, model.Zone{ID: "bathroom_left_side", Name: "Bathroom Left Side", Description: "Near sink"})
	require.NoError(t, err)

	zones, err := e.ListZones(ctx)
	require.NoError(t, err)
	require.Len(t, zones, 2)
	assert.Equal(t, "bathroom_left_side", zones[0].ID)
}

func TestSightings_KeepsRepeatsAndUnregistered(t *testing.T) {
	e, w := setup(t)
	ctx := context.Background()

	place(t, w, ledger.PlacementInput{ItemID: "keys", Zone: "hallway", Timestamp: "2025-01-01T08:00:00Z",
		SeenWith: []string{"wallet", "ghost"}})
	place(t, w, ledger.PlacementInput{ItemID: "keys", Zone: "desk", Timestamp: "2025-01-02T08:00:00Z",
		SeenWith: []string{"wallet"}})

	edges, err := e.Sightings(ctx, "keys")
	require.NoError(t, err)
	require.Len(t, edges, 3)
	assert.Equal(t, "wallet", edges[0].ItemB)
	assert.Equal(t, "ghost", edges[1].ItemB)
	assert.Equal(t, "desk", edges[2].Zone)

	none, err := e.Sightings(ctx, "nobody")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestHealth(t *testing.T) {
	s, err := store.Open(filepath.Join(t.TempDir(), "health.db"))
	require.NoError(t, err)
	clock := testutil.NewFixedClock(now)
	e := New(s, WithClock(clock))
	w := ledger.NewWriter(s, ledger.WithClock(clock))

	place(t, w, ledger.PlacementInput{ItemID: "keys", Zone: "hallway"})

	health, err := e.Health(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Health{Status: "healthy", Placements: 1}, health)

	require.NoError(t, s.Close())
	_, err = e.Health(context.Background())
	require.Error(t, err)
	assert.True(t, model.IsStoreUnavailable(err))
}
