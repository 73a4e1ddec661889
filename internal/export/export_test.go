package export

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/happyplaces/internal/analysis"
	"github.com/roach88/happyplaces/internal/ledger"
	"github.com/roach88/happyplaces/internal/model"
	"github.com/roach88/happyplaces/internal/projection"
	"github.com/roach88/happyplaces/internal/store"
	"github.com/roach88/happyplaces/internal/testutil"
)

var now = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func setupExporter(t *testing.T, opts ...Option) (*Exporter, *ledger.Writer) {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	clock := testutil.NewFixedClock(now)
	w := ledger.NewWriter(s, ledger.WithClock(clock))
	e := New(
		projection.New(s, projection.WithClock(clock)),
		analysis.New(s, analysis.WithClock(clock)),
		append([]Option{WithClock(clock)}, opts...)...,
	)
	return e, w
}

func seedSnapshot(t *testing.T, w *ledger.Writer) {
	t.Helper()
	ctx := context.Background()

	_, err := w.RegisterZone(ctx, model.Zone{ID: "kitchen_table", Name: "Kitchen Table"})
	require.NoError(t, err)

	_, err = w.RegisterItem(ctx, model.Item{
		ID:                    "wallet",
		Label:                 "Leather Wallet",
		Category:              model.CategoryGoodStuff,
		PurchaseDate:          "2020-11-30",
		ExpectedLifespanYears: model.Ptr(5.0),
		Metadata:              model.Object{"color": model.String("brown")},
	})
	require.NoError(t, err)
	_, err = w.RegisterItem(ctx, model.Item{
		ID:              "salt_shaker",
		Label:           "Salt Shaker",
		Category:        model.CategoryRefillable,
		CurrentQuantity: model.Ptr(int64(12)),
		RefillThreshold: model.Ptr(int64(15)),
		UsageRatePerDay: model.Ptr(0.5),
	})
	require.NoError(t, err)

	_, err = w.RecordPlacement(ctx, ledger.PlacementInput{
		ItemID:           "wallet",
		Zone:             "kitchen_table",
		DistributionType: "stack",
		Routine:          "coming home",
		Motive:           "convenience",
		SeenWith:         []string{"salt_shaker"},
		Timestamp:        "2025-05-01T08:00:00Z",
	})
	require.NoError(t, err)
	_, err = w.RecordPlacement(ctx, ledger.PlacementInput{
		ItemID:    "salt_shaker",
		Zone:      "kitchen_table",
		Timestamp: "2025-05-02T09:00:00Z",
	})
	require.NoError(t, err)
}

func TestExport_Golden(t *testing.T) {
	e, w := setupExporter(t, WithIDGenerator(testutil.NewFixedIDGenerator("export-0001")))
	seedSnapshot(t, w)

	doc, err := e.Build(context.Background())
	require.NoError(t, err)
	data, err := Encode(doc)
	require.NoError(t, err)

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "export_snapshot", data)
}

func TestExport_EmptyLedger(t *testing.T) {
	e, _ := setupExporter(t, WithIDGenerator(testutil.NewFixedIDGenerator("empty")))

	doc, err := e.Build(context.Background())
	require.NoError(t, err)

	data, err := Encode(doc)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, []any{}, decoded["items"])
	assert.Equal(t, []any{}, decoded["zones"])
	assert.Equal(t, "2025-06-01T12:00:00.000000Z", decoded["exported_at"])
}

func TestExport_DefaultIDIsUUIDv7(t *testing.T) {
	e, _ := setupExporter(t)

	doc, err := e.Build(context.Background())
	require.NoError(t, err)

	id, err := uuid.Parse(doc.ExportID)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), id.Version())
}

func TestExport_WriteFile(t *testing.T) {
	e, w := setupExporter(t, WithIDGenerator(testutil.NewFixedIDGenerator("export-0001")))
	seedSnapshot(t, w)

	path := filepath.Join(t.TempDir(), "happy_places_export.json")
	doc, err := e.WriteFile(context.Background(), path)
	require.NoError(t, err)
	assert.Len(t, doc.Items, 2)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	expected, err := os.ReadFile("testdata/golden/export_snapshot.golden")
	require.NoError(t, err)
	assert.Equal(t, string(expected), string(data))
}

func TestEncode_NoHTMLEscaping(t *testing.T) {
	data, err := Encode(Document{Items: []projection.ItemStatus{{ItemID: "a&b", Label: "<mug>"}}})
	require.NoError(t, err)
	assert.Contains(t, string(data), `"a&b"`)
	assert.Contains(t, string(data), `"<mug>"`)
}
