package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/roach88/happyplaces/internal/model"
)

// createTestStore creates a new temp-file store for testing.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestItem creates a disposable item with the minimal fields.
func createTestItem(id, label string) model.Item {
	return model.Item{
		ID:       id,
		Label:    label,
		Category: model.CategoryDisposable,
		Metadata: model.Object{},
	}
}

// createTestPlacement creates a placement at the given timestamp.
func createTestPlacement(itemID, zone, ts string) model.Placement {
	return model.Placement{
		ItemID:           itemID,
		Zone:             zone,
		DistributionType: model.DistributionPlaced,
		Timestamp:        ts,
		Metadata:         model.Object{},
	}
}

func mustUpsertItem(t *testing.T, s *Store, item model.Item) {
	t.Helper()
	if err := s.UpsertItem(context.Background(), item); err != nil {
		t.Fatalf("UpsertItem(%q) failed: %v", item.ID, err)
	}
}

func mustAppend(t *testing.T, s *Store, p model.Placement, seenWith ...string) int64 {
	t.Helper()
	id, err := s.AppendPlacement(context.Background(), p, seenWith)
	if err != nil {
		t.Fatalf("AppendPlacement(%q) failed: %v", p.ItemID, err)
	}
	return id
}
