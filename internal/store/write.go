package store

import (
	"context"
	"fmt"

	"github.com/roach88/happyplaces/internal/model"
)

// UpsertItem inserts an item or replaces every attribute of an existing one.
// No field of a previous registration survives except created_at, which is
// bookkeeping and keeps its first value.
//
// Callers validate category and lifecycle fields before calling.
func (s *Store) UpsertItem(ctx context.Context, item model.Item) error {
	metaJSON, err := marshalMetadata(item.Metadata)
	if err != nil {
		return fmt.Errorf("upsert item: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO items
		(item_id, label, category, purchase_date, expected_lifespan_years,
		 current_quantity, refill_threshold, usage_rate_per_day, metadata, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, COALESCE(?, CURRENT_TIMESTAMP))
		ON CONFLICT(item_id) DO UPDATE SET
			label = excluded.label,
			category = excluded.category,
			purchase_date = excluded.purchase_date,
			expected_lifespan_years = excluded.expected_lifespan_years,
			current_quantity = excluded.current_quantity,
			refill_threshold = excluded.refill_threshold,
			usage_rate_per_day = excluded.usage_rate_per_day,
			metadata = excluded.metadata
	`,
		item.ID,
		item.Label,
		string(item.Category),
		nullString(item.PurchaseDate),
		nullFloat(item.ExpectedLifespanYears),
		nullInt(item.CurrentQuantity),
		nullInt(item.RefillThreshold),
		nullFloat(item.UsageRatePerDay),
		metaJSON,
		nullString(item.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("upsert item: %w", err)
	}

	return nil
}

// AppendPlacement appends a placement and, for each identity in seenWith,
// a pair of co-presence rows (item→other and other→item) stamped with the
// placement's zone and timestamp. Everything commits in one transaction:
// a failure leaves neither the placement nor any edge behind.
//
// Returns the new placement_id.
func (s *Store) AppendPlacement(ctx context.Context, p model.Placement, seenWith []string) (int64, error) {
	metaJSON, err := marshalMetadata(p.Metadata)
	if err != nil {
		return 0, fmt.Errorf("append placement: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("append placement: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	result, err := tx.ExecContext(ctx, `
		INSERT INTO placements
		(item_id, zone, distribution_type, routine, motive, timestamp, metadata)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		p.ItemID,
		p.Zone,
		string(p.DistributionType),
		nullString(p.Routine),
		nullString(p.Motive),
		p.Timestamp,
		metaJSON,
	)
	if err != nil {
		return 0, fmt.Errorf("append placement: insert: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("append placement: last insert id: %w", err)
	}

	if len(seenWith) > 0 {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO co_presence (item_a, item_b, zone, timestamp)
			VALUES (?, ?, ?, ?)
		`)
		if err != nil {
			return 0, fmt.Errorf("append placement: prepare co-presence: %w", err)
		}
		defer stmt.Close()

		for _, other := range seenWith {
			if _, err := stmt.ExecContext(ctx, p.ItemID, other, p.Zone, p.Timestamp); err != nil {
				return 0, fmt.Errorf("append placement: co-presence %s→%s: %w", p.ItemID, other, err)
			}
			// Reverse row so "seen with X" is a single-direction lookup.
			if _, err := stmt.ExecContext(ctx, other, p.ItemID, p.Zone, p.Timestamp); err != nil {
				return 0, fmt.Errorf("append placement: co-presence %s→%s: %w", other, p.ItemID, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("append placement: commit: %w", err)
	}

	return id, nil
}

// UpsertZone inserts a zone or replaces its name and description.
func (s *Store) UpsertZone(ctx context.Context, z model.Zone) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO zones (zone_id, zone_name, description, created_at)
		VALUES (?, ?, ?, COALESCE(?, CURRENT_TIMESTAMP))
		ON CONFLICT(zone_id) DO UPDATE SET
			zone_name = excluded.zone_name,
			description = excluded.description
	`,
		z.ID,
		z.Name,
		z.Description,
		nullString(z.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("upsert zone: %w", err)
	}
	return nil
}
