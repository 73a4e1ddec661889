package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"iter"

	"github.com/roach88/happyplaces/internal/model"
)

const itemColumns = `
	item_id, COALESCE(label, ''), COALESCE(category, ''), COALESCE(purchase_date, ''),
	expected_lifespan_years, current_quantity, refill_threshold, usage_rate_per_day,
	COALESCE(metadata, '{}'), COALESCE(created_at, '')
`

const placementColumns = `
	placement_id, COALESCE(item_id, ''), COALESCE(zone, ''), COALESCE(distribution_type, ''),
	COALESCE(routine, ''), COALESCE(motive, ''), COALESCE(timestamp, ''), COALESCE(metadata, '{}')
`

// ReadItem retrieves a single item by identity.
// Returns ErrNotFound if no item is registered under id.
func (s *Store) ReadItem(ctx context.Context, id string) (model.Item, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+itemColumns+` FROM items WHERE item_id = ?`, id)

	item, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Item{}, fmt.Errorf("read item %q: %w", id, ErrNotFound)
	}
	if err != nil {
		return model.Item{}, fmt.Errorf("read item %q: %w", id, err)
	}
	return item, nil
}

// ListItems returns every registered item ordered by label, then identity.
// Returns an empty slice (not nil) when there are none.
func (s *Store) ListItems(ctx context.Context) ([]model.Item, error) {
	return s.queryItems(ctx, `SELECT `+itemColumns+` FROM items ORDER BY label, item_id`)
}

// ListItemsByCategory returns items of one category ordered by identity.
func (s *Store) ListItemsByCategory(ctx context.Context, category model.Category) ([]model.Item, error) {
	return s.queryItems(ctx,
		`SELECT `+itemColumns+` FROM items WHERE category = ? ORDER BY item_id`,
		string(category))
}

func (s *Store) queryItems(ctx context.Context, query string, args ...any) ([]model.Item, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query items: %w", err)
	}
	defer rows.Close()

	items := []model.Item{}
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate items: %w", err)
	}
	return items, nil
}

// LatestPlacement returns the most recent placement for an item.
// ok is false when the item has never been placed.
func (s *Store) LatestPlacement(ctx context.Context, itemID string) (p model.Placement, ok bool, err error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+placementColumns+`
		FROM placements
		WHERE item_id = ?
		ORDER BY timestamp DESC, placement_id DESC
		LIMIT 1
	`, itemID)

	p, err = scanPlacement(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Placement{}, false, nil
	}
	if err != nil {
		return model.Placement{}, false, fmt.Errorf("latest placement: %w", err)
	}
	return p, true, nil
}

// PlacementHistory yields at most limit placements for an item, newest
// first. The query runs when iteration starts; ranging again re-queries.
//
// The store holds a single connection, so the loop body must not call
// back into the store.
func (s *Store) PlacementHistory(ctx context.Context, itemID string, limit int) iter.Seq2[model.Placement, error] {
	return func(yield func(model.Placement, error) bool) {
		rows, err := s.db.QueryContext(ctx, `
			SELECT `+placementColumns+`
			FROM placements
			WHERE item_id = ?
			ORDER BY timestamp DESC, placement_id DESC
			LIMIT ?
		`, itemID, limit)
		if err != nil {
			yield(model.Placement{}, fmt.Errorf("query placement history: %w", err))
			return
		}
		defer rows.Close()

		for rows.Next() {
			p, err := scanPlacement(rows)
			if err != nil {
				yield(model.Placement{}, err)
				return
			}
			if !yield(p, nil) {
				return
			}
		}
		if err := rows.Err(); err != nil {
			yield(model.Placement{}, fmt.Errorf("iterate placement history: %w", err))
		}
	}
}

// CountPlacements returns the total number of placements in the ledger.
func (s *Store) CountPlacements(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM placements`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count placements: %w", err)
	}
	return n, nil
}

// ReadCoPresence returns every co-presence row whose item_a is itemID,
// in append order.
func (s *Store) ReadCoPresence(ctx context.Context, itemID string) ([]model.CoPresence, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, COALESCE(item_a, ''), COALESCE(item_b, ''), COALESCE(zone, ''), COALESCE(timestamp, '')
		FROM co_presence
		WHERE item_a = ?
		ORDER BY id ASC
	`, itemID)
	if err != nil {
		return nil, fmt.Errorf("query co-presence: %w", err)
	}
	defer rows.Close()

	edges := []model.CoPresence{}
	for rows.Next() {
		var e model.CoPresence
		if err := rows.Scan(&e.ID, &e.ItemA, &e.ItemB, &e.Zone, &e.Timestamp); err != nil {
			return nil, fmt.Errorf("scan co-presence: %w", err)
		}
		edges = append(edges, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate co-presence: %w", err)
	}
	return edges, nil
}

// RecentNeighbors returns distinct registered items seen with itemID,
// each at its latest sighting, newest first. Self-edges are skipped.
func (s *Store) RecentNeighbors(ctx context.Context, itemID string, limit int) ([]model.Neighbor, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT c.item_b, COALESCE(i.label, ''), COALESCE(c.zone, ''), COALESCE(c.timestamp, '')
		FROM co_presence c
		JOIN items i ON i.item_id = c.item_b
		WHERE c.item_a = ?
		  AND c.item_b <> c.item_a
		  AND c.id = (
			SELECT c2.id FROM co_presence c2
			WHERE c2.item_a = c.item_a AND c2.item_b = c.item_b
			ORDER BY c2.timestamp DESC, c2.id DESC
			LIMIT 1
		  )
		ORDER BY c.timestamp DESC, c.id DESC
		LIMIT ?
	`, itemID, limit)
	if err != nil {
		return nil, fmt.Errorf("query neighbors: %w", err)
	}
	defer rows.Close()

	neighbors := []model.Neighbor{}
	for rows.Next() {
		var n model.Neighbor
		if err := rows.Scan(&n.ItemID, &n.Label, &n.Zone, &n.Timestamp); err != nil {
			return nil, fmt.Errorf("scan neighbor: %w", err)
		}
		neighbors = append(neighbors, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate neighbors: %w", err)
	}
	return neighbors, nil
}

// ItemsInZone returns registered items whose latest placement overall is
// in zone. An item that has since moved elsewhere is excluded even if it
// was placed here before.
func (s *Store) ItemsInZone(ctx context.Context, zone string) ([]model.ZoneOccupant, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT i.item_id, COALESCE(i.label, ''), COALESCE(i.category, ''),
		       COALESCE(p.distribution_type, ''), COALESCE(p.timestamp, '')
		FROM items i
		JOIN placements p ON p.placement_id = (
			SELECT p2.placement_id FROM placements p2
			WHERE p2.item_id = i.item_id
			ORDER BY p2.timestamp DESC, p2.placement_id DESC
			LIMIT 1
		)
		WHERE p.zone = ?
		ORDER BY i.label, i.item_id
	`, zone)
	if err != nil {
		return nil, fmt.Errorf("query items in zone: %w", err)
	}
	defer rows.Close()

	occupants := []model.ZoneOccupant{}
	for rows.Next() {
		var o model.ZoneOccupant
		var category, dist string
		if err := rows.Scan(&o.ItemID, &o.Label, &category, &dist, &o.LastUpdated); err != nil {
			return nil, fmt.Errorf("scan zone occupant: %w", err)
		}
		o.Category = model.Category(category)
		o.DistributionType = model.DistributionType(dist)
		occupants = append(occupants, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate zone occupants: %w", err)
	}
	return occupants, nil
}

// ListZones returns every registered zone ordered by identity.
func (s *Store) ListZones(ctx context.Context) ([]model.Zone, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+zoneColumns+` FROM zones ORDER BY zone_id`)
	if err != nil {
		return nil, fmt.Errorf("query zones: %w", err)
	}
	defer rows.Close()

	zones := []model.Zone{}
	for rows.Next() {
		var z model.Zone
		if err := rows.Scan(&z.ID, &z.Name, &z.Description, &z.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan zone: %w", err)
		}
		zones = append(zones, z)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate zones: %w", err)
	}
	return zones, nil
}

// ReadZone returns one registered zone.
// Returns an error wrapping ErrNotFound when the zone is not registered.
func (s *Store) ReadZone(ctx context.Context, id string) (model.Zone, error) {
	var z model.Zone
	err := s.db.QueryRowContext(ctx, `SELECT `+zoneColumns+` FROM zones WHERE zone_id = ?`, id).
		Scan(&z.ID, &z.Name, &z.Description, &z.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Zone{}, fmt.Errorf("read zone %q: %w", id, ErrNotFound)
	}
	if err != nil {
		return model.Zone{}, fmt.Errorf("read zone %q: %w", id, err)
	}
	return z, nil
}

const zoneColumns = `zone_id, COALESCE(zone_name, ''), COALESCE(description, ''), COALESCE(created_at, '')`

// CountByDistribution counts every placement per distribution type.
func (s *Store) CountByDistribution(ctx context.Context) (map[model.DistributionType]int64, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT COALESCE(distribution_type, ''), COUNT(*)
		FROM placements
		GROUP BY distribution_type
	`)
	if err != nil {
		return nil, fmt.Errorf("count by distribution: %w", err)
	}
	defer rows.Close()

	counts := make(map[model.DistributionType]int64)
	for rows.Next() {
		var dist string
		var n int64
		if err := rows.Scan(&dist, &n); err != nil {
			return nil, fmt.Errorf("scan distribution count: %w", err)
		}
		counts[model.DistributionType(dist)] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate distribution counts: %w", err)
	}
	return counts, nil
}

// CountByZoneDistribution counts every placement per (zone, distribution
// type), ordered by zone then type.
func (s *Store) CountByZoneDistribution(ctx context.Context) ([]model.ZoneDistribution, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT COALESCE(zone, ''), COALESCE(distribution_type, ''), COUNT(*)
		FROM placements
		GROUP BY zone, distribution_type
		ORDER BY zone, distribution_type
	`)
	if err != nil {
		return nil, fmt.Errorf("count by zone distribution: %w", err)
	}
	defer rows.Close()

	counts := []model.ZoneDistribution{}
	for rows.Next() {
		var c model.ZoneDistribution
		var dist string
		if err := rows.Scan(&c.Zone, &dist, &c.Count); err != nil {
			return nil, fmt.Errorf("scan zone distribution: %w", err)
		}
		c.DistributionType = model.DistributionType(dist)
		counts = append(counts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate zone distributions: %w", err)
	}
	return counts, nil
}

// RoutineObservations returns (routine, motive, zone) for every placement
// that has a routine, in append order.
func (s *Store) RoutineObservations(ctx context.Context) ([]model.RoutineObservation, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT routine, COALESCE(motive, ''), COALESCE(zone, '')
		FROM placements
		WHERE routine IS NOT NULL AND routine <> ''
		ORDER BY placement_id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query routines: %w", err)
	}
	defer rows.Close()

	obs := []model.RoutineObservation{}
	for rows.Next() {
		var o model.RoutineObservation
		if err := rows.Scan(&o.Routine, &o.Motive, &o.Zone); err != nil {
			return nil, fmt.Errorf("scan routine: %w", err)
		}
		obs = append(obs, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate routines: %w", err)
	}
	return obs, nil
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner) (model.Item, error) {
	var item model.Item
	var category, metaJSON string
	var lifespan, usage sql.NullFloat64
	var quantity, threshold sql.NullInt64

	if err := row.Scan(
		&item.ID, &item.Label, &category, &item.PurchaseDate,
		&lifespan, &quantity, &threshold, &usage,
		&metaJSON, &item.CreatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Item{}, err
		}
		return model.Item{}, fmt.Errorf("scan item: %w", err)
	}

	meta, err := unmarshalMetadata(metaJSON)
	if err != nil {
		return model.Item{}, fmt.Errorf("item %q: %w", item.ID, err)
	}

	item.Category = model.Category(category)
	item.ExpectedLifespanYears = floatPtr(lifespan)
	item.CurrentQuantity = intPtr(quantity)
	item.RefillThreshold = intPtr(threshold)
	item.UsageRatePerDay = floatPtr(usage)
	item.Metadata = meta
	return item, nil
}

func scanPlacement(row rowScanner) (model.Placement, error) {
	var p model.Placement
	var dist, metaJSON string

	if err := row.Scan(
		&p.ID, &p.ItemID, &p.Zone, &dist,
		&p.Routine, &p.Motive, &p.Timestamp, &metaJSON,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Placement{}, err
		}
		return model.Placement{}, fmt.Errorf("scan placement: %w", err)
	}

	meta, err := unmarshalMetadata(metaJSON)
	if err != nil {
		return model.Placement{}, fmt.Errorf("placement %d: %w", p.ID, err)
	}

	p.DistributionType = model.DistributionType(dist)
	p.Metadata = meta
	return p, nil
}
