// Package analysis aggregates the full placement ledger into patterns and
// attention alerts. There is no time windowing: every count covers the
// entire history.
package analysis

import (
	"context"
	"slices"

	"github.com/roach88/happyplaces/internal/model"
	"github.com/roach88/happyplaces/internal/projection"
	"github.com/roach88/happyplaces/internal/store"
)

// Analyzer computes aggregate views over a store.
type Analyzer struct {
	store *store.Store
	clock model.Clock
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithClock sets the clock used for lifecycle checks.
func WithClock(c model.Clock) Option {
	return func(a *Analyzer) {
		a.clock = c
	}
}

// New creates an Analyzer over s.
func New(s *store.Store, opts ...Option) *Analyzer {
	a := &Analyzer{store: s, clock: model.SystemClock{}}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// DistributionPatterns is the distribution-type breakdown of every
// placement ever recorded.
type DistributionPatterns struct {
	OverallCounts map[model.DistributionType]int64 `json:"overall_counts"`
	ByZone        []model.ZoneDistribution         `json:"by_zone"`
}

// Total returns the sum of OverallCounts, which equals the placement count.
func (d DistributionPatterns) Total() int64 {
	var n int64
	for _, c := range d.OverallCounts {
		n += c
	}
	return n
}

// DistributionPatterns counts placements per distribution type and per
// (zone, distribution type).
func (a *Analyzer) DistributionPatterns(ctx context.Context) (DistributionPatterns, error) {
	overall, err := a.store.CountByDistribution(ctx)
	if err != nil {
		return DistributionPatterns{}, model.NewStoreError("distribution patterns", err)
	}
	byZone, err := a.store.CountByZoneDistribution(ctx)
	if err != nil {
		return DistributionPatterns{}, model.NewStoreError("distribution patterns", err)
	}
	return DistributionPatterns{OverallCounts: overall, ByZone: byZone}, nil
}

// RoutineInsight summarizes placements sharing a (routine, motive) pair.
type RoutineInsight struct {
	Routine   string   `json:"routine"`
	Motive    string   `json:"motive,omitempty"`
	Frequency int64    `json:"frequency"`
	Zones     []string `json:"zones"`
}

// RoutineInsights groups placements with a routine by (routine, motive).
// Zones are distinct, in first-observed order. Results are ordered by
// descending frequency; ties keep the order in which each pair first
// appears in the ledger.
func (a *Analyzer) RoutineInsights(ctx context.Context) ([]RoutineInsight, error) {
	obs, err := a.store.RoutineObservations(ctx)
	if err != nil {
		return nil, model.NewStoreError("routine insights", err)
	}

	type key struct{ routine, motive string }
	index := make(map[key]int)
	seen := make(map[key]map[string]bool)
	insights := []RoutineInsight{}

	for _, o := range obs {
		k := key{o.Routine, o.Motive}
		i, ok := index[k]
		if !ok {
			i = len(insights)
			index[k] = i
			seen[k] = make(map[string]bool)
			insights = append(insights, RoutineInsight{Routine: o.Routine, Motive: o.Motive, Zones: []string{}})
		}
		insights[i].Frequency++
		if !seen[k][o.Zone] {
			seen[k][o.Zone] = true
			insights[i].Zones = append(insights[i].Zones, o.Zone)
		}
	}

	slices.SortStableFunc(insights, func(x, y RoutineInsight) int {
		switch {
		case x.Frequency > y.Frequency:
			return -1
		case x.Frequency < y.Frequency:
			return 1
		}
		return 0
	})
	return insights, nil
}

// RefillAlert is a refillable item at or below its threshold.
type RefillAlert struct {
	ItemID          string `json:"item_id"`
	Label           string `json:"label"`
	CurrentQuantity int64  `json:"current_quantity"`
	Threshold       int64  `json:"threshold"`
}

// ReplacementAlert is a good_stuff item with under 20% of its life left.
type ReplacementAlert struct {
	ItemID         string  `json:"item_id"`
	Label          string  `json:"label"`
	RemainingYears float64 `json:"remaining_years"`
	HealthPercent  float64 `json:"health_percent"`
}

// Attention holds the two alert lists. They are drawn from disjoint
// categories.
type Attention struct {
	RefillNeeded    []RefillAlert      `json:"refill_needed"`
	ReplacementSoon []ReplacementAlert `json:"replacement_soon"`
}

// Empty reports whether no item needs attention.
func (at Attention) Empty() bool {
	return len(at.RefillNeeded) == 0 && len(at.ReplacementSoon) == 0
}

// ItemsNeedingAttention evaluates item records (not placement history).
//
// A refillable needs a refill when both quantity and threshold are recorded
// and quantity <= threshold. A good_stuff item is due for replacement when
// 0 < remaining < 0.2 x lifespan, compared unrounded.
func (a *Analyzer) ItemsNeedingAttention(ctx context.Context) (Attention, error) {
	at := Attention{RefillNeeded: []RefillAlert{}, ReplacementSoon: []ReplacementAlert{}}

	refillables, err := a.store.ListItemsByCategory(ctx, model.CategoryRefillable)
	if err != nil {
		return Attention{}, model.NewStoreError("items needing attention", err)
	}
	for _, item := range refillables {
		if item.CurrentQuantity == nil || item.RefillThreshold == nil {
			continue
		}
		if *item.CurrentQuantity <= *item.RefillThreshold {
			at.RefillNeeded = append(at.RefillNeeded, RefillAlert{
				ItemID:          item.ID,
				Label:           item.Label,
				CurrentQuantity: *item.CurrentQuantity,
				Threshold:       *item.RefillThreshold,
			})
		}
	}

	goods, err := a.store.ListItemsByCategory(ctx, model.CategoryGoodStuff)
	if err != nil {
		return Attention{}, model.NewStoreError("items needing attention", err)
	}
	now := a.clock.Now()
	for _, item := range goods {
		remaining, health, due := projection.ReplacementDue(item, now)
		if !due {
			continue
		}
		at.ReplacementSoon = append(at.ReplacementSoon, ReplacementAlert{
			ItemID:         item.ID,
			Label:          item.Label,
			RemainingYears: projection.Round1(remaining),
			HealthPercent:  projection.Round1(health),
		})
	}

	return at, nil
}
