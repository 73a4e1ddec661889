package model

import (
	"fmt"
	"strings"
)

// Category classifies how an item ages out of use.
type Category string

const (
	// CategoryGoodStuff is a durable good that wears out over years.
	CategoryGoodStuff Category = "good_stuff"

	// CategoryRefillable depletes and needs restocking.
	CategoryRefillable Category = "refillable"

	// CategoryDisposable is single-use and tracked only for placement.
	CategoryDisposable Category = "disposable"
)

// Categories lists every valid Category in declaration order.
var Categories = []Category{CategoryGoodStuff, CategoryRefillable, CategoryDisposable}

// Valid reports whether c is one of the enumerated categories.
func (c Category) Valid() bool {
	switch c {
	case CategoryGoodStuff, CategoryRefillable, CategoryDisposable:
		return true
	}
	return false
}

// ParseCategory converts s to a Category, rejecting unknown values.
func ParseCategory(s string) (Category, error) {
	c := Category(strings.TrimSpace(s))
	if !c.Valid() {
		return "", NewValidationError("category",
			fmt.Sprintf("invalid category %q: must be one of %s", s, joinEnum(Categories)))
	}
	return c, nil
}

// DistributionType describes how an item was left in its zone.
type DistributionType string

const (
	DistributionStack   DistributionType = "stack"
	DistributionSpread  DistributionType = "spread"
	DistributionLose    DistributionType = "lose"
	DistributionDiscard DistributionType = "discard"
	DistributionPlaced  DistributionType = "placed"
)

// DistributionTypes lists every valid DistributionType in declaration order.
var DistributionTypes = []DistributionType{
	DistributionStack,
	DistributionSpread,
	DistributionLose,
	DistributionDiscard,
	DistributionPlaced,
}

// Valid reports whether d is one of the enumerated distribution types.
func (d DistributionType) Valid() bool {
	switch d {
	case DistributionStack, DistributionSpread, DistributionLose, DistributionDiscard, DistributionPlaced:
		return true
	}
	return false
}

// ParseDistributionType converts s to a DistributionType.
// An empty string yields DistributionPlaced.
func ParseDistributionType(s string) (DistributionType, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return DistributionPlaced, nil
	}
	d := DistributionType(s)
	if !d.Valid() {
		return "", NewValidationError("distribution_type",
			fmt.Sprintf("invalid distribution type %q: must be one of %s", s, joinEnum(DistributionTypes)))
	}
	return d, nil
}

func joinEnum[T ~string](vals []T) string {
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = string(v)
	}
	return strings.Join(parts, ", ")
}

// Item is a registered physical object.
//
// Lifecycle fields are optional and only meaningful for some categories:
// PurchaseDate and ExpectedLifespanYears for good_stuff; CurrentQuantity,
// RefillThreshold and UsageRatePerDay for refillable.
type Item struct {
	ID                    string   `json:"item_id"`
	Label                 string   `json:"label"`
	Category              Category `json:"category"`
	PurchaseDate          string   `json:"purchase_date,omitempty"`
	ExpectedLifespanYears *float64 `json:"expected_lifespan_years,omitempty"`
	CurrentQuantity       *int64   `json:"current_quantity,omitempty"`
	RefillThreshold       *int64   `json:"refill_threshold,omitempty"`
	UsageRatePerDay       *float64 `json:"usage_rate_per_day,omitempty"`
	Metadata              Object   `json:"metadata"`
	CreatedAt             string   `json:"created_at,omitempty"`
}

// Placement is one immutable entry in the placement ledger.
// ID is assigned by the store on append.
type Placement struct {
	ID               int64            `json:"placement_id,omitempty"`
	ItemID           string           `json:"item_id,omitempty"`
	Zone             string           `json:"zone"`
	DistributionType DistributionType `json:"distribution_type"`
	Routine          string           `json:"routine,omitempty"`
	Motive           string           `json:"motive,omitempty"`
	Timestamp        string           `json:"timestamp"`
	Metadata         Object           `json:"metadata"`
}

// CoPresence records that ItemA was observed with ItemB.
// Every observation is stored in both directions.
type CoPresence struct {
	ID        int64  `json:"id"`
	ItemA     string `json:"item_a"`
	ItemB     string `json:"item_b"`
	Zone      string `json:"zone"`
	Timestamp string `json:"timestamp"`
}

// Zone is a descriptive location registry entry. Placements may name zones
// that were never registered.
type Zone struct {
	ID          string `json:"zone_id"`
	Name        string `json:"zone_name"`
	Description string `json:"description"`
	CreatedAt   string `json:"created_at,omitempty"`
}

// Ptr returns a pointer to v. Handy for the optional lifecycle fields.
func Ptr[T any](v T) *T {
	return &v
}
