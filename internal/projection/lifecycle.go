package projection

import (
	"math"
	"time"

	"github.com/roach88/happyplaces/internal/model"
)

const daysPerYear = 365.25

// Lifecycle describes wear-out of a good_stuff item. Values are rounded to
// one decimal place.
type Lifecycle struct {
	PurchaseDate          string  `json:"purchase_date"`
	AgeYears              float64 `json:"age_years"`
	ExpectedLifespanYears float64 `json:"expected_lifespan_years"`
	RemainingYears        float64 `json:"remaining_years"`
	HealthPercent         float64 `json:"health_percent"`
}

// RefillStatus describes depletion of a refillable item.
// DaysRemaining is nil when the usage rate is unknown or zero.
type RefillStatus struct {
	CurrentQuantity int64    `json:"current_quantity"`
	RefillThreshold int64    `json:"refill_threshold"`
	NeedsRefill     bool     `json:"needs_refill"`
	DaysRemaining   *float64 `json:"days_remaining"`
}

// ageYears returns whole elapsed days between purchase and now, in years.
func ageYears(purchase, now time.Time) float64 {
	days := math.Floor(now.Sub(purchase).Hours() / 24)
	return days / daysPerYear
}

// remainingLife returns unclamped remaining years for an item, and false
// when the item has no lifecycle (wrong category, no purchase date, or a
// non-positive lifespan).
func remainingLife(item model.Item, now time.Time) (remaining, age float64, ok bool) {
	if item.Category != model.CategoryGoodStuff || item.PurchaseDate == "" ||
		item.ExpectedLifespanYears == nil || *item.ExpectedLifespanYears <= 0 {
		return 0, 0, false
	}
	purchase, err := model.ParsePurchaseDate(item.PurchaseDate)
	if err != nil {
		return 0, 0, false
	}
	age = ageYears(purchase, now)
	return *item.ExpectedLifespanYears - age, age, true
}

// ComputeLifecycle returns the lifecycle view for item at now, or nil when
// it has none.
func ComputeLifecycle(item model.Item, now time.Time) *Lifecycle {
	remaining, age, ok := remainingLife(item, now)
	if !ok {
		return nil
	}
	lifespan := *item.ExpectedLifespanYears
	remaining = math.Max(0, remaining)
	return &Lifecycle{
		PurchaseDate:          item.PurchaseDate,
		AgeYears:              Round1(age),
		ExpectedLifespanYears: lifespan,
		RemainingYears:        Round1(remaining),
		HealthPercent:         Round1(remaining / lifespan * 100),
	}
}

// ReplacementDue reports whether item has strictly positive remaining life
// below 20% of its expected lifespan. It also returns the unclamped
// remaining years and health percent.
func ReplacementDue(item model.Item, now time.Time) (remaining, health float64, due bool) {
	remaining, _, ok := remainingLife(item, now)
	if !ok {
		return 0, 0, false
	}
	lifespan := *item.ExpectedLifespanYears
	health = remaining / lifespan * 100
	return remaining, health, remaining > 0 && remaining < 0.2*lifespan
}

// ComputeRefillStatus returns the refill view for a refillable item, or nil
// for other categories. Absent quantity or threshold count as zero.
func ComputeRefillStatus(item model.Item) *RefillStatus {
	if item.Category != model.CategoryRefillable {
		return nil
	}
	var qty, threshold int64
	if item.CurrentQuantity != nil {
		qty = *item.CurrentQuantity
	}
	if item.RefillThreshold != nil {
		threshold = *item.RefillThreshold
	}

	status := &RefillStatus{
		CurrentQuantity: qty,
		RefillThreshold: threshold,
		NeedsRefill:     qty <= threshold,
	}
	if item.UsageRatePerDay != nil && *item.UsageRatePerDay > 0 {
		days := Round1(float64(qty) / *item.UsageRatePerDay)
		status.DaysRemaining = &days
	}
	return status
}

// Round1 rounds x to one decimal place, halves away from zero.
func Round1(x float64) float64 {
	return math.Round(x*10) / 10
}
