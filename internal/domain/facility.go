package domain

import (
	"time"

	"github.com/m04kA/SMC-FacilityBooking/pkg/types"
)

// Facility represents a bookable venue
type Facility struct {
	ID               int64
	Name             string
	HourlyRate       types.Money
	Capacity         int
	IsClosedForEvent bool
	ClosureEndDate   *time.Time // nil = closed until further notice

	Rating         RatingSummary
	PricingOptions []PricingOption

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsClosedFor reports whether a window starting at start falls into an event closure
func (f *Facility) IsClosedFor(start time.Time) bool {
	if !f.IsClosedForEvent {
		return false
	}
	if f.ClosureEndDate == nil {
		return true
	}
	return start.Before(*f.ClosureEndDate)
}

// FindPricingOption returns the facility option with the given id
func (f *Facility) FindPricingOption(id int64) (*PricingOption, bool) {
	for i := range f.PricingOptions {
		if f.PricingOptions[i].ID == id {
			return &f.PricingOptions[i], true
		}
	}
	return nil, false
}

// PricingOption is an additive surcharge on top of the facility base rate
type PricingOption struct {
	ID           int64
	FacilityID   int64
	Name         string
	PricePerUnit *types.Money // flat, charged once
	PricePerHour *types.Money // charged per billed unit, wins over PricePerUnit
	SortOrder    int
}

// RatingSummary is the denormalized rating aggregate stored on the facility
type RatingSummary struct {
	AverageRating float64
	TotalRatings  int
	Breakdown     map[int]int // 1..5 -> count
}

// EmptyRatingSummary returns a summary with all buckets at zero
func EmptyRatingSummary() RatingSummary {
	breakdown := make(map[int]int, MaxRating)
	for v := MinRating; v <= MaxRating; v++ {
		breakdown[v] = 0
	}
	return RatingSummary{Breakdown: breakdown}
}
