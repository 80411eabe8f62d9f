package domain

import "time"

type refundTier struct {
	minLead  time.Duration
	fraction float64
}

// refundTiers ordered from the longest lead time
var refundTiers = []refundTier{
	{minLead: 24 * time.Hour, fraction: 1.00},
	{minLead: 12 * time.Hour, fraction: 0.75},
	{minLead: 6 * time.Hour, fraction: 0.50},
	{minLead: 2 * time.Hour, fraction: 0.25},
}

// RefundFraction returns the refundable share of the total for a cancellation
// made lead before the start of the reservation
func RefundFraction(lead time.Duration) float64 {
	for _, tier := range refundTiers {
		if lead >= tier.minLead {
			return tier.fraction
		}
	}
	return 0
}
