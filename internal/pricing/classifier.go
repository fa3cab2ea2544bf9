package pricing

// ClassifyInventory buckets the reservation ratio into a level. A product
// with zero capacity is treated as maximally scarce (ratio 1), so retired or
// unstocked catalog rows never read as surplus.
func (p Policy) ClassifyInventory(reserved, capacity int64) InventoryLevel {
	ratio := 1.0
	if capacity > 0 {
		ratio = float64(reserved) / float64(capacity)
	}
	for _, t := range p.Thresholds {
		if ratio >= t.Min {
			return t.Level
		}
	}
	// Unreachable with a validated policy (last threshold has Min 0).
	return p.Thresholds[len(p.Thresholds)-1].Level
}

// ClassifyDemand compares the rolling window counters. A rising window is
// high demand, a falling one low; equality reports the configured tie level.
func (p Policy) ClassifyDemand(current, previous int64) DemandLevel {
	switch {
	case current > previous:
		return DemandHigh
	case current < previous:
		return DemandLow
	default:
		return p.DemandTie
	}
}
