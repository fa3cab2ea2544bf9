package pricing

import (
	"fmt"
	"time"
)

// Strategy selects how the calculator combines pricing signals.
type Strategy string

const (
	// StrategyAdditive adds signed inventory/demand factors to the default
	// price, then clamps against the competitor price and the floor.
	StrategyAdditive Strategy = "additive"
	// StrategyMaxComponent takes the maximum of the per-signal candidate
	// prices, the default price and the competitor price.
	StrategyMaxComponent Strategy = "max_component"
)

// DemandWindowPolicy selects what happens to the counters when the demand
// window rolls over.
type DemandWindowPolicy string

const (
	// WindowRatchet keeps previous_demand_count as a high-water mark:
	// previous = max(current, previous), current untouched.
	WindowRatchet DemandWindowPolicy = "ratchet"
	// WindowDecay promotes the current count to the baseline and resets
	// current to zero.
	WindowDecay DemandWindowPolicy = "decay"
)

// ConfigError marks a product or policy that cannot be priced. The repricer
// logs it and skips the product instead of crashing the worker.
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string {
	return "pricing config error: " + e.Reason
}

// InventoryThreshold maps a minimum reservation ratio to a level. Thresholds
// form half-open intervals [Min, nextMin); the highest matching bucket wins.
type InventoryThreshold struct {
	Level InventoryLevel
	Min   float64
}

// Policy is the full pricing configuration for a product (or the global
// default). Rate tables map a level to a signed fraction of the default
// price: scarcity and demand push the price up, surplus pushes it down.
type Policy struct {
	Strategy       Strategy
	InventoryRates map[InventoryLevel]float64
	DemandRates    map[DemandLevel]float64
	Thresholds     []InventoryThreshold

	// DemandTie is the level reported when current == previous.
	DemandTie DemandLevel

	Window DemandWindowPolicy

	// Cooldown is the default dynamic_price_duration for products that do
	// not carry their own.
	Cooldown time.Duration
}

// DefaultPolicy returns the policy the service ships with.
func DefaultPolicy() Policy {
	return Policy{
		Strategy: StrategyAdditive,
		InventoryRates: map[InventoryLevel]float64{
			InventoryVeryLow:  0.10,
			InventoryLow:      0.05,
			InventoryMedium:   0,
			InventoryHigh:     -0.15,
			InventoryVeryHigh: -0.30,
		},
		DemandRates: map[DemandLevel]float64{
			DemandHigh:   0.05,
			DemandMedium: 0,
			DemandLow:    0,
		},
		Thresholds: []InventoryThreshold{
			{Level: InventoryVeryLow, Min: 0.95},
			{Level: InventoryLow, Min: 0.80},
			{Level: InventoryMedium, Min: 0.60},
			{Level: InventoryHigh, Min: 0.40},
			{Level: InventoryVeryHigh, Min: 0},
		},
		DemandTie: DemandMedium,
		Window:    WindowRatchet,
		Cooldown:  30 * time.Minute,
	}
}

// Validate rejects malformed rate and threshold tables up front so the
// calculator never has to guess at recalculation time.
func (p Policy) Validate() error {
	switch p.Strategy {
	case StrategyAdditive, StrategyMaxComponent:
	default:
		return &ConfigError{Reason: fmt.Sprintf("unknown strategy %q", p.Strategy)}
	}
	switch p.Window {
	case WindowRatchet, WindowDecay:
	default:
		return &ConfigError{Reason: fmt.Sprintf("unknown demand window policy %q", p.Window)}
	}
	if !p.DemandTie.Valid() {
		return &ConfigError{Reason: fmt.Sprintf("unknown demand tie level %q", p.DemandTie)}
	}

	for _, lvl := range []InventoryLevel{InventoryVeryLow, InventoryLow, InventoryMedium, InventoryHigh, InventoryVeryHigh} {
		if _, ok := p.InventoryRates[lvl]; !ok {
			return &ConfigError{Reason: fmt.Sprintf("inventory rate table is missing level %q", lvl)}
		}
	}
	for _, lvl := range []DemandLevel{DemandHigh, DemandMedium, DemandLow} {
		if _, ok := p.DemandRates[lvl]; !ok {
			return &ConfigError{Reason: fmt.Sprintf("demand rate table is missing level %q", lvl)}
		}
	}

	if len(p.Thresholds) == 0 {
		return &ConfigError{Reason: "inventory thresholds are empty"}
	}
	prev := 1.1
	for _, t := range p.Thresholds {
		if !t.Level.Valid() {
			return &ConfigError{Reason: fmt.Sprintf("threshold references unknown level %q", t.Level)}
		}
		if t.Min < 0 || t.Min > 1 {
			return &ConfigError{Reason: fmt.Sprintf("threshold %q out of range: %v", t.Level, t.Min)}
		}
		if t.Min >= prev {
			return &ConfigError{Reason: "thresholds must be strictly descending"}
		}
		prev = t.Min
	}
	if p.Thresholds[len(p.Thresholds)-1].Min != 0 {
		return &ConfigError{Reason: "last threshold must cover ratio 0"}
	}
	if p.Cooldown <= 0 {
		return &ConfigError{Reason: "cooldown must be positive"}
	}
	return nil
}
