package pricing

import (
	"time"

	"github.com/shopspring/decimal"
)

// Quote is everything the calculator needs to reprice one product. It is a
// plain value so the calculator stays free of I/O.
type Quote struct {
	DefaultPrice decimal.Decimal
	// CurrentPrice is the live dynamic price; zero means the product has
	// never been priced and the default seeds it.
	CurrentPrice decimal.Decimal
	// CompetitorPrice at or below zero means no usable reference price.
	CompetitorPrice decimal.Decimal
	PriceFloor      decimal.Decimal

	InventoryLevel InventoryLevel
	DemandLevel    DemandLevel

	// Expiry is the end of the current cool-down; zero means no cool-down
	// is active. Duration is the product's dynamic_price_duration.
	Expiry   time.Time
	Duration time.Duration
}

// Result carries the recomputed price and the next cool-down boundary.
type Result struct {
	Price  decimal.Decimal
	Expiry time.Time
	// Changed reports whether Price differs from the quote's effective
	// price. When false the caller can skip the price log.
	Changed bool
	// Source tags what drove the change, for the price log.
	Source string
}

const (
	SourceSeed       = "initial"
	SourceAdjustment = "inventory/demand"
	SourceCompetitor = "competitor clamp"
	SourceFloorHold  = "floor hold"
)

// Calculate recomputes a product's sale price. It never runs while the
// cool-down is active: the unchanged price and expiry come back as-is, which
// is what makes duplicate recalculation deliveries harmless.
func (p Policy) Calculate(now time.Time, q Quote) (Result, error) {
	if !q.DefaultPrice.IsPositive() {
		return Result{}, &ConfigError{Reason: "product has no default price"}
	}
	if !q.InventoryLevel.Valid() {
		return Result{}, &ConfigError{Reason: "invalid inventory level"}
	}
	if !q.DemandLevel.Valid() {
		return Result{}, &ConfigError{Reason: "invalid demand level"}
	}

	prev := q.CurrentPrice
	if prev.IsZero() {
		prev = q.DefaultPrice
	}

	if !q.Expiry.IsZero() && !now.After(q.Expiry) {
		return Result{Price: prev, Expiry: q.Expiry, Changed: false}, nil
	}

	duration := q.Duration
	if duration <= 0 {
		duration = p.Cooldown
	}

	candidate, source, err := p.candidate(q)
	if err != nil {
		return Result{}, err
	}

	// The clamp only applies to the additive strategy; max_component
	// already treats the competitor price as a candidate, not a ceiling.
	if p.Strategy == StrategyAdditive && q.CompetitorPrice.IsPositive() && candidate.GreaterThan(q.CompetitorPrice) {
		candidate = q.CompetitorPrice
		source = SourceCompetitor
	}

	if candidate.LessThan(q.PriceFloor) {
		// The floor protects margin: drop the adjustment, keep the price.
		candidate = prev
		source = SourceFloorHold
	}

	if q.CurrentPrice.IsZero() && candidate.Equal(q.DefaultPrice) {
		source = SourceSeed
	}

	return Result{
		Price:   candidate,
		Expiry:  now.Add(duration),
		Changed: !candidate.Equal(q.CurrentPrice),
		Source:  source,
	}, nil
}

func (p Policy) candidate(q Quote) (decimal.Decimal, string, error) {
	invRate, ok := p.InventoryRates[q.InventoryLevel]
	if !ok {
		return decimal.Zero, "", &ConfigError{Reason: "inventory rate table is missing level " + string(q.InventoryLevel)}
	}
	demRate, ok := p.DemandRates[q.DemandLevel]
	if !ok {
		return decimal.Zero, "", &ConfigError{Reason: "demand rate table is missing level " + string(q.DemandLevel)}
	}

	invFactor := q.DefaultPrice.Mul(decimal.NewFromFloat(invRate))
	demFactor := q.DefaultPrice.Mul(decimal.NewFromFloat(demRate))

	switch p.Strategy {
	case StrategyMaxComponent:
		// Legacy behavior: each signal prices the product on its own and
		// the highest candidate wins, competitor included.
		best := q.DefaultPrice
		for _, c := range []decimal.Decimal{
			q.DefaultPrice.Add(invFactor),
			q.DefaultPrice.Add(demFactor),
			q.CompetitorPrice,
		} {
			if c.GreaterThan(best) {
				best = c
			}
		}
		return best, SourceAdjustment, nil
	default:
		return q.DefaultPrice.Add(invFactor).Add(demFactor), SourceAdjustment, nil
	}
}
