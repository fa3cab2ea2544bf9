package pricing

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func baseQuote() Quote {
	return Quote{
		DefaultPrice:   dec("100"),
		CurrentPrice:   dec("100"),
		PriceFloor:     dec("50"),
		InventoryLevel: InventoryMedium,
		DemandLevel:    DemandMedium,
	}
}

func TestCalculateAdditiveAdjustment(t *testing.T) {
	p := DefaultPolicy()
	now := time.Now()

	q := baseQuote()
	q.InventoryLevel = InventoryVeryLow // +10%
	q.DemandLevel = DemandHigh          // +5%

	res, err := p.Calculate(now, q)
	require.NoError(t, err)

	assert.True(t, res.Price.Equal(dec("115")), "got %s", res.Price)
	assert.True(t, res.Changed)
	assert.Equal(t, SourceAdjustment, res.Source)
	assert.Equal(t, now.Add(p.Cooldown), res.Expiry)
}

func TestCalculateSurplusDiscount(t *testing.T) {
	p := DefaultPolicy()

	q := baseQuote()
	q.PriceFloor = dec("60")
	q.InventoryLevel = InventoryVeryHigh // -30%

	res, err := p.Calculate(time.Now(), q)
	require.NoError(t, err)
	assert.True(t, res.Price.Equal(dec("70")), "got %s", res.Price)
}

func TestCalculateCompetitorClamp(t *testing.T) {
	p := DefaultPolicy()

	q := baseQuote()
	q.InventoryLevel = InventoryVeryLow
	q.DemandLevel = DemandHigh
	q.CompetitorPrice = dec("108")

	res, err := p.Calculate(time.Now(), q)
	require.NoError(t, err)

	assert.True(t, res.Price.Equal(dec("108")), "got %s", res.Price)
	assert.Equal(t, SourceCompetitor, res.Source)
}

func TestCalculateCompetitorAboveCandidateIgnored(t *testing.T) {
	p := DefaultPolicy()

	q := baseQuote()
	q.InventoryLevel = InventoryVeryLow
	q.DemandLevel = DemandHigh
	q.CompetitorPrice = dec("200")

	res, err := p.Calculate(time.Now(), q)
	require.NoError(t, err)
	assert.True(t, res.Price.Equal(dec("115")), "got %s", res.Price)
	assert.Equal(t, SourceAdjustment, res.Source)
}

func TestCalculateNonPositiveCompetitorIgnored(t *testing.T) {
	p := DefaultPolicy()

	for _, cp := range []decimal.Decimal{decimal.Zero, dec("-5")} {
		q := baseQuote()
		q.InventoryLevel = InventoryVeryLow
		q.CompetitorPrice = cp

		res, err := p.Calculate(time.Now(), q)
		require.NoError(t, err)
		assert.True(t, res.Price.Equal(dec("110")), "competitor %s: got %s", cp, res.Price)
	}
}

func TestCalculateCooldownGate(t *testing.T) {
	p := DefaultPolicy()
	now := time.Now()

	q := baseQuote()
	q.InventoryLevel = InventoryVeryLow
	q.Expiry = now.Add(10 * time.Minute)

	res, err := p.Calculate(now, q)
	require.NoError(t, err)

	assert.True(t, res.Price.Equal(q.CurrentPrice))
	assert.Equal(t, q.Expiry, res.Expiry)
	assert.False(t, res.Changed)

	// Repeated calls inside the window keep returning the same result.
	res2, err := p.Calculate(now.Add(5*time.Minute), q)
	require.NoError(t, err)
	assert.True(t, res2.Price.Equal(res.Price))
	assert.Equal(t, res.Expiry, res2.Expiry)
}

func TestCalculateRunsOnceExpiryPasses(t *testing.T) {
	p := DefaultPolicy()
	now := time.Now()

	q := baseQuote()
	q.InventoryLevel = InventoryVeryLow
	q.Expiry = now.Add(-time.Second)

	res, err := p.Calculate(now, q)
	require.NoError(t, err)
	assert.True(t, res.Price.Equal(dec("110")), "got %s", res.Price)
	assert.True(t, res.Changed)
}

func TestCalculateFloorHold(t *testing.T) {
	p := DefaultPolicy()
	now := time.Now()

	q := baseQuote()
	q.PriceFloor = dec("80")
	q.InventoryLevel = InventoryVeryHigh // candidate 70, below floor

	res, err := p.Calculate(now, q)
	require.NoError(t, err)

	assert.True(t, res.Price.Equal(dec("100")), "got %s", res.Price)
	assert.False(t, res.Changed)
	assert.Equal(t, SourceFloorHold, res.Source)
	// Cool-down still starts so the next attempt waits its turn.
	assert.Equal(t, now.Add(p.Cooldown), res.Expiry)
}

func TestCalculateSeedsFromDefault(t *testing.T) {
	p := DefaultPolicy()

	q := baseQuote()
	q.CurrentPrice = decimal.Zero

	res, err := p.Calculate(time.Now(), q)
	require.NoError(t, err)

	assert.True(t, res.Price.Equal(dec("100")))
	assert.True(t, res.Changed)
	assert.Equal(t, SourceSeed, res.Source)
}

func TestCalculateProductDurationOverridesPolicy(t *testing.T) {
	p := DefaultPolicy()
	now := time.Now()

	q := baseQuote()
	q.Duration = 2 * time.Hour

	res, err := p.Calculate(now, q)
	require.NoError(t, err)
	assert.Equal(t, now.Add(2*time.Hour), res.Expiry)
}

func TestCalculateMissingDefaultPrice(t *testing.T) {
	p := DefaultPolicy()

	q := baseQuote()
	q.DefaultPrice = decimal.Zero

	_, err := p.Calculate(time.Now(), q)
	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
}

func TestCalculateInvalidLevels(t *testing.T) {
	p := DefaultPolicy()

	q := baseQuote()
	q.InventoryLevel = "plenty"
	_, err := p.Calculate(time.Now(), q)
	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)

	q = baseQuote()
	q.DemandLevel = "rabid"
	_, err = p.Calculate(time.Now(), q)
	require.ErrorAs(t, err, &cfgErr)
}

func TestCalculateMaxComponentStrategy(t *testing.T) {
	p := DefaultPolicy()
	p.Strategy = StrategyMaxComponent

	// Surplus discount would lower the price, but the demand candidate and
	// the competitor are both on the table; the highest wins.
	q := baseQuote()
	q.InventoryLevel = InventoryVeryHigh // candidate 70
	q.DemandLevel = DemandHigh           // candidate 105
	q.CompetitorPrice = dec("120")       // candidate 120

	res, err := p.Calculate(time.Now(), q)
	require.NoError(t, err)
	assert.True(t, res.Price.Equal(dec("120")), "got %s", res.Price)
}

func TestCalculateMaxComponentNeverBelowDefault(t *testing.T) {
	p := DefaultPolicy()
	p.Strategy = StrategyMaxComponent

	q := baseQuote()
	q.InventoryLevel = InventoryVeryHigh
	q.DemandLevel = DemandLow

	res, err := p.Calculate(time.Now(), q)
	require.NoError(t, err)
	assert.True(t, res.Price.Equal(dec("100")), "got %s", res.Price)
}

// For any level combination, a recalculated price never lands below the
// floor as long as the floor itself sits at or under the default price.
func TestCalculateNeverBelowFloor(t *testing.T) {
	p := DefaultPolicy()
	rapid.Check(t, func(t *rapid.T) {
		defaultPrice := decimal.NewFromInt(rapid.Int64Range(1, 10_000).Draw(t, "default"))
		floor := decimal.NewFromInt(rapid.Int64Range(0, 10_000).Draw(t, "floor"))
		if floor.GreaterThan(defaultPrice) {
			floor = defaultPrice
		}
		levels := []InventoryLevel{InventoryVeryLow, InventoryLow, InventoryMedium, InventoryHigh, InventoryVeryHigh}
		demands := []DemandLevel{DemandHigh, DemandMedium, DemandLow}

		q := Quote{
			DefaultPrice:   defaultPrice,
			PriceFloor:     floor,
			InventoryLevel: levels[rapid.IntRange(0, len(levels)-1).Draw(t, "inv")],
			DemandLevel:    demands[rapid.IntRange(0, len(demands)-1).Draw(t, "dem")],
		}

		res, err := p.Calculate(time.Now(), q)
		if err != nil {
			t.Fatalf("calculate: %v", err)
		}
		if res.Price.LessThan(floor) {
			t.Fatalf("price %s below floor %s (levels %s/%s)",
				res.Price, floor, q.InventoryLevel, q.DemandLevel)
		}
	})
}

func TestPolicyValidate(t *testing.T) {
	require.NoError(t, DefaultPolicy().Validate())

	tests := []struct {
		name   string
		mutate func(*Policy)
	}{
		{"unknown strategy", func(p *Policy) { p.Strategy = "chaotic" }},
		{"unknown window", func(p *Policy) { p.Window = "sliding" }},
		{"unknown tie level", func(p *Policy) { p.DemandTie = "shrug" }},
		{"missing inventory rate", func(p *Policy) { delete(p.InventoryRates, InventoryLow) }},
		{"missing demand rate", func(p *Policy) { delete(p.DemandRates, DemandHigh) }},
		{"empty thresholds", func(p *Policy) { p.Thresholds = nil }},
		{"ascending thresholds", func(p *Policy) {
			p.Thresholds[0], p.Thresholds[1] = p.Thresholds[1], p.Thresholds[0]
		}},
		{"last threshold above zero", func(p *Policy) {
			p.Thresholds[len(p.Thresholds)-1].Min = 0.1
		}},
		{"zero cooldown", func(p *Policy) { p.Cooldown = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := DefaultPolicy()
			tt.mutate(&p)
			assert.Error(t, p.Validate())
		})
	}
}
