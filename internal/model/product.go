package model

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/shoplite/pricing-service/internal/pricing"
)

// Product is the catalog entity. The reservation and demand counters are the
// only shared mutable state in the system; everything derived from them
// (levels, dynamic price) is eventually consistent and may lag one
// recalculation cycle behind.
type Product struct {
	BaseModel
	Name     string `db:"name" json:"name"`
	Category string `db:"category" json:"category"`

	DefaultPrice decimal.Decimal `db:"default_price" json:"default_price"`
	// CompetitorPrice is nil until the price feed observes a match.
	CompetitorPrice *decimal.Decimal `db:"competitor_price" json:"competitor_price"`
	// DynamicPrice is nil until the first recalculation seeds it.
	DynamicPrice *decimal.Decimal `db:"dynamic_price" json:"dynamic_price"`
	PriceFloor   decimal.Decimal  `db:"price_floor" json:"price_floor"`

	TotalInventory int64 `db:"total_inventory" json:"total_inventory"`
	TotalReserved  int64 `db:"total_reserved" json:"total_reserved"`

	CurrentDemandCount  int64 `db:"current_demand_count" json:"current_demand_count"`
	PreviousDemandCount int64 `db:"previous_demand_count" json:"previous_demand_count"`

	InventoryLevel pricing.InventoryLevel `db:"inventory_level" json:"inventory_level"`
	DemandLevel    pricing.DemandLevel    `db:"demand_level" json:"demand_level"`

	DynamicPriceExpiry *time.Time `db:"dynamic_price_expiry" json:"dynamic_price_expiry"`
	// DynamicPriceDuration is the cool-down length in seconds; 0 falls back
	// to the policy default.
	DynamicPriceDuration int64 `db:"dynamic_price_duration" json:"dynamic_price_duration"`

	// IsActive is the soft-retire flag. Retired products stay resolvable
	// for historical orders but take no new reservations.
	IsActive bool `db:"is_active" json:"is_active"`
}

// SalePrice is the price a line item freezes at reservation time: the
// dynamic price when one exists, the default price before the first
// recalculation.
func (p *Product) SalePrice() decimal.Decimal {
	if p.DynamicPrice != nil {
		return *p.DynamicPrice
	}
	return p.DefaultPrice
}

// Available reports whether qty more units fit under capacity. This is the
// cart-side convenience read; the authoritative check is the ledger's
// conditional update.
func (p *Product) Available(qty int64) bool {
	if qty <= 0 {
		return false
	}
	return p.TotalReserved+qty <= p.TotalInventory
}

func (p *Product) Cooldown(fallback time.Duration) time.Duration {
	if p.DynamicPriceDuration > 0 {
		return time.Duration(p.DynamicPriceDuration) * time.Second
	}
	return fallback
}

// PriceLog is an append-only record of every dynamic price change.
type PriceLog struct {
	ID        string          `db:"id" json:"id"`
	ProductID string          `db:"product_id" json:"product_id"`
	Price     decimal.Decimal `db:"price" json:"price"`
	Source    string          `db:"source" json:"source"`
	CreatedAt time.Time       `db:"created_at" json:"created_at"`
}

// InventoryMovement is the audit trail for reservation counter changes. Each
// row ties one reserve or release to the order that caused it.
type InventoryMovement struct {
	ID           string    `db:"id" json:"id"`
	ProductID    string    `db:"product_id" json:"product_id"`
	OrderID      string    `db:"order_id" json:"order_id"`
	MovementType string    `db:"movement_type" json:"movement_type"` // 'reserve', 'release'
	Change       int64     `db:"change" json:"change"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

const (
	MovementReserve = "reserve"
	MovementRelease = "release"
)
