package dto

import "github.com/shopspring/decimal"

type CreateProductInput struct {
	Name           string          `json:"name"`
	Category       string          `json:"category"`
	DefaultPrice   decimal.Decimal `json:"default_price"`
	TotalInventory int64           `json:"total_inventory"`
	// PriceFloor is optional; zero derives it from the default price and
	// the configured floor ratio.
	PriceFloor decimal.Decimal `json:"price_floor"`
	// DynamicPriceDuration is the per-product cool-down in seconds;
	// 0 uses the policy default.
	DynamicPriceDuration int64 `json:"dynamic_price_duration"`
}
