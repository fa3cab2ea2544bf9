package pricing

// InventoryLevel describes how depleted a product's stock is.
// VeryLow means the stock is nearly gone (reservation ratio close to 1),
// VeryHigh means the warehouse is mostly untouched.
type InventoryLevel string

const (
	InventoryVeryLow  InventoryLevel = "very_low"
	InventoryLow      InventoryLevel = "low"
	InventoryMedium   InventoryLevel = "medium"
	InventoryHigh     InventoryLevel = "high"
	InventoryVeryHigh InventoryLevel = "very_high"
)

func (l InventoryLevel) Valid() bool {
	switch l {
	case InventoryVeryLow, InventoryLow, InventoryMedium, InventoryHigh, InventoryVeryHigh:
		return true
	}
	return false
}

// DemandLevel describes the trend of the rolling demand window.
type DemandLevel string

const (
	DemandHigh   DemandLevel = "high"
	DemandMedium DemandLevel = "medium"
	DemandLow    DemandLevel = "low"
)

func (l DemandLevel) Valid() bool {
	switch l {
	case DemandHigh, DemandMedium, DemandLow:
		return true
	}
	return false
}
