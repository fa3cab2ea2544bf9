package product

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/shoplite/pricing-service/internal/model"
	"github.com/shoplite/pricing-service/internal/pricing"
	"github.com/shoplite/pricing-service/internal/product/dto"
)

type Repository interface {
	FindByID(ctx context.Context, id string) (*model.Product, error)
	FindByNameCategory(ctx context.Context, name, category string) (*model.Product, error)
	FindAll(ctx context.Context, filters *dto.ProductFilters) ([]model.Product, int, error)
	ListByInventoryLevel(ctx context.Context, level pricing.InventoryLevel) ([]model.Product, error)

	Create(ctx context.Context, p *model.Product) error
	Retire(ctx context.Context, id string) error
	UpdateCompetitorPrice(ctx context.Context, id string, price decimal.Decimal) error

	// Inventory ledger. Both are single conditional updates: Reserve fails
	// with InsufficientInventoryError when the capacity guard does not
	// hold, Release with ErrInvalidRelease when it would underflow.
	// Neither is safe to retry blindly; each call belongs to exactly one
	// order-line event.
	Reserve(ctx context.Context, id string, qty int64) error
	Release(ctx context.Context, id string, qty int64) error

	// Demand tracker.
	BumpDemand(ctx context.Context, id string, amount int64) error
	RollDemandWindows(ctx context.Context, policy pricing.DemandWindowPolicy) error

	// Pricing writes never touch the reservation counters.
	UpdateLevels(ctx context.Context, id string, inv pricing.InventoryLevel, dem pricing.DemandLevel) error
	UpdatePricing(ctx context.Context, id string, inv pricing.InventoryLevel, dem pricing.DemandLevel, price decimal.Decimal, expiry time.Time) error

	// Audit trails.
	LogMovement(ctx context.Context, m *model.InventoryMovement) error
	LogPrice(ctx context.Context, l *model.PriceLog) error
}
