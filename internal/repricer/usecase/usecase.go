package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/shoplite/pricing-service/internal/model"
	"github.com/shoplite/pricing-service/internal/pkg/logger"
	"github.com/shoplite/pricing-service/internal/pricing"
	"github.com/shoplite/pricing-service/internal/product"
	"github.com/shoplite/pricing-service/internal/repricer"
)

type repricerUseCase struct {
	repo   product.Repository
	locker repricer.Locker
	policy pricing.Policy
	logger logger.Logger
	now    func() time.Time
}

// NewRepricerUseCase builds the recalculation engine. locker may be nil
// (single-worker deployments and tests); the cool-down gate alone already
// makes duplicate deliveries harmless.
func NewRepricerUseCase(repo product.Repository, locker repricer.Locker, policy pricing.Policy, log logger.Logger) repricer.UseCase {
	return &repricerUseCase{
		repo:   repo,
		locker: locker,
		policy: policy,
		logger: log,
		now:    time.Now,
	}
}

func (uc *repricerUseCase) Recalculate(ctx context.Context, productID string) error {
	if uc.locker != nil {
		lockKey := "lock:reprice:" + productID
		lockValue := uuid.New().String()
		ok, err := uc.locker.AcquireLock(ctx, lockKey, lockValue, 10*time.Second)
		if err != nil {
			uc.logger.Error("failed to acquire reprice lock", zap.Error(err))
		}
		if err == nil && !ok {
			// Another worker holds this product; its run will read
			// counters at least as fresh as ours.
			return nil
		}
		if ok {
			defer uc.locker.ReleaseLock(ctx, lockKey, lockValue)
		}
	}

	p, err := uc.repo.FindByID(ctx, productID)
	if err != nil {
		return err
	}
	if p == nil {
		return model.ErrProductNotFound
	}

	// Counters are read without locking: a stale read just means the next
	// recalculation corrects the price. Reservation counts are never
	// written from here.
	inv := uc.policy.ClassifyInventory(p.TotalReserved, p.TotalInventory)
	dem := uc.policy.ClassifyDemand(p.CurrentDemandCount, p.PreviousDemandCount)

	now := uc.now().UTC()
	if p.DynamicPriceExpiry != nil && !now.After(*p.DynamicPriceExpiry) {
		// Cool-down active: refresh the derived levels so they cannot
		// drift from the counters, leave price and expiry untouched.
		return uc.repo.UpdateLevels(ctx, p.ID, inv, dem)
	}

	quote := pricing.Quote{
		DefaultPrice:    p.DefaultPrice,
		CurrentPrice:    derefOrZero(p.DynamicPrice),
		CompetitorPrice: derefOrZero(p.CompetitorPrice),
		PriceFloor:      p.PriceFloor,
		InventoryLevel:  inv,
		DemandLevel:     dem,
		Duration:        p.Cooldown(uc.policy.Cooldown),
	}

	res, err := uc.policy.Calculate(now, quote)
	if err != nil {
		return fmt.Errorf("reprice product %s: %w", p.ID, err)
	}

	if err := uc.repo.UpdatePricing(ctx, p.ID, inv, dem, res.Price, res.Expiry); err != nil {
		return err
	}

	if res.Changed {
		log := &model.PriceLog{
			ID:        uuid.New().String(),
			ProductID: p.ID,
			Price:     res.Price,
			Source:    res.Source,
			CreatedAt: now,
		}
		if err := uc.repo.LogPrice(ctx, log); err != nil {
			uc.logger.Error("failed to append price log",
				zap.String("product_id", p.ID), zap.Error(err))
		}
	}

	return nil
}

func (uc *repricerUseCase) RollDemandWindows(ctx context.Context) error {
	return uc.repo.RollDemandWindows(ctx, uc.policy.Window)
}

// RepriceSurplus sweeps products sitting on mostly-untouched stock and gives
// each a recalculation pass, so surplus pressure keeps nudging prices down
// even without new order activity.
func (uc *repricerUseCase) RepriceSurplus(ctx context.Context) error {
	products, err := uc.repo.ListByInventoryLevel(ctx, pricing.InventoryVeryHigh)
	if err != nil {
		return err
	}
	for i := range products {
		if err := uc.Recalculate(ctx, products[i].ID); err != nil {
			uc.logger.Error("surplus reprice failed",
				zap.String("product_id", products[i].ID), zap.Error(err))
		}
	}
	return nil
}

func derefOrZero(d *decimal.Decimal) decimal.Decimal {
	if d == nil {
		return decimal.Zero
	}
	return *d
}
