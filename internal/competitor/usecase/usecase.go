package usecase

import (
	"context"

	"go.uber.org/zap"

	"github.com/shoplite/pricing-service/internal/competitor"
	"github.com/shoplite/pricing-service/internal/pkg/logger"
	"github.com/shoplite/pricing-service/internal/product"
)

type competitorUseCase struct {
	client   competitor.Client
	products product.Repository
	logger   logger.Logger
}

func NewCompetitorUseCase(client competitor.Client, products product.Repository, log logger.Logger) competitor.UseCase {
	return &competitorUseCase{
		client:   client,
		products: products,
		logger:   log,
	}
}

// SyncPrices pulls the feed and stores changed competitor prices on matching
// products. A non-positive feed price means "unknown" and is never stored.
// Deliberately no repricing here: the clamp applies on the next recalculation.
func (uc *competitorUseCase) SyncPrices(ctx context.Context) error {
	prices, err := uc.client.FetchPrices(ctx)
	if err != nil {
		return err
	}

	var updated int
	for _, cp := range prices {
		if !cp.Price.IsPositive() {
			continue
		}

		p, err := uc.products.FindByNameCategory(ctx, cp.Name, cp.Category)
		if err != nil {
			uc.logger.Error("competitor price lookup failed",
				zap.String("name", cp.Name), zap.Error(err))
			continue
		}
		if p == nil {
			continue
		}
		if p.CompetitorPrice != nil && p.CompetitorPrice.Equal(cp.Price) {
			continue
		}

		if err := uc.products.UpdateCompetitorPrice(ctx, p.ID, cp.Price); err != nil {
			uc.logger.Error("failed to store competitor price",
				zap.String("product_id", p.ID), zap.Error(err))
			continue
		}
		updated++
	}

	uc.logger.Info("competitor price sync finished",
		zap.Int("observed", len(prices)), zap.Int("updated", updated))
	return nil
}
