package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/shoplite/pricing-service/internal/cart"
	"github.com/shoplite/pricing-service/internal/cart/dto"
	"github.com/shoplite/pricing-service/internal/model"
	"github.com/shoplite/pricing-service/internal/pkg/logger"
	"github.com/shoplite/pricing-service/internal/product"
	"github.com/shoplite/pricing-service/internal/repricer"
)

type cartUseCase struct {
	carts    cart.Repository
	products product.Repository
	trigger  repricer.Trigger
	logger   logger.Logger
}

func NewCartUseCase(carts cart.Repository, products product.Repository, trigger repricer.Trigger, log logger.Logger) cart.UseCase {
	return &cartUseCase{
		carts:    carts,
		products: products,
		trigger:  trigger,
		logger:   log,
	}
}

func (uc *cartUseCase) GetCart(ctx context.Context, cartID string) (*model.Cart, error) {
	c, err := uc.carts.FindByID(ctx, cartID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, model.ErrCartNotFound
	}
	return c, nil
}

func (uc *cartUseCase) CreateCart(ctx context.Context, items []dto.CartItemInput) (*model.Cart, error) {
	now := time.Now().UTC()
	c := &model.Cart{BaseModel: model.BaseModel{ID: uuid.New().String(), CreatedAt: now, UpdatedAt: now}}
	if err := uc.carts.Create(ctx, c); err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return c, nil
	}
	return uc.AddItems(ctx, c.ID, items)
}

func (uc *cartUseCase) AddItems(ctx context.Context, cartID string, items []dto.CartItemInput) (*model.Cart, error) {
	if len(items) == 0 {
		return nil, model.ErrCartEmpty
	}
	for _, item := range items {
		if item.ProductID == "" || item.Quantity <= 0 {
			return nil, model.ErrInvalidQuantity
		}
	}

	c, err := uc.carts.FindByID(ctx, cartID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, model.ErrCartNotFound
	}

	// Validate every item before touching the cart, so an invalid line
	// cannot leave a half-updated cart behind.
	for _, item := range items {
		p, err := uc.products.FindByID(ctx, item.ProductID)
		if err != nil {
			return nil, err
		}
		if p == nil || !p.IsActive {
			return nil, model.ErrProductNotFound
		}

		requested := item.Quantity
		if line := c.FindItem(item.ProductID); line != nil {
			requested += line.Quantity
		}
		// Advisory availability check against current counters; the
		// ledger re-checks atomically at placement.
		if !p.Available(requested) {
			return nil, &model.InsufficientInventoryError{ProductID: item.ProductID}
		}
	}

	for _, item := range items {
		if err := uc.carts.UpsertItem(ctx, cartID, item.ProductID, item.Quantity); err != nil {
			return nil, err
		}
	}

	// Adding to a cart is a demand signal even before any order exists.
	for _, item := range items {
		if err := uc.products.BumpDemand(ctx, item.ProductID, item.Quantity); err != nil {
			uc.logger.Error("failed to bump demand",
				zap.String("product_id", item.ProductID), zap.Error(err))
		}
		if err := uc.trigger.Enqueue(ctx, item.ProductID); err != nil {
			uc.logger.Error("failed to enqueue reprice",
				zap.String("product_id", item.ProductID), zap.Error(err))
		}
	}

	return uc.GetCart(ctx, cartID)
}

func (uc *cartUseCase) RemoveItem(ctx context.Context, cartID, itemID string) error {
	c, err := uc.carts.FindByID(ctx, cartID)
	if err != nil {
		return err
	}
	if c == nil {
		return model.ErrCartNotFound
	}
	return uc.carts.RemoveItem(ctx, cartID, itemID)
}
