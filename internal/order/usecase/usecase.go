package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/shoplite/pricing-service/internal/cart"
	"github.com/shoplite/pricing-service/internal/model"
	"github.com/shoplite/pricing-service/internal/order"
	"github.com/shoplite/pricing-service/internal/pkg/logger"
	"github.com/shoplite/pricing-service/internal/product"
	"github.com/shoplite/pricing-service/internal/repricer"
)

type orderUseCase struct {
	orders   order.Repository
	carts    cart.Repository
	products product.Repository
	trigger  repricer.Trigger
	logger   logger.Logger
}

func NewOrderUseCase(orders order.Repository, carts cart.Repository, products product.Repository, trigger repricer.Trigger, log logger.Logger) order.UseCase {
	return &orderUseCase{
		orders:   orders,
		carts:    carts,
		products: products,
		trigger:  trigger,
		logger:   log,
	}
}

func (uc *orderUseCase) GetOrder(ctx context.Context, orderID string) (*model.Order, error) {
	o, err := uc.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, model.ErrOrderNotFound
	}
	return o, nil
}

func (uc *orderUseCase) PlaceOrder(ctx context.Context, cartID string) (*model.Order, error) {
	c, err := uc.carts.FindByID(ctx, cartID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, model.ErrCartNotFound
	}

	existing, err := uc.orders.FindByCartID(ctx, cartID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, model.ErrOrderAlreadyExists
	}

	if len(c.Items) == 0 {
		return nil, model.ErrCartEmpty
	}

	now := time.Now().UTC()
	orderID := uuid.New().String()

	// reserved tracks every ledger increment applied so far, so a failure
	// on item N can unwind items 1..N-1 and leave the counters untouched.
	var reserved []model.OrderItem

	var items []model.OrderItem
	totalPrice := decimal.Zero
	var totalQuantity int64

	for _, ci := range c.Items {
		p, err := uc.products.FindByID(ctx, ci.ProductID)
		if err != nil {
			uc.unwindReservations(ctx, reserved)
			return nil, err
		}
		if p == nil {
			uc.unwindReservations(ctx, reserved)
			return nil, model.ErrProductNotFound
		}

		if err := uc.products.Reserve(ctx, ci.ProductID, ci.Quantity); err != nil {
			uc.unwindReservations(ctx, reserved)
			return nil, err
		}

		item := model.OrderItem{
			ID:        uuid.New().String(),
			OrderID:   orderID,
			ProductID: ci.ProductID,
			Quantity:  ci.Quantity,
			// Freeze the sale price at the moment of reservation.
			Price: p.SalePrice(),
		}
		reserved = append(reserved, item)
		items = append(items, item)
		totalPrice = totalPrice.Add(item.Price.Mul(decimal.NewFromInt(ci.Quantity)))
		totalQuantity += ci.Quantity
	}

	o := &model.Order{
		BaseModel:     model.BaseModel{ID: orderID, CreatedAt: now, UpdatedAt: now},
		CartID:        cartID,
		Status:        model.OrderConfirmed,
		TotalPrice:    totalPrice,
		TotalQuantity: totalQuantity,
		Items:         items,
	}

	if err := uc.orders.Create(ctx, o); err != nil {
		uc.unwindReservations(ctx, reserved)
		return nil, err
	}

	// Post-commit effects. None of these can fail the placement: demand is
	// a signal, movements are audit, repricing is eventually consistent.
	for _, item := range items {
		if err := uc.products.BumpDemand(ctx, item.ProductID, item.Quantity); err != nil {
			uc.logger.Error("failed to bump demand",
				zap.String("product_id", item.ProductID), zap.Error(err))
		}
		uc.logMovement(ctx, item, model.MovementReserve)
	}
	uc.enqueueRepricing(ctx, items)

	return o, nil
}

func (uc *orderUseCase) CancelOrder(ctx context.Context, orderID string) (*model.Order, error) {
	o, err := uc.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, model.ErrOrderNotFound
	}

	// Claim the cancellation before touching the ledger. The conditional
	// status flip admits exactly one of any number of racing cancels, so
	// the releases below run at most once per order.
	prior := o.Status
	if err := uc.orders.MarkCancelled(ctx, o.ID); err != nil {
		return nil, err
	}
	o.Status = model.OrderCancelled

	// released mirrors the placement's rollback stack: a failed release
	// re-reserves everything already released, keeping the cancellation
	// all-or-nothing.
	var released []model.OrderItem

	for _, item := range o.Items {
		if err := uc.products.Release(ctx, item.ProductID, item.Quantity); err != nil {
			uc.rewindReleases(ctx, released)
			// Surrender the claim so the order stays cancellable once
			// the ledger inconsistency is repaired.
			if serr := uc.orders.UpdateStatus(ctx, o.ID, prior); serr != nil {
				uc.logger.Error("CRITICAL: failed to restore order status after aborted cancel",
					zap.String("order_id", o.ID), zap.Error(serr))
			}
			return nil, err
		}
		released = append(released, item)
	}

	for _, item := range o.Items {
		uc.logMovement(ctx, item, model.MovementRelease)
	}
	// Cancellation reverses inventory only; the demand the order generated
	// already happened and stays counted.
	uc.enqueueRepricing(ctx, o.Items)

	return o, nil
}

func (uc *orderUseCase) unwindReservations(ctx context.Context, reserved []model.OrderItem) {
	for _, item := range reserved {
		if err := uc.products.Release(ctx, item.ProductID, item.Quantity); err != nil {
			// A rollback that cannot release points at counter
			// corruption; nothing sane can be done beyond shouting.
			uc.logger.Error("CRITICAL: failed to roll back reservation",
				zap.String("product_id", item.ProductID),
				zap.Int64("quantity", item.Quantity),
				zap.Error(err))
		}
	}
}

func (uc *orderUseCase) rewindReleases(ctx context.Context, released []model.OrderItem) {
	for _, item := range released {
		if err := uc.products.Reserve(ctx, item.ProductID, item.Quantity); err != nil {
			uc.logger.Error("CRITICAL: failed to roll back release",
				zap.String("product_id", item.ProductID),
				zap.Int64("quantity", item.Quantity),
				zap.Error(err))
		}
	}
}

func (uc *orderUseCase) logMovement(ctx context.Context, item model.OrderItem, movementType string) {
	change := item.Quantity
	if movementType == model.MovementRelease {
		change = -item.Quantity
	}
	m := &model.InventoryMovement{
		ID:           uuid.New().String(),
		ProductID:    item.ProductID,
		OrderID:      item.OrderID,
		MovementType: movementType,
		Change:       change,
		CreatedAt:    time.Now().UTC(),
	}
	if err := uc.products.LogMovement(ctx, m); err != nil {
		uc.logger.Error("failed to log inventory movement",
			zap.String("product_id", item.ProductID), zap.Error(err))
	}
}

func (uc *orderUseCase) enqueueRepricing(ctx context.Context, items []model.OrderItem) {
	for _, item := range items {
		if err := uc.trigger.Enqueue(ctx, item.ProductID); err != nil {
			uc.logger.Error("failed to enqueue reprice",
				zap.String("product_id", item.ProductID), zap.Error(err))
		}
	}
}
