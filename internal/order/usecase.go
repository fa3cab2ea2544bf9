package order

import (
	"context"

	"github.com/shoplite/pricing-service/internal/model"
)

type UseCase interface {
	// PlaceOrder converts a cart into an order. It is all-or-nothing:
	// either every line item reserves and the order persists, or the
	// product counters end exactly where they started.
	PlaceOrder(ctx context.Context, cartID string) (*model.Order, error)
	// CancelOrder releases every line item and marks the order cancelled.
	// Demand counters are deliberately not reversed.
	CancelOrder(ctx context.Context, orderID string) (*model.Order, error)
	GetOrder(ctx context.Context, orderID string) (*model.Order, error)
}
