package order

import (
	"context"

	"github.com/shoplite/pricing-service/internal/model"
)

type Repository interface {
	FindByID(ctx context.Context, id string) (*model.Order, error)
	// FindByCartID enforces the one-order-per-cart rule before the
	// workflow reserves anything.
	FindByCartID(ctx context.Context, cartID string) (*model.Order, error)
	Create(ctx context.Context, o *model.Order) error
	// MarkCancelled claims the cancellation atomically: it flips the
	// status only when the order is not cancelled yet, and fails with
	// ErrAlreadyCancelled otherwise. Of two racing cancellations exactly
	// one wins the claim, so the release loop can never run twice.
	MarkCancelled(ctx context.Context, id string) error
	UpdateStatus(ctx context.Context, id, status string) error
}
