package cart

import (
	"context"

	"github.com/shoplite/pricing-service/internal/cart/dto"
	"github.com/shoplite/pricing-service/internal/model"
)

type UseCase interface {
	// CreateCart creates a cart, optionally pre-filled with items.
	CreateCart(ctx context.Context, items []dto.CartItemInput) (*model.Cart, error)
	// AddItems validates and merges items into the cart, bumps demand on
	// the touched products and schedules their repricing. It reserves
	// nothing; reservation happens at order placement.
	AddItems(ctx context.Context, cartID string, items []dto.CartItemInput) (*model.Cart, error)
	RemoveItem(ctx context.Context, cartID, itemID string) error
	GetCart(ctx context.Context, cartID string) (*model.Cart, error)
}
