package cart

import (
	"context"

	"github.com/shoplite/pricing-service/internal/model"
)

type Repository interface {
	FindByID(ctx context.Context, id string) (*model.Cart, error)
	Create(ctx context.Context, c *model.Cart) error
	// UpsertItem merges quantity into an existing line for the product, or
	// creates the line.
	UpsertItem(ctx context.Context, cartID, productID string, quantity int64) error
	RemoveItem(ctx context.Context, cartID, itemID string) error
}
