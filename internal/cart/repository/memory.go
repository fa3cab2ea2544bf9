package repository

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/shoplite/pricing-service/internal/model"
)

// MemoryRepository is the in-memory cart store tests run against.
type MemoryRepository struct {
	mu    sync.Mutex
	carts map[string]*model.Cart
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{carts: make(map[string]*model.Cart)}
}

func (r *MemoryRepository) FindByID(ctx context.Context, id string) (*model.Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.carts[id]
	if !ok {
		return nil, nil
	}
	cp := *c
	cp.Items = append([]model.CartItem(nil), c.Items...)
	return &cp, nil
}

func (r *MemoryRepository) Create(ctx context.Context, c *model.Cart) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *c
	cp.Items = append([]model.CartItem(nil), c.Items...)
	r.carts[c.ID] = &cp
	return nil
}

func (r *MemoryRepository) UpsertItem(ctx context.Context, cartID, productID string, quantity int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.carts[cartID]
	if !ok {
		return model.ErrCartNotFound
	}
	if line := c.FindItem(productID); line != nil {
		line.Quantity += quantity
		return nil
	}
	c.Items = append(c.Items, model.CartItem{
		ID:        uuid.New().String(),
		CartID:    cartID,
		ProductID: productID,
		Quantity:  quantity,
	})
	return nil
}

func (r *MemoryRepository) RemoveItem(ctx context.Context, cartID, itemID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.carts[cartID]
	if !ok {
		return model.ErrCartNotFound
	}
	for i := range c.Items {
		if c.Items[i].ID == itemID {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
			return nil
		}
	}
	return model.ErrCartItemNotFound
}
