package repository

import (
	"context"
	"sync"

	"github.com/shoplite/pricing-service/internal/model"
)

// MemoryRepository is the in-memory order store tests run against.
type MemoryRepository struct {
	mu     sync.Mutex
	orders map[string]*model.Order
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{orders: make(map[string]*model.Order)}
}

func (r *MemoryRepository) FindByID(ctx context.Context, id string) (*model.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return nil, nil
	}
	cp := *o
	cp.Items = append([]model.OrderItem(nil), o.Items...)
	return &cp, nil
}

func (r *MemoryRepository) FindByCartID(ctx context.Context, cartID string) (*model.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, o := range r.orders {
		if o.CartID == cartID {
			cp := *o
			cp.Items = append([]model.OrderItem(nil), o.Items...)
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *MemoryRepository) Create(ctx context.Context, o *model.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	// Mirror the unique index on cart_id: the check-then-create race in
	// the workflow still cannot produce two orders for one cart.
	for _, existing := range r.orders {
		if existing.CartID == o.CartID {
			return model.ErrOrderAlreadyExists
		}
	}
	cp := *o
	cp.Items = append([]model.OrderItem(nil), o.Items...)
	r.orders[o.ID] = &cp
	return nil
}

// MarkCancelled checks and flips the status under the store mutex, matching
// the single-statement conditional update in postgres.
func (r *MemoryRepository) MarkCancelled(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return model.ErrOrderNotFound
	}
	if o.Status == model.OrderCancelled {
		return model.ErrAlreadyCancelled
	}
	o.Status = model.OrderCancelled
	return nil
}

func (r *MemoryRepository) UpdateStatus(ctx context.Context, id, status string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return model.ErrOrderNotFound
	}
	o.Status = status
	return nil
}
