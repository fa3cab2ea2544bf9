package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/shoplite/pricing-service/internal/model"
	"github.com/shoplite/pricing-service/internal/pricing"
	"github.com/shoplite/pricing-service/internal/product/dto"
)

// MemoryRepository keeps products in a map guarded by one mutex, giving the
// same per-product linearizability contract as the guarded UPDATE in
// postgres. Tests (including the concurrency properties) run against it.
type MemoryRepository struct {
	mu        sync.Mutex
	products  map[string]*model.Product
	Movements []model.InventoryMovement
	PriceLogs []model.PriceLog
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{products: make(map[string]*model.Product)}
}

func (r *MemoryRepository) FindByID(ctx context.Context, id string) (*model.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (r *MemoryRepository) FindByNameCategory(ctx context.Context, name, category string) (*model.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.products {
		if p.Name == name && p.Category == category {
			cp := *p
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *MemoryRepository) FindAll(ctx context.Context, f *dto.ProductFilters) ([]model.Product, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var items []model.Product
	for _, p := range r.products {
		if !p.IsActive {
			continue
		}
		if f.Name != "" && p.Name != f.Name {
			continue
		}
		if f.Category != "" && p.Category != f.Category {
			continue
		}
		items = append(items, *p)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return items, len(items), nil
}

func (r *MemoryRepository) ListByInventoryLevel(ctx context.Context, level pricing.InventoryLevel) ([]model.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var items []model.Product
	for _, p := range r.products {
		if p.IsActive && p.InventoryLevel == level {
			items = append(items, *p)
		}
	}
	return items, nil
}

func (r *MemoryRepository) Create(ctx context.Context, p *model.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *p
	r.products[p.ID] = &cp
	return nil
}

func (r *MemoryRepository) Retire(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok {
		return model.ErrProductNotFound
	}
	p.IsActive = false
	return nil
}

func (r *MemoryRepository) UpdateCompetitorPrice(ctx context.Context, id string, price decimal.Decimal) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok {
		return model.ErrProductNotFound
	}
	cp := price
	p.CompetitorPrice = &cp
	return nil
}

func (r *MemoryRepository) Reserve(ctx context.Context, id string, qty int64) error {
	if qty <= 0 {
		return model.ErrInvalidQuantity
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok || !p.IsActive {
		return model.ErrProductNotFound
	}
	if p.TotalReserved+qty > p.TotalInventory {
		return &model.InsufficientInventoryError{ProductID: id}
	}
	p.TotalReserved += qty
	return nil
}

func (r *MemoryRepository) Release(ctx context.Context, id string, qty int64) error {
	if qty <= 0 {
		return model.ErrInvalidQuantity
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok {
		return model.ErrProductNotFound
	}
	if p.TotalReserved-qty < 0 {
		return model.ErrInvalidRelease
	}
	p.TotalReserved -= qty
	return nil
}

func (r *MemoryRepository) BumpDemand(ctx context.Context, id string, amount int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok {
		return model.ErrProductNotFound
	}
	p.CurrentDemandCount += amount
	return nil
}

func (r *MemoryRepository) RollDemandWindows(ctx context.Context, policy pricing.DemandWindowPolicy) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.products {
		if !p.IsActive {
			continue
		}
		if p.CurrentDemandCount > p.PreviousDemandCount {
			p.PreviousDemandCount = p.CurrentDemandCount
		}
		if policy == pricing.WindowDecay {
			p.CurrentDemandCount = 0
		}
	}
	return nil
}

func (r *MemoryRepository) UpdateLevels(ctx context.Context, id string, inv pricing.InventoryLevel, dem pricing.DemandLevel) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok {
		return model.ErrProductNotFound
	}
	p.InventoryLevel = inv
	p.DemandLevel = dem
	return nil
}

func (r *MemoryRepository) UpdatePricing(ctx context.Context, id string, inv pricing.InventoryLevel, dem pricing.DemandLevel, price decimal.Decimal, expiry time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok {
		return model.ErrProductNotFound
	}
	p.InventoryLevel = inv
	p.DemandLevel = dem
	cp := price
	p.DynamicPrice = &cp
	e := expiry
	p.DynamicPriceExpiry = &e
	return nil
}

func (r *MemoryRepository) LogMovement(ctx context.Context, m *model.InventoryMovement) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Movements = append(r.Movements, *m)
	return nil
}

func (r *MemoryRepository) LogPrice(ctx context.Context, l *model.PriceLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.PriceLogs = append(r.PriceLogs, *l)
	return nil
}
