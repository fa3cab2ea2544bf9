package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cartRepoPkg "github.com/shoplite/pricing-service/internal/cart/repository"
	"github.com/shoplite/pricing-service/internal/model"
	"github.com/shoplite/pricing-service/internal/order"
	orderRepoPkg "github.com/shoplite/pricing-service/internal/order/repository"
	"github.com/shoplite/pricing-service/internal/pkg/logger"
	prodRepoPkg "github.com/shoplite/pricing-service/internal/product/repository"
	"github.com/shoplite/pricing-service/internal/repricer"
)

// recordingTrigger captures enqueued product IDs for assertions.
type recordingTrigger struct {
	mu  sync.Mutex
	ids []string
}

func (t *recordingTrigger) Enqueue(ctx context.Context, productID string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.ids = append(t.ids, productID)
	return nil
}

type fixture struct {
	uc       order.UseCase
	orders   *orderRepoPkg.MemoryRepository
	carts    *cartRepoPkg.MemoryRepository
	products *prodRepoPkg.MemoryRepository
	trigger  *recordingTrigger
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		orders:   orderRepoPkg.NewMemoryRepository(),
		carts:    cartRepoPkg.NewMemoryRepository(),
		products: prodRepoPkg.NewMemoryRepository(),
		trigger:  &recordingTrigger{},
	}
	f.uc = NewOrderUseCase(f.orders, f.carts, f.products, f.trigger, logger.NewNop())
	return f
}

func (f *fixture) seedProduct(t *testing.T, capacity int64, price string) *model.Product {
	t.Helper()
	d, err := decimal.NewFromString(price)
	require.NoError(t, err)
	p := &model.Product{
		BaseModel:      model.BaseModel{ID: uuid.New().String()},
		Name:           "widget-" + uuid.New().String()[:8],
		Category:       "widgets",
		DefaultPrice:   d,
		TotalInventory: capacity,
		IsActive:       true,
	}
	require.NoError(t, f.products.Create(context.Background(), p))
	return p
}

func (f *fixture) seedCart(t *testing.T, lines ...model.CartItem) string {
	t.Helper()
	cartID := uuid.New().String()
	require.NoError(t, f.carts.Create(context.Background(), &model.Cart{
		BaseModel: model.BaseModel{ID: cartID},
	}))
	for _, line := range lines {
		require.NoError(t, f.carts.UpsertItem(context.Background(), cartID, line.ProductID, line.Quantity))
	}
	return cartID
}

func (f *fixture) product(t *testing.T, id string) *model.Product {
	t.Helper()
	p, err := f.products.FindByID(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, p)
	return p
}

func TestPlaceOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a := f.seedProduct(t, 10, "100")
	b := f.seedProduct(t, 5, "40")
	dyn := decimal.RequireFromString("35.50")
	b.DynamicPrice = &dyn
	require.NoError(t, f.products.Create(ctx, b))

	cartID := f.seedCart(t,
		model.CartItem{ProductID: a.ID, Quantity: 2},
		model.CartItem{ProductID: b.ID, Quantity: 3},
	)

	o, err := f.uc.PlaceOrder(ctx, cartID)
	require.NoError(t, err)

	assert.Equal(t, model.OrderConfirmed, o.Status)
	assert.Equal(t, cartID, o.CartID)
	assert.Equal(t, int64(5), o.TotalQuantity)
	// 2x100 at the default price, 3x35.50 at the dynamic price.
	assert.True(t, o.TotalPrice.Equal(decimal.RequireFromString("306.50")), "got %s", o.TotalPrice)
	require.Len(t, o.Items, 2)
	assert.True(t, o.Items[1].Price.Equal(dyn), "price not frozen from dynamic price")

	assert.Equal(t, int64(2), f.product(t, a.ID).TotalReserved)
	assert.Equal(t, int64(3), f.product(t, b.ID).TotalReserved)

	// Each placed line counts toward demand and schedules a reprice.
	assert.Equal(t, int64(2), f.product(t, a.ID).CurrentDemandCount)
	assert.Equal(t, int64(3), f.product(t, b.ID).CurrentDemandCount)
	assert.ElementsMatch(t, []string{a.ID, b.ID}, f.trigger.ids)

	require.Len(t, f.products.Movements, 2)
	assert.Equal(t, model.MovementReserve, f.products.Movements[0].MovementType)
}

func TestPlaceOrderCartNotFound(t *testing.T) {
	f := newFixture(t)
	_, err := f.uc.PlaceOrder(context.Background(), uuid.New().String())
	assert.ErrorIs(t, err, model.ErrCartNotFound)
}

func TestPlaceOrderEmptyCart(t *testing.T) {
	f := newFixture(t)
	cartID := f.seedCart(t)
	_, err := f.uc.PlaceOrder(context.Background(), cartID)
	assert.ErrorIs(t, err, model.ErrCartEmpty)
}

func TestPlaceOrderTwiceForOneCart(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p := f.seedProduct(t, 10, "20")
	cartID := f.seedCart(t, model.CartItem{ProductID: p.ID, Quantity: 1})

	_, err := f.uc.PlaceOrder(ctx, cartID)
	require.NoError(t, err)

	_, err = f.uc.PlaceOrder(ctx, cartID)
	assert.ErrorIs(t, err, model.ErrOrderAlreadyExists)
	// The failed attempt must not touch the ledger again.
	assert.Equal(t, int64(1), f.product(t, p.ID).TotalReserved)
}

func TestPlaceOrderInsufficientInventoryRollsBack(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a := f.seedProduct(t, 10, "100")
	b := f.seedProduct(t, 2, "40")

	cartID := f.seedCart(t,
		model.CartItem{ProductID: a.ID, Quantity: 4},
		model.CartItem{ProductID: b.ID, Quantity: 3}, // over capacity
	)

	_, err := f.uc.PlaceOrder(ctx, cartID)
	require.Error(t, err)
	assert.True(t, model.IsInsufficientInventory(err))

	// All-or-nothing: the partial reservation on a was unwound.
	assert.Equal(t, int64(0), f.product(t, a.ID).TotalReserved)
	assert.Equal(t, int64(0), f.product(t, b.ID).TotalReserved)
	assert.Equal(t, int64(0), f.product(t, a.ID).CurrentDemandCount)
	assert.Empty(t, f.trigger.ids)

	o, err := f.orders.FindByCartID(ctx, cartID)
	require.NoError(t, err)
	assert.Nil(t, o, "failed placement must not persist an order")
}

func TestPlaceOrderRetiredProduct(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p := f.seedProduct(t, 10, "20")
	require.NoError(t, f.products.Retire(ctx, p.ID))

	cartID := f.seedCart(t, model.CartItem{ProductID: p.ID, Quantity: 1})
	_, err := f.uc.PlaceOrder(ctx, cartID)
	assert.ErrorIs(t, err, model.ErrProductNotFound)
}

func TestPlaceOrderNeverOversells(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	const capacity = 10
	const workers = 8
	const qty = 3 // workers*qty > capacity

	p := f.seedProduct(t, capacity, "50")

	cartIDs := make([]string, workers)
	for i := range cartIDs {
		cartIDs[i] = f.seedCart(t, model.CartItem{ProductID: p.ID, Quantity: qty})
	}

	var wg sync.WaitGroup
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.uc.PlaceOrder(ctx, cartIDs[i])
		}(i)
	}
	wg.Wait()

	var placed int64
	for _, err := range errs {
		if err == nil {
			placed++
		} else {
			require.True(t, model.IsInsufficientInventory(err), "unexpected error: %v", err)
		}
	}

	got := f.product(t, p.ID)
	assert.Equal(t, placed*qty, got.TotalReserved)
	assert.LessOrEqual(t, got.TotalReserved, got.TotalInventory)
	assert.Greater(t, placed, int64(0), "some placements must succeed")
}

func TestCancelOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p := f.seedProduct(t, 10, "100")
	cartID := f.seedCart(t, model.CartItem{ProductID: p.ID, Quantity: 4})

	o, err := f.uc.PlaceOrder(ctx, cartID)
	require.NoError(t, err)
	require.Equal(t, int64(4), f.product(t, p.ID).TotalReserved)
	demandAfterPlace := f.product(t, p.ID).CurrentDemandCount

	cancelled, err := f.uc.CancelOrder(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, model.OrderCancelled, cancelled.Status)

	got := f.product(t, p.ID)
	assert.Equal(t, int64(0), got.TotalReserved)
	// Demand is a historical signal; cancellation does not rewrite it.
	assert.Equal(t, demandAfterPlace, got.CurrentDemandCount)

	// reserve + release audit rows.
	require.Len(t, f.products.Movements, 2)
	assert.Equal(t, model.MovementRelease, f.products.Movements[1].MovementType)
	assert.Equal(t, int64(-4), f.products.Movements[1].Change)

	// Cancellation frees inventory, so it schedules a reprice too.
	assert.Equal(t, []string{p.ID, p.ID}, f.trigger.ids)
}

func TestCancelOrderTwice(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p := f.seedProduct(t, 10, "100")
	cartID := f.seedCart(t, model.CartItem{ProductID: p.ID, Quantity: 1})

	o, err := f.uc.PlaceOrder(ctx, cartID)
	require.NoError(t, err)

	_, err = f.uc.CancelOrder(ctx, o.ID)
	require.NoError(t, err)

	_, err = f.uc.CancelOrder(ctx, o.ID)
	assert.ErrorIs(t, err, model.ErrAlreadyCancelled)
	assert.Equal(t, int64(0), f.product(t, p.ID).TotalReserved)
}

// syncedOrderRepo holds every FindByID caller at a barrier until all
// expected readers have arrived, forcing concurrent cancellations to observe
// the confirmed status before either tries to claim it.
type syncedOrderRepo struct {
	*orderRepoPkg.MemoryRepository
	arrive *sync.WaitGroup
}

func (r *syncedOrderRepo) FindByID(ctx context.Context, id string) (*model.Order, error) {
	o, err := r.MemoryRepository.FindByID(ctx, id)
	r.arrive.Done()
	r.arrive.Wait()
	return o, err
}

func TestCancelOrderConcurrentReleasesOnce(t *testing.T) {
	ctx := context.Background()

	products := prodRepoPkg.NewMemoryRepository()
	carts := cartRepoPkg.NewMemoryRepository()
	var arrive sync.WaitGroup
	arrive.Add(2)
	orders := &syncedOrderRepo{
		MemoryRepository: orderRepoPkg.NewMemoryRepository(),
		arrive:           &arrive,
	}
	uc := NewOrderUseCase(orders, carts, products, repricer.NoopTrigger{}, logger.NewNop())

	// Capacity 4, two confirmed orders holding 2 units each.
	p := &model.Product{
		BaseModel:      model.BaseModel{ID: uuid.New().String()},
		Name:           "widget",
		Category:       "widgets",
		DefaultPrice:   decimal.NewFromInt(10),
		TotalInventory: 4,
		IsActive:       true,
	}
	require.NoError(t, products.Create(ctx, p))
	require.NoError(t, products.Reserve(ctx, p.ID, 2))
	require.NoError(t, products.Reserve(ctx, p.ID, 2))

	makeOrder := func() *model.Order {
		o := &model.Order{
			BaseModel: model.BaseModel{ID: uuid.New().String()},
			CartID:    uuid.New().String(),
			Status:    model.OrderConfirmed,
			Items: []model.OrderItem{
				{ID: uuid.New().String(), ProductID: p.ID, Quantity: 2},
			},
		}
		require.NoError(t, orders.MemoryRepository.Create(ctx, o))
		return o
	}
	a := makeOrder()
	makeOrder()

	// Two cancellations of the same order, both reading it as confirmed.
	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = uc.CancelOrder(ctx, a.ID)
		}(i)
	}
	wg.Wait()

	var cancelled, lost int
	for _, err := range errs {
		switch {
		case err == nil:
			cancelled++
		case errors.Is(err, model.ErrAlreadyCancelled):
			lost++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, cancelled, "exactly one cancellation wins the claim")
	assert.Equal(t, 1, lost)

	// Only the winning cancel released: the other order's 2 units are
	// still committed.
	got, err := products.FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), got.TotalReserved)
	assert.Len(t, products.Movements, 1)
}

func TestCancelOrderNotFound(t *testing.T) {
	f := newFixture(t)
	_, err := f.uc.CancelOrder(context.Background(), uuid.New().String())
	assert.ErrorIs(t, err, model.ErrOrderNotFound)
}

func TestCancelOrderReleasesRetiredProduct(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p := f.seedProduct(t, 10, "100")
	cartID := f.seedCart(t, model.CartItem{ProductID: p.ID, Quantity: 2})

	o, err := f.uc.PlaceOrder(ctx, cartID)
	require.NoError(t, err)

	// Retiring the product must not strand its reserved units.
	require.NoError(t, f.products.Retire(ctx, p.ID))

	_, err = f.uc.CancelOrder(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), f.product(t, p.ID).TotalReserved)
}

func TestCancelOrderAbortsAndReReservesOnBadRelease(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a := f.seedProduct(t, 10, "100")
	b := f.seedProduct(t, 10, "40")
	require.NoError(t, f.products.Reserve(ctx, a.ID, 2))

	// A hand-built order whose second line claims more than was ever
	// reserved: releasing it must fail and re-reserve the first line.
	o := &model.Order{
		BaseModel: model.BaseModel{ID: uuid.New().String()},
		CartID:    uuid.New().String(),
		Status:    model.OrderConfirmed,
		Items: []model.OrderItem{
			{ID: uuid.New().String(), ProductID: a.ID, Quantity: 2},
			{ID: uuid.New().String(), ProductID: b.ID, Quantity: 5},
		},
	}
	require.NoError(t, f.orders.Create(ctx, o))

	_, err := f.uc.CancelOrder(ctx, o.ID)
	assert.ErrorIs(t, err, model.ErrInvalidRelease)

	// The first line's release was rewound; the order stays confirmed.
	assert.Equal(t, int64(2), f.product(t, a.ID).TotalReserved)
	got, err := f.uc.GetOrder(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, model.OrderConfirmed, got.Status)
}

func TestGetOrderNotFound(t *testing.T) {
	f := newFixture(t)
	_, err := f.uc.GetOrder(context.Background(), uuid.New().String())
	assert.ErrorIs(t, err, model.ErrOrderNotFound)
}

var _ repricer.Trigger = (*recordingTrigger)(nil)
