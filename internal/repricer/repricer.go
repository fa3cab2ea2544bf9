package repricer

import (
	"context"
	"time"
)

// UseCase is the recalculation engine: it reclassifies levels and reprices a
// single product, and runs the scheduled sweeps.
type UseCase interface {
	// Recalculate is idempotent: duplicate deliveries inside one cool-down
	// window are no-ops.
	Recalculate(ctx context.Context, productID string) error
	RollDemandWindows(ctx context.Context) error
	RepriceSurplus(ctx context.Context) error
}

// Trigger schedules an asynchronous recalculation for a product. It is
// fire-and-forget: pricing latency never blocks checkout, so callers log
// enqueue failures instead of propagating them.
type Trigger interface {
	Enqueue(ctx context.Context, productID string) error
}

// NoopTrigger drops every enqueue. Tests and environments without a broker
// use it instead of branching on the environment inside the engine.
type NoopTrigger struct{}

func (NoopTrigger) Enqueue(ctx context.Context, productID string) error { return nil }

// Locker is the distributed-lock slice of the redis client the recalculation
// worker uses to dedupe concurrent deliveries for one product.
type Locker interface {
	AcquireLock(ctx context.Context, key, value string, ttl time.Duration) (bool, error)
	ReleaseLock(ctx context.Context, key, value string) error
}

// RepriceEvent is the message the trigger publishes and the listener consumes.
type RepriceEvent struct {
	EventType string    `json:"event_type"`
	ProductID string    `json:"product_id"`
	Timestamp time.Time `json:"timestamp"`
}

const EventTypeReprice = "product.reprice"
