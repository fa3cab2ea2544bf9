package listener

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/shoplite/pricing-service/internal/model"
	"github.com/shoplite/pricing-service/internal/pkg/broker"
	"github.com/shoplite/pricing-service/internal/pkg/logger"
	"github.com/shoplite/pricing-service/internal/pricing"
	"github.com/shoplite/pricing-service/internal/repricer"
)

// RepriceListener consumes reprice events and feeds them to a fixed pool of
// workers. The queue is at-least-once: the usecase's lock and cool-down gate
// absorb duplicates, so the listener never retries on its own.
type RepriceListener struct {
	consumer *broker.KafkaConsumer
	uc       repricer.UseCase
	workers  int
	logger   logger.Logger
}

func NewRepriceListener(consumer *broker.KafkaConsumer, uc repricer.UseCase, workers int, log logger.Logger) *RepriceListener {
	if workers <= 0 {
		workers = 4
	}
	return &RepriceListener{
		consumer: consumer,
		uc:       uc,
		workers:  workers,
		logger:   log,
	}
}

func (l *RepriceListener) Start(ctx context.Context) {
	l.logger.Info("starting reprice listener", zap.Int("workers", l.workers))

	jobs := make(chan repricer.RepriceEvent)
	var wg sync.WaitGroup
	for i := 0; i < l.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for event := range jobs {
				l.handle(ctx, event)
			}
		}()
	}

	for {
		select {
		case <-ctx.Done():
			close(jobs)
			wg.Wait()
			l.logger.Info("stopping reprice listener")
			return
		default:
			msg, err := l.consumer.ReadMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					close(jobs)
					wg.Wait()
					return
				}
				l.logger.Error("failed to read kafka message", zap.Error(err))
				time.Sleep(time.Second)
				continue
			}

			var event repricer.RepriceEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				l.logger.Error("failed to unmarshal reprice event", zap.Error(err))
				continue
			}
			if event.EventType != repricer.EventTypeReprice {
				continue
			}

			select {
			case jobs <- event:
			case <-ctx.Done():
			}
		}
	}
}

func (l *RepriceListener) handle(ctx context.Context, event repricer.RepriceEvent) {
	err := l.uc.Recalculate(ctx, event.ProductID)
	if err == nil {
		return
	}

	var cfgErr *pricing.ConfigError
	switch {
	case errors.As(err, &cfgErr):
		// Unpriceable product: skip it, keep the pool alive.
		l.logger.Error("skipping product with broken pricing config",
			zap.String("product_id", event.ProductID), zap.Error(err))
	case errors.Is(err, model.ErrProductNotFound):
		l.logger.Warn("reprice event for unknown product",
			zap.String("product_id", event.ProductID))
	default:
		// Transient infrastructure failure; the queue's own redelivery
		// covers it.
		l.logger.Error("recalculation failed",
			zap.String("product_id", event.ProductID), zap.Error(err))
	}
}
