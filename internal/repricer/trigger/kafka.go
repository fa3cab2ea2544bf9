package trigger

import (
	"context"
	"encoding/json"
	"time"

	"github.com/shoplite/pricing-service/internal/pkg/broker"
	"github.com/shoplite/pricing-service/internal/repricer"
)

// KafkaTrigger publishes reprice events keyed by product id, so the queue
// preserves per-product ordering.
type KafkaTrigger struct {
	producer *broker.KafkaProducer
}

func NewKafkaTrigger(producer *broker.KafkaProducer) *KafkaTrigger {
	return &KafkaTrigger{producer: producer}
}

func (t *KafkaTrigger) Enqueue(ctx context.Context, productID string) error {
	event := repricer.RepriceEvent{
		EventType: repricer.EventTypeReprice,
		ProductID: productID,
		Timestamp: time.Now().UTC(),
	}
	value, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return t.producer.Publish(ctx, []byte(productID), value)
}
