package competitor

import (
	"context"

	"github.com/shopspring/decimal"
)

// Price is one observed competitor price point. Products are matched by
// name+category; there is no shared identifier with the feed.
type Price struct {
	Name     string          `json:"name"`
	Category string          `json:"category"`
	Price    decimal.Decimal `json:"price"`
}

// Client fetches the competitor feed.
type Client interface {
	FetchPrices(ctx context.Context) ([]Price, error)
}

// UseCase reconciles the feed into the catalog. It only writes
// competitor_price; repricing happens on the next qualifying event.
type UseCase interface {
	SyncPrices(ctx context.Context) error
}
