package model

import "github.com/shopspring/decimal"

const (
	OrderPending   = "pending"
	OrderConfirmed = "confirmed"
	OrderCancelled = "cancelled"
	OrderFailed    = "failed"
)

// Order is the immutable snapshot of a cart at conversion time. Line items
// freeze the unit price; nothing re-reads the product price later. The only
// mutation an order ever sees is the confirmed -> cancelled transition.
type Order struct {
	BaseModel
	CartID        string          `db:"cart_id" json:"cart_id"`
	Status        string          `db:"status" json:"status"`
	TotalPrice    decimal.Decimal `db:"total_price" json:"total_price"`
	TotalQuantity int64           `db:"total_quantity" json:"total_quantity"`
	Items         []OrderItem     `db:"-" json:"items"`
}

type OrderItem struct {
	ID        string          `db:"id" json:"id"`
	OrderID   string          `db:"order_id" json:"order_id"`
	ProductID string          `db:"product_id" json:"product_id"`
	Quantity  int64           `db:"quantity" json:"quantity"`
	// Price is the unit price at the moment of reservation.
	Price decimal.Decimal `db:"price" json:"price"`
}
