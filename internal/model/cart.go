package model

// Cart is a mutable pre-order container. Items are unique per product;
// re-adding a product merges into the existing line.
type Cart struct {
	BaseModel
	Items []CartItem `db:"-" json:"items"`
}

type CartItem struct {
	ID        string `db:"id" json:"id"`
	CartID    string `db:"cart_id" json:"cart_id"`
	ProductID string `db:"product_id" json:"product_id"`
	Quantity  int64  `db:"quantity" json:"quantity"`
}

// FindItem returns the cart line for productID, or nil.
func (c *Cart) FindItem(productID string) *CartItem {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			return &c.Items[i]
		}
	}
	return nil
}
