package model

import (
	"errors"
	"fmt"
)

// The reservation workflow's error taxonomy. Everything here is a terminal
// business outcome for the caller: nothing in the core retries these.
var (
	ErrProductNotFound    = errors.New("product not found")
	ErrCartNotFound       = errors.New("cart not found")
	ErrCartItemNotFound   = errors.New("cart item not found")
	ErrOrderNotFound      = errors.New("order not found")
	ErrCartEmpty          = errors.New("cart is empty")
	ErrOrderAlreadyExists = errors.New("order has already been created for this cart")
	ErrAlreadyCancelled   = errors.New("order has already been cancelled")

	// ErrInvalidRelease means a release would drive total_reserved
	// negative. That only happens when an earlier reservation was lost or
	// double-released, so it is surfaced loudly, never corrected silently.
	ErrInvalidRelease = errors.New("release would underflow reserved inventory")

	ErrInvalidQuantity = errors.New("quantity must be positive")
)

// InsufficientInventoryError is the expected business outcome of a Place
// that asks for more than the remaining capacity.
type InsufficientInventoryError struct {
	ProductID string
}

func (e *InsufficientInventoryError) Error() string {
	return fmt.Sprintf("insufficient inventory for product %s", e.ProductID)
}

// IsInsufficientInventory reports whether err is a capacity failure.
func IsInsufficientInventory(err error) bool {
	var target *InsufficientInventoryError
	return errors.As(err, &target)
}
