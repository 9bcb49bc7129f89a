package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for cart operations
var (
	// ErrCartNotFound indicates the server holds no cart for this identity
	ErrCartNotFound = errors.New("cart not found")

	// ErrCartLocked indicates a checkout transaction is in flight
	ErrCartLocked = errors.New("cart is locked by a pending checkout")

	// ErrAuthFailed indicates the bearer token was rejected
	ErrAuthFailed = errors.New("authentication token is invalid")

	// ErrServerUnreachable indicates the storefront API did not respond
	ErrServerUnreachable = errors.New("storefront server is unreachable")

	// ErrEmptyCart indicates checkout was attempted on an empty cart
	ErrEmptyCart = errors.New("cart is empty")
)

// StockError reports that a requested quantity exceeds available stock.
// Available carries the server-known remaining count for the message.
type StockError struct {
	Available int
}

func (e *StockError) Error() string {
	return fmt.Sprintf("requested quantity exceeds available stock (%d left)", e.Available)
}
