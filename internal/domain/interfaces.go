package domain

import "context"

// CartClient provides the cart verbs against the storefront API.
// Implementations inject identity headers per request, so the same
// client serves guest and authenticated sessions.
type CartClient interface {
	// GetCart fetches the full cart for the current identity.
	GetCart(ctx context.Context) ([]CartLine, error)

	// SetItemQuantity sets the absolute quantity for one product line.
	// A quantity of zero removes the line server-side.
	SetItemQuantity(ctx context.Context, productID string, quantity int) error

	// ClearCart removes every line. Authenticated sessions only.
	ClearCart(ctx context.Context) error
}

// CatalogClient provides read access to the product catalog.
type CatalogClient interface {
	GetProducts(ctx context.Context) ([]Product, error)
}

// CheckoutClient turns the current cart into an order.
type CheckoutClient interface {
	PlaceOrder(ctx context.Context) (orderID string, err error)
}
