package domain

// CartLine represents one row of the cart as held by the local cache.
type CartLine struct {
	ID                string  // Product identifier, string-encoded for stable lookups
	Name              string  // Display name, denormalized from the product payload at load time
	Quantity          int     // Quantity currently believed to be in the cart
	Price             float64 // Unit price in effect (post-discount) at last load
	AvailableQuantity int     // Server-reported remaining stock at last load
	InStock           bool    // Derived as AvailableQuantity > 0 at load time; informational only
}

// Product represents a catalog entry
type Product struct {
	ID                string
	Name              string
	Description       string
	Price             float64
	AvailableQuantity int
	InStock           bool
}

// CartSnapshot is an immutable view of the cart cache handed to subscribers.
type CartSnapshot struct {
	Items  []CartLine
	Locked bool
}

// TotalPrice returns the sum of line prices times quantities.
func (s CartSnapshot) TotalPrice() float64 {
	var total float64
	for _, line := range s.Items {
		total += line.Price * float64(line.Quantity)
	}
	return total
}

// TotalQuantity returns the number of units across all lines.
func (s CartSnapshot) TotalQuantity() int {
	var total int
	for _, line := range s.Items {
		total += line.Quantity
	}
	return total
}
