package api

import (
	"bytes"
	"encoding/json"
	"strconv"

	"github.com/tiketto/tiketto/internal/domain"
)

// Server error codes carried in the error envelope
const (
	errCodeStockExceeded = "stock_exceeded"
	errCodeCartLocked    = "cart_locked"
)

// errorEnvelope is the API's failure payload.
type errorEnvelope struct {
	Error struct {
		Code      string `json:"code"`
		Message   string `json:"message"`
		Available int    `json:"available"`
	} `json:"error"`
}

// flexInt decodes an integer that the API may send as a number or a
// numeric string (guest cart rows round-trip quantity as text).
type flexInt int

func (f *flexInt) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) >= 2 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		n, err := strconv.Atoi(s)
		if err != nil {
			return err
		}
		*f = flexInt(n)
		return nil
	}

	// Some backends render integers as floats (3.0); accept either.
	var n float64
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = flexInt(int(n))
	return nil
}

// cartResponse is the GET /api/cart envelope.
type cartResponse struct {
	Items []rawCartItem `json:"items"`
}

// rawCartItem is one row as the server returns it. The line ID is
// nullable for guest carts, which is why ProductID is the identity
// the client keys everything on.
type rawCartItem struct {
	ID                *int64     `json:"id"`
	ProductID         int64      `json:"product_id"`
	Quantity          flexInt    `json:"quantity"`
	UnitPrice         float64    `json:"unit_price"`
	AvailableQuantity int        `json:"available_quantity"`
	InStock           bool       `json:"in_stock"`
	Product           rawProduct `json:"product"`
}

type rawProduct struct {
	ID                int64   `json:"id"`
	Name              string  `json:"name"`
	Description       string  `json:"description"`
	Price             float64 `json:"price"`
	AvailableQuantity int     `json:"available_quantity"`
	InStock           bool    `json:"in_stock"`
}

type productsResponse struct {
	Products []rawProduct `json:"products"`
}

type quantityRequest struct {
	Quantity int `json:"quantity"`
}

type orderResponse struct {
	OrderID string `json:"order_id"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
}

// mapCartLines normalizes raw rows into cart lines. The line identity
// is product_id (string-encoded), never the server line id, because
// guest carts have no stable line id. InStock is re-derived from the
// available count rather than trusted from the payload.
func mapCartLines(items []rawCartItem) []domain.CartLine {
	lines := make([]domain.CartLine, 0, len(items))
	for _, item := range items {
		lines = append(lines, domain.CartLine{
			ID:                strconv.FormatInt(item.ProductID, 10),
			Name:              item.Product.Name,
			Quantity:          int(item.Quantity),
			Price:             item.UnitPrice,
			AvailableQuantity: item.AvailableQuantity,
			InStock:           item.AvailableQuantity > 0,
		})
	}
	return lines
}

func mapProducts(raw []rawProduct) []domain.Product {
	products := make([]domain.Product, 0, len(raw))
	for _, p := range raw {
		products = append(products, domain.Product{
			ID:                strconv.FormatInt(p.ID, 10),
			Name:              p.Name,
			Description:       p.Description,
			Price:             p.Price,
			AvailableQuantity: p.AvailableQuantity,
			InStock:           p.AvailableQuantity > 0,
		})
	}
	return products
}
