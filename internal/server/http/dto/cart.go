package dto

import "github.com/polkiloo/marketclient/internal/domain/model"

// AddItemRequest adds quantity units of a product. Quantity defaults to one.
type AddItemRequest struct {
	ProductID string            `json:"product_id"`
	UnitPrice int64             `json:"unit_price"`
	Quantity  *int              `json:"quantity,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// UpdateQuantityRequest sets the quantity of an existing line.
type UpdateQuantityRequest struct {
	Quantity int `json:"quantity"`
}

// CartLineResponse describes one cart line.
type CartLineResponse struct {
	ProductID string            `json:"product_id"`
	UnitPrice int64             `json:"unit_price"`
	Quantity  int               `json:"quantity"`
	Subtotal  int64             `json:"subtotal"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// CartResponse describes the cart with derived totals.
type CartResponse struct {
	Lines []CartLineResponse `json:"lines"`
	Count int                `json:"count"`
	Total int64              `json:"total"`
}

// NewCartResponse maps a cart snapshot.
func NewCartResponse(cart model.Cart) CartResponse {
	lines := make([]CartLineResponse, 0, len(cart.Lines))
	for _, l := range cart.Lines {
		lines = append(lines, CartLineResponse{
			ProductID: l.ProductID,
			UnitPrice: l.UnitPrice,
			Quantity:  l.Quantity,
			Subtotal:  l.Subtotal(),
			Metadata:  l.Metadata,
		})
	}
	return CartResponse{Lines: lines, Count: cart.Count(), Total: cart.Total()}
}
