package validation

// ItemRequest is a single line item in a creation request.
// Price is optional and defaults to 0.
type ItemRequest struct {
	SKU   string  `json:"sku" validate:"required"`
	Qty   int     `json:"qty" validate:"required,gt=0"`
	Price float64 `json:"price" validate:"gte=0"`
}

// CreateOrderRequest is the payload for POST /orders.
type CreateOrderRequest struct {
	CustomerName string        `json:"customerName" validate:"required"`
	Items        []ItemRequest `json:"items" validate:"required,min=1,dive"`
}
