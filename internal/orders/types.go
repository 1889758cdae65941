package orders

import "time"

// Order statuses. PENDING is the only initial state; the processor moves
// an order to exactly one of CONFIRMED, PENDING_REVIEW or PENDING_APPROVAL.
// CANCELLED is a valid stored value but nothing in this service produces it.
const (
	StatusPending         = "PENDING"
	StatusConfirmed       = "CONFIRMED"
	StatusPendingReview   = "PENDING_REVIEW"
	StatusPendingApproval = "PENDING_APPROVAL"
	StatusCancelled       = "CANCELLED"
)

// ValidStatus reports whether s is one of the known status values.
func ValidStatus(s string) bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusPendingReview, StatusPendingApproval, StatusCancelled:
		return true
	}
	return false
}

// Item is a single order line item.
type Item struct {
	SKU   string  `json:"sku" dynamodbav:"sku"`
	Qty   int     `json:"qty" dynamodbav:"qty"`
	Price float64 `json:"price" dynamodbav:"price"`
}

// Order is the item stored in the orders DynamoDB table, keyed by order_id.
// created_at doubles as the range key of the status GSI.
type Order struct {
	OrderID         string    `json:"id" dynamodbav:"order_id"`
	CustomerName    string    `json:"customerName" dynamodbav:"customer_name"`
	Items           []Item    `json:"items" dynamodbav:"items"`
	Status          string    `json:"status" dynamodbav:"status"`
	ProcessingNotes string    `json:"processingNotes,omitempty" dynamodbav:"processing_notes,omitempty"`
	CreatedAt       time.Time `json:"createdAt" dynamodbav:"created_at"`
	UpdatedAt       time.Time `json:"updatedAt" dynamodbav:"updated_at"`
}

// Total returns the derived order total, sum of qty*price over all items.
// It is computed at read time and never persisted.
func (o Order) Total() float64 {
	var sum float64
	for _, it := range o.Items {
		sum += float64(it.Qty) * it.Price
	}
	return sum
}
