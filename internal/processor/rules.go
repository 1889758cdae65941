package processor

import "github.com/imrishuroy/go-order-triage/internal/orders"

// Triage thresholds.
const (
	largeOrderItemCount = 10
	highValueTotal      = 10000
)

// Processing notes recorded alongside the chosen status.
const (
	noteConfirmed = "Order processed successfully."
	noteReview    = "Large order requires manual review"
	noteApproval  = "High-value order requires approval"
)

// Triage decides the post-processing status for an order. The value check
// runs last and overrides the item-count check when both thresholds are
// exceeded: approval outranks review.
func Triage(itemCount int, total float64) (status, notes string) {
	status, notes = orders.StatusConfirmed, noteConfirmed
	if itemCount > largeOrderItemCount {
		status, notes = orders.StatusPendingReview, noteReview
	}
	if total > highValueTotal {
		status, notes = orders.StatusPendingApproval, noteApproval
	}
	return status, notes
}
