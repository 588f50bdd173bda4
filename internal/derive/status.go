package derive

import "time"

// Order statuses derived from the three date columns.
const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusShipped    = "shipped"
	StatusOverdue    = "overdue"
)

// OrderStatus picks the displayed status: shipped wins, then overdue
// (past required date and not shipped), then processing, then pending.
func OrderStatus(orderDate, shippedDate, requiredDate *time.Time, now time.Time) string {
	switch {
	case shippedDate != nil:
		return StatusShipped
	case requiredDate != nil && requiredDate.Before(now):
		return StatusOverdue
	case orderDate != nil:
		return StatusProcessing
	default:
		return StatusPending
	}
}
