package derive

// Stock states in ladder order.
const (
	StockDiscontinued    = "Discontinued"
	StockOutOfStock      = "Out of Stock"
	StockReorderRequired = "Reorder Required"
	StockLowStock        = "Low Stock"
	StockInStock         = "In Stock"
)

// StockStatus walks the full ladder with strict precedence:
// Discontinued, then Out of Stock, then Reorder Required (only when a
// reorder level is set), then Low Stock, then In Stock. Every endpoint
// uses this one ladder.
func StockStatus(discontinued bool, unitsInStock, reorderLevel int) string {
	switch {
	case discontinued:
		return StockDiscontinued
	case unitsInStock <= 0:
		return StockOutOfStock
	case reorderLevel > 0 && unitsInStock <= reorderLevel:
		return StockReorderRequired
	case unitsInStock < 10:
		return StockLowStock
	default:
		return StockInStock
	}
}
