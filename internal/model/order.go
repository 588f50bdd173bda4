package model

import (
	"time"

	"github.com/shopspring/decimal"

	"northwind/internal/derive"
)

type Order struct {
	OrderID        int             `json:"orderId"`
	CustomerID     *string         `json:"customerId"`
	EmployeeID     *int            `json:"employeeId"`
	OrderDate      *time.Time      `json:"orderDate"`
	RequiredDate   *time.Time      `json:"requiredDate"`
	ShippedDate    *time.Time      `json:"shippedDate"`
	ShipVia        *int            `json:"shipVia"`
	Freight        decimal.Decimal `json:"freight"`
	ShipName       *string         `json:"shipName"`
	ShipAddress    *string         `json:"shipAddress"`
	ShipCity       *string         `json:"shipCity"`
	ShipRegion     *string         `json:"shipRegion"`
	ShipPostalCode *string         `json:"shipPostalCode"`
	ShipCountry    *string         `json:"shipCountry"`

	// derived
	Status     string           `json:"status,omitempty"`
	OrderTotal *decimal.Decimal `json:"orderTotal,omitempty"`

	// includes
	Customer *Customer     `json:"customer,omitempty"`
	Employee *Employee     `json:"employee,omitempty"`
	Shipper  *Shipper      `json:"shipper,omitempty"`
	Details  []OrderDetail `json:"details,omitempty"`
}

type OrderDetail struct {
	OrderID   int             `json:"orderId"`
	ProductID int             `json:"productId"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Quantity  int             `json:"quantity"`
	Discount  float64         `json:"discount"`

	// derived
	LineTotal *decimal.Decimal `json:"lineTotal,omitempty"`

	// includes
	Product *Product `json:"product,omitempty"`
}

// Finalize derives the status and, when details are loaded, their line
// totals and the order total.
func (o *Order) Finalize(now time.Time) {
	o.Status = derive.OrderStatus(o.OrderDate, o.ShippedDate, o.RequiredDate, now)
	if o.Details == nil {
		return
	}
	lineTotals := make([]decimal.Decimal, len(o.Details))
	for i := range o.Details {
		o.Details[i].Finalize()
		lineTotals[i] = *o.Details[i].LineTotal
	}
	total := derive.OrderTotal(lineTotals, o.Freight)
	o.OrderTotal = &total
}

// SetDetailSum fills the order total from a store-side SUM of line
// totals, for pages where the detail rows themselves are not loaded.
func (o *Order) SetDetailSum(sum decimal.Decimal) {
	total := sum.Add(o.Freight)
	o.OrderTotal = &total
}

// Finalize computes the line total.
func (d *OrderDetail) Finalize() {
	lt := derive.LineTotal(d.UnitPrice, d.Quantity, d.Discount)
	d.LineTotal = &lt
}
