package model

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"northwind/internal/derive"
)

var now = time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)

func TestOrderFinalize_WithDetails(t *testing.T) {
	ordered := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	o := Order{
		OrderID:   10248,
		OrderDate: &ordered,
		Freight:   decimal.RequireFromString("4.25"),
		Details: []OrderDetail{
			{UnitPrice: decimal.RequireFromString("10.00"), Quantity: 3, Discount: 0.10},
			{UnitPrice: decimal.RequireFromString("12.50"), Quantity: 1},
		},
	}
	o.Finalize(now)

	if o.Status != derive.StatusProcessing {
		t.Errorf("status = %s, want processing", o.Status)
	}
	if o.Details[0].LineTotal == nil || !o.Details[0].LineTotal.Equal(decimal.RequireFromString("27.00")) {
		t.Errorf("first line total = %v, want 27.00", o.Details[0].LineTotal)
	}
	// 27.00 + 12.50 + 4.25
	if o.OrderTotal == nil || !o.OrderTotal.Equal(decimal.RequireFromString("43.75")) {
		t.Errorf("order total = %v, want 43.75", o.OrderTotal)
	}
}

func TestOrderFinalize_WithoutDetails(t *testing.T) {
	o := Order{Freight: decimal.RequireFromString("4.25")}
	o.Finalize(now)
	if o.Status != derive.StatusPending {
		t.Errorf("status = %s, want pending", o.Status)
	}
	if o.OrderTotal != nil {
		t.Errorf("order total must stay unset without details, got %v", o.OrderTotal)
	}

	o.SetDetailSum(decimal.RequireFromString("100.00"))
	if o.OrderTotal == nil || !o.OrderTotal.Equal(decimal.RequireFromString("104.25")) {
		t.Errorf("order total from store sum = %v, want 104.25", o.OrderTotal)
	}
}

func TestProductFinalize(t *testing.T) {
	price := decimal.RequireFromString("18.00")
	catID, supID := 1, 2
	p := Product{UnitPrice: &price, CategoryID: &catID, SupplierID: &supID, UnitsInStock: 5}
	p.Finalize(now)

	if p.StockStatus != derive.StockLowStock {
		t.Errorf("stock status = %s, want Low Stock", p.StockStatus)
	}
	if p.HealthScore == nil || *p.HealthScore != 75 {
		t.Errorf("health score = %v, want 75", p.HealthScore)
	}
}

func TestEmployeeFinalize_NilDatesStayNil(t *testing.T) {
	var e Employee
	e.Finalize(now)
	if e.Age != nil || e.YearsOfService != nil {
		t.Errorf("derived fields must stay nil without dates: %+v", e)
	}

	birth := time.Date(1990, 6, 15, 0, 0, 0, 0, time.UTC)
	hire := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	e = Employee{BirthDate: &birth, HireDate: &hire}
	e.Finalize(now)
	if e.Age == nil || *e.Age != 36 {
		t.Errorf("age = %v, want 36", e.Age)
	}
	if e.YearsOfService == nil || *e.YearsOfService != 6 {
		t.Errorf("years of service = %v, want 6", e.YearsOfService)
	}
}

func TestCustomerFinalize(t *testing.T) {
	var c Customer
	c.Finalize(now)
	if c.Tier != "" {
		t.Errorf("tier must stay empty without spend, got %s", c.Tier)
	}

	spend := decimal.RequireFromString("60000")
	c.TotalSpent = &spend
	c.Finalize(now)
	if c.Tier != derive.TierPlatinum {
		t.Errorf("tier = %s, want Platinum", c.Tier)
	}
}
