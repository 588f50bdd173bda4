package model

import (
	"time"

	"github.com/shopspring/decimal"

	"northwind/internal/derive"
)

type Product struct {
	ProductID       int              `json:"productId"`
	ProductName     string           `json:"productName"`
	SupplierID      *int             `json:"supplierId"`
	CategoryID      *int             `json:"categoryId"`
	QuantityPerUnit *string          `json:"quantityPerUnit"`
	UnitPrice       *decimal.Decimal `json:"unitPrice"`
	UnitsInStock    int              `json:"unitsInStock"`
	UnitsOnOrder    int              `json:"unitsOnOrder"`
	ReorderLevel    int              `json:"reorderLevel"`
	Discontinued    bool             `json:"discontinued"`

	// derived
	StockStatus string `json:"stockStatus,omitempty"`
	HealthScore *int   `json:"healthScore,omitempty"`

	// includes
	Category *Category `json:"category,omitempty"`
	Supplier *Supplier `json:"supplier,omitempty"`
}

// Finalize derives the stock status and health score.
func (p *Product) Finalize(now time.Time) {
	p.StockStatus = derive.StockStatus(p.Discontinued, p.UnitsInStock, p.ReorderLevel)
	score := derive.HealthScore(derive.HealthInput{
		Discontinued: p.Discontinued,
		UnitsInStock: p.UnitsInStock,
		UnitPrice:    p.UnitPrice,
		HasCategory:  p.CategoryID != nil,
		HasSupplier:  p.SupplierID != nil,
	})
	p.HealthScore = &score
}
