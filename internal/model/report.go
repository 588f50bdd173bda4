package model

import "github.com/shopspring/decimal"

// Report rows are aggregate results computed in the store; nothing here
// is derived client-side.

type TopCustomerRow struct {
	CustomerID  string          `json:"customerId"`
	CompanyName string          `json:"companyName"`
	OrderCount  int64           `json:"orderCount"`
	TotalSpend  decimal.Decimal `json:"totalSpend"`
}

type CategorySalesRow struct {
	CategoryID   int             `json:"categoryId"`
	CategoryName string          `json:"categoryName"`
	ProductCount int64           `json:"productCount"`
	UnitsSold    int64           `json:"unitsSold"`
	Revenue      decimal.Decimal `json:"revenue"`
}

type YearSalesRow struct {
	Year       int             `json:"year"`
	OrderCount int64           `json:"orderCount"`
	Revenue    decimal.Decimal `json:"revenue"`
	Freight    decimal.Decimal `json:"freight"`
}

type SupplierStatsRow struct {
	SupplierID     int             `json:"supplierId"`
	CompanyName    string          `json:"companyName"`
	ProductCount   int64           `json:"productCount"`
	UnitsInStock   int64           `json:"unitsInStock"`
	InventoryValue decimal.Decimal `json:"inventoryValue"`
	AveragePrice   decimal.Decimal `json:"averagePrice"`
}

type EmployeeSalesRow struct {
	EmployeeID int             `json:"employeeId"`
	LastName   string          `json:"lastName"`
	FirstName  string          `json:"firstName"`
	OrderCount int64           `json:"orderCount"`
	Revenue    decimal.Decimal `json:"revenue"`
}
