// Package model holds the entity records the API serves. Stored
// columns map one to one; derived fields are filled by Finalize as an
// explicit step after fetching, never during the read itself.
package model

import (
	"time"

	"github.com/shopspring/decimal"

	"northwind/internal/derive"
)

type Customer struct {
	CustomerID   string  `json:"customerId"`
	CompanyName  string  `json:"companyName"`
	ContactName  *string `json:"contactName"`
	ContactTitle *string `json:"contactTitle"`
	Address      *string `json:"address"`
	City         *string `json:"city"`
	Region       *string `json:"region"`
	PostalCode   *string `json:"postalCode"`
	Country      *string `json:"country"`
	Phone        *string `json:"phone"`
	Fax          *string `json:"fax"`

	// derived
	OrderCount *int64           `json:"orderCount,omitempty"`
	TotalSpent *decimal.Decimal `json:"totalSpent,omitempty"`
	Tier       string           `json:"tier,omitempty"`

	// includes
	Orders []Order `json:"orders,omitempty"`
}

// Finalize computes the tier once total spend is known.
func (c *Customer) Finalize(now time.Time) {
	if c.TotalSpent != nil {
		c.Tier = derive.Tier(*c.TotalSpent)
	}
}
