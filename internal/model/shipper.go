package model

type Shipper struct {
	ShipperID   int     `json:"shipperId"`
	CompanyName string  `json:"companyName"`
	Phone       *string `json:"phone"`

	// derived
	OrderCount *int64 `json:"orderCount,omitempty"`
}
