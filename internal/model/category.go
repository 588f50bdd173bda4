package model

type Category struct {
	CategoryID   int     `json:"categoryId"`
	CategoryName string  `json:"categoryName"`
	Description  *string `json:"description"`

	// derived
	ProductCount *int64 `json:"productCount,omitempty"`
}
