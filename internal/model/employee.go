package model

import (
	"time"

	"northwind/internal/derive"
)

type Employee struct {
	EmployeeID      int        `json:"employeeId"`
	LastName        string     `json:"lastName"`
	FirstName       string     `json:"firstName"`
	Title           *string    `json:"title"`
	TitleOfCourtesy *string    `json:"titleOfCourtesy"`
	BirthDate       *time.Time `json:"birthDate"`
	HireDate        *time.Time `json:"hireDate"`
	Address         *string    `json:"address"`
	City            *string    `json:"city"`
	Region          *string    `json:"region"`
	PostalCode      *string    `json:"postalCode"`
	Country         *string    `json:"country"`
	HomePhone       *string    `json:"homePhone"`
	Extension       *string    `json:"extension"`
	Notes           *string    `json:"notes"`
	ReportsTo       *int       `json:"reportsTo"`
	PhotoPath       *string    `json:"photoPath"`

	// derived
	Age            *int `json:"age,omitempty"`
	YearsOfService *int `json:"yearsOfService,omitempty"`

	// includes; Reports doubles as the children list in the hierarchy tree
	Manager *Employee   `json:"manager,omitempty"`
	Reports []*Employee `json:"reports,omitempty"`
}

// Finalize derives age and years of service from the date columns.
func (e *Employee) Finalize(now time.Time) {
	if e.BirthDate != nil {
		age := derive.Age(*e.BirthDate, now)
		e.Age = &age
	}
	if e.HireDate != nil {
		yos := derive.YearsOfService(*e.HireDate, now)
		e.YearsOfService = &yos
	}
}
