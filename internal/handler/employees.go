package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"northwind/internal/apperr"
	"northwind/internal/model"
	"northwind/internal/query"
	"northwind/internal/repository"
	"northwind/internal/schema"
)

type EmployeesHandler struct {
	store *repository.Store
	reg   *schema.Registry
}

func NewEmployeesHandler(store *repository.Store, reg *schema.Registry) *EmployeesHandler {
	return &EmployeesHandler{store: store, reg: reg}
}

type employeeCreateRequest struct {
	LastName        string  `json:"lastName" binding:"required,max=20"`
	FirstName       string  `json:"firstName" binding:"required,max=10"`
	Title           *string `json:"title" binding:"omitempty,max=30"`
	TitleOfCourtesy *string `json:"titleOfCourtesy" binding:"omitempty,max=25"`
	BirthDate       *string `json:"birthDate" binding:"omitempty,datetime=2006-01-02"`
	HireDate        *string `json:"hireDate" binding:"omitempty,datetime=2006-01-02"`
	Address         *string `json:"address" binding:"omitempty,max=60"`
	City            *string `json:"city" binding:"omitempty,max=15"`
	Region          *string `json:"region" binding:"omitempty,max=15"`
	PostalCode      *string `json:"postalCode" binding:"omitempty,max=10"`
	Country         *string `json:"country" binding:"omitempty,max=15"`
	HomePhone       *string `json:"homePhone" binding:"omitempty,max=24"`
	Extension       *string `json:"extension" binding:"omitempty,max=4"`
	Notes           *string `json:"notes"`
	ReportsTo       *int    `json:"reportsTo" binding:"omitempty,gte=1"`
	PhotoPath       *string `json:"photoPath" binding:"omitempty,max=255"`
}

type employeeUpdateRequest struct {
	LastName        *string `json:"lastName" binding:"omitempty,min=1,max=20"`
	FirstName       *string `json:"firstName" binding:"omitempty,min=1,max=10"`
	Title           *string `json:"title" binding:"omitempty,max=30"`
	TitleOfCourtesy *string `json:"titleOfCourtesy" binding:"omitempty,max=25"`
	BirthDate       *string `json:"birthDate" binding:"omitempty,datetime=2006-01-02"`
	HireDate        *string `json:"hireDate" binding:"omitempty,datetime=2006-01-02"`
	Address         *string `json:"address" binding:"omitempty,max=60"`
	City            *string `json:"city" binding:"omitempty,max=15"`
	Region          *string `json:"region" binding:"omitempty,max=15"`
	PostalCode      *string `json:"postalCode" binding:"omitempty,max=10"`
	Country         *string `json:"country" binding:"omitempty,max=15"`
	HomePhone       *string `json:"homePhone" binding:"omitempty,max=24"`
	Extension       *string `json:"extension" binding:"omitempty,max=4"`
	Notes           *string `json:"notes"`
	ReportsTo       *int    `json:"reportsTo" binding:"omitempty,gte=1"`
	PhotoPath       *string `json:"photoPath" binding:"omitempty,max=255"`
}

// checkBirthDate mirrors the table CHECK so a bad date comes back as a
// field violation instead of a constraint error from the store.
func checkBirthDate(t *time.Time, now time.Time) *apperr.FieldError {
	if t == nil || t.Before(now) {
		return nil
	}
	return &apperr.FieldError{Field: "birthDate", Message: "must be a date in the past"}
}

func (h *EmployeesHandler) List(c *gin.Context) {
	ent := h.reg.Get("employees")
	spec, err := query.Parse(ent, c.Request.URL.Query())
	if err != nil {
		respondError(c, err)
		return
	}

	page, err := h.store.Employees.List(c.Request.Context(), spec)
	if err != nil {
		respondError(c, err)
		return
	}

	if err := h.attachManagers(c, spec.Includes, page.Items); err != nil {
		respondError(c, err)
		return
	}
	now := time.Now()
	for i := range page.Items {
		page.Items[i].Finalize(now)
	}
	respondPage(c, page)
}

func (h *EmployeesHandler) Get(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		respondError(c, err)
		return
	}
	emp, err := h.store.Employees.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	includes := query.ParseIncludes(h.reg.Get("employees"), c.Request.URL.Query())
	items := []model.Employee{emp}
	if err := h.attachManagers(c, includes, items); err != nil {
		respondError(c, err)
		return
	}
	items[0].Finalize(time.Now())
	respondData(c, http.StatusOK, items[0])
}

func (h *EmployeesHandler) attachManagers(c *gin.Context, includes []string, items []model.Employee) error {
	if !hasInclude(includes, "manager") {
		return nil
	}
	ids := make([]int, 0, len(items))
	for i := range items {
		if items[i].ReportsTo != nil {
			ids = append(ids, *items[i].ReportsTo)
		}
	}
	managers, err := h.store.Employees.ByIDs(c.Request.Context(), ids)
	if err != nil {
		return err
	}
	now := time.Now()
	for i := range items {
		if items[i].ReportsTo == nil {
			continue
		}
		if m, ok := managers[*items[i].ReportsTo]; ok {
			m.Finalize(now)
			items[i].Manager = &m
		}
	}
	return nil
}

// Hierarchy returns the full manager tree, roots first.
func (h *EmployeesHandler) Hierarchy(c *gin.Context) {
	roots, err := h.store.Employees.Hierarchy(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	now := time.Now()
	stack := append([]*model.Employee(nil), roots...)
	for len(stack) > 0 {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		node.Finalize(now)
		stack = append(stack, node.Reports...)
	}
	respondData(c, http.StatusOK, roots)
}

func (h *EmployeesHandler) Create(c *gin.Context) {
	var req employeeCreateRequest
	if err := bindJSON(c, &req); err != nil {
		respondError(c, err)
		return
	}

	var violations []apperr.FieldError
	addViolation := func(fe *apperr.FieldError) {
		if fe != nil {
			violations = append(violations, *fe)
		}
	}
	birthDate, fe := parseDate("birthDate", req.BirthDate)
	addViolation(fe)
	hireDate, fe := parseDate("hireDate", req.HireDate)
	addViolation(fe)
	addViolation(checkBirthDate(birthDate, time.Now()))
	if len(violations) > 0 {
		respondError(c, apperr.ValidationFailed(violations))
		return
	}

	emp := model.Employee{
		LastName:        req.LastName,
		FirstName:       req.FirstName,
		Title:           req.Title,
		TitleOfCourtesy: req.TitleOfCourtesy,
		BirthDate:       birthDate,
		HireDate:        hireDate,
		Address:         req.Address,
		City:            req.City,
		Region:          req.Region,
		PostalCode:      req.PostalCode,
		Country:         req.Country,
		HomePhone:       req.HomePhone,
		Extension:       req.Extension,
		Notes:           req.Notes,
		ReportsTo:       req.ReportsTo,
		PhotoPath:       req.PhotoPath,
	}
	if err := h.store.Employees.Create(c.Request.Context(), &emp); err != nil {
		respondError(c, err)
		return
	}
	emp.Finalize(time.Now())
	respondData(c, http.StatusCreated, emp)
}

func (h *EmployeesHandler) Update(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		respondError(c, err)
		return
	}
	var req employeeUpdateRequest
	if err := bindJSON(c, &req); err != nil {
		respondError(c, err)
		return
	}

	var violations []apperr.FieldError
	addViolation := func(fe *apperr.FieldError) {
		if fe != nil {
			violations = append(violations, *fe)
		}
	}

	set := map[string]any{}
	if req.LastName != nil {
		set["last_name"] = *req.LastName
	}
	if req.FirstName != nil {
		set["first_name"] = *req.FirstName
	}
	if req.Title != nil {
		set["title"] = *req.Title
	}
	if req.TitleOfCourtesy != nil {
		set["title_of_courtesy"] = *req.TitleOfCourtesy
	}
	if req.BirthDate != nil {
		t, fe := parseDate("birthDate", req.BirthDate)
		addViolation(fe)
		addViolation(checkBirthDate(t, time.Now()))
		if t != nil {
			set["birth_date"] = *t
		}
	}
	if req.HireDate != nil {
		t, fe := parseDate("hireDate", req.HireDate)
		addViolation(fe)
		if t != nil {
			set["hire_date"] = *t
		}
	}
	if req.Address != nil {
		set["address"] = *req.Address
	}
	if req.City != nil {
		set["city"] = *req.City
	}
	if req.Region != nil {
		set["region"] = *req.Region
	}
	if req.PostalCode != nil {
		set["postal_code"] = *req.PostalCode
	}
	if req.Country != nil {
		set["country"] = *req.Country
	}
	if req.HomePhone != nil {
		set["home_phone"] = *req.HomePhone
	}
	if req.Extension != nil {
		set["extension"] = *req.Extension
	}
	if req.Notes != nil {
		set["notes"] = *req.Notes
	}
	if req.ReportsTo != nil {
		set["reports_to"] = *req.ReportsTo
	}
	if req.PhotoPath != nil {
		set["photo_path"] = *req.PhotoPath
	}

	if len(violations) > 0 {
		respondError(c, apperr.ValidationFailed(violations))
		return
	}
	if len(set) == 0 {
		respondError(c, apperr.ValidationFailed([]apperr.FieldError{{Field: "body", Message: "no updatable fields"}}))
		return
	}

	updated, err := h.store.Employees.Update(c.Request.Context(), id, set)
	if err != nil {
		respondError(c, err)
		return
	}
	updated.Finalize(time.Now())
	respondData(c, http.StatusOK, updated)
}

func (h *EmployeesHandler) Delete(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		respondError(c, err)
		return
	}
	if err := h.store.Employees.Delete(c.Request.Context(), id, forceQuery(c)); err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, gin.H{"id": id, "deleted": true})
}
