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

type CustomersHandler struct {
	store *repository.Store
	reg   *schema.Registry
}

func NewCustomersHandler(store *repository.Store, reg *schema.Registry) *CustomersHandler {
	return &CustomersHandler{store: store, reg: reg}
}

type customerCreateRequest struct {
	CustomerID   string  `json:"customerId" binding:"required,len=5"`
	CompanyName  string  `json:"companyName" binding:"required,max=40"`
	ContactName  *string `json:"contactName" binding:"omitempty,max=30"`
	ContactTitle *string `json:"contactTitle" binding:"omitempty,max=30"`
	Address      *string `json:"address" binding:"omitempty,max=60"`
	City         *string `json:"city" binding:"omitempty,max=15"`
	Region       *string `json:"region" binding:"omitempty,max=15"`
	PostalCode   *string `json:"postalCode" binding:"omitempty,max=10"`
	Country      *string `json:"country" binding:"omitempty,max=15"`
	Phone        *string `json:"phone" binding:"omitempty,max=24"`
	Fax          *string `json:"fax" binding:"omitempty,max=24"`
}

// customerUpdateRequest carries only the fields present in the body.
// The business key itself is immutable.
type customerUpdateRequest struct {
	CompanyName  *string `json:"companyName" binding:"omitempty,min=1,max=40"`
	ContactName  *string `json:"contactName" binding:"omitempty,max=30"`
	ContactTitle *string `json:"contactTitle" binding:"omitempty,max=30"`
	Address      *string `json:"address" binding:"omitempty,max=60"`
	City         *string `json:"city" binding:"omitempty,max=15"`
	Region       *string `json:"region" binding:"omitempty,max=15"`
	PostalCode   *string `json:"postalCode" binding:"omitempty,max=10"`
	Country      *string `json:"country" binding:"omitempty,max=15"`
	Phone        *string `json:"phone" binding:"omitempty,max=24"`
	Fax          *string `json:"fax" binding:"omitempty,max=24"`
}

func (h *CustomersHandler) List(c *gin.Context) {
	ent := h.reg.Get("customers")
	spec, err := query.Parse(ent, c.Request.URL.Query())
	if err != nil {
		respondError(c, err)
		return
	}

	page, err := h.store.Customers.List(c.Request.Context(), spec)
	if err != nil {
		respondError(c, err)
		return
	}

	ids := make([]string, len(page.Items))
	for i := range page.Items {
		ids[i] = page.Items[i].CustomerID
	}
	counts, err := h.store.Customers.OrderCounts(c.Request.Context(), ids)
	if err != nil {
		respondError(c, err)
		return
	}

	now := time.Now()
	var ordersByCustomer map[string][]model.Order
	if spec.HasInclude("orders") {
		ordersByCustomer, err = h.store.Customers.OrdersFor(c.Request.Context(), ids)
		if err != nil {
			respondError(c, err)
			return
		}
	}

	for i := range page.Items {
		item := &page.Items[i]
		n := counts[item.CustomerID]
		item.OrderCount = &n
		if ordersByCustomer != nil {
			list := ordersByCustomer[item.CustomerID]
			for j := range list {
				list[j].Finalize(now)
			}
			item.Orders = list
		}
		item.Finalize(now)
	}
	respondPage(c, page)
}

func (h *CustomersHandler) Get(c *gin.Context) {
	id := c.Param("id")
	cust, err := h.store.Customers.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	// spend drives both the orderCount and the tier on the detail view
	spend, orderCount, err := h.store.Customers.Spend(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	cust.TotalSpent = &spend
	cust.OrderCount = &orderCount

	now := time.Now()
	includes := query.ParseIncludes(h.reg.Get("customers"), c.Request.URL.Query())
	if hasInclude(includes, "orders") {
		byCustomer, err := h.store.Customers.OrdersFor(c.Request.Context(), []string{id})
		if err != nil {
			respondError(c, err)
			return
		}
		list := byCustomer[id]
		for j := range list {
			list[j].Finalize(now)
		}
		cust.Orders = list
	}

	cust.Finalize(now)
	respondData(c, http.StatusOK, cust)
}

func (h *CustomersHandler) Create(c *gin.Context) {
	var req customerCreateRequest
	if err := bindJSON(c, &req); err != nil {
		respondError(c, err)
		return
	}

	cust := model.Customer{
		CustomerID:   req.CustomerID,
		CompanyName:  req.CompanyName,
		ContactName:  req.ContactName,
		ContactTitle: req.ContactTitle,
		Address:      req.Address,
		City:         req.City,
		Region:       req.Region,
		PostalCode:   req.PostalCode,
		Country:      req.Country,
		Phone:        req.Phone,
		Fax:          req.Fax,
	}
	if err := h.store.Customers.Create(c.Request.Context(), &cust); err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusCreated, cust)
}

func (h *CustomersHandler) Update(c *gin.Context) {
	id := c.Param("id")
	var req customerUpdateRequest
	if err := bindJSON(c, &req); err != nil {
		respondError(c, err)
		return
	}

	set := map[string]any{}
	if req.CompanyName != nil {
		set["company_name"] = *req.CompanyName
	}
	if req.ContactName != nil {
		set["contact_name"] = *req.ContactName
	}
	if req.ContactTitle != nil {
		set["contact_title"] = *req.ContactTitle
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
	if req.Phone != nil {
		set["phone"] = *req.Phone
	}
	if req.Fax != nil {
		set["fax"] = *req.Fax
	}
	if len(set) == 0 {
		respondError(c, apperr.ValidationFailed([]apperr.FieldError{{Field: "body", Message: "no updatable fields"}}))
		return
	}

	updated, err := h.store.Customers.Update(c.Request.Context(), id, set)
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, updated)
}

func (h *CustomersHandler) Delete(c *gin.Context) {
	id := c.Param("id")
	if err := h.store.Customers.Delete(c.Request.Context(), id, forceQuery(c)); err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, gin.H{"id": id, "deleted": true})
}
