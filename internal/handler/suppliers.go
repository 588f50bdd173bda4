package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"northwind/internal/apperr"
	"northwind/internal/model"
	"northwind/internal/query"
	"northwind/internal/repository"
	"northwind/internal/schema"
)

type SuppliersHandler struct {
	store *repository.Store
	reg   *schema.Registry
}

func NewSuppliersHandler(store *repository.Store, reg *schema.Registry) *SuppliersHandler {
	return &SuppliersHandler{store: store, reg: reg}
}

type supplierCreateRequest struct {
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
	HomePage     *string `json:"homePage"`
}

type supplierUpdateRequest struct {
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
	HomePage     *string `json:"homePage"`
}

func (h *SuppliersHandler) List(c *gin.Context) {
	ent := h.reg.Get("suppliers")
	spec, err := query.Parse(ent, c.Request.URL.Query())
	if err != nil {
		respondError(c, err)
		return
	}

	page, err := h.store.Suppliers.List(c.Request.Context(), spec)
	if err != nil {
		respondError(c, err)
		return
	}

	ids := make([]int, len(page.Items))
	for i := range page.Items {
		ids[i] = page.Items[i].SupplierID
	}
	counts, err := h.store.Suppliers.ProductCounts(c.Request.Context(), ids)
	if err != nil {
		respondError(c, err)
		return
	}
	for i := range page.Items {
		n := counts[page.Items[i].SupplierID]
		page.Items[i].ProductCount = &n
	}
	respondPage(c, page)
}

func (h *SuppliersHandler) Get(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		respondError(c, err)
		return
	}
	sup, err := h.store.Suppliers.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	counts, err := h.store.Suppliers.ProductCounts(c.Request.Context(), []int{id})
	if err != nil {
		respondError(c, err)
		return
	}
	n := counts[id]
	sup.ProductCount = &n
	respondData(c, http.StatusOK, sup)
}

func (h *SuppliersHandler) Create(c *gin.Context) {
	var req supplierCreateRequest
	if err := bindJSON(c, &req); err != nil {
		respondError(c, err)
		return
	}

	sup := model.Supplier{
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
		HomePage:     req.HomePage,
	}
	if err := h.store.Suppliers.Create(c.Request.Context(), &sup); err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusCreated, sup)
}

func (h *SuppliersHandler) Update(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		respondError(c, err)
		return
	}
	var req supplierUpdateRequest
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
	if req.HomePage != nil {
		set["home_page"] = *req.HomePage
	}
	if len(set) == 0 {
		respondError(c, apperr.ValidationFailed([]apperr.FieldError{{Field: "body", Message: "no updatable fields"}}))
		return
	}

	updated, err := h.store.Suppliers.Update(c.Request.Context(), id, set)
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, updated)
}

func (h *SuppliersHandler) Delete(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		respondError(c, err)
		return
	}
	if err := h.store.Suppliers.Delete(c.Request.Context(), id, forceQuery(c)); err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, gin.H{"id": id, "deleted": true})
}
