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

type ShippersHandler struct {
	store *repository.Store
	reg   *schema.Registry
}

func NewShippersHandler(store *repository.Store, reg *schema.Registry) *ShippersHandler {
	return &ShippersHandler{store: store, reg: reg}
}

type shipperCreateRequest struct {
	CompanyName string  `json:"companyName" binding:"required,max=40"`
	Phone       *string `json:"phone" binding:"omitempty,max=24"`
}

type shipperUpdateRequest struct {
	CompanyName *string `json:"companyName" binding:"omitempty,min=1,max=40"`
	Phone       *string `json:"phone" binding:"omitempty,max=24"`
}

func (h *ShippersHandler) List(c *gin.Context) {
	ent := h.reg.Get("shippers")
	spec, err := query.Parse(ent, c.Request.URL.Query())
	if err != nil {
		respondError(c, err)
		return
	}

	page, err := h.store.Shippers.List(c.Request.Context(), spec)
	if err != nil {
		respondError(c, err)
		return
	}

	ids := make([]int, len(page.Items))
	for i := range page.Items {
		ids[i] = page.Items[i].ShipperID
	}
	counts, err := h.store.Shippers.OrderCounts(c.Request.Context(), ids)
	if err != nil {
		respondError(c, err)
		return
	}
	for i := range page.Items {
		n := counts[page.Items[i].ShipperID]
		page.Items[i].OrderCount = &n
	}
	respondPage(c, page)
}

func (h *ShippersHandler) Get(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		respondError(c, err)
		return
	}
	sh, err := h.store.Shippers.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	counts, err := h.store.Shippers.OrderCounts(c.Request.Context(), []int{id})
	if err != nil {
		respondError(c, err)
		return
	}
	n := counts[id]
	sh.OrderCount = &n
	respondData(c, http.StatusOK, sh)
}

func (h *ShippersHandler) Create(c *gin.Context) {
	var req shipperCreateRequest
	if err := bindJSON(c, &req); err != nil {
		respondError(c, err)
		return
	}

	sh := model.Shipper{
		CompanyName: req.CompanyName,
		Phone:       req.Phone,
	}
	if err := h.store.Shippers.Create(c.Request.Context(), &sh); err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusCreated, sh)
}

func (h *ShippersHandler) Update(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		respondError(c, err)
		return
	}
	var req shipperUpdateRequest
	if err := bindJSON(c, &req); err != nil {
		respondError(c, err)
		return
	}

	set := map[string]any{}
	if req.CompanyName != nil {
		set["company_name"] = *req.CompanyName
	}
	if req.Phone != nil {
		set["phone"] = *req.Phone
	}
	if len(set) == 0 {
		respondError(c, apperr.ValidationFailed([]apperr.FieldError{{Field: "body", Message: "no updatable fields"}}))
		return
	}

	updated, err := h.store.Shippers.Update(c.Request.Context(), id, set)
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, updated)
}

func (h *ShippersHandler) Delete(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		respondError(c, err)
		return
	}
	if err := h.store.Shippers.Delete(c.Request.Context(), id, forceQuery(c)); err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, gin.H{"id": id, "deleted": true})
}
