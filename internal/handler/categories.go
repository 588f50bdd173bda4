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

type CategoriesHandler struct {
	store *repository.Store
	reg   *schema.Registry
}

func NewCategoriesHandler(store *repository.Store, reg *schema.Registry) *CategoriesHandler {
	return &CategoriesHandler{store: store, reg: reg}
}

type categoryCreateRequest struct {
	CategoryName string  `json:"categoryName" binding:"required,max=15"`
	Description  *string `json:"description"`
}

type categoryUpdateRequest struct {
	CategoryName *string `json:"categoryName" binding:"omitempty,min=1,max=15"`
	Description  *string `json:"description"`
}

func (h *CategoriesHandler) List(c *gin.Context) {
	ent := h.reg.Get("categories")
	spec, err := query.Parse(ent, c.Request.URL.Query())
	if err != nil {
		respondError(c, err)
		return
	}

	page, err := h.store.Categories.List(c.Request.Context(), spec)
	if err != nil {
		respondError(c, err)
		return
	}

	ids := make([]int, len(page.Items))
	for i := range page.Items {
		ids[i] = page.Items[i].CategoryID
	}
	counts, err := h.store.Categories.ProductCounts(c.Request.Context(), ids)
	if err != nil {
		respondError(c, err)
		return
	}
	for i := range page.Items {
		n := counts[page.Items[i].CategoryID]
		page.Items[i].ProductCount = &n
	}
	respondPage(c, page)
}

func (h *CategoriesHandler) Get(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		respondError(c, err)
		return
	}
	cat, err := h.store.Categories.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	counts, err := h.store.Categories.ProductCounts(c.Request.Context(), []int{id})
	if err != nil {
		respondError(c, err)
		return
	}
	n := counts[id]
	cat.ProductCount = &n
	respondData(c, http.StatusOK, cat)
}

func (h *CategoriesHandler) Create(c *gin.Context) {
	var req categoryCreateRequest
	if err := bindJSON(c, &req); err != nil {
		respondError(c, err)
		return
	}

	cat := model.Category{
		CategoryName: req.CategoryName,
		Description:  req.Description,
	}
	if err := h.store.Categories.Create(c.Request.Context(), &cat); err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusCreated, cat)
}

func (h *CategoriesHandler) Update(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		respondError(c, err)
		return
	}
	var req categoryUpdateRequest
	if err := bindJSON(c, &req); err != nil {
		respondError(c, err)
		return
	}

	set := map[string]any{}
	if req.CategoryName != nil {
		set["category_name"] = *req.CategoryName
	}
	if req.Description != nil {
		set["description"] = *req.Description
	}
	if len(set) == 0 {
		respondError(c, apperr.ValidationFailed([]apperr.FieldError{{Field: "body", Message: "no updatable fields"}}))
		return
	}

	updated, err := h.store.Categories.Update(c.Request.Context(), id, set)
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, updated)
}

func (h *CategoriesHandler) Delete(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		respondError(c, err)
		return
	}
	if err := h.store.Categories.Delete(c.Request.Context(), id, forceQuery(c)); err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, gin.H{"id": id, "deleted": true})
}
