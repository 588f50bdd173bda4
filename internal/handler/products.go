package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"northwind/internal/apperr"
	"northwind/internal/model"
	"northwind/internal/query"
	"northwind/internal/repository"
	"northwind/internal/schema"
)

type ProductsHandler struct {
	store *repository.Store
	reg   *schema.Registry
}

func NewProductsHandler(store *repository.Store, reg *schema.Registry) *ProductsHandler {
	return &ProductsHandler{store: store, reg: reg}
}

type productCreateRequest struct {
	ProductName     string           `json:"productName" binding:"required,max=40"`
	SupplierID      *int             `json:"supplierId" binding:"omitempty,gte=1"`
	CategoryID      *int             `json:"categoryId" binding:"omitempty,gte=1"`
	QuantityPerUnit *string          `json:"quantityPerUnit" binding:"omitempty,max=20"`
	UnitPrice       *decimal.Decimal `json:"unitPrice"`
	UnitsInStock    *int             `json:"unitsInStock" binding:"omitempty,gte=0"`
	UnitsOnOrder    *int             `json:"unitsOnOrder" binding:"omitempty,gte=0"`
	ReorderLevel    *int             `json:"reorderLevel" binding:"omitempty,gte=0"`
	Discontinued    bool             `json:"discontinued"`
}

type productUpdateRequest struct {
	ProductName     *string          `json:"productName" binding:"omitempty,min=1,max=40"`
	SupplierID      *int             `json:"supplierId" binding:"omitempty,gte=1"`
	CategoryID      *int             `json:"categoryId" binding:"omitempty,gte=1"`
	QuantityPerUnit *string          `json:"quantityPerUnit" binding:"omitempty,max=20"`
	UnitPrice       *decimal.Decimal `json:"unitPrice"`
	UnitsInStock    *int             `json:"unitsInStock" binding:"omitempty,gte=0"`
	UnitsOnOrder    *int             `json:"unitsOnOrder" binding:"omitempty,gte=0"`
	ReorderLevel    *int             `json:"reorderLevel" binding:"omitempty,gte=0"`
	Discontinued    *bool            `json:"discontinued"`
}

func (h *ProductsHandler) List(c *gin.Context) {
	ent := h.reg.Get("products")
	spec, err := query.Parse(ent, c.Request.URL.Query())
	if err != nil {
		respondError(c, err)
		return
	}

	page, err := h.store.Products.List(c.Request.Context(), spec)
	if err != nil {
		respondError(c, err)
		return
	}

	now := time.Now()
	if err := h.attachIncludes(c, spec.Includes, page.Items); err != nil {
		respondError(c, err)
		return
	}
	for i := range page.Items {
		page.Items[i].Finalize(now)
	}
	respondPage(c, page)
}

func (h *ProductsHandler) Get(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		respondError(c, err)
		return
	}
	p, err := h.store.Products.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	includes := query.ParseIncludes(h.reg.Get("products"), c.Request.URL.Query())
	items := []model.Product{p}
	if err := h.attachIncludes(c, includes, items); err != nil {
		respondError(c, err)
		return
	}
	items[0].Finalize(time.Now())
	respondData(c, http.StatusOK, items[0])
}

// attachIncludes resolves the category and supplier relations for a
// page of products with one batched query per relation.
func (h *ProductsHandler) attachIncludes(c *gin.Context, includes []string, items []model.Product) error {
	if hasInclude(includes, "category") {
		ids := make([]int, 0, len(items))
		for i := range items {
			if items[i].CategoryID != nil {
				ids = append(ids, *items[i].CategoryID)
			}
		}
		categories, err := h.store.Categories.ByIDs(c.Request.Context(), ids)
		if err != nil {
			return err
		}
		for i := range items {
			if items[i].CategoryID == nil {
				continue
			}
			if cat, ok := categories[*items[i].CategoryID]; ok {
				items[i].Category = &cat
			}
		}
	}
	if hasInclude(includes, "supplier") {
		ids := make([]int, 0, len(items))
		for i := range items {
			if items[i].SupplierID != nil {
				ids = append(ids, *items[i].SupplierID)
			}
		}
		suppliers, err := h.store.Suppliers.ByIDs(c.Request.Context(), ids)
		if err != nil {
			return err
		}
		for i := range items {
			if items[i].SupplierID == nil {
				continue
			}
			if sup, ok := suppliers[*items[i].SupplierID]; ok {
				items[i].Supplier = &sup
			}
		}
	}
	return nil
}

func (h *ProductsHandler) Create(c *gin.Context) {
	var req productCreateRequest
	if err := bindJSON(c, &req); err != nil {
		respondError(c, err)
		return
	}
	if fe := checkNonNegative("unitPrice", req.UnitPrice); fe != nil {
		respondError(c, apperr.ValidationFailed([]apperr.FieldError{*fe}))
		return
	}

	p := model.Product{
		ProductName:     req.ProductName,
		SupplierID:      req.SupplierID,
		CategoryID:      req.CategoryID,
		QuantityPerUnit: req.QuantityPerUnit,
		UnitPrice:       req.UnitPrice,
		Discontinued:    req.Discontinued,
	}
	if req.UnitsInStock != nil {
		p.UnitsInStock = *req.UnitsInStock
	}
	if req.UnitsOnOrder != nil {
		p.UnitsOnOrder = *req.UnitsOnOrder
	}
	if req.ReorderLevel != nil {
		p.ReorderLevel = *req.ReorderLevel
	}

	if err := h.store.Products.Create(c.Request.Context(), &p); err != nil {
		respondError(c, err)
		return
	}
	p.Finalize(time.Now())
	respondData(c, http.StatusCreated, p)
}

func (h *ProductsHandler) Update(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		respondError(c, err)
		return
	}
	var req productUpdateRequest
	if err := bindJSON(c, &req); err != nil {
		respondError(c, err)
		return
	}
	if fe := checkNonNegative("unitPrice", req.UnitPrice); fe != nil {
		respondError(c, apperr.ValidationFailed([]apperr.FieldError{*fe}))
		return
	}

	set := map[string]any{}
	if req.ProductName != nil {
		set["product_name"] = *req.ProductName
	}
	if req.SupplierID != nil {
		set["supplier_id"] = *req.SupplierID
	}
	if req.CategoryID != nil {
		set["category_id"] = *req.CategoryID
	}
	if req.QuantityPerUnit != nil {
		set["quantity_per_unit"] = *req.QuantityPerUnit
	}
	if req.UnitPrice != nil {
		set["unit_price"] = *req.UnitPrice
	}
	if req.UnitsInStock != nil {
		set["units_in_stock"] = *req.UnitsInStock
	}
	if req.UnitsOnOrder != nil {
		set["units_on_order"] = *req.UnitsOnOrder
	}
	if req.ReorderLevel != nil {
		set["reorder_level"] = *req.ReorderLevel
	}
	if req.Discontinued != nil {
		set["discontinued"] = *req.Discontinued
	}
	if len(set) == 0 {
		respondError(c, apperr.ValidationFailed([]apperr.FieldError{{Field: "body", Message: "no updatable fields"}}))
		return
	}

	updated, err := h.store.Products.Update(c.Request.Context(), id, set)
	if err != nil {
		respondError(c, err)
		return
	}
	updated.Finalize(time.Now())
	respondData(c, http.StatusOK, updated)
}

func (h *ProductsHandler) Delete(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		respondError(c, err)
		return
	}
	if err := h.store.Products.Delete(c.Request.Context(), id, forceQuery(c)); err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, gin.H{"id": id, "deleted": true})
}
