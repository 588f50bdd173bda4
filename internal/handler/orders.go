package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"northwind/internal/apperr"
	"northwind/internal/model"
	"northwind/internal/query"
	"northwind/internal/repository"
	"northwind/internal/schema"
)

type OrdersHandler struct {
	store *repository.Store
	reg   *schema.Registry
}

func NewOrdersHandler(store *repository.Store, reg *schema.Registry) *OrdersHandler {
	return &OrdersHandler{store: store, reg: reg}
}

type orderDetailRequest struct {
	ProductID int              `json:"productId" binding:"required,gte=1"`
	UnitPrice *decimal.Decimal `json:"unitPrice"`
	Quantity  int              `json:"quantity" binding:"required,gte=1"`
	Discount  float64          `json:"discount" binding:"gte=0,lte=1"`
}

type orderCreateRequest struct {
	CustomerID     string               `json:"customerId" binding:"required,len=5"`
	EmployeeID     *int                 `json:"employeeId" binding:"omitempty,gte=1"`
	OrderDate      *string              `json:"orderDate" binding:"omitempty,datetime=2006-01-02"`
	RequiredDate   *string              `json:"requiredDate" binding:"omitempty,datetime=2006-01-02"`
	ShippedDate    *string              `json:"shippedDate" binding:"omitempty,datetime=2006-01-02"`
	ShipVia        *int                 `json:"shipVia" binding:"omitempty,gte=1"`
	Freight        *decimal.Decimal     `json:"freight"`
	ShipName       *string              `json:"shipName" binding:"omitempty,max=40"`
	ShipAddress    *string              `json:"shipAddress" binding:"omitempty,max=60"`
	ShipCity       *string              `json:"shipCity" binding:"omitempty,max=15"`
	ShipRegion     *string              `json:"shipRegion" binding:"omitempty,max=15"`
	ShipPostalCode *string              `json:"shipPostalCode" binding:"omitempty,max=10"`
	ShipCountry    *string              `json:"shipCountry" binding:"omitempty,max=15"`
	Details        []orderDetailRequest `json:"details" binding:"required,min=1,dive"`
}

// orderUpdateRequest: scalar fields update in place; a details list, when
// present, replaces the line items wholesale.
type orderUpdateRequest struct {
	CustomerID     *string               `json:"customerId" binding:"omitempty,len=5"`
	EmployeeID     *int                  `json:"employeeId" binding:"omitempty,gte=1"`
	OrderDate      *string               `json:"orderDate" binding:"omitempty,datetime=2006-01-02"`
	RequiredDate   *string               `json:"requiredDate" binding:"omitempty,datetime=2006-01-02"`
	ShippedDate    *string               `json:"shippedDate" binding:"omitempty,datetime=2006-01-02"`
	ShipVia        *int                  `json:"shipVia" binding:"omitempty,gte=1"`
	Freight        *decimal.Decimal      `json:"freight"`
	ShipName       *string               `json:"shipName" binding:"omitempty,max=40"`
	ShipAddress    *string               `json:"shipAddress" binding:"omitempty,max=60"`
	ShipCity       *string               `json:"shipCity" binding:"omitempty,max=15"`
	ShipRegion     *string               `json:"shipRegion" binding:"omitempty,max=15"`
	ShipPostalCode *string               `json:"shipPostalCode" binding:"omitempty,max=10"`
	ShipCountry    *string               `json:"shipCountry" binding:"omitempty,max=15"`
	Details        *[]orderDetailRequest `json:"details" binding:"omitempty,min=1,dive"`
}

func (h *OrdersHandler) List(c *gin.Context) {
	ent := h.reg.Get("orders")
	spec, err := query.Parse(ent, c.Request.URL.Query())
	if err != nil {
		respondError(c, err)
		return
	}

	page, err := h.store.Orders.List(c.Request.Context(), spec)
	if err != nil {
		respondError(c, err)
		return
	}

	if err := h.decorate(c, spec.Includes, page.Items); err != nil {
		respondError(c, err)
		return
	}
	respondPage(c, page)
}

func (h *OrdersHandler) Get(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		respondError(c, err)
		return
	}
	o, err := h.store.Orders.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	includes := query.ParseIncludes(h.reg.Get("orders"), c.Request.URL.Query())
	items := []model.Order{o}
	if err := h.decorate(c, includes, items); err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, items[0])
}

// decorate attaches the requested includes, derives status per order
// and fills orderTotal: from loaded detail rows when those are included,
// otherwise from one grouped SUM over the page. Loaded detail lines
// carry their product record.
func (h *OrdersHandler) decorate(c *gin.Context, includes []string, items []model.Order) error {
	ctx := c.Request.Context()
	ids := make([]int, len(items))
	for i := range items {
		ids[i] = items[i].OrderID
	}
	now := time.Now()

	withDetails := hasInclude(includes, "details")
	var sums map[int]decimal.Decimal
	if withDetails {
		detailsByOrder, err := h.store.Orders.DetailsFor(ctx, ids)
		if err != nil {
			return err
		}
		productIDs := make([]int, 0, 8)
		seen := map[int]bool{}
		for _, details := range detailsByOrder {
			for _, d := range details {
				if !seen[d.ProductID] {
					seen[d.ProductID] = true
					productIDs = append(productIDs, d.ProductID)
				}
			}
		}
		products, err := h.store.Products.ByIDs(ctx, productIDs)
		if err != nil {
			return err
		}
		for i := range items {
			details := detailsByOrder[items[i].OrderID]
			for j := range details {
				if p, ok := products[details[j].ProductID]; ok {
					p.Finalize(now)
					details[j].Product = &p
				}
			}
			items[i].Details = details
		}
	} else {
		var err error
		sums, err = h.store.Orders.DetailSums(ctx, ids)
		if err != nil {
			return err
		}
	}
	if hasInclude(includes, "customer") {
		keys := make([]string, 0, len(items))
		for i := range items {
			if items[i].CustomerID != nil {
				keys = append(keys, *items[i].CustomerID)
			}
		}
		customers, err := h.store.Customers.ByIDs(ctx, keys)
		if err != nil {
			return err
		}
		for i := range items {
			if items[i].CustomerID == nil {
				continue
			}
			if cust, ok := customers[*items[i].CustomerID]; ok {
				items[i].Customer = &cust
			}
		}
	}
	if hasInclude(includes, "employee") {
		keys := make([]int, 0, len(items))
		for i := range items {
			if items[i].EmployeeID != nil {
				keys = append(keys, *items[i].EmployeeID)
			}
		}
		employees, err := h.store.Employees.ByIDs(ctx, keys)
		if err != nil {
			return err
		}
		for i := range items {
			if items[i].EmployeeID == nil {
				continue
			}
			if emp, ok := employees[*items[i].EmployeeID]; ok {
				emp.Finalize(now)
				items[i].Employee = &emp
			}
		}
	}
	if hasInclude(includes, "shipper") {
		keys := make([]int, 0, len(items))
		for i := range items {
			if items[i].ShipVia != nil {
				keys = append(keys, *items[i].ShipVia)
			}
		}
		shippers, err := h.store.Shippers.ByIDs(ctx, keys)
		if err != nil {
			return err
		}
		for i := range items {
			if items[i].ShipVia == nil {
				continue
			}
			if sh, ok := shippers[*items[i].ShipVia]; ok {
				items[i].Shipper = &sh
			}
		}
	}

	for i := range items {
		items[i].Finalize(now)
		if !withDetails {
			items[i].SetDetailSum(sums[items[i].OrderID])
		}
	}
	return nil
}

func (h *OrdersHandler) Create(c *gin.Context) {
	var req orderCreateRequest
	if err := bindJSON(c, &req); err != nil {
		respondError(c, err)
		return
	}

	o, err := h.buildOrder(&req)
	if err != nil {
		respondError(c, err)
		return
	}

	if err := h.store.Orders.Create(c.Request.Context(), o); err != nil {
		respondError(c, err)
		return
	}
	o.Finalize(time.Now())
	respondData(c, http.StatusCreated, o)
}

// buildOrder converts the request body, collecting every value
// violation the binding layer cannot express.
func (h *OrdersHandler) buildOrder(req *orderCreateRequest) (*model.Order, error) {
	var violations []apperr.FieldError
	addViolation := func(fe *apperr.FieldError) {
		if fe != nil {
			violations = append(violations, *fe)
		}
	}

	orderDate, fe := parseDate("orderDate", req.OrderDate)
	addViolation(fe)
	requiredDate, fe := parseDate("requiredDate", req.RequiredDate)
	addViolation(fe)
	shippedDate, fe := parseDate("shippedDate", req.ShippedDate)
	addViolation(fe)
	addViolation(checkNonNegative("freight", req.Freight))
	for i := range req.Details {
		addViolation(checkNonNegative(detailField(i, "unitPrice"), req.Details[i].UnitPrice))
	}
	if len(violations) > 0 {
		return nil, apperr.ValidationFailed(violations)
	}

	if orderDate == nil {
		today := time.Now().Truncate(24 * time.Hour)
		orderDate = &today
	}

	o := &model.Order{
		CustomerID:     &req.CustomerID,
		EmployeeID:     req.EmployeeID,
		OrderDate:      orderDate,
		RequiredDate:   requiredDate,
		ShippedDate:    shippedDate,
		ShipVia:        req.ShipVia,
		ShipName:       req.ShipName,
		ShipAddress:    req.ShipAddress,
		ShipCity:       req.ShipCity,
		ShipRegion:     req.ShipRegion,
		ShipPostalCode: req.ShipPostalCode,
		ShipCountry:    req.ShipCountry,
		Details:        buildDetails(req.Details),
	}
	if req.Freight != nil {
		o.Freight = *req.Freight
	}
	return o, nil
}

func buildDetails(reqs []orderDetailRequest) []model.OrderDetail {
	details := make([]model.OrderDetail, len(reqs))
	for i, d := range reqs {
		details[i] = model.OrderDetail{
			ProductID: d.ProductID,
			Quantity:  d.Quantity,
			Discount:  d.Discount,
		}
		if d.UnitPrice != nil {
			details[i].UnitPrice = *d.UnitPrice
		}
	}
	return details
}

func detailField(i int, name string) string {
	return "details[" + strconv.Itoa(i) + "]." + name
}

func (h *OrdersHandler) Update(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		respondError(c, err)
		return
	}
	var req orderUpdateRequest
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
	if req.CustomerID != nil {
		set["customer_id"] = *req.CustomerID
	}
	if req.EmployeeID != nil {
		set["employee_id"] = *req.EmployeeID
	}
	if req.OrderDate != nil {
		t, fe := parseDate("orderDate", req.OrderDate)
		addViolation(fe)
		if t != nil {
			set["order_date"] = *t
		}
	}
	if req.RequiredDate != nil {
		t, fe := parseDate("requiredDate", req.RequiredDate)
		addViolation(fe)
		if t != nil {
			set["required_date"] = *t
		}
	}
	if req.ShippedDate != nil {
		t, fe := parseDate("shippedDate", req.ShippedDate)
		addViolation(fe)
		if t != nil {
			set["shipped_date"] = *t
		}
	}
	if req.ShipVia != nil {
		set["ship_via"] = *req.ShipVia
	}
	if req.Freight != nil {
		addViolation(checkNonNegative("freight", req.Freight))
		set["freight"] = *req.Freight
	}
	if req.ShipName != nil {
		set["ship_name"] = *req.ShipName
	}
	if req.ShipAddress != nil {
		set["ship_address"] = *req.ShipAddress
	}
	if req.ShipCity != nil {
		set["ship_city"] = *req.ShipCity
	}
	if req.ShipRegion != nil {
		set["ship_region"] = *req.ShipRegion
	}
	if req.ShipPostalCode != nil {
		set["ship_postal_code"] = *req.ShipPostalCode
	}
	if req.ShipCountry != nil {
		set["ship_country"] = *req.ShipCountry
	}

	replace := req.Details != nil
	var details []model.OrderDetail
	if replace {
		for i := range *req.Details {
			addViolation(checkNonNegative(detailField(i, "unitPrice"), (*req.Details)[i].UnitPrice))
		}
		details = buildDetails(*req.Details)
	}

	if len(violations) > 0 {
		respondError(c, apperr.ValidationFailed(violations))
		return
	}
	if len(set) == 0 && !replace {
		respondError(c, apperr.ValidationFailed([]apperr.FieldError{{Field: "body", Message: "no updatable fields"}}))
		return
	}

	updated, err := h.store.Orders.Update(c.Request.Context(), id, set, details, replace)
	if err != nil {
		respondError(c, err)
		return
	}

	now := time.Now()
	updated.Finalize(now)
	if !replace {
		sums, err := h.store.Orders.DetailSums(c.Request.Context(), []int{id})
		if err != nil {
			respondError(c, err)
			return
		}
		updated.SetDetailSum(sums[id])
	}
	respondData(c, http.StatusOK, updated)
}

func (h *OrdersHandler) Delete(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		respondError(c, err)
		return
	}
	if err := h.store.Orders.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, gin.H{"id": id, "deleted": true})
}
