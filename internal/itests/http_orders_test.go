package itests

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/shopspring/decimal"

	"northwind/internal/model"
)

func orderIDs(items []model.Order) []int {
	ids := make([]int, len(items))
	for i, o := range items {
		ids[i] = o.OrderID
	}
	return ids
}

func TestOrderStatusFilters(t *testing.T) {
	var shipped []model.Order
	getOK(t, "/api/orders?status=shipped", &shipped)
	if got := orderIDs(shipped); len(got) != 1 || got[0] != 1 {
		t.Errorf("shipped ids = %v, want [1]", got)
	}

	// both unshipped fixture orders are long past their required date
	var overdue []model.Order
	getOK(t, "/api/orders?status=overdue", &overdue)
	if got := orderIDs(overdue); len(got) != 2 || got[0] != 2 || got[1] != 3 {
		t.Errorf("overdue ids = %v, want [2 3] (order_date DESC)", got)
	}
	for _, o := range overdue {
		if o.Status != "overdue" {
			t.Errorf("order %d status = %q, want overdue", o.OrderID, o.Status)
		}
	}
}

func TestOrderListTotalsWithoutDetails(t *testing.T) {
	var items []model.Order
	env := getOK(t, "/api/orders", &items)
	if env.Pagination.Total != 3 {
		t.Fatalf("total = %d, want 3", env.Pagination.Total)
	}

	want := map[int]string{1: "425.96", 2: "62.50", 3: "211.97"}
	for _, o := range items {
		if len(o.Details) != 0 {
			t.Errorf("order %d carries details without includeDetails", o.OrderID)
		}
		if o.OrderTotal == nil {
			t.Errorf("order %d has no orderTotal", o.OrderID)
			continue
		}
		if exp := decimal.RequireFromString(want[o.OrderID]); !o.OrderTotal.Equal(exp) {
			t.Errorf("order %d total = %v, want %s", o.OrderID, o.OrderTotal, exp)
		}
	}
}

func TestOrderGetWithIncludes(t *testing.T) {
	var o model.Order
	getOK(t, "/api/orders/1?includeDetails=true&includeCustomer=true&includeShipper=true", &o)

	if o.Status != "shipped" {
		t.Errorf("status = %q, want shipped", o.Status)
	}
	if o.Customer == nil || o.Customer.CompanyName != "Alfreds Futterkiste" {
		t.Errorf("customer = %+v, want Alfreds Futterkiste", o.Customer)
	}
	if o.Shipper == nil || o.Shipper.CompanyName != "Speedy Express" {
		t.Errorf("shipper = %+v, want Speedy Express", o.Shipper)
	}
	if len(o.Details) != 2 {
		t.Fatalf("details = %d rows, want 2", len(o.Details))
	}
	if p := o.Details[0].Product; p == nil || p.ProductName != "Chai" {
		t.Errorf("line 1 product = %+v, want Chai", p)
	}
	if lt := o.Details[0].LineTotal; lt == nil || !lt.Equal(decimal.RequireFromString("216.00")) {
		t.Errorf("line 1 total = %v, want 216.00", lt)
	}
	if lt := o.Details[1].LineTotal; lt == nil || !lt.Equal(decimal.RequireFromString("180.50")) {
		t.Errorf("line 2 total = %v, want 180.50", lt)
	}
	if o.OrderTotal == nil || !o.OrderTotal.Equal(decimal.RequireFromString("425.96")) {
		t.Errorf("orderTotal = %v, want 425.96", o.OrderTotal)
	}
}

// A detail row without a price takes the product's current list price.
func TestOrderCreateAndDelete(t *testing.T) {
	status, body := httpDo(t, http.MethodPost, "/api/orders",
		`{"customerId":"ANATR","employeeId":3,"orderDate":"2026-01-15","details":[{"productId":1,"quantity":2}]}`)
	if status != http.StatusCreated {
		t.Fatalf("status = %d, want 201 (body %s)", status, body)
	}
	var o model.Order
	decodeSuccess(t, body, &o)

	if o.OrderID <= 3 {
		t.Fatalf("orderId = %d, want a fresh id", o.OrderID)
	}
	if len(o.Details) != 1 || !o.Details[0].UnitPrice.Equal(decimal.RequireFromString("18.00")) {
		t.Errorf("details = %+v, want list price 18.00 filled in", o.Details)
	}
	if o.OrderTotal == nil || !o.OrderTotal.Equal(decimal.RequireFromString("36.00")) {
		t.Errorf("orderTotal = %v, want 36.00", o.OrderTotal)
	}
	if o.Status != "processing" {
		t.Errorf("status = %q, want processing", o.Status)
	}

	status, body = httpDo(t, http.MethodDelete, fmt.Sprintf("/api/orders/%d", o.OrderID), "")
	if status != http.StatusOK {
		t.Fatalf("delete: status = %d (body %s)", status, body)
	}
	if n := countRows(t, "orders"); n != 3 {
		t.Errorf("orders count = %d after cleanup, want 3", n)
	}
	if n := countRows(t, "order_details"); n != 4 {
		t.Errorf("order_details count = %d after cleanup, want 4", n)
	}
}

// One bad line item must roll the whole create back.
func TestOrderCreateAtomicity(t *testing.T) {
	status, body := httpDo(t, http.MethodPost, "/api/orders",
		`{"customerId":"ALFKI","details":[{"productId":1,"quantity":1},{"productId":999,"quantity":1}]}`)
	if status != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400 (body %s)", status, body)
	}
	env := decodeError(t, body)
	if len(env.Error.Errors) != 1 || env.Error.Errors[0].Field != "details[1].productId" {
		t.Errorf("errors = %+v, want just details[1].productId", env.Error.Errors)
	}

	if n := countRows(t, "orders"); n != 3 {
		t.Errorf("orders count = %d, order row leaked from aborted tx", n)
	}
	if n := countRows(t, "order_details"); n != 4 {
		t.Errorf("order_details count = %d, detail rows leaked from aborted tx", n)
	}
}

func TestOrderCreateChecksCatalogState(t *testing.T) {
	status, body := httpDo(t, http.MethodPost, "/api/orders",
		`{"customerId":"ALFKI","details":[{"productId":5,"quantity":1},{"productId":6,"quantity":1}]}`)
	if status != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400 (body %s)", status, body)
	}
	env := decodeError(t, body)
	if len(env.Error.Errors) != 2 {
		t.Fatalf("errors = %+v, want discontinued + stock violations", env.Error.Errors)
	}
	if env.Error.Errors[0].Field != "details[0].productId" {
		t.Errorf("first violation field = %q, want details[0].productId", env.Error.Errors[0].Field)
	}
	if env.Error.Errors[1].Field != "details[1].quantity" {
		t.Errorf("second violation field = %q, want details[1].quantity", env.Error.Errors[1].Field)
	}
}

// PUT with a details list swaps the line items wholesale; scalar-only
// PUT leaves them untouched and still reports the total.
func TestOrderUpdateAndReplaceDetails(t *testing.T) {
	status, body := httpDo(t, http.MethodPost, "/api/orders",
		`{"customerId":"ANATR","orderDate":"2026-02-01","details":[{"productId":3,"quantity":2}]}`)
	if status != http.StatusCreated {
		t.Fatalf("create: status = %d (body %s)", status, body)
	}
	var o model.Order
	decodeSuccess(t, body, &o)
	path := fmt.Sprintf("/api/orders/%d", o.OrderID)

	status, body = httpDo(t, http.MethodPut, path, `{"shipName":"Ana Trujillo"}`)
	if status != http.StatusOK {
		t.Fatalf("scalar update: status = %d (body %s)", status, body)
	}
	var updated model.Order
	decodeSuccess(t, body, &updated)
	if updated.ShipName == nil || *updated.ShipName != "Ana Trujillo" {
		t.Errorf("shipName = %v, want updated", updated.ShipName)
	}
	if updated.OrderTotal == nil || !updated.OrderTotal.Equal(decimal.RequireFromString("20.00")) {
		t.Errorf("orderTotal = %v, want 20.00 from untouched details", updated.OrderTotal)
	}

	status, body = httpDo(t, http.MethodPut, path, `{"details":[{"productId":4,"quantity":2}]}`)
	if status != http.StatusOK {
		t.Fatalf("replace details: status = %d (body %s)", status, body)
	}
	var replaced model.Order
	decodeSuccess(t, body, &replaced)
	if len(replaced.Details) != 1 || replaced.Details[0].ProductID != 4 {
		t.Fatalf("details = %+v, want single product 4 row", replaced.Details)
	}
	if !replaced.Details[0].UnitPrice.Equal(decimal.RequireFromString("22.00")) {
		t.Errorf("unitPrice = %v, want list price 22.00", replaced.Details[0].UnitPrice)
	}
	if replaced.OrderTotal == nil || !replaced.OrderTotal.Equal(decimal.RequireFromString("44.00")) {
		t.Errorf("orderTotal = %v, want 44.00 after replacement", replaced.OrderTotal)
	}

	status, body = httpDo(t, http.MethodDelete, path, "")
	if status != http.StatusOK {
		t.Fatalf("cleanup: status = %d (body %s)", status, body)
	}
	if n := countRows(t, "order_details"); n != 4 {
		t.Errorf("order_details count = %d after cleanup, want 4", n)
	}
}

func TestOrderDateIntervalFilter(t *testing.T) {
	var items []model.Order
	getOK(t, "/api/orders?minDate=1996-01-01&maxDate=1996-12-31", &items)
	if got := orderIDs(items); len(got) != 2 || got[0] != 3 || got[1] != 1 {
		t.Errorf("1996 ids = %v, want [3 1] (order_date DESC)", got)
	}
}
