package itests

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"northwind/internal/schema"
)

// Мини-проверки самой сложной части реестра: связи и derived-фильтры.
// Registry уже загружен в TestMain, здесь только сверяем проводку.
func TestRegistrySanity(t *testing.T) {
	want := []string{
		"categories", "customers", "employees", "order_details",
		"orders", "products", "shippers", "suppliers",
	}
	if diff := cmp.Diff(want, testReg.Names()); diff != "" {
		t.Fatalf("entity names mismatch (-want +got):\n%s", diff)
	}

	orders := testReg.Get("orders")
	if orders == nil {
		t.Fatal("orders entity missing in registry")
	}
	if len(orders.Relations) != 4 {
		t.Fatalf("orders relations = %d, want customer/employee/shipper/details", len(orders.Relations))
	}
	if rel := orders.GetRelation("details"); rel == nil || rel.Kind != schema.HasMany || rel.Target().Table != "order_details" {
		t.Fatalf("orders.details must be has_many into order_details, got %#v", rel)
	}
	if f := orders.GetFilter("status"); f == nil || f.Derived != "order_status" || len(f.Values) != 4 {
		t.Fatalf("orders.status must be the derived enum filter, got %#v", f)
	}

	employees := testReg.Get("employees")
	if rel := employees.GetRelation("manager"); rel == nil || rel.Target() != employees {
		t.Fatalf("employees.manager must point back at employees, got %#v", rel)
	}
	if f := employees.GetFilter("minAge"); f == nil || f.Derived != "min_age" {
		t.Fatalf("employees.minAge must be derived, got %#v", f)
	}

	customers := testReg.Get("customers")
	if customers.KeyType != schema.TypeString {
		t.Fatalf("customers key_type = %q, want string (CHAR(5) ids)", customers.KeyType)
	}
	if f := customers.GetFilter("country"); f == nil || f.Op != schema.OpIn {
		t.Fatalf("customers.country must accept comma lists, got %#v", f)
	}

	products := testReg.Get("products")
	if len(products.Dependents) != 1 || products.Dependents[0].OnForce != schema.ForceCascade {
		t.Fatalf("products must cascade order_details on force, got %#v", products.Dependents)
	}
	if col, ok := products.SortColumn("unitPrice"); !ok || col != "unit_price" {
		t.Fatalf("products.unitPrice sort maps to %q, want unit_price", col)
	}
}
