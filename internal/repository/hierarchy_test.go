package repository

import (
	"strings"
	"testing"

	"northwind/internal/apperr"
	"northwind/internal/model"
)

func emp(id int, last string, reportsTo *int) model.Employee {
	return model.Employee{EmployeeID: id, LastName: last, FirstName: "T", ReportsTo: reportsTo}
}

func intp(v int) *int { return &v }

func TestBuildHierarchyForest(t *testing.T) {
	items := []model.Employee{
		emp(1, "Fuller", nil),
		emp(2, "Davolio", intp(1)),
		emp(3, "Leverling", intp(1)),
		emp(4, "Peacock", intp(2)),
		emp(5, "Buchanan", nil),
	}
	roots, err := buildHierarchy(items)
	if err != nil {
		t.Fatalf("buildHierarchy: %v", err)
	}
	if len(roots) != 2 {
		t.Fatalf("expected 2 roots, got %d", len(roots))
	}
	if roots[0].EmployeeID != 1 || roots[1].EmployeeID != 5 {
		t.Fatalf("unexpected roots: %d, %d", roots[0].EmployeeID, roots[1].EmployeeID)
	}
	fuller := roots[0]
	if len(fuller.Reports) != 2 {
		t.Fatalf("Fuller should have 2 reports, got %d", len(fuller.Reports))
	}
	if fuller.Reports[0].EmployeeID != 2 || fuller.Reports[1].EmployeeID != 3 {
		t.Fatalf("unexpected reports order: %d, %d", fuller.Reports[0].EmployeeID, fuller.Reports[1].EmployeeID)
	}
	davolio := fuller.Reports[0]
	if len(davolio.Reports) != 1 || davolio.Reports[0].EmployeeID != 4 {
		t.Fatalf("Peacock should hang under Davolio")
	}
	if len(roots[1].Reports) != 0 {
		t.Fatalf("Buchanan should have no reports")
	}
}

func TestBuildHierarchyMissingManagerBecomesRoot(t *testing.T) {
	items := []model.Employee{
		emp(1, "Fuller", nil),
		emp(2, "Davolio", intp(99)),
	}
	roots, err := buildHierarchy(items)
	if err != nil {
		t.Fatalf("buildHierarchy: %v", err)
	}
	if len(roots) != 2 {
		t.Fatalf("dangling reports_to should promote to root, got %d roots", len(roots))
	}
}

func TestBuildHierarchyCycle(t *testing.T) {
	items := []model.Employee{
		emp(1, "Fuller", nil),
		emp(3, "Leverling", intp(7)),
		emp(7, "King", intp(9)),
		emp(9, "Dodsworth", intp(3)),
	}
	_, err := buildHierarchy(items)
	if err == nil {
		t.Fatal("expected cycle error, got nil")
	}
	ae, ok := apperr.From(err)
	if !ok {
		t.Fatalf("expected *apperr.Error, got %T", err)
	}
	if ae.Kind != apperr.KindStoreUnavailable {
		t.Fatalf("unexpected kind: %v", ae.Kind)
	}
	if !strings.Contains(ae.Message, "reports_to cycle") {
		t.Fatalf("message should name the cycle: %q", ae.Message)
	}
	if !strings.Contains(ae.Message, "3 -> 7 -> 9 -> 3") {
		t.Fatalf("message should include the walked path: %q", ae.Message)
	}
}

func TestBuildHierarchyEmpty(t *testing.T) {
	roots, err := buildHierarchy(nil)
	if err != nil {
		t.Fatalf("buildHierarchy: %v", err)
	}
	if len(roots) != 0 {
		t.Fatalf("expected no roots, got %d", len(roots))
	}
}
