package repository

import (
	"context"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"northwind/internal/apperr"
	"northwind/internal/model"
)

// ReportRepo runs the aggregate reports. All math happens in PostgreSQL;
// rows come back already grouped and ordered.
type ReportRepo struct {
	db DB
}

// То же построчное выражение, что и lineTotalExpr, но с алиасом od.
const lineTotalOD = "od.unit_price * od.quantity * (1 - od.discount)"

// detailsTotalsSub pre-groups detail totals per order so that joining it
// to orders never multiplies order-level columns (freight, counts).
const detailsTotalsSub = "(SELECT order_id, SUM(unit_price * quantity * (1 - discount)) AS details_total FROM order_details GROUP BY order_id) AS d"

func topCustomersQuery(limit uint64, year int) squirrel.SelectBuilder {
	q := psql.Select(
		"c.customer_id",
		"c.company_name",
		"COUNT(DISTINCT o.order_id) AS order_count",
		"COALESCE(SUM("+lineTotalOD+"), 0) AS total_spend",
	).
		From("customers AS c").
		Join("orders AS o ON o.customer_id = c.customer_id").
		LeftJoin("order_details AS od ON od.order_id = o.order_id").
		GroupBy("c.customer_id", "c.company_name").
		OrderBy("total_spend DESC", "c.customer_id ASC").
		Limit(limit)
	if year > 0 {
		q = q.Where("EXTRACT(YEAR FROM o.order_date) = ?", year)
	}
	return q
}

func salesByCategoryQuery(year int) squirrel.SelectBuilder {
	q := psql.Select(
		"cat.category_id",
		"cat.category_name",
		"COUNT(DISTINCT p.product_id) AS product_count",
		"COALESCE(SUM(od.quantity), 0) AS units_sold",
		"COALESCE(SUM("+lineTotalOD+"), 0) AS revenue",
	).
		From("order_details AS od").
		Join("orders AS o ON o.order_id = od.order_id").
		Join("products AS p ON p.product_id = od.product_id").
		Join("categories AS cat ON cat.category_id = p.category_id").
		GroupBy("cat.category_id", "cat.category_name").
		OrderBy("revenue DESC", "cat.category_id ASC")
	if year > 0 {
		q = q.Where("EXTRACT(YEAR FROM o.order_date) = ?", year)
	}
	return q
}

func salesByYearQuery() squirrel.SelectBuilder {
	return psql.Select(
		"EXTRACT(YEAR FROM o.order_date)::int AS year",
		"COUNT(o.order_id) AS order_count",
		"COALESCE(SUM(d.details_total), 0) AS revenue",
		"COALESCE(SUM(o.freight), 0) AS freight",
	).
		From("orders AS o").
		LeftJoin(detailsTotalsSub + " ON d.order_id = o.order_id").
		Where("o.order_date IS NOT NULL").
		GroupBy("EXTRACT(YEAR FROM o.order_date)").
		OrderBy("year ASC")
}

func supplierStatsQuery() squirrel.SelectBuilder {
	return psql.Select(
		"s.supplier_id",
		"s.company_name",
		"COUNT(p.product_id) AS product_count",
		"COALESCE(SUM(p.units_in_stock), 0) AS units_in_stock",
		"COALESCE(SUM(p.unit_price * p.units_in_stock), 0) AS inventory_value",
		"COALESCE(AVG(p.unit_price), 0) AS average_price",
	).
		From("suppliers AS s").
		LeftJoin("products AS p ON p.supplier_id = s.supplier_id").
		GroupBy("s.supplier_id", "s.company_name").
		OrderBy("s.company_name ASC", "s.supplier_id ASC")
}

func employeeSalesQuery(year int) squirrel.SelectBuilder {
	q := psql.Select(
		"e.employee_id",
		"e.last_name",
		"e.first_name",
		"COUNT(o.order_id) AS order_count",
		"COALESCE(SUM(d.details_total), 0) AS revenue",
	).
		From("orders AS o").
		Join("employees AS e ON e.employee_id = o.employee_id").
		LeftJoin(detailsTotalsSub + " ON d.order_id = o.order_id").
		GroupBy("e.employee_id", "e.last_name", "e.first_name").
		OrderBy("revenue DESC", "e.employee_id ASC")
	if year > 0 {
		q = q.Where("EXTRACT(YEAR FROM o.order_date) = ?", year)
	}
	return q
}

func runReport[T any](ctx context.Context, db DB, q squirrel.SelectBuilder, name string, scan func(pgx.Rows) (T, error)) ([]T, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, apperr.Storef(err, "build %s report", name)
	}
	rows, err := db.Query(ctx, sql, args...)
	if err != nil {
		return nil, mapPgError(err)
	}
	defer rows.Close()
	out := make([]T, 0, 16)
	for rows.Next() {
		item, err := scan(rows)
		if err != nil {
			return nil, mapPgError(err)
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

func (r *ReportRepo) TopCustomers(ctx context.Context, limit, year int) ([]model.TopCustomerRow, error) {
	return runReport(ctx, r.db, topCustomersQuery(uint64(limit), year), "top-customers",
		func(rows pgx.Rows) (model.TopCustomerRow, error) {
			var row model.TopCustomerRow
			err := rows.Scan(&row.CustomerID, &row.CompanyName, &row.OrderCount, &row.TotalSpend)
			return row, err
		})
}

func (r *ReportRepo) SalesByCategory(ctx context.Context, year int) ([]model.CategorySalesRow, error) {
	return runReport(ctx, r.db, salesByCategoryQuery(year), "sales-by-category",
		func(rows pgx.Rows) (model.CategorySalesRow, error) {
			var row model.CategorySalesRow
			err := rows.Scan(&row.CategoryID, &row.CategoryName, &row.ProductCount, &row.UnitsSold, &row.Revenue)
			return row, err
		})
}

func (r *ReportRepo) SalesByYear(ctx context.Context) ([]model.YearSalesRow, error) {
	return runReport(ctx, r.db, salesByYearQuery(), "sales-by-year",
		func(rows pgx.Rows) (model.YearSalesRow, error) {
			var row model.YearSalesRow
			err := rows.Scan(&row.Year, &row.OrderCount, &row.Revenue, &row.Freight)
			return row, err
		})
}

func (r *ReportRepo) SupplierStats(ctx context.Context) ([]model.SupplierStatsRow, error) {
	return runReport(ctx, r.db, supplierStatsQuery(), "supplier-stats",
		func(rows pgx.Rows) (model.SupplierStatsRow, error) {
			var row model.SupplierStatsRow
			err := rows.Scan(&row.SupplierID, &row.CompanyName, &row.ProductCount, &row.UnitsInStock, &row.InventoryValue, &row.AveragePrice)
			return row, err
		})
}

func (r *ReportRepo) EmployeeSales(ctx context.Context, year int) ([]model.EmployeeSalesRow, error) {
	return runReport(ctx, r.db, employeeSalesQuery(year), "employee-sales",
		func(rows pgx.Rows) (model.EmployeeSalesRow, error) {
			var row model.EmployeeSalesRow
			err := rows.Scan(&row.EmployeeID, &row.LastName, &row.FirstName, &row.OrderCount, &row.Revenue)
			return row, err
		})
}
