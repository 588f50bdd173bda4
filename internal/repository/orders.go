package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"northwind/internal/apperr"
	"northwind/internal/model"
	"northwind/internal/query"
	"northwind/internal/schema"
)

type OrderRepo struct {
	db   DB
	pool *pgxpool.Pool
	ent  *schema.Entity
}

var orderColumns = []string{
	"order_id", "customer_id", "employee_id", "order_date", "required_date",
	"shipped_date", "ship_via", "freight", "ship_name", "ship_address",
	"ship_city", "ship_region", "ship_postal_code", "ship_country",
}

var orderDetailColumns = []string{"order_id", "product_id", "unit_price", "quantity", "discount"}

// Стоимость строки заказа; то же выражение используют отчёты.
const lineTotalExpr = "unit_price * quantity * (1 - discount)"

func scanOrderRow(row pgx.Row) (model.Order, error) {
	var o model.Order
	err := row.Scan(&o.OrderID, &o.CustomerID, &o.EmployeeID, &o.OrderDate,
		&o.RequiredDate, &o.ShippedDate, &o.ShipVia, &o.Freight, &o.ShipName,
		&o.ShipAddress, &o.ShipCity, &o.ShipRegion, &o.ShipPostalCode, &o.ShipCountry)
	return o, err
}

func scanOrders(rows pgx.Rows) ([]model.Order, error) {
	items := make([]model.Order, 0, 16)
	for rows.Next() {
		o, err := scanOrderRow(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, o)
	}
	return items, rows.Err()
}

func (r *OrderRepo) List(ctx context.Context, s *query.Spec) (query.Page[model.Order], error) {
	return listPage(ctx, r.db, s, orderColumns, scanOrders)
}

func (r *OrderRepo) Get(ctx context.Context, id int) (model.Order, error) {
	return getByID(ctx, r.db, r.ent, id, orderColumns, scanOrderRow)
}

// DetailsFor loads the line items of a page of orders in one query,
// grouped by order id.
func (r *OrderRepo) DetailsFor(ctx context.Context, orderIDs []int) (map[int][]model.OrderDetail, error) {
	out := make(map[int][]model.OrderDetail, len(orderIDs))
	if len(orderIDs) == 0 {
		return out, nil
	}
	sql, args, err := psql.Select(orderDetailColumns...).
		From("order_details").
		Where(squirrel.Eq{"order_id": orderIDs}).
		OrderBy("order_id ASC", "product_id ASC").
		ToSql()
	if err != nil {
		return nil, apperr.Storef(err, "build order details")
	}
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, mapPgError(err)
	}
	defer rows.Close()
	for rows.Next() {
		var d model.OrderDetail
		if err := rows.Scan(&d.OrderID, &d.ProductID, &d.UnitPrice, &d.Quantity, &d.Discount); err != nil {
			return nil, mapPgError(err)
		}
		out[d.OrderID] = append(out[d.OrderID], d)
	}
	return out, rows.Err()
}

// DetailSums returns SUM(unit_price * quantity * (1 - discount)) per
// order for a page of orders, so lists can show the order total without
// loading every line item.
func (r *OrderRepo) DetailSums(ctx context.Context, orderIDs []int) (map[int]decimal.Decimal, error) {
	out := make(map[int]decimal.Decimal, len(orderIDs))
	if len(orderIDs) == 0 {
		return out, nil
	}
	sql, args, err := psql.Select("order_id", "SUM("+lineTotalExpr+")").
		From("order_details").
		Where(squirrel.Eq{"order_id": orderIDs}).
		GroupBy("order_id").
		ToSql()
	if err != nil {
		return nil, apperr.Storef(err, "build order detail sums")
	}
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, mapPgError(err)
	}
	defer rows.Close()
	for rows.Next() {
		var id int
		var sum decimal.Decimal
		if err := rows.Scan(&id, &sum); err != nil {
			return nil, mapPgError(err)
		}
		out[id] = sum
	}
	return out, rows.Err()
}

// Create writes the order and its line items as one transaction. The
// referenced products are loaded inside the transaction: unknown or
// discontinued products and quantities beyond the available stock abort
// the whole write, and details without a price take the product's
// current list price.
func (r *OrderRepo) Create(ctx context.Context, o *model.Order) error {
	return WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		if err := checkOrderDetails(ctx, tx, o.Details); err != nil {
			return err
		}

		sql, args, err := psql.Insert(r.ent.Table).
			Columns(orderColumns[1:]...).
			Values(o.CustomerID, o.EmployeeID, o.OrderDate, o.RequiredDate,
				o.ShippedDate, o.ShipVia, o.Freight, o.ShipName, o.ShipAddress,
				o.ShipCity, o.ShipRegion, o.ShipPostalCode, o.ShipCountry).
			Suffix(returning(orderColumns)).
			ToSql()
		if err != nil {
			return apperr.Storef(err, "build order insert")
		}
		created, err := scanOrderRow(tx.QueryRow(ctx, sql, args...))
		if err != nil {
			return mapPgError(err)
		}

		details, err := insertDetails(ctx, tx, created.OrderID, o.Details)
		if err != nil {
			return err
		}
		created.Details = details
		*o = created
		return nil
	})
}

// Update applies a partial column update and, when replaceDetails is
// set, swaps the full line-item list, all in one transaction.
func (r *OrderRepo) Update(ctx context.Context, id int, set map[string]any, details []model.OrderDetail, replaceDetails bool) (model.Order, error) {
	var updated model.Order
	err := WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		var err error
		if len(set) > 0 {
			sql, args, err2 := psql.Update(r.ent.Table).
				SetMap(set).
				Where(squirrel.Eq{r.ent.PrimaryKey: id}).
				Suffix(returning(orderColumns)).
				ToSql()
			if err2 != nil {
				return apperr.Storef(err2, "build order update")
			}
			updated, err = scanOrderRow(tx.QueryRow(ctx, sql, args...))
		} else {
			updated, err = getByID(ctx, tx, r.ent, id, orderColumns, scanOrderRow)
		}
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return apperr.NotFound("order %d not found", id)
			}
			return mapPgError(err)
		}

		if !replaceDetails {
			return nil
		}
		if err := checkOrderDetails(ctx, tx, details); err != nil {
			return err
		}
		delSQL, delArgs, err := psql.Delete("order_details").Where(squirrel.Eq{"order_id": id}).ToSql()
		if err != nil {
			return apperr.Storef(err, "build order details delete")
		}
		if _, err := tx.Exec(ctx, delSQL, delArgs...); err != nil {
			return mapPgError(err)
		}
		inserted, err := insertDetails(ctx, tx, id, details)
		if err != nil {
			return err
		}
		updated.Details = inserted
		return nil
	})
	return updated, err
}

// Delete removes the order's own line items and then the order in one
// transaction. Details are the order's aggregate children, so no force
// flag is involved.
func (r *OrderRepo) Delete(ctx context.Context, id int) error {
	return WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		sql, args, err := psql.Delete("order_details").Where(squirrel.Eq{"order_id": id}).ToSql()
		if err != nil {
			return apperr.Storef(err, "build order details delete")
		}
		if _, err := tx.Exec(ctx, sql, args...); err != nil {
			return mapPgError(err)
		}
		return deleteRow(ctx, tx, r.ent, id)
	})
}

// productState is the slice of a product the detail check needs.
type productState struct {
	price        *decimal.Decimal
	unitsInStock int
	discontinued bool
}

// checkOrderDetails validates every line item against the products
// table and fills in missing unit prices. All violations are reported
// at once; any violation rolls back the surrounding transaction.
func checkOrderDetails(ctx context.Context, db DB, details []model.OrderDetail) error {
	if len(details) == 0 {
		return apperr.ValidationFailed([]apperr.FieldError{{Field: "details", Message: "at least one line item is required"}})
	}

	ids := make([]int, 0, len(details))
	seen := map[int]bool{}
	for _, d := range details {
		if !seen[d.ProductID] {
			seen[d.ProductID] = true
			ids = append(ids, d.ProductID)
		}
	}

	sql, args, err := psql.Select("product_id", "unit_price", "units_in_stock", "discontinued").
		From("products").
		Where(squirrel.Eq{"product_id": ids}).
		ToSql()
	if err != nil {
		return apperr.Storef(err, "build product check")
	}
	rows, err := db.Query(ctx, sql, args...)
	if err != nil {
		return mapPgError(err)
	}
	defer rows.Close()

	products := make(map[int]productState, len(ids))
	for rows.Next() {
		var id int
		var p productState
		if err := rows.Scan(&id, &p.price, &p.unitsInStock, &p.discontinued); err != nil {
			return mapPgError(err)
		}
		products[id] = p
	}
	if err := rows.Err(); err != nil {
		return mapPgError(err)
	}

	var violations []apperr.FieldError
	for i := range details {
		d := &details[i]
		field := func(name string) string { return fmt.Sprintf("details[%d].%s", i, name) }
		p, ok := products[d.ProductID]
		if !ok {
			violations = append(violations, apperr.FieldError{Field: field("productId"), Message: fmt.Sprintf("product %d does not exist", d.ProductID)})
			continue
		}
		if p.discontinued {
			violations = append(violations, apperr.FieldError{Field: field("productId"), Message: fmt.Sprintf("product %d is discontinued", d.ProductID)})
			continue
		}
		if d.Quantity > p.unitsInStock {
			violations = append(violations, apperr.FieldError{Field: field("quantity"), Message: fmt.Sprintf("quantity %d exceeds available stock (%d)", d.Quantity, p.unitsInStock)})
		}
		if d.UnitPrice.IsZero() {
			if p.price != nil {
				d.UnitPrice = *p.price
			}
		}
	}
	if len(violations) > 0 {
		return apperr.ValidationFailed(violations)
	}
	return nil
}

func insertDetails(ctx context.Context, db DB, orderID int, details []model.OrderDetail) ([]model.OrderDetail, error) {
	if len(details) == 0 {
		return nil, nil
	}
	ins := psql.Insert("order_details").Columns(orderDetailColumns...)
	for _, d := range details {
		ins = ins.Values(orderID, d.ProductID, d.UnitPrice, d.Quantity, d.Discount)
	}
	sql, args, err := ins.Suffix(returning(orderDetailColumns)).ToSql()
	if err != nil {
		return nil, apperr.Storef(err, "build order details insert")
	}
	rows, err := db.Query(ctx, sql, args...)
	if err != nil {
		return nil, mapPgError(err)
	}
	defer rows.Close()
	out := make([]model.OrderDetail, 0, len(details))
	for rows.Next() {
		var d model.OrderDetail
		if err := rows.Scan(&d.OrderID, &d.ProductID, &d.UnitPrice, &d.Quantity, &d.Discount); err != nil {
			return nil, mapPgError(err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}
