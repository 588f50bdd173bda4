package repository

import (
	"context"
	"errors"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"northwind/internal/apperr"
	"northwind/internal/model"
	"northwind/internal/query"
	"northwind/internal/schema"
)

type CustomerRepo struct {
	db   DB
	pool *pgxpool.Pool
	ent  *schema.Entity
}

var customerColumns = []string{
	"customer_id", "company_name", "contact_name", "contact_title", "address",
	"city", "region", "postal_code", "country", "phone", "fax",
}

func scanCustomerRow(row pgx.Row) (model.Customer, error) {
	var c model.Customer
	err := row.Scan(&c.CustomerID, &c.CompanyName, &c.ContactName, &c.ContactTitle,
		&c.Address, &c.City, &c.Region, &c.PostalCode, &c.Country, &c.Phone, &c.Fax)
	return c, err
}

func scanCustomers(rows pgx.Rows) ([]model.Customer, error) {
	items := make([]model.Customer, 0, 16)
	for rows.Next() {
		c, err := scanCustomerRow(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, c)
	}
	return items, rows.Err()
}

func (r *CustomerRepo) List(ctx context.Context, s *query.Spec) (query.Page[model.Customer], error) {
	return listPage(ctx, r.db, s, customerColumns, scanCustomers)
}

func (r *CustomerRepo) Get(ctx context.Context, id string) (model.Customer, error) {
	return getByID(ctx, r.db, r.ent, id, customerColumns, scanCustomerRow)
}

func (r *CustomerRepo) Create(ctx context.Context, c *model.Customer) error {
	sql, args, err := psql.Insert(r.ent.Table).
		Columns(customerColumns...).
		Values(c.CustomerID, c.CompanyName, c.ContactName, c.ContactTitle, c.Address,
			c.City, c.Region, c.PostalCode, c.Country, c.Phone, c.Fax).
		Suffix(returning(customerColumns)).
		ToSql()
	if err != nil {
		return apperr.Storef(err, "build customer insert")
	}
	created, err := scanCustomerRow(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		return mapPgError(err)
	}
	*c = created
	return nil
}

func (r *CustomerRepo) Update(ctx context.Context, id string, set map[string]any) (model.Customer, error) {
	var zero model.Customer
	sql, args, err := psql.Update(r.ent.Table).
		SetMap(set).
		Where(squirrel.Eq{r.ent.PrimaryKey: id}).
		Suffix(returning(customerColumns)).
		ToSql()
	if err != nil {
		return zero, apperr.Storef(err, "build customer update")
	}
	updated, err := scanCustomerRow(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return zero, apperr.NotFound("customer %s not found", id)
		}
		return zero, mapPgError(err)
	}
	return updated, nil
}

func (r *CustomerRepo) Delete(ctx context.Context, id string, force bool) error {
	return deleteWithPolicy(ctx, r.pool, r.ent, id, force)
}

// OrderCounts returns order counts for a page of customers in one
// grouped query.
func (r *CustomerRepo) OrderCounts(ctx context.Context, ids []string) (map[string]int64, error) {
	return groupCount(ctx, r.db, "orders", "customer_id", ids)
}

// Spend returns the customer's lifetime spend (sum of line totals over
// all their orders) and order count, for the tier on detail reads.
func (r *CustomerRepo) Spend(ctx context.Context, id string) (decimal.Decimal, int64, error) {
	sql, args, err := psql.Select(
		"COALESCE(SUM(od.unit_price * od.quantity * (1 - od.discount)), 0)",
		"COUNT(DISTINCT o.order_id)",
	).
		From("orders o").
		LeftJoin("order_details od ON od.order_id = o.order_id").
		Where(squirrel.Eq{"o.customer_id": id}).
		ToSql()
	if err != nil {
		return decimal.Zero, 0, apperr.Storef(err, "build customer spend")
	}
	var spend decimal.Decimal
	var orders int64
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&spend, &orders); err != nil {
		return decimal.Zero, 0, mapPgError(err)
	}
	return spend, orders, nil
}

// OrdersFor loads all orders of the given customers, newest first,
// grouped by customer id. One query per page of parents.
func (r *CustomerRepo) OrdersFor(ctx context.Context, ids []string) (map[string][]model.Order, error) {
	out := make(map[string][]model.Order, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	sql, args, err := psql.Select(orderColumns...).
		From("orders").
		Where(squirrel.Eq{"customer_id": ids}).
		OrderBy("order_date DESC", "order_id ASC").
		ToSql()
	if err != nil {
		return nil, apperr.Storef(err, "build customer orders")
	}
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, mapPgError(err)
	}
	defer rows.Close()
	for rows.Next() {
		o, err := scanOrderRow(rows)
		if err != nil {
			return nil, mapPgError(err)
		}
		if o.CustomerID != nil {
			out[*o.CustomerID] = append(out[*o.CustomerID], o)
		}
	}
	return out, rows.Err()
}

// ByIDs batch-loads customers for include resolution on order pages.
func (r *CustomerRepo) ByIDs(ctx context.Context, ids []string) (map[string]model.Customer, error) {
	out := make(map[string]model.Customer, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	sql, args, err := psql.Select(customerColumns...).
		From(r.ent.Table).
		Where(squirrel.Eq{r.ent.PrimaryKey: ids}).
		ToSql()
	if err != nil {
		return nil, apperr.Storef(err, "build customers by ids")
	}
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, mapPgError(err)
	}
	defer rows.Close()
	for rows.Next() {
		c, err := scanCustomerRow(rows)
		if err != nil {
			return nil, mapPgError(err)
		}
		out[c.CustomerID] = c
	}
	return out, rows.Err()
}
