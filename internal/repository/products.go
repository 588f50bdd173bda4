package repository

import (
	"context"
	"errors"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"northwind/internal/apperr"
	"northwind/internal/model"
	"northwind/internal/query"
	"northwind/internal/schema"
)

type ProductRepo struct {
	db   DB
	pool *pgxpool.Pool
	ent  *schema.Entity
}

var productColumns = []string{
	"product_id", "product_name", "supplier_id", "category_id", "quantity_per_unit",
	"unit_price", "units_in_stock", "units_on_order", "reorder_level", "discontinued",
}

func scanProductRow(row pgx.Row) (model.Product, error) {
	var p model.Product
	err := row.Scan(&p.ProductID, &p.ProductName, &p.SupplierID, &p.CategoryID,
		&p.QuantityPerUnit, &p.UnitPrice, &p.UnitsInStock, &p.UnitsOnOrder,
		&p.ReorderLevel, &p.Discontinued)
	return p, err
}

func scanProducts(rows pgx.Rows) ([]model.Product, error) {
	items := make([]model.Product, 0, 16)
	for rows.Next() {
		p, err := scanProductRow(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, p)
	}
	return items, rows.Err()
}

func (r *ProductRepo) List(ctx context.Context, s *query.Spec) (query.Page[model.Product], error) {
	return listPage(ctx, r.db, s, productColumns, scanProducts)
}

func (r *ProductRepo) Get(ctx context.Context, id int) (model.Product, error) {
	return getByID(ctx, r.db, r.ent, id, productColumns, scanProductRow)
}

func (r *ProductRepo) Create(ctx context.Context, p *model.Product) error {
	sql, args, err := psql.Insert(r.ent.Table).
		Columns(productColumns[1:]...).
		Values(p.ProductName, p.SupplierID, p.CategoryID, p.QuantityPerUnit,
			p.UnitPrice, p.UnitsInStock, p.UnitsOnOrder, p.ReorderLevel, p.Discontinued).
		Suffix(returning(productColumns)).
		ToSql()
	if err != nil {
		return apperr.Storef(err, "build product insert")
	}
	created, err := scanProductRow(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		return mapPgError(err)
	}
	*p = created
	return nil
}

func (r *ProductRepo) Update(ctx context.Context, id int, set map[string]any) (model.Product, error) {
	var zero model.Product
	sql, args, err := psql.Update(r.ent.Table).
		SetMap(set).
		Where(squirrel.Eq{r.ent.PrimaryKey: id}).
		Suffix(returning(productColumns)).
		ToSql()
	if err != nil {
		return zero, apperr.Storef(err, "build product update")
	}
	updated, err := scanProductRow(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return zero, apperr.NotFound("product %d not found", id)
		}
		return zero, mapPgError(err)
	}
	return updated, nil
}

// Delete applies the declared policy: order_details referencing the
// product block the delete, and force removes those lines together
// with the product in one transaction.
func (r *ProductRepo) Delete(ctx context.Context, id int, force bool) error {
	return deleteWithPolicy(ctx, r.pool, r.ent, id, force)
}

// ByIDs batch-loads products for include resolution.
func (r *ProductRepo) ByIDs(ctx context.Context, ids []int) (map[int]model.Product, error) {
	out := make(map[int]model.Product, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	sql, args, err := psql.Select(productColumns...).
		From(r.ent.Table).
		Where(squirrel.Eq{r.ent.PrimaryKey: ids}).
		ToSql()
	if err != nil {
		return nil, apperr.Storef(err, "build products by ids")
	}
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, mapPgError(err)
	}
	defer rows.Close()
	for rows.Next() {
		p, err := scanProductRow(rows)
		if err != nil {
			return nil, mapPgError(err)
		}
		out[p.ProductID] = p
	}
	return out, rows.Err()
}
