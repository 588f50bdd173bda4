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

type SupplierRepo struct {
	db   DB
	pool *pgxpool.Pool
	ent  *schema.Entity
}

var supplierColumns = []string{
	"supplier_id", "company_name", "contact_name", "contact_title", "address",
	"city", "region", "postal_code", "country", "phone", "fax", "homepage",
}

func scanSupplierRow(row pgx.Row) (model.Supplier, error) {
	var s model.Supplier
	err := row.Scan(&s.SupplierID, &s.CompanyName, &s.ContactName, &s.ContactTitle,
		&s.Address, &s.City, &s.Region, &s.PostalCode, &s.Country, &s.Phone, &s.Fax,
		&s.HomePage)
	return s, err
}

func scanSuppliers(rows pgx.Rows) ([]model.Supplier, error) {
	items := make([]model.Supplier, 0, 16)
	for rows.Next() {
		s, err := scanSupplierRow(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, s)
	}
	return items, rows.Err()
}

func (r *SupplierRepo) List(ctx context.Context, s *query.Spec) (query.Page[model.Supplier], error) {
	return listPage(ctx, r.db, s, supplierColumns, scanSuppliers)
}

func (r *SupplierRepo) Get(ctx context.Context, id int) (model.Supplier, error) {
	return getByID(ctx, r.db, r.ent, id, supplierColumns, scanSupplierRow)
}

func (r *SupplierRepo) Create(ctx context.Context, s *model.Supplier) error {
	sql, args, err := psql.Insert(r.ent.Table).
		Columns(supplierColumns[1:]...).
		Values(s.CompanyName, s.ContactName, s.ContactTitle, s.Address, s.City,
			s.Region, s.PostalCode, s.Country, s.Phone, s.Fax, s.HomePage).
		Suffix(returning(supplierColumns)).
		ToSql()
	if err != nil {
		return apperr.Storef(err, "build supplier insert")
	}
	created, err := scanSupplierRow(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		return mapPgError(err)
	}
	*s = created
	return nil
}

func (r *SupplierRepo) Update(ctx context.Context, id int, set map[string]any) (model.Supplier, error) {
	var zero model.Supplier
	sql, args, err := psql.Update(r.ent.Table).
		SetMap(set).
		Where(squirrel.Eq{r.ent.PrimaryKey: id}).
		Suffix(returning(supplierColumns)).
		ToSql()
	if err != nil {
		return zero, apperr.Storef(err, "build supplier update")
	}
	updated, err := scanSupplierRow(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return zero, apperr.NotFound("supplier %d not found", id)
		}
		return zero, mapPgError(err)
	}
	return updated, nil
}

func (r *SupplierRepo) Delete(ctx context.Context, id int, force bool) error {
	return deleteWithPolicy(ctx, r.pool, r.ent, id, force)
}

// ProductCounts returns product counts for a page of suppliers in one
// grouped query.
func (r *SupplierRepo) ProductCounts(ctx context.Context, ids []int) (map[int]int64, error) {
	return groupCount(ctx, r.db, "products", "supplier_id", ids)
}

// ByIDs batch-loads suppliers for include resolution.
func (r *SupplierRepo) ByIDs(ctx context.Context, ids []int) (map[int]model.Supplier, error) {
	out := make(map[int]model.Supplier, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	sql, args, err := psql.Select(supplierColumns...).
		From(r.ent.Table).
		Where(squirrel.Eq{r.ent.PrimaryKey: ids}).
		ToSql()
	if err != nil {
		return nil, apperr.Storef(err, "build suppliers by ids")
	}
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, mapPgError(err)
	}
	defer rows.Close()
	for rows.Next() {
		s, err := scanSupplierRow(rows)
		if err != nil {
			return nil, mapPgError(err)
		}
		out[s.SupplierID] = s
	}
	return out, rows.Err()
}
