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

type ShipperRepo struct {
	db   DB
	pool *pgxpool.Pool
	ent  *schema.Entity
}

var shipperColumns = []string{"shipper_id", "company_name", "phone"}

func scanShipperRow(row pgx.Row) (model.Shipper, error) {
	var s model.Shipper
	err := row.Scan(&s.ShipperID, &s.CompanyName, &s.Phone)
	return s, err
}

func scanShippers(rows pgx.Rows) ([]model.Shipper, error) {
	items := make([]model.Shipper, 0, 8)
	for rows.Next() {
		s, err := scanShipperRow(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, s)
	}
	return items, rows.Err()
}

func (r *ShipperRepo) List(ctx context.Context, s *query.Spec) (query.Page[model.Shipper], error) {
	return listPage(ctx, r.db, s, shipperColumns, scanShippers)
}

func (r *ShipperRepo) Get(ctx context.Context, id int) (model.Shipper, error) {
	return getByID(ctx, r.db, r.ent, id, shipperColumns, scanShipperRow)
}

func (r *ShipperRepo) Create(ctx context.Context, s *model.Shipper) error {
	sql, args, err := psql.Insert(r.ent.Table).
		Columns("company_name", "phone").
		Values(s.CompanyName, s.Phone).
		Suffix(returning(shipperColumns)).
		ToSql()
	if err != nil {
		return apperr.Storef(err, "build shipper insert")
	}
	created, err := scanShipperRow(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		return mapPgError(err)
	}
	*s = created
	return nil
}

func (r *ShipperRepo) Update(ctx context.Context, id int, set map[string]any) (model.Shipper, error) {
	var zero model.Shipper
	sql, args, err := psql.Update(r.ent.Table).
		SetMap(set).
		Where(squirrel.Eq{r.ent.PrimaryKey: id}).
		Suffix(returning(shipperColumns)).
		ToSql()
	if err != nil {
		return zero, apperr.Storef(err, "build shipper update")
	}
	updated, err := scanShipperRow(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return zero, apperr.NotFound("shipper %d not found", id)
		}
		return zero, mapPgError(err)
	}
	return updated, nil
}

func (r *ShipperRepo) Delete(ctx context.Context, id int, force bool) error {
	return deleteWithPolicy(ctx, r.pool, r.ent, id, force)
}

// OrderCounts returns order counts for a page of shippers in one
// grouped query. Orders reference shippers through ship_via.
func (r *ShipperRepo) OrderCounts(ctx context.Context, ids []int) (map[int]int64, error) {
	return groupCount(ctx, r.db, "orders", "ship_via", ids)
}

// ByIDs batch-loads shippers for include resolution.
func (r *ShipperRepo) ByIDs(ctx context.Context, ids []int) (map[int]model.Shipper, error) {
	out := make(map[int]model.Shipper, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	sql, args, err := psql.Select(shipperColumns...).
		From(r.ent.Table).
		Where(squirrel.Eq{r.ent.PrimaryKey: ids}).
		ToSql()
	if err != nil {
		return nil, apperr.Storef(err, "build shippers by ids")
	}
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, mapPgError(err)
	}
	defer rows.Close()
	for rows.Next() {
		s, err := scanShipperRow(rows)
		if err != nil {
			return nil, mapPgError(err)
		}
		out[s.ShipperID] = s
	}
	return out, rows.Err()
}
