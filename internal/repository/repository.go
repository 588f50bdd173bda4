// Package repository executes the compiled queries against Postgres
// and maps store failures into the api error taxonomy. Every repo
// works through the DB interface so the same code runs on the pool and
// inside a transaction.
package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"northwind/internal/apperr"
	"northwind/internal/query"
	"northwind/internal/schema"
)

// DB is the slice of pgx shared by *pgxpool.Pool and pgx.Tx.
type DB interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Store bundles the per-entity repositories over one pool.
type Store struct {
	pool *pgxpool.Pool

	Customers  *CustomerRepo
	Orders     *OrderRepo
	Products   *ProductRepo
	Categories *CategoryRepo
	Suppliers  *SupplierRepo
	Employees  *EmployeeRepo
	Shippers   *ShipperRepo
	Reports    *ReportRepo
}

func NewStore(pool *pgxpool.Pool, reg *schema.Registry) *Store {
	s := &Store{pool: pool}
	s.Customers = &CustomerRepo{db: pool, pool: pool, ent: reg.Get("customers")}
	s.Orders = &OrderRepo{db: pool, pool: pool, ent: reg.Get("orders")}
	s.Products = &ProductRepo{db: pool, pool: pool, ent: reg.Get("products")}
	s.Categories = &CategoryRepo{db: pool, pool: pool, ent: reg.Get("categories")}
	s.Suppliers = &SupplierRepo{db: pool, pool: pool, ent: reg.Get("suppliers")}
	s.Employees = &EmployeeRepo{db: pool, pool: pool, ent: reg.Get("employees")}
	s.Shippers = &ShipperRepo{db: pool, pool: pool, ent: reg.Get("shippers")}
	s.Reports = &ReportRepo{db: pool}
	return s
}

// Ping checks the store is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

// listPage runs the page SELECT and the COUNT under one compiled
// predicate. The two reads are sequential on the same pool; a write
// landing between them can skew total by a row, which the pagination
// contract accepts.
func listPage[T any](ctx context.Context, db DB, s *query.Spec, columns []string, scan func(pgx.Rows) ([]T, error)) (query.Page[T], error) {
	now := time.Now()
	var page query.Page[T]

	sql, args, err := query.BuildSelect(s, columns, now).ToSql()
	if err != nil {
		return page, apperr.Storef(err, "build %s query", s.Entity.Name)
	}
	rows, err := db.Query(ctx, sql, args...)
	if err != nil {
		return page, mapPgError(err)
	}
	defer rows.Close()
	items, err := scan(rows)
	if err != nil {
		return page, mapPgError(err)
	}

	countSQL, countArgs, err := query.BuildCount(s, now).ToSql()
	if err != nil {
		return page, apperr.Storef(err, "build %s count", s.Entity.Name)
	}
	var total int64
	if err := db.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return page, mapPgError(err)
	}

	return query.NewPage(items, total, s), nil
}

// getByID fetches one row by primary key, mapping the empty result to
// NotFound.
func getByID[T any](ctx context.Context, db DB, ent *schema.Entity, id any, columns []string, scan func(pgx.Row) (T, error)) (T, error) {
	var zero T
	sql, args, err := psql.Select(columns...).From(ent.Table).Where(squirrel.Eq{ent.PrimaryKey: id}).ToSql()
	if err != nil {
		return zero, apperr.Storef(err, "build %s get", ent.Name)
	}
	item, err := scan(db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return zero, apperr.NotFound("%s %v not found", singularName(ent), id)
		}
		return zero, mapPgError(err)
	}
	return item, nil
}

// groupCount runs one grouped COUNT for a page of parent keys, so
// orderCount/productCount never degenerate into per-row queries.
func groupCount[K comparable](ctx context.Context, db DB, table, keyCol string, keys []K) (map[K]int64, error) {
	out := make(map[K]int64, len(keys))
	if len(keys) == 0 {
		return out, nil
	}
	sql, args, err := psql.Select(keyCol, "COUNT(*)").
		From(table).
		Where(squirrel.Eq{keyCol: keys}).
		GroupBy(keyCol).
		ToSql()
	if err != nil {
		return nil, apperr.Storef(err, "build group count on %s", table)
	}
	rows, err := db.Query(ctx, sql, args...)
	if err != nil {
		return nil, mapPgError(err)
	}
	defer rows.Close()
	for rows.Next() {
		var key K
		var n int64
		if err := rows.Scan(&key, &n); err != nil {
			return nil, mapPgError(err)
		}
		out[key] = n
	}
	return out, rows.Err()
}

func returning(columns []string) string {
	return "RETURNING " + strings.Join(columns, ", ")
}

func singularName(ent *schema.Entity) string {
	if ent.Name == "categories" {
		return "category"
	}
	if n := len(ent.Name); n > 0 && ent.Name[n-1] == 's' {
		return ent.Name[:n-1]
	}
	return ent.Name
}
