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

type CategoryRepo struct {
	db   DB
	pool *pgxpool.Pool
	ent  *schema.Entity
}

var categoryColumns = []string{"category_id", "category_name", "description"}

func scanCategoryRow(row pgx.Row) (model.Category, error) {
	var c model.Category
	err := row.Scan(&c.CategoryID, &c.CategoryName, &c.Description)
	return c, err
}

func scanCategories(rows pgx.Rows) ([]model.Category, error) {
	items := make([]model.Category, 0, 8)
	for rows.Next() {
		c, err := scanCategoryRow(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, c)
	}
	return items, rows.Err()
}

func (r *CategoryRepo) List(ctx context.Context, s *query.Spec) (query.Page[model.Category], error) {
	return listPage(ctx, r.db, s, categoryColumns, scanCategories)
}

func (r *CategoryRepo) Get(ctx context.Context, id int) (model.Category, error) {
	return getByID(ctx, r.db, r.ent, id, categoryColumns, scanCategoryRow)
}

func (r *CategoryRepo) Create(ctx context.Context, c *model.Category) error {
	sql, args, err := psql.Insert(r.ent.Table).
		Columns("category_name", "description").
		Values(c.CategoryName, c.Description).
		Suffix(returning(categoryColumns)).
		ToSql()
	if err != nil {
		return apperr.Storef(err, "build category insert")
	}
	created, err := scanCategoryRow(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		return mapPgError(err)
	}
	*c = created
	return nil
}

func (r *CategoryRepo) Update(ctx context.Context, id int, set map[string]any) (model.Category, error) {
	var zero model.Category
	sql, args, err := psql.Update(r.ent.Table).
		SetMap(set).
		Where(squirrel.Eq{r.ent.PrimaryKey: id}).
		Suffix(returning(categoryColumns)).
		ToSql()
	if err != nil {
		return zero, apperr.Storef(err, "build category update")
	}
	updated, err := scanCategoryRow(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return zero, apperr.NotFound("category %d not found", id)
		}
		return zero, mapPgError(err)
	}
	return updated, nil
}

func (r *CategoryRepo) Delete(ctx context.Context, id int, force bool) error {
	return deleteWithPolicy(ctx, r.pool, r.ent, id, force)
}

// ProductCounts returns product counts for a page of categories in one
// grouped query.
func (r *CategoryRepo) ProductCounts(ctx context.Context, ids []int) (map[int]int64, error) {
	return groupCount(ctx, r.db, "products", "category_id", ids)
}

// ByIDs batch-loads categories for include resolution.
func (r *CategoryRepo) ByIDs(ctx context.Context, ids []int) (map[int]model.Category, error) {
	out := make(map[int]model.Category, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	sql, args, err := psql.Select(categoryColumns...).
		From(r.ent.Table).
		Where(squirrel.Eq{r.ent.PrimaryKey: ids}).
		ToSql()
	if err != nil {
		return nil, apperr.Storef(err, "build categories by ids")
	}
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, mapPgError(err)
	}
	defer rows.Close()
	for rows.Next() {
		c, err := scanCategoryRow(rows)
		if err != nil {
			return nil, mapPgError(err)
		}
		out[c.CategoryID] = c
	}
	return out, rows.Err()
}
