package repository

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"northwind/internal/apperr"
	"northwind/internal/schema"
)

// deleteWithPolicy deletes one row after settling its dependents.
// Dependent rows are counted first; without force any dependents block
// the delete with the exact count. With force each dependent set is
// detached or removed per its declared policy, inside the same
// transaction as the delete itself.
func deleteWithPolicy(ctx context.Context, pool *pgxpool.Pool, ent *schema.Entity, id any, force bool) error {
	return WithTx(ctx, pool, func(tx pgx.Tx) error {
		var total int64
		for _, dep := range ent.Dependents {
			sql, args, err := psql.Select("COUNT(*)").From(dep.Table).Where(squirrel.Eq{dep.FK: id}).ToSql()
			if err != nil {
				return apperr.Storef(err, "build dependent count on %s", dep.Table)
			}
			var n int64
			if err := tx.QueryRow(ctx, sql, args...).Scan(&n); err != nil {
				return mapPgError(err)
			}
			total += n
		}

		if total > 0 && !force {
			return apperr.ConflictDependency(
				fmt.Sprintf("cannot delete %s %v: %d dependent row(s) exist, pass force=true to detach them", singularName(ent), id, total),
				int(total),
			)
		}

		if total > 0 {
			for _, dep := range ent.Dependents {
				var (
					sql  string
					args []any
					err  error
				)
				switch dep.OnForce {
				case schema.ForceCascade:
					sql, args, err = psql.Delete(dep.Table).Where(squirrel.Eq{dep.FK: id}).ToSql()
				default:
					sql, args, err = psql.Update(dep.Table).Set(dep.FK, nil).Where(squirrel.Eq{dep.FK: id}).ToSql()
				}
				if err != nil {
					return apperr.Storef(err, "build dependent cleanup on %s", dep.Table)
				}
				if _, err := tx.Exec(ctx, sql, args...); err != nil {
					return mapPgError(err)
				}
			}
		}

		return deleteRow(ctx, tx, ent, id)
	})
}

func deleteRow(ctx context.Context, db DB, ent *schema.Entity, id any) error {
	sql, args, err := psql.Delete(ent.Table).Where(squirrel.Eq{ent.PrimaryKey: id}).ToSql()
	if err != nil {
		return apperr.Storef(err, "build %s delete", ent.Name)
	}
	tag, err := db.Exec(ctx, sql, args...)
	if err != nil {
		return mapPgError(err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("%s %v not found", singularName(ent), id)
	}
	return nil
}
