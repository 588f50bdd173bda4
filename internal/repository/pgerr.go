package repository

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"northwind/internal/apperr"
)

// Postgres error codes the taxonomy cares about.
const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
)

// mapPgError translates driver errors into the api taxonomy. Unique
// violations become DuplicateKey with the offending field recovered
// from the constraint name; foreign key violations that slipped past
// the explicit checks become ConflictDependency; anything else is a
// store failure.
func mapPgError(err error) error {
	if err == nil {
		return nil
	}
	if ae, ok := apperr.From(err); ok {
		return ae
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case codeUniqueViolation:
			field := constraintField(pgErr.ConstraintName, pgErr.TableName)
			return apperr.DuplicateKey(field, "duplicate value for "+field)
		case codeForeignKeyViolation:
			return apperr.ConflictDependency("operation violates a dependency constraint", 0)
		}
	}
	return apperr.Store(err)
}

// constraintField digs the column out of a conventional constraint
// name like "categories_category_name_key" and returns it in the api's
// camelCase ("categoryName").
func constraintField(constraint, table string) string {
	name := strings.TrimSuffix(constraint, "_pkey")
	name = strings.TrimSuffix(name, "_key")
	name = strings.TrimPrefix(name, table+"_")
	if name == "" || name == constraint {
		// unconventional name, report it as-is
		if constraint == "" {
			return "unknown"
		}
		return constraint
	}
	return snakeToCamel(name)
}

func snakeToCamel(s string) string {
	parts := strings.Split(s, "_")
	for i := 1; i < len(parts); i++ {
		if parts[i] != "" {
			parts[i] = strings.ToUpper(parts[i][:1]) + parts[i][1:]
		}
	}
	return strings.Join(parts, "")
}
