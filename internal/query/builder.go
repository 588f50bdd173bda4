package query

import (
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
)

// BuildSelect builds the page SELECT for a validated spec: compiled
// predicate, whitelisted sort, limit and offset.
func BuildSelect(s *Spec, columns []string, now time.Time) squirrel.SelectBuilder {
	sb := squirrel.SelectBuilder{}.PlaceholderFormat(squirrel.Dollar).
		Columns(columns...).
		From(s.Entity.Table)
	if pred := Compile(s, now); pred != nil {
		sb = sb.Where(pred)
	}
	return sb.OrderBy(orderClauses(s)...).Limit(s.Limit()).Offset(s.Offset())
}

// BuildCount builds the COUNT(*) query under the same predicate, so a
// page and its total always agree on what matched.
func BuildCount(s *Spec, now time.Time) squirrel.SelectBuilder {
	sb := squirrel.SelectBuilder{}.PlaceholderFormat(squirrel.Dollar).
		Column("COUNT(*)").
		From(s.Entity.Table)
	if pred := Compile(s, now); pred != nil {
		sb = sb.Where(pred)
	}
	return sb
}

// orderClauses appends the primary key ascending after the requested
// sort, so rows with equal sort keys page deterministically.
func orderClauses(s *Spec) []string {
	order := []string{fmt.Sprintf("%s %s", s.SortColumn, s.SortDir)}
	if s.SortColumn != s.Entity.PrimaryKey {
		order = append(order, s.Entity.PrimaryKey+" ASC")
	}
	return order
}
