package query

import (
	"time"

	"github.com/Masterminds/squirrel"

	"northwind/internal/schema"
)

// Order status lives in the date columns, not in a stored field.
const (
	colOrderDate    = "order_date"
	colShippedDate  = "shipped_date"
	colRequiredDate = "required_date"
)

// Compile maps a Spec's conditions into one parameterized squirrel
// predicate. Conditions combine with AND. Search expands to an OR
// group over the entity's search columns and joins the conjunction as
// a single unit. Returns nil when there is nothing to filter on.
//
// now anchors the age and overdue predicates so callers and tests see
// the same boundary.
func Compile(s *Spec, now time.Time) squirrel.Sqlizer {
	var exprs []squirrel.Sqlizer

	// Пары min/max по одной колонке сворачиваем в один интервал.
	type bounds struct{ lo, hi any }
	ranged := map[string]*bounds{}
	for _, c := range s.Conds {
		if c.Derived != "" || (c.Op != schema.OpGte && c.Op != schema.OpLte) {
			continue
		}
		b := ranged[c.Column]
		if b == nil {
			b = &bounds{}
			ranged[c.Column] = b
		}
		if c.Op == schema.OpGte {
			b.lo = c.Value
		} else {
			b.hi = c.Value
		}
	}

	rangeDone := map[string]bool{}
	for _, c := range s.Conds {
		switch c.Derived {
		case schema.DerivedMinAge:
			// at least N years old: born on the cutoff day or earlier
			exprs = append(exprs, squirrel.LtOrEq{c.Column: ageCutoff(now, c.Value.(int))})
			continue
		case schema.DerivedMaxAge:
			// at most N years old: turning exactly N today still matches
			exprs = append(exprs, squirrel.GtOrEq{c.Column: ageCutoff(now, c.Value.(int))})
			continue
		case schema.DerivedOrderStatus:
			if p := statusPredicate(c.Value.(string), now); p != nil {
				exprs = append(exprs, p)
			}
			continue
		}

		switch c.Op {
		case schema.OpEq:
			exprs = append(exprs, squirrel.Eq{c.Column: c.Value})
		case schema.OpIn:
			exprs = append(exprs, squirrel.Eq{c.Column: c.Value})
		case schema.OpCnt:
			exprs = append(exprs, squirrel.ILike{c.Column: "%" + c.Value.(string) + "%"})
		case schema.OpGte, schema.OpLte:
			if rangeDone[c.Column] {
				continue
			}
			rangeDone[c.Column] = true
			b := ranged[c.Column]
			switch {
			case b.lo != nil && b.hi != nil:
				exprs = append(exprs, squirrel.And{squirrel.GtOrEq{c.Column: b.lo}, squirrel.LtOrEq{c.Column: b.hi}})
			case b.lo != nil:
				exprs = append(exprs, squirrel.GtOrEq{c.Column: b.lo})
			default:
				exprs = append(exprs, squirrel.LtOrEq{c.Column: b.hi})
			}
		}
	}

	if s.Search != "" && len(s.Entity.Search) > 0 {
		group := make(squirrel.Or, 0, len(s.Entity.Search))
		for _, col := range s.Entity.Search {
			group = append(group, squirrel.ILike{col: "%" + s.Search + "%"})
		}
		exprs = append(exprs, group)
	}

	if len(exprs) == 0 {
		return nil
	}
	if len(exprs) == 1 {
		return exprs[0]
	}
	return squirrel.And(exprs)
}

// ageCutoff converts an integer-years bound into a date bound with the
// same calendar arithmetic the age field itself uses.
func ageCutoff(now time.Time, years int) time.Time {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return today.AddDate(-years, 0, 0)
}

// statusPredicate expands a derived order status into date-column
// conditions. overdue stands alone and is never merged with the
// pending/processing logic.
func statusPredicate(status string, now time.Time) squirrel.Sqlizer {
	switch status {
	case "pending":
		return squirrel.Eq{colOrderDate: nil}
	case "processing":
		return squirrel.And{squirrel.NotEq{colOrderDate: nil}, squirrel.Eq{colShippedDate: nil}}
	case "shipped":
		return squirrel.NotEq{colShippedDate: nil}
	case "overdue":
		return squirrel.And{squirrel.Eq{colShippedDate: nil}, squirrel.Lt{colRequiredDate: now}}
	}
	return nil
}
