package query

import (
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"northwind/internal/apperr"
	"northwind/internal/schema"
)

const (
	DefaultPage     = 1
	DefaultPageSize = 10
	MaxPageSize     = 100
)

const dateLayout = "2006-01-02"

// Parse turns raw query parameters into a Spec. Every name goes
// through the entity whitelists; violations are collected and returned
// together as a single InvalidQuery error, not one at a time.
//
// Unknown parameters are ignored to keep endpoints forward-compatible.
// Absent page/limit fall back to defaults, present-and-invalid ones do
// not. An empty filter value means "no filter", but an empty search is
// rejected.
func Parse(ent *schema.Entity, params url.Values) (*Spec, error) {
	s := &Spec{
		Entity:    ent,
		Page:      DefaultPage,
		PageSize:  DefaultPageSize,
		SortField: ent.DefaultSort.Field,
		SortDir:   ent.DefaultSort.Direction,
	}
	s.SortColumn, _ = ent.SortColumn(s.SortField)

	var violations []apperr.FieldError
	fail := func(field, format string, args ...any) {
		violations = append(violations, apperr.FieldError{Field: field, Message: fmt.Sprintf(format, args...)})
	}

	if raw := strings.TrimSpace(params.Get("page")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			fail("page", "must be a positive integer, got '%s'", raw)
		} else {
			s.Page = n
		}
	}

	if raw := strings.TrimSpace(params.Get("limit")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > MaxPageSize {
			fail("limit", "must be an integer between 1 and %d, got '%s'", MaxPageSize, raw)
		} else {
			s.PageSize = n
		}
	}

	if raw := strings.TrimSpace(params.Get("sort")); raw != "" {
		col, ok := ent.SortColumn(raw)
		if !ok {
			fail("sort", "unknown sort field '%s' for %s", raw, ent.Name)
		} else {
			s.SortField = raw
			s.SortColumn = col
			s.SortDir = "ASC"
		}
	}

	if raw := strings.TrimSpace(params.Get("order")); raw != "" {
		switch strings.ToUpper(raw) {
		case "ASC":
			s.SortDir = "ASC"
		case "DESC":
			s.SortDir = "DESC"
		default:
			fail("order", "must be asc or desc, got '%s'", raw)
		}
	}

	if _, present := params["search"]; present {
		raw := strings.TrimSpace(params.Get("search"))
		switch {
		case raw == "":
			fail("search", "must not be empty")
		case len(ent.Search) == 0:
			fail("search", "not supported for %s", ent.Name)
		default:
			s.Search = raw
		}
	}

	for _, param := range sortedFilterParams(ent) {
		if _, present := params[param]; !present {
			continue
		}
		raw := strings.TrimSpace(params.Get(param))
		if raw == "" {
			continue
		}
		cond, ferr := parseCond(param, ent.Filters[param], raw)
		if ferr != nil {
			violations = append(violations, *ferr)
			continue
		}
		if cond != nil {
			s.Conds = append(s.Conds, *cond)
		}
	}

	s.Includes = ParseIncludes(ent, params)

	if len(violations) > 0 {
		return nil, apperr.InvalidQuery(violations)
	}
	return s, nil
}

// ParseIncludes picks out the includeXxx=true toggles for the entity's
// declared relations. Detail endpoints use it on its own, without the
// rest of the Spec.
func ParseIncludes(ent *schema.Entity, params url.Values) []string {
	var includes []string
	for _, name := range sortedRelationNames(ent) {
		if params.Get("include"+upperFirst(name)) == "true" {
			includes = append(includes, name)
		}
	}
	return includes
}

// parseCond type-checks one raw filter value. nil, nil means the value
// reduced to nothing (e.g. an in-list of empty items), which is
// treated like an absent filter.
func parseCond(param string, f *schema.Filter, raw string) (*Cond, *apperr.FieldError) {
	cond := &Cond{Param: param, Column: f.Column, Op: f.Op, Type: f.Type, Derived: f.Derived}
	invalid := func(format string, args ...any) (*Cond, *apperr.FieldError) {
		return nil, &apperr.FieldError{Field: param, Message: fmt.Sprintf(format, args...)}
	}

	switch f.Derived {
	case schema.DerivedMinAge, schema.DerivedMaxAge:
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return invalid("must be a non-negative integer, got '%s'", raw)
		}
		cond.Value = n
		return cond, nil
	case schema.DerivedOrderStatus:
		if !containsString(f.Values, raw) {
			return invalid("must be one of %s, got '%s'", strings.Join(f.Values, ", "), raw)
		}
		cond.Value = raw
		return cond, nil
	}

	switch f.Type {
	case schema.TypeInt:
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return invalid("must be an integer, got '%s'", raw)
		}
		cond.Value = n
	case schema.TypeDecimal:
		d, err := decimal.NewFromString(raw)
		if err != nil {
			return invalid("must be a number, got '%s'", raw)
		}
		cond.Value = d
	case schema.TypeBool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return invalid("must be true or false, got '%s'", raw)
		}
		cond.Value = b
	case schema.TypeDate:
		t, err := time.Parse(dateLayout, raw)
		if err != nil {
			return invalid("must be a date in YYYY-MM-DD format, got '%s'", raw)
		}
		cond.Value = t
	case schema.TypeEnum:
		if !containsString(f.Values, raw) {
			return invalid("must be one of %s, got '%s'", strings.Join(f.Values, ", "), raw)
		}
		cond.Value = raw
	default:
		if f.Op == schema.OpIn {
			vals := splitList(raw)
			if len(vals) == 0 {
				return nil, nil
			}
			cond.Value = vals
		} else {
			cond.Value = raw
		}
	}
	return cond, nil
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func containsString(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}

// Карты в Go обходятся в случайном порядке, а нарушения и условия
// должны идти стабильно.
func sortedFilterParams(ent *schema.Entity) []string {
	params := make([]string, 0, len(ent.Filters))
	for p := range ent.Filters {
		params = append(params, p)
	}
	sort.Strings(params)
	return params
}

func sortedRelationNames(ent *schema.Entity) []string {
	names := make([]string, 0, len(ent.Relations))
	for n := range ent.Relations {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func upperFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
