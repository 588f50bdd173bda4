package query

import (
	"northwind/internal/schema"
)

// Cond is one validated (column, operator, value) triple, ready for
// the predicate compiler. Derived marks conditions that expand to a
// computed predicate instead of a plain column comparison.
type Cond struct {
	Param   string
	Column  string
	Op      schema.Operator
	Type    schema.FieldType
	Derived string
	Value   any
}

// Spec is the normalized, validated description of one list request.
// It is only built by Parse, which resolves every field and operator
// through the entity's whitelists, so a Spec never carries a raw
// string destined for query text.
type Spec struct {
	Entity     *schema.Entity
	Page       int
	PageSize   int
	SortField  string // api name
	SortColumn string
	SortDir    string // ASC or DESC
	Conds      []Cond
	Search     string
	Includes   []string // whitelisted relation names
}

// Offset is the store offset for the requested page.
func (s *Spec) Offset() uint64 {
	return uint64((s.Page - 1) * s.PageSize)
}

// Limit is the store limit for the requested page.
func (s *Spec) Limit() uint64 {
	return uint64(s.PageSize)
}

// HasInclude reports whether the request asked for a relation.
func (s *Spec) HasInclude(name string) bool {
	for _, inc := range s.Includes {
		if inc == name {
			return true
		}
	}
	return false
}
