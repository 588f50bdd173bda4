package schema

// FieldType is the declared value type of a filterable column. The
// query layer uses it to parse and validate raw parameter values
// before they reach SQL.
type FieldType string

const (
	TypeInt     FieldType = "int"
	TypeDecimal FieldType = "decimal"
	TypeString  FieldType = "string"
	TypeBool    FieldType = "bool"
	TypeDate    FieldType = "date"
	TypeEnum    FieldType = "enum"
)

// Operator is the comparison a filter applies to its column.
type Operator string

const (
	OpEq  Operator = "eq"
	OpIn  Operator = "in"
	OpGte Operator = "gte"
	OpLte Operator = "lte"
	OpCnt Operator = "cnt" // substring match, case-insensitive
)

// Derived filter kinds. These do not compare a single column: the
// compiler expands them into predicates over other columns.
const (
	DerivedOrderStatus = "order_status"
	DerivedMinAge      = "min_age"
	DerivedMaxAge      = "max_age"
)

// Filter describes one whitelisted query parameter of a list endpoint.
// Either Column+Type+Op are set, or Derived names a computed predicate.
type Filter struct {
	Column  string    `yaml:"column"`
	Type    FieldType `yaml:"type"`
	Op      Operator  `yaml:"op"`
	Derived string    `yaml:"derived"`
	Values  []string  `yaml:"values"` // allowed values when Type is enum
}

// RelationKind is the direction of a relation between two entities.
type RelationKind string

const (
	BelongsTo RelationKind = "belongs_to"
	HasMany   RelationKind = "has_many"
)

// Relation declares a linked entity reachable through ?include=.
// FK is the column holding the key: on this entity's table for
// belongs_to, on the target's table for has_many.
type Relation struct {
	Kind   RelationKind `yaml:"kind"`
	Entity string       `yaml:"entity"`
	FK     string       `yaml:"fk"`

	// runtime link, set by the linker
	ref *Entity
}

// Target returns the linked entity. Nil before the registry is built.
func (r *Relation) Target() *Entity { return r.ref }

// ForcePolicy is what a force delete does to dependent rows.
type ForcePolicy string

const (
	ForceSetNull ForcePolicy = "set_null"
	ForceCascade ForcePolicy = "cascade"
)

// Dependent declares rows in another table that reference this entity
// and therefore block a plain delete.
type Dependent struct {
	Entity  string      `yaml:"entity"`
	Table   string      `yaml:"table"`
	FK      string      `yaml:"fk"`
	OnForce ForcePolicy `yaml:"on_force"`
}

// Sort is a whitelisted sort selection: an api field name plus ASC or DESC.
type Sort struct {
	Field     string `yaml:"field"`
	Direction string `yaml:"direction"`
}

// Entity is one loaded schema file: the whitelists the query layer
// consults when it validates and compiles a request for this resource.
type Entity struct {
	Name        string               `yaml:"-"` // logical name, from the file name
	Table       string               `yaml:"table"`
	PrimaryKey  string               `yaml:"primary_key"`
	KeyType     FieldType            `yaml:"key_type"` // int or string
	DefaultSort Sort                 `yaml:"default_sort"`
	SortFields  map[string]string    `yaml:"sort_fields"` // api name -> column
	Filters     map[string]*Filter   `yaml:"filters"`
	Search      []string             `yaml:"search"` // columns OR-ed by ?search=
	Relations   map[string]*Relation `yaml:"relations"`
	Dependents  []Dependent          `yaml:"dependents"`
}

// SortColumn resolves an api sort name to its column.
func (e *Entity) SortColumn(name string) (string, bool) {
	col, ok := e.SortFields[name]
	return col, ok
}

// GetFilter returns the filter spec for a query parameter, or nil when
// the parameter is not whitelisted.
func (e *Entity) GetFilter(param string) *Filter {
	if e == nil || e.Filters == nil {
		return nil
	}
	return e.Filters[param]
}

// GetRelation returns the relation by include name, or nil.
func (e *Entity) GetRelation(name string) *Relation {
	if e == nil || e.Relations == nil {
		return nil
	}
	return e.Relations[name]
}
