package schema

import "fmt"

var knownDerived = map[string]bool{
	DerivedOrderStatus: true,
	DerivedMinAge:      true,
	DerivedMaxAge:      true,
}

// validate checks every entity for internal consistency after linking.
func (r *Registry) validate() error {
	for name, ent := range r.entities {
		if ent.Table == "" {
			return fmt.Errorf("entity '%s' has no table", name)
		}
		if ent.PrimaryKey == "" {
			return fmt.Errorf("entity '%s' has no primary_key", name)
		}
		if ent.KeyType != TypeInt && ent.KeyType != TypeString {
			return fmt.Errorf("entity '%s' key_type must be int or string, got '%s'", name, ent.KeyType)
		}

		if ent.DefaultSort.Field == "" {
			return fmt.Errorf("entity '%s' has no default_sort", name)
		}
		if _, ok := ent.SortFields[ent.DefaultSort.Field]; !ok {
			return fmt.Errorf("entity '%s' default_sort field '%s' is not in sort_fields", name, ent.DefaultSort.Field)
		}
		switch ent.DefaultSort.Direction {
		case "":
			ent.DefaultSort.Direction = "ASC"
		case "ASC", "DESC":
		default:
			return fmt.Errorf("entity '%s' default_sort direction must be ASC or DESC, got '%s'", name, ent.DefaultSort.Direction)
		}

		for param, f := range ent.Filters {
			if f == nil {
				return fmt.Errorf("entity '%s' filter '%s' is empty", name, param)
			}
			if f.Derived != "" {
				if !knownDerived[f.Derived] {
					return fmt.Errorf("entity '%s' filter '%s' has unknown derived kind '%s'", name, param, f.Derived)
				}
				continue
			}
			if f.Column == "" {
				return fmt.Errorf("entity '%s' filter '%s' has no column", name, param)
			}
			if f.Type == "" {
				return fmt.Errorf("entity '%s' filter '%s' has no type", name, param)
			}
			if f.Op == "" {
				return fmt.Errorf("entity '%s' filter '%s' has no op", name, param)
			}
			if f.Type == TypeEnum && len(f.Values) == 0 {
				return fmt.Errorf("entity '%s' filter '%s' is enum but lists no values", name, param)
			}
			if f.Op == OpCnt && f.Type != TypeString {
				return fmt.Errorf("entity '%s' filter '%s': cnt op requires string type", name, param)
			}
		}

		for _, dep := range ent.Dependents {
			if dep.OnForce != ForceSetNull && dep.OnForce != ForceCascade {
				return fmt.Errorf("entity '%s' dependent '%s' on_force must be set_null or cascade, got '%s'", name, dep.Entity, dep.OnForce)
			}
		}
	}
	return nil
}
