package schema

import (
	"fmt"
	"strings"
)

// link resolves relation targets and fills in conventional foreign
// keys. Schemas with irregular column names (ship_via, reports_to)
// set fk explicitly and skip the convention.
func (r *Registry) link() error {
	for entName, ent := range r.entities {
		for relName, rel := range ent.Relations {
			target, ok := r.entities[rel.Entity]
			if !ok {
				return fmt.Errorf("invalid relation: entity '%s' not found in '%s.%s'", rel.Entity, entName, relName)
			}
			rel.ref = target

			if rel.FK == "" {
				switch rel.Kind {
				case BelongsTo:
					// FK сидит в текущей таблице и указывает на связанную
					rel.FK = relName + "_id"
				case HasMany:
					// FK сидит в связанной таблице и указывает на текущую
					rel.FK = singular(entName) + "_id"
				}
			}

			if rel.Kind != BelongsTo && rel.Kind != HasMany {
				return fmt.Errorf("relation '%s.%s' must have valid kind (belongs_to, has_many), got '%s'", entName, relName, rel.Kind)
			}
		}

		for i, dep := range ent.Dependents {
			if _, ok := r.entities[dep.Entity]; !ok {
				return fmt.Errorf("invalid dependent: entity '%s' not found in '%s'", dep.Entity, entName)
			}
			if dep.FK == "" {
				return fmt.Errorf("dependent '%s' of '%s' has no fk", dep.Entity, entName)
			}
			if dep.Table == "" {
				ent.Dependents[i].Table = r.entities[dep.Entity].Table
			}
		}
	}
	return nil
}

func singular(name string) string {
	return strings.TrimSuffix(name, "s")
}
