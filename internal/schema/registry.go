package schema

import (
	"fmt"
	"sort"

	"github.com/rs/zerolog/log"
)

// Registry holds every loaded entity schema. It is built once at
// startup, validated, and read-only afterwards, so handlers and the
// query layer may share it without locking.
type Registry struct {
	entities map[string]*Entity
}

// Load reads every *.yml schema in dir, links relations and validates
// the result. Any inconsistency fails startup.
func Load(dir string) (*Registry, error) {
	entities, err := loadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("load error: %w", err)
	}
	r := &Registry{entities: entities}
	if err := r.link(); err != nil {
		return nil, fmt.Errorf("link error: %w", err)
	}
	if err := r.validate(); err != nil {
		return nil, fmt.Errorf("validation error: %w", err)
	}
	log.Info().Int("entities", len(entities)).Msg("✅ entity schemas loaded")
	return r, nil
}

// Get returns the entity schema by name, or nil when unknown.
func (r *Registry) Get(name string) *Entity {
	if r == nil {
		return nil
	}
	return r.entities[name]
}

// Names returns the loaded entity names in stable order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.entities))
	for name := range r.entities {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
