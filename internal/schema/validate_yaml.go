package schema

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Разрешённые ключи для сущностей
var allowedEntityKeys = map[string]bool{
	"table":        true,
	"primary_key":  true,
	"key_type":     true,
	"default_sort": true,
	"sort_fields":  true,
	"filters":      true,
	"search":       true,
	"relations":    true,
	"dependents":   true,
}

var allowedSortKeys = map[string]bool{
	"field":     true,
	"direction": true,
}

var allowedFilterKeys = map[string]bool{
	"column":  true,
	"type":    true,
	"op":      true,
	"derived": true,
	"values":  true,
}

var allowedRelationKeys = map[string]bool{
	"kind":   true,
	"entity": true,
	"fk":     true,
}

var allowedDependentKeys = map[string]bool{
	"entity":   true,
	"table":    true,
	"fk":       true,
	"on_force": true,
}

// Разрешённые значения для type в фильтрах
var allowedFilterTypeValues = map[string]bool{
	"int":     true,
	"decimal": true,
	"string":  true,
	"bool":    true,
	"date":    true,
	"enum":    true,
}

var allowedFilterOpValues = map[string]bool{
	"eq":  true,
	"in":  true,
	"gte": true,
	"lte": true,
	"cnt": true,
}

// validateYAMLNode rejects unknown keys and illegal scalar values
// before the document is decoded, so a typo in a schema file fails
// startup instead of silently dropping a whitelist entry.
func validateYAMLNode(node *yaml.Node, context string) error {
	switch node.Kind {
	case yaml.DocumentNode:
		for _, child := range node.Content {
			if err := validateYAMLNode(child, "entity"); err != nil {
				return err
			}
		}

	case yaml.MappingNode:
		var allowedKeys map[string]bool
		switch context {
		case "entity":
			allowedKeys = allowedEntityKeys
		case "default_sort":
			allowedKeys = allowedSortKeys
		case "filter":
			allowedKeys = allowedFilterKeys
		case "relation":
			allowedKeys = allowedRelationKeys
		case "dependent":
			allowedKeys = allowedDependentKeys
		default:
			allowedKeys = nil // свободная форма
		}

		for i := 0; i < len(node.Content); i += 2 {
			keyNode := node.Content[i]
			valNode := node.Content[i+1]
			key := keyNode.Value

			if allowedKeys != nil && !allowedKeys[key] {
				return fmt.Errorf("unknown key '%s' in %s", key, context)
			}

			if context == "filter" && key == "type" {
				if !allowedFilterTypeValues[valNode.Value] {
					return fmt.Errorf("unknown type value '%s' in filter", valNode.Value)
				}
			}
			if context == "filter" && key == "op" && valNode.Value != "" {
				if !allowedFilterOpValues[valNode.Value] {
					return fmt.Errorf("unknown op value '%s' in filter", valNode.Value)
				}
			}

			// Определяем новый контекст
			nextContext := ""
			switch {
			case context == "entity" && key == "default_sort":
				nextContext = "default_sort"
			case context == "entity" && key == "sort_fields":
				nextContext = "sort-fields-map"
			case context == "entity" && key == "filters":
				nextContext = "filters-map"
			case context == "filters-map":
				nextContext = "filter"
			case context == "entity" && key == "relations":
				nextContext = "relations-map"
			case context == "relations-map":
				nextContext = "relation"
			case context == "entity" && key == "dependents":
				nextContext = "dependents-seq"
			default:
				nextContext = context
			}

			if err := validateYAMLNode(valNode, nextContext); err != nil {
				return err
			}
		}

	case yaml.SequenceNode:
		if context == "dependents-seq" {
			for _, item := range node.Content {
				if err := validateYAMLNode(item, "dependent"); err != nil {
					return err
				}
			}
		} else {
			for _, item := range node.Content {
				if err := validateYAMLNode(item, context); err != nil {
					return err
				}
			}
		}

	case yaml.ScalarNode:
		// скаляры проверяются при разборе MappingNode
	}

	return nil
}
