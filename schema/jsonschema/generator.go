package jsonschema

import (
	"fmt"
	"sort"

	searchspace "github.com/goliatone/go-searchspace"
)

type generator struct{}

// NewGenerator constructs a JSON Schema compatible generator for search spaces.
func NewGenerator() searchspace.SchemaGenerator {
	return generator{}
}

// Option returns a searchspace.Option that wires the JSON Schema generator
// into a search space.
func Option() searchspace.Option {
	return searchspace.WithSchemaGenerator(NewGenerator())
}

// Generate renders the space as a JSON Schema object: one property per
// parameter, every parameter required, constraints listed under
// "x-constraints". Output is deterministic for a given space.
func (generator) Generate(space *searchspace.SearchSpace) (searchspace.SchemaDocument, error) {
	root := newObjectNode()
	if space != nil {
		for _, parameter := range space.Parameters() {
			node, err := buildParameterNode(parameter)
			if err != nil {
				return searchspace.SchemaDocument{}, err
			}
			root.Properties[parameter.Name()] = node
			root.Required = append(root.Required, parameter.Name())
		}
		if constraints := describeConstraints(space); len(constraints) > 0 {
			root.ensureAdditional()["x-constraints"] = constraints
		}
	}

	document := root.inline()
	document["$schema"] = "https://json-schema.org/draft/2020-12/schema"
	document["x-digest"] = root.Digest()

	return searchspace.SchemaDocument{
		Format:   searchspace.SchemaFormatJSONSchema,
		Document: document,
	}, nil
}

func buildParameterNode(parameter searchspace.Parameter) (*schemaNode, error) {
	node := &schemaNode{}
	switch parameter.Type() {
	case searchspace.ParameterTypeBool:
		node.Type = "boolean"
	case searchspace.ParameterTypeInt:
		node.Type = "integer"
	case searchspace.ParameterTypeFloat:
		node.Type = "number"
	case searchspace.ParameterTypeString:
		node.Type = "string"
	default:
		return nil, fmt.Errorf("jsonschema: parameter %q has unsupported type %s", parameter.Name(), parameter.Type())
	}

	switch p := parameter.(type) {
	case *searchspace.RangeParameter:
		lower, upper := p.Lower(), p.Upper()
		node.Minimum = &lower
		node.Maximum = &upper
		if p.LogScale() {
			node.ensureAdditional()["x-log-scale"] = true
		}
	case *searchspace.ChoiceParameter:
		node.Enum = p.Values()
	case *searchspace.FixedParameter:
		node.Const = p.Value()
	}

	if dependents := parameter.Dependents(); len(dependents) > 0 {
		node.ensureAdditional()["x-dependents"] = describeDependents(dependents)
	}
	return node, nil
}

func describeConstraints(space *searchspace.SearchSpace) []map[string]any {
	constraints := space.ParameterConstraints()
	if len(constraints) == 0 {
		return nil
	}
	out := make([]map[string]any, 0, len(constraints))
	for _, constraint := range constraints {
		names := constraint.ParameterNames()
		sort.Strings(names)
		entry := map[string]any{
			"parameters":  names,
			"description": fmt.Sprintf("%v", constraint),
		}
		out = append(out, entry)
	}
	return out
}

func describeDependents(dependents map[any][]string) map[string][]string {
	out := make(map[string][]string, len(dependents))
	for trigger, names := range dependents {
		sorted := append([]string{}, names...)
		sort.Strings(sorted)
		out[fmt.Sprintf("%v", trigger)] = sorted
	}
	return out
}
