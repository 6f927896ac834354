package searchspace

import (
	"fmt"
	"sort"
)

// FieldDescriptor describes a single parameter as a flat schema entry.
type FieldDescriptor struct {
	Name string
	Type string
	Kind string
	// Domain summarizes the admissible values: bounds for ranges, the value
	// list for choices, the pinned value for fixed parameters.
	Domain map[string]any
}

// DefaultSchemaGenerator returns the built-in descriptor-based schema generator.
func DefaultSchemaGenerator() SchemaGenerator {
	return descriptorGenerator{}
}

type descriptorGenerator struct{}

func (descriptorGenerator) Generate(space *SearchSpace) (SchemaDocument, error) {
	descriptors := deriveFieldDescriptors(space)
	if descriptors == nil {
		descriptors = []FieldDescriptor{}
	}
	return SchemaDocument{
		Format:   SchemaFormatDescriptors,
		Document: descriptors,
	}, nil
}

func deriveFieldDescriptors(space *SearchSpace) []FieldDescriptor {
	if space == nil {
		return nil
	}

	var fields []FieldDescriptor
	for _, parameter := range space.Parameters() {
		fields = append(fields, FieldDescriptor{
			Name:   parameter.Name(),
			Type:   parameter.Type().String(),
			Kind:   parameter.Kind().String(),
			Domain: describeDomain(parameter),
		})
	}
	return fields
}

func describeDomain(parameter Parameter) map[string]any {
	switch p := parameter.(type) {
	case *RangeParameter:
		domain := map[string]any{
			"lower": p.Lower(),
			"upper": p.Upper(),
		}
		if p.LogScale() {
			domain["log_scale"] = true
		}
		if p.IsFidelity() {
			domain["fidelity"] = true
			domain["target"] = p.TargetValue()
		}
		return domain
	case *ChoiceParameter:
		domain := map[string]any{
			"values": p.Values(),
		}
		if p.IsOrdered() {
			domain["ordered"] = true
		}
		if p.IsTask() {
			domain["task"] = true
		}
		if p.IsFidelity() {
			domain["fidelity"] = true
			domain["target"] = p.TargetValue()
		}
		if dependents := p.Dependents(); len(dependents) > 0 {
			domain["dependents"] = describeDependents(dependents)
		}
		return domain
	case *FixedParameter:
		domain := map[string]any{
			"value": p.Value(),
		}
		if dependents := p.Dependents(); len(dependents) > 0 {
			domain["dependents"] = describeDependents(dependents)
		}
		return domain
	default:
		return nil
	}
}

// describeDependents renders the trigger-value map as string-keyed entries
// with sorted dependent lists, keeping generated documents deterministic.
func describeDependents(dependents map[any][]string) map[string][]string {
	out := make(map[string][]string, len(dependents))
	for trigger, names := range dependents {
		sorted := append([]string{}, names...)
		sort.Strings(sorted)
		out[fmt.Sprintf("%v", trigger)] = sorted
	}
	return out
}
