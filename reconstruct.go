package searchspace

import (
	"fmt"
	"strconv"

	"github.com/goliatone/go-searchspace/internal/hydrate"
)

// parameterAttrs is the wire shape for parameter attributes.
type parameterAttrs struct {
	Name       string              `json:"name"`
	Type       string              `json:"type"`
	Kind       string              `json:"kind"`
	Lower      *float64            `json:"lower,omitempty"`
	Upper      *float64            `json:"upper,omitempty"`
	LogScale   bool                `json:"log_scale,omitempty"`
	Digits     int                 `json:"digits,omitempty"`
	Values     []any               `json:"values,omitempty"`
	Ordered    bool                `json:"ordered,omitempty"`
	Task       bool                `json:"task,omitempty"`
	Fidelity   bool                `json:"fidelity,omitempty"`
	Target     any                 `json:"target,omitempty"`
	Value      any                 `json:"value,omitempty"`
	Dependents map[string][]string `json:"dependents,omitempty"`
}

// constraintAttrs is the wire shape for constraint attributes.
type constraintAttrs struct {
	Kind         string             `json:"kind"`
	Coefficients map[string]float64 `json:"coefficients,omitempty"`
	Bound        float64            `json:"bound,omitempty"`
	UpperBound   bool               `json:"upper_bound,omitempty"`
	Lower        string             `json:"lower,omitempty"`
	Upper        string             `json:"upper,omitempty"`
	Parameters   []string           `json:"parameters,omitempty"`
	Expression   string             `json:"expression,omitempty"`
	Label        string             `json:"label,omitempty"`
}

// searchSpaceAttrs is the wire shape for a full search space.
type searchSpaceAttrs struct {
	Hierarchical bool             `json:"hierarchical,omitempty"`
	Parameters   []map[string]any `json:"parameters"`
	Constraints  []map[string]any `json:"constraints,omitempty"`
}

var (
	parameterDecoder  = hydrate.NewDecoder[parameterAttrs](hydrate.WithUseNumber[parameterAttrs]())
	constraintDecoder = hydrate.NewDecoder[constraintAttrs](hydrate.WithUseNumber[constraintAttrs]())
	spaceDecoder      = hydrate.NewDecoder[searchSpaceAttrs](hydrate.WithUseNumber[searchSpaceAttrs]())
)

// ParameterFromAttributes reconstructs a parameter from its attribute map.
// Numeric attribute values keep their int/float distinction through decoding.
func ParameterFromAttributes(attrs map[string]any) (Parameter, error) {
	decoded, err := parameterDecoder.Decode(hydrate.Context{Kind: "parameter", Name: attrName(attrs)}, attrs)
	if err != nil {
		return nil, err
	}

	ptype := ParseParameterType(decoded.Type)
	if ptype == ParameterTypeUnknown {
		return nil, fmt.Errorf("searchspace: parameter %q has unknown type %q", decoded.Name, decoded.Type)
	}

	switch ParseParameterKind(decoded.Kind) {
	case ParameterKindRange:
		if decoded.Lower == nil || decoded.Upper == nil {
			return nil, fmt.Errorf("searchspace: range parameter %q requires lower and upper bounds", decoded.Name)
		}
		var opts []RangeOption
		if decoded.LogScale {
			opts = append(opts, RangeWithLogScale())
		}
		if decoded.Digits > 0 {
			opts = append(opts, RangeWithDigits(decoded.Digits))
		}
		if decoded.Fidelity {
			target, ok := numericValue(decoded.Target)
			if !ok {
				return nil, fmt.Errorf("searchspace: range parameter %q has non-numeric fidelity target %v", decoded.Name, decoded.Target)
			}
			opts = append(opts, RangeWithFidelity(target))
		}
		return NewRangeParameter(decoded.Name, ptype, *decoded.Lower, *decoded.Upper, opts...)
	case ParameterKindChoice:
		var opts []ChoiceOption
		if decoded.Ordered {
			opts = append(opts, ChoiceWithOrdered())
		}
		if decoded.Task {
			opts = append(opts, ChoiceWithTask())
		}
		if decoded.Fidelity {
			opts = append(opts, ChoiceWithFidelity(decoded.Target))
		}
		if len(decoded.Dependents) > 0 {
			dependents, err := parseDependents(ptype, decoded.Dependents)
			if err != nil {
				return nil, fmt.Errorf("searchspace: parameter %q: %w", decoded.Name, err)
			}
			opts = append(opts, ChoiceWithDependents(dependents))
		}
		return NewChoiceParameter(decoded.Name, ptype, decoded.Values, opts...)
	case ParameterKindFixed:
		var opts []FixedOption
		if len(decoded.Dependents) > 0 {
			dependents, err := parseDependents(ptype, decoded.Dependents)
			if err != nil {
				return nil, fmt.Errorf("searchspace: parameter %q: %w", decoded.Name, err)
			}
			opts = append(opts, FixedWithDependents(dependents))
		}
		return NewFixedParameter(decoded.Name, ptype, decoded.Value, opts...)
	default:
		return nil, fmt.Errorf("searchspace: parameter %q has unknown kind %q", decoded.Name, decoded.Kind)
	}
}

// ConstraintFromAttributes reconstructs a constraint from its attribute map.
func ConstraintFromAttributes(attrs map[string]any) (ParameterConstraint, error) {
	decoded, err := constraintDecoder.Decode(hydrate.Context{Kind: "constraint", Name: attrName(attrs)}, attrs)
	if err != nil {
		return nil, err
	}

	switch decoded.Kind {
	case "linear":
		return NewLinearConstraint(decoded.Coefficients, decoded.Bound)
	case "order":
		return NewOrderConstraint(decoded.Lower, decoded.Upper)
	case "sum":
		return NewSumConstraint(decoded.Parameters, decoded.UpperBound, decoded.Bound)
	case "rule":
		var opts []RuleConstraintOption
		if decoded.Label != "" {
			opts = append(opts, RuleWithLabel(decoded.Label))
		}
		return NewRuleConstraint(decoded.Expression, decoded.Parameters, opts...)
	default:
		return nil, fmt.Errorf("searchspace: constraint has unknown kind %q", decoded.Kind)
	}
}

// FromAttributes reconstructs a search space from its attribute map. The
// hierarchical flag selects tree validation; options apply as in New.
func FromAttributes(attrs map[string]any, opts ...Option) (*SearchSpace, error) {
	decoded, err := spaceDecoder.Decode(hydrate.Context{Kind: "searchspace"}, attrs)
	if err != nil {
		return nil, err
	}
	if decoded.Hierarchical {
		return nil, fmt.Errorf("searchspace: use HierarchicalFromAttributes for hierarchical payloads")
	}
	parameters, constraints, err := decodeMembers(decoded)
	if err != nil {
		return nil, err
	}
	return New(parameters, append(opts, WithParameterConstraints(constraints...))...)
}

// HierarchicalFromAttributes reconstructs a hierarchical search space,
// running root discovery and tree validation as in NewHierarchical.
func HierarchicalFromAttributes(attrs map[string]any, opts ...Option) (*HierarchicalSearchSpace, error) {
	decoded, err := spaceDecoder.Decode(hydrate.Context{Kind: "searchspace"}, attrs)
	if err != nil {
		return nil, err
	}
	parameters, constraints, err := decodeMembers(decoded)
	if err != nil {
		return nil, err
	}
	return NewHierarchical(parameters, append(opts, WithParameterConstraints(constraints...))...)
}

func decodeMembers(decoded searchSpaceAttrs) ([]Parameter, []ParameterConstraint, error) {
	parameters := make([]Parameter, 0, len(decoded.Parameters))
	for _, attrs := range decoded.Parameters {
		parameter, err := ParameterFromAttributes(attrs)
		if err != nil {
			return nil, nil, err
		}
		parameters = append(parameters, parameter)
	}
	constraints := make([]ParameterConstraint, 0, len(decoded.Constraints))
	for _, attrs := range decoded.Constraints {
		constraint, err := ConstraintFromAttributes(attrs)
		if err != nil {
			return nil, nil, err
		}
		constraints = append(constraints, constraint)
	}
	return parameters, constraints, nil
}

// parseDependents converts string trigger keys back to the parameter's value
// type. JSON object keys are always strings, so the round trip goes through
// the type tag.
func parseDependents(ptype ParameterType, raw map[string][]string) (map[any][]string, error) {
	out := make(map[any][]string, len(raw))
	for key, names := range raw {
		trigger, err := parseTriggerValue(ptype, key)
		if err != nil {
			return nil, err
		}
		out[trigger] = append([]string{}, names...)
	}
	return out, nil
}

func parseTriggerValue(ptype ParameterType, key string) (any, error) {
	switch ptype {
	case ParameterTypeBool:
		value, err := strconv.ParseBool(key)
		if err != nil {
			return nil, fmt.Errorf("dependent trigger %q is not a bool", key)
		}
		return value, nil
	case ParameterTypeInt:
		value, err := strconv.ParseInt(key, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("dependent trigger %q is not an int", key)
		}
		return int(value), nil
	case ParameterTypeFloat:
		value, err := strconv.ParseFloat(key, 64)
		if err != nil {
			return nil, fmt.Errorf("dependent trigger %q is not a float", key)
		}
		return value, nil
	default:
		return key, nil
	}
}

func attrName(attrs map[string]any) string {
	if name, ok := attrs["name"].(string); ok {
		return name
	}
	return ""
}
