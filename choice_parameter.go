package searchspace

import (
	"fmt"
)

// ChoiceParameter models an explicit, finite value set. Choice parameters can
// carry dependents, making the search space hierarchical: a dependent
// parameter only becomes active when this parameter takes the trigger value.
type ChoiceParameter struct {
	name        string
	ptype       ParameterType
	values      []any
	isOrdered   bool
	isTask      bool
	isFidelity  bool
	targetValue any
	dependents  map[any][]string
}

// ChoiceOption configures optional choice parameter behaviour.
type ChoiceOption func(*ChoiceParameter)

// ChoiceWithOrdered marks the value set as ordered (ordinal).
func ChoiceWithOrdered() ChoiceOption {
	return func(p *ChoiceParameter) {
		p.isOrdered = true
	}
}

// ChoiceWithTask marks the parameter as a task parameter.
func ChoiceWithTask() ChoiceOption {
	return func(p *ChoiceParameter) {
		p.isTask = true
	}
}

// ChoiceWithFidelity marks the parameter as a fidelity with the given target.
func ChoiceWithFidelity(target any) ChoiceOption {
	return func(p *ChoiceParameter) {
		p.isFidelity = true
		p.targetValue = target
	}
}

// ChoiceWithDependents declares parameters that become active when this
// parameter takes the trigger value. Triggers must be members of the value
// set.
func ChoiceWithDependents(dependents map[any][]string) ChoiceOption {
	return func(p *ChoiceParameter) {
		p.dependents = cloneDependents(dependents)
	}
}

// NewChoiceParameter constructs a choice parameter over values. The set must
// not be empty and every value must carry the declared type; duplicates fail.
func NewChoiceParameter(name string, ptype ParameterType, values []any, opts ...ChoiceOption) (*ChoiceParameter, error) {
	if name == "" {
		return nil, fmt.Errorf("searchspace: choice parameter name must not be empty")
	}
	if ptype == ParameterTypeUnknown {
		return nil, fmt.Errorf("searchspace: choice parameter %q requires a parameter type", name)
	}
	if len(values) == 0 {
		return nil, fmt.Errorf("searchspace: choice parameter %q requires at least one value", name)
	}

	canonical := make([]any, 0, len(values))
	seen := make(map[any]struct{}, len(values))
	for _, value := range values {
		cast, err := castScalar(ptype, value)
		if err != nil {
			return nil, fmt.Errorf("searchspace: choice parameter %q: %w", name, err)
		}
		if _, duplicate := seen[cast]; duplicate {
			return nil, fmt.Errorf("searchspace: choice parameter %q has duplicate value %v", name, cast)
		}
		seen[cast] = struct{}{}
		canonical = append(canonical, cast)
	}

	p := &ChoiceParameter{
		name:   name,
		ptype:  ptype,
		values: canonical,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}
	if err := validateDependents(p, p.dependents); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *ChoiceParameter) Name() string        { return p.name }
func (p *ChoiceParameter) Type() ParameterType { return p.ptype }
func (p *ChoiceParameter) Kind() ParameterKind { return ParameterKindChoice }
func (p *ChoiceParameter) IsNumeric() bool     { return p.ptype.IsNumeric() }
func (p *ChoiceParameter) IsFixed() bool       { return false }

// IsHierarchical reports whether any dependents are declared.
func (p *ChoiceParameter) IsHierarchical() bool { return len(p.dependents) > 0 }

// Dependents returns a copy of the trigger value to dependent names mapping.
func (p *ChoiceParameter) Dependents() map[any][]string {
	return cloneDependents(p.dependents)
}

// Values returns a copy of the admissible value set in declaration order.
func (p *ChoiceParameter) Values() []any {
	return append([]any{}, p.values...)
}

// IsOrdered reports whether the value set is ordinal.
func (p *ChoiceParameter) IsOrdered() bool { return p.isOrdered }

// IsTask reports whether the parameter is a task parameter.
func (p *ChoiceParameter) IsTask() bool { return p.isTask }

// IsFidelity reports whether the parameter is a fidelity.
func (p *ChoiceParameter) IsFidelity() bool { return p.isFidelity }

// TargetValue returns the fidelity target, nil when not a fidelity.
func (p *ChoiceParameter) TargetValue() any { return p.targetValue }

// Validate reports whether value is a member of the value set. Numeric
// representations are compared after canonical casting so ints and integral
// floats match.
func (p *ChoiceParameter) Validate(value any) bool {
	if !p.IsValidType(value) {
		return false
	}
	cast, err := castScalar(p.ptype, value)
	if err != nil {
		return false
	}
	for _, candidate := range p.values {
		if candidate == cast {
			return true
		}
	}
	return false
}

// IsValidType reports whether value carries the parameter's value type.
func (p *ChoiceParameter) IsValidType(value any) bool {
	return validType(p.ptype, value)
}

// Cast coerces value to the canonical member representation.
func (p *ChoiceParameter) Cast(value any) (any, error) {
	return castScalar(p.ptype, value)
}

// Clone returns an independent copy.
func (p *ChoiceParameter) Clone() Parameter {
	clone := *p
	clone.values = append([]any{}, p.values...)
	clone.dependents = cloneDependents(p.dependents)
	return &clone
}

func (p *ChoiceParameter) String() string {
	return fmt.Sprintf("ChoiceParameter(name=%q, type=%s, values=%v)", p.name, p.ptype, p.values)
}
