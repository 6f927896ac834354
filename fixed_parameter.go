package searchspace

import (
	"fmt"
)

// FixedParameter models a domain with a single admissible value. Fixed
// parameters are excluded from the tunable view but still participate in
// membership checks and may carry dependents.
type FixedParameter struct {
	name       string
	ptype      ParameterType
	value      any
	dependents map[any][]string
}

// FixedOption configures optional fixed parameter behaviour.
type FixedOption func(*FixedParameter)

// FixedWithDependents declares parameters that become active when this
// parameter takes the trigger value. The only valid trigger is the fixed
// value itself.
func FixedWithDependents(dependents map[any][]string) FixedOption {
	return func(p *FixedParameter) {
		p.dependents = cloneDependents(dependents)
	}
}

// NewFixedParameter constructs a fixed parameter pinned to value.
func NewFixedParameter(name string, ptype ParameterType, value any, opts ...FixedOption) (*FixedParameter, error) {
	if name == "" {
		return nil, fmt.Errorf("searchspace: fixed parameter name must not be empty")
	}
	cast, err := castScalar(ptype, value)
	if err != nil {
		return nil, fmt.Errorf("searchspace: fixed parameter %q: %w", name, err)
	}
	p := &FixedParameter{
		name:  name,
		ptype: ptype,
		value: cast,
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

func (p *FixedParameter) Name() string        { return p.name }
func (p *FixedParameter) Type() ParameterType { return p.ptype }
func (p *FixedParameter) Kind() ParameterKind { return ParameterKindFixed }
func (p *FixedParameter) IsNumeric() bool     { return p.ptype.IsNumeric() }
func (p *FixedParameter) IsFixed() bool       { return true }

// IsHierarchical reports whether any dependents are declared.
func (p *FixedParameter) IsHierarchical() bool { return len(p.dependents) > 0 }

// Dependents returns a copy of the trigger value to dependent names mapping.
func (p *FixedParameter) Dependents() map[any][]string {
	return cloneDependents(p.dependents)
}

// Value returns the single admissible value.
func (p *FixedParameter) Value() any { return p.value }

// Validate reports whether value equals the fixed value after canonical
// casting.
func (p *FixedParameter) Validate(value any) bool {
	if !p.IsValidType(value) {
		return false
	}
	cast, err := castScalar(p.ptype, value)
	if err != nil {
		return false
	}
	return cast == p.value
}

// IsValidType reports whether value carries the parameter's value type.
func (p *FixedParameter) IsValidType(value any) bool {
	return validType(p.ptype, value)
}

// Cast coerces value to the canonical representation for the fixed type.
func (p *FixedParameter) Cast(value any) (any, error) {
	return castScalar(p.ptype, value)
}

// Clone returns an independent copy.
func (p *FixedParameter) Clone() Parameter {
	clone := *p
	clone.dependents = cloneDependents(p.dependents)
	return &clone
}

func (p *FixedParameter) String() string {
	return fmt.Sprintf("FixedParameter(name=%q, type=%s, value=%v)", p.name, p.ptype, p.value)
}
