package searchspace

import (
	"fmt"
	"math"
)

// RangeParameter models a bounded numeric interval, inclusive on both ends.
type RangeParameter struct {
	name        string
	ptype       ParameterType
	lower       float64
	upper       float64
	logScale    bool
	digits      int
	isFidelity  bool
	targetValue any
}

// RangeOption configures optional range parameter behaviour.
type RangeOption func(*RangeParameter)

// RangeWithLogScale marks the interval as log scaled; bounds must be positive.
func RangeWithLogScale() RangeOption {
	return func(p *RangeParameter) {
		p.logScale = true
	}
}

// RangeWithDigits rounds cast float values to the given number of decimal
// digits.
func RangeWithDigits(digits int) RangeOption {
	return func(p *RangeParameter) {
		p.digits = digits
	}
}

// RangeWithFidelity marks the parameter as a fidelity with the given target.
func RangeWithFidelity(target float64) RangeOption {
	return func(p *RangeParameter) {
		p.isFidelity = true
		p.targetValue = target
	}
}

// NewRangeParameter constructs a range parameter over [lower, upper]. Only
// numeric parameter types are permitted and lower must be strictly below
// upper.
func NewRangeParameter(name string, ptype ParameterType, lower, upper float64, opts ...RangeOption) (*RangeParameter, error) {
	if name == "" {
		return nil, fmt.Errorf("searchspace: range parameter name must not be empty")
	}
	if !ptype.IsNumeric() {
		return nil, fmt.Errorf("searchspace: range parameter %q requires a numeric type, got %s", name, ptype)
	}
	if math.IsNaN(lower) || math.IsNaN(upper) || math.IsInf(lower, 0) || math.IsInf(upper, 0) {
		return nil, fmt.Errorf("searchspace: range parameter %q bounds must be finite", name)
	}
	if lower >= upper {
		return nil, fmt.Errorf("searchspace: range parameter %q requires lower < upper, got [%v, %v]", name, lower, upper)
	}
	p := &RangeParameter{
		name:  name,
		ptype: ptype,
		lower: lower,
		upper: upper,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}
	if p.logScale && p.lower <= 0 {
		return nil, fmt.Errorf("searchspace: range parameter %q is log scaled but lower bound %v is not positive", name, p.lower)
	}
	return p, nil
}

func (p *RangeParameter) Name() string         { return p.name }
func (p *RangeParameter) Type() ParameterType  { return p.ptype }
func (p *RangeParameter) Kind() ParameterKind  { return ParameterKindRange }
func (p *RangeParameter) IsNumeric() bool      { return true }
func (p *RangeParameter) IsFixed() bool        { return false }
func (p *RangeParameter) IsHierarchical() bool { return false }

// Dependents always returns nil; range parameters cannot trigger dependents.
func (p *RangeParameter) Dependents() map[any][]string { return nil }

// Lower returns the inclusive lower bound.
func (p *RangeParameter) Lower() float64 { return p.lower }

// Upper returns the inclusive upper bound.
func (p *RangeParameter) Upper() float64 { return p.upper }

// LogScale reports whether the interval is log scaled.
func (p *RangeParameter) LogScale() bool { return p.logScale }

// IsFidelity reports whether the parameter is a fidelity.
func (p *RangeParameter) IsFidelity() bool { return p.isFidelity }

// TargetValue returns the fidelity target, nil when not a fidelity.
func (p *RangeParameter) TargetValue() any { return p.targetValue }

// Validate reports whether value is a numeric of the parameter's type lying
// within the bounds.
func (p *RangeParameter) Validate(value any) bool {
	if !p.IsValidType(value) {
		return false
	}
	f, _ := numericValue(value)
	return f >= p.lower && f <= p.upper
}

// IsValidType reports whether value carries the parameter's numeric type.
func (p *RangeParameter) IsValidType(value any) bool {
	return validType(p.ptype, value)
}

// Cast coerces value to the canonical representation: int for integer
// ranges (rounded), float64 for float ranges (rounded to digits when set).
func (p *RangeParameter) Cast(value any) (any, error) {
	cast, err := castScalar(p.ptype, value)
	if err != nil {
		return nil, err
	}
	if p.ptype == ParameterTypeFloat && p.digits > 0 {
		factor := math.Pow10(p.digits)
		return math.Round(cast.(float64)*factor) / factor, nil
	}
	return cast, nil
}

// Clone returns an independent copy.
func (p *RangeParameter) Clone() Parameter {
	clone := *p
	return &clone
}

func (p *RangeParameter) String() string {
	return fmt.Sprintf("RangeParameter(name=%q, type=%s, bounds=[%v, %v])", p.name, p.ptype, p.lower, p.upper)
}
