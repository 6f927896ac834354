package searchspace

import (
	"fmt"
	"math"
	"sort"
)

// LinearConstraint bounds a weighted sum of numeric parameters:
// sum(coefficients[name] * values[name]) <= bound.
type LinearConstraint struct {
	coefficients map[string]float64
	bound        float64
}

// NewLinearConstraint constructs a linear constraint from a coefficient
// mapping and an inclusive upper bound.
func NewLinearConstraint(coefficients map[string]float64, bound float64) (*LinearConstraint, error) {
	if len(coefficients) == 0 {
		return nil, fmt.Errorf("searchspace: linear constraint requires at least one coefficient")
	}
	for name := range coefficients {
		if name == "" {
			return nil, fmt.Errorf("searchspace: linear constraint coefficient name must not be empty")
		}
	}
	return &LinearConstraint{
		coefficients: cloneCoefficients(coefficients),
		bound:        bound,
	}, nil
}

// ConstraintDict returns a copy of the coefficient mapping.
func (c *LinearConstraint) ConstraintDict() map[string]float64 {
	return cloneCoefficients(c.coefficients)
}

// Bound returns the inclusive upper bound on the weighted sum.
func (c *LinearConstraint) Bound() float64 { return c.bound }

// ParameterNames returns the referenced parameter names, sorted.
func (c *LinearConstraint) ParameterNames() []string {
	names := make([]string, 0, len(c.coefficients))
	for name := range c.coefficients {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Check evaluates the weighted sum against the bound. Every referenced
// parameter must be present in values.
func (c *LinearConstraint) Check(values map[string]float64) (bool, error) {
	total := 0.0
	for name, weight := range c.coefficients {
		value, ok := values[name]
		if !ok {
			return false, fmt.Errorf("searchspace: constraint references parameter %q absent from numeric parameterization", name)
		}
		total += weight * value
	}
	if math.IsNaN(total) {
		return false, fmt.Errorf("searchspace: constraint sum is not a number")
	}
	return total <= c.bound, nil
}

// Clone returns an independent copy.
func (c *LinearConstraint) Clone() ParameterConstraint {
	return &LinearConstraint{
		coefficients: cloneCoefficients(c.coefficients),
		bound:        c.bound,
	}
}

func (c *LinearConstraint) String() string {
	return fmt.Sprintf("LinearConstraint(%v <= %v)", c.coefficients, c.bound)
}

// OrderConstraint requires one parameter's value to stay at or below
// another's: lower <= upper.
type OrderConstraint struct {
	lowerName string
	upperName string
}

// NewOrderConstraint constructs an order constraint between two named
// parameters.
func NewOrderConstraint(lowerName, upperName string) (*OrderConstraint, error) {
	if lowerName == "" || upperName == "" {
		return nil, fmt.Errorf("searchspace: order constraint parameter names must not be empty")
	}
	if lowerName == upperName {
		return nil, fmt.Errorf("searchspace: order constraint requires two distinct parameters, got %q twice", lowerName)
	}
	return &OrderConstraint{lowerName: lowerName, upperName: upperName}, nil
}

// LowerName returns the name of the parameter constrained to be smaller.
func (c *OrderConstraint) LowerName() string { return c.lowerName }

// UpperName returns the name of the parameter constrained to be larger.
func (c *OrderConstraint) UpperName() string { return c.upperName }

// ParameterNames returns the two referenced parameter names.
func (c *OrderConstraint) ParameterNames() []string {
	return []string{c.lowerName, c.upperName}
}

// Check evaluates lower <= upper over the numeric parameterization.
func (c *OrderConstraint) Check(values map[string]float64) (bool, error) {
	lower, ok := values[c.lowerName]
	if !ok {
		return false, fmt.Errorf("searchspace: constraint references parameter %q absent from numeric parameterization", c.lowerName)
	}
	upper, ok := values[c.upperName]
	if !ok {
		return false, fmt.Errorf("searchspace: constraint references parameter %q absent from numeric parameterization", c.upperName)
	}
	return lower <= upper, nil
}

// Clone returns an independent copy.
func (c *OrderConstraint) Clone() ParameterConstraint {
	clone := *c
	return &clone
}

func (c *OrderConstraint) String() string {
	return fmt.Sprintf("OrderConstraint(%s <= %s)", c.lowerName, c.upperName)
}

// SumConstraint bounds the plain sum of the named parameters from above or
// below.
type SumConstraint struct {
	names        []string
	isUpperBound bool
	bound        float64
}

// NewSumConstraint constructs a sum constraint over at least two distinct
// parameters. When isUpperBound is true the sum must stay at or below bound,
// otherwise at or above.
func NewSumConstraint(names []string, isUpperBound bool, bound float64) (*SumConstraint, error) {
	if len(names) < 2 {
		return nil, fmt.Errorf("searchspace: sum constraint requires at least two parameters")
	}
	seen := make(map[string]struct{}, len(names))
	for _, name := range names {
		if name == "" {
			return nil, fmt.Errorf("searchspace: sum constraint parameter names must not be empty")
		}
		if _, duplicate := seen[name]; duplicate {
			return nil, fmt.Errorf("searchspace: sum constraint lists parameter %q twice", name)
		}
		seen[name] = struct{}{}
	}
	return &SumConstraint{
		names:        append([]string{}, names...),
		isUpperBound: isUpperBound,
		bound:        bound,
	}, nil
}

// IsUpperBound reports whether the bound caps the sum from above.
func (c *SumConstraint) IsUpperBound() bool { return c.isUpperBound }

// Bound returns the inclusive bound on the sum.
func (c *SumConstraint) Bound() float64 { return c.bound }

// ParameterNames returns the referenced parameter names in declaration order.
func (c *SumConstraint) ParameterNames() []string {
	return append([]string{}, c.names...)
}

// Check evaluates the sum against the bound.
func (c *SumConstraint) Check(values map[string]float64) (bool, error) {
	total := 0.0
	for _, name := range c.names {
		value, ok := values[name]
		if !ok {
			return false, fmt.Errorf("searchspace: constraint references parameter %q absent from numeric parameterization", name)
		}
		total += value
	}
	if c.isUpperBound {
		return total <= c.bound, nil
	}
	return total >= c.bound, nil
}

// Clone returns an independent copy.
func (c *SumConstraint) Clone() ParameterConstraint {
	return &SumConstraint{
		names:        append([]string{}, c.names...),
		isUpperBound: c.isUpperBound,
		bound:        c.bound,
	}
}

func (c *SumConstraint) String() string {
	op := ">="
	if c.isUpperBound {
		op = "<="
	}
	return fmt.Sprintf("SumConstraint(sum(%v) %s %v)", c.names, op, c.bound)
}

func cloneCoefficients(coefficients map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(coefficients))
	for name, weight := range coefficients {
		out[name] = weight
	}
	return out
}
