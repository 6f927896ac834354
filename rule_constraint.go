package searchspace

import (
	"fmt"
	"sort"
)

// RuleConstraint evaluates an expression over the numeric parameterization
// and requires a boolean result. Expressions see each referenced parameter as
// a top-level variable plus a "values" map, and may call registered custom
// functions.
type RuleConstraint struct {
	label     string
	expr      string
	names     []string
	evaluator Evaluator
	compiled  CompiledRule
}

// RuleConstraintOption configures a rule constraint.
type RuleConstraintOption func(*RuleConstraint)

// RuleWithLabel names the constraint for diagnostics and logging.
func RuleWithLabel(label string) RuleConstraintOption {
	return func(c *RuleConstraint) {
		c.label = label
	}
}

// RuleWithEvaluator binds a specific evaluator. Constraints without one
// inherit the owning search space's evaluator when installed, falling back to
// the expr engine.
func RuleWithEvaluator(e Evaluator) RuleConstraintOption {
	return func(c *RuleConstraint) {
		c.evaluator = e
	}
}

// NewRuleConstraint constructs an expression-backed constraint over the named
// parameters.
func NewRuleConstraint(expression string, parameters []string, opts ...RuleConstraintOption) (*RuleConstraint, error) {
	if expression == "" {
		return nil, fmt.Errorf("searchspace: rule constraint expression must not be empty")
	}
	if len(parameters) == 0 {
		return nil, fmt.Errorf("searchspace: rule constraint requires at least one parameter name")
	}
	seen := make(map[string]struct{}, len(parameters))
	for _, name := range parameters {
		if name == "" {
			return nil, fmt.Errorf("searchspace: rule constraint parameter names must not be empty")
		}
		if _, duplicate := seen[name]; duplicate {
			return nil, fmt.Errorf("searchspace: rule constraint lists parameter %q twice", name)
		}
		seen[name] = struct{}{}
	}
	names := append([]string{}, parameters...)
	sort.Strings(names)

	c := &RuleConstraint{
		expr:  expression,
		names: names,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c, nil
}

// Expression returns the constraint expression.
func (c *RuleConstraint) Expression() string { return c.expr }

// Label returns the diagnostic label, falling back to the expression.
func (c *RuleConstraint) Label() string {
	if c.label != "" {
		return c.label
	}
	return c.expr
}

// ParameterNames returns the referenced parameter names, sorted.
func (c *RuleConstraint) ParameterNames() []string {
	return append([]string{}, c.names...)
}

// Check evaluates the expression against the numeric parameterization. A
// non-boolean result is an error, never a silent pass or fail.
func (c *RuleConstraint) Check(values map[string]float64) (bool, error) {
	for _, name := range c.names {
		if _, ok := values[name]; !ok {
			return false, fmt.Errorf("searchspace: constraint references parameter %q absent from numeric parameterization", name)
		}
	}

	ctx := RuleContext{
		Values:     values,
		Constraint: c.Label(),
	}
	var (
		result any
		err    error
	)
	if c.compiled != nil {
		result, err = c.compiled.Evaluate(ctx)
	} else {
		result, err = c.resolveEvaluator().Evaluate(ctx, c.expr)
	}
	if err != nil {
		return false, err
	}
	satisfied, ok := result.(bool)
	if !ok {
		return false, wrapEvaluationError("", c.expr, c.Label(),
			fmt.Errorf("expected boolean result, got %T", result))
	}
	return satisfied, nil
}

// Clone returns an independent copy. The evaluator and compiled program are
// shared; both are safe for concurrent use.
func (c *RuleConstraint) Clone() ParameterConstraint {
	clone := *c
	clone.names = append([]string{}, c.names...)
	return &clone
}

func (c *RuleConstraint) String() string {
	return fmt.Sprintf("RuleConstraint(%q)", c.expr)
}

// bindEvaluator attaches e when the constraint has no evaluator yet and
// compiles the expression eagerly so malformed rules fail at install time.
func (c *RuleConstraint) bindEvaluator(e Evaluator) error {
	if c.evaluator == nil && e != nil {
		c.evaluator = e
	}
	if c.compiled != nil {
		return nil
	}
	compiled, err := c.resolveEvaluator().Compile(c.expr)
	if err != nil {
		return err
	}
	c.compiled = compiled
	return nil
}

func (c *RuleConstraint) resolveEvaluator() Evaluator {
	if c.evaluator != nil {
		return c.evaluator
	}
	c.evaluator = NewExprEvaluator()
	return c.evaluator
}
