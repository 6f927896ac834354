package searchspace

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
)

// SearchSpace owns a uniquely named set of parameters and the constraints
// that restrict their joint domain. It validates parameterizations, casts
// arms, and constructs arms.
//
// Mutators are not safe for concurrent invocation; callers needing concurrent
// readers and writers must serialize access externally. Clone produces a
// fully independent copy safe to hand to another goroutine.
type SearchSpace struct {
	id          string
	names       []string
	parameters  map[string]Parameter
	constraints []ParameterConstraint
	cfg         spaceConfig
}

// New constructs a SearchSpace over the given parameters. Duplicate parameter
// names fail. Constraints supplied via WithParameterConstraints are installed
// through the same path as SetParameterConstraints.
func New(parameters []Parameter, opts ...Option) (*SearchSpace, error) {
	cfg := applyOptions(opts)

	s := &SearchSpace{
		id:         uuid.NewString(),
		names:      make([]string, 0, len(parameters)),
		parameters: make(map[string]Parameter, len(parameters)),
		cfg:        cfg,
	}
	for _, parameter := range parameters {
		if parameter == nil {
			return nil, fmt.Errorf("searchspace: parameter must not be nil")
		}
		name := parameter.Name()
		if name == "" {
			return nil, fmt.Errorf("searchspace: parameter name must not be empty")
		}
		if _, duplicate := s.parameters[name]; duplicate {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateParameterName, name)
		}
		s.parameters[name] = parameter
		s.names = append(s.names, name)
	}

	if err := s.installConstraints(cfg.constraints); err != nil {
		return nil, err
	}
	return s, nil
}

// ID returns the space's unique identifier, used in audit events.
func (s *SearchSpace) ID() string { return s.id }

// Len returns the number of parameters.
func (s *SearchSpace) Len() int { return len(s.names) }

// ParameterNames returns parameter names in insertion order.
func (s *SearchSpace) ParameterNames() []string {
	return append([]string{}, s.names...)
}

// Parameters returns the canonical parameter instances in insertion order.
func (s *SearchSpace) Parameters() []Parameter {
	out := make([]Parameter, 0, len(s.names))
	for _, name := range s.names {
		out = append(out, s.parameters[name])
	}
	return out
}

// Parameter returns the canonical instance stored under name.
func (s *SearchSpace) Parameter(name string) (Parameter, bool) {
	parameter, ok := s.parameters[name]
	return parameter, ok
}

// ParameterConstraints returns a copy of the constraint list in order.
func (s *SearchSpace) ParameterConstraints() []ParameterConstraint {
	return append([]ParameterConstraint{}, s.constraints...)
}

// RangeParameters returns the parameters of the bounded numeric range kind,
// computed on access.
func (s *SearchSpace) RangeParameters() []Parameter {
	out := []Parameter{}
	for _, name := range s.names {
		if parameter := s.parameters[name]; parameter.Kind() == ParameterKindRange {
			out = append(out, parameter)
		}
	}
	return out
}

// TunableParameters returns every parameter except fixed ones, computed on
// access.
func (s *SearchSpace) TunableParameters() []Parameter {
	out := []Parameter{}
	for _, name := range s.names {
		if parameter := s.parameters[name]; !parameter.IsFixed() {
			out = append(out, parameter)
		}
	}
	return out
}

// AddParameter inserts a new parameter. Fails when the name is already
// present; use UpdateParameter for existing parameters.
func (s *SearchSpace) AddParameter(parameter Parameter) error {
	if err := s.addParameter(parameter); err != nil {
		return err
	}
	s.emitParameterAudit(auditVerbParameterAdded, parameter)
	return nil
}

func (s *SearchSpace) addParameter(parameter Parameter) error {
	if parameter == nil {
		return fmt.Errorf("searchspace: parameter must not be nil")
	}
	name := parameter.Name()
	if name == "" {
		return fmt.Errorf("searchspace: parameter name must not be empty")
	}
	if _, exists := s.parameters[name]; exists {
		return fmt.Errorf("%w: %q; use UpdateParameter to update an existing parameter", ErrParameterExists, name)
	}
	s.parameters[name] = parameter
	s.names = append(s.names, name)
	return nil
}

// UpdateParameter replaces an existing parameter. The replacement must keep
// the stored parameter's type; type changes require remove and re-add.
func (s *SearchSpace) UpdateParameter(parameter Parameter) error {
	if err := s.updateParameter(parameter); err != nil {
		return err
	}
	s.emitParameterAudit(auditVerbParameterUpdated, parameter)
	return nil
}

func (s *SearchSpace) updateParameter(parameter Parameter) error {
	if parameter == nil {
		return fmt.Errorf("searchspace: parameter must not be nil")
	}
	name := parameter.Name()
	existing, ok := s.parameters[name]
	if !ok {
		return fmt.Errorf("%w: %q; use AddParameter to add a new parameter", ErrParameterNotFound, name)
	}
	if parameter.Type() != existing.Type() {
		return fmt.Errorf("%w: parameter %q has type %s, cannot update to type %s",
			ErrParameterTypeChange, name, existing.Type(), parameter.Type())
	}
	s.parameters[name] = parameter
	return nil
}

// AddParameterConstraints validates and appends constraints to the existing
// list. Nothing is appended when any constraint fails validation.
func (s *SearchSpace) AddParameterConstraints(constraints ...ParameterConstraint) error {
	if err := s.validateConstraints(constraints); err != nil {
		return err
	}
	if err := s.bindConstraints(constraints); err != nil {
		return err
	}
	s.constraints = append(s.constraints, constraints...)
	s.emitAudit(auditVerbConstraintsAdded, "", map[string]any{
		"added": len(constraints),
		"total": len(s.constraints),
	})
	return nil
}

// SetParameterConstraints replaces the constraint list. The replace is
// atomic: the list is only reassigned after every constraint validates.
func (s *SearchSpace) SetParameterConstraints(constraints ...ParameterConstraint) error {
	if err := s.installConstraints(constraints); err != nil {
		return err
	}
	s.emitAudit(auditVerbConstraintsSet, "", map[string]any{
		"total": len(s.constraints),
	})
	return nil
}

func (s *SearchSpace) installConstraints(constraints []ParameterConstraint) error {
	if err := s.validateConstraints(constraints); err != nil {
		return err
	}
	if err := s.bindConstraints(constraints); err != nil {
		return err
	}
	s.constraints = append([]ParameterConstraint{}, constraints...)
	return nil
}

// validateConstraints checks that every parameter a constraint names exists
// in the space. Constraints hold names only and resolve against the space's
// canonical instances at check time, so name existence is the whole contract.
func (s *SearchSpace) validateConstraints(constraints []ParameterConstraint) error {
	for _, constraint := range constraints {
		if constraint == nil {
			return fmt.Errorf("searchspace: constraint must not be nil")
		}
		for _, name := range constraint.ParameterNames() {
			if _, ok := s.parameters[name]; !ok {
				return fmt.Errorf("%w: constraint %v references %q", ErrUnknownParameter, constraint, name)
			}
		}
	}
	return nil
}

// bindConstraints attaches the space's evaluator to rule constraints that
// were built without one, compiling their expressions eagerly so malformed
// rules fail at install time.
func (s *SearchSpace) bindConstraints(constraints []ParameterConstraint) error {
	for _, constraint := range constraints {
		rule, ok := constraint.(*RuleConstraint)
		if !ok {
			continue
		}
		if err := rule.bindEvaluator(s.defaultEvaluator()); err != nil {
			return err
		}
	}
	return nil
}

func (s *SearchSpace) defaultEvaluator() Evaluator {
	if s.cfg.evaluator != nil {
		return s.cfg.evaluator
	}
	var exprOpts []ExprEvaluatorOption
	if cache := s.cfg.programCache; cache != nil {
		exprOpts = append(exprOpts, ExprWithProgramCache(cache))
	}
	if registry := s.cfg.functions; registry != nil {
		exprOpts = append(exprOpts, ExprWithFunctionRegistry(registry))
	}
	s.cfg.evaluator = NewExprEvaluator(exprOpts...)
	return s.cfg.evaluator
}

// CheckMembership reports whether the given parameterization belongs in the
// search space: same cardinality as the parameter set, every name known,
// every value inside its parameter's domain, and the numeric subset
// satisfying every constraint. Checks short-circuit on the first failing
// condition. With raiseError the failing condition is returned as a
// descriptive error instead of a bare false.
func (s *SearchSpace) CheckMembership(parameterization Parameterization, raiseError bool) (bool, error) {
	if len(parameterization) != len(s.parameters) {
		return false, s.membershipFailure(raiseError, &MembershipError{
			Reason: fmt.Sprintf("parameterization has %d parameters but search space has %d",
				len(parameterization), len(s.parameters)),
		})
	}

	for name, value := range parameterization {
		parameter, ok := s.parameters[name]
		if !ok {
			return false, s.membershipFailure(raiseError, &MembershipError{
				Reason:    "not defined in search space",
				Parameter: name,
				Err:       ErrUnknownParameter,
			})
		}
		if !parameter.Validate(value) {
			return false, s.membershipFailure(raiseError, &MembershipError{
				Reason:    fmt.Sprintf("%v is not a valid value", value),
				Parameter: name,
			})
		}
	}

	values, err := s.numericSubset(parameterization)
	if err != nil {
		return false, s.membershipFailure(raiseError, err)
	}

	for _, constraint := range s.constraints {
		satisfied, err := s.checkConstraint(constraint, values)
		if err != nil {
			return false, s.membershipFailure(raiseError, err)
		}
		if !satisfied {
			return false, s.membershipFailure(raiseError, &MembershipError{
				Reason: fmt.Sprintf("parameter constraint %v is violated", constraint),
			})
		}
	}

	return true, nil
}

// CheckTypes reports whether the parameterization's names and value types
// match the search space. Nil values are skipped when allowNone. Constraints
// are not evaluated; this is a type-only check, independent of numeric
// feasibility.
func (s *SearchSpace) CheckTypes(parameterization Parameterization, allowNone, raiseError bool) (bool, error) {
	if len(parameterization) != len(s.parameters) {
		return false, s.membershipFailure(raiseError, &MembershipError{
			Reason: fmt.Sprintf("parameterization has %d parameters but search space has %d",
				len(parameterization), len(s.parameters)),
		})
	}

	for name, value := range parameterization {
		parameter, ok := s.parameters[name]
		if !ok {
			return false, s.membershipFailure(raiseError, &MembershipError{
				Reason:    "not defined in search space",
				Parameter: name,
				Err:       ErrUnknownParameter,
			})
		}
		if value == nil && allowNone {
			continue
		}
		if !parameter.IsValidType(value) {
			return false, s.membershipFailure(raiseError, &MembershipError{
				Reason:    fmt.Sprintf("%v is not a valid value type", value),
				Parameter: name,
			})
		}
	}

	return true, nil
}

// CastArm casts the arm's parameterization to the types in this search
// space. Names unknown to the space pass through unchanged, supporting
// values outside the modeled design. Returns a new arm; the input is never
// mutated.
func (s *SearchSpace) CastArm(arm Arm) (Arm, error) {
	cast := make(Parameterization, arm.Len())
	for name, value := range arm.Parameters() {
		parameter, ok := s.parameters[name]
		if !ok {
			cast[name] = value
			continue
		}
		coerced, err := parameter.Cast(value)
		if err != nil {
			return Arm{}, fmt.Errorf("searchspace: cast arm parameter %q: %w", name, err)
		}
		cast[name] = coerced
	}
	if arm.HasName() {
		return NewNamedArm(arm.Name(), cast), nil
	}
	return NewArm(cast), nil
}

// ConstructArm builds a new arm from the given values and name. The arm
// always carries an entry for every space parameter; names absent from the
// overrides map to nil. Unknown names and invalid non-nil values fail.
func (s *SearchSpace) ConstructArm(parameters Parameterization, name string) (Arm, error) {
	final := make(Parameterization, len(s.names))
	for _, parameterName := range s.names {
		final[parameterName] = nil
	}
	for overrideName, value := range parameters {
		parameter, ok := s.parameters[overrideName]
		if !ok {
			return Arm{}, fmt.Errorf("%w: %q", ErrUnknownParameter, overrideName)
		}
		if value != nil && !parameter.Validate(value) {
			return Arm{}, fmt.Errorf("searchspace: %v is not a valid value for parameter %q", value, overrideName)
		}
		final[overrideName] = value
	}
	if name != "" {
		return NewNamedArm(name, final), nil
	}
	return NewArm(final), nil
}

// OutOfDesignArm creates the canonical placeholder for a point outside the
// modeled design: an anonymous arm with every parameter nil.
func (s *SearchSpace) OutOfDesignArm() Arm {
	arm, _ := s.ConstructArm(nil, "")
	return arm
}

// Clone returns a deep, independent copy: every parameter and constraint is
// cloned, sharing no mutable state with the original.
func (s *SearchSpace) Clone() *SearchSpace {
	clone := &SearchSpace{
		id:          uuid.NewString(),
		names:       append([]string{}, s.names...),
		parameters:  make(map[string]Parameter, len(s.parameters)),
		constraints: make([]ParameterConstraint, 0, len(s.constraints)),
		cfg:         s.cfg,
	}
	for name, parameter := range s.parameters {
		clone.parameters[name] = parameter.Clone()
	}
	for _, constraint := range s.constraints {
		clone.constraints = append(clone.constraints, constraint.Clone())
	}
	return clone
}

// Schema generates a schema document for the space using the configured
// generator, defaulting to the descriptor generator.
func (s *SearchSpace) Schema() (SchemaDocument, error) {
	return s.schemaGenerator().Generate(s)
}

func (s *SearchSpace) String() string {
	parts := make([]string, 0, len(s.names))
	for _, name := range s.names {
		parts = append(parts, fmt.Sprintf("%v", s.parameters[name]))
	}
	return fmt.Sprintf("SearchSpace(parameters=[%s], constraints=%v)", strings.Join(parts, ", "), s.constraints)
}

// numericSubset coerces every numeric parameter's value to float64 for
// constraint evaluation. Non-coercible or non-finite values fail the check
// instead of propagating into constraints.
func (s *SearchSpace) numericSubset(parameterization Parameterization) (map[string]float64, error) {
	values := make(map[string]float64, len(parameterization))
	for name, value := range parameterization {
		if !s.parameters[name].IsNumeric() {
			continue
		}
		f, ok := numericValue(value)
		if !ok {
			return nil, &MembershipError{
				Reason:    fmt.Sprintf("%v (%T) cannot be coerced to a float for constraint evaluation", value, value),
				Parameter: name,
			}
		}
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, &MembershipError{
				Reason:    fmt.Sprintf("numeric value %v is not finite", f),
				Parameter: name,
			}
		}
		values[name] = f
	}
	return values, nil
}

func (s *SearchSpace) checkConstraint(constraint ParameterConstraint, values map[string]float64) (bool, error) {
	start := time.Now()
	satisfied, err := constraint.Check(values)
	s.constraintLogger().LogCheck(ConstraintLogEvent{
		Engine:     constraintEngine(constraint),
		Constraint: fmt.Sprintf("%v", constraint),
		Expr:       constraintExpression(constraint),
		Satisfied:  satisfied,
		Duration:   time.Since(start),
		Err:        err,
	})
	return satisfied, err
}

func (s *SearchSpace) membershipFailure(raiseError bool, err error) error {
	if raiseError {
		return err
	}
	return nil
}

func constraintEngine(constraint ParameterConstraint) string {
	switch constraint.(type) {
	case *LinearConstraint:
		return "linear"
	case *OrderConstraint:
		return "order"
	case *SumConstraint:
		return "sum"
	case *RuleConstraint:
		return "rule"
	default:
		return "custom"
	}
}

func constraintExpression(constraint ParameterConstraint) string {
	if rule, ok := constraint.(*RuleConstraint); ok {
		return rule.Expression()
	}
	return ""
}
