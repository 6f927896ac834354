package searchspace

import (
	"time"
)

// Parameterization maps parameter names to assigned values. Values are not
// validated on construction; use SearchSpace.CheckMembership or CheckTypes.
type Parameterization map[string]any

// Clone returns a copy of the parameterization. Values are the scalar types
// admitted by parameters and safe to share.
func (p Parameterization) Clone() Parameterization {
	if p == nil {
		return nil
	}
	out := make(Parameterization, len(p))
	for name, value := range p {
		out[name] = value
	}
	return out
}

// Parameter describes a single named domain within a search space.
//
// Implementations are value-like: Clone must return an independent copy and
// no method may mutate the receiver.
type Parameter interface {
	Name() string
	Type() ParameterType
	Kind() ParameterKind
	IsNumeric() bool
	IsFixed() bool
	// IsHierarchical reports whether other parameters become active based on
	// this parameter's value.
	IsHierarchical() bool
	// Dependents maps a trigger value to the names of parameters that become
	// active when this parameter takes that value. Nil for flat parameters.
	Dependents() map[any][]string
	// Validate reports whether value lies inside the parameter's domain.
	Validate(value any) bool
	// IsValidType reports whether value has an acceptable representation for
	// the parameter's type, regardless of domain bounds.
	IsValidType(value any) bool
	// Cast coerces value to the parameter's canonical representation.
	Cast(value any) (any, error)
	Clone() Parameter
}

// ParameterConstraint restricts the feasible region across numeric
// parameters beyond their individual domains.
//
// Constraints reference parameters by name only; the owning SearchSpace holds
// the canonical Parameter instances and resolves names at validation time.
type ParameterConstraint interface {
	// ParameterNames returns the names this constraint references.
	ParameterNames() []string
	// Check evaluates the constraint against a numeric parameterization.
	Check(values map[string]float64) (bool, error)
	Clone() ParameterConstraint
}

// SchemaFormat identifies the representation a schema document encodes.
type SchemaFormat string

const (
	// SchemaFormatDescriptors represents the flattened parameter descriptors.
	SchemaFormatDescriptors SchemaFormat = "descriptors"
	// SchemaFormatJSONSchema represents JSON Schema compatible documents.
	SchemaFormatJSONSchema SchemaFormat = "jsonschema"
)

// SchemaDocument encapsulates a generated schema output alongside its format
// identifier. Implementations must ensure Document is JSON-serialisable.
type SchemaDocument struct {
	Format   SchemaFormat
	Document any
}

// SchemaGenerator transforms a search space into a schema document. All
// implementations MUST be safe for concurrent use and handle nil inputs by
// returning an empty schema document.
type SchemaGenerator interface {
	Generate(space *SearchSpace) (SchemaDocument, error)
}

// RuleContext carries inputs needed when evaluating a constraint expression.
type RuleContext struct {
	// Values holds the numeric parameterization under check, keyed by
	// parameter name.
	Values map[string]float64
	Now    *time.Time
	Args   map[string]any
	// Metadata carries caller-provided annotations exposed to expressions.
	Metadata map[string]any
	// Constraint labels the constraint being evaluated, for diagnostics.
	Constraint string
}

func (ctx RuleContext) withDefaultNow() RuleContext {
	if ctx.Now != nil {
		return ctx
	}
	now := time.Now()
	ctx.Now = &now
	return ctx
}

func (ctx RuleContext) timestamp() time.Time {
	ctx = ctx.withDefaultNow()
	return *ctx.Now
}

func (ctx RuleContext) withDefaultMaps() RuleContext {
	if ctx.Values == nil {
		ctx.Values = map[string]float64{}
	}
	if ctx.Args == nil {
		ctx.Args = map[string]any{}
	}
	if ctx.Metadata == nil {
		ctx.Metadata = map[string]any{}
	}
	return ctx
}

func (ctx RuleContext) constraintLabel() string {
	if ctx.Constraint != "" {
		return ctx.Constraint
	}
	return "unnamed"
}

// Evaluator executes constraint expressions against a rule context.
type Evaluator interface {
	Evaluate(ctx RuleContext, expr string) (any, error)
	Compile(expr string, opts ...CompileOption) (CompiledRule, error)
}

// CompiledRule represents a reusable expression program.
type CompiledRule interface {
	Evaluate(ctx RuleContext) (any, error)
}

// CompileOption configures evaluator compile behaviour.
type CompileOption interface {
	applyCompileOption(*compileConfig)
}

type compileConfig struct{}

type compileOptionFunc func(*compileConfig)

func (f compileOptionFunc) applyCompileOption(cfg *compileConfig) {
	if f != nil {
		f(cfg)
	}
}

// Option configures a SearchSpace at construction time.
type Option func(*spaceConfig)

type spaceConfig struct {
	evaluator       Evaluator
	programCache    ProgramCache
	functions       *FunctionRegistry
	logger          ConstraintLogger
	schemaGenerator SchemaGenerator
	auditHooks      auditHookSet
	constraints     []ParameterConstraint
}

// WithParameterConstraints supplies the initial constraint list. Constraints
// are installed through the same validation path as SetParameterConstraints.
func WithParameterConstraints(constraints ...ParameterConstraint) Option {
	return func(cfg *spaceConfig) {
		cfg.constraints = append(cfg.constraints, constraints...)
	}
}

func applyOptions(opts []Option) spaceConfig {
	cfg := spaceConfig{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

// WithEvaluator configures the evaluator bound to rule constraints that were
// built without one.
func WithEvaluator(e Evaluator) Option {
	return func(cfg *spaceConfig) {
		cfg.evaluator = e
	}
}

// WithSchemaGenerator configures a custom schema generator implementation.
func WithSchemaGenerator(generator SchemaGenerator) Option {
	return func(cfg *spaceConfig) {
		cfg.schemaGenerator = generator
	}
}

func (s *SearchSpace) constraintLogger() ConstraintLogger {
	if s.cfg.logger != nil {
		return s.cfg.logger
	}
	return noopConstraintLogger{}
}

func (s *SearchSpace) schemaGenerator() SchemaGenerator {
	if s == nil {
		return DefaultSchemaGenerator()
	}
	if s.cfg.schemaGenerator != nil {
		return s.cfg.schemaGenerator
	}
	return DefaultSchemaGenerator()
}
