package searchspace

import (
	"errors"
	"testing"

	"github.com/goliatone/go-searchspace/pkg/audit"
)

func testParameters(t *testing.T) []Parameter {
	t.Helper()
	x, err := NewRangeParameter("x", ParameterTypeFloat, 0, 10)
	if err != nil {
		t.Fatalf("new range: %v", err)
	}
	n, err := NewRangeParameter("n", ParameterTypeInt, 1, 100)
	if err != nil {
		t.Fatalf("new range: %v", err)
	}
	mode, err := NewChoiceParameter("mode", ParameterTypeString, []any{"fast", "slow"})
	if err != nil {
		t.Fatalf("new choice: %v", err)
	}
	pinned, err := NewFixedParameter("pinned", ParameterTypeBool, true)
	if err != nil {
		t.Fatalf("new fixed: %v", err)
	}
	return []Parameter{x, n, mode, pinned}
}

func testSpace(t *testing.T, opts ...Option) *SearchSpace {
	t.Helper()
	space, err := New(testParameters(t), opts...)
	if err != nil {
		t.Fatalf("new search space: %v", err)
	}
	return space
}

func validPoint() Parameterization {
	return Parameterization{
		"x":      2.5,
		"n":      10,
		"mode":   "fast",
		"pinned": true,
	}
}

func TestNewRejectsDuplicateNames(t *testing.T) {
	a, err := NewRangeParameter("dup", ParameterTypeFloat, 0, 1)
	if err != nil {
		t.Fatalf("new range: %v", err)
	}
	b, err := NewFixedParameter("dup", ParameterTypeInt, 1)
	if err != nil {
		t.Fatalf("new fixed: %v", err)
	}
	if _, err := New([]Parameter{a, b}); !errors.Is(err, ErrDuplicateParameterName) {
		t.Fatalf("expected ErrDuplicateParameterName, got %v", err)
	}
}

func TestParameterAccessors(t *testing.T) {
	space := testSpace(t)

	names := space.ParameterNames()
	want := []string{"x", "n", "mode", "pinned"}
	if len(names) != len(want) {
		t.Fatalf("expected %d names, got %d", len(want), len(names))
	}
	for i, name := range want {
		if names[i] != name {
			t.Fatalf("expected name %q at index %d, got %q", name, i, names[i])
		}
	}

	if space.Len() != 4 {
		t.Fatalf("expected 4 parameters, got %d", space.Len())
	}
	if _, ok := space.Parameter("x"); !ok {
		t.Fatalf("expected parameter x")
	}
	if _, ok := space.Parameter("ghost"); ok {
		t.Fatalf("did not expect parameter ghost")
	}
}

func TestDerivedViews(t *testing.T) {
	space := testSpace(t)

	ranges := space.RangeParameters()
	if len(ranges) != 2 {
		t.Fatalf("expected 2 range parameters, got %d", len(ranges))
	}
	tunable := space.TunableParameters()
	if len(tunable) != 3 {
		t.Fatalf("expected 3 tunable parameters, got %d", len(tunable))
	}
	for _, parameter := range tunable {
		if parameter.Name() == "pinned" {
			t.Fatalf("fixed parameter must not be tunable")
		}
	}

	// Views reflect current state, not construction state.
	extra, err := NewRangeParameter("y", ParameterTypeFloat, 0, 1)
	if err != nil {
		t.Fatalf("new range: %v", err)
	}
	if err := space.AddParameter(extra); err != nil {
		t.Fatalf("add parameter: %v", err)
	}
	if len(space.RangeParameters()) != 3 {
		t.Fatalf("expected 3 range parameters after add")
	}
}

func TestAddParameter(t *testing.T) {
	space := testSpace(t)

	dup, err := NewRangeParameter("x", ParameterTypeFloat, 0, 1)
	if err != nil {
		t.Fatalf("new range: %v", err)
	}
	if err := space.AddParameter(dup); !errors.Is(err, ErrParameterExists) {
		t.Fatalf("expected ErrParameterExists, got %v", err)
	}

	fresh, err := NewRangeParameter("z", ParameterTypeFloat, 0, 1)
	if err != nil {
		t.Fatalf("new range: %v", err)
	}
	if err := space.AddParameter(fresh); err != nil {
		t.Fatalf("add parameter: %v", err)
	}
	if _, ok := space.Parameter("z"); !ok {
		t.Fatalf("expected added parameter")
	}
}

func TestUpdateParameter(t *testing.T) {
	space := testSpace(t)

	absent, err := NewRangeParameter("ghost", ParameterTypeFloat, 0, 1)
	if err != nil {
		t.Fatalf("new range: %v", err)
	}
	if err := space.UpdateParameter(absent); !errors.Is(err, ErrParameterNotFound) {
		t.Fatalf("expected ErrParameterNotFound, got %v", err)
	}

	typeChange, err := NewRangeParameter("x", ParameterTypeInt, 0, 1)
	if err != nil {
		t.Fatalf("new range: %v", err)
	}
	if err := space.UpdateParameter(typeChange); !errors.Is(err, ErrParameterTypeChange) {
		t.Fatalf("expected ErrParameterTypeChange, got %v", err)
	}

	widened, err := NewRangeParameter("x", ParameterTypeFloat, 0, 20)
	if err != nil {
		t.Fatalf("new range: %v", err)
	}
	if err := space.UpdateParameter(widened); err != nil {
		t.Fatalf("update parameter: %v", err)
	}
	stored, _ := space.Parameter("x")
	if stored.(*RangeParameter).Upper() != 20 {
		t.Fatalf("expected updated bounds")
	}
}

func TestSetParameterConstraintsValidatesNames(t *testing.T) {
	space := testSpace(t)

	known, err := NewOrderConstraint("x", "n")
	if err != nil {
		t.Fatalf("new order: %v", err)
	}
	if err := space.SetParameterConstraints(known); err != nil {
		t.Fatalf("set constraints: %v", err)
	}
	if len(space.ParameterConstraints()) != 1 {
		t.Fatalf("expected 1 constraint")
	}

	unknown, err := NewOrderConstraint("x", "ghost")
	if err != nil {
		t.Fatalf("new order: %v", err)
	}
	if err := space.SetParameterConstraints(unknown); !errors.Is(err, ErrUnknownParameter) {
		t.Fatalf("expected ErrUnknownParameter, got %v", err)
	}
	// Replace is atomic: the previous list survives a failed set.
	if len(space.ParameterConstraints()) != 1 {
		t.Fatalf("expected previous constraints to survive failed set")
	}
}

func TestAddParameterConstraints(t *testing.T) {
	order, err := NewOrderConstraint("x", "n")
	if err != nil {
		t.Fatalf("new order: %v", err)
	}
	space := testSpace(t, WithParameterConstraints(order))

	sum, err := NewSumConstraint([]string{"x", "n"}, true, 50)
	if err != nil {
		t.Fatalf("new sum: %v", err)
	}
	if err := space.AddParameterConstraints(sum); err != nil {
		t.Fatalf("add constraints: %v", err)
	}
	if len(space.ParameterConstraints()) != 2 {
		t.Fatalf("expected 2 constraints, got %d", len(space.ParameterConstraints()))
	}

	unknown, err := NewOrderConstraint("ghost", "x")
	if err != nil {
		t.Fatalf("new order: %v", err)
	}
	if err := space.AddParameterConstraints(unknown); !errors.Is(err, ErrUnknownParameter) {
		t.Fatalf("expected ErrUnknownParameter, got %v", err)
	}
	if len(space.ParameterConstraints()) != 2 {
		t.Fatalf("expected constraint list unchanged after failed add")
	}
}

func TestCheckMembership(t *testing.T) {
	order, err := NewOrderConstraint("x", "n")
	if err != nil {
		t.Fatalf("new order: %v", err)
	}
	space := testSpace(t, WithParameterConstraints(order))

	cases := []struct {
		name  string
		point Parameterization
		want  bool
	}{
		{name: "member", point: validPoint(), want: true},
		{name: "missing parameter", point: Parameterization{"x": 1.0, "n": 10, "mode": "fast"}},
		{name: "extra parameter", point: Parameterization{
			"x": 1.0, "n": 10, "mode": "fast", "pinned": true, "ghost": 1,
		}},
		{name: "unknown name", point: Parameterization{
			"x": 1.0, "n": 10, "mode": "fast", "ghost": true,
		}},
		{name: "out of bounds", point: Parameterization{
			"x": 50.0, "n": 10, "mode": "fast", "pinned": true,
		}},
		{name: "constraint violated", point: Parameterization{
			"x": 9.0, "n": 2, "mode": "fast", "pinned": true,
		}},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			got, err := space.CheckMembership(tc.point, false)
			if err != nil {
				t.Fatalf("check membership: %v", err)
			}
			if got != tc.want {
				t.Fatalf("expected %v, got %v", tc.want, got)
			}
		})
	}
}

func TestCheckMembershipRaiseError(t *testing.T) {
	space := testSpace(t)

	point := validPoint()
	point["x"] = 50.0
	ok, err := space.CheckMembership(point, true)
	if ok {
		t.Fatalf("expected failure")
	}
	var membership *MembershipError
	if !errors.As(err, &membership) {
		t.Fatalf("expected MembershipError, got %v", err)
	}
	if membership.Parameter != "x" {
		t.Fatalf("expected failing parameter x, got %q", membership.Parameter)
	}
}

func TestCheckMembershipRejectsMistypedNumeric(t *testing.T) {
	space := testSpace(t)
	point := validPoint()
	point["n"] = "10"
	ok, err := space.CheckMembership(point, false)
	if err != nil {
		t.Fatalf("check membership: %v", err)
	}
	if ok {
		t.Fatalf("expected string value for int parameter to fail")
	}
}

func TestCheckTypes(t *testing.T) {
	space := testSpace(t)

	ok, err := space.CheckTypes(validPoint(), true, false)
	if err != nil || !ok {
		t.Fatalf("expected valid types, got ok=%v err=%v", ok, err)
	}

	point := validPoint()
	point["mode"] = nil
	ok, err = space.CheckTypes(point, true, false)
	if err != nil || !ok {
		t.Fatalf("expected nil to pass with allowNone, got ok=%v err=%v", ok, err)
	}
	ok, err = space.CheckTypes(point, false, false)
	if err != nil || ok {
		t.Fatalf("expected nil to fail without allowNone, got ok=%v err=%v", ok, err)
	}

	point = validPoint()
	point["mode"] = 3
	ok, err = space.CheckTypes(point, true, false)
	if err != nil || ok {
		t.Fatalf("expected type mismatch to fail, got ok=%v err=%v", ok, err)
	}

	// Constraints are not evaluated; a type-valid but infeasible point passes.
	order, err := NewOrderConstraint("x", "n")
	if err != nil {
		t.Fatalf("new order: %v", err)
	}
	if err := space.SetParameterConstraints(order); err != nil {
		t.Fatalf("set constraints: %v", err)
	}
	infeasible := validPoint()
	infeasible["x"] = 9.0
	infeasible["n"] = 2
	ok, err = space.CheckTypes(infeasible, true, false)
	if err != nil || !ok {
		t.Fatalf("expected type check to ignore constraints, got ok=%v err=%v", ok, err)
	}
}

func TestCastArm(t *testing.T) {
	space := testSpace(t)

	arm := NewNamedArm("trial", Parameterization{
		"x":       3,     // int for a float parameter
		"n":       7.0,   // float for an int parameter
		"unknown": "raw", // passes through unchanged
	})
	cast, err := space.CastArm(arm)
	if err != nil {
		t.Fatalf("cast arm: %v", err)
	}
	if value, _ := cast.Value("x"); value != 3.0 {
		t.Fatalf("expected float64 3, got %v (%T)", value, value)
	}
	if value, _ := cast.Value("n"); value != 7 {
		t.Fatalf("expected int 7, got %v (%T)", value, value)
	}
	if value, _ := cast.Value("unknown"); value != "raw" {
		t.Fatalf("expected passthrough, got %v", value)
	}
	if cast.Name() != "trial" {
		t.Fatalf("expected name preserved, got %q", cast.Name())
	}
	if value, _ := arm.Value("x"); value != 3 {
		t.Fatalf("input arm must not be mutated, got %v", value)
	}

	// Casting an already-cast arm changes nothing.
	recast, err := space.CastArm(cast)
	if err != nil {
		t.Fatalf("cast cast arm: %v", err)
	}
	if !recast.Equal(cast) {
		t.Fatalf("expected cast to be idempotent, got %v vs %v", recast.Parameters(), cast.Parameters())
	}

	bad := NewArm(Parameterization{"n": "seven"})
	if _, err := space.CastArm(bad); err == nil {
		t.Fatalf("expected cast error")
	}
}

func TestConstructArm(t *testing.T) {
	space := testSpace(t)

	arm, err := space.ConstructArm(Parameterization{"x": 1.5}, "trial-1")
	if err != nil {
		t.Fatalf("construct arm: %v", err)
	}
	if arm.Len() != space.Len() {
		t.Fatalf("expected entry per space parameter, got %d", arm.Len())
	}
	if value, ok := arm.Value("n"); !ok || value != nil {
		t.Fatalf("expected nil fill for n, got %v ok=%v", value, ok)
	}
	if value, _ := arm.Value("x"); value != 1.5 {
		t.Fatalf("expected override, got %v", value)
	}
	if arm.Name() != "trial-1" {
		t.Fatalf("expected name, got %q", arm.Name())
	}

	if _, err := space.ConstructArm(Parameterization{"ghost": 1}, ""); !errors.Is(err, ErrUnknownParameter) {
		t.Fatalf("expected ErrUnknownParameter, got %v", err)
	}
	if _, err := space.ConstructArm(Parameterization{"x": 50.0}, ""); err == nil {
		t.Fatalf("expected invalid value error")
	}
}

func TestOutOfDesignArm(t *testing.T) {
	space := testSpace(t)
	arm := space.OutOfDesignArm()
	if arm.Len() != space.Len() {
		t.Fatalf("expected entry per parameter")
	}
	for _, name := range space.ParameterNames() {
		if value, ok := arm.Value(name); !ok || value != nil {
			t.Fatalf("expected nil for %q, got %v", name, value)
		}
	}
	if arm.HasName() {
		t.Fatalf("expected anonymous arm")
	}
}

func TestCloneIsIndependent(t *testing.T) {
	order, err := NewOrderConstraint("x", "n")
	if err != nil {
		t.Fatalf("new order: %v", err)
	}
	space := testSpace(t, WithParameterConstraints(order))
	clone := space.Clone()

	if clone.ID() == space.ID() {
		t.Fatalf("expected clone to get its own identity")
	}

	widened, err := NewRangeParameter("x", ParameterTypeFloat, 0, 99)
	if err != nil {
		t.Fatalf("new range: %v", err)
	}
	if err := space.UpdateParameter(widened); err != nil {
		t.Fatalf("update parameter: %v", err)
	}

	original, _ := clone.Parameter("x")
	if original.(*RangeParameter).Upper() != 10 {
		t.Fatalf("clone must not observe mutations to the original")
	}
	if len(clone.ParameterConstraints()) != 1 {
		t.Fatalf("expected cloned constraints")
	}
}

func TestRuleConstraintThroughSpace(t *testing.T) {
	rule, err := NewRuleConstraint("x + n <= 20.0", []string{"x", "n"})
	if err != nil {
		t.Fatalf("new rule: %v", err)
	}
	space := testSpace(t, WithParameterConstraints(rule))

	ok, err := space.CheckMembership(validPoint(), false)
	if err != nil {
		t.Fatalf("check membership: %v", err)
	}
	if !ok {
		t.Fatalf("expected member")
	}

	point := validPoint()
	point["x"] = 10.0
	point["n"] = 95
	ok, err = space.CheckMembership(point, false)
	if err != nil {
		t.Fatalf("check membership: %v", err)
	}
	if ok {
		t.Fatalf("expected rule violation")
	}
}

func TestRuleConstraintInstallFailsOnBadExpression(t *testing.T) {
	rule, err := NewRuleConstraint("x >", []string{"x"})
	if err != nil {
		t.Fatalf("new rule: %v", err)
	}
	if _, err := New(testParameters(t), WithParameterConstraints(rule)); err == nil {
		t.Fatalf("expected install to fail compiling malformed expression")
	}
}

func TestCustomFunctionThroughSpace(t *testing.T) {
	rule, err := NewRuleConstraint(`call("halve", x) < 2.0`, []string{"x"})
	if err != nil {
		t.Fatalf("new rule: %v", err)
	}
	space := testSpace(t,
		WithCustomFunction("halve", func(args ...any) (any, error) {
			value, _ := args[0].(float64)
			return value / 2, nil
		}),
		WithParameterConstraints(rule),
	)

	ok, err := space.CheckMembership(validPoint(), false)
	if err != nil {
		t.Fatalf("check membership: %v", err)
	}
	if !ok {
		t.Fatalf("expected member with custom function result")
	}
}

func TestConstraintLoggerObservesChecks(t *testing.T) {
	var events []ConstraintLogEvent
	order, err := NewOrderConstraint("x", "n")
	if err != nil {
		t.Fatalf("new order: %v", err)
	}
	space := testSpace(t,
		WithParameterConstraints(order),
		WithConstraintLogger(ConstraintLoggerFunc(func(event ConstraintLogEvent) {
			events = append(events, event)
		})),
	)

	if _, err := space.CheckMembership(validPoint(), false); err != nil {
		t.Fatalf("check membership: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 log event, got %d", len(events))
	}
	if events[0].Engine != "order" || !events[0].Satisfied {
		t.Fatalf("unexpected event: %+v", events[0])
	}
}

func TestAuditHooksObserveMutations(t *testing.T) {
	capture := &audit.CaptureHook{}
	space := testSpace(t, WithAuditHooks(capture))

	extra, err := NewRangeParameter("y", ParameterTypeFloat, 0, 1)
	if err != nil {
		t.Fatalf("new range: %v", err)
	}
	if err := space.AddParameter(extra); err != nil {
		t.Fatalf("add parameter: %v", err)
	}

	widened, err := NewRangeParameter("y", ParameterTypeFloat, 0, 2)
	if err != nil {
		t.Fatalf("new range: %v", err)
	}
	if err := space.UpdateParameter(widened); err != nil {
		t.Fatalf("update parameter: %v", err)
	}

	order, err := NewOrderConstraint("x", "y")
	if err != nil {
		t.Fatalf("new order: %v", err)
	}
	if err := space.SetParameterConstraints(order); err != nil {
		t.Fatalf("set constraints: %v", err)
	}

	verbs := make([]string, 0, len(capture.Events))
	for _, event := range capture.Events {
		verbs = append(verbs, event.Verb)
		if event.ObjectID != space.ID() {
			t.Fatalf("expected object id %q, got %q", space.ID(), event.ObjectID)
		}
	}
	want := []string{
		"searchspace.parameter.added",
		"searchspace.parameter.updated",
		"searchspace.constraints.set",
	}
	if len(verbs) != len(want) {
		t.Fatalf("expected %d events, got %d (%v)", len(want), len(verbs), verbs)
	}
	for i, verb := range want {
		if verbs[i] != verb {
			t.Fatalf("expected verb %q at index %d, got %q", verb, i, verbs[i])
		}
	}
	if capture.Events[0].Parameter != "y" {
		t.Fatalf("expected parameter metadata, got %q", capture.Events[0].Parameter)
	}
}
