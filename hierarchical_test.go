package searchspace

import (
	"errors"
	"testing"

	"github.com/goliatone/go-searchspace/pkg/audit"
)

func hierarchicalParameters(t *testing.T) []Parameter {
	t.Helper()
	model, err := NewChoiceParameter("model", ParameterTypeString, []any{"linear", "mlp"},
		ChoiceWithDependents(map[any][]string{
			"linear": {"l2_reg"},
			"mlp":    {"hidden_layers"},
		}))
	if err != nil {
		t.Fatalf("new choice: %v", err)
	}
	l2Reg, err := NewRangeParameter("l2_reg", ParameterTypeFloat, 1e-6, 1)
	if err != nil {
		t.Fatalf("new range: %v", err)
	}
	hiddenLayers, err := NewRangeParameter("hidden_layers", ParameterTypeInt, 1, 8)
	if err != nil {
		t.Fatalf("new range: %v", err)
	}
	return []Parameter{model, l2Reg, hiddenLayers}
}

func TestNewHierarchicalFindsRoot(t *testing.T) {
	space, err := NewHierarchical(hierarchicalParameters(t))
	if err != nil {
		t.Fatalf("new hierarchical: %v", err)
	}
	if space.Root().Name() != "model" {
		t.Fatalf("expected root model, got %q", space.Root().Name())
	}
}

func TestNewHierarchicalRejectsMultipleRoots(t *testing.T) {
	parameters := hierarchicalParameters(t)
	orphan, err := NewRangeParameter("orphan", ParameterTypeFloat, 0, 1)
	if err != nil {
		t.Fatalf("new range: %v", err)
	}
	parameters = append(parameters, orphan)

	_, err = NewHierarchical(parameters)
	var structure *StructureError
	if !errors.As(err, &structure) {
		t.Fatalf("expected StructureError, got %v", err)
	}
	found := false
	for _, name := range structure.Parameters {
		if name == "orphan" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected orphan among root candidates, got %v", structure.Parameters)
	}
}

func TestNewHierarchicalRejectsSharedSubtrees(t *testing.T) {
	// Both triggers activate the same parameter, so sibling subtrees overlap.
	model, err := NewChoiceParameter("model", ParameterTypeString, []any{"a", "b"},
		ChoiceWithDependents(map[any][]string{
			"a": {"shared"},
			"b": {"shared"},
		}))
	if err != nil {
		t.Fatalf("new choice: %v", err)
	}
	shared, err := NewRangeParameter("shared", ParameterTypeFloat, 0, 1)
	if err != nil {
		t.Fatalf("new range: %v", err)
	}

	_, err = NewHierarchical([]Parameter{model, shared})
	var structure *StructureError
	if !errors.As(err, &structure) {
		t.Fatalf("expected StructureError, got %v", err)
	}
	if len(structure.Parameters) != 1 || structure.Parameters[0] != "shared" {
		t.Fatalf("expected shared parameter named, got %v", structure.Parameters)
	}
}

func TestNewHierarchicalRejectsCycles(t *testing.T) {
	root, err := NewFixedParameter("root", ParameterTypeBool, true,
		FixedWithDependents(map[any][]string{true: {"a"}}))
	if err != nil {
		t.Fatalf("new fixed: %v", err)
	}
	a, err := NewFixedParameter("a", ParameterTypeBool, true,
		FixedWithDependents(map[any][]string{true: {"b"}}))
	if err != nil {
		t.Fatalf("new fixed: %v", err)
	}
	b, err := NewFixedParameter("b", ParameterTypeBool, true,
		FixedWithDependents(map[any][]string{true: {"a"}}))
	if err != nil {
		t.Fatalf("new fixed: %v", err)
	}

	_, err = NewHierarchical([]Parameter{root, a, b})
	var structure *StructureError
	if !errors.As(err, &structure) {
		t.Fatalf("expected StructureError, got %v", err)
	}
}

func TestNewHierarchicalRejectsUnreachableParameters(t *testing.T) {
	// c and d depend on each other, so the root is unique but the walk from
	// it never reaches them.
	root, err := NewFixedParameter("root", ParameterTypeBool, true,
		FixedWithDependents(map[any][]string{true: {"b"}}))
	if err != nil {
		t.Fatalf("new fixed: %v", err)
	}
	b, err := NewRangeParameter("b", ParameterTypeFloat, 0, 1)
	if err != nil {
		t.Fatalf("new range: %v", err)
	}
	c, err := NewFixedParameter("c", ParameterTypeBool, true,
		FixedWithDependents(map[any][]string{true: {"d"}}))
	if err != nil {
		t.Fatalf("new fixed: %v", err)
	}
	d, err := NewFixedParameter("d", ParameterTypeBool, true,
		FixedWithDependents(map[any][]string{true: {"c"}}))
	if err != nil {
		t.Fatalf("new fixed: %v", err)
	}

	_, err = NewHierarchical([]Parameter{root, b, c, d})
	var structure *StructureError
	if !errors.As(err, &structure) {
		t.Fatalf("expected StructureError, got %v", err)
	}
	if len(structure.Parameters) != 2 || structure.Parameters[0] != "c" || structure.Parameters[1] != "d" {
		t.Fatalf("expected unreachable parameters c, d, got %v", structure.Parameters)
	}
}

func TestNewHierarchicalRejectsUnknownDependent(t *testing.T) {
	root, err := NewFixedParameter("root", ParameterTypeBool, true,
		FixedWithDependents(map[any][]string{true: {"ghost"}}))
	if err != nil {
		t.Fatalf("new fixed: %v", err)
	}
	if _, err := NewHierarchical([]Parameter{root}); !errors.Is(err, ErrUnknownParameter) {
		t.Fatalf("expected ErrUnknownParameter, got %v", err)
	}
}

func TestHierarchicalFlattenAndCastArmUnsupported(t *testing.T) {
	space, err := NewHierarchical(hierarchicalParameters(t))
	if err != nil {
		t.Fatalf("new hierarchical: %v", err)
	}
	if _, err := space.Flatten(); !errors.Is(err, ErrNotImplemented) {
		t.Fatalf("expected ErrNotImplemented, got %v", err)
	}
	if _, err := space.CastArm(NewArm(nil)); !errors.Is(err, ErrNotImplemented) {
		t.Fatalf("expected ErrNotImplemented, got %v", err)
	}
}

func TestHierarchicalAddParameterRevalidates(t *testing.T) {
	space, err := NewHierarchical(hierarchicalParameters(t))
	if err != nil {
		t.Fatalf("new hierarchical: %v", err)
	}

	// A parameter nothing points at would become a second root.
	orphan, err := NewRangeParameter("orphan", ParameterTypeFloat, 0, 1)
	if err != nil {
		t.Fatalf("new range: %v", err)
	}
	if err := space.AddParameter(orphan); err == nil {
		t.Fatalf("expected structural failure")
	}
	if _, ok := space.Parameter("orphan"); ok {
		t.Fatalf("failed add must roll back")
	}
	if space.Len() != 3 {
		t.Fatalf("expected 3 parameters after rollback, got %d", space.Len())
	}
}

func TestHierarchicalUpdateParameterRevalidates(t *testing.T) {
	space, err := NewHierarchical(hierarchicalParameters(t))
	if err != nil {
		t.Fatalf("new hierarchical: %v", err)
	}

	// Dropping the dependents severs the tree, leaving unreachable leaves.
	flat, err := NewChoiceParameter("model", ParameterTypeString, []any{"linear", "mlp"})
	if err != nil {
		t.Fatalf("new choice: %v", err)
	}
	if err := space.UpdateParameter(flat); err == nil {
		t.Fatalf("expected structural failure")
	}
	stored, _ := space.Parameter("model")
	if !stored.IsHierarchical() {
		t.Fatalf("failed update must roll back to the previous parameter")
	}
	if space.Root().Name() != "model" {
		t.Fatalf("expected root preserved after rollback")
	}
}

func TestHierarchicalUpdateParameterAllowsValidChange(t *testing.T) {
	space, err := NewHierarchical(hierarchicalParameters(t))
	if err != nil {
		t.Fatalf("new hierarchical: %v", err)
	}

	// Same tree shape with an extra choice value keeps the structure valid.
	extended, err := NewChoiceParameter("model", ParameterTypeString, []any{"linear", "mlp", "tree"},
		ChoiceWithDependents(map[any][]string{
			"linear": {"l2_reg"},
			"mlp":    {"hidden_layers"},
		}))
	if err != nil {
		t.Fatalf("new choice: %v", err)
	}
	if err := space.UpdateParameter(extended); err != nil {
		t.Fatalf("update parameter: %v", err)
	}
	stored, _ := space.Parameter("model")
	if len(stored.(*ChoiceParameter).Values()) != 3 {
		t.Fatalf("expected updated parameter stored")
	}
}

func TestHierarchicalRolledBackMutationEmitsNoAudit(t *testing.T) {
	capture := &audit.CaptureHook{}
	space, err := NewHierarchical(hierarchicalParameters(t), WithAuditHooks(capture))
	if err != nil {
		t.Fatalf("new hierarchical: %v", err)
	}

	orphan, err := NewRangeParameter("orphan", ParameterTypeFloat, 0, 1)
	if err != nil {
		t.Fatalf("new range: %v", err)
	}
	if err := space.AddParameter(orphan); err == nil {
		t.Fatalf("expected structural failure")
	}
	if len(capture.Events) != 0 {
		t.Fatalf("rolled-back add must not notify hooks, got %d events", len(capture.Events))
	}

	flat, err := NewChoiceParameter("model", ParameterTypeString, []any{"linear", "mlp"})
	if err != nil {
		t.Fatalf("new choice: %v", err)
	}
	if err := space.UpdateParameter(flat); err == nil {
		t.Fatalf("expected structural failure")
	}
	if len(capture.Events) != 0 {
		t.Fatalf("rolled-back update must not notify hooks, got %d events", len(capture.Events))
	}
}

func TestHierarchicalSuccessfulMutationEmitsAudit(t *testing.T) {
	capture := &audit.CaptureHook{}
	space, err := NewHierarchical(hierarchicalParameters(t), WithAuditHooks(capture))
	if err != nil {
		t.Fatalf("new hierarchical: %v", err)
	}

	extended, err := NewChoiceParameter("model", ParameterTypeString, []any{"linear", "mlp", "tree"},
		ChoiceWithDependents(map[any][]string{
			"linear": {"l2_reg"},
			"mlp":    {"hidden_layers"},
		}))
	if err != nil {
		t.Fatalf("new choice: %v", err)
	}
	if err := space.UpdateParameter(extended); err != nil {
		t.Fatalf("update parameter: %v", err)
	}
	if len(capture.Events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(capture.Events))
	}
	event := capture.Events[0]
	if event.Verb != "searchspace.parameter.updated" || event.Parameter != "model" {
		t.Fatalf("unexpected event: %+v", event)
	}
	if event.ObjectID != space.ID() {
		t.Fatalf("expected object id %q, got %q", space.ID(), event.ObjectID)
	}
}

func TestHierarchicalClone(t *testing.T) {
	space, err := NewHierarchical(hierarchicalParameters(t))
	if err != nil {
		t.Fatalf("new hierarchical: %v", err)
	}
	clone := space.Clone()
	if clone.Root().Name() != "model" {
		t.Fatalf("expected cloned root")
	}
	if clone.SearchSpace == space.SearchSpace {
		t.Fatalf("expected independent base space")
	}
}

func TestHierarchicalMembershipUsesBaseSemantics(t *testing.T) {
	space, err := NewHierarchical(hierarchicalParameters(t))
	if err != nil {
		t.Fatalf("new hierarchical: %v", err)
	}
	ok, err := space.CheckMembership(Parameterization{
		"model":         "mlp",
		"l2_reg":        0.01,
		"hidden_layers": 4,
	}, false)
	if err != nil {
		t.Fatalf("check membership: %v", err)
	}
	if !ok {
		t.Fatalf("expected member")
	}
}
