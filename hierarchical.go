package searchspace

import (
	"fmt"
)

// HierarchicalSearchSpace is a search space whose parameters form a tree:
// exactly one root, and every other parameter activated by some value of its
// parent. The tree structure is validated at construction and re-validated
// after every parameter mutation.
type HierarchicalSearchSpace struct {
	*SearchSpace
	root string
}

// NewHierarchical constructs a hierarchical search space over the given
// parameters, verifying that they form a valid tree: a unique root, disjoint
// subtrees, and every parameter reachable from the root.
func NewHierarchical(parameters []Parameter, opts ...Option) (*HierarchicalSearchSpace, error) {
	base, err := New(parameters, opts...)
	if err != nil {
		return nil, err
	}
	h := &HierarchicalSearchSpace{SearchSpace: base}
	if err := h.revalidate(); err != nil {
		return nil, err
	}
	return h, nil
}

// Root returns the tree's root parameter.
func (h *HierarchicalSearchSpace) Root() Parameter {
	root, _ := h.Parameter(h.root)
	return root
}

// Flatten is not yet supported: collapsing the tree into a flat space loses
// the activation structure needed to interpret arms.
func (h *HierarchicalSearchSpace) Flatten() (*SearchSpace, error) {
	return nil, fmt.Errorf("%w: flatten hierarchical search space", ErrNotImplemented)
}

// CastArm is not yet supported on hierarchical spaces: casting requires
// resolving which subtree an arm activates.
func (h *HierarchicalSearchSpace) CastArm(Arm) (Arm, error) {
	return Arm{}, fmt.Errorf("%w: cast arm against hierarchical search space", ErrNotImplemented)
}

// AddParameter inserts a new parameter and re-validates the tree structure.
// The insert is rolled back when the resulting structure is invalid.
func (h *HierarchicalSearchSpace) AddParameter(parameter Parameter) error {
	if err := h.addParameter(parameter); err != nil {
		return err
	}
	if err := h.revalidate(); err != nil {
		h.removeParameter(parameter.Name())
		return err
	}
	h.emitParameterAudit(auditVerbParameterAdded, parameter)
	return nil
}

// UpdateParameter replaces an existing parameter and re-validates the tree
// structure. The update is rolled back when the resulting structure is
// invalid.
func (h *HierarchicalSearchSpace) UpdateParameter(parameter Parameter) error {
	previous, ok := h.Parameter(parameter.Name())
	if !ok {
		return fmt.Errorf("%w: %q; use AddParameter to add a new parameter", ErrParameterNotFound, parameter.Name())
	}
	if err := h.updateParameter(parameter); err != nil {
		return err
	}
	if err := h.revalidate(); err != nil {
		h.parameters[previous.Name()] = previous
		return err
	}
	h.emitParameterAudit(auditVerbParameterUpdated, parameter)
	return nil
}

// Clone returns a deep, independent copy. The clone shares no mutable state
// with the original; structure validation is skipped since the tree is
// unchanged.
func (h *HierarchicalSearchSpace) Clone() *HierarchicalSearchSpace {
	return &HierarchicalSearchSpace{
		SearchSpace: h.SearchSpace.Clone(),
		root:        h.root,
	}
}

func (h *HierarchicalSearchSpace) String() string {
	return fmt.Sprintf("HierarchicalSearchSpace(root=%q, %v)", h.root, h.SearchSpace)
}

func (h *HierarchicalSearchSpace) revalidate() error {
	root, err := h.findRoot()
	if err != nil {
		return err
	}
	if err := h.validateStructure(root); err != nil {
		return err
	}
	h.root = root
	return nil
}

// findRoot locates the unique parameter that no other parameter's dependents
// reference. Zero or multiple candidates fail: forests need a synthetic
// unifying root, which is not supported.
func (h *HierarchicalSearchSpace) findRoot() (string, error) {
	dependentNames := make(map[string]struct{})
	for _, parameter := range h.parameters {
		for _, names := range parameter.Dependents() {
			for _, name := range names {
				dependentNames[name] = struct{}{}
			}
		}
	}

	candidates := make(map[string]struct{})
	for name := range h.parameters {
		if _, dependent := dependentNames[name]; !dependent {
			candidates[name] = struct{}{}
		}
	}
	if len(candidates) != 1 {
		return "", newStructureError(
			fmt.Sprintf("expected exactly one root parameter, found %d candidates", len(candidates)),
			candidates,
		)
	}
	for name := range candidates {
		return name, nil
	}
	return "", nil
}

// validateStructure walks the tree from the root, checking that dependents
// reference known parameters, that sibling subtrees are disjoint, and that
// every parameter in the space is reachable.
func (h *HierarchicalSearchSpace) validateStructure(root string) error {
	visited, err := h.checkSubtree(root, map[string]struct{}{})
	if err != nil {
		return err
	}

	unreachable := make(map[string]struct{})
	for name := range h.parameters {
		if _, ok := visited[name]; !ok {
			unreachable[name] = struct{}{}
		}
	}
	if len(unreachable) > 0 {
		return newStructureError("parameters are not reachable from the root", unreachable)
	}
	return nil
}

// checkSubtree validates the subtree rooted at name and returns the set of
// parameter names it contains. path holds the ancestors of name and guards
// against dependency cycles.
func (h *HierarchicalSearchSpace) checkSubtree(name string, path map[string]struct{}) (map[string]struct{}, error) {
	parameter, ok := h.parameters[name]
	if !ok {
		return nil, fmt.Errorf("%w: dependent parameter %q", ErrUnknownParameter, name)
	}
	if _, cyclic := path[name]; cyclic {
		return nil, newStructureError("dependency cycle detected", map[string]struct{}{name: {}})
	}

	visited := map[string]struct{}{name: {}}
	if !parameter.IsHierarchical() {
		return visited, nil
	}

	path[name] = struct{}{}
	defer delete(path, name)

	for _, names := range parameter.Dependents() {
		for _, childName := range names {
			subtree, err := h.checkSubtree(childName, path)
			if err != nil {
				return nil, err
			}
			overlap := make(map[string]struct{})
			for visitedName := range subtree {
				if _, seen := visited[visitedName]; seen {
					overlap[visitedName] = struct{}{}
				}
			}
			if len(overlap) > 0 {
				return nil, newStructureError(
					fmt.Sprintf("subtrees under %q are not disjoint", name), overlap)
			}
			for visitedName := range subtree {
				visited[visitedName] = struct{}{}
			}
		}
	}
	return visited, nil
}

func (h *HierarchicalSearchSpace) removeParameter(name string) {
	delete(h.parameters, name)
	for i, existing := range h.names {
		if existing == name {
			h.names = append(h.names[:i], h.names[i+1:]...)
			return
		}
	}
}
