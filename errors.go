package searchspace

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrNotImplemented indicates an operation the current design does not
	// support yet, such as flattening a hierarchical search space.
	ErrNotImplemented = errors.New("searchspace: not implemented")
	// ErrDuplicateParameterName indicates construction received multiple
	// parameters with the same name.
	ErrDuplicateParameterName = errors.New("searchspace: parameter names must be unique")
	// ErrUnknownParameter indicates a reference to a parameter that is not
	// part of the search space.
	ErrUnknownParameter = errors.New("searchspace: parameter not in search space")
	// ErrParameterExists indicates AddParameter received an already present
	// name; use UpdateParameter instead.
	ErrParameterExists = errors.New("searchspace: parameter already exists")
	// ErrParameterNotFound indicates UpdateParameter received an absent name;
	// use AddParameter instead.
	ErrParameterNotFound = errors.New("searchspace: parameter does not exist")
	// ErrParameterTypeChange indicates UpdateParameter attempted to change a
	// parameter's type in place, which is never permitted.
	ErrParameterTypeChange = errors.New("searchspace: parameter type cannot change")
)

// MembershipError describes why a parameterization was rejected by
// CheckMembership or CheckTypes. It is returned only when the caller asked
// for errors instead of a boolean result.
type MembershipError struct {
	Reason    string
	Parameter string
	Err       error
}

func (e *MembershipError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Parameter != "" {
		return fmt.Sprintf("searchspace: parameter %q: %s", e.Parameter, e.Reason)
	}
	return "searchspace: " + e.Reason
}

func (e *MembershipError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// StructureError describes a malformed hierarchical search space: an
// ambiguous root, subtrees sharing parameters, or unreachable parameters.
type StructureError struct {
	Reason     string
	Parameters []string
}

func (e *StructureError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if len(e.Parameters) == 0 {
		return "searchspace: " + e.Reason
	}
	return fmt.Sprintf("searchspace: %s: %s", e.Reason, strings.Join(e.Parameters, ", "))
}

func newStructureError(reason string, names map[string]struct{}) *StructureError {
	sorted := make([]string, 0, len(names))
	for name := range names {
		sorted = append(sorted, name)
	}
	sort.Strings(sorted)
	return &StructureError{Reason: reason, Parameters: sorted}
}
