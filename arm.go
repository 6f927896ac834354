package searchspace

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"reflect"
)

// Arm is a concrete, optionally named assignment of values to (a subset of)
// a search space's parameters. Arms are value objects; all methods treat the
// receiver as immutable.
type Arm struct {
	parameters Parameterization
	name       string
	hasName    bool
}

// NewArm constructs an anonymous arm over the given parameterization.
func NewArm(parameters Parameterization) Arm {
	return Arm{parameters: parameters.Clone()}
}

// NewNamedArm constructs an arm carrying the given name.
func NewNamedArm(name string, parameters Parameterization) Arm {
	return Arm{
		parameters: parameters.Clone(),
		name:       name,
		hasName:    true,
	}
}

// Parameters returns a copy of the arm's parameterization.
func (a Arm) Parameters() Parameterization {
	return a.parameters.Clone()
}

// Name returns the arm's name, empty for anonymous arms.
func (a Arm) Name() string { return a.name }

// HasName reports whether the arm was given a name.
func (a Arm) HasName() bool { return a.hasName }

// Len returns the number of parameter entries.
func (a Arm) Len() int { return len(a.parameters) }

// Value returns the value stored under name and whether the entry exists.
func (a Arm) Value(name string) (any, bool) {
	value, ok := a.parameters[name]
	return value, ok
}

// Signature returns a stable hex digest of the parameterization, independent
// of the arm's name. Arms with equal parameterizations share a signature.
func (a Arm) Signature() string {
	payload, err := json.Marshal(a.parameters)
	if err != nil {
		// Parameter values are JSON-serialisable scalars; fall back to an
		// empty digest to avoid panics.
		return ""
	}
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:])
}

// Equal reports whether both arms carry the same name state and
// parameterization.
func (a Arm) Equal(other Arm) bool {
	if a.hasName != other.hasName || a.name != other.name {
		return false
	}
	return reflect.DeepEqual(a.parameters, other.parameters)
}

// Clone returns an independent copy.
func (a Arm) Clone() Arm {
	clone := a
	clone.parameters = a.parameters.Clone()
	return clone
}
